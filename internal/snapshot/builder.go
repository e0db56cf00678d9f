package snapshot

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ariel-frischer/apichangelog/internal/surface"
	"go.uber.org/zap"
)

// MissingInputError reports a tracked category whose source document could
// not be read. The category is left out of the snapshot.
type MissingInputError struct {
	Category string
	Path     string
	Err      error
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("category %s: source %s unavailable: %v", e.Category, e.Path, e.Err)
}

func (e *MissingInputError) Unwrap() error {
	return e.Err
}

// Builder produces a Snapshot from the per-category documents of the
// current version.
type Builder struct {
	// FilesDir is the directory category files are resolved against.
	FilesDir string
	// Categories are the tracked categories, in processing order.
	Categories []surface.Category
	// Logger receives warnings for skipped or malformed categories.
	Logger *zap.Logger
}

// NewBuilder creates a Builder. A nil logger disables logging.
func NewBuilder(filesDir string, categories []surface.Category, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{
		FilesDir:   filesDir,
		Categories: categories,
		Logger:     logger,
	}
}

// Build normalizes every tracked category.
//
// Problems with individual categories never fail the build: a missing source
// drops the category from the snapshot and a malformed one contributes an
// empty item list. Each problem is logged and returned so callers can report
// it. Given the same files, Build always returns the same Snapshot.
func (b *Builder) Build() (Snapshot, []error) {
	snap := make(Snapshot, len(b.Categories))
	var issues []error

	for _, cat := range b.Categories {
		path := b.sourcePath(cat)

		data, err := os.ReadFile(path)
		if err != nil {
			missing := &MissingInputError{Category: cat.Key, Path: path, Err: err}
			b.Logger.Warn("skipping category without source",
				zap.String("category", cat.Key),
				zap.String("path", path),
				zap.Error(err),
			)
			issues = append(issues, missing)
			continue
		}

		items, err := surface.Normalize(cat.Shape, data)
		if err != nil {
			b.Logger.Warn("category source is malformed",
				zap.String("category", cat.Key),
				zap.String("path", path),
				zap.Error(err),
			)
			issues = append(issues, fmt.Errorf("category %s: %w", cat.Key, err))
		}

		snap[cat.Key] = Category{
			Name:   cat.Name,
			Items:  items,
			Totals: surface.CountByKind(items),
		}
		b.Logger.Debug("normalized category",
			zap.String("category", cat.Key),
			zap.Int("items", len(items)),
		)
	}

	return snap, issues
}

func (b *Builder) sourcePath(cat surface.Category) string {
	if filepath.IsAbs(cat.File) {
		return cat.File
	}
	return filepath.Join(b.FilesDir, cat.File)
}

// IsMissingInput reports whether err is a MissingInputError.
func IsMissingInput(err error) bool {
	var missing *MissingInputError
	return errors.As(err, &missing)
}
