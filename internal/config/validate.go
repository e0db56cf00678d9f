package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/ariel-frischer/apichangelog/internal/surface"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// SourceCommandLine names flag overrides in a ValidationError.
const SourceCommandLine = "command line"

// ValidationError describes a rejected configuration document or value.
type ValidationError struct {
	// Source is the config file the error came from, or SourceCommandLine.
	Source string
	Line   int
	Column int
	// Field is the config key path, e.g. "categories[2].shape".
	Field string
	// Category is the key of the tracked category Field belongs to.
	Category string
	Message  string
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString(e.Source)
	if e.Line > 0 {
		fmt.Fprintf(&b, ":%d:%d", e.Line, e.Column)
	}
	if e.Category != "" {
		fmt.Fprintf(&b, ": category %q", e.Category)
	}
	if e.Field != "" {
		fmt.Fprintf(&b, ": %s", e.Field)
	}
	fmt.Fprintf(&b, ": %s", e.Message)
	return b.String()
}

var validate = newValidator()

// newValidator reports fields by their koanf key and knows category shapes.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("koanf"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("shape", func(fl validator.FieldLevel) bool {
		_, err := surface.ParseShape(fl.Field().String())
		return err == nil
	}); err != nil {
		panic(err)
	}
	return v
}

// ValidateYAMLSyntax checks the YAML file at path, reporting the line and
// column of a syntax error. A missing or blank file is valid.
func ValidateYAMLSyntax(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return &ValidationError{Source: path, Message: err.Error()}
	}
	return validateYAML(data, path)
}

func validateYAML(data []byte, source string) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	var node yaml.Node
	err := yaml.Unmarshal(data, &node)
	if err == nil {
		return nil
	}

	// yaml.v3 reports "yaml: line 5: could not find expected ':'"
	verr := &ValidationError{Source: source, Message: strings.TrimPrefix(err.Error(), "yaml: ")}
	if n, _ := fmt.Sscanf(err.Error(), "yaml: line %d:", &verr.Line); n == 1 {
		verr.Column = 1
		if _, msg, ok := strings.Cut(verr.Message, ": "); ok {
			verr.Message = msg
		}
	}
	return verr
}

// Validate checks c once every layer and override has been applied. source
// names where the values came from in the returned *ValidationError.
func (c *Configuration) Validate(source string) error {
	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
			return &ValidationError{Source: source, Message: err.Error()}
		}
		fieldErr := fieldErrs[0]
		field := fieldErr.Namespace()
		if _, rest, ok := strings.Cut(field, "."); ok {
			field = rest
		}
		return &ValidationError{
			Source:   source,
			Field:    field,
			Category: c.categoryAt(field),
			Message:  validationMessage(fieldErr),
		}
	}

	if filepath.Clean(c.DumpPath) == filepath.Clean(c.StorePath) {
		return &ValidationError{Source: source, Field: "store_path", Message: "must differ from dump_path"}
	}

	store := filepath.Clean(c.StorePath)
	seenFiles := make(map[string]string, len(c.Categories))
	for i, cat := range c.Categories {
		field := fmt.Sprintf("categories[%d].file", i)
		if other, ok := seenFiles[cat.File]; ok {
			return &ValidationError{
				Source:   source,
				Field:    field,
				Category: cat.Key,
				Message:  fmt.Sprintf("%s is already tracked by category %q", cat.File, other),
			}
		}
		seenFiles[cat.File] = cat.Key

		if filepath.Join(c.FilesDir, cat.File) == store {
			return &ValidationError{
				Source:   source,
				Field:    field,
				Category: cat.Key,
				Message:  "resolves to the history store (store_path)",
			}
		}
	}
	return nil
}

// categoryAt returns the key of the category a field path such as
// "categories[2].shape" points into.
func (c *Configuration) categoryAt(field string) string {
	var i int
	if n, _ := fmt.Sscanf(field, "categories[%d]", &i); n != 1 || i < 0 || i >= len(c.Categories) {
		return ""
	}
	return c.Categories[i].Key
}

func validationMessage(fieldErr validator.FieldError) string {
	switch fieldErr.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", fieldErr.Param())
	case "shape":
		return fmt.Sprintf("must be one of: %v", surface.Shapes())
	case "unique":
		return fmt.Sprintf("must have a unique %s", strings.ToLower(fieldErr.Param()))
	default:
		return fmt.Sprintf("failed validation: %s", fieldErr.Tag())
	}
}
