package testutil

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"
)

var (
	// binaryPath caches the built apichangelog binary path.
	binaryPath      string
	binaryBuildOnce sync.Once
	binaryBuildErr  error
)

// E2EEnv runs the apichangelog binary inside an isolated Workspace with a
// project config pointing at it. HOME and XDG_CONFIG_HOME are redirected so
// no user config leaks in.
type E2EEnv struct {
	*Workspace

	t      *testing.T
	binDir string
}

// CommandResult captures the result of running an apichangelog command.
type CommandResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// NewE2EEnv builds the binary (once per test binary) and prepares a workspace.
func NewE2EEnv(t *testing.T) *E2EEnv {
	t.Helper()

	binaryBuildOnce.Do(func() {
		binaryPath, binaryBuildErr = buildBinary()
	})
	if binaryBuildErr != nil {
		t.Fatalf("building apichangelog: %v", binaryBuildErr)
	}

	env := &E2EEnv{
		Workspace: NewWorkspace(t),
		t:         t,
	}
	env.binDir = filepath.Join(env.Root, "bin")
	if err := os.MkdirAll(env.binDir, 0o755); err != nil {
		t.Fatalf("creating bin directory: %v", err)
	}
	content, err := os.ReadFile(binaryPath)
	if err != nil {
		t.Fatalf("reading apichangelog binary: %v", err)
	}
	if err := os.WriteFile(filepath.Join(env.binDir, "apichangelog"), content, 0o755); err != nil {
		t.Fatalf("writing apichangelog binary: %v", err)
	}

	env.WriteProjectConfig("")
	return env
}

func buildBinary() (string, error) {
	_, currentFile, _, ok := runtime.Caller(0)
	if !ok {
		return "", errors.New("determining current file location")
	}
	repoRoot := filepath.Join(filepath.Dir(currentFile), "..", "..")

	tmpDir, err := os.MkdirTemp("", "apichangelog-build-*")
	if err != nil {
		return "", fmt.Errorf("creating temp dir for build: %w", err)
	}

	out := filepath.Join(tmpDir, "apichangelog")
	cmd := exec.Command("go", "build", "-o", out, "./cmd/apichangelog")
	cmd.Dir = repoRoot
	if output, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("go build: %w\nOutput: %s", err, output)
	}
	return out, nil
}

// WriteProjectConfig writes .apichangelog/config.yml tracking Categories,
// followed by extra YAML.
func (e *E2EEnv) WriteProjectConfig(extra string) {
	e.t.Helper()

	var b strings.Builder
	b.WriteString("dump_path: dump\n")
	b.WriteString("files_dir: files\n")
	b.WriteString("store_path: history/changelog.json\n")
	b.WriteString("record_commit: false\n")
	b.WriteString("categories:\n")
	for _, c := range Categories() {
		fmt.Fprintf(&b, "  - key: %s\n    name: %s\n    file: %s\n    shape: %s\n", c.Key, c.Name, c.File, c.Shape)
	}
	b.WriteString(extra)

	dir := filepath.Join(e.Root, ".apichangelog")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		e.t.Fatalf("creating config dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.yml"), []byte(b.String()), 0o644); err != nil {
		e.t.Fatalf("writing project config: %v", err)
	}
}

// Run executes apichangelog with args in the workspace root.
func (e *E2EEnv) Run(args ...string) CommandResult {
	e.t.Helper()

	start := time.Now()
	cmd := exec.Command(filepath.Join(e.binDir, "apichangelog"), args...)
	cmd.Dir = e.Root
	cmd.Env = e.isolatedEnv()

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()

	result := CommandResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		} else {
			result.ExitCode = -1
		}
	}
	return result
}

func (e *E2EEnv) isolatedEnv() []string {
	env := []string{
		"PATH=" + os.Getenv("PATH"),
		"HOME=" + e.Root,
		"XDG_CONFIG_HOME=" + filepath.Join(e.Root, ".config"),
		"NO_COLOR=1",
	}
	for _, key := range []string{"LANG", "LC_ALL", "TMPDIR", "TMP", "TEMP"} {
		if val, ok := os.LookupEnv(key); ok {
			env = append(env, key+"="+val)
		}
	}
	return env
}
