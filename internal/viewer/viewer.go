// Package viewer drives the external viewer that turns a patched container
// into a PDF, and collects the file it produces.
package viewer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/samcharles93/melon/internal/logger"
)

// DefaultExecutable is where the vendor installer puts the viewer.
const DefaultExecutable = `C:\Program Files (x86)\Melonbooks\melonbooksviewer\melonbooksviewer.exe`

const (
	DefaultTimeout      = 60 * time.Second
	DefaultPollInterval = 250 * time.Millisecond

	tempPrefix = "temp-"
	tempSuffix = ".melon"
)

var (
	ErrMissingExecutable = errors.New("viewer executable not found")
	ErrMissingSource     = errors.New("source file not found")
	ErrTimeout           = errors.New("timed out waiting for viewer output")
)

// ExternalToolError reports a viewer process that could not be started or
// exited with a failure status before producing its output.
type ExternalToolError struct {
	Path     string
	ExitCode int
	Err      error
}

func (e *ExternalToolError) Error() string {
	if e.ExitCode > 0 {
		return fmt.Sprintf("viewer %s exited with status %d", e.Path, e.ExitCode)
	}
	return fmt.Sprintf("viewer %s: %v", e.Path, e.Err)
}

func (e *ExternalToolError) Unwrap() error { return e.Err }

// DefaultArtifactPath is the file the viewer writes its decoded PDF to.
func DefaultArtifactPath() string {
	return filepath.Join(os.TempDir(), "Melonbooks", "temporary.pdf")
}

// Config controls a Runner. Zero values are replaced by defaults.
type Config struct {
	Executable   string
	ArtifactPath string
	// WorkDir receives the temporary patched container.
	WorkDir      string
	Timeout      time.Duration
	PollInterval time.Duration
	// KeepTemp leaves the patched container on disk after the run.
	KeepTemp bool
}

func (c Config) withDefaults() Config {
	if c.Executable == "" {
		c.Executable = DefaultExecutable
	}
	if c.ArtifactPath == "" {
		c.ArtifactPath = DefaultArtifactPath()
	}
	if c.WorkDir == "" {
		c.WorkDir = "."
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	return c
}

// Runner runs the viewer on patched containers.
type Runner struct {
	cfg Config
	log logger.Logger
}

func New(cfg Config, log logger.Logger) *Runner {
	if log == nil {
		log = logger.Default()
	}
	return &Runner{cfg: cfg.withDefaults(), log: log}
}

// Config returns the effective configuration.
func (r *Runner) Config() Config { return r.cfg }

// Preflight checks the viewer executable, then the source file.
func (r *Runner) Preflight(source string) error {
	if err := checkExecutable(r.cfg.Executable); err != nil {
		return err
	}
	st, err := os.Stat(source)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrMissingSource, source)
		}
		return err
	}
	if st.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrMissingSource, source)
	}
	return nil
}

// Decode writes patched to a temporary file, runs the viewer on it and
// copies the viewer's output to output. The temporary file is removed on
// every return path unless KeepTemp is set.
func (r *Runner) Decode(ctx context.Context, patched []byte, output string) error {
	if err := checkExecutable(r.cfg.Executable); err != nil {
		return err
	}

	tmp := filepath.Join(r.cfg.WorkDir, tempPrefix+uuid.NewString()+tempSuffix)
	if err := os.WriteFile(tmp, patched, 0o644); err != nil {
		return fmt.Errorf("write temp container: %w", err)
	}
	r.log.Debug("wrote patched container", "path", tmp, "bytes", len(patched))
	if !r.cfg.KeepTemp {
		defer func() {
			if rmErr := os.Remove(tmp); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
				r.log.Warn("could not remove temp container", "path", tmp, "error", rmErr)
			}
		}()
	}

	if err := os.Remove(r.cfg.ArtifactPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove stale viewer output: %w", err)
	}

	abs, err := filepath.Abs(tmp)
	if err != nil {
		return err
	}
	cmd := exec.Command(r.cfg.Executable, abs)
	if err := cmd.Start(); err != nil {
		return &ExternalToolError{Path: r.cfg.Executable, Err: err}
	}
	r.log.Info("started viewer", "pid", cmd.Process.Pid)

	exited := make(chan error, 1)
	go func() { exited <- cmd.Wait() }()

	if err := r.waitArtifact(ctx, cmd, exited); err != nil {
		return err
	}

	r.log.Info("copying viewer output", "from", r.cfg.ArtifactPath, "to", output)
	return copyFile(r.cfg.ArtifactPath, output)
}

// waitArtifact polls until the artifact exists with the same non-zero size
// on two consecutive polls. Once the viewer has exited, a non-empty
// artifact is final.
func (r *Runner) waitArtifact(ctx context.Context, cmd *exec.Cmd, exited <-chan error) error {
	ticker := time.NewTicker(r.cfg.PollInterval)
	defer ticker.Stop()
	deadline := time.NewTimer(r.cfg.Timeout)
	defer deadline.Stop()

	running := true
	stop := func() {
		if running {
			_ = cmd.Process.Kill()
		}
	}

	lastSize := int64(-1)
	for {
		select {
		case <-ctx.Done():
			stop()
			return ctx.Err()
		case <-deadline.C:
			stop()
			return fmt.Errorf("%w after %s (%s)", ErrTimeout, r.cfg.Timeout, r.cfg.ArtifactPath)
		case err := <-exited:
			running = false
			exited = nil
			if err != nil {
				if st, statErr := os.Stat(r.cfg.ArtifactPath); statErr == nil && st.Size() > 0 {
					r.log.Warn("viewer exited with an error after writing its output", "error", err)
					return nil
				}
				toolErr := &ExternalToolError{Path: r.cfg.Executable, Err: err}
				var exitErr *exec.ExitError
				if errors.As(err, &exitErr) {
					toolErr.ExitCode = exitErr.ExitCode()
				}
				return toolErr
			}
			r.log.Debug("viewer exited")
		case <-ticker.C:
			st, err := os.Stat(r.cfg.ArtifactPath)
			if err != nil || st.Size() == 0 {
				continue
			}
			if st.Size() == lastSize {
				return nil
			}
			lastSize = st.Size()
		}
	}
}

// copyFile copies src to dst and carries over the modification time.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	st, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Chtimes(dst, st.ModTime(), st.ModTime())
}
