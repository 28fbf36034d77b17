package viewer

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/samcharles93/melon/internal/logger"
)

func quietLogger() logger.Logger {
	return logger.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeViewer writes a shell script standing in for the viewer. The script
// body sees the container path as $1 and the artifact path as $ARTIFACT.
func fakeViewer(t *testing.T, artifact, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake viewer is a shell script")
	}
	path := filepath.Join(t.TempDir(), "viewer.sh")
	script := "#!/bin/sh\nARTIFACT='" + artifact + "'\n" + body + "\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write fake viewer: %v", err)
	}
	return path
}

func tempFiles(t *testing.T, dir string) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, tempPrefix+"*"+tempSuffix))
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	return matches
}

func testConfig(t *testing.T, exe, artifact string) Config {
	return Config{
		Executable:   exe,
		ArtifactPath: artifact,
		WorkDir:      t.TempDir(),
		Timeout:      5 * time.Second,
		PollInterval: 10 * time.Millisecond,
	}
}

func TestDecodeCopiesArtifact(t *testing.T) {
	artifact := filepath.Join(t.TempDir(), "temporary.pdf")
	exe := fakeViewer(t, artifact, `cp "$1" "$ARTIFACT"`)
	cfg := testConfig(t, exe, artifact)
	output := filepath.Join(t.TempDir(), "book_decoded.jpg")

	patched := []byte("RIFF patched container")
	r := New(cfg, quietLogger())
	if err := r.Decode(context.Background(), patched, output); err != nil {
		t.Fatalf("decode: %v", err)
	}

	got, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !bytes.Equal(got, patched) {
		t.Fatalf("output mismatch: %q", got)
	}
	if left := tempFiles(t, cfg.WorkDir); len(left) != 0 {
		t.Fatalf("temp container not removed: %v", left)
	}
}

func TestDecodeKeepTemp(t *testing.T) {
	artifact := filepath.Join(t.TempDir(), "temporary.pdf")
	exe := fakeViewer(t, artifact, `cp "$1" "$ARTIFACT"`)
	cfg := testConfig(t, exe, artifact)
	cfg.KeepTemp = true

	r := New(cfg, quietLogger())
	if err := r.Decode(context.Background(), []byte("data"), filepath.Join(t.TempDir(), "out.pdf")); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if left := tempFiles(t, cfg.WorkDir); len(left) != 1 {
		t.Fatalf("expected temp container to be kept, found %v", left)
	}
}

func TestDecodeViewerFailure(t *testing.T) {
	artifact := filepath.Join(t.TempDir(), "temporary.pdf")
	exe := fakeViewer(t, artifact, "exit 3")
	cfg := testConfig(t, exe, artifact)

	r := New(cfg, quietLogger())
	err := r.Decode(context.Background(), []byte("data"), filepath.Join(t.TempDir(), "out.pdf"))
	var toolErr *ExternalToolError
	if !errors.As(err, &toolErr) {
		t.Fatalf("expected ExternalToolError, got %v", err)
	}
	if toolErr.ExitCode != 3 {
		t.Fatalf("exit code: got %d", toolErr.ExitCode)
	}
	if left := tempFiles(t, cfg.WorkDir); len(left) != 0 {
		t.Fatalf("temp container not removed after failure: %v", left)
	}
}

func TestDecodeFailedExitAfterOutput(t *testing.T) {
	artifact := filepath.Join(t.TempDir(), "temporary.pdf")
	exe := fakeViewer(t, artifact, `cp "$1" "$ARTIFACT"; exit 2`)
	cfg := testConfig(t, exe, artifact)
	cfg.PollInterval = time.Second
	output := filepath.Join(t.TempDir(), "out.pdf")

	r := New(cfg, quietLogger())
	if err := r.Decode(context.Background(), []byte("data"), output); err != nil {
		t.Fatalf("decode: %v", err)
	}
	got, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(got) != "data" {
		t.Fatalf("output mismatch: %q", got)
	}
}

func TestDecodeTimeout(t *testing.T) {
	artifact := filepath.Join(t.TempDir(), "temporary.pdf")
	exe := fakeViewer(t, artifact, "exit 0")
	cfg := testConfig(t, exe, artifact)
	cfg.Timeout = 200 * time.Millisecond

	r := New(cfg, quietLogger())
	err := r.Decode(context.Background(), []byte("data"), filepath.Join(t.TempDir(), "out.pdf"))
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	if left := tempFiles(t, cfg.WorkDir); len(left) != 0 {
		t.Fatalf("temp container not removed after timeout: %v", left)
	}
}

func TestDecodeRemovesStaleArtifact(t *testing.T) {
	artifact := filepath.Join(t.TempDir(), "temporary.pdf")
	if err := os.WriteFile(artifact, []byte("stale output"), 0o644); err != nil {
		t.Fatalf("write stale artifact: %v", err)
	}
	exe := fakeViewer(t, artifact, "exit 0")
	cfg := testConfig(t, exe, artifact)
	cfg.Timeout = 200 * time.Millisecond

	r := New(cfg, quietLogger())
	err := r.Decode(context.Background(), []byte("data"), filepath.Join(t.TempDir(), "out.pdf"))
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("stale artifact must not satisfy the wait, got %v", err)
	}
}

func TestDecodeContextCancel(t *testing.T) {
	artifact := filepath.Join(t.TempDir(), "temporary.pdf")
	exe := fakeViewer(t, artifact, "sleep 5")
	cfg := testConfig(t, exe, artifact)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	r := New(cfg, quietLogger())
	err := r.Decode(ctx, []byte("data"), filepath.Join(t.TempDir(), "out.pdf"))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestPreflight(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relies on unix permission bits")
	}
	dir := t.TempDir()
	exe := filepath.Join(dir, "viewer")
	if err := os.WriteFile(exe, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatalf("write exe: %v", err)
	}
	noExec := filepath.Join(dir, "viewer.txt")
	if err := os.WriteFile(noExec, []byte("x"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	source := filepath.Join(dir, "book.melon")
	if err := os.WriteFile(source, []byte("RIFF"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}

	tests := []struct {
		name   string
		exe    string
		source string
		want   error
	}{
		{"ok", exe, source, nil},
		{"missing exe", filepath.Join(dir, "nope.exe"), source, ErrMissingExecutable},
		{"exe checked first", filepath.Join(dir, "nope.exe"), filepath.Join(dir, "nope.melon"), ErrMissingExecutable},
		{"not executable", noExec, source, ErrMissingExecutable},
		{"directory exe", dir, source, ErrMissingExecutable},
		{"missing source", exe, filepath.Join(dir, "nope.melon"), ErrMissingSource},
		{"directory source", exe, dir, ErrMissingSource},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := New(Config{Executable: tc.exe}, quietLogger())
			err := r.Preflight(tc.source)
			if tc.want == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestConfigDefaults(t *testing.T) {
	t.Parallel()

	cfg := Config{}.withDefaults()
	if cfg.Executable != DefaultExecutable {
		t.Fatalf("executable: %q", cfg.Executable)
	}
	if cfg.Timeout != DefaultTimeout || cfg.PollInterval != DefaultPollInterval {
		t.Fatalf("timing defaults: %s %s", cfg.Timeout, cfg.PollInterval)
	}
	if !strings.HasSuffix(cfg.ArtifactPath, filepath.Join("Melonbooks", "temporary.pdf")) {
		t.Fatalf("artifact path: %q", cfg.ArtifactPath)
	}
	if cfg.WorkDir != "." {
		t.Fatalf("work dir: %q", cfg.WorkDir)
	}
}
