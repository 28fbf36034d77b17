package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// decodedOutputPath names the default output after the source file and the
// file type found in its metadata: dir/{stem}_decoded.{ext}.
func decodedOutputPath(source, fileType string) (string, error) {
	ext := strings.TrimSpace(fileType)
	if ext == "" || strings.ContainsAny(ext, `/\`) || ext == "." || ext == ".." {
		return "", fmt.Errorf("cannot derive an output name from file type %q; set --output", fileType)
	}
	return filepath.Join(filepath.Dir(source), stem(source)+"_decoded."+ext), nil
}

// patchedOutputPath is the default for the patch command: dir/{stem}_patched{ext}.
func patchedOutputPath(source string) string {
	ext := filepath.Ext(source)
	if ext == "" {
		ext = ".melon"
	}
	return filepath.Join(filepath.Dir(source), stem(source)+"_patched"+ext)
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// resolveOutput returns the cleaned explicit output, or def, and makes sure
// the parent directory exists.
func resolveOutput(outFlag, def string) (string, error) {
	out := strings.TrimSpace(outFlag)
	if out == "" {
		out = def
	}
	out = filepath.Clean(out)
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return "", err
	}
	return out, nil
}
