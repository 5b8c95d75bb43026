package driver

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Source file extensions understood by the front end.
const (
	ValkyrieExt = ".valkyrie"
	RunicExt    = ".runic"
)

// IsSourcePath reports whether path carries a script extension.
func IsSourcePath(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ValkyrieExt || ext == RunicExt
}

// IsRunic reports whether path names rune-letter source that must be
// transliterated before scanning.
func IsRunic(path string) bool {
	return strings.EqualFold(filepath.Ext(path), RunicExt)
}

// LoadSource reads a script and returns canonical Valkyrie source text.
// Runic files go through t first; a nil t falls back to the built-in table.
func LoadSource(ctx context.Context, path string, t Transliterator) (string, error) {
	if !IsSourcePath(path) {
		return "", fmt.Errorf("%s: unsupported file extension (expected %s or %s)", path, ValkyrieExt, RunicExt)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	source := string(data)
	if !IsRunic(path) {
		return source, nil
	}
	if t == nil {
		t = NewRuneTable()
	}
	translated, err := t.Transliterate(ctx, source)
	if err != nil {
		return "", fmt.Errorf("transliterate %s: %w", path, err)
	}
	return translated, nil
}

// Compile converts a script to the other surface syntax: .runic files are
// transliterated to .valkyrie and .valkyrie files are encoded to .runic.
func Compile(ctx context.Context, path string, t Transliterator) (string, error) {
	if IsRunic(path) {
		return CompileRunic(ctx, path, t)
	}
	return CompileValkyrie(ctx, path)
}

// CompileRunic transliterates a .runic file and writes the result next to it
// as <name>.valkyrie, returning the path written.
func CompileRunic(ctx context.Context, path string, t Transliterator) (string, error) {
	if !IsRunic(path) {
		return "", fmt.Errorf("%s: expected a %s file", path, RunicExt)
	}
	source, err := LoadSource(ctx, path, t)
	if err != nil {
		return "", err
	}
	out := strings.TrimSuffix(path, filepath.Ext(path)) + ValkyrieExt
	if err := os.WriteFile(out, []byte(source), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", out, err)
	}
	return out, nil
}

// CompileValkyrie encodes a .valkyrie file with the built-in rune table and
// writes the result next to it as <name>.runic, returning the path written.
func CompileValkyrie(ctx context.Context, path string) (string, error) {
	if !IsSourcePath(path) || IsRunic(path) {
		return "", fmt.Errorf("%s: expected a %s file", path, ValkyrieExt)
	}
	source, err := LoadSource(ctx, path, nil)
	if err != nil {
		return "", err
	}
	out := strings.TrimSuffix(path, filepath.Ext(path)) + RunicExt
	if err := os.WriteFile(out, []byte(NewRuneTable().Encode(source)), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", out, err)
	}
	return out, nil
}
