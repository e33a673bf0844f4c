// Package output decides where stamped images go and writes them.
//
// Stamped copies live next to the originals, in a directory named after the
// parent directory with a "_watermark" suffix:
//
//	<parent>/<name.ext> -> <parent>/<parent-basename>_watermark/<name.ext>
package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// DirSuffix is appended to the parent directory name.
const DirSuffix = "_watermark"

// Dir returns the output directory for the source image src.
func Dir(src string) (string, error) {
	abs, err := filepath.Abs(src)
	if err != nil {
		return "", fmt.Errorf("resolve path: %w", err)
	}

	parent := filepath.Dir(abs)
	base := filepath.Base(parent)
	if base == string(filepath.Separator) || base == "." {
		base = ""
	}
	return filepath.Join(parent, base+DirSuffix), nil
}

// Path returns the output file path for the source image src.
func Path(src string) (string, error) {
	dir, err := Dir(src)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, filepath.Base(src)), nil
}

// WriteFile creates dst's directory and writes the content produced by write.
//
// Content goes to a temporary file in the destination directory which is
// renamed over dst once complete, so dst is either the previous file or the
// full new one. An existing dst is replaced.
func WriteFile(dst string, write func(io.Writer) error) (err error) {
	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(dst)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if err := write(tmp); err != nil {
		return fmt.Errorf("write content: %w", err)
	}

	// Ensure data is written to disk
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod: %w", err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
