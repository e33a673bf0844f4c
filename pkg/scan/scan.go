package scan

import (
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// SupportedExtensions lists the image extensions that can be stamped.
var SupportedExtensions = []string{".jpg", ".jpeg", ".png", ".tiff", ".tif", ".bmp"}

var supported = normalizeExts(SupportedExtensions)

// IsSupported reports whether name has a supported image extension.
// The comparison is case-insensitive.
func IsSupported(name string) bool {
	return supported[strings.ToLower(filepath.Ext(name))]
}

type Record struct {
	Path          string    `json:"path"`
	FileSizeBytes int64     `json:"file_size_bytes"`
	ModTime       time.Time `json:"mod_time"`
}

// Scan lists the supported images directly inside root. Subdirectories are
// not descended into. Records are sorted by path.
func Scan(fsys fs.FS, root string) ([]Record, error) {
	entries, err := fs.ReadDir(fsys, root)
	if err != nil {
		return nil, err
	}

	var matches []Record
	for _, d := range entries {
		if !d.Type().IsRegular() {
			continue
		}
		if !IsSupported(d.Name()) {
			continue
		}

		info, err := d.Info()
		if err != nil {
			return nil, err
		}

		matches = append(matches, Record{
			Path:          path.Join(root, d.Name()),
			FileSizeBytes: info.Size(),
			ModTime:       info.ModTime(),
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Path < matches[j].Path
	})
	return matches, nil
}

func normalizeExts(exts []string) map[string]bool {
	m := make(map[string]bool, len(exts))
	for _, ext := range exts {
		e := strings.TrimSpace(strings.ToLower(ext))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		m[e] = true
	}
	return m
}
