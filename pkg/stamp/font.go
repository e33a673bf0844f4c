package stamp

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
)

// DefaultFontPaths are the system fonts tried in order.
var DefaultFontPaths = []string{
	"C:/Windows/Fonts/arial.ttf",
	"C:/Windows/Fonts/calibri.ttf",
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/truetype/liberation/LiberationSans-Regular.ttf",
	"/Library/Fonts/Arial.ttf",
	"/System/Library/Fonts/Helvetica.ttc",
}

// loadFace returns a face for the first loadable font in paths at size
// points (72 DPI, so points equal pixels). It returns basicfont.Face7x13 and
// an empty path when none can be loaded.
func (s *Stamper) loadFace(paths []string, size float64) (font.Face, string) {
	for _, p := range paths {
		face, err := openFace(p, size)
		if err != nil {
			s.logger.Debug("font not usable", "path", p, "err", err)
			continue
		}
		return face, p
	}
	return basicfont.Face7x13, ""
}

func openFace(path string, size float64) (font.Face, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if strings.EqualFold(filepath.Ext(path), ".ttc") {
		coll, err := opentype.ParseCollection(data)
		if err != nil {
			return nil, fmt.Errorf("parse collection: %w", err)
		}
		f, err := coll.Font(0)
		if err != nil {
			return nil, fmt.Errorf("collection font: %w", err)
		}
		return opentype.NewFace(f, &opentype.FaceOptions{
			Size:    size,
			DPI:     72,
			Hinting: font.HintingFull,
		})
	}

	f, err := truetype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse truetype: %w", err)
	}
	return truetype.NewFace(f, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	}), nil
}
