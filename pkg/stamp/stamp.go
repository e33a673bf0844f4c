// Package stamp draws a date onto a copy of an image and saves it to the
// output directory.
package stamp

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/quidome/photostamp/pkg/config"
	"github.com/quidome/photostamp/pkg/output"
	"github.com/quidome/photostamp/pkg/scan"
)

// ErrUnsupportedFormat is returned for files whose extension is not a
// supported image format.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// outlineOffsets surround the fill position by one pixel in every direction.
var outlineOffsets = []image.Point{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

type Options struct {
	// FontPaths are tried in order. If nil, DefaultFontPaths is used; an
	// empty non-nil slice selects the built-in bitmap font.
	FontPaths []string

	Logger *log.Logger
}

// Stamper renders date text onto images according to a WatermarkConfig.
type Stamper struct {
	cfg     config.WatermarkConfig
	fill    color.Color
	outline color.Color
	face    font.Face
	logger  *log.Logger
}

// New validates cfg and loads the font once for all images.
func New(cfg config.WatermarkConfig, opts Options) (*Stamper, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	fill, err := config.ParseColor(cfg.Color)
	if err != nil {
		return nil, err
	}

	outline := color.RGBA{A: 0xff}
	if config.IsBlack(fill) {
		outline = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	s := &Stamper{
		cfg:     cfg,
		fill:    fill,
		outline: outline,
		logger:  logger,
	}

	paths := opts.FontPaths
	if paths == nil {
		paths = DefaultFontPaths
	}
	face, path := s.loadFace(paths, float64(cfg.FontSize))
	if path == "" {
		logger.Warn("no TrueType font found, using built-in bitmap font")
	} else {
		logger.Debug("loaded font", "path", path, "size", cfg.FontSize)
	}
	s.face = face

	return s, nil
}

// Stamp draws text onto a copy of the image at path and writes it to the
// output directory. It returns the output path. The source file is never
// modified.
func (s *Stamper) Stamp(path, text string) (string, error) {
	if !scan.IsSupported(path) {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
	format, err := imaging.FormatFromFilename(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}

	dst, err := output.Path(path)
	if err != nil {
		return "", err
	}

	src, err := imaging.Open(path)
	if err != nil {
		return "", fmt.Errorf("load image: %w", err)
	}

	img, placement := s.Render(src, text)

	err = output.WriteFile(dst, func(w io.Writer) error {
		return imaging.Encode(w, img, format,
			imaging.JPEGQuality(s.cfg.OutputQuality),
			imaging.PNGCompressionLevel(png.BestCompression),
		)
	})
	if err != nil {
		return "", fmt.Errorf("save image: %w", err)
	}

	s.logger.Debug("stamped image",
		"file", filepath.Base(path),
		"text", text,
		"x", placement.X,
		"y", placement.Y,
		"output", dst,
	)
	return dst, nil
}

// Render returns an opaque copy of img with text drawn on it, together with
// the box the text occupies.
func (s *Stamper) Render(img image.Image, text string) (*image.NRGBA, Placement) {
	dst := flatten(img)

	bounds, _ := font.BoundString(s.face, text)
	width := (bounds.Max.X - bounds.Min.X).Ceil()
	height := (bounds.Max.Y - bounds.Min.Y).Ceil()

	size := dst.Bounds().Size()
	at := Place(s.cfg.Position, size.X, size.Y, width, height)

	// Shift the origin so the ink box starts exactly at the placement.
	dot := fixed.Point26_6{
		X: fixed.I(at.X) - bounds.Min.X,
		Y: fixed.I(at.Y) - bounds.Min.Y,
	}

	for _, off := range outlineOffsets {
		s.draw(dst, s.outline, dot.Add(fixed.P(off.X, off.Y)), text)
	}
	s.draw(dst, s.fill, dot, text)

	return dst, Placement{X: at.X, Y: at.Y, Width: width, Height: height}
}

func (s *Stamper) draw(dst draw.Image, c color.Color, dot fixed.Point26_6, text string) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: s.face,
		Dot:  dot,
	}
	d.DrawString(text)
}

// flatten returns an opaque copy of img. Transparent pixels are composited
// over white.
func flatten(img image.Image) *image.NRGBA {
	if o, ok := img.(interface{ Opaque() bool }); ok && o.Opaque() {
		return imaging.Clone(img)
	}

	size := img.Bounds().Size()
	bg := imaging.New(size.X, size.Y, color.White)
	return imaging.Overlay(bg, img, image.Pt(0, 0), 1.0)
}
