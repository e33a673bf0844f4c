package stamp

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/quidome/photostamp/pkg/config"
)

var background = color.NRGBA{R: 40, G: 90, B: 140, A: 255}

func newStamper(t *testing.T, cfg config.WatermarkConfig) *Stamper {
	t.Helper()

	s, err := New(cfg, Options{FontPaths: []string{}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func solidImage(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write png: %v", err)
	}
}

func writeJPEG(t *testing.T, path string, img image.Image) {
	t.Helper()

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write jpeg: %v", err)
	}
}

func photosDir(t *testing.T) string {
	t.Helper()

	dir := filepath.Join(t.TempDir(), "photos")
	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	return dir
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.FontSize = 0

	_, err := New(cfg, Options{FontPaths: []string{}})
	if !errors.Is(err, config.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestNew_OutlineColor(t *testing.T) {
	black := color.RGBA{A: 0xff}
	white := color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}

	tests := []struct {
		color string
		want  color.Color
	}{
		{color: "white", want: black},
		{color: "red", want: black},
		{color: "black", want: white},
		{color: "#000000", want: white},
		{color: "#000", want: white},
	}

	for _, tt := range tests {
		t.Run(tt.color, func(t *testing.T) {
			cfg := config.Default()
			cfg.Color = tt.color

			s := newStamper(t, cfg)
			if s.outline != tt.want {
				t.Fatalf("outline = %v, want %v", s.outline, tt.want)
			}
		})
	}
}

func TestNew_MissingFontsFallBackToBitmap(t *testing.T) {
	s, err := New(config.Default(), Options{FontPaths: []string{filepath.Join(t.TempDir(), "missing.ttf")}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if s.face == nil {
		t.Fatalf("expected fallback face")
	}
}

func TestRender_DrawsFillAndOutlineInsidePlacement(t *testing.T) {
	s := newStamper(t, config.Default())
	src := solidImage(300, 200, background)

	out, p := s.Render(src, "2023-08-15")

	if out.Bounds() != src.Bounds() {
		t.Fatalf("bounds changed: %v", out.Bounds())
	}
	if p.Width <= 0 || p.Height <= 0 {
		t.Fatalf("empty placement %+v", p)
	}
	if want := Place(config.BottomRight, 300, 200, p.Width, p.Height); want != image.Pt(p.X, p.Y) {
		t.Fatalf("placement %+v, want corner %v", p, want)
	}

	box := image.Rect(p.X-1, p.Y-1, p.X+p.Width+1, p.Y+p.Height+1)
	var fill, outline bool
	for y := 0; y < 200; y++ {
		for x := 0; x < 300; x++ {
			c := out.NRGBAAt(x, y)
			if !image.Pt(x, y).In(box) {
				if c != background {
					t.Fatalf("pixel (%d,%d) outside text box changed to %v", x, y, c)
				}
				continue
			}
			switch c {
			case color.NRGBA{R: 255, G: 255, B: 255, A: 255}:
				fill = true
			case color.NRGBA{A: 255}:
				outline = true
			}
		}
	}
	if !fill {
		t.Fatalf("no fill pixels drawn")
	}
	if !outline {
		t.Fatalf("no outline pixels drawn")
	}
}

func TestRender_DoesNotMutateSource(t *testing.T) {
	s := newStamper(t, config.Default())
	src := solidImage(120, 80, background)
	before := append([]uint8(nil), src.Pix...)

	s.Render(src, "2023-08-15")

	if !bytes.Equal(before, src.Pix) {
		t.Fatalf("source image was modified")
	}
}

func TestRender_FlattensTransparencyOverWhite(t *testing.T) {
	s := newStamper(t, config.Default())
	src := solidImage(200, 100, color.NRGBA{})

	out, _ := s.Render(src, "2023-08-15")

	if got := out.NRGBAAt(0, 0); got != (color.NRGBA{R: 255, G: 255, B: 255, A: 255}) {
		t.Fatalf("transparent pixel became %v, want opaque white", got)
	}
	for i := 3; i < len(out.Pix); i += 4 {
		if out.Pix[i] != 0xff {
			t.Fatalf("output has non-opaque pixel at offset %d", i)
		}
	}
}

func TestStamp_WritesPNGToWatermarkDir(t *testing.T) {
	dir := photosDir(t)
	src := filepath.Join(dir, "beach.png")
	writePNG(t, src, solidImage(160, 90, background))
	original, err := os.ReadFile(src)
	if err != nil {
		t.Fatalf("read source: %v", err)
	}

	s := newStamper(t, config.Default())
	got, err := s.Stamp(src, "2023-08-15")
	if err != nil {
		t.Fatalf("Stamp: %v", err)
	}

	want := filepath.Join(dir, "photos_watermark", "beach.png")
	if got != want {
		t.Fatalf("Stamp() = %q, want %q", got, want)
	}

	f, err := os.Open(got)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer f.Close()
	img, format, err := image.Decode(f)
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if format != "png" {
		t.Fatalf("format = %q, want png", format)
	}
	if img.Bounds().Dx() != 160 || img.Bounds().Dy() != 90 {
		t.Fatalf("output size %v", img.Bounds())
	}

	after, err := os.ReadFile(src)
	if err != nil {
		t.Fatalf("read source: %v", err)
	}
	if !bytes.Equal(original, after) {
		t.Fatalf("source file was modified")
	}
}

func TestStamp_WritesJPEG(t *testing.T) {
	dir := photosDir(t)
	src := filepath.Join(dir, "IMG_0001.JPG")
	writeJPEG(t, src, solidImage(200, 120, background))

	cfg := config.Default()
	cfg.OutputQuality = 50
	cfg.Position = config.TopLeft

	got, err := newStamper(t, cfg).Stamp(src, "2020-01-01")
	if err != nil {
		t.Fatalf("Stamp: %v", err)
	}

	f, err := os.Open(got)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer f.Close()
	conf, format, err := image.DecodeConfig(f)
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if format != "jpeg" || conf.Width != 200 || conf.Height != 120 {
		t.Fatalf("unexpected output %s %dx%d", format, conf.Width, conf.Height)
	}
}

func TestStamp_OverwritesPreviousOutput(t *testing.T) {
	dir := photosDir(t)
	src := filepath.Join(dir, "a.png")
	writePNG(t, src, solidImage(100, 60, background))

	s := newStamper(t, config.Default())
	if _, err := s.Stamp(src, "2023-08-15"); err != nil {
		t.Fatalf("first Stamp: %v", err)
	}
	if _, err := s.Stamp(src, "2024-01-01"); err != nil {
		t.Fatalf("second Stamp: %v", err)
	}

	entries, err := os.ReadDir(filepath.Join(dir, "photos_watermark"))
	if err != nil {
		t.Fatalf("read output dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one output file, got %d", len(entries))
	}
}

func TestStamp_UnsupportedFormat(t *testing.T) {
	dir := photosDir(t)
	src := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(src, []byte("hello"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, err := newStamper(t, config.Default()).Stamp(src, "2023-08-15")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "photos_watermark")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("output directory should not exist, stat err = %v", err)
	}
}

func TestStamp_CorruptImage(t *testing.T) {
	dir := photosDir(t)
	src := filepath.Join(dir, "broken.jpg")
	if err := os.WriteFile(src, []byte("not a jpeg"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, err := newStamper(t, config.Default()).Stamp(src, "2023-08-15")
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
	if errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("corrupt image reported as unsupported: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "photos_watermark", "broken.jpg")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("no output expected, stat err = %v", err)
	}
}
