package datetaken

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

type exifTags struct {
	DateTime          string
	DateTimeOriginal  string
	DateTimeDigitized string
}

type asciiTag struct {
	id    uint16
	value string
}

// buildTIFF encodes a little-endian TIFF block with IFD0 and, when needed, an
// Exif sub-IFD holding the capture dates.
func buildTIFF(tags exifTags) []byte {
	order := binary.LittleEndian

	var ifd0, sub []asciiTag
	if tags.DateTime != "" {
		ifd0 = append(ifd0, asciiTag{tagDateTime, tags.DateTime})
	}
	if tags.DateTimeOriginal != "" {
		sub = append(sub, asciiTag{tagDateTimeOriginal, tags.DateTimeOriginal})
	}
	if tags.DateTimeDigitized != "" {
		sub = append(sub, asciiTag{tagDateTimeDigitized, tags.DateTimeDigitized})
	}
	hasSub := len(sub) > 0

	ifd0Count := len(ifd0)
	if hasSub {
		ifd0Count++
	}
	subOffset := 8 + 2 + 12*ifd0Count + 4
	dataOffset := subOffset
	if hasSub {
		dataOffset += 2 + 12*len(sub) + 4
	}

	var data bytes.Buffer
	var buf bytes.Buffer
	write := func(v any) { _ = binary.Write(&buf, order, v) }

	writeIFD := func(entries []asciiTag, pointer bool) {
		count := len(entries)
		if pointer {
			count++
		}
		write(uint16(count))
		for _, e := range entries {
			value := append([]byte(e.value), 0)
			write(e.id)
			write(uint16(2)) // ASCII
			write(uint32(len(value)))
			if len(value) <= 4 {
				inline := make([]byte, 4)
				copy(inline, value)
				buf.Write(inline)
				continue
			}
			write(uint32(dataOffset + data.Len()))
			data.Write(value)
			if data.Len()%2 == 1 {
				data.WriteByte(0)
			}
		}
		if pointer {
			write(tagExifIFDPointer)
			write(uint16(4)) // LONG
			write(uint32(1))
			write(uint32(subOffset))
		}
		write(uint32(0))
	}

	buf.WriteString("II")
	write(uint16(42))
	write(uint32(8))
	writeIFD(ifd0, hasSub)
	if hasSub {
		writeIFD(sub, false)
	}
	buf.Write(data.Bytes())
	return buf.Bytes()
}

func testImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 16), G: uint8(y * 16), B: 128, A: 255})
		}
	}
	return img
}

// exifJPEG returns a decodable JPEG whose first segment after SOI is an
// Exif APP1 segment built from tags.
func exifJPEG(t *testing.T, tags exifTags) []byte {
	t.Helper()

	var plain bytes.Buffer
	if err := jpeg.Encode(&plain, testImage(), nil); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}

	payload := append([]byte("Exif\x00\x00"), buildTIFF(tags)...)

	var out bytes.Buffer
	out.Write(plain.Bytes()[:2])
	out.Write([]byte{0xFF, 0xE1})
	_ = binary.Write(&out, binary.BigEndian, uint16(len(payload)+2))
	out.Write(payload)
	out.Write(plain.Bytes()[2:])
	return out.Bytes()
}

// exifPNG returns a PNG carrying the TIFF block in an eXIf chunk before IEND.
func exifPNG(t *testing.T, tags exifTags) []byte {
	t.Helper()

	var plain bytes.Buffer
	if err := png.Encode(&plain, testImage()); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	raw := plain.Bytes()
	iend := len(raw) - 12

	block := buildTIFF(tags)
	var chunk bytes.Buffer
	_ = binary.Write(&chunk, binary.BigEndian, uint32(len(block)))
	chunk.WriteString("eXIf")
	chunk.Write(block)
	crc := crc32.NewIEEE()
	crc.Write([]byte("eXIf"))
	crc.Write(block)
	_ = binary.Write(&chunk, binary.BigEndian, crc.Sum32())

	var out bytes.Buffer
	out.Write(raw[:iend])
	out.Write(chunk.Bytes())
	out.Write(raw[iend:])
	return out.Bytes()
}

func plainJPEG(t *testing.T) []byte {
	t.Helper()

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, testImage(), nil); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	return buf.Bytes()
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	return path
}
