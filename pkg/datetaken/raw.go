package datetaken

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rwcarlsen/goexif/tiff"
)

// TIFF tag IDs read by RawExtractor.
const (
	tagDateTime          uint16 = 0x0132
	tagExifIFDPointer    uint16 = 0x8769
	tagDateTimeOriginal  uint16 = 0x9003
	tagDateTimeDigitized uint16 = 0x9004
)

// maxPNGChunk bounds the chunk size accepted while looking for eXIf.
const maxPNGChunk = 64 << 20

var (
	exifHeader   = []byte("Exif\x00\x00")
	pngSignature = []byte("\x89PNG\r\n\x1a\n")
)

// RawExtractor locates the TIFF-structured metadata block itself (JPEG APP1
// segment, bare TIFF file or PNG eXIf chunk) and walks IFD0 and the Exif
// sub-IFD tag by tag.
//
// Tags are tried DateTimeOriginal, DateTimeDigitized, DateTime.
type RawExtractor struct{}

func (RawExtractor) Source() Source { return SourceRaw }

func (RawExtractor) Extract(path string) (Fields, error) {
	f, err := os.Open(path)
	if err != nil {
		return Fields{}, err
	}
	defer f.Close()

	block, err := tiffBlock(bufio.NewReader(f))
	if err != nil {
		return Fields{}, err
	}

	t, err := tiff.Decode(bytes.NewReader(block))
	if err != nil {
		return Fields{}, noMetadata(err)
	}
	if len(t.Dirs) == 0 {
		return Fields{}, fmt.Errorf("%w: tiff block has no IFD", ErrNoMetadata)
	}

	ifd0 := t.Dirs[0]
	fields := Fields{DateTime: dirString(ifd0, tagDateTime)}

	if ptr := findTag(ifd0, tagExifIFDPointer); ptr != nil {
		if sub, err := subIFD(block, t.Order, ptr); err == nil {
			fields.DateTimeOriginal = dirString(sub, tagDateTimeOriginal)
			fields.DateTimeDigitized = dirString(sub, tagDateTimeDigitized)
		}
	}

	if fields.IsEmpty() {
		return Fields{}, fmt.Errorf("%w: no date tags in tiff block", ErrNoMetadata)
	}
	return fields, nil
}

func noMetadata(err error) error {
	return fmt.Errorf("%w: %v", ErrNoMetadata, err)
}

// tiffBlock returns the bytes of the TIFF structure holding the metadata.
// Offsets inside the block are relative to its first byte.
func tiffBlock(r *bufio.Reader) ([]byte, error) {
	head, err := r.Peek(len(pngSignature))
	if err != nil {
		return nil, noMetadata(err)
	}

	switch {
	case bytes.HasPrefix(head, []byte("II*\x00")), bytes.HasPrefix(head, []byte("MM\x00*")):
		return io.ReadAll(r)
	case head[0] == 0xFF && head[1] == 0xD8:
		return jpegExifBlock(r)
	case bytes.Equal(head, pngSignature):
		return pngExifBlock(r)
	}
	return nil, fmt.Errorf("%w: unrecognized container", ErrNoMetadata)
}

func jpegExifBlock(r *bufio.Reader) ([]byte, error) {
	if _, err := r.Discard(2); err != nil {
		return nil, noMetadata(err)
	}

	for {
		marker, err := jpegMarker(r)
		if err != nil {
			return nil, noMetadata(err)
		}

		switch {
		case marker == 0x01 || (marker >= 0xD0 && marker <= 0xD7):
			// standalone markers carry no length
			continue
		case marker == 0xDA || marker == 0xD9:
			return nil, fmt.Errorf("%w: no exif segment before image data", ErrNoMetadata)
		}

		var length uint16
		if err := binary.Read(r, binary.BigEndian, &length); err != nil {
			return nil, noMetadata(err)
		}
		if length < 2 {
			return nil, fmt.Errorf("%w: bad segment length %d", ErrNoMetadata, length)
		}

		payload := make([]byte, int(length)-2)
		if _, err := io.ReadFull(r, payload); err != nil {
			return nil, noMetadata(err)
		}
		if marker == 0xE1 && bytes.HasPrefix(payload, exifHeader) {
			return payload[len(exifHeader):], nil
		}
	}
}

func jpegMarker(r *bufio.Reader) (byte, error) {
	b, err := r.ReadByte()
	if err != nil {
		return 0, err
	}
	if b != 0xFF {
		return 0, fmt.Errorf("expected jpeg marker, got 0x%02x", b)
	}
	for b == 0xFF {
		if b, err = r.ReadByte(); err != nil {
			return 0, err
		}
	}
	return b, nil
}

func pngExifBlock(r *bufio.Reader) ([]byte, error) {
	if _, err := r.Discard(len(pngSignature)); err != nil {
		return nil, noMetadata(err)
	}

	for {
		var length uint32
		if err := binary.Read(r, binary.BigEndian, &length); err != nil {
			return nil, noMetadata(err)
		}
		var kind [4]byte
		if _, err := io.ReadFull(r, kind[:]); err != nil {
			return nil, noMetadata(err)
		}
		if length > maxPNGChunk {
			return nil, fmt.Errorf("%w: png chunk %q too large", ErrNoMetadata, kind[:])
		}

		switch string(kind[:]) {
		case "IEND":
			return nil, fmt.Errorf("%w: no eXIf chunk", ErrNoMetadata)
		case "eXIf":
			data := make([]byte, length)
			if _, err := io.ReadFull(r, data); err != nil {
				return nil, noMetadata(err)
			}
			return data, nil
		}

		// skip data and CRC
		if _, err := r.Discard(int(length) + 4); err != nil {
			return nil, noMetadata(err)
		}
	}
}

func subIFD(block []byte, order binary.ByteOrder, ptr *tiff.Tag) (*tiff.Dir, error) {
	offset, err := ptr.Int64(0)
	if err != nil {
		return nil, err
	}
	if offset <= 0 || offset >= int64(len(block)) {
		return nil, fmt.Errorf("exif ifd offset %d out of range", offset)
	}

	r := bytes.NewReader(block)
	if _, err := r.Seek(offset, io.SeekStart); err != nil {
		return nil, err
	}
	dir, _, err := tiff.DecodeDir(r, order)
	return dir, err
}

func findTag(dir *tiff.Dir, id uint16) *tiff.Tag {
	for _, tag := range dir.Tags {
		if tag.Id == id {
			return tag
		}
	}
	return nil
}

func dirString(dir *tiff.Dir, id uint16) string {
	tag := findTag(dir, id)
	if tag == nil {
		return ""
	}
	s, err := tag.StringVal()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(strings.Trim(s, "\x00"))
}
