package datetaken

import (
	"fmt"
	"os"
	"strings"

	"github.com/rwcarlsen/goexif/exif"
)

// ExifExtractor decodes the embedded EXIF block (JPEG APP1 or TIFF) with goexif.
//
// DateTimeOriginal and DateTimeDigitized come from the Exif sub-IFD; when
// either is present the IFD0 DateTime is ignored.
type ExifExtractor struct{}

func (ExifExtractor) Source() Source { return SourceEXIF }

func (ExifExtractor) Extract(path string) (Fields, error) {
	f, err := os.Open(path)
	if err != nil {
		return Fields{}, err
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil && (x == nil || exif.IsCriticalError(err)) {
		return Fields{}, fmt.Errorf("%w: %v", ErrNoMetadata, err)
	}

	fields := Fields{
		DateTimeOriginal:  exifString(x, exif.DateTimeOriginal),
		DateTimeDigitized: exifString(x, exif.DateTimeDigitized),
		DateTime:          exifString(x, exif.DateTime),
	}
	fields.PreferExifBlock = fields.DateTimeOriginal != "" || fields.DateTimeDigitized != ""

	if fields.IsEmpty() {
		return Fields{}, fmt.Errorf("%w: no date tags in exif block", ErrNoMetadata)
	}
	return fields, nil
}

func exifString(x *exif.Exif, name exif.FieldName) string {
	tag, err := x.Get(name)
	if err != nil {
		return ""
	}
	s, err := tag.StringVal()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(strings.Trim(s, "\x00"))
}
