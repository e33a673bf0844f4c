package datetaken

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
)

const (
	// DateLayout is the format of resolved dates.
	DateLayout = "2006-01-02"

	// ModTimeLayout is the format of Report.FileModificationTime.
	ModTimeLayout = "2006-01-02 15:04:05"
)

var (
	// ErrFileNotFound is returned when the input path is missing or not a regular file.
	ErrFileNotFound = errors.New("image file not found")

	// ErrNoDate is returned when no date could be resolved and the
	// modification-time fallback is disabled.
	ErrNoDate = errors.New("no date information found")

	// ErrNoMetadata is returned by extractors that found nothing usable.
	ErrNoMetadata = errors.New("no metadata")
)

// Source names the extractor that supplied metadata.
type Source string

const (
	SourceNone Source = "none"
	SourceEXIF Source = "exif"
	SourceRaw  Source = "raw"
)

// Fields holds the raw date strings an extractor found, exactly as stored in
// the metadata (typically "YYYY:MM:DD HH:MM:SS").
type Fields struct {
	DateTimeOriginal  string
	DateTimeDigitized string
	DateTime          string

	// PreferExifBlock marks that the Exif sub-IFD carried a capture date, in
	// which case the IFD0 DateTime is not consulted.
	PreferExifBlock bool
}

// IsEmpty reports whether no date field is set.
func (f Fields) IsEmpty() bool {
	return f.DateTimeOriginal == "" && f.DateTimeDigitized == "" && f.DateTime == ""
}

// Candidates returns the non-empty raw values in the order they are tried.
func (f Fields) Candidates() []string {
	values := []string{f.DateTimeOriginal, f.DateTimeDigitized}
	if !f.PreferExifBlock {
		values = append(values, f.DateTime)
	}

	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Extractor reads capture-time metadata from an image file.
//
// Implementations return ErrNoMetadata (possibly wrapped) when the file holds
// no usable metadata. Any other error is treated as an unexpected failure.
// Both make the resolver move on to the next extractor.
type Extractor interface {
	Source() Source
	Extract(path string) (Fields, error)
}

// DefaultExtractors returns the built-in extractors in priority order.
func DefaultExtractors() []Extractor {
	return []Extractor{ExifExtractor{}, RawExtractor{}}
}

// Report contains every timestamp considered for a file.
type Report struct {
	DateTimeOriginal     string `json:"datetime_original,omitempty"`
	DateTimeDigitized    string `json:"datetime_digitized,omitempty"`
	DateTime             string `json:"datetime_modified,omitempty"`
	FileModificationTime string `json:"file_modification_time"`
	ExifFound            bool   `json:"exif_found"`
	Source               Source `json:"source"`
}

// Options configures a Resolver.
type Options struct {
	// Extractors are tried in order. If nil, DefaultExtractors is used.
	Extractors []Extractor

	// DisableFallback turns off the modification-time fallback.
	DisableFallback bool

	// Location is used to convert the modification time. If nil, time.Local is used.
	Location *time.Location

	// Logger receives per-file diagnostics. If nil, nothing is logged.
	Logger *log.Logger
}

// Resolver determines the date a photograph was taken.
type Resolver struct {
	extractors []Extractor
	fallback   bool
	loc        *time.Location
	logger     *log.Logger
}

// New returns a Resolver configured by opts.
func New(opts Options) *Resolver {
	extractors := opts.Extractors
	if extractors == nil {
		extractors = DefaultExtractors()
	}
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	return &Resolver{
		extractors: extractors,
		fallback:   !opts.DisableFallback,
		loc:        loc,
		logger:     logger,
	}
}

// ResolveDate returns the capture date of path formatted as YYYY-MM-DD.
//
// The first extractor yielding a parseable date wins. Without one, the file
// modification date is used unless the fallback is disabled, in which case
// ErrNoDate is returned.
func (r *Resolver) ResolveDate(path string) (string, error) {
	info, err := r.stat(path)
	if err != nil {
		return "", err
	}
	name := filepath.Base(path)

	for _, ex := range r.extractors {
		fields, ok := r.extract(ex, path)
		if !ok {
			continue
		}
		for _, raw := range fields.Candidates() {
			if date, ok := ParseDate(raw); ok {
				r.logger.Debug("date taken resolved", "file", name, "source", ex.Source(), "raw", raw)
				return date, nil
			}
			r.logger.Debug("unparseable metadata date", "file", name, "source", ex.Source(), "raw", raw)
		}
	}

	if !r.fallback {
		r.logger.Warn("no date information found in metadata", "file", name)
		return "", fmt.Errorf("%w: %s", ErrNoDate, path)
	}

	date := info.ModTime().In(r.loc).Format(DateLayout)
	r.logger.Debug("using file modification date", "file", name, "date", date)
	return date, nil
}

// ResolveFull returns every timestamp available for path. It only fails when
// the file does not exist.
func (r *Resolver) ResolveFull(path string) (Report, error) {
	info, err := r.stat(path)
	if err != nil {
		return Report{}, err
	}

	report := Report{
		FileModificationTime: info.ModTime().In(r.loc).Format(ModTimeLayout),
		Source:               SourceNone,
	}

	for _, ex := range r.extractors {
		fields, ok := r.extract(ex, path)
		if !ok {
			continue
		}
		report.DateTimeOriginal = fields.DateTimeOriginal
		report.DateTimeDigitized = fields.DateTimeDigitized
		report.DateTime = fields.DateTime
		report.ExifFound = !fields.IsEmpty()
		report.Source = ex.Source()
		break
	}

	return report, nil
}

func (r *Resolver) stat(path string) (os.FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		r.logger.Error("image file not found", "path", path)
		return nil, fmt.Errorf("%w: %w", ErrFileNotFound, err)
	}
	if !info.Mode().IsRegular() {
		r.logger.Error("image path is not a regular file", "path", path)
		return nil, fmt.Errorf("%w: %s is not a regular file", ErrFileNotFound, path)
	}
	return info, nil
}

func (r *Resolver) extract(ex Extractor, path string) (Fields, bool) {
	fields, err := ex.Extract(path)
	switch {
	case errors.Is(err, ErrNoMetadata):
		r.logger.Debug("no metadata", "file", filepath.Base(path), "source", ex.Source(), "reason", err)
		return Fields{}, false
	case err != nil:
		r.logger.Warn("error reading metadata", "file", filepath.Base(path), "source", ex.Source(), "err", err)
		return Fields{}, false
	case fields.IsEmpty():
		return Fields{}, false
	}
	return fields, true
}
