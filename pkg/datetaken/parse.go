package datetaken

import (
	"strings"
	"time"
)

// Layouts tried on the first ten characters once the EXIF convention fails.
var fallbackLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"02/01/2006",
}

// ParseDate normalizes a metadata date string to YYYY-MM-DD.
//
// The EXIF convention "YYYY:MM:DD[ HH:MM:SS]" is tried first on the part
// before the first space, then ISO, slash and day-first layouts on the first
// ten characters. ok is false when nothing matches.
func ParseDate(raw string) (date string, ok bool) {
	s := strings.TrimSpace(strings.Trim(raw, "\x00"))
	if s == "" {
		return "", false
	}

	datePart, _, _ := strings.Cut(s, " ")
	if t, err := time.Parse("2006:01:02", datePart); err == nil {
		return t.Format(DateLayout), true
	}

	head := s
	if len(head) > 10 {
		head = head[:10]
	}
	for _, layout := range fallbackLayouts {
		if t, err := time.Parse(layout, head); err == nil {
			return t.Format(DateLayout), true
		}
	}

	return "", false
}
