// Package datetaken resolves the capture date of a photograph.
//
// Resolution walks an ordered list of metadata extractors (EXIF decoding,
// then a raw TIFF-block scan) and falls back to the file modification time
// when no embedded date is usable.
package datetaken
