package mobi

import (
	"net/http"
	"strings"
)

// readCover locates the cover image. Strategies are tried in priority order:
//  1. EXTH cover offset, relative to the first image record
//  2. First <img recindex="..."> in the body markup
//
// The located record must sniff as an image. Any failure means no cover.
func (d *decoder) readCover(body string) *CoverImage {
	first := d.st.MOBI.FirstImageIndex
	if !first.in(len(d.records)) {
		return nil
	}

	// Strategy 1: EXTH cover offset.
	if off, ok := exthUint32(exthIndex(d.st.EXTH), EXTHCoverOffset); ok && off != unavailableIndex {
		if c := d.loadCoverImage(int64(first.Index) + int64(off)); c != nil {
			return c
		}
		d.warn("EXTH cover offset %d does not address an image record", off)
	}

	// Strategy 2: first image referenced by the text.
	if n, ok := findFirstImageRecIndex([]byte(body)); ok {
		return d.loadCoverImage(int64(first.Index) + int64(n) - 1)
	}
	return nil
}

// loadCoverImage reads record i and returns it when it holds an image.
func (d *decoder) loadCoverImage(i int64) *CoverImage {
	if i < 0 || i >= int64(len(d.records)) {
		return nil
	}
	data, err := d.readRecord(int(i))
	if err != nil || len(data) == 0 {
		return nil
	}
	mediaType := http.DetectContentType(data)
	if !isImageMediaType(mediaType) {
		return nil
	}
	return &CoverImage{
		RecordIndex: int(i),
		MediaType:   mediaType,
		Data:        data,
	}
}

// isImageMediaType returns true if the media type starts with "image/".
func isImageMediaType(mediaType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(mediaType)), "image/")
}
