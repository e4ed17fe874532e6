package mobi

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// extractMetadata converts the EXTH records into the public Metadata struct.
// Text payloads are decoded according to the format header's text encoding.
func extractMetadata(exth *EXTHHeader, encoding uint32) Metadata {
	idx := exthIndex(exth)
	if len(idx) == 0 {
		return Metadata{}
	}

	text := func(typ uint32) string {
		data, ok := idx[typ]
		if !ok {
			return ""
		}
		return strings.TrimSpace(decodeString(data, encoding))
	}

	md := Metadata{
		Author:       text(EXTHAuthor),
		Publisher:    text(EXTHPublisher),
		Imprint:      text(EXTHImprint),
		Description:  text(EXTHDescription),
		ISBN:         text(EXTHISBN),
		Subject:      text(EXTHSubject),
		Date:         text(EXTHPublishingDate),
		Contributor:  text(EXTHContributor),
		Rights:       text(EXTHRights),
		Type:         text(EXTHType),
		Source:       text(EXTHSource),
		ASIN:         text(EXTHASIN),
		UpdatedTitle: text(EXTHUpdatedTitle),
		Language:     text(EXTHLanguage),
	}

	// Creator software is a numeric record.
	if v, ok := exthUint32(idx, EXTHCreatorSoftware); ok {
		md.CreatorSoftware = strconv.FormatUint(uint64(v), 10)
	}

	return md
}

// exthUint32 returns a numeric EXTH payload. Payloads shorter than four
// bytes are not numeric and are ignored.
func exthUint32(idx map[uint32][]byte, typ uint32) (uint32, bool) {
	data, ok := idx[typ]
	if !ok || len(data) < 4 {
		return 0, false
	}
	return be32(data, 0), true
}

// decodeString decodes header text. Code page 1252 books are converted to
// UTF-8; everything else is taken as UTF-8 with invalid sequences replaced.
func decodeString(data []byte, encoding uint32) string {
	if encoding == EncodingCP1252 {
		if s, err := charmap.Windows1252.NewDecoder().Bytes(data); err == nil {
			return string(s)
		}
	}
	return decodeUTF8(data)
}

// decodeUTF8 converts data to a string. Each maximal ill-formed subsequence
// becomes one U+FFFD, so "\xFF\xFE" yields two replacement characters and a
// truncated multibyte sequence yields one.
func decodeUTF8(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}
	s, err := unicode.UTF8.NewDecoder().Bytes(data)
	if err != nil {
		return strings.ToValidUTF8(string(data), string(utf8.RuneError))
	}
	return string(s)
}

// decodeASCII converts data to a string, replacing every byte outside the
// 7-bit range with '?'.
func decodeASCII(data []byte) string {
	buf := make([]byte, len(data))
	for i, b := range data {
		if b > 0x7F {
			b = '?'
		}
		buf[i] = b
	}
	return string(buf)
}
