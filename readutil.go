package mobi

import (
	"encoding/binary"
	"fmt"
	"io"
)

// defaultMaxRecordSize is the default upper bound on a single record window.
// It guards against directories whose offsets describe absurdly large
// records. Defaults to 64 MB.
const defaultMaxRecordSize int64 = 64 * 1024 * 1024

// cursor is the exclusive read position over one input source. All header
// readers advance or seek it; it is not safe for concurrent use.
type cursor struct {
	*io.SectionReader
}

func newCursor(r io.ReaderAt, size int64) *cursor {
	return &cursor{SectionReader: io.NewSectionReader(r, 0, size)}
}

// position returns the current read offset.
func (c *cursor) position() int64 {
	pos, _ := c.Seek(0, io.SeekCurrent)
	return pos
}

// seek moves the cursor to an absolute offset.
func (c *cursor) seek(off int64) error {
	if off < 0 || off > c.Size() {
		return fmt.Errorf("mobi: seek to %d outside input of %d bytes", off, c.Size())
	}
	_, err := c.Seek(off, io.SeekStart)
	return err
}

// next reads exactly n bytes at the current position.
// A short read returns io.ErrUnexpectedEOF (or io.EOF when nothing was read).
func (c *cursor) next(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(c, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// tryNext is next for optional sections: it reports false instead of
// an error on a short read.
func (c *cursor) tryNext(n int) ([]byte, bool) {
	buf, err := c.next(n)
	if err != nil {
		return nil, false
	}
	return buf, true
}

// be16 and be32 decode big-endian integers at off within p. Callers check
// bounds first.
func be16(p []byte, off int) uint16 {
	return binary.BigEndian.Uint16(p[off:])
}

func be32(p []byte, off int) uint32 {
	return binary.BigEndian.Uint32(p[off:])
}

// be32Opt returns the big-endian word at off, or def when p is too short to
// contain it. Format headers are variable length; fields beyond the
// declared header length take their absent value.
func be32Opt(p []byte, off int, def uint32) uint32 {
	if off+4 > len(p) {
		return def
	}
	return be32(p, off)
}

func be16Opt(p []byte, off int, def uint16) uint16 {
	if off+2 > len(p) {
		return def
	}
	return be16(p, off)
}

// trimNUL returns s up to the first NUL byte.
func trimNUL(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}
