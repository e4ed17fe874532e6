package mobi

import "fmt"

// exthMagic identifies the extended metadata header.
const exthMagic = "EXTH"

// exthPreambleSize covers the magic, header length and record count.
const exthPreambleSize = 12

// exthRecordHeaderSize is the type and length words preceding each payload.
// The on-disk length of a record includes them.
const exthRecordHeaderSize = 8

// readEXTHHeader attempts to parse an EXTH header at the cursor position.
//
// Returns (nil, false, nil) when no EXTH header is present. A header whose
// records overrun the data is reported as present with an error.
func readEXTHHeader(c *cursor) (*EXTHHeader, bool, error) {
	start := c.position()
	pre, ok := c.tryNext(exthPreambleSize)
	if !ok || string(pre[0:4]) != exthMagic {
		_ = c.seek(start)
		return nil, false, nil
	}

	h := &EXTHHeader{HeaderLength: be32(pre, 4)}
	count := be32(pre, 8)
	for i := uint32(0); i < count; i++ {
		rh, ok := c.tryNext(exthRecordHeaderSize)
		if !ok {
			return nil, true, fmt.Errorf("mobi: EXTH record %d of %d: truncated header", i, count)
		}
		typ, length := be32(rh, 0), be32(rh, 4)
		if length < exthRecordHeaderSize || int64(length) > c.Size()-c.position()+exthRecordHeaderSize {
			return nil, true, fmt.Errorf("mobi: EXTH record %d (type %d): invalid length %d", i, typ, length)
		}
		data, ok := c.tryNext(int(length - exthRecordHeaderSize))
		if !ok {
			return nil, true, fmt.Errorf("mobi: EXTH record %d (type %d): truncated payload", i, typ)
		}
		h.Records = append(h.Records, EXTHRecord{Type: typ, Data: data})
	}
	return h, true, nil
}

// exthIndex maps each EXTH type to the payload of its first occurrence.
// Later records of the same type are ignored.
func exthIndex(h *EXTHHeader) map[uint32][]byte {
	if h == nil {
		return nil
	}
	m := make(map[uint32][]byte, len(h.Records))
	for _, r := range h.Records {
		if _, exists := m[r.Type]; !exists {
			m[r.Type] = r.Data
		}
	}
	return m
}
