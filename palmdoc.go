package mobi

import "fmt"

// palmDOCHeaderSize is the size of the document header at the start of
// record 0.
const palmDOCHeaderSize = 16

// readPalmDOCHeader parses the document header at offset, leaving the cursor
// positioned at the first byte after it (the format header).
func readPalmDOCHeader(c *cursor, offset int64) (PalmDOCHeader, error) {
	if err := c.seek(offset); err != nil {
		return PalmDOCHeader{}, missingSection("document header", err)
	}
	p, err := c.next(palmDOCHeaderSize)
	if err != nil {
		return PalmDOCHeader{}, missingSection("document header", err)
	}
	return PalmDOCHeader{
		Compression: Compression(be16(p, 0)),
		TextLength:  be32(p, 4),
		RecordCount: be16(p, 8),
		RecordSize:  be16(p, 10),
		Encryption:  be16(p, 12),
	}, nil
}

// checkDRM reports ErrDRMProtected when the document header declares an
// encryption scheme (1 = old Mobipocket, 2 = Mobipocket).
func checkDRM(h PalmDOCHeader) error {
	if h.Encryption != 0 {
		return fmt.Errorf("%w (encryption type %d)", ErrDRMProtected, h.Encryption)
	}
	return nil
}
