package mobi

// Magic values of the auxiliary records.
const (
	indxMagic = "INDX"
	flisMagic = "FLIS"
	fcisMagic = "FCIS"
)

const (
	indxHeaderSize = 48
	flisRecordSize = 36
	fcisRecordSize = 44
)

// readINDXHeader attempts to parse an index record header at offset.
func readINDXHeader(c *cursor, offset int64) (*INDXHeader, bool) {
	p, ok := readMagicAt(c, offset, indxMagic, indxHeaderSize)
	if !ok {
		return nil, false
	}
	return &INDXHeader{
		HeaderLength: be32(p, 4),
		IndexType:    be32(p, 8),
		IDXTStart:    be32(p, 20),
		IndexCount:   be32(p, 24),
		Encoding:     be32(p, 28),
		Language:     be32(p, 32),
		TotalCount:   be32(p, 36),
		ORDTStart:    be32(p, 40),
		LIGTStart:    be32(p, 44),
	}, true
}

// readFLISRecord attempts to parse a FLIS record at offset.
func readFLISRecord(c *cursor, offset int64) (*FLISRecord, bool) {
	p, ok := readMagicAt(c, offset, flisMagic, flisRecordSize)
	if !ok {
		return nil, false
	}
	return &FLISRecord{
		Length: be32(p, 4),
		Unk1:   be16(p, 8),
		Unk2:   be16(p, 10),
	}, true
}

// readFCISRecord attempts to parse a FCIS record at offset.
func readFCISRecord(c *cursor, offset int64) (*FCISRecord, bool) {
	p, ok := readMagicAt(c, offset, fcisMagic, fcisRecordSize)
	if !ok {
		return nil, false
	}
	return &FCISRecord{
		Length:     be32(p, 4),
		TextLength: be32(p, 20),
	}, true
}

// readMagicAt reads n bytes at offset and checks that they start with magic.
// Any failure reports absence.
func readMagicAt(c *cursor, offset int64, magic string, n int) ([]byte, bool) {
	if err := c.seek(offset); err != nil {
		return nil, false
	}
	p, ok := c.tryNext(n)
	if !ok || string(p[:len(magic)]) != magic {
		return nil, false
	}
	return p, true
}

// readFullName reads the full title stored inside record 0. A short read
// yields no title.
func readFullName(c *cursor, record0 int64, h MOBIHeader) ([]byte, bool) {
	if h.FullNameLength == 0 {
		return nil, false
	}
	if int64(h.FullNameLength) > c.Size() {
		return nil, false
	}
	if err := c.seek(record0 + int64(h.FullNameOffset)); err != nil {
		return nil, false
	}
	return c.tryNext(int(h.FullNameLength))
}
