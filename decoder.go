package mobi

import (
	"fmt"
	"log/slog"
)

// decodeState is a stage of the decode pipeline. Only the directory,
// document header and format header stages can fail the decode; problems
// with optional sections are recorded as warnings.
type decodeState int

const (
	stateStart decodeState = iota
	stateDirectoryRead
	stateDocumentHeaderRead
	stateFormatHeaderRead
	stateOptionalHeadersRead
	stateBodyDecoded
	stateDone
	stateFailed
)

func (s decodeState) String() string {
	switch s {
	case stateStart:
		return "start"
	case stateDirectoryRead:
		return "directory-read"
	case stateDocumentHeaderRead:
		return "document-header-read"
	case stateFormatHeaderRead:
		return "format-header-read"
	case stateOptionalHeadersRead:
		return "optional-headers-read"
	case stateBodyDecoded:
		return "body-decoded"
	case stateDone:
		return "done"
	case stateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// decoder owns the working set of one decode call. It is discarded once
// the Book has been assembled.
type decoder struct {
	c        *cursor
	opts     options
	log      *slog.Logger
	state    decodeState
	records  []record
	st       Structure
	fullName []byte
	warnings []string
}

func newDecoder(c *cursor, opts options) *decoder {
	return &decoder{
		c:    c,
		opts: opts,
		log:  opts.logger,
	}
}

func (d *decoder) advance(s decodeState) {
	d.state = s
	d.log.Debug("mobi: decode stage", "state", s.String())
}

func (d *decoder) fail(err error) error {
	d.log.Error("mobi: decode failed", "state", d.state.String(), "error", err)
	d.state = stateFailed
	return err
}

func (d *decoder) warn(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	d.warnings = append(d.warnings, msg)
	d.log.Warn("mobi: "+msg, "state", d.state.String())
}

// decode runs the full pipeline and assembles the Book.
func (d *decoder) decode() (*Book, error) {
	if err := d.readStructure(); err != nil {
		return nil, d.fail(err)
	}

	text, err := d.readText()
	if err != nil {
		return nil, d.fail(err)
	}
	d.advance(stateBodyDecoded)

	b := &Book{
		structure: d.st,
		metadata:  extractMetadata(d.st.EXTH, d.st.MOBI.TextEncoding),
		text:      text,
	}
	if d.fullName != nil {
		b.title = decodeString(d.fullName, d.st.MOBI.TextEncoding)
	}
	if !d.opts.skipCover {
		b.cover = d.readCover(text)
	}
	b.warnings = d.warnings

	d.advance(stateDone)
	return b, nil
}

// readStructure parses the directory and every header, required and optional.
func (d *decoder) readStructure() error {
	pdb, err := readPDBHeader(d.c)
	if err != nil {
		return err
	}
	d.st.PDB = pdb
	d.records = buildRecords(pdb.Records, d.c.Size())
	d.advance(stateDirectoryRead)

	if len(d.records) == 0 {
		return missingSection("document header", nil)
	}
	record0 := int64(d.records[0].info.Offset)
	palmDOC, err := readPalmDOCHeader(d.c, record0)
	if err != nil {
		return err
	}
	if err := checkDRM(palmDOC); err != nil {
		return err
	}
	d.st.PalmDOC = palmDOC
	d.advance(stateDocumentHeaderRead)

	mobiHeader, ok, err := readMOBIHeader(d.c)
	if err != nil || !ok {
		return missingSection("format header", err)
	}
	d.st.MOBI = mobiHeader
	d.advance(stateFormatHeaderRead)

	d.readOptionalHeaders(record0)
	d.advance(stateOptionalHeadersRead)
	return nil
}

// readOptionalHeaders reads the EXTH header, the full title and the
// auxiliary records. Absence of any of them is not an error.
func (d *decoder) readOptionalHeaders(record0 int64) {
	m := d.st.MOBI
	n := len(d.records)

	exth, ok, err := readEXTHHeader(d.c)
	switch {
	case err != nil:
		d.warn("ignoring invalid EXTH header: %v", err)
	case ok:
		d.st.EXTH = exth
	case m.EXTHFlags&0x40 != 0:
		d.warn("EXTH flag set but no EXTH header found")
	}

	if name, ok := readFullName(d.c, record0, m); ok {
		d.fullName = name
	} else if m.FullNameLength > 0 {
		d.warn("full name (%d bytes at offset %d) could not be read", m.FullNameLength, m.FullNameOffset)
	}

	if m.INDXRecordIndex.in(n) {
		if h, ok := readINDXHeader(d.c, d.offsetOf(m.INDXRecordIndex)); ok {
			d.st.INDX = h
		} else {
			d.warn("no INDX header in record %d", m.INDXRecordIndex.Index)
		}
	}
	if m.FLISRecordIndex.in(n) {
		if r, ok := readFLISRecord(d.c, d.offsetOf(m.FLISRecordIndex)); ok {
			d.st.FLIS = r
		} else {
			d.warn("no FLIS record at index %d", m.FLISRecordIndex.Index)
		}
	}
	if m.FCISRecordIndex.in(n) {
		if r, ok := readFCISRecord(d.c, d.offsetOf(m.FCISRecordIndex)); ok {
			d.st.FCIS = r
		} else {
			d.warn("no FCIS record at index %d", m.FCISRecordIndex.Index)
		}
	}
}

func (d *decoder) offsetOf(ri RecordIndex) int64 {
	return int64(d.records[ri.Index].info.Offset)
}

// readRecord returns the raw bytes of record i.
func (d *decoder) readRecord(i int) ([]byte, error) {
	if i < 0 || i >= len(d.records) {
		return nil, fmt.Errorf("%w: record %d outside directory of %d records", ErrMalformedContainer, i, len(d.records))
	}
	r := d.records[i]
	if r.length < 0 {
		return nil, fmt.Errorf("%w: record %d offset %d precedes record %d", ErrMalformedContainer, i+1, int64(r.info.Offset)+r.length, i)
	}
	if r.length > d.opts.maxRecordSize {
		return nil, fmt.Errorf("%w: record %d is %d bytes (max %d)", ErrMalformedContainer, i, r.length, d.opts.maxRecordSize)
	}
	if err := d.c.seek(int64(r.info.Offset)); err != nil {
		return nil, fmt.Errorf("%w: record %d: %v", ErrMalformedContainer, i, err)
	}
	data, err := d.c.next(int(r.length))
	if err != nil {
		return nil, fmt.Errorf("%w: record %d: %v", ErrMalformedContainer, i, err)
	}
	return data, nil
}

// readText decompresses the body records in index order and decodes the
// result. An unrecognised compression scheme yields an empty body.
func (d *decoder) readText() (string, error) {
	var (
		dec    decompressor
		decode = decodeUTF8
	)
	switch d.st.PalmDOC.Compression {
	case CompressionPlain, CompressionPalmDOC:
		dec = palmDOCCompression{}
	case CompressionHuffCDIC:
		h, err := d.newHuffCDICCompression()
		if err != nil {
			return "", err
		}
		if h == nil {
			d.warn("HUFF/CDIC compression without a HUFF record; no text produced")
			return "", nil
		}
		dec, decode = h, decodeASCII
	default:
		d.warn("unknown compression %d; no text produced", d.st.PalmDOC.Compression)
		return "", nil
	}

	first := int(d.st.MOBI.FirstContentRecord)
	last := d.st.MOBI.firstNonTextIndex(len(d.records))
	d.log.Debug("mobi: body records", "first", first, "last", last, "compression", d.st.PalmDOC.Compression.String())

	var body []byte
	for i := first; i < last; i++ {
		raw, err := d.readRecord(i)
		if err != nil {
			return "", err
		}
		out, err := dec.decompress(raw)
		if err != nil {
			return "", fmt.Errorf("mobi: record %d: %w", i, err)
		}
		body = append(body, out...)
	}
	return decode(body), nil
}

// newHuffCDICCompression loads the HUFF record and its CDIC records.
// It returns nil when the format header names no HUFF record.
func (d *decoder) newHuffCDICCompression() (*huffCDICCompression, error) {
	m := d.st.MOBI
	if !m.HuffmanRecordIndex.in(len(d.records)) {
		return nil, nil
	}
	base := int(m.HuffmanRecordIndex.Index)

	huff, err := d.readRecord(base)
	if err != nil {
		return nil, fmt.Errorf("%w: HUFF record: %w", ErrCorruptCompressedData, err)
	}

	// The first CDIC record always follows the HUFF record.
	count := max(int64(m.HuffmanRecordCount), 2)
	var cdics [][]byte
	for i := int64(1); i < count; i++ {
		raw, err := d.readRecord(base + int(i))
		if err != nil {
			return nil, fmt.Errorf("%w: CDIC record: %w", ErrCorruptCompressedData, err)
		}
		cdics = append(cdics, raw)
	}
	d.log.Debug("mobi: loaded HUFF/CDIC tables", "huff_record", base, "cdic_records", len(cdics))

	return newHuffCDICCompression(huff, cdics, m.ExtraRecordDataFlags)
}
