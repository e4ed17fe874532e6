package mobi

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

// testHeader describes the document and format headers of a test book.
// Index fields use the on-disk encoding, so 0xFFFFFFFF means absent.
type testHeader struct {
	compression  uint16
	encryption   uint16
	textLength   uint32
	recordCount  uint16
	recordSize   uint16
	headerLength uint32
	encoding     uint32
	exthFlags    uint32
	firstNonBook uint32
	firstImage   uint32
	huffIndex    uint32
	huffCount    uint32
	firstContent uint16
	lastContent  uint16
	fcisIndex    uint32
	flisIndex    uint32
	extraFlags   uint32
	indxIndex    uint32
}

// defaultTestHeader returns a PalmDOC-compressed header with one body record
// (record 1) and every other optional index absent.
func defaultTestHeader() testHeader {
	return testHeader{
		compression:  uint16(CompressionPalmDOC),
		recordCount:  1,
		recordSize:   4096,
		headerLength: 232,
		encoding:     EncodingUTF8,
		firstNonBook: 2,
		firstImage:   unavailableIndex,
		huffIndex:    unavailableIndex,
		firstContent: 1,
		lastContent:  1,
		fcisIndex:    unavailableIndex,
		flisIndex:    unavailableIndex,
		indxIndex:    unavailableIndex,
	}
}

// testEXTH is one EXTH record of a test book.
type testEXTH struct {
	typ  uint32
	data []byte
}

// buildEXTH encodes an EXTH header, padded to a multiple of four bytes.
func buildEXTH(records []testEXTH) []byte {
	var body bytes.Buffer
	for _, r := range records {
		binary.Write(&body, binary.BigEndian, r.typ)
		binary.Write(&body, binary.BigEndian, uint32(len(r.data)+exthRecordHeaderSize))
		body.Write(r.data)
	}
	var buf bytes.Buffer
	buf.WriteString(exthMagic)
	binary.Write(&buf, binary.BigEndian, uint32(exthPreambleSize+body.Len()))
	binary.Write(&buf, binary.BigEndian, uint32(len(records)))
	buf.Write(body.Bytes())
	for buf.Len()%4 != 0 {
		buf.WriteByte(0)
	}
	return buf.Bytes()
}

// buildRecord0 encodes the document header, format header, optional EXTH
// header and full title.
func buildRecord0(h testHeader, exth []testEXTH, fullName string) []byte {
	palm := make([]byte, palmDOCHeaderSize)
	binary.BigEndian.PutUint16(palm[0:], h.compression)
	binary.BigEndian.PutUint32(palm[4:], h.textLength)
	binary.BigEndian.PutUint16(palm[8:], h.recordCount)
	binary.BigEndian.PutUint16(palm[10:], h.recordSize)
	binary.BigEndian.PutUint16(palm[12:], h.encryption)

	var exthData []byte
	exthFlags := h.exthFlags
	if exth != nil {
		exthData = buildEXTH(exth)
		exthFlags |= 0x40
	}

	m := make([]byte, h.headerLength)
	put32 := func(off int, v uint32) {
		if off+4 <= len(m) {
			binary.BigEndian.PutUint32(m[off:], v)
		}
	}
	put16 := func(off int, v uint16) {
		if off+2 <= len(m) {
			binary.BigEndian.PutUint16(m[off:], v)
		}
	}
	copy(m, mobiMagic)
	put32(4, h.headerLength)
	put32(mobiOffType, 2)
	put32(mobiOffTextEncoding, h.encoding)
	put32(mobiOffFileVersion, 6)
	put32(mobiOffFirstNonBook, h.firstNonBook)
	put32(mobiOffFullNameOffset, uint32(palmDOCHeaderSize+len(m)+len(exthData)))
	put32(mobiOffFullNameLength, uint32(len(fullName)))
	put32(mobiOffFirstImage, h.firstImage)
	put32(mobiOffHuffmanRecord, h.huffIndex)
	put32(mobiOffHuffmanCount, h.huffCount)
	put32(mobiOffEXTHFlags, exthFlags)
	put16(mobiOffFirstContent, h.firstContent)
	put16(mobiOffLastContent, h.lastContent)
	put32(mobiOffFCISRecord, h.fcisIndex)
	put32(mobiOffFLISRecord, h.flisIndex)
	put32(mobiOffExtraRecordFlags, h.extraFlags)
	put32(mobiOffINDXRecord, h.indxIndex)

	var buf bytes.Buffer
	buf.Write(palm)
	buf.Write(m)
	buf.Write(exthData)
	buf.WriteString(fullName)
	buf.Write([]byte{0, 0})
	return buf.Bytes()
}

// buildPDB wraps records in a BOOKMOBI Palm database. Records are laid out
// back to back after the directory.
func buildPDB(name string, records ...[]byte) []byte {
	return buildPDBWithIdentity(name, "BOOKMOBI", records...)
}

func buildPDBWithIdentity(name, identity string, records ...[]byte) []byte {
	hdr := make([]byte, pdbHeaderSize)
	copy(hdr[0:32], name)
	copy(hdr[60:68], identity)
	binary.BigEndian.PutUint16(hdr[76:], uint16(len(records)))

	var buf bytes.Buffer
	buf.Write(hdr)
	offset := uint32(pdbHeaderSize + len(records)*pdbRecordInfoSize + 2)
	for i, r := range records {
		binary.Write(&buf, binary.BigEndian, offset)
		binary.Write(&buf, binary.BigEndian, uint32(2*i))
		offset += uint32(len(r))
	}
	buf.Write([]byte{0, 0})
	for _, r := range records {
		buf.Write(r)
	}
	return buf.Bytes()
}

// buildTestBook assembles record 0 and the given records into a book.
func buildTestBook(h testHeader, exth []testEXTH, fullName string, records ...[]byte) []byte {
	all := append([][]byte{buildRecord0(h, exth, fullName)}, records...)
	return buildPDB("test_book", all...)
}

// decodeTestBook decodes data with NewReader and fails the test on error.
func decodeTestBook(t *testing.T, data []byte, opts ...Option) *Book {
	t.Helper()
	book, err := NewReader(bytes.NewReader(data), int64(len(data)), opts...)
	if err != nil {
		t.Fatalf("NewReader() error = %v", err)
	}
	return book
}

// writeTestBookFile writes data to a temporary file and returns its path.
func writeTestBookFile(t *testing.T, data []byte) string {
	t.Helper()
	fp := filepath.Join(t.TempDir(), "test.mobi")
	if err := os.WriteFile(fp, data, 0644); err != nil {
		t.Fatalf("writeTestBookFile: %v", err)
	}
	return fp
}

// compressLiteralPalmDOC encodes data with PalmDOC literal codes only: bytes
// that are their own code are copied, everything else goes into literal
// runs of at most eight bytes.
func compressLiteralPalmDOC(data []byte) []byte {
	var out []byte
	for i := 0; i < len(data); {
		b := data[i]
		if b == 0x00 || (b >= 0x09 && b <= 0x7F) {
			out = append(out, b)
			i++
			continue
		}
		start := i
		for i < len(data) && i-start < 8 {
			c := data[i]
			if c == 0x00 || (c >= 0x09 && c <= 0x7F) {
				break
			}
			i++
		}
		out = append(out, byte(i-start))
		out = append(out, data[start:i]...)
	}
	return out
}

// backReference encodes a PalmDOC back-reference.
func backReference(distance, length int) []byte {
	pair := 0x8000 | distance<<3 | (length - lz77MinLength)
	return []byte{byte(pair >> 8), byte(pair)}
}

// testPhrase is one CDIC dictionary entry.
type testPhrase struct {
	data    []byte
	literal bool
}

// buildHuff returns a HUFF record whose 256 codes are all 8 bits long and
// terminal, so input byte b selects phrase 255-b. minCode fills the
// min/max range table.
func buildHuff(length uint32, term bool, minCode uint32) []byte {
	codeOff := uint32(24)
	rangeOff := codeOff + huffCodeTableSize
	buf := make([]byte, rangeOff+huffRangeTableSize)
	copy(buf, huffSignature)
	binary.BigEndian.PutUint32(buf[8:], codeOff)
	binary.BigEndian.PutUint32(buf[12:], rangeOff)
	for i := 0; i < 256; i++ {
		v := uint32(255)<<8 | length
		if term {
			v |= 0x80
		}
		binary.BigEndian.PutUint32(buf[int(codeOff)+i*4:], v)
	}
	for i := 0; i < 64; i += 2 {
		binary.BigEndian.PutUint32(buf[int(rangeOff)+i*4:], minCode)
		binary.BigEndian.PutUint32(buf[int(rangeOff)+(i+1)*4:], 0xFFFFFFFF)
	}
	return buf
}

// buildSimpleHuff is buildHuff for the common 8-bit terminal table.
func buildSimpleHuff() []byte {
	return buildHuff(8, true, 0)
}

// buildCDIC returns a CDIC record holding phrases.
func buildCDIC(phrases []testPhrase) []byte {
	var offsets, body bytes.Buffer
	base := len(phrases) * 2
	for _, p := range phrases {
		binary.Write(&offsets, binary.BigEndian, uint16(base+body.Len()))
		blen := uint16(len(p.data))
		if p.literal {
			blen |= 0x8000
		}
		binary.Write(&body, binary.BigEndian, blen)
		body.Write(p.data)
	}
	var buf bytes.Buffer
	buf.Write(cdicSignature)
	binary.Write(&buf, binary.BigEndian, uint32(len(phrases)))
	binary.Write(&buf, binary.BigEndian, uint32(8))
	buf.Write(offsets.Bytes())
	buf.Write(body.Bytes())
	return buf.Bytes()
}

// buildFLIS and buildFCIS return the fixed-layout flow records.
func buildFLIS() []byte {
	buf := make([]byte, flisRecordSize)
	copy(buf, flisMagic)
	binary.BigEndian.PutUint32(buf[4:], 8)
	binary.BigEndian.PutUint16(buf[8:], 65)
	binary.BigEndian.PutUint32(buf[16:], 0xFFFFFFFF)
	return buf
}

func buildFCIS(textLength uint32) []byte {
	buf := make([]byte, fcisRecordSize)
	copy(buf, fcisMagic)
	binary.BigEndian.PutUint32(buf[4:], 20)
	binary.BigEndian.PutUint32(buf[8:], 16)
	binary.BigEndian.PutUint32(buf[12:], 1)
	binary.BigEndian.PutUint32(buf[20:], textLength)
	return buf
}

func buildINDX(entries uint32) []byte {
	buf := make([]byte, indxHeaderSize+16)
	copy(buf, indxMagic)
	binary.BigEndian.PutUint32(buf[4:], 192)
	binary.BigEndian.PutUint32(buf[8:], 0)
	binary.BigEndian.PutUint32(buf[20:], 0xC0)
	binary.BigEndian.PutUint32(buf[24:], entries)
	binary.BigEndian.PutUint32(buf[28:], EncodingUTF8)
	return buf
}
