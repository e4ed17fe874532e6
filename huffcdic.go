package mobi

import (
	"bytes"
	"encoding/binary"
)

// Record signatures, including the fixed header length that follows the magic.
var (
	huffSignature = []byte("HUFF\x00\x00\x00\x18")
	cdicSignature = []byte("CDIC\x00\x00\x00\x10")
)

const (
	huffCodeTableSize  = 256 * 4
	huffRangeTableSize = 64 * 4
	cdicHeaderSize     = 16

	// huffMaxCodeLength bounds the code length search of the bit walk.
	huffMaxCodeLength = 32

	// huffMaxNesting bounds how deep compressed phrases may reference other
	// compressed phrases.
	huffMaxNesting = 32
)

// huffCode is one entry of the 256-entry lookup table indexed by the next
// 8 bits of input.
type huffCode struct {
	length  uint
	term    bool
	maxCode uint64
}

// phrase is one dictionary entry. Literal phrases are emitted as-is; the
// others are themselves Huffman coded.
type phrase struct {
	data    []byte
	literal bool
}

// huffCDICCompression decodes records compressed with the Huffman code table
// of a HUFF record and the phrase dictionaries of its CDIC records.
// All tables are read-only after construction.
type huffCDICCompression struct {
	codes      [256]huffCode
	minCodes   [huffMaxCodeLength + 1]uint64
	maxCodes   [huffMaxCodeLength + 1]uint64
	phrases    []phrase
	extraFlags uint32
}

// newHuffCDICCompression builds the decoder from one HUFF record and one or
// more CDIC records.
func newHuffCDICCompression(huff []byte, cdics [][]byte, extraFlags uint32) (*huffCDICCompression, error) {
	h := &huffCDICCompression{extraFlags: extraFlags}
	if err := h.loadHuff(huff); err != nil {
		return nil, err
	}
	for i, cdic := range cdics {
		if err := h.loadCDIC(cdic); err != nil {
			return nil, corruptf("CDIC record %d: %v", i, err)
		}
	}
	return h, nil
}

func (h *huffCDICCompression) loadHuff(huff []byte) error {
	if len(huff) < 16 || !bytes.Equal(huff[:8], huffSignature) {
		return corruptf("invalid HUFF record signature")
	}
	codeOff, rangeOff := int64(be32(huff, 8)), int64(be32(huff, 12))
	if codeOff+huffCodeTableSize > int64(len(huff)) || rangeOff+huffRangeTableSize > int64(len(huff)) {
		return corruptf("HUFF tables at %d/%d outside record of %d bytes", codeOff, rangeOff, len(huff))
	}

	for i := range h.codes {
		v := be32(huff, int(codeOff)+i*4)
		length := uint(v & 0x1F)
		term := v&0x80 != 0
		if length == 0 || (length <= 8 && !term) {
			return corruptf("HUFF code table entry %d: invalid code length %d", i, length)
		}
		h.codes[i] = huffCode{
			length:  length,
			term:    term,
			maxCode: ((uint64(v>>8) + 1) << (32 - length)) - 1,
		}
	}

	h.maxCodes[0] = (1 << 32) - 1
	for n := 1; n <= huffMaxCodeLength; n++ {
		off := int(rangeOff) + (n-1)*8
		lo, hi := uint64(be32(huff, off)), uint64(be32(huff, off+4))
		h.minCodes[n] = lo << (32 - n)
		h.maxCodes[n] = ((hi + 1) << (32 - n)) - 1
	}
	return nil
}

func (h *huffCDICCompression) loadCDIC(cdic []byte) error {
	if len(cdic) < cdicHeaderSize || !bytes.Equal(cdic[:8], cdicSignature) {
		return corruptf("invalid CDIC record signature")
	}
	total, bits := int64(be32(cdic, 8)), be32(cdic, 12)
	if bits > 31 {
		return corruptf("CDIC code bits %d out of range", bits)
	}
	n := min(int64(1)<<bits, total-int64(len(h.phrases)))
	if n <= 0 {
		return nil
	}
	if cdicHeaderSize+n*2 > int64(len(cdic)) {
		return corruptf("CDIC offset table of %d entries overruns record", n)
	}

	for i := int64(0); i < n; i++ {
		off := cdicHeaderSize + int(be16(cdic, cdicHeaderSize+int(i)*2))
		if off+2 > len(cdic) {
			return corruptf("CDIC phrase %d offset %d outside record", i, off)
		}
		blen := be16(cdic, off)
		end := off + 2 + int(blen&0x7FFF)
		if end > len(cdic) {
			return corruptf("CDIC phrase %d length %d overruns record", i, blen&0x7FFF)
		}
		h.phrases = append(h.phrases, phrase{
			data:    cdic[off+2 : end],
			literal: blen&0x8000 != 0,
		})
	}
	return nil
}

func (h *huffCDICCompression) decompress(record []byte) ([]byte, error) {
	record = record[:len(record)-trailingEntriesSize(record, h.extraFlags)]
	var out bytes.Buffer
	memo := make(map[int][]byte)
	if err := h.unpack(&out, record, memo, 0); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// unpack walks the bit stream of data, appending the phrase selected by
// each code to out. memo holds expansions of compressed phrases for the
// current record only.
func (h *huffCDICCompression) unpack(out *bytes.Buffer, data []byte, memo map[int][]byte, depth int) error {
	if depth > huffMaxNesting {
		return corruptf("phrase nesting deeper than %d", huffMaxNesting)
	}

	buf := make([]byte, len(data)+8)
	copy(buf, data)
	bitsLeft := len(data) * 8
	pos := 0
	x := binary.BigEndian.Uint64(buf[pos:])
	n := 32

	for {
		if n <= 0 {
			pos += 4
			x = binary.BigEndian.Uint64(buf[pos:])
			n += 32
		}
		code := (x >> uint(n)) & 0xFFFFFFFF

		c := h.codes[code>>24]
		length, maxCode := c.length, c.maxCode
		if !c.term {
			for code < h.minCodes[length] {
				length++
				if length > huffMaxCodeLength {
					return corruptf("Huffman code exceeds %d bits", huffMaxCodeLength)
				}
			}
			maxCode = h.maxCodes[length]
		}

		n -= int(length)
		bitsLeft -= int(length)
		if bitsLeft < 0 {
			return nil
		}

		r := int((maxCode - code) >> (32 - length))
		if r < 0 || r >= len(h.phrases) {
			return corruptf("dictionary index %d out of range (%d phrases)", r, len(h.phrases))
		}
		p := h.phrases[r]
		if p.literal {
			out.Write(p.data)
			continue
		}
		if expanded, ok := memo[r]; ok {
			out.Write(expanded)
			continue
		}
		var sub bytes.Buffer
		if err := h.unpack(&sub, p.data, memo, depth+1); err != nil {
			return err
		}
		memo[r] = sub.Bytes()
		out.Write(sub.Bytes())
	}
}
