package mobi

import (
	"fmt"
)

// mobiMagic identifies the format header.
const mobiMagic = "MOBI"

// minMOBIHeaderLength covers the magic and the length word itself.
const minMOBIHeaderLength = 8

// Field offsets within the format header, relative to the "MOBI" magic.
// On-disk documentation usually quotes them relative to record 0, which is
// 16 bytes earlier.
const (
	mobiOffType             = 8
	mobiOffTextEncoding     = 12
	mobiOffUniqueID         = 16
	mobiOffFileVersion      = 20
	mobiOffFirstNonBook     = 64
	mobiOffFullNameOffset   = 68
	mobiOffFullNameLength   = 72
	mobiOffLocale           = 76
	mobiOffMinVersion       = 88
	mobiOffFirstImage       = 92
	mobiOffHuffmanRecord    = 96
	mobiOffHuffmanCount     = 100
	mobiOffEXTHFlags        = 112
	mobiOffFirstContent     = 176
	mobiOffLastContent      = 178
	mobiOffFCISRecord       = 184
	mobiOffFLISRecord       = 192
	mobiOffExtraRecordFlags = 224
	mobiOffINDXRecord       = 228
)

// readMOBIHeader parses the format header at the cursor position.
//
// The result is tri-state:
//   - (h, true, nil)    – header present and parsed
//   - (_, false, nil)   – header absent (short read or no magic)
//   - (_, true, err)    – header present but its declared length is invalid
//
// On success the cursor is positioned at the end of the declared header,
// where the EXTH header starts when present.
func readMOBIHeader(c *cursor) (MOBIHeader, bool, error) {
	start := c.position()
	pre, ok := c.tryNext(minMOBIHeaderLength)
	if !ok || string(pre[0:4]) != mobiMagic {
		_ = c.seek(start)
		return MOBIHeader{}, false, nil
	}

	length := be32(pre, 4)
	if length < minMOBIHeaderLength {
		return MOBIHeader{}, true, fmt.Errorf("mobi: format header length %d too small", length)
	}
	if int64(length) > c.Size()-start {
		return MOBIHeader{}, true, fmt.Errorf("mobi: format header length %d exceeds input", length)
	}

	rest, ok := c.tryNext(int(length) - minMOBIHeaderLength)
	if !ok {
		_ = c.seek(start)
		return MOBIHeader{}, false, nil
	}
	p := append(pre, rest...)

	h := MOBIHeader{
		HeaderLength:         length,
		MobiType:             be32Opt(p, mobiOffType, 0),
		TextEncoding:         be32Opt(p, mobiOffTextEncoding, 0),
		UniqueID:             be32Opt(p, mobiOffUniqueID, 0),
		FileVersion:          be32Opt(p, mobiOffFileVersion, 0),
		FirstNonBookIndex:    recordIndex(be32Opt(p, mobiOffFirstNonBook, unavailableIndex)),
		FullNameOffset:       be32Opt(p, mobiOffFullNameOffset, 0),
		FullNameLength:       be32Opt(p, mobiOffFullNameLength, 0),
		Locale:               be32Opt(p, mobiOffLocale, 0),
		MinVersion:           be32Opt(p, mobiOffMinVersion, 0),
		FirstImageIndex:      recordIndex(be32Opt(p, mobiOffFirstImage, unavailableIndex)),
		HuffmanRecordIndex:   recordIndex(be32Opt(p, mobiOffHuffmanRecord, unavailableIndex)),
		HuffmanRecordCount:   be32Opt(p, mobiOffHuffmanCount, 0),
		EXTHFlags:            be32Opt(p, mobiOffEXTHFlags, 0),
		FirstContentRecord:   be16Opt(p, mobiOffFirstContent, 1),
		LastContentRecord:    be16Opt(p, mobiOffLastContent, 0xFFFF),
		FCISRecordIndex:      recordIndex(be32Opt(p, mobiOffFCISRecord, unavailableIndex)),
		FLISRecordIndex:      recordIndex(be32Opt(p, mobiOffFLISRecord, unavailableIndex)),
		ExtraRecordDataFlags: be32Opt(p, mobiOffExtraRecordFlags, 0),
		INDXRecordIndex:      recordIndex(be32Opt(p, mobiOffINDXRecord, unavailableIndex)),
	}
	return h, true, nil
}

// firstNonTextIndex returns the exclusive end of the body record range.
//
// An explicit first-non-book index inside the directory wins. Otherwise the
// nearest structural record among the last content record, INDX, FLIS and
// FCIS (and finally the directory length) bounds the body. Absent candidates
// take no part in the minimum.
func (h MOBIHeader) firstNonTextIndex(recordCount int) int {
	if h.FirstNonBookIndex.in(recordCount) {
		return int(h.FirstNonBookIndex.Index)
	}
	end := int64(h.LastContentRecord)
	for _, ri := range []RecordIndex{h.INDXRecordIndex, h.FLISRecordIndex, h.FCISRecordIndex} {
		if ri.Valid && int64(ri.Index) < end {
			end = int64(ri.Index)
		}
	}
	if int64(recordCount) < end {
		end = int64(recordCount)
	}
	return int(end)
}
