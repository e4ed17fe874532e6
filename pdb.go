package mobi

import (
	"fmt"
)

// pdbHeaderSize is the size of the Palm database preamble, up to and
// including the record count.
const pdbHeaderSize = 78

// pdbRecordInfoSize is the size of one record directory entry.
const pdbRecordInfoSize = 8

// Palm database type/creator pairs accepted as e-book containers.
var pdbIdentities = map[string]bool{
	"BOOKMOBI": true, // Mobipocket
	"TEXtREAd": true, // plain PalmDOC
}

// readPDBHeader parses the Palm database preamble and record directory at
// the start of the input. On return the cursor is positioned just past the
// directory.
//
// Returns a wrapped ErrMalformedContainer when the magic does not match or
// the input is truncated.
func readPDBHeader(c *cursor) (PDBHeader, error) {
	if err := c.seek(0); err != nil {
		return PDBHeader{}, fmt.Errorf("%w: %v", ErrMalformedContainer, err)
	}
	p, err := c.next(pdbHeaderSize)
	if err != nil {
		return PDBHeader{}, fmt.Errorf("%w: read preamble: %v", ErrMalformedContainer, err)
	}

	h := PDBHeader{
		Name:               trimNUL(p[0:32]),
		Attributes:         be16(p, 32),
		Version:            be16(p, 34),
		CreationDate:       be32(p, 36),
		ModificationDate:   be32(p, 40),
		LastBackupDate:     be32(p, 44),
		ModificationNumber: be32(p, 48),
		AppInfoID:          be32(p, 52),
		SortInfoID:         be32(p, 56),
		Type:               string(p[60:64]),
		Creator:            string(p[64:68]),
		UniqueIDSeed:       be32(p, 68),
		NextRecordListID:   be32(p, 72),
	}
	if !pdbIdentities[h.Type+h.Creator] {
		return PDBHeader{}, fmt.Errorf("%w: bad type/creator %q", ErrMalformedContainer, h.Type+h.Creator)
	}

	count := int(be16(p, 76))
	if count == 0 {
		return h, nil
	}
	table, err := c.next(count * pdbRecordInfoSize)
	if err != nil {
		return PDBHeader{}, fmt.Errorf("%w: read record table (%d entries): %v", ErrMalformedContainer, count, err)
	}

	h.Records = make([]RecordInfo, count)
	for i := range h.Records {
		off := i * pdbRecordInfoSize
		word := be32(table, off+4)
		h.Records[i] = RecordInfo{
			Offset:     be32(table, off),
			Attributes: uint8(word >> 24),
			UniqueID:   word & 0x00FFFFFF,
		}
	}
	return h, nil
}

// buildRecords derives the byte length of every record from the offset of
// its successor. The last record extends to the end of the input.
func buildRecords(infos []RecordInfo, size int64) []record {
	records := make([]record, len(infos))
	end := size
	for i := len(infos) - 1; i >= 0; i-- {
		records[i] = record{
			info:   infos[i],
			length: end - int64(infos[i].Offset),
		}
		end = int64(infos[i].Offset)
	}
	return records
}
