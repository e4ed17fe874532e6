package mobi

// decompressor turns one raw body record into its uncompressed bytes.
// Implementations never modify the record and hold only immutable state,
// so the same decompressor serves every record of a book.
type decompressor interface {
	decompress(record []byte) ([]byte, error)
}

// palmDOCCompression is the LZ77 variant used by PalmDOC and MOBI books.
type palmDOCCompression struct{}

func (palmDOCCompression) decompress(record []byte) ([]byte, error) {
	return palmDOCDecompress(record)
}

// trailingEntriesSize returns how many bytes at the end of record are extra
// record data rather than text, as described by flags.
//
// Every set bit above bit 0 denotes one trailing entry whose size is stored
// as a backward-read variable-length integer at the end of the remaining
// data. Bit 0 denotes multibyte overlap data whose size is (b & 3) + 1,
// where b is the last byte before the other entries.
func trailingEntriesSize(record []byte, flags uint32) int {
	size := len(record)
	num := 0
	for f := flags >> 1; f != 0; f >>= 1 {
		if f&1 == 0 {
			continue
		}
		if size-num <= 0 {
			return len(record)
		}
		num += trailingEntrySize(record[:size-num])
	}
	if flags&1 != 0 && size-num > 0 {
		num += int(record[size-num-1]&0x3) + 1
	}
	if num > len(record) {
		return len(record)
	}
	return num
}

// trailingEntrySize decodes a variable-length integer stored backwards at
// the end of data. The byte with the high bit set terminates it.
func trailingEntrySize(data []byte) int {
	result, shift := 0, 0
	for i := len(data) - 1; i >= 0; i-- {
		v := data[i]
		result |= int(v&0x7F) << shift
		shift += 7
		if v&0x80 != 0 || shift >= 28 || i == 0 {
			break
		}
	}
	return result
}
