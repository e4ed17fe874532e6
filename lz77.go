package mobi

// PalmDOC LZ77 limits.
const (
	lz77MaxDistance = 0x7FF
	lz77MinLength   = 3
)

// palmDOCDecompress decodes one PalmDOC-compressed record.
//
// Control byte ranges:
//
//	0x00        literal NUL
//	0x01..0x08  copy the next n bytes verbatim
//	0x09..0x7F  literal byte
//	0x80..0xBF  with the next byte: 11-bit distance, 3-bit length-3 back-reference
//	0xC0..0xFF  space followed by b ^ 0x80
//
// Back-references may overlap the bytes they produce.
func palmDOCDecompress(data []byte) ([]byte, error) {
	out := make([]byte, 0, len(data)*2)
	for i := 0; i < len(data); {
		b := data[i]
		i++

		switch {
		case b == 0x00:
			out = append(out, b)

		case b <= 0x08:
			n := int(b)
			if i+n > len(data) {
				return nil, corruptf("literal run of %d bytes at offset %d overruns record of %d bytes", n, i-1, len(data))
			}
			out = append(out, data[i:i+n]...)
			i += n

		case b <= 0x7F:
			out = append(out, b)

		case b <= 0xBF:
			if i >= len(data) {
				return nil, corruptf("back-reference at offset %d missing second byte", i-1)
			}
			pair := int(b)<<8 | int(data[i])
			i++
			distance := (pair >> 3) & lz77MaxDistance
			length := pair&0x7 + lz77MinLength
			if distance == 0 || distance > len(out) {
				return nil, corruptf("back-reference distance %d at output offset %d", distance, len(out))
			}
			start := len(out) - distance
			for j := 0; j < length; j++ {
				out = append(out, out[start+j])
			}

		default:
			out = append(out, ' ', b^0x80)
		}
	}
	return out, nil
}
