package mobi

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the mobi package.
var (
	// ErrMalformedContainer indicates the Palm database envelope is invalid:
	// the type/creator magic is wrong, the preamble or record table is
	// truncated, or a record window falls outside the input.
	ErrMalformedContainer = errors.New("mobi: malformed container")

	// ErrMissingSection indicates a required header (document header or
	// format header) is absent or too short. The concrete error is a
	// *MissingSectionError naming the section.
	ErrMissingSection = errors.New("mobi: missing required section")

	// ErrCorruptCompressedData indicates a body record could not be
	// decompressed (back-reference before the start of the output, invalid
	// Huffman code, dictionary index out of range, truncated input).
	ErrCorruptCompressedData = errors.New("mobi: corrupt compressed data")

	// ErrDRMProtected indicates the document header declares an encryption
	// scheme; the body cannot be decoded.
	ErrDRMProtected = errors.New("mobi: file is DRM protected")

	// ErrNoCover indicates no cover image record could be located.
	ErrNoCover = errors.New("mobi: no cover image found")
)

// MissingSectionError reports which required section could not be read.
//
// It matches ErrMissingSection via errors.Is. The underlying read error,
// if any, is returned by Cause and is also matched by errors.Is and
// errors.As. errors.Unwrap returns nil because the error wraps more than
// one target.
type MissingSectionError struct {
	Section string
	cause   error
}

func (e *MissingSectionError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("mobi: invalid file, missing part: %s: %v", e.Section, e.cause)
	}
	return fmt.Sprintf("mobi: invalid file, missing part: %s", e.Section)
}

// Cause returns the read error that made the section unavailable, or nil
// when the section was simply absent.
func (e *MissingSectionError) Cause() error {
	return e.cause
}

func (e *MissingSectionError) Unwrap() []error {
	if e.cause != nil {
		return []error{ErrMissingSection, e.cause}
	}
	return []error{ErrMissingSection}
}

func missingSection(section string, cause error) error {
	return &MissingSectionError{Section: section, cause: cause}
}

func corruptf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrCorruptCompressedData, fmt.Sprintf(format, args...))
}
