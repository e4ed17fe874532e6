package mobi

import (
	"fmt"
	"io"
	"os"
)

// Book is a decoded MOBI (or PalmDOC) e-book.
// Use Open or NewReader to create a Book instance.
//
// A Book holds no reference to its input once decoding returns; all
// accessors return copies.
type Book struct {
	structure Structure
	title     string
	metadata  Metadata
	text      string
	cover     *CoverImage
	warnings  []string
}

// Open decodes the e-book at the given path. The file is closed before
// Open returns, whether or not decoding succeeds.
func Open(path string, opts ...Option) (b *Book, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("mobi: open %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			b, err = nil, fmt.Errorf("mobi: close %s: %w", path, cerr)
		}
	}()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("mobi: stat %s: %w", path, err)
	}
	return NewReader(f, info.Size(), opts...)
}

// NewReader decodes an e-book from an io.ReaderAt with the given size.
// The caller is responsible for the lifetime of r; it is not used after
// NewReader returns.
//
// NewReader returns either a fully decoded Book or an error matching one of
// ErrMalformedContainer, ErrMissingSection, ErrCorruptCompressedData or
// ErrDRMProtected. There is no partially decoded result.
func NewReader(r io.ReaderAt, size int64, opts ...Option) (*Book, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return newDecoder(newCursor(r, size), o).decode()
}

// Title returns the full title stored in record 0, or an empty string
// when the book has none.
func (b *Book) Title() string {
	return b.title
}

// Metadata returns the bibliographic fields from the EXTH header.
func (b *Book) Metadata() Metadata {
	return b.metadata
}

// Text returns the reconstructed body text, including any markup stored in
// the book.
func (b *Book) Text() string {
	return b.text
}

// PlainText returns the body text with markup removed. Block-level elements
// produce line breaks; script and style content is skipped.
func (b *Book) PlainText() (string, error) {
	return extractText([]byte(b.text))
}

// Cover returns the cover image, or ErrNoCover when none was found.
func (b *Book) Cover() (CoverImage, error) {
	if b.cover == nil {
		return CoverImage{}, ErrNoCover
	}
	out := *b.cover
	out.Data = append([]byte(nil), b.cover.Data...)
	return out, nil
}

// Structure returns every header parsed while decoding.
func (b *Book) Structure() Structure {
	return copyStructure(b.structure)
}

// Warnings returns the list of non-fatal warnings accumulated during decoding.
func (b *Book) Warnings() []string {
	return append([]string(nil), b.warnings...)
}

func copyStructure(in Structure) Structure {
	out := in
	out.PDB.Records = append([]RecordInfo(nil), in.PDB.Records...)
	if in.EXTH != nil {
		exth := *in.EXTH
		exth.Records = make([]EXTHRecord, len(in.EXTH.Records))
		for i, r := range in.EXTH.Records {
			exth.Records[i] = EXTHRecord{Type: r.Type, Data: append([]byte(nil), r.Data...)}
		}
		out.EXTH = &exth
	}
	if in.INDX != nil {
		indx := *in.INDX
		out.INDX = &indx
	}
	if in.FLIS != nil {
		flis := *in.FLIS
		out.FLIS = &flis
	}
	if in.FCIS != nil {
		fcis := *in.FCIS
		out.FCIS = &fcis
	}
	return out
}
