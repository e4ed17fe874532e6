// Package mobi provides a pure-Go library for decoding Mobipocket (MOBI)
// and PalmDOC e-books.
//
// A book is a Palm database: a record directory followed by records. Record 0
// carries the PalmDOC document header, the MOBI format header, an optional
// EXTH metadata header and the full title. The body text is spread over a
// range of compressed records, using either PalmDOC LZ77 or HUFF/CDIC
// compression. DRM-protected files are detected and rejected with
// [ErrDRMProtected].
//
// # Decoding a book
//
// Use [Open] to decode a file by path, or [NewReader] to decode from an
// [io.ReaderAt]. Decoding is eager: the returned [Book] holds the complete
// text and metadata and no reference to the input.
//
//	book, err := mobi.Open("book.mobi")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(book.Title())
//
// # Metadata
//
// The [Book.Metadata] method returns a [Metadata] struct with author,
// publisher, description, subject, publishing date, contributor, rights,
// type, source, language and a few identifiers. Fields are empty when the
// book has no corresponding EXTH record.
//
// # Text
//
// [Book.Text] returns the body as stored (usually HTML-like markup).
// [Book.PlainText] strips the markup:
//
//	text, _ := book.PlainText()
//	fmt.Println(len(text))
//
// # Error Handling
//
// The package defines sentinel errors for common failure cases:
//   - [ErrMalformedContainer] – the Palm database envelope is invalid
//   - [ErrMissingSection] – the document or format header is absent
//   - [ErrCorruptCompressedData] – a body record cannot be decompressed
//   - [ErrDRMProtected] – the book is encrypted
//   - [ErrNoCover] – no cover image could be located
//
// Missing optional sections (EXTH, INDX, FLIS, FCIS, title) are not errors;
// they are reported by [Book.Warnings].
package mobi
