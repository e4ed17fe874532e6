package mobi

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// benchBookBody returns realistic markup for numChapters chapters separated
// by page breaks.
func benchBookBody(numChapters int) string {
	var sb strings.Builder
	sb.WriteString("<html><head><guide></guide></head><body>")
	for i := 1; i <= numChapters; i++ {
		fmt.Fprintf(&sb, `<h1>Chapter %d</h1>
<p>This is the opening paragraph of chapter %d. It contains enough text to simulate a realistic reading experience for benchmark purposes.</p>
<p>The second paragraph continues the narrative with additional details and descriptions that help establish the setting and characters.</p>
<p>Finally, the chapter concludes with a closing paragraph that wraps up the events described in this section of the book.</p>
<mbp:pagebreak/>`, i, i)
	}
	sb.WriteString("</body></html>")
	return sb.String()
}

// buildBenchBook splits body into PalmDOC records of at most 4096 bytes,
// followed by a FLIS record, and returns the encoded book.
func buildBenchBook(body string) []byte {
	var records [][]byte
	for len(body) > 0 {
		n := min(4096, len(body))
		records = append(records, compressLiteralPalmDOC([]byte(body[:n])))
		body = body[n:]
	}
	h := defaultTestHeader()
	h.recordCount = uint16(len(records))
	h.firstNonBook = uint32(len(records) + 1)
	h.lastContent = uint16(len(records))
	exth := []testEXTH{
		{typ: EXTHAuthor, data: []byte("John Doe")},
		{typ: EXTHPublisher, data: []byte("Bench Press")},
		{typ: EXTHLanguage, data: []byte("en")},
	}
	h.flisIndex = uint32(len(records) + 1)
	records = append(records, buildFLIS())
	return buildTestBook(h, exth, "Benchmark Book", records...)
}

// BenchmarkOpen measures decoding a 10-chapter PalmDOC book from disk.
func BenchmarkOpen(b *testing.B) {
	fp := filepath.Join(b.TempDir(), "bench.mobi")
	if err := os.WriteFile(fp, buildBenchBook(benchBookBody(10)), 0644); err != nil {
		b.Fatalf("write bench book: %v", err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		book, err := Open(fp)
		if err != nil {
			b.Fatalf("Open: %v", err)
		}
		_ = book.Metadata()
	}
}

// BenchmarkPlainText measures markup stripping of an already decoded book.
func BenchmarkPlainText(b *testing.B) {
	data := buildBenchBook(benchBookBody(10))
	book, err := NewReader(strings.NewReader(string(data)), int64(len(data)))
	if err != nil {
		b.Fatalf("NewReader: %v", err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := book.PlainText(); err != nil {
			b.Fatalf("PlainText: %v", err)
		}
	}
}

// BenchmarkPalmDOCDecompress measures LZ77 decoding of one record with
// back-references.
func BenchmarkPalmDOCDecompress(b *testing.B) {
	record := compressLiteralPalmDOC([]byte("The quick brown fox jumps over the lazy dog. "))
	for len(record) < 4000 {
		record = append(record, backReference(45, 10)...)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := palmDOCDecompress(record); err != nil {
			b.Fatalf("palmDOCDecompress: %v", err)
		}
	}
}

// BenchmarkHuffCDICDecompress measures HUFF/CDIC decoding including phrase
// expansion.
func BenchmarkHuffCDICDecompress(b *testing.B) {
	h, err := newHuffCDICCompression(buildSimpleHuff(), [][]byte{buildCDIC([]testPhrase{
		{data: []byte("the "), literal: true},
		{data: []byte("book "), literal: true},
		{data: []byte{0xFF, 0xFE}},
	})}, 0)
	if err != nil {
		b.Fatalf("newHuffCDICCompression: %v", err)
	}
	record := make([]byte, 4096)
	for i := range record {
		record[i] = 0xFF - byte(i%3)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := h.decompress(record); err != nil {
			b.Fatalf("decompress: %v", err)
		}
	}
}
