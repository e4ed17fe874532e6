// Command mobidump prints the metadata and text of a MOBI or PalmDOC e-book.
//
// Usage:
//
//	mobidump [-json] [-plain] [-cover file] [-v] book.mobi
//
// Exit codes: 0 on success, 1 when the book cannot be decoded or written,
// 2 on usage errors.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/simp-lee/mobi"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// summary is the -json output document.
type summary struct {
	Title       string          `json:"title"`
	Metadata    metadataSummary `json:"metadata"`
	Compression string          `json:"compression"`
	Encoding    uint32          `json:"encoding"`
	Records     int             `json:"records"`
	Cover       *coverSummary   `json:"cover,omitempty"`
	Warnings    []string        `json:"warnings,omitempty"`
	Text        string          `json:"text"`
}

type metadataSummary struct {
	Author          string `json:"author,omitempty"`
	Publisher       string `json:"publisher,omitempty"`
	Imprint         string `json:"imprint,omitempty"`
	Description     string `json:"description,omitempty"`
	ISBN            string `json:"isbn,omitempty"`
	Subject         string `json:"subject,omitempty"`
	Date            string `json:"date,omitempty"`
	Contributor     string `json:"contributor,omitempty"`
	Rights          string `json:"rights,omitempty"`
	Type            string `json:"type,omitempty"`
	Source          string `json:"source,omitempty"`
	ASIN            string `json:"asin,omitempty"`
	CreatorSoftware string `json:"creator_software,omitempty"`
	UpdatedTitle    string `json:"updated_title,omitempty"`
	Language        string `json:"language,omitempty"`
}

func newMetadataSummary(m mobi.Metadata) metadataSummary {
	return metadataSummary{
		Author:          m.Author,
		Publisher:       m.Publisher,
		Imprint:         m.Imprint,
		Description:     m.Description,
		ISBN:            m.ISBN,
		Subject:         m.Subject,
		Date:            m.Date,
		Contributor:     m.Contributor,
		Rights:          m.Rights,
		Type:            m.Type,
		Source:          m.Source,
		ASIN:            m.ASIN,
		CreatorSoftware: m.CreatorSoftware,
		UpdatedTitle:    m.UpdatedTitle,
		Language:        m.Language,
	}
}

type coverSummary struct {
	RecordIndex int    `json:"record_index"`
	MediaType   string `json:"media_type"`
	Size        int    `json:"size"`
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("mobidump", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		flagJSON  bool
		flagPlain bool
		flagCover string
		flagV     bool
	)
	fs.BoolVar(&flagJSON, "json", false, "print a JSON summary instead of text")
	fs.BoolVar(&flagPlain, "plain", false, "strip markup from the body text")
	fs.StringVar(&flagCover, "cover", "", "write the cover image to this file")
	fs.BoolVar(&flagV, "v", false, "log decode stages to stderr")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: mobidump [flags] book.mobi")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}
	path := fs.Arg(0)

	level := slog.LevelWarn
	if flagV {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	opts := []mobi.Option{mobi.WithLogger(logger)}
	if flagCover == "" && !flagJSON {
		opts = append(opts, mobi.WithoutCover())
	}
	book, err := mobi.Open(path, opts...)
	if err != nil {
		fmt.Fprintf(stderr, "mobidump: %v\n", err)
		return 1
	}

	text := book.Text()
	if flagPlain {
		if text, err = book.PlainText(); err != nil {
			fmt.Fprintf(stderr, "mobidump: extract text: %v\n", err)
			return 1
		}
	}

	cover, coverErr := book.Cover()
	if flagCover != "" {
		if coverErr != nil {
			fmt.Fprintf(stderr, "mobidump: %v\n", coverErr)
			return 1
		}
		if err := os.WriteFile(flagCover, cover.Data, 0644); err != nil {
			fmt.Fprintf(stderr, "mobidump: write cover: %v\n", err)
			return 1
		}
	}

	if flagJSON {
		st := book.Structure()
		s := summary{
			Title:       book.Title(),
			Metadata:    newMetadataSummary(book.Metadata()),
			Compression: st.PalmDOC.Compression.String(),
			Encoding:    st.MOBI.TextEncoding,
			Records:     len(st.PDB.Records),
			Warnings:    book.Warnings(),
			Text:        text,
		}
		if !errors.Is(coverErr, mobi.ErrNoCover) {
			s.Cover = &coverSummary{
				RecordIndex: cover.RecordIndex,
				MediaType:   cover.MediaType,
				Size:        len(cover.Data),
			}
		}
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(s); err != nil {
			fmt.Fprintf(stderr, "mobidump: %v\n", err)
			return 1
		}
		return 0
	}

	if title := book.Title(); title != "" {
		fmt.Fprintf(stdout, "Title: %s\n", title)
	}
	if author := book.Metadata().Author; author != "" {
		fmt.Fprintf(stdout, "Author: %s\n", author)
	}
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, text)
	return 0
}
