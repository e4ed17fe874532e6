package mobi

import (
	"bytes"
	"errors"
	"io"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// blockTags is the set of tags that should insert a newline when encountered
// during text extraction.
var blockTags = map[atom.Atom]bool{
	atom.P:          true,
	atom.Br:         true,
	atom.Div:        true,
	atom.H1:         true,
	atom.H2:         true,
	atom.H3:         true,
	atom.H4:         true,
	atom.H5:         true,
	atom.H6:         true,
	atom.Li:         true,
	atom.Tr:         true,
	atom.Blockquote: true,
	atom.Hr:         true,
}

// skipTags is the set of tags whose content should be skipped during text extraction.
var skipTags = map[atom.Atom]bool{
	atom.Script: true,
	atom.Style:  true,
	atom.Head:   true,
}

// pageBreakTag is the Mobipocket page break element. It has no atom.
const pageBreakTag = "mbp:pagebreak"

var selfClosingSkipTagPattern = regexp.MustCompile(`(?is)<(script|style)\b([^>]*)/>`)

func normalizeSelfClosingSkipTags(htmlData []byte) []byte {
	if !selfClosingSkipTagPattern.Match(htmlData) {
		return htmlData
	}
	return selfClosingSkipTagPattern.ReplaceAll(htmlData, []byte(`<$1$2></$1>`))
}

// extractText extracts the plain text content from the book markup.
// Block-level elements produce line breaks and page breaks produce a blank
// line. Content inside <script>, <style> and <head> is skipped.
func extractText(htmlData []byte) (string, error) {
	htmlData = normalizeSelfClosingSkipTags(htmlData)
	tokenizer := html.NewTokenizer(bytes.NewReader(htmlData))

	var buf strings.Builder
	skipDepth := 0 // depth inside a skip tag
	lastWasNewline := true

	newline := func() {
		if buf.Len() > 0 && !lastWasNewline {
			buf.WriteByte('\n')
			lastWasNewline = true
		}
	}

	for {
		tt := tokenizer.Next()
		switch tt {
		case html.ErrorToken:
			err := tokenizer.Err()
			if errors.Is(err, io.EOF) {
				return strings.TrimSpace(buf.String()), nil
			}
			return "", err

		case html.StartTagToken, html.SelfClosingTagToken:
			tn, _ := tokenizer.TagName()
			a := atom.Lookup(tn)
			if tt == html.StartTagToken && skipTags[a] {
				skipDepth++
				continue
			}
			if skipDepth > 0 {
				continue
			}
			if string(tn) == pageBreakTag {
				newline()
				if buf.Len() > 0 && !strings.HasSuffix(buf.String(), "\n\n") {
					buf.WriteByte('\n')
				}
				continue
			}
			if blockTags[a] {
				newline()
			}

		case html.EndTagToken:
			tn, _ := tokenizer.TagName()
			a := atom.Lookup(tn)
			if skipTags[a] && skipDepth > 0 {
				skipDepth--
			}

		case html.TextToken:
			if skipDepth > 0 {
				continue
			}
			raw := string(tokenizer.Text())
			// Collapse internal whitespace runs to single spaces, but preserve
			// non-empty content so that inline elements keep their spacing.
			text := collapseWhitespace(raw)
			if text != "" {
				buf.WriteString(text)
				lastWasNewline = strings.HasSuffix(text, "\n")
			}
		}
	}
}

// collapseWhitespace replaces runs of whitespace characters (spaces, tabs,
// newlines) with a single space. Returns empty string if the input is all whitespace.
// Leading and trailing whitespace is preserved as a single space so that
// inter-element spacing (e.g., between inline tags) is maintained.
func collapseWhitespace(s string) string {
	var buf strings.Builder
	inSpace := false
	hasNonSpace := false
	for _, r := range s {
		if isWhitespace(r) {
			inSpace = true
		} else {
			if inSpace && buf.Len() > 0 {
				buf.WriteByte(' ')
			}
			buf.WriteRune(r)
			inSpace = false
			hasNonSpace = true
		}
	}
	if !hasNonSpace {
		return ""
	}
	result := buf.String()
	// Preserve leading whitespace as a single space.
	if len(s) > 0 && isWhitespace(rune(s[0])) {
		result = " " + result
	}
	// Preserve trailing whitespace as a single space.
	if inSpace {
		result = result + " "
	}
	return result
}

// isWhitespace returns true if r is a whitespace character.
func isWhitespace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

// findFirstImageRecIndex returns the recindex attribute of the first <img>
// element in the markup. Mobipocket numbers image records from 1, relative
// to the first image record.
func findFirstImageRecIndex(htmlData []byte) (int, bool) {
	tokenizer := html.NewTokenizer(bytes.NewReader(htmlData))
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return 0, false
		case html.StartTagToken, html.SelfClosingTagToken:
			tn, hasAttr := tokenizer.TagName()
			if atom.Lookup(tn) != atom.Img || !hasAttr {
				continue
			}
			for {
				key, val, more := tokenizer.TagAttr()
				if string(key) == "recindex" {
					if n, err := strconv.Atoi(strings.TrimSpace(string(val))); err == nil && n > 0 {
						return n, true
					}
				}
				if !more {
					break
				}
			}
		}
	}
}
