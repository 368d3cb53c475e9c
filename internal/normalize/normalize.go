/*
Package normalize flattens the machine-readable block of a Form 4 submission
into a canonical line-oriented representation. Each element with text becomes
one "path=text" line, where path is the slash-joined chain of tags from the
document root. Wrapper elements with no text of their own contribute nothing,
which strips most of the boilerplate a raw submission carries.
*/
package normalize

import (
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"strings"

	"golang.org/x/net/html/charset"
)

// xmlBlockRe locates the first embedded markup block of a full submission.
var xmlBlockRe = regexp.MustCompile(`(?is)<XML>(.*?)</XML>`)

// MalformedDocumentError reports a submission whose markup block is missing
// or not well-formed. Line and Col are zero when no block was found at all.
type MalformedDocumentError struct {
	Line   int
	Col    int
	Reason string
}

func (e *MalformedDocumentError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("malformed document at line %d, column %d: %s", e.Line, e.Col, e.Reason)
	}
	return "malformed document: " + e.Reason
}

// Flatten converts the raw text of a full submission into its canonical
// flattened form. The output is deterministic for a given input; a missing
// or unparsable markup block yields a *MalformedDocumentError.
func Flatten(raw string) (string, error) {
	m := xmlBlockRe.FindStringSubmatch(raw)
	if m == nil {
		return "", &MalformedDocumentError{Reason: "no <XML>...</XML> block found"}
	}
	block := strings.TrimSpace(m[1])

	dec := xml.NewDecoder(strings.NewReader(block))
	dec.CharsetReader = charset.NewReaderLabel

	// Explicit stack walk instead of recursion: submissions can nest deeply
	// and the tag stack doubles as the path under construction.
	var (
		lines []string
		path  []string
		text  strings.Builder
		open  bool // no child seen yet since the last start tag
	)

	// Emit the line for the innermost open element, if its own text (the
	// character data before its first child) is non-empty after trimming.
	flush := func() {
		if !open {
			return
		}
		if t := strings.TrimSpace(text.String()); t != "" {
			lines = append(lines, strings.Join(path, "/")+"="+t)
		}
		text.Reset()
		open = false
	}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			line, col := position(block, dec.InputOffset())
			return "", &MalformedDocumentError{Line: line, Col: col, Reason: err.Error()}
		}

		switch t := tok.(type) {
		case xml.StartElement:
			flush()
			path = append(path, t.Name.Local)
			open = true
		case xml.CharData:
			if open {
				text.Write(t)
			}
		case xml.EndElement:
			flush()
			path = path[:len(path)-1]
		}
	}

	return strings.Join(lines, "\n"), nil
}

// position converts a byte offset into 1-based line and column numbers.
func position(s string, offset int64) (line, col int) {
	if offset > int64(len(s)) {
		offset = int64(len(s))
	}
	head := s[:offset]
	line = 1 + strings.Count(head, "\n")
	if i := strings.LastIndexByte(head, '\n'); i >= 0 {
		col = len(head) - i
	} else {
		col = len(head) + 1
	}
	return line, col
}
