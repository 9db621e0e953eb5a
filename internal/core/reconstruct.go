package core

// reconstruct.go rebuilds logical CSV records from physical lines.
//
// CRM exports wrap quoted values across lines, so a physical line only ends
// a record once every quote opened on it (or on the lines before it) has been
// closed. Lines of a wrapped record are joined with their original line
// breaks so embedded newlines survive into the field value.

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Reconstructor yields logical rows from a character stream in a single
// forward pass.
type Reconstructor struct {
	r        *bufio.Reader
	line     int
	done     bool
	warnings []ParseWarning
}

// NewReconstructor creates a Reconstructor reading from r.
func NewReconstructor(r io.Reader) *Reconstructor {
	return &Reconstructor{r: bufio.NewReader(r)}
}

// Next returns the next logical row and the physical line it began on.
// Blank lines outside a quoted value are skipped. It returns io.EOF once the
// stream is exhausted; a record left open by an unterminated quote is
// discarded and recorded as a warning instead of being returned.
func (rc *Reconstructor) Next() (RawRow, int, error) {
	if rc.done {
		return nil, 0, io.EOF
	}

	var buf strings.Builder
	open := false
	start := 0

	for {
		line, err := rc.r.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, 0, fmt.Errorf("read line %d: %w", rc.line+1, err)
		}
		atEOF := err == io.EOF

		if line == "" && atEOF {
			rc.done = true
			if open {
				rc.unterminated(start)
			}
			return nil, 0, io.EOF
		}
		rc.line++

		if !open {
			if strings.TrimSpace(line) == "" {
				if atEOF {
					rc.done = true
					return nil, 0, io.EOF
				}
				continue
			}
			start = rc.line
		}

		buf.WriteString(line)
		if strings.Count(line, `"`)%2 == 1 {
			open = !open
		}

		if !open {
			rc.done = atEOF
			return splitFields(trimLineEnding(buf.String())), start, nil
		}
		if atEOF {
			rc.done = true
			rc.unterminated(start)
			return nil, 0, io.EOF
		}
	}
}

func (rc *Reconstructor) unterminated(start int) {
	rc.warnings = append(rc.warnings, ParseWarning{
		Line:    start,
		Kind:    WarnUnterminatedField,
		Message: fmt.Sprintf("quoted field never closed; discarded %d line(s) through end of input", rc.line-start+1),
	})
}

// Warnings returns the structural problems recovered from so far.
func (rc *Reconstructor) Warnings() []ParseWarning {
	return rc.warnings
}

// Lines returns the number of physical lines consumed.
func (rc *Reconstructor) Lines() int {
	return rc.line
}

// ReconstructAll drains r into memory.
func ReconstructAll(r io.Reader) ([]RawRow, []ParseWarning, error) {
	rc := NewReconstructor(r)
	var rows []RawRow
	for {
		row, _, err := rc.Next()
		if err == io.EOF {
			return rows, rc.Warnings(), nil
		}
		if err != nil {
			return nil, rc.Warnings(), err
		}
		rows = append(rows, row)
	}
}

func trimLineEnding(s string) string {
	s = strings.TrimSuffix(s, "\n")
	return strings.TrimSuffix(s, "\r")
}

// splitFields splits one logical record on commas. A field that opens with a
// quote runs to its closing quote, commas and line breaks included, and a
// doubled quote inside it is a literal quote. Quotes elsewhere are literal.
func splitFields(s string) RawRow {
	var (
		fields   RawRow
		field    strings.Builder
		inQuotes bool
		atStart  = true
	)

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case inQuotes:
			if c != '"' {
				field.WriteByte(c)
			} else if i+1 < len(s) && s[i+1] == '"' {
				field.WriteByte('"')
				i++
			} else {
				inQuotes = false
			}
		case c == '"' && atStart:
			inQuotes = true
			atStart = false
		case c == ',':
			fields = append(fields, field.String())
			field.Reset()
			atStart = true
		default:
			field.WriteByte(c)
			atStart = false
		}
	}

	return append(fields, field.String())
}
