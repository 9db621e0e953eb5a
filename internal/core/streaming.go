package core

// streaming.go wraps raw input before reconstruction:
//
//   - CountingReader: tracks raw bytes read for the conversion log
//   - BOMSkipper: drops the UTF-8 BOM that Excel puts on CSV exports
//   - DecodeCharset: converts Windows-1252 and Latin-1 exports to UTF-8
//   - UTF8Sanitizer: replaces bytes that are still invalid UTF-8 with '?'
//
// WrapInput applies them in that order.

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// BOMSkipper wraps an io.Reader and drops a leading UTF-8 BOM.
type BOMSkipper struct {
	r       *bufio.Reader
	checked bool
}

// NewBOMSkipper creates a BOM-skipping reader.
func NewBOMSkipper(r io.Reader) *BOMSkipper {
	return &BOMSkipper{r: bufio.NewReader(r)}
}

func (b *BOMSkipper) Read(p []byte) (int, error) {
	if !b.checked {
		b.checked = true
		head, err := b.r.Peek(len(utf8BOM))
		if err != nil && err != io.EOF {
			return 0, err
		}
		if bytes.Equal(head, utf8BOM) {
			if _, err := b.r.Discard(len(utf8BOM)); err != nil {
				return 0, err
			}
		}
	}
	return b.r.Read(p)
}

// UTF8Sanitizer replaces invalid UTF-8 bytes with '?' as they stream
// through. A multi-byte sequence split across reads is carried over to the
// next read instead of being treated as invalid.
type UTF8Sanitizer struct {
	r       io.Reader
	pending []byte
}

// NewUTF8Sanitizer creates a sanitizing reader.
func NewUTF8Sanitizer(r io.Reader) *UTF8Sanitizer {
	return &UTF8Sanitizer{r: r, pending: make([]byte, 0, utf8.UTFMax)}
}

func (s *UTF8Sanitizer) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	offset := copy(p, s.pending)
	s.pending = s.pending[:copy(s.pending, s.pending[offset:])]

	n, err := s.r.Read(p[offset:])
	n += offset
	if n == 0 {
		return 0, err
	}

	return s.sanitize(p[:n], err == io.EOF), err
}

// sanitize rewrites data in place and returns the number of bytes ready.
func (s *UTF8Sanitizer) sanitize(data []byte, atEOF bool) int {
	if isASCII(data) {
		return len(data)
	}

	write := 0
	for read := 0; read < len(data); {
		r, size := utf8.DecodeRune(data[read:])
		if r == utf8.RuneError && size == 1 {
			if !atEOF && !utf8.FullRune(data[read:]) {
				s.pending = append(s.pending, data[read:]...)
				return write
			}
			data[write] = '?'
			write++
			read++
			continue
		}
		copy(data[write:], data[read:read+size])
		write += size
		read += size
	}
	return write
}

func isASCII(data []byte) bool {
	for _, b := range data {
		if b >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// CountingReader tracks bytes read.
type CountingReader struct {
	r         io.Reader
	BytesRead int64
}

// NewCountingReader creates a counting reader.
func NewCountingReader(r io.Reader) *CountingReader {
	return &CountingReader{r: r}
}

func (c *CountingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.BytesRead += int64(n)
	return n, err
}

// DecodeCharset converts input in the named encoding to UTF-8.
// utf-8 (or empty) returns r unchanged.
func DecodeCharset(r io.Reader, encoding string) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "", "utf-8", "utf8":
		return r, nil
	case "windows-1252", "cp1252":
		return transform.NewReader(r, charmap.Windows1252.NewDecoder()), nil
	case "latin1", "iso-8859-1":
		return transform.NewReader(r, charmap.ISO8859_1.NewDecoder()), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedCharset, encoding)
}

// WrapInput prepares raw export bytes for reconstruction. The returned
// CountingReader sits closest to r, so it counts raw bytes.
func WrapInput(r io.Reader, encoding string) (io.Reader, *CountingReader, error) {
	counter := NewCountingReader(r)
	decoded, err := DecodeCharset(NewBOMSkipper(counter), encoding)
	if err != nil {
		return nil, nil, err
	}
	return NewUTF8Sanitizer(decoded), counter, nil
}
