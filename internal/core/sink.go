package core

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Sink receives the output header and rows.
type Sink interface {
	WriteHeader(columns []string) error
	WriteRow(row NormalizedRow) error
	Close() error
}

// Output formats.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

const (
	ContentTypeCSV  = "text/csv; charset=utf-8"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// XLSXSheetName names the worksheet written by XLSXSink.
const XLSXSheetName = "Ready"

// ParseFormat normalizes an output format name. Empty means csv.
func ParseFormat(s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// ContentType returns the MIME type for a parsed format.
func ContentType(format string) string {
	if format == FormatXLSX {
		return ContentTypeXLSX
	}
	return ContentTypeCSV
}

// NewSink creates the sink for format.
func NewSink(format string, w io.Writer, crlf bool) (Sink, error) {
	f, err := ParseFormat(format)
	if err != nil {
		return nil, err
	}
	if f == FormatXLSX {
		return NewXLSXSink(w), nil
	}
	return NewCSVSink(w, crlf), nil
}

// CSVSink writes minimally quoted CSV.
type CSVSink struct {
	w *csv.Writer
}

// NewCSVSink creates a CSV sink. crlf selects \r\n row terminators.
func NewCSVSink(w io.Writer, crlf bool) *CSVSink {
	cw := csv.NewWriter(w)
	cw.UseCRLF = crlf
	return &CSVSink{w: cw}
}

func (s *CSVSink) WriteHeader(columns []string) error {
	return s.w.Write(columns)
}

func (s *CSVSink) WriteRow(row NormalizedRow) error {
	return s.w.Write(row.Values())
}

// Close flushes buffered output.
func (s *CSVSink) Close() error {
	s.w.Flush()
	return s.w.Error()
}

// XLSXSink buffers rows into a workbook and writes it on Close.
type XLSXSink struct {
	out  io.Writer
	file *excelize.File
	sw   *excelize.StreamWriter
	row  int
	err  error
}

// NewXLSXSink creates a workbook with a single "Ready" sheet.
func NewXLSXSink(w io.Writer) *XLSXSink {
	f := excelize.NewFile()
	s := &XLSXSink{out: w, file: f}

	if err := f.SetSheetName(f.GetSheetName(0), XLSXSheetName); err != nil {
		s.err = fmt.Errorf("rename sheet: %w", err)
		return s
	}
	sw, err := f.NewStreamWriter(XLSXSheetName)
	if err != nil {
		s.err = fmt.Errorf("open stream writer: %w", err)
		return s
	}
	s.sw = sw
	return s
}

func (s *XLSXSink) write(values []string) error {
	if s.err != nil {
		return s.err
	}
	s.row++
	cell, err := excelize.CoordinatesToCellName(1, s.row)
	if err != nil {
		return err
	}
	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}
	if err := s.sw.SetRow(cell, row); err != nil {
		s.err = fmt.Errorf("write row %d: %w", s.row, err)
	}
	return s.err
}

func (s *XLSXSink) WriteHeader(columns []string) error {
	return s.write(columns)
}

func (s *XLSXSink) WriteRow(row NormalizedRow) error {
	return s.write(row.Values())
}

// Close writes the workbook to the underlying writer.
func (s *XLSXSink) Close() error {
	defer s.file.Close()
	if s.err != nil {
		return s.err
	}
	if err := s.sw.Flush(); err != nil {
		return fmt.Errorf("flush sheet: %w", err)
	}
	if _, err := s.file.WriteTo(s.out); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
