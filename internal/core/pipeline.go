package core

import (
	"fmt"
	"io"
	"log/slog"
)

// Pipeline sequences reconstruct, normalize, dedup and emit over one input.
type Pipeline struct {
	// Layouts are the header candidates, tried in order.
	Layouts []Layout
	Options Options
	Logger  *slog.Logger
}

// Run reads the whole input, then writes the header and every surviving row
// to sink. A FatalInputError leaves sink untouched. Run does not close sink.
func (p *Pipeline) Run(r io.Reader, sink Sink) (Summary, error) {
	log := p.Logger
	if log == nil {
		log = slog.Default()
	}
	opts := p.Options.withDefaults()

	if len(p.Layouts) == 0 {
		return Summary{}, fmt.Errorf("%w: no layouts registered", ErrUnknownLayout)
	}

	rc := NewReconstructor(r)
	header, layout, skipped, err := LocateHeader(rc, p.Layouts, opts.HeaderSearchRows)
	if err != nil {
		return Summary{Warnings: rc.Warnings()}, err
	}

	summary := Summary{Layout: layout.Key, RowsSkipped: skipped}
	log.Debug("header located", "layout", layout.Key, "columns", header.Len(), "skipped_rows", skipped)

	norm := NewNormalizer(layout, header, opts)
	dedup := NewDeduplicator()
	var kept []NormalizedRow

	for {
		row, _, err := rc.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			summary.Warnings = rc.Warnings()
			return summary, err
		}
		summary.RowsRead++

		out, ok := norm.Normalize(row)
		if !ok {
			summary.RowsDropped++
			continue
		}
		if !dedup.Add(out) {
			summary.RowsDuplicate++
			continue
		}
		kept = append(kept, out)
	}

	summary.Warnings = rc.Warnings()
	for _, w := range summary.Warnings {
		log.Warn("structural parse warning", "line", w.Line, "kind", w.Kind, "message", w.Message)
	}

	if err := sink.WriteHeader(OutputColumns); err != nil {
		return summary, fmt.Errorf("write header: %w", err)
	}
	for _, row := range kept {
		if err := sink.WriteRow(row); err != nil {
			return summary, fmt.Errorf("write row: %w", err)
		}
	}
	summary.RowsWritten = len(kept)

	return summary, nil
}

// Normalize converts UTF-8 CSV from r to CSV on w using the registered
// layouts and default options. A leading byte order mark is skipped.
func Normalize(r io.Reader, w io.Writer) (Summary, error) {
	in, _, err := WrapInput(r, "")
	if err != nil {
		return Summary{}, err
	}
	p := &Pipeline{Layouts: All(), Options: DefaultOptions()}
	sink := NewCSVSink(w, true)
	summary, err := p.Run(in, sink)
	if err != nil {
		return summary, err
	}
	return summary, sink.Close()
}
