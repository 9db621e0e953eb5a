package core

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jbec2912-cell/csv-filter-tool/internal/logging"
)

// DefaultOutputName is the file name downstream upload tooling expects.
const DefaultOutputName = "11_Ready.csv"

// Settings are the service-wide conversion defaults. Requests may override
// the layout, format and output name.
type Settings struct {
	Layout     string
	OutputName string
	Format     string
	Encoding   string
	CRLF       bool
	Options    Options
}

// Observer is notified after every conversion attempt.
type Observer interface {
	ObserveConversion(source Source, summary Summary, duration time.Duration, err error)
}

// Service runs conversions for the web, CLI and inbox collaborators.
type Service struct {
	settings Settings
	limiter  *Limiter
	observer Observer
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithLimiter bounds concurrent conversions.
func WithLimiter(l *Limiter) ServiceOption {
	return func(s *Service) { s.limiter = l }
}

// WithObserver reports conversion outcomes, typically to metrics.
func WithObserver(o Observer) ServiceOption {
	return func(s *Service) { s.observer = o }
}

// NewService creates a Service.
func NewService(settings Settings, opts ...ServiceOption) *Service {
	if settings.OutputName == "" {
		settings.OutputName = DefaultOutputName
	}
	if settings.Layout == "" {
		settings.Layout = LayoutAuto
	}
	settings.Options = settings.Options.withDefaults()

	s := &Service{settings: settings}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Settings returns the service defaults.
func (s *Service) Settings() Settings { return s.settings }

// Limiter returns the concurrency limiter, or nil when unbounded.
func (s *Service) Limiter() *Limiter { return s.limiter }

// Layouts returns the registered layouts for display.
func (s *Service) Layouts() []Layout { return All() }

// Request is one conversion.
type Request struct {
	FileName   string    // used to detect csv/xlsx input and for logging
	Body       io.Reader // raw export bytes
	Layout     string    // layout key, "auto" or "" for the service default
	Format     string    // csv, xlsx or "" for the service default
	OutputName string    // "" for the service default
	Source     Source
}

// Convert runs the pipeline over req.Body and copies the result to w.
// Output is assembled in memory, so w receives nothing when an error is
// returned.
func (s *Service) Convert(ctx context.Context, req Request, w io.Writer) (res *Result, err error) {
	id := uuid.NewString()
	start := time.Now()
	source := req.Source
	if source == "" {
		source = SourceCLI
	}

	log := logging.WithFields(ctx,
		"conversion_id", id,
		"source", string(source),
		"file", req.FileName,
	)
	if ip := ClientIPFromContext(ctx); ip != "" {
		log = log.With("client_ip", ip)
	}

	var summary Summary
	defer func() {
		if s.observer != nil {
			s.observer.ObserveConversion(source, summary, time.Since(start), err)
		}
	}()

	if s.limiter != nil {
		if err = s.limiter.Acquire(ctx); err != nil {
			log.Warn("conversion slot unavailable", "error", err, "active", s.limiter.ActiveCount())
			return nil, err
		}
		defer s.limiter.Release()
	}
	if err = ctx.Err(); err != nil {
		return nil, err
	}

	layoutKey := firstNonEmpty(req.Layout, s.settings.Layout)
	layouts, err := Resolve(layoutKey)
	if err != nil {
		return nil, err
	}
	format, err := ParseFormat(firstNonEmpty(req.Format, s.settings.Format))
	if err != nil {
		return nil, err
	}
	kind, err := DetectInput(req.FileName)
	if err != nil {
		return nil, err
	}

	body := req.Body
	encoding := s.settings.Encoding
	if kind == InputXLSX {
		if body, err = ReadXLSX(body); err != nil {
			return nil, err
		}
		encoding = "utf-8"
	}

	in, counter, err := WrapInput(body, encoding)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	sink, err := NewSink(format, &buf, s.settings.CRLF)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{Layouts: layouts, Options: s.settings.Options, Logger: log}
	summary, err = p.Run(in, sink)
	if err != nil {
		sink.Close()
		log.Warn("conversion failed", "error", err, "bytes_read", counter.BytesRead)
		return nil, fmt.Errorf("convert %s: %w", displayName(req.FileName), err)
	}
	if err = sink.Close(); err != nil {
		return nil, fmt.Errorf("finish output: %w", err)
	}

	if _, err = io.Copy(w, &buf); err != nil {
		return nil, fmt.Errorf("write output: %w", err)
	}

	res = &Result{
		ConversionID: id,
		OutputName:   OutputFileName(firstNonEmpty(req.OutputName, s.settings.OutputName), format),
		ContentType:  ContentType(format),
		Summary:      summary,
		Duration:     time.Since(start),
	}

	log.Info("conversion completed",
		"layout", summary.Layout,
		"bytes_read", counter.BytesRead,
		"rows_read", summary.RowsRead,
		"rows_written", summary.RowsWritten,
		"rows_dropped", summary.RowsDropped,
		"rows_duplicate", summary.RowsDuplicate,
		"rows_skipped", summary.RowsSkipped,
		"warnings", len(summary.Warnings),
		"duration_ms", res.Duration.Milliseconds(),
	)

	return res, nil
}

// OutputFileName gives name the extension of format when it carries a
// different spreadsheet extension.
func OutputFileName(name, format string) string {
	ext := filepath.Ext(name)
	want := "." + format
	switch strings.ToLower(ext) {
	case want:
		return name
	case ".csv", ".xlsx":
		return strings.TrimSuffix(name, ext) + want
	}
	return name + want
}

func displayName(name string) string {
	if name == "" {
		return "input"
	}
	return filepath.Base(name)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
