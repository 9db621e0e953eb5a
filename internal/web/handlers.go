package web

import (
	"bytes"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/jbec2912-cell/csv-filter-tool/internal/core"
	"github.com/jbec2912-cell/csv-filter-tool/internal/logging"
	"github.com/jbec2912-cell/csv-filter-tool/internal/web/templates"
)

// Response headers carrying the conversion summary.
const (
	HeaderConversionID  = "X-Conversion-ID"
	HeaderRowsWritten   = "X-Rows-Written"
	HeaderRowsDropped   = "X-Rows-Dropped"
	HeaderRowsDuplicate = "X-Rows-Duplicate"
	HeaderRowsSkipped   = "X-Rows-Skipped"
	HeaderParseWarnings = "X-Parse-Warnings"
)

// multipartMemory is how much of a multipart form is held in memory before
// spilling to temporary files.
const multipartMemory = 8 << 20

// handleIndex renders the upload page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	settings := s.service.Settings()
	data := templates.IndexData{
		Layouts:       s.service.Layouts(),
		OutputName:    settings.OutputName,
		DefaultLayout: settings.Layout,
		DefaultFormat: firstNonEmpty(settings.Format, core.FormatCSV),
		MaxFileSizeMB: s.cfg.Upload.MaxFileSize >> 20,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.Index(data).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render index", "error", err)
	}
}

// handleConvert converts the uploaded export and returns it as a download.
// Form fields: file (required), layout and format (optional).
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Upload.MaxFileSize)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		respondError(w, r, formError(err))
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, r, errNoFile)
		return
	}
	defer file.Close()

	if strings.TrimSpace(header.Filename) == "" {
		respondError(w, r, errNoSelection)
		return
	}

	ctx := withRequestMetadata(r.Context(), r)
	req := core.Request{
		FileName: header.Filename,
		Body:     file,
		Layout:   r.FormValue("layout"),
		Format:   r.FormValue("format"),
		Source:   core.SourceWeb,
	}

	var out bytes.Buffer
	res, err := s.service.Convert(ctx, req, &out)
	if err != nil {
		respondError(w, r, err)
		return
	}

	h := w.Header()
	h.Set("Content-Type", res.ContentType)
	h.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": res.OutputName}))
	h.Set("Content-Length", strconv.Itoa(out.Len()))
	h.Set("Cache-Control", "no-store")
	h.Set(HeaderConversionID, res.ConversionID)
	h.Set(HeaderRowsWritten, strconv.Itoa(res.Summary.RowsWritten))
	h.Set(HeaderRowsDropped, strconv.Itoa(res.Summary.RowsDropped))
	h.Set(HeaderRowsDuplicate, strconv.Itoa(res.Summary.RowsDuplicate))
	h.Set(HeaderRowsSkipped, strconv.Itoa(res.Summary.RowsSkipped))
	h.Set(HeaderParseWarnings, strconv.Itoa(len(res.Summary.Warnings)))

	w.WriteHeader(http.StatusOK)
	if _, err := out.WriteTo(w); err != nil {
		logging.FromContext(r.Context()).Warn("write download", "error", err, "conversion_id", res.ConversionID)
	}
}

// formError classifies a multipart parsing failure.
func formError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return err
	}
	if strings.Contains(err.Error(), "request body too large") {
		return &http.MaxBytesError{}
	}
	return fmt.Errorf("%w: %v", errMalformedForm, err)
}

// LayoutResponse describes one registered layout.
type LayoutResponse struct {
	Key      string         `json:"key"`
	Label    string         `json:"label"`
	Required []string       `json:"required"`
	Columns  core.ColumnMap `json:"columns"`
}

// handleLayouts lists the registered layouts.
func (s *Server) handleLayouts(w http.ResponseWriter, r *http.Request) {
	layouts := s.service.Layouts()
	resp := make([]LayoutResponse, 0, len(layouts))
	for _, l := range layouts {
		resp = append(resp, LayoutResponse{
			Key:      l.Key,
			Label:    l.Label,
			Required: l.RequiredColumns(),
			Columns:  l.Columns,
		})
	}
	writeJSON(w, resp)
}

// HealthResponse is returned by /healthz.
type HealthResponse struct {
	Status      string              `json:"status"`
	Layouts     int                 `json:"layouts"`
	Conversions *core.LimiterStatus `json:"conversions,omitempty"`
}

// handleHealth reports liveness and conversion slot usage.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "ok", Layouts: len(s.service.Layouts())}
	if l := s.service.Limiter(); l != nil {
		st := l.Status()
		resp.Conversions = &st
	}
	writeJSON(w, resp)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
