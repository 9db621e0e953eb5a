package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jbec2912-cell/csv-filter-tool/internal/core"
)

func TestRecorder_ObserveSuccess(t *testing.T) {
	r := NewRecorder()
	r.ObserveConversion(core.SourceWeb, core.Summary{
		RowsWritten:   3,
		RowsDropped:   2,
		RowsDuplicate: 1,
		RowsSkipped:   4,
		Warnings:      []core.ParseWarning{{Line: 7, Kind: core.WarnUnterminatedField}},
	}, 20*time.Millisecond, nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.Conversions.WithLabelValues("web", "ok")))
	assert.Equal(t, 3.0, testutil.ToFloat64(r.Rows.WithLabelValues(OutcomeWritten)))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.Rows.WithLabelValues(OutcomeDropped)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.Rows.WithLabelValues(OutcomeDuplicate)))
	assert.Equal(t, 4.0, testutil.ToFloat64(r.Rows.WithLabelValues(OutcomeSkipped)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.ParseWarnings))
}

func TestRecorder_ObserveFailure(t *testing.T) {
	r := NewRecorder()
	r.ObserveConversion(core.SourceCLI, core.Summary{}, time.Millisecond, &core.FatalInputError{Err: core.ErrEmptyInput})
	r.ObserveConversion(core.SourceInbox, core.Summary{}, time.Millisecond, errors.New("disk full"))

	assert.Equal(t, 1.0, testutil.ToFloat64(r.Conversions.WithLabelValues("cli", "invalid_input")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.Conversions.WithLabelValues("inbox", "error")))
	assert.Equal(t, 0.0, testutil.ToFloat64(r.Rows.WithLabelValues(OutcomeWritten)))
}

func TestRecorder_Handler(t *testing.T) {
	r := NewRecorder()
	r.ObserveConversion(core.SourceWeb, core.Summary{RowsWritten: 1}, time.Millisecond, nil)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `csvfilter_conversions_total{source="web",status="ok"} 1`)
	assert.Contains(t, body, "csvfilter_conversion_duration_seconds_bucket")
	assert.Contains(t, body, "go_goroutines")
}

func TestRecorder_Independent(t *testing.T) {
	a, b := NewRecorder(), NewRecorder()
	a.ObserveConversion(core.SourceWeb, core.Summary{}, time.Millisecond, nil)
	assert.Equal(t, 0.0, testutil.ToFloat64(b.Conversions.WithLabelValues("web", "ok")))
}
