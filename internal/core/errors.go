package core

import (
	"errors"
	"fmt"
)

// Sentinel errors. Their text feeds MapError, so keep it stable.
var (
	ErrEmptyInput         = errors.New("empty file")
	ErrHeaderNotFound     = errors.New("could not find CSV header row")
	ErrUnknownLayout      = errors.New("unknown layout")
	ErrUnsupportedFormat  = errors.New("unsupported output format")
	ErrUnsupportedFile    = errors.New("unsupported file type")
	ErrUnsupportedCharset = errors.New("unsupported input encoding")
)

// FatalInputError aborts a run. Nothing has been written to the sink when
// it is returned.
type FatalInputError struct {
	Err    error
	Detail string
}

func (e *FatalInputError) Error() string {
	if e.Detail == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Detail)
}

func (e *FatalInputError) Unwrap() error { return e.Err }

func fatal(err error, format string, args ...any) *FatalInputError {
	return &FatalInputError{Err: err, Detail: fmt.Sprintf(format, args...)}
}

// IsFatalInput reports whether err is a problem with the input itself
// rather than with the environment.
func IsFatalInput(err error) bool {
	var fe *FatalInputError
	return errors.As(err, &fe)
}

// WarningKind classifies a recoverable structural problem.
type WarningKind string

const (
	WarnUnterminatedField WarningKind = "UnterminatedField"
)

// ParseWarning records a structural problem that was recovered from.
type ParseWarning struct {
	Line    int         `json:"line"` // 1-based physical line where the record began
	Kind    WarningKind `json:"kind"`
	Message string      `json:"message"`
}

func (w ParseWarning) String() string {
	return fmt.Sprintf("line %d: %s: %s", w.Line, w.Kind, w.Message)
}
