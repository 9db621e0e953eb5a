package core

import (
	"strings"
	"time"
)

// RawRow is one logical input record, positionally aligned to the Header.
type RawRow []string

// blank reports whether every field is empty after trimming.
func (r RawRow) blank() bool {
	for _, f := range r {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// Header maps column names to positions. Lookups are case-sensitive;
// surrounding whitespace in the source header text is ignored.
type Header struct {
	names []string
	index map[string]int
}

// NewHeader builds a Header from a reconstructed row.
// When a name repeats, the first occurrence wins.
func NewHeader(names []string) Header {
	h := Header{
		names: make([]string, len(names)),
		index: make(map[string]int, len(names)),
	}
	for i, n := range names {
		n = strings.TrimSpace(n)
		h.names[i] = n
		if _, dup := h.index[n]; !dup && n != "" {
			h.index[n] = i
		}
	}
	return h
}

// Names returns the column names in source order.
func (h Header) Names() []string {
	out := make([]string, len(h.names))
	copy(out, h.names)
	return out
}

// Len returns the number of columns.
func (h Header) Len() int { return len(h.names) }

// Has reports whether the column exists.
func (h Header) Has(name string) bool {
	_, ok := h.index[name]
	return ok && name != ""
}

// Get returns the value of the named column in row.
// A missing column, or a row too short to reach it, yields "".
func (h Header) Get(row RawRow, name string) string {
	if name == "" {
		return ""
	}
	i, ok := h.index[name]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

// OutputColumns is the fixed output header, in emission order.
var OutputColumns = []string{
	"phone_number", "Customer", "LastName", "Year", "Make", "Model", "Vin",
	"Miles", "Appointment", "Time", "Rate", "PurchaseDate", "Lender", "Payment",
}

// NormalizedRow is one output record.
type NormalizedRow struct {
	PhoneNumber  string
	Customer     string
	LastName     string
	Year         string
	Make         string
	Model        string
	Vin          string
	Miles        string
	Appointment  string
	Time         string
	Rate         string
	PurchaseDate string
	Lender       string
	Payment      string
}

// Values returns the fields in OutputColumns order.
func (r NormalizedRow) Values() []string {
	return []string{
		r.PhoneNumber, r.Customer, r.LastName, r.Year, r.Make, r.Model, r.Vin,
		r.Miles, r.Appointment, r.Time, r.Rate, r.PurchaseDate, r.Lender, r.Payment,
	}
}

// IdentityKey identifies duplicate appointments.
type IdentityKey struct {
	Vin         string
	Appointment string
	Time        string
}

// Key returns the row's identity key.
func (r NormalizedRow) Key() IdentityKey {
	return IdentityKey{Vin: r.Vin, Appointment: r.Appointment, Time: r.Time}
}

// ColumnMap names the source header text for every logical input field.
// An empty entry means the layout has no such column.
type ColumnMap struct {
	Name         string `yaml:"name" json:"name,omitempty"`
	Vehicle      string `yaml:"vehicle" json:"vehicle,omitempty"`
	Vin          string `yaml:"vin" json:"vin,omitempty"`
	Miles        string `yaml:"miles" json:"miles,omitempty"`
	Appointment  string `yaml:"appointment" json:"appointment,omitempty"`
	Time         string `yaml:"time" json:"time,omitempty"`
	Cell         string `yaml:"cell" json:"cell,omitempty"`
	Home         string `yaml:"home" json:"home,omitempty"`
	Work         string `yaml:"work" json:"work,omitempty"`
	Business     string `yaml:"business" json:"business,omitempty"`
	Phones       string `yaml:"phones" json:"phones,omitempty"`
	Rate         string `yaml:"rate" json:"rate,omitempty"`
	PurchaseDate string `yaml:"purchase_date" json:"purchase_date,omitempty"`
	BankName     string `yaml:"bank_name" json:"bank_name,omitempty"`
	PL           string `yaml:"pl" json:"pl,omitempty"`
	Payment      string `yaml:"payment" json:"payment,omitempty"`
}

// DefaultRequired lists the logical fields a header must carry to be accepted.
var DefaultRequired = []string{"name", "vehicle", "vin"}

// Layout describes one CRM export format.
type Layout struct {
	Key      string    `yaml:"key" json:"key"`
	Label    string    `yaml:"label" json:"label"`
	Columns  ColumnMap `yaml:"columns" json:"columns"`
	Required []string  `yaml:"required" json:"required"` // logical field names; DefaultRequired when empty
}

// column resolves a logical field name (as used in Required) to header text.
func (m ColumnMap) column(field string) string {
	switch strings.ToLower(strings.ReplaceAll(field, " ", "_")) {
	case "name":
		return m.Name
	case "vehicle":
		return m.Vehicle
	case "vin":
		return m.Vin
	case "miles":
		return m.Miles
	case "appointment":
		return m.Appointment
	case "time":
		return m.Time
	case "cell":
		return m.Cell
	case "home":
		return m.Home
	case "work":
		return m.Work
	case "business":
		return m.Business
	case "phones":
		return m.Phones
	case "rate":
		return m.Rate
	case "purchase_date", "purchasedate":
		return m.PurchaseDate
	case "bank_name", "bankname":
		return m.BankName
	case "pl", "p/l":
		return m.PL
	case "payment":
		return m.Payment
	}
	return ""
}

// RequiredColumns returns the header text of every required field.
func (l Layout) RequiredColumns() []string {
	fields := l.Required
	if len(fields) == 0 {
		fields = DefaultRequired
	}
	cols := make([]string, 0, len(fields))
	for _, f := range fields {
		cols = append(cols, l.Columns.column(f))
	}
	return cols
}

// Missing returns the required columns absent from h.
func (l Layout) Missing(h Header) []string {
	var missing []string
	for _, c := range l.RequiredColumns() {
		if !h.Has(c) {
			missing = append(missing, c)
		}
	}
	return missing
}

// Matches reports whether h carries every required column of the layout.
func (l Layout) Matches(h Header) bool {
	return len(l.Missing(h)) == 0
}

// Summary counts the outcome of one pipeline run.
type Summary struct {
	Layout        string         `json:"layout"`
	RowsRead      int            `json:"rows_read"`
	RowsWritten   int            `json:"rows_written"`
	RowsDropped   int            `json:"rows_dropped"`
	RowsDuplicate int            `json:"rows_duplicate"`
	RowsSkipped   int            `json:"rows_skipped"` // preamble rows before the header
	Warnings      []ParseWarning `json:"warnings,omitempty"`
}

// Source identifies which collaborator started a conversion.
type Source string

const (
	SourceWeb   Source = "web"
	SourceCLI   Source = "cli"
	SourceInbox Source = "inbox"
)

// Result describes a completed conversion.
type Result struct {
	ConversionID string        `json:"conversion_id"`
	OutputName   string        `json:"output_name"`
	ContentType  string        `json:"content_type"`
	Summary      Summary       `json:"summary"`
	Duration     time.Duration `json:"duration"`
}
