package core

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultMinVehicleLength is the shortest vehicle value that can carry a model.
const DefaultMinVehicleLength = 5

// DefaultHeaderSearchRows bounds how many rows may precede the header.
const DefaultHeaderSearchRows = 20

// Options controls row normalization and filtering.
type Options struct {
	VehiclePolicy      VehiclePolicy
	AppointmentLayout  string
	RequireAppointment bool // also drop rows whose appointment date or time did not parse
	MinVehicleLength   int
	HeaderSearchRows   int
}

// DefaultOptions returns the canonical policy: Policy B vehicles and
// appointments without a year.
func DefaultOptions() Options {
	return Options{
		VehiclePolicy:     PolicyB,
		AppointmentLayout: DefaultAppointmentLayout,
		MinVehicleLength:  DefaultMinVehicleLength,
		HeaderSearchRows:  DefaultHeaderSearchRows,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.VehiclePolicy == "" {
		o.VehiclePolicy = d.VehiclePolicy
	}
	if o.AppointmentLayout == "" {
		o.AppointmentLayout = d.AppointmentLayout
	}
	if o.MinVehicleLength <= 0 {
		o.MinVehicleLength = d.MinVehicleLength
	}
	if o.HeaderSearchRows <= 0 {
		o.HeaderSearchRows = d.HeaderSearchRows
	}
	return o
}

// Normalizer turns raw rows of one run into output rows.
// It is not safe for concurrent use.
type Normalizer struct {
	header Header
	cols   ColumnMap
	opts   Options
	caser  cases.Caser
}

// NewNormalizer binds a layout's column map to a located header.
func NewNormalizer(layout Layout, header Header, opts Options) *Normalizer {
	return &Normalizer{
		header: header,
		cols:   layout.Columns,
		opts:   opts.withDefaults(),
		caser:  cases.Lower(language.Und),
	}
}

func (n *Normalizer) get(row RawRow, column string) string {
	return n.header.Get(row, column)
}

// Normalize builds the output row. It reports false when the row is
// filtered out: no Vin, or a vehicle too short to carry a model.
func (n *Normalizer) Normalize(row RawRow) (NormalizedRow, bool) {
	vin := passthrough(n.get(row, n.cols.Vin))
	vehicle := strings.TrimSpace(n.get(row, n.cols.Vehicle))
	if vin == "" || vehicleLength(vehicle) < n.opts.MinVehicleLength {
		return NormalizedRow{}, false
	}

	customer, last := splitName(n.caser, n.get(row, n.cols.Name))
	v := ParseVehicle(vehicle, n.opts.VehiclePolicy)
	appointment, hhmm := FormatAppointment(
		n.get(row, n.cols.Appointment),
		n.get(row, n.cols.Time),
		n.opts.AppointmentLayout,
	)
	if n.opts.RequireAppointment && (appointment == "" || hhmm == "") {
		return NormalizedRow{}, false
	}

	return NormalizedRow{
		PhoneNumber: SelectPhone(PhoneSet{
			Cell:     n.get(row, n.cols.Cell),
			Home:     n.get(row, n.cols.Home),
			Work:     n.get(row, n.cols.Work),
			Business: n.get(row, n.cols.Business),
			Combined: n.get(row, n.cols.Phones),
		}),
		Customer:     customer,
		LastName:     last,
		Year:         v.Year,
		Make:         v.Make,
		Model:        v.Model,
		Vin:          vin,
		Miles:        passthrough(n.get(row, n.cols.Miles)),
		Appointment:  appointment,
		Time:         hhmm,
		Rate:         passthrough(n.get(row, n.cols.Rate)),
		PurchaseDate: passthrough(n.get(row, n.cols.PurchaseDate)),
		Lender:       ResolveLender(n.get(row, n.cols.BankName), n.get(row, n.cols.PL)),
		Payment:      passthrough(n.get(row, n.cols.Payment)),
	}, true
}
