package core

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runPipeline(t *testing.T, input string, layouts ...Layout) (Summary, []NormalizedRow) {
	t.Helper()
	if len(layouts) == 0 {
		layouts = []Layout{testNextDay, testServiceAppt}
	}
	p := &Pipeline{Layouts: layouts, Options: DefaultOptions()}
	sink := &recordingSink{}
	summary, err := p.Run(strings.NewReader(input), sink)
	require.NoError(t, err)
	assert.Equal(t, OutputColumns, sink.header)
	return summary, sink.rows
}

func TestPipeline_ServiceAppointment(t *testing.T) {
	input := serviceHeader +
		"JOHN robert SMITH,23 Toyota Camry LE,VIN1,12000,2025-12-20,9:30 AM,,5551234567,5559999999,,4.9,01/02/2023,,Ally,450\n" +
		"Jane Doe,,VIN2,500,2025-12-20,9:30 AM,5550000000,,,,,,,,\n" +
		"Johnny Smith,23 Toyota Camry LE,VIN1,12000,2025-12-20,9:30 AM,5557777777,,,,,,,,\n" +
		"John Smith,23 Toyota Camry LE,VIN1,12000,2025-12-20,10:30 AM,,,,5558888888,,,,,\n" +
		"No Vin,22 Honda Civic,,1,2025-12-20,9:30 AM,,,,,,,,,\n" +
		"Short Vehicle,Ford,VIN6,1,2025-12-20,9:30 AM,,,,,,,,,\n"

	summary, rows := runPipeline(t, input)

	assert.Equal(t, "service_appointment", summary.Layout)
	assert.Equal(t, 6, summary.RowsRead)
	assert.Equal(t, 2, summary.RowsWritten)
	assert.Equal(t, 3, summary.RowsDropped)
	assert.Equal(t, 1, summary.RowsDuplicate)
	assert.Equal(t, 0, summary.RowsSkipped)

	require.Len(t, rows, 2)
	assert.Equal(t, NormalizedRow{
		PhoneNumber:  "5551234567",
		Customer:     "John Robert",
		LastName:     "Smith",
		Year:         "23",
		Make:         "Toyota",
		Model:        "Camry LE",
		Vin:          "VIN1",
		Miles:        "12000",
		Appointment:  "Saturday, December 20",
		Time:         "09:30",
		Rate:         "4.9",
		PurchaseDate: "01/02/2023",
		Lender:       "Ally",
		Payment:      "450",
	}, rows[0])

	// Same Vin and Appointment, different Time: not a duplicate.
	assert.Equal(t, "10:30", rows[1].Time)
	assert.Equal(t, "5558888888", rows[1].PhoneNumber)
}

func TestPipeline_NextDayServiceWithPreamble(t *testing.T) {
	input := "Next Day Service Appointments\n" +
		"Report Date: 12/19/2025,,,\n" +
		"\n" +
		"Customer,Vehicle,VIN,Mileage,Appointment Date,Rate,P/L,Purchase Date,Bank Name,Payment,Sales Person,Phone Numbers,Service Advisor\n" +
		"mary JONES,2021 Honda Accord,1HGCV1F30MA000001,34000,12/20/2025 2:15:00 PM,5.9,Chase,06/15/2021,,389,Bob,\"C: (555) 111-2222\nH: 555-333-4444\",Al\n" +
		"Tom Lee,2019 Ford F-150 XLT,1FTEW1E50KF000002,61000,12/22/2025 8:00:00 AM,,,,,,Sue,H: 555-666-7777,Al\n"

	summary, rows := runPipeline(t, input)

	assert.Equal(t, "next_day_service", summary.Layout)
	assert.Equal(t, 2, summary.RowsSkipped)
	require.Len(t, rows, 2)

	assert.Equal(t, NormalizedRow{
		PhoneNumber:  "5551112222",
		Customer:     "Mary",
		LastName:     "Jones",
		Year:         "21",
		Make:         "Honda",
		Model:        "Accord",
		Vin:          "1HGCV1F30MA000001",
		Miles:        "34000",
		Appointment:  "Saturday, December 20",
		Time:         "14:15",
		Rate:         "5.9",
		PurchaseDate: "06/15/2021",
		Lender:       "Chase",
		Payment:      "389",
	}, rows[0])

	assert.Equal(t, "5556667777", rows[1].PhoneNumber)
	assert.Equal(t, "Monday, December 22", rows[1].Appointment)
	assert.Equal(t, "08:00", rows[1].Time)
	assert.Equal(t, "F-150 XLT", rows[1].Model)
}

func TestPipeline_EmptyVehicleNeverEmitted(t *testing.T) {
	input := serviceHeader +
		"A B,,VIN1,,2025-12-20,9:30 AM,,,,,,,,,\n" +
		"C D,   ,VIN2,,2025-12-20,9:30 AM,,,,,,,,,\n" +
		"E F,24 Kia Soul,VIN3,,2025-12-20,9:30 AM,,,,,,,,,\n"

	_, rows := runPipeline(t, input)
	require.Len(t, rows, 1)
	assert.Equal(t, "VIN3", rows[0].Vin)
}

func TestPipeline_ShortRowsPadded(t *testing.T) {
	input := serviceHeader + "Ann Lee,23 Kia Soul,VIN9\n"

	summary, rows := runPipeline(t, input)
	require.Len(t, rows, 1)
	assert.Equal(t, 1, summary.RowsWritten)
	assert.Equal(t, "VIN9", rows[0].Vin)
	assert.Empty(t, rows[0].Appointment)
	assert.Empty(t, rows[0].PhoneNumber)
}

func TestPipeline_ColumnOrderIndependent(t *testing.T) {
	a := "Name,Vehicle,Vin,Appointment,Time,Cell\n" +
		"Ann Lee,23 Kia Soul,VIN9,2025-12-20,9:30 AM,555-123-4567\n"
	b := "Cell,Time,Vin,Appointment,Vehicle,Name\n" +
		"555-123-4567,9:30 AM,VIN9,2025-12-20,23 Kia Soul,Ann Lee\n"

	_, rowsA := runPipeline(t, a)
	_, rowsB := runPipeline(t, b)
	assert.Equal(t, rowsA, rowsB)
}

func TestPipeline_UnterminatedQuoteWarns(t *testing.T) {
	input := serviceHeader +
		"Ann Lee,23 Kia Soul,VIN9,,2025-12-20,9:30 AM,,,,,,,,,\n" +
		"Bad Row,\"23 Kia Soul,VIN10\n"

	summary, rows := runPipeline(t, input)
	require.Len(t, rows, 1)
	require.Len(t, summary.Warnings, 1)
	assert.Equal(t, WarnUnterminatedField, summary.Warnings[0].Kind)
	assert.Equal(t, 3, summary.Warnings[0].Line)
}

func TestPipeline_RequireAppointment(t *testing.T) {
	input := serviceHeader +
		"Ann Lee,23 Kia Soul,VIN9,,2025-12-20,9:30 AM,,,,,,,,,\n" +
		"Bo Lee,23 Kia Soul,VIN10,,someday,9:30 AM,,,,,,,,,\n"

	opts := DefaultOptions()
	opts.RequireAppointment = true
	p := &Pipeline{Layouts: []Layout{testServiceAppt}, Options: opts}
	sink := &recordingSink{}

	summary, err := p.Run(strings.NewReader(input), sink)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.RowsWritten)
	assert.Equal(t, 1, summary.RowsDropped)
}

func TestPipeline_PolicyA(t *testing.T) {
	input := serviceHeader + "Ann Lee,2023 Kia Soul,VIN9,,2025-12-20,9:30 AM,,,,,,,,,\n"

	opts := DefaultOptions()
	opts.VehiclePolicy = PolicyA
	opts.AppointmentLayout = "Monday, January 2, 2006"
	p := &Pipeline{Layouts: []Layout{testServiceAppt}, Options: opts}
	sink := &recordingSink{}

	_, err := p.Run(strings.NewReader(input), sink)
	require.NoError(t, err)
	require.Len(t, sink.rows, 1)
	assert.Equal(t, "2023", sink.rows[0].Year)
	assert.Empty(t, sink.rows[0].Make)
	assert.Equal(t, "Kia Soul", sink.rows[0].Model)
	assert.Equal(t, "Saturday, December 20, 2025", sink.rows[0].Appointment)
}

func TestPipeline_FatalInputWritesNothing(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"empty", "", ErrEmptyInput},
		{"blank lines only", "\n\n  \n", ErrEmptyInput},
		{"commas only", ",,,\n,,\n", ErrEmptyInput},
		{"no header", "foo,bar\n1,2\n", ErrHeaderNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Pipeline{Layouts: []Layout{testNextDay, testServiceAppt}}
			sink := &recordingSink{}

			_, err := p.Run(strings.NewReader(tt.input), sink)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			assert.True(t, IsFatalInput(err))
			assert.Nil(t, sink.header)
			assert.Empty(t, sink.rows)
		})
	}
}

func TestPipeline_HeaderBeyondSearchWindow(t *testing.T) {
	input := strings.Repeat("preamble\n", 3) + serviceHeader + "Ann Lee,23 Kia Soul,VIN9\n"

	opts := DefaultOptions()
	opts.HeaderSearchRows = 3
	p := &Pipeline{Layouts: []Layout{testServiceAppt}, Options: opts}

	_, err := p.Run(strings.NewReader(input), &recordingSink{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrHeaderNotFound)
	assert.Contains(t, err.Error(), `"Name"`)
}

func TestPipeline_Idempotent(t *testing.T) {
	input := serviceHeader +
		"JOHN robert SMITH,23 Toyota Camry LE,VIN1,12000,2025-12-20,9:30 AM,,5551234567,,,4.9,,,Ally,450\n" +
		"\"Lee, Ann\",\"24 Kia\nSoul\",VIN2,,2025-12-21,1:00 PM,,,,,,,,,\n"

	run := func() []byte {
		var buf bytes.Buffer
		p := &Pipeline{Layouts: []Layout{testServiceAppt}}
		sink := NewCSVSink(&buf, true)
		_, err := p.Run(strings.NewReader(input), sink)
		require.NoError(t, err)
		require.NoError(t, sink.Close())
		return buf.Bytes()
	}

	first := run()
	assert.Equal(t, first, run())
	assert.NotEmpty(t, first)
}

func TestNormalize_UsesRegistry(t *testing.T) {
	input := serviceHeader + "JOHN robert SMITH,23 Toyota Camry LE,VIN1,12000,2025-12-20,9:30 AM,,5551234567,5559999999,,4.9,01/02/2023,,Ally,450\n"

	var out bytes.Buffer
	summary, err := Normalize(strings.NewReader(input), &out)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.RowsWritten)

	want := "phone_number,Customer,LastName,Year,Make,Model,Vin,Miles,Appointment,Time,Rate,PurchaseDate,Lender,Payment\r\n" +
		"5551234567,John Robert,Smith,23,Toyota,Camry LE,VIN1,12000,\"Saturday, December 20\",09:30,4.9,01/02/2023,Ally,450\r\n"
	assert.Equal(t, want, out.String())
}

func TestNormalize_SkipsByteOrderMark(t *testing.T) {
	input := "\ufeff" + serviceHeader + "Ann Lee,23 Kia Soul,VIN9\n"

	var out bytes.Buffer
	summary, err := Normalize(strings.NewReader(input), &out)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.RowsWritten)
	assert.True(t, strings.HasPrefix(out.String(), "phone_number,"), out.String())
	assert.Contains(t, out.String(), ",Ann,Lee,23,Kia,Soul,VIN9,")
}
