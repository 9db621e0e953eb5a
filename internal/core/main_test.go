package core

import (
	"os"
	"testing"
)

// Layouts mirroring the built-ins; core cannot import the layouts package.
var (
	testNextDay = Layout{
		Key:   "next_day_service",
		Label: "Next Day Service report",
		Columns: ColumnMap{
			Name: "Customer", Vehicle: "Vehicle", Vin: "VIN", Miles: "Mileage",
			Appointment: "Appointment Date", Phones: "Phone Numbers", Rate: "Rate",
			PurchaseDate: "Purchase Date", BankName: "Bank Name", PL: "P/L", Payment: "Payment",
		},
	}
	testServiceAppt = Layout{
		Key:   "service_appointment",
		Label: "Service Appointments",
		Columns: ColumnMap{
			Name: "Name", Vehicle: "Vehicle", Vin: "Vin", Miles: "Miles",
			Appointment: "Appointment", Time: "Time",
			Cell: "Cell", Home: "Home", Work: "Work", Business: "Business",
			Rate: "Rate", PurchaseDate: "Purchase Date", BankName: "Bank Name", PL: "P/L", Payment: "Payment",
		},
	}
)

func registerTestLayouts() {
	Clear()
	Register(testNextDay)
	Register(testServiceAppt)
}

func TestMain(m *testing.M) {
	registerTestLayouts()
	os.Exit(m.Run())
}

const serviceHeader = "Name,Vehicle,Vin,Miles,Appointment,Time,Cell,Home,Work,Business,Rate,Purchase Date,Bank Name,P/L,Payment\n"

// recordingSink counts calls so tests can assert nothing was written.
type recordingSink struct {
	header []string
	rows   []NormalizedRow
	closed bool
}

func (s *recordingSink) WriteHeader(columns []string) error {
	s.header = columns
	return nil
}

func (s *recordingSink) WriteRow(row NormalizedRow) error {
	s.rows = append(s.rows, row)
	return nil
}

func (s *recordingSink) Close() error {
	s.closed = true
	return nil
}
