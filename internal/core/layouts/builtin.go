// Package layouts registers the built-in CRM export layouts with the core
// registry and loads additional layouts from YAML files.
// Import this package to ensure the built-ins are registered.
package layouts

import "github.com/jbec2912-cell/csv-filter-tool/internal/core"

const (
	NextDayServiceKey     = "next_day_service"
	ServiceAppointmentKey = "service_appointment"
)

func init() {
	registerNextDayService()
	registerServiceAppointment()
}

// The "Next Day Service" report: one combined appointment date-time
// column and one "Phone Numbers" column with C:/H:/W:/B: segments.
func registerNextDayService() {
	core.Register(core.Layout{
		Key:   NextDayServiceKey,
		Label: "Next Day Service report",
		Columns: core.ColumnMap{
			Name:         "Customer",
			Vehicle:      "Vehicle",
			Vin:          "VIN",
			Miles:        "Mileage",
			Appointment:  "Appointment Date",
			Phones:       "Phone Numbers",
			Rate:         "Rate",
			PurchaseDate: "Purchase Date",
			BankName:     "Bank Name",
			PL:           "P/L",
			Payment:      "Payment",
		},
	})
}

// Service appointment exports with separate time and phone columns.
func registerServiceAppointment() {
	core.Register(core.Layout{
		Key:   ServiceAppointmentKey,
		Label: "Service Appointments",
		Columns: core.ColumnMap{
			Name:         "Name",
			Vehicle:      "Vehicle",
			Vin:          "Vin",
			Miles:        "Miles",
			Appointment:  "Appointment",
			Time:         "Time",
			Cell:         "Cell",
			Home:         "Home",
			Work:         "Work",
			Business:     "Business",
			Rate:         "Rate",
			PurchaseDate: "Purchase Date",
			BankName:     "Bank Name",
			PL:           "P/L",
			Payment:      "Payment",
		},
	})
}
