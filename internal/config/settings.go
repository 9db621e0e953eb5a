package config

import (
	"strings"

	"github.com/jbec2912-cell/csv-filter-tool/internal/core"
)

// ServiceSettings translates the Convert section into service defaults.
func (c *Config) ServiceSettings() core.Settings {
	cv := c.Convert
	return core.Settings{
		Layout:     cv.Layout,
		OutputName: cv.OutputName,
		Format:     strings.ToLower(cv.OutputFormat),
		Encoding:   cv.InputEncoding,
		CRLF:       cv.OutputCRLF,
		Options: core.Options{
			VehiclePolicy:      core.VehiclePolicy(strings.ToUpper(cv.VehiclePolicy)),
			AppointmentLayout:  cv.AppointmentLayout,
			RequireAppointment: cv.RequireAppointment,
			HeaderSearchRows:   cv.HeaderSearchRows,
		},
	}
}
