package config

import (
	"testing"

	"github.com/jbec2912-cell/csv-filter-tool/internal/core"
)

func TestServiceSettings(t *testing.T) {
	cfg, err := LoadFrom(envMap(map[string]string{
		"CONVERT_OUTPUT_FORMAT":       "XLSX",
		"CONVERT_VEHICLE_POLICY":      "a",
		"CONVERT_REQUIRE_APPOINTMENT": "true",
		"CONVERT_INPUT_ENCODING":      "windows-1252",
	}))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}

	s := cfg.ServiceSettings()
	if s.Format != "xlsx" {
		t.Errorf("Format = %q, want xlsx", s.Format)
	}
	if s.Options.VehiclePolicy != core.PolicyA {
		t.Errorf("VehiclePolicy = %q, want A", s.Options.VehiclePolicy)
	}
	if !s.Options.RequireAppointment {
		t.Error("RequireAppointment = false, want true")
	}
	if s.Encoding != "windows-1252" {
		t.Errorf("Encoding = %q", s.Encoding)
	}
	if s.Layout != "auto" || s.OutputName != "11_Ready.csv" || !s.CRLF {
		t.Errorf("defaults not carried: %+v", s)
	}
	if s.Options.AppointmentLayout != "Monday, January 2" || s.Options.HeaderSearchRows != 20 {
		t.Errorf("options not carried: %+v", s.Options)
	}
}
