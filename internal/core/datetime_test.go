package core

import (
	"testing"
	"time"
)

func TestFormatAppointment(t *testing.T) {
	tests := []struct {
		name     string
		date     string
		clock    string
		layout   string
		wantAppt string
		wantTime string
	}{
		{"iso date", "2025-12-20", "", "", "Saturday, December 20", ""},
		{"combined datetime", "12/20/2025 9:30:00 AM", "", "", "Saturday, December 20", "09:30"},
		{"separate time column", "12/20/2025", "2:05 pm", "", "Saturday, December 20", "14:05"},
		{"time column wins", "12/20/2025 9:30:00 AM", "4:45 PM", "", "Saturday, December 20", "16:45"},
		{"no meridiem", "12/20/2025", "14:05", "", "Saturday, December 20", ""},
		{"noon", "1/5/2026", "12:00 PM", "", "Monday, January 5", "12:00"},
		{"midnight", "1/5/2026 12:00:00 AM", "", "", "Monday, January 5", "00:00"},
		{"year variant", "12/20/2025 12:15:00 PM", "", "Monday, January 2, 2006", "Saturday, December 20, 2025", "12:15"},
		{"long month", "December 20, 2025", "9:30 AM", "", "Saturday, December 20", "09:30"},
		{"long month combined", "December 20, 2025 9:30 AM", "", "", "Saturday, December 20", "09:30"},
		{"short month combined", "Dec 20, 2025 1:05PM", "", "", "Saturday, December 20", "13:05"},
		{"weekday recomputed", "Monday, December 20, 2025", "", "", "Saturday, December 20", ""},
		{"compact meridiem", "2025-12-20", "9:30pm", "", "Saturday, December 20", "21:30"},
		{"garbage", "soon", "later", "", "", ""},
		{"empty", "", "", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appt, hhmm := FormatAppointment(tt.date, tt.clock, tt.layout)
			if appt != tt.wantAppt {
				t.Errorf("appointment = %q, want %q", appt, tt.wantAppt)
			}
			if hhmm != tt.wantTime {
				t.Errorf("time = %q, want %q", hhmm, tt.wantTime)
			}
		})
	}
}

func TestParseDate_TwoDigitYearPivot(t *testing.T) {
	pivot := time.Now().Year() + TwoDigitYearPivot

	got, ok := ParseDate("1/5/25")
	if !ok {
		t.Fatal("ParseDate(1/5/25) failed")
	}
	if got.Year() != 2025 {
		t.Errorf("year = %d, want 2025", got.Year())
	}

	got, ok = ParseDate("1/5/99")
	if !ok {
		t.Fatal("ParseDate(1/5/99) failed")
	}
	if got.Year() > pivot {
		t.Errorf("year = %d, want at most %d", got.Year(), pivot)
	}
	if got.Year() != 1999 {
		t.Errorf("year = %d, want 1999", got.Year())
	}
}

func TestSplitDateTime(t *testing.T) {
	tests := []struct {
		in        string
		wantDate  string
		wantClock string
	}{
		{"12/20/2025 9:30:00 AM", "12/20/2025", "9:30:00 AM"},
		{"December 20, 2025", "December 20, 2025", ""},
		{"December 20, 2025 9:30 AM", "December 20, 2025", "9:30 AM"},
		{"Dec 20, 2025 1:05PM", "Dec 20, 2025", "1:05PM"},
		{"Saturday, December 20, 2025 4:15:00 pm", "Saturday, December 20, 2025", "4:15:00 pm"},
		{"12/20/2025 soon", "12/20/2025", "soon"},
		{"  12/20/2025  ", "12/20/2025", ""},
		{"", "", ""},
	}
	for _, tt := range tests {
		d, c := SplitDateTime(tt.in)
		if d != tt.wantDate || c != tt.wantClock {
			t.Errorf("SplitDateTime(%q) = (%q, %q), want (%q, %q)", tt.in, d, c, tt.wantDate, tt.wantClock)
		}
	}
}
