package core

// extract.go holds the per-column field extractors. None of them fail:
// malformed input degrades to empty values.

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// VehiclePolicy selects how the vehicle descriptor is split.
type VehiclePolicy string

const (
	// PolicyB yields a two-digit Year, a Make and a Model.
	PolicyB VehiclePolicy = "B"
	// PolicyA yields a four-digit Year and a Model, with no Make.
	PolicyA VehiclePolicy = "A"
)

// ParseVehiclePolicy accepts "A" or "B" in either case.
func ParseVehiclePolicy(s string) (VehiclePolicy, bool) {
	switch VehiclePolicy(strings.ToUpper(strings.TrimSpace(s))) {
	case PolicyA:
		return PolicyA, true
	case PolicyB:
		return PolicyB, true
	}
	return "", false
}

// Vehicle is the parsed vehicle descriptor.
type Vehicle struct {
	Year  string
	Make  string
	Model string
}

// ParseVehicle splits a descriptor such as "23 Toyota Camry LE".
func ParseVehicle(v string, policy VehiclePolicy) Vehicle {
	v = strings.TrimSpace(v)
	if v == "" {
		return Vehicle{}
	}

	if policy == PolicyA {
		if len(v) >= 4 && allDigits(v[:4]) {
			model := ""
			if len(v) > 5 {
				model = strings.TrimSpace(v[5:])
			}
			return Vehicle{Year: v[:4], Model: model}
		}
		return Vehicle{Model: v}
	}

	tokens := strings.Fields(v)
	year := ""
	if first := tokens[0]; allDigits(first) {
		switch len(first) {
		case 2:
			year = first
		case 4:
			year = first[2:]
		}
	}
	if year == "" {
		return Vehicle{Make: tokens[0], Model: strings.Join(tokens[1:], " ")}
	}

	out := Vehicle{Year: year}
	if len(tokens) > 1 {
		out.Make = tokens[1]
	}
	if len(tokens) > 2 {
		out.Model = strings.Join(tokens[2:], " ")
	}
	return out
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// vehicleLength is the length the filter compares against the minimum.
func vehicleLength(v string) int {
	return utf8.RuneCountInString(strings.TrimSpace(v))
}

// SplitName splits a full name into the given-name portion and the last
// name. Each token keeps only its first letter upper case, so "MARY-JANE"
// becomes "Mary-jane". A single token is the last name.
func SplitName(full string) (customer, last string) {
	return splitName(cases.Lower(language.Und), full)
}

// splitName uses lower, which must not be shared across goroutines.
func splitName(lower cases.Caser, full string) (customer, last string) {
	tokens := strings.Fields(full)
	if len(tokens) == 0 {
		return "", ""
	}
	for i, t := range tokens {
		tokens[i] = capitalize(lower, t)
	}
	return strings.Join(tokens[:len(tokens)-1], " "), tokens[len(tokens)-1]
}

func capitalize(lower cases.Caser, token string) string {
	r, size := utf8.DecodeRuneInString(token)
	return string(unicode.ToUpper(r)) + lower.String(token[size:])
}

// PhoneSet holds the phone sources of one row.
type PhoneSet struct {
	Cell     string
	Home     string
	Work     string
	Business string

	// Combined is a single column of labelled segments such as
	// "C: (555) 123-4567 H: 555-987-6543".
	Combined string
}

var phoneSegment = regexp.MustCompile(`(C|H|W|B):\s*([0-9\s()\-]+)`)

// SelectPhone returns the digits of the first non-empty phone in priority
// order Cell, Home, Work, Business. Labelled columns take precedence over
// combined segments carrying the same label.
func SelectPhone(p PhoneSet) string {
	segments := make(map[string]string, 4)
	for _, m := range phoneSegment.FindAllStringSubmatch(p.Combined, -1) {
		if d := digitsOnly(m[2]); d != "" {
			segments[m[1]] = d
		}
	}

	candidates := []struct{ column, label string }{
		{p.Cell, "C"},
		{p.Home, "H"},
		{p.Work, "W"},
		{p.Business, "B"},
	}
	for _, c := range candidates {
		if v := strings.TrimSpace(c.column); v != "" {
			return digitsOnly(v)
		}
		if d, ok := segments[c.label]; ok {
			return d
		}
	}
	return ""
}

func digitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

// ResolveLender prefers the bank name and falls back to the P/L column.
func ResolveLender(bankName, pl string) string {
	if b := strings.TrimSpace(bankName); b != "" {
		return b
	}
	return strings.TrimSpace(pl)
}

// passthrough trims a copied value, including non-breaking spaces that
// spreadsheet exports leave behind.
func passthrough(s string) string {
	return strings.TrimFunc(s, unicode.IsSpace)
}
