package core

import (
	"io"
	"strings"
)

// LocateHeader consumes rows from rc until one carries every required column
// of a candidate layout. Candidates are tried in order on each row. It
// returns the header, the matching layout and how many non-blank rows were
// skipped before it.
func LocateHeader(rc *Reconstructor, candidates []Layout, maxRows int) (Header, Layout, int, error) {
	if maxRows <= 0 {
		maxRows = DefaultHeaderSearchRows
	}

	seen := 0
	var first Header
	for seen < maxRows {
		row, _, err := rc.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Header{}, Layout{}, 0, err
		}
		if row.blank() {
			continue
		}

		h := NewHeader(row)
		if seen == 0 {
			first = h
		}
		seen++

		for _, l := range candidates {
			if l.Matches(h) {
				return h, l, seen - 1, nil
			}
		}
	}

	if seen == 0 {
		return Header{}, Layout{}, 0, &FatalInputError{Err: ErrEmptyInput}
	}
	if len(candidates) == 1 {
		return Header{}, Layout{}, 0, fatal(ErrHeaderNotFound,
			"searched %d row(s) for layout %q; first row is missing %s",
			seen, candidates[0].Key, strings.Join(quoteAll(candidates[0].Missing(first)), ", "))
	}
	return Header{}, Layout{}, 0, fatal(ErrHeaderNotFound,
		"searched %d row(s); no layout matched (tried %s)", seen, strings.Join(layoutKeys(candidates), ", "))
}

func quoteAll(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = `"` + s + `"`
	}
	return out
}

func layoutKeys(ls []Layout) []string {
	keys := make([]string, len(ls))
	for i, l := range ls {
		keys[i] = l.Key
	}
	return keys
}
