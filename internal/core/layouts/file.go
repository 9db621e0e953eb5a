package layouts

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jbec2912-cell/csv-filter-tool/internal/core"
)

// File is the YAML document read by LoadFile:
//
//	layouts:
//	  - key: dealer_export
//	    label: Dealer export
//	    columns:
//	      name: Customer Name
//	      vehicle: Vehicle Desc
//	      vin: VIN
//	      appointment: Appt Date
//	      time: Appt Time
//	      phones: Phones
type File struct {
	Layouts []core.Layout `yaml:"layouts"`
}

// Parse decodes a layout file. Unknown keys are rejected so a typo in a
// column name does not silently disable a field.
func Parse(r io.Reader) ([]core.Layout, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("decode layouts: %w", err)
	}

	for i, l := range f.Layouts {
		if err := l.Validate(); err != nil {
			return nil, fmt.Errorf("layout %d: %w", i+1, err)
		}
	}
	return f.Layouts, nil
}

// LoadFile registers every layout in the YAML file at path, replacing
// built-ins with the same key. It returns the number registered.
func LoadFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read layout file: %w", err)
	}

	ls, err := Parse(bytes.NewReader(data))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", path, err)
	}
	for _, l := range ls {
		if err := core.Replace(l); err != nil {
			return 0, fmt.Errorf("%s: %w", path, err)
		}
	}
	return len(ls), nil
}
