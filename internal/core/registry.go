package core

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// LayoutAuto selects the layout by matching the located header.
const LayoutAuto = "auto"

var (
	registry   = make(map[string]Layout)
	registryMu sync.RWMutex
)

// Validate checks that the layout can locate a header.
func (l Layout) Validate() error {
	if strings.TrimSpace(l.Key) == "" {
		return fmt.Errorf("layout key is empty")
	}
	if l.Key == LayoutAuto {
		return fmt.Errorf("layout key %q is reserved", LayoutAuto)
	}
	fields := l.Required
	if len(fields) == 0 {
		fields = DefaultRequired
	}
	for _, f := range fields {
		if l.Columns.column(f) == "" {
			return fmt.Errorf("layout %q: missing required column mapping for %q", l.Key, f)
		}
	}
	return nil
}

// Register adds a layout to the registry.
// Panics if the layout is invalid or the key is already registered.
func Register(l Layout) {
	if err := l.Validate(); err != nil {
		panic(err.Error())
	}

	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[l.Key]; exists {
		panic(fmt.Sprintf("layout already registered: %s", l.Key))
	}
	registry[l.Key] = l
}

// Replace adds or overwrites a layout. Layout files use it to adjust the
// built-in header names.
func Replace(l Layout) error {
	if err := l.Validate(); err != nil {
		return err
	}

	registryMu.Lock()
	defer registryMu.Unlock()
	registry[l.Key] = l
	return nil
}

// Get returns a layout by key.
// Returns false if not found.
func Get(key string) (Layout, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	l, ok := registry[key]
	return l, ok
}

// All returns every registered layout sorted by key.
func All() []Layout {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]Layout, 0, len(registry))
	for _, l := range registry {
		result = append(result, l)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Key < result[j].Key
	})

	return result
}

// Resolve returns the header candidates for a layout selection:
// every layout for "auto" or "", otherwise the single named layout.
func Resolve(key string) ([]Layout, error) {
	key = strings.TrimSpace(key)
	if key == "" || key == LayoutAuto {
		all := All()
		if len(all) == 0 {
			return nil, fmt.Errorf("%w: no layouts registered", ErrUnknownLayout)
		}
		return all, nil
	}
	l, ok := Get(key)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLayout, key)
	}
	return []Layout{l}, nil
}

// LayoutCount returns the number of registered layouts.
func LayoutCount() int {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return len(registry)
}

// Clear removes all registered layouts.
// Primarily useful for testing.
func Clear() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = make(map[string]Layout)
}
