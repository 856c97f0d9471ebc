package dataset

import (
	"fmt"
	"strings"
)

// LabelMapping translates raw label values found in a data file into model
// classes. Values not present in Values are rejected with ErrUnknownLabel
// unless Default is set, in which case they map to Default.
type LabelMapping struct {
	Name    string
	Values  map[string]string
	Default string
}

// Map returns the class for a raw label value.
func (m *LabelMapping) Map(raw string) (string, error) {
	if c, ok := m.Values[strings.TrimSpace(raw)]; ok {
		return c, nil
	}
	if m.Default != "" {
		return m.Default, nil
	}
	return "", fmt.Errorf("%w: %q is not mapped by %s", ErrUnknownLabel, raw, m.Name)
}

// WithDefault returns a copy of the mapping that sends unmapped values to class.
func (m *LabelMapping) WithDefault(class string) *LabelMapping {
	out := *m
	out.Default = class
	return &out
}
