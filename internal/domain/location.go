package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidLocation reports a monitored location that cannot be queried.
var ErrInvalidLocation = errors.New("invalid location")

// Location is a monitored point, typically a bicycle lane or weather station.
type Location struct {
	ID        string  `json:"id" yaml:"id"`
	Name      string  `json:"name" yaml:"name"`
	Latitude  float64 `json:"latitude" yaml:"latitude"`
	Longitude float64 `json:"longitude" yaml:"longitude"`
}

// Validate requires an id and WGS-84 coordinates in range.
func (l Location) Validate() error {
	if strings.TrimSpace(l.ID) == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidLocation)
	}
	if l.Latitude < -90 || l.Latitude > 90 {
		return fmt.Errorf("%w: %s latitude %v out of range", ErrInvalidLocation, l.ID, l.Latitude)
	}
	if l.Longitude < -180 || l.Longitude > 180 {
		return fmt.Errorf("%w: %s longitude %v out of range", ErrInvalidLocation, l.ID, l.Longitude)
	}
	return nil
}
