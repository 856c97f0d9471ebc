package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/couchcryptid/bikelane-risk/internal/domain"
	"gopkg.in/yaml.v3"
)

type stationsFile struct {
	Stations []domain.Location `yaml:"stations"`
}

// readStations loads the station list. The file is YAML (JSON also parses)
// with a top-level "stations" list.
func readStations(path string) ([]domain.Location, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read stations: %w", err)
	}
	return parseStations(data)
}

func parseStations(data []byte) ([]domain.Location, error) {
	var f stationsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse stations: %w", err)
	}
	if len(f.Stations) == 0 {
		return nil, errors.New("stations file lists no stations")
	}

	seen := make(map[string]struct{}, len(f.Stations))
	for i, s := range f.Stations {
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("station %d: %w", i, err)
		}
		if _, dup := seen[s.ID]; dup {
			return nil, fmt.Errorf("station %s: duplicate id", s.ID)
		}
		seen[s.ID] = struct{}{}
	}
	return f.Stations, nil
}
