// Package catalog loads the ordered region lists iterated by the station export.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/couchcryptid/noaa-station-export/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed regions.yaml
var defaultRegions []byte

// Catalog is an immutable, ordered pair of region lists: US states, then countries.
type Catalog struct {
	states    []string
	countries []string
}

type document struct {
	States    []string `yaml:"states"`
	Countries []string `yaml:"countries"`
}

// Load reads a catalog from a YAML file, or the embedded default when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Parse(defaultRegions)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read region catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML catalog document.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse region catalog: %w", err)
	}
	if len(doc.States) == 0 && len(doc.Countries) == 0 {
		return nil, errors.New("region catalog is empty")
	}
	if err := checkCodes("states", doc.States); err != nil {
		return nil, err
	}
	if err := checkCodes("countries", doc.Countries); err != nil {
		return nil, err
	}
	return &Catalog{states: doc.States, countries: doc.Countries}, nil
}

func checkCodes(list string, codes []string) error {
	seen := make(map[string]struct{}, len(codes))
	for i, code := range codes {
		if strings.TrimSpace(code) == "" {
			return fmt.Errorf("region catalog %s[%d] is blank", list, i)
		}
		if _, dup := seen[code]; dup {
			return fmt.Errorf("region catalog %s has duplicate code %q", list, code)
		}
		seen[code] = struct{}{}
	}
	return nil
}

// States returns the state regions in catalog order.
func (c *Catalog) States() []domain.Region {
	return regions(domain.RegionState, c.states)
}

// Countries returns the country regions in catalog order.
func (c *Catalog) Countries() []domain.Region {
	return regions(domain.RegionCountry, c.countries)
}

func regions(kind domain.RegionKind, codes []string) []domain.Region {
	out := make([]domain.Region, len(codes))
	for i, code := range codes {
		out[i] = domain.Region{Kind: kind, Code: code}
	}
	return out
}

// Subset returns a catalog restricted to the given codes, keeping catalog
// order. An empty selection keeps the whole list. Codes not in the catalog are
// an error.
func (c *Catalog) Subset(states, countries []string) (*Catalog, error) {
	s, err := subset("states", c.states, states)
	if err != nil {
		return nil, err
	}
	ctry, err := subset("countries", c.countries, countries)
	if err != nil {
		return nil, err
	}
	return &Catalog{states: s, countries: ctry}, nil
}

func subset(list string, all, want []string) ([]string, error) {
	if len(want) == 0 {
		return all, nil
	}
	wanted := make(map[string]bool, len(want))
	for _, code := range want {
		wanted[code] = false
	}
	out := make([]string, 0, len(want))
	for _, code := range all {
		if _, ok := wanted[code]; ok {
			out = append(out, code)
			wanted[code] = true
		}
	}
	for _, code := range want {
		if !wanted[code] {
			return nil, fmt.Errorf("region %q is not in the %s catalog", code, list)
		}
	}
	return out, nil
}
