// Package seed loads the demo mall catalog used for local runs and the
// in-memory commerce backend.
package seed

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/smart-mall/concierge/internal/domain/catalog"
)

//go:embed data.yaml
var embedded []byte

// Dataset is the full demo catalog: stores, products, and navigable locations.
type Dataset struct {
	Stores    []catalog.Store    `yaml:"stores"`
	Products  []catalog.Product  `yaml:"products"`
	Locations []catalog.Location `yaml:"locations"`
}

// Load parses the embedded demo dataset.
func Load() (*Dataset, error) {
	return parse(embedded)
}

// LoadFile parses a dataset from a YAML file, for custom catalogs.
func LoadFile(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return parse(data)
}

func parse(data []byte) (*Dataset, error) {
	var ds Dataset
	if err := yaml.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("parse seed data: %w", err)
	}

	now := catalog.Now()
	for i := range ds.Stores {
		if ds.Stores[i].ID == "" {
			return nil, fmt.Errorf("store %d: missing id", i)
		}
		ds.Stores[i].UpdatedAt = now
	}
	for i := range ds.Products {
		if ds.Products[i].ID == "" {
			return nil, fmt.Errorf("product %d: missing id", i)
		}
		ds.Products[i].UpdatedAt = now
	}
	for i := range ds.Locations {
		if ds.Locations[i].ID == "" {
			return nil, fmt.Errorf("location %d: missing id", i)
		}
		ds.Locations[i].UpdatedAt = now
	}

	return &ds, nil
}
