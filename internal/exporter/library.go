// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package exporter

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/bibexport/pkg/types"
)

// Library is the on-disk item collection an export runs over.
type Library struct {
	Items []types.Item `yaml:"items"`
}

// LoadLibrary reads an item library from a YAML file.
func LoadLibrary(path string) ([]types.Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading library: %w", err)
	}
	var lib Library
	if err := yaml.Unmarshal(data, &lib); err != nil {
		return nil, fmt.Errorf("parsing library: %w", err)
	}
	return lib.Items, nil
}
