// internal/roi/catalog/file.go
package catalog

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type fileFormat struct {
	Industries []Industry `yaml:"industries"`
}

// LoadFile reads a YAML catalog from disk. The file must satisfy the same
// shape rules as the built-in table.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file %s: %w", path, err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Catalog, error) {
	var f fileFormat
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("%w: decode yaml: %v", ErrInvalidCatalog, err)
	}
	return New(f.Industries)
}

// MarshalYAML renders the catalog in the LoadFile format.
func (c *Catalog) MarshalYAML() (interface{}, error) {
	out := fileFormat{Industries: make([]Industry, len(c.industries))}
	for i, ind := range c.industries {
		out.Industries[i] = copyIndustry(ind)
	}
	return out, nil
}
