package catalog

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

// NoInfo is the description given to labels missing from the catalog.
const NoInfo = "No additional information available."

//go:embed diseases.yaml
var defaultCatalog []byte

// Catalog maps disease labels to short descriptions.
type Catalog struct {
	entries map[string]string
	folded  map[string]string
}

// Default returns the embedded catalog.
func Default() (*Catalog, error) {
	return Load(bytes.NewReader(defaultCatalog))
}

// Load reads a YAML catalog of the form "diseases: {label: description}".
func Load(r io.Reader) (*Catalog, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read disease catalog: %w", err)
	}
	var doc struct {
		Diseases map[string]string `yaml:"diseases"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse disease catalog: %w", err)
	}
	return New(doc.Diseases), nil
}

// New builds a catalog from label/description pairs.
func New(entries map[string]string) *Catalog {
	c := &Catalog{
		entries: make(map[string]string, len(entries)),
		folded:  make(map[string]string, len(entries)),
	}
	for name, desc := range entries {
		c.entries[name] = desc
		c.folded[strings.ToLower(name)] = name
	}
	return c
}

// Lookup finds name exactly, then case-insensitively, and returns the label
// as stored in the catalog.
func (c *Catalog) Lookup(name string) (label, description string, ok bool) {
	if desc, ok := c.entries[name]; ok {
		return name, desc, true
	}
	if stored, ok := c.folded[strings.ToLower(strings.TrimSpace(name))]; ok {
		return stored, c.entries[stored], true
	}
	return "", "", false
}

// Description returns the description of name, or NoInfo.
func (c *Catalog) Description(name string) string {
	if _, desc, ok := c.Lookup(name); ok {
		return desc
	}
	return NoInfo
}

// Names returns every catalogued label, sorted.
func (c *Catalog) Names() []string {
	names := lo.Keys(c.entries)
	sort.Strings(names)
	return names
}
