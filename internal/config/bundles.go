package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Bundle is one merged output described in the bundle file
type Bundle struct {
	Name  string   `yaml:"name"`
	Type  string   `yaml:"type"`
	Files []string `yaml:"files"`
}

type bundleFile struct {
	Bundles []Bundle `yaml:"bundles"`
}

// LoadBundles reads a YAML bundle file:
//
//	bundles:
//	  - name: site.css
//	    files: [reset.css, layout.css]
//
// Type defaults to css; other types are rejected.
func LoadBundles(path string) ([]Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open the bundle file %s: %w", path, err)
	}
	return ParseBundles(data)
}

// ParseBundles parses and validates bundle file content
func ParseBundles(data []byte) ([]Bundle, error) {
	var f bundleFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse bundles: %w", err)
	}

	seen := make(map[string]bool)
	for i := range f.Bundles {
		b := &f.Bundles[i]
		if b.Name == "" {
			return nil, fmt.Errorf("bundle %d: missing name", i+1)
		}
		if b.Type == "" {
			b.Type = "css"
		}
		if b.Type != "css" {
			return nil, fmt.Errorf("bundle %s: unsupported type %q", b.Name, b.Type)
		}
		if len(b.Files) == 0 {
			return nil, fmt.Errorf("bundle %s: no files", b.Name)
		}
		if seen[b.Name] {
			return nil, fmt.Errorf("bundle %s: defined twice", b.Name)
		}
		seen[b.Name] = true
	}

	return f.Bundles, nil
}
