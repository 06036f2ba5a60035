package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Properties represents a parsed properties/YAML-style file as a map
type Properties map[string]string

// ParseProperties parses a properties file supporting both = and : delimiters
func ParseProperties(path string) (Properties, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	props, err := ReadProperties(file)
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", path, err)
	}
	return props, nil
}

// ReadProperties parses properties from r
func ReadProperties(r io.Reader) (Properties, error) {
	props := make(Properties)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// key=value wins over key: value so values may contain colons
		var parts []string
		if strings.Contains(line, "=") {
			parts = strings.SplitN(line, "=", 2)
		} else if strings.Contains(line, ":") {
			parts = strings.SplitN(line, ":", 2)
		}
		if len(parts) != 2 {
			continue
		}

		props[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return props, nil
}

// Get returns the value for a key, or empty string if not found
func (p Properties) Get(key string) string {
	return p[key]
}

// GetWithDefault returns the value for a key, or the default if not found
func (p Properties) GetWithDefault(key, defaultValue string) string {
	if val, ok := p[key]; ok && val != "" {
		return val
	}
	return defaultValue
}

// GetBool returns true unless the value is empty, "false", "no", or "0"
func (p Properties) GetBool(key string) bool {
	return p.GetBoolWithDefault(key, false)
}

// GetBoolWithDefault is GetBool with a value for missing keys
func (p Properties) GetBoolWithDefault(key string, defaultValue bool) bool {
	val := strings.ToLower(p[key])
	if val == "" {
		return defaultValue
	}
	return !(val == "false" || val == "no" || val == "0")
}

// GetInt parses an integer value. Missing keys yield defaultValue.
func (p Properties) GetInt(key string, defaultValue int) (int, error) {
	val := p[key]
	if val == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: not a number", key, val)
	}
	return n, nil
}

// GetList parses a comma-separated value into a slice
func (p Properties) GetList(key string) []string {
	val := p[key]
	if val == "" {
		return []string{}
	}

	var result []string
	for _, item := range strings.Split(val, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			result = append(result, item)
		}
	}
	return result
}

// FileExists checks if a file exists at the given path
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
