package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads and validates a profile from the given file path.
//
// The file format is determined by extension: .yaml/.yml for YAML, .json for
// JSON. If the extension is unrecognized, YAML is attempted first, then JSON.
// After parsing, defaults are applied and the profile is validated.
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("profile file not found: %s", path)
		}
		if os.IsPermission(err) {
			return nil, fmt.Errorf("permission denied reading profile: %s", path)
		}
		return nil, fmt.Errorf("failed to read profile file: %w", err)
	}

	return LoadFromBytes(data, path)
}

// LoadFromBytes parses and validates a profile from raw bytes.
//
// The path parameter is used for error messages and format detection.
// If path is empty, format detection falls back to trying YAML first.
func LoadFromBytes(data []byte, path string) (*Profile, error) {
	if len(data) == 0 {
		return nil, errors.New("profile file is empty")
	}

	p, err := parseProfile(data, path)
	if err != nil {
		return nil, err
	}

	p.ApplyDefaults()

	if err := p.Validate(); err != nil {
		return nil, err
	}

	return p, nil
}

// LoadFromReader reads and validates a profile from an io.Reader.
func LoadFromReader(r io.Reader, path string) (*Profile, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}
	return LoadFromBytes(data, path)
}

// parseProfile parses the profile data based on file extension.
func parseProfile(data []byte, path string) (*Profile, error) {
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".json":
		return parseJSON(data)
	case ".yaml", ".yml":
		return parseYAML(data)
	default:
		// Unknown extension: try YAML first (more permissive), then JSON
		p, yamlErr := parseYAML(data)
		if yamlErr == nil {
			return p, nil
		}
		p, jsonErr := parseJSON(data)
		if jsonErr == nil {
			return p, nil
		}
		// Both failed - return YAML error as it's the preferred format
		return nil, fmt.Errorf("failed to parse profile (tried YAML and JSON): %w", yamlErr)
	}
}

func parseJSON(data []byte) (*Profile, error) {
	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("invalid JSON in profile: %w", err)
	}
	return &p, nil
}

func parseYAML(data []byte) (*Profile, error) {
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("invalid YAML in profile: %w", err)
	}
	return &p, nil
}
