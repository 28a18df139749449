package path

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Changa-Husky/VrChatDollyController/internal/model"
	"gopkg.in/yaml.v3"
)

// LoadFile reads a custom path. ".yaml" and ".yml" files are decoded as
// YAML, anything else as a JSON array of waypoints.
func LoadFile(name string) ([]model.Waypoint, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read path file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return decodeYAML(data)
	default:
		return decodeJSON(data)
	}
}

func decodeJSON(data []byte) ([]model.Waypoint, error) {
	var wps []model.Waypoint
	if err := json.Unmarshal(data, &wps); err != nil {
		return nil, fmt.Errorf("failed to parse path file: %w", err)
	}
	for _, w := range wps {
		if err := w.Validate(); err != nil {
			return nil, err
		}
	}
	return wps, nil
}

// decodeYAML goes through the JSON decoder so unknown members are kept the
// same way for both formats.
func decodeYAML(data []byte) ([]model.Waypoint, error) {
	var doc []map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse path file: %w", err)
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to convert yaml path: %w", err)
	}
	return decodeJSON(b)
}

// WriteFile writes wps in the format implied by the file extension.
func WriteFile(name string, wps []model.Waypoint) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		data, err = encodeYAML(wps)
	default:
		data, err = json.MarshalIndent(wps, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to encode path: %w", err)
	}
	return os.WriteFile(name, data, 0o644)
}

func encodeYAML(wps []model.Waypoint) ([]byte, error) {
	b, err := json.Marshal(wps)
	if err != nil {
		return nil, err
	}
	var doc []map[string]any
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, err
	}
	return yaml.Marshal(doc)
}
