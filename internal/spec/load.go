package spec

import (
	"encoding/json"
	"fmt"
	"os"
)

// AppSpec is the top-level document the generation layer emits per project.
type AppSpec struct {
	Project string             `json:"project"`
	Modules []ModuleDefinition `json:"modules"`
}

// LoadFile reads an LLM-produced application spec from a JSON file.
// No validation beyond well-formed JSON happens here; names and types
// are sanitized defensively downstream.
func LoadFile(path string) (*AppSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read spec file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*AppSpec, error) {
	var s AppSpec
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse spec: %w", err)
	}
	if len(s.Modules) == 0 {
		return nil, fmt.Errorf("spec contains no modules")
	}
	return &s, nil
}
