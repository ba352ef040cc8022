package runexec

import (
	"fmt"
	"os"
	"time"

	"github.com/vk/ximsweep/internal/matrix"
	"gopkg.in/yaml.v3"
)

// Manifest is written next to a run's outputs so a result directory can be
// understood without the sweep that produced it.
type Manifest struct {
	FieldsVersion int        `yaml:"fields_version"`
	Descriptor    *yaml.Node `yaml:"descriptor"`
	Command       []string   `yaml:"command"`
	Started       time.Time  `yaml:"started"`
	Finished      time.Time  `yaml:"finished"`
	ExitCode      int        `yaml:"exit_code"`
	Outputs       []string   `yaml:"outputs"`
}

// fieldsNode keeps the descriptor's field order in the YAML mapping.
func fieldsNode(fields []matrix.Field) *yaml.Node {
	n := &yaml.Node{Kind: yaml.MappingNode}
	for _, f := range fields {
		n.Content = append(n.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: f.Key},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: f.Value},
		)
	}
	return n
}

func writeManifest(path string, m Manifest) error {
	data, err := yaml.Marshal(&m)
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadManifest loads a manifest written by a previous run. Descriptor
// fields come back as a flat string map.
func ReadManifest(path string) (*Manifest, map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, nil, fmt.Errorf("decode manifest %s: %w", path, err)
	}
	fields := make(map[string]string)
	if m.Descriptor != nil {
		if err := m.Descriptor.Decode(&fields); err != nil {
			return nil, nil, fmt.Errorf("decode descriptor in %s: %w", path, err)
		}
	}
	return &m, fields, nil
}
