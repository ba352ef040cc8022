package report

import (
	"fmt"
	"os"
	"time"

	"github.com/vk/ximsweep/internal/dispatch"
	"github.com/vk/ximsweep/internal/matrix"
	"gopkg.in/yaml.v3"
)

// Sweep is everything known about a finished sweep.
type Sweep struct {
	Mode   string
	Source string
	// Extensions holds CLI values that are recorded but not swept, such as
	// the link rate label.
	Extensions  map[string]string
	Started     time.Time
	Finished    time.Time
	Descriptors []matrix.Descriptor
	Dispatch    *dispatch.Report
}

// Manifest is the on-disk form of a Sweep.
type Manifest struct {
	Mode       string            `yaml:"mode"`
	Source     string            `yaml:"source"`
	Started    time.Time         `yaml:"started"`
	Finished   time.Time         `yaml:"finished"`
	Extensions map[string]string `yaml:"extensions,omitempty"`
	Counts     Counts            `yaml:"counts"`
	Runs       []Run             `yaml:"runs"`
}

// Counts tallies descriptors by outcome.
type Counts struct {
	Total     int `yaml:"total"`
	Succeeded int `yaml:"succeeded"`
	Failed    int `yaml:"failed"`
	Skipped   int `yaml:"skipped"`
}

// Run is one descriptor's line in the manifest.
type Run struct {
	Name      string `yaml:"name"`
	Scheduler string `yaml:"scheduler"`
	Traffic   string `yaml:"traffic"`
	Status    string `yaml:"status"`
	Summary   string `yaml:"summary,omitempty"`
	Error     string `yaml:"error,omitempty"`
}

// Build assembles the manifest. Records and descriptors are matched by
// position; both come out of the dispatcher in descriptor order.
func Build(s Sweep) Manifest {
	m := Manifest{
		Mode:       s.Mode,
		Source:     s.Source,
		Started:    s.Started.UTC(),
		Finished:   s.Finished.UTC(),
		Extensions: s.Extensions,
	}
	if s.Dispatch == nil {
		return m
	}
	m.Counts = Counts{
		Total:     s.Dispatch.Total(),
		Succeeded: s.Dispatch.Succeeded,
		Failed:    s.Dispatch.Failed,
		Skipped:   s.Dispatch.Skipped,
	}
	m.Runs = make([]Run, len(s.Dispatch.Records))
	for i, rec := range s.Dispatch.Records {
		r := Run{Name: rec.Name, Status: string(rec.Status), Summary: rec.Summary}
		if rec.Err != nil {
			r.Error = rec.Err.Error()
		}
		if i < len(s.Descriptors) && s.Descriptors[i].Name == rec.Name {
			r.Scheduler, r.Traffic = s.Descriptors[i].Scheduler, s.Descriptors[i].Traffic
		}
		m.Runs[i] = r
	}
	return m
}

// Write stores the manifest of s at path.
func Write(path string, s Sweep) error {
	data, err := yaml.Marshal(Build(s))
	if err != nil {
		return fmt.Errorf("encode sweep manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write sweep manifest: %w", err)
	}
	return nil
}

// Read loads a manifest written by Write.
func Read(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode sweep manifest %s: %w", path, err)
	}
	return &m, nil
}
