package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/vk/ximsweep/internal/ctxlog"
	"github.com/vk/ximsweep/internal/dispatch"
	"github.com/vk/ximsweep/internal/matrix"
	"github.com/vk/ximsweep/internal/preset"
)

// ErrInvalidConfig is returned by NewConfig for values it cannot accept.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	Mode string

	// Recorded in the sweep manifest, not swept.
	LinkRate string
	Delay    string
	Inflate  string

	ProjectRoot    string // holds src/, trace/ and gurobi/
	ExperimentsDir string // scratch trees; defaults to <ProjectRoot>/experiments
	PresetPaths    []string

	Configure []string
	Compile   []string

	Workers       int
	FailurePolicy string
	DryRun        bool
	UploadURL     string

	LogFormat       string
	LogLevel        string
	HealthcheckPort int
}

// NewConfig validates cfg and fills in defaults.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.Mode == "" {
		return nil, fmt.Errorf("%w: mode is required", preset.ErrUnknownMode)
	}
	if cfg.Workers < 0 {
		return nil, fmt.Errorf("%w: workers must not be negative, got %d", ErrInvalidConfig, cfg.Workers)
	}
	if cfg.Workers == 0 {
		cfg.Workers = dispatch.DefaultWorkers
	}
	if cfg.FailurePolicy == "" {
		cfg.FailurePolicy = string(dispatch.PolicyContinue)
	}
	if _, err := dispatch.ParseFailurePolicy(cfg.FailurePolicy); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if cfg.ProjectRoot == "" {
		cfg.ProjectRoot = "."
	}
	if cfg.ExperimentsDir == "" {
		cfg.ExperimentsDir = filepath.Join(cfg.ProjectRoot, "experiments")
	}
	return &cfg, nil
}

// Extensions returns the link rate, delay and inflate values as recorded in
// the sweep manifest. Raw values are always kept; labels and numeric values
// are added for the ones found in the label tables. Inflate is relative to
// the link rate, 1Gbps when none is known.
func (c *Config) Extensions(ctx context.Context) map[string]string {
	logger := ctxlog.FromContext(ctx)
	ext := make(map[string]string)
	rate := preset.LinkRate{Label: "01Gbps", Bps: 1e9}
	if c.LinkRate != "" {
		ext["link_rate"] = c.LinkRate
		if parsed, err := preset.ParseLinkRate(c.LinkRate); err != nil {
			logger.Warn("Link rate has no known label, recording it as given.", "link_rate", c.LinkRate, "error", err)
		} else {
			rate = parsed
			ext["link_rate_label"] = rate.Label
			ext["link_rate_bps"] = matrix.FormatRate(rate.Bps)
		}
	}
	if c.Delay != "" {
		ext["delay"] = c.Delay
	}
	if c.Inflate != "" {
		ext["inflate"] = c.Inflate
		if in, err := preset.ParseInflate(c.Inflate, rate); err != nil {
			logger.Warn("Inflate has no known label, recording it as given.", "inflate", c.Inflate, "error", err)
		} else {
			ext["inflate_label"] = in.Label
			ext["inflate_factor"] = matrix.FormatFactor(in.Factor)
		}
	}
	return ext
}
