package hcl

import (
	"fmt"

	"github.com/vk/ximsweep/internal/matrix"
	"github.com/vk/ximsweep/internal/preset"
)

// translatePreset converts a decoded block into a preset definition, filling
// in the defaults for omitted dimensions and factors.
func translatePreset(b *presetBlock, file string) (preset.Definition, error) {
	if err := preset.CheckName(b.Name); err != nil {
		return preset.Definition{}, fmt.Errorf("preset in %s: %w", file, err)
	}
	defaults := preset.DefaultOptions()

	options := matrix.OptionTable{
		Scheduler: b.Scheduler,
		Rate:      b.Rate,
		ZeroComp:  b.ZeroComp,
	}
	if options.Rate == nil {
		options.Rate = defaults.Rate
	}
	if options.ZeroComp == nil {
		options.ZeroComp = defaults.ZeroComp
	}
	for _, t := range b.Traffic {
		options.Traffic = append(options.Traffic, matrix.Traffic{
			Generator: t.Generator,
			Trace:     t.Trace,
			Inflate:   valueOr(t.Inflate, 1.0),
			Speedup:   valueOr(t.Speedup, 1.0),
		})
	}

	if err := options.Validate(); err != nil {
		return preset.Definition{}, fmt.Errorf("preset %q in %s: %w", b.Name, file, err)
	}

	return preset.Definition{
		Name:        b.Name,
		Description: b.Description,
		Options:     options,
		Source:      file,
	}, nil
}

func valueOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}
