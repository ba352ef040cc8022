package matrix

import "fmt"

// Predicate decides whether a combination is worth running.
type Predicate func(Descriptor) bool

type buildOptions struct {
	filters []Predicate
}

// BuildOption customizes Build.
type BuildOption func(*buildOptions)

// WithFilter drops every combination for which keep returns false. Filters
// run before a name is assigned, so kept descriptors stay contiguously
// numbered.
func WithFilter(keep Predicate) BuildOption {
	return func(o *buildOptions) {
		if keep != nil {
			o.filters = append(o.filters, keep)
		}
	}
}

// DescriptorName returns the name of the descriptor at position i.
func DescriptorName(i int) string {
	return fmt.Sprintf("xim_%03d", i)
}

// Build expands the option table into descriptors, scheduler-major. An
// empty dimension yields no descriptors.
func Build(options OptionTable, opts ...BuildOption) []Descriptor {
	var bo buildOptions
	for _, opt := range opts {
		opt(&bo)
	}

	result := make([]Descriptor, 0, options.Size())
	for _, scheduler := range options.Scheduler {
		for _, traffic := range options.Traffic {
			for _, rate := range options.Rate {
				for _, zeroComp := range options.ZeroComp {
					d := Descriptor{
						Elec:      rate,
						Scheduler: scheduler,
						Traffic:   traffic.Generator,
						Trace:     traffic.Trace,
						Inflate:   traffic.Inflate,
						Speedup:   traffic.Speedup,
						ZeroComp:  zeroComp,
					}
					if !bo.keep(d) {
						continue
					}
					d.Name = DescriptorName(len(result))
					result = append(result, d)
				}
			}
		}
	}
	return result
}

func (o *buildOptions) keep(d Descriptor) bool {
	for _, f := range o.filters {
		if !f(d) {
			return false
		}
	}
	return true
}
