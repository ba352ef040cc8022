package hcl

// fileRoot is the top-level structure of a catalog file.
type fileRoot struct {
	Presets []*presetBlock `hcl:"preset,block"`
}

// presetBlock is one named option table.
type presetBlock struct {
	Name        string          `hcl:"name,label"`
	Description string          `hcl:"description,optional"`
	Scheduler   []string        `hcl:"scheduler"`
	Rate        []float64       `hcl:"rate,optional"`
	ZeroComp    []bool          `hcl:"zero_comp,optional"`
	Traffic     []*trafficBlock `hcl:"traffic,block"`
}

// trafficBlock is one candidate of the traffic dimension, labelled with the
// generator id.
type trafficBlock struct {
	Generator string   `hcl:"generator,label"`
	Trace     string   `hcl:"trace"`
	Inflate   *float64 `hcl:"inflate,optional"`
	Speedup   *float64 `hcl:"speedup,optional"`
}
