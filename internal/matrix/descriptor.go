package matrix

import (
	"fmt"
	"log/slog"
	"strconv"
)

// FieldsVersion is bumped whenever the list returned by Descriptor.Fields
// changes shape. Manifests record it so older result trees stay readable.
const FieldsVersion = 1

// Descriptor is one fully specified run of the simulator.
type Descriptor struct {
	Name      string
	Elec      float64
	Scheduler string
	Traffic   string
	Trace     string
	Inflate   float64
	Speedup   float64
	ZeroComp  bool

	// Only read by the sunflow scheduler.
	SunflowShuffleRandom bool
	SunflowShuffleSort   bool
}

// Field is a single key/value pair of a descriptor's serialized form.
type Field struct {
	Key   string
	Value string
}

// Fields returns the descriptor's serialized form. The order and keys are
// part of the manifest format; see FieldsVersion.
func (d Descriptor) Fields() []Field {
	return []Field{
		{Key: "name", Value: d.Name},
		{Key: "elec", Value: FormatRate(d.Elec)},
		{Key: "scheduler", Value: d.Scheduler},
		{Key: "traffic", Value: d.Traffic},
		{Key: "ftrace", Value: d.Trace},
		{Key: "inflate", Value: FormatFactor(d.Inflate)},
		{Key: "speedup", Value: FormatFactor(d.Speedup)},
		{Key: "zero_comp", Value: strconv.FormatBool(d.ZeroComp)},
		{Key: "sunflow_shuffle_random", Value: strconv.FormatBool(d.SunflowShuffleRandom)},
		{Key: "sunflow_shuffle_sort", Value: strconv.FormatBool(d.SunflowShuffleSort)},
	}
}

// LogValue implements slog.LogValuer.
func (d Descriptor) LogValue() slog.Value {
	fields := d.Fields()
	attrs := make([]slog.Attr, 0, len(fields))
	for _, f := range fields {
		attrs = append(attrs, slog.String(f.Key, f.Value))
	}
	return slog.GroupValue(attrs...)
}

func (d Descriptor) String() string {
	return fmt.Sprintf("%s(%s, %s, %s)", d.Name, d.Scheduler, d.Traffic, FormatRate(d.Elec))
}

// FormatRate renders a link rate in bits per second the way the simulator
// parses it: an integer with no exponent.
func FormatRate(bps float64) string {
	return strconv.FormatFloat(bps, 'f', 0, 64)
}

// FormatFactor renders a floating point factor with the shortest exact
// representation.
func FormatFactor(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
