package matrix

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var (
	// ErrEmptyDimension is returned by OptionTable.Validate when a dimension
	// has no candidate values.
	ErrEmptyDimension = errors.New("option dimension is empty")
	// ErrInvalidTrace is returned for a trace that is not a plain file name
	// inside the trace directory.
	ErrInvalidTrace = errors.New("trace must be a plain file name")
)

// Dimension names, in expansion order.
const (
	DimScheduler = "scheduler"
	DimTraffic   = "traffic"
	DimRate      = "rate"
	DimZeroComp  = "zero_comp"
)

// Traffic is one candidate of the traffic dimension: the generator id, the
// trace file it replays and the two load-shaping factors.
type Traffic struct {
	Generator string
	Trace     string
	Inflate   float64
	Speedup   float64
}

// OptionTable holds the candidate values of every sweep dimension.
type OptionTable struct {
	Scheduler []string
	Traffic   []Traffic
	Rate      []float64
	ZeroComp  []bool
}

// Dimension reports the name and candidate count of one dimension.
type Dimension struct {
	Name string
	Size int
}

// Dimensions returns the table's dimensions in expansion order.
func (t OptionTable) Dimensions() []Dimension {
	return []Dimension{
		{Name: DimScheduler, Size: len(t.Scheduler)},
		{Name: DimTraffic, Size: len(t.Traffic)},
		{Name: DimRate, Size: len(t.Rate)},
		{Name: DimZeroComp, Size: len(t.ZeroComp)},
	}
}

// Size is the number of combinations in the table's product space.
func (t OptionTable) Size() int {
	n := 1
	for _, d := range t.Dimensions() {
		n *= d.Size
	}
	return n
}

// Validate checks that every dimension has at least one candidate and that
// every trace names a file directly inside the trace directory.
func (t OptionTable) Validate() error {
	for _, d := range t.Dimensions() {
		if d.Size == 0 {
			return fmt.Errorf("%w: %s", ErrEmptyDimension, d.Name)
		}
	}
	for _, tr := range t.Traffic {
		if err := CheckTrace(tr.Trace); err != nil {
			return err
		}
	}
	return nil
}

// CheckTrace rejects trace names that are empty or would resolve outside
// the trace directory.
func CheckTrace(trace string) error {
	if trace == "" || trace == "." || trace == ".." ||
		strings.ContainsAny(trace, `/\`) || filepath.IsAbs(trace) || filepath.Base(trace) != trace {
		return fmt.Errorf("%w: %q", ErrInvalidTrace, trace)
	}
	return nil
}

// Clone returns a deep copy, so callers can hand out tables without sharing
// the backing slices.
func (t OptionTable) Clone() OptionTable {
	return OptionTable{
		Scheduler: append([]string(nil), t.Scheduler...),
		Traffic:   append([]Traffic(nil), t.Traffic...),
		Rate:      append([]float64(nil), t.Rate...),
		ZeroComp:  append([]bool(nil), t.ZeroComp...),
	}
}
