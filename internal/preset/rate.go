package preset

import (
	"errors"
	"fmt"
)

var (
	// ErrLinkRate is returned for a link rate outside the supported set.
	ErrLinkRate = errors.New("unsupported link rate")
	// ErrInflate is returned for an inflate token outside the supported set.
	ErrInflate = errors.New("unsupported inflate factor")
)

// LinkRate is a labelled link rate in bits per second.
type LinkRate struct {
	Label string
	Bps   float64
}

// Gbps returns the rate in gigabits per second.
func (r LinkRate) Gbps() float64 { return r.Bps / 1e9 }

// Inflate is a labelled traffic inflation factor.
type Inflate struct {
	Label  string
	Factor float64
}

var linkRates = map[string]LinkRate{
	"1Gbps":    {"01Gbps", 1e9},
	"1.33Gbps": {"01_33Gbps", 1.33e9},
	"10Gbps":   {"10Gbps", 10e9},
	"40Gbps":   {"40Gbps", 40e9},
	"100Gbps":  {"100Gbps", 100e9},
}

// Load fractions, scaled by the link rate in Gbps.
var inflateLoads = map[string]Inflate{
	"X0.05": {"X005p", 0.05},
	"X0.1":  {"X010p", 0.1},
	"X0.20": {"X020p", 0.2},
	"X0.25": {"X025p", 0.25},
	"X0.30": {"X030p", 0.3},
	"X0.40": {"X040p", 0.4},
	"X0.50": {"X050p", 0.5},
	"X0.75": {"X075p", 0.75},
	"X1.25": {"X125p", 1.25},
	"X1.50": {"X150p", 1.5},
	"X1.75": {"X175p", 1.75},
	"X2.00": {"X200p", 2.0},
	"X2.25": {"X225p", 2.25},
}

// ParseLinkRate maps a user token such as "10Gbps" to its label and rate.
func ParseLinkRate(s string) (LinkRate, error) {
	r, ok := linkRates[s]
	if !ok {
		return LinkRate{}, fmt.Errorf("%w: %q (e.g. 10Gbps)", ErrLinkRate, s)
	}
	return r, nil
}

// ParseInflate maps a user token such as "X0.25" to its label and factor.
// X1 is the unscaled trace; every other load is relative to rate.
func ParseInflate(s string, rate LinkRate) (Inflate, error) {
	if s == "X1" {
		return Inflate{Label: "X1", Factor: 1.0}, nil
	}
	in, ok := inflateLoads[s]
	if !ok {
		return Inflate{}, fmt.Errorf("%w: %q", ErrInflate, s)
	}
	in.Factor *= rate.Gbps()
	return in, nil
}
