package preset

import (
	"fmt"
	"strings"

	"github.com/vk/ximsweep/internal/matrix"
)

// Network splits used by the built-in modes. Each entry names the share of
// traffic assigned to every network, e.g. 20_80 is two networks at 20% and
// 80%.
var (
	varysSplits = []string{
		"100varys", "10varys_90varys", "20varys_80varys", "30varys_70varys",
		"40varys_60varys", "50varys_50varys", "60varys_40varys",
		"70varys_30varys", "80varys_20varys", "90varys_10varys",
	}
	varysHalfSplits = []string{
		"10varys_90varys", "20varys_80varys", "30varys_70varys",
		"40varys_60varys", "50varys_50varys",
	}
	infocomSplits = []string{
		"100varys", "50varys_50varys", "40varys_60varys", "60varys_40varys",
		"30varys_70varys", "70varys_30varys", "20varys_80varys",
		"80varys_20varys", "10varys_90varys", "90varys_10varys",
	}
	twoNetSplits   = []string{"100", "10_90", "20_80", "30_70", "40_60", "50_50"}
	threeNetSplits = []string{
		"10_10_80", "10_20_70", "10_30_60", "10_40_50",
		"20_20_60", "20_30_50", "20_40_40", "30_30_40",
	}
	fourNetSplits = []string{
		"10_10_10_70", "10_10_20_60", "10_10_30_50",
		"10_10_40_40", "10_20_20_50", "10_20_30_40",
		"10_30_30_30", "20_20_20_40", "20_20_30_30",
	}
)

const (
	defaultTrace = "fbtrace-1hr.txt"
	defaultRate  = 1e9
)

var (
	fb1by1 = matrix.Traffic{Generator: "fb1by1", Trace: defaultTrace, Inflate: 1.0, Speedup: 1.0}
	fbplay = matrix.Traffic{Generator: "fbplay", Trace: defaultTrace, Inflate: 1.0, Speedup: 1.0}
)

// Splits returns copies of the built-in network split lists keyed by name.
func Splits() map[string][]string {
	return map[string][]string{
		"varys":     clone(varysSplits),
		"two_varys": clone(varysHalfSplits),
		"two":       clone(twoNetSplits),
		"three":     clone(threeNetSplits),
		"four":      clone(fourNetSplits),
	}
}

// BuiltinModes lists every built-in mode token.
func BuiltinModes() []string {
	return []string{
		"benchmark", "weaver", "prandom", "infocom", "weaversorted",
		"weavernoncritical", "aalo_weaver",
		"3net_weaver", "3net_infocom", "3net_random",
		"4net_weaver", "4net_infocom", "4net_random",
	}
}

// DefaultOptions is the option table of the benchmark mode, and the
// defaults catalog presets fall back to for rate and zero_comp.
func DefaultOptions() matrix.OptionTable {
	return matrix.OptionTable{
		Scheduler: []string{"varysImpl"},
		Traffic:   []matrix.Traffic{fbplay},
		Rate:      []float64{defaultRate},
		ZeroComp:  []bool{true},
	}
}

// builtin returns a fresh option table for mode.
func builtin(mode string) (matrix.OptionTable, bool) {
	t := DefaultOptions()
	t.Traffic = []matrix.Traffic{fb1by1, fbplay}

	switch {
	case mode == "benchmark":
		return DefaultOptions(), true
	case mode == "weaver":
		t.Scheduler = prefixed("weaver_", varysSplits)
	case mode == "prandom":
		t.Scheduler = randomRuns("prandom%d_%s", varysHalfSplits, 11, 50)
	case mode == "infocom":
		t.Scheduler = prefixed("infocom_", infocomSplits)
		t.Traffic = []matrix.Traffic{fb1by1}
	case mode == "weaversorted":
		schedulers := []string{"weaverSortedFlowInc", "weaverSortedFlowDec", "weaverSortedSrcDstIdx", "weaverSortedRandom"}
		t.Scheduler = nil
		for _, s := range schedulers {
			t.Scheduler = append(t.Scheduler, prefixed(s+"_", varysHalfSplits)...)
		}
	case mode == "weavernoncritical":
		schedulers := []string{"weaverNonCRatioLB", "weaverNonCRandom", "weaverNonCMinBn"}
		t.Scheduler = nil
		for _, s := range schedulers {
			t.Scheduler = append(t.Scheduler, netVarys(s, twoNetSplits)...)
		}
	case mode == "aalo_weaver":
		t.Scheduler = netVarys("weaver", twoNetSplits)
	case strings.Contains(mode, "3net"):
		return multiNet(t, mode, "3net", threeNetSplits)
	case strings.Contains(mode, "4net"):
		return multiNet(t, mode, "4net", fourNetSplits)
	default:
		return matrix.OptionTable{}, false
	}
	return t, true
}

// multiNet handles the modes sharing a split family; the family is picked
// by substring and the scheduler by the exact mode.
func multiNet(t matrix.OptionTable, mode, family string, splits []string) (matrix.OptionTable, bool) {
	switch mode {
	case family + "_weaver":
		t.Scheduler = prefixed("weaver_"+family+"_varys_", splits)
	case family + "_infocom":
		t.Scheduler = prefixed("infocom_"+family+"_varys_", splits)
	case family + "_random":
		t.Scheduler = randomRuns("prandom%d_"+family+"_varys_%s", splits, 0, 50)
	default:
		return matrix.OptionTable{}, false
	}
	return t, true
}

func prefixed(prefix string, splits []string) []string {
	out := make([]string, len(splits))
	for i, s := range splits {
		out[i] = prefix + s
	}
	return out
}

// netVarys formats <scheduler>_<k>net_varys_<split>, k being the number of
// networks in the split.
func netVarys(scheduler string, splits []string) []string {
	out := make([]string, len(splits))
	for i, s := range splits {
		out[i] = fmt.Sprintf("%s_%dnet_varys_%s", scheduler, len(strings.Split(s, "_")), s)
	}
	return out
}

// randomRuns expands format over splits (outer) and runs [from, to) (inner).
func randomRuns(format string, splits []string, from, to int) []string {
	out := make([]string, 0, len(splits)*(to-from))
	for _, s := range splits {
		for run := from; run < to; run++ {
			out = append(out, fmt.Sprintf(format, run, s))
		}
	}
	return out
}

func clone(s []string) []string {
	return append([]string(nil), s...)
}
