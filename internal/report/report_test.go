package report_test

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/gookit/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/ximsweep/internal/dispatch"
	"github.com/vk/ximsweep/internal/matrix"
	"github.com/vk/ximsweep/internal/report"
	"github.com/vk/ximsweep/internal/runstore"
)

func sampleSweep() report.Sweep {
	start := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	return report.Sweep{
		Mode:       "weaver",
		Source:     "builtin",
		Extensions: map[string]string{"link_rate": "10Gbps"},
		Started:    start,
		Finished:   start.Add(2 * time.Hour),
		Descriptors: []matrix.Descriptor{
			{Name: "xim_000", Scheduler: "weaver_100varys", Traffic: "fb1by1"},
			{Name: "xim_001", Scheduler: "weaver_10varys_90varys", Traffic: "fb1by1"},
			{Name: "xim_002", Scheduler: "weaver_20varys_80varys", Traffic: "fb1by1"},
		},
		Dispatch: &dispatch.Report{
			Records: []runstore.Record{
				{Name: "xim_000", Status: runstore.StatusSucceeded, Summary: "avg_cct 12.5"},
				{Name: "xim_001", Status: runstore.StatusFailed, Err: errors.New("simulator failed: exit 134")},
				{Name: "xim_002", Status: runstore.StatusSkipped, Err: dispatch.ErrAborted},
			},
			Succeeded: 1,
			Failed:    1,
			Skipped:   1,
		},
	}
}

func TestWrite_RoundTrip(t *testing.T) {
	// --- Arrange ---
	path := filepath.Join(t.TempDir(), "sweep.yaml")
	s := sampleSweep()

	// --- Act ---
	require.NoError(t, report.Write(path, s))
	got, err := report.Read(path)

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, "weaver", got.Mode)
	assert.Equal(t, map[string]string{"link_rate": "10Gbps"}, got.Extensions)
	assert.Equal(t, report.Counts{Total: 3, Succeeded: 1, Failed: 1, Skipped: 1}, got.Counts)
	assert.True(t, got.Finished.Equal(s.Finished))
	require.Len(t, got.Runs, 3)
	assert.Equal(t, report.Run{
		Name: "xim_000", Scheduler: "weaver_100varys", Traffic: "fb1by1", Status: "succeeded", Summary: "avg_cct 12.5",
	}, got.Runs[0])
	assert.Equal(t, "simulator failed: exit 134", got.Runs[1].Error)
	assert.Equal(t, "skipped", got.Runs[2].Status)
	assert.Equal(t, dispatch.ErrAborted.Error(), got.Runs[2].Error)
}

func TestBuild_WithoutDispatch(t *testing.T) {
	s := sampleSweep()
	s.Dispatch = nil

	m := report.Build(s)

	assert.Empty(t, m.Runs)
	assert.Zero(t, m.Counts.Total)
}

func TestPrint(t *testing.T) {
	// --- Arrange ---
	color.Enable = false
	t.Cleanup(func() { color.Enable = true })
	var buf bytes.Buffer

	// --- Act ---
	report.Print(&buf, sampleSweep())

	// --- Assert ---
	out := buf.String()
	assert.Contains(t, out, "xim_000 succeeded weaver_100varys avg_cct 12.5")
	assert.Contains(t, out, "xim_001 failed    weaver_10varys_90varys simulator failed: exit 134")
	assert.Contains(t, out, "1/3 experiments succeeded, 1 failed, 1 skipped")
	assert.Contains(t, out, "starts at 2026-10-19 09:00:00")
	assert.Contains(t, out, "ends at 2026-10-19 11:00:00")
}
