package runexec

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/vk/ximsweep/internal/ctxlog"
	"github.com/vk/ximsweep/internal/fsutil"
	"github.com/vk/ximsweep/internal/layout"
	"github.com/vk/ximsweep/internal/matrix"
	"github.com/vk/ximsweep/internal/procexec"
)

// Failure kinds of a run. Every error returned by Run matches exactly one
// of these with errors.Is, except when collection fails after the simulator
// already failed; then both match.
var (
	ErrStage     = errors.New("staging failed")
	ErrSimulator = errors.New("simulator failed")
	ErrCollect   = errors.New("collecting outputs failed")
	ErrAudit     = errors.New("reading audit failed")
)

// TimestampFormat is used for the finish line of every run.
const TimestampFormat = "2006-01-02 15:04"

// Executor runs descriptors against the artifact and traces of one layout.
type Executor struct {
	layout layout.Layout
	runner procexec.Runner
	now    func() time.Time
}

// Option customizes an Executor.
type Option func(*Executor)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Executor) { e.now = now }
}

// New creates an Executor.
func New(l layout.Layout, runner procexec.Runner, opts ...Option) *Executor {
	e := &Executor{layout: l, runner: runner, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run executes d and returns the last line of its completion-time audit.
func (e *Executor) Run(ctx context.Context, d matrix.Descriptor) (string, error) {
	ctx, logger := ctxlog.With(ctx, "run", d.Name)
	started := e.now()
	logger.Info("▶️ Running experiment", "at", started.Format(TimestampFormat), "descriptor", d)

	runDir := e.layout.RunDir(d.Name)
	if err := e.stage(runDir, d); err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrStage, d.Name, err)
	}
	logger.Debug("Inputs staged.", "dir", runDir)

	cmd := e.Command(d)
	res, simErr := e.runner.Run(ctx, cmd)
	exitCode := -1
	if res != nil {
		exitCode = res.ExitCode
	}
	if simErr != nil {
		simErr = fmt.Errorf("%w: %s: %w", ErrSimulator, d.Name, simErr)
		logger.Warn("Simulator failed, collecting partial outputs.", "error", simErr)
	}

	// Outputs are collected even after a failure so the result tree keeps
	// whatever the simulator managed to write.
	if err := e.collect(d, cmd, started, exitCode); err != nil {
		return "", errors.Join(simErr, fmt.Errorf("%w: %s: %w", ErrCollect, d.Name, err))
	}
	if simErr != nil {
		return "", simErr
	}

	summary, err := fsutil.LastLine(filepath.Join(e.layout.ResultRunDir(d.Name), layout.CCTAudit))
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrAudit, d.Name, err)
	}

	logger.Info("🏁 Finished experiment", "at", e.now().Format(TimestampFormat), "summary", summary)
	return summary, nil
}

// Command is the simulator invocation for d, run from d's scratch directory.
func (e *Executor) Command(d matrix.Descriptor) procexec.Command {
	runDir := e.layout.RunDir(d.Name)
	return procexec.Command{
		Path: filepath.Join(runDir, layout.Executable),
		Args: []string{
			"-s", d.Scheduler,
			"-elec", matrix.FormatRate(d.Elec),
			"-traffic", d.Traffic,
			"-ftrace", d.Trace,
			"-inflate", matrix.FormatFactor(d.Inflate),
			"-speedup", matrix.FormatFactor(d.Speedup),
			"-cctaudit", layout.CCTAudit,
			"-fctaudit", layout.FCTAudit,
			"-compaudit", layout.CompTimeAudit,
			"-zc", fmt.Sprint(d.ZeroComp),
		},
		Dir:        runDir,
		OutputFile: layout.OutputFile,
	}
}

// stage creates the run directory and copies the executable and trace in.
// Mkdir, not MkdirAll: an existing directory means two descriptors share a
// name, which must never happen.
func (e *Executor) stage(runDir string, d matrix.Descriptor) error {
	if err := matrix.CheckTrace(d.Trace); err != nil {
		return err
	}
	if err := os.Mkdir(runDir, 0o755); err != nil {
		return err
	}
	if err := fsutil.CopyToDir(e.layout.Artifact(), runDir); err != nil {
		return fmt.Errorf("stage executable: %w", err)
	}
	trace := filepath.Join(e.layout.ScratchTraceDir(), d.Trace)
	if err := fsutil.CopyFile(trace, filepath.Join(runDir, d.Trace)); err != nil {
		return fmt.Errorf("stage trace: %w", err)
	}
	return nil
}

func (e *Executor) collect(d matrix.Descriptor, cmd procexec.Command, started time.Time, exitCode int) error {
	resultDir := e.layout.ResultRunDir(d.Name)
	if err := os.MkdirAll(resultDir, 0o755); err != nil {
		return err
	}
	outputs, err := fsutil.CopyGlob(cmd.Dir, layout.OutputGlob, resultDir)
	if err != nil {
		return err
	}
	return writeManifest(filepath.Join(resultDir, layout.RunManifest), Manifest{
		FieldsVersion: matrix.FieldsVersion,
		Descriptor:    fieldsNode(d.Fields()),
		Command:       append([]string{layout.Executable}, cmd.Args...),
		Started:       started,
		Finished:      e.now(),
		ExitCode:      exitCode,
		Outputs:       outputs,
	})
}
