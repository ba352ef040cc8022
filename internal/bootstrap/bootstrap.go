// Package bootstrap prepares the result and scratch trees of a sweep and
// builds the simulator executable once before any run is dispatched.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vk/ximsweep/internal/ctxlog"
	"github.com/vk/ximsweep/internal/fsutil"
	"github.com/vk/ximsweep/internal/layout"
	"github.com/vk/ximsweep/internal/procexec"
)

var (
	// ErrProjectTree is returned when src/ or trace/ is missing from the
	// project root.
	ErrProjectTree = errors.New("project tree incomplete")
	// ErrBuild is returned when the configure or compile step fails.
	ErrBuild = errors.New("build failed")
	// ErrArtifactMissing is returned when the build succeeded but left no
	// executable behind.
	ErrArtifactMissing = errors.New("build artifact missing")
)

// Build logs, written inside the scratch build directory.
const (
	ConfigureLog = "configure.log"
	CompileLog   = "compile.log"
)

// Toolchain holds the two build steps, each an argv run from the scratch
// build directory. An empty step is skipped.
type Toolchain struct {
	Configure []string
	Compile   []string
}

// DefaultToolchain is the cmake + make build of the simulator sources.
func DefaultToolchain() Toolchain {
	return Toolchain{
		Configure: []string{"cmake", "../" + layout.SrcDir},
		Compile:   []string{"make"},
	}
}

// Bootstrapper prepares sweeps.
type Bootstrapper struct {
	runner procexec.Runner
}

// New creates a Bootstrapper that runs build steps with runner.
func New(runner procexec.Runner) *Bootstrapper {
	return &Bootstrapper{runner: runner}
}

// Prepare resets the result and scratch directories of l, backs up and
// stages the project tree, and builds the executable. Any error leaves the
// sweep unfit to run.
func (b *Bootstrapper) Prepare(ctx context.Context, l layout.Layout, tc Toolchain) error {
	logger := ctxlog.FromContext(ctx)

	for _, dir := range []string{l.SourceDir(), l.TracesDir()} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			return fmt.Errorf("%w: %s is not a directory", ErrProjectTree, dir)
		}
	}

	if err := fsutil.ResetDir(l.ResultDir); err != nil {
		return fmt.Errorf("result dir: %w", err)
	}
	if err := fsutil.CopyDir(l.SourceDir(), l.BackupDir()); err != nil {
		return fmt.Errorf("back up sources: %w", err)
	}
	logger.Debug("Result directory ready, sources backed up.", "dir", l.ResultDir)

	if err := fsutil.ResetDir(l.ScratchDir); err != nil {
		return fmt.Errorf("scratch dir: %w", err)
	}
	if err := fsutil.CopyDir(l.SourceDir(), l.ScratchSourceDir()); err != nil {
		return fmt.Errorf("stage sources: %w", err)
	}
	if err := fsutil.CopyDir(l.TracesDir(), l.ScratchTraceDir()); err != nil {
		return fmt.Errorf("stage traces: %w", err)
	}
	if fsutil.Exists(l.LibraryDir()) {
		if err := fsutil.CopyDir(l.LibraryDir(), l.ScratchLibraryDir()); err != nil {
			return fmt.Errorf("stage libraries: %w", err)
		}
	} else {
		logger.Debug("No library directory, skipping.", "dir", l.LibraryDir())
	}
	if err := fsutil.ResetDir(l.ScratchBuildDir()); err != nil {
		return fmt.Errorf("build dir: %w", err)
	}
	logger.Debug("Scratch directory staged.", "dir", l.ScratchDir)

	logger.Info("🛠️ Building simulator", "dir", l.ScratchBuildDir())
	if err := b.step(ctx, l, "configure", tc.Configure, ConfigureLog); err != nil {
		return err
	}
	if err := b.step(ctx, l, "compile", tc.Compile, CompileLog); err != nil {
		return err
	}

	info, err := os.Stat(l.Artifact())
	if err != nil || !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %s", ErrArtifactMissing, l.Artifact())
	}
	logger.Info("✅ Simulator built", "artifact", l.Artifact())
	return nil
}

func (b *Bootstrapper) step(ctx context.Context, l layout.Layout, name string, argv []string, logFile string) error {
	if len(argv) == 0 {
		ctxlog.FromContext(ctx).Debug("Build step not configured, skipping.", "step", name)
		return nil
	}
	cmd := procexec.Command{
		Path:       argv[0],
		Args:       argv[1:],
		Dir:        l.ScratchBuildDir(),
		OutputFile: logFile,
	}
	if _, err := b.runner.Run(ctx, cmd); err != nil {
		return fmt.Errorf("%w: %s step, see %s: %w", ErrBuild, name, filepath.Join(cmd.Dir, logFile), err)
	}
	return nil
}
