// Package layout names every path a sweep reads or writes.
//
//	<scratch>/
//	  trace/, src/, gurobi/, build/
//	  <descriptor>/   staged executable, staged trace, ximout_*.txt
//	<result>/
//	  src/            source backup
//	  sweep.yaml
//	  <descriptor>/   ximout_*.txt, manifest.yaml
package layout

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Fixed names of the project tree and of the simulator's outputs.
const (
	SrcDir   = "src"
	TraceDir = "trace"
	LibDir   = "gurobi"
	BuildDir = "build"

	Executable = "ximulator_main"

	CCTAudit      = "ximout_cct.txt"
	FCTAudit      = "ximout_fct.txt"
	CompTimeAudit = "ximout_comp_time.txt"
	OutputFile    = "ximout_output.txt"
	OutputGlob    = "ximout_*.txt"

	RunManifest   = "manifest.yaml"
	SweepManifest = "sweep.yaml"
)

// Layout holds the three roots of a sweep. All paths are expected to be
// absolute; see New.
type Layout struct {
	// ProjectRoot holds the pristine src/, trace/ and gurobi/ trees.
	ProjectRoot string
	// ResultDir is the permanent result tree.
	ResultDir string
	// ScratchDir is the ephemeral working tree.
	ScratchDir string
}

// New builds a Layout with absolute paths.
func New(projectRoot, resultDir, scratchDir string) (Layout, error) {
	var l Layout
	var err error
	if l.ProjectRoot, err = filepath.Abs(projectRoot); err != nil {
		return Layout{}, fmt.Errorf("project root: %w", err)
	}
	if l.ResultDir, err = filepath.Abs(resultDir); err != nil {
		return Layout{}, fmt.Errorf("result dir: %w", err)
	}
	if l.ScratchDir, err = filepath.Abs(scratchDir); err != nil {
		return Layout{}, fmt.Errorf("scratch dir: %w", err)
	}
	return l, nil
}

func (l Layout) SourceDir() string  { return filepath.Join(l.ProjectRoot, SrcDir) }
func (l Layout) TracesDir() string  { return filepath.Join(l.ProjectRoot, TraceDir) }
func (l Layout) LibraryDir() string { return filepath.Join(l.ProjectRoot, LibDir) }

func (l Layout) ScratchSourceDir() string  { return filepath.Join(l.ScratchDir, SrcDir) }
func (l Layout) ScratchTraceDir() string   { return filepath.Join(l.ScratchDir, TraceDir) }
func (l Layout) ScratchLibraryDir() string { return filepath.Join(l.ScratchDir, LibDir) }
func (l Layout) ScratchBuildDir() string   { return filepath.Join(l.ScratchDir, BuildDir) }

// Artifact is the executable produced by the build.
func (l Layout) Artifact() string {
	return filepath.Join(l.ScratchBuildDir(), Executable)
}

// BackupDir is where the source tree is preserved next to the results.
func (l Layout) BackupDir() string {
	return filepath.Join(l.ResultDir, SrcDir)
}

// RunDir is the scratch working directory of one descriptor.
func (l Layout) RunDir(name string) string {
	return filepath.Join(l.ScratchDir, checkName(name))
}

// ResultRunDir is the permanent output directory of one descriptor.
func (l Layout) ResultRunDir(name string) string {
	return filepath.Join(l.ResultDir, checkName(name))
}

// checkName guards the one-directory-per-descriptor partition: a name that
// could escape or collapse into another directory is a programming error.
func checkName(name string) string {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		panic(fmt.Sprintf("layout: invalid descriptor name %q", name))
	}
	return name
}
