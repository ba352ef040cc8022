package bootstrap_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/ximsweep/internal/bootstrap"
	"github.com/vk/ximsweep/internal/layout"
	"github.com/vk/ximsweep/internal/procexec"
	"github.com/vk/ximsweep/internal/procexec/mock_procexec"
	"go.uber.org/mock/gomock"
)

// newProject lays out a project root with src/, trace/ and optionally
// gurobi/, and returns a layout whose result and scratch trees live inside.
func newProject(t *testing.T, withLib bool) layout.Layout {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"src/main.cc":            "int main() {}\n",
		"src/CMakeLists.txt":     "project(ximulator)\n",
		"trace/fbtrace-1hr.txt":  "150 526\n",
		"trace/nested/small.txt": "1\n",
	}
	if withLib {
		files["gurobi/lib/libgurobi.so"] = "elf"
	}
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	l, err := layout.New(root, filepath.Join(root, "xim_20261019_preset-weaver"), filepath.Join(root, "experiments", "running-preset-weaver"))
	require.NoError(t, err)
	return l
}

// fakeBuild produces the executable in the command's directory.
func fakeBuild(_ context.Context, cmd procexec.Command) (*procexec.Result, error) {
	return &procexec.Result{}, os.WriteFile(filepath.Join(cmd.Dir, layout.Executable), []byte("#!/bin/sh\n"), 0o755)
}

func TestPrepare_StagesAndBuilds(t *testing.T) {
	// --- Arrange ---
	l := newProject(t, true)
	ctrl := gomock.NewController(t)
	runner := mock_procexec.NewMockRunner(ctrl)

	// Leftovers from a previous sweep must disappear.
	require.NoError(t, os.MkdirAll(filepath.Join(l.ResultDir, "xim_000"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(l.ScratchDir, "xim_000"), 0o755))

	gomock.InOrder(
		runner.EXPECT().Run(gomock.Any(), procexec.Command{
			Path: "cmake", Args: []string{"../src"}, Dir: l.ScratchBuildDir(), OutputFile: bootstrap.ConfigureLog,
		}).Return(&procexec.Result{}, nil),
		runner.EXPECT().Run(gomock.Any(), procexec.Command{
			Path: "make", Args: []string{}, Dir: l.ScratchBuildDir(), OutputFile: bootstrap.CompileLog,
		}).DoAndReturn(fakeBuild),
	)

	// --- Act ---
	err := bootstrap.New(runner).Prepare(context.Background(), l, bootstrap.DefaultToolchain())

	// --- Assert ---
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(l.BackupDir(), "main.cc"))
	assert.FileExists(t, filepath.Join(l.ScratchSourceDir(), "CMakeLists.txt"))
	assert.FileExists(t, filepath.Join(l.ScratchTraceDir(), "fbtrace-1hr.txt"))
	assert.FileExists(t, filepath.Join(l.ScratchTraceDir(), "nested", "small.txt"))
	assert.FileExists(t, filepath.Join(l.ScratchLibraryDir(), "lib", "libgurobi.so"))
	assert.FileExists(t, l.Artifact())
	assert.NoDirExists(t, filepath.Join(l.ResultDir, "xim_000"))
	assert.NoDirExists(t, filepath.Join(l.ScratchDir, "xim_000"))
}

func TestPrepare_LibraryIsOptional(t *testing.T) {
	l := newProject(t, false)
	runner := mock_procexec.NewMockRunner(gomock.NewController(t))
	runner.EXPECT().Run(gomock.Any(), gomock.Any()).DoAndReturn(fakeBuild)

	err := bootstrap.New(runner).Prepare(context.Background(), l, bootstrap.Toolchain{Compile: []string{"make"}})

	require.NoError(t, err)
	assert.NoDirExists(t, l.ScratchLibraryDir())
}

func TestPrepare_Failures(t *testing.T) {
	testCases := []struct {
		name    string
		setup   func(t *testing.T, l layout.Layout)
		run     func(context.Context, procexec.Command) (*procexec.Result, error)
		calls   int
		wantErr error
	}{
		{
			name: "compile fails",
			run: func(context.Context, procexec.Command) (*procexec.Result, error) {
				return nil, procexec.ErrCommandFailed
			},
			calls:   1,
			wantErr: bootstrap.ErrBuild,
		},
		{
			name:    "no artifact",
			run:     func(context.Context, procexec.Command) (*procexec.Result, error) { return &procexec.Result{}, nil },
			calls:   1,
			wantErr: bootstrap.ErrArtifactMissing,
		},
		{
			name: "missing trace dir",
			setup: func(t *testing.T, l layout.Layout) {
				require.NoError(t, os.RemoveAll(l.TracesDir()))
			},
			wantErr: bootstrap.ErrProjectTree,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// --- Arrange ---
			l := newProject(t, false)
			if tc.setup != nil {
				tc.setup(t, l)
			}
			runner := mock_procexec.NewMockRunner(gomock.NewController(t))
			if tc.calls > 0 {
				runner.EXPECT().Run(gomock.Any(), gomock.Any()).DoAndReturn(tc.run).Times(tc.calls)
			}

			// --- Act ---
			err := bootstrap.New(runner).Prepare(context.Background(), l, bootstrap.Toolchain{Compile: []string{"make"}})

			// --- Assert ---
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestPrepare_MissingTreeTouchesNothing(t *testing.T) {
	l := newProject(t, false)
	require.NoError(t, os.RemoveAll(l.SourceDir()))

	err := bootstrap.New(procexec.NewExec()).Prepare(context.Background(), l, bootstrap.DefaultToolchain())

	require.ErrorIs(t, err, bootstrap.ErrProjectTree)
	assert.NoDirExists(t, l.ResultDir)
	assert.NoDirExists(t, l.ScratchDir)
}

func TestPrepare_RealShellBuild(t *testing.T) {
	l := newProject(t, false)
	script := "printf '#!/bin/sh\\necho ok\\n' > " + layout.Executable + " && chmod +x " + layout.Executable

	err := bootstrap.New(procexec.NewExec()).Prepare(context.Background(), l, bootstrap.Toolchain{
		Configure: []string{"sh", "-c", "test -d ../src"},
		Compile:   []string{"sh", "-c", script},
	})

	require.NoError(t, err)
	info, statErr := os.Stat(l.Artifact())
	require.NoError(t, statErr)
	assert.NotZero(t, info.Mode().Perm()&0o100)
	assert.FileExists(t, filepath.Join(l.ScratchBuildDir(), bootstrap.CompileLog))
}

func TestPrepare_BuildErrorWrapsCause(t *testing.T) {
	l := newProject(t, false)

	err := bootstrap.New(procexec.NewExec()).Prepare(context.Background(), l, bootstrap.Toolchain{
		Compile: []string{"sh", "-c", "exit 3"},
	})

	require.ErrorIs(t, err, bootstrap.ErrBuild)
	var exitErr *procexec.ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, 3, exitErr.ExitCode)
}
