package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/ximsweep/internal/cli"
)

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// The "-h" (help) flag should cause cli.Parse to return `shouldExit=true`.
	args := []string{"-h"}
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(context.Background(), out, args)

	// --- Assert ---
	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	args := []string{"--this-is-not-a-valid-flag"}
	out := &bytes.Buffer{}

	err := run(context.Background(), out, args)

	require.Error(t, err, "run() should return an error when argument parsing fails")
	require.Contains(t, err.Error(), "flag provided but not defined: -this-is-not-a-valid-flag")
}

func TestRun_ExitCodes(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		args []string
		code int
	}{
		{"missing mode", []string{}, cli.ExitMode},
		{"unknown mode", []string{"-m", "5net_weaver", "--root", "/nonexistent", "--dry-run"}, cli.ExitMode},
		{"bad flag value", []string{"-m", "weaver", "--workers=-2"}, cli.ExitUsage},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := run(context.Background(), &bytes.Buffer{}, tc.args)

			var exitErr *cli.ExitError
			require.True(t, errors.As(err, &exitErr), "expected an ExitError, got %v", err)
			require.Equal(t, tc.code, exitErr.Code)
		})
	}
}

func TestRun_DryRunBuiltinMode(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}

	err := run(context.Background(), out, []string{"-m", "infocom", "--root", t.TempDir(), "--dry-run", "--log-level=warn"})

	require.NoError(t, err)
	require.Contains(t, out.String(), "mode infocom (builtin): 10 experiments")
}
