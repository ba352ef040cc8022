package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/vk/ximsweep/internal/app"
	"github.com/vk/ximsweep/internal/bootstrap"
	"github.com/vk/ximsweep/internal/dispatch"
	"github.com/vk/ximsweep/internal/preset"
)

// Exit codes of the ximsweep process.
const (
	ExitRunsFailed = 1
	ExitUsage      = 2
	ExitMode       = 255
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// stringList collects a repeatable flag.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("ximsweep", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprintf(output, `
ximsweep - runs preset experiment sweeps of the ximulator network simulator.

Usage:
  ximsweep -m MODE [options]

Built-in modes:
  %s

  benchmark is a smoke test: one varysImpl run over fbplay at 1Gbps. It is
  not one of the published sweeps.

Options:
`, strings.Join(preset.BuiltinModes(), ", "))
		flagSet.PrintDefaults()
	}

	defaults := bootstrap.DefaultToolchain()

	var mode, linkRate, delay, inflate string
	for _, name := range []string{"m", "mode"} {
		flagSet.StringVar(&mode, name, "", "Preset experiment mode to run (required).")
	}
	for _, name := range []string{"l", "link_rate"} {
		flagSet.StringVar(&linkRate, name, "", "Link rate, e.g. 10Gbps. Recorded, not swept.")
	}
	for _, name := range []string{"d", "delay"} {
		flagSet.StringVar(&delay, name, "", "Reconfiguration delay. Recorded, not swept.")
	}
	for _, name := range []string{"i", "inflate"} {
		flagSet.StringVar(&inflate, name, "", "Traffic load factor, e.g. X0.25. Recorded, not swept.")
	}
	var presets stringList
	flagSet.Var(&presets, "presets", "HCL preset catalog file or directory. Repeatable.")

	rootFlag := flagSet.String("root", ".", "Project root holding src/, trace/ and gurobi/.")
	experimentsFlag := flagSet.String("experiments-dir", "", "Scratch directory for running experiments (default <root>/experiments).")
	configureFlag := flagSet.String("configure", strings.Join(defaults.Configure, " "), "Configure command, run in the scratch build directory.")
	compileFlag := flagSet.String("compile", strings.Join(defaults.Compile, " "), "Compile command, run in the scratch build directory.")
	workersFlag := flagSet.Int("workers", dispatch.DefaultWorkers, "Number of experiments run concurrently.")
	policyFlag := flagSet.String("failure-policy", string(dispatch.PolicyContinue), "What a failed experiment does to the sweep: 'continue' or 'abort'.")
	dryRunFlag := flagSet.Bool("dry-run", false, "Print the experiment matrix and exit without touching the filesystem.")
	uploadFlag := flagSet.String("upload-url", "", "Pre-signed URL the result tarball is PUT to.")
	healthPortFlag := flagSet.Int("healthcheck-port", 0, "Port for the HTTP health check server. 0 is disabled.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: ExitUsage, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	if flagSet.NArg() > 0 {
		return nil, false, &ExitError{Code: ExitUsage, Message: fmt.Sprintf("unexpected arguments: %s", strings.Join(flagSet.Args(), " "))}
	}
	if mode == "" {
		return nil, false, &ExitError{Code: ExitMode, Message: "Only preset mode is allowed: -m MODE is required."}
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: ExitUsage, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: ExitUsage, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		Mode:            mode,
		LinkRate:        linkRate,
		Delay:           delay,
		Inflate:         inflate,
		ProjectRoot:     *rootFlag,
		ExperimentsDir:  *experimentsFlag,
		PresetPaths:     presets,
		Configure:       strings.Fields(*configureFlag),
		Compile:         strings.Fields(*compileFlag),
		Workers:         *workersFlag,
		FailurePolicy:   strings.ToLower(*policyFlag),
		DryRun:          *dryRunFlag,
		UploadURL:       *uploadFlag,
		HealthcheckPort: *healthPortFlag,
		LogFormat:       logFormat,
		LogLevel:        logLevel,
	})
	if err != nil {
		if errors.Is(err, preset.ErrUnknownMode) {
			return nil, false, &ExitError{Code: ExitMode, Message: err.Error()}
		}
		return nil, false, &ExitError{Code: ExitUsage, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
