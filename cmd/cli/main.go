package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/vk/ximsweep/internal/app"
	"github.com/vk/ximsweep/internal/cli"
	"github.com/vk/ximsweep/internal/preset"
)

// main is the entrypoint for the ximsweep application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Stdout, os.Args[1:])
	stop()

	if err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and error
// handling. Errors that carry a specific exit status come back as
// *cli.ExitError.
func run(ctx context.Context, outW io.Writer, args []string) error {
	appConfig, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	err = app.NewApp(outW, appConfig).Run(ctx)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, preset.ErrUnknownMode):
		return &cli.ExitError{Code: cli.ExitMode, Message: err.Error()}
	case errors.Is(err, app.ErrRunsFailed):
		return &cli.ExitError{Code: cli.ExitRunsFailed, Message: err.Error()}
	default:
		return err
	}
}
