package procexec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/vk/ximsweep/internal/ctxlog"
)

// maxStderrInError bounds how much stderr is copied into an ExitError.
const maxStderrInError = 2048

// Exec is the Runner backed by os/exec.
type Exec struct{}

// NewExec returns the os/exec backed Runner.
func NewExec() *Exec {
	return &Exec{}
}

// Run starts the command, waits for it and reports its exit status. The
// process is killed if ctx is cancelled.
func (e *Exec) Run(ctx context.Context, c Command) (*Result, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Running command.", "command", c.String(), "dir", c.Dir)

	cmd := exec.CommandContext(ctx, c.Path, c.Args...)
	cmd.Dir = c.Dir

	var stdout, stderr bytes.Buffer
	if c.OutputFile != "" {
		path := c.OutputFile
		if !filepath.IsAbs(path) && c.Dir != "" {
			path = filepath.Join(c.Dir, path)
		}
		f, err := os.Create(path)
		if err != nil {
			return nil, fmt.Errorf("%w: open output file for %q: %v", ErrCommandFailed, c.String(), err)
		}
		defer f.Close()
		cmd.Stdout = f
		cmd.Stderr = f
	} else {
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
	}

	start := time.Now()
	err := cmd.Run()
	res := &Result{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		ExitCode: cmd.ProcessState.ExitCode(),
		Duration: time.Since(start),
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			logger.Debug("Command exited unsuccessfully.", "command", c.String(), "exit_code", res.ExitCode)
			return res, &ExitError{
				Command:  c.String(),
				ExitCode: res.ExitCode,
				Stderr:   truncate(strings.TrimSpace(stderr.String()), maxStderrInError),
			}
		}
		return res, fmt.Errorf("%w: start %q: %v", ErrCommandFailed, c.String(), err)
	}

	logger.Debug("Command finished.", "command", c.String(), "duration", res.Duration)
	return res, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
