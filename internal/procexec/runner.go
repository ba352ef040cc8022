package procexec

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrCommandFailed matches every error returned for a command that could
// not be started or exited unsuccessfully.
var ErrCommandFailed = errors.New("command failed")

// Command describes one invocation.
type Command struct {
	// Path is the program to run. A bare name is looked up in PATH.
	Path string
	Args []string
	// Dir is the working directory. Empty means the current directory.
	Dir string
	// OutputFile, when set, receives the combined stdout and stderr instead
	// of the in-memory buffers. A relative path is resolved against Dir.
	OutputFile string
}

func (c Command) String() string {
	return strings.Join(append([]string{c.Path}, c.Args...), " ")
}

// Result is what a finished command left behind.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
	Duration time.Duration
}

// Runner runs commands.
type Runner interface {
	Run(ctx context.Context, cmd Command) (*Result, error)
}

// ExitError reports a command that ran but did not exit with status 0.
type ExitError struct {
	Command  string
	ExitCode int
	Stderr   string
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("%q exited with status %d", e.Command, e.ExitCode)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

// Is lets errors.Is(err, ErrCommandFailed) match an ExitError.
func (e *ExitError) Is(target error) bool {
	return target == ErrCommandFailed
}
