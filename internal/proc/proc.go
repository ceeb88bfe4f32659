// Package proc runs external programs and captures their combined output.
package proc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"cw-installer/internal/logger"
)

// maxErrorOutput bounds the amount of captured output echoed inside an error message.
const maxErrorOutput = 4096

// Command describes one subprocess invocation.
type Command struct {
	Name     string   // program name or absolute path
	Args     []string // arguments, not including Name
	Env      []string // full environment; nil inherits the installer's
	Dir      string   // working directory; empty inherits
	Attached bool     // connect stdio to the terminal instead of capturing
}

// String renders the command line for logs.
func (c Command) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Result is the outcome of a command that could be started.
type Result struct {
	Output   string // stdout and stderr interleaved; empty for attached commands
	ExitCode int
}

// OK reports a zero exit code.
func (r Result) OK() bool { return r.ExitCode == 0 }

// Runner starts commands. A non-nil error means the program could not be run at all
// (not found, not executable, cancelled); a non-zero exit is reported through Result.
type Runner interface {
	Run(ctx context.Context, cmd Command) (Result, error)
}

// ExecRunner is the Runner backed by os/exec.
type ExecRunner struct{}

// Run executes cmd and waits for it to finish.
func (ExecRunner) Run(ctx context.Context, c Command) (Result, error) {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Env = c.Env
	cmd.Dir = c.Dir
	logger.Debug("[DEBUG] Running command: %s\n", c.String())

	var combined bytes.Buffer
	if c.Attached {
		cmd.Stdin = os.Stdin
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
	} else {
		cmd.Stdout = &combined
		cmd.Stderr = &combined
	}

	err := cmd.Run()
	res := Result{Output: combined.String()}
	if err == nil {
		return res, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && ctx.Err() == nil {
		res.ExitCode = exitErr.ExitCode()
		logger.Debug("[DEBUG] %s exited with %d\n", c.Name, res.ExitCode)
		return res, nil
	}
	if ctx.Err() != nil {
		return res, fmt.Errorf("%s: %w", c.Name, ctx.Err())
	}
	return res, fmt.Errorf("run %s: %w", c.Name, err)
}

// TrimOutput shortens captured output for inclusion in an error message.
func TrimOutput(out string) string {
	clean := strings.TrimSpace(out)
	if clean == "" {
		return "(no output)"
	}
	if len(clean) > maxErrorOutput {
		return "..." + clean[len(clean)-maxErrorOutput:]
	}
	return clean
}
