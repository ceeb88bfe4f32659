// Package python locates a working Python runtime and runs it on the installer's behalf.
//
// Several interpreter launchers can serve ("py -3", "python3", "python"); they are modelled
// as an ordered list of capability probes and the first one that can run pip wins.
package python

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cw-installer/internal/logger"
	"cw-installer/internal/platform"
	"cw-installer/internal/proc"
)

// ErrNoRuntime is returned when no candidate interpreter can run pip.
var ErrNoRuntime = errors.New("no usable Python runtime with pip found")

// Candidate is one way of launching the interpreter.
type Candidate struct {
	Name string   // program name
	Args []string // arguments placed before the helper arguments ("-3" for the py launcher)
}

func (c Candidate) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Candidates returns the probe order for the platform.
func Candidates(p platform.Platform) []Candidate {
	if p.IsWindows() {
		return []Candidate{
			{Name: "py", Args: []string{"-3"}},
			{Name: "python"},
			{Name: "python3"},
		}
	}
	return []Candidate{
		{Name: "python3"},
		{Name: "python"},
	}
}

// Helper runs the interpreter selected by Probe.
type Helper struct {
	runner    proc.Runner
	candidate Candidate
}

// Probe tries each candidate with "-m pip --version" and returns a Helper for the first
// that exits 0.
func Probe(ctx context.Context, runner proc.Runner, candidates []Candidate) (*Helper, error) {
	var tried []string
	for _, c := range candidates {
		args := append(append([]string{}, c.Args...), "-m", "pip", "--version")
		res, err := runner.Run(ctx, proc.Command{Name: c.Name, Args: args})
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if err != nil {
			logger.Debug("[DEBUG] Probe %s failed: %v\n", c, err)
			tried = append(tried, c.String())
			continue
		}
		if !res.OK() {
			logger.Debug("[DEBUG] Probe %s exited with %d\n", c, res.ExitCode)
			tried = append(tried, fmt.Sprintf("%s (exit %d)", c, res.ExitCode))
			continue
		}
		logger.Debug("[DEBUG] Using Python runtime %s\n", c)
		return &Helper{runner: runner, candidate: c}, nil
	}
	return nil, fmt.Errorf("%w (tried: %s)", ErrNoRuntime, strings.Join(tried, ", "))
}

// Candidate reports which launcher the helper uses.
func (h *Helper) Candidate() Candidate { return h.candidate }

// Run invokes the interpreter with args and returns its combined output and exit code.
func (h *Helper) Run(ctx context.Context, args ...string) (string, int, error) {
	full := append(append([]string{}, h.candidate.Args...), args...)
	res, err := h.runner.Run(ctx, proc.Command{Name: h.candidate.Name, Args: full})
	if err != nil {
		return res.Output, -1, err
	}
	return res.Output, res.ExitCode, nil
}

// InVirtualEnv reports whether the interpreter runs inside a virtual environment.
func (h *Helper) InVirtualEnv(ctx context.Context) bool {
	out, code, err := h.Run(ctx, "-c", "import sys; print(sys.prefix != getattr(sys, 'base_prefix', sys.prefix))")
	if err != nil || code != 0 {
		return false
	}
	return LastLine(out) == "True"
}

// LastLine returns the last non-empty line of out, trimmed.
func LastLine(out string) string {
	lines := strings.Split(strings.ReplaceAll(out, "\r\n", "\n"), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if l := strings.TrimSpace(lines[i]); l != "" {
			return l
		}
	}
	return ""
}
