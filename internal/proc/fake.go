package proc

import (
	"context"
	"fmt"
	"strings"
)

// Call is one invocation recorded by a Script runner.
type Call struct {
	Command Command
}

// Line returns the command line of the call with the program's base name,
// so expectations do not depend on absolute paths.
func (c Call) Line() string {
	name := c.Command.Name
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	return strings.TrimSpace(name + " " + strings.Join(c.Command.Args, " "))
}

// Script is a scripted Runner used by tests across the installer packages.
// Handler decides each result; every invocation is recorded in Calls.
type Script struct {
	Handler func(cmd Command) (Result, error)
	Calls   []Call
}

// Run records cmd and delegates to Handler. A nil Handler reports "not found".
func (s *Script) Run(_ context.Context, cmd Command) (Result, error) {
	s.Calls = append(s.Calls, Call{Command: cmd})
	if s.Handler == nil {
		return Result{}, fmt.Errorf("run %s: executable file not found", cmd.Name)
	}
	return s.Handler(cmd)
}

// Lines returns the recorded command lines.
func (s *Script) Lines() []string {
	out := make([]string, 0, len(s.Calls))
	for _, c := range s.Calls {
		out = append(out, c.Line())
	}
	return out
}

// Count returns how many recorded command lines contain substr.
func (s *Script) Count(substr string) int {
	n := 0
	for _, l := range s.Lines() {
		if strings.Contains(l, substr) {
			n++
		}
	}
	return n
}
