// Package wrapsync runs the installed package's "sync" entrypoint, which regenerates
// the command shims, with one bounded retry.
package wrapsync

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/afero"

	"cw-installer/internal/logger"
	"cw-installer/internal/platform"
	"cw-installer/internal/proc"
)

// ErrNoEntrypoint is returned when none of the entrypoint names exists in the scripts directory.
var ErrNoEntrypoint = errors.New("sync entrypoint not found")

// State is a position in the retry machine.
type State int

const (
	Idle State = iota
	FirstAttempt
	RetryAttempt
	Success
	Failed
)

func (s State) String() string {
	return [...]string{"idle", "first-attempt", "retry-attempt", "success", "failed"}[s]
}

// Attempt is the captured result of one sync run.
type Attempt struct {
	ExitCode int
	Output   string
	Err      error // set when the entrypoint could not be started
}

// SyncError reports a sync that failed twice; both attempts' diagnostics are kept.
type SyncError struct {
	Attempts []Attempt
}

func (e *SyncError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "wrapper sync failed after %d attempts", len(e.Attempts))
	for i, a := range e.Attempts {
		fmt.Fprintf(&b, "\n--- attempt %d ", i+1)
		if a.Err != nil {
			fmt.Fprintf(&b, "(error: %v) ---\n", a.Err)
		} else {
			fmt.Fprintf(&b, "(exit %d) ---\n", a.ExitCode)
		}
		b.WriteString(strings.TrimRight(a.Output, "\n"))
	}
	return b.String()
}

// Orchestrator drives the sync subprocess.
type Orchestrator struct {
	Runner     proc.Runner
	Fs         afero.Fs
	Platform   platform.Platform
	ScriptsDir string
	Names      []string // entrypoint names in preference order

	state State
	runs  int
}

// State returns where the machine stopped.
func (o *Orchestrator) State() State { return o.state }

// Runs returns how many times the entrypoint was invoked.
func (o *Orchestrator) Runs() int { return o.runs }

// Entrypoint returns the first existing entrypoint in the scripts directory.
func (o *Orchestrator) Entrypoint() (string, error) {
	for _, name := range o.Names {
		for _, file := range o.Platform.ExecutableNames(name) {
			candidate := o.Platform.Join(o.ScriptsDir, file)
			if info, err := o.Fs.Stat(candidate); err == nil && !info.IsDir() {
				return candidate, nil
			}
		}
	}
	return "", fmt.Errorf("%w in %s (looked for %s)", ErrNoEntrypoint, o.ScriptsDir, strings.Join(o.Names, ", "))
}

// Sync runs "<entrypoint> sync". One failure is retried identically; a second failure
// returns a *SyncError holding both attempts.
func (o *Orchestrator) Sync(ctx context.Context) error {
	o.state, o.runs = Idle, 0
	entry, err := o.Entrypoint()
	if err != nil {
		o.state = Failed
		return err
	}

	o.state = FirstAttempt
	first := o.attempt(ctx, entry, "sync")
	if first.ok() {
		o.state = Success
		return nil
	}
	if ctx.Err() != nil {
		o.state = Failed
		return ctx.Err()
	}

	logger.Warn("[WARN] Initial sync attempt failed; retrying with diagnostics.\n")
	o.state = RetryAttempt
	second := o.attempt(ctx, entry, "sync")
	if second.ok() {
		o.state = Success
		return nil
	}

	o.state = Failed
	return &SyncError{Attempts: []Attempt{first, second}}
}

// Uninstall runs "<entrypoint> sync --uninstall" once. Callers treat an error as a warning.
func (o *Orchestrator) Uninstall(ctx context.Context) error {
	entry, err := o.Entrypoint()
	if err != nil {
		return err
	}
	a := o.attempt(ctx, entry, "sync", "--uninstall")
	if a.Err != nil {
		return a.Err
	}
	if a.ExitCode != 0 {
		return fmt.Errorf("sync --uninstall exited with %d: %s", a.ExitCode, proc.TrimOutput(a.Output))
	}
	return nil
}

func (o *Orchestrator) attempt(ctx context.Context, entry string, args ...string) Attempt {
	o.runs++
	res, err := o.Runner.Run(ctx, proc.Command{Name: entry, Args: args})
	a := Attempt{ExitCode: res.ExitCode, Output: res.Output, Err: err}
	logger.Debug("[DEBUG] %s %s attempt %d: exit %d\n", entry, strings.Join(args, " "), o.runs, a.ExitCode)
	return a
}

func (a Attempt) ok() bool { return a.Err == nil && a.ExitCode == 0 }
