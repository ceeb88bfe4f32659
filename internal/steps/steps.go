// Package steps runs a fixed, ordered list of install or uninstall steps.
package steps

import (
	"context"
	"fmt"

	"cw-installer/internal/logger"
)

// Status is the state of one step.
type Status int

const (
	Pending Status = iota
	OK
	Warn
	Fail
)

func (s Status) String() string {
	switch s {
	case OK:
		return "ok"
	case Warn:
		return "warn"
	case Fail:
		return "fail"
	}
	return "pending"
}

// Record tracks a step's progress for reporting.
type Record struct {
	Index  int // 1-based
	Total  int
	Label  string
	Status Status
}

// Step is one unit of work. Run returns OK or Warn to continue; a non-nil error aborts
// the sequence.
type Step struct {
	Label string
	Run   func(ctx context.Context) (Status, error)
}

// Reporter observes step transitions. It never influences control flow.
type Reporter interface {
	Start(r Record)
	Finish(r Record, err error)
}

// StepError is returned when a step aborts the sequence.
type StepError struct {
	Record Record
	Err    error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d/%d (%s) failed: %v", e.Record.Index, e.Record.Total, e.Record.Label, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// Sequence runs Steps in order.
type Sequence struct {
	Steps    []Step
	Reporter Reporter
}

// Run executes every step until one fails or ctx is cancelled. The returned records
// cover all steps; steps that never ran stay Pending.
func (s Sequence) Run(ctx context.Context) ([]Record, error) {
	total := len(s.Steps)
	records := make([]Record, total)
	for i, st := range s.Steps {
		records[i] = Record{Index: i + 1, Total: total, Label: st.Label}
	}

	for i, st := range s.Steps {
		rec := &records[i]
		if err := ctx.Err(); err != nil {
			return records, &StepError{Record: *rec, Err: err}
		}
		if s.Reporter != nil {
			s.Reporter.Start(*rec)
		}
		status, err := st.Run(ctx)
		if err != nil {
			rec.Status = Fail
		} else if status == Warn {
			rec.Status = Warn
		} else {
			rec.Status = OK
		}
		if s.Reporter != nil {
			s.Reporter.Finish(*rec, err)
		}
		if err != nil {
			return records, &StepError{Record: *rec, Err: err}
		}
	}
	return records, nil
}

// LogReporter prints step headers and warnings through the logger.
type LogReporter struct{}

func (LogReporter) Start(r Record) {
	logger.Step(r.Index, r.Total, r.Label)
}

func (LogReporter) Finish(r Record, err error) {
	switch r.Status {
	case Warn:
		logger.Warn("[WARN] %s completed with warnings\n", r.Label)
	case OK:
		logger.Debug("[DEBUG] %s done\n", r.Label)
	}
}
