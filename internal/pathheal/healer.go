package pathheal

import (
	"errors"

	"github.com/spf13/afero"

	"cw-installer/internal/logger"
	"cw-installer/internal/platform"
)

// Result records what one writer did.
type Result struct {
	Kind     Kind
	Location string
	Outcome  Outcome
	Err      error
}

// Report is the outcome of a persistent ensure or removal across all writers.
type Report struct {
	Results []Result
}

// Changed lists the locations that were modified.
func (r Report) Changed() []string {
	var out []string
	for _, res := range r.Results {
		if res.Outcome == Changed {
			out = append(out, res.Location)
		}
	}
	return out
}

// Failed reports whether any writer failed.
func (r Report) Failed() bool {
	for _, res := range r.Results {
		if res.Outcome == Failed {
			return true
		}
	}
	return false
}

// Healer updates the session PATH and the persistent PATH locations.
type Healer struct {
	Platform platform.Platform
	Detector Detector
	WorkDir  string // base for relative directories
}

// New returns a Healer over fsys. store may be nil to use the native store.
func New(fsys afero.Fs, p platform.Platform, store EnvStore) *Healer {
	return &Healer{
		Platform: p,
		Detector: Detector{Fs: fsys, Platform: p, Store: store},
	}
}

// Session returns current with dir prepended when missing and exports the result into the
// process environment so child processes see it. The boolean reports whether PATH changed.
func (h *Healer) Session(current, dir string) (string, bool, error) {
	updated, changed := Prepend(h.Platform, current, dir)
	if !changed {
		return current, false, nil
	}
	if h.Platform.Setenv != nil {
		if err := h.Platform.Setenv("PATH", updated); err != nil {
			return current, false, err
		}
	}
	return updated, true, nil
}

// Canonical returns dir in the form written to persistent locations.
func (h *Healer) Canonical(dir string) (string, error) {
	return Canonical(h.Platform, dir, h.WorkDir)
}

// Persist makes dir discoverable in future shells. dir is canonicalized first. Failures are
// reported per writer and logged as warnings; they never abort the remaining writers.
func (h *Healer) Persist(dir string) Report {
	target, err := h.Canonical(dir)
	if err != nil {
		logger.Warn("[WARN] Cannot persist %q on PATH: %v\n", dir, err)
		return Report{Results: []Result{{Location: dir, Outcome: Failed, Err: err}}}
	}
	return run(h.Detector.EnsureWriters(target), func(w Writer) (Outcome, error) { return w.Ensure(target) })
}

// Remove deletes the managed blocks written by earlier installs. recorded lists extra files
// taken from the install receipt. The user environment entry for dir is removed only when
// userEnv says an earlier ensure added it.
func (h *Healer) Remove(dir string, recorded []string, userEnv bool) Report {
	if target, err := h.Canonical(dir); err == nil {
		dir = target
	}
	return run(h.Detector.RemovalWriters(dir, recorded, userEnv), Writer.Remove)
}

func run(writers []Writer, action func(Writer) (Outcome, error)) Report {
	var rep Report
	for _, w := range writers {
		outcome, err := action(w)
		if err != nil {
			outcome = Failed
			if errors.Is(err, ErrMalformedBlock) {
				logger.Warn("[WARN] %s has a start marker without an end marker; left untouched\n", w.Location())
			} else {
				logger.Warn("[WARN] Could not update %s: %v\n", w.Location(), err)
			}
		}
		logger.Debug("[DEBUG] %s %s: %s\n", w.Kind(), w.Location(), outcome)
		rep.Results = append(rep.Results, Result{Kind: w.Kind(), Location: w.Location(), Outcome: outcome, Err: err})
	}
	return rep
}

// Status describes where dir is currently configured.
type Status struct {
	InSession bool
	Locations []string // files holding a managed block, or the user environment store
}

// Status inspects the session PATH and every persistent location without modifying them.
func (h *Healer) Status(current, dir string) Status {
	st := Status{InSession: Contains(h.Platform, current, dir)}
	if h.Platform.IsWindows() {
		store, err := h.Detector.store()
		if err != nil {
			return st
		}
		if v, err := store.GetPath(); err == nil && Contains(h.Platform, v, dir) {
			st.Locations = append(st.Locations, NewUserEnvWriter(store, h.Platform, dir).Location())
		}
		return st
	}
	for _, w := range h.Detector.RemovalWriters(dir, nil, false) {
		var rc rcFile
		switch v := w.(type) {
		case *PosixWriter:
			rc = v.file
		case *FishWriter:
			rc = v.file
		default:
			continue
		}
		text, _, err := rc.read()
		if err == nil && HasBlock(text, rc.block("")) {
			st.Locations = append(st.Locations, rc.path)
		}
	}
	return st
}
