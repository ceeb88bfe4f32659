package installer

import (
	"errors"

	"cw-installer/internal/logger"
	"cw-installer/internal/pathheal"
	"cw-installer/internal/state"
)

// ErrNoDirectory is returned when no directory was given and no install receipt names one.
var ErrNoDirectory = errors.New("no directory given and no install receipt found")

// pathTarget returns dir in canonical form, or the scripts directory recorded by the last
// install, together with that install's receipt (nil when absent).
func (rc *RunContext) pathTarget(dir string) (string, *state.Receipt, error) {
	r, err := state.Load(rc.Fs, rc.receiptPath())
	if err != nil {
		logger.Warn("[WARN] Ignoring unreadable install receipt: %v\n", err)
		r = nil
	}
	if dir == "" {
		if r == nil || r.ScriptsDir == "" {
			return "", r, ErrNoDirectory
		}
		dir = r.ScriptsDir
	}
	target, err := rc.healer().Canonical(dir)
	if err != nil {
		return "", r, err
	}
	return target, r, nil
}

// recordPath keeps the receipt in step with a path ensure or remove so a later uninstall
// undoes exactly what was added. Only the receipt's own directory is tracked.
func (rc *RunContext) recordPath(target string, r *state.Receipt, rep pathheal.Report, removed bool) {
	if r == nil {
		if removed || len(rep.Changed()) == 0 {
			return
		}
		r = &state.Receipt{ScriptsDir: target, InstalledAt: rc.Now().UTC()}
	} else if pathheal.Normalize(rc.Platform, r.ScriptsDir) != pathheal.Normalize(rc.Platform, target) {
		return
	}
	if removed {
		r.RCFiles = nil
		r.UserEnvPath = false
	} else {
		r.RCFiles = state.MergeRCFiles(r.RCFiles, persistedFiles(rep))
		r.UserEnvPath = r.UserEnvPath || userEnvTouched(rep)
	}
	if err := state.Save(rc.Fs, rc.receiptPath(), r); err != nil {
		logger.Warn("[WARN] Could not update install receipt: %v\n", err)
	}
}

// EnsurePath persists dir (or the installed scripts directory) on PATH for future shells.
func EnsurePath(d Deps, dir string) (pathheal.Report, error) {
	rc := newRunContext(d, defaultSettings())
	target, r, err := rc.pathTarget(dir)
	if err != nil {
		return pathheal.Report{}, err
	}
	rep := rc.healer().Persist(target)
	logReport(rep)
	rc.recordPath(target, r, rep, false)
	return rep, nil
}

// RemovePath deletes the managed PATH entries everywhere they may have been written. On
// Windows the user environment entry is removed only when the receipt says it was added.
func RemovePath(d Deps, dir string) (pathheal.Report, error) {
	rc := newRunContext(d, defaultSettings())
	target, r, err := rc.pathTarget(dir)
	if err != nil && !errors.Is(err, ErrNoDirectory) {
		return pathheal.Report{}, err
	}
	var recorded []string
	userEnv := false
	if r != nil {
		recorded, userEnv = r.RCFiles, r.UserEnvPath
	}
	rep := rc.healer().Remove(target, recorded, userEnv)
	logReport(rep)
	rc.recordPath(target, r, rep, true)
	return rep, nil
}

// PathStatus reports where dir (or the installed scripts directory) is configured.
func PathStatus(d Deps, dir string) (string, pathheal.Status, error) {
	rc := newRunContext(d, defaultSettings())
	target, _, err := rc.pathTarget(dir)
	if err != nil {
		return "", pathheal.Status{}, err
	}
	return target, rc.healer().Status(rc.SessionPath, target), nil
}

func logReport(rep pathheal.Report) {
	for _, res := range rep.Results {
		switch res.Outcome {
		case pathheal.Changed:
			logger.Info("[INFO] Updated %s\n", res.Location)
		case pathheal.Unchanged:
			logger.Debug("[DEBUG] %s unchanged\n", res.Location)
		}
	}
}
