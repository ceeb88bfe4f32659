package installer

import (
	"context"

	"cw-installer/internal/logger"
	"cw-installer/internal/pathheal"
	"cw-installer/internal/steps"
	"cw-installer/internal/wrapsync"
)

func (rc *RunContext) wrappers() *wrapsync.Orchestrator {
	return &wrapsync.Orchestrator{
		Runner:     rc.Runner,
		Fs:         rc.Fs,
		Platform:   rc.Platform,
		ScriptsDir: rc.ScriptsDir,
		Names:      rc.commandNames(),
	}
}

// syncWrappers runs "<primary> sync" with one retry. Its failure aborts the install.
func (rc *RunContext) syncWrappers(ctx context.Context) (steps.Status, error) {
	o := rc.wrappers()
	entry, err := o.Entrypoint()
	if err != nil {
		return steps.Fail, err
	}
	rc.Entrypoint = entry
	if err := o.Sync(ctx); err != nil {
		return steps.Fail, err
	}
	if o.Runs() > 1 {
		return steps.Warn, nil
	}
	return steps.OK, nil
}

// updatePath puts the scripts directory on the session PATH and on every persistent
// location for future shells. Persistent failures are warnings.
func (rc *RunContext) updatePath(context.Context) (steps.Status, error) {
	h := rc.healer()
	dir, err := h.Canonical(rc.ScriptsDir)
	if err != nil {
		return steps.Fail, err
	}
	rc.ScriptsDir = dir
	updated, changed, err := h.Session(rc.SessionPath, rc.ScriptsDir)
	if err != nil {
		return steps.Fail, err
	}
	rc.SessionPath = updated
	if changed {
		logger.Info("[INFO] Added %s to PATH for this session\n", rc.ScriptsDir)
	}

	rc.PathReport = h.Persist(rc.ScriptsDir)
	for _, res := range rc.PathReport.Results {
		switch res.Outcome {
		case pathheal.Changed:
			logger.Info("[INFO] Updated %s\n", res.Location)
		case pathheal.Unchanged:
			logger.Debug("[DEBUG] %s already up to date\n", res.Location)
		}
	}
	if rc.PathReport.Failed() {
		rc.warn("PATH could not be persisted everywhere; add %s to PATH manually if commands are missing in new shells", rc.ScriptsDir)
		return steps.Warn, nil
	}
	if len(rc.PathReport.Results) == 0 {
		rc.warn("No persistent PATH location available; add %s to PATH manually", rc.ScriptsDir)
		return steps.Warn, nil
	}
	return steps.OK, nil
}
