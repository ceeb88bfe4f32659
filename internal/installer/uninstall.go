package installer

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/afero"

	"cw-installer/internal/config"
	"cw-installer/internal/logger"
	"cw-installer/internal/pkgmgr"
	"cw-installer/internal/scripts"
	"cw-installer/internal/state"
	"cw-installer/internal/steps"
)

// ErrCancelled is returned by Uninstall when the user declined. It is not a failure.
var ErrCancelled = errors.New("uninstall cancelled")

// Uninstall removes the package, its wrappers and every PATH change made by earlier installs.
// The configuration directory is removed only when requested or confirmed.
func Uninstall(ctx context.Context, d Deps, s config.Settings) (*RunContext, error) {
	rc := newRunContext(d, s)
	defer rc.cleanup()

	ok, err := rc.Prompter.Confirm(fmt.Sprintf("Uninstall %s?", config.PackageName), s.UninstallForce)
	if err != nil {
		return rc, err
	}
	if !ok {
		logger.Info("[INFO] Uninstall cancelled.\n")
		return rc, ErrCancelled
	}

	if r, err := state.Load(rc.Fs, rc.receiptPath()); err != nil {
		logger.Warn("[WARN] Ignoring unreadable install receipt: %v\n", err)
	} else {
		rc.Receipt = r
	}

	seq := steps.Sequence{Reporter: steps.LogReporter{}, Steps: rc.uninstallSteps()}
	if _, err := seq.Run(ctx); err != nil {
		return rc, err
	}
	logger.Info("[INFO] %s has been uninstalled.\n", config.PackageName)
	if len(rc.Warnings) > 0 {
		logger.Warn("[WARN] Finished with %d warning(s):\n%s", len(rc.Warnings), logger.Indent(joinLines(rc.Warnings)))
	}
	return rc, nil
}

func (rc *RunContext) uninstallSteps() []steps.Step {
	return []steps.Step{
		{Label: "Checking prerequisites", Run: rc.checkPrerequisites},
		{Label: "Removing command wrappers", Run: rc.removeWrappers},
		{Label: "Uninstalling package", Run: rc.uninstallPackage},
		{Label: "Removing PATH entries", Run: rc.removePath},
		{Label: "Removing configuration", Run: rc.removeConfig},
		{Label: "Removing install receipt", Run: rc.removeReceipt},
	}
}

// removeWrappers asks the product to delete its generated wrappers. Everything that can go
// wrong here is a warning: the package removal still cleans up the entrypoints.
func (rc *RunContext) removeWrappers(ctx context.Context) (steps.Status, error) {
	dir, err := scripts.Locate(ctx, rc.Helper, rc.Platform)
	if err != nil {
		if rc.Receipt == nil || rc.Receipt.ScriptsDir == "" {
			rc.warn("Cannot determine the scripts directory: %v", err)
			return steps.Warn, nil
		}
		dir = rc.Receipt.ScriptsDir
	}
	rc.ScriptsDir = dir

	if err := rc.wrappers().Uninstall(ctx); err != nil {
		rc.warn("%s sync --uninstall failed: %v", config.PrimaryCommand, err)
		return steps.Warn, nil
	}
	return steps.OK, nil
}

func (rc *RunContext) uninstallPackage(ctx context.Context) (steps.Status, error) {
	err := rc.pip().Uninstall(ctx)
	if errors.Is(err, pkgmgr.ErrNotInstalled) {
		logger.Info("[INFO] %s is not installed\n", config.PackageName)
		return steps.OK, nil
	}
	if err != nil {
		return steps.Fail, err
	}
	logger.Info("[INFO] Removed %s\n", config.PackageName)
	return steps.OK, nil
}

func (rc *RunContext) removePath(context.Context) (steps.Status, error) {
	dir := rc.ScriptsDir
	var recorded []string
	userEnv := false
	if rc.Receipt != nil {
		recorded, userEnv = rc.Receipt.RCFiles, rc.Receipt.UserEnvPath
		if dir == "" {
			dir = rc.Receipt.ScriptsDir
		}
	}

	rep := rc.healer().Remove(dir, recorded, userEnv)
	rc.PathReport = rep
	for _, loc := range rep.Changed() {
		logger.Info("[INFO] Cleaned %s\n", loc)
	}
	if rep.Failed() {
		rc.warn("Some PATH entries could not be removed; check the files listed above")
		return steps.Warn, nil
	}
	return steps.OK, nil
}

func (rc *RunContext) removeConfig(context.Context) (steps.Status, error) {
	dir := rc.Platform.ConfigDir()
	exists, err := afero.DirExists(rc.Fs, dir)
	if err != nil || !exists {
		logger.Debug("[DEBUG] No configuration directory at %s\n", dir)
		return steps.OK, nil
	}

	remove := rc.Settings.RemoveConfig
	if !remove {
		remove, err = rc.Prompter.Confirm(fmt.Sprintf("Also remove your configuration in %s?", dir), false)
		if err != nil {
			rc.warn("Could not read the answer: %v", err)
			return steps.Warn, nil
		}
	}
	if !remove {
		logger.Info("[INFO] Keeping configuration in %s\n", dir)
		return steps.OK, nil
	}
	if err := rc.Fs.RemoveAll(dir); err != nil {
		rc.warn("Could not remove %s: %v", dir, err)
		return steps.Warn, nil
	}
	logger.Info("[INFO] Removed %s\n", dir)
	return steps.OK, nil
}

func (rc *RunContext) removeReceipt(context.Context) (steps.Status, error) {
	if err := state.Delete(rc.Fs, rc.receiptPath()); err != nil {
		rc.warn("Could not remove install receipt: %v", err)
		return steps.Warn, nil
	}
	return steps.OK, nil
}
