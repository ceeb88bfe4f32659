package installer

import (
	"context"
	"errors"
	"fmt"

	"cw-installer/internal/config"
	"cw-installer/internal/configtpl"
	"cw-installer/internal/logger"
	"cw-installer/internal/pkgmgr"
	"cw-installer/internal/proc"
	"cw-installer/internal/python"
	"cw-installer/internal/scripts"
	"cw-installer/internal/source"
	"cw-installer/internal/state"
	"cw-installer/internal/steps"
	"cw-installer/internal/verify"
	"cw-installer/internal/version"
)

// Install runs the install step list. Temporary downloads are removed before it returns,
// including when ctx is cancelled by a signal.
func Install(ctx context.Context, d Deps, s config.Settings) (*RunContext, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	rc := newRunContext(d, s)
	defer rc.cleanup()

	seq := steps.Sequence{Reporter: steps.LogReporter{}, Steps: rc.installSteps()}
	if _, err := seq.Run(ctx); err != nil {
		return rc, err
	}

	rc.writeReceipt()
	rc.preview(ctx)
	rc.summarize()
	return rc, nil
}

func (rc *RunContext) installSteps() []steps.Step {
	return []steps.Step{
		{Label: "Checking prerequisites", Run: rc.checkPrerequisites},
		{Label: "Resolving source", Run: rc.resolveSource},
		{Label: "Checking installed version", Run: rc.checkVersion},
		{Label: "Installing package", Run: rc.installPackage},
		{Label: "Locating scripts directory", Run: rc.locateScripts},
		{Label: "Syncing command wrappers", Run: rc.syncWrappers},
		{Label: "Updating PATH", Run: rc.updatePath},
		{Label: "Creating default configuration", Run: rc.ensureConfig},
		{Label: "Verifying installation", Run: rc.verifyInstall},
	}
}

func (rc *RunContext) checkPrerequisites(ctx context.Context) (steps.Status, error) {
	h, err := python.Probe(ctx, rc.Runner, python.Candidates(rc.Platform))
	if err != nil {
		return steps.Fail, err
	}
	rc.Helper = h
	logger.Info("[INFO] Using %s\n", h.Candidate())
	return steps.OK, nil
}

func (rc *RunContext) resolveSource(ctx context.Context) (steps.Status, error) {
	r := &source.Resolver{
		Fs:       rc.Fs,
		Fetcher:  rc.Fetcher,
		Explicit: rc.Settings.SourceDir,
		SelfDir:  rc.SelfDir,
		WorkDir:  rc.WorkDir,
		URL:      rc.Settings.SourceURL,
		Digest:   rc.Settings.SourceSHA256,
	}
	src, cleanup, err := r.Resolve(ctx)
	rc.onCleanup(cleanup)
	if err != nil {
		return steps.Fail, err
	}
	rc.Source = src
	logger.Info("[INFO] Source: %s (%s)\n", src.Location, src.Kind)
	return steps.OK, nil
}

func (rc *RunContext) pip() *pkgmgr.Pip {
	return &pkgmgr.Pip{Helper: rc.Helper, Package: config.PackageName}
}

func (rc *RunContext) checkVersion(ctx context.Context) (steps.Status, error) {
	target, err := source.TargetVersion(rc.Fs, rc.Source.Root)
	if err != nil {
		rc.warn("Cannot read the version from %s: %v", source.ManifestFile, err)
	}
	installed, err := rc.pip().InstalledVersion(ctx)
	if err != nil {
		return steps.Fail, err
	}
	rc.TargetVersion, rc.InstalledVersion = target, installed

	rc.Decision = version.Decide(installed, target)
	if rc.Settings.ForceReinstall {
		rc.Decision = version.Reinstall
	}
	logger.Debug("[DEBUG] installed=%q target=%q ordering=%s decision=%s\n",
		installed, target, version.Compare(installed, target), rc.Decision)

	switch rc.Decision {
	case version.SkipEqual:
		logger.Info("[INFO] %s %s is already installed\n", config.PackageName, installed)
	case version.SkipNewerInstalled:
		rc.warn("Installed %s %s is newer than the source (%s); keeping it", config.PackageName, installed, target)
		return steps.Warn, nil
	}
	return steps.OK, nil
}

func (rc *RunContext) installPackage(ctx context.Context) (steps.Status, error) {
	if rc.Decision != version.Reinstall {
		logger.Info("[INFO] Skipping package install\n")
		return steps.OK, nil
	}
	opts := pkgmgr.InstallOptions{
		User:           !rc.Helper.InVirtualEnv(ctx),
		ForceReinstall: rc.InstalledVersion != "",
	}
	logger.Info("[INFO] Installing %s from %s\n", config.PackageName, rc.Source.Root)
	if err := rc.pip().Install(ctx, rc.Source.Root, opts); err != nil {
		return steps.Fail, err
	}
	return steps.OK, nil
}

func (rc *RunContext) locateScripts(ctx context.Context) (steps.Status, error) {
	dir, err := scripts.Locate(ctx, rc.Helper, rc.Platform)
	if err != nil {
		return steps.Fail, err
	}
	rc.ScriptsDir = dir
	logger.Info("[INFO] Scripts directory: %s\n", dir)
	return steps.OK, nil
}

func (rc *RunContext) ensureConfig(context.Context) (steps.Status, error) {
	file, created, err := configtpl.Ensure(rc.Fs, rc.Platform.ConfigDir(), rc.Platform.Join)
	if err != nil {
		return steps.Fail, err
	}
	rc.ConfigFile = file
	if created {
		logger.Info("[INFO] Created %s\n", file)
	} else {
		logger.Info("[INFO] Keeping existing %s\n", file)
	}
	return steps.OK, nil
}

func (rc *RunContext) verifyInstall(ctx context.Context) (steps.Status, error) {
	r := verify.Resolver{Fs: rc.Fs, Platform: rc.Platform}
	if err := r.Check(rc.SessionPath, rc.ScriptsDir, rc.Settings.Commands); err != nil {
		return steps.Fail, err
	}
	if err := verify.Smoke(ctx, rc.Runner, rc.Entrypoint, nil); err != nil {
		return steps.Fail, err
	}
	return steps.OK, nil
}

// writeReceipt records what this install touched for the uninstaller. Failure is a warning.
func (rc *RunContext) writeReceipt() {
	r := &state.Receipt{
		Version:     rc.TargetVersion,
		Source:      rc.Source.Location,
		ScriptsDir:  rc.ScriptsDir,
		RCFiles:     persistedFiles(rc.PathReport),
		UserEnvPath: userEnvTouched(rc.PathReport),
		InstalledAt: rc.Now().UTC(),
	}
	if rc.Decision != version.Reinstall && rc.InstalledVersion != "" {
		r.Version = rc.InstalledVersion
	}
	if prev, err := state.Load(rc.Fs, rc.receiptPath()); err == nil && prev != nil {
		r.RCFiles = state.MergeRCFiles(prev.RCFiles, r.RCFiles)
		r.UserEnvPath = r.UserEnvPath || prev.UserEnvPath
	}
	if err := state.Save(rc.Fs, rc.receiptPath(), r); err != nil {
		rc.warn("Could not write install receipt: %v", err)
	}
}

// preview launches the product attached to the terminal when a person is watching.
func (rc *RunContext) preview(ctx context.Context) {
	if !rc.Settings.Preview || !rc.Platform.Interactive() {
		logger.Debug("[DEBUG] Skipping interactive preview\n")
		return
	}
	logger.Info("[INFO] Launching %s (exit to finish)\n", config.PrimaryCommand)
	res, err := rc.Runner.Run(ctx, proc.Command{Name: rc.Entrypoint, Attached: true})
	switch {
	case err != nil && !errors.Is(err, context.Canceled):
		rc.warn("Preview could not start: %v", err)
	case err == nil && !res.OK():
		rc.warn("Preview exited with %d", res.ExitCode)
	}
}

func (rc *RunContext) summarize() {
	v := rc.TargetVersion
	if rc.Decision != version.Reinstall && rc.InstalledVersion != "" {
		v = rc.InstalledVersion
	}
	logger.Info("[INFO] %s %s is ready. Run `%s` or `%s`.\n", config.PackageName, v, config.PrimaryCommand, config.ShortCommand)
	if changed := rc.PathReport.Changed(); len(changed) > 0 {
		logger.Info("[INFO] PATH updated in %s; open a new shell to pick it up.\n", joinList(changed))
	}
	if len(rc.Warnings) > 0 {
		logger.Warn("[WARN] Finished with %d warning(s):\n%s", len(rc.Warnings), logger.Indent(joinLines(rc.Warnings)))
	}
}

// Describe renders a fatal error for the single [FATAL] line.
func Describe(err error) string {
	var se *steps.StepError
	if errors.As(err, &se) {
		return fmt.Sprintf("%s: %v", se.Record.Label, se.Err)
	}
	return err.Error()
}
