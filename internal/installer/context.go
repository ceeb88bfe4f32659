// Package installer wires the install and uninstall step lists over a RunContext.
package installer

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"cw-installer/internal/config"
	"cw-installer/internal/logger"
	"cw-installer/internal/pathheal"
	"cw-installer/internal/platform"
	"cw-installer/internal/proc"
	"cw-installer/internal/prompt"
	"cw-installer/internal/python"
	"cw-installer/internal/source"
	"cw-installer/internal/state"
	"cw-installer/internal/version"
)

// Deps are the host facilities a run works against. Tests substitute fakes.
type Deps struct {
	Fs       afero.Fs
	Platform platform.Platform
	Runner   proc.Runner
	Fetcher  source.Fetcher
	EnvStore pathheal.EnvStore // nil uses the native store
	Prompter *prompt.Prompter
	SelfDir  string // directory of the installer executable
	WorkDir  string
	Now      func() time.Time
}

// HostDeps returns Deps for the running process.
func HostDeps() Deps {
	p := platform.Current()
	self := ""
	if exe, err := os.Executable(); err == nil {
		self = filepath.Dir(exe)
	}
	wd, _ := os.Getwd()
	return Deps{
		Fs:       afero.NewOsFs(),
		Platform: p,
		Runner:   proc.ExecRunner{},
		Fetcher:  &source.HTTPFetcher{},
		Prompter: &prompt.Prompter{In: os.Stdin, Out: os.Stdout, Interactive: p.Interactive()},
		SelfDir:  self,
		WorkDir:  wd,
		Now:      time.Now,
	}
}

// RunContext carries everything one run derives, step by step.
type RunContext struct {
	Deps
	Settings config.Settings

	Helper           *python.Helper
	Source           source.Source
	TargetVersion    string
	InstalledVersion string
	Decision         version.Decision
	ScriptsDir       string
	Entrypoint       string
	SessionPath      string
	PathReport       pathheal.Report
	ConfigFile       string
	Receipt          *state.Receipt // receipt of a previous install, when present

	Warnings []string
	cleanups []func()
}

func newRunContext(d Deps, s config.Settings) *RunContext {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Prompter == nil {
		d.Prompter = &prompt.Prompter{}
	}
	return &RunContext{Deps: d, Settings: s, SessionPath: d.Platform.Env("PATH")}
}

// warn logs a warning and keeps it for the final summary.
func (rc *RunContext) warn(format string, a ...any) {
	msg := fmt.Sprintf(format, a...)
	logger.Warn("[WARN] %s\n", msg)
	rc.Warnings = append(rc.Warnings, msg)
}

// onCleanup registers fn to run when the run ends, in reverse order.
func (rc *RunContext) onCleanup(fn func()) {
	rc.cleanups = append(rc.cleanups, fn)
}

func (rc *RunContext) cleanup() {
	for i := len(rc.cleanups) - 1; i >= 0; i-- {
		rc.cleanups[i]()
	}
	rc.cleanups = nil
}

func (rc *RunContext) receiptPath() string {
	return rc.Platform.Join(rc.Platform.ConfigDir(), state.FileName)
}

func (rc *RunContext) healer() *pathheal.Healer {
	h := pathheal.New(rc.Fs, rc.Platform, rc.EnvStore)
	h.WorkDir = rc.WorkDir
	return h
}

func defaultSettings() config.Settings {
	return config.Default()
}

func (rc *RunContext) commandNames() []string {
	return []string{config.PrimaryCommand, config.ShortCommand}
}
