package installer

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cw-installer/internal/config"
	"cw-installer/internal/pathheal"
	"cw-installer/internal/platform"
	"cw-installer/internal/proc"
	"cw-installer/internal/prompt"
	"cw-installer/internal/source"
	"cw-installer/internal/state"
	"cw-installer/internal/wrapsync"
)

const (
	scriptsDir  = "/home/u/.local/bin"
	bashrc      = "/home/u/.bashrc"
	configDir   = "/home/u/.config/commands-wrapper"
	receiptFile = configDir + "/" + state.FileName
)

// fakeHost simulates python, pip and the installed product on an in-memory file system.
type fakeHost struct {
	fs        afero.Fs
	env       map[string]string
	installed string // version pip reports; empty when absent
	syncFails int    // number of leading "sync" invocations that fail
	pipFails  string // pip subcommand that exits non-zero
	script    *proc.Script
}

func newHost(t *testing.T) *fakeHost {
	t.Helper()
	h := &fakeHost{
		fs:  afero.NewMemMapFs(),
		env: map[string]string{"PATH": "/usr/bin", "SHELL": "/bin/bash"},
	}
	require.NoError(t, afero.WriteFile(h.fs, "/self/pyproject.toml", []byte("[project]\nname = \"commands-wrapper\"\nversion = \"1.2.0\"\n"), 0o644))
	require.NoError(t, afero.WriteFile(h.fs, "/self/.commands-wrapper/commands-wrapper", []byte("#!"), 0o755))
	require.NoError(t, afero.WriteFile(h.fs, bashrc, []byte("alias g=git\n"), 0o644))
	h.script = &proc.Script{Handler: h.handle}
	return h
}

func (h *fakeHost) handle(c proc.Command) (proc.Result, error) {
	args := strings.Join(c.Args, " ")
	switch {
	case c.Name == "python3" && args == "-m pip --version":
		return proc.Result{Output: "pip 24.0"}, nil
	case c.Name != "python3" && !strings.HasSuffix(c.Name, "commands-wrapper"):
		return proc.Result{}, fmt.Errorf("run %s: executable file not found", c.Name)
	case strings.HasPrefix(args, "-m pip show"):
		if h.installed == "" {
			return proc.Result{ExitCode: 1, Output: "WARNING: Package(s) not found"}, nil
		}
		return proc.Result{Output: "Name: commands-wrapper\nVersion: " + h.installed + "\n"}, nil
	case strings.HasPrefix(args, "-m pip install"):
		if h.pipFails == "install" {
			return proc.Result{ExitCode: 1, Output: "ERROR: build failed"}, nil
		}
		h.installed = "1.2.0"
		return proc.Result{}, afero.WriteFile(h.fs, scriptsDir+"/commands-wrapper", []byte("#!"), 0o755)
	case strings.HasPrefix(args, "-m pip uninstall"):
		if h.pipFails == "uninstall" {
			return proc.Result{ExitCode: 2, Output: "ERROR: permission denied"}, nil
		}
		h.installed = ""
		return proc.Result{}, nil
	case strings.HasPrefix(args, "-c import sys"):
		return proc.Result{Output: "False\n"}, nil
	case strings.HasPrefix(args, "-c import os, sys, sysconfig"):
		return proc.Result{Output: scriptsDir + "\n"}, nil
	case args == "sync":
		if h.syncFails > 0 {
			h.syncFails--
			return proc.Result{ExitCode: 1, Output: "sync broke"}, nil
		}
		return proc.Result{}, afero.WriteFile(h.fs, scriptsDir+"/cw", []byte("#!"), 0o755)
	case args == "sync --uninstall":
		return proc.Result{}, h.fs.Remove(scriptsDir + "/cw")
	case args == "list", args == "--help":
		return proc.Result{Output: "hello"}, nil
	}
	return proc.Result{ExitCode: 127, Output: "unexpected " + args}, nil
}

func (h *fakeHost) deps() Deps {
	return Deps{
		Fs: h.fs,
		Platform: platform.Platform{
			OS:     "linux",
			Home:   "/home/u",
			Getenv: func(k string) string { return h.env[k] },
			Setenv: func(k, v string) error {
				h.env[k] = v
				return nil
			},
		},
		Runner:   h.script,
		SelfDir:  "/self",
		WorkDir:  "/work",
		Prompter: &prompt.Prompter{In: strings.NewReader(""), Out: &strings.Builder{}},
		Now:      func() time.Time { return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC) },
	}
}

func read(t *testing.T, fsys afero.Fs, p string) string {
	t.Helper()
	b, err := afero.ReadFile(fsys, p)
	require.NoError(t, err)
	return string(b)
}

func TestInstallFreshRun(t *testing.T) {
	h := newHost(t)
	rc, err := Install(context.Background(), h.deps(), config.Default())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"python3 -m pip --version",
		"python3 -m pip show --disable-pip-version-check commands-wrapper",
		"python3 -c import sys; print(sys.prefix != getattr(sys, 'base_prefix', sys.prefix))",
		"python3 -m pip install --upgrade --disable-pip-version-check --user /self",
	}, h.script.Lines()[:4])
	assert.Equal(t, 1, h.script.Count("commands-wrapper sync"))
	assert.Equal(t, 1, h.script.Count("commands-wrapper list"))
	assert.Equal(t, 1, h.script.Count("commands-wrapper --help"))

	assert.Equal(t, scriptsDir+":/usr/bin", h.env["PATH"])
	rcText := read(t, h.fs, bashrc)
	assert.True(t, strings.HasPrefix(rcText, "alias g=git\n"))
	assert.Equal(t, 1, strings.Count(rcText, pathheal.PosixStart))
	assert.Contains(t, read(t, h.fs, configDir+"/commands.yaml"), "echo hello")

	receipt, err := state.Load(h.fs, receiptFile)
	require.NoError(t, err)
	require.NotNil(t, receipt)
	assert.Equal(t, "1.2.0", receipt.Version)
	assert.Equal(t, scriptsDir, receipt.ScriptsDir)
	assert.Equal(t, []string{bashrc}, receipt.RCFiles)
	assert.Empty(t, rc.Warnings)
}

func TestInstallRerunIsIdempotent(t *testing.T) {
	h := newHost(t)
	_, err := Install(context.Background(), h.deps(), config.Default())
	require.NoError(t, err)
	firstRC := read(t, h.fs, bashrc)
	firstPath := h.env["PATH"]

	h.script.Calls = nil
	_, err = Install(context.Background(), h.deps(), config.Default())
	require.NoError(t, err)

	assert.Zero(t, h.script.Count("pip install"), "equal version skips the package manager")
	assert.Equal(t, firstRC, read(t, h.fs, bashrc))
	assert.Equal(t, firstPath, h.env["PATH"])
}

func TestInstallForceReinstall(t *testing.T) {
	h := newHost(t)
	h.installed = "1.2.0"
	s := config.Default()
	s.ForceReinstall = true

	_, err := Install(context.Background(), h.deps(), s)
	require.NoError(t, err)
	assert.Equal(t, 1, h.script.Count("pip install --upgrade --disable-pip-version-check --user --force-reinstall /self"))
}

func TestInstallKeepsNewerInstalledVersion(t *testing.T) {
	h := newHost(t)
	h.installed = "2.0.0"
	require.NoError(t, afero.WriteFile(h.fs, scriptsDir+"/commands-wrapper", []byte("#!"), 0o755))

	rc, err := Install(context.Background(), h.deps(), config.Default())
	require.NoError(t, err)
	assert.Zero(t, h.script.Count("pip install"))
	require.Len(t, rc.Warnings, 1)
	assert.Contains(t, rc.Warnings[0], "newer")
}

type digestFailingFetcher struct{ calls int }

func (f *digestFailingFetcher) Fetch(context.Context, string, string) (*source.Fetched, error) {
	f.calls++
	return nil, fmt.Errorf("%w: want aaaa, got bbbb", source.ErrDigestMismatch)
}

func TestInstallWrongDigestAbortsBeforePip(t *testing.T) {
	h := newHost(t)
	d := h.deps()
	d.SelfDir, d.WorkDir = "/elsewhere", "/nowhere"
	fetcher := &digestFailingFetcher{}
	d.Fetcher = fetcher
	s := config.Default()
	s.SourceSHA256 = strings.Repeat("A", 64)

	_, err := Install(context.Background(), d, s)
	require.ErrorIs(t, err, source.ErrDigestMismatch)
	assert.Equal(t, 1, fetcher.calls)
	assert.Zero(t, h.script.Count("pip install"))
	assert.Zero(t, h.script.Count("pip show"))
	assert.Contains(t, Describe(err), "Resolving source")
}

func TestInstallRejectsMalformedDigestUpFront(t *testing.T) {
	h := newHost(t)
	s := config.Default()
	s.SourceSHA256 = "not-a-digest"

	_, err := Install(context.Background(), h.deps(), s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.EnvSourceSHA256)
	assert.Empty(t, h.script.Calls)
}

func TestInstallSyncRetries(t *testing.T) {
	h := newHost(t)
	h.syncFails = 1
	_, err := Install(context.Background(), h.deps(), config.Default())
	require.NoError(t, err)
	assert.Equal(t, 2, h.script.Count("commands-wrapper sync"))

	h = newHost(t)
	h.syncFails = 2
	_, err = Install(context.Background(), h.deps(), config.Default())
	var se *wrapsync.SyncError
	require.ErrorAs(t, err, &se)
	assert.Len(t, se.Attempts, 2)
	assert.NotContains(t, read(t, h.fs, bashrc), pathheal.PosixStart, "later steps never ran")
}

func TestInstallPipFailureIsFatal(t *testing.T) {
	h := newHost(t)
	h.pipFails = "install"
	_, err := Install(context.Background(), h.deps(), config.Default())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "build failed")
	assert.Zero(t, h.script.Count("commands-wrapper sync"))
}

func TestInstallNoRuntime(t *testing.T) {
	h := newHost(t)
	h.script.Handler = nil
	_, err := Install(context.Background(), h.deps(), config.Default())
	require.Error(t, err)
	assert.Contains(t, Describe(err), "Checking prerequisites")
}

func TestUninstallDeclinedWithoutTerminal(t *testing.T) {
	h := newHost(t)
	_, err := Uninstall(context.Background(), h.deps(), config.Default())
	require.ErrorIs(t, err, ErrCancelled)
	assert.Empty(t, h.script.Calls)
}

func TestUninstallAfterInstall(t *testing.T) {
	h := newHost(t)
	_, err := Install(context.Background(), h.deps(), config.Default())
	require.NoError(t, err)

	h.script.Calls = nil
	s := config.Default()
	s.UninstallForce = true
	_, err = Uninstall(context.Background(), h.deps(), s)
	require.NoError(t, err)

	assert.Equal(t, 1, h.script.Count("commands-wrapper sync --uninstall"))
	assert.Equal(t, 1, h.script.Count("pip uninstall --disable-pip-version-check -y commands-wrapper"))
	assert.Empty(t, h.installed)
	assert.Equal(t, "alias g=git\n", read(t, h.fs, bashrc))

	ok, err := afero.Exists(h.fs, receiptFile)
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = afero.Exists(h.fs, configDir+"/commands.yaml")
	require.NoError(t, err)
	assert.True(t, ok, "config is kept without confirmation")
}

func TestUninstallRemovesConfigWhenRequested(t *testing.T) {
	h := newHost(t)
	_, err := Install(context.Background(), h.deps(), config.Default())
	require.NoError(t, err)

	s := config.Default()
	s.UninstallForce, s.RemoveConfig = true, true
	_, err = Uninstall(context.Background(), h.deps(), s)
	require.NoError(t, err)

	ok, err := afero.DirExists(h.fs, configDir)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUninstallWhenNotInstalled(t *testing.T) {
	h := newHost(t)
	s := config.Default()
	s.UninstallForce = true

	rc, err := Uninstall(context.Background(), h.deps(), s)
	require.NoError(t, err)
	assert.Zero(t, h.script.Count("pip uninstall"))
	// sync --uninstall has no entrypoint to run.
	assert.Len(t, rc.Warnings, 1)
}

func TestUninstallPipFailureIsFatal(t *testing.T) {
	h := newHost(t)
	_, err := Install(context.Background(), h.deps(), config.Default())
	require.NoError(t, err)

	h.pipFails = "uninstall"
	s := config.Default()
	s.UninstallForce = true
	_, err = Uninstall(context.Background(), h.deps(), s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "permission denied")
	assert.Contains(t, read(t, h.fs, bashrc), pathheal.PosixStart, "PATH cleanup never ran")
}

func TestUninstallInteractiveConfirmation(t *testing.T) {
	h := newHost(t)
	_, err := Install(context.Background(), h.deps(), config.Default())
	require.NoError(t, err)

	d := h.deps()
	var out strings.Builder
	d.Prompter = &prompt.Prompter{In: strings.NewReader("y\nyes\n"), Out: &out, Interactive: true}
	_, err = Uninstall(context.Background(), d, config.Default())
	require.NoError(t, err)

	assert.Contains(t, out.String(), "Uninstall commands-wrapper? [y/N]: ")
	assert.Contains(t, out.String(), "Also remove your configuration")
	ok, err := afero.DirExists(h.fs, configDir)
	require.NoError(t, err)
	assert.False(t, ok)
}
