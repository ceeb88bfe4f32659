// Package pkgmgr drives pip through the Python helper runtime.
package pkgmgr

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cw-installer/internal/logger"
	"cw-installer/internal/proc"
)

// ErrNotInstalled is returned by Uninstall when the package is absent.
var ErrNotInstalled = errors.New("package is not installed")

// Helper runs the interpreter; implemented by *python.Helper.
type Helper interface {
	Run(ctx context.Context, args ...string) (string, int, error)
}

// CommandError carries the diagnostics of a failed pip invocation.
type CommandError struct {
	Op       string
	ExitCode int
	Output   string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("pip %s failed with exit code %d:\n%s", e.Op, e.ExitCode, proc.TrimOutput(e.Output))
}

// Pip installs, queries and removes one package.
type Pip struct {
	Helper  Helper
	Package string
}

// InstallOptions tunes a pip install.
type InstallOptions struct {
	User           bool // add --user (outside virtual environments)
	ForceReinstall bool // add --force-reinstall
}

// Install runs "pip install --upgrade" against sourceRoot. A non-zero exit is fatal
// and carries pip's output; there is no retry here.
func (p *Pip) Install(ctx context.Context, sourceRoot string, opts InstallOptions) error {
	args := []string{"-m", "pip", "install", "--upgrade", "--disable-pip-version-check"}
	if opts.User {
		args = append(args, "--user")
	}
	if opts.ForceReinstall {
		args = append(args, "--force-reinstall")
	}
	args = append(args, sourceRoot)

	out, code, err := p.Helper.Run(ctx, args...)
	if err != nil {
		return fmt.Errorf("pip install: %w", err)
	}
	if code != 0 {
		return &CommandError{Op: "install", ExitCode: code, Output: out}
	}
	logger.Debug("[DEBUG] pip install output:\n%s", logger.Indent(out))
	return nil
}

// InstalledVersion returns the version pip reports, or "" when the package is absent.
func (p *Pip) InstalledVersion(ctx context.Context) (string, error) {
	out, code, err := p.Helper.Run(ctx, "-m", "pip", "show", "--disable-pip-version-check", p.Package)
	if err != nil {
		return "", fmt.Errorf("pip show: %w", err)
	}
	if code != 0 {
		return "", nil
	}
	return ParseShowVersion(out), nil
}

// Uninstall removes the package. It returns ErrNotInstalled when pip does not know it.
func (p *Pip) Uninstall(ctx context.Context) error {
	installed, err := p.InstalledVersion(ctx)
	if err != nil {
		return err
	}
	if installed == "" {
		return ErrNotInstalled
	}
	out, code, err := p.Helper.Run(ctx, "-m", "pip", "uninstall", "--disable-pip-version-check", "-y", p.Package)
	if err != nil {
		return fmt.Errorf("pip uninstall: %w", err)
	}
	if code != 0 {
		return &CommandError{Op: "uninstall", ExitCode: code, Output: out}
	}
	return nil
}

// ParseShowVersion extracts the "Version:" field from "pip show" output.
func ParseShowVersion(out string) string {
	for _, line := range strings.Split(out, "\n") {
		key, value, ok := strings.Cut(line, ":")
		if ok && strings.EqualFold(strings.TrimSpace(key), "version") {
			return strings.TrimSpace(value)
		}
	}
	return ""
}
