// Package verify checks that the installed commands are reachable the way a user's shell
// would find them.
package verify

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/afero"

	"cw-installer/internal/logger"
	"cw-installer/internal/pathheal"
	"cw-installer/internal/platform"
	"cw-installer/internal/proc"
)

var (
	// ErrNotFound is returned when a command name resolves nowhere on PATH.
	ErrNotFound = errors.New("command not found on PATH")
	// ErrShadowed is returned when a command resolves outside the scripts directory.
	ErrShadowed = errors.New("command resolves outside the scripts directory")
)

// Resolver searches a PATH value for executables.
type Resolver struct {
	Fs       afero.Fs
	Platform platform.Platform
}

func (r Resolver) executable(p string) bool {
	info, err := r.Fs.Stat(p)
	if err != nil || info.IsDir() {
		return false
	}
	if r.Platform.IsWindows() {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}

// Lookup returns the first file on pathValue that runs as name, trying every
// PATHEXT extension on Windows.
func (r Resolver) Lookup(pathValue, name string) (string, error) {
	for _, dir := range pathheal.Split(r.Platform, pathValue) {
		for _, file := range r.Platform.ExecutableNames(name) {
			candidate := r.Platform.Join(dir, file)
			if r.executable(candidate) {
				return candidate, nil
			}
		}
	}
	return "", fmt.Errorf("%q: %w", name, ErrNotFound)
}

// Check requires every name to resolve first into scriptsDir.
func (r Resolver) Check(pathValue, scriptsDir string, names []string) error {
	want := pathheal.Normalize(r.Platform, scriptsDir)
	for _, name := range names {
		found, err := r.Lookup(pathValue, name)
		if err != nil {
			return err
		}
		dir := parentDir(r.Platform, found)
		if pathheal.Normalize(r.Platform, dir) != want {
			return fmt.Errorf("%q resolves to %s, expected it in %s: %w", name, found, scriptsDir, ErrShadowed)
		}
		logger.Debug("[DEBUG] %s -> %s\n", name, found)
	}
	return nil
}

func parentDir(p platform.Platform, file string) string {
	sep := "/"
	if p.IsWindows() {
		sep = `\`
	}
	for i := len(file) - 1; i >= 0; i-- {
		if string(file[i]) == sep {
			if i == 0 {
				return sep
			}
			return file[:i]
		}
	}
	return "."
}

// SmokeArgs are the invocations that must exit 0 after install.
var SmokeArgs = [][]string{{"list"}, {"--help"}}

// Smoke runs entrypoint with each of SmokeArgs.
func Smoke(ctx context.Context, runner proc.Runner, entrypoint string, env []string) error {
	for _, args := range SmokeArgs {
		cmd := proc.Command{Name: entrypoint, Args: args, Env: env}
		res, err := runner.Run(ctx, cmd)
		if err != nil {
			return fmt.Errorf("smoke test %q: %w", cmd.String(), err)
		}
		if !res.OK() {
			return fmt.Errorf("smoke test %q exited with %d:\n%s", cmd.String(), res.ExitCode, proc.TrimOutput(res.Output))
		}
	}
	return nil
}
