// Package scripts resolves the directory pip installs user-scoped executables into.
package scripts

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"cw-installer/internal/platform"
	"cw-installer/internal/proc"
	"cw-installer/internal/python"
)

// ErrNoScriptsDir is returned when the interpreter reports no usable directory.
var ErrNoScriptsDir = errors.New("could not determine the Python scripts directory")

// Snippet prints the scripts directory: the active scheme inside a virtual
// environment, the preferred user scheme otherwise.
const Snippet = `import os, sys, sysconfig
if sys.prefix != getattr(sys, "base_prefix", sys.prefix):
    print(sysconfig.get_path("scripts"))
else:
    try:
        scheme = sysconfig.get_preferred_scheme("user")
    except AttributeError:
        scheme = "osx_framework_user" if sys.platform == "darwin" and sys._framework else os.name + "_user"
    print(sysconfig.get_path("scripts", scheme))
`

// Helper runs the interpreter; implemented by *python.Helper.
type Helper interface {
	Run(ctx context.Context, args ...string) (string, int, error)
}

// Locate asks the interpreter for the scripts directory and validates the answer.
func Locate(ctx context.Context, h Helper, p platform.Platform) (string, error) {
	out, code, err := h.Run(ctx, "-c", Snippet)
	if err != nil {
		return "", fmt.Errorf("query scripts directory: %w", err)
	}
	if code != 0 {
		return "", fmt.Errorf("%w: interpreter exited with %d: %s", ErrNoScriptsDir, code, proc.TrimOutput(out))
	}
	dir := python.LastLine(out)
	if dir == "" || dir == "None" {
		return "", ErrNoScriptsDir
	}
	if !isAbs(p, dir) {
		return "", fmt.Errorf("%w: %q is not absolute", ErrNoScriptsDir, dir)
	}
	return dir, nil
}

func isAbs(p platform.Platform, dir string) bool {
	if p.IsWindows() {
		if strings.HasPrefix(dir, `\\`) {
			return true
		}
		return len(dir) >= 3 && dir[1] == ':' && (dir[2] == '\\' || dir[2] == '/')
	}
	return path.IsAbs(dir)
}
