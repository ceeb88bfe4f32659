// Package version decides whether an installed package must be reinstalled.
package version

import (
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Ordering is the result of comparing the installed version against the target.
type Ordering int

const (
	Unknown Ordering = iota
	Equal
	Greater // installed is newer than target
	Less    // installed is older than target
)

func (o Ordering) String() string {
	switch o {
	case Equal:
		return "eq"
	case Greater:
		return "gt"
	case Less:
		return "lt"
	}
	return "unknown"
}

// Decision is what the installer does with the package.
type Decision int

const (
	Reinstall Decision = iota
	SkipEqual
	SkipNewerInstalled
)

func (d Decision) String() string {
	switch d {
	case SkipEqual:
		return "skip-equal"
	case SkipNewerInstalled:
		return "skip-newer-installed"
	}
	return "reinstall"
}

// Compare orders installed against target using semantic versioning.
// When either side does not parse, only an exact string match is meaningful.
func Compare(installed, target string) Ordering {
	installed, target = strings.TrimSpace(installed), strings.TrimSpace(target)
	iv, ierr := semver.NewVersion(installed)
	tv, terr := semver.NewVersion(target)
	if ierr != nil || terr != nil {
		if installed != "" && installed == target {
			return Equal
		}
		return Unknown
	}
	switch iv.Compare(tv) {
	case 0:
		return Equal
	case 1:
		return Greater
	default:
		return Less
	}
}

// Decide maps the two versions to an install decision. An empty string means the
// version is not known; anything that cannot be decided safely reinstalls.
func Decide(installed, target string) Decision {
	if strings.TrimSpace(installed) == "" || strings.TrimSpace(target) == "" {
		return Reinstall
	}
	switch Compare(installed, target) {
	case Equal:
		return SkipEqual
	case Greater:
		return SkipNewerInstalled
	}
	return Reinstall
}
