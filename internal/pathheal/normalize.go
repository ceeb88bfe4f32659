package pathheal

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"cw-installer/internal/platform"
)

// ErrRelativeDir is returned by Canonical for a relative directory when no base is known.
var ErrRelativeDir = errors.New("relative directory without a base directory")

// Canonical returns the absolute, cleaned form of dir that is written to persistent
// locations. "~" expands to the home directory and relative paths resolve against base.
// Case is preserved.
func Canonical(p platform.Platform, dir, base string) (string, error) {
	e := expandHome(p, trimEntry(dir))
	if e == "" {
		return "", errors.New("empty directory")
	}
	if !isAbs(p, e) {
		if base == "" {
			return "", fmt.Errorf("%w: %s", ErrRelativeDir, e)
		}
		e = p.Join(base, e)
	}
	return clean(p, e), nil
}

// Normalize returns the canonical form of a PATH entry used for membership checks.
// Case is folded only where the platform compares paths case-insensitively.
func Normalize(p platform.Platform, entry string) string {
	e := expandHome(p, trimEntry(entry))
	if e == "" {
		return ""
	}
	e = clean(p, e)
	if p.CaseInsensitivePaths() {
		e = strings.ToLower(e)
	}
	return e
}

func trimEntry(s string) string {
	return strings.Trim(strings.TrimSpace(s), `"'`)
}

func expandHome(p platform.Platform, e string) string {
	if e == "~" || strings.HasPrefix(e, "~/") || strings.HasPrefix(e, `~\`) {
		return p.Home + e[1:]
	}
	return e
}

func isAbs(p platform.Platform, e string) bool {
	if !p.IsWindows() {
		return path.IsAbs(e)
	}
	if strings.HasPrefix(e, `\\`) || strings.HasPrefix(e, "//") {
		return true
	}
	return len(e) >= 3 && e[1] == ':' && (e[2] == '\\' || e[2] == '/')
}

func clean(p platform.Platform, e string) string {
	if !p.IsWindows() {
		return path.Clean(e)
	}
	e = strings.ReplaceAll(e, `\`, "/")
	if strings.HasPrefix(e, "//") {
		rest := path.Clean("/" + strings.TrimLeft(e, "/"))
		return `\\` + strings.ReplaceAll(strings.TrimPrefix(rest, "/"), "/", `\`)
	}
	volume := ""
	if len(e) >= 2 && e[1] == ':' {
		volume, e = e[:2], e[2:]
	}
	if e == "" {
		return volume
	}
	return volume + strings.ReplaceAll(path.Clean(e), "/", `\`)
}

// Split breaks a PATH value into its non-empty entries.
func Split(p platform.Platform, value string) []string {
	var out []string
	for _, e := range strings.Split(value, p.ListSeparator()) {
		if strings.TrimSpace(e) != "" {
			out = append(out, e)
		}
	}
	return out
}

// Contains reports whether dir is already an entry of the PATH value.
func Contains(p platform.Platform, value, dir string) bool {
	want := Normalize(p, dir)
	if want == "" {
		return false
	}
	for _, e := range Split(p, value) {
		if Normalize(p, e) == want {
			return true
		}
	}
	return false
}

// Prepend returns value with dir in front, unless dir is already present.
// The boolean reports whether the value changed.
func Prepend(p platform.Platform, value, dir string) (string, bool) {
	if Contains(p, value, dir) {
		return value, false
	}
	if strings.TrimSpace(value) == "" {
		return dir, true
	}
	return dir + p.ListSeparator() + value, true
}

// Dedupe drops empty and repeated entries, keeping the first occurrence of each.
func Dedupe(p platform.Platform, value string) string {
	seen := make(map[string]bool)
	var kept []string
	for _, e := range Split(p, value) {
		key := Normalize(p, e)
		if seen[key] {
			continue
		}
		seen[key] = true
		kept = append(kept, e)
	}
	return strings.Join(kept, p.ListSeparator())
}

// Without removes every entry equal to dir. The boolean reports whether anything was removed.
func Without(p platform.Platform, value, dir string) (string, bool) {
	want := Normalize(p, dir)
	removed := false
	var kept []string
	for _, e := range Split(p, value) {
		if Normalize(p, e) == want {
			removed = true
			continue
		}
		kept = append(kept, e)
	}
	return strings.Join(kept, p.ListSeparator()), removed
}
