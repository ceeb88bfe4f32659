// Package platform captures the operating-system facts the installer branches on.
//
// Everything that depends on runtime.GOOS or the process environment goes through a
// Platform value so components can be exercised for a foreign OS in tests.
package platform

import (
	"os"
	"path"
	"runtime"
	"strings"

	"golang.org/x/term"
)

// AppName is the directory name used under per-user config locations.
const AppName = "commands-wrapper"

// ciIndicators are environment variables whose presence marks an automated session.
var ciIndicators = []string{
	"CI",
	"GITHUB_ACTIONS",
	"GITLAB_CI",
	"BUILDKITE",
	"JENKINS_URL",
	"TF_BUILD",
	"CIRCLECI",
	"TEAMCITY_VERSION",
}

// Platform describes the host the installer runs on.
type Platform struct {
	OS     string                        // runtime.GOOS value ("linux", "darwin", "windows", ...)
	Home   string                        // user home directory
	Getenv func(key string) string       // environment lookup
	IsTTY  func() bool                   // reports whether stdin and stdout are terminals
	Setenv func(key, value string) error // mutates the installer's own environment
}

// Current returns the Platform of the running process.
func Current() Platform {
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.Getenv("HOME")
	}
	return Platform{
		OS:     runtime.GOOS,
		Home:   home,
		Getenv: os.Getenv,
		IsTTY: func() bool {
			return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
		},
		Setenv: os.Setenv,
	}
}

// IsWindows reports whether the platform is Windows.
func (p Platform) IsWindows() bool { return p.OS == "windows" }

// IsDarwin reports whether the platform is macOS.
func (p Platform) IsDarwin() bool { return p.OS == "darwin" }

// CaseInsensitivePaths reports whether path comparison must fold case.
func (p Platform) CaseInsensitivePaths() bool { return p.IsWindows() }

// ListSeparator is the PATH list separator.
func (p Platform) ListSeparator() string {
	if p.IsWindows() {
		return ";"
	}
	return ":"
}

// Join joins path elements with the platform's separator, independent of the host OS.
func (p Platform) Join(elem ...string) string {
	if !p.IsWindows() {
		return path.Join(elem...)
	}
	parts := make([]string, 0, len(elem))
	for _, e := range elem {
		e = strings.ReplaceAll(e, "/", `\`)
		if len(parts) > 0 {
			e = strings.TrimLeft(e, `\`)
		}
		if e == "" {
			continue
		}
		parts = append(parts, strings.TrimRight(e, `\`))
	}
	return strings.Join(parts, `\`)
}

// Env returns the value of key, or "" when Getenv is unset.
func (p Platform) Env(key string) string {
	if p.Getenv == nil {
		return ""
	}
	return p.Getenv(key)
}

// ConfigDir returns the per-user configuration directory for the product:
// %APPDATA%\commands-wrapper on Windows, $XDG_CONFIG_HOME/commands-wrapper or
// ~/.config/commands-wrapper elsewhere.
func (p Platform) ConfigDir() string {
	if p.IsWindows() {
		base := p.Env("APPDATA")
		if base == "" {
			base = p.Join(p.Home, "AppData", "Roaming")
		}
		return p.Join(base, AppName)
	}
	if xdg := p.Env("XDG_CONFIG_HOME"); xdg != "" && path.IsAbs(xdg) {
		return p.Join(xdg, AppName)
	}
	return p.Join(p.Home, ".config", AppName)
}

// InCI reports whether any well-known CI indicator is set.
func (p Platform) InCI() bool {
	for _, key := range ciIndicators {
		v := strings.TrimSpace(p.Env(key))
		if v != "" && !strings.EqualFold(v, "false") && v != "0" {
			return true
		}
	}
	return false
}

// Interactive reports whether the session can prompt the user.
func (p Platform) Interactive() bool {
	return p.IsTTY != nil && p.IsTTY() && !p.InCI()
}

// ExecutableNames returns the file names a command may have on disk.
func (p Platform) ExecutableNames(name string) []string {
	if !p.IsWindows() {
		return []string{name}
	}
	exts := strings.Split(strings.ToLower(p.Env("PATHEXT")), ";")
	if len(exts) == 1 && exts[0] == "" {
		exts = []string{".com", ".exe", ".bat", ".cmd"}
	}
	names := make([]string, 0, len(exts))
	for _, ext := range exts {
		if ext = strings.TrimSpace(ext); ext != "" {
			names = append(names, name+ext)
		}
	}
	return names
}
