package pathheal

import (
	"path"

	"github.com/spf13/afero"

	"cw-installer/internal/logger"
	"cw-installer/internal/platform"
)

// rcCandidates are the POSIX startup files considered when $SHELL gives no answer.
var rcCandidates = []string{".bashrc", ".zshrc", ".bash_profile", ".profile"}

// Detector picks the persistent locations for a platform.
type Detector struct {
	Fs       afero.Fs
	Platform platform.Platform
	Store    EnvStore // nil means the native store from NewEnvStore
}

func (d Detector) exists(p string) bool {
	ok, err := afero.Exists(d.Fs, p)
	return err == nil && ok
}

func (d Detector) home(name string) string {
	return d.Platform.Join(d.Platform.Home, name)
}

// FishConfig is the fish startup file.
func (d Detector) FishConfig() string {
	return d.Platform.Join(d.Platform.Home, ".config", "fish", "config.fish")
}

// RCFiles returns the POSIX startup files to ensure, in order, and whether fish is in use.
func (d Detector) RCFiles() (files []string, fish bool) {
	switch path.Base(d.Platform.Env("SHELL")) {
	case "zsh":
		files = []string{d.home(".zshrc")}
	case "bash":
		if d.Platform.IsDarwin() {
			files = []string{d.home(".bash_profile")}
		} else {
			files = []string{d.home(".bashrc")}
		}
	case "fish":
		files = []string{d.home(".profile")}
		fish = true
	default:
		for _, name := range rcCandidates {
			if p := d.home(name); d.exists(p) {
				files = []string{p}
				break
			}
		}
		if len(files) == 0 {
			files = []string{d.home(".profile")}
		}
	}
	if !fish && d.exists(d.Platform.Join(d.Platform.Home, ".config", "fish")) {
		fish = true
	}
	return files, fish
}

func (d Detector) store() (EnvStore, error) {
	if d.Store != nil {
		return d.Store, nil
	}
	return NewEnvStore()
}

// EnsureWriters returns the writers that make dir persistent on this platform.
func (d Detector) EnsureWriters(dir string) []Writer {
	if d.Platform.IsWindows() {
		store, err := d.store()
		if err != nil {
			logger.Warn("[WARN] Cannot open the user environment store: %v\n", err)
			return nil
		}
		return []Writer{NewUserEnvWriter(store, d.Platform, dir)}
	}

	files, fish := d.RCFiles()
	writers := make([]Writer, 0, len(files)+1)
	for _, f := range files {
		writers = append(writers, NewPosixWriter(d.Fs, f))
	}
	if fish {
		writers = append(writers, NewFishWriter(d.Fs, d.FishConfig()))
	}
	return writers
}

// RemovalWriters returns a writer for every location a previous install may have touched:
// all rc candidates, the fish config and the files in recorded. On Windows it returns the
// user environment writer for dir, and only when userEnv reports that an ensure added it.
func (d Detector) RemovalWriters(dir string, recorded []string, userEnv bool) []Writer {
	if d.Platform.IsWindows() {
		if dir == "" || !userEnv {
			return nil
		}
		store, err := d.store()
		if err != nil {
			logger.Warn("[WARN] Cannot open the user environment store: %v\n", err)
			return nil
		}
		return []Writer{NewUserEnvWriter(store, d.Platform, dir)}
	}

	seen := make(map[string]bool)
	var writers []Writer
	add := func(p string, fish bool) {
		if p == "" || seen[p] {
			return
		}
		seen[p] = true
		if fish {
			writers = append(writers, NewFishWriter(d.Fs, p))
		} else {
			writers = append(writers, NewPosixWriter(d.Fs, p))
		}
	}
	for _, name := range rcCandidates {
		add(d.home(name), false)
	}
	add(d.FishConfig(), true)
	for _, p := range recorded {
		add(p, path.Base(p) == "config.fish")
	}
	return writers
}
