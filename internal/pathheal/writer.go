package pathheal

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"cw-installer/internal/platform"
)

// Outcome is the result of one writer action.
type Outcome int

const (
	Unchanged Outcome = iota
	Changed
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Changed:
		return "changed"
	case Failed:
		return "failed"
	}
	return "unchanged"
}

// Kind names a writer variant.
type Kind string

const (
	KindPosix   Kind = "posix-sh"
	KindFish    Kind = "fish"
	KindUserEnv Kind = "windows-user-env"
)

// Writer persists a PATH entry in one location. The set of implementations is closed:
// PosixWriter, FishWriter and UserEnvWriter.
type Writer interface {
	Kind() Kind
	Location() string
	Ensure(dir string) (Outcome, error)
	Remove() (Outcome, error)
	sealed()
}

// Marker pairs of the managed blocks.
const (
	PosixStart = "# >>> commands-wrapper PATH >>>"
	PosixEnd   = "# <<< commands-wrapper PATH <<<"
	FishStart  = "# >>> commands-wrapper PATH (fish) >>>"
	FishEnd    = "# <<< commands-wrapper PATH (fish) <<<"
)

// PosixBlock returns the sh/bash/zsh block that puts dir on PATH once per shell.
func PosixBlock(dir string) Block {
	q := shellQuote(dir)
	return Block{
		Start: PosixStart,
		End:   PosixEnd,
		Body: "case \":$PATH:\" in\n" +
			"  *:" + q + ":*) ;;\n" +
			"  *) export PATH=" + q + ":\"$PATH\" ;;\n" +
			"esac",
	}
}

// FishBlock returns the fish block that puts dir on PATH once per shell.
func FishBlock(dir string) Block {
	q := shellQuote(dir)
	return Block{
		Start: FishStart,
		End:   FishEnd,
		Body: "if not contains -- " + q + " $PATH\n" +
			"    set -gx PATH " + q + " $PATH\n" +
			"end",
	}
}

// shellQuote double-quotes s for sh and fish, escaping the characters both treat specially.
func shellQuote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, `$`, `\$`, "`", "\\`")
	return `"` + r.Replace(s) + `"`
}

// rcFile is the shared managed-block file logic behind PosixWriter and FishWriter.
type rcFile struct {
	fs    afero.Fs
	path  string
	block func(dir string) Block
}

func (r rcFile) read() (string, fs.FileMode, error) {
	info, err := r.fs.Stat(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", 0o644, nil
	}
	if err != nil {
		return "", 0, err
	}
	raw, err := afero.ReadFile(r.fs, r.path)
	if err != nil {
		return "", 0, err
	}
	return string(raw), info.Mode().Perm(), nil
}

func (r rcFile) ensure(dir string) (Outcome, error) {
	existing, mode, err := r.read()
	if err != nil {
		return Failed, fmt.Errorf("read %s: %w", r.path, err)
	}
	updated, err := ApplyBlock(existing, r.block(dir))
	if err != nil {
		return Failed, fmt.Errorf("%s: %w", r.path, err)
	}
	if updated == existing {
		return Unchanged, nil
	}
	if err := writeFileAtomic(r.fs, r.path, []byte(updated), mode); err != nil {
		return Failed, fmt.Errorf("write %s: %w", r.path, err)
	}
	return Changed, nil
}

func (r rcFile) remove() (Outcome, error) {
	existing, mode, err := r.read()
	if err != nil {
		return Failed, fmt.Errorf("read %s: %w", r.path, err)
	}
	updated, found, err := RemoveBlock(existing, r.block(""))
	if err != nil {
		return Failed, fmt.Errorf("%s: %w", r.path, err)
	}
	if !found {
		return Unchanged, nil
	}
	if err := writeFileAtomic(r.fs, r.path, []byte(updated), mode); err != nil {
		return Failed, fmt.Errorf("write %s: %w", r.path, err)
	}
	return Changed, nil
}

// writeFileAtomic replaces path through a temp file in the same directory.
func writeFileAtomic(fsys afero.Fs, path string, data []byte, mode fs.FileMode) error {
	dir := filepath.Dir(path)
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := afero.TempFile(fsys, dir, "."+filepath.Base(path)+".tmp-")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = fsys.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := fsys.Chmod(tmpName, mode); err != nil {
		return err
	}
	if err := fsys.Rename(tmpName, path); err != nil {
		return err
	}
	committed = true
	return nil
}

// PosixWriter maintains the managed block in a sh-compatible startup file.
type PosixWriter struct {
	file rcFile
}

// NewPosixWriter returns a writer for the rc file at path.
func NewPosixWriter(fsys afero.Fs, path string) *PosixWriter {
	return &PosixWriter{file: rcFile{fs: fsys, path: path, block: PosixBlock}}
}

func (w *PosixWriter) Kind() Kind                         { return KindPosix }
func (w *PosixWriter) Location() string                   { return w.file.path }
func (w *PosixWriter) Ensure(dir string) (Outcome, error) { return w.file.ensure(dir) }
func (w *PosixWriter) Remove() (Outcome, error)           { return w.file.remove() }
func (w *PosixWriter) sealed()                            {}

// FishWriter maintains the managed block in fish's config.fish.
type FishWriter struct {
	file rcFile
}

// NewFishWriter returns a writer for the fish config at path.
func NewFishWriter(fsys afero.Fs, path string) *FishWriter {
	return &FishWriter{file: rcFile{fs: fsys, path: path, block: FishBlock}}
}

func (w *FishWriter) Kind() Kind                         { return KindFish }
func (w *FishWriter) Location() string                   { return w.file.path }
func (w *FishWriter) Ensure(dir string) (Outcome, error) { return w.file.ensure(dir) }
func (w *FishWriter) Remove() (Outcome, error)           { return w.file.remove() }
func (w *FishWriter) sealed()                            {}

// ErrUnsupported is returned where the platform has no native per-user environment store.
var ErrUnsupported = errors.New("per-user environment store not supported on this platform")

// EnvStore is the native per-user persistent environment (HKCU\Environment on Windows).
type EnvStore interface {
	GetPath() (string, error)
	SetPath(value string) error
}

// UserEnvWriter keeps the directory on the persistent per-user PATH.
type UserEnvWriter struct {
	store    EnvStore
	platform platform.Platform
	dir      string // directory added by the last Ensure, or the one to remove
}

// NewUserEnvWriter returns a writer over store. dir is the entry Remove deletes
// when Ensure has not been called in this run.
func NewUserEnvWriter(store EnvStore, p platform.Platform, dir string) *UserEnvWriter {
	return &UserEnvWriter{store: store, platform: p, dir: dir}
}

func (w *UserEnvWriter) Kind() Kind       { return KindUserEnv }
func (w *UserEnvWriter) Location() string { return `HKCU\Environment\Path` }
func (w *UserEnvWriter) sealed()          {}

// Ensure prepends dir to the stored PATH when it is not already a member, dropping
// duplicate entries while rewriting.
func (w *UserEnvWriter) Ensure(dir string) (Outcome, error) {
	w.dir = dir
	current, err := w.store.GetPath()
	if err != nil {
		return Failed, fmt.Errorf("read user PATH: %w", err)
	}
	if Contains(w.platform, current, dir) {
		return Unchanged, nil
	}
	updated, _ := Prepend(w.platform, Dedupe(w.platform, current), dir)
	if err := w.store.SetPath(updated); err != nil {
		return Failed, fmt.Errorf("write user PATH: %w", err)
	}
	return Changed, nil
}

// Remove deletes the directory from the stored PATH.
func (w *UserEnvWriter) Remove() (Outcome, error) {
	if w.dir == "" {
		return Unchanged, nil
	}
	current, err := w.store.GetPath()
	if err != nil {
		return Failed, fmt.Errorf("read user PATH: %w", err)
	}
	updated, removed := Without(w.platform, current, w.dir)
	if !removed {
		return Unchanged, nil
	}
	if err := w.store.SetPath(updated); err != nil {
		return Failed, fmt.Errorf("write user PATH: %w", err)
	}
	return Changed, nil
}

func containsPercentVar(s string) bool {
	first := strings.Index(s, "%")
	return first >= 0 && strings.Contains(s[first+1:], "%")
}
