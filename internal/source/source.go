// Package source finds the tree the installer hands to the package manager.
//
// Resolution order: an explicit directory, the installer's own directory, the current
// working directory, and finally a remote archive that is downloaded, optionally verified
// against a sha256 digest, and extracted into a temporary area.
package source

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/afero"

	"cw-installer/internal/logger"
)

// Files that mark a source root.
const (
	ManifestFile   = "pyproject.toml"
	EntrypointFile = ".commands-wrapper/commands-wrapper"
)

var (
	// ErrNotSourceRoot is returned when an explicitly requested directory is not a source tree.
	ErrNotSourceRoot = errors.New("not a commands-wrapper source tree")
	// ErrInvalidDigest is returned for a digest that is not 64 hex characters.
	ErrInvalidDigest = errors.New("invalid sha256 digest")
)

var digestPattern = regexp.MustCompile(`^[0-9a-f]{64}$`)

// Kind tells where the source came from.
type Kind int

const (
	LocalRoot Kind = iota
	RemoteArchive
)

func (k Kind) String() string {
	if k == RemoteArchive {
		return "remote-archive"
	}
	return "local-root"
}

// Source is a resolved install source.
type Source struct {
	Kind     Kind
	Location string // directory or URL the source was resolved from
	Digest   string // expected sha256 of the archive, lower-case; empty when unchecked
	Root     string // directory containing the manifest, ready for the package manager
}

// Fetcher downloads and unpacks remote archives. Implemented by HTTPFetcher.
type Fetcher interface {
	Fetch(ctx context.Context, url, digest string) (*Fetched, error)
}

// Resolver applies the resolution order.
type Resolver struct {
	Fs       afero.Fs
	Fetcher  Fetcher
	Explicit string // --source flag
	SelfDir  string // directory of the installer executable
	WorkDir  string // current working directory
	URL      string
	Digest   string
}

// ValidateDigest case-folds digest and checks its shape. Empty is allowed.
func ValidateDigest(digest string) (string, error) {
	d := strings.ToLower(strings.TrimSpace(digest))
	if d == "" {
		return "", nil
	}
	if !digestPattern.MatchString(d) {
		return "", fmt.Errorf("%w: %q", ErrInvalidDigest, digest)
	}
	return d, nil
}

// IsSourceRoot reports whether dir holds both the manifest and the entrypoint.
func IsSourceRoot(fsys afero.Fs, dir string) bool {
	if dir == "" {
		return false
	}
	for _, rel := range []string{ManifestFile, EntrypointFile} {
		info, err := fsys.Stat(filepath.Join(dir, filepath.FromSlash(rel)))
		if err != nil || info.IsDir() {
			return false
		}
	}
	return true
}

// Resolve returns the source and a cleanup function that must always be called.
// The cleanup removes any temporary download area and is safe to call more than once.
func (r *Resolver) Resolve(ctx context.Context) (Source, func(), error) {
	noop := func() {}

	digest, err := ValidateDigest(r.Digest)
	if err != nil {
		return Source{}, noop, err
	}

	if r.Explicit != "" {
		dir, err := filepath.Abs(r.Explicit)
		if err != nil {
			return Source{}, noop, fmt.Errorf("resolve %s: %w", r.Explicit, err)
		}
		if !IsSourceRoot(r.Fs, dir) {
			return Source{}, noop, fmt.Errorf("%w: %s", ErrNotSourceRoot, dir)
		}
		return r.local(dir, digest), noop, nil
	}

	for _, dir := range []string{r.SelfDir, r.WorkDir} {
		if IsSourceRoot(r.Fs, dir) {
			return r.local(dir, digest), noop, nil
		}
	}

	if r.Fetcher == nil {
		return Source{}, noop, errors.New("no local source tree found and remote fetching is unavailable")
	}
	logger.Info("[INFO] Downloading %s\n", r.URL)
	fetched, err := r.Fetcher.Fetch(ctx, r.URL, digest)
	if err != nil {
		return Source{}, noop, err
	}
	root, err := findRoot(r.Fs, fetched.Dir)
	if err != nil {
		fetched.Cleanup()
		return Source{}, noop, err
	}
	return Source{Kind: RemoteArchive, Location: r.URL, Digest: digest, Root: root}, fetched.Cleanup, nil
}

func (r *Resolver) local(dir, digest string) Source {
	if digest != "" {
		logger.Warn("[WARN] Ignoring source digest: installing from local tree %s\n", dir)
	}
	logger.Debug("[DEBUG] Using local source tree %s\n", dir)
	return Source{Kind: LocalRoot, Location: dir, Root: dir}
}

// findRoot looks for a source root in dir or one level below it
// (archives of a repository usually wrap everything in a single top-level folder).
func findRoot(fsys afero.Fs, dir string) (string, error) {
	if IsSourceRoot(fsys, dir) {
		return dir, nil
	}
	entries, err := afero.ReadDir(fsys, dir)
	if err != nil {
		return "", fmt.Errorf("read extracted archive: %w", err)
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		candidate := filepath.Join(dir, e.Name())
		if IsSourceRoot(fsys, candidate) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: archive does not contain %s and %s", ErrNotSourceRoot, ManifestFile, EntrypointFile)
}
