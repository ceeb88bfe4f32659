package source

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/afero"
)

// manifest is the part of pyproject.toml the installer reads.
type manifest struct {
	Project struct {
		Name    string `toml:"name"`
		Version string `toml:"version"`
	} `toml:"project"`
}

// TargetVersion returns [project].version of the manifest under root.
// An empty string with a nil error means the manifest declares no static version.
func TargetVersion(fsys afero.Fs, root string) (string, error) {
	path := filepath.Join(root, ManifestFile)
	raw, err := afero.ReadFile(fsys, path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	var m manifest
	if _, err := toml.Decode(string(raw), &m); err != nil {
		return "", fmt.Errorf("parse %s: %w", path, err)
	}
	return strings.TrimSpace(m.Project.Version), nil
}
