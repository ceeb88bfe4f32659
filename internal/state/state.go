package state

import (
	"encoding/json" // For JSON encoding and decoding of the receipt file
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"cw-installer/internal/logger" // Custom logger package for debug info
)

// FileName is the receipt file name inside the per-user config directory.
const FileName = ".install-state.json"

// Receipt records what an install touched so the uninstaller can undo exactly that.
type Receipt struct {
	Version     string    `json:"version"`                 // Package version that was installed
	Source      string    `json:"source"`                  // Local root or archive URL the package came from
	ScriptsDir  string    `json:"scripts_dir"`             // Directory holding the installed commands
	RCFiles     []string  `json:"rc_files,omitempty"`      // Startup files that carry a managed PATH block
	UserEnvPath bool      `json:"user_env_path,omitempty"` // True if the Windows per-user PATH was modified
	InstalledAt time.Time `json:"installed_at"`            // Completion time of the install
}

// Load reads the receipt at path. A missing file yields (nil, nil).
// A receipt that cannot be parsed is reported as an error so callers can ignore it explicitly.
func Load(fsys afero.Fs, path string) (*Receipt, error) {
	raw, err := afero.ReadFile(fsys, path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var r Receipt
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &r, nil
}

// Save writes r to path as indented JSON.
func Save(fsys afero.Fs, path string, r *Receipt) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	// Log the full receipt being written (can be verbose)
	logger.Debug("[DEBUG] Writing receipt to %s:\n%s\n", path, string(data))
	if err := fsys.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return afero.WriteFile(fsys, path, append(data, '\n'), 0o644)
}

// Delete removes the receipt. A missing file is not an error.
func Delete(fsys afero.Fs, path string) error {
	err := fsys.Remove(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// MergeRCFiles returns the union of a and b, keeping first-seen order.
func MergeRCFiles(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	var out []string
	for _, list := range [][]string{a, b} {
		for _, p := range list {
			if !seen[p] {
				seen[p] = true
				out = append(out, p)
			}
		}
	}
	return out
}
