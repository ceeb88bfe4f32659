package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"cw-installer/internal/source"
)

// Default returns the built-in settings.
func Default() Settings {
	return Settings{
		SourceURL: DefaultSourceURL,
		Preview:   true,
		Commands:  []string{PrimaryCommand, ShortCommand},
	}
}

// Load reads an optional YAML settings file on top of Default().
// An empty path or a missing file yields the defaults.
func Load(fsys afero.Fs, path string) (Settings, error) {
	s := Default()
	if path == "" {
		return s, nil
	}

	raw, err := afero.ReadFile(fsys, path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return s, fmt.Errorf("read settings %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return s, fmt.Errorf("parse settings %s: %w", path, err)
	}
	return s, nil
}

// ApplyEnv overlays the COMMANDS_WRAPPER_* environment variables.
func (s *Settings) ApplyEnv(getenv func(string) string) {
	if v := strings.TrimSpace(getenv(EnvSourceURL)); v != "" {
		s.SourceURL = v
	}
	if v := strings.TrimSpace(getenv(EnvSourceSHA256)); v != "" {
		s.SourceSHA256 = v
	}
	if truthy(getenv(EnvUninstallForce)) {
		s.UninstallForce = true
	}
	if truthy(getenv(EnvRemoveConfig)) {
		s.RemoveConfig = true
	}
}

// Validate checks values that must be rejected before any step runs.
// The digest is case-folded in place on success.
func (s *Settings) Validate() error {
	if s.SourceSHA256 != "" {
		digest, err := source.ValidateDigest(s.SourceSHA256)
		if err != nil {
			return fmt.Errorf("invalid %s value: %w", EnvSourceSHA256, err)
		}
		s.SourceSHA256 = digest
	}
	if strings.TrimSpace(s.SourceURL) == "" {
		return errors.New("source URL must not be empty")
	}
	if len(s.Commands) == 0 {
		s.Commands = []string{PrimaryCommand, ShortCommand}
	}
	return nil
}

func truthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "y", "on":
		return true
	}
	return false
}
