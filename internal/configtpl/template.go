// Package configtpl writes the starter command-definition file for new users.
package configtpl

import (
	"fmt"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"cw-installer/internal/logger"
)

// FileNames are the accepted names of the command-definition file, in lookup order.
var FileNames = []string{"commands.yaml", "commands.yml"}

// Step is one shell command run by a command definition.
type Step struct {
	Command string `yaml:"command"`
}

// Command is a named command definition.
type Command struct {
	Description string `yaml:"description"`
	Steps       []Step `yaml:"steps"`
}

// Template returns the starter definition file content.
func Template() ([]byte, error) {
	doc := map[string]Command{
		"hello": {
			Description: "Print a greeting",
			Steps:       []Step{{Command: "echo hello"}},
		},
	}
	body, err := yaml.Marshal(doc)
	if err != nil {
		return nil, err
	}
	header := "# commands-wrapper command definitions.\n# Each top-level key becomes a command; run `cw list` to see them.\n"
	return append([]byte(header), body...), nil
}

// Existing returns the path of an accepted definition file in dir, or "" when none exists.
func Existing(fsys afero.Fs, dir string, join func(...string) string) (string, error) {
	for _, name := range FileNames {
		p := join(dir, name)
		ok, err := afero.Exists(fsys, p)
		if err != nil {
			return "", err
		}
		if ok {
			return p, nil
		}
	}
	return "", nil
}

// Ensure creates dir and writes the template as commands.yaml unless an accepted file is
// already present. It returns the file path and whether it was created.
func Ensure(fsys afero.Fs, dir string, join func(...string) string) (string, bool, error) {
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return "", false, fmt.Errorf("create config directory %s: %w", dir, err)
	}
	existing, err := Existing(fsys, dir, join)
	if err != nil {
		return "", false, err
	}
	if existing != "" {
		logger.Debug("[DEBUG] Keeping existing %s\n", existing)
		return existing, false, nil
	}

	content, err := Template()
	if err != nil {
		return "", false, err
	}
	target := join(dir, FileNames[0])
	if err := afero.WriteFile(fsys, target, content, 0o644); err != nil {
		return "", false, fmt.Errorf("write %s: %w", target, err)
	}
	return target, true, nil
}
