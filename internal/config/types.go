package config

// Environment variables understood by the installer.
const (
	EnvSourceURL      = "COMMANDS_WRAPPER_SOURCE_URL"      // remote archive override
	EnvSourceSHA256   = "COMMANDS_WRAPPER_SOURCE_SHA256"   // expected sha256 of the remote archive
	EnvUninstallForce = "COMMANDS_WRAPPER_UNINSTALL_FORCE" // answer "yes" to the uninstall prompt
	EnvRemoveConfig   = "COMMANDS_WRAPPER_REMOVE_CONFIG"   // also delete the user config directory
)

// DefaultSourceURL is the archive installed when no local source tree is found.
const DefaultSourceURL = "https://github.com/commands-wrapper/commands-wrapper/archive/refs/heads/main.tar.gz"

// Package names and command names of the installed product.
const (
	PackageName    = "commands-wrapper" // name known to the package manager
	PrimaryCommand = "commands-wrapper" // entrypoint generated by the package
	ShortCommand   = "cw"               // alias generated by "sync"
)

// Settings holds every knob of an installer run.
// Values come from Default(), then an optional YAML file, then the environment,
// then command-line flags (applied by the cmd package).
//
//   - SourceURL/SourceSHA256: remote archive and its optional digest.
//   - SourceDir: explicit local source tree; empty means auto-detect.
//   - ForceReinstall: bypass the version gate.
//   - Preview: launch the interactive preview at the end of a terminal install.
//   - UninstallForce/RemoveConfig: answers for the uninstall prompts.
//   - Commands: command names that must resolve into the scripts directory after install.
type Settings struct {
	SourceURL      string   `yaml:"source_url"`
	SourceSHA256   string   `yaml:"source_sha256"`
	SourceDir      string   `yaml:"source_dir"`
	ForceReinstall bool     `yaml:"force_reinstall"`
	Preview        bool     `yaml:"preview"`
	UninstallForce bool     `yaml:"uninstall_force"`
	RemoveConfig   bool     `yaml:"remove_config"`
	Commands       []string `yaml:"commands"`
}
