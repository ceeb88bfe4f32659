package main

import (
	"cw-installer/cmd" // Import the cmd package which contains the CLI commands and execution logic
)

// main is the program entry point.
// It delegates to cmd.Execute() which handles command line argument parsing and execution.
//
// cw-installer installs the commands-wrapper tool for the current user:
//   - Finds a Python runtime with pip and installs the package from a local source tree or
//     a downloaded archive (optionally verified against a sha256 digest)
//   - Skips the package manager when the installed version is already current or newer
//   - Runs `commands-wrapper sync` to generate the command wrappers, retrying once
//   - Makes the scripts directory reachable on PATH through a managed block in shell
//     startup files, or the per-user environment on Windows, without duplicating entries
//   - Writes a starter commands.yaml and a receipt the uninstaller uses to undo its changes
//
// Error handling strategy:
//   - Each step either succeeds, warns and continues, or aborts the run
//   - An aborted run prints a single [FATAL] line and exits with status 1
func main() {
	cmd.Execute()
}
