package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"cw-installer/internal/config"
	"cw-installer/internal/installer"
	"cw-installer/internal/logger"
)

// debug flag indicates whether debug logging should be enabled.
// It can be toggled via the `--debug` command-line flag.
var debug bool

// configPath is an optional YAML file with installer settings (`--config`).
var configPath string

// rootCmd is the base command for the CLI tool `cw-installer`.
// It sets up the root-level CLI structure and provides global flags.
var rootCmd = &cobra.Command{
	Use:   "cw-installer",
	Short: "Install, repair and remove commands-wrapper",

	// Errors are reported once, as a [FATAL] line, by Execute.
	SilenceErrors: true,
	SilenceUsage:  true,

	// PersistentPreRun is a hook that runs before any subcommand.
	// Here, we initialize the logger based on the debug flag.
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.Init(debug)
	},
}

// loadSettings layers defaults, the optional settings file and the environment.
// Command flags are applied on top by each subcommand.
func loadSettings() (config.Settings, error) {
	s, err := config.Load(afero.NewOsFs(), configPath)
	if err != nil {
		return s, err
	}
	s.ApplyEnv(os.Getenv)
	return s, nil
}

// Execute initializes flags, registers subcommands, and starts the command execution.
// Any error ends the process with exit code 1 after a single [FATAL] line.
func Execute() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to an installer settings file (YAML)")

	rootCmd.AddCommand(installCmd, uninstallCmd, pathCmd, versionCmd)

	// Interrupts cancel the running step; deferred cleanups still remove temporary files.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err == nil || errors.Is(err, installer.ErrCancelled) {
		return
	}
	logger.Fatal("%s", installer.Describe(err))
	os.Exit(1)
}
