package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"cw-installer/internal/config"
)

// version is set at build time with -ldflags "-X cw-installer/cmd.version=...".
var version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the installer version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "cw-installer %s (installs %s)\n", version, config.PackageName)
	},
}
