package cmd

import (
	"github.com/spf13/cobra"

	"cw-installer/internal/installer"
)

var (
	assumeYes    bool
	removeConfig bool
)

// uninstallCmd removes commands-wrapper and the PATH changes made for it.
var uninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Remove commands-wrapper and its PATH entries",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSettings()
		if err != nil {
			return err
		}
		if assumeYes {
			s.UninstallForce = true
		}
		if removeConfig {
			s.RemoveConfig = true
		}
		_, err = installer.Uninstall(cmd.Context(), installer.HostDeps(), s)
		return err
	},
}

func init() {
	uninstallCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Do not ask for confirmation")
	uninstallCmd.Flags().BoolVar(&removeConfig, "remove-config", false, "Also delete the user configuration directory")
}
