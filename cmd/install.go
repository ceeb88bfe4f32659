package cmd

import (
	"github.com/spf13/cobra"

	"cw-installer/internal/installer"
)

var (
	sourceDir      string
	forceReinstall bool
	noPreview      bool
)

// installCmd installs or repairs commands-wrapper for the current user.
var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Install commands-wrapper and put its commands on PATH",
	Long: `Install commands-wrapper from a local source tree or the release archive,
sync its command wrappers, make them reachable on PATH and create a starter
configuration. Running it again repairs an existing installation.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSettings()
		if err != nil {
			return err
		}
		if sourceDir != "" {
			s.SourceDir = sourceDir
		}
		if forceReinstall {
			s.ForceReinstall = true
		}
		if noPreview {
			s.Preview = false
		}
		_, err = installer.Install(cmd.Context(), installer.HostDeps(), s)
		return err
	},
}

func init() {
	installCmd.Flags().StringVar(&sourceDir, "source", "", "Install from this source tree instead of auto-detecting")
	installCmd.Flags().BoolVar(&forceReinstall, "force-reinstall", false, "Reinstall even when the installed version is current")
	installCmd.Flags().BoolVar(&noPreview, "no-preview", false, "Do not launch commands-wrapper after installing")
}
