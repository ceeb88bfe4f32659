package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"cw-installer/internal/installer"
)

// pathCmd groups the PATH maintenance commands. They work without reinstalling.
var pathCmd = &cobra.Command{
	Use:   "path",
	Short: "Inspect or repair the PATH entries for commands-wrapper",
}

var pathEnsureCmd = &cobra.Command{
	Use:   "ensure [DIR]",
	Short: "Add DIR (default: the installed scripts directory) to PATH for new shells",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rep, err := installer.EnsurePath(installer.HostDeps(), firstArg(args))
		if err != nil {
			return err
		}
		if rep.Failed() {
			return errors.New("PATH could not be updated in every location")
		}
		return nil
	},
}

var pathRemoveCmd = &cobra.Command{
	Use:   "remove [DIR]",
	Short: "Remove the managed PATH blocks and user PATH entry",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rep, err := installer.RemovePath(installer.HostDeps(), firstArg(args))
		if err != nil {
			return err
		}
		if rep.Failed() {
			return errors.New("PATH entries could not be removed from every location")
		}
		return nil
	},
}

var pathStatusCmd = &cobra.Command{
	Use:   "status [DIR]",
	Short: "Show where DIR is configured on PATH",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, st, err := installer.PathStatus(installer.HostDeps(), firstArg(args))
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "directory:       %s\n", dir)
		fmt.Fprintf(out, "current session: %t\n", st.InSession)
		if len(st.Locations) == 0 {
			fmt.Fprintln(out, "persisted in:    (nowhere)")
		}
		for _, loc := range st.Locations {
			fmt.Fprintf(out, "persisted in:    %s\n", loc)
		}
		return nil
	},
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func init() {
	pathCmd.AddCommand(pathEnsureCmd, pathRemoveCmd, pathStatusCmd)
}
