package cli

import (
	"github.com/spf13/cobra"

	"github.com/hatlabs/cockpit-apps-bridge/internal/apt"
)

func newInstallCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "install PACKAGE",
		Short: "Install a package with streamed progress",
		Long: `Installs a package via apt-get, emitting progress records as JSON
lines on stdout while the operation runs, followed by a final success
record.`,
		Args: exactArgs(1, "Install command requires a package name argument"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return apt.Install(args[0], cmd.OutOrStdout())
		},
	}
}

func newRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove PACKAGE",
		Short: "Remove a package with streamed progress",
		Args:  exactArgs(1, "Remove command requires a package name argument"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return apt.Remove(args[0], cmd.OutOrStdout())
		},
	}
}
