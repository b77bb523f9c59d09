// Package cli wires the bridge commands. Every command prints its result
// as JSON on stdout; logs and errors go to stderr so Cockpit can parse
// stdout unconditionally.
package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hatlabs/cockpit-apps-bridge/internal/models"
)

// Version is the bridge version reported by the version command.
const Version = "1.0.0"

// Default locations, overridable per flag or COCKPIT_APPS_* environment.
const (
	defaultStoresDir  = "/etc/container-apps/stores"
	defaultSchemaRoot = "/var/lib/container-apps"
	defaultConfigRoot = "/etc/container-apps"
	defaultAptLists   = "/var/lib/apt/lists"
	defaultDpkgStatus = "/var/lib/dpkg/status"
)

// settings holds the resolved runtime configuration, shared by all
// subcommands of one root command instance.
type settings struct {
	StoresDir  string
	SchemaRoot string
	ConfigRoot string
	AptLists   string
	DpkgStatus string
}

// NewRootCmd creates the root command with all subcommands attached.
func NewRootCmd() *cobra.Command {
	s := &settings{}
	v := viper.New()

	rootCmd := &cobra.Command{
		Use:   "cockpit-apps-bridge",
		Short: "Backend bridge for the Cockpit container apps UI",
		Long: `Cockpit-apps-bridge exposes the Debian package database to the
Cockpit container apps frontend: curated package stores, category
browsing, package install/remove with streamed progress, and per-package
configuration.

All results are JSON on stdout; errors are JSON on stderr.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Setup logging
			verbose, _ := cmd.Flags().GetBool("verbose")
			if verbose {
				logrus.SetLevel(logrus.DebugLevel)
			} else {
				logrus.SetLevel(logrus.WarnLevel)
			}

			s.StoresDir = v.GetString("stores-dir")
			s.SchemaRoot = v.GetString("schema-root")
			s.ConfigRoot = v.GetString("config-root")
			s.AptLists = v.GetString("apt-lists")
			s.DpkgStatus = v.GetString("dpkg-status")
		},
	}

	// Global flags
	pf := rootCmd.PersistentFlags()
	pf.BoolP("verbose", "v", false, "Enable verbose logging")
	pf.String("stores-dir", defaultStoresDir, "Directory with store definition YAML files")
	pf.String("schema-root", defaultSchemaRoot, "Root directory of per-package config schemas")
	pf.String("config-root", defaultConfigRoot, "Root directory of per-package env files")
	pf.String("apt-lists", defaultAptLists, "APT lists directory with package indexes")
	pf.String("dpkg-status", defaultDpkgStatus, "dpkg status file")

	v.SetEnvPrefix("COCKPIT_APPS")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	for _, name := range []string{"stores-dir", "schema-root", "config-root", "apt-lists", "dpkg-status"} {
		if err := v.BindPFlag(name, pf.Lookup(name)); err != nil {
			panic(err)
		}
	}

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return models.NewError(models.CodeInvalidArguments, "%v", err)
	})

	// Add subcommands
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newListStoresCmd(s))
	rootCmd.AddCommand(newGetStoreDataCmd(s))
	rootCmd.AddCommand(newListCategoriesCmd(s))
	rootCmd.AddCommand(newListPackagesByCategoryCmd(s))
	rootCmd.AddCommand(newFilterPackagesCmd(s))
	rootCmd.AddCommand(newListRepositoriesCmd(s))
	rootCmd.AddCommand(newPackageDetailsCmd(s))
	rootCmd.AddCommand(newInstallCmd())
	rootCmd.AddCommand(newRemoveCmd())
	rootCmd.AddCommand(newGetConfigSchemaCmd(s))
	rootCmd.AddCommand(newGetConfigCmd(s))
	rootCmd.AddCommand(newSetConfigCmd(s))

	return rootCmd
}

// Execute runs the root command and maps the outcome to an exit code:
// 0 success, 1 expected bridge error, 2 unexpected error. Errors are
// printed as JSON on stderr either way.
func Execute() int {
	err := NewRootCmd().Execute()
	if err == nil {
		return 0
	}

	var bridgeErr *models.BridgeError
	if !errors.As(err, &bridgeErr) {
		// Cobra reports unknown subcommands as plain errors.
		if strings.HasPrefix(err.Error(), "unknown command") {
			bridgeErr = models.NewError(models.CodeUnknownCommand, "%v", err)
		} else {
			bridgeErr = models.Internal(err)
		}
	}

	fmt.Fprintln(os.Stderr, bridgeErr.JSON())
	if bridgeErr.Code == models.CodeInternalError {
		return 2
	}
	return 1
}

// exactArgs is cobra.ExactArgs with the bridge's error contract.
func exactArgs(n int, message string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return models.NewError(models.CodeInvalidArguments, "%s", message)
		}
		return nil
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return emitJSON(cmd, map[string]string{
				"version": Version,
				"name":    "cockpit-apps-bridge",
			})
		},
	}
}
