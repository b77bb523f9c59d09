package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/hatlabs/cockpit-apps-bridge/internal/config"
	"github.com/hatlabs/cockpit-apps-bridge/internal/models"
)

// Config commands report failures in-band as {"success": false, "error":
// ...} with exit 0; only broken invocations (bad package name, bad JSON)
// become bridge errors.

func configPaths(s *settings) config.Paths {
	return config.Paths{SchemaRoot: s.SchemaRoot, ConfigRoot: s.ConfigRoot}
}

func newGetConfigSchemaCmd(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "get-config-schema PACKAGE",
		Short: "Get the configuration schema for a package",
		Args:  exactArgs(1, "Get-config-schema command requires a package name argument"),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := config.GetSchema(configPaths(s), args[0])
			if err != nil {
				return err
			}
			return emitJSON(cmd, result)
		},
	}
}

func newGetConfigCmd(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "get-config PACKAGE",
		Short: "Get current configuration values for a package",
		Args:  exactArgs(1, "Get-config command requires a package name argument"),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := config.GetConfig(configPaths(s), args[0])
			if err != nil {
				return err
			}
			return emitJSON(cmd, result)
		},
	}
}

func newSetConfigCmd(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "set-config PACKAGE JSON",
		Short: "Set configuration values for a package",
		Long: `Validates the given values against the package's schema, writes
them to the package's env file and restarts the package's service.
Values are passed as a JSON object of string keys and string values.`,
		Args: exactArgs(2, "Set-config command requires package name and config JSON arguments"),
		RunE: func(cmd *cobra.Command, args []string) error {
			var values map[string]string
			if err := json.Unmarshal([]byte(args[1]), &values); err != nil {
				return models.NewErrorWithDetails(models.CodeInvalidArguments,
					"Invalid config JSON", err.Error())
			}

			result, err := config.SetConfig(configPaths(s), args[0], values, nil)
			if err != nil {
				return err
			}
			return emitJSON(cmd, result)
		},
	}
}
