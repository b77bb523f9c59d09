package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// SchemaResult is the get-config-schema response. Failures are reported
// in-band via Success/Error; the command itself still exits 0.
type SchemaResult struct {
	Success bool                   `json:"success"`
	Schema  map[string]interface{} `json:"schema,omitempty"`
	Error   string                 `json:"error,omitempty"`
}

// ConfigResult is the get-config response.
type ConfigResult struct {
	Success bool              `json:"success"`
	Config  map[string]string `json:"config,omitempty"`
	Error   string            `json:"error,omitempty"`
}

// SetResult is the set-config response. Warning is set when the config
// was persisted but the follow-up service restart failed.
type SetResult struct {
	Success bool   `json:"success"`
	Warning string `json:"warning,omitempty"`
	Error   string `json:"error,omitempty"`
}

// GetSchema loads a package's configuration schema. Package-name
// validation failures are returned as an error (they indicate a broken
// caller); everything else is an in-band failure.
func GetSchema(paths Paths, pkg string) (*SchemaResult, error) {
	schemaPath, err := paths.SchemaPath(pkg)
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(schemaPath); err != nil {
		return &SchemaResult{
			Success: false,
			Error:   fmt.Sprintf("Config schema not found for package '%s' at %s", pkg, schemaPath),
		}, nil
	}

	schema, err := LoadRawSchema(schemaPath)
	if err != nil {
		return &SchemaResult{Success: false, Error: err.Error()}, nil
	}
	return &SchemaResult{Success: true, Schema: schema}, nil
}

// GetConfig returns the merged configuration for a package: env.defaults
// overlaid by the user env file, key-wise.
func GetConfig(paths Paths, pkg string) (*ConfigResult, error) {
	defaultsPath, err := paths.DefaultsPath(pkg)
	if err != nil {
		return nil, err
	}
	envPath, err := paths.EnvPath(pkg)
	if err != nil {
		return nil, err
	}

	defaults, err := ParseEnvFile(defaultsPath)
	if err != nil {
		return &ConfigResult{Success: false, Error: fmt.Sprintf("Failed to read defaults file: %v", err)}, nil
	}
	user, err := ParseEnvFile(envPath)
	if err != nil {
		return &ConfigResult{Success: false, Error: fmt.Sprintf("Failed to read config file: %v", err)}, nil
	}

	return &ConfigResult{Success: true, Config: MergeConfig(defaults, user)}, nil
}

// SetConfig validates the submitted values against the package's schema,
// persists them atomically, and restarts the package's service. A failed
// restart degrades to a warning: config persistence is the primary
// success criterion.
func SetConfig(paths Paths, pkg string, values map[string]string, restarter Restarter) (*SetResult, error) {
	schemaPath, err := paths.SchemaPath(pkg)
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(schemaPath); err != nil {
		return &SetResult{
			Success: false,
			Error:   fmt.Sprintf("Config schema not found for package '%s' at %s", pkg, schemaPath),
		}, nil
	}

	schema, err := LoadSchema(schemaPath)
	if err != nil {
		return &SetResult{Success: false, Error: err.Error()}, nil
	}

	if unknown := schema.UnknownKeys(values); len(unknown) > 0 {
		return &SetResult{
			Success: false,
			Error:   fmt.Sprintf("Unknown configuration field(s): %s", strings.Join(unknown, ", ")),
		}, nil
	}
	if missing := schema.MissingRequired(values); len(missing) > 0 {
		return &SetResult{
			Success: false,
			Error:   fmt.Sprintf("Missing required field(s): %s", strings.Join(missing, ", ")),
		}, nil
	}
	if problems := schema.FieldProblems(values); len(problems) > 0 {
		return &SetResult{
			Success: false,
			Error:   fmt.Sprintf("Validation failed: %s", strings.Join(problems, "; ")),
		}, nil
	}

	envPath, err := paths.EnvPath(pkg)
	if err != nil {
		return nil, err
	}
	if err := WriteEnvFile(envPath, values); err != nil {
		return &SetResult{Success: false, Error: fmt.Sprintf("Failed to write config file: %v", err)}, nil
	}

	if restarter == nil {
		restarter = SystemdRestarter{}
	}
	unit := pkg + ".service"
	if err := restarter.Restart(unit); err != nil {
		logrus.Warnf("Failed to restart service %s: %v", unit, err)
		return &SetResult{
			Success: true,
			Warning: fmt.Sprintf("Configuration saved but service restart failed: %v", err),
		}, nil
	}

	return &SetResult{Success: true}, nil
}
