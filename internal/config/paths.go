// Package config implements per-package configuration: YAML schemas,
// env-file persistence, validation and the post-save service restart.
package config

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/hatlabs/cockpit-apps-bridge/internal/models"
)

// Paths holds the filesystem roots for configuration data.
type Paths struct {
	// SchemaRoot contains <package>/config.yml schema files.
	SchemaRoot string
	// ConfigRoot contains <package>/env.defaults and <package>/env.
	ConfigRoot string
}

// configPackagePattern is stricter than Debian package naming: config
// directories only exist for packages shipped with a schema, and their
// names stay in this safe subset.
var configPackagePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// validatePackageName guards against path traversal; the package name
// becomes a directory component.
func validatePackageName(pkg string) error {
	if pkg == "" {
		return models.NewError(models.CodeInvalidInput, "package name cannot be empty")
	}
	if strings.Contains(pkg, "..") || strings.Contains(pkg, "/") || !configPackagePattern.MatchString(pkg) {
		return models.NewError(models.CodeInvalidInput, "Invalid package name: %s", pkg)
	}
	return nil
}

// SchemaPath returns the path of a package's config schema file.
func (p Paths) SchemaPath(pkg string) (string, error) {
	if err := validatePackageName(pkg); err != nil {
		return "", err
	}
	return filepath.Join(p.SchemaRoot, pkg, "config.yml"), nil
}

// DefaultsPath returns the path of a package's defaults file.
func (p Paths) DefaultsPath(pkg string) (string, error) {
	if err := validatePackageName(pkg); err != nil {
		return "", err
	}
	return filepath.Join(p.ConfigRoot, pkg, "env.defaults"), nil
}

// EnvPath returns the path of a package's user override file.
func (p Paths) EnvPath(pkg string) (string, error) {
	if err := validatePackageName(pkg); err != nil {
		return "", err
	}
	return filepath.Join(p.ConfigRoot, pkg, "env"), nil
}

// String implements fmt.Stringer for log output.
func (p Paths) String() string {
	return fmt.Sprintf("schemas=%s configs=%s", p.SchemaRoot, p.ConfigRoot)
}
