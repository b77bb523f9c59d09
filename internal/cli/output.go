package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hatlabs/cockpit-apps-bridge/internal/apt"
	"github.com/hatlabs/cockpit-apps-bridge/internal/models"
)

// emitJSON writes the command result as pretty-printed JSON on stdout.
func emitJSON(cmd *cobra.Command, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return models.Internal(err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

// summarize builds the list-view representation of a package.
func summarize(pkg *apt.Package) models.PackageSummary {
	version := pkg.Version
	section := pkg.Section
	if !pkg.HasCandidate() {
		version = "unknown"
	}
	if section == "" {
		section = "unknown"
	}

	return models.PackageSummary{
		Name:      pkg.Name,
		Summary:   pkg.Summary,
		Version:   version,
		Installed: pkg.Installed,
		Section:   section,
	}
}

// detail builds the detail-view representation of a package. Dependencies
// and reverse dependencies are filled in by the command handler.
func detail(pkg *apt.Package) models.PackageDetails {
	d := models.PackageDetails{
		Name:                pkg.Name,
		Summary:             pkg.Summary,
		Description:         pkg.Description,
		Section:             pkg.Section,
		Installed:           pkg.Installed,
		Priority:            pkg.Priority,
		Homepage:            pkg.Homepage,
		Maintainer:          pkg.Maintainer,
		Size:                pkg.Size,
		InstalledSize:       pkg.InstalledSize,
		Dependencies:        [][]models.Dependency{},
		ReverseDependencies: []string{},
	}

	if d.Section == "" {
		d.Section = "unknown"
	}
	if d.Priority == "" {
		d.Priority = "optional"
	}
	if pkg.HasCandidate() {
		v := pkg.Version
		d.CandidateVersion = &v
	}
	if pkg.Installed {
		v := pkg.InstalledVersion
		d.InstalledVersion = &v
	}
	return d
}
