package store

import (
	"github.com/sirupsen/logrus"

	"github.com/hatlabs/cockpit-apps-bridge/internal/apt"
)

// Matches reports whether a package satisfies ANY of the store's
// configured filter types (OR across types, OR within each list).
// With no configured check evaluated the answer is false.
func Matches(pkg *apt.Package, cfg *Config) bool {
	filters := &cfg.Filters

	if len(filters.IncludeOrigins) > 0 && matchesOrigin(pkg, filters.IncludeOrigins) {
		return true
	}
	if len(filters.IncludeSections) > 0 && matchesSection(pkg, filters.IncludeSections) {
		return true
	}
	if len(filters.IncludeTags) > 0 && matchesTags(pkg, filters.IncludeTags) {
		return true
	}
	if len(filters.IncludePackages) > 0 && contains(filters.IncludePackages, pkg.Name) {
		return true
	}
	return false
}

func matchesOrigin(pkg *apt.Package, origins []string) bool {
	repo := apt.PackageRepository(pkg)
	if repo == nil {
		return false
	}

	origin := repo.Origin
	if origin == "" {
		origin = repo.Label
	}
	return contains(origins, origin)
}

func matchesSection(pkg *apt.Package, sections []string) bool {
	if !pkg.HasCandidate() || pkg.Section == "" {
		return false
	}
	return contains(sections, pkg.Section)
}

func matchesTags(pkg *apt.Package, tags []string) bool {
	packageTags := apt.ParseTags(pkg.Tags)
	if len(packageTags) == 0 {
		return false
	}
	for _, want := range tags {
		for _, have := range packageTags {
			if want == have {
				return true
			}
		}
	}
	return false
}

func contains(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}

// PreFiltered narrows the package set by origin before the full filter
// runs. Stores without origin filters get the full set; the pass is a
// pure scan-reduction optimization and always safe to skip.
func PreFiltered(c *apt.Cache, cfg *Config) []*apt.Package {
	origins := cfg.Filters.IncludeOrigins
	if len(origins) == 0 {
		logrus.Debugf("No origin filter for store '%s', processing full cache", cfg.ID)
		return c.All()
	}

	originSet := make(map[string]bool, len(origins))
	for _, o := range origins {
		originSet[o] = true
	}

	var matched []*apt.Package
	for i := range c.Packages {
		pkg := &c.Packages[i]
		if origin := apt.PackageOrigin(pkg); origin != "" && originSet[origin] {
			matched = append(matched, pkg)
		}
	}

	logrus.Debugf("Origin pre-filtering for store '%s' reduced %d packages to %d",
		cfg.ID, c.Len(), len(matched))
	return matched
}

// FilterPackages returns every package in the cache matching the store.
func FilterPackages(c *apt.Cache, cfg *Config) []*apt.Package {
	var matched []*apt.Package
	for i := range c.Packages {
		if Matches(&c.Packages[i], cfg) {
			matched = append(matched, &c.Packages[i])
		}
	}
	logrus.Debugf("Store '%s' matched %d packages out of %d", cfg.ID, len(matched), c.Len())
	return matched
}

// CountMatching counts cache packages matching the store.
func CountMatching(c *apt.Cache, cfg *Config) int {
	count := 0
	for i := range c.Packages {
		if Matches(&c.Packages[i], cfg) {
			count++
		}
	}
	return count
}
