package apt

import (
	"fmt"
	"sort"
	"strings"
)

// Repository identifies one package source by its Origin, Label and Suite
// fields. Origin plus suite (or label plus suite when origin is empty)
// uniquely identify a repository.
type Repository struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Origin       string `json:"origin"`
	Label        string `json:"label"`
	Suite        string `json:"suite"`
	PackageCount int    `json:"package_count"`
}

// PackageOrigin returns the origin a package is matched by: the Origin
// field, falling back to Label when Origin is empty. Empty string when the
// package carries neither.
func PackageOrigin(pkg *Package) string {
	if pkg.Origin != "" {
		return pkg.Origin
	}
	return pkg.Label
}

// PackageRepository resolves the repository a package's candidate came
// from, or nil when the identity is incomplete.
func PackageRepository(pkg *Package) *Repository {
	origin := PackageOrigin(pkg)
	if origin == "" || pkg.Suite == "" {
		return nil
	}

	name := pkg.Origin
	if name == "" {
		name = pkg.Label
	}

	return &Repository{
		ID:           fmt.Sprintf("%s:%s", origin, pkg.Suite),
		Name:         name,
		Origin:       pkg.Origin,
		Label:        pkg.Label,
		Suite:        pkg.Suite,
		PackageCount: 1,
	}
}

// MatchesRepository reports whether a package belongs to the repository
// with the given ID ("{origin}:{suite}").
func MatchesRepository(pkg *Package, repositoryID string) bool {
	repo := PackageRepository(pkg)
	return repo != nil && repo.ID == repositoryID
}

// ParseRepositories collects the unique repositories present in the cache,
// with per-repository package counts, sorted case-insensitively by name.
func ParseRepositories(c *Cache) []Repository {
	byID := make(map[string]*Repository)
	var order []string

	for i := range c.Packages {
		repo := PackageRepository(&c.Packages[i])
		if repo == nil {
			continue
		}

		if existing, ok := byID[repo.ID]; ok {
			existing.PackageCount++
			continue
		}
		byID[repo.ID] = repo
		order = append(order, repo.ID)
	}

	result := make([]Repository, 0, len(order))
	for _, id := range order {
		result = append(result, *byID[id])
	}
	sort.SliceStable(result, func(i, j int) bool {
		return strings.ToLower(result[i].Name) < strings.ToLower(result[j].Name)
	})
	return result
}
