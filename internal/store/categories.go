package store

import (
	"sort"

	"github.com/hatlabs/cockpit-apps-bridge/internal/apt"
	"github.com/hatlabs/cockpit-apps-bridge/internal/models"
)

// AggregateCategories discovers categories from the packages' category::
// tags and accumulates all three count states per category, so a caller
// can switch between all/available/installed views without recomputing.
// metadata (may be nil) overlays labels, icons and descriptions.
// The result is sorted by label; ties keep discovery order.
func AggregateCategories(packages []*apt.Package, metadata []CategoryMetadata) []models.Category {
	countsAll := make(map[string]int)
	countsAvailable := make(map[string]int)
	countsInstalled := make(map[string]int)
	var order []string

	for _, pkg := range packages {
		if !pkg.HasCandidate() {
			continue
		}

		for _, categoryID := range apt.TagsByFacet(pkg, "category") {
			if _, seen := countsAll[categoryID]; !seen {
				order = append(order, categoryID)
			}
			countsAll[categoryID]++
			if pkg.Installed {
				countsInstalled[categoryID]++
			} else {
				countsAvailable[categoryID]++
			}
		}
	}

	metadataByID := make(map[string]*CategoryMetadata, len(metadata))
	for i := range metadata {
		metadataByID[metadata[i].ID] = &metadata[i]
	}

	categories := make([]models.Category, 0, len(order))
	for _, id := range order {
		category := models.Category{
			ID:             id,
			Label:          apt.DeriveCategoryLabel(id),
			Count:          countsAll[id],
			CountAll:       countsAll[id],
			CountAvailable: countsAvailable[id],
			CountInstalled: countsInstalled[id],
		}
		if meta := metadataByID[id]; meta != nil {
			category.Label = meta.Label
			category.Icon = meta.Icon
			category.Description = meta.Description
		}
		categories = append(categories, category)
	}

	sort.SliceStable(categories, func(i, j int) bool {
		return categories[i].Label < categories[j].Label
	})
	return categories
}
