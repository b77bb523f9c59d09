package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hatlabs/cockpit-apps-bridge/internal/apt"
	"github.com/hatlabs/cockpit-apps-bridge/internal/models"
	"github.com/hatlabs/cockpit-apps-bridge/internal/store"
)

// loadCache opens the package database for one invocation.
func loadCache(s *settings) (*apt.Cache, error) {
	cache, err := apt.LoadCache(s.AptLists, s.DpkgStatus)
	if err != nil {
		return nil, models.CacheErrorf(err.Error(), "Failed to open APT cache")
	}
	return cache, nil
}

// requireStore resolves a store ID or fails with STORE_NOT_FOUND.
func requireStore(stores []store.Config, id string) (*store.Config, error) {
	cfg := store.Find(stores, id)
	if cfg == nil {
		return nil, models.NewError(models.CodeStoreNotFound, "Store '%s' not found", id)
	}
	return cfg, nil
}

func newListStoresCmd(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "list-stores",
		Short: "List available app stores",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stores := store.LoadStores(s.StoresDir)
			if stores == nil {
				stores = []store.Config{}
			}
			return emitJSON(cmd, stores)
		},
	}
}

// storeInfo is the store header of the get-store-data response.
type storeInfo struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Icon        *string `json:"icon"`
	Banner      *string `json:"banner"`
}

// storeData is the consolidated get-store-data response: one call instead
// of list-stores + filter-packages + list-categories.
type storeData struct {
	Store      storeInfo               `json:"store"`
	Packages   []models.PackageSummary `json:"packages"`
	Categories []models.Category       `json:"categories"`
}

func newGetStoreDataCmd(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "get-store-data STORE_ID",
		Short: "Get consolidated store data (config + packages + categories)",
		Args:  exactArgs(1, "Get-store-data command requires a store ID argument"),
		RunE: func(cmd *cobra.Command, args []string) error {
			storeID := strings.TrimSpace(args[0])
			if storeID == "" {
				return models.NewError(models.CodeInvalidStoreID, "Store ID cannot be empty")
			}

			cfg, err := requireStore(store.LoadStores(s.StoresDir), storeID)
			if err != nil {
				return err
			}
			cache, err := loadCache(s)
			if err != nil {
				return err
			}

			var matched []*apt.Package
			for _, pkg := range store.PreFiltered(cache, cfg) {
				if pkg.HasCandidate() && store.Matches(pkg, cfg) {
					matched = append(matched, pkg)
				}
			}

			packages := make([]models.PackageSummary, 0, len(matched))
			for _, pkg := range matched {
				packages = append(packages, summarize(pkg))
			}

			categories := store.AggregateCategories(matched, cfg.CategoryMetadata)
			if categories == nil {
				categories = []models.Category{}
			}

			return emitJSON(cmd, storeData{
				Store: storeInfo{
					ID:          cfg.ID,
					Name:        cfg.Name,
					Description: cfg.Description,
					Icon:        cfg.Icon,
					Banner:      cfg.Banner,
				},
				Packages:   packages,
				Categories: categories,
			})
		},
	}
}

func newListCategoriesCmd(s *settings) *cobra.Command {
	var storeID string

	cmd := &cobra.Command{
		Use:   "list-categories",
		Short: "List categories auto-discovered from package tags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var cfg *store.Config
			if storeID != "" {
				var err error
				cfg, err = requireStore(store.LoadStores(s.StoresDir), storeID)
				if err != nil {
					return err
				}
			}

			cache, err := loadCache(s)
			if err != nil {
				return err
			}

			var packages []*apt.Package
			if cfg != nil {
				for _, pkg := range cache.All() {
					if store.Matches(pkg, cfg) {
						packages = append(packages, pkg)
					}
				}
			} else {
				packages = cache.All()
			}

			var metadata []store.CategoryMetadata
			if cfg != nil {
				metadata = cfg.CategoryMetadata
			}

			categories := store.AggregateCategories(packages, metadata)
			if categories == nil {
				categories = []models.Category{}
			}
			return emitJSON(cmd, categories)
		},
	}

	cmd.Flags().StringVar(&storeID, "store", "", "Restrict to packages of this store")
	return cmd
}

func newListPackagesByCategoryCmd(s *settings) *cobra.Command {
	var storeID string

	cmd := &cobra.Command{
		Use:   "list-packages-by-category CATEGORY",
		Short: "List all packages in a category",
		Args:  exactArgs(1, "List-packages-by-category command requires a category ID argument"),
		RunE: func(cmd *cobra.Command, args []string) error {
			categoryID := strings.TrimSpace(args[0])
			if categoryID == "" {
				return models.NewError(models.CodeInvalidCategory, "Category ID cannot be empty")
			}

			var cfg *store.Config
			if storeID != "" {
				var err error
				cfg, err = requireStore(store.LoadStores(s.StoresDir), storeID)
				if err != nil {
					return err
				}
			}

			cache, err := loadCache(s)
			if err != nil {
				return err
			}

			// Cache iteration is in name order, so the output is sorted.
			packages := []models.PackageSummary{}
			for _, pkg := range cache.All() {
				if cfg != nil && !store.Matches(pkg, cfg) {
					continue
				}
				if !pkg.HasCandidate() {
					continue
				}
				if apt.HasTagFacet(pkg, "category", categoryID) {
					packages = append(packages, summarize(pkg))
				}
			}
			return emitJSON(cmd, packages)
		},
	}

	cmd.Flags().StringVar(&storeID, "store", "", "Restrict to packages of this store")
	return cmd
}

func newFilterPackagesCmd(s *settings) *cobra.Command {
	var (
		storeID      string
		repositoryID string
		categoryID   string
		tab          string
		search       string
		limit        int
	)

	cmd := &cobra.Command{
		Use:   "filter-packages",
		Short: "Filter packages by store, repo, category, tab and search",
		Long: `Filters packages with a cascade: store, then repository, then
category, then tab (installed|upgradable), then search query. Each stage
narrows the previous one; all stages are optional.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 0 {
				return models.NewError(models.CodeInvalidArguments, "--limit must be non-negative")
			}
			if tab != "" && tab != "installed" && tab != "upgradable" {
				return models.NewErrorWithDetails(models.CodeCacheError,
					fmt.Sprintf("Invalid tab filter: %s", tab),
					"Tab must be 'installed' or 'upgradable'")
			}

			var cfg *store.Config
			if storeID != "" {
				cfg = store.Find(store.LoadStores(s.StoresDir), storeID)
				if cfg == nil {
					return models.CacheErrorf(
						fmt.Sprintf("No store configuration found with id '%s'", storeID),
						"Store not found: %s", storeID)
				}
			}

			cache, err := loadCache(s)
			if err != nil {
				return err
			}

			query := strings.ToLower(search)

			var matched []*apt.Package
			for _, pkg := range cache.All() {
				if !pkg.HasCandidate() {
					continue
				}
				if cfg != nil && !store.Matches(pkg, cfg) {
					continue
				}
				if repositoryID != "" && !apt.MatchesRepository(pkg, repositoryID) {
					continue
				}
				if categoryID != "" && !apt.HasTagFacet(pkg, "category", categoryID) {
					continue
				}
				if tab == "installed" && !pkg.Installed {
					continue
				}
				if tab == "upgradable" && !pkg.Upgradable {
					continue
				}
				if query != "" &&
					!strings.Contains(strings.ToLower(pkg.Name), query) &&
					!strings.Contains(strings.ToLower(pkg.Summary), query) {
					continue
				}
				matched = append(matched, pkg)
			}

			appliedFilters := []string{}
			if storeID != "" {
				appliedFilters = append(appliedFilters, "store="+storeID)
			}
			if repositoryID != "" {
				appliedFilters = append(appliedFilters, "repository="+repositoryID)
			}
			if categoryID != "" {
				appliedFilters = append(appliedFilters, "category="+categoryID)
			}
			if tab != "" {
				appliedFilters = append(appliedFilters, "tab="+tab)
			}
			if search != "" {
				appliedFilters = append(appliedFilters, "search="+search)
			}

			totalCount := len(matched)
			if len(matched) > limit {
				matched = matched[:limit]
			}
			packages := make([]models.PackageSummary, 0, len(matched))
			for _, pkg := range matched {
				packages = append(packages, summarize(pkg))
			}

			return emitJSON(cmd, models.FilterResult{
				Packages:       packages,
				TotalCount:     totalCount,
				AppliedFilters: appliedFilters,
				Limit:          limit,
				Limited:        totalCount > limit,
			})
		},
	}

	cmd.Flags().StringVar(&storeID, "store", "", "Restrict to packages of this store")
	cmd.Flags().StringVar(&repositoryID, "repo", "", "Restrict to a repository ({origin}:{suite})")
	cmd.Flags().StringVar(&categoryID, "category", "", "Restrict to a category")
	cmd.Flags().StringVar(&tab, "tab", "", "Restrict to 'installed' or 'upgradable' packages")
	cmd.Flags().StringVar(&search, "search", "", "Search in package name and summary")
	cmd.Flags().IntVar(&limit, "limit", 1000, "Maximum number of packages to return")
	return cmd
}

func newListRepositoriesCmd(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "list-repositories",
		Short: "List the configured package repositories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := loadCache(s)
			if err != nil {
				return err
			}

			repositories := apt.ParseRepositories(cache)
			if repositories == nil {
				repositories = []apt.Repository{}
			}
			return emitJSON(cmd, repositories)
		},
	}
}

func newPackageDetailsCmd(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "package-details PACKAGE",
		Short: "Show detailed information about a package",
		Args:  exactArgs(1, "Package-details command requires a package name argument"),
		RunE: func(cmd *cobra.Command, args []string) error {
			packageName := args[0]
			if err := apt.ValidatePackageName(packageName); err != nil {
				return err
			}

			cache, err := loadCache(s)
			if err != nil {
				return err
			}

			pkg := cache.Get(packageName)
			if pkg == nil {
				return models.PackageNotFound(packageName)
			}

			d := detail(pkg)
			if deps := apt.ParseDepends(pkg.Depends); deps != nil {
				d.Dependencies = deps
			}

			for _, other := range cache.All() {
				if other.Name == pkg.Name || other.Depends == "" {
					continue
				}
				if dependsOn(other, pkg.Name) {
					d.ReverseDependencies = append(d.ReverseDependencies, other.Name)
				}
			}

			return emitJSON(cmd, d)
		},
	}
}

// dependsOn reports whether pkg lists name in any of its dependency
// OR-groups.
func dependsOn(pkg *apt.Package, name string) bool {
	for _, group := range apt.ParseDepends(pkg.Depends) {
		for _, dep := range group {
			if dep.Name == name {
				return true
			}
		}
	}
	return false
}
