package models

// PackageSummary is the compact package representation used by list views.
type PackageSummary struct {
	Name      string `json:"name"`
	Summary   string `json:"summary"`
	Version   string `json:"version"`
	Installed bool   `json:"installed"`
	Section   string `json:"section"`
}

// Dependency is one alternative of a dependency OR-group
// (e.g. "vim | emacs" yields two entries).
type Dependency struct {
	Name     string `json:"name"`
	Relation string `json:"relation"`
	Version  string `json:"version"`
}

// PackageDetails is the full package representation for detail views.
// Sizes are in bytes.
type PackageDetails struct {
	Name                string         `json:"name"`
	Summary             string         `json:"summary"`
	Description         string         `json:"description"`
	Section             string         `json:"section"`
	Installed           bool           `json:"installed"`
	InstalledVersion    *string        `json:"installedVersion"`
	CandidateVersion    *string        `json:"candidateVersion"`
	Priority            string         `json:"priority"`
	Homepage            string         `json:"homepage"`
	Maintainer          string         `json:"maintainer"`
	Size                int64          `json:"size"`
	InstalledSize       int64          `json:"installedSize"`
	Dependencies        [][]Dependency `json:"dependencies"`
	ReverseDependencies []string       `json:"reverseDependencies"`
}

// Category is one auto-discovered category with all three count states, so
// the frontend can switch views without reloading.
type Category struct {
	ID             string  `json:"id"`
	Label          string  `json:"label"`
	Icon           *string `json:"icon"`
	Description    *string `json:"description"`
	Count          int     `json:"count"`
	CountAll       int     `json:"count_all"`
	CountAvailable int     `json:"count_available"`
	CountInstalled int     `json:"count_installed"`
}

// FilterResult is the filter-packages response envelope.
type FilterResult struct {
	Packages       []PackageSummary `json:"packages"`
	TotalCount     int              `json:"total_count"`
	AppliedFilters []string         `json:"applied_filters"`
	Limit          int              `json:"limit"`
	Limited        bool             `json:"limited"`
}

// Progress is one streamed progress record during install/remove.
type Progress struct {
	Type       string `json:"type"`
	Percentage int    `json:"percentage"`
	Message    string `json:"message"`
}

// ActionResult is the final record of a successful install/remove.
type ActionResult struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	PackageName string `json:"package_name"`
}
