package apt

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var labelCaser = cases.Title(language.English)

// ParseTags splits a raw Tag field into individual debtag strings.
// Tags are comma-separated; surrounding whitespace is stripped and empty
// entries dropped.
func ParseTags(raw string) []string {
	if raw == "" {
		return nil
	}

	var tags []string
	for _, tag := range strings.Split(raw, ",") {
		tag = strings.TrimSpace(tag)
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// SplitTag splits a faceted tag ("facet::value") into its components.
// Returns ok=false for non-faceted tags or tags with an empty side.
func SplitTag(tag string) (facet, value string, ok bool) {
	i := strings.Index(tag, "::")
	if i < 0 {
		return "", "", false
	}

	facet, value = tag[:i], tag[i+2:]
	if facet == "" || value == "" {
		return "", "", false
	}
	return facet, value, true
}

// TagsByFacet returns all tag values of the package for the given facet,
// e.g. facet "category" over "category::navigation, role::container-app"
// yields ["navigation"].
func TagsByFacet(pkg *Package, facet string) []string {
	var values []string
	for _, tag := range ParseTags(pkg.Tags) {
		f, v, ok := SplitTag(tag)
		if ok && f == facet {
			values = append(values, v)
		}
	}
	return values
}

// HasTag reports whether the package carries the exact tag (case-sensitive).
func HasTag(pkg *Package, tag string) bool {
	for _, t := range ParseTags(pkg.Tags) {
		if t == tag {
			return true
		}
	}
	return false
}

// HasTagFacet reports whether the package has a tag with the given facet.
// An empty value matches any value of the facet.
func HasTagFacet(pkg *Package, facet, value string) bool {
	for _, tag := range ParseTags(pkg.Tags) {
		f, v, ok := SplitTag(tag)
		if !ok || f != facet {
			continue
		}
		if value == "" || v == value {
			return true
		}
	}
	return false
}

// DeriveCategoryLabel turns a category ID like "chart-plotters" into a
// display label like "Chart Plotters".
func DeriveCategoryLabel(categoryID string) string {
	label := strings.ReplaceAll(categoryID, "-", " ")
	label = strings.ReplaceAll(label, "_", " ")
	return labelCaser.String(label)
}
