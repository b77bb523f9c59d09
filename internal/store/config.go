// Package store implements curated package stores: YAML store definitions,
// the OR-combined filter cascade, and category aggregation.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Filter holds the filter criteria of a store. Filter types combine with
// OR, values within a type combine with OR. At least one list must be
// non-empty.
type Filter struct {
	IncludeOrigins  []string `yaml:"include_origins" json:"include_origins"`
	IncludeSections []string `yaml:"include_sections" json:"include_sections"`
	IncludeTags     []string `yaml:"include_tags" json:"include_tags"`
	IncludePackages []string `yaml:"include_packages" json:"include_packages"`
}

func (f *Filter) validate() error {
	if len(f.IncludeOrigins) == 0 && len(f.IncludeSections) == 0 &&
		len(f.IncludeTags) == 0 && len(f.IncludePackages) == 0 {
		return fmt.Errorf("at least one filter type must be specified")
	}
	return nil
}

// normalize replaces nil lists with empty ones so the JSON output always
// carries arrays.
func (f *Filter) normalize() {
	if f.IncludeOrigins == nil {
		f.IncludeOrigins = []string{}
	}
	if f.IncludeSections == nil {
		f.IncludeSections = []string{}
	}
	if f.IncludeTags == nil {
		f.IncludeTags = []string{}
	}
	if f.IncludePackages == nil {
		f.IncludePackages = []string{}
	}
}

// CategoryMetadata enhances the display of an auto-discovered category.
type CategoryMetadata struct {
	ID          string  `yaml:"id" json:"id"`
	Label       string  `yaml:"label" json:"label"`
	Icon        *string `yaml:"icon" json:"icon"`
	Description *string `yaml:"description" json:"description"`
}

// Config is one store definition, loaded from a YAML file and immutable
// afterwards.
type Config struct {
	ID               string             `yaml:"id" json:"id"`
	Name             string             `yaml:"name" json:"name"`
	Description      string             `yaml:"description" json:"description"`
	Icon             *string            `yaml:"icon" json:"icon"`
	Banner           *string            `yaml:"banner" json:"banner"`
	Filters          Filter             `yaml:"filters" json:"filters"`
	CategoryMetadata []CategoryMetadata `yaml:"category_metadata" json:"category_metadata"`
}

var storeIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

func (c *Config) validate() error {
	if c.ID == "" || !storeIDPattern.MatchString(c.ID) {
		return fmt.Errorf("invalid store ID: %q", c.ID)
	}
	// An ID of separators only is as useless as an empty one.
	if strings.Trim(c.ID, "-_") == "" {
		return fmt.Errorf("invalid store ID: %q", c.ID)
	}
	return c.Filters.validate()
}

// requiredStoreFields must be present in the YAML document, even if empty.
var requiredStoreFields = []string{"id", "name", "description", "filters"}

// loadConfig reads and validates a single store definition. Returns nil
// (not an error) for files that should be skipped.
func loadConfig(path string) *Config {
	data, err := os.ReadFile(path)
	if err != nil {
		logrus.Warnf("Failed to read store config %s: %v", filepath.Base(path), err)
		return nil
	}

	// Presence check first, so a missing key is reported as such rather
	// than as a zero value.
	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		logrus.Warnf("Failed to parse YAML in %s: %v", filepath.Base(path), err)
		return nil
	}
	if raw == nil {
		logrus.Warnf("Store config %s: root element must be a mapping", filepath.Base(path))
		return nil
	}

	var missing []string
	for _, field := range requiredStoreFields {
		if _, ok := raw[field]; !ok {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		logrus.Warnf("Store config %s missing required fields: %s",
			filepath.Base(path), strings.Join(missing, ", "))
		return nil
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		logrus.Warnf("Invalid store config %s: %v", filepath.Base(path), err)
		return nil
	}

	cfg.CategoryMetadata = cleanCategoryMetadata(cfg.CategoryMetadata)
	cfg.Filters.normalize()

	if err := cfg.validate(); err != nil {
		logrus.Warnf("Invalid store config %s: %v", filepath.Base(path), err)
		return nil
	}
	return &cfg
}

// cleanCategoryMetadata drops entries missing their required id or label.
func cleanCategoryMetadata(entries []CategoryMetadata) []CategoryMetadata {
	var out []CategoryMetadata
	for _, entry := range entries {
		if entry.ID == "" || entry.Label == "" {
			logrus.Warnf("Skipping invalid category metadata (missing required fields): %+v", entry)
			continue
		}
		out = append(out, entry)
	}
	return out
}

// LoadStores loads every store definition from the given directory.
// A missing directory means vanilla mode and yields an empty list.
// Malformed files and duplicate IDs are skipped with a warning.
func LoadStores(dir string) []Config {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			logrus.Debugf("Store config directory %s does not exist (vanilla mode)", dir)
		} else {
			logrus.Warnf("Cannot access store config directory %s: %v", dir, err)
		}
		return nil
	}
	if !info.IsDir() {
		logrus.Warnf("Store config path %s is not a directory", dir)
		return nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		logrus.Warnf("Failed to list store config directory %s: %v", dir, err)
		return nil
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext == ".yaml" || ext == ".yml" {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	var stores []Config
	seen := make(map[string]bool)

	for _, name := range files {
		cfg := loadConfig(filepath.Join(dir, name))
		if cfg == nil {
			continue
		}
		if seen[cfg.ID] {
			logrus.Warnf("Duplicate store ID '%s' in %s, skipping", cfg.ID, name)
			continue
		}
		seen[cfg.ID] = true
		stores = append(stores, *cfg)
		logrus.Debugf("Loaded store config: %s from %s", cfg.ID, name)
	}

	logrus.Debugf("Loaded %d store configuration(s)", len(stores))
	return stores
}

// Find returns the store with the given ID, or nil.
func Find(stores []Config, id string) *Config {
	for i := range stores {
		if stores[i].ID == id {
			return &stores[i]
		}
	}
	return nil
}
