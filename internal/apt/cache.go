package apt

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

// Cache is an in-memory snapshot of the package database, assembled from
// the APT list indexes and the dpkg status file. It is loaded fresh per
// invocation; there is no process-wide state to invalidate.
type Cache struct {
	Packages []Package

	byName map[string]int
}

// indexSuffixes are the package index variants APT may keep on disk,
// depending on the Acquire::*Indexes configuration.
var indexSuffixes = []string{"_Packages", "_Packages.gz", "_Packages.xz", "_Packages.zst"}

// LoadCache builds the package snapshot. A missing lists directory is
// tolerated (local-only systems); an unreadable dpkg status file is not,
// since that means there is no package database to speak of.
func LoadCache(listsDir, statusPath string) (*Cache, error) {
	c := &Cache{byName: make(map[string]int)}

	indexes, err := findIndexes(listsDir)
	if err != nil {
		logrus.Warnf("Cannot scan APT lists directory %s: %v", listsDir, err)
	}

	releases := make(map[string]releaseInfo)
	for _, indexPath := range indexes {
		if err := c.loadIndex(indexPath, releases); err != nil {
			logrus.Warnf("Skipping package index %s: %v", indexPath, err)
		}
	}

	if err := c.loadStatus(statusPath); err != nil {
		return nil, fmt.Errorf("failed to open package database: %w", err)
	}

	c.finalize()
	logrus.Debugf("Loaded %d packages from %d indexes", len(c.Packages), len(indexes))
	return c, nil
}

// Len returns the number of packages in the snapshot.
func (c *Cache) Len() int {
	return len(c.Packages)
}

// Get returns the package with the given name, or nil.
func (c *Cache) Get(name string) *Package {
	i, ok := c.byName[name]
	if !ok {
		return nil
	}
	return &c.Packages[i]
}

// All returns pointers to every package, in name order.
func (c *Cache) All() []*Package {
	out := make([]*Package, len(c.Packages))
	for i := range c.Packages {
		out[i] = &c.Packages[i]
	}
	return out
}

func findIndexes(listsDir string) ([]string, error) {
	entries, err := os.ReadDir(listsDir)
	if err != nil {
		return nil, err
	}

	var indexes []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		for _, suffix := range indexSuffixes {
			if strings.HasSuffix(name, suffix) {
				indexes = append(indexes, filepath.Join(listsDir, name))
				break
			}
		}
	}
	sort.Strings(indexes)
	return indexes, nil
}

// loadIndex merges one package index into the snapshot, stamping every
// stanza with the repository identity of its Release file. When the same
// package appears in several indexes the highest version wins as
// candidate.
func (c *Cache) loadIndex(indexPath string, releases map[string]releaseInfo) error {
	release := lookupRelease(indexPath, releases)

	r, err := openIndex(indexPath)
	if err != nil {
		return err
	}
	defer r.Close()

	packages, err := parsePackages(r)
	if err != nil {
		return err
	}

	for _, pkg := range packages {
		pkg.Origin = release.Origin
		pkg.Label = release.Label
		pkg.Suite = release.Suite

		if i, ok := c.byName[pkg.Name]; ok {
			if CompareVersions(c.Packages[i].Version, pkg.Version) < 0 {
				// Preserve installed state gathered so far.
				pkg.InstalledVersion = c.Packages[i].InstalledVersion
				pkg.Installed = c.Packages[i].Installed
				c.Packages[i] = pkg
			}
			continue
		}
		c.byName[pkg.Name] = len(c.Packages)
		c.Packages = append(c.Packages, pkg)
	}
	return nil
}

// loadStatus merges the dpkg status file: installed versions for known
// packages, and standalone entries for packages no index offers anymore.
func (c *Cache) loadStatus(statusPath string) error {
	f, err := os.Open(statusPath)
	if err != nil {
		return err
	}
	defer f.Close()

	packages, err := parsePackages(f)
	if err != nil {
		return err
	}

	for _, pkg := range packages {
		if !isInstalledStatus(pkg.dpkgStatus) {
			continue
		}

		if i, ok := c.byName[pkg.Name]; ok {
			c.Packages[i].InstalledVersion = pkg.Version
			c.Packages[i].Installed = true
			continue
		}

		// Locally installed with no candidate in any index: the installed
		// version doubles as candidate, matching how APT presents it.
		pkg.InstalledVersion = pkg.Version
		pkg.Installed = true
		pkg.dpkgStatus = ""
		c.byName[pkg.Name] = len(c.Packages)
		c.Packages = append(c.Packages, pkg)
	}
	return nil
}

// isInstalledStatus checks a dpkg Status field ("want flag status") for
// the installed state.
func isInstalledStatus(status string) bool {
	fields := strings.Fields(status)
	return len(fields) == 3 && fields[2] == "installed"
}

func (c *Cache) finalize() {
	sort.Slice(c.Packages, func(i, j int) bool {
		return c.Packages[i].Name < c.Packages[j].Name
	})
	for i := range c.Packages {
		p := &c.Packages[i]
		p.Upgradable = p.Installed && p.Version != "" &&
			CompareVersions(p.InstalledVersion, p.Version) < 0
		c.byName[p.Name] = i
	}
}

// lookupRelease resolves the Release/InRelease identity for an index file.
// List file names flatten the repository URL with underscores:
// host_path_dists_<codename>_<component>_binary-<arch>_Packages shares its
// prefix up to the codename with host_path_dists_<codename>_InRelease.
func lookupRelease(indexPath string, cache map[string]releaseInfo) releaseInfo {
	name := indexPath
	for _, ext := range []string{".gz", ".xz", ".zst"} {
		name = strings.TrimSuffix(name, ext)
	}
	name = strings.TrimSuffix(name, "_Packages")

	i := strings.LastIndex(name, "_dists_")
	if i < 0 {
		// Flat repository without a dists tree; no Release identity.
		return releaseInfo{}
	}
	rest := name[i+len("_dists_"):]
	codename := rest
	if j := strings.IndexByte(rest, '_'); j >= 0 {
		codename = rest[:j]
	}
	prefix := name[:i+len("_dists_")] + codename

	for _, candidate := range []string{prefix + "_InRelease", prefix + "_Release"} {
		if info, ok := cache[candidate]; ok {
			return info
		}
		info, err := readReleaseFile(candidate)
		if err != nil {
			continue
		}
		cache[candidate] = info
		return info
	}
	return releaseInfo{}
}
