// Package apt provides a read-only view of the Debian package database.
//
// The view is assembled fresh per invocation from APT's own on-disk data:
// the downloaded package indexes under /var/lib/apt/lists and the dpkg
// status file. Mutation goes through the apt-get binary (see exec.go),
// never through this package.
package apt

// Package is the candidate-version view of one package, merged with its
// installed state from the dpkg status file.
type Package struct {
	Name          string
	Version       string // candidate version, "" if none
	Section       string
	Summary       string
	Description   string
	Tags          string // raw Tag field, comma-separated debtags
	Priority      string
	Homepage      string
	Maintainer    string
	Size          int64 // download size in bytes
	InstalledSize int64 // unpacked size in bytes
	Depends       string

	// Repository identity of the index the candidate came from.
	Origin string
	Label  string
	Suite  string

	InstalledVersion string
	Installed        bool
	Upgradable       bool

	// dpkgStatus holds the raw Status field while parsing the dpkg status
	// file ("install ok installed"); empty for index stanzas.
	dpkgStatus string
}

// HasCandidate reports whether the package has an installable candidate
// version. Entries reconstructed purely from the dpkg status file keep
// their installed version as candidate, so this is false only for
// malformed stanzas.
func (p *Package) HasCandidate() bool {
	return p.Version != ""
}
