package apt

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

const sampleIndex = `Package: opencpn
Version: 5.8.4-1
Section: misc
Priority: optional
Maintainer: Example <packages@example.com>
Homepage: https://opencpn.org
Installed-Size: 1024
Size: 2048
Tag: category::navigation,
 role::container-app
Depends: libc6 (>= 2.34), signalk-server | openplotter
Description: Chart plotter and navigation software
 OpenCPN is a free software project to create a concise
 chart plotter and navigation software.

Package: signalk-server
Version: 2.0.0-1
Section: net
Description: Signal K server
`

func TestParsePackages(t *testing.T) {
	packages, err := parsePackages(strings.NewReader(sampleIndex))
	if err != nil {
		t.Fatalf("parsePackages failed: %v", err)
	}
	if len(packages) != 2 {
		t.Fatalf("expected 2 packages, got %d", len(packages))
	}

	pkg := packages[0]
	if pkg.Name != "opencpn" || pkg.Version != "5.8.4-1" || pkg.Section != "misc" {
		t.Errorf("unexpected package fields: %+v", pkg)
	}
	if pkg.Summary != "Chart plotter and navigation software" {
		t.Errorf("unexpected summary: %q", pkg.Summary)
	}
	if !strings.Contains(pkg.Description, "chart plotter and navigation software") {
		t.Errorf("continuation lines not folded into description: %q", pkg.Description)
	}
	if pkg.Tags != "category::navigation, role::container-app" {
		t.Errorf("unexpected tags: %q", pkg.Tags)
	}
	if pkg.Size != 2048 {
		t.Errorf("unexpected size: %d", pkg.Size)
	}
	if pkg.InstalledSize != 1024*1024 {
		t.Errorf("Installed-Size should be converted from KiB: %d", pkg.InstalledSize)
	}

	if packages[1].Name != "signalk-server" {
		t.Errorf("unexpected second package: %+v", packages[1])
	}
}

func TestParsePackagesDropsNamelessStanzas(t *testing.T) {
	packages, err := parsePackages(strings.NewReader("Version: 1.0\n\nPackage: valid\nVersion: 2.0\n"))
	if err != nil {
		t.Fatalf("parsePackages failed: %v", err)
	}
	if len(packages) != 1 || packages[0].Name != "valid" {
		t.Errorf("expected only the named stanza, got %+v", packages)
	}
}

func TestOpenIndexCompressed(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "bridge-test-")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	// Plain
	plainPath := filepath.Join(tmpDir, "test_Packages")
	os.WriteFile(plainPath, []byte(sampleIndex), 0644)

	// Gzip
	gzPath := filepath.Join(tmpDir, "test_Packages.gz")
	var err2 error
	func() {
		f, _ := os.Create(gzPath)
		defer f.Close()
		w := gzip.NewWriter(f)
		_, err2 = w.Write([]byte(sampleIndex))
		w.Close()
	}()
	if err2 != nil {
		t.Fatalf("writing gzip fixture: %v", err2)
	}

	// XZ
	xzPath := filepath.Join(tmpDir, "test_Packages.xz")
	func() {
		f, _ := os.Create(xzPath)
		defer f.Close()
		w, werr := xz.NewWriter(f)
		if werr != nil {
			t.Fatalf("creating xz writer: %v", werr)
		}
		w.Write([]byte(sampleIndex))
		w.Close()
	}()

	// Zstd
	zstPath := filepath.Join(tmpDir, "test_Packages.zst")
	func() {
		f, _ := os.Create(zstPath)
		defer f.Close()
		w, werr := zstd.NewWriter(f)
		if werr != nil {
			t.Fatalf("creating zstd writer: %v", werr)
		}
		w.Write([]byte(sampleIndex))
		w.Close()
	}()

	for _, path := range []string{plainPath, gzPath, xzPath, zstPath} {
		r, err := openIndex(path)
		if err != nil {
			t.Errorf("openIndex(%s) failed: %v", filepath.Base(path), err)
			continue
		}
		packages, err := parsePackages(r)
		r.Close()
		if err != nil {
			t.Errorf("parsePackages(%s) failed: %v", filepath.Base(path), err)
			continue
		}
		if len(packages) != 2 {
			t.Errorf("%s: expected 2 packages, got %d", filepath.Base(path), len(packages))
		}
	}
}

func TestParseDepends(t *testing.T) {
	groups := ParseDepends("libc6 (>= 2.34), signalk-server | openplotter, curl")
	if len(groups) != 3 {
		t.Fatalf("expected 3 OR-groups, got %d", len(groups))
	}

	if groups[0][0].Name != "libc6" || groups[0][0].Relation != ">=" || groups[0][0].Version != "2.34" {
		t.Errorf("unexpected versioned dependency: %+v", groups[0][0])
	}
	if len(groups[1]) != 2 || groups[1][0].Name != "signalk-server" || groups[1][1].Name != "openplotter" {
		t.Errorf("unexpected OR-group: %+v", groups[1])
	}
	if groups[2][0].Name != "curl" || groups[2][0].Relation != "" || groups[2][0].Version != "" {
		t.Errorf("unexpected bare dependency: %+v", groups[2][0])
	}

	if ParseDepends("") != nil {
		t.Error("empty Depends should yield nil")
	}
}
