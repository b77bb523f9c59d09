package apt

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleRelease = `Origin: Hat Labs
Label: HALPI
Suite: stable
Codename: bookworm
Architectures: amd64 arm64
Components: main
`

const sampleInRelease = `-----BEGIN PGP SIGNED MESSAGE-----
Hash: SHA256

Origin: Hat Labs
Label: HALPI
Suite: stable
Codename: bookworm
- Components: main
-----BEGIN PGP SIGNATURE-----

not a real signature
-----END PGP SIGNATURE-----
`

func TestParseRelease(t *testing.T) {
	info := parseRelease([]byte(sampleRelease))
	if info.Origin != "Hat Labs" || info.Label != "HALPI" || info.Suite != "stable" {
		t.Errorf("unexpected release info: %+v", info)
	}
}

func TestParseReleaseSuiteFallsBackToCodename(t *testing.T) {
	info := parseRelease([]byte("Origin: Test\nCodename: bookworm\n"))
	if info.Suite != "bookworm" {
		t.Errorf("Suite should fall back to Codename, got %q", info.Suite)
	}
}

func TestReadReleaseFileClearsigned(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "bridge-test-")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	// The armor is intentionally not a valid signature; the manual strip
	// fallback must still recover the identity fields, including the
	// dash-escaped line.
	path := filepath.Join(tmpDir, "InRelease")
	os.WriteFile(path, []byte(sampleInRelease), 0644)

	info, err := readReleaseFile(path)
	if err != nil {
		t.Fatalf("readReleaseFile failed: %v", err)
	}
	if info.Origin != "Hat Labs" || info.Label != "HALPI" || info.Suite != "stable" {
		t.Errorf("unexpected release info: %+v", info)
	}
}

func TestReadReleaseFilePlain(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "bridge-test-")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	path := filepath.Join(tmpDir, "Release")
	os.WriteFile(path, []byte(sampleRelease), 0644)

	info, err := readReleaseFile(path)
	if err != nil {
		t.Fatalf("readReleaseFile failed: %v", err)
	}
	if info.Origin != "Hat Labs" {
		t.Errorf("unexpected origin: %q", info.Origin)
	}
}
