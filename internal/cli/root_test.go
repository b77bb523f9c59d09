package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hatlabs/cockpit-apps-bridge/internal/models"
)

// run executes the root command with the given args and returns stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}

	var result map[string]string
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("version output is not JSON: %v\n%s", err, out)
	}
	if result["name"] != "cockpit-apps-bridge" || result["version"] == "" {
		t.Errorf("unexpected version payload: %v", result)
	}
}

func TestUnknownCommand(t *testing.T) {
	_, err := run(t, "frobnicate")
	if err == nil {
		t.Fatal("unknown command should fail")
	}
	if !strings.HasPrefix(err.Error(), "unknown command") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestMissingArgumentIsInvalidArguments(t *testing.T) {
	_, err := run(t, "get-store-data")

	var bridgeErr *models.BridgeError
	if !errors.As(err, &bridgeErr) || bridgeErr.Code != models.CodeInvalidArguments {
		t.Errorf("missing argument should be INVALID_ARGUMENTS, got %v", err)
	}
}

func TestUnknownFlagIsInvalidArguments(t *testing.T) {
	_, err := run(t, "list-stores", "--bogus")

	var bridgeErr *models.BridgeError
	if !errors.As(err, &bridgeErr) || bridgeErr.Code != models.CodeInvalidArguments {
		t.Errorf("unknown flag should be INVALID_ARGUMENTS, got %v", err)
	}
}

func TestNegativeLimitIsInvalidArguments(t *testing.T) {
	_, err := run(t, "filter-packages", "--limit", "-1")

	var bridgeErr *models.BridgeError
	if !errors.As(err, &bridgeErr) || bridgeErr.Code != models.CodeInvalidArguments {
		t.Errorf("negative limit should be INVALID_ARGUMENTS, got %v", err)
	}
}

func TestEmptyStoreIDIsInvalidStoreID(t *testing.T) {
	_, err := run(t, "get-store-data", "  ")

	var bridgeErr *models.BridgeError
	if !errors.As(err, &bridgeErr) || bridgeErr.Code != models.CodeInvalidStoreID {
		t.Errorf("blank store ID should be INVALID_STORE_ID, got %v", err)
	}
}

func TestEmptyCategoryIsInvalidCategory(t *testing.T) {
	_, err := run(t, "list-packages-by-category", " ")

	var bridgeErr *models.BridgeError
	if !errors.As(err, &bridgeErr) || bridgeErr.Code != models.CodeInvalidCategory {
		t.Errorf("blank category should be INVALID_CATEGORY, got %v", err)
	}
}

func TestSetConfigRejectsInvalidJSON(t *testing.T) {
	_, err := run(t, "set-config", "myapp", "{not json")

	var bridgeErr *models.BridgeError
	if !errors.As(err, &bridgeErr) || bridgeErr.Code != models.CodeInvalidArguments {
		t.Errorf("invalid JSON should be INVALID_ARGUMENTS, got %v", err)
	}
}

// writeBridgeFixture lays out stores, APT lists and a dpkg status file for
// end-to-end command tests.
func writeBridgeFixture(t *testing.T) (storesDir, listsDir, statusPath string) {
	t.Helper()
	tmpDir, err := os.MkdirTemp("", "bridge-test-")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tmpDir) })

	storesDir = filepath.Join(tmpDir, "stores")
	os.MkdirAll(storesDir, 0755)
	os.WriteFile(filepath.Join(storesDir, "marine.yaml"), []byte(`id: marine
name: Marine Apps
description: Curated marine applications
filters:
  include_origins:
    - Hat Labs
`), 0644)

	listsDir = filepath.Join(tmpDir, "lists")
	os.MkdirAll(listsDir, 0755)
	prefix := "apt.example.com_halpi_dists_bookworm"
	os.WriteFile(filepath.Join(listsDir, prefix+"_main_binary-arm64_Packages"), []byte(`Package: opencpn
Version: 5.8.4-1
Section: misc
Tag: category::navigation, role::container-app
Description: Chart plotter

Package: avnav
Version: 1.0.0
Section: misc
Tag: category::navigation
Description: Navigation server
`), 0644)
	os.WriteFile(filepath.Join(listsDir, prefix+"_InRelease"),
		[]byte("Origin: Hat Labs\nSuite: stable\nCodename: bookworm\n"), 0644)

	statusPath = filepath.Join(tmpDir, "status")
	os.WriteFile(statusPath, []byte(`Package: opencpn
Status: install ok installed
Version: 5.8.4-1
Section: misc
Description: Chart plotter
`), 0644)

	return storesDir, listsDir, statusPath
}

func TestListStoresCommand(t *testing.T) {
	storesDir, _, _ := writeBridgeFixture(t)

	out, err := run(t, "list-stores", "--stores-dir", storesDir)
	if err != nil {
		t.Fatalf("list-stores failed: %v", err)
	}

	var stores []map[string]interface{}
	if err := json.Unmarshal([]byte(out), &stores); err != nil {
		t.Fatalf("list-stores output is not JSON: %v\n%s", err, out)
	}
	if len(stores) != 1 || stores[0]["id"] != "marine" {
		t.Errorf("unexpected stores: %v", stores)
	}
}

func TestGetStoreDataCommand(t *testing.T) {
	storesDir, listsDir, statusPath := writeBridgeFixture(t)

	out, err := run(t, "get-store-data", "marine",
		"--stores-dir", storesDir, "--apt-lists", listsDir, "--dpkg-status", statusPath)
	if err != nil {
		t.Fatalf("get-store-data failed: %v", err)
	}

	var data struct {
		Store      map[string]interface{}   `json:"store"`
		Packages   []map[string]interface{} `json:"packages"`
		Categories []map[string]interface{} `json:"categories"`
	}
	if err := json.Unmarshal([]byte(out), &data); err != nil {
		t.Fatalf("get-store-data output is not JSON: %v\n%s", err, out)
	}

	if data.Store["id"] != "marine" {
		t.Errorf("unexpected store header: %v", data.Store)
	}
	if len(data.Packages) != 2 {
		t.Errorf("expected 2 packages, got %v", data.Packages)
	}
	if len(data.Categories) != 1 || data.Categories[0]["id"] != "navigation" {
		t.Errorf("unexpected categories: %v", data.Categories)
	}
	if count, _ := data.Categories[0]["count_installed"].(float64); count != 1 {
		t.Errorf("expected 1 installed in navigation: %v", data.Categories[0])
	}
}

func TestGetStoreDataUnknownStore(t *testing.T) {
	storesDir, listsDir, statusPath := writeBridgeFixture(t)

	_, err := run(t, "get-store-data", "nosuchstore",
		"--stores-dir", storesDir, "--apt-lists", listsDir, "--dpkg-status", statusPath)

	var bridgeErr *models.BridgeError
	if !errors.As(err, &bridgeErr) || bridgeErr.Code != models.CodeStoreNotFound {
		t.Errorf("unknown store should be STORE_NOT_FOUND, got %v", err)
	}
}

func TestFilterPackagesCommand(t *testing.T) {
	storesDir, listsDir, statusPath := writeBridgeFixture(t)

	out, err := run(t, "filter-packages",
		"--store", "marine", "--tab", "installed", "--limit", "50",
		"--stores-dir", storesDir, "--apt-lists", listsDir, "--dpkg-status", statusPath)
	if err != nil {
		t.Fatalf("filter-packages failed: %v", err)
	}

	var result models.FilterResult
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("filter-packages output is not JSON: %v\n%s", err, out)
	}

	if result.TotalCount != 1 || len(result.Packages) != 1 || result.Packages[0].Name != "opencpn" {
		t.Errorf("unexpected result: %+v", result)
	}
	want := []string{"store=marine", "tab=installed"}
	if len(result.AppliedFilters) != 2 || result.AppliedFilters[0] != want[0] || result.AppliedFilters[1] != want[1] {
		t.Errorf("unexpected applied filters: %v", result.AppliedFilters)
	}
	if result.Limited {
		t.Error("result should not be limited")
	}
}

func TestFilterPackagesZeroLimit(t *testing.T) {
	storesDir, listsDir, statusPath := writeBridgeFixture(t)

	out, err := run(t, "filter-packages", "--limit", "0",
		"--stores-dir", storesDir, "--apt-lists", listsDir, "--dpkg-status", statusPath)
	if err != nil {
		t.Fatalf("filter-packages failed: %v", err)
	}

	var result models.FilterResult
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	// Limit 0 returns no packages but still reports the total.
	if len(result.Packages) != 0 || result.TotalCount != 2 || !result.Limited {
		t.Errorf("unexpected zero-limit result: %+v", result)
	}
}

func TestFilterPackagesInvalidTab(t *testing.T) {
	storesDir, listsDir, statusPath := writeBridgeFixture(t)

	_, err := run(t, "filter-packages", "--tab", "sideways",
		"--stores-dir", storesDir, "--apt-lists", listsDir, "--dpkg-status", statusPath)

	var bridgeErr *models.BridgeError
	if !errors.As(err, &bridgeErr) || bridgeErr.Code != models.CodeCacheError {
		t.Errorf("invalid tab should be CACHE_ERROR, got %v", err)
	}
}

func TestListRepositoriesCommand(t *testing.T) {
	storesDir, listsDir, statusPath := writeBridgeFixture(t)

	out, err := run(t, "list-repositories",
		"--stores-dir", storesDir, "--apt-lists", listsDir, "--dpkg-status", statusPath)
	if err != nil {
		t.Fatalf("list-repositories failed: %v", err)
	}

	var repos []map[string]interface{}
	if err := json.Unmarshal([]byte(out), &repos); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if len(repos) != 1 || repos[0]["id"] != "Hat Labs:stable" {
		t.Errorf("unexpected repositories: %v", repos)
	}
}

func TestPackageDetailsCommand(t *testing.T) {
	storesDir, listsDir, statusPath := writeBridgeFixture(t)

	out, err := run(t, "package-details", "opencpn",
		"--stores-dir", storesDir, "--apt-lists", listsDir, "--dpkg-status", statusPath)
	if err != nil {
		t.Fatalf("package-details failed: %v", err)
	}

	var details models.PackageDetails
	if err := json.Unmarshal([]byte(out), &details); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if details.Name != "opencpn" || !details.Installed {
		t.Errorf("unexpected details: %+v", details)
	}
	if details.InstalledVersion == nil || *details.InstalledVersion != "5.8.4-1" {
		t.Errorf("unexpected installed version: %+v", details.InstalledVersion)
	}

	_, err = run(t, "package-details", "nosuchpkg",
		"--stores-dir", storesDir, "--apt-lists", listsDir, "--dpkg-status", statusPath)
	var bridgeErr *models.BridgeError
	if !errors.As(err, &bridgeErr) || bridgeErr.Code != models.CodePackageNotFound {
		t.Errorf("missing package should be PACKAGE_NOT_FOUND, got %v", err)
	}
}
