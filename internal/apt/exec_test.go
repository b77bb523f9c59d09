package apt

import (
	"bytes"
	"errors"
	"os/exec"
	"strings"
	"testing"

	"github.com/hatlabs/cockpit-apps-bridge/internal/models"
)

func TestParseStatusLine(t *testing.T) {
	tests := []struct {
		line    string
		wantOK  bool
		percent int
		message string
	}{
		{"pmstatus:opencpn:25.5:Unpacking opencpn", true, 25, "Unpacking opencpn"},
		{"dlstatus:1:50:Downloading", true, 50, "Downloading"},
		{"pmstatus:opencpn:75:", true, 75, "Processing opencpn..."},
		{"pmerror:opencpn:0:Some error", false, 0, ""},
		{"pmstatus:opencpn:notanumber:msg", false, 0, ""},
		{"too:few:fields", false, 0, ""},
		{"", false, 0, ""},
	}

	for _, tt := range tests {
		progress, ok := parseStatusLine(tt.line)
		if ok != tt.wantOK {
			t.Errorf("parseStatusLine(%q) ok = %v, want %v", tt.line, ok, tt.wantOK)
			continue
		}
		if !ok {
			continue
		}
		if progress.Percentage != tt.percent || progress.Message != tt.message {
			t.Errorf("parseStatusLine(%q) = %+v", tt.line, progress)
		}
		if progress.Type != "progress" {
			t.Errorf("parseStatusLine(%q) type = %q", tt.line, progress.Type)
		}
	}
}

func TestStreamProgressMonotonic(t *testing.T) {
	input := strings.Join([]string{
		"pmstatus:a:10:Step one",
		"pmstatus:a:10:Repeated percentage",
		"pmstatus:a:5:Backwards",
		"pmstatus:a:40:Step two",
		"garbage line",
	}, "\n")

	var out bytes.Buffer
	streamProgress(strings.NewReader(input), &out)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 progress records, got %d: %q", len(lines), out.String())
	}
	if !strings.Contains(lines[0], `"percentage":10`) || !strings.Contains(lines[1], `"percentage":40`) {
		t.Errorf("unexpected progress records: %v", lines)
	}
}

func TestClassifyFailure(t *testing.T) {
	exitErr := &exec.ExitError{}

	tests := []struct {
		stderr   string
		removing bool
		wantCode string
	}{
		{"E: Unable to locate package nosuchpkg", false, models.CodePackageNotFound},
		{"E: Package 'foo' is not installed, so not removed", true, models.CodePackageNotFound},
		{"E: dpkg was interrupted, you must manually run 'dpkg --configure -a'", false, models.CodeLocked},
		{"E: You don't have enough free space in /var/cache/apt/archives/.", false, models.CodeDiskFull},
		{"E: Sub-process /usr/bin/dpkg returned an error code (1)", false, models.CodeInstallFailed},
		{"E: Sub-process /usr/bin/dpkg returned an error code (1)", true, models.CodeRemoveFailed},
	}

	for _, tt := range tests {
		err := classifyFailure(exitErr, tt.stderr, "foo", tt.removing)
		var bridgeErr *models.BridgeError
		if !errors.As(err, &bridgeErr) {
			t.Errorf("classifyFailure(%q) = %v, want BridgeError", tt.stderr, err)
			continue
		}
		if bridgeErr.Code != tt.wantCode {
			t.Errorf("classifyFailure(%q) code = %s, want %s", tt.stderr, bridgeErr.Code, tt.wantCode)
		}
	}
}

func TestClassifyFailureStartError(t *testing.T) {
	err := classifyFailure(errors.New("exec: not found"), "", "foo", false)
	var bridgeErr *models.BridgeError
	if !errors.As(err, &bridgeErr) || bridgeErr.Code != models.CodeInternalError {
		t.Errorf("non-exit errors should be INTERNAL_ERROR, got %v", err)
	}
}

func TestRemoveRefusesEssentialPackages(t *testing.T) {
	var out bytes.Buffer
	err := Remove("dpkg", &out)

	var bridgeErr *models.BridgeError
	if !errors.As(err, &bridgeErr) || bridgeErr.Code != models.CodeEssentialPackage {
		t.Fatalf("Remove(dpkg) = %v, want ESSENTIAL_PACKAGE", err)
	}
	if out.Len() != 0 {
		t.Errorf("no progress should be emitted for refused removals: %q", out.String())
	}
}

func TestInstallRejectsInvalidName(t *testing.T) {
	var out bytes.Buffer
	err := Install("foo;rm -rf /", &out)

	var bridgeErr *models.BridgeError
	if !errors.As(err, &bridgeErr) || bridgeErr.Code != models.CodeInvalidInput {
		t.Fatalf("Install with shell metacharacters = %v, want INVALID_INPUT", err)
	}
}
