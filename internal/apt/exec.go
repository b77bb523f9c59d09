package apt

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/hatlabs/cockpit-apps-bridge/internal/models"
)

// essentialPackages must never be removed through the bridge.
var essentialPackages = map[string]struct{}{
	"dpkg":        {},
	"apt":         {},
	"apt-get":     {},
	"libc6":       {},
	"init":        {},
	"systemd":     {},
	"base-files":  {},
	"base-passwd": {},
	"bash":        {},
	"coreutils":   {},
}

// Install installs a package via apt-get, streaming progress records to
// out as JSON lines, followed by a final success record. stdout of the
// process is reserved for these records; all diagnostics go to stderr.
func Install(packageName string, out io.Writer) error {
	if err := ValidatePackageName(packageName); err != nil {
		return err
	}

	args := []string{
		"install", "-y",
		"-o", "APT::Status-Fd=3",
		"-o", "Dpkg::Options::=--force-confdef",
		"-o", "Dpkg::Options::=--force-confold",
		packageName,
	}

	stderr, err := runWithStatusFd(args, out)
	if err != nil {
		return classifyFailure(err, stderr, packageName, false)
	}

	emitJSONLine(out, models.Progress{Type: "progress", Percentage: 100, Message: "Installation complete"})
	emitJSONLine(out, models.ActionResult{
		Success:     true,
		Message:     fmt.Sprintf("Successfully installed %s", packageName),
		PackageName: packageName,
	})
	return nil
}

// Remove removes a package via apt-get, with the same progress streaming
// as Install. Essential system packages are refused.
func Remove(packageName string, out io.Writer) error {
	if err := ValidatePackageName(packageName); err != nil {
		return err
	}
	if _, essential := essentialPackages[packageName]; essential {
		return models.NewErrorWithDetails(models.CodeEssentialPackage,
			fmt.Sprintf("Cannot remove essential package '%s'", packageName),
			"Removing this package may break your system")
	}

	args := []string{"remove", "-y", "-o", "APT::Status-Fd=3", packageName}

	stderr, err := runWithStatusFd(args, out)
	if err != nil {
		return classifyFailure(err, stderr, packageName, true)
	}

	emitJSONLine(out, models.Progress{Type: "progress", Percentage: 100, Message: "Removal complete"})
	emitJSONLine(out, models.ActionResult{
		Success:     true,
		Message:     fmt.Sprintf("Successfully removed %s", packageName),
		PackageName: packageName,
	})
	return nil
}

// runWithStatusFd runs apt-get with a pipe attached as fd 3 for the
// machine-readable status protocol. Progress lines are forwarded to out
// as they arrive; the captured stderr is returned for classification.
func runWithStatusFd(args []string, out io.Writer) (string, error) {
	statusR, statusW, err := os.Pipe()
	if err != nil {
		return "", err
	}
	defer statusR.Close()

	cmd := exec.Command("apt-get", args...)
	cmd.Env = append(os.Environ(), "DEBIAN_FRONTEND=noninteractive")
	cmd.Stdout = io.Discard
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	// ExtraFiles[0] becomes fd 3 in the child.
	cmd.ExtraFiles = []*os.File{statusW}

	if err := cmd.Start(); err != nil {
		statusW.Close()
		return "", err
	}
	// Close the parent's copy so the pipe reaches EOF when apt-get exits.
	statusW.Close()

	streamProgress(statusR, out)

	if err := cmd.Wait(); err != nil {
		return stderr.String(), err
	}
	return stderr.String(), nil
}

// streamProgress reads status protocol lines until the writer side closes
// and emits a progress record whenever the percentage advances.
func streamProgress(r io.Reader, out io.Writer) {
	scanner := bufio.NewScanner(r)
	lastPercentage := 0

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		progress, ok := parseStatusLine(line)
		if !ok || progress.Percentage <= lastPercentage {
			continue
		}
		lastPercentage = progress.Percentage
		emitJSONLine(out, progress)
	}
	if err := scanner.Err(); err != nil {
		logrus.Warnf("Status pipe read failed: %v", err)
	}
}

// parseStatusLine parses one Status-Fd protocol line,
// "type:subject:percent:message". Only pmstatus and dlstatus lines carry
// progress.
func parseStatusLine(line string) (models.Progress, bool) {
	parts := strings.SplitN(line, ":", 4)
	if len(parts) < 4 {
		return models.Progress{}, false
	}

	statusType, subject, percentStr, message := parts[0], parts[1], parts[2], parts[3]
	if statusType != "pmstatus" && statusType != "dlstatus" {
		return models.Progress{}, false
	}

	percentage, err := strconv.ParseFloat(strings.TrimSpace(percentStr), 64)
	if err != nil {
		return models.Progress{}, false
	}

	message = strings.TrimSpace(message)
	if message == "" {
		message = fmt.Sprintf("Processing %s...", subject)
	}

	return models.Progress{
		Type:       "progress",
		Percentage: int(percentage),
		Message:    message,
	}, true
}

// classifyFailure maps an apt-get failure to a bridge error by matching
// known substrings in the captured stderr.
func classifyFailure(err error, stderr, packageName string, removing bool) error {
	switch {
	case !removing && strings.Contains(stderr, "Unable to locate package"):
		return models.PackageNotFound(packageName)
	case removing && strings.Contains(stderr, "is not installed"):
		return models.PackageNotFound(packageName)
	case strings.Contains(stderr, "dpkg was interrupted"):
		return models.NewErrorWithDetails(models.CodeLocked, "Package manager is locked", stderr)
	case strings.Contains(stderr, "You don't have enough free space"):
		return models.NewErrorWithDetails(models.CodeDiskFull, "Insufficient disk space", stderr)
	}

	if _, isExit := err.(*exec.ExitError); !isExit {
		// apt-get never started; not a package-level failure.
		return models.NewErrorWithDetails(models.CodeInternalError,
			fmt.Sprintf("Failed to run apt-get for '%s'", packageName), err.Error())
	}

	if removing {
		return models.NewErrorWithDetails(models.CodeRemoveFailed,
			fmt.Sprintf("Failed to remove package '%s'", packageName), stderr)
	}
	return models.NewErrorWithDetails(models.CodeInstallFailed,
		fmt.Sprintf("Failed to install package '%s'", packageName), stderr)
}

// emitJSONLine writes one compact JSON record and a newline, flushed
// immediately so the frontend sees progress as it happens.
func emitJSONLine(out io.Writer, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		logrus.Warnf("Cannot encode progress record: %v", err)
		return
	}
	fmt.Fprintf(out, "%s\n", data)
}
