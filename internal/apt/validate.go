package apt

import (
	"regexp"
	"strings"

	"github.com/hatlabs/cockpit-apps-bridge/internal/models"
)

// packageNamePattern follows Debian policy: lowercase letters, digits,
// plus, minus, dot, starting with a letter or digit.
var packageNamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9+\-.]*$`)

var sectionNamePattern = regexp.MustCompile(`^[a-z0-9_\-/]+$`)

// dangerousChars are rejected outright; package names end up on apt-get
// and systemctl command lines.
const dangerousChars = "/\\;&|$`()<>\n\r"

// ValidatePackageName validates a Debian package name before it is passed
// to a subprocess.
func ValidatePackageName(name string) error {
	if name == "" {
		return models.NewError(models.CodeInvalidInput, "Package name cannot be empty")
	}
	if len(name) > 255 {
		return models.NewErrorWithDetails(models.CodeInvalidInput,
			"Package name exceeds maximum length of 255 characters",
			"")
	}
	if !packageNamePattern.MatchString(name) {
		return models.NewErrorWithDetails(models.CodeInvalidInput,
			"Invalid package name: "+name,
			"Package names must contain only: a-z, 0-9, +, -, . and start with a letter or digit")
	}
	if strings.ContainsAny(name, dangerousChars) {
		return models.NewErrorWithDetails(models.CodeInvalidInput,
			"Invalid package name: "+name,
			"Package names cannot contain path separators or shell metacharacters")
	}
	return nil
}

// ValidateSectionName validates a Debian section name
// (e.g. "net", "contrib/net", "non-free/games").
func ValidateSectionName(name string) error {
	if name == "" {
		return models.NewError(models.CodeInvalidInput, "Section name cannot be empty")
	}
	if len(name) > 100 {
		return models.NewError(models.CodeInvalidInput,
			"Section name exceeds maximum length of 100 characters")
	}
	if !sectionNamePattern.MatchString(name) {
		return models.NewErrorWithDetails(models.CodeInvalidInput,
			"Invalid section name: "+name,
			"Section names must contain only: a-z, 0-9, -, /, _")
	}
	return nil
}
