package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

// ParseEnvFile reads a KEY=value file into a map. Blank lines and lines
// starting with # are skipped; lines without = are skipped with a
// warning. A leading quote protects inline # characters; unquoted values
// are truncated at the first # and right-trimmed. A missing file yields
// an empty map, not an error.
func ParseEnvFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("failed to read env file %s: %w", path, err)
	}

	values := make(map[string]string)

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, found := strings.Cut(line, "=")
		if !found {
			logrus.Warnf("Malformed line in %s: %s", path, line)
			continue
		}

		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		if strings.HasPrefix(value, `"`) || strings.HasPrefix(value, "'") {
			quote := value[0]
			if end := strings.IndexByte(value[1:], quote); end >= 0 {
				value = value[1 : end+1]
			}
			// No closing quote: keep the malformed value as-is.
		} else if i := strings.IndexByte(value, '#'); i >= 0 {
			value = strings.TrimRight(value[:i], " \t")
		}

		values[key] = value
	}

	return values, nil
}

// WriteEnvFile rewrites the whole target file from the given mapping.
// Keys are sorted for determinism and values containing a space are
// double-quoted. The write goes through a temporary sibling followed by
// an atomic rename; the temporary is removed on any failure.
func WriteEnvFile(path string, values map[string]string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmpPath := filepath.Join(dir, "."+filepath.Base(path)+".tmp")
	if err := writeEnvData(tmpPath, values); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}

func writeEnvData(path string, values map[string]string) error {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, key := range keys {
		value := values[key]
		if strings.Contains(value, " ") {
			fmt.Fprintf(&b, "%s=\"%s\"\n", key, value)
		} else {
			fmt.Fprintf(&b, "%s=%s\n", key, value)
		}
	}

	return os.WriteFile(path, []byte(b.String()), 0o644)
}

// MergeConfig merges defaults with user overrides, key-wise; the user
// value wins.
func MergeConfig(defaults, user map[string]string) map[string]string {
	merged := make(map[string]string, len(defaults)+len(user))
	for k, v := range defaults {
		merged[k] = v
	}
	for k, v := range user {
		merged[k] = v
	}
	return merged
}
