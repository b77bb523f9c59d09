package apt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"

	"github.com/hatlabs/cockpit-apps-bridge/internal/models"
)

// openIndex opens a package index, transparently decompressing it based on
// the file extension. APT stores indexes either uncompressed or as the
// compressed variant configured via Acquire::*Indexes.
func openIndex(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	switch {
	case strings.HasSuffix(path, ".gz"):
		gr, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		return &wrappedIndex{Reader: gr, file: f, closer: gr.Close}, nil
	case strings.HasSuffix(path, ".xz"):
		xr, err := xz.NewReader(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		return &wrappedIndex{Reader: xr, file: f}, nil
	case strings.HasSuffix(path, ".zst"):
		zr, err := zstd.NewReader(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		return &wrappedIndex{Reader: zr.IOReadCloser(), file: f}, nil
	default:
		return f, nil
	}
}

type wrappedIndex struct {
	io.Reader
	file   *os.File
	closer func() error
}

func (w *wrappedIndex) Close() error {
	if w.closer != nil {
		w.closer()
	}
	return w.file.Close()
}

// parsePackages reads Debian control-format stanzas from r and returns one
// Package per stanza. Continuation lines (leading space or tab) extend the
// previous field. Stanzas without a Package field are dropped.
func parsePackages(r io.Reader) ([]Package, error) {
	var packages []Package

	current := Package{}
	var currentKey string
	var currentValue strings.Builder
	sawField := false

	flushField := func() {
		if currentKey != "" {
			setField(&current, currentKey, currentValue.String())
			currentKey = ""
			currentValue.Reset()
		}
	}
	flushStanza := func() {
		flushField()
		if sawField && current.Name != "" {
			packages = append(packages, current)
		}
		current = Package{}
		sawField = false
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()

		if strings.TrimSpace(line) == "" {
			flushStanza()
			continue
		}

		if line[0] == ' ' || line[0] == '\t' {
			currentValue.WriteString("\n")
			currentValue.WriteString(strings.TrimSpace(line))
			continue
		}

		flushField()

		if i := strings.IndexByte(line, ':'); i >= 0 {
			currentKey = strings.TrimSpace(line[:i])
			currentValue.WriteString(strings.TrimSpace(line[i+1:]))
			sawField = true
		}
	}
	flushStanza()

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading package stanzas: %w", err)
	}
	return packages, nil
}

// setField maps one control field onto the Package view. Unrecognized
// fields are ignored; the bridge only surfaces what the frontend consumes.
func setField(pkg *Package, key, value string) {
	switch key {
	case "Package":
		pkg.Name = value
	case "Version":
		pkg.Version = value
	case "Section":
		pkg.Section = value
	case "Priority":
		pkg.Priority = value
	case "Homepage":
		pkg.Homepage = value
	case "Maintainer":
		pkg.Maintainer = value
	case "Description":
		// First line is the summary; continuation lines form the long
		// description.
		summary, rest, _ := strings.Cut(value, "\n")
		pkg.Summary = summary
		pkg.Description = rest
	case "Tag":
		pkg.Tags = strings.ReplaceAll(value, "\n", " ")
	case "Depends":
		pkg.Depends = strings.ReplaceAll(value, "\n", " ")
	case "Size":
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			pkg.Size = n
		}
	case "Installed-Size":
		// The control field is in KiB.
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			pkg.InstalledSize = n * 1024
		}
	case "Status":
		pkg.dpkgStatus = value
	}
}

// ParseDepends expands a Depends field into OR-groups of alternatives,
// e.g. "a (>= 1.0), b | c" yields [[a >=1.0], [b, c]].
func ParseDepends(raw string) [][]models.Dependency {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	var groups [][]models.Dependency
	for _, group := range strings.Split(raw, ",") {
		var alternatives []models.Dependency
		for _, alt := range strings.Split(group, "|") {
			dep, ok := parseDependency(strings.TrimSpace(alt))
			if ok {
				alternatives = append(alternatives, dep)
			}
		}
		if len(alternatives) > 0 {
			groups = append(groups, alternatives)
		}
	}
	return groups
}

// parseDependency parses a single alternative like "foo (>= 1.2)".
func parseDependency(s string) (models.Dependency, bool) {
	if s == "" {
		return models.Dependency{}, false
	}

	name := s
	relation := ""
	version := ""

	if i := strings.IndexByte(s, '('); i >= 0 {
		name = strings.TrimSpace(s[:i])
		constraint := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s[i+1:]), ")"))
		if j := strings.IndexByte(constraint, ' '); j >= 0 {
			relation = constraint[:j]
			version = strings.TrimSpace(constraint[j+1:])
		} else {
			version = constraint
		}
	}

	if name == "" {
		return models.Dependency{}, false
	}
	return models.Dependency{Name: name, Relation: relation, Version: version}, true
}
