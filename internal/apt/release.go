package apt

import (
	"bufio"
	"bytes"
	"os"
	"strings"

	"github.com/ProtonMail/go-crypto/openpgp/clearsign"
	"github.com/sirupsen/logrus"
)

// releaseInfo is the repository identity carried by a Release/InRelease
// file: the fields APT exposes as a package's origin.
type releaseInfo struct {
	Origin string
	Label  string
	Suite  string
}

const clearsignHeader = "-----BEGIN PGP SIGNED MESSAGE-----"

// readReleaseFile parses the identity fields out of a Release or InRelease
// file. InRelease files are PGP-clearsigned; the plaintext is unwrapped
// before parsing.
func readReleaseFile(path string) (releaseInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return releaseInfo{}, err
	}

	if bytes.HasPrefix(bytes.TrimLeft(data, "\r\n \t"), []byte(clearsignHeader)) {
		data = unwrapClearsigned(data, path)
	}
	return parseRelease(data), nil
}

// unwrapClearsigned extracts the signed plaintext from a clearsigned
// document. Falls back to a manual scan when the signature armor is
// damaged; the identity fields are still readable in that case.
func unwrapClearsigned(data []byte, path string) []byte {
	if block, _ := clearsign.Decode(data); block != nil {
		return block.Plaintext
	}

	logrus.Debugf("Damaged clearsign armor in %s, stripping manually", path)

	lines := bytes.Split(data, []byte("\n"))
	var out [][]byte
	state := 0 // 0 = before header, 1 = in hash headers, 2 = in body
	for _, line := range lines {
		text := string(bytes.TrimRight(line, "\r"))
		switch state {
		case 0:
			if text == clearsignHeader {
				state = 1
			}
		case 1:
			if strings.TrimSpace(text) == "" {
				state = 2
			}
		case 2:
			if strings.HasPrefix(text, "-----BEGIN PGP SIGNATURE-----") {
				return bytes.Join(out, []byte("\n"))
			}
			out = append(out, bytes.TrimPrefix(line, []byte("- ")))
		}
	}
	return bytes.Join(out, []byte("\n"))
}

// parseRelease reads the Origin/Label/Suite fields from Release file data.
// Suite falls back to Codename, matching APT's own resolution.
func parseRelease(data []byte) releaseInfo {
	var info releaseInfo
	var codename string

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		key, value, found := strings.Cut(line, ":")
		if !found || strings.HasPrefix(line, " ") {
			continue
		}
		value = strings.TrimSpace(value)

		switch strings.TrimSpace(key) {
		case "Origin":
			info.Origin = value
		case "Label":
			info.Label = value
		case "Suite":
			info.Suite = value
		case "Codename":
			codename = value
		}
	}

	if info.Suite == "" {
		info.Suite = codename
	}
	return info
}
