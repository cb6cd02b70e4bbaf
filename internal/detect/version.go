package detect

import (
	"context"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"golang.org/x/mod/semver"
)

// VersionUnknown is reported when no version-looking line can be parsed.
// Absence of a version is never an error.
const VersionUnknown = "unknown"

const versionTimeout = 3 * time.Second

var versionToken = regexp.MustCompile(`v?\d+\.\d+\.\d+(?:[-+][0-9A-Za-z.-]+)?`)

// DetectVersion invokes the tool's own version subcommand, bounded by a
// short timeout, and parses the first version-looking line of output.
func DetectVersion(ctx context.Context, binary string, args ...string) string {
	if binary == "" {
		return VersionUnknown
	}
	if len(args) == 0 {
		args = []string{"--version"}
	}

	ctx, cancel := context.WithTimeout(ctx, versionTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, binary, args...).CombinedOutput()
	if err != nil && len(out) == 0 {
		return VersionUnknown
	}
	return ParseVersionOutput(string(out))
}

// ParseVersionOutput scans output lines for the first token shaped like a
// version: vX.Y.Z, X.Y.Z, or a "Version:"-prefixed line. The token is
// validated as semver where possible; a match that is not valid semver is
// still returned verbatim rather than dropped.
func ParseVersionOutput(out string) string {
	for _, rawLine := range strings.Split(out, "\n") {
		line := strings.TrimSpace(rawLine)
		if line == "" {
			continue
		}
		if rest, ok := strings.CutPrefix(line, "Version:"); ok {
			line = strings.TrimSpace(rest)
		}
		tok := versionToken.FindString(line)
		if tok == "" {
			continue
		}
		canonical := tok
		if !strings.HasPrefix(canonical, "v") {
			canonical = "v" + canonical
		}
		if semver.IsValid(canonical) {
			return strings.TrimPrefix(semver.Canonical(canonical), "v")
		}
		return strings.TrimPrefix(tok, "v")
	}
	return VersionUnknown
}
