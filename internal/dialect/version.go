package dialect

import (
	"regexp"

	"github.com/Masterminds/semver/v3"
)

var versionPattern = regexp.MustCompile(`\d+\.\d+(\.\d+)?`)

// ExtractVersion pulls the leading major.minor[.patch] out of a raw server
// version string (e.g. PostgreSQL's "14.9 (Debian 14.9-1.pgdg120+1)" or
// SQL Server's "15.0.2000.5", truncated to its first three components) and
// parses it as a semver.Version.
func ExtractVersion(raw string) (*semver.Version, error) {
	match := versionPattern.FindString(raw)
	return semver.NewVersion(match)
}
