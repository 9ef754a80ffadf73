package version

import (
	"fmt"
	"strings"

	"golang.org/x/mod/semver"
)

// Build metadata, overridden at link time:
//
//	go build -ldflags "-X github.com/hrygo/clipsense/internal/version.Version=0.1.0 \
//	  -X github.com/hrygo/clipsense/internal/version.GitCommit=$(git rev-parse HEAD)"
//
// GitBranch and BuildTime follow the same pattern.
var (
	Version   = "0.0.0-dev"
	GitCommit = "unknown"
	GitBranch = "unknown"
	BuildTime = "unknown"
)

// Compare orders two bare semantic versions such as "0.2.0". The result follows semver.Compare.
func Compare(a, b string) int {
	return semver.Compare("v"+a, "v"+b)
}

// IsVersionGreaterOrEqualThan returns true if version is greater than or equal to target.
func IsVersionGreaterOrEqualThan(version, target string) bool {
	return Compare(version, target) >= 0
}

// IsVersionGreaterThan returns true if version is greater than target.
func IsVersionGreaterThan(version, target string) bool {
	return Compare(version, target) > 0
}

// SortVersion sorts schema versions in ascending semver order.
type SortVersion []string

func (s SortVersion) Len() int           { return len(s) }
func (s SortVersion) Swap(i, j int)      { s[i], s[j] = s[j], s[i] }
func (s SortVersion) Less(i, j int) bool { return Compare(s[i], s[j]) < 0 }

// Latest returns the greatest version in versions, or "" when versions is empty.
func Latest(versions []string) string {
	latest := ""
	for _, v := range versions {
		if latest == "" || IsVersionGreaterThan(v, latest) {
			latest = v
		}
	}
	return latest
}

func isSet(v string) bool {
	return v != "" && v != "unknown"
}

func shortCommit() string {
	if !isSet(GitCommit) {
		return ""
	}
	if len(GitCommit) > 8 {
		return GitCommit[:8]
	}
	return GitCommit
}

// String returns the version with the short commit hash appended when known.
func String() string {
	if c := shortCommit(); c != "" {
		return Version + "-" + c
	}
	return Version
}

// StringFull returns the version followed by whichever build metadata was linked in.
func StringFull() string {
	parts := []string{fmt.Sprintf("Version=%s", Version)}
	if c := shortCommit(); c != "" {
		parts = append(parts, fmt.Sprintf("Commit=%s", c))
	}
	if isSet(GitBranch) {
		parts = append(parts, fmt.Sprintf("Branch=%s", GitBranch))
	}
	if isSet(BuildTime) {
		parts = append(parts, fmt.Sprintf("BuildTime=%s", BuildTime))
	}
	return strings.Join(parts, " ")
}
