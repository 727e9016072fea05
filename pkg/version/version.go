// Package version exposes build metadata set with -ldflags at link time:
//
//	go build -ldflags "-X github.com/rshade/peoplegrid/pkg/version.version=1.2.3"
package version

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// DevVersion is reported when no version was linked in.
const DevVersion = "0.0.0-dev"

//nolint:gochecknoglobals // Set via -ldflags.
var (
	version   = DevVersion
	gitCommit = "unknown"
	buildDate = "unknown"
)

// GetVersion returns the linked version, normalized without a leading "v".
// A value that is not valid semver falls back to DevVersion.
func GetVersion() string {
	v, err := Parse(version)
	if err != nil {
		return DevVersion
	}
	return v.String()
}

// GetGitCommit returns the linked commit hash.
func GetGitCommit() string {
	return gitCommit
}

// GetBuildDate returns the linked build date.
func GetBuildDate() string {
	return buildDate
}

// Parse validates s as a semantic version. A leading "v" is accepted.
func Parse(s string) (*semver.Version, error) {
	v, err := semver.NewVersion(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("invalid version %q: %w", s, err)
	}
	return v, nil
}

// IsRelease reports whether the linked version is a release (no prerelease tag).
func IsRelease() bool {
	v, err := Parse(version)
	return err == nil && v.Prerelease() == ""
}

// Info returns a one-line description used by `peoplegrid --version`.
func Info() string {
	return fmt.Sprintf("%s (commit %s, built %s, %s/%s)",
		GetVersion(), gitCommit, buildDate, runtime.GOOS, runtime.GOARCH)
}
