// Package version provides the current release version and helpers to
// compare schema versions during store migration.
package version

import (
	"fmt"

	"golang.org/x/mod/semver"
)

// Version is the current release of dentkao.
var Version = "0.3.1"

// DevVersion is the current development version.
var DevVersion = "0.3.1"

func GetCurrentVersion(mode string) string {
	if mode == "dev" || mode == "demo" {
		return DevVersion
	}
	return Version
}

func GetMinorVersion(version string) string {
	return semver.MajorMinor(fmt.Sprintf("v%s", version))[1:]
}

func IsVersionGreaterOrEqualThan(version, target string) bool {
	return semver.Compare(fmt.Sprintf("v%s", version), fmt.Sprintf("v%s", target)) >= 0
}

func IsVersionGreaterThan(version, target string) bool {
	return semver.Compare(fmt.Sprintf("v%s", version), fmt.Sprintf("v%s", target)) > 0
}
