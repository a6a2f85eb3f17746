// SPDX-License-Identifier: MIT
//
// Package build holds the build metadata embedded with linker flags:
//
//	go build -ldflags "-X specterm/pkg/build.buildVersion=0.3.0 \
//	    -X specterm/pkg/build.buildCommit=$(git rev-parse --short HEAD) \
//	    -X specterm/pkg/build.buildTime=$(date -u +%FT%TZ)"
//
// Development builds run without them and report "dev" and "unknown".
package build

import (
	"errors"
	"fmt"
)

// Description is the one-line summary shown by the CLI.
const Description = "Real-time audio spectrum in the terminal"

// Info is the build metadata of the running binary.
type Info struct {
	Name    string
	Time    string
	Commit  string
	Version string
}

// Set with -ldflags -X.
var (
	buildName    string
	buildTime    string
	buildCommit  string
	buildVersion string
)

var buildInfo = defaultInfo()

func defaultInfo() *Info {
	return &Info{
		Name:    "specterm",
		Time:    "unknown",
		Commit:  "unknown",
		Version: "dev",
	}
}

// Initialize copies the linker-provided values into the build info. Values
// that were not provided keep their development defaults and are reported
// together in the returned error.
func Initialize() error {
	var errs []error
	set := func(dst *string, value, flag string) {
		if value == "" {
			errs = append(errs, fmt.Errorf("%s is not set", flag))
			return
		}
		*dst = value
	}
	set(&buildInfo.Name, buildName, "buildName")
	set(&buildInfo.Time, buildTime, "buildTime")
	set(&buildInfo.Commit, buildCommit, "buildCommit")
	set(&buildInfo.Version, buildVersion, "buildVersion")
	return errors.Join(errs...)
}

// GetBuildInfo returns the build info of the running binary.
func GetBuildInfo() *Info {
	return buildInfo
}

// VersionString formats the info for --version.
func (i *Info) VersionString() string {
	return fmt.Sprintf("%s (commit %s, built %s)", i.Version, i.Commit, i.Time)
}
