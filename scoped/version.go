package scoped

import (
	"golang.org/x/mod/semver"

	"github.com/kolkov/scopedref/internal/scoped/pinned"
	"github.com/kolkov/scopedref/internal/scoped/shared"
)

// Version is the module version, in semver form.
const Version = "v0.1.0"

// Info describes the runtime configuration of the package.
type Info struct {
	// Version is the module version.
	Version string

	// Major is the semver major component of Version, e.g. "v0".
	Major string

	// Checked reports whether bookkeeping is compiled in.
	Checked bool

	// Tracking reports whether SCOPEDTRACK=1 origin tracking is active.
	Tracking bool

	// MoveChecks reports whether pinned guards verify their address at run
	// time (the scoped_pincheck build tag).
	MoveChecks bool

	// Backends lists the available guard implementations.
	Backends []string
}

// GetInfo returns the package's runtime configuration.
//
// Example:
//
//	info := scoped.GetInfo()
//	fmt.Printf("scopedref %s (checked=%v)\n", info.Version, info.Checked)
func GetInfo() Info {
	return Info{
		Version:    Version,
		Major:      semver.Major(Version),
		Checked:    Enabled,
		Tracking:   shared.Tracking(),
		MoveChecks: pinned.MoveChecks,
		Backends:   []string{shared.Backend, pinned.Backend},
	}
}

// Compatible reports whether code written against version can use this
// build: version must be valid semver with the same major component and must
// not be newer than Version.
//
// Example:
//
//	if !scoped.Compatible("v0.1.0") {
//		log.Fatalf("scopedref %s is too old", scoped.Version)
//	}
func Compatible(version string) bool {
	if !semver.IsValid(version) {
		return false
	}
	if semver.Major(version) != semver.Major(Version) {
		return false
	}
	return semver.Compare(version, Version) <= 0
}
