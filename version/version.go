// Package version implements the totally-ordered Version type and the
// conjunctive VersionConstraint predicate used throughout the solver.
//
// Parsing and comparison are built on top of Masterminds/semver/v3, the way
// the teacher solver builds its own Version/Constraint types on top of
// Masterminds/semver rather than hand-rolling a comparator.
package version

import (
	"fmt"
	"regexp"

	"github.com/Masterminds/semver/v3"
)

var grammar = regexp.MustCompile(`^\d+(\.\d+(\.\d+)?)?(-[0-9A-Za-z.-]+)?(\+[0-9A-Za-z.-]+)?$`)

// MalformedVersion is returned when an input string does not match the
// grammar in spec §6.
type MalformedVersion struct {
	Input  string
	Reason string
}

func (e *MalformedVersion) Error() string {
	return fmt.Sprintf("malformed version %q: %s", e.Input, e.Reason)
}

// Version is a totally ordered (major, minor, patch) triple with optional
// pre-release and build tags.
type Version struct {
	raw string
	sv  *semver.Version
}

// Parse parses body according to the grammar:
//
//	MAJOR[.MINOR[.PATCH[-PRE][+BUILD]]]
//
// Missing MINOR/PATCH default to 0. Inputs that don't match fail with
// *MalformedVersion.
func Parse(body string) (Version, error) {
	if !grammar.MatchString(body) {
		return Version{}, &MalformedVersion{Input: body, Reason: "does not match MAJOR[.MINOR[.PATCH[-PRE][+BUILD]]]"}
	}

	sv, err := semver.NewVersion(body)
	if err != nil {
		return Version{}, &MalformedVersion{Input: body, Reason: err.Error()}
	}

	return Version{raw: body, sv: sv}, nil
}

// MustParse is Parse, but panics on error. Intended for literal version
// strings in tests and fixture construction, not for untrusted input.
func MustParse(body string) Version {
	v, err := Parse(body)
	if err != nil {
		panic(err)
	}
	return v
}

// String returns the original input the Version was parsed from.
func (v Version) String() string {
	return v.raw
}

func (v Version) Major() int64 { return int64(v.sv.Major()) }
func (v Version) Minor() int64 { return int64(v.sv.Minor()) }
func (v Version) Patch() int64 { return int64(v.sv.Patch()) }

// Compare returns -1, 0, or 1 as v is less than, equal to, or greater than
// other. Pre-release versions sort below the same (major,minor,patch)
// without one; build metadata is ignored, matching spec §3.
func (v Version) Compare(other Version) int {
	return v.sv.Compare(other.sv)
}

// Less reports whether v orders strictly before other.
func (v Version) Less(other Version) bool {
	return v.Compare(other) < 0
}

// Equal reports whether v and other compare equal (ignoring build metadata).
func (v Version) Equal(other Version) bool {
	return v.Compare(other) == 0
}

// ceiling computes the exclusive upper bound for a `~>` pessimistic
// constraint, per spec §3:
//
//	ceiling(a.b)   = a+1.0
//	ceiling(a.b.c) = a.(b+1).0
//
// hasPatch indicates whether the operand specified a patch component.
func ceiling(v Version, hasPatch bool) Version {
	if hasPatch {
		next := fmt.Sprintf("%d.%d.0", v.Major(), v.Minor()+1)
		return MustParse(next)
	}
	next := fmt.Sprintf("%d.0.0", v.Major()+1)
	return MustParse(next)
}
