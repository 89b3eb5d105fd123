package pkggraph

import (
	"fmt"

	"github.com/Masterminds/semver"
	"github.com/pkg/errors"
)

// Version is a parsed semantic version: major.minor.patch plus an optional
// dot-separated pre-release identifier list. Build metadata is retained in
// String() but never participates in ordering or equality, per semver 2.0.
type Version struct {
	sv *semver.Version
}

// NewVersion parses a semantic version string.
func NewVersion(s string) (Version, error) {
	sv, err := semver.NewVersion(s)
	if err != nil {
		return Version{}, errors.Wrapf(err, "invalid semantic version %q", s)
	}
	return Version{sv: sv}, nil
}

// MustVersion parses s, panicking on error. Intended for package-level
// constants and tests where the literal is known-valid.
func MustVersion(s string) Version {
	v, err := NewVersion(s)
	if err != nil {
		panic(err)
	}
	return v
}

func (v Version) String() string {
	if v.sv == nil {
		return ""
	}
	return v.sv.String()
}

// IsPrerelease reports whether v carries any pre-release identifiers.
func (v Version) IsPrerelease() bool { return v.sv.Prerelease() != "" }

func (v Version) Major() int64 { return v.sv.Major() }
func (v Version) Minor() int64 { return v.sv.Minor() }
func (v Version) Patch() int64 { return v.sv.Patch() }

// Compare returns -1, 0, or 1 as v is less than, equal to, or greater than
// o, following semver 2.0 precedence: release > any pre-release of the same
// major.minor.patch triple, and pre-release identifiers compared
// element-wise, numeric before alphanumeric.
func (v Version) Compare(o Version) int { return v.sv.Compare(o.sv) }

func (v Version) Less(o Version) bool  { return v.Compare(o) < 0 }
func (v Version) Equal(o Version) bool { return v.Compare(o) == 0 }

// nextPatch returns the smallest Version strictly greater than v that is
// reachable by the "patch-successor" rule spec.md §4.1 defines: release
// versions bump patch by one; pre-release versions gain a trailing ".0"
// identifier, so that "1.0.0-beta" < "1.0.0-beta.0" < "1.0.0-beta.1" <
// "1.0.0".
//
// This is the rule exact(v) and version-set difference are built on; it is
// deliberately not "the next version that could ever be published" (that
// would require knowing the registry), just the tightest upper bound the
// algebra can express for v alone.
func (v Version) nextPatch() Version {
	if v.IsPrerelease() {
		s := fmt.Sprintf("%d.%d.%d-%s.0", v.Major(), v.Minor(), v.Patch(), v.sv.Prerelease())
		sv, err := semver.NewVersion(s)
		if err != nil {
			panic(err)
		}
		return Version{sv: sv}
	}

	sv, err := semver.NewVersion(fmt.Sprintf("%d.%d.%d", v.Major(), v.Minor(), v.Patch()+1))
	if err != nil {
		panic(err)
	}
	return Version{sv: sv}
}
