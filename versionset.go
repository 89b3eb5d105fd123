package pkggraph

import (
	"sort"
	"strings"
)

// VersionSet is a disjoint, sorted union of half-open ranges [lo, hi) over
// the semantic version domain, plus the two atoms Any and Empty. It is the
// canonical representation: ranges are always coalesced (touching or
// overlapping ranges merge into one), and a range with lo == hi collapses
// to Empty.
//
// The zero value is Empty.
type VersionSet struct {
	any    bool
	ranges []versionRange
}

type versionRange struct {
	lo, hi Version
}

// EmptySet returns the version set that matches nothing.
func EmptySet() VersionSet { return VersionSet{} }

// AnySet returns the version set that matches every version.
func AnySet() VersionSet { return VersionSet{any: true} }

// RangeSet returns the half-open range [lo, hi). If lo >= hi the result is
// Empty, mirroring the collapse rule in spec.md §4.1.
func RangeSet(lo, hi Version) VersionSet {
	if !lo.Less(hi) {
		return EmptySet()
	}
	return VersionSet{ranges: []versionRange{{lo: lo, hi: hi}}}
}

// Exact returns the version set containing only v: range(v, nextPatch(v)).
func Exact(v Version) VersionSet {
	return RangeSet(v, v.nextPatch())
}

// Contains reports whether v falls within the set.
func (vs VersionSet) Contains(v Version) bool {
	if vs.any {
		return true
	}
	for _, r := range vs.ranges {
		if !v.Less(r.lo) && v.Less(r.hi) {
			return true
		}
	}
	return false
}

// IsEmpty reports whether the set matches no version.
func (vs VersionSet) IsEmpty() bool { return !vs.any && len(vs.ranges) == 0 }

// IsAny reports whether the set matches every version.
func (vs VersionSet) IsAny() bool { return vs.any }

// SupportsPrerelease reports whether any bound of the set is a pre-release
// version, per spec.md §4.1's "supports pre-releases" flag.
func (vs VersionSet) SupportsPrerelease() bool {
	for _, r := range vs.ranges {
		if r.lo.IsPrerelease() || r.hi.IsPrerelease() {
			return true
		}
	}
	return false
}

// Union returns the version set matching any version that a or b matches.
func Union(a, b VersionSet) VersionSet {
	if a.any || b.any {
		return AnySet()
	}
	return UnionOf([]VersionSet{a, b})
}

// UnionOf computes the union of all sets in list, sweeping their sorted
// lower bounds left to right and merging overlapping or touching ranges.
func UnionOf(list []VersionSet) VersionSet {
	for _, vs := range list {
		if vs.any {
			return AnySet()
		}
	}

	var all []versionRange
	for _, vs := range list {
		all = append(all, vs.ranges...)
	}
	if len(all) == 0 {
		return EmptySet()
	}

	sort.Slice(all, func(i, j int) bool { return all[i].lo.Less(all[j].lo) })

	merged := []versionRange{all[0]}
	for _, r := range all[1:] {
		last := &merged[len(merged)-1]
		// Touching or overlapping: r.lo <= last.hi merges, since ranges are
		// half-open and last.hi is itself not included in last.
		if !last.hi.Less(r.lo) {
			if last.hi.Less(r.hi) {
				last.hi = r.hi
			}
			continue
		}
		merged = append(merged, r)
	}

	return VersionSet{ranges: merged}
}

// Intersection returns the version set matching any version that both a
// and b match.
func Intersection(a, b VersionSet) VersionSet {
	if a.any {
		return b
	}
	if b.any {
		return a
	}

	var out []versionRange
	i, j := 0, 0
	for i < len(a.ranges) && j < len(b.ranges) {
		ra, rb := a.ranges[i], b.ranges[j]
		lo := ra.lo
		if rb.lo.Less(lo) {
			// keep ra.lo
		} else {
			lo = rb.lo
		}
		hi := ra.hi
		if rb.hi.Less(hi) {
			hi = rb.hi
		}
		if lo.Less(hi) {
			out = append(out, versionRange{lo: lo, hi: hi})
		}

		if ra.hi.Less(rb.hi) {
			i++
		} else {
			j++
		}
	}

	if len(out) == 0 {
		return EmptySet()
	}
	return VersionSet{ranges: out}
}

// Difference subtracts every range of b from a, using half-open-interval
// arithmetic and the same patch-successor rule nextPatch uses, so that
// subtracting an exact pre-release version splits the enclosing range
// precisely at its successor.
func Difference(a, b VersionSet) VersionSet {
	if b.any {
		return EmptySet()
	}
	if a.any || b.IsEmpty() {
		return a
	}

	remaining := append([]versionRange{}, a.ranges...)
	for _, sub := range b.ranges {
		var next []versionRange
		for _, r := range remaining {
			next = append(next, subtractRange(r, sub)...)
		}
		remaining = next
	}

	if len(remaining) == 0 {
		return EmptySet()
	}
	return VersionSet{ranges: remaining}
}

// subtractRange removes sub from r, producing zero, one, or two resulting
// half-open ranges.
func subtractRange(r, sub versionRange) []versionRange {
	// No overlap.
	if !sub.lo.Less(r.hi) || !r.lo.Less(sub.hi) {
		return []versionRange{r}
	}

	var out []versionRange
	if r.lo.Less(sub.lo) {
		out = append(out, versionRange{lo: r.lo, hi: sub.lo})
	}
	if sub.hi.Less(r.hi) {
		out = append(out, versionRange{lo: sub.hi, hi: r.hi})
	}
	return out
}

// Equal compares the canonical form structurally: Empty, a degenerate
// range(x, x), and an explicit empty range list all compare equal, since
// RangeSet and the sweep in UnionOf already normalize to the same
// representation.
func (vs VersionSet) Equal(o VersionSet) bool {
	if vs.any != o.any {
		return false
	}
	if vs.any {
		return true
	}
	if len(vs.ranges) != len(o.ranges) {
		return false
	}
	for i := range vs.ranges {
		if !vs.ranges[i].lo.Equal(o.ranges[i].lo) || !vs.ranges[i].hi.Equal(o.ranges[i].hi) {
			return false
		}
	}
	return true
}

func (vs VersionSet) String() string {
	if vs.any {
		return "any"
	}
	if vs.IsEmpty() {
		return "empty"
	}

	parts := make([]string, len(vs.ranges))
	for i, r := range vs.ranges {
		parts[i] = "[" + r.lo.String() + ", " + r.hi.String() + ")"
	}
	return strings.Join(parts, " U ")
}
