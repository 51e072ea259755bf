package resolver

import (
	"math/bits"

	"github.com/pkgdag/resolver/version"
)

// absent is the reserved domain value meaning "this package is not part of
// the solution", distinct from any concrete version index (spec §4.1,
// "ABSENT").
const absent = -1

// bitDomain is a small bitset over {ABSENT} ∪ {0..k-1}, where k is the
// number of versions a variable's package has. Bit 0 stands for ABSENT; bit
// i+1 stands for version index i. A uint64 comfortably covers every package
// this solver will see in practice; the builder rejects packages with more
// candidate versions than fit (spec §4.2 notes the domain is always finite
// and small).
//
// Grounded on the teacher's failBag/versionQueue bookkeeping in
// version_queue.go, which tracks "remaining candidates" as a slice;
// collapsing that into a bitset is the idiomatic FD-solver representation
// (see gokando's domain store in the retrieval pack) and makes
// intersection and singleton-detection O(1).
type bitDomain uint64

// fullDomain returns the initial domain for a variable whose package has
// nVersions candidate versions, plus ABSENT, optionally excluding ABSENT
// when the package is a required (non-optional) top-level dependency.
func fullDomain(nVersions int, allowAbsent bool) bitDomain {
	var d bitDomain
	if allowAbsent {
		d |= 1 << absentBit
	}
	for i := 0; i < nVersions; i++ {
		d |= 1 << uint(versionBit(i))
	}
	return d
}

const absentBit = 0

// maxDomainVersions is the most versions one package may have: bit 0 is
// ABSENT, leaving 63 bits of a bitDomain for version indices.
const maxDomainVersions = 63

func versionBit(i int) int { return i + 1 }

// Has reports whether value (absent or a version index) is still in the
// domain.
func (d bitDomain) Has(value int) bool {
	bit := absentBit
	if value != absent {
		bit = versionBit(value)
	}
	return d&(1<<uint(bit)) != 0
}

// Remove returns d with value removed.
func (d bitDomain) Remove(value int) bitDomain {
	bit := absentBit
	if value != absent {
		bit = versionBit(value)
	}
	return d &^ (1 << uint(bit))
}

// IsEmpty reports whether d has no remaining values (a wipeout).
func (d bitDomain) IsEmpty() bool {
	return d == 0
}

// IsSingleton reports whether d has been narrowed to exactly one value.
func (d bitDomain) IsSingleton() bool {
	return d != 0 && d&(d-1) == 0
}

// SingletonValue returns the single remaining value in d. Behavior is
// undefined if !d.IsSingleton().
func (d bitDomain) SingletonValue() int {
	bit := bits.TrailingZeros64(uint64(d))
	if bit == absentBit {
		return absent
	}
	return bit - 1
}

// Intersect returns the values common to d and other.
func (d bitDomain) Intersect(other bitDomain) bitDomain {
	return d & other
}

// admissibleMask returns the bitDomain of version indices (never including
// ABSENT) whose version satisfies c. Intersecting a variable's domain with
// this mask is how the propagator restricts it to a dependency edge's or a
// top-level constraint's admitted versions in one step.
func admissibleMask(versions []*PackageVersion, c version.Constraint) bitDomain {
	var mask bitDomain
	for idx, pv := range versions {
		if c.Includes(pv.Version()) {
			mask |= 1 << uint(versionBit(idx))
		}
	}
	return mask
}
