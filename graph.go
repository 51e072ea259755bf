package resolver

import (
	"sort"

	"github.com/pkgdag/resolver/version"
)

// Graph is a mapping from package name to Package. It auto-vivifies: a
// lookup for a name that has never been seen creates an empty (non-existent)
// placeholder, the same identity on every subsequent lookup.
//
// Grounded on the teacher's Design Notes ("store packages in an
// insertion-ordered name-keyed map") and on typed_radix.go's role as an
// insertion-order-preserving index, simplified here to a plain map plus an
// order slice since this module has no import-path hierarchy to prefix-match
// over.
type Graph struct {
	order []string
	pkgs  map[string]*Package
}

// NewGraph returns an empty dependency graph.
func NewGraph() *Graph {
	return &Graph{pkgs: make(map[string]*Package)}
}

// Package returns the Package named name, auto-vivifying an empty
// (non-existent) placeholder on first reference. Repeated lookups for the
// same name return the same *Package.
func (g *Graph) Package(name string) *Package {
	if p, ok := g.pkgs[name]; ok {
		return p
	}
	p := &Package{name: name, graph: g}
	g.pkgs[name] = p
	g.order = append(g.order, name)
	return p
}

// Lookup returns the Package named name without creating it, and whether it
// was already present in the graph.
func (g *Graph) Lookup(name string) (*Package, bool) {
	p, ok := g.pkgs[name]
	return p, ok
}

// Packages returns every package ever referenced, in the order each name was
// first looked up (the "insertion order" the reachability BFS and variable
// ordering both depend on for determinism, per spec §4.3).
func (g *Graph) Packages() []*Package {
	out := make([]*Package, len(g.order))
	for i, name := range g.order {
		out[i] = g.pkgs[name]
	}
	return out
}

// Package is a named unit with zero or more PackageVersions. A package with
// zero versions is non-existent; existence is a property of its version
// list, not a separate sentinel (per spec Design Notes).
type Package struct {
	name     string
	graph    *Graph
	versions []*PackageVersion
}

// Name returns the package's name, unique within its graph.
func (p *Package) Name() string { return p.name }

// Exists reports whether any version has ever been added to p.
func (p *Package) Exists() bool { return len(p.versions) > 0 }

// AddVersion creates and registers a new PackageVersion for v, keeping the
// package's version list in ascending order so that version-index 0 is
// always the oldest and index k-1 the newest, matching the CSP domain
// encoding in spec §4.2.
func (p *Package) AddVersion(v version.Version) *PackageVersion {
	pv := &PackageVersion{pkg: p, ver: v}

	i := sort.Search(len(p.versions), func(i int) bool {
		return v.Less(p.versions[i].ver) || v.Equal(p.versions[i].ver)
	})
	p.versions = append(p.versions, nil)
	copy(p.versions[i+1:], p.versions[i:])
	p.versions[i] = pv
	return pv
}

// Versions returns the package's versions in ascending order.
func (p *Package) Versions() []*PackageVersion {
	out := make([]*PackageVersion, len(p.versions))
	copy(out, p.versions)
	return out
}

// IndexOf returns the ascending-order index of pv within p, or -1 if pv does
// not belong to p.
func (p *Package) IndexOf(pv *PackageVersion) int {
	for i, c := range p.versions {
		if c == pv {
			return i
		}
	}
	return -1
}

// PackageVersion is one concrete, immutable release of a Package plus its
// (append-only) dependency list.
type PackageVersion struct {
	pkg  *Package
	ver  version.Version
	deps []Dependency
}

// Package returns the owning Package.
func (pv *PackageVersion) Package() *Package { return pv.pkg }

// Version returns this release's Version.
func (pv *PackageVersion) Version() version.Version { return pv.ver }

// AddDependency appends a (targetPackage, constraint) edge to pv. Dependency
// lists are append-only after creation, per spec §3.
func (pv *PackageVersion) AddDependency(target *Package, c version.Constraint) {
	pv.deps = append(pv.deps, Dependency{TargetName: target.name, Constraint: c})
}

// Dependencies returns pv's dependency edges, in the order they were added.
func (pv *PackageVersion) Dependencies() []Dependency {
	out := make([]Dependency, len(pv.deps))
	copy(out, pv.deps)
	return out
}

// Dependency is a (target-package, constraint) edge attached to a specific
// PackageVersion. The target is referenced by name rather than by pointer,
// the way the teacher's ProjectDep carries a ProjectIdentifier rather than a
// pointer into another project's data — it sidesteps reference cycles
// through the graph (A depends on B, B depends on A) at the identity level,
// leaving resolution to an explicit graph lookup at solve time.
type Dependency struct {
	TargetName string
	Constraint version.Constraint
}

// SolutionConstraint is a top-level input constraint on one package.
type SolutionConstraint struct {
	Package    *Package
	Constraint version.Constraint
}
