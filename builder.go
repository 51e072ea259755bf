package resolver

import (
	"fmt"

	"github.com/pkgdag/resolver/version"
)

// fdVar is one finite-domain variable: a package, the ascending-ordered
// version list it ranges over, and the current domain of admissible values
// (ABSENT or a version index). required variables cannot take ABSENT —
// every package reachable only via a dependency that would otherwise
// disappear entirely still gets an ABSENT option, per spec §4.2: absence is
// always on the table unless a top-level constraint rules it out.
type fdVar struct {
	pkg      *Package
	versions []*PackageVersion
	domain   bitDomain
	required bool // true for every top-level constrained package
}

func (v *fdVar) name() string { return v.pkg.Name() }

// propagator is one constraint the solver enforces to a fixpoint.
//
// A direct propagator (fromIdx == -1) is an unconditional restriction of a
// single variable's domain — the encoding of a top-level constraint.
//
// A conditional propagator (fromIdx >= 0) is the encoding of one
// dependency edge: it fires only once vars[fromIdx] has been narrowed to
// the exact singleton triggerVersionIdx, at which point it both forces
// vars[toIdx] out of ABSENT (the depender requires the dependee to exist)
// and restricts vars[toIdx] to versions the edge's constraint admits.
//
// Grounded on the teacher's two constraint sources in solver.go
// (getLockVersionIfValid's direct restriction vs getDependenciesOf's
// induced constraints) generalized into one propagator shape the FD loop
// can iterate over uniformly.
type propagator struct {
	fromIdx           int
	triggerVersionIdx int
	toIdx             int
	constraint        version.Constraint
}

// applies reports whether p should fire given the current domain of
// vars[p.fromIdx] (ignored for direct propagators).
func (p propagator) applies(fromDomain bitDomain) bool {
	if p.fromIdx == -1 {
		return true
	}
	return fromDomain.IsSingleton() && fromDomain.SingletonValue() == p.triggerVersionIdx
}

// problem is the fully-built CSP: one variable per reachable package plus
// the propagators derived from top-level constraints and dependency edges.
// It is immutable once built; the solver mutates only its own working copy
// of each variable's domain.
type problem struct {
	graph       *Graph
	vars        []*fdVar
	varIndex    map[string]int // package name -> index into vars
	propagators []propagator
}

func (p *problem) varFor(name string) (*fdVar, int, bool) {
	i, ok := p.varIndex[name]
	if !ok {
		return nil, 0, false
	}
	return p.vars[i], i, true
}

// ProblemBuilder turns a DependencyGraph and a set of top-level
// SolutionConstraints into a problem ready for the solver. It performs the
// reachability discovery and all upfront validation spec §4.2 requires
// before a single fdVar is created.
type ProblemBuilder struct {
	graph *Graph
}

// NewProblemBuilder returns a builder over graph.
func NewProblemBuilder(graph *Graph) *ProblemBuilder {
	return &ProblemBuilder{graph: graph}
}

// Build validates constraints against the graph, discovers every reachable
// package via BFS from the top-level constrained packages, and returns the
// fully-wired problem. If any constraint names a non-existent package, or
// names a package whose constraint matches none of its existing versions,
// Build returns *InvalidSolutionConstraints and no problem.
//
// validPackages, when non-nil, further restricts which packages may appear
// in the assignment (spec §4.5's `valid_packages` option): every reachable
// package not in the set has its domain pinned to ABSENT (or emptied, if a
// top-level constraint requires that package) before the first
// propagation pass, so any version that depends on it gets eliminated by
// ordinary value-elimination propagation rather than by a special case.
func (b *ProblemBuilder) Build(constraints []SolutionConstraint, validPackages map[string]bool) (*problem, error) {
	var invalid InvalidSolutionConstraints

	for _, c := range constraints {
		if !c.Package.Exists() {
			invalid.NonExistentPackages = append(invalid.NonExistentPackages, c.Package.Name())
			continue
		}
		if len(c.Constraint.SatisfyingVersions(versionsOf(c.Package))) == 0 {
			invalid.ConstrainedToNoVersions = append(invalid.ConstrainedToNoVersions, c.Package.Name())
		}
	}
	if len(invalid.NonExistentPackages) > 0 || len(invalid.ConstrainedToNoVersions) > 0 {
		return nil, &invalid
	}

	reachable := b.reachableFrom(constraints)

	p := &problem{
		graph:    b.graph,
		varIndex: make(map[string]int, len(reachable)),
	}
	for _, name := range reachable {
		pkg, _ := b.graph.Lookup(name)
		if n := len(pkg.Versions()); n > maxDomainVersions {
			return nil, fmt.Errorf("package %q has %d versions; at most %d are supported", name, n, maxDomainVersions)
		}
		p.varIndex[name] = len(p.vars)
		p.vars = append(p.vars, &fdVar{
			pkg:      pkg,
			versions: pkg.Versions(),
			domain:   fullDomain(len(pkg.Versions()), true),
		})
	}

	for _, c := range constraints {
		v, idx, ok := p.varFor(c.Package.Name())
		if !ok {
			continue
		}
		v.required = true
		restrictDomainToConstraint(v, c.Constraint)
		p.propagators = append(p.propagators, propagator{
			fromIdx:    -1,
			toIdx:      idx,
			constraint: c.Constraint,
		})
	}

	if validPackages != nil {
		for _, v := range p.vars {
			if validPackages[v.name()] {
				continue
			}
			if v.required {
				// A top-level constraint demands this package be present,
				// but it's excluded from the assignment entirely: no value
				// satisfies both, so the domain is empty and propagation
				// reports the conflict immediately rather than silently
				// treating it as ABSENT (which would violate top-level
				// satisfaction, spec §8 invariant 2).
				v.domain = bitDomain(0)
			} else {
				v.domain = bitDomain(1 << absentBit)
			}
		}
	}

	for fromIdx, fromVar := range p.vars {
		for _, pv := range fromVar.versions {
			for _, dep := range pv.Dependencies() {
				_, toIdx, ok := p.varFor(dep.TargetName)
				if !ok {
					continue // not reachable (shouldn't happen: BFS follows every edge)
				}
				p.propagators = append(p.propagators, propagator{
					fromIdx:           fromIdx,
					triggerVersionIdx: fromVar.pkg.IndexOf(pv),
					toIdx:             toIdx,
					constraint:        dep.Constraint,
				})
			}
		}
	}

	return p, nil
}

// restrictDomainToConstraint removes every version index from v's domain
// that c does not admit. ABSENT is left untouched here; whether ABSENT
// survives is controlled separately by v.required.
func restrictDomainToConstraint(v *fdVar, c version.Constraint) {
	for i, pv := range v.versions {
		if !c.Includes(pv.Version()) {
			v.domain = v.domain.Remove(i)
		}
	}
	if v.required {
		v.domain = v.domain.Remove(absent)
	}
}

// reachableFrom runs a BFS over dependency edges starting at every
// top-level constrained package, returning package names in discovery
// order (top-level packages first, in graph insertion order, then induced
// packages in BFS order) — the variable ordering spec §4.3's determinism
// rule requires verbatim: "variable ordering is the insertion order of
// packages into the graph for top-level variables." The caller-supplied
// constraints slice only selects which packages are top-level; it must not
// dictate their relative order, or the same constraint set given in a
// different caller-chosen order could pick a different lexicographically
// optimal assignment.
func (b *ProblemBuilder) reachableFrom(constraints []SolutionConstraint) []string {
	var order []string
	seen := make(map[string]bool)
	var queue []string

	topLevel := make(map[string]bool, len(constraints))
	for _, c := range constraints {
		topLevel[c.Package.Name()] = true
	}
	for _, pkg := range b.graph.Packages() {
		name := pkg.Name()
		if topLevel[name] && !seen[name] {
			seen[name] = true
			order = append(order, name)
			queue = append(queue, name)
		}
	}

	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		pkg, ok := b.graph.Lookup(name)
		if !ok {
			continue
		}
		for _, pv := range pkg.Versions() {
			for _, dep := range pv.Dependencies() {
				if seen[dep.TargetName] {
					continue
				}
				seen[dep.TargetName] = true
				order = append(order, dep.TargetName)
				queue = append(queue, dep.TargetName)
			}
		}
	}

	return order
}

func versionsOf(pkg *Package) []version.Version {
	pvs := pkg.Versions()
	out := make([]version.Version, len(pvs))
	for i, pv := range pvs {
		out[i] = pv.Version()
	}
	return out
}
