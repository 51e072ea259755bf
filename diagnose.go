package resolver

import (
	"sort"

	"github.com/sirupsen/logrus"
)

// Diagnoser explains an UNSAT result. It never runs on its own; the
// Selector facade invokes it only after the solver has already proven no
// solution exists, reusing the same graph and a fresh builder/solver pair
// per probe rather than inventing a separate analysis engine — the Design
// Notes call this out explicitly ("retain the propagator and amortise
// allocations across probes").
//
// Grounded on the teacher's compound failure types in errors.go
// (disjointConstraintFailure, versionNotAllowedFailure,
// constraintNotAllowedFailure) and their traceString() rendering, which
// already explains one failing edge as "from X at version Y"; Diagnose
// generalizes that to a full path of edges.
type Diagnoser struct {
	graph *Graph
	log   *logrus.Logger
}

// NewDiagnoser returns a Diagnoser over graph. A nil logger defaults to a
// fresh logrus.Logger, matching the solver's own convention.
func NewDiagnoser(graph *Graph, log *logrus.Logger) *Diagnoser {
	if log == nil {
		log = logrus.New()
	}
	return &Diagnoser{graph: graph, log: log}
}

// Diagnose analyzes why constraints has no solution and returns the
// populated NoSolutionExists. Callers are expected to have already
// confirmed UNSAT (the Selector does this); Diagnose does not re-derive
// that fact beyond what each probe naturally tells it.
func (d *Diagnoser) Diagnose(constraints []SolutionConstraint, opts solveOptions) (*NoSolutionExists, error) {
	offendingIdx, err := d.firstOffendingConstraint(constraints, opts)
	if err != nil {
		return nil, err
	}

	mostConstrained, err := d.mostConstrainedPackage(constraints, opts)
	if err != nil {
		return nil, err
	}

	paths := d.explanationPaths(constraints, mostConstrained)

	return &NoSolutionExists{
		OffendingConstraintIndex: offendingIdx,
		MostConstrainedPackage:   mostConstrained,
		Paths:                    paths,
		Message:                  renderNoSolutionMessage(mostConstrained, paths),
	}, nil
}

// firstOffendingConstraint performs Goal A: a binary search over the
// top-level constraint prefix to find the smallest k such that
// constraints[:k] is already unsatisfiable, returning k-1 (the 0-based
// index of the constraint whose addition first made the prefix UNSAT).
// constraints[:0] (the empty set) is always trivially satisfiable, and
// constraints (the full set) is assumed already known UNSAT by the caller.
func (d *Diagnoser) firstOffendingConstraint(constraints []SolutionConstraint, opts solveOptions) (int, error) {
	lo, hi := 0, len(constraints)
	for lo+1 < hi {
		mid := (lo + hi) / 2
		unsat, err := d.isUnsat(constraints[:mid], opts)
		if err != nil {
			return 0, err
		}
		if unsat {
			hi = mid
		} else {
			lo = mid
		}
	}
	return hi - 1, nil
}

func (d *Diagnoser) isUnsat(constraints []SolutionConstraint, opts solveOptions) (bool, error) {
	if len(constraints) == 0 {
		return false, nil
	}
	problem, err := NewProblemBuilder(d.graph).Build(constraints, opts.validPackages)
	if err != nil {
		// A prefix of an already-validated constraint set is always
		// individually valid; this branch exists only as a defensive
		// guard against a caller skipping validation.
		return false, err
	}
	assignment, err := newSolver(problem, opts, d.log).solve()
	if err != nil {
		return false, err
	}
	return assignment == nil, nil
}

// mostConstrainedPackage performs Goal B: re-solve the full problem while
// tallying, per package, how many times propagation blamed it for a domain
// wipeout anywhere in the search (not just the final failing branch), then
// returns the package with the highest tally. Ties are broken
// name-lexicographically, the open question spec.md leaves to this
// module's explicit choice (documented in DESIGN.md).
func (d *Diagnoser) mostConstrainedPackage(constraints []SolutionConstraint, opts solveOptions) (string, error) {
	problem, err := NewProblemBuilder(d.graph).Build(constraints, opts.validPackages)
	if err != nil {
		return "", err
	}
	s := newSolver(problem, opts, d.log)
	if _, err := s.solve(); err != nil {
		return "", err
	}

	var candidates []string
	best := -1
	for name, count := range s.blameCounts {
		if count > best {
			best = count
		}
		candidates = append(candidates, name)
	}
	var tied []string
	for _, name := range candidates {
		if s.blameCounts[name] == best {
			tied = append(tied, name)
		}
	}
	sort.Strings(tied)
	if len(tied) == 0 {
		return "", nil
	}
	return tied[0], nil
}

// explanationPaths performs Goal C: for each top-level constrained
// package, find a shortest chain of dependency edges from it down to
// target, rendered as topPkg {constraint} -> dep1 {constraint} -> ... ->
// target. A package's representative dependency edges for traversal
// purposes are its newest version's (the version the solver would try
// first), since the goal is one demonstrative path per top-level package,
// not an exhaustive enumeration of every version's edges.
func (d *Diagnoser) explanationPaths(constraints []SolutionConstraint, target string) []ExplanationPath {
	var paths []ExplanationPath
	for _, c := range constraints {
		if path, ok := d.shortestPath(c.Package.Name(), c.Constraint.String(), target); ok {
			paths = append(paths, path)
		}
	}
	return paths
}

type pathEdge struct {
	parent     string
	constraint string
}

func (d *Diagnoser) shortestPath(from, fromConstraint, target string) (ExplanationPath, bool) {
	if from == target {
		return ExplanationPath{{PackageName: from, Constraint: fromConstraint}}, true
	}

	visited := map[string]pathEdge{from: {constraint: fromConstraint}}
	queue := []string{from}

	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]

		pkg, ok := d.graph.Lookup(name)
		if !ok {
			continue
		}
		newest := newestVersion(pkg)
		if newest == nil {
			continue
		}
		for _, dep := range newest.Dependencies() {
			if _, seen := visited[dep.TargetName]; seen {
				continue
			}
			visited[dep.TargetName] = pathEdge{parent: name, constraint: dep.Constraint.String()}
			queue = append(queue, dep.TargetName)
		}
	}

	if _, reached := visited[target]; !reached {
		return nil, false
	}

	var steps []ExplanationStep
	cur := target
	for {
		edge := visited[cur]
		steps = append([]ExplanationStep{{PackageName: cur, Constraint: edge.constraint}}, steps...)
		if cur == from {
			break
		}
		cur = edge.parent
	}
	return ExplanationPath(steps), true
}

func newestVersion(pkg *Package) *PackageVersion {
	vs := pkg.Versions()
	if len(vs) == 0 {
		return nil
	}
	return vs[len(vs)-1]
}
