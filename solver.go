package resolver

import (
	"time"

	"github.com/sirupsen/logrus"
)

// solveOptions bounds how much work a solve is allowed to do before giving
// up with TimeBoundExceeded, per spec §4.3 "Timeouts / limits".
type solveOptions struct {
	timeout         time.Duration
	backtrackBudget int
	validPackages   map[string]bool // nil means "no restriction"
}

// Assignment is the result of a successful solve: an ordered mapping from
// package name to either a selected version string or "" for a package the
// solution omits entirely (ABSENT). Order matches the problem's variable
// order (top-level packages first, then induced packages in discovery
// order), the same determinism rule spec §4.3 applies to search itself.
type Assignment struct {
	order  []string
	values map[string]string // package name -> version string, absent keys mean ABSENT
}

// Names returns every package name in the problem, in variable order.
func (a *Assignment) Names() []string {
	out := make([]string, len(a.order))
	copy(out, a.order)
	return out
}

// Version returns the selected version string for name and whether the
// package was selected at all (false means ABSENT or unknown name).
func (a *Assignment) Version(name string) (string, bool) {
	v, ok := a.values[name]
	return v, ok
}

// solver runs propagation and branch-and-bound search over a built problem.
// Grounded on the teacher's solver.go: solve()/backtrack()/selectVersion()/
// unselectLast() become search()/the recursive call stack/the versionQueue
// loop/domain-snapshot restore respectively, generalized from "pick a
// project version" to "assign a CSP variable" and from immediate SAT
// failure to value-elimination propagation.
type solver struct {
	p       *problem
	domains []bitDomain
	opts    solveOptions
	log     *logrus.Logger

	backtracks int
	started    time.Time

	incumbent      *Assignment
	incumbentScore scoreTuple
	haveIncumbent  bool

	// blameCounts tallies, per package name, how many times a domain
	// wipeout was traced back to that package across the whole search —
	// not just the branch that ultimately failed. The Diagnoser's
	// most-constrained-package goal (spec §4.4 Goal B) reads this after a
	// full UNSAT search rather than re-deriving it from scratch.
	blameCounts map[string]int
}

func newSolver(p *problem, opts solveOptions, log *logrus.Logger) *solver {
	if log == nil {
		log = logrus.New()
	}
	domains := make([]bitDomain, len(p.vars))
	for i, v := range p.vars {
		domains[i] = v.domain
	}
	return &solver{p: p, domains: domains, opts: opts, log: log, blameCounts: make(map[string]int)}
}

// solve runs the full search and returns either the lexicographically best
// Assignment, or an error: *TimeBoundExceeded if the budget ran out, or
// nil-assignment-with-nil-error if the problem is UNSAT (the caller invokes
// the Diagnoser in that case).
func (s *solver) solve() (*Assignment, error) {
	s.started = time.Now()

	conflict, ok := s.propagateFixpoint()
	if !ok {
		traceWipeout(s.log, "initial propagation", conflict)
		return nil, nil
	}

	if err := s.search(0); err != nil {
		return nil, err
	}
	if !s.haveIncumbent {
		return nil, nil
	}
	return s.incumbent, nil
}

func (s *solver) search(i int) error {
	if err := s.checkBudget(); err != nil {
		return err
	}

	if i == len(s.p.vars) {
		s.considerComplete()
		return nil
	}

	v := s.p.vars[i]
	queue := newVersionQueue(v.name(), s.domains[i], len(v.versions), !v.required)

	for {
		cand, ok := queue.current()
		if !ok {
			return nil
		}

		snapshot := s.snapshot()
		s.domains[i] = singletonDomain(cand)
		traceAssign(s.log, i, v.name(), cand)

		c, propagated := s.propagateFixpoint()
		if !propagated {
			traceWipeout(s.log, v.name(), c)
			s.restore(snapshot)
			queue.advance()
			s.backtracks++
			if err := s.checkBudget(); err != nil {
				return err
			}
			continue
		}

		if err := s.search(i + 1); err != nil {
			return err
		}

		traceBacktrack(s.log, v.name())
		s.restore(snapshot)
		queue.advance()
		s.backtracks++
		if err := s.checkBudget(); err != nil {
			return err
		}
	}
}

func (s *solver) considerComplete() {
	tuple, assignment := s.scoreCurrent()
	if !s.haveIncumbent || tuple.better(s.incumbentScore) {
		s.haveIncumbent = true
		s.incumbentScore = tuple
		s.incumbent = assignment
		traceIncumbent(s.log, tuple)
	}
}

func (s *solver) checkBudget() error {
	if s.opts.timeout > 0 && time.Since(s.started) > s.opts.timeout {
		return &TimeBoundExceeded{Backtracks: s.backtracks, Elapsed: time.Since(s.started)}
	}
	if s.opts.backtrackBudget > 0 && s.backtracks > s.opts.backtrackBudget {
		return &TimeBoundExceeded{Backtracks: s.backtracks, Elapsed: time.Since(s.started)}
	}
	return nil
}

func (s *solver) snapshot() []bitDomain {
	out := make([]bitDomain, len(s.domains))
	copy(out, s.domains)
	return out
}

func (s *solver) restore(snapshot []bitDomain) {
	copy(s.domains, snapshot)
}

func singletonDomain(value int) bitDomain {
	if value == absent {
		return bitDomain(1 << absentBit)
	}
	return bitDomain(1 << uint(versionBit(value)))
}

// propagateFixpoint applies every propagator repeatedly until no domain
// changes, or until some variable's domain is wiped out, in which case it
// returns the conflict that caused the wipeout and false.
//
// Each conditional (dependency) propagator is applied in both directions
// spec §4.3 names: forward ("when domain(p) is pinned to i, intersect
// domain(q) with S_{p,i}") and backward ("when j ∉ S_{p,i} becomes the
// only remaining value in domain(q)" — i.e. S_{p,i} no longer intersects
// domain(q) at all — "remove i from domain(p)"). Without the backward
// half, a doomed candidate i of p survives in its domain until the search
// actually assigns p=i and only then discovers q's domain is incompatible;
// with it, i is eliminated as soon as q's domain narrows enough to rule it
// out, pruning branches the search would otherwise have to visit. Direct
// (top-level) propagators have no "from" side and so only ever apply
// forward.
func (s *solver) propagateFixpoint() (conflict, bool) {
	for {
		changed := false
		for _, prop := range s.p.propagators {
			to := s.p.vars[prop.toIdx]
			mask := admissibleMask(to.versions, prop.constraint)

			if prop.fromIdx == -1 || prop.applies(s.domains[prop.fromIdx]) {
				// admissibleMask never sets the ABSENT bit: for a
				// conditional propagator that's exactly right (a triggered
				// dependency forces the dependee to exist); for a direct
				// (top-level) propagator it would wrongly strip ABSENT
				// from a var that isn't required, so it's preserved here
				// if still present.
				fwdMask := mask
				if prop.fromIdx == -1 && s.domains[prop.toIdx].Has(absent) {
					fwdMask |= 1 << absentBit
				}
				next := s.domains[prop.toIdx].Intersect(fwdMask)

				if next != s.domains[prop.toIdx] {
					s.domains[prop.toIdx] = next
					changed = true

					if next.IsEmpty() {
						s.blameCounts[to.name()]++
						return conflict{
							kind:      conflictNotAllowedByConstraint,
							varName:   to.name(),
							candidate: "*",
							cause:     prop.constraint.String(),
							causedBy:  s.causeName(prop),
						}, false
					}
				}
			}

			if prop.fromIdx == -1 {
				continue
			}
			from := s.p.vars[prop.fromIdx]
			fromDomain := s.domains[prop.fromIdx]
			if !fromDomain.Has(prop.triggerVersionIdx) {
				continue
			}
			if !mask.Intersect(s.domains[prop.toIdx]).IsEmpty() {
				continue
			}

			nextFrom := fromDomain.Remove(prop.triggerVersionIdx)
			if nextFrom == fromDomain {
				continue
			}
			s.domains[prop.fromIdx] = nextFrom
			changed = true

			if nextFrom.IsEmpty() {
				s.blameCounts[from.name()]++
				return conflict{
					kind:      conflictNotAllowedByConstraint,
					varName:   from.name(),
					candidate: "*",
					cause:     prop.constraint.String(),
					causedBy:  to.name(),
				}, false
			}
		}
		if !changed {
			return conflict{}, true
		}
	}
}

func (s *solver) causeName(prop propagator) string {
	if prop.fromIdx == -1 {
		return "<top-level>"
	}
	return s.p.vars[prop.fromIdx].name()
}

// scoreTuple is the branch-and-bound objective's comparable representation
// of a complete assignment: newest top-level versions first, then fewest
// induced packages, then newest induced versions — spec §4.3's
// lexicographic, three-level objective.
type scoreTuple struct {
	topLevel     []int
	inducedCount int
	induced      []int // one entry per induced var, in fixed var order; -1 means ABSENT
}

// better reports whether t is strictly preferred over other.
func (t scoreTuple) better(other scoreTuple) bool {
	for i := range t.topLevel {
		if t.topLevel[i] != other.topLevel[i] {
			return t.topLevel[i] > other.topLevel[i]
		}
	}
	if t.inducedCount != other.inducedCount {
		return t.inducedCount < other.inducedCount
	}
	for i := range t.induced {
		if t.induced[i] != other.induced[i] {
			return t.induced[i] > other.induced[i]
		}
	}
	return false
}

func (s *solver) scoreCurrent() (scoreTuple, *Assignment) {
	var tuple scoreTuple
	a := &Assignment{values: make(map[string]string, len(s.p.vars))}

	for i, v := range s.p.vars {
		a.order = append(a.order, v.name())
		val := s.domains[i].SingletonValue()
		if val == absent {
			if !v.required {
				tuple.induced = append(tuple.induced, -1)
			}
			continue
		}
		a.values[v.name()] = v.versions[val].Version().String()
		if v.required {
			tuple.topLevel = append(tuple.topLevel, val)
		} else {
			tuple.inducedCount++
			tuple.induced = append(tuple.induced, val)
		}
	}

	return tuple, a
}
