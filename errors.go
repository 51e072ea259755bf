package resolver

import (
	"bytes"
	"fmt"
	"strings"
	"time"
)

// InvalidSolutionConstraints aggregates every problem found while validating
// the caller's top-level constraints, before any solving is attempted (spec
// §4.2 "Validation", §7 "input-inconsistent"). Mirrors the teacher's
// practice of returning one compound SolveError with Children(), rather than
// failing on the first bad input.
type InvalidSolutionConstraints struct {
	NonExistentPackages     []string
	ConstrainedToNoVersions []string
}

func (e *InvalidSolutionConstraints) Error() string {
	var buf bytes.Buffer
	buf.WriteString("invalid solution constraints:")
	for _, n := range e.NonExistentPackages {
		fmt.Fprintf(&buf, "\n\t%q: package does not exist", n)
	}
	for _, n := range e.ConstrainedToNoVersions {
		fmt.Fprintf(&buf, "\n\t%q: constraint matches no existing version", n)
	}
	return buf.String()
}

// ExplanationStep is one edge in a Diagnoser explanation path: a package
// name and the (rendered) constraint imposed on that package — the
// top-level constraint for the first step, otherwise the previous step's
// dependency constraint.
type ExplanationStep struct {
	PackageName string
	Constraint  string
}

// ExplanationPath is an ordered chain of ExplanationSteps from a top-level
// constrained package down to the most-constrained package.
type ExplanationPath []ExplanationStep

func (p ExplanationPath) String() string {
	parts := make([]string, len(p))
	for i, s := range p {
		parts[i] = fmt.Sprintf("%s {%s}", s.PackageName, s.Constraint)
	}
	return strings.Join(parts, " -> ")
}

// NoSolutionExists is returned when the solver proves UNSAT on a non-empty,
// valid input. It carries the Diagnoser's findings: which top-level
// constraint first made the problem infeasible, which package is most
// constrained, and the explanation paths that justify that conclusion.
type NoSolutionExists struct {
	OffendingConstraintIndex int
	MostConstrainedPackage   string
	Paths                    []ExplanationPath
	Message                  string
}

func (e *NoSolutionExists) Error() string {
	return e.Message
}

func renderNoSolutionMessage(pkg string, paths []ExplanationPath) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "no solution exists: %q is over-constrained", pkg)
	for _, p := range paths {
		fmt.Fprintf(&buf, "\n\t%s", p.String())
	}
	return buf.String()
}

// TimeBoundExceeded is returned when a solve is aborted by its timeout or
// backtrack-count budget before reaching either a solution or a proof of
// UNSAT (spec §4.3 "Timeouts / limits", §7 "resource").
type TimeBoundExceeded struct {
	Backtracks int
	Elapsed    time.Duration
}

func (e *TimeBoundExceeded) Error() string {
	return fmt.Sprintf("time bound exceeded after %d backtracks (%s elapsed)", e.Backtracks, e.Elapsed)
}

// conflictKind enumerates the ways a candidate value can be found
// inadmissible during propagation, mirroring the teacher's family of
// *Failure types in errors.go (versionNotAllowedFailure,
// constraintNotAllowedFailure) collapsed into one tagged struct since this
// solver's propagator is generic over packages rather than Go-specific
// "projects".
type conflictKind uint8

const (
	conflictNotAllowedByConstraint conflictKind = iota
)

// conflict records why a variable's domain was wiped out during
// propagation. propagateFixpoint returns it to the search, which only
// renders it in the debug trace; the Diagnoser's blame accumulation reads
// the solver's blameCounts instead.
type conflict struct {
	kind      conflictKind
	varName   string
	candidate string // rendered version or "ABSENT"
	cause     string // rendered constraint or package name that caused it
	causedBy  string // package name whose constraint is at fault
}

func (c conflict) String() string {
	if c.kind == conflictNotAllowedByConstraint {
		return fmt.Sprintf("%s candidate %s excluded by constraint %s from %s", c.varName, c.candidate, c.cause, c.causedBy)
	}
	return "unknown conflict"
}
