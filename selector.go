package resolver

import (
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// SelectorOption configures a single FindSolution call.
type SelectorOption func(*solveOptions)

// WithTimeout bounds how long a solve may run before returning
// *TimeBoundExceeded. A zero or negative d disables the timeout.
func WithTimeout(d time.Duration) SelectorOption {
	return func(o *solveOptions) { o.timeout = d }
}

// WithBacktrackBudget bounds how many backtracks a solve may perform before
// returning *TimeBoundExceeded. A zero or negative n disables the budget.
func WithBacktrackBudget(n int) SelectorOption {
	return func(o *solveOptions) { o.backtrackBudget = n }
}

// WithValidPackages further restricts which packages may appear in any
// returned assignment (spec §4.5 `valid_packages`). A dependency into a
// package outside names forces the depending version's variable toward
// ABSENT during ordinary propagation; names outside this set never show up
// in the result even if reachable from the top-level constraints.
func WithValidPackages(names ...string) SelectorOption {
	return func(o *solveOptions) {
		set := make(map[string]bool, len(names))
		for _, n := range names {
			set[n] = true
		}
		o.validPackages = set
	}
}

// Selector is the facade spec.md §4.5 describes: Validate → Build → Solve
// → (Diagnose on UNSAT), collapsed behind one entry point, the way the
// teacher's Solve method hides its own
// createVersionQueue/findValidVersion/backtrack chain from callers. It
// accepts an optional logger threaded down to the solver and diagnoser,
// and is instrumented with the Prometheus metrics in metrics.go.
type Selector struct {
	graph *Graph
	log   *logrus.Logger
}

// NewSelector returns a Selector over graph. A nil logger defaults to a
// fresh logrus.Logger.
func NewSelector(graph *Graph, log *logrus.Logger) *Selector {
	if log == nil {
		log = logrus.New()
	}
	return &Selector{graph: graph, log: log}
}

// FindSolution validates constraints, builds the CSP, solves it, and on
// UNSAT runs the Diagnoser to explain the failure. It returns exactly one
// of: an Assignment; *InvalidSolutionConstraints; *NoSolutionExists;
// *TimeBoundExceeded; or a wrapped internal error.
func (s *Selector) FindSolution(constraints []SolutionConstraint, opts ...SelectorOption) (*Assignment, error) {
	var options solveOptions
	for _, o := range opts {
		o(&options)
	}

	timer := observeSolveStart()
	assignment, err := s.findSolution(constraints, options)
	timer.observeDuration()

	switch {
	case err == nil:
		solveResultsTotal.WithLabelValues("sat").Inc()
	case isInvalid(err):
		solveResultsTotal.WithLabelValues("invalid").Inc()
	case isUnsat(err):
		solveResultsTotal.WithLabelValues("unsat").Inc()
	case isTimeout(err):
		solveResultsTotal.WithLabelValues("timeout").Inc()
	default:
		solveResultsTotal.WithLabelValues("internal").Inc()
	}

	return assignment, err
}

func (s *Selector) findSolution(constraints []SolutionConstraint, options solveOptions) (*Assignment, error) {
	problem, err := NewProblemBuilder(s.graph).Build(constraints, options.validPackages)
	if err != nil {
		return nil, err // *InvalidSolutionConstraints
	}

	sv := newSolver(problem, options, s.log)
	assignment, err := sv.solve()
	solveBacktracksTotal.Add(float64(sv.backtracks))
	if err != nil {
		return nil, err // *TimeBoundExceeded
	}
	if assignment != nil {
		return assignment, nil
	}

	diagnosis, diagErr := NewDiagnoser(s.graph, s.log).Diagnose(constraints, options)
	if diagErr != nil {
		return nil, errors.Wrap(diagErr, "solving diagnostic probe")
	}
	return nil, diagnosis
}

func isInvalid(err error) bool {
	_, ok := err.(*InvalidSolutionConstraints)
	return ok
}

func isUnsat(err error) bool {
	_, ok := err.(*NoSolutionExists)
	return ok
}

func isTimeout(err error) bool {
	_, ok := err.(*TimeBoundExceeded)
	return ok
}
