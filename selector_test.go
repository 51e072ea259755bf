package resolver

import "testing"

func TestSelector_S1_topLevelEqualityPrunesInducedChoice(t *testing.T) {
	g := newSeedGraph()
	a, _ := g.Lookup("A")
	b, _ := g.Lookup("B")

	sel := NewSelector(g, nil)
	got, err := sel.FindSolution([]SolutionConstraint{
		{Package: a, Constraint: mkc("")},
		{Package: b, Constraint: mkc("=1")},
	})
	if err != nil {
		t.Fatalf("expected a solution, got error: %v", err)
	}

	want := map[string]string{"A": "1", "B": "1", "D": "2"}
	assertAssignment(t, got, want, []string{"C"})
}

func TestSelector_S3_mostConstrainedPackageIsD(t *testing.T) {
	g := newSeedGraph()
	b, _ := g.Lookup("B")
	c, _ := g.Lookup("C")

	sel := NewSelector(g, nil)
	_, err := sel.FindSolution([]SolutionConstraint{
		{Package: b, Constraint: mkc("=3")},
		{Package: c, Constraint: mkc("=2")},
	})

	nse, ok := err.(*NoSolutionExists)
	if !ok {
		t.Fatalf("expected *NoSolutionExists, got %T (%v)", err, err)
	}
	if nse.MostConstrainedPackage != "D" {
		t.Fatalf("most constrained package = %q, want D", nse.MostConstrainedPackage)
	}
	if len(nse.Paths) == 0 {
		t.Fatal("expected at least one explanation path")
	}
}

func TestSelector_S3_offendingConstraintIsTheSecond(t *testing.T) {
	g := newSeedGraph()
	b, _ := g.Lookup("B")
	c, _ := g.Lookup("C")

	// [B=3] alone is satisfiable (B3 pulls in D=1); adding [C=2] (which
	// pulls in D=2) is what first makes the prefix unsatisfiable, so Goal
	// A's binary search should land on index 1, the C=2 constraint.
	sel := NewSelector(g, nil)
	_, err := sel.FindSolution([]SolutionConstraint{
		{Package: b, Constraint: mkc("=3")},
		{Package: c, Constraint: mkc("=2")},
	})

	nse, ok := err.(*NoSolutionExists)
	if !ok {
		t.Fatalf("expected *NoSolutionExists, got %T (%v)", err, err)
	}
	if nse.OffendingConstraintIndex != 1 {
		t.Fatalf("offending constraint index = %d, want 1", nse.OffendingConstraintIndex)
	}
}

func TestSelector_S4_transitiveDependencyOnNonExistentPackage(t *testing.T) {
	g := NewGraph()
	depends := g.Package("depends_on_nosuch")
	nosuch := g.Package("nosuch") // auto-vivified, never given a version: non-existent

	v1 := depends.AddVersion(mkv("1"))
	v1.AddDependency(nosuch, mkc(""))

	sel := NewSelector(g, nil)
	_, err := sel.FindSolution([]SolutionConstraint{
		{Package: depends, Constraint: mkc("")},
	})

	nse, ok := err.(*NoSolutionExists)
	if !ok {
		t.Fatalf("expected *NoSolutionExists, got %T (%v)", err, err)
	}
	if nse.MostConstrainedPackage != "nosuch" {
		t.Fatalf("most constrained package = %q, want nosuch", nse.MostConstrainedPackage)
	}
}

func TestSelector_S5_invalidConstraintsAggregated(t *testing.T) {
	g := newSeedGraph()
	a, _ := g.Lookup("A")
	b, _ := g.Lookup("B")
	nosuch := g.Package("nosuch")
	nosuch2 := g.Package("nosuch2")

	sel := NewSelector(g, nil)
	_, err := sel.FindSolution([]SolutionConstraint{
		{Package: nosuch, Constraint: mkc("")},
		{Package: nosuch2, Constraint: mkc("")},
		{Package: a, Constraint: mkc(">=10")},
		{Package: b, Constraint: mkc(">=50")},
	})

	invalid, ok := err.(*InvalidSolutionConstraints)
	if !ok {
		t.Fatalf("expected *InvalidSolutionConstraints, got %T (%v)", err, err)
	}
	assertStringSet(t, invalid.NonExistentPackages, []string{"nosuch", "nosuch2"})
	assertStringSet(t, invalid.ConstrainedToNoVersions, []string{"A", "B"})
}

func TestSelector_S6_singleTopLevelPrefersNewestThroughout(t *testing.T) {
	g := newSeedGraph()
	a, _ := g.Lookup("A")

	sel := NewSelector(g, nil)
	got, err := sel.FindSolution([]SolutionConstraint{
		{Package: a, Constraint: mkc("")},
	})
	if err != nil {
		t.Fatalf("expected a solution, got error: %v", err)
	}

	want := map[string]string{"A": "2", "B": "2", "C": "1"}
	assertAssignment(t, got, want, []string{"D"})
}

func TestSelector_validPackagesExcludesDependency(t *testing.T) {
	g := newSeedGraph()
	a, _ := g.Lookup("A")

	sel := NewSelector(g, nil)
	got, err := sel.FindSolution([]SolutionConstraint{
		{Package: a, Constraint: mkc("")},
	}, WithValidPackages("A", "B", "D"))
	if err != nil {
		t.Fatalf("expected a solution, got error: %v", err)
	}

	// C is excluded, so A2 (which requires C=1) can never be chosen; the
	// solver falls back to A1, which pulls in B=1 and D=2 instead of the
	// newest-A solution S6 would otherwise pick.
	want := map[string]string{"A": "1", "B": "1", "D": "2"}
	assertAssignment(t, got, want, []string{"C"})
}

// TestSelector_variableOrderFollowsGraphInsertionNotConstraintOrder builds a
// graph where X is inserted before Y, and where X's and Y's newest versions
// are mutually exclusive through a shared dependency on Z. Spec §4.3's
// determinism rule ties the lexicographic objective's significance order
// to graph insertion order for top-level variables, not to the order the
// caller happens to list its constraints in; listing the constraints as
// [Y, X] must produce the exact same assignment as [X, Y].
func TestSelector_variableOrderFollowsGraphInsertionNotConstraintOrder(t *testing.T) {
	g := NewGraph()
	x := g.Package("X") // inserted first
	y := g.Package("Y") // inserted second
	z := g.Package("Z")

	z.AddVersion(mkv("1"))
	z.AddVersion(mkv("2"))

	x.AddVersion(mkv("1"))
	x2 := x.AddVersion(mkv("2"))
	x2.AddDependency(z, mkc("=1"))

	y.AddVersion(mkv("1"))
	y2 := y.AddVersion(mkv("2"))
	y2.AddDependency(z, mkc("=2"))

	want := map[string]string{"X": "2", "Y": "1", "Z": "1"}

	sel := NewSelector(g, nil)

	gotXY, err := sel.FindSolution([]SolutionConstraint{
		{Package: x, Constraint: mkc("")},
		{Package: y, Constraint: mkc("")},
	})
	if err != nil {
		t.Fatalf("expected a solution for [X, Y], got error: %v", err)
	}
	assertAssignment(t, gotXY, want, nil)

	gotYX, err := sel.FindSolution([]SolutionConstraint{
		{Package: y, Constraint: mkc("")},
		{Package: x, Constraint: mkc("")},
	})
	if err != nil {
		t.Fatalf("expected a solution for [Y, X], got error: %v", err)
	}
	assertAssignment(t, gotYX, want, nil)
}

func assertAssignment(t *testing.T, got *Assignment, want map[string]string, absentNames []string) {
	t.Helper()
	for name, wantVer := range want {
		gotVer, ok := got.Version(name)
		if !ok {
			t.Errorf("%s: expected selected version %s, got ABSENT", name, wantVer)
			continue
		}
		if gotVer != wantVer {
			t.Errorf("%s: got version %s, want %s", name, gotVer, wantVer)
		}
	}
	for _, name := range absentNames {
		if _, ok := got.Version(name); ok {
			t.Errorf("%s: expected ABSENT, but it was selected", name)
		}
	}
}

func assertStringSet(t *testing.T, got []string, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	seen := make(map[string]bool, len(got))
	for _, g := range got {
		seen[g] = true
	}
	for _, w := range want {
		if !seen[w] {
			t.Errorf("missing %q in %v", w, got)
		}
	}
}
