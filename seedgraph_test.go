package resolver

import "github.com/pkgdag/resolver/version"

// mkc panics on malformed literal constraint fixtures, the same guard the
// teacher's bestiary helpers apply to their own test literals.
func mkc(body string) version.Constraint {
	return version.MustParseConstraint(body)
}

func mkv(body string) version.Version {
	return version.MustParse(body)
}

// newSeedGraph builds the literal graph G from the testable-properties
// seed scenarios: A:{1,2}, B:{1,2,3}, C:{1,2}, D:{1,2} with
// A1->B=1, A1->D=2; A2->B>=2, A2->C=1; B3->D=1; C2->D=2.
func newSeedGraph() *Graph {
	g := NewGraph()

	a, b, c, d := g.Package("A"), g.Package("B"), g.Package("C"), g.Package("D")

	d.AddVersion(mkv("1"))
	d.AddVersion(mkv("2"))
	c.AddVersion(mkv("1"))
	c2 := c.AddVersion(mkv("2"))
	c2.AddDependency(d, mkc("=2"))

	b.AddVersion(mkv("1"))
	b.AddVersion(mkv("2"))
	b3 := b.AddVersion(mkv("3"))
	b3.AddDependency(d, mkc("=1"))

	a1 := a.AddVersion(mkv("1"))
	a1.AddDependency(b, mkc("=1"))
	a1.AddDependency(d, mkc("=2"))
	a2 := a.AddVersion(mkv("2"))
	a2.AddDependency(b, mkc(">=2"))
	a2.AddDependency(c, mkc("=1"))

	return g
}
