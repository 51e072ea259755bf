package version

import "testing"

func mkc(body string) Constraint {
	c, err := ParseConstraint(body)
	if err != nil {
		panic(err)
	}
	return c
}

func TestConstraint_bareVersionIsEquals(t *testing.T) {
	c := mkc("1.2.3")
	if !c.Includes(mkv("1.2.3")) {
		t.Fatal("bare version should act as =")
	}
	if c.Includes(mkv("1.2.4")) {
		t.Fatal("bare version should reject other versions")
	}
}

func TestConstraint_operators(t *testing.T) {
	cases := []struct {
		c      string
		in     string
		accept bool
	}{
		{"> 1.0.0", "1.0.1", true},
		{"> 1.0.0", "1.0.0", false},
		{">= 1.0.0", "1.0.0", true},
		{"< 2.0.0", "1.9.9", true},
		{"< 2.0.0", "2.0.0", false},
		{"<= 2.0.0", "2.0.0", true},
		{"==1.2.3", "1.2.3", true},
		{">=1.0.0", "1.0.0", true},
	}

	for _, tc := range cases {
		got := mkc(tc.c).Includes(mkv(tc.in))
		if got != tc.accept {
			t.Errorf("%s includes %s = %v, want %v", tc.c, tc.in, got, tc.accept)
		}
	}
}

func TestConstraint_conjunction(t *testing.T) {
	c := mkc(">= 1.0.0 < 2.0.0")
	if !c.Includes(mkv("1.5.0")) {
		t.Fatal("expected 1.5.0 to satisfy conjunction")
	}
	if c.Includes(mkv("2.0.0")) {
		t.Fatal("expected 2.0.0 to fail conjunction")
	}
}

func TestConstraint_pessimisticMinorCeiling(t *testing.T) {
	c := mkc("~> 1.2")
	if !c.Includes(mkv("1.3.99")) {
		t.Fatal("~> 1.2 should accept 1.3.99")
	}
	if c.Includes(mkv("2.0.0")) {
		t.Fatal("~> 1.2 should reject 2.0.0")
	}
	if !c.Includes(mkv("1.2.0")) {
		t.Fatal("~> 1.2 should accept its own floor")
	}
}

func TestConstraint_pessimisticPatchCeiling(t *testing.T) {
	c := mkc("~> 1.2.3")
	if !c.Includes(mkv("1.2.9")) {
		t.Fatal("~> 1.2.3 should accept 1.2.9")
	}
	if c.Includes(mkv("1.3.0")) {
		t.Fatal("~> 1.2.3 should reject 1.3.0")
	}
}

func TestConstraint_pessimisticSingleComponentRejected(t *testing.T) {
	_, err := ParseConstraint("~> 1")
	if err == nil {
		t.Fatal("expected ~> 1 to be rejected as malformed")
	}
	if _, ok := err.(*MalformedConstraint); !ok {
		t.Fatalf("expected *MalformedConstraint, got %T", err)
	}
}

func TestConstraint_defaultAcceptsAny(t *testing.T) {
	var c Constraint
	if !c.Includes(mkv("0.0.1")) || !c.Includes(mkv("99.0.0")) {
		t.Fatal("zero-value constraint should accept any version")
	}
}

func TestConstraint_intersect(t *testing.T) {
	c := mkc(">= 1.0.0").Intersect(mkc("< 2.0.0"))
	if !c.Includes(mkv("1.5.0")) {
		t.Fatal("expected 1.5.0 to satisfy the intersection")
	}
	if c.Includes(mkv("2.0.0")) || c.Includes(mkv("0.9.0")) {
		t.Fatal("expected intersection to reject values outside either operand's range")
	}
}

func TestConstraint_intersectEmpty(t *testing.T) {
	c := mkc("> 2.0.0").Intersect(mkc("< 1.0.0"))
	if c.Includes(mkv("1.5.0")) || c.Includes(mkv("3.0.0")) {
		t.Fatal("expected disjoint intersection to accept nothing")
	}
}

func TestConstraint_satisfyingVersionsPreservesOrder(t *testing.T) {
	versions := []Version{mkv("1.0.0"), mkv("1.1.0"), mkv("1.2.0"), mkv("2.0.0")}
	got := mkc("~> 1.0").SatisfyingVersions(versions)
	if len(got) != 3 {
		t.Fatalf("expected 3 matches, got %d", len(got))
	}
	for i, v := range got {
		if !v.Equal(versions[i]) {
			t.Fatalf("order not preserved at %d: got %s", i, v)
		}
	}
}
