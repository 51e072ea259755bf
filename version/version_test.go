package version

import "testing"

// mkv panics on malformed literal test input, the same guard the teacher's
// bestiary helpers (mksvpa, mkc) apply to their own fixtures.
func mkv(body string) Version {
	v, err := Parse(body)
	if err != nil {
		panic(err)
	}
	return v
}

func TestParse_grammar(t *testing.T) {
	cases := []struct {
		in      string
		wantErr bool
	}{
		{"1", false},
		{"1.2", false},
		{"1.2.3", false},
		{"1.2.3-alpha", false},
		{"1.2.3-alpha.1", false},
		{"1.2.3+build.5", false},
		{"1.2.3-alpha+build.5", false},
		{"", true},
		{"v1.2.3", true},
		{"1.2.3.4", true},
		{"a.b.c", true},
	}

	for _, c := range cases {
		_, err := Parse(c.in)
		if c.wantErr && err == nil {
			t.Errorf("Parse(%q): expected error, got nil", c.in)
		}
		if !c.wantErr && err != nil {
			t.Errorf("Parse(%q): unexpected error: %s", c.in, err)
		}
	}
}

func TestParse_defaultsMinorPatch(t *testing.T) {
	v := mkv("1")
	if v.Major() != 1 || v.Minor() != 0 || v.Patch() != 0 {
		t.Fatalf("Parse(\"1\") = %d.%d.%d, want 1.0.0", v.Major(), v.Minor(), v.Patch())
	}
}

func TestCompare_prereleaseBelowRelease(t *testing.T) {
	if mkv("1.0.0").Compare(mkv("1.0.0-alpha")) <= 0 {
		t.Fatal("1.0.0 should compare greater than 1.0.0-alpha")
	}
}

func TestCompare_buildMetadataIgnored(t *testing.T) {
	if !mkv("1.0.0+b1").Equal(mkv("1.0.0+b2")) {
		t.Fatal("build metadata must not affect equality")
	}
}

func TestCompare_ordering(t *testing.T) {
	ordered := []string{"1.0.0-alpha", "1.0.0-beta", "1.0.0", "1.0.1", "1.1.0", "2.0.0"}
	for i := 1; i < len(ordered); i++ {
		a, b := mkv(ordered[i-1]), mkv(ordered[i])
		if !a.Less(b) {
			t.Errorf("expected %s < %s", a, b)
		}
	}
}
