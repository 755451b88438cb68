package version

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Version
	}{
		{"1.2.3", Version{1, 2, 3, "1.2.3"}},
		{"1.2.3+build.5", Version{1, 2, 3, "1.2.3+build.5"}},
		{"1.2", Version{1, 2, 0, "1.2"}},
		{"1", Version{1, 0, 0, "1"}},
		{"1.2.3.4.5", Version{1, 2, 3, "1.2.3.4.5"}},
		{"v1.2.3", Version{1, 2, 3, "v1.2.3"}},
		{"unknown", Version{0, 0, 0, "unknown"}},
		{"", Version{0, 0, 0, ""}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := Parse(tt.in)
			if got.Major != tt.want.Major || got.Minor != tt.want.Minor || got.Patch != tt.want.Patch {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestCompareReflexiveAndOrder(t *testing.T) {
	vs := []string{"1.0.0", "1.2.3", "2.0.0", "0.9.9"}
	for _, s := range vs {
		v := Parse(s)
		if Compare(v, v) != 0 {
			t.Errorf("Compare(%s, %s) != 0", s, s)
		}
	}

	if Compare(Parse("1.2.3"), Parse("1.2.4")) >= 0 {
		t.Error("expected 1.2.3 < 1.2.4")
	}
	if Compare(Parse("2.0.0"), Parse("1.9.9")) <= 0 {
		t.Error("expected 2.0.0 > 1.9.9")
	}
}

func TestSatisfiesStar(t *testing.T) {
	for _, v := range []string{"1.0.0", "0.0.1", "99.99.99"} {
		if !Satisfies(v, "*") {
			t.Errorf("Satisfies(%s, *) = false, want true", v)
		}
		if !Satisfies(v, "") {
			t.Errorf("Satisfies(%s, \"\") = false, want true", v)
		}
		if !Satisfies(v, "any") {
			t.Errorf("Satisfies(%s, any) = false, want true", v)
		}
	}
}

func TestSatisfiesTilde(t *testing.T) {
	cases := []struct {
		v    string
		want bool
	}{
		{"1.2.3", true},
		{"1.2.99", true},
		{"1.3.0", false},
		{"1.2.2", false},
	}
	for _, c := range cases {
		if got := Satisfies(c.v, "~1.2.3"); got != c.want {
			t.Errorf("Satisfies(%s, ~1.2.3) = %v, want %v", c.v, got, c.want)
		}
	}
}

func TestSatisfiesInterval(t *testing.T) {
	cases := []struct {
		v    string
		want bool
	}{
		{"1.0", true},
		{"1.9.9", true},
		{"0.9.9", false},
		{"2.0", false},
	}
	for _, c := range cases {
		if got := Satisfies(c.v, "[1.0,2.0)"); got != c.want {
			t.Errorf("Satisfies(%s, [1.0,2.0)) = %v, want %v", c.v, got, c.want)
		}
	}
}

func TestSatisfiesIntervalInclusive(t *testing.T) {
	if !Satisfies("2.0", "[1.0,2.0]") {
		t.Error("expected inclusive upper bound to match 2.0")
	}
	if Satisfies("1.0", "(1.0,2.0]") {
		t.Error("expected exclusive lower bound to reject 1.0")
	}
}

func TestSatisfiesComparators(t *testing.T) {
	if !Satisfies("2.0.0", ">=1.5.0") {
		t.Error(">=1.5.0 should match 2.0.0")
	}
	if Satisfies("1.0.0", ">1.0.0") {
		t.Error(">1.0.0 should not match 1.0.0")
	}
	if !Satisfies("1.0.0", "<=1.0.0") {
		t.Error("<=1.0.0 should match 1.0.0")
	}
	if !Satisfies("0.9.0", "<1.0.0") {
		t.Error("<1.0.0 should match 0.9.0")
	}
}

func TestSatisfiesWildcard(t *testing.T) {
	if !Satisfies("1.2.9", "1.2.x") {
		t.Error("1.2.x should match 1.2.9")
	}
	if Satisfies("1.3.0", "1.2.x") {
		t.Error("1.2.x should not match 1.3.0")
	}
	if !Satisfies("1.2.9+build", "1.2.*") {
		t.Error("1.2.* should match 1.2.9 with build metadata")
	}
}

func TestSatisfiesWildcardWithOperator(t *testing.T) {
	// Rule 4: operator + wildcard -> substitute 0 and fall through to comparator.
	if !Satisfies("1.5.0", ">=1.x") {
		t.Error(">=1.x should degrade to >=1.0 and match 1.5.0")
	}
}

func TestSatisfiesSpaceSeparatedAnd(t *testing.T) {
	if !Satisfies("1.5.0", ">=1.0.0 <2.0.0") {
		t.Error("expected 1.5.0 to satisfy >=1.0.0 <2.0.0")
	}
	if Satisfies("2.5.0", ">=1.0.0 <2.0.0") {
		t.Error("expected 2.5.0 to fail >=1.0.0 <2.0.0")
	}
}

func TestSatisfiesExactEquality(t *testing.T) {
	if !Satisfies("1.2.3", "1.2.3") {
		t.Error("expected exact match 1.2.3 == 1.2.3")
	}
	if Satisfies("1.2.4", "1.2.3") {
		t.Error("expected 1.2.4 != 1.2.3")
	}
}
