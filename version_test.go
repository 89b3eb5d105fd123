package pkggraph

import "testing"

func TestVersionOrdering(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"1.0.0", "1.0.0", 0},
		{"1.0.0", "1.0.1", -1},
		{"1.1.0", "1.0.9", 1},
		{"1.0.0-alpha", "1.0.0", -1},
		{"1.0.0-alpha", "1.0.0-alpha.1", -1},
		{"1.0.0-alpha.1", "1.0.0-alpha.beta", -1},
		{"1.0.0-beta", "1.0.0-beta.2", -1},
		{"1.0.0-beta.2", "1.0.0-beta.11", -1},
		{"1.0.0-rc.1", "1.0.0", -1},
	}
	for _, c := range cases {
		a, b := MustVersion(c.a), MustVersion(c.b)
		got := a.Compare(b)
		sign := func(n int) int {
			switch {
			case n < 0:
				return -1
			case n > 0:
				return 1
			default:
				return 0
			}
		}
		if sign(got) != c.want {
			t.Errorf("Compare(%q, %q) = %d, want sign %d", c.a, c.b, got, c.want)
		}
	}
}

func TestNewVersionRejectsGarbage(t *testing.T) {
	if _, err := NewVersion("not-a-version"); err == nil {
		t.Fatal("expected an error for a malformed version string")
	}
}

func TestNextPatch(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"1.2.3", "1.2.4"},
		{"1.0.0-beta", "1.0.0-beta.0"},
		{"2.0.0-beta.3", "2.0.0-beta.3.0"},
	}
	for _, c := range cases {
		got := MustVersion(c.in).nextPatch()
		want := MustVersion(c.want)
		if !got.Equal(want) {
			t.Errorf("nextPatch(%q) = %q, want %q", c.in, got.String(), c.want)
		}
		if !MustVersion(c.in).Less(got) {
			t.Errorf("nextPatch(%q) = %q is not strictly greater than input", c.in, got.String())
		}
	}
}
