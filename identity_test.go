package pkggraph

import "testing"

func TestNormalizePathStripsGitSuffixAndLowercases(t *testing.T) {
	cases := []struct {
		location string
		want     string
	}{
		{"https://github.com/Example/Repo.git", "repo"},
		{"https://github.com/Example/Repo", "repo"},
		{"/local/path/to/MyPackage/", "mypackage"},
		{"C:\\checkouts\\Widgets.git\\", "widgets"},
	}
	for _, c := range cases {
		got := Normalize(c.location, KindRemoteSourceControl).String()
		if got != c.want {
			t.Errorf("Normalize(%q) = %q, want %q", c.location, got, c.want)
		}
	}
}

func TestNormalizeRegistryLowercasesScopeAndName(t *testing.T) {
	got := Normalize("MyScope.MyPackage", KindRegistry).String()
	want := "myscope.mypackage"
	if got != want {
		t.Fatalf("Normalize(registry) = %q, want %q", got, want)
	}
}

func TestIdentityEqualityIgnoresKind(t *testing.T) {
	a := Normalize("https://example.com/Foo.git", KindRemoteSourceControl)
	b := Normalize("/checkouts/foo", KindLocalSourceControl)
	if !a.Equal(b) {
		t.Fatalf("identities %q (%v) and %q (%v) should be equal regardless of kind", a, a.Kind, b, b.Kind)
	}
}
