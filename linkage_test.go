package pkggraph

import "testing"

func newCtx(referring *Target, siblings map[string]*Target, deps []linkageDependency) linkageContext {
	return linkageContext{
		bus:              NewBus(),
		referringPackage: Identity{value: "root"},
		referringTarget:  referring,
		siblingTargets:   siblings,
		declaredDeps:     deps,
	}
}

func TestResolveReferenceSiblingTarget(t *testing.T) {
	core := &Target{Name: "Core", Type: TargetRegular}
	app := &Target{Name: "App", Type: TargetExecutable}
	siblings := map[string]*Target{"Core": core, "App": app}

	ref := DependencyRef{Kind: RefByName, Name: "Core"}
	res, err := resolveReference(newCtx(app, siblings, nil), ref, ToolsVersion6_0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.ModuleName != "Core" {
		t.Fatalf("got %+v, want ModuleName=Core", res)
	}
}

func TestResolveReferenceRejectsNonTestDependingOnTest(t *testing.T) {
	core := &Target{Name: "Core", Type: TargetRegular}
	tests := &Target{Name: "CoreTests", Type: TargetTest}
	siblings := map[string]*Target{"Core": core, "CoreTests": tests}

	ref := DependencyRef{Kind: RefByName, Name: "CoreTests"}
	_, err := resolveReference(newCtx(core, siblings, nil), ref, ToolsVersion6_0)
	if err == nil {
		t.Fatal("expected an error for a regular target depending on a test target")
	}
}

func TestResolveByNameAsProductRequiresExplicitAt5_2(t *testing.T) {
	app := &Target{Name: "App", Type: TargetExecutable}
	dep := linkageDependency{
		decl:     DeclaredDependency{Identity: Identity{value: "networking"}},
		products: map[string]*Product{"Networking": {Name: "Networking"}},
	}

	ref := DependencyRef{Kind: RefByName, Name: "Networking"}
	_, err := resolveReference(newCtx(app, map[string]*Target{"App": app}, []linkageDependency{dep}), ref, ToolsVersion5_2)
	if err == nil {
		t.Fatal("expected a requiresExplicitDeclaration error at tools-version 5.2")
	}
	if _, ok := err.(*requiresExplicitDeclarationError); !ok {
		t.Fatalf("got error of type %T, want *requiresExplicitDeclarationError", err)
	}
}

func TestResolveByNameAsProductAllowedBelow5_2(t *testing.T) {
	app := &Target{Name: "App", Type: TargetExecutable}
	dep := linkageDependency{
		decl:     DeclaredDependency{Identity: Identity{value: "networking"}},
		products: map[string]*Product{"Networking": {Name: "Networking"}},
	}

	ref := DependencyRef{Kind: RefByName, Name: "Networking"}
	res, err := resolveReference(newCtx(app, map[string]*Target{"App": app}, []linkageDependency{dep}), ref, ToolsVersion{5, 0})
	if err != nil {
		t.Fatalf("unexpected error pre-5.2: %v", err)
	}
	if res.ProductName != "Networking" {
		t.Fatalf("got %+v, want ProductName=Networking", res)
	}
}

func TestResolveProductRefSameProductPackageErrors(t *testing.T) {
	app := &Target{Name: "App", Type: TargetExecutable}
	dep := linkageDependency{
		decl:     DeclaredDependency{Identity: Identity{value: "root"}}, // same as referringPackage
		products: map[string]*Product{"Tooling": {Name: "Tooling"}},
	}

	ref := DependencyRef{Kind: RefProduct, ProductName: "Tooling"}
	_, err := resolveReference(newCtx(app, map[string]*Target{"App": app}, []linkageDependency{dep}), ref, ToolsVersion6_0)
	if _, ok := err.(*sameProductPackageError); !ok {
		t.Fatalf("got error of type %T, want *sameProductPackageError", err)
	}
}

func TestResolveNotFoundSuggestsSiblingWithinDistance(t *testing.T) {
	app := &Target{Name: "App", Type: TargetExecutable}
	corr := &Target{Name: "Networking", Type: TargetRegular}
	siblings := map[string]*Target{"App": app, "Networking": corr}

	ref := DependencyRef{Kind: RefTarget, Name: "Netwrking"} // one deletion away
	_, err := resolveReference(newCtx(app, siblings, nil), ref, ToolsVersion6_0)
	pnf, ok := err.(*productNotFoundError)
	if !ok {
		t.Fatalf("got error of type %T, want *productNotFoundError", err)
	}
	if pnf.suggestion != "Networking" {
		t.Fatalf("suggestion = %q, want %q", pnf.suggestion, "Networking")
	}
}

func TestResolveNotFoundOmitsDistantSuggestion(t *testing.T) {
	app := &Target{Name: "App", Type: TargetExecutable}
	unrelated := &Target{Name: "Zzzzzzzzz", Type: TargetRegular}
	siblings := map[string]*Target{"App": app, "Zzzzzzzzz": unrelated}

	ref := DependencyRef{Kind: RefTarget, Name: "Networking"}
	_, err := resolveReference(newCtx(app, siblings, nil), ref, ToolsVersion6_0)
	pnf, ok := err.(*productNotFoundError)
	if !ok {
		t.Fatalf("got error of type %T, want *productNotFoundError", err)
	}
	if pnf.suggestion != "" {
		t.Fatalf("suggestion = %q, want no suggestion beyond edit distance 2", pnf.suggestion)
	}
}

func TestLevenshtein(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "abc", 0},
		{"abc", "abd", 1},
		{"kitten", "sitting", 3},
		{"Networking", "Netwrking", 1},
	}
	for _, c := range cases {
		if got := levenshtein(c.a, c.b); got != c.want {
			t.Errorf("levenshtein(%q, %q) = %d, want %d", c.a, c.b, got, c.want)
		}
	}
}
