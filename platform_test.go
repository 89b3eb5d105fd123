package pkggraph

import "testing"

func TestDerivePlatformsUsesDefaultsWhenUndeclared(t *testing.T) {
	_, derived := DerivePlatforms(nil, false)
	macos, ok := derived["macos"]
	if !ok {
		t.Fatal("expected a derived macos entry from defaults")
	}
	if !macos.Version.Equal(MustVersion("10.13.0")) {
		t.Fatalf("derived macos version = %q, want 10.13.0", macos.Version)
	}
}

func TestDerivePlatformsHigherDeclaredWins(t *testing.T) {
	declared := []PlatformDeclaration{{Name: "macos", Version: MustVersion("13.0.0")}}
	_, derived := DerivePlatforms(declared, false)
	if !derived["macos"].Version.Equal(MustVersion("13.0.0")) {
		t.Fatalf("derived macos = %q, want the higher declared 13.0.0", derived["macos"].Version)
	}
}

func TestDerivePlatformsLowerDeclaredDoesNotLowerDerived(t *testing.T) {
	declared := []PlatformDeclaration{{Name: "macos", Version: MustVersion("10.10.0")}}
	_, derived := DerivePlatforms(declared, false)
	if derived["macos"].Version.Less(MustVersion("10.13.0")) {
		t.Fatalf("derived macos = %q, must never be lower than the default floor", derived["macos"].Version)
	}
}

func TestDerivePlatformsTestFloorBump(t *testing.T) {
	declared := []PlatformDeclaration{{Name: "macos", Version: MustVersion("10.13.0")}}
	_, derived := DerivePlatforms(declared, true)
	if !derived["macos"].Version.Equal(MustVersion("10.15.0")) {
		t.Fatalf("test-target derived macos = %q, want the 10.15.0 test floor", derived["macos"].Version)
	}
}

func TestDerivePlatformsMacCatalystDerivedFromIOS(t *testing.T) {
	declared := []PlatformDeclaration{{Name: "ios", Version: MustVersion("15.0.0")}}
	_, derived := DerivePlatforms(declared, false)
	cat, ok := derived["maccatalyst"]
	if !ok {
		t.Fatal("expected a derived maccatalyst entry")
	}
	if !cat.Version.Equal(MustVersion("15.0.0")) {
		t.Fatalf("derived maccatalyst = %q, want to match ios 15.0.0", cat.Version)
	}
}

func TestDerivePlatformsExplicitMacCatalystNotOverridden(t *testing.T) {
	declared := []PlatformDeclaration{
		{Name: "ios", Version: MustVersion("15.0.0")},
		{Name: "maccatalyst", Version: MustVersion("16.0.0")},
	}
	_, derived := DerivePlatforms(declared, false)
	if !derived["maccatalyst"].Version.Equal(MustVersion("16.0.0")) {
		t.Fatalf("explicit maccatalyst = %q, should not be overridden by the ios-derived value", derived["maccatalyst"].Version)
	}
}

func TestDerivePlatformsInvariantDerivedAtLeastDeclared(t *testing.T) {
	declared := []PlatformDeclaration{
		{Name: "macos", Version: MustVersion("10.9.0")},
		{Name: "ios", Version: MustVersion("16.0.0")},
	}
	declaredOut, derivedOut := DerivePlatforms(declared, false)
	for name, d := range declaredOut {
		if derivedOut[name].Version.Less(d.Version) {
			t.Errorf("derived[%s] = %q is less than declared %q", name, derivedOut[name].Version, d.Version)
		}
	}
}
