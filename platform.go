package pkggraph

// PlatformSet maps a platform name to its derived minimum version plus any
// declared options.
type PlatformSet map[string]PlatformDeclaration

// platformDefaults is the static defaults table (spec.md §4.6 step 2),
// keyed by platform name. appleTestFloors holds the separate, higher minima
// Apple test targets must meet (step 3).
var platformDefaults = map[string]Version{
	"macos":   MustVersion("10.13.0"),
	"ios":     MustVersion("12.0.0"),
	"tvos":    MustVersion("12.0.0"),
	"watchos": MustVersion("4.0.0"),
	"driverkit": MustVersion("19.0.0"),
	"linux":   MustVersion("0.0.0"),
	"windows": MustVersion("0.0.0"),
	"android": MustVersion("0.0.0"),
}

var appleTestFloors = map[string]Version{
	"macos":   MustVersion("10.15.0"),
	"ios":     MustVersion("13.0.0"),
	"tvos":    MustVersion("13.0.0"),
	"watchos": MustVersion("6.0.0"),
}

// DerivePlatforms computes a module's declared and derived platform maps
// per spec.md §4.6. declared is the owning package's own platform
// declarations; isTestTarget applies the Apple test-floor bump.
func DerivePlatforms(declared []PlatformDeclaration, isTestTarget bool) (declaredOut, derivedOut PlatformSet) {
	declaredOut = make(PlatformSet, len(declared))
	for _, pd := range declared {
		declaredOut[pd.Name] = pd
	}

	derivedOut = make(PlatformSet, len(platformDefaults))
	for name, v := range platformDefaults {
		derivedOut[name] = PlatformDeclaration{Name: name, Version: v}
	}

	// Step 2: merge with defaults. Per the invariant "derived version >=
	// declared version for every shared key" (spec.md §8), the higher of
	// the two wins for each platform key; the declared entry's options
	// always follow, since options have no default to merge against.
	for name, pd := range declaredOut {
		cur := derivedOut[name]
		if cur.Version.sv == nil || pd.Version.Compare(cur.Version) > 0 {
			cur.Version = pd.Version
		}
		cur.Options = pd.Options
		cur.Name = name
		derivedOut[name] = cur
	}

	// Step 3: test-target floor bump for Apple platforms.
	if isTestTarget {
		for name, floor := range appleTestFloors {
			cur := derivedOut[name]
			if cur.Version.sv == nil || floor.Compare(cur.Version) > 0 {
				cur.Version = floor
				cur.Name = name
				derivedOut[name] = cur
			}
		}
	}

	// Step 4: derive MacCatalyst from iOS if not explicitly declared.
	if _, explicit := declaredOut["maccatalyst"]; !explicit {
		if ios, ok := derivedOut["ios"]; ok {
			derivedOut["maccatalyst"] = PlatformDeclaration{Name: "maccatalyst", Version: ios.Version, Options: ios.Options}
		}
	}

	return declaredOut, derivedOut
}
