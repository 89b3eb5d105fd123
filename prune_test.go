package pkggraph

import (
	"os"
	"testing"
)

func TestPruneDependenciesWarnsUnusedByDefault(t *testing.T) {
	bus := NewBus()
	usage := []DependencyUsage{
		{Decl: DeclaredDependency{Identity: Identity{value: "unused-pkg"}}},
	}
	result := PruneDependencies(bus, usage, false)
	if len(result.Warned) != 1 {
		t.Fatalf("got %d warned, want 1", len(result.Warned))
	}
	if len(result.Dropped) != 0 {
		t.Fatalf("got %d dropped, want 0 when pruneDependencies is false", len(result.Dropped))
	}
	if !hasWarningRecord(bus) {
		t.Fatal("expected a warning diagnostic to be recorded")
	}
}

func TestPruneDependenciesDropsWhenEnabled(t *testing.T) {
	bus := NewBus()
	usage := []DependencyUsage{
		{Decl: DeclaredDependency{Identity: Identity{value: "unused-pkg"}}},
	}
	result := PruneDependencies(bus, usage, true)
	if len(result.Dropped) != 1 {
		t.Fatalf("got %d dropped, want 1", len(result.Dropped))
	}
	if len(result.Warned) != 0 {
		t.Fatalf("got %d warned, want 0 when silently dropping", len(result.Warned))
	}
}

func TestPruneDependenciesSkipsUsedDependencies(t *testing.T) {
	bus := NewBus()
	usage := []DependencyUsage{
		{Decl: DeclaredDependency{Identity: Identity{value: "used-pkg"}}, UsedDirectly: true},
	}
	result := PruneDependencies(bus, usage, false)
	if len(result.Warned) != 0 || len(result.Dropped) != 0 {
		t.Fatalf("did not expect a used dependency to be warned or dropped, got %+v", result)
	}
}

func TestPruneDependenciesExemptsSystemModules(t *testing.T) {
	bus := NewBus()
	usage := []DependencyUsage{
		{Decl: DeclaredDependency{Identity: Identity{value: "csystem-pkg"}}, IsSystemModule: true},
	}
	result := PruneDependencies(bus, usage, false)
	if len(result.Warned) != 0 {
		t.Fatalf("did not expect a system-module dependency to be warned about, got %+v", result)
	}
}

func TestPruneDependenciesExecutableOnlyExemptWithoutFeatureGate(t *testing.T) {
	os.Unsetenv(targetBasedResolutionEnvVar)
	bus := NewBus()
	usage := []DependencyUsage{
		{Decl: DeclaredDependency{Identity: Identity{value: "cli-tool-pkg"}}, OnlyExecutableProducts: true},
	}
	result := PruneDependencies(bus, usage, false)
	if len(result.Warned) != 0 {
		t.Fatalf("did not expect an executable-only dependency to be warned about without the feature gate, got %+v", result)
	}
}

func TestPruneDependenciesExecutableOnlyWarnedUnderFeatureGate(t *testing.T) {
	os.Setenv(targetBasedResolutionEnvVar, "1")
	defer os.Unsetenv(targetBasedResolutionEnvVar)

	bus := NewBus()
	usage := []DependencyUsage{
		{Decl: DeclaredDependency{Identity: Identity{value: "cli-tool-pkg"}}, OnlyExecutableProducts: true},
	}
	result := PruneDependencies(bus, usage, false)
	if len(result.Warned) != 1 {
		t.Fatalf("expected the executable-only dependency to be warned about under the feature gate, got %+v", result)
	}
}

func hasWarningRecord(bus *Bus) bool {
	for _, r := range bus.Records() {
		if r.Severity == SeverityWarning {
			return true
		}
	}
	return false
}
