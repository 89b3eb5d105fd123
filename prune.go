package pkggraph

import "os"

// targetBasedResolutionEnvVar gates whether the pruner treats an
// executable-only product dependency as "possibly unused", per spec.md
// §6: when the variable is absent, such dependencies are assumed to be
// used for CLI-tool invocation and are never warned about.
const targetBasedResolutionEnvVar = "ENABLE_TARGET_BASED_DEPENDENCY_RESOLUTION"

// DependencyUsage tracks whether a declared package dependency's products
// were bound by any target dependency, and under what conditions. Exported
// so callers other than Assemble can drive the pruner directly (e.g. a
// host re-checking a single dependency after an incremental edit).
type DependencyUsage struct {
	Decl           DeclaredDependency
	IsSystemModule bool
	// UsedDirectly is true if some resolved target dependency bound one of
	// this package's products with a condition satisfiable under the
	// current build environment (or, absent one, under the package's own
	// enabled-trait set).
	UsedDirectly bool
	// OnlyExecutableProducts is true if every product this dependency
	// declares is an executable (relevant only under the feature gate).
	OnlyExecutableProducts bool
}

// PruneResult is the outcome of running the dependency pruner over one
// root package's declared dependencies.
type PruneResult struct {
	// Dropped lists dependencies silently omitted from the graph because
	// pruneDependencies was true and they were unused.
	Dropped []DeclaredDependency
	// Warned lists dependencies reported as unused (only when
	// pruneDependencies was false). Dependencies exempted as system modules
	// or executable-only products appear in neither list.
	Warned []DeclaredDependency
}

// PruneDependencies implements C11. usage must describe, for every
// declared dependency of the root, whether it was actually used; Assemble
// computes it by walking resolved target dependencies and checking each
// binding's condition with satisfiedForPruning.
//
// This mirrors golang-dep's FindIneffectualConstraints: walk the declared
// set, subtract what's actually used, and report (or, here, optionally
// drop) what's left — generalized from version constraints to package
// dependencies.
func PruneDependencies(bus *Bus, usage []DependencyUsage, pruneDependencies bool) PruneResult {
	var result PruneResult

	targetBasedEnabled := os.Getenv(targetBasedResolutionEnvVar) != ""

	for _, u := range usage {
		if u.UsedDirectly {
			continue
		}
		if u.IsSystemModule {
			// System-module packages are exempt from the warning
			// entirely (spec.md §4.8).
			continue
		}
		if u.OnlyExecutableProducts && !targetBasedEnabled {
			// Without the feature gate, executable-only product
			// dependencies are assumed possibly used for CLI invocation.
			continue
		}

		if pruneDependencies {
			result.Dropped = append(result.Dropped, u.Decl)
			continue
		}

		result.Warned = append(result.Warned, u.Decl)
		bus.Warning(
			"dependency '"+u.Decl.Identity.String()+"' is not used by any target",
			Metadata{PackageIdentity: u.Decl.Identity.String(), PackageKind: identityKindString(u.Decl.Kind)},
		)
	}

	return result
}

func identityKindString(k IdentityKind) string {
	switch k {
	case KindRoot:
		return "root"
	case KindFileSystem:
		return "fileSystem"
	case KindLocalSourceControl:
		return "localSourceControl"
	case KindRemoteSourceControl:
		return "remoteSourceControl"
	case KindRegistry:
		return "registry"
	default:
		return "unknown"
	}
}
