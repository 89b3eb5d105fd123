package pkggraph

import "sort"

// edgeKind tags whether a resolved module dependency binds a sibling
// module directly or an external product.
type edgeKind uint8

const (
	edgeToModule edgeKind = iota
	edgeToProduct
)

// moduleEdge is one resolved target-dependency binding, the output of
// linkage (C6) retained in the assembled graph.
type moduleEdge struct {
	kind       edgeKind
	moduleIdx  int // valid when kind == edgeToModule
	productIdx int // valid when kind == edgeToProduct
	condition  *Condition
}

// resolvedModule is one arena entry for a compiled target.
type resolvedModule struct {
	name         string
	targetType   TargetType
	pkgIdx       int
	hasUnsafe    bool
	hasSources   bool
	dependencies []moduleEdge
}

// resolvedProduct is one arena entry for a package product.
type resolvedProduct struct {
	name             string
	kind             ProductKind
	pkgIdx           int
	memberModuleIdxs []int
}

// resolvedPackage is one arena entry for a package's manifest plus the
// derived state (C5, C9) computed for it during assembly.
type resolvedPackage struct {
	identity      Identity
	manifest      *Manifest
	isRoot        bool
	enabledTraits map[string]bool

	declaredPlatforms     PlatformSet
	derivedPlatforms      PlatformSet // non-test targets
	derivedTestPlatforms  PlatformSet // test targets (Apple floor bump applied)

	moduleIdxs  []int // indices into ModulesGraph.modules, declaration order
	productIdxs []int // indices into ModulesGraph.products, declaration order
}

// ModulesGraph is the assembled, query-ready package graph (C12). It is
// built once by Assemble and is read-only thereafter; all arenas are
// addressed by index to avoid reference cycles between packages, modules,
// and products.
type ModulesGraph struct {
	bus *Bus

	packages []resolvedPackage
	modules  []resolvedModule
	products []resolvedProduct

	moduleIdxByName  nameIndex
	productIdxByName nameIndex

	rootIdxs []int
}

// Assemble runs C2 through C11 over roots and the transitive set of
// packages they depend on (allPackages, keyed by whatever identity the
// external loader assigned), producing a validated ModulesGraph.
// traitSelection is the root-level trait selection (empty means
// {"default"}). buildEnv, per spec.md §4.9, is optional: when non-nil, the
// pruner (C11) evaluates each target dependency's condition against it
// exactly (C10); when nil, a dependency's platform/configuration axes are
// treated as absent for pruning purposes and only its trait axis, checked
// against the owning package's own enabled-trait set, can rule it unused.
func Assemble(bus *Bus, roots []*Manifest, allPackages []*Manifest, traitSelection []string, buildEnv *BuildEnvironment) (*ModulesGraph, error) {
	g := &ModulesGraph{
		bus:              bus,
		moduleIdxByName:  newNameIndex(),
		productIdxByName: newNameIndex(),
	}

	memo := newTraitMemo()

	byIdentity := make(map[string]int, len(allPackages))
	isRoot := make(map[string]bool, len(roots))
	for _, r := range roots {
		isRoot[r.Identity.String()] = true
	}

	// Step 1: populate the package arena and, within each package, the
	// module and product arenas, in manifest declaration order.
	for _, m := range allPackages {
		pkgIdx := len(g.packages)
		byIdentity[m.Identity.String()] = pkgIdx

		rp := resolvedPackage{
			identity: m.Identity,
			manifest: m,
			isRoot:   isRoot[m.Identity.String()],
		}
		rp.enabledTraits = memo.enabledTraitsMemoized(m, selectionForPackage(m, rp.isRoot, traitSelection))
		rp.declaredPlatforms, rp.derivedPlatforms = DerivePlatforms(m.Platforms, false)
		_, rp.derivedTestPlatforms = DerivePlatforms(m.Platforms, true)

		for _, t := range m.Targets {
			modIdx := len(g.modules)
			g.modules = append(g.modules, resolvedModule{
				name:       t.Name,
				targetType: t.Type,
				pkgIdx:     pkgIdx,
				hasUnsafe:  t.Settings.HasUnsafeFlags,
				hasSources: t.HasSources,
			})
			rp.moduleIdxs = append(rp.moduleIdxs, modIdx)
			g.moduleIdxByName.Insert(t.Name, modIdx)
		}

		for _, p := range m.Products {
			var members []int
			for _, memberName := range p.Members {
				if idx, ok := moduleIdxInPackage(g, pkgIdx, memberName); ok {
					members = append(members, idx)
				}
			}
			prodIdx := len(g.products)
			g.products = append(g.products, resolvedProduct{
				name:             p.Name,
				kind:             p.Kind,
				pkgIdx:           pkgIdx,
				memberModuleIdxs: members,
			})
			rp.productIdxs = append(rp.productIdxs, prodIdx)
			g.productIdxByName.Insert(qualify(m.Identity, p.Name), prodIdx)
		}

		g.packages = append(g.packages, rp)
		if rp.isRoot {
			g.rootIdxs = append(g.rootIdxs, pkgIdx)
		}
	}

	// Step 2: linkage. Walk every module's declared dependencies and
	// resolve each reference against its owning package's siblings and
	// declared dependencies.
	for pkgIdx := range g.packages {
		rp := &g.packages[pkgIdx]
		declaredDeps := buildLinkageDependencies(g, rp)

		for _, modIdx := range rp.moduleIdxs {
			target, _ := rp.manifest.TargetByName(g.modules[modIdx].name)
			siblings := make(map[string]*Target, len(rp.manifest.Targets))
			for i := range rp.manifest.Targets {
				siblings[rp.manifest.Targets[i].Name] = &rp.manifest.Targets[i]
			}

			ctx := linkageContext{
				bus:              g.bus,
				referringPackage: rp.identity,
				referringTarget:  target,
				siblingTargets:   siblings,
				declaredDeps:     declaredDeps,
			}

			for _, dep := range target.Dependencies {
				res, err := resolveReference(ctx, dep.Ref, rp.manifest.ToolsVersion)
				if err != nil {
					g.bus.Error(err.Error(), Metadata{PackageIdentity: rp.identity.String(), ModuleName: target.Name})
					continue
				}

				edge := moduleEdge{condition: res.Condition}
				if res.ModuleName != "" {
					if idx, ok := moduleIdxInPackage(g, pkgIdx, res.ModuleName); ok {
						edge.kind = edgeToModule
						edge.moduleIdx = idx
					}
				} else if idx, ok := g.productIdxByName.Get(qualify(res.ProductPackage, res.ProductName)); ok {
					edge.kind = edgeToProduct
					edge.productIdx = idx
				} else {
					continue
				}
				g.modules[modIdx].dependencies = append(g.modules[modIdx].dependencies, edge)
			}
		}
	}

	// Step 3: cycle detection, over both domains.
	if cyc := detectPackageCycle(identitiesOf(roots), func(id Identity) []Identity { return packageEdgesOf(g, id) }); cyc != nil {
		belowThresh := false
		for _, id := range cyc {
			if pkgIdx, ok := byIdentity[id.String()]; ok && g.packages[pkgIdx].manifest.ToolsVersion.Less(ToolsVersion6_0) {
				belowThresh = true
				break
			}
		}
		if belowThresh {
			g.bus.Error((&packageCycleError{path: cyc, belowThresh: true}).Error())
		}
	}

	if cyc := detectModuleCycle(allModuleNames(g), func(name string) []string { return moduleEdgesOf(g, name) }); cyc != nil {
		g.bus.Error((&moduleCycleError{path: cyc}).Error())
	}

	// Step 4: structural + type-matrix + unsafe-flag validation.
	validateGraph(g.bus, buildValidatorModules(g), buildValidatorProducts(g))
	runUnsafeFlagChecks(g)

	// Step 5: unused-dependency pruning (C11), evaluated per root against
	// buildEnv (C10).
	for _, pkgIdx := range g.rootIdxs {
		rp := &g.packages[pkgIdx]
		usage := buildDependencyUsage(g, byIdentity, rp, buildEnv)
		PruneDependencies(g.bus, usage, rp.manifest.PruneDependencies)
	}

	if g.bus.HasFatal() {
		return g, errAssemblyFailed
	}
	return g, nil
}

// buildDependencyUsage computes, for every package dependency rp declares,
// whether it was bound by one of rp's own target dependencies under a
// satisfiable condition.
func buildDependencyUsage(g *ModulesGraph, byIdentity map[string]int, rp *resolvedPackage, buildEnv *BuildEnvironment) []DependencyUsage {
	usage := make([]DependencyUsage, 0, len(rp.manifest.Dependencies))

	for _, decl := range rp.manifest.Dependencies {
		u := DependencyUsage{Decl: decl}

		depPkgIdx, known := byIdentity[decl.Identity.String()]
		if known {
			depManifest := g.packages[depPkgIdx].manifest
			u.IsSystemModule = depManifest.IsSystemModule()
			u.OnlyExecutableProducts = allProductsExecutable(depManifest)
		}

		for _, modIdx := range rp.moduleIdxs {
			for _, e := range g.modules[modIdx].dependencies {
				if e.kind != edgeToProduct {
					continue
				}
				prod := g.products[e.productIdx]
				if g.packages[prod.pkgIdx].identity.Equal(decl.Identity) && satisfiedForPruning(e.condition, buildEnv, rp.enabledTraits) {
					u.UsedDirectly = true
				}
			}
		}

		usage = append(usage, u)
	}

	return usage
}

func allProductsExecutable(m *Manifest) bool {
	if len(m.Products) == 0 {
		return false
	}
	for _, p := range m.Products {
		if p.Kind != ProductExecutable {
			return false
		}
	}
	return true
}

// satisfiedForPruning decides whether a target dependency's condition
// keeps its binding "live" for pruning purposes. With a concrete buildEnv
// it is a direct C10 evaluation; without one, only the trait axis can be
// checked (against the owning package's own enabled-trait set), and the
// platform/configuration axes are treated as absent, per spec.md §4.6.
func satisfiedForPruning(cond *Condition, buildEnv *BuildEnvironment, enabledTraits map[string]bool) bool {
	if buildEnv != nil {
		return Satisfied(cond, *buildEnv)
	}
	if cond == nil {
		return true
	}
	for _, t := range cond.Traits {
		if !enabledTraits[t] {
			return false
		}
	}
	return true
}

func selectionForPackage(m *Manifest, isRoot bool, rootSelection []string) []string {
	if isRoot {
		return rootSelection
	}
	// Non-root packages always get the default selection; trait
	// selections made by their consumers are not forwarded to them.
	return []string{DefaultTraitName}
}

func qualify(id Identity, name string) string { return id.String() + "#" + name }

func moduleIdxInPackage(g *ModulesGraph, pkgIdx int, name string) (int, bool) {
	for _, idx := range g.packages[pkgIdx].moduleIdxs {
		if g.modules[idx].name == name {
			return idx, true
		}
	}
	return 0, false
}

func buildLinkageDependencies(g *ModulesGraph, rp *resolvedPackage) []linkageDependency {
	deps := make([]linkageDependency, 0, len(rp.manifest.Dependencies))
	for _, decl := range rp.manifest.Dependencies {
		products := make(map[string]*Product)
		for _, other := range g.packages {
			if !other.identity.Equal(decl.Identity) {
				continue
			}
			for i := range other.manifest.Products {
				products[other.manifest.Products[i].Name] = &other.manifest.Products[i]
			}
		}
		deps = append(deps, linkageDependency{decl: decl, products: products})
	}
	return deps
}

func identitiesOf(manifests []*Manifest) []Identity {
	out := make([]Identity, len(manifests))
	for i, m := range manifests {
		out[i] = m.Identity
	}
	return out
}

func packageEdgesOf(g *ModulesGraph, id Identity) []Identity {
	for _, rp := range g.packages {
		if rp.identity.Equal(id) {
			out := make([]Identity, len(rp.manifest.Dependencies))
			for i, d := range rp.manifest.Dependencies {
				out[i] = d.Identity
			}
			return out
		}
	}
	return nil
}

func allModuleNames(g *ModulesGraph) []string {
	names := make([]string, len(g.modules))
	for i, m := range g.modules {
		names[i] = m.name
	}
	return names
}

// moduleEdgesOf returns, for a module name, the names of modules it
// directly binds (product edges are excluded: the module graph only
// tracks module-to-module bindings, per spec.md §4.4).
func moduleEdgesOf(g *ModulesGraph, name string) []string {
	var out []string
	for _, m := range g.modules {
		if m.name != name {
			continue
		}
		for _, e := range m.dependencies {
			if e.kind == edgeToModule {
				out = append(out, g.modules[e.moduleIdx].name)
			}
		}
	}
	return out
}

func buildValidatorModules(g *ModulesGraph) []validatorModule {
	out := make([]validatorModule, len(g.modules))
	for i, m := range g.modules {
		var deps []string
		for _, e := range m.dependencies {
			if e.kind == edgeToModule {
				deps = append(deps, g.modules[e.moduleIdx].name)
			}
		}
		out[i] = validatorModule{
			name:       m.name,
			targetType: m.targetType,
			owningPkg:  g.packages[m.pkgIdx].identity,
			dependsOn:  deps,
			hasUnsafe:  m.hasUnsafe,
		}
	}
	return out
}

func buildValidatorProducts(g *ModulesGraph) []validatorProduct {
	out := make([]validatorProduct, len(g.products))
	for i, p := range g.products {
		members := make([]validatorMember, len(p.memberModuleIdxs))
		for j, idx := range p.memberModuleIdxs {
			members[j] = validatorMember{
				targetName: g.modules[idx].name,
				hasSources: g.modules[idx].hasSources,
				targetType: g.modules[idx].targetType,
			}
		}
		out[i] = validatorProduct{name: p.name, owningPkg: g.packages[p.pkgIdx].identity, members: members}
	}
	return out
}

// runUnsafeFlagChecks walks every resolved product edge and checks the
// product's transitive same-package module closure for unsafe flags.
func runUnsafeFlagChecks(g *ModulesGraph) {
	for _, m := range g.modules {
		for _, e := range m.dependencies {
			if e.kind != edgeToProduct {
				continue
			}
			prod := g.products[e.productIdx]
			closure := transitiveProductModuleClosure(g, e.productIdx)
			checkUnsafeFlagLeakage(
				g.bus,
				g.packages[m.pkgIdx].manifest.ToolsVersion,
				m.name, prod.name,
				g.packages[m.pkgIdx].identity, g.packages[prod.pkgIdx].identity,
				closure,
			)
		}
	}
}

func transitiveProductModuleClosure(g *ModulesGraph, productIdx int) []validatorModule {
	seen := make(map[int]bool)
	var out []validatorModule
	var visit func(modIdx int)
	visit = func(modIdx int) {
		if seen[modIdx] {
			return
		}
		seen[modIdx] = true
		m := g.modules[modIdx]
		out = append(out, validatorModule{name: m.name, targetType: m.targetType, owningPkg: g.packages[m.pkgIdx].identity, hasUnsafe: m.hasUnsafe})
		for _, e := range m.dependencies {
			if e.kind == edgeToModule {
				visit(e.moduleIdx)
			}
		}
	}
	for _, idx := range g.products[productIdx].memberModuleIdxs {
		visit(idx)
	}
	return out
}

var errAssemblyFailed = &assemblyFailedError{}

type assemblyFailedError struct{}

func (e *assemblyFailedError) Error() string {
	return "package graph assembly failed; see diagnostics for details"
}

// RootPackages returns the identities of every root package, in the order
// they appear in Assemble's allPackages argument.
func (g *ModulesGraph) RootPackages() []Identity {
	out := make([]Identity, len(g.rootIdxs))
	for i, idx := range g.rootIdxs {
		out[i] = g.packages[idx].identity
	}
	return out
}

// Module looks up a resolved module by its unqualified name. Names are
// assumed unique across a successfully validated graph; duplicate names
// are reported as fatal diagnostics by checkDuplicateTargets, and
// lookups against a graph with fatal diagnostics are unspecified.
func (g *ModulesGraph) Module(name string) (int, bool) {
	return g.moduleIdxByName.Get(name)
}

// Product looks up a resolved product by its unqualified name, scoped to
// the given owning package identity.
func (g *ModulesGraph) Product(owningPkg Identity, name string) (int, bool) {
	return g.productIdxByName.Get(qualify(owningPkg, name))
}

// PackageOfModule returns the identity of the package that declares the
// given module index.
func (g *ModulesGraph) PackageOfModule(moduleIdx int) Identity {
	return g.packages[g.modules[moduleIdx].pkgIdx].identity
}

// PackageByIdentity returns the resolved package index for id.
func (g *ModulesGraph) PackageByIdentity(id Identity) (int, bool) {
	for i, rp := range g.packages {
		if rp.identity.Equal(id) {
			return i, true
		}
	}
	return 0, false
}

// RecursiveModuleDependencies returns every module transitively reachable
// from moduleIdx via module-to-module edges, topologically sorted with
// ties broken by manifest declaration order, per spec.md §4.9.
func (g *ModulesGraph) RecursiveModuleDependencies(moduleIdx int) []int {
	visited := make(map[int]bool)
	var order []int

	var visit func(idx int)
	visit = func(idx int) {
		if visited[idx] {
			return
		}
		visited[idx] = true
		for _, e := range g.modules[idx].dependencies {
			if e.kind == edgeToModule {
				visit(e.moduleIdx)
			}
		}
		order = append(order, idx)
	}
	visit(moduleIdx)

	// visit appends in post-order (dependencies before dependents); the
	// caller wants dependency-first order with the root excluded.
	var out []int
	for _, idx := range order {
		if idx != moduleIdx {
			out = append(out, idx)
		}
	}
	return out
}

// ReplProductName returns the synthetic product name an interactive REPL
// session binds against: "<first root identity>__REPL", per spec.md §4.9
// and the glossary entry for __REPL. Returns errNoRootPackages if there
// are no root packages.
func (g *ModulesGraph) ReplProductName() (string, error) {
	if len(g.rootIdxs) == 0 {
		return "", errNoRootPackages
	}
	rootIdxs := append([]int{}, g.rootIdxs...)
	sort.Ints(rootIdxs)

	return g.packages[rootIdxs[0]].identity.String() + "__REPL", nil
}

// PackageDeclaredPlatforms returns the given package's own platform
// declarations, before defaulting (C9).
func (g *ModulesGraph) PackageDeclaredPlatforms(pkgIdx int) PlatformSet {
	return g.packages[pkgIdx].declaredPlatforms
}

// PackageDerivedPlatforms returns the given package's derived minimum
// platform versions for non-test targets (C9).
func (g *ModulesGraph) PackageDerivedPlatforms(pkgIdx int) PlatformSet {
	return g.packages[pkgIdx].derivedPlatforms
}

// PackageDerivedTestPlatforms returns the given package's derived minimum
// platform versions for test targets, with the Apple test-floor bump
// applied (C9).
func (g *ModulesGraph) PackageDerivedTestPlatforms(pkgIdx int) PlatformSet {
	return g.packages[pkgIdx].derivedTestPlatforms
}

// PlatformsForModule returns the derived platform set that applies to a
// given module, using the test-floor variant for test targets.
func (g *ModulesGraph) PlatformsForModule(moduleIdx int) PlatformSet {
	m := g.modules[moduleIdx]
	if m.targetType == TargetTest {
		return g.packages[m.pkgIdx].derivedTestPlatforms
	}
	return g.packages[m.pkgIdx].derivedPlatforms
}

// EnabledTraitsForPackage returns the fixed-point-expanded set of traits
// enabled for the given package under this assembly's trait selection
// (C5).
func (g *ModulesGraph) EnabledTraitsForPackage(pkgIdx int) map[string]bool {
	return g.packages[pkgIdx].enabledTraits
}
