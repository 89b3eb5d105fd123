package pkggraph

import "sort"

// validatorModule is the subset of a resolved module validate.go needs,
// decoupled from the arena-indexed representation in graph.go so the
// checks can be unit-tested standalone.
type validatorModule struct {
	name          string
	targetType    TargetType
	owningPkg     Identity
	dependsOn     []string // module names this module directly depends on
	hasUnsafe     bool
}

type validatorProduct struct {
	name      string
	owningPkg Identity
	members   []validatorMember
}

type validatorMember struct {
	targetName string
	hasSources bool
	targetType TargetType
}

// validateGraph runs C8's checks and reports every violation it finds to
// bus; it never mutates its inputs.
func validateGraph(bus *Bus, modules []validatorModule, products []validatorProduct) {
	checkDuplicateTargets(bus, modules)
	checkDuplicateProducts(bus, products)
	checkSimilarPackages(bus, modules)
	checkTypeMatrix(bus, modules)
	checkEmptyProductMembers(bus, products)
}

func checkDuplicateTargets(bus *Bus, modules []validatorModule) {
	byName := make(map[string]map[string]bool) // name -> set of owning identities
	for _, m := range modules {
		if byName[m.name] == nil {
			byName[m.name] = make(map[string]bool)
		}
		byName[m.name][m.owningPkg.String()] = true
	}

	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		owners := byName[name]
		if len(owners) < 2 {
			continue
		}
		var ids []string
		for id := range owners {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		bus.Error((&duplicateTargetError{name: name, owningPkgIDs: ids}).Error(), Metadata{ModuleName: name})
	}
}

func checkDuplicateProducts(bus *Bus, products []validatorProduct) {
	byName := make(map[string]map[string]bool)
	for _, p := range products {
		if byName[p.name] == nil {
			byName[p.name] = make(map[string]bool)
		}
		byName[p.name][p.owningPkg.String()] = true
	}

	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		owners := byName[name]
		if len(owners) < 2 {
			continue
		}
		var ids []string
		for id := range owners {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		bus.Error((&duplicateProductError{name: name, owningPkgIDs: ids}).Error(), Metadata{ProductName: name})
	}
}

// checkSimilarPackages implements spec.md §4.5's "two packages exporting
// identical target-name sets" heuristic. Per DESIGN.md's Open Question
// decision, only exact set equality triggers it; subset matches do not.
func checkSimilarPackages(bus *Bus, modules []validatorModule) {
	byPkg := make(map[string][]string) // identity string -> sorted target names
	order := make(map[string]Identity)
	for _, m := range modules {
		key := m.owningPkg.String()
		byPkg[key] = append(byPkg[key], m.name)
		order[key] = m.owningPkg
	}

	var keys []string
	for k := range byPkg {
		sort.Strings(byPkg[k])
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for i := 0; i < len(keys); i++ {
		for j := i + 1; j < len(keys); j++ {
			a, b := byPkg[keys[i]], byPkg[keys[j]]
			if len(a) == 0 || len(a) != len(b) {
				continue
			}
			if !sameStringSlice(a, b) {
				continue
			}

			sample := a
			if len(sample) > 3 {
				sample = sample[:3]
			}
			bus.Error((&similarPackagesError{
				pkgA:        order[keys[i]],
				pkgB:        order[keys[j]],
				sampleNames: sample,
				totalNames:  len(a),
			}).Error())
		}
	}
}

func sameStringSlice(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// checkTypeMatrix enforces that only test targets may depend on test
// targets.
func checkTypeMatrix(bus *Bus, modules []validatorModule) {
	byName := make(map[string]validatorModule, len(modules))
	for _, m := range modules {
		byName[m.name] = m
	}

	for _, m := range modules {
		for _, depName := range m.dependsOn {
			dep, ok := byName[depName]
			if !ok {
				continue
			}
			if dep.targetType == TargetTest && m.targetType != TargetTest {
				bus.Error((&invalidTestDependencyError{fromTarget: m.name, toTarget: dep.name}).Error(),
					Metadata{ModuleName: m.name})
			}
		}
	}
}

// checkEmptyProductMembers reports, for every product, any member target
// with zero source files. This is fatal for the product's own package and
// also emits a warning about the conventional source path.
func checkEmptyProductMembers(bus *Bus, products []validatorProduct) {
	for _, p := range products {
		for _, mem := range p.members {
			if mem.hasSources {
				continue
			}
			bus.Error((&emptyProductMemberError{
				productName: p.name,
				memberName:  mem.targetName,
				owningPkg:   p.owningPkg,
			}).Error(), Metadata{ProductName: p.name, PackageIdentity: p.owningPkg.String()})

			bus.Warning(
				"target "+mem.targetName+" has no source files; expected sources under Sources/"+mem.targetName,
				Metadata{ModuleName: mem.targetName, PackageIdentity: p.owningPkg.String()})
		}
	}
}

// checkUnsafeFlagLeakage implements spec.md §4.5's unsafe-flag check for
// tools-versions below ToolsVersion6_2. closure must hold every transitive
// member module of the product. A consumer in the product's own package is
// exempt: the function returns without reporting anything in that case.
func checkUnsafeFlagLeakage(bus *Bus, tv ToolsVersion, consumerModule, productName string, consumerPkg, productPkg Identity, closure []validatorModule) {
	if tv.AtLeast(ToolsVersion6_2) {
		return
	}
	if consumerPkg.Equal(productPkg) {
		return
	}

	for _, m := range closure {
		if !m.hasUnsafe {
			continue
		}
		bus.Error((&unsafeFlagLeakageError{
			productName:    productName,
			moduleName:     m.name,
			consumerModule: consumerModule,
		}).Error(), Metadata{ModuleName: consumerModule, ProductName: productName})
	}
}
