package pkggraph

import (
	"fmt"
	"strings"
)

// LinkageResult is the outcome of resolving one DependencyRef declared by
// a target.
type LinkageResult struct {
	// Exactly one of ModuleName or (ProductName, ProductPackage) is
	// populated on success.
	ModuleName     string
	ProductName    string
	ProductPackage Identity

	Condition *Condition
}

// linkageContext bundles everything resolveReference needs about the
// referring target's package and its declared dependencies, without
// requiring a full graph to already exist (linkage runs before the graph
// is assembled).
type linkageContext struct {
	bus *Bus

	referringPackage Identity
	referringTarget  *Target
	siblingTargets   map[string]*Target // by name, within the same package

	// declaredDeps lists the referring package's declared dependencies,
	// each with the products that package exports. A product reference's
	// package name is matched against identity, display name, or
	// deprecated alias (see matchesPackageName), at every tools-version.
	declaredDeps []linkageDependency
}

type linkageDependency struct {
	decl     DeclaredDependency
	products map[string]*Product // by name
}

// resolveReference implements the priority-ordered rules of spec.md §4.3.
func resolveReference(ctx linkageContext, ref DependencyRef, tv ToolsVersion) (LinkageResult, error) {
	switch ref.Kind {
	case RefTarget, RefByName:
		if t, ok := ctx.siblingTargets[ref.Name]; ok {
			if t.Type == TargetTest && ctx.referringTarget.Type != TargetTest {
				return LinkageResult{}, &invalidTestDependencyError{
					fromTarget: ctx.referringTarget.Name,
					toTarget:   t.Name,
				}
			}
			return LinkageResult{ModuleName: t.Name, Condition: ref.Condition}, nil
		}

		if ref.Kind == RefTarget {
			// A target(...) reference that doesn't match a sibling can
			// never be reinterpreted as a product reference.
			return resolveNotFound(ctx, ref)
		}

		return resolveByNameAsProduct(ctx, ref, tv)

	case RefProduct:
		return resolveProductRef(ctx, ref)
	}

	return LinkageResult{}, fmt.Errorf("unknown dependency reference kind")
}

// resolveByNameAsProduct handles spec.md §4.3 rule 2: a byName reference
// that isn't a sibling target is interpreted as a product reference. At
// tools-version >= 5.2 this is ambiguous and must be made explicit.
func resolveByNameAsProduct(ctx linkageContext, ref DependencyRef, tv ToolsVersion) (LinkageResult, error) {
	var matches []linkageDependency
	for _, dd := range ctx.declaredDeps {
		if _, ok := dd.products[ref.Name]; ok {
			matches = append(matches, dd)
		}
	}

	if len(matches) == 0 {
		return resolveNotFound(ctx, ref)
	}

	if tv.AtLeast(ToolsVersion5_2) {
		if len(matches) == 1 {
			return LinkageResult{}, &requiresExplicitDeclarationError{
				dependencyName:  ref.Name,
				referringTarget: ctx.referringTarget.Name,
				declaringPkg:    matches[0].decl.Identity,
			}
		}
		var pkgs []string
		for _, m := range matches {
			pkgs = append(pkgs, m.decl.Identity.String())
		}
		return LinkageResult{}, fmt.Errorf(
			"dependency %q in target %q is ambiguous across packages %s; reference the package explicitly",
			ref.Name, ctx.referringTarget.Name, strings.Join(pkgs, ", "))
	}

	// Pre-5.2: pick the (necessarily unique under legacy rules) match.
	m := matches[0]
	if m.decl.Identity.Equal(ctx.referringPackage) {
		return LinkageResult{}, &sameProductPackageError{productName: ref.Name}
	}
	return LinkageResult{ProductName: ref.Name, ProductPackage: m.decl.Identity, Condition: ref.Condition}, nil
}

// resolveProductRef handles an explicit product(name, package?) reference,
// spec.md §4.3 rules 3-5.
func resolveProductRef(ctx linkageContext, ref DependencyRef) (LinkageResult, error) {
	if ref.PackageName == "" {
		// product(name: n) with no package: must be unambiguous among
		// declared dependencies' products.
		var matches []linkageDependency
		for _, dd := range ctx.declaredDeps {
			if _, ok := dd.products[ref.ProductName]; ok {
				matches = append(matches, dd)
			}
		}
		if len(matches) == 0 {
			return resolveNotFound(ctx, DependencyRef{Kind: RefByName, Name: ref.ProductName})
		}
		m := matches[0]
		if m.decl.Identity.Equal(ctx.referringPackage) {
			return LinkageResult{}, &sameProductPackageError{productName: ref.ProductName}
		}
		return LinkageResult{ProductName: ref.ProductName, ProductPackage: m.decl.Identity, Condition: ref.Condition}, nil
	}

	pkgNeedle := strings.ToLower(ref.PackageName)
	for _, dd := range ctx.declaredDeps {
		if matchesPackageName(dd.decl, pkgNeedle) {
			if _, ok := dd.products[ref.ProductName]; ok {
				if dd.decl.Identity.Equal(ctx.referringPackage) {
					return LinkageResult{}, &sameProductPackageError{productName: ref.ProductName}
				}
				return LinkageResult{ProductName: ref.ProductName, ProductPackage: dd.decl.Identity, Condition: ref.Condition}, nil
			}
		}
	}

	// pkg didn't match, but maybe the product name exists in some other
	// declared dependency: emit a suggestion (spec.md §4.3 rule 3).
	for _, dd := range ctx.declaredDeps {
		if _, ok := dd.products[ref.ProductName]; ok {
			return LinkageResult{}, &productPackageMismatchError{
				productName:   ref.ProductName,
				wantPackage:   ref.PackageName,
				actualPackage: dd.decl.Identity,
			}
		}
	}

	return resolveNotFound(ctx, DependencyRef{Kind: RefProduct, ProductName: ref.ProductName, PackageName: ref.PackageName})
}

func matchesPackageName(decl DeclaredDependency, needleLower string) bool {
	if strings.ToLower(decl.Identity.String()) == needleLower {
		return true
	}
	if strings.ToLower(decl.DisplayName) == needleLower {
		return true
	}
	if decl.DeprecatedAlias != "" && strings.ToLower(decl.DeprecatedAlias) == needleLower {
		return true
	}
	return false
}

// resolveNotFound builds the "not found" diagnostic with a bounded
// Levenshtein suggestion, checked first against sibling module names and
// then against products visible via declared dependencies. Suggestions
// never cross into products of undeclared packages.
func resolveNotFound(ctx linkageContext, ref DependencyRef) (LinkageResult, error) {
	name := ref.Name
	if name == "" {
		name = ref.ProductName
	}

	best := ""
	bestDist := 3 // strictly greater than the allowed distance of 2

	for siblingName := range ctx.siblingTargets {
		if d := levenshtein(name, siblingName); d <= 2 && d < bestDist {
			best, bestDist = siblingName, d
		}
	}
	if best == "" {
		for _, dd := range ctx.declaredDeps {
			for productName := range dd.products {
				if d := levenshtein(name, productName); d <= 2 && d < bestDist {
					best, bestDist = productName, d
				}
			}
		}
	}

	return LinkageResult{}, &productNotFoundError{
		productName:     name,
		declaringPkg:    ctx.referringPackage,
		referringTarget: ctx.referringTarget.Name,
		suggestion:      best,
	}
}

// levenshtein computes the edit distance between a and b.
func levenshtein(a, b string) int {
	if a == b {
		return 0
	}
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			del := prev[j] + 1
			ins := curr[j-1] + 1
			sub := prev[j-1] + cost
			curr[j] = min3(del, ins, sub)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
