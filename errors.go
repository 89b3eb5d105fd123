package pkggraph

import "fmt"

// Error taxonomy (spec.md §7):
//
//   - Structural fatal: module cycle, package cycle pre-6.0, duplicate
//     target/product, empty product member.
//   - Linkage fatal: product not found, product in same package, product
//     requires explicit declaration, invalid test-target dependency.
//   - Policy fatal: unsafe-flag leakage (pre-6.2).
//   - Warnings: unused dependency, misplaced source path, rename hints.
//   - Input fatal: duplicated resolved-packages entry, missing root on
//     REPL product request.
//
// Every type below implements error; Diagnostic-producing call sites wrap
// these with the appropriate Severity via the Bus.

type productNotFoundError struct {
	productName     string
	declaringPkg    Identity
	referringTarget string
	suggestion      string
}

func (e *productNotFoundError) Error() string {
	msg := fmt.Sprintf("product %q required by package %q target %q not found",
		e.productName, e.declaringPkg, e.referringTarget)
	if e.suggestion != "" {
		msg += fmt.Sprintf("; did you mean %q?", e.suggestion)
	}
	return msg
}

type requiresExplicitDeclarationError struct {
	dependencyName  string
	referringTarget string
	declaringPkg    Identity
}

func (e *requiresExplicitDeclarationError) Error() string {
	return fmt.Sprintf(
		"dependency %q in target %q requires explicit declaration; reference the package in the target dependency with '.product(name: %q, package: %q)'",
		e.dependencyName, e.referringTarget, e.dependencyName, e.declaringPkg)
}

type sameProductPackageError struct {
	productName string
}

func (e *sameProductPackageError) Error() string {
	return fmt.Sprintf("product %q is declared in the same package and cannot be used as a target dependency", e.productName)
}

type productPackageMismatchError struct {
	productName   string
	wantPackage   string
	actualPackage Identity
}

func (e *productPackageMismatchError) Error() string {
	return fmt.Sprintf(
		"package %q has no product %q; did you mean to request it from package %q?",
		e.wantPackage, e.productName, e.actualPackage)
}

type invalidTestDependencyError struct {
	fromTarget string
	toTarget   string
}

func (e *invalidTestDependencyError) Error() string {
	return fmt.Sprintf("Invalid dependency: '%s' cannot depend on test target dependency '%s'", e.fromTarget, e.toTarget)
}

type packageCycleError struct {
	path        []Identity
	toolsVer    ToolsVersion
	belowThresh bool
}

func (e *packageCycleError) Error() string {
	path := identityPathString(e.path)
	if e.belowThresh {
		return fmt.Sprintf("cyclic dependency between packages %s requires tools-version 6.0 or later", path)
	}
	return fmt.Sprintf("cyclic dependency between packages %s", path)
}

func identityPathString(path []Identity) string {
	s := ""
	for i, id := range path {
		if i > 0 {
			s += " -> "
		}
		s += id.String()
	}
	return s
}

type moduleCycleError struct {
	path []string
}

func (e *moduleCycleError) Error() string {
	s := ""
	for i, n := range e.path {
		if i > 0 {
			s += " -> "
		}
		s += n
	}
	return fmt.Sprintf("cyclic dependency declaration found: %s", s)
}

type duplicateTargetError struct {
	name         string
	owningPkgIDs []string // sorted ascending
}

func (e *duplicateTargetError) Error() string {
	return fmt.Sprintf("multiple packages (%s) declare targets with a conflicting name: %q", joinQuoted(e.owningPkgIDs), e.name)
}

type duplicateProductError struct {
	name         string
	owningPkgIDs []string
}

func (e *duplicateProductError) Error() string {
	return fmt.Sprintf("multiple packages (%s) declare products with a conflicting name: %q", joinQuoted(e.owningPkgIDs), e.name)
}

func joinQuoted(ss []string) string {
	out := ""
	for i, s := range ss {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("%q", s)
	}
	return out
}

type similarPackagesError struct {
	pkgA, pkgB  Identity
	sampleNames []string
	totalNames  int
}

func (e *similarPackagesError) Error() string {
	names := joinQuoted(e.sampleNames)
	extra := e.totalNames - len(e.sampleNames)
	if extra > 0 {
		return fmt.Sprintf("packages %q and %q export identical targets (%s, and %d others); they may be the same dependency added under two different identities",
			e.pkgA, e.pkgB, names, extra)
	}
	return fmt.Sprintf("packages %q and %q export identical targets (%s); they may be the same dependency added under two different identities",
		e.pkgA, e.pkgB, names)
}

type emptyProductMemberError struct {
	productName string
	memberName  string
	owningPkg   Identity
}

func (e *emptyProductMemberError) Error() string {
	return fmt.Sprintf("target %q of product %q in package %q has no source files", e.memberName, e.productName, e.owningPkg)
}

type unsafeFlagLeakageError struct {
	productName    string
	moduleName     string
	consumerModule string
}

func (e *unsafeFlagLeakageError) Error() string {
	return fmt.Sprintf(
		"target %q cannot use product %q: it transitively includes module %q, which has unsafe build settings",
		e.consumerModule, e.productName, e.moduleName)
}

// errNoRootPackages is returned by ReplProductName when the graph has no
// root packages (spec.md §4.9).
var errNoRootPackages = fmt.Errorf("cannot form a REPL product name: no root packages")

type duplicateResolvedPinError struct {
	path     string
	identity string
}

func (e *duplicateResolvedPinError) Error() string {
	return fmt.Sprintf("%s file is corrupted or malformed; fix or delete the file to continue: duplicated entry for package %q", e.path, e.identity)
}
