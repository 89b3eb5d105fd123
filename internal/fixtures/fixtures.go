// Package fixtures loads TOML-described test manifests into pkggraph
// Manifest values, so graph-assembly tests can describe scenarios
// declaratively instead of constructing Manifest literals by hand.
package fixtures

import (
	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"

	"github.com/golang/pkggraph"
)

// Package describes one fixture package in TOML. Field names mirror the
// manifest vocabulary directly (identity, toolsVersion, targets, products,
// dependencies) rather than the Go type names, since fixtures are meant
// to read like miniature manifests.
type Package struct {
	Identity     string             `toml:"identity"`
	Kind         string             `toml:"kind"` // "root", "fileSystem", "localSourceControl", "remoteSourceControl", "registry"
	ToolsVersion string             `toml:"toolsVersion"`
	Prune        bool               `toml:"pruneDependencies"`
	Traits       []TraitFixture     `toml:"traits"`
	Platforms    []PlatformFixture  `toml:"platforms"`
	Dependencies []DependencyFixture `toml:"dependencies"`
	Products     []ProductFixture  `toml:"products"`
	Targets      []TargetFixture   `toml:"targets"`
}

type TraitFixture struct {
	Name    string   `toml:"name"`
	Enables []string `toml:"enables"`
}

type PlatformFixture struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
}

type DependencyFixture struct {
	Identity string `toml:"identity"`
	Location string `toml:"location"`
	Kind     string `toml:"kind"`
	Lower    string `toml:"lower"`
	Upper    string `toml:"upper"`
	Alias    string `toml:"alias"`
}

type ProductFixture struct {
	Name    string   `toml:"name"`
	Kind    string   `toml:"kind"`
	Members []string `toml:"members"`
}

type TargetFixture struct {
	Name       string   `toml:"name"`
	Type       string   `toml:"type"`
	DependsOn  []string `toml:"dependsOn"`
	HasSources bool     `toml:"hasSources"`
	Unsafe     bool     `toml:"unsafe"`
}

// Load parses a TOML document into a slice of Package fixtures.
func Load(data []byte) ([]Package, error) {
	tree, err := toml.LoadBytes(data)
	if err != nil {
		return nil, errors.Wrap(err, "parsing fixture document")
	}

	var doc struct {
		Packages []Package `toml:"package"`
	}
	if err := tree.Unmarshal(&doc); err != nil {
		return nil, errors.Wrap(err, "decoding fixture document")
	}
	return doc.Packages, nil
}

// ToManifest converts one fixture Package into a pkggraph.Manifest.
func ToManifest(p Package) (*pkggraph.Manifest, error) {
	kind := identityKind(p.Kind)
	identity := pkggraph.Normalize(p.Identity, kind)

	tv, err := toolsVersion(p.ToolsVersion)
	if err != nil {
		return nil, errors.Wrapf(err, "package %q", p.Identity)
	}

	m := &pkggraph.Manifest{
		Identity:          identity,
		DisplayName:       p.Identity,
		ToolsVersion:      tv,
		PruneDependencies: p.Prune,
	}

	for _, t := range p.Traits {
		m.Traits = append(m.Traits, pkggraph.Trait{Name: t.Name, EnabledTraits: t.Enables})
	}

	for _, pf := range p.Platforms {
		v, err := pkggraph.NewVersion(pf.Version)
		if err != nil {
			return nil, errors.Wrapf(err, "package %q platform %q", p.Identity, pf.Name)
		}
		m.Platforms = append(m.Platforms, pkggraph.PlatformDeclaration{Name: pf.Name, Version: v})
	}

	for _, d := range p.Dependencies {
		vs, err := versionSetFixture(d.Lower, d.Upper)
		if err != nil {
			return nil, errors.Wrapf(err, "package %q dependency %q", p.Identity, d.Identity)
		}
		m.Dependencies = append(m.Dependencies, pkggraph.DeclaredDependency{
			Identity:        pkggraph.Normalize(d.Location, identityKind(d.Kind)),
			Location:        d.Location,
			Kind:            identityKind(d.Kind),
			Constraint:      vs,
			DeprecatedAlias: d.Alias,
		})
	}

	for _, pr := range p.Products {
		m.Products = append(m.Products, pkggraph.Product{
			Name:    pr.Name,
			Kind:    productKind(pr.Kind),
			Members: pr.Members,
		})
	}

	for _, t := range p.Targets {
		target := pkggraph.Target{
			Name:       t.Name,
			Type:       targetType(t.Type),
			HasSources: t.HasSources,
			Settings:   pkggraph.UnsafeSettings{HasUnsafeFlags: t.Unsafe},
		}
		for _, dep := range t.DependsOn {
			target.Dependencies = append(target.Dependencies, pkggraph.TargetDependency{
				Ref: pkggraph.DependencyRef{Kind: pkggraph.RefByName, Name: dep},
			})
		}
		m.Targets = append(m.Targets, target)
	}

	return m, nil
}

func versionSetFixture(lower, upper string) (pkggraph.VersionSet, error) {
	if lower == "" && upper == "" {
		return pkggraph.AnySet(), nil
	}
	lo, err := pkggraph.NewVersion(lower)
	if err != nil {
		return pkggraph.VersionSet{}, err
	}
	hi, err := pkggraph.NewVersion(upper)
	if err != nil {
		return pkggraph.VersionSet{}, err
	}
	return pkggraph.RangeSet(lo, hi), nil
}

func toolsVersion(s string) (pkggraph.ToolsVersion, error) {
	switch s {
	case "", "5.2":
		return pkggraph.ToolsVersion5_2, nil
	case "5.4":
		return pkggraph.ToolsVersion5_4, nil
	case "6.0":
		return pkggraph.ToolsVersion6_0, nil
	case "6.2":
		return pkggraph.ToolsVersion6_2, nil
	default:
		return pkggraph.ToolsVersion{}, errors.Errorf("unknown fixture toolsVersion %q", s)
	}
}

func identityKind(s string) pkggraph.IdentityKind {
	switch s {
	case "root":
		return pkggraph.KindRoot
	case "localSourceControl":
		return pkggraph.KindLocalSourceControl
	case "remoteSourceControl":
		return pkggraph.KindRemoteSourceControl
	case "registry":
		return pkggraph.KindRegistry
	default:
		return pkggraph.KindFileSystem
	}
}

func productKind(s string) pkggraph.ProductKind {
	switch s {
	case "staticLibrary":
		return pkggraph.ProductLibraryStatic
	case "dynamicLibrary":
		return pkggraph.ProductLibraryDynamic
	case "executable":
		return pkggraph.ProductExecutable
	case "plugin":
		return pkggraph.ProductPlugin
	case "macro":
		return pkggraph.ProductMacro
	case "snippet":
		return pkggraph.ProductSnippet
	case "test":
		return pkggraph.ProductTest
	default:
		return pkggraph.ProductLibraryAutomatic
	}
}

func targetType(s string) pkggraph.TargetType {
	switch s {
	case "executable":
		return pkggraph.TargetExecutable
	case "test":
		return pkggraph.TargetTest
	case "system":
		return pkggraph.TargetSystem
	case "plugin":
		return pkggraph.TargetPlugin
	case "macro":
		return pkggraph.TargetMacro
	case "binary":
		return pkggraph.TargetBinary
	default:
		return pkggraph.TargetRegular
	}
}
