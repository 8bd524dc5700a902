package core

import (
	"fmt"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"cxxforge/internal/types"
)

// planner walks registry package dependencies depth-first, accumulating a
// dependency-before-dependent order with memoization by name. A package
// re-entered while still on the walk path is a cycle; a package reached
// under two different variants is a conflict.
type planner struct {
	registry *Registry
	ordered  []types.PlannedPackage
	variants map[string]string
	planned  map[string]bool
	onPath   map[string]bool
}

// PlanRegistryDependencies produces the ordered build plan of registry
// packages for one project: every declared catalog dependency plus its
// transitive catalog dependencies, each exactly once.
//
// assignments carries variant selections across an orchestration run, so
// two projects in the same graph requesting different variants of one
// package conflict. Pass nil when planning a single project in isolation.
func PlanRegistryDependencies(registry *Registry, project types.ProjectConfig, assignments map[string]string) ([]types.PlannedPackage, error) {
	if assignments == nil {
		assignments = map[string]string{}
	}
	p := planner{
		registry: registry,
		variants: assignments,
		planned:  map[string]bool{},
		onPath:   map[string]bool{},
	}
	for _, declaration := range project.Dependencies {
		spec, err := ParseDependencySpec(declaration)
		if err != nil {
			return nil, err
		}
		if spec.IsGit() || !registry.IsKnownPackage(declaration) {
			continue
		}
		if err := p.plan(spec.Package, spec.Variant); err != nil {
			return nil, err
		}
	}
	return p.ordered, nil
}

func (p *planner) plan(name string, variant string) error {
	entry, ok := p.registry.Find(name)
	if !ok {
		return errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("unknown registry package: %s", name))
	}
	canonical := entry.Name

	if p.onPath[canonical] {
		return errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg(fmt.Sprintf("registry package dependency cycle through %s", canonical))
	}
	if existing, ok := p.variants[canonical]; ok && existing != variant {
		return variantConflict(canonical, existing, variant)
	}
	if p.planned[canonical] {
		return nil
	}

	v, err := p.registry.Variant(entry, variant)
	if err != nil {
		return err
	}

	p.onPath[canonical] = true
	defer delete(p.onPath, canonical)

	for _, dep := range entry.Dependencies {
		if err := p.planDeclaration(dep); err != nil {
			return err
		}
	}
	for _, dep := range v.Dependencies {
		if err := p.planDeclaration(dep); err != nil {
			return err
		}
	}

	p.planned[canonical] = true
	p.variants[canonical] = variant
	p.ordered = append(p.ordered, types.PlannedPackage{Name: canonical, Variant: variant})
	return nil
}

func (p *planner) planDeclaration(declaration string) error {
	spec, err := ParseDependencySpec(declaration)
	if err != nil {
		return err
	}
	return p.plan(spec.Package, spec.Variant)
}

func variantConflict(name string, a string, b string) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeFailedPrecondition).
		WithMsg(fmt.Sprintf("package %s requested with conflicting variants: %s vs %s", name, displayVariant(a), displayVariant(b)))
}

func displayVariant(variant string) string {
	if variant == "" {
		return "(none)"
	}
	return variant
}
