package app

import (
	"context"

	"cxxforge/internal/core"
	"cxxforge/internal/gen"
)

// Generate regenerates one project's build script without running any
// build phase. The dependency graph is still resolved so the script can
// reference sibling and git dependencies.
func (s Service) Generate(ctx context.Context, req GenerateRequest) (GenerateResult, error) {
	o, root, err := s.newOrchestration(ctx, req.Dir, req.WorkspaceRoot, "", req.NoTests, req.NoInstall)
	if err != nil {
		return GenerateResult{}, err
	}

	deps, err := o.resolver.Resolve(ctx, root.Config, o.paths.scanRoot)
	if err != nil {
		return GenerateResult{}, err
	}
	project := o.stripMissingTests(ctx, root)
	plan, err := core.PlanRegistryDependencies(s.Registry, project, nil)
	if err != nil {
		return GenerateResult{}, err
	}

	generator := gen.Generator{
		Registry:       s.Registry,
		InstallPrefix:  o.paths.installPrefix,
		InstallEnabled: !req.NoInstall,
		TestsEnabled:   !req.NoTests,
	}
	script, err := generator.Generate(gen.Input{
		Project:   project,
		LocalDeps: core.SortedDependencyNames(deps),
		Plan:      plan,
	})
	if err != nil {
		return GenerateResult{}, err
	}
	changed, err := gen.WriteScript(root.Dir, script)
	if err != nil {
		return GenerateResult{}, err
	}
	return GenerateResult{Changed: changed}, nil
}
