package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"cxxforge/internal/core"
	"cxxforge/internal/gen"
	"cxxforge/internal/ports"
	"cxxforge/internal/types"
)

// orchestrator holds the per-run state of one build graph walk. Projects
// are built one at a time, dependencies strictly before dependents; all
// maps here are touched only from the orchestrator goroutine.
type orchestrator struct {
	svc              Service
	resolver         *core.ResolverCore
	paths            workspacePaths
	cliConfiguration string
	noTests          bool
	noInstall        bool

	// active marks projects on the current walk path; re-entering one
	// signals a circular dependency.
	active map[string]bool

	// completed avoids rebuilding a project reached via multiple paths.
	completed map[string]bool

	// variants accumulates the registry variant chosen for each package
	// so that every project in the graph agrees on it.
	variants map[string]string

	order []string
}

// Build walks the dependency graph depth-first from the root project and
// drives generate/configure/build/install for every node.
func (s Service) Build(ctx context.Context, req BuildRequest) (BuildResult, error) {
	o, root, err := s.newOrchestration(ctx, req.Dir, req.WorkspaceRoot, req.Configuration, req.NoTests, req.NoInstall)
	if err != nil {
		return BuildResult{}, err
	}
	if err := o.buildProject(ctx, root); err != nil {
		return BuildResult{}, err
	}
	return BuildResult{Built: o.order}, nil
}

func (s Service) newOrchestration(ctx context.Context, dir string, workspaceRoot string, configuration string, noTests bool, noInstall bool) (*orchestrator, types.LocalProjectReference, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, types.LocalProjectReference{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to resolve project directory").
			WithCause(err)
	}
	scanRoot := workspaceRoot
	if strings.TrimSpace(scanRoot) == "" {
		scanRoot = absDir
	} else if scanRoot, err = filepath.Abs(scanRoot); err != nil {
		return nil, types.LocalProjectReference{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to resolve workspace root").
			WithCause(err)
	}

	config, err := s.Projects.Load(absDir)
	if err != nil {
		return nil, types.LocalProjectReference{}, err
	}
	if err := core.ValidateProject(ctx, config); err != nil {
		return nil, types.LocalProjectReference{}, err
	}

	paths := newWorkspacePaths(scanRoot)
	o := &orchestrator{
		svc:              s,
		resolver:         core.NewResolverCore(s.Projects, s.Workspace, s.Git, s.Registry, paths.gitCacheRoot),
		paths:            paths,
		cliConfiguration: configuration,
		noTests:          noTests,
		noInstall:        noInstall,
		active:           map[string]bool{},
		completed:        map[string]bool{},
		variants:         map[string]string{},
	}
	return o, types.LocalProjectReference{Dir: absDir, Config: config}, nil
}

func (o *orchestrator) buildProject(ctx context.Context, ref types.LocalProjectReference) error {
	name := ref.Config.Name
	if o.completed[name] {
		return nil
	}
	if o.active[name] {
		return errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg(fmt.Sprintf("circular dependency detected at project %s", name))
	}
	o.active[name] = true
	defer delete(o.active, name)

	configuration, err := o.resolveConfiguration(ref.Config)
	if err != nil {
		return err
	}

	deps, err := o.resolver.Resolve(ctx, ref.Config, o.paths.scanRoot)
	if err != nil {
		return err
	}
	depNames := core.SortedDependencyNames(deps)
	for _, depName := range depNames {
		dep := deps[depName]
		if !dep.Config.IsLibrary() {
			return errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("project %s depends on %s, which is %s rather than a library", name, depName, dep.Config.OutputType))
		}
		if err := o.buildProject(ctx, dep); err != nil {
			return err
		}
	}

	project := o.stripMissingTests(ctx, ref)
	plan, err := core.PlanRegistryDependencies(o.svc.Registry, project, o.variants)
	if err != nil {
		return err
	}
	generator := gen.Generator{
		Registry:       o.svc.Registry,
		InstallPrefix:  o.paths.installPrefix,
		InstallEnabled: !o.noInstall,
		TestsEnabled:   !o.noTests,
	}
	script, err := generator.Generate(gen.Input{Project: project, LocalDeps: depNames, Plan: plan})
	if err != nil {
		return err
	}
	changed, err := gen.WriteScript(ref.Dir, script)
	if err != nil {
		return err
	}
	if !changed {
		log.Ctx(ctx).Debug().Str("project", name).Msg("build script unchanged")
	}

	buildDir := filepath.Join(ref.Dir, "build", string(configuration))
	skipConfigure := !changed && o.svc.Cache.ConfigurationMatches(buildDir, configuration)

	log.Ctx(ctx).Info().Str("project", name).Str("configuration", string(configuration)).Msg("building project")
	if err := o.runPipeline(ctx, ref, configuration, buildDir, skipConfigure, true); err != nil {
		return err
	}

	o.completed[name] = true
	o.order = append(o.order, name)
	log.Ctx(ctx).Info().Str("project", name).Msg("project built")
	return nil
}

// resolveConfiguration applies the precedence: explicit CLI selection,
// then the project's declared default, then the global default.
func (o *orchestrator) resolveConfiguration(config types.ProjectConfig) (types.Configuration, error) {
	if o.cliConfiguration != "" {
		return types.ParseConfiguration(o.cliConfiguration)
	}
	if config.Build.DefaultConfiguration != "" {
		return types.ParseConfiguration(config.Build.DefaultConfiguration)
	}
	return types.ConfigurationDefault, nil
}

// stripMissingTests derives a descriptor copy with nonexistent test
// files removed, so a stale test list does not break generation.
func (o *orchestrator) stripMissingTests(ctx context.Context, ref types.LocalProjectReference) types.ProjectConfig {
	project := ref.Config
	if len(project.Tests) == 0 {
		return project
	}
	var present []string
	for _, file := range project.Tests {
		if _, err := os.Stat(filepath.Join(ref.Dir, file)); err != nil {
			log.Ctx(ctx).Warn().Str("project", project.Name).Str("file", file).Msg("declared test file not found, skipping")
			continue
		}
		present = append(present, file)
	}
	project.Tests = present
	return project
}

func (o *orchestrator) runPipeline(ctx context.Context, ref types.LocalProjectReference, configuration types.Configuration, buildDir string, skipConfigure bool, allowRetry bool) error {
	phase, result, err := o.runPhases(ctx, ref, configuration, buildDir, skipConfigure)
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || ctx.Err() != nil {
		return err
	}
	if allowRetry && shouldRetryPhase(phase, result) {
		log.Ctx(ctx).Warn().
			Str("project", ref.Config.Name).
			Str("phase", phase).
			Msg("phase failed, wiping build directory and retrying once")
		if werr := o.svc.Cache.Wipe(buildDir); werr != nil {
			return werr
		}
		return o.runPipeline(ctx, ref, configuration, buildDir, false, false)
	}
	return phaseFailure(ref.Config.Name, phase, result, err)
}

func (o *orchestrator) runPhases(ctx context.Context, ref types.LocalProjectReference, configuration types.Configuration, buildDir string, skipConfigure bool) (string, ports.RunResult, error) {
	if skipConfigure {
		log.Ctx(ctx).Debug().Str("project", ref.Config.Name).Msg("configure skipped, script and configuration unchanged")
	} else {
		result, err := o.svc.Runner.Run(ctx, ports.Command{
			Phase: "configure",
			Dir:   ref.Dir,
			Name:  "cmake",
			Args:  []string{"-S", ".", "-B", buildDir, "-DCMAKE_BUILD_TYPE=" + string(configuration)},
		})
		if err != nil {
			return "configure", result, err
		}
	}

	result, err := o.svc.Runner.Run(ctx, ports.Command{
		Phase: "build",
		Dir:   ref.Dir,
		Name:  "cmake",
		Args:  []string{"--build", buildDir, "--config", string(configuration)},
	})
	if err != nil {
		return "build", result, err
	}

	if ref.Config.IsLibrary() && !o.noInstall {
		result, err := o.svc.Runner.Run(ctx, ports.Command{
			Phase: "install",
			Dir:   ref.Dir,
			Name:  "cmake",
			Args:  []string{"--install", buildDir, "--prefix", o.paths.installPrefix},
		})
		if err != nil {
			return "install", result, err
		}
	}
	return "", ports.RunResult{}, nil
}

// shouldRetryPhase decides the one-shot clean retry. A clean rebuild
// cannot fix a genuine compile error, and a failure of the build phase
// itself is taken as one; anything else (configure, install) is treated
// as possibly transient. This is a heuristic, not a guaranteed
// classifier.
func shouldRetryPhase(phase string, result ports.RunResult) bool {
	return !result.CompileError && !strings.HasPrefix(phase, "build")
}

func phaseFailure(project string, phase string, result ports.RunResult, cause error) error {
	msg := fmt.Sprintf("%s failed for project %s", phase, project)
	if len(result.Diagnostics) > 0 {
		msg = fmt.Sprintf("%s\n%s", msg, strings.Join(result.Diagnostics, "\n"))
	}
	return errbuilder.New().
		WithCode(errbuilder.CodeAborted).
		WithMsg(msg).
		WithCause(cause)
}
