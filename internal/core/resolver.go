package core

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"cxxforge/internal/ports"
	"cxxforge/internal/shared"
	"cxxforge/internal/types"
)

// ResolverCore produces, per project, the merged set of local-filesystem
// and git-hosted dependencies that must exist before the project builds.
// Registry dependencies are planned separately during generation.
//
// The local index and git cache are scoped to one orchestration run and
// are only touched from the orchestrator goroutine.
type ResolverCore struct {
	Projects  ports.ProjectConfigPort
	Workspace ports.WorkspacePort
	Git       ports.GitPort
	Registry  *Registry

	// CacheRoot is where git dependencies are cloned, one subdirectory
	// per filesystem-safe dependency name.
	CacheRoot string

	localIndex map[string]types.LocalProjectReference
	gitCache   map[string]types.GitDependencyReference

	// resolvedDirs pins each dependency name to the source path it first
	// resolved to, across every project in the run.
	resolvedDirs map[string]string
}

func NewResolverCore(projects ports.ProjectConfigPort, workspace ports.WorkspacePort, git ports.GitPort, registry *Registry, cacheRoot string) *ResolverCore {
	return &ResolverCore{
		Projects:     projects,
		Workspace:    workspace,
		Git:          git,
		Registry:     registry,
		CacheRoot:    cacheRoot,
		gitCache:     map[string]types.GitDependencyReference{},
		resolvedDirs: map[string]string{},
	}
}

// Resolve returns the disjoint union of local and git dependencies of
// project, keyed by dependency name.
func (r *ResolverCore) Resolve(ctx context.Context, project types.ProjectConfig, scanRoot string) (map[string]types.LocalProjectReference, error) {
	local := map[string]types.LocalProjectReference{}
	git := map[string]types.LocalProjectReference{}

	for _, declaration := range project.Dependencies {
		spec, err := ParseDependencySpec(declaration)
		if err != nil {
			return nil, err
		}
		switch {
		case spec.IsGit():
			ref, err := r.resolveGit(ctx, spec)
			if err != nil {
				return nil, err
			}
			git[spec.Package] = ref.Resolved
		case r.Registry.IsKnownPackage(declaration):
			// Planned during generation.
		case spec.Package == project.Name:
			// Self-dependency is a no-op, not an error.
		default:
			ref, err := r.resolveLocal(ctx, spec.Package, scanRoot)
			if err != nil {
				return nil, err
			}
			local[spec.Package] = ref
		}
	}

	merged, err := mergeDependencySets(local, git)
	if err != nil {
		return nil, err
	}
	for _, name := range SortedDependencyNames(merged) {
		ref := merged[name]
		if existing, ok := r.resolvedDirs[name]; ok && existing != ref.Dir {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeFailedPrecondition).
				WithMsg(fmt.Sprintf("dependency %s resolves to both %s and %s across the build graph", name, existing, ref.Dir))
		}
		r.resolvedDirs[name] = ref.Dir
	}
	log.Ctx(ctx).Debug().
		Str("project", project.Name).
		Int("local", len(local)).
		Int("git", len(git)).
		Msg("dependencies resolved")
	return merged, nil
}

func (r *ResolverCore) resolveLocal(ctx context.Context, name string, scanRoot string) (types.LocalProjectReference, error) {
	if r.localIndex == nil {
		index, err := r.Workspace.DiscoverProjects(scanRoot)
		if err != nil {
			return types.LocalProjectReference{}, err
		}
		r.localIndex = index
		log.Ctx(ctx).Debug().Int("projects", len(index)).Str("root", scanRoot).Msg("workspace scanned")
	}
	ref, ok := r.localIndex[name]
	if !ok {
		return types.LocalProjectReference{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("dependency %s is neither a registry package nor a local project under %s", name, scanRoot))
	}
	return ref, nil
}

// resolveGit satisfies a git-flagged dependency from the per-run cache,
// cloning and reading the dependency's own descriptor on a miss. A cache
// hit with a different repository or ref is a source mismatch.
func (r *ResolverCore) resolveGit(ctx context.Context, spec types.DependencySpec) (types.GitDependencyReference, error) {
	if cached, ok := r.gitCache[spec.Package]; ok {
		if cached.Repository != spec.GitRepository || cached.Ref != spec.GitRef {
			return types.GitDependencyReference{}, errbuilder.New().
				WithCode(errbuilder.CodeFailedPrecondition).
				WithMsg(fmt.Sprintf("git dependency %s requested from %s#%s but already resolved from %s#%s",
					spec.Package, spec.GitRepository, spec.GitRef, cached.Repository, cached.Ref))
		}
		return cached, nil
	}

	dir := filepath.Join(r.CacheRoot, shared.SafeDirName(spec.Package))
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(r.CacheRoot, 0o750); err != nil {
			return types.GitDependencyReference{}, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to create git cache root").
				WithCause(err)
		}
		if err := r.Git.CloneShallow(ctx, spec.GitRepository, dir); err != nil {
			return types.GitDependencyReference{}, err
		}
	}
	if spec.GitRef != "" {
		if err := r.Git.Checkout(ctx, dir, spec.GitRef); err != nil {
			return types.GitDependencyReference{}, err
		}
	}

	config, err := r.Projects.Load(dir)
	if err != nil {
		return types.GitDependencyReference{}, err
	}
	if config.Name != spec.Package {
		return types.GitDependencyReference{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("git dependency %s declares project name %s in its descriptor", spec.Package, config.Name))
	}

	ref := types.GitDependencyReference{
		Repository: spec.GitRepository,
		Ref:        spec.GitRef,
		Resolved:   types.LocalProjectReference{Dir: dir, Config: config},
	}
	r.gitCache[spec.Package] = ref
	log.Ctx(ctx).Debug().Str("dependency", spec.Package).Str("repository", spec.GitRepository).Msg("git dependency cached")
	return ref, nil
}

func mergeDependencySets(local map[string]types.LocalProjectReference, git map[string]types.LocalProjectReference) (map[string]types.LocalProjectReference, error) {
	merged := make(map[string]types.LocalProjectReference, len(local)+len(git))
	for name, ref := range local {
		merged[name] = ref
	}
	for name, ref := range git {
		if existing, ok := merged[name]; ok && existing.Dir != ref.Dir {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeFailedPrecondition).
				WithMsg(fmt.Sprintf("dependency %s resolves to both %s and %s", name, existing.Dir, ref.Dir))
		}
		merged[name] = ref
	}
	return merged, nil
}

// SortedDependencyNames returns the merged set's names in deterministic
// build order.
func SortedDependencyNames(deps map[string]types.LocalProjectReference) []string {
	names := make([]string, 0, len(deps))
	for name := range deps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
