package core

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/stretchr/testify/require"

	"cxxforge/internal/shared"
	"cxxforge/internal/types"
)

func gitCacheDir(cacheRoot string, name string) string {
	return filepath.Join(cacheRoot, shared.SafeDirName(name))
}

type fakeProjectPort struct {
	configs map[string]types.ProjectConfig
}

func (f *fakeProjectPort) Load(dir string) (types.ProjectConfig, error) {
	config, ok := f.configs[dir]
	if !ok {
		return types.ProjectConfig{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("no descriptor in " + dir)
	}
	return config, nil
}

func (f *fakeProjectPort) Exists(dir string) bool {
	_, ok := f.configs[dir]
	return ok
}

type fakeWorkspacePort struct {
	projects map[string]types.LocalProjectReference
	scans    int
}

func (f *fakeWorkspacePort) DiscoverProjects(string) (map[string]types.LocalProjectReference, error) {
	f.scans++
	return f.projects, nil
}

type fakeGitPort struct {
	clones    []string
	checkouts []string
}

func (f *fakeGitPort) CloneShallow(_ context.Context, repository string, _ string) error {
	f.clones = append(f.clones, repository)
	return nil
}

func (f *fakeGitPort) Checkout(_ context.Context, _ string, ref string) error {
	f.checkouts = append(f.checkouts, ref)
	return nil
}

func TestResolveLocalDependency(t *testing.T) {
	mathRef := types.LocalProjectReference{
		Dir:    "/ws/mathmod",
		Config: types.ProjectConfig{Name: "mathmod", OutputType: types.OutputTypeLibrary},
	}
	workspace := &fakeWorkspacePort{projects: map[string]types.LocalProjectReference{"mathmod": mathRef}}
	resolver := NewResolverCore(&fakeProjectPort{}, workspace, &fakeGitPort{}, NewRegistry(), t.TempDir())

	project := types.ProjectConfig{Name: "app", Dependencies: []string{"mathmod", "fmt"}}
	deps, err := resolver.Resolve(t.Context(), project, "/ws")
	require.NoError(t, err)
	require.Len(t, deps, 1)
	require.Equal(t, mathRef, deps["mathmod"])
}

func TestResolveScansWorkspaceOnce(t *testing.T) {
	workspace := &fakeWorkspacePort{projects: map[string]types.LocalProjectReference{
		"mathmod": {Dir: "/ws/mathmod", Config: types.ProjectConfig{Name: "mathmod"}},
		"physics": {Dir: "/ws/physics", Config: types.ProjectConfig{Name: "physics"}},
	}}
	resolver := NewResolverCore(&fakeProjectPort{}, workspace, &fakeGitPort{}, NewRegistry(), t.TempDir())

	project := types.ProjectConfig{Name: "app", Dependencies: []string{"mathmod", "physics"}}
	_, err := resolver.Resolve(t.Context(), project, "/ws")
	require.NoError(t, err)
	require.Equal(t, 1, workspace.scans)
}

func TestResolveUnknownDependency(t *testing.T) {
	workspace := &fakeWorkspacePort{projects: map[string]types.LocalProjectReference{}}
	resolver := NewResolverCore(&fakeProjectPort{}, workspace, &fakeGitPort{}, NewRegistry(), t.TempDir())

	project := types.ProjectConfig{Name: "app", Dependencies: []string{"missing"}}
	_, err := resolver.Resolve(t.Context(), project, "/ws")
	require.Error(t, err)
	require.Equal(t, errbuilder.CodeNotFound, errbuilder.CodeOf(err))
	require.Contains(t, err.Error(), "missing")
}

func TestResolveSelfDependencyIgnored(t *testing.T) {
	workspace := &fakeWorkspacePort{projects: map[string]types.LocalProjectReference{}}
	resolver := NewResolverCore(&fakeProjectPort{}, workspace, &fakeGitPort{}, NewRegistry(), t.TempDir())

	project := types.ProjectConfig{Name: "app", Dependencies: []string{"app"}}
	deps, err := resolver.Resolve(t.Context(), project, "/ws")
	require.NoError(t, err)
	require.Empty(t, deps)
	require.Zero(t, workspace.scans)
}

func TestResolveGitDependencyClonesOnce(t *testing.T) {
	git := &fakeGitPort{}
	projects := &fakeProjectPort{configs: map[string]types.ProjectConfig{}}
	cacheRoot := t.TempDir()
	resolver := NewResolverCore(projects, &fakeWorkspacePort{}, git, NewRegistry(), cacheRoot)

	dir := gitCacheDir(cacheRoot, "mathmod")
	projects.configs[dir] = types.ProjectConfig{Name: "mathmod", OutputType: types.OutputTypeLibrary}

	project := types.ProjectConfig{Name: "app", Dependencies: []string{"mathmod@https://example.com/m.git#v1.0"}}
	deps, err := resolver.Resolve(t.Context(), project, "/ws")
	require.NoError(t, err)
	require.Equal(t, dir, deps["mathmod"].Dir)
	require.Equal(t, []string{"https://example.com/m.git"}, git.clones)
	require.Equal(t, []string{"v1.0"}, git.checkouts)

	// Second resolution of the same declaration reuses the cache entry.
	_, err = resolver.Resolve(t.Context(), project, "/ws")
	require.NoError(t, err)
	require.Len(t, git.clones, 1)
	require.Len(t, git.checkouts, 1)
}

func TestResolveGitSourceMismatch(t *testing.T) {
	git := &fakeGitPort{}
	projects := &fakeProjectPort{configs: map[string]types.ProjectConfig{}}
	cacheRoot := t.TempDir()
	resolver := NewResolverCore(projects, &fakeWorkspacePort{}, git, NewRegistry(), cacheRoot)
	projects.configs[gitCacheDir(cacheRoot, "mathmod")] = types.ProjectConfig{Name: "mathmod"}

	first := types.ProjectConfig{Name: "app", Dependencies: []string{"mathmod@https://example.com/m.git#v1.0"}}
	_, err := resolver.Resolve(t.Context(), first, "/ws")
	require.NoError(t, err)

	second := types.ProjectConfig{Name: "other", Dependencies: []string{"mathmod@https://example.com/m.git#v2.0"}}
	_, err = resolver.Resolve(t.Context(), second, "/ws")
	require.Error(t, err)
	require.Equal(t, errbuilder.CodeFailedPrecondition, errbuilder.CodeOf(err))
}

func TestResolveSourcePathConflictAcrossProjects(t *testing.T) {
	git := &fakeGitPort{}
	projects := &fakeProjectPort{configs: map[string]types.ProjectConfig{}}
	cacheRoot := t.TempDir()
	workspace := &fakeWorkspacePort{projects: map[string]types.LocalProjectReference{
		"mathmod": {Dir: "/ws/mathmod", Config: types.ProjectConfig{Name: "mathmod", OutputType: types.OutputTypeLibrary}},
	}}
	resolver := NewResolverCore(projects, workspace, git, NewRegistry(), cacheRoot)
	projects.configs[gitCacheDir(cacheRoot, "mathmod")] = types.ProjectConfig{Name: "mathmod", OutputType: types.OutputTypeLibrary}

	first := types.ProjectConfig{Name: "engine", Dependencies: []string{"mathmod"}}
	_, err := resolver.Resolve(t.Context(), first, "/ws")
	require.NoError(t, err)

	second := types.ProjectConfig{Name: "game", Dependencies: []string{"mathmod@https://example.com/m.git"}}
	_, err = resolver.Resolve(t.Context(), second, "/ws")
	require.Error(t, err)
	require.Equal(t, errbuilder.CodeFailedPrecondition, errbuilder.CodeOf(err))
	require.Contains(t, err.Error(), "resolves to both")
}

func TestResolveGitDescriptorNameMismatch(t *testing.T) {
	git := &fakeGitPort{}
	projects := &fakeProjectPort{configs: map[string]types.ProjectConfig{}}
	cacheRoot := t.TempDir()
	resolver := NewResolverCore(projects, &fakeWorkspacePort{}, git, NewRegistry(), cacheRoot)
	projects.configs[gitCacheDir(cacheRoot, "mathmod")] = types.ProjectConfig{Name: "somethingelse"}

	project := types.ProjectConfig{Name: "app", Dependencies: []string{"mathmod@https://example.com/m.git"}}
	_, err := resolver.Resolve(t.Context(), project, "/ws")
	require.Error(t, err)
	require.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
}

func TestSortedDependencyNames(t *testing.T) {
	deps := map[string]types.LocalProjectReference{
		"zeta":  {},
		"alpha": {},
		"mid":   {},
	}
	require.Equal(t, []string{"alpha", "mid", "zeta"}, SortedDependencyNames(deps))
}
