package app

import (
	"path/filepath"

	"cxxforge/internal/adapters"
	"cxxforge/internal/core"
	"cxxforge/internal/ports"
	"cxxforge/internal/proc"
)

// Service wires the orchestration ports. Tests substitute fakes for the
// runner and git ports; production wiring comes from NewService.
type Service struct {
	Projects  ports.ProjectConfigPort
	Workspace ports.WorkspacePort
	Git       ports.GitPort
	Runner    ports.RunnerPort
	Binary    ports.BinaryRunnerPort
	Registry  *core.Registry
	Cache     adapters.BuildCacheAdapter
}

func NewService(scope proc.Scope, registry *core.Registry) Service {
	projects := adapters.NewProjectFileAdapter()
	runner := proc.NewRunner(scope)
	return Service{
		Projects:  projects,
		Workspace: adapters.NewWorkspaceAdapter(projects),
		Git:       adapters.NewGitClientAdapter(),
		Runner:    runner,
		Binary:    runner,
		Registry:  registry,
		Cache:     adapters.NewBuildCacheAdapter(),
	}
}

// workspacePaths derives the cache layout under the scan root.
type workspacePaths struct {
	scanRoot      string
	gitCacheRoot  string
	installPrefix string
}

func newWorkspacePaths(scanRoot string) workspacePaths {
	cache := filepath.Join(scanRoot, adapters.CacheDirName)
	return workspacePaths{
		scanRoot:      scanRoot,
		gitCacheRoot:  filepath.Join(cache, "deps"),
		installPrefix: filepath.Join(cache, "install"),
	}
}
