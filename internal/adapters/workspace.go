package adapters

import (
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"cxxforge/internal/ports"
	"cxxforge/internal/types"
)

// CacheDirName is the workspace-local directory holding git clones and
// the install prefix. It is excluded from project discovery.
const CacheDirName = ".cxxforge"

var skippedDirs = map[string]bool{
	"build":      true,
	".git":       true,
	CacheDirName: true,
}

// WorkspaceAdapter discovers sibling projects by scanning for descriptor
// files under a root directory.
type WorkspaceAdapter struct {
	Projects ports.ProjectConfigPort
}

func NewWorkspaceAdapter(projects ports.ProjectConfigPort) WorkspaceAdapter {
	return WorkspaceAdapter{Projects: projects}
}

func (a WorkspaceAdapter) DiscoverProjects(root string) (map[string]types.LocalProjectReference, error) {
	index := map[string]types.LocalProjectReference{}
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return wrapScanError(path, err)
		}
		if entry.IsDir() {
			if path != root && skippedDirs[entry.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if entry.Name() != DescriptorFileName {
			return nil
		}
		dir := filepath.Dir(path)
		config, err := a.Projects.Load(dir)
		if err != nil {
			return err
		}
		if existing, ok := index[config.Name]; ok {
			return errbuilder.New().
				WithCode(errbuilder.CodeAlreadyExists).
				WithMsg(fmt.Sprintf("projects %s and %s both declare the name %s", existing.Dir, dir, config.Name))
		}
		index[config.Name] = types.LocalProjectReference{Dir: dir, Config: config}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return index, nil
}

func wrapScanError(path string, err error) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInternal).
		WithMsg(fmt.Sprintf("failed to scan workspace path: %s", path)).
		WithCause(err)
}

var _ ports.WorkspacePort = WorkspaceAdapter{}
