package ports

import "cxxforge/internal/types"

// ProjectConfigPort loads and validates project descriptor files.
type ProjectConfigPort interface {
	// Load reads the descriptor in dir and validates required fields.
	Load(dir string) (types.ProjectConfig, error)

	// Exists reports whether dir contains a project descriptor.
	Exists(dir string) bool
}

// WorkspacePort discovers project descriptors within a scan root.
type WorkspacePort interface {
	// DiscoverProjects recursively scans root for project descriptors,
	// skipping build and cache directories. Two discovered projects
	// sharing a name is an error.
	DiscoverProjects(root string) (map[string]types.LocalProjectReference, error)
}
