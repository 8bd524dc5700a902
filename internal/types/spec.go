package types

// DependencySpec is the parsed form of one dependency declaration string.
//
// Registry form: "name" or "name/variant".
// Git form: "name@repository" or "name@repository#ref".
//
// Values are created by the declaration parser and never mutated afterwards.
type DependencySpec struct {
	// Package is the dependency name. For git dependencies this is the
	// name the cloned project descriptor must declare.
	Package string

	// Variant optionally names a registry package variant.
	Variant string

	// GitRepository is the clone URL for git dependencies, empty otherwise.
	GitRepository string

	// GitRef optionally pins a branch, tag, or commit.
	GitRef string
}

// IsGit reports whether the declaration referenced a git-hosted source.
func (s DependencySpec) IsGit() bool {
	return s.GitRepository != ""
}
