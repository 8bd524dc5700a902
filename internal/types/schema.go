package types

// SourceBuckets splits a project's source files by visibility.
//
// Module interface units and public headers are visible to consumers of a
// library target; private files are compiled only into the target itself.
type SourceBuckets struct {
	// Modules lists C++ module interface units (.cppm/.ixx).
	Modules []string `yaml:"modules,omitempty"`

	// Private lists implementation files compiled only into this target.
	Private []string `yaml:"private,omitempty"`

	// PublicHeaders lists headers exported for consumer inclusion.
	PublicHeaders []string `yaml:"public_headers,omitempty"`
}

// BuildSection carries the optional build settings of a project descriptor.
type BuildSection struct {
	// DefaultConfiguration names the configuration used when the CLI does
	// not select one. Must be one of the four CMake configurations.
	DefaultConfiguration string `yaml:"default_configuration,omitempty"`

	// Options maps configuration name -> toolchain family -> compiler
	// options. Family keys: "msvc", "gcc_like".
	Options map[string]map[string][]string `yaml:"options,omitempty"`
}

// ProjectConfig is the parsed form of a cxxforge.yaml project descriptor.
// One descriptor describes one buildable unit (executable or static
// library) plus its declared dependencies and tests.
type ProjectConfig struct {
	// Name is the project and target name. Must be unique within a
	// workspace scan root.
	Name string `yaml:"name"`

	// Standard is the C++ language standard level, e.g. 20 or 23.
	Standard int `yaml:"standard"`

	// OutputType selects the produced artifact kind.
	OutputType OutputType `yaml:"output_type"`

	// Sources holds the visibility-bucketed source file lists.
	Sources SourceBuckets `yaml:"sources,omitempty"`

	// Dependencies lists raw dependency declaration strings:
	// "name", "name/variant", or "name@repo[#ref]".
	Dependencies []string `yaml:"dependencies,omitempty"`

	// Tests lists test source files. Missing files are stripped from a
	// derived copy before generation; present files produce a test target.
	Tests []string `yaml:"tests,omitempty"`

	// LegacyLayout permits a library with no declared module or private
	// sources (header trees predating the bucket layout).
	LegacyLayout bool `yaml:"legacy_layout,omitempty"`

	// Build carries optional configuration defaults and compiler options.
	Build BuildSection `yaml:"build,omitempty"`
}

// IsLibrary reports whether the project produces a linkable library.
func (p ProjectConfig) IsLibrary() bool {
	return p.OutputType == OutputTypeLibrary
}

// LocalProjectReference is a sibling project resolvable on disk.
type LocalProjectReference struct {
	Dir    string
	Config ProjectConfig
}

// GitDependencyReference is a git-hosted dependency resolved into the
// per-run clone cache. Re-requesting the same name with a different
// repository or ref is a resolution error.
type GitDependencyReference struct {
	Repository string
	Ref        string
	Resolved   LocalProjectReference
}
