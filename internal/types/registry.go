package types

// PackageVariant extends a registry package with backend-specific sources
// and dependencies (e.g. imgui's sdl3_renderer backend). Variant fields are
// merged onto the base entry during planning and generation.
type PackageVariant struct {
	Sources      []string `yaml:"sources,omitempty"`
	IncludeDirs  []string `yaml:"include_dirs,omitempty"`
	Definitions  []string `yaml:"definitions,omitempty"`
	Dependencies []string `yaml:"dependencies,omitempty"`
}

// PackageEntry is one curated catalog record: where to fetch a third-party
// package and how to turn it into linkable targets.
type PackageEntry struct {
	// Name is the canonical package name, matched case-insensitively.
	Name string `yaml:"name"`

	// GitRepository and GitTag locate the upstream source.
	GitRepository string `yaml:"git_repository"`
	GitTag        string `yaml:"git_tag,omitempty"`

	// Strategy selects how the package is acquired and exposed.
	Strategy FetchStrategy `yaml:"strategy"`

	// LinkTargets are the target names consumers link against. For
	// direct-fetch entries these are the upstream's own exported targets;
	// for compiled wrappers they become aliases of the internal target.
	LinkTargets []string `yaml:"link_targets,omitempty"`

	// Dependencies names other registry packages this one requires.
	Dependencies []string `yaml:"dependencies,omitempty"`

	// Sources enumerates the files compiled into a wrapper target,
	// relative to the populated source directory.
	Sources []string `yaml:"sources,omitempty"`

	// IncludeDirs are exposed include paths relative to the populated
	// source directory; "." exposes the root.
	IncludeDirs []string `yaml:"include_dirs,omitempty"`

	// Definitions are compile definitions exposed to consumers.
	Definitions []string `yaml:"definitions,omitempty"`

	// CMakeOptions are cache settings applied before the fetch declare,
	// as NAME=VALUE pairs.
	CMakeOptions []string `yaml:"cmake_options,omitempty"`

	// Variants optionally extend the entry under a requested name.
	Variants map[string]PackageVariant `yaml:"variants,omitempty"`
}

// PlannedPackage is one element of a resolved build plan: a registry
// package with its (possibly empty) variant assignment, ordered so that
// dependencies precede dependents.
type PlannedPackage struct {
	Name    string
	Variant string
}

// RegistryFile is the on-disk shape of a registry override layer.
type RegistryFile struct {
	Packages []PackageEntry    `yaml:"packages"`
	Aliases  map[string]string `yaml:"aliases,omitempty"`
}
