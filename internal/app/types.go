package app

// BuildRequest drives one orchestration run rooted at a project
// directory.
type BuildRequest struct {
	// Dir is the root project directory. Defaults to the working
	// directory in the CLI layer.
	Dir string

	// Configuration is the raw CLI selection; empty defers to the
	// project descriptor, then the global default.
	Configuration string

	// WorkspaceRoot overrides the sibling-project scan root. Defaults
	// to Dir.
	WorkspaceRoot string

	// NoTests disables test target generation for this run.
	NoTests bool

	// NoInstall skips the install phase and export rule emission.
	NoInstall bool
}

// BuildResult reports what one orchestration run built.
type BuildResult struct {
	// Built lists project names in completion order; dependencies
	// always precede their dependents.
	Built []string
}

// RunRequest builds an executable project and then executes it.
type RunRequest struct {
	BuildRequest

	// Args are passed through to the built binary.
	Args []string
}

// RunResult carries the executed binary's exit code.
type RunResult struct {
	BuildResult
	Binary   string
	ExitCode int
}

// GenerateRequest regenerates one project's build script without
// configuring or building.
type GenerateRequest struct {
	Dir           string
	WorkspaceRoot string
	NoTests       bool
	NoInstall     bool
}

// GenerateResult reports whether the script on disk changed.
type GenerateResult struct {
	Changed bool
}
