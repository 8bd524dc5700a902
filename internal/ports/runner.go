package ports

import "context"

// Command describes one external tool invocation.
type Command struct {
	// Phase labels the pipeline step ("configure", "build", "install",
	// "populate"). It selects the progress parser and feeds retry policy.
	Phase string

	// Dir is the working directory.
	Dir string

	// Name and Args form the command line.
	Name string
	Args []string
}

// RunResult carries the outcome of a supervised command.
type RunResult struct {
	// ExitCode is the process exit code, 0 on success.
	ExitCode int

	// Diagnostics is the prioritized slice of retained output lines,
	// populated on failure.
	Diagnostics []string

	// CompileError reports whether the retained output was classified as
	// a compiler error. Governs the orchestrator's retry decision.
	CompileError bool
}

// RunnerPort executes one external command under process supervision.
type RunnerPort interface {
	Run(ctx context.Context, cmd Command) (RunResult, error)
}

// BinaryRunnerPort executes a built binary with inherited console streams.
type BinaryRunnerPort interface {
	RunBinary(ctx context.Context, path string, args []string) (int, error)
}
