package app

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/stretchr/testify/require"

	"cxxforge/internal/adapters"
	"cxxforge/internal/core"
	"cxxforge/internal/ports"
)

type fakeRunner struct {
	commands []ports.Command

	// failures queues one result per planned failure, keyed by phase.
	failures map[string][]ports.RunResult

	// onRun observes every command before the outcome is decided.
	onRun func(cmd ports.Command)
}

func (f *fakeRunner) Run(_ context.Context, cmd ports.Command) (ports.RunResult, error) {
	f.commands = append(f.commands, cmd)
	if f.onRun != nil {
		f.onRun(cmd)
	}
	if queue := f.failures[cmd.Phase]; len(queue) > 0 {
		result := queue[0]
		f.failures[cmd.Phase] = queue[1:]
		return result, errbuilder.New().
			WithCode(errbuilder.CodeAborted).
			WithMsg(cmd.Phase + " failed with exit code 1")
	}
	return ports.RunResult{}, nil
}

func (f *fakeRunner) phases() []string {
	out := make([]string, 0, len(f.commands))
	for _, cmd := range f.commands {
		out = append(out, cmd.Phase)
	}
	return out
}

type fakeBinaryRunner struct {
	path string
	args []string
	exit int
}

func (f *fakeBinaryRunner) RunBinary(_ context.Context, path string, args []string) (int, error) {
	f.path = path
	f.args = args
	return f.exit, nil
}

type stubGit struct{}

func (stubGit) CloneShallow(context.Context, string, string) error { return nil }
func (stubGit) Checkout(context.Context, string, string) error     { return nil }

// descriptorGit fakes a clone by materializing the dependency's descriptor
// in the target directory.
type descriptorGit struct {
	t          *testing.T
	descriptor string
}

func (g descriptorGit) CloneShallow(_ context.Context, _ string, dir string) error {
	writeDescriptor(g.t, dir, g.descriptor)
	return nil
}

func (descriptorGit) Checkout(context.Context, string, string) error { return nil }

func newTestService(runner *fakeRunner, binary *fakeBinaryRunner) Service {
	projects := adapters.NewProjectFileAdapter()
	return Service{
		Projects:  projects,
		Workspace: adapters.NewWorkspaceAdapter(projects),
		Git:       stubGit{},
		Runner:    runner,
		Binary:    binary,
		Registry:  core.NewRegistry(),
		Cache:     adapters.NewBuildCacheAdapter(),
	}
}

func writeDescriptor(t *testing.T, dir string, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, adapters.DescriptorFileName), []byte(content), 0o640))
}

// configureBuildDir extracts the -B argument of a configure command.
func configureBuildDir(cmd ports.Command) string {
	for i, arg := range cmd.Args {
		if arg == "-B" && i+1 < len(cmd.Args) {
			return cmd.Args[i+1]
		}
	}
	return ""
}

func TestBuildOrdersDependenciesFirst(t *testing.T) {
	ws := t.TempDir()
	writeDescriptor(t, filepath.Join(ws, "gameplay"), `name: gameplay
standard: 20
output_type: static_library
sources:
  private: [src/gameplay.cpp]
`)
	writeDescriptor(t, filepath.Join(ws, "app"), `name: app
standard: 20
output_type: executable
dependencies: [gameplay]
`)

	runner := &fakeRunner{}
	svc := newTestService(runner, &fakeBinaryRunner{})

	result, err := svc.Build(t.Context(), BuildRequest{
		Dir:           filepath.Join(ws, "app"),
		WorkspaceRoot: ws,
	})
	require.NoError(t, err)
	require.Equal(t, []string{"gameplay", "app"}, result.Built)

	// The library installs; the executable does not.
	require.Equal(t, []string{"configure", "build", "install", "configure", "build"}, runner.phases())

	install := runner.commands[2]
	require.Contains(t, install.Args, "--prefix")
	require.Contains(t, install.Args, filepath.Join(ws, adapters.CacheDirName, "install"))
}

func TestBuildDetectsCircularDependency(t *testing.T) {
	ws := t.TempDir()
	writeDescriptor(t, filepath.Join(ws, "alpha"), `name: alpha
standard: 20
output_type: static_library
sources:
  private: [src/a.cpp]
dependencies: [beta]
`)
	writeDescriptor(t, filepath.Join(ws, "beta"), `name: beta
standard: 20
output_type: static_library
sources:
  private: [src/b.cpp]
dependencies: [gamma]
`)
	writeDescriptor(t, filepath.Join(ws, "gamma"), `name: gamma
standard: 20
output_type: static_library
sources:
  private: [src/c.cpp]
dependencies: [alpha]
`)

	svc := newTestService(&fakeRunner{}, &fakeBinaryRunner{})
	_, err := svc.Build(t.Context(), BuildRequest{
		Dir:           filepath.Join(ws, "alpha"),
		WorkspaceRoot: ws,
	})
	require.Error(t, err)
	require.Equal(t, errbuilder.CodeFailedPrecondition, errbuilder.CodeOf(err))
	require.Contains(t, err.Error(), "circular dependency detected at project alpha")
}

func TestBuildRejectsExecutableDependency(t *testing.T) {
	ws := t.TempDir()
	writeDescriptor(t, filepath.Join(ws, "tool"), `name: tool
standard: 20
output_type: executable
`)
	writeDescriptor(t, filepath.Join(ws, "app"), `name: app
standard: 20
output_type: executable
dependencies: [tool]
`)

	svc := newTestService(&fakeRunner{}, &fakeBinaryRunner{})
	_, err := svc.Build(t.Context(), BuildRequest{
		Dir:           filepath.Join(ws, "app"),
		WorkspaceRoot: ws,
	})
	require.Error(t, err)
	require.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
	require.Contains(t, err.Error(), "rather than a library")
}

func TestBuildRejectsVariantConflictAcrossGraph(t *testing.T) {
	ws := t.TempDir()
	writeDescriptor(t, filepath.Join(ws, "engine"), `name: engine
standard: 20
output_type: static_library
sources:
  private: [src/engine.cpp]
dependencies: [imgui/sdl3_renderer]
`)
	writeDescriptor(t, filepath.Join(ws, "game"), `name: game
standard: 20
output_type: executable
dependencies: [engine, imgui/sdl3_opengl3]
`)

	svc := newTestService(&fakeRunner{}, &fakeBinaryRunner{})
	_, err := svc.Build(t.Context(), BuildRequest{
		Dir:           filepath.Join(ws, "game"),
		WorkspaceRoot: ws,
	})
	require.Error(t, err)
	require.Equal(t, errbuilder.CodeFailedPrecondition, errbuilder.CodeOf(err))
	require.Contains(t, err.Error(), "conflicting variants")
}

func TestBuildRejectsSourcePathConflictAcrossGraph(t *testing.T) {
	ws := t.TempDir()
	writeDescriptor(t, filepath.Join(ws, "mathmod"), `name: mathmod
standard: 20
output_type: static_library
sources:
  private: [src/impl.cpp]
`)
	writeDescriptor(t, filepath.Join(ws, "engine"), `name: engine
standard: 20
output_type: static_library
sources:
  private: [src/engine.cpp]
dependencies: [mathmod]
`)
	writeDescriptor(t, filepath.Join(ws, "game"), `name: game
standard: 20
output_type: executable
dependencies: [engine, mathmod@https://example.com/mathmod.git]
`)

	svc := newTestService(&fakeRunner{}, &fakeBinaryRunner{})
	svc.Git = descriptorGit{t: t, descriptor: `name: mathmod
standard: 20
output_type: static_library
sources:
  private: [src/impl.cpp]
`}
	_, err := svc.Build(t.Context(), BuildRequest{
		Dir:           filepath.Join(ws, "game"),
		WorkspaceRoot: ws,
	})
	require.Error(t, err)
	require.Equal(t, errbuilder.CodeFailedPrecondition, errbuilder.CodeOf(err))
	require.Contains(t, err.Error(), "mathmod resolves to both")
}

func TestBuildConfigurationPrecedence(t *testing.T) {
	ws := t.TempDir()
	writeDescriptor(t, filepath.Join(ws, "app"), `name: app
standard: 20
output_type: executable
build:
  default_configuration: Release
`)

	runner := &fakeRunner{}
	svc := newTestService(runner, &fakeBinaryRunner{})

	_, err := svc.Build(t.Context(), BuildRequest{Dir: filepath.Join(ws, "app")})
	require.NoError(t, err)
	require.Contains(t, runner.commands[0].Args, "-DCMAKE_BUILD_TYPE=Release")

	runner.commands = nil
	_, err = svc.Build(t.Context(), BuildRequest{
		Dir:           filepath.Join(ws, "app"),
		Configuration: "minsizerel",
	})
	require.NoError(t, err)
	require.Contains(t, runner.commands[0].Args, "-DCMAKE_BUILD_TYPE=MinSizeRel")
}

func TestBuildRetriesTransientConfigureFailureOnce(t *testing.T) {
	ws := t.TempDir()
	writeDescriptor(t, filepath.Join(ws, "app"), `name: app
standard: 20
output_type: executable
`)

	runner := &fakeRunner{failures: map[string][]ports.RunResult{
		"configure": {{ExitCode: 1, Diagnostics: []string{"CMake Error: transient"}}},
	}}
	svc := newTestService(runner, &fakeBinaryRunner{})

	result, err := svc.Build(t.Context(), BuildRequest{Dir: filepath.Join(ws, "app")})
	require.NoError(t, err)
	require.Equal(t, []string{"app"}, result.Built)
	require.Equal(t, []string{"configure", "configure", "build"}, runner.phases())
}

func TestBuildDoesNotRetryBuildPhase(t *testing.T) {
	ws := t.TempDir()
	writeDescriptor(t, filepath.Join(ws, "app"), `name: app
standard: 20
output_type: executable
`)

	runner := &fakeRunner{failures: map[string][]ports.RunResult{
		"build": {{ExitCode: 1, Diagnostics: []string{"ninja: build stopped: subcommand failed."}}},
	}}
	svc := newTestService(runner, &fakeBinaryRunner{})

	_, err := svc.Build(t.Context(), BuildRequest{Dir: filepath.Join(ws, "app")})
	require.Error(t, err)
	require.Contains(t, err.Error(), "build failed for project app")
	require.Equal(t, []string{"configure", "build"}, runner.phases())
}

func TestBuildDoesNotRetryCompileError(t *testing.T) {
	ws := t.TempDir()
	writeDescriptor(t, filepath.Join(ws, "app"), `name: app
standard: 20
output_type: executable
`)

	runner := &fakeRunner{failures: map[string][]ports.RunResult{
		"configure": {{ExitCode: 1, CompileError: true, Diagnostics: []string{"main.cpp:1:1: error: boom"}}},
	}}
	svc := newTestService(runner, &fakeBinaryRunner{})

	_, err := svc.Build(t.Context(), BuildRequest{Dir: filepath.Join(ws, "app")})
	require.Error(t, err)
	require.Contains(t, err.Error(), "main.cpp:1:1: error: boom")
	require.Equal(t, []string{"configure"}, runner.phases())
}

func TestBuildDoesNotRetryAfterCancellation(t *testing.T) {
	ws := t.TempDir()
	writeDescriptor(t, filepath.Join(ws, "app"), `name: app
standard: 20
output_type: executable
`)

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	runner := &fakeRunner{failures: map[string][]ports.RunResult{
		"configure": {{ExitCode: -1, Diagnostics: []string{"signal: killed"}}},
	}}
	runner.onRun = func(cmd ports.Command) {
		if cmd.Phase == "configure" {
			cancel()
		}
	}
	svc := newTestService(runner, &fakeBinaryRunner{})

	_, err := svc.Build(ctx, BuildRequest{Dir: filepath.Join(ws, "app")})
	require.Error(t, err)
	require.Equal(t, []string{"configure"}, runner.phases())
}

func TestBuildSkipsConfigureWhenNothingChanged(t *testing.T) {
	ws := t.TempDir()
	writeDescriptor(t, filepath.Join(ws, "app"), `name: app
standard: 20
output_type: executable
`)

	runner := &fakeRunner{}
	runner.onRun = func(cmd ports.Command) {
		if cmd.Phase != "configure" {
			return
		}
		buildDir := configureBuildDir(cmd)
		require.NoError(t, os.MkdirAll(buildDir, 0o750))
		cache := "CMAKE_BUILD_TYPE:STRING=Debug\n"
		require.NoError(t, os.WriteFile(filepath.Join(buildDir, "CMakeCache.txt"), []byte(cache), 0o640))
	}
	svc := newTestService(runner, &fakeBinaryRunner{})

	_, err := svc.Build(t.Context(), BuildRequest{Dir: filepath.Join(ws, "app")})
	require.NoError(t, err)
	require.Equal(t, []string{"configure", "build"}, runner.phases())

	runner.commands = nil
	_, err = svc.Build(t.Context(), BuildRequest{Dir: filepath.Join(ws, "app")})
	require.NoError(t, err)
	require.Equal(t, []string{"build"}, runner.phases())
}

func TestBuildStripsMissingTestFiles(t *testing.T) {
	ws := t.TempDir()
	dir := filepath.Join(ws, "app")
	writeDescriptor(t, dir, `name: app
standard: 20
output_type: executable
tests: [tests/present_test.cpp, tests/absent_test.cpp]
`)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "tests"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tests", "present_test.cpp"), []byte("// test"), 0o640))

	svc := newTestService(&fakeRunner{}, &fakeBinaryRunner{})
	_, err := svc.Build(t.Context(), BuildRequest{Dir: dir})
	require.NoError(t, err)

	script, err := os.ReadFile(filepath.Join(dir, "CMakeLists.txt"))
	require.NoError(t, err)
	require.Contains(t, string(script), "tests/present_test.cpp")
	require.NotContains(t, string(script), "tests/absent_test.cpp")
}

func TestRunRejectsLibrary(t *testing.T) {
	ws := t.TempDir()
	dir := filepath.Join(ws, "mathmod")
	writeDescriptor(t, dir, `name: mathmod
standard: 20
output_type: static_library
sources:
  private: [src/impl.cpp]
`)

	svc := newTestService(&fakeRunner{}, &fakeBinaryRunner{})
	_, err := svc.Run(t.Context(), RunRequest{BuildRequest: BuildRequest{Dir: dir}})
	require.Error(t, err)
	require.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
	require.Contains(t, err.Error(), "nothing to run")
}

func TestRunExecutesBuiltBinary(t *testing.T) {
	ws := t.TempDir()
	dir := filepath.Join(ws, "app")
	writeDescriptor(t, dir, `name: app
standard: 20
output_type: executable
`)

	binaryName := "app"
	if runtime.GOOS == "windows" {
		binaryName += ".exe"
	}

	runner := &fakeRunner{}
	runner.onRun = func(cmd ports.Command) {
		if cmd.Phase != "build" {
			return
		}
		buildDir := cmd.Args[1]
		require.NoError(t, os.MkdirAll(buildDir, 0o750))
		require.NoError(t, os.WriteFile(filepath.Join(buildDir, binaryName), []byte("bin"), 0o750))
	}
	binary := &fakeBinaryRunner{exit: 3}
	svc := newTestService(runner, binary)

	result, err := svc.Run(t.Context(), RunRequest{
		BuildRequest: BuildRequest{Dir: dir},
		Args:         []string{"--fast"},
	})
	require.NoError(t, err)
	require.Equal(t, 3, result.ExitCode)
	require.Equal(t, []string{"app"}, result.Built)
	require.Equal(t, filepath.Join(dir, "build", "Debug", binaryName), binary.path)
	require.Equal(t, []string{"--fast"}, binary.args)
}

func TestGenerateReportsChange(t *testing.T) {
	ws := t.TempDir()
	dir := filepath.Join(ws, "app")
	writeDescriptor(t, dir, `name: app
standard: 20
output_type: executable
dependencies: [fmt]
`)

	svc := newTestService(&fakeRunner{}, &fakeBinaryRunner{})

	result, err := svc.Generate(t.Context(), GenerateRequest{Dir: dir})
	require.NoError(t, err)
	require.True(t, result.Changed)

	result, err = svc.Generate(t.Context(), GenerateRequest{Dir: dir})
	require.NoError(t, err)
	require.False(t, result.Changed)
}

func TestBuildNoInstallSkipsInstallPhase(t *testing.T) {
	ws := t.TempDir()
	writeDescriptor(t, filepath.Join(ws, "mathmod"), `name: mathmod
standard: 20
output_type: static_library
sources:
  private: [src/impl.cpp]
`)

	runner := &fakeRunner{}
	svc := newTestService(runner, &fakeBinaryRunner{})

	_, err := svc.Build(t.Context(), BuildRequest{
		Dir:       filepath.Join(ws, "mathmod"),
		NoInstall: true,
	})
	require.NoError(t, err)
	require.Equal(t, []string{"configure", "build"}, runner.phases())
}
