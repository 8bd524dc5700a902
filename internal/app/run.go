package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"cxxforge/internal/types"
)

// Run builds an executable-kind project and executes the produced binary
// with inherited console streams.
func (s Service) Run(ctx context.Context, req RunRequest) (RunResult, error) {
	absDir, err := filepath.Abs(req.Dir)
	if err != nil {
		return RunResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to resolve project directory").
			WithCause(err)
	}
	config, err := s.Projects.Load(absDir)
	if err != nil {
		return RunResult{}, err
	}
	if config.IsLibrary() {
		return RunResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("project %s is a library, nothing to run", config.Name))
	}

	built, err := s.Build(ctx, req.BuildRequest)
	if err != nil {
		return RunResult{}, err
	}

	configuration, err := effectiveConfiguration(req.Configuration, config)
	if err != nil {
		return RunResult{}, err
	}
	binary, err := locateBinary(absDir, config.Name, configuration)
	if err != nil {
		return RunResult{}, err
	}

	log.Ctx(ctx).Info().Str("binary", binary).Msg("running")
	exitCode, runErr := s.Binary.RunBinary(ctx, binary, req.Args)
	return RunResult{BuildResult: built, Binary: binary, ExitCode: exitCode}, runErr
}

func effectiveConfiguration(cli string, config types.ProjectConfig) (types.Configuration, error) {
	if cli != "" {
		return types.ParseConfiguration(cli)
	}
	if config.Build.DefaultConfiguration != "" {
		return types.ParseConfiguration(config.Build.DefaultConfiguration)
	}
	return types.ConfigurationDefault, nil
}

// locateBinary prefers the configuration-scoped output location and
// falls back to the legacy flat build directory.
func locateBinary(dir string, name string, configuration types.Configuration) (string, error) {
	binary := name
	if runtime.GOOS == "windows" {
		binary += ".exe"
	}
	candidates := []string{
		filepath.Join(dir, "build", string(configuration), binary),
		filepath.Join(dir, "build", binary),
	}
	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	return "", errbuilder.New().
		WithCode(errbuilder.CodeNotFound).
		WithMsg(fmt.Sprintf("built binary for %s not found under %s", name, filepath.Join(dir, "build")))
}
