package core

import (
	"context"
	"fmt"

	assert "github.com/ZanzyTHEbar/assert-lib"
	"github.com/ZanzyTHEbar/errbuilder-go"

	"cxxforge/internal/types"
)

var validOutputTypes = map[types.OutputType]struct{}{
	types.OutputTypeExecutable: {},
	types.OutputTypeLibrary:    {},
}

var validStandards = map[int]struct{}{
	17: {},
	20: {},
	23: {},
	26: {},
}

// ValidateProject checks descriptor fields before orchestration starts.
func ValidateProject(ctx context.Context, config types.ProjectConfig) error {
	assert.NotEmpty(ctx, config.Name, "project name must be set")
	assert.NotEmpty(ctx, string(config.OutputType), "output_type must be set")

	if _, ok := validOutputTypes[config.OutputType]; !ok {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("project %s declares unknown output_type: %s", config.Name, config.OutputType))
	}
	if _, ok := validStandards[config.Standard]; !ok {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("project %s declares unsupported standard: %d", config.Name, config.Standard))
	}
	if config.Build.DefaultConfiguration != "" {
		if _, err := types.ParseConfiguration(config.Build.DefaultConfiguration); err != nil {
			return err
		}
	}
	for name := range config.Build.Options {
		if _, err := types.ParseConfiguration(name); err != nil {
			return err
		}
	}
	for _, declaration := range config.Dependencies {
		if _, err := ParseDependencySpec(declaration); err != nil {
			return err
		}
	}
	return nil
}
