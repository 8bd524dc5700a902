package types

import (
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
)

type OutputType string

const (
	OutputTypeExecutable OutputType = "executable"
	OutputTypeLibrary    OutputType = "static_library"
)

type FetchStrategy string

const (
	FetchStrategyDirect     FetchStrategy = "direct-fetch"
	FetchStrategyCompiled   FetchStrategy = "compiled-wrapper"
	FetchStrategyHeaderOnly FetchStrategy = "header-only-inject"
)

type ToolchainFamily string

const (
	ToolchainFamilyMSVC    ToolchainFamily = "msvc"
	ToolchainFamilyGCCLike ToolchainFamily = "gcc_like"
)

// Configuration is one of the four CMake build configurations.
type Configuration string

const (
	ConfigurationDebug          Configuration = "Debug"
	ConfigurationRelease        Configuration = "Release"
	ConfigurationRelWithDebInfo Configuration = "RelWithDebInfo"
	ConfigurationMinSizeRel     Configuration = "MinSizeRel"
)

// ConfigurationDefault applies when neither the CLI nor the project
// descriptor selects a configuration.
const ConfigurationDefault = ConfigurationDebug

var knownConfigurations = map[string]Configuration{
	"debug":          ConfigurationDebug,
	"release":        ConfigurationRelease,
	"relwithdebinfo": ConfigurationRelWithDebInfo,
	"minsizerel":     ConfigurationMinSizeRel,
}

// ParseConfiguration matches a configuration name case-insensitively
// against the fixed four-member set.
func ParseConfiguration(value string) (Configuration, error) {
	cfg, ok := knownConfigurations[strings.ToLower(strings.TrimSpace(value))]
	if !ok {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("unknown configuration: %s", value))
	}
	return cfg, nil
}
