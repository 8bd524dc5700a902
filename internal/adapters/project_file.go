package adapters

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"gopkg.in/yaml.v3"

	"cxxforge/internal/ports"
	"cxxforge/internal/types"
)

// DescriptorFileName is the project descriptor looked up in each project
// directory.
const DescriptorFileName = "cxxforge.yaml"

// RegistryFileName is the registry override file merged on top of the
// built-in catalog, from the user config directory and the project
// directory in that order.
const RegistryFileName = "cxxforge-registry.yaml"

// ProjectFileAdapter loads cxxforge.yaml descriptors.
type ProjectFileAdapter struct{}

func NewProjectFileAdapter() ProjectFileAdapter {
	return ProjectFileAdapter{}
}

func (a ProjectFileAdapter) Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, DescriptorFileName))
	return err == nil
}

func (a ProjectFileAdapter) Load(dir string) (types.ProjectConfig, error) {
	path := filepath.Join(dir, DescriptorFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return types.ProjectConfig{}, errbuilder.New().
				WithCode(errbuilder.CodeNotFound).
				WithMsg(fmt.Sprintf("no project descriptor in %s", dir))
		}
		return types.ProjectConfig{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("failed to read project descriptor: %s", path)).
			WithCause(err)
	}

	var config types.ProjectConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return types.ProjectConfig{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("malformed project descriptor: %s", path)).
			WithCause(err)
	}

	if strings.TrimSpace(config.Name) == "" {
		return types.ProjectConfig{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("project descriptor %s is missing a name", path))
	}
	if config.Standard == 0 {
		config.Standard = 20
	}
	if config.OutputType == "" {
		config.OutputType = types.OutputTypeExecutable
	}
	if config.OutputType != types.OutputTypeExecutable && config.OutputType != types.OutputTypeLibrary {
		return types.ProjectConfig{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("project %s declares unknown output_type: %s", config.Name, config.OutputType))
	}
	return config, nil
}

var _ ports.ProjectConfigPort = ProjectFileAdapter{}
