// Package gen translates a resolved project into a target-based CMake
// script. Generation is deterministic: identical inputs produce
// byte-identical output, which feeds the orchestrator's incremental
// configure-skip decision.
package gen

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"cxxforge/internal/core"
	"cxxforge/internal/types"
)

const (
	// cmakeMinimum is required for FILE_SET CXX_MODULES support.
	cmakeMinimum = "3.28"

	// defaultEntryPoint is assumed for executables with no declared sources.
	defaultEntryPoint = "src/main.cpp"
)

type Generator struct {
	Registry *core.Registry

	// InstallPrefix is the workspace-local prefix where built library
	// dependencies are installed and looked up.
	InstallPrefix string

	// InstallEnabled controls emission of export/install rules for
	// library targets.
	InstallEnabled bool

	// TestsEnabled gates test target emission; the generated option
	// still allows a per-build opt-out.
	TestsEnabled bool
}

// Input is one resolved project ready for script generation.
type Input struct {
	Project types.ProjectConfig

	// LocalDeps names the project's local and git library dependencies
	// in deterministic order. Each is consumed via find_package against
	// the install prefix.
	LocalDeps []string

	// Plan is the ordered registry dependency plan.
	Plan []types.PlannedPackage
}

// Generate renders the full build script text for one project.
func (g Generator) Generate(in Input) (string, error) {
	project := in.Project
	if err := validateSources(project); err != nil {
		return "", err
	}

	w := newScriptWriter()
	w.linef("cmake_minimum_required(VERSION %s)", cmakeMinimum)
	w.blank()
	w.linef("project(%s LANGUAGES CXX)", project.Name)
	w.blank()
	w.linef("set(CMAKE_CXX_STANDARD %d)", project.Standard)
	w.line("set(CMAKE_CXX_STANDARD_REQUIRED ON)")
	w.line("set(CMAKE_CXX_SCAN_FOR_MODULES ON)")

	if len(in.Plan) > 0 || g.testsWanted(project) {
		w.blank()
		w.line("include(FetchContent)")
	}

	for _, planned := range in.Plan {
		entry, ok := g.Registry.Find(planned.Name)
		if !ok {
			return "", errbuilder.New().
				WithCode(errbuilder.CodeNotFound).
				WithMsg(fmt.Sprintf("planned package missing from registry: %s", planned.Name))
		}
		if err := g.emitRegistryPackage(w, entry, planned.Variant); err != nil {
			return "", err
		}
	}

	for _, dep := range in.LocalDeps {
		w.blank()
		w.linef("find_package(%s CONFIG REQUIRED PATHS %q NO_DEFAULT_PATH)", dep, g.InstallPrefix)
	}

	if err := g.emitProjectTarget(w, project, in); err != nil {
		return "", err
	}

	if project.IsLibrary() && g.InstallEnabled {
		g.emitInstallRules(w, project, in.LocalDeps)
	}

	if g.testsWanted(project) {
		g.emitTestTarget(w, project)
	}

	return w.String(), nil
}

// validateSources enforces the library source-bucket rule: a library must
// declare at least one module-interface or private source unless the
// legacy layout escape hatch is enabled.
func validateSources(project types.ProjectConfig) error {
	if !project.IsLibrary() || project.LegacyLayout {
		return nil
	}
	if len(project.Sources.Modules) == 0 && len(project.Sources.Private) == 0 {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("library %s declares no module or private sources (set legacy_layout to allow this)", project.Name))
	}
	return nil
}

func (g Generator) emitProjectTarget(w *scriptWriter, project types.ProjectConfig, in Input) error {
	w.blank()
	featureScope := "PRIVATE"
	linkScope := "PRIVATE"

	switch {
	case project.IsLibrary() && project.LegacyLayout && len(project.Sources.Modules) == 0 && len(project.Sources.Private) == 0:
		// Legacy header tree with nothing to compile.
		w.linef("add_library(%s INTERFACE)", project.Name)
		w.linef("target_include_directories(%s INTERFACE include)", project.Name)
		w.linef("target_compile_features(%s INTERFACE cxx_std_%d)", project.Name, project.Standard)
		g.emitLinkLibraries(w, project, in, "INTERFACE")
		return nil
	case project.IsLibrary():
		w.linef("add_library(%s STATIC)", project.Name)
		// Consumers inherit module/header file sets and the minimum
		// language standard from a library.
		featureScope = "PUBLIC"
		linkScope = "PUBLIC"
	default:
		w.linef("add_executable(%s)", project.Name)
	}

	g.emitSources(w, project)
	w.linef("target_compile_features(%s %s cxx_std_%d)", project.Name, featureScope, project.Standard)
	g.emitCompileOptions(w, project)
	g.emitLinkLibraries(w, project, in, linkScope)
	return nil
}

func (g Generator) emitSources(w *scriptWriter, project types.ProjectConfig) {
	modules := project.Sources.Modules
	headers := project.Sources.PublicHeaders
	private := project.Sources.Private

	if !project.IsLibrary() && len(modules) == 0 && len(private) == 0 {
		private = []string{defaultEntryPoint}
	}

	w.linef("target_sources(%s", project.Name)
	if len(modules) > 0 {
		w.line("  PUBLIC FILE_SET modules TYPE CXX_MODULES FILES")
		for _, file := range modules {
			w.linef("    %s", file)
		}
	}
	if len(headers) > 0 {
		w.line("  PUBLIC FILE_SET headers TYPE HEADERS FILES")
		for _, file := range headers {
			w.linef("    %s", file)
		}
	}
	if len(private) > 0 {
		w.line("  PRIVATE")
		for _, file := range private {
			w.linef("    %s", file)
		}
	}
	w.line(")")
}

// emitCompileOptions renders per-configuration, per-toolchain-family
// option lists as generator expressions, sorted for determinism.
func (g Generator) emitCompileOptions(w *scriptWriter, project types.ProjectConfig) {
	if len(project.Build.Options) == 0 {
		return
	}
	configs := make([]string, 0, len(project.Build.Options))
	for config := range project.Build.Options {
		configs = append(configs, config)
	}
	sort.Strings(configs)

	w.linef("target_compile_options(%s PRIVATE", project.Name)
	for _, config := range configs {
		families := project.Build.Options[config]
		names := make([]string, 0, len(families))
		for family := range families {
			names = append(names, family)
		}
		sort.Strings(names)
		for _, family := range names {
			options := families[family]
			if len(options) == 0 {
				continue
			}
			condition := toolchainCondition(types.ToolchainFamily(family))
			w.linef("  \"$<$<AND:$<CONFIG:%s>,%s>:%s>\"", config, condition, strings.Join(options, ";"))
		}
	}
	w.line(")")
}

func toolchainCondition(family types.ToolchainFamily) string {
	if family == types.ToolchainFamilyMSVC {
		return "$<CXX_COMPILER_ID:MSVC>"
	}
	return "$<NOT:$<CXX_COMPILER_ID:MSVC>>"
}

func (g Generator) emitLinkLibraries(w *scriptWriter, project types.ProjectConfig, in Input, scope string) {
	var targets []string
	for _, dep := range in.LocalDeps {
		targets = append(targets, fmt.Sprintf("%s::%s", dep, dep))
	}
	for _, planned := range in.Plan {
		if !g.declaredDirectly(project, planned.Name) {
			continue
		}
		entry, ok := g.Registry.Find(planned.Name)
		if !ok {
			continue
		}
		targets = append(targets, entry.LinkTargets...)
	}
	if len(targets) == 0 {
		return
	}
	w.linef("target_link_libraries(%s %s %s)", project.Name, scope, strings.Join(targets, " "))
}

// declaredDirectly reports whether the project itself declared the
// package; transitive plan entries exist as targets but are linked only
// by their dependents.
func (g Generator) declaredDirectly(project types.ProjectConfig, name string) bool {
	for _, declaration := range project.Dependencies {
		spec, err := core.ParseDependencySpec(declaration)
		if err != nil || spec.IsGit() {
			continue
		}
		if entry, ok := g.Registry.Find(spec.Package); ok && entry.Name == name {
			return true
		}
	}
	return false
}

// emitInstallRules writes export/install rules so another invocation can
// consume the library via find_package. Transitive dependencies are
// re-declared in the installed package description.
func (g Generator) emitInstallRules(w *scriptWriter, project types.ProjectConfig, localDeps []string) {
	name := project.Name
	w.blank()
	if project.LegacyLayout && len(project.Sources.Modules) == 0 && len(project.Sources.Private) == 0 {
		w.linef("install(TARGETS %s EXPORT %s-targets)", name, name)
		w.line("install(DIRECTORY include/ DESTINATION include)")
	} else {
		w.linef("install(TARGETS %s", name)
		w.linef("  EXPORT %s-targets", name)
		if len(project.Sources.Modules) > 0 {
			w.linef("  FILE_SET modules DESTINATION lib/cxx-modules/%s", name)
		}
		if len(project.Sources.PublicHeaders) > 0 {
			w.line("  FILE_SET headers DESTINATION include")
		}
		w.line("  ARCHIVE DESTINATION lib")
		w.line(")")
	}
	w.linef("install(EXPORT %s-targets", name)
	w.linef("  FILE %s-targets.cmake", name)
	w.linef("  NAMESPACE %s::", name)
	w.linef("  DESTINATION lib/cmake/%s", name)
	w.line(")")

	// The installed config re-declares find-style dependencies so the
	// consumer's configure run can locate the whole chain.
	w.linef("file(WRITE \"${CMAKE_CURRENT_BINARY_DIR}/%s-config.cmake\"", name)
	w.line("  \"include(CMakeFindDependencyMacro)\\n\"")
	for _, dep := range localDeps {
		w.linef("  \"find_dependency(%s CONFIG PATHS \\\"%s\\\")\\n\"", dep, g.InstallPrefix)
	}
	w.linef("  \"include(\\\"${CMAKE_CURRENT_LIST_DIR}/%s-targets.cmake\\\")\\n\"", name)
	w.line(")")
	w.linef("install(FILES \"${CMAKE_CURRENT_BINARY_DIR}/%s-config.cmake\" DESTINATION lib/cmake/%s)", name, name)
}

func (g Generator) testsWanted(project types.ProjectConfig) bool {
	return g.TestsEnabled && len(project.Tests) > 0
}

// emitTestTarget registers an independently runnable test executable
// behind an opt-out option, linking the fetched test framework.
func (g Generator) emitTestTarget(w *scriptWriter, project types.ProjectConfig) {
	optionName := fmt.Sprintf("%s_BUILD_TESTS", strings.ToUpper(shellSafeName(project.Name)))
	testTarget := fmt.Sprintf("%s_tests", project.Name)

	catch2, _ := g.Registry.Find("catch2")

	w.blank()
	w.linef("option(%s \"Build %s tests\" ON)", optionName, project.Name)
	w.linef("if(%s)", optionName)
	w.linef("  FetchContent_Declare(%s", catch2.Name)
	w.linef("    GIT_REPOSITORY %s", catch2.GitRepository)
	w.linef("    GIT_TAG %s", catch2.GitTag)
	w.line("    GIT_SHALLOW TRUE")
	w.line("  )")
	w.linef("  FetchContent_MakeAvailable(%s)", catch2.Name)
	w.line("  enable_testing()")
	w.linef("  add_executable(%s", testTarget)
	for _, file := range project.Tests {
		w.linef("    %s", file)
	}
	w.line("  )")
	if project.IsLibrary() {
		w.linef("  target_link_libraries(%s PRIVATE %s %s)", testTarget, project.Name, strings.Join(catch2.LinkTargets, " "))
	} else {
		// Nothing links against an executable; the test binary compiles
		// the project sources it exercises.
		w.linef("  target_link_libraries(%s PRIVATE %s)", testTarget, strings.Join(catch2.LinkTargets, " "))
	}
	w.line("  include(Catch)")
	w.linef("  catch_discover_tests(%s)", testTarget)
	w.line("endif()")
}

func shellSafeName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
