package gen

import (
	"fmt"
	"strings"

	"cxxforge/internal/types"
)

// emitRegistryPackage renders the acquisition block for one planned
// registry package according to its catalog strategy.
func (g Generator) emitRegistryPackage(w *scriptWriter, entry types.PackageEntry, variant string) error {
	v, err := g.Registry.Variant(entry, variant)
	if err != nil {
		return err
	}
	merged := mergeVariant(entry, v)

	w.blank()
	for _, option := range merged.CMakeOptions {
		name, value, _ := strings.Cut(option, "=")
		w.linef("set(%s %s CACHE INTERNAL \"\")", name, value)
	}

	switch merged.Strategy {
	case types.FetchStrategyDirect:
		g.emitFetchDeclare(w, merged)
		w.linef("FetchContent_MakeAvailable(%s)", merged.Name)
	case types.FetchStrategyCompiled:
		g.emitFetchDeclare(w, merged)
		w.linef("FetchContent_Populate(%s)", merged.Name)
		g.emitWrapperTarget(w, merged)
	case types.FetchStrategyHeaderOnly:
		g.emitFetchDeclare(w, merged)
		w.linef("FetchContent_Populate(%s)", merged.Name)
		g.emitHeaderOnlyTarget(w, merged)
	default:
		return unsupportedStrategy(merged.Name, merged.Strategy)
	}
	return nil
}

func (g Generator) emitFetchDeclare(w *scriptWriter, entry types.PackageEntry) {
	w.linef("FetchContent_Declare(%s", entry.Name)
	w.linef("  GIT_REPOSITORY %s", entry.GitRepository)
	if entry.GitTag != "" {
		w.linef("  GIT_TAG %s", entry.GitTag)
	}
	w.line("  GIT_SHALLOW TRUE")
	w.line(")")
}

// emitWrapperTarget compiles the enumerated source list into an internal
// static library and aliases it to the advertised link-target names.
func (g Generator) emitWrapperTarget(w *scriptWriter, entry types.PackageEntry) {
	impl := fmt.Sprintf("%s_impl", entry.Name)
	w.linef("add_library(%s STATIC", impl)
	for _, source := range entry.Sources {
		w.linef("  ${%s_SOURCE_DIR}/%s", entry.Name, source)
	}
	w.line(")")
	g.emitUsageRequirements(w, impl, "PUBLIC", entry)
	if deps := g.dependencyLinkTargets(entry); len(deps) > 0 {
		w.linef("target_link_libraries(%s PUBLIC %s)", impl, strings.Join(deps, " "))
	}
	for _, target := range entry.LinkTargets {
		w.linef("add_library(%s ALIAS %s)", target, impl)
	}
}

// emitHeaderOnlyTarget exposes include paths and definitions through an
// interface target; nothing is compiled.
func (g Generator) emitHeaderOnlyTarget(w *scriptWriter, entry types.PackageEntry) {
	iface := fmt.Sprintf("%s_headers", entry.Name)
	w.linef("add_library(%s INTERFACE)", iface)
	g.emitUsageRequirements(w, iface, "INTERFACE", entry)
	for _, target := range entry.LinkTargets {
		w.linef("add_library(%s ALIAS %s)", target, iface)
	}
}

func (g Generator) emitUsageRequirements(w *scriptWriter, target string, scope string, entry types.PackageEntry) {
	for _, dir := range entry.IncludeDirs {
		if dir == "." {
			w.linef("target_include_directories(%s %s ${%s_SOURCE_DIR})", target, scope, entry.Name)
			continue
		}
		w.linef("target_include_directories(%s %s ${%s_SOURCE_DIR}/%s)", target, scope, entry.Name, dir)
	}
	if len(entry.Definitions) > 0 {
		w.linef("target_compile_definitions(%s %s %s)", target, scope, strings.Join(entry.Definitions, " "))
	}
}

// dependencyLinkTargets collects the advertised link targets of a
// package's direct registry dependencies.
func (g Generator) dependencyLinkTargets(entry types.PackageEntry) []string {
	var targets []string
	for _, dep := range entry.Dependencies {
		if depEntry, ok := g.Registry.Find(dep); ok {
			targets = append(targets, depEntry.LinkTargets...)
		}
	}
	return targets
}

// mergeVariant appends a variant's additions onto a copy of the base
// entry. Slices are copied so the registry value stays untouched.
func mergeVariant(entry types.PackageEntry, v types.PackageVariant) types.PackageEntry {
	merged := entry
	merged.Sources = append(append([]string{}, entry.Sources...), v.Sources...)
	merged.IncludeDirs = append(append([]string{}, entry.IncludeDirs...), v.IncludeDirs...)
	merged.Definitions = append(append([]string{}, entry.Definitions...), v.Definitions...)
	merged.Dependencies = append(append([]string{}, entry.Dependencies...), v.Dependencies...)
	return merged
}
