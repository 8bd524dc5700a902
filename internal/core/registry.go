package core

import (
	"fmt"
	"os"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"cxxforge/internal/types"
)

// Registry is the catalog of curated third-party packages. It is built
// once by merging layers (built-ins, then a user override file, then a
// project-local override file) and passed by reference into the resolver
// and generator; construction-order layering is the override mechanism.
type Registry struct {
	entries map[string]types.PackageEntry
	aliases map[string]string
}

// NewRegistry returns a registry seeded with the built-in catalog.
func NewRegistry() *Registry {
	r := &Registry{
		entries: map[string]types.PackageEntry{},
		aliases: map[string]string{},
	}
	for _, entry := range builtinPackages() {
		r.Register(entry)
	}
	for alias, target := range builtinAliases() {
		r.RegisterAlias(alias, target)
	}
	return r
}

// LoadRegistry merges built-ins with the user-level and project-local
// override files, in that order. Missing files are skipped; later layers
// overwrite earlier entries by name.
func LoadRegistry(userFile string, projectFile string) (*Registry, error) {
	r := NewRegistry()
	for _, path := range []string{userFile, projectFile} {
		if strings.TrimSpace(path) == "" {
			continue
		}
		if err := r.mergeFile(path); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Registry) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("failed to read registry file: %s", path)).
			WithCause(err)
	}
	var file types.RegistryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("malformed registry file: %s", path)).
			WithCause(err)
	}
	for _, entry := range file.Packages {
		if strings.TrimSpace(entry.Name) == "" {
			return errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("registry file %s contains a package without a name", path))
		}
		r.Register(entry)
	}
	for alias, target := range file.Aliases {
		r.RegisterAlias(alias, target)
	}
	log.Debug().Str("path", path).Int("packages", len(file.Packages)).Msg("registry layer merged")
	return nil
}

// Register stores an entry under its lowercase name. Registering twice
// under the same name replaces the earlier entry; last write wins.
func (r *Registry) Register(entry types.PackageEntry) {
	r.entries[strings.ToLower(entry.Name)] = entry
}

// RegisterAlias maps an alternate name onto a canonical package name.
func (r *Registry) RegisterAlias(alias string, target string) {
	r.aliases[strings.ToLower(alias)] = strings.ToLower(target)
}

// Find resolves aliases and returns the entry for name, case-insensitive.
func (r *Registry) Find(name string) (types.PackageEntry, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	if target, ok := r.aliases[key]; ok {
		key = target
	}
	entry, ok := r.entries[key]
	return entry, ok
}

// IsKnownPackage reports whether a raw declaration refers to a catalog
// package, ignoring any variant suffix. Git declarations are never
// registry packages.
func (r *Registry) IsKnownPackage(declaration string) bool {
	spec, err := ParseDependencySpec(declaration)
	if err != nil || spec.IsGit() {
		return false
	}
	_, ok := r.Find(spec.Package)
	return ok
}

// Variant returns the named variant of entry, or an error naming the
// package when the variant does not exist.
func (r *Registry) Variant(entry types.PackageEntry, variant string) (types.PackageVariant, error) {
	if variant == "" {
		return types.PackageVariant{}, nil
	}
	v, ok := entry.Variants[variant]
	if !ok {
		return types.PackageVariant{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("package %s has no variant %s", entry.Name, variant))
	}
	return v, nil
}
