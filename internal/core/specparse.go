package core

import (
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"cxxforge/internal/types"
)

// ParseDependencySpec parses one raw dependency declaration.
//
// Grammar, in priority order:
//
//	name@repository[#ref]   git dependency, when the part after '@'
//	                        contains "://" or starts with "git@"
//	name[/variant]          registry dependency
//
// The parser is pure: it never consults the registry or the filesystem.
func ParseDependencySpec(raw string) (types.DependencySpec, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return types.DependencySpec{}, parseError("package", raw)
	}

	if name, remainder, ok := splitGitDeclaration(trimmed); ok {
		return parseGitSpec(name, remainder, raw)
	}

	if strings.Contains(trimmed, "/") {
		pkg, variant, _ := strings.Cut(trimmed, "/")
		if pkg == "" {
			return types.DependencySpec{}, parseError("package", raw)
		}
		if variant == "" {
			return types.DependencySpec{}, parseError("variant", raw)
		}
		return types.DependencySpec{Package: pkg, Variant: variant}, nil
	}

	return types.DependencySpec{Package: trimmed}, nil
}

// splitGitDeclaration detects the git form: an '@' whose remainder looks
// like a repository URL (scheme or scp-style git@ prefix).
func splitGitDeclaration(decl string) (name string, remainder string, ok bool) {
	idx := strings.Index(decl, "@")
	if idx < 0 {
		return "", "", false
	}
	remainder = decl[idx+1:]
	if !strings.Contains(remainder, "://") && !strings.HasPrefix(remainder, "git@") {
		return "", "", false
	}
	return decl[:idx], remainder, true
}

func parseGitSpec(name string, remainder string, raw string) (types.DependencySpec, error) {
	if name == "" {
		return types.DependencySpec{}, parseError("name", raw)
	}
	if strings.Contains(name, "/") {
		return types.DependencySpec{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("git dependency name must not contain '/': %s", raw))
	}
	repository, ref, _ := strings.Cut(remainder, "#")
	if repository == "" {
		return types.DependencySpec{}, parseError("repository", raw)
	}
	return types.DependencySpec{
		Package:       name,
		GitRepository: repository,
		GitRef:        ref,
	}, nil
}

func parseError(field string, raw string) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(fmt.Sprintf("dependency declaration has empty %s: %q", field, raw))
}
