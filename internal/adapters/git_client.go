package adapters

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"cxxforge/internal/ports"
	"cxxforge/internal/shared"
)

// GitClientAdapter drives the git CLI for dependency clones.
type GitClientAdapter struct{}

func NewGitClientAdapter() GitClientAdapter {
	return GitClientAdapter{}
}

func (a GitClientAdapter) CloneShallow(ctx context.Context, repository string, dir string) error {
	if strings.TrimSpace(repository) == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("git repository is empty")
	}
	cmd := exec.CommandContext(ctx, "git", "clone", "--depth", "1", "--recursive", repository, dir)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("failed to clone %s", repository)).
			WithCause(shared.CommandError(output, err))
	}
	log.Ctx(ctx).Debug().Str("repository", repository).Str("dir", dir).Msg("dependency cloned")
	return nil
}

// Checkout pins the clone at ref. A depth-1 clone may not contain the
// ref, so it is fetched explicitly first; when the fetch succeeds the
// checkout targets FETCH_HEAD, otherwise the ref is tried as-is.
func (a GitClientAdapter) Checkout(ctx context.Context, dir string, ref string) error {
	target := ref
	fetch := exec.CommandContext(ctx, "git", "-C", dir, "fetch", "--depth", "1", "origin", ref)
	if _, err := fetch.CombinedOutput(); err == nil {
		target = "FETCH_HEAD"
	}
	cmd := exec.CommandContext(ctx, "git", "-C", dir, "checkout", target)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("failed to check out ref %s in %s", ref, dir)).
			WithCause(shared.CommandError(output, err))
	}
	return nil
}

var _ ports.GitPort = GitClientAdapter{}
