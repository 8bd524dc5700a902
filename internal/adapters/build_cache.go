package adapters

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"cxxforge/internal/types"
)

// BuildCacheAdapter probes and wipes per-configuration build output
// directories.
type BuildCacheAdapter struct{}

func NewBuildCacheAdapter() BuildCacheAdapter {
	return BuildCacheAdapter{}
}

// ConfigurationMatches reports whether the build directory's cache
// metadata already records the given configuration. A missing or
// unreadable cache counts as a mismatch, forcing a configure run.
func (a BuildCacheAdapter) ConfigurationMatches(buildDir string, configuration types.Configuration) bool {
	file, err := os.Open(filepath.Join(buildDir, "CMakeCache.txt"))
	if err != nil {
		return false
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if value, ok := strings.CutPrefix(line, "CMAKE_BUILD_TYPE:STRING="); ok {
			return value == string(configuration)
		}
	}
	return false
}

// Wipe removes the build output directory ahead of a retry.
func (a BuildCacheAdapter) Wipe(buildDir string) error {
	if err := os.RemoveAll(buildDir); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("failed to wipe build directory: %s", buildDir)).
			WithCause(err)
	}
	return nil
}
