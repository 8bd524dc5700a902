// Package proc runs external commands under supervision: lifetime-scoped
// teardown of descendant processes, compact progress extraction from
// streamed output, and a bounded diagnostics buffer for failures.
package proc

import "strings"

// ProgressLine reduces one line of tool output to a short human status
// for the given phase. It is a pure function so it can be tested without
// spawning processes. The second return reports whether the line carried
// a recognizable status at all.
func ProgressLine(phase string, line string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return "", false
	}
	switch {
	case strings.HasPrefix(trimmed, "-- Populating"), strings.Contains(trimmed, "FetchContent"):
		return "fetching dependencies", true
	case strings.Contains(trimmed, "Building CXX object"), strings.HasPrefix(trimmed, "Compiling"):
		return "compiling", true
	case strings.Contains(trimmed, "Linking"):
		return "linking", true
	case strings.HasPrefix(trimmed, "-- Installing:"), strings.HasPrefix(trimmed, "-- Up-to-date:"):
		return "installing", true
	case strings.Contains(trimmed, "no work to do"), strings.Contains(trimmed, "is up to date"):
		return "up to date", true
	case strings.HasPrefix(trimmed, "-- The CXX compiler identification"):
		return "configuring", true
	case phase == "configure" && strings.HasPrefix(trimmed, "-- Configuring"):
		return "configuring", true
	}
	return "", false
}
