package proc

import (
	"strings"
	"sync"
)

const (
	// diagCapacity bounds the retained output slice.
	diagCapacity = 300

	// diagContext is how many lines after a match are kept with it.
	diagContext = 3

	// diagFallback is the tail size used when no marker matches.
	diagFallback = 12
)

// DiagBuffer retains recent non-blank output lines in a bounded ring.
// It is shared between the process output callback and the failure path,
// so all access is lock-protected.
type DiagBuffer struct {
	mu    sync.Mutex
	lines []string
	start int
	full  bool
}

func NewDiagBuffer() *DiagBuffer {
	return &DiagBuffer{lines: make([]string, 0, diagCapacity)}
}

// Add appends a line, dropping blanks and evicting the oldest entry once
// the ring is full.
func (d *DiagBuffer) Add(line string) {
	if strings.TrimSpace(line) == "" {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.lines) < diagCapacity {
		d.lines = append(d.lines, line)
		return
	}
	d.full = true
	d.lines[d.start] = line
	d.start = (d.start + 1) % diagCapacity
}

// snapshot returns the retained lines oldest-first.
func (d *DiagBuffer) snapshot() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.full {
		return append([]string{}, d.lines...)
	}
	out := make([]string, 0, diagCapacity)
	out = append(out, d.lines[d.start:]...)
	out = append(out, d.lines[:d.start]...)
	return out
}

// Diagnostics scans the buffer for failure and compiler markers. Each
// match contributes itself plus a few following context lines,
// deduplicated; when nothing matches, the last dozen lines are returned.
func (d *DiagBuffer) Diagnostics() []string {
	lines := d.snapshot()
	var picked []string
	seen := map[string]bool{}
	for i, line := range lines {
		if !isDiagnosticLine(line) {
			continue
		}
		for j := i; j < len(lines) && j <= i+diagContext; j++ {
			if seen[lines[j]] {
				continue
			}
			seen[lines[j]] = true
			picked = append(picked, lines[j])
		}
	}
	if len(picked) > 0 {
		return picked
	}
	if len(lines) > diagFallback {
		lines = lines[len(lines)-diagFallback:]
	}
	return lines
}

// CompileError reports whether the retained output indicates a genuine
// compiler error, as opposed to a tool or environment failure. This
// drives the orchestrator's retry policy: a clean rebuild cannot fix a
// syntax error.
func (d *DiagBuffer) CompileError() bool {
	for _, line := range d.snapshot() {
		if isCompileErrorLine(line) {
			return true
		}
	}
	return false
}

func isDiagnosticLine(line string) bool {
	if isCompileErrorLine(line) {
		return true
	}
	switch {
	case strings.Contains(line, "FAILED:"),
		strings.Contains(line, "CMake Error"),
		strings.Contains(line, "warning:"):
		return true
	}
	return false
}

func isCompileErrorLine(line string) bool {
	switch {
	case strings.Contains(line, "error:"),
		strings.Contains(line, "fatal error"),
		strings.Contains(line, "undefined reference"),
		containsMSVCError(line):
		return true
	}
	return false
}

// containsMSVCError matches cl.exe diagnostics such as "error C2065".
func containsMSVCError(line string) bool {
	idx := strings.Index(line, "error C")
	if idx < 0 {
		return false
	}
	rest := line[idx+len("error C"):]
	return len(rest) > 0 && rest[0] >= '0' && rest[0] <= '9'
}
