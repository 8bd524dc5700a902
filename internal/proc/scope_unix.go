//go:build !windows

package proc

import (
	"os/exec"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// unixScope places each child in its own process group so the whole
// descendant subtree can be signalled through the negative pgid.
type unixScope struct {
	mu    sync.Mutex
	procs map[*exec.Cmd]int
}

func newPlatformScope() (Scope, error) {
	return &unixScope{procs: map[*exec.Cmd]int{}}, nil
}

func (s *unixScope) Prepare(cmd *exec.Cmd) {
	attr := cmd.SysProcAttr
	if attr == nil {
		attr = &syscall.SysProcAttr{}
	}
	attr.Setpgid = true
	cmd.SysProcAttr = attr
}

func (s *unixScope) Track(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.procs[cmd] = cmd.Process.Pid
	return nil
}

func (s *unixScope) Untrack(cmd *exec.Cmd) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.procs, cmd)
}

func (s *unixScope) Terminate(cmd *exec.Cmd) error {
	s.mu.Lock()
	pgid, ok := s.procs[cmd]
	s.mu.Unlock()
	if !ok {
		return nil
	}
	terminateGroup(pgid)
	s.Untrack(cmd)
	return nil
}

func (s *unixScope) Close() error {
	s.mu.Lock()
	pgids := make([]int, 0, len(s.procs))
	for _, pgid := range s.procs {
		pgids = append(pgids, pgid)
	}
	s.procs = map[*exec.Cmd]int{}
	s.mu.Unlock()

	for _, pgid := range pgids {
		_ = unix.Kill(-pgid, unix.SIGTERM)
	}
	if len(pgids) > 0 {
		time.Sleep(terminateGrace)
		for _, pgid := range pgids {
			_ = unix.Kill(-pgid, unix.SIGKILL)
		}
	}
	return nil
}

// terminateGroup delivers the graceful-then-forceful signal pair to one
// process group.
func terminateGroup(pgid int) {
	_ = unix.Kill(-pgid, unix.SIGTERM)
	time.Sleep(terminateGrace)
	_ = unix.Kill(-pgid, unix.SIGKILL)
}
