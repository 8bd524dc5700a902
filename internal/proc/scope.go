package proc

import (
	"os"
	"os/exec"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
)

// terminateGrace is the window between the graceful and forceful
// termination signals.
const terminateGrace = 2 * time.Second

// Scope is the platform lifetime scope every spawned process is
// registered into. Closing the scope terminates all registered processes
// and, on platforms with process groups or job objects, their entire
// descendant subtree. The interrupt handler closes the scope on abnormal
// parent termination as well, so no orphaned descendants survive.
type Scope interface {
	// Prepare applies platform attributes to a command before Start.
	Prepare(cmd *exec.Cmd)

	// Track registers a started command.
	Track(cmd *exec.Cmd) error

	// Untrack removes a command that has been waited on.
	Untrack(cmd *exec.Cmd)

	// Terminate tears down one command's process tree, graceful first.
	Terminate(cmd *exec.Cmd) error

	// Close tears down every process still tracked.
	Close() error
}

// NewScope returns the lifetime scope for the current OS.
func NewScope() (Scope, error) {
	return newPlatformScope()
}

var interruptOnce sync.Once

// InstallInterruptHandler closes scope when the process receives an
// interrupt or termination signal, then exits. Supervisor teardown must
// run synchronously before the parent is allowed to exit.
func InstallInterruptHandler(scope Scope) {
	interruptOnce.Do(func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
		go func() {
			sig := <-ch
			log.Warn().Str("signal", sig.String()).Msg("interrupted, terminating child processes")
			if err := scope.Close(); err != nil {
				log.Error().Err(err).Msg("scope teardown failed")
			}
			os.Exit(130)
		}()
	})
}
