package proc

import "sync"

// StatusHolder carries the latest short progress status from the process
// output callback to the presentation loop. Both sides touch it
// concurrently, so reads and writes are lock-protected.
type StatusHolder struct {
	mu     sync.Mutex
	status string
}

// Set stores a new status and reports whether it differed from the
// current one; duplicate consecutive statuses are suppressed.
func (h *StatusHolder) Set(status string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if status == h.status {
		return false
	}
	h.status = status
	return true
}

func (h *StatusHolder) Get() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.status
}
