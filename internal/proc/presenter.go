package proc

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog/log"
)

// Presenter renders the live progress of one supervised phase.
type Presenter interface {
	// Start begins presentation for a phase; status yields the latest
	// progress string and may be called from the render loop.
	Start(label string, status func() string)

	// Stop ends presentation and joins any background render activity.
	Stop()
}

// NewPresenter picks the presentation mode: an in-place spinner when
// stderr is interactive, a plain line-per-phase log otherwise (CI logs
// must not be flooded with redraws).
func NewPresenter() Presenter {
	if isatty.IsTerminal(os.Stderr.Fd()) {
		return &spinnerPresenter{}
	}
	return logPresenter{}
}

// spinnerPresenter redraws a spinner with the phase label, latest status,
// and elapsed time. The render ticker is an independently cancellable
// background activity joined in Stop.
type spinnerPresenter struct {
	spin *spinner.Spinner
	done chan struct{}
	wg   sync.WaitGroup
}

func (p *spinnerPresenter) Start(label string, status func() string) {
	p.spin = spinner.New(spinner.CharSets[14], 120*time.Millisecond, spinner.WithWriter(os.Stderr))
	p.done = make(chan struct{})
	started := time.Now()

	render := func() {
		suffix := fmt.Sprintf(" %s (%s)", label, time.Since(started).Round(time.Second))
		if s := status(); s != "" {
			suffix = fmt.Sprintf(" %s: %s (%s)", label, s, time.Since(started).Round(time.Second))
		}
		p.spin.Lock()
		p.spin.Suffix = suffix
		p.spin.Unlock()
	}
	render()
	p.spin.Start()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		ticker := time.NewTicker(250 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-p.done:
				return
			case <-ticker.C:
				render()
			}
		}
	}()
}

func (p *spinnerPresenter) Stop() {
	if p.spin == nil {
		return
	}
	close(p.done)
	p.wg.Wait()
	p.spin.Stop()
}

// logPresenter emits one start line per phase and suppresses redraws.
type logPresenter struct{}

func (logPresenter) Start(label string, _ func() string) {
	log.Info().Msg(label)
}

func (logPresenter) Stop() {}
