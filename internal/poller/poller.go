// Package poller runs a fetch function on a fixed interval while the
// dashboard is visible. Hiding it stops the ticker; showing it again fetches
// immediately and restarts the ticker.
package poller

import (
	"context"
	"sync"
	"time"
)

// Poller drives one fetch function. Fetches never overlap: they all run on
// the goroutine that called Run.
type Poller struct {
	interval time.Duration
	fetch    func(ctx context.Context)

	mu      sync.Mutex
	visible bool
	shows   uint64 // hidden -> visible transitions

	changed chan struct{}
	trigger chan struct{}
}

// New creates a poller that starts visible.
func New(interval time.Duration, fetch func(ctx context.Context)) *Poller {
	return &Poller{
		interval: interval,
		fetch:    fetch,
		visible:  true,
		changed:  make(chan struct{}, 1),
		trigger:  make(chan struct{}, 1),
	}
}

// Visible reports the current visibility
func (p *Poller) Visible() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.visible
}

func (p *Poller) state() (bool, uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.visible, p.shows
}

// SetVisible pauses (false) or resumes (true) polling.
func (p *Poller) SetVisible(v bool) {
	p.mu.Lock()
	if p.visible == v {
		p.mu.Unlock()
		return
	}
	p.visible = v
	if v {
		p.shows++
	}
	p.mu.Unlock()
	notify(p.changed)
}

// Trigger requests one fetch as soon as the loop is free. Requests made
// while one is pending collapse into it.
func (p *Poller) Trigger() {
	notify(p.trigger)
}

// Run performs the initial fetch, whatever the visibility, then polls until
// ctx is done.
func (p *Poller) Run(ctx context.Context) {
	running, seen := p.state()
	p.fetch(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	if !running {
		ticker.Stop()
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.fetch(ctx)
		case <-p.trigger:
			p.fetch(ctx)
		case <-p.changed:
			v, shows := p.state()
			if !v {
				running = false
				ticker.Stop()
				continue
			}
			// a hide/show pair seen as one signal still counts as a show
			if !running || shows != seen {
				running, seen = true, shows
				p.fetch(ctx)
				ticker.Reset(p.interval)
			}
		}
	}
}

func notify(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}
