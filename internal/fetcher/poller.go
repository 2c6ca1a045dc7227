package fetcher

import (
	"context"
	"sync"
	"time"
)

// Poller refreshes a Fetcher immediately on Start and then every interval
// until stopped. Each attempt runs in its own goroutine, so a slow backend
// never delays the schedule; the fetcher's token guard keeps late responses
// from overwriting newer ones.
type Poller struct {
	fetcher  *Fetcher
	interval time.Duration
	trigger  chan struct{}

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewPoller creates a poller for f. A non-positive interval means five seconds.
func NewPoller(f *Fetcher, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Poller{
		fetcher:  f,
		interval: interval,
		trigger:  make(chan struct{}, 1),
	}
}

// Fetcher returns the polled fetcher.
func (p *Poller) Fetcher() *Fetcher {
	return p.fetcher
}

// Start begins polling. Calling Start on a running poller restarts it.
func (p *Poller) Start(ctx context.Context) {
	p.Stop()

	ctx, cancel := context.WithCancel(ctx)
	p.mu.Lock()
	p.cancel = cancel
	p.mu.Unlock()

	p.wg.Add(1)
	go p.loop(ctx)
}

// Stop cancels polling and waits for in-flight attempts to return.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel := p.cancel
	p.cancel = nil
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	p.wg.Wait()
}

// Trigger requests an immediate manual refresh. Requests made while one is
// already pending are coalesced.
func (p *Poller) Trigger() {
	select {
	case p.trigger <- struct{}{}:
	default:
	}
}

func (p *Poller) loop(ctx context.Context) {
	defer p.wg.Done()

	p.spawn(ctx, false)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.spawn(ctx, false)
		case <-p.trigger:
			p.spawn(ctx, true)
			ticker.Reset(p.interval)
		}
	}
}

func (p *Poller) spawn(ctx context.Context, manual bool) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		_ = p.fetcher.refresh(ctx, manual)
	}()
}
