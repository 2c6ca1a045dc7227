// Package fetcher keeps the site's resume aggregate current by polling a
// backend and replacing the aggregate wholesale on every successful read.
package fetcher

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"

	"github.com/Zachkp/webresume/internal/resume"
)

// ErrNoResume is reported when neither the latest record nor the list
// fallback yields a usable resume.
var ErrNoResume = errors.New("no resume data available")

// Notifier receives user-facing refresh notifications.
type Notifier interface {
	// RefreshFailed is called exactly once per failed attempt.
	RefreshFailed(err error)
	// Refreshed is called after a manually triggered refresh succeeds.
	Refreshed()
}

// LogNotifier reports refresh outcomes to a structured logger.
type LogNotifier struct {
	Log *slog.Logger
}

func (n LogNotifier) RefreshFailed(err error) {
	n.Log.Error("Error loading resume data", "error", err)
}

func (n LogNotifier) Refreshed() {
	n.Log.Info("Data refreshed")
}

// Status describes the fetcher's progress for the front end.
type Status struct {
	// Loading is true until the first attempt completes.
	Loading bool
	// Refreshing is true while a manual refresh is in flight.
	Refreshing bool
	// Err is the outcome of the most recent attempt, nil on success.
	Err       error
	UpdatedAt time.Time
}

// Fetcher owns the current resume aggregate.
type Fetcher struct {
	source   Source
	notifier Notifier
	log      *slog.Logger

	// issued numbers every attempt; only an attempt newer than the last
	// applied one may replace the aggregate.
	issued atomic.Uint64

	mu       sync.RWMutex
	applied  uint64
	// settled is the newest attempt that has completed either way; only a
	// newer completion may change status.Err.
	settled  uint64
	data     resume.Data
	status   Status
	manual   int
	onUpdate []func(resume.Data)
}

// New creates a fetcher that starts with the loading placeholder aggregate.
func New(source Source, notifier Notifier, log *slog.Logger) *Fetcher {
	if log == nil {
		log = slog.Default()
	}
	if notifier == nil {
		notifier = LogNotifier{Log: log}
	}
	return &Fetcher{
		source:   source,
		notifier: notifier,
		log:      log,
		data:     resume.Loading(),
		status:   Status{Loading: true},
	}
}

// Data returns the current aggregate.
func (f *Fetcher) Data() resume.Data {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.data
}

// Status returns the current fetch status.
func (f *Fetcher) Status() Status {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.status
}

// OnUpdate registers fn to be called with every newly applied aggregate.
func (f *Fetcher) OnUpdate(fn func(resume.Data)) {
	f.mu.Lock()
	f.onUpdate = append(f.onUpdate, fn)
	f.mu.Unlock()
}

// Refresh performs one fetch attempt.
func (f *Fetcher) Refresh(ctx context.Context) error {
	return f.refresh(ctx, false)
}

// RefreshNow performs one fetch attempt on the user's behalf: Status reports
// Refreshing while it runs and success is announced through Refreshed.
func (f *Fetcher) RefreshNow(ctx context.Context) error {
	return f.refresh(ctx, true)
}

func (f *Fetcher) refresh(ctx context.Context, manual bool) error {
	token := f.issued.Add(1)
	if manual {
		f.mu.Lock()
		f.manual++
		f.status.Refreshing = true
		f.mu.Unlock()
	}

	record, err := f.load(ctx)

	f.mu.Lock()
	if manual {
		f.manual--
		f.status.Refreshing = f.manual > 0
	}
	f.status.Loading = false

	if err != nil {
		if token > f.settled {
			f.settled = token
			f.status.Err = err
		}
		f.mu.Unlock()
		// A shutdown is not a failure worth telling the user about.
		if ctx.Err() != nil {
			return err
		}
		f.notifier.RefreshFailed(err)
		return err
	}

	if token < f.applied {
		f.mu.Unlock()
		f.log.Debug("discarding stale resume response", "token", token, "applied", f.applied)
		return nil
	}

	data := resume.Normalize(record)
	f.applied = token
	f.data = data
	f.status.UpdatedAt = time.Now()
	// An older success arriving after a newer failure still carries newer
	// data than what is shown, but the failure stays the latest outcome.
	if token > f.settled {
		f.settled = token
		f.status.Err = nil
	}
	listeners := append([]func(resume.Data){}, f.onUpdate...)
	f.mu.Unlock()

	for _, fn := range listeners {
		fn(data)
	}
	if manual {
		f.notifier.Refreshed()
	}
	return nil
}

// load reads the latest record, falling back to the first entry of the list.
func (f *Fetcher) load(ctx context.Context) (resume.Record, error) {
	record, err := f.source.Latest(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch latest resume")
	}
	if record != nil && record.ID() != 0 {
		return record, nil
	}

	f.log.Debug("latest resume unusable, falling back to list")
	records, err := f.source.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch resume list")
	}
	if len(records) == 0 || records[0] == nil {
		return nil, ErrNoResume
	}
	return records[0], nil
}
