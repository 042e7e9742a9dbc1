// Package store keeps today's reservations in sync with the backend. It is
// the single owner of the shared list: views read snapshots, subscribe to
// changes and ask for reloads, but never write to it.
package store

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/marcus/rsv/internal/dateparse"
	"github.com/marcus/rsv/internal/models"
	"github.com/marcus/rsv/internal/poller"
)

// DefaultInterval is the polling interval while visible
const DefaultInterval = 10 * time.Second

// subscriberBuffer is how many unread states a subscriber may lag behind
// before the oldest is dropped.
const subscriberBuffer = 4

// Source lists reservations; *api.Client satisfies it.
type Source interface {
	ListReservations(ctx context.Context, f models.ReservationFilter) ([]models.Reservation, error)
}

// State is an immutable snapshot of the store
type State struct {
	Reservations []models.Reservation
	Loading      bool
	Version      uint64 // +1 per successful fetch
	LastError    error
	UpdatedAt    time.Time
	Day          string
}

// Options configures a Store
type Options struct {
	Interval time.Duration
	Now      func() time.Time
	Logger   *slog.Logger
}

// Store is the shared reservation store
type Store struct {
	src    Source
	now    func() time.Time
	logger *slog.Logger
	poller *poller.Poller

	mu        sync.Mutex
	state     State
	subs      map[int]chan State
	nextSub   int
	requested uint64 // reload requests issued
	completed uint64 // highest request covered by a finished fetch

	fetchMu sync.Mutex
}

// New creates a store. Call Run to start polling.
func New(src Source, opts Options) *Store {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	s := &Store{
		src:    src,
		now:    opts.Now,
		logger: opts.Logger,
		state:  State{Loading: true, Reservations: []models.Reservation{}},
		subs:   make(map[int]chan State),
	}
	s.poller = poller.New(opts.Interval, func(ctx context.Context) {
		s.Reload(ctx)
	})
	return s
}

// Run loads once and then polls until ctx is done.
func (s *Store) Run(ctx context.Context) {
	s.poller.Run(ctx)
}

// SetVisible pauses or resumes polling; resuming reloads immediately.
func (s *Store) SetVisible(v bool) {
	s.poller.SetVisible(v)
}

// Nudge asks the polling loop for a reload without waiting for it.
func (s *Store) Nudge() {
	s.poller.Trigger()
}

// Snapshot returns the current state. The slice must not be modified.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Today is the date the store fetches: the UTC calendar date.
func (s *Store) Today() string {
	return dateparse.Today(s.now())
}

// Reload fetches today's reservations. A call made while a fetch is in
// flight waits for it and then fetches once more, so a reload issued after
// a mutation always observes it. Concurrent waiters share that second fetch.
func (s *Store) Reload(ctx context.Context) error {
	s.mu.Lock()
	s.requested++
	want := s.requested
	s.mu.Unlock()

	s.fetchMu.Lock()
	defer s.fetchMu.Unlock()

	s.mu.Lock()
	if s.completed >= want {
		err := s.state.LastError
		s.mu.Unlock()
		return err
	}
	covers := s.requested
	s.mu.Unlock()

	day := s.Today()
	list, err := s.src.ListReservations(ctx, models.ReservationFilter{Fecha: day})

	s.mu.Lock()
	s.completed = covers
	next := s.state
	next.Loading = false
	if err != nil {
		s.logger.Warn("load reservations", "err", err)
		next.LastError = err
	} else {
		if list == nil {
			list = []models.Reservation{}
		}
		next.Reservations = list
		next.Version++
		next.LastError = nil
		next.UpdatedAt = s.now()
		next.Day = day
	}
	s.state = next
	for _, ch := range s.subs {
		publish(ch, next)
	}
	s.mu.Unlock()
	return err
}

// Subscribe returns a channel receiving every published state. A slow
// reader loses the oldest states, never the newest. cancel closes the
// channel.
func (s *Store) Subscribe() (<-chan State, func()) {
	ch := make(chan State, subscriberBuffer)
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			close(ch)
			s.mu.Unlock()
		})
	}
}

// publish never blocks: when the buffer is full the oldest state is dropped
func publish(ch chan State, st State) {
	for {
		select {
		case ch <- st:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
