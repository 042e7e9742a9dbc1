// Package notify is the dashboard notification layer: transient toasts, an
// inbox of newly observed reservations, a single reservation modal and the
// new-reservation cursor.
package notify

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/marcus/rsv/internal/models"
	"github.com/marcus/rsv/internal/store"
)

// DefaultToastDuration applies when ShowToast is given no duration
const DefaultToastDuration = 5 * time.Second

// NewReservationMessage is the toast raised for new reservations
const NewReservationMessage = "¡Nueva reserva recibida!"

// Persister stores the inbox and cursor; *inbox.Store satisfies it.
type Persister interface {
	Load() ([]models.Notification, error)
	Save(n models.Notification) error
	MarkRead(id string) error
	MarkAllRead() error
	Delete(id string) error
	Cursor() (int64, bool, error)
	SetCursor(v int64) error
}

// Sink receives each batch of new-reservation notifications.
type Sink interface {
	Deliver(ctx context.Context, batch []models.Notification) error
}

// Options configures a Center
type Options struct {
	ToastDuration time.Duration
	Now           func() time.Time
	Persist       Persister
	Sink          Sink
	Logger        *slog.Logger
}

// Center owns toasts, the inbox and the modal
type Center struct {
	opts Options

	mu            sync.Mutex
	cursor        int64
	hasCursor     bool
	seq           int64
	notifications []models.Notification // newest first
	toasts        []models.Toast
	timers        map[string]*time.Timer
	modal         *models.Reservation
	listeners     []func()
	closed        bool
}

// New creates a Center, restoring the inbox and cursor when a Persister is
// configured.
func New(opts Options) (*Center, error) {
	if opts.ToastDuration <= 0 {
		opts.ToastDuration = DefaultToastDuration
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	c := &Center{opts: opts, timers: make(map[string]*time.Timer)}

	if p := opts.Persist; p != nil {
		list, err := p.Load()
		if err != nil {
			return nil, err
		}
		c.notifications = list
		for _, n := range list {
			if n.Seq > c.seq {
				c.seq = n.Seq
			}
		}
		cur, ok, err := p.Cursor()
		if err != nil {
			return nil, err
		}
		c.cursor, c.hasCursor = cur, ok
	}
	return c, nil
}

// OnChange registers fn to run after every state change. fn runs without
// the Center lock held and may call back into it.
func (c *Center) OnChange(fn func()) {
	c.mu.Lock()
	c.listeners = append(c.listeners, fn)
	c.mu.Unlock()
}

func (c *Center) changed() {
	c.mu.Lock()
	ls := make([]func(), len(c.listeners))
	copy(ls, c.listeners)
	c.mu.Unlock()
	for _, fn := range ls {
		fn()
	}
}

// Follow observes every state the store publishes until ctx is done.
func (c *Center) Follow(ctx context.Context, s *store.Store) {
	ch, cancel := s.Subscribe()
	defer cancel()
	c.Observe(s.Snapshot().Reservations)
	for {
		select {
		case <-ctx.Done():
			return
		case st, ok := <-ch:
			if !ok {
				return
			}
			c.Observe(st.Reservations)
		}
	}
}

// Observe compares list against the cursor. The first non-empty list only
// initializes the cursor. Afterwards every reservation above the cursor
// becomes an inbox entry, one toast is raised for the highest ID and the
// cursor advances. It returns the new notifications.
func (c *Center) Observe(list []models.Reservation) []models.Notification {
	if len(list) == 0 {
		return nil
	}
	maxID := models.MaxID(list)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	if !c.hasCursor {
		c.cursor, c.hasCursor = maxID, true
		c.mu.Unlock()
		c.persistCursor(maxID)
		return nil
	}
	if maxID <= c.cursor {
		c.mu.Unlock()
		return nil
	}

	var fresh []models.Reservation
	for _, r := range list {
		if r.ID > c.cursor {
			fresh = append(fresh, r)
		}
	}
	sort.Slice(fresh, func(i, j int) bool { return fresh[i].ID > fresh[j].ID })

	c.seq++
	now := c.opts.Now()
	batch := make([]models.Notification, 0, len(fresh))
	for _, r := range fresh {
		batch = append(batch, models.Notification{
			ID:            uuid.NewString(),
			ReservationID: r.ID,
			Reservation:   r,
			CreatedAt:     now,
			Seq:           c.seq,
		})
	}
	c.notifications = append(append([]models.Notification{}, batch...), c.notifications...)
	c.cursor = maxID
	c.mu.Unlock()

	if p := c.opts.Persist; p != nil {
		for _, n := range batch {
			if err := p.Save(n); err != nil {
				c.opts.Logger.Warn("save notification", "id", n.ID, "err", err)
			}
		}
	}
	c.persistCursor(maxID)

	newest := fresh[0]
	c.ShowToast(NewReservationMessage, models.ToastSuccess, 0, &newest)

	if sink := c.opts.Sink; sink != nil {
		go func() {
			if err := sink.Deliver(context.Background(), batch); err != nil {
				c.opts.Logger.Warn("deliver notifications", "err", err)
			}
		}()
	}
	return batch
}

func (c *Center) persistCursor(v int64) {
	if p := c.opts.Persist; p != nil {
		if err := p.SetCursor(v); err != nil {
			c.opts.Logger.Warn("save cursor", "err", err)
		}
	}
}

// Cursor returns the highest reservation ID already seen
func (c *Center) Cursor() (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cursor, c.hasCursor
}

// ShowToast adds a toast and returns its ID. A zero duration uses the
// configured default; the toast is dismissed when it elapses.
func (c *Center) ShowToast(message string, typ models.ToastType, d time.Duration, r *models.Reservation) string {
	if d <= 0 {
		d = c.opts.ToastDuration
	}
	if typ == "" {
		typ = models.ToastSuccess
	}
	t := models.Toast{
		ID:          uuid.NewString(),
		Message:     message,
		Type:        typ,
		Duration:    d,
		Reservation: r,
		CreatedAt:   c.opts.Now(),
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ""
	}
	c.toasts = append(c.toasts, t)
	c.timers[t.ID] = time.AfterFunc(d, func() { c.expire(t.ID) })
	c.mu.Unlock()

	c.changed()
	return t.ID
}

// expire runs from a toast timer; a toast dismissed or closed in the
// meantime is left alone.
func (c *Center) expire(id string) {
	c.mu.Lock()
	_, live := c.timers[id]
	live = live && !c.closed
	c.mu.Unlock()
	if live {
		c.DismissToast(id)
	}
}

// DismissToast removes a toast and stops its timer. Unknown IDs are ignored.
func (c *Center) DismissToast(id string) {
	c.mu.Lock()
	if timer, ok := c.timers[id]; ok {
		timer.Stop()
		delete(c.timers, id)
	}
	idx := -1
	for i, t := range c.toasts {
		if t.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		c.mu.Unlock()
		return
	}
	c.toasts = append(c.toasts[:idx:idx], c.toasts[idx+1:]...)
	c.mu.Unlock()
	c.changed()
}

// Toasts returns the visible toasts, oldest first
func (c *Center) Toasts() []models.Toast {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.Toast, len(c.toasts))
	copy(out, c.toasts)
	return out
}

// ShowModal opens the reservation modal, replacing any open one
func (c *Center) ShowModal(r models.Reservation) {
	c.mu.Lock()
	c.modal = &r
	c.mu.Unlock()
	c.changed()
}

// CloseModal closes the modal
func (c *Center) CloseModal() {
	c.mu.Lock()
	c.modal = nil
	c.mu.Unlock()
	c.changed()
}

// Modal returns the reservation shown in the modal, or nil
func (c *Center) Modal() *models.Reservation {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.modal == nil {
		return nil
	}
	r := *c.modal
	return &r
}

// OpenToast shows the modal for a toast's reservation. Toasts without one
// do nothing.
func (c *Center) OpenToast(id string) bool {
	c.mu.Lock()
	var r *models.Reservation
	for _, t := range c.toasts {
		if t.ID == id {
			r = t.Reservation
			break
		}
	}
	c.mu.Unlock()
	if r == nil {
		return false
	}
	c.ShowModal(*r)
	return true
}

// Notifications returns the inbox, newest first
func (c *Center) Notifications() []models.Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.Notification, len(c.notifications))
	copy(out, c.notifications)
	return out
}

// UnreadCount returns the number of unread inbox entries
func (c *Center) UnreadCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, x := range c.notifications {
		if !x.Read {
			n++
		}
	}
	return n
}

// MarkAsRead marks one notification read
func (c *Center) MarkAsRead(id string) {
	c.mu.Lock()
	found := false
	for i := range c.notifications {
		if c.notifications[i].ID == id {
			c.notifications[i].Read = true
			found = true
			break
		}
	}
	c.mu.Unlock()
	if !found {
		return
	}
	if p := c.opts.Persist; p != nil {
		if err := p.MarkRead(id); err != nil {
			c.opts.Logger.Warn("mark notification read", "id", id, "err", err)
		}
	}
	c.changed()
}

// MarkAllAsRead marks every notification read. Calling it twice is the same
// as calling it once.
func (c *Center) MarkAllAsRead() {
	c.mu.Lock()
	for i := range c.notifications {
		c.notifications[i].Read = true
	}
	c.mu.Unlock()
	if p := c.opts.Persist; p != nil {
		if err := p.MarkAllRead(); err != nil {
			c.opts.Logger.Warn("mark all read", "err", err)
		}
	}
	c.changed()
}

// RemoveNotification deletes one inbox entry
func (c *Center) RemoveNotification(id string) {
	c.mu.Lock()
	out := c.notifications[:0:0]
	for _, n := range c.notifications {
		if n.ID != id {
			out = append(out, n)
		}
	}
	removed := len(out) != len(c.notifications)
	c.notifications = out
	c.mu.Unlock()
	if !removed {
		return
	}
	if p := c.opts.Persist; p != nil {
		if err := p.Delete(id); err != nil {
			c.opts.Logger.Warn("delete notification", "id", id, "err", err)
		}
	}
	c.changed()
}

// Close stops every toast timer; no dismissal callback runs afterwards.
func (c *Center) Close() {
	c.mu.Lock()
	c.closed = true
	for id, t := range c.timers {
		t.Stop()
		delete(c.timers, id)
	}
	c.mu.Unlock()
}
