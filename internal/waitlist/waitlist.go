// Package waitlist is the waitlist controller: a day's entries polled every
// minute while visible, edit and delete flows and the "process all" action.
package waitlist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/marcus/rsv/internal/api"
	"github.com/marcus/rsv/internal/dateparse"
	"github.com/marcus/rsv/internal/models"
	"github.com/marcus/rsv/internal/poller"
	"github.com/marcus/rsv/internal/validate"
)

// DefaultInterval is the waitlist polling period
const DefaultInterval = 60 * time.Second

// Messages shown by the waitlist
const (
	LoadErrorMessage    = "No se pudieron cargar las entradas de lista de espera"
	FullMessage         = "El restaurante está lleno. No hay mesas disponibles para asignar a la lista de espera."
	ContactToastMessage = "Debes proporcionar al menos un teléfono válido (mínimo 6 caracteres) o un email válido."
	SavedMessage        = "Entrada actualizada correctamente"
)

var (
	ErrSuperseded      = errors.New("fetch superseded by a newer one")
	ErrNotInList       = errors.New("entry not in list")
	ErrNoPendingDelete = errors.New("no pending delete")
)

// Service is the slice of the API client the waitlist needs
type Service interface {
	ListWaitlist(ctx context.Context, f models.WaitlistFilter) ([]models.WaitlistEntry, error)
	UpdateWaitlistEntry(ctx context.Context, id int64, in models.WaitlistInput) (*models.WaitlistEntry, error)
	DeleteWaitlistEntry(ctx context.Context, id int64) error
	ProcessWaitlist(ctx context.Context) (*api.ProcessResult, error)
}

// Notifier raises toasts
type Notifier interface {
	ShowToast(message string, typ models.ToastType, d time.Duration, r *models.Reservation) string
}

// Options configures a Controller
type Options struct {
	Interval time.Duration
	Now      func() time.Time
	Logger   *slog.Logger
}

// ProcessOutcome reports a successful "process all"
type ProcessOutcome struct {
	Procesadas int    `json:"procesadas"`
	Message    string `json:"message"`
}

// Controller owns the waitlist state
type Controller struct {
	svc    Service
	notes  Notifier
	opts   Options
	poller *poller.Poller

	mu            sync.Mutex
	filter        models.WaitlistFilter
	entries       []models.WaitlistEntry
	loading       bool
	err           error
	cancel        context.CancelFunc
	gen           uint64
	pendingDelete *models.WaitlistEntry
}

// New creates a Controller for today's waitlist
func New(svc Service, notes Notifier, opts Options) *Controller {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	c := &Controller{
		svc:     svc,
		notes:   notes,
		opts:    opts,
		loading: true,
		filter:  models.WaitlistFilter{FechaDeseada: dateparse.Today(opts.Now())},
	}
	c.poller = poller.New(opts.Interval, func(ctx context.Context) {
		c.Reload(ctx)
	})
	return c
}

// Run polls until ctx is done
func (c *Controller) Run(ctx context.Context) {
	c.poller.Run(ctx)
}

// SetVisible pauses or resumes polling
func (c *Controller) SetVisible(v bool) {
	c.poller.SetVisible(v)
}

// Filter returns the current filter
func (c *Controller) Filter() models.WaitlistFilter {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filter
}

// SetFilter changes the day or name and refetches. An empty day means today.
func (c *Controller) SetFilter(ctx context.Context, f models.WaitlistFilter) error {
	f.Nombre = strings.TrimSpace(f.Nombre)
	if f.FechaDeseada == "" {
		f.FechaDeseada = dateparse.Today(c.opts.Now())
	}
	c.mu.Lock()
	c.filter = f
	c.mu.Unlock()
	return c.Reload(ctx)
}

// Reload fetches the entries for the current filter, cancelling a fetch
// still in flight. A failure keeps the previous entries.
func (c *Controller) Reload(ctx context.Context) error {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	c.gen++
	gen := c.gen
	f := c.filter
	fctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.mu.Unlock()
	defer cancel()

	list, err := c.svc.ListWaitlist(fctx, f)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return ErrSuperseded
	}
	c.cancel = nil
	c.loading = false
	if err != nil {
		c.opts.Logger.Warn("load waitlist", "err", err)
		c.err = fmt.Errorf("%s: %w", LoadErrorMessage, err)
		return c.err
	}
	c.err = nil
	if list == nil {
		list = []models.WaitlistEntry{}
	}
	c.entries = list
	return nil
}

// Entries returns the current entries
func (c *Controller) Entries() []models.WaitlistEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.WaitlistEntry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Loading reports whether the first fetch is still pending
func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Err returns the last fetch error
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// PendingCount counts entries still waiting
func (c *Controller) PendingCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, e := range c.entries {
		if e.Estado == models.WaitlistPending {
			n++
		}
	}
	return n
}

// Find returns an entry by ID
func (c *Controller) Find(id int64) (models.WaitlistEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.entries {
		if e.ID == id {
			return e, true
		}
	}
	return models.WaitlistEntry{}, false
}

// Edit validates and saves an entry. A missing contact is reported before
// any request is made. The list is refetched after a successful save.
func (c *Controller) Edit(ctx context.Context, id int64, in models.WaitlistInput) (*models.WaitlistEntry, error) {
	if !validate.Contact(in.Telefono, in.Email) {
		c.toast(ContactToastMessage, models.ToastError, 5*time.Second)
		return nil, validate.Errors{"telefono": ContactToastMessage}
	}
	if err := validate.Waitlist(in); err != nil {
		return nil, err
	}

	saved, err := c.svc.UpdateWaitlistEntry(ctx, id, in)
	if err != nil {
		c.toast(api.Message(err, "Error al actualizar la entrada"), models.ToastError, 6*time.Second)
		return nil, err
	}
	if err := c.Reload(ctx); err != nil && !errors.Is(err, ErrSuperseded) {
		c.opts.Logger.Warn("reload after edit", "id", id, "err", err)
	}
	c.toast(SavedMessage, models.ToastSuccess, 3*time.Second)
	return saved, nil
}

// RequestDelete marks an entry for deletion pending confirmation
func (c *Controller) RequestDelete(id int64) error {
	e, ok := c.Find(id)
	if !ok {
		return ErrNotInList
	}
	c.mu.Lock()
	c.pendingDelete = &e
	c.mu.Unlock()
	return nil
}

// PendingDelete returns the entry awaiting confirmation
func (c *Controller) PendingDelete() *models.WaitlistEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pendingDelete == nil {
		return nil
	}
	e := *c.pendingDelete
	return &e
}

// CancelDelete drops the pending delete
func (c *Controller) CancelDelete() {
	c.mu.Lock()
	c.pendingDelete = nil
	c.mu.Unlock()
}

// ConfirmDelete deletes the pending entry and removes it from the list
func (c *Controller) ConfirmDelete(ctx context.Context) error {
	pending := c.PendingDelete()
	if pending == nil {
		return ErrNoPendingDelete
	}
	if err := c.svc.DeleteWaitlistEntry(ctx, pending.ID); err != nil {
		c.toast(api.Message(err, "No se pudo eliminar la entrada"), models.ToastError, 5*time.Second)
		return err
	}
	c.mu.Lock()
	out := c.entries[:0:0]
	for _, e := range c.entries {
		if e.ID != pending.ID {
			out = append(out, e)
		}
	}
	c.entries = out
	c.pendingDelete = nil
	c.mu.Unlock()
	return nil
}

// ProcessAll asks the backend to seat every pending entry it can, then
// refetches. A full restaurant gets its own message.
func (c *Controller) ProcessAll(ctx context.Context) (*ProcessOutcome, error) {
	res, err := c.svc.ProcessWaitlist(ctx)
	if err != nil {
		if api.IsRestaurantFull(err) {
			c.toast(FullMessage, models.ToastError, 7*time.Second)
		} else {
			c.toast(api.Message(err, "Error al procesar la lista de espera"), models.ToastError, 5*time.Second)
		}
		return nil, err
	}

	out := &ProcessOutcome{Procesadas: res.Procesadas, Message: res.Message}
	if out.Message == "" {
		out.Message = fmt.Sprintf("Se procesaron %d entradas", res.Procesadas)
	}
	c.toast(out.Message, models.ToastSuccess, 5*time.Second)

	if err := c.Reload(ctx); err != nil && !errors.Is(err, ErrSuperseded) {
		c.opts.Logger.Warn("reload after process", "err", err)
	}
	return out, nil
}

func (c *Controller) toast(msg string, typ models.ToastType, d time.Duration) {
	if c.notes != nil {
		c.notes.ShowToast(msg, typ, d, nil)
	}
}
