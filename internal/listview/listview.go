// Package listview is the reservation list controller behind the dashboard
// table: filters, new-row highlight, status changes, deletion, edit and
// create flows.
package listview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/marcus/rsv/internal/api"
	"github.com/marcus/rsv/internal/dateparse"
	"github.com/marcus/rsv/internal/models"
	"github.com/marcus/rsv/internal/store"
	"github.com/marcus/rsv/internal/validate"
)

const (
	// DefaultCloseDelay is how long the edit modal stays open after a save
	DefaultCloseDelay = 1500 * time.Millisecond
	// HighlightFor is how long newly appeared rows stay highlighted
	HighlightFor = 600 * time.Millisecond
)

// Messages shown by the list
const (
	LoadErrorMessage    = "No se pudieron cargar las reservas"
	ContactToastMessage = "Debes proporcionar al menos un teléfono válido (mínimo 6 caracteres) o un email válido."
	EditSavedMessage    = "Reserva actualizada correctamente"
	NoTableLabel        = "Sin mesa asignada"
)

var (
	// ErrSuperseded is returned by a filtered fetch replaced by a newer one
	ErrSuperseded = errors.New("fetch superseded by a newer filter")
	// ErrNotInList means the reservation is not in the active list
	ErrNotInList = errors.New("reservation not in list")
	// ErrNoPendingDelete means ConfirmDelete was called without a request
	ErrNoPendingDelete = errors.New("no pending delete")
	// ErrNotEditing means SaveEdit was called with no edit open
	ErrNotEditing = errors.New("no edit in progress")
)

// Service is the slice of the API client the list needs
type Service interface {
	ListReservations(ctx context.Context, f models.ReservationFilter) ([]models.Reservation, error)
	CreateReservation(ctx context.Context, in models.ReservationInput) (*models.CreateResult, error)
	UpdateReservation(ctx context.Context, id int64, in models.ReservationInput) (*models.Reservation, error)
	ChangeStatus(ctx context.Context, id int64, estado models.ReservationStatus) (*models.Reservation, error)
	DeleteReservation(ctx context.Context, id int64) error
}

// Shared is the store backing the default (today) view
type Shared interface {
	Snapshot() store.State
	Reload(ctx context.Context) error
	Today() string
}

// Notifier raises toasts
type Notifier interface {
	ShowToast(message string, typ models.ToastType, d time.Duration, r *models.Reservation) string
}

// Options configures a Controller
type Options struct {
	CloseDelay time.Duration
	Now        func() time.Time
	Logger     *slog.Logger
	// OnChange runs after changes that happen off the caller's goroutine,
	// such as the delayed edit close.
	OnChange func()
}

// Controller owns the list state. All methods are safe for concurrent use.
type Controller struct {
	svc    Service
	shared Shared
	notes  Notifier
	opts   Options

	mu      sync.Mutex
	filter  models.ReservationFilter
	local   []models.Reservation
	loading bool
	err     error
	cancel  context.CancelFunc
	gen     uint64

	prevIDs map[int64]struct{}
	newIDs  []int64
	newAt   time.Time

	view          *models.Reservation
	editID        int64
	editIn        models.ReservationInput
	editGen       uint64
	pendingDelete *models.Reservation
}

// New creates a Controller showing today's reservations from shared
func New(svc Service, shared Shared, notes Notifier, opts Options) *Controller {
	if opts.CloseDelay <= 0 {
		opts.CloseDelay = DefaultCloseDelay
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Controller{
		svc:     svc,
		shared:  shared,
		notes:   notes,
		opts:    opts,
		filter:  models.ReservationFilter{Fecha: shared.Today()},
		prevIDs: map[int64]struct{}{},
	}
}

// Filter returns the current filter
func (c *Controller) Filter() models.ReservationFilter {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filter
}

// IsDefault reports whether the list shows the shared store
func (c *Controller) IsDefault() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isDefault()
}

func (c *Controller) isDefault() bool {
	return c.filter.IsDefault(c.shared.Today())
}

// Active returns the list on screen: the store slice for the default
// filter, the local copy otherwise.
func (c *Controller) Active() []models.Reservation {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active()
}

func (c *Controller) active() []models.Reservation {
	if c.isDefault() {
		return c.shared.Snapshot().Reservations
	}
	return c.local
}

// Loading reports whether the active list is being fetched
func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.isDefault() {
		return c.shared.Snapshot().Loading
	}
	return c.loading
}

// Err returns the last filtered fetch error
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// ResetFilter returns to today's view
func (c *Controller) ResetFilter(ctx context.Context) error {
	return c.SetFilter(ctx, models.ReservationFilter{Fecha: c.shared.Today()})
}

// SetFilter switches the filter. A non-default filter fetches a local list,
// cancelling any fetch still in flight; the cancelled call returns
// ErrSuperseded and its result is dropped.
func (c *Controller) SetFilter(ctx context.Context, f models.ReservationFilter) error {
	f.Nombre = strings.TrimSpace(f.Nombre)
	if f.Fecha == "" {
		f.Fecha = c.shared.Today()
	}

	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.gen++
	gen := c.gen
	c.filter = f
	c.err = nil
	if c.isDefault() {
		c.local = nil
		c.loading = false
		c.prevIDs = models.IDSet(c.shared.Snapshot().Reservations)
		c.newIDs = nil
		c.mu.Unlock()
		return nil
	}
	fctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.loading = true
	c.mu.Unlock()
	defer cancel()

	list, err := c.svc.ListReservations(fctx, f)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return ErrSuperseded
	}
	c.cancel = nil
	c.loading = false
	if err != nil {
		c.opts.Logger.Warn("load filtered reservations", "err", err)
		c.err = fmt.Errorf("%s: %w", LoadErrorMessage, err)
		c.local = nil
		return c.err
	}
	SortNewestFirst(list)
	c.markNew(list)
	c.local = list
	return nil
}

// Refresh refetches the active list
func (c *Controller) Refresh(ctx context.Context) error {
	if c.IsDefault() {
		return c.shared.Reload(ctx)
	}
	return c.SetFilter(ctx, c.Filter())
}

// ObserveStore records a store publish for new-row highlighting. It is a
// no-op while a filter is active.
func (c *Controller) ObserveStore(list []models.Reservation) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.isDefault() {
		return
	}
	c.markNew(list)
}

func (c *Controller) markNew(list []models.Reservation) {
	if ids := Diff(c.prevIDs, list); len(ids) > 0 {
		c.newIDs = ids
		c.newAt = c.opts.Now()
	}
	c.prevIDs = models.IDSet(list)
}

// NewIDs returns the rows that appeared in the last update, while their
// highlight lasts.
func (c *Controller) NewIDs() []int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.newIDs) == 0 || c.opts.Now().Sub(c.newAt) >= HighlightFor {
		return nil
	}
	out := make([]int64, len(c.newIDs))
	copy(out, c.newIDs)
	return out
}

// Diff returns the IDs in next that are missing from prev. An empty prev
// means nothing was shown before, so nothing counts as new.
func Diff(prev map[int64]struct{}, next []models.Reservation) []int64 {
	if len(prev) == 0 {
		return nil
	}
	var ids []int64
	for _, r := range next {
		if _, ok := prev[r.ID]; !ok {
			ids = append(ids, r.ID)
		}
	}
	return ids
}

// SortNewestFirst orders by date descending, then ID descending
func SortNewestFirst(list []models.Reservation) {
	sort.SliceStable(list, func(i, j int) bool {
		if !list[i].Fecha.Equal(list[j].Fecha) {
			return list[i].Fecha.After(list[j].Fecha)
		}
		return list[i].ID > list[j].ID
	})
}

// ChangeStatus sets a reservation's status and reflects the result in the
// active list and any open modal on the same reservation.
func (c *Controller) ChangeStatus(ctx context.Context, id int64, estado models.ReservationStatus) (*models.Reservation, error) {
	updated, err := c.svc.ChangeStatus(ctx, id, estado)
	if err != nil {
		c.toast(api.Message(err, "No se pudo cambiar el estado"), models.ToastError, 5*time.Second)
		return nil, err
	}
	c.applyUpdate(ctx, *updated, merge)
	return updated, nil
}

// applyUpdate folds r into the local list with combine, or reloads the store
// in the default view, then patches the open modals.
func (c *Controller) applyUpdate(ctx context.Context, r models.Reservation, combine func(base, upd models.Reservation) models.Reservation) {
	c.mu.Lock()
	def := c.isDefault()
	if !def {
		for i := range c.local {
			if c.local[i].ID == r.ID {
				c.local[i] = combine(c.local[i], r)
				break
			}
		}
	}
	if c.view != nil && c.view.ID == r.ID {
		v := combine(*c.view, r)
		c.view = &v
	}
	if c.editID == r.ID {
		c.editIn = models.InputFromReservation(combine(c.baseFor(r.ID), r), dateparse.SplitDateTime)
	}
	c.mu.Unlock()

	if def {
		if err := c.shared.Reload(ctx); err != nil {
			c.opts.Logger.Warn("reload after update", "id", r.ID, "err", err)
		}
	}
}

func (c *Controller) baseFor(id int64) models.Reservation {
	if r, ok := models.FindReservation(c.active(), id); ok {
		return r
	}
	return models.Reservation{ID: id}
}

// replace takes a full reservation from a PUT reply as is. Cleared fields
// stay cleared; only the joined table survives when the reply carries just
// its ID.
func replace(base, upd models.Reservation) models.Reservation {
	if upd.Mesa == nil && base.Mesa != nil && upd.MesaID != nil && *upd.MesaID == base.Mesa.ID {
		upd.Mesa = base.Mesa
	}
	return upd
}

// merge overlays the non-zero fields of upd onto base. PATCH replies may
// carry only {id, estado}.
func merge(base, upd models.Reservation) models.Reservation {
	out := base
	if upd.NombreCliente != "" {
		out.NombreCliente = upd.NombreCliente
	}
	if upd.Telefono != "" {
		out.Telefono = upd.Telefono
	}
	if upd.Email != "" {
		out.Email = upd.Email
	}
	if upd.NumPersonas != 0 {
		out.NumPersonas = upd.NumPersonas
	}
	if !upd.Fecha.IsZero() {
		out.Fecha = upd.Fecha
	}
	if upd.Notas != "" {
		out.Notas = upd.Notas
	}
	if upd.Estado != "" {
		out.Estado = upd.Estado
	}
	if upd.MesaID != nil {
		out.MesaID = upd.MesaID
	}
	if upd.Mesa != nil {
		out.Mesa = upd.Mesa
	}
	return out
}

// RequestDelete marks a reservation for deletion pending confirmation
func (c *Controller) RequestDelete(id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := models.FindReservation(c.active(), id)
	if !ok {
		return ErrNotInList
	}
	c.pendingDelete = &r
	return nil
}

// PendingDelete returns the reservation awaiting delete confirmation
func (c *Controller) PendingDelete() *models.Reservation {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pendingDelete == nil {
		return nil
	}
	r := *c.pendingDelete
	return &r
}

// CancelDelete drops the pending delete
func (c *Controller) CancelDelete() {
	c.mu.Lock()
	c.pendingDelete = nil
	c.mu.Unlock()
}

// ConfirmDelete deletes the pending reservation. The request stays pending
// when the call fails so it can be retried.
func (c *Controller) ConfirmDelete(ctx context.Context) error {
	c.mu.Lock()
	pending := c.pendingDelete
	c.mu.Unlock()
	if pending == nil {
		return ErrNoPendingDelete
	}
	id := pending.ID

	if err := c.svc.DeleteReservation(ctx, id); err != nil {
		c.toast(api.Message(err, "No se pudo eliminar la reserva"), models.ToastError, 5*time.Second)
		return err
	}

	c.mu.Lock()
	c.pendingDelete = nil
	def := c.isDefault()
	if !def {
		out := c.local[:0:0]
		for _, r := range c.local {
			if r.ID != id {
				out = append(out, r)
			}
		}
		c.local = out
	}
	if c.view != nil && c.view.ID == id {
		c.view = nil
	}
	if c.editID == id {
		c.editID = 0
		c.editGen++
	}
	c.mu.Unlock()

	if def {
		if err := c.shared.Reload(ctx); err != nil {
			c.opts.Logger.Warn("reload after delete", "id", id, "err", err)
		}
	}
	return nil
}

// View opens the detail modal for a reservation in the active list
func (c *Controller) View(id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := models.FindReservation(c.active(), id)
	if !ok {
		return ErrNotInList
	}
	c.view = &r
	return nil
}

// Viewing returns the reservation in the detail modal, or nil
func (c *Controller) Viewing() *models.Reservation {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.view == nil {
		return nil
	}
	r := *c.view
	return &r
}

// CloseView closes the detail modal
func (c *Controller) CloseView() {
	c.mu.Lock()
	c.view = nil
	c.mu.Unlock()
}

// BeginEdit opens the edit form on a scratch copy of the reservation
func (c *Controller) BeginEdit(id int64) (models.ReservationInput, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := models.FindReservation(c.active(), id)
	if !ok {
		return models.ReservationInput{}, ErrNotInList
	}
	c.editID = id
	c.editGen++
	c.editIn = models.InputFromReservation(r, dateparse.SplitDateTime)
	return c.editIn, nil
}

// Editing returns the reservation ID and scratch input of the open edit
func (c *Controller) Editing() (int64, models.ReservationInput, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.editID, c.editIn, c.editID != 0
}

// SetEditInput replaces the scratch input
func (c *Controller) SetEditInput(in models.ReservationInput) {
	c.mu.Lock()
	if c.editID != 0 {
		c.editIn = in
	}
	c.mu.Unlock()
}

// CancelEdit closes the edit form without saving
func (c *Controller) CancelEdit() {
	c.mu.Lock()
	c.editID = 0
	c.editGen++
	c.mu.Unlock()
}

// SaveEdit validates and sends the scratch input. Invalid input never
// reaches the network. On success the form closes after the close delay.
func (c *Controller) SaveEdit(ctx context.Context) (*models.Reservation, error) {
	c.mu.Lock()
	id, in, gen := c.editID, c.editIn, c.editGen
	c.mu.Unlock()
	if id == 0 {
		return nil, ErrNotEditing
	}

	if !validate.Contact(in.Telefono, in.Email) {
		c.toast(ContactToastMessage, models.ToastError, 5*time.Second)
		return nil, validate.Errors{"telefono": ContactToastMessage}
	}
	if err := validate.ReservationEdit(in); err != nil {
		return nil, err
	}

	updated, err := c.svc.UpdateReservation(ctx, id, in)
	if err != nil {
		c.toast(api.Message(err, "No se pudo actualizar la reserva"), models.ToastError, 6*time.Second)
		return nil, err
	}
	c.toast(EditSavedMessage, models.ToastSuccess, 3*time.Second)
	c.applyUpdate(ctx, *updated, replace)

	time.AfterFunc(c.opts.CloseDelay, func() {
		c.mu.Lock()
		closed := c.editID == id && c.editGen == gen
		if closed {
			c.editID = 0
			c.editGen++
		}
		c.mu.Unlock()
		if closed && c.opts.OnChange != nil {
			c.opts.OnChange()
		}
	})
	return updated, nil
}

func (c *Controller) toast(msg string, typ models.ToastType, d time.Duration) {
	if c.notes != nil {
		c.notes.ShowToast(msg, typ, d, nil)
	}
}
