// Package floorplan models the table layout of one dining zone: derived
// table status, admin editing and a terminal rendering.
package floorplan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"sync"

	"github.com/marcus/rsv/internal/dateparse"
	"github.com/marcus/rsv/internal/models"
)

const (
	// RotateStep is the rotation applied by one Rotate call, in degrees
	RotateStep = 15.0
	// MinSide is the smallest width or height a table can be resized to
	MinSide = 30.0
	// DuplicateOffset shifts a duplicated table on both axes
	DuplicateOffset = 50.0
	// CopySuffix is appended to the name of a duplicated table
	CopySuffix = " (copia)"
)

var (
	ErrNoSelection  = errors.New("no table selected")
	ErrReadOnly     = errors.New("floor plan is read-only")
	ErrUnknownTable = errors.New("unknown table")
)

// Direction is a rotation direction
type Direction int

const (
	Left Direction = iota
	Right
)

// TableRepo persists tables; *api.Client satisfies it.
type TableRepo interface {
	ListTables(ctx context.Context) ([]models.Table, error)
	CreateTable(ctx context.Context, in models.TableInput) (*models.Table, error)
	UpdateTable(ctx context.Context, id int64, in models.TableInput) (*models.Table, error)
	DeleteTable(ctx context.Context, id int64) error
}

// Options configures a Plan
type Options struct {
	Zone   string
	Admin  bool
	Logger *slog.Logger
}

// Metrics summarizes the plan
type Metrics struct {
	Total         int `json:"total"`
	Available     int `json:"available"`
	Occupied      int `json:"occupied"`
	OccupiedSeats int `json:"occupied_seats"`
	TotalSeats    int `json:"total_seats"`
}

// Plan is the editable floor plan of one zone
type Plan struct {
	repo TableRepo
	opts Options

	mu           sync.Mutex
	tables       []models.Table
	reservations []models.Reservation
	today        string
	overrides    map[int64]models.TableStatus
	selected     int64
}

// New creates an empty plan; call Load to fill it
func New(repo TableRepo, opts Options) *Plan {
	if opts.Zone == "" {
		opts.Zone = models.DefaultZone
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Plan{repo: repo, opts: opts, overrides: map[int64]models.TableStatus{}}
}

// Zone returns the zone shown
func (p *Plan) Zone() string { return p.opts.Zone }

// Admin reports whether editing is allowed
func (p *Plan) Admin() bool { return p.opts.Admin }

// Load fetches the tables of the plan's zone
func (p *Plan) Load(ctx context.Context) error {
	all, err := p.repo.ListTables(ctx)
	if err != nil {
		return fmt.Errorf("load tables: %w", err)
	}
	var zone []models.Table
	for _, t := range all {
		if t.Ubicacion == p.opts.Zone {
			zone = append(zone, t)
		}
	}
	sort.SliceStable(zone, func(i, j int) bool { return zone[i].ID < zone[j].ID })

	p.mu.Lock()
	p.tables = zone
	if _, ok := p.index(p.selected); !ok {
		p.selected = 0
	}
	p.mu.Unlock()
	return nil
}

// SetReservations supplies the reservations used to derive pending tables.
// Only confirmed reservations on the UTC day today count.
func (p *Plan) SetReservations(list []models.Reservation, today string) {
	p.mu.Lock()
	p.reservations = list
	p.today = today
	p.mu.Unlock()
}

// Tables returns the tables with their derived status filled in
func (p *Plan) Tables() []models.Table {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]models.Table, len(p.tables))
	for i, t := range p.tables {
		t.Status = p.status(t)
		out[i] = t
	}
	return out
}

// Table returns one table with its derived status
func (p *Plan) Table(id int64) (models.Table, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	i, ok := p.index(id)
	if !ok {
		return models.Table{}, false
	}
	t := p.tables[i]
	t.Status = p.status(t)
	return t, true
}

// Status derives a table's status. A manual override wins; then occupied
// now, a confirmed reservation today on the table, and unavailability.
func Status(t models.Table, reservations []models.Reservation, today string) models.TableStatus {
	if t.OcupadaAhora {
		return models.TableOccupied
	}
	for _, r := range reservations {
		if r.Estado == models.StatusConfirmed && r.TableID() == t.ID && dateparse.SameUTCDay(r.Fecha, today) {
			return models.TablePending
		}
	}
	if !t.Disponible {
		return models.TableUnavailable
	}
	return models.TableAvailable
}

func (p *Plan) status(t models.Table) models.TableStatus {
	if s, ok := p.overrides[t.ID]; ok {
		return s
	}
	return Status(t, p.reservations, p.today)
}

func (p *Plan) index(id int64) (int, bool) {
	for i, t := range p.tables {
		if t.ID == id {
			return i, true
		}
	}
	return -1, false
}

// Select makes id the single selected table
func (p *Plan) Select(id int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.index(id); !ok {
		return ErrUnknownTable
	}
	p.selected = id
	return nil
}

// ClearSelection deselects
func (p *Plan) ClearSelection() {
	p.mu.Lock()
	p.selected = 0
	p.mu.Unlock()
}

// Selected returns the selected table ID, 0 when none
func (p *Plan) Selected() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.selected
}

// SelectNext moves the selection by delta in ID order, wrapping around
func (p *Plan) SelectNext(delta int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := len(p.tables)
	if n == 0 {
		return
	}
	i, ok := p.index(p.selected)
	if !ok {
		p.selected = p.tables[0].ID
		return
	}
	p.selected = p.tables[((i+delta)%n+n)%n].ID
}

// editSelected applies fn to a copy of the selected table and persists it.
// The local copy is replaced by the saved table, and left untouched when
// the save fails.
func (p *Plan) editSelected(ctx context.Context, fn func(t *models.Table)) (*models.Table, error) {
	p.mu.Lock()
	if !p.opts.Admin {
		p.mu.Unlock()
		return nil, ErrReadOnly
	}
	i, ok := p.index(p.selected)
	if !ok {
		p.mu.Unlock()
		return nil, ErrNoSelection
	}
	next := p.tables[i]
	fn(&next)
	p.mu.Unlock()

	saved, err := p.repo.UpdateTable(ctx, next.ID, models.InputFromTable(next))
	if err != nil {
		return nil, fmt.Errorf("save table %d: %w", next.ID, err)
	}
	merged := next
	if saved != nil {
		merged.Nombre, merged.Capacidad = saved.Nombre, saved.Capacidad
	}

	p.mu.Lock()
	if j, ok := p.index(next.ID); ok {
		p.tables[j] = merged
	}
	p.mu.Unlock()
	return &merged, nil
}

// Move places the selected table at x, y. It is called once on drag end.
func (p *Plan) Move(ctx context.Context, x, y float64) (*models.Table, error) {
	return p.editSelected(ctx, func(t *models.Table) {
		t.X, t.Y = x, y
	})
}

// Rotate turns the selected table by one step
func (p *Plan) Rotate(ctx context.Context, dir Direction) (*models.Table, error) {
	return p.editSelected(ctx, func(t *models.Table) {
		step := RotateStep
		if dir == Left {
			step = -step
		}
		t.Rotation = NormalizeRotation(t.Rotation + step)
	})
}

// NormalizeRotation maps any angle into [0, 360)
func NormalizeRotation(deg float64) float64 {
	r := math.Mod(deg, 360)
	if r < 0 {
		r += 360
	}
	return r
}

// Resize sets the selected table's size, clamping each side to MinSide
func (p *Plan) Resize(ctx context.Context, w, h float64) (*models.Table, error) {
	return p.editSelected(ctx, func(t *models.Table) {
		t.Width = math.Max(MinSide, w)
		t.Height = math.Max(MinSide, h)
	})
}

// SetCapacity changes the selected table's seats
func (p *Plan) SetCapacity(ctx context.Context, seats int) (*models.Table, error) {
	return p.editSelected(ctx, func(t *models.Table) {
		if seats > 0 {
			t.Capacidad = seats
		}
	})
}

// Duplicate creates a copy of the selected table offset on both axes and
// selects it.
func (p *Plan) Duplicate(ctx context.Context) (*models.Table, error) {
	p.mu.Lock()
	if !p.opts.Admin {
		p.mu.Unlock()
		return nil, ErrReadOnly
	}
	i, ok := p.index(p.selected)
	if !ok {
		p.mu.Unlock()
		return nil, ErrNoSelection
	}
	src := p.tables[i]
	p.mu.Unlock()

	in := models.InputFromTable(src)
	in.X += DuplicateOffset
	in.Y += DuplicateOffset
	in.Nombre = src.Nombre + CopySuffix
	in.Ubicacion = p.opts.Zone
	return p.create(ctx, in)
}

// Create adds a new table of the given shape at x, y and selects it
func (p *Plan) Create(ctx context.Context, shape models.TableShape, x, y float64) (*models.Table, error) {
	p.mu.Lock()
	if !p.opts.Admin {
		p.mu.Unlock()
		return nil, ErrReadOnly
	}
	n := len(p.tables) + 1
	p.mu.Unlock()

	in := NewTableInput(shape, x, y)
	in.Nombre = fmt.Sprintf("Mesa %d", n)
	in.Ubicacion = p.opts.Zone
	return p.create(ctx, in)
}

// NewTableInput returns the defaults for a freshly drawn table
func NewTableInput(shape models.TableShape, x, y float64) models.TableInput {
	in := models.TableInput{
		Tipo:       shape,
		X:          x,
		Y:          y,
		Width:      100,
		Height:     60,
		Capacidad:  4,
		Disponible: true,
		Ubicacion:  models.DefaultZone,
	}
	if shape == models.ShapeRound {
		in.Width, in.Height, in.Capacidad = 80, 80, 6
	}
	return in
}

func (p *Plan) create(ctx context.Context, in models.TableInput) (*models.Table, error) {
	t, err := p.repo.CreateTable(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("create table: %w", err)
	}
	p.mu.Lock()
	p.tables = append(p.tables, *t)
	p.selected = t.ID
	p.mu.Unlock()
	return t, nil
}

// Delete removes the selected table
func (p *Plan) Delete(ctx context.Context) error {
	p.mu.Lock()
	if !p.opts.Admin {
		p.mu.Unlock()
		return ErrReadOnly
	}
	id := p.selected
	if _, ok := p.index(id); !ok {
		p.mu.Unlock()
		return ErrNoSelection
	}
	p.mu.Unlock()

	if err := p.repo.DeleteTable(ctx, id); err != nil {
		return fmt.Errorf("delete table %d: %w", id, err)
	}

	p.mu.Lock()
	if i, ok := p.index(id); ok {
		p.tables = append(p.tables[:i:i], p.tables[i+1:]...)
	}
	delete(p.overrides, id)
	p.selected = 0
	p.mu.Unlock()
	return nil
}

// ForceStatus overrides the derived status of a table until cleared. The
// override lives in the plan only.
func (p *Plan) ForceStatus(id int64, s models.TableStatus) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.opts.Admin {
		return "", ErrReadOnly
	}
	if _, ok := p.index(id); !ok {
		return "", ErrUnknownTable
	}
	p.overrides[id] = s
	p.opts.Logger.Debug("table status forced", "table", id, "status", s)
	return "Estado de mesa actualizado a " + s.Label(), nil
}

// ClearOverride returns a table to its derived status
func (p *Plan) ClearOverride(id int64) {
	p.mu.Lock()
	delete(p.overrides, id)
	p.mu.Unlock()
}

// Metrics counts tables and seats by status
func (p *Plan) Metrics() Metrics {
	var m Metrics
	for _, t := range p.Tables() {
		m.Total++
		m.TotalSeats += t.Capacidad
		switch t.Status {
		case models.TableAvailable:
			m.Available++
		case models.TableOccupied:
			m.Occupied++
			m.OccupiedSeats += t.Capacidad
		}
	}
	return m
}
