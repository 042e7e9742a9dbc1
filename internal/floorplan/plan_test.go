package floorplan

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/marcus/rsv/internal/models"
)

type memRepo struct {
	tables    []models.Table
	nextID    int64
	updates   []models.TableInput
	failSave  bool
	deletedID int64
}

func (m *memRepo) ListTables(ctx context.Context) ([]models.Table, error) {
	return append([]models.Table(nil), m.tables...), nil
}

func (m *memRepo) CreateTable(ctx context.Context, in models.TableInput) (*models.Table, error) {
	m.nextID++
	t := models.Table{
		ID: m.nextID, Nombre: in.Nombre, Capacidad: in.Capacidad, Tipo: in.Tipo,
		X: in.X, Y: in.Y, Width: in.Width, Height: in.Height,
		Disponible: in.Disponible, Ubicacion: in.Ubicacion,
	}
	return &t, nil
}

func (m *memRepo) UpdateTable(ctx context.Context, id int64, in models.TableInput) (*models.Table, error) {
	if m.failSave {
		return nil, errors.New("save failed")
	}
	m.updates = append(m.updates, in)
	return &models.Table{ID: id, Nombre: in.Nombre, Capacidad: in.Capacidad}, nil
}

func (m *memRepo) DeleteTable(ctx context.Context, id int64) error {
	m.deletedID = id
	return nil
}

func table(id int64, zone string) models.Table {
	return models.Table{
		ID: id, Nombre: "Mesa", Capacidad: 4, Tipo: models.ShapeRectangular,
		X: 100, Y: 100, Width: 100, Height: 50, Disponible: true, Ubicacion: zone,
	}
}

func loaded(t *testing.T, admin bool, tables ...models.Table) (*Plan, *memRepo) {
	t.Helper()
	repo := &memRepo{tables: tables, nextID: 100}
	p := New(repo, Options{Admin: admin})
	if err := p.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return p, repo
}

func TestLoadFiltersZone(t *testing.T) {
	p, _ := loaded(t, false, table(2, "INTERIOR"), table(1, "TERRAZA"), table(3, "INTERIOR"))
	got := p.Tables()
	if len(got) != 2 || got[0].ID != 2 || got[1].ID != 3 {
		t.Errorf("Tables = %+v, want interior 2 and 3", got)
	}
}

func TestStatusPrecedence(t *testing.T) {
	today := "2025-05-20"
	day := time.Date(2025, 5, 20, 21, 0, 0, 0, time.UTC)
	mesa := int64(1)
	confirmed := []models.Reservation{{ID: 9, Estado: models.StatusConfirmed, MesaID: &mesa, Fecha: day}}
	pending := []models.Reservation{{ID: 9, Estado: models.StatusPending, MesaID: &mesa, Fecha: day}}
	tomorrow := []models.Reservation{{ID: 9, Estado: models.StatusConfirmed, MesaID: &mesa, Fecha: day.AddDate(0, 0, 1)}}

	base := table(1, "INTERIOR")
	occupied := base
	occupied.OcupadaAhora = true
	off := base
	off.Disponible = false

	tests := []struct {
		name string
		t    models.Table
		res  []models.Reservation
		want models.TableStatus
	}{
		{"available", base, nil, models.TableAvailable},
		{"occupied beats reservation", occupied, confirmed, models.TableOccupied},
		{"confirmed today", base, confirmed, models.TablePending},
		{"confirmed beats unavailable", off, confirmed, models.TablePending},
		{"pending reservation ignored", base, pending, models.TableAvailable},
		{"other day ignored", base, tomorrow, models.TableAvailable},
		{"unavailable", off, nil, models.TableUnavailable},
	}
	for _, tt := range tests {
		if got := Status(tt.t, tt.res, today); got != tt.want {
			t.Errorf("%s: Status = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestForceStatusOverrides(t *testing.T) {
	p, _ := loaded(t, true, table(1, "INTERIOR"))
	msg, err := p.ForceStatus(1, models.TableOccupied)
	if err != nil {
		t.Fatalf("ForceStatus: %v", err)
	}
	if msg != "Estado de mesa actualizado a Ocupada" {
		t.Errorf("msg = %q", msg)
	}
	if tb, _ := p.Table(1); tb.Status != models.TableOccupied {
		t.Errorf("status = %v, want occupied", tb.Status)
	}
	p.ClearOverride(1)
	if tb, _ := p.Table(1); tb.Status != models.TableAvailable {
		t.Errorf("status after clear = %v", tb.Status)
	}
	if _, err := p.ForceStatus(42, models.TableOccupied); !errors.Is(err, ErrUnknownTable) {
		t.Errorf("err = %v, want ErrUnknownTable", err)
	}
}

func TestEditingNeedsAdminAndSelection(t *testing.T) {
	ro, _ := loaded(t, false, table(1, "INTERIOR"))
	ro.Select(1)
	if _, err := ro.Move(context.Background(), 1, 1); !errors.Is(err, ErrReadOnly) {
		t.Errorf("read-only Move err = %v", err)
	}

	p, _ := loaded(t, true, table(1, "INTERIOR"))
	if _, err := p.Rotate(context.Background(), Right); !errors.Is(err, ErrNoSelection) {
		t.Errorf("Rotate without selection err = %v", err)
	}
	if err := p.Select(7); !errors.Is(err, ErrUnknownTable) {
		t.Errorf("Select unknown err = %v", err)
	}
}

func TestRotateNormalizes(t *testing.T) {
	p, repo := loaded(t, true, table(1, "INTERIOR"))
	p.Select(1)

	tb, err := p.Rotate(context.Background(), Left)
	if err != nil {
		t.Fatalf("Rotate: %v", err)
	}
	if tb.Rotation != 345 {
		t.Errorf("Rotation = %v, want 345", tb.Rotation)
	}
	if len(repo.updates) != 1 || repo.updates[0].Rotation != 345 {
		t.Errorf("persisted = %+v", repo.updates)
	}

	for _, tt := range []struct{ in, want float64 }{{360, 0}, {-15, 345}, {375, 15}, {-720, 0}} {
		if got := NormalizeRotation(tt.in); got != tt.want {
			t.Errorf("NormalizeRotation(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestResizeClamps(t *testing.T) {
	p, _ := loaded(t, true, table(1, "INTERIOR"))
	p.Select(1)
	tb, err := p.Resize(context.Background(), 10, 45)
	if err != nil {
		t.Fatalf("Resize: %v", err)
	}
	if tb.Width != MinSide || tb.Height != 45 {
		t.Errorf("size = %vx%v, want 30x45", tb.Width, tb.Height)
	}
}

func TestFailedSaveKeepsTable(t *testing.T) {
	p, repo := loaded(t, true, table(1, "INTERIOR"))
	p.Select(1)
	repo.failSave = true
	if _, err := p.Move(context.Background(), 500, 500); err == nil {
		t.Fatal("expected error")
	}
	if tb, _ := p.Table(1); tb.X != 100 || tb.Y != 100 {
		t.Errorf("position = %v,%v, want unchanged", tb.X, tb.Y)
	}
}

func TestDuplicateAndCreate(t *testing.T) {
	src := table(1, "INTERIOR")
	src.Nombre = "Ventana"
	p, _ := loaded(t, true, src)
	p.Select(1)

	dup, err := p.Duplicate(context.Background())
	if err != nil {
		t.Fatalf("Duplicate: %v", err)
	}
	if dup.Nombre != "Ventana (copia)" || dup.X != 150 || dup.Y != 150 {
		t.Errorf("dup = %+v", dup)
	}
	if p.Selected() != dup.ID {
		t.Errorf("Selected = %d, want the copy", p.Selected())
	}

	round, err := p.Create(context.Background(), models.ShapeRound, 10, 20)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if round.Width != 80 || round.Height != 80 || round.Capacidad != 6 || round.Nombre != "Mesa 3" {
		t.Errorf("round = %+v", round)
	}
	rect := NewTableInput(models.ShapeRectangular, 0, 0)
	if rect.Width != 100 || rect.Height != 60 || rect.Capacidad != 4 {
		t.Errorf("rect defaults = %+v", rect)
	}
}

func TestDelete(t *testing.T) {
	p, repo := loaded(t, true, table(1, "INTERIOR"), table(2, "INTERIOR"))
	p.Select(2)
	p.ForceStatus(2, models.TableOccupied)
	if err := p.Delete(context.Background()); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if repo.deletedID != 2 || len(p.Tables()) != 1 || p.Selected() != 0 {
		t.Errorf("after delete: repo=%d tables=%d selected=%d", repo.deletedID, len(p.Tables()), p.Selected())
	}
}

func TestMetrics(t *testing.T) {
	a := table(1, "INTERIOR")
	b := table(2, "INTERIOR")
	b.OcupadaAhora = true
	b.Capacidad = 6
	c := table(3, "INTERIOR")
	c.Disponible = false
	p, _ := loaded(t, false, a, b, c)

	got := p.Metrics()
	want := Metrics{Total: 3, Available: 1, Occupied: 1, OccupiedSeats: 6, TotalSeats: 14}
	if got != want {
		t.Errorf("Metrics = %+v, want %+v", got, want)
	}
}

func TestRender(t *testing.T) {
	a := table(1, "INTERIOR")
	a.X, a.Y = 0, 0
	b := table(2, "INTERIOR")
	b.Tipo = models.ShapeRound
	b.X, b.Y, b.Width, b.Height = 100, 50, 100, 50
	p, _ := loaded(t, false, a, b)

	out := p.Render(20, 4)
	lines := strings.Split(out, "\n")
	if len(lines) != 4 {
		t.Fatalf("lines = %d, want 4:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "[") || !strings.Contains(lines[0], "1") {
		t.Errorf("first table not drawn at the origin:\n%s", out)
	}
	if !strings.Contains(out, "(") || !strings.Contains(out, "2") {
		t.Errorf("round table missing:\n%s", out)
	}
	if empty := New(&memRepo{}, Options{}).Render(10, 2); strings.TrimSpace(empty) != "" {
		t.Errorf("empty plan rendered %q", empty)
	}
}
