package listview

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/marcus/rsv/internal/api"
	"github.com/marcus/rsv/internal/models"
	"github.com/marcus/rsv/internal/store"
	"github.com/marcus/rsv/internal/validate"
)

var testNow = time.Date(2025, 5, 20, 10, 0, 0, 0, time.UTC)

const today = "2025-05-20"

func at(hour int) time.Time {
	return time.Date(2025, 5, 20, hour, 0, 0, 0, time.UTC)
}

type fakeService struct {
	mu      sync.Mutex
	calls   int
	filters []models.ReservationFilter
	lists   map[string][]models.Reservation // by nombre
	listErr error
	started chan string

	created   *models.CreateResult
	createErr error
	updated   *models.Reservation
	updateErr error
	statusErr error
	deleteErr error
	deleted   []int64
}

func (f *fakeService) hit() {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
}

func (f *fakeService) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeService) ListReservations(ctx context.Context, filter models.ReservationFilter) ([]models.Reservation, error) {
	f.mu.Lock()
	f.calls++
	f.filters = append(f.filters, filter)
	started := f.started
	list := append([]models.Reservation(nil), f.lists[filter.Nombre]...)
	err := f.listErr
	f.mu.Unlock()

	if started != nil {
		started <- filter.Nombre
	}
	if filter.Nombre == "slow" {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return list, err
}

func (f *fakeService) CreateReservation(ctx context.Context, in models.ReservationInput) (*models.CreateResult, error) {
	f.hit()
	return f.created, f.createErr
}

func (f *fakeService) UpdateReservation(ctx context.Context, id int64, in models.ReservationInput) (*models.Reservation, error) {
	f.hit()
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	if f.updated != nil {
		return f.updated, nil
	}
	return &models.Reservation{ID: id, NombreCliente: in.NombreCliente}, nil
}

func (f *fakeService) ChangeStatus(ctx context.Context, id int64, estado models.ReservationStatus) (*models.Reservation, error) {
	f.hit()
	if f.statusErr != nil {
		return nil, f.statusErr
	}
	return &models.Reservation{ID: id, Estado: estado}, nil
}

func (f *fakeService) DeleteReservation(ctx context.Context, id int64) error {
	f.hit()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.mu.Lock()
	f.deleted = append(f.deleted, id)
	f.mu.Unlock()
	return nil
}

type fakeShared struct {
	mu      sync.Mutex
	list    []models.Reservation
	reloads int
}

func (s *fakeShared) Snapshot() store.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return store.State{Reservations: s.list}
}

func (s *fakeShared) Reload(ctx context.Context) error {
	s.mu.Lock()
	s.reloads++
	s.mu.Unlock()
	return nil
}

func (s *fakeShared) Today() string { return today }

type toastSpy struct {
	mu     sync.Mutex
	toasts []models.Toast
}

func (t *toastSpy) ShowToast(msg string, typ models.ToastType, d time.Duration, r *models.Reservation) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.toasts = append(t.toasts, models.Toast{Message: msg, Type: typ, Duration: d})
	return "t"
}

func (t *toastSpy) last() models.Toast {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.toasts) == 0 {
		return models.Toast{}
	}
	return t.toasts[len(t.toasts)-1]
}

type fixture struct {
	svc    *fakeService
	shared *fakeShared
	toasts *toastSpy
	now    time.Time
	c      *Controller
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		svc:    &fakeService{lists: map[string][]models.Reservation{}},
		shared: &fakeShared{},
		toasts: &toastSpy{},
		now:    testNow,
	}
	f.c = New(f.svc, f.shared, f.toasts, Options{
		CloseDelay: 10 * time.Millisecond,
		Now:        func() time.Time { return f.now },
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	return f
}

func TestDefaultFilterUsesStore(t *testing.T) {
	f := newFixture(t)
	f.shared.list = []models.Reservation{{ID: 1}, {ID: 2}}

	if !f.c.IsDefault() {
		t.Fatal("new controller should use the default filter")
	}
	if got := f.c.Filter().Fecha; got != today {
		t.Errorf("Fecha = %q, want %q", got, today)
	}
	if got := f.c.Active(); len(got) != 2 {
		t.Errorf("Active = %+v, want store list", got)
	}
	if f.svc.callCount() != 0 {
		t.Error("default view must not fetch on its own")
	}
}

func TestSetFilterFetchesSorted(t *testing.T) {
	f := newFixture(t)
	f.svc.lists["Ana"] = []models.Reservation{
		{ID: 1, Fecha: at(12)},
		{ID: 3, Fecha: at(20)},
		{ID: 2, Fecha: at(20)},
	}

	if err := f.c.SetFilter(context.Background(), models.ReservationFilter{Nombre: " Ana "}); err != nil {
		t.Fatalf("SetFilter: %v", err)
	}
	if f.c.IsDefault() {
		t.Error("name filter should not be default")
	}
	if got := f.svc.filters[0]; got.Nombre != "Ana" || got.Fecha != today {
		t.Errorf("filter sent = %+v", got)
	}

	got := f.c.Active()
	want := []int64{3, 2, 1}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("Active[%d] = %d, want %d", i, got[i].ID, id)
		}
	}

	if err := f.c.ResetFilter(context.Background()); err != nil {
		t.Fatalf("ResetFilter: %v", err)
	}
	if !f.c.IsDefault() {
		t.Error("ResetFilter should restore the default view")
	}
}

func TestSetFilterSupersedesInFlightFetch(t *testing.T) {
	f := newFixture(t)
	f.svc.started = make(chan string, 2)
	f.svc.lists["fast"] = []models.Reservation{{ID: 9}}

	done := make(chan error, 1)
	go func() {
		done <- f.c.SetFilter(context.Background(), models.ReservationFilter{Nombre: "slow"})
	}()
	<-f.svc.started

	if err := f.c.SetFilter(context.Background(), models.ReservationFilter{Nombre: "fast"}); err != nil {
		t.Fatalf("SetFilter fast: %v", err)
	}
	<-f.svc.started

	select {
	case err := <-done:
		if !errors.Is(err, ErrSuperseded) {
			t.Errorf("slow fetch err = %v, want ErrSuperseded", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("slow fetch was not cancelled")
	}
	if got := f.c.Active(); len(got) != 1 || got[0].ID != 9 {
		t.Errorf("Active = %+v, want the newer result", got)
	}
	if f.c.Loading() {
		t.Error("still loading")
	}
}

func TestSetFilterError(t *testing.T) {
	f := newFixture(t)
	f.svc.listErr = errors.New("down")

	err := f.c.SetFilter(context.Background(), models.ReservationFilter{Estado: models.StatusPending})
	if err == nil {
		t.Fatal("expected error")
	}
	if f.c.Err() == nil || !strings.HasPrefix(f.c.Err().Error(), LoadErrorMessage) {
		t.Errorf("Err = %v", f.c.Err())
	}
	if len(f.c.Active()) != 0 {
		t.Error("failed fetch should leave an empty list")
	}
}

func TestDiff(t *testing.T) {
	next := []models.Reservation{{ID: 1}, {ID: 2}, {ID: 5}}
	tests := []struct {
		name string
		prev map[int64]struct{}
		want []int64
	}{
		{"empty prev", map[int64]struct{}{}, nil},
		{"one new", map[int64]struct{}{1: {}, 2: {}}, []int64{5}},
		{"none new", map[int64]struct{}{1: {}, 2: {}, 5: {}}, nil},
	}
	for _, tt := range tests {
		got := Diff(tt.prev, next)
		if len(got) != len(tt.want) {
			t.Errorf("%s: Diff = %v, want %v", tt.name, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("%s: Diff = %v, want %v", tt.name, got, tt.want)
			}
		}
	}
}

func TestNewIDsHighlightExpires(t *testing.T) {
	f := newFixture(t)
	f.c.ObserveStore([]models.Reservation{{ID: 1}})
	if ids := f.c.NewIDs(); ids != nil {
		t.Errorf("first list highlighted %v", ids)
	}

	f.c.ObserveStore([]models.Reservation{{ID: 1}, {ID: 2}})
	if ids := f.c.NewIDs(); len(ids) != 1 || ids[0] != 2 {
		t.Errorf("NewIDs = %v, want [2]", ids)
	}

	f.now = f.now.Add(HighlightFor)
	if ids := f.c.NewIDs(); ids != nil {
		t.Errorf("highlight should expire, got %v", ids)
	}
}

func TestChangeStatusFilteredSplicesAndPatchesModals(t *testing.T) {
	f := newFixture(t)
	f.svc.lists["Ana"] = []models.Reservation{{ID: 4, NombreCliente: "Ana", Estado: models.StatusPending, Fecha: at(21)}}
	f.c.SetFilter(context.Background(), models.ReservationFilter{Nombre: "Ana"})
	f.c.View(4)
	f.c.BeginEdit(4)

	if _, err := f.c.ChangeStatus(context.Background(), 4, models.StatusConfirmed); err != nil {
		t.Fatalf("ChangeStatus: %v", err)
	}
	got := f.c.Active()[0]
	if got.Estado != models.StatusConfirmed || got.NombreCliente != "Ana" {
		t.Errorf("spliced = %+v", got)
	}
	if v := f.c.Viewing(); v == nil || v.Estado != models.StatusConfirmed {
		t.Errorf("view = %+v", v)
	}
	if _, in, ok := f.c.Editing(); !ok || in.NombreCliente != "Ana" || in.Hora != "21:00" {
		t.Errorf("edit input = %+v", in)
	}
	if f.shared.reloads != 0 {
		t.Error("filtered change must not reload the store")
	}
}

func TestChangeStatusDefaultReloadsStore(t *testing.T) {
	f := newFixture(t)
	f.shared.list = []models.Reservation{{ID: 4}}
	if _, err := f.c.ChangeStatus(context.Background(), 4, models.StatusCancelled); err != nil {
		t.Fatalf("ChangeStatus: %v", err)
	}
	if f.shared.reloads != 1 {
		t.Errorf("reloads = %d, want 1", f.shared.reloads)
	}

	f.svc.statusErr = &api.APIError{Status: 500, Message: "fallo"}
	if _, err := f.c.ChangeStatus(context.Background(), 4, models.StatusPending); err == nil {
		t.Fatal("expected error")
	}
	if tt := f.toasts.last(); tt.Message != "fallo" || tt.Type != models.ToastError {
		t.Errorf("toast = %+v", tt)
	}
}

func TestConfirmDelete(t *testing.T) {
	f := newFixture(t)
	f.svc.lists["Ana"] = []models.Reservation{{ID: 1}, {ID: 2}}
	f.c.SetFilter(context.Background(), models.ReservationFilter{Nombre: "Ana"})

	if err := f.c.ConfirmDelete(context.Background()); !errors.Is(err, ErrNoPendingDelete) {
		t.Errorf("err = %v, want ErrNoPendingDelete", err)
	}
	if err := f.c.RequestDelete(99); !errors.Is(err, ErrNotInList) {
		t.Errorf("err = %v, want ErrNotInList", err)
	}

	f.c.RequestDelete(2)
	f.c.CancelDelete()
	if f.c.PendingDelete() != nil {
		t.Error("CancelDelete should clear the pending entry")
	}

	f.c.RequestDelete(2)
	f.c.View(2)
	f.svc.deleteErr = errors.New("nope")
	if err := f.c.ConfirmDelete(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if p := f.c.PendingDelete(); p == nil || p.ID != 2 {
		t.Error("failed delete should stay pending")
	}

	f.svc.deleteErr = nil
	if err := f.c.ConfirmDelete(context.Background()); err != nil {
		t.Fatalf("ConfirmDelete: %v", err)
	}
	if got := f.c.Active(); len(got) != 1 || got[0].ID != 1 {
		t.Errorf("Active = %+v", got)
	}
	if f.c.Viewing() != nil {
		t.Error("view on the deleted reservation should close")
	}
	if f.c.PendingDelete() != nil {
		t.Error("pending delete not cleared")
	}
}

func TestSaveEditRequiresContactBeforeNetwork(t *testing.T) {
	f := newFixture(t)
	f.shared.list = []models.Reservation{{ID: 7, NombreCliente: "Luis", NumPersonas: 2, Fecha: at(21), Telefono: "600111222"}}

	in, err := f.c.BeginEdit(7)
	if err != nil {
		t.Fatalf("BeginEdit: %v", err)
	}
	in.Telefono = "123"
	f.c.SetEditInput(in)

	_, err = f.c.SaveEdit(context.Background())
	if _, ok := validate.AsErrors(err); !ok {
		t.Fatalf("err = %v, want validation errors", err)
	}
	if f.svc.callCount() != 0 {
		t.Error("invalid edit reached the network")
	}
	if tt := f.toasts.last(); tt.Message != ContactToastMessage || tt.Duration != 5*time.Second {
		t.Errorf("toast = %+v", tt)
	}
}

func TestSaveEditClosesAfterDelay(t *testing.T) {
	f := newFixture(t)
	f.shared.list = []models.Reservation{{ID: 7, NombreCliente: "Luis", NumPersonas: 2, Fecha: at(21), Email: "l@x.es"}}
	f.c.BeginEdit(7)

	if _, err := f.c.SaveEdit(context.Background()); err != nil {
		t.Fatalf("SaveEdit: %v", err)
	}
	if tt := f.toasts.last(); tt.Message != EditSavedMessage || tt.Duration != 3*time.Second {
		t.Errorf("toast = %+v", tt)
	}
	if _, _, ok := f.c.Editing(); !ok {
		t.Error("edit closed before the delay")
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, _, ok := f.c.Editing(); !ok {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Error("edit still open after the close delay")
}

func TestSaveEditFailureToast(t *testing.T) {
	f := newFixture(t)
	f.shared.list = []models.Reservation{{ID: 7, NombreCliente: "Luis", NumPersonas: 2, Fecha: at(21), Email: "l@x.es"}}
	f.c.BeginEdit(7)
	f.svc.updateErr = errors.New("boom")

	if _, err := f.c.SaveEdit(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if tt := f.toasts.last(); tt.Message != "No se pudo actualizar la reserva" || tt.Duration != 6*time.Second {
		t.Errorf("toast = %+v", tt)
	}
	if _, _, ok := f.c.Editing(); !ok {
		t.Error("failed save should keep the form open")
	}
}

func TestSaveEditFilteredTakesClearedFields(t *testing.T) {
	f := newFixture(t)
	mesa := int64(3)
	f.svc.lists["Ana"] = []models.Reservation{{
		ID: 4, NombreCliente: "Ana", NumPersonas: 2, Fecha: at(21), Estado: models.StatusPending,
		Telefono: "600123456", Email: "ana@x.es", Notas: "alergia",
		MesaID: &mesa, Mesa: &models.Table{ID: 3, Nombre: "Terraza 3"},
	}}
	f.c.SetFilter(context.Background(), models.ReservationFilter{Nombre: "Ana"})
	f.c.View(4)

	in, err := f.c.BeginEdit(4)
	if err != nil {
		t.Fatalf("BeginEdit: %v", err)
	}
	in.Notas = ""
	in.Telefono = ""
	f.c.SetEditInput(in)
	f.svc.updated = &models.Reservation{
		ID: 4, NombreCliente: "Ana", NumPersonas: 2, Fecha: at(21), Estado: models.StatusPending,
		Email: "ana@x.es", MesaID: &mesa,
	}

	if _, err := f.c.SaveEdit(context.Background()); err != nil {
		t.Fatalf("SaveEdit: %v", err)
	}
	row := f.c.Active()[0]
	if row.Notas != "" || row.Telefono != "" {
		t.Errorf("list row notas = %q telefono = %q, want both cleared", row.Notas, row.Telefono)
	}
	if row.TableName() != "Terraza 3" {
		t.Errorf("TableName() = %q, want %q", row.TableName(), "Terraza 3")
	}
	v := f.c.Viewing()
	if v == nil {
		t.Fatal("detail view closed after save")
	}
	if v.Notas != "" || v.Telefono != "" {
		t.Errorf("detail notas = %q telefono = %q, want both cleared", v.Notas, v.Telefono)
	}
	if _, got, ok := f.c.Editing(); ok && (got.Notas != "" || got.Telefono != "") {
		t.Errorf("edit input = %+v, want cleared notes and phone", got)
	}
}

func TestMergeKeepsFieldsMissingFromPatch(t *testing.T) {
	base := models.Reservation{ID: 4, NombreCliente: "Ana", Notas: "alergia", Estado: models.StatusPending}
	got := merge(base, models.Reservation{ID: 4, Estado: models.StatusConfirmed})
	if got.Notas != "alergia" || got.NombreCliente != "Ana" || got.Estado != models.StatusConfirmed {
		t.Errorf("merge() = %+v", got)
	}
}

func TestClassify(t *testing.T) {
	tables := &models.Table{ID: 3, Nombre: "Mesa 3", Capacidad: 4}
	base := models.Reservation{ID: 1, NombreCliente: "Eva"}
	withTable := base
	withTable.Mesa = tables

	tests := []struct {
		name    string
		res     models.CreateResult
		outcome Outcome
		msg     string
		typ     models.ToastType
		label   string
	}{
		{"reserved", models.CreateResult{Reservation: withTable}, OutcomeReserved,
			"¡Reserva creada para Eva!", models.ToastSuccess, "Mesa 3"},
		{"waitlist", models.CreateResult{Reservation: base, Waitlist: true}, OutcomeWaitlisted,
			"¡Eva agregado a la lista de espera!", models.ToastSuccess, ""},
		{"manual suggested", models.CreateResult{Reservation: base, ModoManual: true, MesaSugerida: tables}, OutcomeManualSuggested,
			"Reserva creada para Eva. Se recomienda la mesa Mesa 3 (4 personas). Puedes asignarla manualmente.", models.ToastInfo, "Mesa 3"},
		{"manual no table", models.CreateResult{Reservation: base, ModoManual: true}, OutcomeManualNoTable,
			"Reserva creada para Eva. No hay mesas disponibles para este horario. Puedes asignar una mesa manualmente o agregar a la lista de espera.", models.ToastInfo, NoTableLabel},
	}
	for _, tt := range tests {
		out, typ, _ := Classify(tt.res)
		if out.Outcome != tt.outcome {
			t.Errorf("%s: Outcome = %v, want %v", tt.name, out.Outcome, tt.outcome)
		}
		if out.Message != tt.msg {
			t.Errorf("%s: Message = %q, want %q", tt.name, out.Message, tt.msg)
		}
		if typ != tt.typ {
			t.Errorf("%s: type = %q, want %q", tt.name, typ, tt.typ)
		}
		if out.TableLabel != tt.label {
			t.Errorf("%s: TableLabel = %q, want %q", tt.name, out.TableLabel, tt.label)
		}
	}
}

func TestCreate(t *testing.T) {
	f := newFixture(t)
	in := models.ReservationInput{
		NombreCliente: "Eva",
		Telefono:      "600111222",
		NumPersonas:   2,
		Fecha:         "2025-05-21",
		Hora:          "20:00",
	}

	bad := in
	bad.Fecha = "2025-05-19"
	if _, err := f.c.Create(context.Background(), bad); err == nil {
		t.Fatal("past date accepted")
	}
	if f.svc.callCount() != 0 {
		t.Fatal("invalid create reached the network")
	}

	f.svc.created = &models.CreateResult{Reservation: models.Reservation{ID: 5}, Waitlist: true}
	out, err := f.c.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if out.Outcome != OutcomeWaitlisted || f.shared.reloads != 0 {
		t.Errorf("waitlisted outcome = %v reloads = %d", out.Outcome, f.shared.reloads)
	}

	f.svc.created = &models.CreateResult{Reservation: models.Reservation{ID: 6, NombreCliente: "Eva"}}
	if _, err := f.c.Create(context.Background(), in); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if f.shared.reloads != 1 {
		t.Errorf("reloads = %d, want 1", f.shared.reloads)
	}

	f.svc.created, f.svc.createErr = nil, errors.New("x")
	f.c.Create(context.Background(), in)
	if tt := f.toasts.last(); tt.Message != "No se pudo crear la reserva" || tt.Duration != 7*time.Second {
		t.Errorf("toast = %+v", tt)
	}
}

func TestSummarize(t *testing.T) {
	now := at(18)
	list := []models.Reservation{
		{ID: 1, Estado: models.StatusPending, Fecha: at(19)},
		{ID: 2, Estado: models.StatusConfirmed, Fecha: at(20)},
		{ID: 3, Estado: models.StatusConfirmed, Fecha: at(21)},
		{ID: 4, Estado: models.StatusCancelled, Fecha: at(19)},
		{ID: 5, Estado: models.StatusPending, Fecha: at(18).AddDate(0, 0, 1)},
	}
	got := Summarize(list, today, now)
	want := Summary{Pendientes: 1, Confirmadas: 2, Total: 4, Proximas: 2}
	if got != want {
		t.Errorf("Summarize = %+v, want %+v", got, want)
	}

	next, ok := NextReservation(list, now)
	if !ok || next.ID != 1 {
		t.Errorf("NextReservation = %+v %v, want 1", next, ok)
	}
	if _, ok := NextReservation(list, at(23).AddDate(0, 0, 2)); ok {
		t.Error("no reservation should be upcoming")
	}
}
