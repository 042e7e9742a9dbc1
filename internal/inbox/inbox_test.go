package inbox

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/marcus/rsv/internal/models"
)

func memStore(t *testing.T) *Store {
	t.Helper()
	conn, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	// every pooled connection would get its own empty :memory: database
	conn.SetMaxOpenConns(1)
	s, err := New(conn)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func note(id string, resID, seq int64) models.Notification {
	return models.Notification{
		ID:            id,
		ReservationID: resID,
		Reservation:   models.Reservation{ID: resID, NombreCliente: "Cliente", NumPersonas: 2},
		CreatedAt:     time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC),
		Seq:           seq,
	}
}

func TestSaveLoadOrder(t *testing.T) {
	s := memStore(t)
	for _, n := range []models.Notification{note("a", 10, 1), note("b", 12, 2), note("c", 11, 2)} {
		if err := s.Save(n); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := []string{"b", "c", "a"}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("got[%d] = %s, want %s", i, got[i].ID, id)
		}
	}
	if got[0].Reservation.NombreCliente != "Cliente" {
		t.Errorf("reservation not round-tripped: %+v", got[0].Reservation)
	}
}

func TestReadAndDelete(t *testing.T) {
	s := memStore(t)
	s.Save(note("a", 1, 1))
	s.Save(note("b", 2, 1))

	if err := s.MarkRead("a"); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	got, _ := s.Load()
	unread := 0
	for _, n := range got {
		if !n.Read {
			unread++
		}
	}
	if unread != 1 {
		t.Errorf("unread = %d, want 1", unread)
	}

	if err := s.MarkAllRead(); err != nil {
		t.Fatalf("MarkAllRead: %v", err)
	}
	if err := s.MarkAllRead(); err != nil {
		t.Fatalf("second MarkAllRead: %v", err)
	}
	if err := s.Delete("b"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	got, _ = s.Load()
	if len(got) != 1 || got[0].ID != "a" || !got[0].Read {
		t.Errorf("after delete = %+v", got)
	}
}

func TestCursor(t *testing.T) {
	s := memStore(t)
	if _, ok, err := s.Cursor(); ok || err != nil {
		t.Fatalf("fresh cursor ok=%v err=%v", ok, err)
	}
	s.SetCursor(41)
	s.SetCursor(42)
	v, ok, err := s.Cursor()
	if err != nil || !ok || v != 42 {
		t.Errorf("Cursor = %d, %v, %v; want 42", v, ok, err)
	}
}

func TestOpenPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	s.Save(note("x", 5, 3))
	s.SetCursor(5)
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	got, _ := s.Load()
	if len(got) != 1 || got[0].ID != "x" {
		t.Errorf("notifications after reopen = %+v", got)
	}
	if v, ok, _ := s.Cursor(); !ok || v != 5 {
		t.Errorf("cursor after reopen = %d %v", v, ok)
	}
}

func TestOpenDriver(t *testing.T) {
	for _, driver := range []string{"", DriverPure, DriverCgo} {
		t.Run("driver "+driver, func(t *testing.T) {
			s, err := OpenDriver(driver, filepath.Join(t.TempDir(), FileName))
			if err != nil {
				t.Fatalf("OpenDriver(%q): %v", driver, err)
			}
			defer s.Close()
			if err := s.Save(note("a", 1, 1)); err != nil {
				t.Fatalf("Save: %v", err)
			}
			got, err := s.Load()
			if err != nil || len(got) != 1 {
				t.Errorf("Load() = %+v, %v", got, err)
			}
		})
	}

	if _, err := OpenDriver("postgres", filepath.Join(t.TempDir(), FileName)); err == nil {
		t.Error("expected error for unknown driver")
	}
}
