package models

import (
	"encoding/json"
	"testing"
)

func TestParseTableStatusAliases(t *testing.T) {
	tests := []struct {
		in   string
		want TableStatus
	}{
		{"available", TableAvailable},
		{"Disponible", TableAvailable},
		{"occupied", TableOccupied},
		{"ocupada", TableOccupied},
		{"reserved", TablePending},
		{"reservada", TablePending},
		{"en espera", TablePending},
		{"pending", TablePending},
		{"no disponible", TableUnavailable},
		{"unavailable", TableUnavailable},
	}
	for _, tt := range tests {
		got, err := ParseTableStatus(tt.in)
		if err != nil {
			t.Fatalf("ParseTableStatus(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseTableStatus(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if _, err := ParseTableStatus("sideways"); err == nil {
		t.Error("expected error for unknown status")
	}
}

func TestParseReservationStatus(t *testing.T) {
	tests := map[string]ReservationStatus{
		"pendiente":  StatusPending,
		"CONFIRMADA": StatusConfirmed,
		"cancelled":  StatusCancelled,
		"Completed":  StatusCompleted,
	}
	for in, want := range tests {
		got, err := ParseReservationStatus(in)
		if err != nil {
			t.Fatalf("ParseReservationStatus(%q): %v", in, err)
		}
		if got != want {
			t.Errorf("ParseReservationStatus(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestReservationStatusNextCycles(t *testing.T) {
	s := StatusPending
	for i := 0; i < len(ReservationStatuses()); i++ {
		s = s.Next()
	}
	if s != StatusPending {
		t.Errorf("full cycle ended at %s, want %s", s, StatusPending)
	}
}

func TestTableUnmarshalDefaults(t *testing.T) {
	var tbl Table
	if err := json.Unmarshal([]byte(`{"id":7,"tipo":"redonda"}`), &tbl); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if tbl.Nombre != "Mesa 7" {
		t.Errorf("Nombre = %q, want Mesa 7", tbl.Nombre)
	}
	if tbl.Tipo != ShapeRound {
		t.Errorf("Tipo = %q, want round", tbl.Tipo)
	}
	if tbl.Width != 80 || tbl.Height != 80 {
		t.Errorf("size = %vx%v, want 80x80", tbl.Width, tbl.Height)
	}
	if tbl.X != 100 || tbl.Y != 100 {
		t.Errorf("pos = %v,%v, want 100,100", tbl.X, tbl.Y)
	}
	if !tbl.Disponible {
		t.Error("Disponible should default to true")
	}
	if tbl.Capacidad != 4 {
		t.Errorf("Capacidad = %d, want 4", tbl.Capacidad)
	}
}

func TestTableUnmarshalKeepsExplicitValues(t *testing.T) {
	var tbl Table
	raw := `{"id":2,"nombre":"Terraza 1","x":0,"y":12.5,"width":140,"height":70,"disponible":false,"status":"ocupada"}`
	if err := json.Unmarshal([]byte(raw), &tbl); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if tbl.X != 0 {
		t.Errorf("X = %v, want 0 (explicit zero kept)", tbl.X)
	}
	if tbl.Disponible {
		t.Error("Disponible = true, want false")
	}
	if tbl.Status != TableOccupied {
		t.Errorf("Status = %v, want occupied", tbl.Status)
	}
}

func TestMaxID(t *testing.T) {
	list := []Reservation{{ID: 3}, {ID: 9}, {ID: 4}}
	if got := MaxID(list); got != 9 {
		t.Errorf("MaxID = %d, want 9", got)
	}
	if got := MaxID(nil); got != 0 {
		t.Errorf("MaxID(nil) = %d, want 0", got)
	}
}
