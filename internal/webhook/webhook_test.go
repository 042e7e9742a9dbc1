package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/marcus/rsv/internal/models"
)

func batch() []models.Notification {
	mesa := int64(4)
	return []models.Notification{
		{
			ID:            "n-1",
			ReservationID: 12,
			Reservation: models.Reservation{
				ID:            12,
				NombreCliente: "Ana",
				NumPersonas:   3,
				Fecha:         time.Date(2026, 2, 18, 21, 30, 0, 0, time.UTC),
				Estado:        models.StatusPending,
				MesaID:        &mesa,
			},
		},
		{ID: "n-2", ReservationID: 11, Reservation: models.Reservation{ID: 11, NombreCliente: "Luis"}},
	}
}

func TestBuildPayload(t *testing.T) {
	now := time.Date(2026, 2, 18, 10, 0, 0, 0, time.UTC)
	p := BuildPayload("La Tasca", batch(), now)

	if p.Event != EventNew || p.Restaurant != "La Tasca" {
		t.Errorf("header = %q %q", p.Event, p.Restaurant)
	}
	if p.Timestamp != "2026-02-18T10:00:00Z" {
		t.Errorf("Timestamp = %q", p.Timestamp)
	}
	if len(p.Notifications) != 2 {
		t.Fatalf("len(Notifications) = %d, want 2", len(p.Notifications))
	}
	first := p.Notifications[0]
	if first.Fecha != "2026-02-18T21:30:00.000Z" {
		t.Errorf("Fecha = %q", first.Fecha)
	}
	if first.Mesa != "Mesa 4" || first.Estado != "PENDIENTE" || first.NumPersonas != 3 {
		t.Errorf("first = %+v", first)
	}
}

func TestBuildPayload_Empty(t *testing.T) {
	p := BuildPayload("", nil, time.Now())
	if len(p.Notifications) != 0 {
		t.Errorf("len(Notifications) = %d, want 0", len(p.Notifications))
	}
}

func TestDispatch_Success(t *testing.T) {
	var gotBody []byte
	var gotHeaders http.Header

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeaders = r.Header
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(200)
	}))
	defer srv.Close()

	err := Dispatch(context.Background(), nil, srv.URL, "", BuildPayload("x", batch(), time.Now()))
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	if gotHeaders.Get("Content-Type") != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", gotHeaders.Get("Content-Type"))
	}
	if gotHeaders.Get(TimestampHeader) == "" {
		t.Error("timestamp header missing")
	}
	if gotHeaders.Get(SignatureHeader) != "" {
		t.Error("signature should be absent without secret")
	}

	var p Payload
	if err := json.Unmarshal(gotBody, &p); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if len(p.Notifications) != 2 {
		t.Errorf("body notifications = %d, want 2", len(p.Notifications))
	}
}

func TestDispatch_WithSecret(t *testing.T) {
	secret := "test-hmac-key"
	var gotBody []byte
	var gotHeaders http.Header

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeaders = r.Header
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(204)
	}))
	defer srv.Close()

	if err := Dispatch(context.Background(), nil, srv.URL, secret, Payload{Event: EventNew}); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	sig := gotHeaders.Get(SignatureHeader)
	if !strings.HasPrefix(sig, "sha256=") {
		t.Fatalf("signature = %q", sig)
	}
	if want := Sign(secret, gotHeaders.Get(TimestampHeader), gotBody); sig != want {
		t.Errorf("signature mismatch:\n  got:  %s\n  want: %s", sig, want)
	}
}

func TestDispatch_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(500)
	}))
	defer srv.Close()

	err := Dispatch(context.Background(), nil, srv.URL, "", Payload{})
	if err == nil {
		t.Fatal("expected error for 500 response")
	}
	if !strings.Contains(err.Error(), "status 500") {
		t.Errorf("error = %q, want to contain 'status 500'", err.Error())
	}
}

func TestSender(t *testing.T) {
	if NewSender("", "s", nil) != nil {
		t.Error("empty URL should disable the sender")
	}

	got := make(chan Payload, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var p Payload
		json.NewDecoder(r.Body).Decode(&p)
		got <- p
	}))
	defer srv.Close()

	s := NewSender(srv.URL, "", func() string { return "La Tasca" })
	if err := s.Deliver(context.Background(), nil); err != nil {
		t.Fatalf("empty Deliver: %v", err)
	}
	if err := s.Deliver(context.Background(), batch()); err != nil {
		t.Fatalf("Deliver: %v", err)
	}
	p := <-got
	if p.Restaurant != "La Tasca" || len(p.Notifications) != 2 {
		t.Errorf("payload = %+v", p)
	}
	if len(got) != 0 {
		t.Error("empty batch should not be posted")
	}
}
