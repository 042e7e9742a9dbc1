package push

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		event string
		want  Kind
	}{
		{"reserva_creada", KindReservations},
		{"reservation.updated", KindReservations},
		{"waitlist_update", KindWaitlist},
		{"lista_espera", KindWaitlist},
		{"table_update", KindOther},
	}
	for _, tt := range tests {
		if got := Classify(tt.event); got != tt.want {
			t.Errorf("Classify(%q) = %v, want %v", tt.event, got, tt.want)
		}
	}
}

func TestBackoff(t *testing.T) {
	min, max := time.Second, 10*time.Second
	tests := []struct {
		n    int
		want time.Duration
	}{
		{0, time.Second},
		{1, 2 * time.Second},
		{3, 8 * time.Second},
		{4, 10 * time.Second},
		{50, 10 * time.Second},
	}
	for _, tt := range tests {
		if got := Backoff(tt.n, min, max); got != tt.want {
			t.Errorf("Backoff(%d) = %v, want %v", tt.n, got, tt.want)
		}
	}
}

func TestListenerDispatchesAndReconnects(t *testing.T) {
	var conns atomic.Int32
	var auth atomic.Value
	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth.Store(r.Header.Get("Authorization"))
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer c.Close()
		n := conns.Add(1)
		if n == 1 {
			c.WriteMessage(websocket.TextMessage, []byte(`{"event":"reserva_creada","data":{"id":1}}`))
			c.WriteMessage(websocket.TextMessage, []byte(`not json`))
			c.WriteMessage(websocket.TextMessage, []byte(`{"event":"table_update"}`))
			// drop the connection to force a reconnect
			return
		}
		c.WriteMessage(websocket.TextMessage, []byte(`{"event":"waitlist_update"}`))
		c.ReadMessage()
	}))
	t.Cleanup(srv.Close)

	reservations := make(chan struct{}, 4)
	waitlist := make(chan struct{}, 4)
	l := New(Options{
		URL:            "ws" + strings.TrimPrefix(srv.URL, "http"),
		Token:          "tok",
		OnReservations: func() { reservations <- struct{}{} },
		OnWaitlist:     func() { waitlist <- struct{}{} },
		MinBackoff:     5 * time.Millisecond,
		MaxBackoff:     20 * time.Millisecond,
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	for name, ch := range map[string]chan struct{}{"reservations": reservations, "waitlist": waitlist} {
		select {
		case <-ch:
		case <-time.After(3 * time.Second):
			t.Fatalf("no %s nudge", name)
		}
	}
	if got := auth.Load(); got != "Bearer tok" {
		t.Errorf("Authorization = %v", got)
	}
	if len(reservations) != 0 {
		t.Error("unrelated events must not nudge")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not stop on cancel")
	}
}
