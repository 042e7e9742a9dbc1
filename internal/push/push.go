// Package push listens on an optional websocket for backend change events
// and nudges the pollers so changes show up before the next tick.
package push

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

const (
	DefaultMinBackoff = time.Second
	DefaultMaxBackoff = time.Minute
	pongWait          = 60 * time.Second
)

// Message is one event from the backend
type Message struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Kind groups events by the list they affect
type Kind int

const (
	KindOther Kind = iota
	KindReservations
	KindWaitlist
)

// Classify maps an event name onto the list it invalidates
func Classify(event string) Kind {
	e := strings.ToLower(event)
	switch {
	case strings.Contains(e, "waitlist"), strings.Contains(e, "espera"):
		return KindWaitlist
	case strings.Contains(e, "reserva"), strings.Contains(e, "reservation"):
		return KindReservations
	}
	return KindOther
}

// Options configures a Listener
type Options struct {
	URL            string
	Token          string
	OnReservations func()
	OnWaitlist     func()
	MinBackoff     time.Duration
	MaxBackoff     time.Duration
	Logger         *slog.Logger
	Dialer         *websocket.Dialer
}

// Listener keeps a websocket open and reconnects with capped exponential
// backoff.
type Listener struct {
	opts Options
}

// New creates a Listener
func New(opts Options) *Listener {
	if opts.MinBackoff <= 0 {
		opts.MinBackoff = DefaultMinBackoff
	}
	if opts.MaxBackoff < opts.MinBackoff {
		opts.MaxBackoff = DefaultMaxBackoff
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Dialer == nil {
		opts.Dialer = websocket.DefaultDialer
	}
	return &Listener{opts: opts}
}

// Backoff returns the wait before reconnect attempt n (0-based)
func Backoff(n int, min, max time.Duration) time.Duration {
	d := min
	for i := 0; i < n && d < max; i++ {
		d *= 2
	}
	if d > max {
		d = max
	}
	return d
}

// Run connects and dispatches events until ctx is done
func (l *Listener) Run(ctx context.Context) error {
	attempt := 0
	for {
		connected, err := l.session(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if connected {
			attempt = 0
		}
		wait := Backoff(attempt, l.opts.MinBackoff, l.opts.MaxBackoff)
		l.opts.Logger.Warn("push channel closed", "err", err, "retry_in", wait)
		attempt++

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

// session runs one connection. connected reports whether the dial worked.
func (l *Listener) session(ctx context.Context) (connected bool, err error) {
	header := http.Header{}
	if l.opts.Token != "" {
		header.Set("Authorization", "Bearer "+l.opts.Token)
	}
	conn, _, err := l.opts.Dialer.DialContext(ctx, l.opts.URL, header)
	if err != nil {
		return false, err
	}
	defer conn.Close()
	l.opts.Logger.Debug("push channel connected", "url", l.opts.URL)

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
			conn.Close()
		case <-stop:
		}
	}()

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	conn.SetPingHandler(func(data string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(time.Second))
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return true, errors.New("closed by server")
			}
			return true, err
		}
		conn.SetReadDeadline(time.Now().Add(pongWait))
		l.dispatch(raw)
	}
}

func (l *Listener) dispatch(raw []byte) {
	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		l.opts.Logger.Debug("ignoring push message", "err", err)
		return
	}
	switch Classify(msg.Event) {
	case KindReservations:
		if l.opts.OnReservations != nil {
			l.opts.OnReservations()
		}
	case KindWaitlist:
		if l.opts.OnWaitlist != nil {
			l.opts.OnWaitlist()
		}
	}
}
