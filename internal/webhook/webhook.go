// Package webhook posts new-reservation notifications to an external URL,
// signed with HMAC-SHA256 when a secret is configured.
package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/marcus/rsv/internal/dateparse"
	"github.com/marcus/rsv/internal/models"
)

const (
	TimestampHeader = "X-RSV-Timestamp"
	SignatureHeader = "X-RSV-Signature"
	EventNew        = "reservation.new"
	defaultTimeout  = 10 * time.Second
)

// Payload is the top-level webhook POST body.
type Payload struct {
	Event         string                `json:"event"`
	Restaurant    string                `json:"restaurant,omitempty"`
	Timestamp     string                `json:"timestamp"`
	Notifications []NotificationPayload `json:"notifications"`
}

// NotificationPayload is one new reservation within a webhook payload.
type NotificationPayload struct {
	ID            string `json:"id"`
	ReservationID int64  `json:"reservation_id"`
	NombreCliente string `json:"nombre_cliente"`
	NumPersonas   int    `json:"num_personas"`
	Fecha         string `json:"fecha"`
	Estado        string `json:"estado"`
	Mesa          string `json:"mesa,omitempty"`
	Notas         string `json:"notas,omitempty"`
}

// BuildPayload converts a notification batch into a webhook payload.
func BuildPayload(restaurant string, batch []models.Notification, now time.Time) Payload {
	p := Payload{
		Event:         EventNew,
		Restaurant:    restaurant,
		Timestamp:     now.UTC().Format(time.RFC3339),
		Notifications: make([]NotificationPayload, len(batch)),
	}
	for i, n := range batch {
		r := n.Reservation
		p.Notifications[i] = NotificationPayload{
			ID:            n.ID,
			ReservationID: n.ReservationID,
			NombreCliente: r.NombreCliente,
			NumPersonas:   r.NumPersonas,
			Fecha:         dateparse.ToISO(r.Fecha),
			Estado:        string(r.Estado),
			Mesa:          r.TableName(),
			Notas:         r.Notas,
		}
	}
	return p
}

// Sign returns the signature header value for body sent at unixTS
func Sign(secret, unixTS string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(unixTS))
	mac.Write([]byte("."))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

// Dispatch performs a synchronous HTTP POST to the webhook URL.
// Returns nil on success (2xx status).
func Dispatch(ctx context.Context, client *http.Client, url, secret string, payload Payload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "rsv-webhook/1")

	unixTS := strconv.FormatInt(time.Now().Unix(), 10)
	req.Header.Set(TimestampHeader, unixTS)
	if secret != "" {
		req.Header.Set(SignatureHeader, Sign(secret, unixTS, body))
	}

	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("POST %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("POST %s: status %d", url, resp.StatusCode)
	}
	return nil
}

// Sender delivers notification batches to one URL
type Sender struct {
	URL        string
	Secret     string
	Restaurant func() string
	Client     *http.Client
	Logger     *slog.Logger
}

// NewSender returns a Sender, or nil when url is empty
func NewSender(url, secret string, restaurant func() string) *Sender {
	if url == "" {
		return nil
	}
	return &Sender{
		URL:        url,
		Secret:     secret,
		Restaurant: restaurant,
		Client:     &http.Client{Timeout: defaultTimeout},
		Logger:     slog.Default(),
	}
}

// Deliver posts one batch. Empty batches are skipped.
func (s *Sender) Deliver(ctx context.Context, batch []models.Notification) error {
	if len(batch) == 0 {
		return nil
	}
	name := ""
	if s.Restaurant != nil {
		name = s.Restaurant()
	}
	if err := Dispatch(ctx, s.Client, s.URL, s.Secret, BuildPayload(name, batch, time.Now())); err != nil {
		return err
	}
	if s.Logger != nil {
		s.Logger.Debug("webhook delivered", "url", s.URL, "count", len(batch))
	}
	return nil
}
