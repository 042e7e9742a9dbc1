// Package inbox persists the notification inbox and the new-reservation
// cursor in a local sqlite database so both survive restarts.
package inbox

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/marcus/rsv/internal/models"
	_ "modernc.org/sqlite"
)

// FileName is the database file inside the config directory
const FileName = "inbox.db"

const cursorKey = "reservations"

const schema = `
CREATE TABLE IF NOT EXISTS notifications (
	id TEXT PRIMARY KEY,
	reservation_id INTEGER NOT NULL,
	reservation TEXT NOT NULL,
	read INTEGER NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL,
	seq INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_notifications_seq ON notifications(seq DESC);

CREATE TABLE IF NOT EXISTS cursor (
	name TEXT PRIMARY KEY,
	value INTEGER NOT NULL
);
`

// Drivers accepted by OpenDriver. DriverCgo needs a cgo build.
const (
	DriverPure = "sqlite"  // modernc.org/sqlite
	DriverCgo  = "sqlite3" // github.com/mattn/go-sqlite3
)

// Store is the sqlite-backed inbox
type Store struct {
	conn *sql.DB
}

// Open opens (creating if needed) the inbox database at path with the pure
// Go driver
func Open(path string) (*Store, error) {
	return OpenDriver(DriverPure, path)
}

// OpenDriver is Open with an explicit database/sql driver name. An empty
// driver means DriverPure.
func OpenDriver(driver, path string) (*Store, error) {
	switch driver {
	case "":
		driver = DriverPure
	case DriverPure, DriverCgo:
	default:
		return nil, fmt.Errorf("unknown inbox driver %q (valid: %s, %s)", driver, DriverPure, DriverCgo)
	}
	conn, err := sql.Open(driver, path)
	if err != nil {
		return nil, fmt.Errorf("open inbox: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA busy_timeout=500"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}
	conn.Exec("PRAGMA synchronous=NORMAL")

	s, err := New(conn)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an already open connection and creates the schema
func New(conn *sql.DB) (*Store, error) {
	if _, err := conn.Exec(schema); err != nil {
		return nil, fmt.Errorf("create inbox schema: %w", err)
	}
	return &Store{conn: conn}, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.conn.Close()
}

// Load returns every stored notification, newest first
func (s *Store) Load() ([]models.Notification, error) {
	rows, err := s.conn.Query(`SELECT id, reservation_id, reservation, read, created_at, seq
		FROM notifications ORDER BY seq DESC, reservation_id DESC`)
	if err != nil {
		return nil, fmt.Errorf("query notifications: %w", err)
	}
	defer rows.Close()

	var out []models.Notification
	for rows.Next() {
		var (
			n       models.Notification
			raw     string
			read    int
			created string
		)
		if err := rows.Scan(&n.ID, &n.ReservationID, &raw, &read, &created, &n.Seq); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		if err := json.Unmarshal([]byte(raw), &n.Reservation); err != nil {
			return nil, fmt.Errorf("decode reservation %d: %w", n.ReservationID, err)
		}
		n.Read = read != 0
		n.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		out = append(out, n)
	}
	return out, rows.Err()
}

// Save inserts or replaces a notification
func (s *Store) Save(n models.Notification) error {
	raw, err := json.Marshal(n.Reservation)
	if err != nil {
		return fmt.Errorf("encode reservation: %w", err)
	}
	_, err = s.conn.Exec(`INSERT OR REPLACE INTO notifications (id, reservation_id, reservation, read, created_at, seq)
		VALUES (?, ?, ?, ?, ?, ?)`,
		n.ID, n.ReservationID, string(raw), boolInt(n.Read), n.CreatedAt.UTC().Format(time.RFC3339Nano), n.Seq)
	if err != nil {
		return fmt.Errorf("save notification: %w", err)
	}
	return nil
}

// MarkRead marks one notification read
func (s *Store) MarkRead(id string) error {
	_, err := s.conn.Exec(`UPDATE notifications SET read = 1 WHERE id = ?`, id)
	return err
}

// MarkAllRead marks every notification read
func (s *Store) MarkAllRead() error {
	_, err := s.conn.Exec(`UPDATE notifications SET read = 1 WHERE read = 0`)
	return err
}

// Delete removes one notification
func (s *Store) Delete(id string) error {
	_, err := s.conn.Exec(`DELETE FROM notifications WHERE id = ?`, id)
	return err
}

// Cursor returns the highest reservation ID already notified. ok is false
// until a cursor has been stored.
func (s *Store) Cursor() (value int64, ok bool, err error) {
	err = s.conn.QueryRow(`SELECT value FROM cursor WHERE name = ?`, cursorKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("read cursor: %w", err)
	}
	return value, true, nil
}

// SetCursor stores the cursor
func (s *Store) SetCursor(value int64) error {
	_, err := s.conn.Exec(`INSERT INTO cursor (name, value) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET value = excluded.value`, cursorKey, value)
	if err != nil {
		return fmt.Errorf("write cursor: %w", err)
	}
	return nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
