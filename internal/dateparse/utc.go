package dateparse

import (
	"fmt"
	"time"
)

// Placeholder is shown for missing or invalid dates
const Placeholder = "—"

var (
	weekdaysES = [...]string{"domingo", "lunes", "martes", "miércoles", "jueves", "viernes", "sábado"}
	monthsES   = [...]string{"enero", "febrero", "marzo", "abril", "mayo", "junio",
		"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre"}
)

// JoinDateTime combines a YYYY-MM-DD date and an HH:MM hour into a UTC instant.
// The hour is interpreted as UTC wall time, never local time.
func JoinDateTime(fecha, hora string) (time.Time, error) {
	d, err := time.Parse(DateLayout, fecha)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", fecha, err)
	}
	h, err := time.Parse(HourLayout, hora)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid hour %q: %w", hora, err)
	}
	return time.Date(d.Year(), d.Month(), d.Day(), h.Hour(), h.Minute(), 0, 0, time.UTC), nil
}

// ToISO renders t as a millisecond UTC timestamp
func ToISO(t time.Time) string {
	return t.UTC().Format(ISOLayout)
}

// JoinISO is JoinDateTime followed by ToISO
func JoinISO(fecha, hora string) (string, error) {
	t, err := JoinDateTime(fecha, hora)
	if err != nil {
		return "", err
	}
	return ToISO(t), nil
}

// SplitDateTime returns the UTC date and hour components of t.
// SplitDateTime(JoinDateTime(f, h)) returns (f, h) for every valid pair.
func SplitDateTime(t time.Time) (fecha, hora string) {
	u := t.UTC()
	return u.Format(DateLayout), u.Format(HourLayout)
}

// FormatShort renders DD/MM/YYYY HH:MM in UTC
func FormatShort(t time.Time) string {
	if t.IsZero() {
		return Placeholder
	}
	return t.UTC().Format("02/01/2006 15:04")
}

// FormatLong renders "lunes, 15 de enero de 2024, 22:00" in UTC
func FormatLong(t time.Time) string {
	if t.IsZero() {
		return Placeholder
	}
	u := t.UTC()
	return fmt.Sprintf("%s, %02d de %s de %d, %s",
		weekdaysES[u.Weekday()], u.Day(), monthsES[u.Month()-1], u.Year(), u.Format(HourLayout))
}

// FormatHour renders HH:MM in UTC
func FormatHour(t time.Time) string {
	if t.IsZero() {
		return Placeholder
	}
	return t.UTC().Format(HourLayout)
}

// Today returns the UTC calendar date of now as YYYY-MM-DD
func Today(now time.Time) string {
	return now.UTC().Format(DateLayout)
}

// IsFuture reports whether the UTC date-time fecha+hora is after now
func IsFuture(fecha, hora string, now time.Time) bool {
	t, err := JoinDateTime(fecha, hora)
	if err != nil {
		return false
	}
	return t.After(now)
}

// SameUTCDay reports whether t falls on the UTC calendar day fecha
func SameUTCDay(t time.Time, fecha string) bool {
	return !t.IsZero() && t.UTC().Format(DateLayout) == fecha
}

// DayBounds returns local midnight of now's day and the following midnight
func DayBounds(now time.Time) (start, end time.Time) {
	y, m, d := now.Date()
	start = time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	return start, start.AddDate(0, 0, 1)
}
