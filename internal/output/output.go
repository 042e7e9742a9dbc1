// Package output provides styled terminal output helpers (success, error,
// warning, reservation formatting) using lipgloss.
package output

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/marcus/rsv/internal/dateparse"
	"github.com/marcus/rsv/internal/models"
)

var (
	// Styles
	titleStyle   = lipgloss.NewStyle().Bold(true)
	subtleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	unreadStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	statusStyles = map[models.ReservationStatus]lipgloss.Style{
		models.StatusPending:   lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		models.StatusConfirmed: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		models.StatusCancelled: lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		models.StatusCompleted: lipgloss.NewStyle().Foreground(lipgloss.Color("242")),
	}
)

// Success prints a success message
func Success(format string, args ...interface{}) {
	fmt.Println(successStyle.Render(fmt.Sprintf(format, args...)))
}

// Error prints an error message
func Error(format string, args ...interface{}) {
	fmt.Println(errorStyle.Render("ERROR: " + fmt.Sprintf(format, args...)))
}

// Warning prints a warning message
func Warning(format string, args ...interface{}) {
	fmt.Println(warningStyle.Render("Warning: " + fmt.Sprintf(format, args...)))
}

// Info prints an info message
func Info(format string, args ...interface{}) {
	fmt.Println(fmt.Sprintf(format, args...))
}

// JSON outputs data as JSON
func JSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

// Error codes carried by JSONError
const (
	ErrCodeInvalidInput = "invalid_input"
	ErrCodeNotFound     = "not_found"
)

type jsonError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// JSONError prints {"error": {"code", "message"}} for --json callers
func JSONError(code, message string) {
	var e jsonError
	e.Error.Code = code
	e.Error.Message = message
	_ = JSON(e)
}

// FormatStatus formats a reservation status with color
func FormatStatus(s models.ReservationStatus) string {
	style, ok := statusStyles[s]
	if !ok {
		return fmt.Sprintf("[%s]", s)
	}
	return style.Render(fmt.Sprintf("[%s]", s))
}

// StatusBadge returns a status indicator with symbol
// e.g., "○ Pendiente", "✓ Confirmada", "✗ Cancelada", "● Completada"
func StatusBadge(s models.ReservationStatus) string {
	symbols := map[models.ReservationStatus]string{
		models.StatusPending:   "○",
		models.StatusConfirmed: "✓",
		models.StatusCancelled: "✗",
		models.StatusCompleted: "●",
	}
	symbol, ok := symbols[s]
	if !ok {
		symbol = "?"
	}
	badge := fmt.Sprintf("%s %s", symbol, s.Label())
	if style, ok := statusStyles[s]; ok {
		return style.Render(badge)
	}
	return badge
}

// tableLabel returns the assigned table or a dash
func tableLabel(r models.Reservation) string {
	if name := r.TableName(); name != "" {
		return name
	}
	return "-"
}

// ReservationLine returns a one-line reservation summary
// Format: "#12  18/02 21:30  Ana López  4p  Mesa 3  [PENDIENTE]"
func ReservationLine(r models.Reservation) string {
	return fmt.Sprintf("#%-4d %s  %-20s %2dp  %-10s %s",
		r.ID,
		dateparse.FormatShort(r.Fecha),
		Truncate(r.NombreCliente, 20),
		r.NumPersonas,
		Truncate(tableLabel(r), 10),
		FormatStatus(r.Estado))
}

// FormatReservationLong returns a detailed multi-line reservation view
func FormatReservationLong(r models.Reservation) string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render(fmt.Sprintf("Reserva #%d: %s", r.ID, r.NombreCliente)))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Estado: %s\n", StatusBadge(r.Estado)))
	sb.WriteString(fmt.Sprintf("Fecha: %s\n", dateparse.FormatLong(r.Fecha)))
	sb.WriteString(fmt.Sprintf("Personas: %d\n", r.NumPersonas))
	sb.WriteString(fmt.Sprintf("Mesa: %s\n", tableLabel(r)))
	if r.Telefono != "" {
		sb.WriteString(fmt.Sprintf("Teléfono: %s\n", r.Telefono))
	}
	if r.Email != "" {
		sb.WriteString(fmt.Sprintf("Email: %s\n", r.Email))
	}
	if r.Notas != "" {
		sb.WriteString(SectionHeader("Notas"))
		notes, err := RenderNotes(r.Notas)
		if err != nil {
			notes = r.Notas
		}
		sb.WriteString(notes)
		sb.WriteString("\n")
	}
	return sb.String()
}

// WaitlistLine returns a one-line waitlist summary
func WaitlistLine(e models.WaitlistEntry) string {
	arrival := "-"
	if e.HoraLlegada != nil {
		arrival = dateparse.FormatHour(*e.HoraLlegada)
	}
	state := subtleStyle.Render(string(e.Estado))
	if e.Estado == models.WaitlistPending {
		state = warningStyle.Render(string(e.Estado))
	}
	return fmt.Sprintf("#%-4d %-20s %2dp  llegada %s  %-16s %s",
		e.ID,
		Truncate(e.NombreCliente, 20),
		e.NumPersonas,
		arrival,
		Truncate(e.Contact(), 16),
		state)
}

// TableLine returns a one-line table summary with its derived status
func TableLine(t models.Table, status string) string {
	return fmt.Sprintf("#%-4d %-12s %2d pax  %-11s (%.0f,%.0f) %.0fx%.0f %.0f°  %s",
		t.ID,
		Truncate(t.Nombre, 12),
		t.Capacidad,
		t.Tipo,
		t.X, t.Y,
		t.Width, t.Height,
		t.Rotation,
		status)
}

// HorarioLine returns a one-line opening range
func HorarioLine(h models.Horario) string {
	return fmt.Sprintf("#%-4d %-10s %s - %s", h.ID, h.DiaSemana, h.HoraApertura, h.HoraCierre)
}

// NotificationLine returns a one-line inbox entry with an unread marker
func NotificationLine(n models.Notification, now time.Time) string {
	marker := " "
	if !n.Read {
		marker = unreadStyle.Render("•")
	}
	return fmt.Sprintf("%s %s  Nueva reserva de %s para %d (%s)  %s",
		marker,
		ShortID(n.ID),
		n.Reservation.NombreCliente,
		n.Reservation.NumPersonas,
		dateparse.FormatShort(n.Reservation.Fecha),
		subtleStyle.Render(FormatTimeAgoFrom(n.CreatedAt, now)))
}

// ShortID returns the first 8 characters of a notification ID
func ShortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// FormatMetrics renders dashboard counters
func FormatMetrics(m models.DashboardMetrics) string {
	variation := fmt.Sprintf("%+.1f%%", m.VariacionOcupacion)
	switch {
	case m.VariacionOcupacion > 0:
		variation = successStyle.Render(variation)
	case m.VariacionOcupacion < 0:
		variation = errorStyle.Render(variation)
	}
	return fmt.Sprintf("Ocupación: %.1f%% (%s)\nReservas hoy: %d\nPróximas reservas: %d\n",
		m.Ocupacion, variation, m.ReservasHoy, m.ProximasReservas)
}

// UnreadBadge returns "(N)" styled when there are unread notifications
func UnreadBadge(n int) string {
	if n == 0 {
		return ""
	}
	return unreadStyle.Render(fmt.Sprintf("(%d)", n))
}

// Subtle renders s in the muted style
func Subtle(s string) string {
	return subtleStyle.Render(s)
}

// Title renders s bold
func Title(s string) string {
	return titleStyle.Render(s)
}

// Truncate shortens s to max runes, ending with "…" when cut
func Truncate(s string, max int) string {
	r := []rune(s)
	if max <= 0 || len(r) <= max {
		return s
	}
	if max == 1 {
		return "…"
	}
	return string(r[:max-1]) + "…"
}

// FormatTimeAgoFrom describes how long before now t was ("5m ago")
func FormatTimeAgoFrom(t, now time.Time) string {
	diff := now.Sub(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		mins := int(diff.Minutes())
		if mins == 1 {
			return "1m ago"
		}
		return fmt.Sprintf("%dm ago", mins)
	case diff < 24*time.Hour:
		hours := int(diff.Hours())
		if hours == 1 {
			return "1h ago"
		}
		return fmt.Sprintf("%dh ago", hours)
	case diff < 7*24*time.Hour:
		days := int(diff.Hours() / 24)
		if days == 1 {
			return "1d ago"
		}
		return fmt.Sprintf("%dd ago", days)
	default:
		return t.Format("2006-01-02")
	}
}

// SectionHeader returns a formatted section header for CLI output
// e.g., "\nNOTAS:\n"
func SectionHeader(title string) string {
	return fmt.Sprintf("\n%s:\n", strings.ToUpper(title))
}
