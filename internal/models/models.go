package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ReservationStatus represents reservation status as stored by the backend
type ReservationStatus string

const (
	StatusPending   ReservationStatus = "PENDIENTE"
	StatusConfirmed ReservationStatus = "CONFIRMADA"
	StatusCancelled ReservationStatus = "CANCELADA"
	StatusCompleted ReservationStatus = "COMPLETADA"
)

// ReservationStatuses lists every status in display order
func ReservationStatuses() []ReservationStatus {
	return []ReservationStatus{StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted}
}

// IsValidStatus checks if a status is valid
func IsValidStatus(s ReservationStatus) bool {
	for _, v := range ReservationStatuses() {
		if v == s {
			return true
		}
	}
	return false
}

// ParseReservationStatus accepts backend names case-insensitively plus
// English aliases (pending, confirmed, cancelled, completed).
func ParseReservationStatus(s string) (ReservationStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pendiente", "pending":
		return StatusPending, nil
	case "confirmada", "confirmed":
		return StatusConfirmed, nil
	case "cancelada", "cancelled", "canceled":
		return StatusCancelled, nil
	case "completada", "completed", "done":
		return StatusCompleted, nil
	}
	return "", fmt.Errorf("unknown reservation status %q", s)
}

// Label returns the human-readable name
func (s ReservationStatus) Label() string {
	switch s {
	case StatusPending:
		return "Pendiente"
	case StatusConfirmed:
		return "Confirmada"
	case StatusCancelled:
		return "Cancelada"
	case StatusCompleted:
		return "Completada"
	}
	return string(s)
}

// Next cycles through statuses in display order
func (s ReservationStatus) Next() ReservationStatus {
	all := ReservationStatuses()
	for i, v := range all {
		if v == s {
			return all[(i+1)%len(all)]
		}
	}
	return StatusPending
}

// TableStatus maps a reservation status onto the floor-plan status it implies
func (s ReservationStatus) TableStatus() TableStatus {
	switch s {
	case StatusPending, StatusConfirmed:
		return TablePending
	default:
		return TableAvailable
	}
}

// Reservation is a table reservation
type Reservation struct {
	ID            int64             `json:"id"`
	NombreCliente string            `json:"nombreCliente"`
	Telefono      string            `json:"telefono,omitempty"`
	Email         string            `json:"email,omitempty"`
	NumPersonas   int               `json:"numPersonas"`
	Fecha         time.Time         `json:"fecha"`
	Notas         string            `json:"notas,omitempty"`
	Estado        ReservationStatus `json:"estado"`
	MesaID        *int64            `json:"mesaId,omitempty"`
	Mesa          *Table            `json:"mesa,omitempty"`
}

// HasTable reports whether a table is assigned
func (r Reservation) HasTable() bool {
	return r.MesaID != nil || r.Mesa != nil
}

// TableID returns the assigned table ID or 0
func (r Reservation) TableID() int64 {
	if r.MesaID != nil {
		return *r.MesaID
	}
	if r.Mesa != nil {
		return r.Mesa.ID
	}
	return 0
}

// TableName returns the assigned table name, or "" when unassigned
func (r Reservation) TableName() string {
	if r.Mesa != nil {
		return r.Mesa.Nombre
	}
	if r.MesaID != nil {
		return fmt.Sprintf("Mesa %d", *r.MesaID)
	}
	return ""
}

// Contact returns the first available contact channel
func (r Reservation) Contact() string {
	if r.Telefono != "" {
		return r.Telefono
	}
	return r.Email
}

// MaxID returns the highest reservation ID in the list (0 when empty)
func MaxID(list []Reservation) int64 {
	var max int64
	for _, r := range list {
		if r.ID > max {
			max = r.ID
		}
	}
	return max
}

// IDSet returns the set of IDs in the list
func IDSet(list []Reservation) map[int64]struct{} {
	set := make(map[int64]struct{}, len(list))
	for _, r := range list {
		set[r.ID] = struct{}{}
	}
	return set
}

// FindReservation returns the reservation with the given ID
func FindReservation(list []Reservation, id int64) (Reservation, bool) {
	for _, r := range list {
		if r.ID == id {
			return r, true
		}
	}
	return Reservation{}, false
}

// CreateResult is the outcome of a reservation create call. The flags are
// read from the response envelope, not the reservation body.
type CreateResult struct {
	Reservation  Reservation `json:"reservation"`
	Waitlist     bool        `json:"waitlist"`
	ModoManual   bool        `json:"modoManual"`
	MesaSugerida *Table      `json:"mesaSugerida,omitempty"`
	Message      string      `json:"message,omitempty"`
}

// TableStatus is the derived floor-plan status of a table
type TableStatus int

const (
	TableAvailable TableStatus = iota
	TableOccupied
	TablePending
	TableUnavailable
)

// TableStatuses lists every table status
func TableStatuses() []TableStatus {
	return []TableStatus{TableAvailable, TableOccupied, TablePending, TableUnavailable}
}

// String returns the canonical english name
func (s TableStatus) String() string {
	switch s {
	case TableOccupied:
		return "occupied"
	case TablePending:
		return "pending"
	case TableUnavailable:
		return "unavailable"
	default:
		return "available"
	}
}

// Label returns the spanish display label
func (s TableStatus) Label() string {
	switch s {
	case TableOccupied:
		return "Ocupada"
	case TablePending:
		return "Reservada"
	case TableUnavailable:
		return "No disponible"
	default:
		return "Disponible"
	}
}

// ParseTableStatus folds every spelling the backend and older clients use.
func ParseTableStatus(s string) (TableStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "available", "disponible", "libre", "":
		return TableAvailable, nil
	case "occupied", "ocupada", "ocupado":
		return TableOccupied, nil
	case "pending", "reserved", "reservada", "reservado", "en espera":
		return TablePending, nil
	case "unavailable", "no disponible", "no_disponible", "inactive":
		return TableUnavailable, nil
	}
	return TableAvailable, fmt.Errorf("unknown table status %q", s)
}

// MarshalText implements encoding.TextMarshaler
func (s TableStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (s *TableStatus) UnmarshalText(b []byte) error {
	v, err := ParseTableStatus(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// TableShape is the drawn shape of a table
type TableShape string

const (
	ShapeRectangular TableShape = "rectangular"
	ShapeRound       TableShape = "round"
)

// NormalizeShape maps legacy names onto the two shapes
func NormalizeShape(s string) TableShape {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "round", "redonda", "circular", "circle":
		return ShapeRound
	default:
		return ShapeRectangular
	}
}

// Table defaults applied when the backend omits a field
const (
	DefaultTableX        = 100
	DefaultTableY        = 100
	DefaultCapacity      = 4
	DefaultZone          = "INTERIOR"
	rectDefaultWidth     = 100
	rectDefaultHeight    = 50
	roundDefaultDiameter = 80
)

// Table is a restaurant table on the floor plan
type Table struct {
	ID           int64       `json:"id"`
	Nombre       string      `json:"nombre"`
	Capacidad    int         `json:"capacidad"`
	Tipo         TableShape  `json:"tipo"`
	X            float64     `json:"x"`
	Y            float64     `json:"y"`
	Width        float64     `json:"width"`
	Height       float64     `json:"height"`
	Rotation     float64     `json:"rotation"`
	Disponible   bool        `json:"disponible"`
	OcupadaAhora bool        `json:"ocupadaAhora,omitempty"`
	Ubicacion    string      `json:"ubicacion,omitempty"`
	Status       TableStatus `json:"status"`
}

// DefaultSize returns the default bounding box for a shape
func DefaultSize(shape TableShape) (float64, float64) {
	if shape == ShapeRound {
		return roundDefaultDiameter, roundDefaultDiameter
	}
	return rectDefaultWidth, rectDefaultHeight
}

// UnmarshalJSON applies defaults for missing fields
func (t *Table) UnmarshalJSON(b []byte) error {
	var raw struct {
		ID           int64    `json:"id"`
		Nombre       string   `json:"nombre"`
		Capacidad    *int     `json:"capacidad"`
		Tipo         string   `json:"tipo"`
		X            *float64 `json:"x"`
		Y            *float64 `json:"y"`
		Width        *float64 `json:"width"`
		Height       *float64 `json:"height"`
		Rotation     *float64 `json:"rotation"`
		Disponible   *bool    `json:"disponible"`
		OcupadaAhora bool     `json:"ocupadaAhora"`
		Ubicacion    string   `json:"ubicacion"`
		Status       string   `json:"status"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	*t = Table{
		ID:           raw.ID,
		Nombre:       raw.Nombre,
		Capacidad:    DefaultCapacity,
		Tipo:         NormalizeShape(raw.Tipo),
		X:            DefaultTableX,
		Y:            DefaultTableY,
		Disponible:   true,
		OcupadaAhora: raw.OcupadaAhora,
		Ubicacion:    raw.Ubicacion,
	}
	t.Width, t.Height = DefaultSize(t.Tipo)
	if t.Nombre == "" {
		t.Nombre = fmt.Sprintf("Mesa %d", raw.ID)
	}
	if raw.Capacidad != nil && *raw.Capacidad > 0 {
		t.Capacidad = *raw.Capacidad
	}
	if raw.X != nil {
		t.X = *raw.X
	}
	if raw.Y != nil {
		t.Y = *raw.Y
	}
	if raw.Width != nil && *raw.Width > 0 {
		t.Width = *raw.Width
	}
	if raw.Height != nil && *raw.Height > 0 {
		t.Height = *raw.Height
	}
	if raw.Rotation != nil {
		t.Rotation = *raw.Rotation
	}
	if raw.Disponible != nil {
		t.Disponible = *raw.Disponible
	}
	if raw.Status != "" {
		// Unknown spellings fall back to available rather than failing the list.
		t.Status, _ = ParseTableStatus(raw.Status)
	}
	return nil
}

// WaitlistState is the state of a waitlist entry
type WaitlistState string

const (
	WaitlistPending  WaitlistState = "PENDIENTE"
	WaitlistAccepted WaitlistState = "ACEPTADO"
)

// WaitlistEntry is a party waiting for a table
type WaitlistEntry struct {
	ID            int64         `json:"id"`
	NombreCliente string        `json:"nombreCliente"`
	Telefono      string        `json:"telefono,omitempty"`
	Email         string        `json:"email,omitempty"`
	FechaDeseada  time.Time     `json:"fechaDeseada"`
	HoraLlegada   *time.Time    `json:"horaLlegada,omitempty"`
	NumPersonas   int           `json:"numPersonas"`
	Preferencias  string        `json:"preferencias,omitempty"`
	Estado        WaitlistState `json:"estado"`
}

// Contact returns the first available contact channel
func (w WaitlistEntry) Contact() string {
	if w.Telefono != "" {
		return w.Telefono
	}
	return w.Email
}

// RestaurantConfig holds restaurant-wide settings
type RestaurantConfig struct {
	Nombre             string `json:"nombre"`
	Direccion          string `json:"direccion,omitempty"`
	Telefono           string `json:"telefono,omitempty"`
	Email              string `json:"email,omitempty"`
	AforoTotal         int    `json:"aforoTotal"`
	MaxPersonasReserva *int   `json:"maxPersonasReserva,omitempty"`
	DuracionReserva    int    `json:"duracionReserva"`
	AutoAsignacion     bool   `json:"autoAsignacion"`
}

// DefaultReservationMinutes is used when the backend has no duration configured
const DefaultReservationMinutes = 90

// Weekday names as the backend stores them
var Weekdays = []string{"LUNES", "MARTES", "MIERCOLES", "JUEVES", "VIERNES", "SABADO", "DOMINGO"}

// NormalizeWeekday maps spanish or english day names onto backend names
func NormalizeWeekday(s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "lunes", "monday", "mon":
		return "LUNES", nil
	case "martes", "tuesday", "tue":
		return "MARTES", nil
	case "miercoles", "miércoles", "wednesday", "wed":
		return "MIERCOLES", nil
	case "jueves", "thursday", "thu":
		return "JUEVES", nil
	case "viernes", "friday", "fri":
		return "VIERNES", nil
	case "sabado", "sábado", "saturday", "sat":
		return "SABADO", nil
	case "domingo", "sunday", "sun":
		return "DOMINGO", nil
	}
	return "", fmt.Errorf("unknown weekday %q", s)
}

// Horario is one opening range for a weekday
type Horario struct {
	ID           int64  `json:"id,omitempty"`
	DiaSemana    string `json:"diaSemana"`
	HoraApertura string `json:"horaApertura"`
	HoraCierre   string `json:"horaCierre"`
}

// DashboardMetrics are the aggregate counters shown on the dashboard home
type DashboardMetrics struct {
	Ocupacion          float64 `json:"ocupacion"`
	ReservasHoy        int     `json:"reservasHoy"`
	ProximasReservas   int     `json:"proximasReservas"`
	VariacionOcupacion float64 `json:"variacionOcupacion"`
}

// Notification is a client-side inbox entry for a newly observed reservation
type Notification struct {
	ID            string      `json:"id"`
	ReservationID int64       `json:"reservation_id"`
	Reservation   Reservation `json:"reservation"`
	Read          bool        `json:"read"`
	CreatedAt     time.Time   `json:"created_at"`
	Seq           int64       `json:"seq"`
}

// ToastType is the visual category of a toast
type ToastType string

const (
	ToastSuccess ToastType = "success"
	ToastError   ToastType = "error"
	ToastInfo    ToastType = "info"
	ToastWarning ToastType = "warning"
)

// Toast is a transient message
type Toast struct {
	ID          string        `json:"id"`
	Message     string        `json:"message"`
	Type        ToastType     `json:"type"`
	Duration    time.Duration `json:"duration"`
	Reservation *Reservation  `json:"reservation,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
}
