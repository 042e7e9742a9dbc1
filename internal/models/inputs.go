package models

import "time"

// DefaultWaitlistHour is used when a waitlist edit carries no desired hour
const DefaultWaitlistHour = "20:00"

// ReservationInput is the form-level shape of a reservation: date and hour
// are kept apart until they are sent.
type ReservationInput struct {
	NombreCliente string `json:"nombreCliente" validate:"trimmin=2"`
	Telefono      string `json:"telefono" validate:"omitempty,phone"`
	Email         string `json:"email" validate:"omitempty,mail"`
	NumPersonas   int    `json:"numPersonas" validate:"min=1"`
	Fecha         string `json:"fecha" validate:"required,ymd"`
	Hora          string `json:"hora" validate:"required,hhmm"`
	Notas         string `json:"notas"`
	MesaID        *int64 `json:"mesaId,omitempty"`
	// ClearMesa unassigns the table on update. Ignored when MesaID is set.
	ClearMesa bool `json:"-"`
}

// InputFromReservation builds an input preserving every field of r.
// splitUTC converts the reservation instant into form date and hour.
func InputFromReservation(r Reservation, splitUTC func(time.Time) (string, string)) ReservationInput {
	fecha, hora := splitUTC(r.Fecha)
	in := ReservationInput{
		NombreCliente: r.NombreCliente,
		Telefono:      r.Telefono,
		Email:         r.Email,
		NumPersonas:   r.NumPersonas,
		Fecha:         fecha,
		Hora:          hora,
		Notas:         r.Notas,
	}
	if id := r.TableID(); id != 0 {
		in.MesaID = &id
	}
	return in
}

// WaitlistInput is the form-level shape of a waitlist entry
type WaitlistInput struct {
	NombreCliente string `json:"nombreCliente" validate:"trimmin=2"`
	Telefono      string `json:"telefono" validate:"omitempty,phone"`
	Email         string `json:"email" validate:"omitempty,mail"`
	Fecha         string `json:"fechaDeseada" validate:"required,ymd"`
	HoraDeseada   string `json:"horaDeseada" validate:"omitempty,hhmm"`
	NumPersonas   int    `json:"numPersonas" validate:"min=1"`
	Preferencias  string `json:"preferencias"`
}

// Hour returns the desired hour or the default
func (w WaitlistInput) Hour() string {
	if w.HoraDeseada == "" {
		return DefaultWaitlistHour
	}
	return w.HoraDeseada
}

// WaitlistInputFromEntry builds an edit input from an existing entry
func WaitlistInputFromEntry(e WaitlistEntry, splitUTC func(time.Time) (string, string)) WaitlistInput {
	fecha, hora := splitUTC(e.FechaDeseada)
	return WaitlistInput{
		NombreCliente: e.NombreCliente,
		Telefono:      e.Telefono,
		Email:         e.Email,
		Fecha:         fecha,
		HoraDeseada:   hora,
		NumPersonas:   e.NumPersonas,
		Preferencias:  e.Preferencias,
	}
}

// TableInput is the create/update payload for a table
type TableInput struct {
	Nombre     string     `json:"nombre" validate:"required"`
	Capacidad  int        `json:"capacidad" validate:"min=1,max=50"`
	Tipo       TableShape `json:"tipo" validate:"oneof=rectangular round"`
	X          float64    `json:"x"`
	Y          float64    `json:"y"`
	Width      float64    `json:"width" validate:"gte=30"`
	Height     float64    `json:"height" validate:"gte=30"`
	Rotation   float64    `json:"rotation"`
	Disponible bool       `json:"disponible"`
	Ubicacion  string     `json:"ubicacion,omitempty"`
}

// InputFromTable copies the persisted fields of t
func InputFromTable(t Table) TableInput {
	return TableInput{
		Nombre:     t.Nombre,
		Capacidad:  t.Capacidad,
		Tipo:       t.Tipo,
		X:          t.X,
		Y:          t.Y,
		Width:      t.Width,
		Height:     t.Height,
		Rotation:   t.Rotation,
		Disponible: t.Disponible,
		Ubicacion:  t.Ubicacion,
	}
}

// ConfigInput holds the editable restaurant settings. Zero values mean
// "not set" for the numeric limits.
type ConfigInput struct {
	Nombre             string `json:"nombre"`
	Direccion          string `json:"direccion"`
	Telefono           string `json:"telefono"`
	Email              string `json:"email" validate:"omitempty,mail"`
	AforoTotal         int    `json:"aforoTotal" validate:"omitempty,min=1,max=1000"`
	MaxPersonasReserva int    `json:"maxPersonasReserva" validate:"omitempty,min=1,max=100"`
	DuracionReserva    int    `json:"duracionReserva" validate:"omitempty,min=15,max=480"`
	AutoAsignacion     bool   `json:"autoAsignacion"`
}

// ConfigInputFrom copies a stored config into an editable input
func ConfigInputFrom(c RestaurantConfig) ConfigInput {
	in := ConfigInput{
		Nombre:          c.Nombre,
		Direccion:       c.Direccion,
		Telefono:        c.Telefono,
		Email:           c.Email,
		AforoTotal:      c.AforoTotal,
		DuracionReserva: c.DuracionReserva,
		AutoAsignacion:  c.AutoAsignacion,
	}
	if c.MaxPersonasReserva != nil {
		in.MaxPersonasReserva = *c.MaxPersonasReserva
	}
	return in
}

// ConfigPatch returns only the fields of next that differ from prev. Empty
// strings are sent as null so the backend clears them.
func ConfigPatch(prev, next ConfigInput) map[string]any {
	patch := map[string]any{}
	str := func(key, a, b string) {
		if a == b {
			return
		}
		if b == "" {
			patch[key] = nil
			return
		}
		patch[key] = b
	}
	str("nombre", prev.Nombre, next.Nombre)
	str("direccion", prev.Direccion, next.Direccion)
	str("telefono", prev.Telefono, next.Telefono)
	str("email", prev.Email, next.Email)
	if prev.AforoTotal != next.AforoTotal {
		patch["aforoTotal"] = next.AforoTotal
	}
	if prev.MaxPersonasReserva != next.MaxPersonasReserva {
		patch["maxPersonasReserva"] = next.MaxPersonasReserva
	}
	if prev.DuracionReserva != next.DuracionReserva {
		patch["duracionReserva"] = next.DuracionReserva
	}
	if prev.AutoAsignacion != next.AutoAsignacion {
		patch["autoAsignacion"] = next.AutoAsignacion
	}
	return patch
}

// HorarioInput is an opening range being added or edited
type HorarioInput struct {
	ID           int64  `json:"id,omitempty"`
	DiaSemana    string `json:"diaSemana" validate:"required,oneof=LUNES MARTES MIERCOLES JUEVES VIERNES SABADO DOMINGO"`
	HoraApertura string `json:"horaApertura" validate:"required,hhmm"`
	HoraCierre   string `json:"horaCierre" validate:"required,hhmm"`
}

// ReservationFilter narrows a reservation listing. Empty fields match all.
type ReservationFilter struct {
	Nombre string            `json:"nombre,omitempty"`
	Fecha  string            `json:"fecha,omitempty"`
	Estado ReservationStatus `json:"estado,omitempty"`
}

// IsDefault reports whether f is the dashboard default: no name, today's
// date and no status.
func (f ReservationFilter) IsDefault(today string) bool {
	return f.Nombre == "" && f.Fecha == today && f.Estado == ""
}

// WaitlistFilter narrows a waitlist listing
type WaitlistFilter struct {
	FechaDeseada string `json:"fechaDeseada,omitempty"`
	Nombre       string `json:"nombre,omitempty"`
}
