package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/marcus/rsv/internal/dateparse"
	"github.com/marcus/rsv/internal/models"
)

const reservasPath = "/api/reservas"

// reservationPayload is the fixed field set sent on create and update
type reservationPayload struct {
	NombreCliente string `json:"nombreCliente"`
	Telefono      string `json:"telefono"`
	Email         string `json:"email"`
	Fecha         string `json:"fecha"`
	Hora          string `json:"hora"`
	NumPersonas   int    `json:"numPersonas"`
	Notas         string `json:"notas"`
	MesaID        any    `json:"mesaId,omitempty"` // int64, null to unassign, or absent
}

func newReservationPayload(in models.ReservationInput) (reservationPayload, error) {
	iso, err := dateparse.JoinISO(in.Fecha, in.Hora)
	if err != nil {
		return reservationPayload{}, err
	}
	p := reservationPayload{
		NombreCliente: in.NombreCliente,
		Telefono:      in.Telefono,
		Email:         in.Email,
		Fecha:         iso,
		Hora:          in.Hora,
		NumPersonas:   in.NumPersonas,
		Notas:         in.Notas,
	}
	switch {
	case in.MesaID != nil:
		p.MesaID = *in.MesaID
	case in.ClearMesa:
		p.MesaID = json.RawMessage("null")
	}
	return p, nil
}

// ListReservations returns reservations matching f. Empty filter fields are
// not sent.
func (c *Client) ListReservations(ctx context.Context, f models.ReservationFilter) ([]models.Reservation, error) {
	params := url.Values{}
	if f.Nombre != "" {
		params.Set("nombre", f.Nombre)
	}
	if f.Fecha != "" {
		params.Set("fecha", f.Fecha)
	}
	if f.Estado != "" {
		params.Set("estado", string(f.Estado))
	}
	path := reservasPath
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	resp, err := c.do(ctx, "GET", path, nil)
	if err != nil {
		return nil, err
	}
	return decodeList[models.Reservation](resp)
}

// GetReservation fetches one reservation.
func (c *Client) GetReservation(ctx context.Context, id int64) (*models.Reservation, error) {
	resp, err := c.do(ctx, "GET", fmt.Sprintf("%s/%d", reservasPath, id), nil)
	if err != nil {
		return nil, err
	}
	var r models.Reservation
	if err := resp.decode(&r); err != nil {
		return nil, err
	}
	return &r, nil
}

// CreateReservation creates a reservation. The backend may instead place the
// party on the waitlist or fall back to manual table assignment; both are
// reported through the result flags.
func (c *Client) CreateReservation(ctx context.Context, in models.ReservationInput) (*models.CreateResult, error) {
	payload, err := newReservationPayload(in)
	if err != nil {
		return nil, err
	}
	resp, err := c.do(ctx, "POST", reservasPath, payload)
	if err != nil {
		return nil, err
	}

	res := &models.CreateResult{}
	if err := resp.decode(&res.Reservation); err != nil {
		return nil, err
	}
	if resp.obj {
		res.Waitlist = resp.env.Waitlist
		res.ModoManual = resp.env.ModoManual
		res.Message = resp.env.Message
		if len(resp.env.MesaSugerida) > 0 && string(resp.env.MesaSugerida) != "null" {
			var t models.Table
			if err := json.Unmarshal(resp.env.MesaSugerida, &t); err != nil {
				return nil, fmt.Errorf("unmarshal mesaSugerida: %w", err)
			}
			res.MesaSugerida = &t
		}
	}
	return res, nil
}

// UpdateReservation replaces the editable fields of a reservation.
func (c *Client) UpdateReservation(ctx context.Context, id int64, in models.ReservationInput) (*models.Reservation, error) {
	payload, err := newReservationPayload(in)
	if err != nil {
		return nil, err
	}
	resp, err := c.do(ctx, "PUT", fmt.Sprintf("%s/%d", reservasPath, id), payload)
	if err != nil {
		return nil, err
	}
	var r models.Reservation
	if err := resp.decode(&r); err != nil {
		return nil, err
	}
	return &r, nil
}

// ChangeStatus sets the reservation status. Any status may follow any other.
func (c *Client) ChangeStatus(ctx context.Context, id int64, estado models.ReservationStatus) (*models.Reservation, error) {
	body := map[string]string{"estado": string(estado)}
	resp, err := c.do(ctx, "PATCH", fmt.Sprintf("%s/%d/estado", reservasPath, id), body)
	if err != nil {
		return nil, err
	}
	var r models.Reservation
	if err := resp.decode(&r); err != nil {
		return nil, err
	}
	if r.ID == 0 {
		r.ID = id
	}
	if r.Estado == "" {
		r.Estado = estado
	}
	return &r, nil
}

// DeleteReservation deletes a reservation.
func (c *Client) DeleteReservation(ctx context.Context, id int64) error {
	_, err := c.do(ctx, "DELETE", fmt.Sprintf("%s/%d", reservasPath, id), nil)
	return err
}

// AssignTable reads the reservation and writes it back with mesaId set,
// preserving every other field.
func (c *Client) AssignTable(ctx context.Context, reservaID, mesaID int64) (*models.Reservation, error) {
	current, err := c.GetReservation(ctx, reservaID)
	if err != nil {
		return nil, fmt.Errorf("fetch reservation %d: %w", reservaID, err)
	}
	in := models.InputFromReservation(*current, dateparse.SplitDateTime)
	in.MesaID = &mesaID
	return c.UpdateReservation(ctx, reservaID, in)
}
