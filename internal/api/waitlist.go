package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/marcus/rsv/internal/dateparse"
	"github.com/marcus/rsv/internal/models"
)

const waitlistPath = "/api/waitlist"

// waitlistPayload is the fixed field set sent on waitlist writes
type waitlistPayload struct {
	NombreCliente string `json:"nombreCliente"`
	Telefono      string `json:"telefono"`
	Email         string `json:"email"`
	FechaDeseada  string `json:"fechaDeseada"`
	NumPersonas   int    `json:"numPersonas"`
	Preferencias  string `json:"preferencias"`
}

func newWaitlistPayload(in models.WaitlistInput) (waitlistPayload, error) {
	iso, err := dateparse.JoinISO(in.Fecha, in.Hour())
	if err != nil {
		return waitlistPayload{}, err
	}
	return waitlistPayload{
		NombreCliente: in.NombreCliente,
		Telefono:      in.Telefono,
		Email:         in.Email,
		FechaDeseada:  iso,
		NumPersonas:   in.NumPersonas,
		Preferencias:  in.Preferencias,
	}, nil
}

// ProcessResult is the outcome of processing the whole waitlist
type ProcessResult struct {
	Procesadas int    `json:"procesadas"`
	Message    string `json:"message,omitempty"`
}

// ListWaitlist returns waitlist entries for the desired day and name.
func (c *Client) ListWaitlist(ctx context.Context, f models.WaitlistFilter) ([]models.WaitlistEntry, error) {
	params := url.Values{}
	if f.FechaDeseada != "" {
		params.Set("fechaDeseada", f.FechaDeseada)
	}
	if f.Nombre != "" {
		params.Set("nombre", f.Nombre)
	}
	path := waitlistPath
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	resp, err := c.do(ctx, "GET", path, nil)
	if err != nil {
		return nil, err
	}
	return decodeList[models.WaitlistEntry](resp)
}

// CreateWaitlistEntry adds a party to the waitlist.
func (c *Client) CreateWaitlistEntry(ctx context.Context, in models.WaitlistInput) (*models.WaitlistEntry, error) {
	payload, err := newWaitlistPayload(in)
	if err != nil {
		return nil, err
	}
	resp, err := c.do(ctx, "POST", waitlistPath, payload)
	if err != nil {
		return nil, err
	}
	var e models.WaitlistEntry
	if err := resp.decode(&e); err != nil {
		return nil, err
	}
	return &e, nil
}

// UpdateWaitlistEntry replaces the editable fields of an entry.
func (c *Client) UpdateWaitlistEntry(ctx context.Context, id int64, in models.WaitlistInput) (*models.WaitlistEntry, error) {
	payload, err := newWaitlistPayload(in)
	if err != nil {
		return nil, err
	}
	resp, err := c.do(ctx, "PUT", fmt.Sprintf("%s/%d", waitlistPath, id), payload)
	if err != nil {
		return nil, err
	}
	var e models.WaitlistEntry
	if err := resp.decode(&e); err != nil {
		return nil, err
	}
	if e.ID == 0 {
		e.ID = id
	}
	return &e, nil
}

// DeleteWaitlistEntry removes an entry.
func (c *Client) DeleteWaitlistEntry(ctx context.Context, id int64) error {
	_, err := c.do(ctx, "DELETE", fmt.Sprintf("%s/%d", waitlistPath, id), nil)
	return err
}

// ProcessWaitlist asks the backend to seat every pending entry it can.
// A full restaurant is reported as an error matching ErrRestaurantFull.
func (c *Client) ProcessWaitlist(ctx context.Context) (*ProcessResult, error) {
	resp, err := c.do(ctx, "POST", waitlistPath+"/procesar-todas", nil)
	if err != nil {
		return nil, err
	}
	res := &ProcessResult{}
	if resp.obj {
		res.Message = resp.env.Message
		if resp.env.Procesadas != nil {
			res.Procesadas = *resp.env.Procesadas
		}
		var data struct {
			Procesadas *int `json:"procesadas"`
		}
		if len(resp.env.Data) > 0 && resp.env.Data[0] == '{' {
			if err := resp.decode(&data); err != nil {
				return nil, err
			}
			if data.Procesadas != nil {
				res.Procesadas = *data.Procesadas
			}
		}
		if resp.env.Success != nil && !*resp.env.Success {
			return nil, softError(resp.env, "No se pudo procesar la lista de espera")
		}
	}
	return res, nil
}
