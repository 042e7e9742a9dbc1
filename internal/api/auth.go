package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/marcus/rsv/internal/models"
)

// LoginResult is the data returned by a successful login
type LoginResult struct {
	Token          string
	Email          string
	RestaurantName string
}

// Profile is the account behind the current token
type Profile struct {
	Email          string
	Nombre         string
	RestaurantName string
}

type restaurantRef struct {
	Nombre string `json:"nombre"`
}

// accountBody covers the login and /me payload shapes
type accountBody struct {
	Token       string         `json:"token"`
	Email       string         `json:"email"`
	Nombre      string         `json:"nombre"`
	Restaurante *restaurantRef `json:"restaurante"`
	Usuario     *struct {
		Email  string `json:"email"`
		Nombre string `json:"nombre"`
	} `json:"usuario"`
}

func (a *accountBody) email() string {
	if a == nil {
		return ""
	}
	if a.Email != "" {
		return a.Email
	}
	if a.Usuario != nil {
		return a.Usuario.Email
	}
	return ""
}

// Login exchanges credentials for a bearer token. The client's Token is not
// changed; callers persist the token through the session.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	body := map[string]string{"email": email, "password": password}
	resp, err := c.doNoAuth(ctx, "POST", "/api/auth/login", body)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.generic {
			apiErr.Message = "Login fallido"
		}
		return nil, err
	}

	if !resp.obj || resp.env.Success == nil || !*resp.env.Success {
		return nil, softError(resp.env, "Login fallido")
	}
	var data accountBody
	if err := resp.decode(&data); err != nil {
		return nil, err
	}
	if data.Token == "" {
		return nil, &APIError{Status: http.StatusOK, Message: "Login fallido"}
	}

	res := &LoginResult{Token: data.Token, Email: data.email()}
	if data.Restaurante != nil {
		res.RestaurantName = data.Restaurante.Nombre
	}
	if res.Email == "" {
		res.Email = email
	}
	return res, nil
}

// Me returns the current account. The restaurant name is looked up in
// data.restaurante.nombre, restaurante.nombre, data.nombre and nombre, in
// that order.
func (c *Client) Me(ctx context.Context) (*Profile, error) {
	resp, err := c.do(ctx, "GET", "/api/auth/me", nil)
	if err != nil {
		return nil, err
	}

	var outer struct {
		accountBody
		Data *accountBody `json:"data"`
	}
	if !resp.empty() {
		if err := json.Unmarshal(resp.raw, &outer); err != nil {
			return nil, fmt.Errorf("unmarshal response: %w", err)
		}
	}

	p := &Profile{Email: outer.Data.email()}
	if p.Email == "" {
		p.Email = outer.email()
	}
	switch {
	case outer.Data != nil && outer.Data.Restaurante != nil && outer.Data.Restaurante.Nombre != "":
		p.RestaurantName = outer.Data.Restaurante.Nombre
	case outer.Restaurante != nil && outer.Restaurante.Nombre != "":
		p.RestaurantName = outer.Restaurante.Nombre
	case outer.Data != nil && outer.Data.Nombre != "":
		p.RestaurantName = outer.Data.Nombre
	default:
		p.RestaurantName = outer.Nombre
	}
	if outer.Data != nil && outer.Data.Usuario != nil {
		p.Nombre = outer.Data.Usuario.Nombre
	}
	return p, nil
}

// PublicResult is the outcome of a guest confirm or cancel link
type PublicResult struct {
	Message          string
	AlreadyConfirmed bool
	Reservation      *models.Reservation
}

// ConfirmReservation follows a guest confirmation link. A reservation that
// was already confirmed is reported as success with AlreadyConfirmed set.
func (c *Client) ConfirmReservation(ctx context.Context, id int64, token string) (*PublicResult, error) {
	res, err := c.publicLink(ctx, "/api/confirmar", id, token, "Reserva confirmada exitosamente", "Error al confirmar la reserva")
	if err == nil {
		return res, nil
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) &&
		(apiErr.EstadoActual == string(models.StatusConfirmed) || strings.Contains(apiErr.Detail, "ya fue confirmada")) {
		res := &PublicResult{Message: "Tu reserva ya estaba confirmada anteriormente", AlreadyConfirmed: true}
		if c.Token != "" {
			if r, err := c.GetReservation(ctx, id); err == nil {
				res.Reservation = r
			}
		}
		return res, nil
	}
	return nil, err
}

// CancelReservation follows a guest cancellation link.
func (c *Client) CancelReservation(ctx context.Context, id int64, token string) (*PublicResult, error) {
	return c.publicLink(ctx, "/api/cancelar", id, token, "Reserva cancelada exitosamente", "Error al cancelar la reserva")
}

// publicLink calls an unauthenticated guest endpoint. These pages prefer the
// message field over error.
func (c *Client) publicLink(ctx context.Context, path string, id int64, token, okMsg, failMsg string) (*PublicResult, error) {
	params := url.Values{}
	params.Set("id", strconv.FormatInt(id, 10))
	params.Set("token", token)

	resp, err := c.doNoAuth(ctx, "GET", path+"?"+params.Encode(), nil)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			switch {
			case apiErr.Detail != "":
				apiErr.Message = apiErr.Detail
			case apiErr.generic:
				apiErr.Message = failMsg
			}
		}
		return nil, err
	}

	res := &PublicResult{Message: okMsg}
	if resp.obj && resp.env.Message != "" {
		res.Message = resp.env.Message
	}
	if resp.obj && len(resp.env.Data) > 0 && resp.env.Data[0] == '{' {
		var r models.Reservation
		if err := json.Unmarshal(resp.env.Data, &r); err != nil {
			return nil, fmt.Errorf("unmarshal reservation: %w", err)
		}
		res.Reservation = &r
	}
	return res, nil
}
