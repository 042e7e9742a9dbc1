package api

import (
	"context"
	"fmt"

	"github.com/marcus/rsv/internal/models"
)

// GetConfig returns the restaurant settings.
func (c *Client) GetConfig(ctx context.Context) (*models.RestaurantConfig, error) {
	resp, err := c.do(ctx, "GET", "/api/config", nil)
	if err != nil {
		return nil, err
	}
	var cfg models.RestaurantConfig
	if err := resp.decode(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// UpdateConfig sends only the changed fields; see models.ConfigPatch.
func (c *Client) UpdateConfig(ctx context.Context, patch map[string]any) (*models.RestaurantConfig, error) {
	resp, err := c.do(ctx, "PUT", "/api/config", patch)
	if err != nil {
		return nil, err
	}
	var cfg models.RestaurantConfig
	if err := resp.decode(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ListHorarios returns every opening range.
func (c *Client) ListHorarios(ctx context.Context) ([]models.Horario, error) {
	resp, err := c.do(ctx, "GET", "/api/horarios", nil)
	if err != nil {
		return nil, err
	}
	return decodeList[models.Horario](resp)
}

// ReplaceHorarios posts the full set of opening ranges; the backend replaces
// whatever it had.
func (c *Client) ReplaceHorarios(ctx context.Context, horarios []models.HorarioInput) ([]models.Horario, error) {
	if horarios == nil {
		horarios = []models.HorarioInput{}
	}
	resp, err := c.do(ctx, "POST", "/api/horarios", horarios)
	if err != nil {
		return nil, err
	}
	return decodeList[models.Horario](resp)
}

// UpdateHorario edits one opening range.
func (c *Client) UpdateHorario(ctx context.Context, id int64, in models.HorarioInput) (*models.Horario, error) {
	in.ID = 0
	resp, err := c.do(ctx, "PUT", fmt.Sprintf("/api/horarios/%d", id), in)
	if err != nil {
		return nil, err
	}
	h := models.Horario{ID: id, DiaSemana: in.DiaSemana, HoraApertura: in.HoraApertura, HoraCierre: in.HoraCierre}
	if err := resp.decode(&h); err != nil {
		return nil, err
	}
	return &h, nil
}

// DeleteHorario deletes one opening range.
func (c *Client) DeleteHorario(ctx context.Context, id int64) error {
	_, err := c.do(ctx, "DELETE", fmt.Sprintf("/api/horarios/%d", id), nil)
	return err
}

// DashboardMetrics returns the aggregate dashboard counters.
func (c *Client) DashboardMetrics(ctx context.Context) (*models.DashboardMetrics, error) {
	resp, err := c.do(ctx, "GET", "/api/dashboard/metrics", nil)
	if err != nil {
		return nil, err
	}
	var m models.DashboardMetrics
	if err := resp.decode(&m); err != nil {
		return nil, err
	}
	return &m, nil
}
