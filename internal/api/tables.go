package api

import (
	"context"
	"errors"
	"fmt"

	"github.com/marcus/rsv/internal/models"
)

const mesasPath = "/api/mesas"

// ListTables returns every table; defaults are applied to missing fields.
func (c *Client) ListTables(ctx context.Context) ([]models.Table, error) {
	resp, err := c.do(ctx, "GET", mesasPath, nil)
	if err != nil {
		return nil, err
	}
	return decodeList[models.Table](resp)
}

// CreateTable creates a table.
func (c *Client) CreateTable(ctx context.Context, in models.TableInput) (*models.Table, error) {
	resp, err := c.do(ctx, "POST", mesasPath, in)
	if err != nil {
		return nil, err
	}
	if resp.empty() {
		return nil, errors.New("La respuesta del servidor está vacía")
	}
	var t models.Table
	if err := resp.decode(&t); err != nil {
		return nil, err
	}
	return &t, nil
}

// UpdateTable writes the full table state. An empty response body yields
// the table built from in.
func (c *Client) UpdateTable(ctx context.Context, id int64, in models.TableInput) (*models.Table, error) {
	resp, err := c.do(ctx, "PUT", fmt.Sprintf("%s/%d", mesasPath, id), in)
	if err != nil {
		return nil, err
	}
	if resp.empty() {
		return tableFromInput(id, in), nil
	}
	var t models.Table
	if err := resp.decode(&t); err != nil {
		return nil, err
	}
	if t.ID == 0 {
		t.ID = id
	}
	return &t, nil
}

// DeleteTable deletes a table.
func (c *Client) DeleteTable(ctx context.Context, id int64) error {
	_, err := c.do(ctx, "DELETE", fmt.Sprintf("%s/%d", mesasPath, id), nil)
	return err
}

func tableFromInput(id int64, in models.TableInput) *models.Table {
	return &models.Table{
		ID:         id,
		Nombre:     in.Nombre,
		Capacidad:  in.Capacidad,
		Tipo:       in.Tipo,
		X:          in.X,
		Y:          in.Y,
		Width:      in.Width,
		Height:     in.Height,
		Rotation:   in.Rotation,
		Disponible: in.Disponible,
		Ubicacion:  in.Ubicacion,
	}
}
