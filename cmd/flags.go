package cmd

import (
	"fmt"
	"strings"

	"github.com/marcus/rsv/internal/models"
	"github.com/spf13/pflag"
)

// statusValue is a --status flag that accepts backend names and english
// aliases in any case. Empty means "any status".
type statusValue struct {
	s *models.ReservationStatus
}

var _ pflag.Value = statusValue{}

func newStatusValue(p *models.ReservationStatus) statusValue {
	return statusValue{s: p}
}

func (v statusValue) String() string {
	if v.s == nil {
		return ""
	}
	return string(*v.s)
}

func (v statusValue) Set(s string) error {
	if strings.TrimSpace(s) == "" {
		*v.s = ""
		return nil
	}
	st, err := models.ParseReservationStatus(s)
	if err != nil {
		return err
	}
	*v.s = st
	return nil
}

func (v statusValue) Type() string {
	return "status"
}

// shapeValue is a --shape flag restricted to the two drawable shapes
type shapeValue struct {
	s *models.TableShape
}

var _ pflag.Value = shapeValue{}

func newShapeValue(p *models.TableShape) shapeValue {
	return shapeValue{s: p}
}

func (v shapeValue) String() string {
	if v.s == nil {
		return ""
	}
	return string(*v.s)
}

func (v shapeValue) Set(s string) error {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "rect", "rectangular", "rectangle", "cuadrada":
		*v.s = models.ShapeRectangular
	case "round", "redonda", "circular", "circle":
		*v.s = models.ShapeRound
	default:
		return fmt.Errorf("unknown shape %q (use rectangular or round)", s)
	}
	return nil
}

func (v shapeValue) Type() string {
	return "shape"
}
