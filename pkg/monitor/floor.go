package monitor

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/marcus/rsv/internal/floorplan"
	"github.com/marcus/rsv/internal/output"
)

// renderFloor draws the floor plan overlay: the styled grid, the legend,
// occupancy and the selected table.
func (m Model) renderFloor() string {
	plan := m.deps.Plan
	width := m.Width - 8
	height := m.Height - 12
	if height < 5 {
		height = 5
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Plano de sala %s", plan.Zone())))
	b.WriteString("\n\n")

	if m.FloorErr != nil {
		b.WriteString(errorStyle.Render(m.FloorErr.Error()))
		b.WriteString("\n")
	} else if len(plan.Tables()) == 0 {
		b.WriteString(subtleStyle.Render("No hay mesas en esta zona"))
		b.WriteString("\n")
	} else {
		b.WriteString(plan.RenderStyled(width, height))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(floorplan.Legend())
	b.WriteString("\n")

	met := plan.Metrics()
	b.WriteString(subtleStyle.Render(fmt.Sprintf("%d/%d mesas libres · %d/%d plazas ocupadas",
		met.Available, met.Total, met.OccupiedSeats, met.TotalSeats)))
	b.WriteString("\n")

	if t, ok := plan.Table(plan.Selected()); ok {
		status := floorplan.Style(t.Status).Render(t.Status.Label())
		b.WriteString(ansi.Truncate(output.TableLine(t, status), width, "…"))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(subtleStyle.Render("tab/h/l:mesa  o:ocupada v:libre u:no disponible c:automático  r:recargar  esc:cerrar"))

	return modalStyle.Width(width + 4).Render(b.String())
}
