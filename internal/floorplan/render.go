package floorplan

import (
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/marcus/rsv/internal/models"
)

// status colors shared by the CLI and the dashboard
var statusStyles = map[models.TableStatus]lipgloss.Style{
	models.TableAvailable:   lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50")),
	models.TableOccupied:    lipgloss.NewStyle().Foreground(lipgloss.Color("#F44336")),
	models.TablePending:     lipgloss.NewStyle().Foreground(lipgloss.Color("#FF9800")),
	models.TableUnavailable: lipgloss.NewStyle().Foreground(lipgloss.Color("#9E9E9E")),
}

var selectedStyle = lipgloss.NewStyle().Bold(true).Reverse(true)

// Style returns the display style of a table status
func Style(s models.TableStatus) lipgloss.Style {
	if st, ok := statusStyles[s]; ok {
		return st
	}
	return statusStyles[models.TableAvailable]
}

// Legend renders one colored swatch per status
func Legend() string {
	parts := make([]string, 0, len(statusStyles))
	for _, s := range models.TableStatuses() {
		parts = append(parts, Style(s).Render("■")+" "+s.Label())
	}
	return strings.Join(parts, "   ")
}

type cell struct {
	r     rune
	owner int
}

// grid lays the tables out on width×height cells scaled to fit
func grid(tables []models.Table, width, height int) [][]cell {
	rows := make([][]cell, height)
	for y := range rows {
		rows[y] = make([]cell, width)
		for x := range rows[y] {
			rows[y][x] = cell{' ', -1}
		}
	}
	if width <= 0 || height <= 0 || len(tables) == 0 {
		return rows
	}

	var maxX, maxY float64
	for _, t := range tables {
		w, h := footprint(t)
		maxX = math.Max(maxX, t.X+w)
		maxY = math.Max(maxY, t.Y+h)
	}
	sx := float64(width) / math.Max(maxX, 1)
	sy := float64(height) / math.Max(maxY, 1)

	for i, t := range tables {
		w, h := footprint(t)
		x0 := clampInt(int(t.X*sx), 0, width-1)
		y0 := clampInt(int(t.Y*sy), 0, height-1)
		x1 := clampInt(x0+max(int(w*sx), 3)-1, x0, width-1)
		y1 := clampInt(y0+max(int(h*sy), 1)-1, y0, height-1)
		draw(rows, t, i, x0, y0, x1, y1)
	}
	return rows
}

// footprint swaps the sides of tables turned roughly a quarter
func footprint(t models.Table) (float64, float64) {
	r := NormalizeRotation(t.Rotation)
	if (r > 45 && r < 135) || (r > 225 && r < 315) {
		return t.Height, t.Width
	}
	return t.Width, t.Height
}

func draw(rows [][]cell, t models.Table, owner, x0, y0, x1, y1 int) {
	left, right := '[', ']'
	if t.Tipo == models.ShapeRound {
		left, right = '(', ')'
	}
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			r := '·'
			switch {
			case x == x0:
				r = left
			case x == x1:
				r = right
			}
			rows[y][x] = cell{r, owner}
		}
	}

	label := []rune(strconv.FormatInt(t.ID, 10))
	mid := y0 + (y1-y0)/2
	inner := x1 - x0 - 1
	if inner <= 0 {
		return
	}
	if len(label) > inner {
		label = label[:inner]
	}
	start := x0 + 1 + (inner-len(label))/2
	for i, r := range label {
		rows[mid][start+i] = cell{r, owner}
	}
}

// Render draws the plan as plain text lines
func (p *Plan) Render(width, height int) string {
	rows := grid(p.Tables(), width, height)
	lines := make([]string, len(rows))
	for y, row := range rows {
		var b strings.Builder
		for _, c := range row {
			b.WriteRune(c.r)
		}
		lines[y] = strings.TrimRight(b.String(), " ")
	}
	return strings.Join(lines, "\n")
}

// RenderStyled draws the plan with status colors and the selection
// highlighted.
func (p *Plan) RenderStyled(width, height int) string {
	tables := p.Tables()
	selected := p.Selected()
	rows := grid(tables, width, height)

	lines := make([]string, len(rows))
	for y, row := range rows {
		var b strings.Builder
		for x := 0; x < len(row); {
			owner := row[x].owner
			var run strings.Builder
			for x < len(row) && row[x].owner == owner {
				run.WriteRune(row[x].r)
				x++
			}
			if owner < 0 {
				b.WriteString(run.String())
				continue
			}
			st := Style(tables[owner].Status)
			if tables[owner].ID == selected {
				st = st.Inherit(selectedStyle)
			}
			b.WriteString(st.Render(run.String()))
		}
		lines[y] = b.String()
	}
	return strings.Join(lines, "\n")
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
