package monitor

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/marcus/rsv/internal/dateparse"
	"github.com/marcus/rsv/internal/listview"
	"github.com/marcus/rsv/internal/output"
)

func (m Model) renderView() string {
	if m.Width == 0 || m.Height == 0 {
		return "Cargando..."
	}

	if m.Width < MinWidth || m.Height < MinHeight {
		return m.renderCompact()
	}

	switch m.Overlay {
	case OverlayHelp:
		return helpStyle.Render(m.Keymap.GenerateHelp())
	case OverlayForm:
		if m.Form != nil {
			return lipgloss.Place(m.Width, m.Height, lipgloss.Center, lipgloss.Center,
				modalStyle.Render(m.Form.Form.View()))
		}
	case OverlayFloor:
		return m.placeOverlay(m.renderFloor())
	}

	header := m.renderHeader()
	tabs := m.renderTabs()
	footer := m.renderFooter()
	toasts := m.renderToasts()

	used := lipgloss.Height(header) + lipgloss.Height(tabs) + lipgloss.Height(footer)
	if toasts != "" {
		used += lipgloss.Height(toasts)
	}
	panel := m.renderPanel(m.Height - used)

	parts := []string{header, tabs, panel}
	if toasts != "" {
		parts = append(parts, toasts)
	}
	parts = append(parts, footer)
	base := lipgloss.JoinVertical(lipgloss.Left, parts...)

	switch m.Overlay {
	case OverlayDetail:
		return m.placeOverlay(m.renderDetail())
	case OverlayConfirm:
		return m.placeOverlay(m.renderConfirmation())
	}
	return base
}

func (m Model) placeOverlay(content string) string {
	return lipgloss.Place(m.Width, m.Height, lipgloss.Center, lipgloss.Center, content,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color("0")))
}

// renderCompact renders a minimal view for small terminals
func (m Model) renderCompact() string {
	var s strings.Builder
	s.WriteString(m.restaurantName() + " (amplía la ventana)\n\n")
	s.WriteString(fmt.Sprintf("Reservas: %d\n", len(m.deps.List.Active())))
	s.WriteString(fmt.Sprintf("En espera: %d\n", m.deps.Waitlist.PendingCount()))
	s.WriteString(fmt.Sprintf("Sin leer: %d\n", m.deps.Center.UnreadCount()))
	s.WriteString("\nq:salir r:recargar ?:ayuda")
	return s.String()
}

func (m Model) restaurantName() string {
	if m.deps.Restaurant != "" {
		return m.deps.Restaurant
	}
	return "rsv"
}

// renderHeader shows the restaurant, the UTC day, metrics and unread count
func (m Model) renderHeader() string {
	now := m.deps.Now()
	left := headerStyle.Render(m.restaurantName()) + "  " +
		subtleStyle.Render(dateparse.Today(now)+" "+now.UTC().Format("15:04")+" UTC")

	var right []string
	switch {
	case m.Metrics != nil:
		right = append(right, fmt.Sprintf("Ocupación %.0f%% (%+.1f%%)  Hoy %d  Próximas %d",
			m.Metrics.Ocupacion, m.Metrics.VariacionOcupacion,
			m.Metrics.ReservasHoy, m.Metrics.ProximasReservas))
	case m.MetricsErr != nil:
		right = append(right, errorStyle.Render("métricas no disponibles"))
	}
	if n := m.deps.Center.UnreadCount(); n > 0 {
		right = append(right, badgeStyle.Render(fmt.Sprintf("%d sin leer", n)))
	}
	r := strings.Join(right, "  ")

	pad := m.Width - lipgloss.Width(left) - lipgloss.Width(r) - 1
	if pad < 1 {
		pad = 1
	}
	return ansi.Truncate(left+strings.Repeat(" ", pad)+r, m.Width, "…")
}

func (m Model) renderTabs() string {
	counts := map[Panel]string{
		PanelToday:         fmt.Sprintf("%d", len(m.deps.List.Active())),
		PanelWaitlist:      fmt.Sprintf("%d", m.deps.Waitlist.PendingCount()),
		PanelNotifications: fmt.Sprintf("%d", m.deps.Center.UnreadCount()),
	}
	tabs := make([]string, 0, panelCount)
	for p := Panel(0); p < panelCount; p++ {
		label := fmt.Sprintf("%d %s (%s)", p+1, p, counts[p])
		if p == m.ActivePanel {
			tabs = append(tabs, panelTitleStyle.Render(label))
		} else {
			tabs = append(tabs, subtleStyle.Render(" "+label+" "))
		}
	}
	return strings.Join(tabs, " ")
}

// renderPanel renders the active panel filling height lines
func (m Model) renderPanel(height int) string {
	var title string
	var lines []string
	var loading bool
	var err error

	switch m.ActivePanel {
	case PanelWaitlist:
		title, lines = m.waitlistLines()
		loading, err = m.deps.Waitlist.Loading(), m.deps.Waitlist.Err()
	case PanelNotifications:
		title, lines = m.notificationLines()
	default:
		title, lines = m.reservationLines()
		loading, err = m.deps.List.Loading(), m.deps.List.Err()
		if err == nil && m.deps.List.IsDefault() {
			err = m.deps.Store.Snapshot().LastError
		}
	}

	if loading {
		title += " " + m.Spinner.View()
	}
	if err != nil {
		lines = append([]string{errorStyle.Render(err.Error())}, lines...)
	}
	return m.wrapPanel(title, lines, height)
}

// wrapPanel boxes content, windowing lines around the cursor
func (m Model) wrapPanel(title string, lines []string, height int) string {
	contentWidth := m.Width - 4
	contentHeight := height - 3 // title and border
	if contentHeight < 1 {
		contentHeight = 1
	}

	offset := 0
	if c := m.Cursor[m.ActivePanel]; c >= contentHeight {
		offset = c - contentHeight + 1
	}
	if offset > len(lines) {
		offset = len(lines)
	}
	lines = lines[offset:]
	if len(lines) > contentHeight {
		lines = lines[:contentHeight]
	}
	for len(lines) < contentHeight {
		lines = append(lines, "")
	}
	for i, line := range lines {
		lines[i] = ansi.Truncate(line, contentWidth, "…")
	}

	inner := lipgloss.JoinVertical(lipgloss.Left, panelTitleStyle.Render(title), strings.Join(lines, "\n"))
	return activePanelStyle.Width(m.Width - 2).Render(inner)
}

func (m Model) reservationLines() (string, []string) {
	list := m.deps.List
	f := list.Filter()
	title := "Reservas de hoy"
	if !list.IsDefault() {
		var parts []string
		if f.Nombre != "" {
			parts = append(parts, fmt.Sprintf("nombre %q", f.Nombre))
		}
		parts = append(parts, f.Fecha)
		title = "Reservas: " + strings.Join(parts, ", ")
	}

	rows := list.Active()
	if len(rows) == 0 {
		return title, []string{subtleStyle.Render("No hay reservas")}
	}

	fresh := map[int64]bool{}
	for _, id := range list.NewIDs() {
		fresh[id] = true
	}
	cursor := m.Cursor[PanelToday]
	lines := make([]string, 0, len(rows)+2)
	for i, r := range rows {
		line := output.ReservationLine(r)
		switch {
		case i == cursor:
			line = selectedRowStyle.Render("> " + ansi.Strip(line))
		case fresh[r.ID]:
			line = newRowStyle.Render("+ " + ansi.Strip(line))
		default:
			line = "  " + line
		}
		lines = append(lines, line)
	}

	if list.IsDefault() {
		now := m.deps.Now()
		sum := listview.Summarize(rows, f.Fecha, now)
		footer := fmt.Sprintf("%d reservas · %d pendientes · %d confirmadas · %d próximas 2h",
			sum.Total, sum.Pendientes, sum.Confirmadas, sum.Proximas)
		if next, ok := listview.NextReservation(rows, now); ok {
			footer += fmt.Sprintf(" · siguiente %s %s", dateparse.FormatHour(next.Fecha), next.NombreCliente)
		}
		lines = append(lines, "", subtleStyle.Render(footer))
	}
	return title, lines
}

func (m Model) waitlistLines() (string, []string) {
	f := m.deps.Waitlist.Filter()
	title := "Lista de espera " + f.FechaDeseada
	if f.Nombre != "" {
		title += fmt.Sprintf(" nombre %q", f.Nombre)
	}
	entries := m.deps.Waitlist.Entries()
	if len(entries) == 0 {
		return title, []string{subtleStyle.Render("Nadie en espera")}
	}
	cursor := m.Cursor[PanelWaitlist]
	lines := make([]string, len(entries))
	for i, e := range entries {
		line := output.WaitlistLine(e)
		if i == cursor {
			lines[i] = selectedRowStyle.Render("> " + ansi.Strip(line))
		} else {
			lines[i] = "  " + line
		}
	}
	return title, lines
}

func (m Model) notificationLines() (string, []string) {
	title := "Notificaciones"
	list := m.deps.Center.Notifications()
	if len(list) == 0 {
		return title, []string{subtleStyle.Render("Sin notificaciones")}
	}
	now := m.deps.Now()
	cursor := m.Cursor[PanelNotifications]
	lines := make([]string, len(list))
	for i, n := range list {
		line := output.NotificationLine(n, now)
		switch {
		case i == cursor:
			lines[i] = selectedRowStyle.Render("> " + ansi.Strip(line))
		case !n.Read:
			lines[i] = " " + unreadStyle.Render(ansi.Strip(line))
		default:
			lines[i] = " " + line
		}
	}
	return title, lines
}

// renderToasts stacks toasts at the bottom right, newest last
func (m Model) renderToasts() string {
	toasts := m.deps.Center.Toasts()
	if len(toasts) == 0 {
		return ""
	}
	boxes := make([]string, len(toasts))
	for i, t := range toasts {
		msg := ansi.Truncate(t.Message, toastWidth-4, "…")
		boxes[i] = toastStyle(t.Type).Render(msg)
	}
	stack := lipgloss.JoinVertical(lipgloss.Right, boxes...)
	return lipgloss.PlaceHorizontal(m.Width, lipgloss.Right, stack)
}

func (m Model) renderFooter() string {
	if m.Overlay == OverlayFilter {
		return " " + m.FilterInput.View() + subtleStyle.Render("  enter:aplicar esc:cancelar")
	}
	if m.StatusMessage != "" {
		style := subtleStyle
		if m.StatusIsError {
			style = errorStyle
		}
		return ansi.Truncate(" "+style.Render(m.StatusMessage), m.Width, "…")
	}

	var keys string
	switch m.ActivePanel {
	case PanelWaitlist:
		keys = "tab:panel j/k:mover d:eliminar p:procesar /:nombre f:fecha r:recargar ?:ayuda q:salir"
	case PanelNotifications:
		keys = "tab:panel j/k:mover enter:abrir d:quitar a:leídas x:cerrar aviso ?:ayuda q:salir"
	default:
		keys = "tab:panel enter:ver s:estado e:editar n:nueva d:eliminar /:nombre f:fecha m:plano ?:ayuda"
	}
	return ansi.Truncate(" "+helpStyle.Render(keys), m.Width, "…")
}

// renderDetail renders the reservation modal
func (m Model) renderDetail() string {
	r := m.detailReservation()
	if r == nil {
		return ""
	}
	width := m.Width * 2 / 3
	if width < 50 {
		width = 50
	}
	body := output.FormatReservationLong(*r)
	if !r.HasTable() {
		body += subtleStyle.Render(listview.NoTableLabel) + "\n"
	}
	hints := subtleStyle.Render("s:estado  e:editar  esc:cerrar")
	return modalStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, body, hints))
}

// renderConfirmation renders the delete confirmation dialog
func (m Model) renderConfirmation() string {
	var what string
	if m.confirmPanel == PanelWaitlist {
		if e := m.deps.Waitlist.PendingDelete(); e != nil {
			what = fmt.Sprintf("%s (%d personas)", e.NombreCliente, e.NumPersonas)
		}
	} else if r := m.deps.List.PendingDelete(); r != nil {
		what = fmt.Sprintf("%s, %s", r.NombreCliente, dateparse.FormatShort(r.Fecha))
	}

	var content strings.Builder
	content.WriteString(titleStyle.Render("¿Eliminar?"))
	content.WriteString("\n")
	content.WriteString(subtleStyle.Render(ansi.Truncate(what, 50, "…")))
	content.WriteString("\n\n[S]í (y)  [N]o")
	return confirmStyle.Width(56).Render(content.String())
}
