package monitor

import (
	"strings"

	"github.com/charmbracelet/huh"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/marcus/rsv/internal/dateparse"
	"github.com/marcus/rsv/internal/models"
	"github.com/marcus/rsv/internal/validate"
	"github.com/marcus/rsv/pkg/monitor/keymap"
)

// handleKey processes key input using the keymap registry
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ctx := m.currentContext()

	// Filter mode: bound keys act, the rest edit the text
	if ctx == keymap.ContextFilter {
		if cmd, found := m.Keymap.Lookup(msg, ctx); found {
			return m.executeCommand(cmd)
		}
		var inputCmd tea.Cmd
		m.FilterInput, inputCmd = m.FilterInput.Update(msg)
		return m, inputCmd
	}

	cmd, found := m.Keymap.Lookup(msg, ctx)
	if !found {
		return m, nil
	}
	return m.executeCommand(cmd)
}

// executeCommand runs a keymap command against the model
func (m Model) executeCommand(cmd keymap.Command) (tea.Model, tea.Cmd) {
	switch cmd {
	case keymap.CmdQuit:
		return m, tea.Quit

	case keymap.CmdToggleHelp:
		if m.Overlay == OverlayHelp {
			m.Overlay = m.helpReturn
		} else {
			m.helpReturn = m.Overlay
			m.Overlay = OverlayHelp
		}
		return m, nil

	case keymap.CmdRefresh:
		if m.Overlay == OverlayFloor {
			return m, m.loadFloor()
		}
		return m, m.reload()

	case keymap.CmdNextPanel:
		m.ActivePanel = (m.ActivePanel + 1) % panelCount
		return m, nil
	case keymap.CmdPrevPanel:
		m.ActivePanel = (m.ActivePanel + panelCount - 1) % panelCount
		return m, nil
	case keymap.CmdPanelToday:
		m.ActivePanel = PanelToday
		return m, nil
	case keymap.CmdPanelWaitlist:
		m.ActivePanel = PanelWaitlist
		return m, nil
	case keymap.CmdPanelInbox:
		m.ActivePanel = PanelNotifications
		return m, nil

	case keymap.CmdCursorDown:
		m.moveCursor(1)
		return m, nil
	case keymap.CmdCursorUp:
		m.moveCursor(-1)
		return m, nil
	case keymap.CmdCursorTop:
		m.Cursor[m.ActivePanel] = 0
		return m, nil
	case keymap.CmdCursorBottom:
		m.Cursor[m.ActivePanel] = m.rowCount(m.ActivePanel) - 1
		m.clampCursors()
		return m, nil

	case keymap.CmdSelect:
		return m.openDetail()

	case keymap.CmdClose:
		return m.closeOverlay()

	case keymap.CmdCycleStatus:
		r, ok := m.statusTarget()
		if !ok {
			return m, nil
		}
		return m, m.changeStatus(r)

	case keymap.CmdEdit:
		return m.openEdit()

	case keymap.CmdNewReservation:
		m.Form = NewReservationForm(0, models.ReservationInput{
			NumPersonas: 2,
			Fecha:       dateparse.Today(m.deps.Now()),
		})
		m.Overlay = OverlayForm
		return m, m.Form.Form.Init()

	case keymap.CmdDelete:
		return m.requestDelete()

	case keymap.CmdConfirm:
		p := m.confirmPanel
		m.Overlay = OverlayNone
		return m, m.confirmDelete(p)

	case keymap.CmdCancel:
		if m.confirmPanel == PanelWaitlist {
			m.deps.Waitlist.CancelDelete()
		} else {
			m.deps.List.CancelDelete()
		}
		m.Overlay = OverlayNone
		return m, nil

	case keymap.CmdFilterName:
		return m.openFilter(FilterName)
	case keymap.CmdFilterDate:
		return m.openFilter(FilterDate)

	case keymap.CmdFilterApply:
		value := strings.TrimSpace(m.FilterInput.Value())
		if m.FilterField == FilterDate && value != "" {
			day, err := dateparse.ParseDateFrom(value, m.deps.Now())
			if err != nil {
				m.toast("Fecha no válida", models.ToastError)
				return m, nil
			}
			value = day
		}
		m.FilterInput.Blur()
		m.Overlay = OverlayNone
		return m, m.applyFilter(m.FilterField, value)

	case keymap.CmdFilterCancel:
		m.FilterInput.Blur()
		m.Overlay = OverlayNone
		return m, nil

	case keymap.CmdClearFilter:
		return m, m.resetFilter()

	case keymap.CmdProcess:
		if m.ActivePanel != PanelWaitlist {
			return m, nil
		}
		return m, m.processWaitlist()

	case keymap.CmdMarkAllRead:
		m.deps.Center.MarkAllAsRead()
		return m, nil

	case keymap.CmdDismissToast:
		if toasts := m.deps.Center.Toasts(); len(toasts) > 0 {
			m.deps.Center.DismissToast(toasts[len(toasts)-1].ID)
		}
		return m, nil

	case keymap.CmdFloorPlan:
		if m.deps.Plan == nil {
			return m, nil
		}
		m.Overlay = OverlayFloor
		return m, m.loadFloor()

	case keymap.CmdFloorNext:
		m.deps.Plan.SelectNext(1)
		return m, nil
	case keymap.CmdFloorPrev:
		m.deps.Plan.SelectNext(-1)
		return m, nil
	case keymap.CmdFloorOccupied:
		return m.forceTableStatus(models.TableOccupied)
	case keymap.CmdFloorAvailable:
		return m.forceTableStatus(models.TableAvailable)
	case keymap.CmdFloorUnavailable:
		return m.forceTableStatus(models.TableUnavailable)
	case keymap.CmdFloorClear:
		if id := m.deps.Plan.Selected(); id != 0 {
			m.deps.Plan.ClearOverride(id)
		}
		return m, nil

	case keymap.CmdFormCancel:
		if m.Form != nil && m.Form.Mode == FormModeEdit {
			m.deps.List.CancelEdit()
		}
		m.Form = nil
		m.Overlay = OverlayNone
		return m, nil
	}
	return m, nil
}

func (m *Model) moveCursor(delta int) {
	m.Cursor[m.ActivePanel] += delta
	m.clampCursors()
}

// statusTarget is the reservation s acts on: the open detail, or the
// Today cursor.
func (m Model) statusTarget() (models.Reservation, bool) {
	if m.Overlay == OverlayDetail {
		if r := m.detailReservation(); r != nil {
			return *r, true
		}
		return models.Reservation{}, false
	}
	if m.ActivePanel != PanelToday {
		return models.Reservation{}, false
	}
	return m.selectedReservation()
}

func (m Model) openDetail() (tea.Model, tea.Cmd) {
	switch m.ActivePanel {
	case PanelToday:
		r, ok := m.selectedReservation()
		if !ok {
			return m, nil
		}
		if err := m.deps.List.View(r.ID); err != nil {
			return m, nil
		}
		m.detailFrom = detailFromList
		m.Overlay = OverlayDetail
	case PanelNotifications:
		n, ok := m.selectedNotification()
		if !ok {
			return m, nil
		}
		m.deps.Center.MarkAsRead(n.ID)
		m.deps.Center.ShowModal(n.Reservation)
		m.detailFrom = detailFromInbox
		m.Overlay = OverlayDetail
	}
	return m, nil
}

func (m Model) closeOverlay() (tea.Model, tea.Cmd) {
	switch m.Overlay {
	case OverlayDetail:
		m.closeDetail()
	case OverlayFloor:
		m.deps.Plan.ClearSelection()
	}
	m.Overlay = OverlayNone
	return m, nil
}

// openEdit opens the edit form for the detail or the Today cursor
func (m Model) openEdit() (tea.Model, tea.Cmd) {
	r, ok := m.statusTarget()
	if !ok {
		return m, nil
	}
	in, err := m.deps.List.BeginEdit(r.ID)
	if err != nil {
		// inbox reservations may be outside the active list
		m.toast("La reserva no está en la lista actual", models.ToastWarning)
		return m, nil
	}
	if m.Overlay == OverlayDetail {
		m.closeDetail()
	}
	m.Form = NewReservationForm(r.ID, in)
	m.Overlay = OverlayForm
	return m, m.Form.Form.Init()
}

func (m *Model) closeDetail() {
	if m.detailFrom == detailFromInbox {
		m.deps.Center.CloseModal()
	} else {
		m.deps.List.CloseView()
	}
}

func (m Model) requestDelete() (tea.Model, tea.Cmd) {
	switch m.ActivePanel {
	case PanelToday:
		r, ok := m.selectedReservation()
		if !ok || m.deps.List.RequestDelete(r.ID) != nil {
			return m, nil
		}
	case PanelWaitlist:
		e, ok := m.selectedEntry()
		if !ok || m.deps.Waitlist.RequestDelete(e.ID) != nil {
			return m, nil
		}
	case PanelNotifications:
		// inbox entries go without confirmation
		if n, ok := m.selectedNotification(); ok {
			m.deps.Center.RemoveNotification(n.ID)
			m.clampCursors()
		}
		return m, nil
	}
	m.confirmPanel = m.ActivePanel
	m.Overlay = OverlayConfirm
	return m, nil
}

func (m Model) openFilter(field FilterField) (tea.Model, tea.Cmd) {
	if m.ActivePanel == PanelNotifications {
		return m, nil
	}
	m.FilterField = field
	m.FilterInput.Reset()
	switch field {
	case FilterName:
		m.FilterInput.Prompt = "Nombre: "
		m.FilterInput.Placeholder = "cliente"
	case FilterDate:
		m.FilterInput.Prompt = "Fecha: "
		m.FilterInput.Placeholder = "AAAA-MM-DD, hoy, mañana"
	}
	m.Overlay = OverlayFilter
	return m, m.FilterInput.Focus()
}

func (m Model) forceTableStatus(s models.TableStatus) (tea.Model, tea.Cmd) {
	id := m.deps.Plan.Selected()
	if id == 0 {
		return m, nil
	}
	msg, err := m.deps.Plan.ForceStatus(id, s)
	if err != nil {
		m.toast(err.Error(), models.ToastError)
		return m, nil
	}
	m.toast(msg, models.ToastSuccess)
	return m, nil
}

// handleFormUpdate forwards messages to the huh form and submits it once
// completed
func (m Model) handleFormUpdate(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if cmd, found := m.Keymap.Lookup(keyMsg, keymap.ContextForm); found {
			return m.executeCommand(cmd)
		}
	}

	form, cmd := m.Form.Form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.Form.Form = f
	}

	switch m.Form.Form.State {
	case huh.StateCompleted:
		return m.submitForm()
	case huh.StateAborted:
		return m.executeCommand(keymap.CmdFormCancel)
	}
	return m, cmd
}

// submitForm validates the form input before any request. Invalid input
// reopens the form with the values kept.
func (m Model) submitForm() (tea.Model, tea.Cmd) {
	fs := m.Form
	in, err := fs.Input()
	if err == nil {
		if fs.Mode == FormModeEdit {
			err = validate.ReservationEdit(in)
		} else {
			err = validate.Reservation(in, m.deps.Now())
		}
	}
	if err != nil {
		m.toast(formError(err), models.ToastError)
		m.Form = fs.Reopen()
		return m, m.Form.Form.Init()
	}

	m.Form = nil
	m.Overlay = OverlayNone
	if fs.Mode == FormModeEdit {
		m.deps.List.SetEditInput(in)
		return m, m.saveEdit()
	}
	return m, m.createReservation(in)
}

// formError returns the first validation message, or the error text
func formError(err error) string {
	if verrs, ok := validate.AsErrors(err); ok {
		for _, field := range []string{"nombreCliente", "telefono", "email", "numPersonas", "fecha", "hora", "mesaId", "notas"} {
			if msg, ok := verrs[field]; ok {
				return msg
			}
		}
	}
	return err.Error()
}
