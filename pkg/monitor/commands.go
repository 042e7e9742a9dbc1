package monitor

import (
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/marcus/rsv/internal/listview"
	"github.com/marcus/rsv/internal/models"
	"github.com/marcus/rsv/internal/waitlist"
)

// tickInterval drives clock, highlight and toast expiry re-renders
const tickInterval = time.Second

// scheduleTick returns a command that sends a TickMsg after tickInterval
func (m Model) scheduleTick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// waitForState blocks on the store subscription. A closed channel ends
// the chain.
func (m Model) waitForState() tea.Cmd {
	ch := m.states
	return func() tea.Msg {
		st, ok := <-ch
		if !ok {
			return nil
		}
		return StoreMsg{State: st}
	}
}

// waitForChange blocks until a controller reports a change
func (m Model) waitForChange() tea.Cmd {
	ch := m.deps.Changes
	ctx := m.ctx
	return func() tea.Msg {
		select {
		case <-ch:
			return ChangedMsg{}
		case <-ctx.Done():
			return nil
		}
	}
}

func (m Model) fetchMetrics() tea.Cmd {
	if m.deps.Metrics == nil {
		return nil
	}
	src, ctx := m.deps.Metrics, m.ctx
	return func() tea.Msg {
		metrics, err := src.DashboardMetrics(ctx)
		return MetricsMsg{Metrics: metrics, Err: err}
	}
}

func (m Model) scheduleMetrics() tea.Cmd {
	return tea.Tick(m.deps.MetricsInterval, func(t time.Time) tea.Msg {
		return MetricsTickMsg(t)
	})
}

func (m Model) loadFloor() tea.Cmd {
	plan, st, ctx := m.deps.Plan, m.deps.Store, m.ctx
	return func() tea.Msg {
		err := plan.Load(ctx)
		if err == nil {
			snap := st.Snapshot()
			plan.SetReservations(snap.Reservations, snap.Day)
		}
		return FloorLoadedMsg{Err: err}
	}
}

// run wraps a blocking controller call in a command reporting
// ActionDoneMsg. Controllers raise their own toasts.
func (m Model) run(action string, fn func() error) tea.Cmd {
	return func() tea.Msg {
		return ActionDoneMsg{Action: action, Err: fn()}
	}
}

func (m Model) changeStatus(r models.Reservation) tea.Cmd {
	list, ctx := m.deps.List, m.ctx
	next := r.Estado.Next()
	return m.run("estado", func() error {
		_, err := list.ChangeStatus(ctx, r.ID, next)
		return err
	})
}

func (m Model) saveEdit() tea.Cmd {
	list, ctx := m.deps.List, m.ctx
	return m.run("editar", func() error {
		_, err := list.SaveEdit(ctx)
		return err
	})
}

func (m Model) createReservation(in models.ReservationInput) tea.Cmd {
	list, ctx := m.deps.List, m.ctx
	return func() tea.Msg {
		out, err := list.Create(ctx, in)
		return CreatedMsg{Outcome: out, Err: err}
	}
}

func (m Model) confirmDelete(p Panel) tea.Cmd {
	ctx := m.ctx
	if p == PanelWaitlist {
		wl := m.deps.Waitlist
		return m.run("eliminar", func() error { return wl.ConfirmDelete(ctx) })
	}
	list := m.deps.List
	return m.run("eliminar", func() error { return list.ConfirmDelete(ctx) })
}

func (m Model) processWaitlist() tea.Cmd {
	wl, ctx := m.deps.Waitlist, m.ctx
	return m.run("procesar", func() error {
		_, err := wl.ProcessAll(ctx)
		return err
	})
}

func (m Model) applyFilter(field FilterField, value string) tea.Cmd {
	ctx := m.ctx
	if m.ActivePanel == PanelWaitlist {
		wl := m.deps.Waitlist
		f := wl.Filter()
		if field == FilterName {
			f.Nombre = value
		} else {
			f.FechaDeseada = value
		}
		return m.run("filtrar", func() error { return ignoreSuperseded(wl.SetFilter(ctx, f)) })
	}
	list := m.deps.List
	f := list.Filter()
	if field == FilterName {
		f.Nombre = value
	} else {
		f.Fecha = value
	}
	return m.run("filtrar", func() error { return ignoreSuperseded(list.SetFilter(ctx, f)) })
}

func (m Model) resetFilter() tea.Cmd {
	ctx := m.ctx
	if m.ActivePanel == PanelWaitlist {
		wl := m.deps.Waitlist
		return m.run("filtrar", func() error {
			return ignoreSuperseded(wl.SetFilter(ctx, models.WaitlistFilter{}))
		})
	}
	list := m.deps.List
	return m.run("filtrar", func() error { return ignoreSuperseded(list.ResetFilter(ctx)) })
}

func (m Model) reload() tea.Cmd {
	ctx := m.ctx
	list, wl := m.deps.List, m.deps.Waitlist
	cmds := []tea.Cmd{
		m.run("recargar", func() error { return ignoreSuperseded(list.Refresh(ctx)) }),
		m.run("recargar", func() error { return ignoreSuperseded(wl.Reload(ctx)) }),
		m.fetchMetrics(),
	}
	return tea.Batch(cmds...)
}

// ignoreSuperseded drops the error of a fetch replaced by a newer one
func ignoreSuperseded(err error) error {
	if errors.Is(err, listview.ErrSuperseded) || errors.Is(err, waitlist.ErrSuperseded) {
		return nil
	}
	return err
}
