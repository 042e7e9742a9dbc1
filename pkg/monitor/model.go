package monitor

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/marcus/rsv/internal/floorplan"
	"github.com/marcus/rsv/internal/listview"
	"github.com/marcus/rsv/internal/models"
	"github.com/marcus/rsv/internal/notify"
	"github.com/marcus/rsv/internal/store"
	"github.com/marcus/rsv/internal/waitlist"
	"github.com/marcus/rsv/pkg/monitor/keymap"
)

// DefaultMetricsInterval is how often dashboard counters are refetched
const DefaultMetricsInterval = 60 * time.Second

// MetricsSource fetches dashboard counters; *api.Client satisfies it.
type MetricsSource interface {
	DashboardMetrics(ctx context.Context) (*models.DashboardMetrics, error)
}

// Signal wakes the monitor after a change made off the UI goroutine
type Signal chan struct{}

// NewSignal returns a Signal that coalesces pending wakeups
func NewSignal() Signal {
	return make(Signal, 1)
}

// Notify queues a wakeup without blocking
func (s Signal) Notify() {
	select {
	case s <- struct{}{}:
	default:
	}
}

// Deps are the controllers the monitor drives
type Deps struct {
	Store    *store.Store
	List     *listview.Controller
	Waitlist *waitlist.Controller
	Center   *notify.Center
	Plan     *floorplan.Plan
	Metrics  MetricsSource

	// Changes is notified by controllers that change state on their own
	// goroutines. NewModel creates one when nil.
	Changes Signal

	Restaurant      string
	MetricsInterval time.Duration
	Keymap          *keymap.Registry
	Now             func() time.Time
}

// Model is the main Bubble Tea model for the dashboard
type Model struct {
	ctx  context.Context
	deps Deps

	Keymap *keymap.Registry
	Width  int
	Height int

	ActivePanel Panel
	Cursor      map[Panel]int
	Overlay     Overlay

	// overlay state
	detailFrom   detailSource
	confirmPanel Panel
	helpReturn   Overlay
	FilterInput  textinput.Model
	FilterField  FilterField
	Form         *ReservationForm

	Spinner    spinner.Model
	Metrics    *models.DashboardMetrics
	MetricsErr error
	FloorErr   error

	StatusMessage string
	StatusIsError bool

	states      <-chan store.State
	unsubscribe func()
}

// NewModel creates a monitor over deps. The model subscribes to the store
// right away; call Close when the program exits.
func NewModel(ctx context.Context, deps Deps) Model {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.MetricsInterval <= 0 {
		deps.MetricsInterval = DefaultMetricsInterval
	}
	if deps.Changes == nil {
		deps.Changes = NewSignal()
	}
	if deps.Keymap == nil {
		deps.Keymap = keymap.NewRegistry()
		keymap.RegisterDefaults(deps.Keymap)
	}
	deps.Center.OnChange(deps.Changes.Notify)

	ti := textinput.New()
	ti.CharLimit = 60
	ti.Width = 30

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = subtleStyle

	states, unsubscribe := deps.Store.Subscribe()

	return Model{
		ctx:         ctx,
		deps:        deps,
		Keymap:      deps.Keymap,
		ActivePanel: PanelToday,
		Cursor:      map[Panel]int{},
		FilterInput: ti,
		Spinner:     sp,
		states:      states,
		unsubscribe: unsubscribe,
	}
}

// Close releases the store subscription
func (m Model) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.waitForState(),
		m.waitForChange(),
		m.scheduleTick(),
		m.fetchMetrics(),
		m.Spinner.Tick,
	)
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Background messages keep their chains alive whatever overlay is open.
	switch msg := msg.(type) {
	case TickMsg:
		return m, m.scheduleTick()

	case StoreMsg:
		m.deps.List.ObserveStore(msg.State.Reservations)
		if m.deps.Plan != nil {
			m.deps.Plan.SetReservations(msg.State.Reservations, msg.State.Day)
		}
		m.clampCursors()
		return m, m.waitForState()

	case ChangedMsg:
		m.clampCursors()
		if m.Overlay == OverlayDetail && m.detailReservation() == nil {
			m.Overlay = OverlayNone
		}
		return m, m.waitForChange()

	case MetricsTickMsg:
		return m, m.fetchMetrics()

	case MetricsMsg:
		if msg.Err != nil {
			m.MetricsErr = msg.Err
		} else {
			m.Metrics = msg.Metrics
			m.MetricsErr = nil
		}
		return m, m.scheduleMetrics()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd

	case FloorLoadedMsg:
		m.FloorErr = msg.Err
		return m, nil

	case ActionDoneMsg:
		m.setStatus(msg.Action, msg.Err)
		m.clampCursors()
		return m, nil

	case CreatedMsg:
		if msg.Err == nil && msg.Outcome != nil {
			m.StatusMessage = msg.Outcome.Message
			m.StatusIsError = false
		}
		m.clampCursors()
		return m, nil

	case tea.FocusMsg:
		m.setVisible(true)
		return m, nil

	case tea.BlurMsg:
		m.setVisible(false)
		return m, nil

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		if m.Overlay == OverlayForm && m.Form != nil {
			return m.handleFormUpdate(msg)
		}
		return m, nil
	}

	if m.Overlay == OverlayForm && m.Form != nil {
		return m.handleFormUpdate(msg)
	}

	// Filter mode: non-key messages go to the textinput (cursor blink)
	if m.Overlay == OverlayFilter {
		if _, isKey := msg.(tea.KeyMsg); !isKey {
			var cmd tea.Cmd
			m.FilterInput, cmd = m.FilterInput.Update(msg)
			return m, cmd
		}
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		return m.handleKey(msg)
	}
	return m, nil
}

// View implements tea.Model
func (m Model) View() string {
	return m.renderView()
}

func (m Model) setVisible(v bool) {
	m.deps.Store.SetVisible(v)
	m.deps.Waitlist.SetVisible(v)
}

func (m *Model) setStatus(action string, err error) {
	if err != nil {
		m.StatusMessage = action + ": " + err.Error()
		m.StatusIsError = true
		return
	}
	m.StatusMessage = ""
	m.StatusIsError = false
}

// currentContext maps the open overlay to its keymap context
func (m Model) currentContext() keymap.Context {
	switch m.Overlay {
	case OverlayDetail:
		return keymap.ContextDetail
	case OverlayConfirm:
		return keymap.ContextConfirm
	case OverlayFilter:
		return keymap.ContextFilter
	case OverlayForm:
		return keymap.ContextForm
	case OverlayFloor:
		return keymap.ContextFloor
	case OverlayHelp:
		return keymap.ContextHelp
	default:
		return keymap.ContextMain
	}
}

// rowCount returns how many rows a panel shows
func (m Model) rowCount(p Panel) int {
	switch p {
	case PanelWaitlist:
		return len(m.deps.Waitlist.Entries())
	case PanelNotifications:
		return len(m.deps.Center.Notifications())
	default:
		return len(m.deps.List.Active())
	}
}

func (m *Model) clampCursors() {
	for p := Panel(0); p < panelCount; p++ {
		n := m.rowCount(p)
		c := m.Cursor[p]
		if c >= n {
			c = n - 1
		}
		if c < 0 {
			c = 0
		}
		m.Cursor[p] = c
	}
}

// selectedReservation returns the reservation under the Today cursor
func (m Model) selectedReservation() (models.Reservation, bool) {
	list := m.deps.List.Active()
	c := m.Cursor[PanelToday]
	if c < 0 || c >= len(list) {
		return models.Reservation{}, false
	}
	return list[c], true
}

func (m Model) selectedEntry() (models.WaitlistEntry, bool) {
	entries := m.deps.Waitlist.Entries()
	c := m.Cursor[PanelWaitlist]
	if c < 0 || c >= len(entries) {
		return models.WaitlistEntry{}, false
	}
	return entries[c], true
}

func (m Model) selectedNotification() (models.Notification, bool) {
	list := m.deps.Center.Notifications()
	c := m.Cursor[PanelNotifications]
	if c < 0 || c >= len(list) {
		return models.Notification{}, false
	}
	return list[c], true
}

// detailReservation returns the reservation in the detail modal, or nil
func (m Model) detailReservation() *models.Reservation {
	if m.detailFrom == detailFromInbox {
		return m.deps.Center.Modal()
	}
	return m.deps.List.Viewing()
}

func (m Model) toast(msg string, typ models.ToastType) {
	m.deps.Center.ShowToast(msg, typ, 0, nil)
}
