package monitor

import (
	"time"

	"github.com/marcus/rsv/internal/listview"
	"github.com/marcus/rsv/internal/models"
	"github.com/marcus/rsv/internal/store"
)

// Panel represents which panel is active
type Panel int

const (
	PanelToday Panel = iota
	PanelWaitlist
	PanelNotifications
	panelCount
)

func (p Panel) String() string {
	switch p {
	case PanelWaitlist:
		return "Lista de espera"
	case PanelNotifications:
		return "Notificaciones"
	default:
		return "Reservas"
	}
}

// Overlay is the modal layer drawn over the panels, if any
type Overlay int

const (
	OverlayNone Overlay = iota
	OverlayDetail
	OverlayConfirm
	OverlayFilter
	OverlayForm
	OverlayFloor
	OverlayHelp
)

// FilterField is the field a filter input edits
type FilterField int

const (
	FilterName FilterField = iota
	FilterDate
)

// detailSource tells where the detail modal's reservation comes from
type detailSource int

const (
	detailFromList detailSource = iota
	detailFromInbox
)

// Minimum dimensions for the monitor
const (
	MinWidth  = 60
	MinHeight = 15
)

// TickMsg re-renders clocks, highlights and toasts
type TickMsg time.Time

// StoreMsg carries a state published by the reservation store
type StoreMsg struct {
	State store.State
}

// ChangedMsg means a controller changed state off the UI goroutine
type ChangedMsg struct{}

// MetricsMsg carries dashboard counters
type MetricsMsg struct {
	Metrics *models.DashboardMetrics
	Err     error
}

// MetricsTickMsg schedules the next metrics fetch
type MetricsTickMsg time.Time

// FloorLoadedMsg reports the floor plan load
type FloorLoadedMsg struct {
	Err error
}

// ActionDoneMsg reports an async action. Errors were already toasted by
// the controller; Err is kept for the status line.
type ActionDoneMsg struct {
	Action string
	Err    error
}

// CreatedMsg reports a create from the form
type CreatedMsg struct {
	Outcome *listview.CreateOutcome
	Err     error
}
