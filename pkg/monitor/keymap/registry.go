package keymap

import (
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

const sequenceTimeout = 500 * time.Millisecond

// Context represents a UI context for keybindings
type Context string

const (
	ContextGlobal  Context = "global"
	ContextMain    Context = "main"
	ContextDetail  Context = "detail"  // reservation detail modal
	ContextConfirm Context = "confirm" // delete confirmation
	ContextFilter  Context = "filter"  // name/date filter input
	ContextFloor   Context = "floor"   // floor plan overlay
	ContextForm    Context = "form"    // create/edit form
	ContextHelp    Context = "help"
)

// Command represents a named command that can be triggered by key bindings
type Command string

const (
	CmdQuit       Command = "quit"
	CmdToggleHelp Command = "toggle-help"
	CmdRefresh    Command = "refresh"

	CmdNextPanel      Command = "next-panel"
	CmdPrevPanel      Command = "prev-panel"
	CmdPanelToday     Command = "panel-today"
	CmdPanelWaitlist  Command = "panel-waitlist"
	CmdPanelInbox     Command = "panel-inbox"
	CmdCursorDown     Command = "cursor-down"
	CmdCursorUp       Command = "cursor-up"
	CmdCursorTop      Command = "cursor-top"
	CmdCursorBottom   Command = "cursor-bottom"
	CmdSelect         Command = "select"
	CmdClose          Command = "close"
	CmdCycleStatus    Command = "cycle-status"
	CmdEdit           Command = "edit"
	CmdNewReservation Command = "new-reservation"
	CmdDelete         Command = "delete"
	CmdFilterName     Command = "filter-name"
	CmdFilterDate     Command = "filter-date"
	CmdClearFilter    Command = "clear-filter"
	CmdProcess        Command = "process-waitlist"
	CmdMarkAllRead    Command = "mark-all-read"
	CmdDismissToast   Command = "dismiss-toast"
	CmdFloorPlan      Command = "floor-plan"

	CmdConfirm Command = "confirm"
	CmdCancel  Command = "cancel"

	CmdFilterApply  Command = "filter-apply"
	CmdFilterCancel Command = "filter-cancel"

	CmdFloorNext        Command = "floor-next"
	CmdFloorPrev        Command = "floor-prev"
	CmdFloorOccupied    Command = "floor-occupied"
	CmdFloorAvailable   Command = "floor-available"
	CmdFloorUnavailable Command = "floor-unavailable"
	CmdFloorClear       Command = "floor-clear"

	CmdFormCancel Command = "form-cancel"
)

// Binding maps a key or a two-key sequence ("g g") to a command
type Binding struct {
	Key         string
	Command     Command
	Context     Context
	Description string // help text
}

// Registry resolves keys to commands per context. User overrides win over
// the context's bindings, which win over the global ones.
type Registry struct {
	mu            sync.RWMutex
	bindings      map[Context][]Binding
	userOverrides map[string]Command // "context:key"
	pendingKey    string
	pendingTime   time.Time
	now           func() time.Time
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		bindings:      make(map[Context][]Binding),
		userOverrides: make(map[string]Command),
		now:           time.Now,
	}
}

func overrideKey(ctx Context, key string) string {
	return string(ctx) + ":" + key
}

// RegisterBindings adds key bindings in order; earlier ones win on conflicts
func (r *Registry) RegisterBindings(bindings []Binding) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range bindings {
		r.bindings[b.Context] = append(r.bindings[b.Context], b)
	}
}

// SetUserOverride binds key to cmd in ctx, ahead of the defaults
func (r *Registry) SetUserOverride(ctx Context, key string, cmd Command) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.userOverrides[overrideKey(ctx, key)] = cmd
}

// KnownContext reports whether any binding is registered for ctx
func (r *Registry) KnownContext(ctx Context) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.bindings[ctx]
	return ok
}

// KnownCommand reports whether cmd is bound to some key by default, which
// is what makes it dispatchable.
func (r *Registry) KnownCommand(cmd Command) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, list := range r.bindings {
		for _, b := range list {
			if b.Command == cmd {
				return true
			}
		}
	}
	return false
}

// order lists the contexts consulted for active, most specific first
func order(active Context) []Context {
	if active == "" || active == ContextGlobal {
		return []Context{ContextGlobal}
	}
	return []Context{active, ContextGlobal}
}

// Lookup finds the command for key in active. The first key of a sequence
// returns ("", false) and is remembered for sequenceTimeout.
func (r *Registry) Lookup(key tea.KeyMsg, active Context) (Command, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := KeyToString(key)
	if pending := r.pendingKey; pending != "" {
		r.pendingKey = ""
		if r.now().Sub(r.pendingTime) < sequenceTimeout {
			if cmd, ok := r.resolve(pending+" "+k, active); ok {
				return cmd, true
			}
		}
	}

	if r.startsSequence(k, active) {
		r.pendingKey = k
		r.pendingTime = r.now()
		return "", false
	}
	return r.resolve(k, active)
}

func (r *Registry) resolve(key string, active Context) (Command, bool) {
	ctxs := order(active)
	for _, ctx := range ctxs {
		if cmd, ok := r.userOverrides[overrideKey(ctx, key)]; ok {
			return cmd, true
		}
	}
	for _, ctx := range ctxs {
		for _, b := range r.bindings[ctx] {
			if b.Key == key {
				return b.Command, true
			}
		}
	}
	return "", false
}

func (r *Registry) startsSequence(key string, active Context) bool {
	prefix := key + " "
	for _, ctx := range order(active) {
		for _, b := range r.bindings[ctx] {
			if strings.HasPrefix(b.Key, prefix) {
				return true
			}
		}
	}
	for k := range r.userOverrides {
		if _, bound, ok := strings.Cut(k, ":"); ok && strings.HasPrefix(bound, prefix) {
			return true
		}
	}
	return false
}

// ResetPending drops a half-typed sequence
func (r *Registry) ResetPending() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pendingKey = ""
}

// PendingKey returns the first key of a sequence still being typed
func (r *Registry) PendingKey() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.pendingKey == "" || r.now().Sub(r.pendingTime) >= sequenceTimeout {
		return ""
	}
	return r.pendingKey
}

// BindingsForContext returns the bindings of ctx followed by the global ones
func (r *Registry) BindingsForContext(ctx Context) []Binding {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Binding
	for _, c := range order(ctx) {
		out = append(out, r.bindings[c]...)
	}
	return out
}

var keyNames = map[tea.KeyType]string{
	tea.KeyCtrlC:     "ctrl+c",
	tea.KeyCtrlR:     "ctrl+r",
	tea.KeyTab:       "tab",
	tea.KeyShiftTab:  "shift+tab",
	tea.KeyEnter:     "enter",
	tea.KeyEsc:       "esc",
	tea.KeySpace:     "space",
	tea.KeyBackspace: "backspace",
	tea.KeyUp:        "up",
	tea.KeyDown:      "down",
	tea.KeyLeft:      "left",
	tea.KeyRight:     "right",
	tea.KeyHome:      "home",
	tea.KeyEnd:       "end",
	tea.KeyDelete:    "delete",
}

// KeyToString converts a key press to the form used in bindings
func KeyToString(key tea.KeyMsg) string {
	if name, ok := keyNames[key.Type]; ok {
		return name
	}
	if key.Type == tea.KeyRunes {
		return string(key.Runes)
	}
	return key.String()
}
