package keymap

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestRegisterDefaults(t *testing.T) {
	r := NewRegistry()
	RegisterDefaults(r)

	for _, ctx := range []Context{ContextGlobal, ContextMain, ContextDetail, ContextConfirm, ContextFilter, ContextFloor, ContextForm, ContextHelp} {
		if len(r.bindings[ctx]) == 0 {
			t.Errorf("no bindings registered for %s", ctx)
		}
	}
}

func TestLookup(t *testing.T) {
	r := NewRegistry()
	RegisterDefaults(r)

	tests := []struct {
		name    string
		key     tea.KeyMsg
		context Context
		want    Command
		found   bool
	}{
		{"quit with q in main", runes("q"), ContextMain, CmdQuit, true},
		{"ctrl+c quits anywhere", tea.KeyMsg{Type: tea.KeyCtrlC}, ContextForm, CmdQuit, true},
		{"panel 2", runes("2"), ContextMain, CmdPanelWaitlist, true},
		{"cycle status", runes("s"), ContextMain, CmdCycleStatus, true},
		{"floor plan", runes("m"), ContextMain, CmdFloorPlan, true},
		{"q closes the detail", runes("q"), ContextDetail, CmdClose, true},
		{"y confirms", runes("y"), ContextConfirm, CmdConfirm, true},
		{"esc cancels a confirm", tea.KeyMsg{Type: tea.KeyEsc}, ContextConfirm, CmdCancel, true},
		{"o marks occupied on the floor", runes("o"), ContextFloor, CmdFloorOccupied, true},
		{"q is text in the filter", runes("q"), ContextFilter, "", false},
		{"j is text in the form", runes("j"), ContextForm, "", false},
		{"unknown key", runes("z"), ContextMain, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := r.Lookup(tt.key, tt.context)
			if found != tt.found {
				t.Errorf("Lookup() found = %v, want %v", found, tt.found)
			}
			if got != tt.want {
				t.Errorf("Lookup() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMultiKeySequence(t *testing.T) {
	r := NewRegistry()
	RegisterDefaults(r)

	cmd, found := r.Lookup(runes("g"), ContextMain)
	if found {
		t.Errorf("first 'g' should not find a command, got %s", cmd)
	}
	if r.PendingKey() != "g" {
		t.Errorf("PendingKey() = %q, want %q", r.PendingKey(), "g")
	}

	cmd, found = r.Lookup(runes("g"), ContextMain)
	if !found || cmd != CmdCursorTop {
		t.Errorf("second 'g' = (%s, %v), want (%s, true)", cmd, found, CmdCursorTop)
	}
	if r.PendingKey() != "" {
		t.Error("pending key should be cleared after the sequence")
	}
}

func TestMultiKeySequenceTimeout(t *testing.T) {
	r := NewRegistry()
	RegisterDefaults(r)

	r.Lookup(runes("g"), ContextMain)
	r.mu.Lock()
	r.pendingTime = time.Now().Add(-time.Second)
	r.mu.Unlock()

	// The stale 'g' is dropped; the new one starts a fresh sequence.
	cmd, found := r.Lookup(runes("g"), ContextMain)
	if found {
		t.Errorf("should not find command after timeout, got %s", cmd)
	}
}

func TestSequenceFallsBackToSingleKey(t *testing.T) {
	r := NewRegistry()
	RegisterDefaults(r)

	r.Lookup(runes("g"), ContextMain)
	cmd, found := r.Lookup(runes("j"), ContextMain)
	if !found || cmd != CmdCursorDown {
		t.Errorf("'g j' = (%s, %v), want (%s, true)", cmd, found, CmdCursorDown)
	}
}

func TestUserOverride(t *testing.T) {
	r := NewRegistry()
	RegisterDefaults(r)

	if cmd, _ := r.Lookup(runes("j"), ContextMain); cmd != CmdCursorDown {
		t.Errorf("default 'j' = %s, want %s", cmd, CmdCursorDown)
	}
	r.SetUserOverride(ContextMain, "j", CmdQuit)
	if cmd, _ := r.Lookup(runes("j"), ContextMain); cmd != CmdQuit {
		t.Errorf("overridden 'j' = %s, want %s", cmd, CmdQuit)
	}
}

func TestBindingsForContextIncludesGlobal(t *testing.T) {
	r := NewRegistry()
	RegisterDefaults(r)

	var sawCtrlC bool
	for _, b := range r.BindingsForContext(ContextFloor) {
		if b.Key == "ctrl+c" {
			sawCtrlC = true
		}
	}
	if !sawCtrlC {
		t.Error("floor bindings should include the global ctrl+c")
	}
}

func TestKeyToString(t *testing.T) {
	tests := []struct {
		key  tea.KeyMsg
		want string
	}{
		{tea.KeyMsg{Type: tea.KeyTab}, "tab"},
		{tea.KeyMsg{Type: tea.KeyShiftTab}, "shift+tab"},
		{tea.KeyMsg{Type: tea.KeyEsc}, "esc"},
		{tea.KeyMsg{Type: tea.KeyUp}, "up"},
		{tea.KeyMsg{Type: tea.KeyCtrlR}, "ctrl+r"},
		{runes("/"), "/"},
	}
	for _, tt := range tests {
		if got := KeyToString(tt.key); got != tt.want {
			t.Errorf("KeyToString(%v) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestGenerateHelp(t *testing.T) {
	r := NewRegistry()
	RegisterDefaults(r)
	help := r.GenerateHelp()

	for _, want := range []string{"PANELS:", "FLOOR PLAN:", "j / ↓", "Process waitlist", "Mark occupied"} {
		if !strings.Contains(help, want) {
			t.Errorf("help missing %q", want)
		}
	}
}
