package keymap

import (
	"fmt"
	"strings"
)

var helpSections = []struct {
	title   string
	context Context
}{
	{"PANELS", ContextMain},
	{"RESERVATION DETAIL", ContextDetail},
	{"FLOOR PLAN", ContextFloor},
	{"CONFIRMATION", ContextConfirm},
	{"FILTER", ContextFilter},
	{"FORM", ContextForm},
}

// GenerateHelp lists the bindings per context. Keys bound to the same
// command are joined on one line in registration order.
func (r *Registry) GenerateHelp() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var sb strings.Builder
	sb.WriteString("\nRSV MONITOR - Key Bindings\n")
	for _, sec := range helpSections {
		bindings := r.bindings[sec.context]
		if len(bindings) == 0 {
			continue
		}
		sb.WriteString("\n" + sec.title + ":\n")

		var order []Command
		keys := map[Command][]string{}
		desc := map[Command]string{}
		for _, b := range bindings {
			if _, seen := keys[b.Command]; !seen {
				order = append(order, b.Command)
				desc[b.Command] = b.Description
			}
			keys[b.Command] = append(keys[b.Command], displayKey(b.Key))
		}
		for _, cmd := range order {
			sb.WriteString(fmt.Sprintf("  %-20s %s\n", strings.Join(keys[cmd], " / "), desc[cmd]))
		}
	}
	sb.WriteString("\nPress ? to close help\n")
	return sb.String()
}

func displayKey(k string) string {
	switch k {
	case "up":
		return "↑"
	case "down":
		return "↓"
	case "left":
		return "←"
	case "right":
		return "→"
	case "enter":
		return "Enter"
	case "esc":
		return "Esc"
	case "tab":
		return "Tab"
	case "shift+tab":
		return "Shift+Tab"
	}
	if strings.HasPrefix(k, "ctrl+") {
		return "Ctrl+" + strings.TrimPrefix(k, "ctrl+")
	}
	return k
}
