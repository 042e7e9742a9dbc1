package keymap

// DefaultBindings returns the default key bindings for the dashboard
func DefaultBindings() []Binding {
	return []Binding{
		// Global
		{Key: "ctrl+c", Command: CmdQuit, Context: ContextGlobal, Description: "Quit"},

		// Main panels
		{Key: "q", Command: CmdQuit, Context: ContextMain, Description: "Quit"},
		{Key: "?", Command: CmdToggleHelp, Context: ContextMain, Description: "Toggle help"},
		{Key: "tab", Command: CmdNextPanel, Context: ContextMain, Description: "Next panel"},
		{Key: "shift+tab", Command: CmdPrevPanel, Context: ContextMain, Description: "Previous panel"},
		{Key: "1", Command: CmdPanelToday, Context: ContextMain, Description: "Reservations"},
		{Key: "2", Command: CmdPanelWaitlist, Context: ContextMain, Description: "Waitlist"},
		{Key: "3", Command: CmdPanelInbox, Context: ContextMain, Description: "Notifications"},
		{Key: "j", Command: CmdCursorDown, Context: ContextMain, Description: "Move down"},
		{Key: "down", Command: CmdCursorDown, Context: ContextMain, Description: "Move down"},
		{Key: "k", Command: CmdCursorUp, Context: ContextMain, Description: "Move up"},
		{Key: "up", Command: CmdCursorUp, Context: ContextMain, Description: "Move up"},
		{Key: "g g", Command: CmdCursorTop, Context: ContextMain, Description: "Go to top"},
		{Key: "G", Command: CmdCursorBottom, Context: ContextMain, Description: "Go to bottom"},
		{Key: "enter", Command: CmdSelect, Context: ContextMain, Description: "Open details"},
		{Key: "s", Command: CmdCycleStatus, Context: ContextMain, Description: "Next status"},
		{Key: "e", Command: CmdEdit, Context: ContextMain, Description: "Edit reservation"},
		{Key: "n", Command: CmdNewReservation, Context: ContextMain, Description: "New reservation"},
		{Key: "d", Command: CmdDelete, Context: ContextMain, Description: "Delete"},
		{Key: "/", Command: CmdFilterName, Context: ContextMain, Description: "Filter by name"},
		{Key: "f", Command: CmdFilterDate, Context: ContextMain, Description: "Filter by date"},
		{Key: "esc", Command: CmdClearFilter, Context: ContextMain, Description: "Back to today"},
		{Key: "p", Command: CmdProcess, Context: ContextMain, Description: "Process waitlist"},
		{Key: "a", Command: CmdMarkAllRead, Context: ContextMain, Description: "Mark all read"},
		{Key: "x", Command: CmdDismissToast, Context: ContextMain, Description: "Dismiss toast"},
		{Key: "m", Command: CmdFloorPlan, Context: ContextMain, Description: "Floor plan"},
		{Key: "r", Command: CmdRefresh, Context: ContextMain, Description: "Reload"},
		{Key: "ctrl+r", Command: CmdRefresh, Context: ContextMain, Description: "Reload"},

		// Detail modal
		{Key: "esc", Command: CmdClose, Context: ContextDetail, Description: "Close"},
		{Key: "enter", Command: CmdClose, Context: ContextDetail, Description: "Close"},
		{Key: "q", Command: CmdClose, Context: ContextDetail, Description: "Close"},
		{Key: "e", Command: CmdEdit, Context: ContextDetail, Description: "Edit reservation"},
		{Key: "s", Command: CmdCycleStatus, Context: ContextDetail, Description: "Next status"},

		// Confirmation
		{Key: "y", Command: CmdConfirm, Context: ContextConfirm, Description: "Confirm"},
		{Key: "enter", Command: CmdConfirm, Context: ContextConfirm, Description: "Confirm"},
		{Key: "n", Command: CmdCancel, Context: ContextConfirm, Description: "Cancel"},
		{Key: "esc", Command: CmdCancel, Context: ContextConfirm, Description: "Cancel"},

		// Filter input; other keys go to the text input
		{Key: "enter", Command: CmdFilterApply, Context: ContextFilter, Description: "Apply filter"},
		{Key: "esc", Command: CmdFilterCancel, Context: ContextFilter, Description: "Cancel"},

		// Floor plan
		{Key: "esc", Command: CmdClose, Context: ContextFloor, Description: "Close floor plan"},
		{Key: "m", Command: CmdClose, Context: ContextFloor, Description: "Close floor plan"},
		{Key: "q", Command: CmdClose, Context: ContextFloor, Description: "Close floor plan"},
		{Key: "tab", Command: CmdFloorNext, Context: ContextFloor, Description: "Next table"},
		{Key: "right", Command: CmdFloorNext, Context: ContextFloor, Description: "Next table"},
		{Key: "l", Command: CmdFloorNext, Context: ContextFloor, Description: "Next table"},
		{Key: "shift+tab", Command: CmdFloorPrev, Context: ContextFloor, Description: "Previous table"},
		{Key: "left", Command: CmdFloorPrev, Context: ContextFloor, Description: "Previous table"},
		{Key: "h", Command: CmdFloorPrev, Context: ContextFloor, Description: "Previous table"},
		{Key: "o", Command: CmdFloorOccupied, Context: ContextFloor, Description: "Mark occupied"},
		{Key: "v", Command: CmdFloorAvailable, Context: ContextFloor, Description: "Mark available"},
		{Key: "u", Command: CmdFloorUnavailable, Context: ContextFloor, Description: "Mark unavailable"},
		{Key: "c", Command: CmdFloorClear, Context: ContextFloor, Description: "Clear manual status"},
		{Key: "r", Command: CmdRefresh, Context: ContextFloor, Description: "Reload tables"},

		// Form: everything else goes to huh
		{Key: "esc", Command: CmdFormCancel, Context: ContextForm, Description: "Cancel"},

		// Help
		{Key: "?", Command: CmdToggleHelp, Context: ContextHelp, Description: "Close help"},
		{Key: "esc", Command: CmdToggleHelp, Context: ContextHelp, Description: "Close help"},
		{Key: "q", Command: CmdToggleHelp, Context: ContextHelp, Description: "Close help"},
	}
}

// RegisterDefaults registers all default bindings on r
func RegisterDefaults(r *Registry) {
	r.RegisterBindings(DefaultBindings())
}
