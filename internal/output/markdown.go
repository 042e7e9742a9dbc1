package output

import (
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

const (
	notesWidth    = 72
	minNotesWidth = 24
)

// TerminalWidth returns the width of stdout, then $COLUMNS, then fallback
func TerminalWidth(fallback int) int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	if n, err := strconv.Atoi(os.Getenv("COLUMNS")); err == nil && n > 0 {
		return n
	}
	if fallback <= 0 {
		return notesWidth
	}
	return fallback
}

var (
	renderersMu sync.Mutex
	renderers   = map[int]*glamour.TermRenderer{}
)

// notesRenderer returns a cached renderer for width. Output that is not a
// terminal gets the plain style so piped output carries no escape codes.
func notesRenderer(width int) (*glamour.TermRenderer, error) {
	renderersMu.Lock()
	defer renderersMu.Unlock()
	if r, ok := renderers[width]; ok {
		return r, nil
	}
	style := glamour.WithStandardStyle("notty")
	if term.IsTerminal(int(os.Stdout.Fd())) {
		style = glamour.WithAutoStyle()
	}
	r, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(width))
	if err != nil {
		return nil, err
	}
	renderers[width] = r
	return r, nil
}

// hardBreaks keeps the line breaks staff type into notes ("sin gluten\nterraza")
// instead of letting markdown join them into one paragraph.
func hardBreaks(notes string) string {
	lines := strings.Split(strings.ReplaceAll(notes, "\r\n", "\n"), "\n")
	for i, l := range lines {
		trimmed := strings.TrimRight(l, " ")
		if trimmed != "" && i < len(lines)-1 && strings.TrimSpace(lines[i+1]) != "" {
			trimmed += "  "
		}
		lines[i] = trimmed
	}
	return strings.Join(lines, "\n")
}

// RenderNotes renders reservation notes as markdown wrapped to the terminal
func RenderNotes(notes string) (string, error) {
	return RenderNotesWidth(notes, TerminalWidth(notesWidth))
}

// RenderNotesWidth renders notes wrapped at width. Blank notes render as "".
func RenderNotesWidth(notes string, width int) (string, error) {
	if strings.TrimSpace(notes) == "" {
		return "", nil
	}
	width = max(width, minNotesWidth)

	r, err := notesRenderer(width)
	if err != nil {
		return "", err
	}
	out, err := r.Render(hardBreaks(notes))
	if err != nil {
		return "", err
	}
	return strings.Trim(out, "\n"), nil
}
