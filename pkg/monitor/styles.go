package monitor

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/marcus/rsv/internal/models"
)

var (
	primaryColor = lipgloss.Color("212")
	mutedColor   = lipgloss.Color("241")
	successColor = lipgloss.Color("42")
	warningColor = lipgloss.Color("214")
	errorColor   = lipgloss.Color("196")
	infoColor    = lipgloss.Color("45")

	activePanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(primaryColor).
				Padding(0, 1)

	panelTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Background(lipgloss.Color("237")).
			Foreground(lipgloss.Color("255")).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(primaryColor)
	titleStyle  = lipgloss.NewStyle().Bold(true)
	subtleStyle = lipgloss.NewStyle().Foreground(mutedColor)
	helpStyle   = lipgloss.NewStyle().Foreground(mutedColor)
	errorStyle  = lipgloss.NewStyle().Foreground(errorColor)
	badgeStyle  = lipgloss.NewStyle().
			Bold(true).
			Background(errorColor).
			Foreground(lipgloss.Color("255")).
			Padding(0, 1)

	selectedRowStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("237")).
				Foreground(lipgloss.Color("255"))

	// rows that just appeared in the list
	newRowStyle = lipgloss.NewStyle().Foreground(successColor).Bold(true)

	unreadStyle = lipgloss.NewStyle().Foreground(primaryColor).Bold(true)

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(primaryColor).
			Padding(1, 2)

	confirmStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(errorColor).
			Padding(1, 2)

	toastStyles = map[models.ToastType]lipgloss.Style{
		models.ToastSuccess: toastBase.BorderForeground(successColor),
		models.ToastError:   toastBase.BorderForeground(errorColor),
		models.ToastWarning: toastBase.BorderForeground(warningColor),
		models.ToastInfo:    toastBase.BorderForeground(infoColor),
	}
)

var toastBase = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	Padding(0, 1).
	Width(toastWidth)

const toastWidth = 44

func toastStyle(t models.ToastType) lipgloss.Style {
	if st, ok := toastStyles[t]; ok {
		return st
	}
	return toastStyles[models.ToastInfo]
}
