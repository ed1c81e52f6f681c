package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/rebeliceyang/lazytab/internal/ui/theme"
)

// ErrorOverlay displays an error message centered over the UI
type ErrorOverlay struct {
	Title   string
	Message string
	theme   theme.Theme
}

// NewErrorOverlay creates a new error overlay
func NewErrorOverlay(th theme.Theme) *ErrorOverlay {
	return &ErrorOverlay{theme: th}
}

// SetError sets the error to display
func (e *ErrorOverlay) SetError(title, message string) {
	e.Title = title
	e.Message = message
}

// View renders the error overlay
func (e *ErrorOverlay) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(e.theme.Error).
		Padding(0, 1)

	messageStyle := lipgloss.NewStyle().
		Foreground(e.theme.Foreground).
		Padding(1, 1)

	hintStyle := lipgloss.NewStyle().
		Foreground(e.theme.Metadata).
		Italic(true).
		Padding(0, 1)

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		titleStyle.Render(e.Title),
		messageStyle.Render(e.Message),
		hintStyle.Render("[esc] Dismiss"),
	)

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(e.theme.Error).
		Padding(0, 1).
		MaxWidth(80).
		Render(content)
}
