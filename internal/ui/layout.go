package ui

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the threshold below which compact mode is used.
	LayoutCompactWidth = 100

	// LayoutCategoryWidth is the minimum width to show the category column.
	LayoutCategoryWidth = 90
)

// Activity view limits.
const (
	// ActivityLineLimit is the number of log records the activity view keeps.
	ActivityLineLimit = 500
)

// Timing constants.
const (
	// FlashDuration is how long a status message stays in the header.
	FlashDuration = 4 * time.Second

	// ActivityRefreshInterval paces log reloads while the activity view is open.
	ActivityRefreshInterval = time.Second
)

// chromeHeight is the header plus command bar.
const chromeHeight = 2

// contentHeight is the space left for the active view.
func (m Model) contentHeight() int {
	h := m.height - chromeHeight
	if h < 3 {
		return 3
	}
	return h
}

// renderBox draws content inside a rounded border with a title on the top edge.
func (m Model) renderBox(title, content string, width, height int, focused bool) string {
	border := m.theme.Border
	if focused {
		border = m.theme.BorderFocus
	}
	styles := m.theme.Styles()

	innerWidth := maxInt(width-2, 1)
	innerHeight := maxInt(height-2, 1)

	lines := strings.Split(content, "\n")
	if len(lines) > innerHeight {
		lines = lines[:innerHeight]
	}
	body := lipgloss.NewStyle().
		Width(innerWidth).
		Height(innerHeight).
		Render(strings.Join(lines, "\n"))

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(border)).
		Render(body)

	if title == "" {
		return box
	}
	// Splice the title into the top border.
	rows := strings.SplitN(box, "\n", 2)
	label := styles.AccentText.Bold(true).Render(" " + title + " ")
	edge := lipgloss.NewStyle().Foreground(lipgloss.Color(border))
	fill := innerWidth - lipgloss.Width(label) - 1
	if fill < 0 {
		return box
	}
	top := edge.Render("╭─") + label + edge.Render(strings.Repeat("─", fill)+"╮")
	if len(rows) == 1 {
		return top
	}
	return top + "\n" + rows[1]
}
