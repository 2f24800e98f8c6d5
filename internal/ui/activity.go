package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/shelf/internal/activity"
)

// activityState holds the tail of the log file.
type activityState struct {
	entries  []activity.Entry
	err      string
	follow   bool
	loaded   bool
	viewport viewport.Model
}

// loadActivity reads the log tail off the UI goroutine.
func (m Model) loadActivity() tea.Cmd {
	path := m.cfg.LogFile
	return func() tea.Msg {
		if path == "" {
			return activityMsg{}
		}
		entries, err := activity.Tail(path, ActivityLineLimit)
		return activityMsg{entries: entries, err: err}
	}
}

func activityTickCmd() tea.Cmd {
	return tea.Tick(ActivityRefreshInterval, func(t time.Time) tea.Msg {
		return activityTickMsg(t)
	})
}

func (m *Model) handleActivity(msg activityMsg) {
	if !m.activity.loaded {
		m.activity.follow = true
	}
	m.activity.loaded = true
	m.activity.entries = msg.entries
	m.activity.err = ""
	if msg.err != nil {
		m.activity.err = msg.err.Error()
	}
	m.updateActivityViewport()
}

// handleActivityKey processes keyboard input for the activity view.
func (m Model) handleActivityKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Bottom):
		m.activity.viewport.GotoBottom()
		m.activity.follow = true
		return m, nil
	case key.Matches(msg, m.keys.Top):
		m.activity.viewport.GotoTop()
	case key.Matches(msg, m.keys.Down):
		m.activity.viewport.ScrollDown(1)
	case key.Matches(msg, m.keys.Up):
		m.activity.viewport.ScrollUp(1)
	case key.Matches(msg, m.keys.HalfPageDown):
		m.activity.viewport.HalfPageDown()
	case key.Matches(msg, m.keys.HalfPageUp):
		m.activity.viewport.HalfPageUp()
	default:
		return m, nil
	}
	m.activity.follow = m.activity.viewport.AtBottom()
	return m, nil
}

// updateActivityViewport sizes the viewport and re-renders its content.
func (m *Model) updateActivityViewport() {
	if m.width == 0 {
		return
	}
	m.activity.viewport.Width = maxInt(m.width-4, 10)
	m.activity.viewport.Height = maxInt(m.contentHeight()-2, 1)
	m.activity.viewport.SetContent(m.renderActivityContent())
	if m.activity.follow {
		m.activity.viewport.GotoBottom()
	}
}

func (m Model) renderActivity() string {
	title := fmt.Sprintf("Activity (%d)", len(m.activity.entries))
	if !m.activity.follow {
		title += " - paused"
	}
	return m.renderBox(title, m.activity.viewport.View(), m.width, m.contentHeight(), true)
}

func (m Model) renderActivityContent() string {
	styles := m.theme.Styles()
	switch {
	case m.cfg.LogFile == "":
		return styles.MutedText.Render("Logging is disabled.")
	case m.activity.err != "":
		return styles.DangerText.Render("Could not read log: " + m.activity.err)
	case len(m.activity.entries) == 0:
		return styles.MutedText.Render("No activity yet.")
	}

	width := maxInt(m.width-6, 10)
	lines := make([]string, 0, len(m.activity.entries))
	for _, e := range m.activity.entries {
		lines = append(lines, m.renderEntry(e, styles, width))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderEntry(e activity.Entry, styles Styles, width int) string {
	if e.Raw != "" {
		return styles.FaintText.Render(truncate(e.Raw, width))
	}

	var parts []string
	if !e.Time.IsZero() {
		parts = append(parts, styles.FaintText.Render(e.Time.Local().Format("15:04:05")))
	}
	parts = append(parts, m.levelStyle(e.Level, styles).Render(padRight(strings.ToUpper(e.Level), 5)))
	if e.Logger != "" {
		parts = append(parts, styles.AccentText.Render("["+e.Logger+"]"))
	}
	parts = append(parts, styles.Text.Render(e.Message))
	for _, f := range e.Fields {
		parts = append(parts, styles.MutedText.Render(f.Key+"=")+styles.Text.Render(f.Value))
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(strings.Join(parts, " "))
}

func (m Model) levelStyle(level string, styles Styles) lipgloss.Style {
	switch strings.ToLower(level) {
	case "error", "dpanic", "panic", "fatal":
		return styles.DangerText
	case "warn":
		return styles.WarningText.Bold(true)
	case "debug":
		return styles.InfoText
	default:
		return styles.SuccessText
	}
}

type activityMsg struct {
	entries []activity.Entry
	err     error
}

type activityTickMsg time.Time
