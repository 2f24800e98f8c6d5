package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// fieldSpec describes one input of a form.
type fieldSpec struct {
	label       string
	placeholder string
	secret      bool
	limit       int
	// filter rewrites the value after each keystroke, e.g. digits only.
	filter func(string) string
}

// form is a vertical list of text inputs with one focused at a time.
type form struct {
	title  string
	labels []string
	inputs []textinput.Model
	filter []func(string) string
	focus  int

	err     string
	notice  string
	pending bool
}

func newForm(title string, fields ...fieldSpec) form {
	f := form{title: title}
	for _, field := range fields {
		ti := textinput.New()
		ti.Placeholder = field.placeholder
		ti.CharLimit = field.limit
		if ti.CharLimit == 0 {
			ti.CharLimit = 100
		}
		ti.Width = 32
		if field.secret {
			ti.EchoMode = textinput.EchoPassword
			ti.EchoCharacter = '•'
		}
		f.labels = append(f.labels, field.label)
		f.inputs = append(f.inputs, ti)
		f.filter = append(f.filter, field.filter)
	}
	if len(f.inputs) > 0 {
		f.inputs[0].Focus()
	}
	return f
}

// value is the trimmed content of field i.
func (f form) value(i int) string {
	if i < 0 || i >= len(f.inputs) {
		return ""
	}
	return strings.TrimSpace(f.inputs[i].Value())
}

func (f *form) setValue(i int, v string) {
	if i >= 0 && i < len(f.inputs) {
		f.inputs[i].SetValue(v)
	}
}

// last reports whether the focused field is the final one.
func (f form) last() bool {
	return f.focus == len(f.inputs)-1
}

func (f *form) setFocus(i int) {
	if len(f.inputs) == 0 {
		return
	}
	f.inputs[f.focus].Blur()
	f.focus = (i + len(f.inputs)) % len(f.inputs)
	f.inputs[f.focus].Focus()
}

func (f *form) next() { f.setFocus(f.focus + 1) }
func (f *form) prev() { f.setFocus(f.focus - 1) }

// reset clears every field and message and focuses the first field.
func (f *form) reset() {
	for i := range f.inputs {
		f.inputs[i].SetValue("")
	}
	f.err = ""
	f.notice = ""
	f.pending = false
	f.setFocus(0)
}

// update forwards a key to the focused input.
func (f *form) update(msg tea.Msg) tea.Cmd {
	if len(f.inputs) == 0 {
		return nil
	}
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	if filter := f.filter[f.focus]; filter != nil {
		v := f.inputs[f.focus].Value()
		if fv := filter(v); fv != v {
			f.inputs[f.focus].SetValue(fv)
		}
	}
	return cmd
}

// renderForm draws f as a centered modal with hint as the footer.
func (m Model) renderForm(f form, hint string, width, height int) string {
	styles := m.theme.Styles()

	labelWidth := 0
	for _, l := range f.labels {
		labelWidth = maxInt(labelWidth, lipgloss.Width(l)+2)
	}

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render(f.title))
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(strings.Repeat("─", 40)))
	b.WriteString("\n\n")

	for i, input := range f.inputs {
		label := padRight(f.labels[i]+":", labelWidth)
		if i == f.focus {
			label = styles.AccentText.Render(label)
		} else {
			label = styles.MutedText.Render(label)
		}
		b.WriteString(label)
		b.WriteString(input.View())
		b.WriteString("\n")
	}

	b.WriteString("\n")
	switch {
	case f.pending:
		b.WriteString(m.spinner.View() + " " + styles.WarningText.Render("Working..."))
		b.WriteString("\n")
	case f.err != "":
		b.WriteString(styles.DangerText.Render(f.err))
		b.WriteString("\n")
	case f.notice != "":
		b.WriteString(styles.SuccessText.Render(f.notice))
		b.WriteString("\n")
	}
	b.WriteString(styles.FaintText.Render(hint))

	modal := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.Accent)).
		Padding(1, 2).
		Width(maxInt(labelWidth+40, 50))

	return lipgloss.Place(
		width,
		height,
		lipgloss.Center,
		lipgloss.Center,
		modal.Render(b.String()),
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(m.theme.Background)),
	)
}
