package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/shelf/internal/product"
)

// renderHeader renders the status bar: logo, catalog status, counters and
// the view tabs, with any flash message on the right.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	sep := "  "
	compact := m.width > 0 && m.width < LayoutCompactWidth

	parts := []string{bg.Render("shelf", styles.Logo)}

	if !m.signedIn() {
		parts = append(parts, bg.Render("signed out", styles.MutedText))
		return m.finishHeader(styles, bg, parts, sep)
	}

	if name := m.prefs.LastUsername; name != "" && !compact {
		parts = append(parts, bg.Render(name, styles.Text))
	}

	parts = append(parts, m.catalogBadge(styles, bg))

	cart := m.snapshot.Cart
	parts = append(parts, bg.Pair("cart", fmt.Sprintf("%d", cart.Count()), styles.FaintText, styles.AccentText))
	if !compact && cart.Len() > 0 {
		parts = append(parts, bg.Render("$"+cart.Total().StringFixed(2), styles.Price))
	}
	parts = append(parts, bg.Pair("♥", fmt.Sprintf("%d", m.snapshot.Favorites.Len()), styles.Heart, styles.Text))

	if cart.Busy || m.snapshot.Favorites.Busy {
		parts = append(parts, bg.Render(m.spinner.View(), styles.WarningText)+bg.Space()+
			styles.StatusStyle(busyStatus).Render("SAVING"))
	}

	parts = append(parts, m.renderTabs(styles, bg))
	return m.finishHeader(styles, bg, parts, sep)
}

// finishHeader joins header parts and right-aligns the flash message when
// there is room for it.
func (m Model) finishHeader(styles Styles, bg BgStyle, parts []string, sep string) string {
	left := bg.Join(parts, sep)
	if m.flash.text == "" {
		return styles.Header.Width(m.width).Render(left)
	}

	var style lipgloss.Style
	switch m.flash.kind {
	case flashSuccess:
		style = styles.SuccessText.Bold(true)
	case flashError:
		style = styles.DangerText.Bold(true)
	default:
		style = styles.InfoText
	}

	room := m.width - lipgloss.Width(left) - 4
	if room < 8 {
		return styles.Header.Width(m.width).Render(left)
	}
	right := bg.Render(truncate(m.flash.text, room), style)
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	return styles.Header.Width(m.width).Render(left + bg.Spaces(maxInt(gap, 1)) + right)
}

// catalogBadge shows the fetch status of the product catalog.
func (m Model) catalogBadge(styles Styles, bg BgStyle) string {
	catalog := m.snapshot.Products
	status := catalog.Status.String()
	label := strings.ToUpper(status)

	switch catalog.Status {
	case product.StatusLoading:
		return bg.Render(m.spinner.View(), styles.InfoText) + bg.Space() +
			styles.StatusStyle(status).Render(label)
	case product.StatusSucceeded:
		return styles.StatusStyle(status).Render(fmt.Sprintf("%d ITEMS", len(catalog.Items)))
	default:
		return styles.StatusStyle(status).Render(label)
	}
}

// renderTabs lists the main views and highlights the active one.
func (m Model) renderTabs(styles Styles, bg BgStyle) string {
	current := m.currentView
	switch current {
	case ViewDetail:
		current = m.detail.back
	case ViewCheckout:
		current = ViewCart
	}

	tabs := make([]string, 0, len(mainViews))
	for i, v := range mainViews {
		label := fmt.Sprintf("%d %s", i+1, v)
		if v == current {
			tabs = append(tabs, bg.Render(label, styles.AccentText.Bold(true)))
			continue
		}
		tabs = append(tabs, bg.Render(label, styles.FaintText))
	}
	return bg.Join(tabs, " │ ")
}

// renderCommandBar renders the key hints for the current view.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	type cmd struct{ key, desc string }
	var commands []cmd

	switch m.currentView {
	case ViewLogin:
		commands = []cmd{
			{"Enter", "Sign in"},
			{"Tab", "Next"},
			{"^R", "Register"},
			{"^F", "Forgot"},
		}
	case ViewRegister, ViewReset:
		commands = []cmd{
			{"Enter", "Submit"},
			{"Tab", "Next"},
			{"Esc", "Back"},
		}
	case ViewProducts:
		if m.products.searching {
			commands = []cmd{
				{"Enter", "Done"},
				{"Esc", "Clear"},
			}
			break
		}
		commands = []cmd{
			{"/", "Search"},
			{"c", "Category"},
			{"s", "Sort"},
			{"a", "Add"},
			{"f", "Favorite"},
			{"Enter", "Details"},
			{"r", "Refresh"},
			{"?", "More"},
		}
	case ViewDetail:
		commands = []cmd{
			{"a", "Add"},
			{"f", "Favorite"},
			{"j/k", "Scroll"},
			{"Esc", "Back"},
		}
	case ViewFavorites:
		commands = []cmd{
			{"j/k", "Navigate"},
			{"a", "Add"},
			{"x", "Remove"},
			{"Enter", "Details"},
			{"?", "More"},
		}
	case ViewCart:
		commands = []cmd{
			{"+/-", "Quantity"},
			{"x", "Remove"},
			{"C", "Clear"},
			{"o", "Checkout"},
			{"?", "More"},
		}
	case ViewCheckout:
		commands = []cmd{
			{"Enter", "Next"},
			{"Tab", "Field"},
			{"Esc", "Back"},
		}
	case ViewActivity:
		commands = []cmd{
			{"j/k", "Scroll"},
			{"g/G", "Top/Bottom"},
			{"?", "More"},
		}
	}

	colon := bg.Sep(":")

	segments := make([]string, 0, len(commands)+2)
	for _, c := range commands {
		segments = append(segments,
			bg.Render(c.key, styles.AccentText)+colon+bg.Render(c.desc, styles.MutedText))
	}

	if m.currentView == ViewProducts && !m.products.searching {
		if term := m.snapshot.Filters.SearchTerm; term != "" {
			segments = append(segments, bg.Render("/"+truncate(term, 18), styles.AccentText))
		}
	}

	segments = append(segments,
		bg.Render("T", styles.AccentText)+colon+bg.Render(m.theme.Name, styles.FaintText))

	return styles.Header.Width(m.width).Render(bg.Join(segments, "  "))
}
