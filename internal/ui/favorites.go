package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/shelf/internal/mutation"
	"github.com/five82/shelf/internal/product"
)

func (m Model) selectedFavorite() (product.Product, bool) {
	items := m.snapshot.Favorites.Items
	if len(items) == 0 {
		return product.Product{}, false
	}
	return items[clamp(m.favorites.selected, len(items))], true
}

// handleFavoritesKey processes keyboard input for the favorites list.
func (m Model) handleFavoritesKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Open):
		if p, ok := m.selectedFavorite(); ok {
			cmd := m.openDetail(p.ID, ViewFavorites)
			return m, cmd
		}
		return m, nil

	case key.Matches(msg, m.keys.ToggleFavorite), key.Matches(msg, m.keys.Remove):
		if p, ok := m.selectedFavorite(); ok {
			cmd := m.mutate(mutation.RemoveFavorite, p)
			return m, cmd
		}
		return m, nil

	case key.Matches(msg, m.keys.AddToCart):
		if p, ok := m.selectedFavorite(); ok {
			cmd := m.mutate(mutation.AddToCart, p)
			return m, cmd
		}
		return m, nil
	}

	m.favorites.selected = m.moveCursor(msg, m.favorites.selected, m.snapshot.Favorites.Len())
	return m, nil
}

func (m Model) renderFavorites() string {
	styles := m.theme.Styles()
	height := m.contentHeight()
	favs := m.snapshot.Favorites

	var b strings.Builder
	if favs.Busy {
		b.WriteString(m.spinner.View() + " " + styles.WarningText.Render("Updating favorites..."))
	} else {
		b.WriteString(styles.MutedText.Render("enter: details  a: add to cart  x: remove"))
	}
	b.WriteString("\n\n")

	if favs.Len() == 0 {
		b.WriteString(styles.MutedText.Render("No favorites yet. Press f on a product to add it."))
	} else {
		b.WriteString(m.renderProductRows(favs.Items, m.favorites.selected, maxInt(height-5, 1), maxInt(m.width-4, 10), true))
	}

	return m.renderBox(fmt.Sprintf("Favorites (%d)", favs.Len()), b.String(), m.width, height, true)
}
