package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/shelf/internal/cart"
	"github.com/five82/shelf/internal/mutation"
	"github.com/five82/shelf/internal/state"
)

func (m Model) selectedLine() (cart.Line, bool) {
	items := m.snapshot.Cart.Items
	if len(items) == 0 {
		return cart.Line{}, false
	}
	return items[clamp(m.cart.selected, len(items))], true
}

// handleCartKey processes keyboard input for the cart.
func (m Model) handleCartKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Open):
		if line, ok := m.selectedLine(); ok {
			cmd := m.openDetail(line.Product.ID, ViewCart)
			return m, cmd
		}
		return m, nil

	case key.Matches(msg, m.keys.Increase):
		if line, ok := m.selectedLine(); ok {
			m.dispatch(state.UpdateQuantity{ProductID: line.Product.ID, Quantity: line.Quantity + 1})
		}
		return m, nil

	case key.Matches(msg, m.keys.Decrease):
		line, ok := m.selectedLine()
		if !ok {
			return m, nil
		}
		if err := cart.ValidateQuantity(line.Product.ID, line.Quantity-1); err != nil {
			cmd := m.setFlash("Quantity must be at least 1. Press x to remove the item.", flashError)
			return m, cmd
		}
		m.dispatch(state.UpdateQuantity{ProductID: line.Product.ID, Quantity: line.Quantity - 1})
		return m, nil

	case key.Matches(msg, m.keys.Remove):
		if line, ok := m.selectedLine(); ok {
			cmd := m.mutate(mutation.RemoveFromCart, line.Product)
			return m, cmd
		}
		return m, nil

	case key.Matches(msg, m.keys.ClearCart):
		if m.snapshot.Cart.Len() == 0 {
			return m, nil
		}
		m.dispatch(state.ClearCart{})
		cmd := m.setFlash("Cart cleared", flashInfo)
		return m, cmd

	case key.Matches(msg, m.keys.Checkout):
		return m.startCheckout()
	}

	m.cart.selected = m.moveCursor(msg, m.cart.selected, m.snapshot.Cart.Len())
	return m, nil
}

func (m Model) renderCart() string {
	styles := m.theme.Styles()
	height := m.contentHeight()
	width := maxInt(m.width-4, 20)
	c := m.snapshot.Cart

	var b strings.Builder
	if c.Busy {
		b.WriteString(m.spinner.View() + " " + styles.WarningText.Render("Updating cart..."))
	} else {
		b.WriteString(styles.MutedText.Render("+/-: quantity  x: remove  C: clear  o: checkout"))
	}
	b.WriteString("\n\n")

	if c.Len() == 0 {
		b.WriteString(styles.MutedText.Render("Your cart is empty."))
		return m.renderBox("Cart", b.String(), m.width, height, true)
	}

	qtyWidth, priceWidth := 5, 10
	titleWidth := maxInt(width-qtyWidth-2*priceWidth-4, 10)
	header := padRight("Item", titleWidth) + padLeft("Price", priceWidth) + padLeft("Qty", qtyWidth) + padLeft("Subtotal", priceWidth)
	b.WriteString(styles.FaintText.Render(header))
	b.WriteString("\n")

	rows := maxInt(height-9, 1)
	start := listWindow(m.cart.selected, c.Len(), rows)
	end := minInt(start+rows, c.Len())
	for i := start; i < end; i++ {
		line := c.Items[i]
		row := padRight(truncate(line.Product.Title, titleWidth), titleWidth) +
			padLeft(line.Product.PriceLabel(), priceWidth) +
			padLeft(fmt.Sprintf("%d", line.Quantity), qtyWidth) +
			padLeft("$"+line.Subtotal().StringFixed(2), priceWidth)
		if i == m.cart.selected {
			b.WriteString(styles.Selected.Render(row))
		} else {
			b.WriteString(styles.Text.Render(row))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(strings.Repeat("─", minInt(width, titleWidth+qtyWidth+2*priceWidth))))
	b.WriteString("\n")
	b.WriteString(styles.MutedText.Render(fmt.Sprintf("%d items  ", c.Count())))
	b.WriteString(styles.Text.Bold(true).Render("Total: "))
	b.WriteString(styles.Price.Render("$" + c.Total().StringFixed(2)))

	return m.renderBox(fmt.Sprintf("Cart (%d)", c.Count()), b.String(), m.width, height, true)
}
