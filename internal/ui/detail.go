package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-faster/errors"

	"github.com/five82/shelf/internal/mutation"
	"github.com/five82/shelf/internal/product"
)

// detailState holds the product shown in the detail view.
type detailState struct {
	id       int
	back     View
	product  *product.Product
	loading  bool
	notFound bool
	err      string
	viewport viewport.Model
}

// openDetail shows product id. Products outside the loaded catalog are
// fetched from the API.
func (m *Model) openDetail(id int, back View) tea.Cmd {
	if m.currentView == ViewProducts {
		m.products.search.Cancel()
		m.products.searching = false
		m.products.searchInput.Blur()
	}
	m.detail = detailState{id: id, back: back, viewport: m.detail.viewport}
	m.currentView = ViewDetail

	if p, err := m.snapshot.Products.Find(id); err == nil {
		m.detail.product = &p
		m.updateDetailViewport()
		m.detail.viewport.GotoTop()
		return nil
	}
	if m.api == nil {
		m.detail.notFound = true
		return nil
	}

	m.detail.loading = true
	api, ctx := m.api, m.ctx
	return func() tea.Msg {
		p, err := api.Product(ctx, id)
		return productLoadedMsg{id: id, product: p, err: err}
	}
}

func (m *Model) handleProductLoaded(msg productLoadedMsg) {
	if msg.id != m.detail.id {
		return
	}
	m.detail.loading = false
	var notFound *product.NotFoundError
	switch {
	case errors.As(msg.err, &notFound):
		m.detail.notFound = true
	case msg.err != nil:
		m.detail.err = errorText(msg.err)
	default:
		p := msg.product
		m.detail.product = &p
	}
	m.updateDetailViewport()
	m.detail.viewport.GotoTop()
}

// handleDetailKey processes keyboard input for the detail view.
func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		back := m.detail.back
		if back == ViewDetail {
			back = ViewProducts
		}
		return m.switchView(back)

	case key.Matches(msg, m.keys.AddToCart):
		if m.detail.product != nil {
			cmd := m.mutate(mutation.AddToCart, *m.detail.product)
			return m, cmd
		}
		return m, nil

	case key.Matches(msg, m.keys.ToggleFavorite):
		if m.detail.product != nil {
			cmd := m.toggleFavorite(*m.detail.product)
			return m, cmd
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		m.detail.viewport.ScrollDown(1)
	case key.Matches(msg, m.keys.Up):
		m.detail.viewport.ScrollUp(1)
	case key.Matches(msg, m.keys.HalfPageDown):
		m.detail.viewport.HalfPageDown()
	case key.Matches(msg, m.keys.HalfPageUp):
		m.detail.viewport.HalfPageUp()
	}
	return m, nil
}

// updateDetailViewport sizes the viewport and re-renders its content.
func (m *Model) updateDetailViewport() {
	if m.width == 0 {
		return
	}
	m.detail.viewport.Width = maxInt(m.width-4, 10)
	m.detail.viewport.Height = maxInt(m.contentHeight()-3, 1)
	m.detail.viewport.SetContent(m.renderDetailContent())
}

func (m Model) renderDetail() string {
	styles := m.theme.Styles()
	title := "Product"

	var content string
	switch {
	case m.detail.loading:
		content = m.spinner.View() + " " + styles.WarningText.Render("Loading product...")
	case m.detail.notFound:
		content = styles.DangerText.Render("Product not found") + "\n\n" +
			styles.MutedText.Render("Press esc to go back.")
	case m.detail.err != "":
		content = styles.DangerText.Render(m.detail.err)
	case m.detail.product != nil:
		title = truncate(m.detail.product.Title, maxInt(m.width-12, 10))
		content = m.detail.viewport.View() + "\n" + m.renderDetailStatus()
	}
	return m.renderBox(title, content, m.width, m.contentHeight(), true)
}

// renderDetailStatus is the cart/favorite line under the description.
func (m Model) renderDetailStatus() string {
	styles := m.theme.Styles()
	p := *m.detail.product

	var status []string
	if line, ok := m.snapshot.Cart.Line(p.ID); ok {
		status = append(status, styles.InfoText.Render(fmt.Sprintf("In cart: %d", line.Quantity)))
	}
	if m.snapshot.Favorites.Contains(p.ID) {
		status = append(status, styles.Heart.Render("♥ Favorite"))
	}
	if m.snapshot.Cart.Busy || m.snapshot.Favorites.Busy {
		status = append(status, m.spinner.View()+" "+styles.WarningText.Render("Updating..."))
	}
	if len(status) == 0 {
		return styles.FaintText.Render("a: add to cart  f: favorite")
	}
	return strings.Join(status, "   ")
}

func (m Model) renderDetailContent() string {
	styles := m.theme.Styles()
	width := maxInt(m.width-6, 10)

	if m.detail.product == nil {
		return ""
	}

	p := *m.detail.product
	var b strings.Builder

	b.WriteString(styles.Text.Bold(true).Render(p.Title))
	b.WriteString("\n")
	b.WriteString(styles.MutedText.Render(titleCase(p.Category)))
	b.WriteString("\n\n")
	b.WriteString(styles.Price.Render(p.PriceLabel()))
	if p.Rating != nil {
		b.WriteString("   ")
		b.WriteString(styles.WarningText.Render(stars(p.Rating.Rate)))
		b.WriteString(styles.MutedText.Render(fmt.Sprintf(" %.1f (%d reviews)", p.Rating.Rate, p.Rating.Count)))
	}
	b.WriteString("\n\n")

	for _, line := range wrap(p.Description, width) {
		b.WriteString(styles.Text.Render(line))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if p.Image != "" {
		b.WriteString(styles.FaintText.Render("Image: " + p.Image))
		b.WriteString("\n")
	}
	return b.String()
}

// stars renders a five-star bar for rate, rounded to the nearest star.
func stars(rate float64) string {
	n := int(rate + 0.5)
	if n < 0 {
		n = 0
	}
	if n > 5 {
		n = 5
	}
	return strings.Repeat("★", n) + strings.Repeat("☆", 5-n)
}

type productLoadedMsg struct {
	id      int
	product product.Product
	err     error
}
