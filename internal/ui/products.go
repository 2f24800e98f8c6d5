package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/five82/shelf/internal/debounce"
	"github.com/five82/shelf/internal/filters"
	"github.com/five82/shelf/internal/mutation"
	"github.com/five82/shelf/internal/product"
	"github.com/five82/shelf/internal/state"
)

// productsState holds the product list cursor and the search box.
type productsState struct {
	selected    int
	searching   bool
	searchInput textinput.Model
	search      *debounce.Debouncer[string]
	// categories is the API's list, used until the catalog lands.
	categories []string
}

func newProductsState(delay time.Duration) productsState {
	ti := textinput.New()
	ti.Placeholder = "Search products..."
	ti.CharLimit = 100
	ti.Width = 30
	ti.Prompt = "/"

	return productsState{
		searchInput: ti,
		search:      debounce.New[string](delay),
	}
}

// visibleProducts is the filtered, sorted product list.
func (m Model) visibleProducts() []product.Product {
	return m.snapshot.Visible()
}

func (m Model) selectedProduct() (product.Product, bool) {
	items := m.visibleProducts()
	if len(items) == 0 {
		return product.Product{}, false
	}
	return items[clamp(m.products.selected, len(items))], true
}

// handleProductsKey processes keyboard input for the product list.
func (m Model) handleProductsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	count := len(m.visibleProducts())

	switch {
	case key.Matches(msg, m.keys.Search):
		m.products.searching = true
		m.products.searchInput.SetValue(m.snapshot.Filters.SearchTerm)
		m.products.searchInput.CursorEnd()
		cmd := m.products.searchInput.Focus()
		return m, cmd

	case key.Matches(msg, m.keys.Escape):
		if m.products.searchInput.Value() != "" || m.snapshot.Filters.SearchTerm != "" {
			m.products.search.Cancel()
			m.products.searchInput.SetValue("")
			m.dispatch(state.SetSearchTerm{Term: ""})
			m.products.selected = 0
		}
		return m, nil

	case key.Matches(msg, m.keys.CycleCategory):
		m.dispatch(state.SetCategory{Category: nextCategory(m.categoryChoices(), m.snapshot.Filters.Category)})
		m.products.selected = 0
		return m, nil

	case key.Matches(msg, m.keys.CycleSort):
		m.dispatch(state.SetSortBy{SortBy: m.snapshot.Filters.SortBy.Next()})
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		return m, m.refreshCatalogCmd()

	case key.Matches(msg, m.keys.Open):
		if p, ok := m.selectedProduct(); ok {
			cmd := m.openDetail(p.ID, ViewProducts)
			return m, cmd
		}
		return m, nil

	case key.Matches(msg, m.keys.AddToCart):
		if p, ok := m.selectedProduct(); ok {
			cmd := m.mutate(mutation.AddToCart, p)
			return m, cmd
		}
		return m, nil

	case key.Matches(msg, m.keys.ToggleFavorite):
		if p, ok := m.selectedProduct(); ok {
			cmd := m.toggleFavorite(p)
			return m, cmd
		}
		return m, nil
	}

	m.products.selected = m.moveCursor(msg, m.products.selected, count)
	return m, nil
}

// handleSearchKey feeds the search box. Every edit restarts the quiet window;
// only the last value of a burst reaches the filters.
func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape), key.Matches(msg, m.keys.Confirm):
		m.products.searching = false
		m.products.searchInput.Blur()
		return m, nil
	}

	before := m.products.searchInput.Value()
	var cmd tea.Cmd
	m.products.searchInput, cmd = m.products.searchInput.Update(msg)
	after := m.products.searchInput.Value()
	if after == before {
		return m, cmd
	}

	token := m.products.search.Push(after)
	fire := tea.Tick(m.products.search.Wait(), func(time.Time) tea.Msg {
		return searchFireMsg{token: token}
	})
	return m, tea.Batch(cmd, fire)
}

func (m Model) handleSearchFire(msg searchFireMsg) (tea.Model, tea.Cmd) {
	term, ok := m.products.search.Fire(msg.token)
	if !ok {
		return m, nil
	}
	m.dispatch(state.SetSearchTerm{Term: term})
	m.products.selected = 0
	return m, nil
}

// nextCategory cycles "all" followed by the catalog categories.
func nextCategory(categories []string, current string) string {
	order := append([]string{filters.CategoryAll}, categories...)
	for i, c := range order {
		if c == current {
			return order[(i+1)%len(order)]
		}
	}
	return filters.CategoryAll
}

// moveCursor applies the shared list navigation keys.
func (m Model) moveCursor(msg tea.KeyMsg, selected, count int) int {
	if count == 0 {
		return 0
	}
	page := maxInt(m.contentHeight()/2, 1)
	switch {
	case key.Matches(msg, m.keys.Down):
		selected++
	case key.Matches(msg, m.keys.Up):
		selected--
	case key.Matches(msg, m.keys.Top):
		selected = 0
	case key.Matches(msg, m.keys.Bottom):
		selected = count - 1
	case key.Matches(msg, m.keys.HalfPageDown):
		selected += page
	case key.Matches(msg, m.keys.HalfPageUp):
		selected -= page
	}
	return clamp(selected, count)
}

// Catalog

func (m Model) fetchCatalogCmd() tea.Cmd {
	if m.catalog == nil || m.snapshot.Products.Status != product.StatusIdle {
		return nil
	}
	loader, ctx := m.catalog, m.ctx
	return func() tea.Msg {
		return catalogDoneMsg{err: loader.Fetch(ctx)}
	}
}

// loadCategoriesCmd asks the API for the category list so the picker works
// while the catalog is still loading.
func (m Model) loadCategoriesCmd() tea.Cmd {
	if m.api == nil || len(m.products.categories) > 0 || m.snapshot.Products.Status == product.StatusSucceeded {
		return nil
	}
	api, ctx := m.api, m.ctx
	return func() tea.Msg {
		names, err := api.Categories(ctx)
		return categoriesMsg{names: names, err: err}
	}
}

func (m *Model) handleCategories(msg categoriesMsg) {
	if msg.err != nil {
		zctx.From(m.ctx).Warn("Load categories", zap.Error(msg.err))
		return
	}
	m.products.categories = msg.names
}

// categoryChoices is the loaded catalog's categories, or the API's list
// before that.
func (m Model) categoryChoices() []string {
	if m.snapshot.Products.Status == product.StatusSucceeded {
		return m.snapshot.Products.Categories()
	}
	return m.products.categories
}

func (m Model) refreshCatalogCmd() tea.Cmd {
	if m.catalog == nil {
		return nil
	}
	loader, ctx := m.catalog, m.ctx
	return func() tea.Msg {
		return catalogDoneMsg{err: loader.Refresh(ctx)}
	}
}

// Mutations

// mutate starts a two-phase mutation. The start action lands now so the
// busy flag shows immediately; completion arrives as a mutationDoneMsg.
func (m *Model) mutate(kind mutation.Kind, p product.Product) tea.Cmd {
	if m.mutations == nil {
		return nil
	}
	ticket := m.mutations.Begin(m.ctx, mutation.Mutation{Kind: kind, Product: p})
	m.syncSnapshot()

	sim, ctx := m.mutations, m.ctx
	return func() tea.Msg {
		return mutationDoneMsg{ticket: ticket, err: sim.Complete(ctx, ticket)}
	}
}

func (m *Model) toggleFavorite(p product.Product) tea.Cmd {
	if m.snapshot.Favorites.Contains(p.ID) {
		return m.mutate(mutation.RemoveFavorite, p)
	}
	return m.mutate(mutation.AddFavorite, p)
}

func (m Model) handleMutationDone(msg mutationDoneMsg) (tea.Model, tea.Cmd) {
	m.syncSnapshot()
	switch {
	case msg.err == nil:
		cmd := m.setFlash(mutationText(msg.ticket.Mutation), flashSuccess)
		return m, cmd
	case errors.Is(msg.err, mutation.ErrSuperseded), errors.Is(msg.err, context.Canceled):
		return m, nil
	default:
		cmd := m.setFlash(errorText(msg.err), flashError)
		return m, cmd
	}
}

func mutationText(mu mutation.Mutation) string {
	title := truncate(mu.Product.Title, 40)
	switch mu.Kind {
	case mutation.AddToCart:
		return "Added to cart: " + title
	case mutation.RemoveFromCart:
		return "Removed from cart: " + title
	case mutation.AddFavorite:
		return "Added to favorites: " + title
	case mutation.RemoveFavorite:
		return "Removed from favorites: " + title
	default:
		return mu.Kind.String()
	}
}

// Rendering

func (m Model) renderProducts() string {
	styles := m.theme.Styles()
	height := m.contentHeight()
	innerWidth := maxInt(m.width-4, 10)

	var b strings.Builder
	b.WriteString(m.renderFilterBar(innerWidth))
	b.WriteString("\n\n")

	catalog := m.snapshot.Products
	items := m.visibleProducts()
	rows := maxInt(height-5, 1)

	switch {
	case catalog.Status == product.StatusLoading && len(catalog.Items) == 0:
		b.WriteString(m.spinner.View() + " " + styles.WarningText.Render("Loading products..."))
	case catalog.Status == product.StatusFailed && len(catalog.Items) == 0:
		b.WriteString(styles.DangerText.Render("Error: " + catalog.Error))
		b.WriteString("\n")
		b.WriteString(styles.MutedText.Render("Press r to try again."))
	case catalog.Status == product.StatusIdle && len(catalog.Items) == 0:
		b.WriteString(styles.MutedText.Render("No products loaded. Press r to load the catalog."))
	case len(items) == 0:
		b.WriteString(styles.MutedText.Render("No products match your filters."))
	default:
		b.WriteString(m.renderProductRows(items, m.products.selected, rows, innerWidth, true))
	}

	title := fmt.Sprintf("Products (%d)", len(items))
	return m.renderBox(title, b.String(), m.width, height, true)
}

func (m Model) renderFilterBar(width int) string {
	styles := m.theme.Styles()
	f := m.snapshot.Filters

	search := m.products.searchInput.View()
	if !m.products.searching {
		term := m.products.searchInput.Value()
		if term == "" {
			search = styles.FaintText.Render("/ to search")
		} else {
			search = styles.AccentText.Render("/" + term)
			if m.products.search.Pending() {
				search += " " + m.spinner.View()
			}
		}
	}

	category := "All"
	if !f.AllCategories() {
		category = titleCase(f.Category)
	}
	parts := []string{
		search,
		styles.MutedText.Render("Category: ") + styles.Text.Render(category),
		styles.MutedText.Render("Sort: ") + styles.Text.Render(f.SortBy.Label()),
	}
	return truncateStyled(strings.Join(parts, "   "), width)
}

// renderProductRows draws a scrolling list of products with the selected
// row highlighted.
func (m Model) renderProductRows(items []product.Product, selected, rows, width int, showCategory bool) string {
	styles := m.theme.Styles()
	start := listWindow(selected, len(items), rows)
	end := minInt(start+rows, len(items))

	showCategory = showCategory && m.width >= LayoutCategoryWidth
	priceWidth := 10
	categoryWidth := 0
	if showCategory {
		categoryWidth = 18
	}
	titleWidth := maxInt(width-priceWidth-categoryWidth-8, 10)

	var lines []string
	for i := start; i < end; i++ {
		p := items[i]
		heart := "  "
		if m.snapshot.Favorites.Contains(p.ID) {
			heart = styles.Heart.Render("♥ ")
		}
		inCart := "   "
		if line, ok := m.snapshot.Cart.Line(p.ID); ok {
			inCart = styles.InfoText.Render(padRight(fmt.Sprintf("×%d", line.Quantity), 3))
		}

		row := padRight(truncate(p.Title, titleWidth), titleWidth)
		if showCategory {
			row += " " + padRight(truncate(titleCase(p.Category), categoryWidth-1), categoryWidth-1)
		}
		price := padLeft(p.PriceLabel(), priceWidth)

		if i == selected {
			lines = append(lines, heart+styles.Selected.Render(row+price)+" "+inCart)
			continue
		}
		lines = append(lines, heart+styles.Text.Render(row)+styles.Price.Render(price)+" "+inCart)
	}
	return strings.Join(lines, "\n")
}

// listWindow returns the first visible index so selected stays on screen.
func listWindow(selected, total, rows int) int {
	if rows <= 0 || total <= rows {
		return 0
	}
	start := selected - rows/2
	if start < 0 {
		start = 0
	}
	if start > total-rows {
		start = total - rows
	}
	return start
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Messages

type catalogDoneMsg struct{ err error }

type categoriesMsg struct {
	names []string
	err   error
}

type searchFireMsg struct{ token debounce.Token }

type mutationDoneMsg struct {
	ticket mutation.Ticket
	err    error
}
