package ui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/five82/shelf/internal/auth"
	"github.com/five82/shelf/internal/config"
	"github.com/five82/shelf/internal/mutation"
	"github.com/five82/shelf/internal/prefs"
	"github.com/five82/shelf/internal/product"
	"github.com/five82/shelf/internal/state"
	"github.com/five82/shelf/internal/storeapi"
)

// View represents the current active view.
type View int

const (
	ViewLogin View = iota
	ViewRegister
	ViewReset
	ViewProducts
	ViewDetail
	ViewFavorites
	ViewCart
	ViewCheckout
	ViewActivity
)

// mainViews are the views reachable with tab once signed in.
var mainViews = []View{ViewProducts, ViewFavorites, ViewCart, ViewActivity}

func (v View) String() string {
	switch v {
	case ViewLogin:
		return "Login"
	case ViewRegister:
		return "Register"
	case ViewReset:
		return "Reset password"
	case ViewProducts:
		return "Products"
	case ViewDetail:
		return "Details"
	case ViewFavorites:
		return "Favorites"
	case ViewCart:
		return "Cart"
	case ViewCheckout:
		return "Checkout"
	case ViewActivity:
		return "Activity"
	default:
		return "Unknown"
	}
}

// CatalogLoader triggers product fetches.
type CatalogLoader interface {
	Fetch(ctx context.Context) error
	Refresh(ctx context.Context) error
}

// Options configures the UI.
type Options struct {
	Context   context.Context
	Store     *state.Store
	Catalog   CatalogLoader
	API       storeapi.Catalog
	Mutations *mutation.Simulator
	Auth      *auth.Service
	Config    config.Config
	Prefs     prefs.Prefs
	PrefsPath string
}

type flashKind int

const (
	flashInfo flashKind = iota
	flashSuccess
	flashError
)

type flash struct {
	text string
	kind flashKind
	seq  int
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	store     *state.Store
	catalog   CatalogLoader
	api       storeapi.Catalog
	mutations *mutation.Simulator
	auth      *auth.Service
	cfg       config.Config
	prefs     prefs.Prefs
	prefsPath string
	keys      keyMap

	// UI state
	theme       Theme
	currentView View
	width       int
	height      int
	ready       bool
	showHelp    bool
	spinner     spinner.Model
	flash       flash

	// Data state
	snapshot state.Snapshot
	changes  chan struct{}

	// Per-view state
	login     form
	register  form
	reset     form
	products  productsState
	favorites listCursor
	cart      listCursor
	detail    detailState
	checkout  checkoutState
	activity  activityState
}

// listCursor is the selected row of a simple list view.
type listCursor struct {
	selected int
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	store := opts.Store
	if store == nil {
		store = state.New(state.Default())
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		ctx:       ctx,
		store:     store,
		catalog:   opts.Catalog,
		api:       opts.API,
		mutations: opts.Mutations,
		auth:      opts.Auth,
		cfg:       opts.Config,
		prefs:     opts.Prefs,
		prefsPath: prefsPath,
		keys:      DefaultKeyMap(),
		theme:     GetTheme(opts.Prefs.Theme),
		spinner:   sp,
		snapshot:  store.Snapshot(),
		changes:   make(chan struct{}, 1),
		login:     newLoginForm(),
		register:  newRegisterForm(),
		reset:     newResetForm(),
		products:  newProductsState(opts.Config.SearchDebounce),
	}
	m.login.setValue(loginUsername, opts.Prefs.LastUsername)
	if opts.Prefs.LastUsername != "" {
		m.login.setFocus(loginPassword)
	}

	m.currentView = ViewLogin
	if m.signedIn() {
		m.currentView = ViewProducts
	}
	m.products.searchInput.SetValue(m.snapshot.Filters.SearchTerm)
	return m
}

// notify is the store subscriber. It never blocks: one pending signal is
// enough for the UI to pick up the latest snapshot.
func (m Model) notify(state.Change) {
	select {
	case m.changes <- struct{}{}:
	default:
	}
}

func (m Model) signedIn() bool {
	return m.auth != nil && m.auth.Session().Authenticated()
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.EnterAltScreen,
		m.spinner.Tick,
		waitForChange(m.changes),
	}
	if m.signedIn() {
		cmds = append(cmds, m.fetchCatalogCmd(), m.loadCategoriesCmd())
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.updateDetailViewport()
		m.updateActivityViewport()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case storeChangedMsg:
		m.syncSnapshot()
		return m, waitForChange(m.changes)

	case flashExpiredMsg:
		if msg.seq == m.flash.seq {
			m.flash.text = ""
		}
		return m, nil

	case catalogDoneMsg:
		m.syncSnapshot()
		if msg.err != nil {
			cmd := m.setFlash("Could not load products", flashError)
			return m, cmd
		}
		return m, nil

	case categoriesMsg:
		m.handleCategories(msg)
		return m, nil

	case searchFireMsg:
		return m.handleSearchFire(msg)

	case mutationDoneMsg:
		return m.handleMutationDone(msg)

	case loginDoneMsg:
		return m.handleLoginDone(msg)

	case registerDoneMsg:
		return m.handleRegisterDone(msg)

	case resetDoneMsg:
		return m.handleResetDone(msg)

	case logoutDoneMsg:
		return m.handleLogoutDone(msg)

	case productLoadedMsg:
		m.handleProductLoaded(msg)
		return m, nil

	case orderPlacedMsg:
		return m.handleOrderPlaced(msg)

	case activityMsg:
		m.handleActivity(msg)
		return m, nil

	case activityTickMsg:
		if m.currentView != ViewActivity {
			return m, nil
		}
		return m, tea.Batch(m.loadActivity(), activityTickCmd())
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	// Show help overlay if active
	if m.showHelp {
		return m.renderHelp()
	}

	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.products.search.Cancel()
		return m, tea.Quit
	}

	// Any key closes help
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	// Views that own the keyboard
	switch m.currentView {
	case ViewLogin:
		return m.handleLoginKey(msg)
	case ViewRegister:
		return m.handleRegisterKey(msg)
	case ViewReset:
		return m.handleResetKey(msg)
	case ViewCheckout:
		return m.handleCheckoutKey(msg)
	}
	if m.currentView == ViewProducts && m.products.searching {
		return m.handleSearchKey(msg)
	}

	// Global keys
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.products.search.Cancel()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.prefs.Theme = m.theme.Name
		m.savePrefs()
		return m, nil

	case key.Matches(msg, m.keys.Logout):
		return m, m.logoutCmd()

	case key.Matches(msg, m.keys.Tab):
		return m.switchView(m.cycleView(1))

	case key.Matches(msg, m.keys.ShiftTab):
		return m.switchView(m.cycleView(-1))

	case key.Matches(msg, m.keys.ViewProducts):
		return m.switchView(ViewProducts)

	case key.Matches(msg, m.keys.ViewFavorites):
		return m.switchView(ViewFavorites)

	case key.Matches(msg, m.keys.ViewCart):
		return m.switchView(ViewCart)

	case key.Matches(msg, m.keys.ViewActivity):
		return m.switchView(ViewActivity)
	}

	// View-specific keys
	switch m.currentView {
	case ViewProducts:
		return m.handleProductsKey(msg)
	case ViewDetail:
		return m.handleDetailKey(msg)
	case ViewFavorites:
		return m.handleFavoritesKey(msg)
	case ViewCart:
		return m.handleCartKey(msg)
	case ViewActivity:
		return m.handleActivityKey(msg)
	}

	return m, nil
}

// cycleView returns the main view step positions away from the current one.
// The detail view counts as products.
func (m Model) cycleView(step int) View {
	current := m.currentView
	if current == ViewDetail {
		current = ViewProducts
	}
	for i, v := range mainViews {
		if v == current {
			return mainViews[(i+step+len(mainViews))%len(mainViews)]
		}
	}
	return ViewProducts
}

// switchView moves to v, tearing down the view being left.
func (m Model) switchView(v View) (tea.Model, tea.Cmd) {
	if m.currentView == v {
		return m, nil
	}
	if m.currentView == ViewProducts {
		// Leaving the list drops a search that has not applied yet.
		m.products.search.Cancel()
		m.products.searching = false
		m.products.searchInput.Blur()
	}
	m.currentView = v

	switch v {
	case ViewProducts:
		m.products.searchInput.SetValue(m.snapshot.Filters.SearchTerm)
		return m, tea.Batch(m.fetchCatalogCmd(), m.loadCategoriesCmd())
	case ViewActivity:
		return m, tea.Batch(m.loadActivity(), activityTickCmd())
	}
	return m, nil
}

// syncSnapshot reloads the store snapshot and keeps cursors in range.
func (m *Model) syncSnapshot() {
	m.snapshot = m.store.Snapshot()
	m.products.selected = clamp(m.products.selected, len(m.visibleProducts()))
	m.favorites.selected = clamp(m.favorites.selected, m.snapshot.Favorites.Len())
	m.cart.selected = clamp(m.cart.selected, m.snapshot.Cart.Len())
	m.updateDetailViewport()
}

// dispatch applies a filter or cart action directly and refreshes the view.
func (m *Model) dispatch(a state.Action) {
	m.store.Dispatch(a)
	m.syncSnapshot()
}

func (m *Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	if err := prefs.Save(m.prefsPath, m.prefs); err != nil {
		zctx.From(m.ctx).Warn("Save preferences", zap.Error(err))
	}
}

// setFlash shows text in the header until FlashDuration passes.
func (m *Model) setFlash(text string, kind flashKind) tea.Cmd {
	m.flash.seq++
	m.flash.text = text
	m.flash.kind = kind
	seq := m.flash.seq
	return tea.Tick(FlashDuration, func(time.Time) tea.Msg {
		return flashExpiredMsg{seq: seq}
	})
}

// errorText is the user-facing message for err.
func errorText(err error) string {
	var netErr *storeapi.NetworkError
	var notFound *product.NotFoundError
	switch {
	case errors.As(err, &netErr):
		if netErr.Unauthorized() {
			return "Invalid username or password"
		}
		if netErr.Status != 0 {
			return "The store returned an error (" + strings.TrimSpace(netErr.Error()) + ")"
		}
		return "Network error: could not reach the store"
	case errors.As(err, &notFound):
		return "Product not found"
	default:
		return err.Error()
	}
}

// renderMain renders the full UI.
func (m Model) renderMain() string {
	var b strings.Builder

	// Header line 1: logo + status
	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	// Header line 2: command bar
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")

	// Main content
	b.WriteString(m.renderContent())

	return b.String()
}

// renderContent renders the main content area based on current view.
func (m Model) renderContent() string {
	h := m.contentHeight()
	switch m.currentView {
	case ViewLogin:
		return m.renderForm(m.login, "Enter: Sign in  •  Ctrl+R: Register  •  Ctrl+F: Forgot password", m.width, h)
	case ViewRegister:
		return m.renderForm(m.register, "Enter: Next/Create  •  Esc: Back to sign in", m.width, h)
	case ViewReset:
		return m.renderForm(m.reset, "Enter: Send link  •  Esc: Back to sign in", m.width, h)
	case ViewProducts:
		return m.renderProducts()
	case ViewDetail:
		return m.renderDetail()
	case ViewFavorites:
		return m.renderFavorites()
	case ViewCart:
		return m.renderCart()
	case ViewCheckout:
		return m.renderCheckout()
	case ViewActivity:
		return m.renderActivity()
	default:
		return ""
	}
}

// Messages

type storeChangedMsg struct{}

type flashExpiredMsg struct{ seq int }

// Commands

func waitForChange(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-ch
		return storeChangedMsg{}
	}
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	unsubscribe := m.store.Subscribe(m.notify)
	defer unsubscribe()
	defer m.products.search.Cancel()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}
