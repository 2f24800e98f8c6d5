package ui

import (
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/shelf/internal/auth"
	"github.com/five82/shelf/internal/config"
	"github.com/five82/shelf/internal/fakestore"
	"github.com/five82/shelf/internal/localstore"
	"github.com/five82/shelf/internal/mutation"
	"github.com/five82/shelf/internal/prefs"
	"github.com/five82/shelf/internal/state"
	"github.com/five82/shelf/internal/storeapi"
)

type harness struct {
	store     *state.Store
	session   *auth.Session
	prefsPath string
	opts      Options
}

func newHarness(t *testing.T, signedIn bool) *harness {
	t.Helper()

	dir := t.TempDir()
	local, err := localstore.Open(filepath.Join(dir, "data"))
	if err != nil {
		t.Fatalf("open local store: %v", err)
	}
	session, err := auth.LoadSession(local)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	if signedIn {
		if err := session.Set("test-token"); err != nil {
			t.Fatalf("set token: %v", err)
		}
	}

	srv := httptest.NewServer(fakestore.New().Handler())
	t.Cleanup(srv.Close)
	client, err := storeapi.NewClient(srv.URL)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	store := state.New(state.Default())
	store.Dispatch(state.FetchPending{})
	store.Dispatch(state.FetchFulfilled{Items: fakestore.Fixtures()})

	cfg := config.Default()
	cfg.LogFile = ""
	cfg.SearchDebounce = 5 * time.Millisecond
	cfg.MutationDelay = time.Millisecond
	cfg.RemovalDelay = time.Millisecond
	cfg.CheckoutDelay = time.Millisecond

	prefsPath := filepath.Join(dir, "prefs.toml")
	return &harness{
		store:     store,
		session:   session,
		prefsPath: prefsPath,
		opts: Options{
			Store:     store,
			API:       client,
			Mutations: mutation.New(store, mutation.WithDelay(time.Millisecond), mutation.WithRemovalDelay(time.Millisecond)),
			Auth:      auth.NewService(client, session),
			Config:    cfg,
			Prefs:     prefs.Default(),
			PrefsPath: prefsPath,
		},
	}
}

func (h *harness) model(t *testing.T) Model {
	t.Helper()
	m := New(h.opts)
	return send(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
}

func send(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func sendCmd(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func enter() tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyEnter} }

// collect runs cmd and every command it batches, returning the messages that
// arrive within wait. Slow commands such as cursor blinks are abandoned.
func collect(cmd tea.Cmd, wait time.Duration) []tea.Msg {
	out := make(chan tea.Msg, 64)
	var run func(tea.Cmd)
	run = func(c tea.Cmd) {
		if c == nil {
			return
		}
		go func() {
			msg := c()
			if batch, ok := msg.(tea.BatchMsg); ok {
				for _, sub := range batch {
					run(sub)
				}
				return
			}
			out <- msg
		}()
	}
	run(cmd)

	var msgs []tea.Msg
	deadline := time.After(wait)
	for {
		select {
		case msg := <-out:
			msgs = append(msgs, msg)
		case <-deadline:
			return msgs
		}
	}
}

func firstOf[T tea.Msg](t *testing.T, cmd tea.Cmd) T {
	t.Helper()
	for _, msg := range collect(cmd, 200*time.Millisecond) {
		if v, ok := msg.(T); ok {
			return v
		}
	}
	var zero T
	t.Fatalf("no %T produced", zero)
	return zero
}

func TestNewStartsAtLoginWhenSignedOut(t *testing.T) {
	m := newHarness(t, false).model(t)
	if m.currentView != ViewLogin {
		t.Fatalf("expected login view, got %v", m.currentView)
	}

	// Form views own the keyboard, so view keys are typed into the form.
	m = send(t, m, runes("2"))
	if m.currentView != ViewLogin {
		t.Fatalf("expected to stay on login, got %v", m.currentView)
	}
	if got := m.login.value(loginUsername); got != "2" {
		t.Fatalf("expected typed username, got %q", got)
	}
}

func TestNewStartsAtProductsWhenSignedIn(t *testing.T) {
	m := newHarness(t, true).model(t)
	if m.currentView != ViewProducts {
		t.Fatalf("expected products view, got %v", m.currentView)
	}
	if !strings.Contains(m.View(), "Products (") {
		t.Fatalf("expected products box in view")
	}
}

func TestCategoryPickerUsesAPIListBeforeCatalogLoads(t *testing.T) {
	h := newHarness(t, true)
	h.store.Dispatch(state.ResetCatalog{})
	m := h.model(t)

	loaded := firstOf[categoriesMsg](t, m.Init())
	if loaded.err != nil || len(loaded.names) == 0 {
		t.Fatalf("categories = %v, err = %v", loaded.names, loaded.err)
	}
	m = send(t, m, loaded)

	m = send(t, m, runes("c"))
	if got := h.store.Snapshot().Filters.Category; got != loaded.names[0] {
		t.Fatalf("category = %q, want %q", got, loaded.names[0])
	}
	if m.loadCategoriesCmd() != nil {
		t.Fatalf("categories fetched again after they were loaded")
	}
}

func TestViewKeysAndTabCycle(t *testing.T) {
	m := newHarness(t, true).model(t)

	steps := []struct {
		key  tea.KeyMsg
		want View
	}{
		{runes("2"), ViewFavorites},
		{runes("3"), ViewCart},
		{runes("4"), ViewActivity},
		{tea.KeyMsg{Type: tea.KeyTab}, ViewProducts},
		{tea.KeyMsg{Type: tea.KeyShiftTab}, ViewActivity},
		{runes("1"), ViewProducts},
	}
	for _, step := range steps {
		m = send(t, m, step.key)
		if m.currentView != step.want {
			t.Fatalf("after %q expected %v, got %v", step.key.String(), step.want, m.currentView)
		}
	}
}

func TestSearchDebounceAppliesNewestTermOnce(t *testing.T) {
	h := newHarness(t, true)
	m := h.model(t)

	var applied []string
	unsubscribe := h.store.Subscribe(func(c state.Change) {
		if a, ok := c.Action.(state.SetSearchTerm); ok {
			applied = append(applied, a.Term)
		}
	})
	defer unsubscribe()

	m = send(t, m, runes("/"))
	if !m.products.searching {
		t.Fatalf("expected search mode")
	}

	var fires []searchFireMsg
	for _, r := range "shirt" {
		var cmd tea.Cmd
		m, cmd = sendCmd(t, m, runes(string(r)))
		fires = append(fires, firstOf[searchFireMsg](t, cmd))
	}
	if len(applied) != 0 {
		t.Fatalf("expected no search before the quiet window, got %v", applied)
	}

	for _, fire := range fires {
		m = send(t, m, fire)
	}
	if len(applied) != 1 || applied[0] != "shirt" {
		t.Fatalf("expected one search for %q, got %v", "shirt", applied)
	}
	if got := m.snapshot.Filters.SearchTerm; got != "shirt" {
		t.Fatalf("expected search term in snapshot, got %q", got)
	}
	for _, p := range m.visibleProducts() {
		if !strings.Contains(strings.ToLower(p.Title), "shirt") {
			t.Fatalf("unexpected product %q in results", p.Title)
		}
	}
}

func TestLeavingProductsCancelsPendingSearch(t *testing.T) {
	m := newHarness(t, true).model(t)

	m = send(t, m, runes("/"))
	m, cmd := sendCmd(t, m, runes("x"))
	fire := firstOf[searchFireMsg](t, cmd)

	m = send(t, m, enter())
	m = send(t, m, runes("2"))
	if m.products.search.Pending() {
		t.Fatalf("expected pending search to be cancelled")
	}

	m = send(t, m, fire)
	if got := m.snapshot.Filters.SearchTerm; got != "" {
		t.Fatalf("expected no search term, got %q", got)
	}
}

func TestToggleFavoriteRunsTwoPhases(t *testing.T) {
	m := newHarness(t, true).model(t)
	p, ok := m.selectedProduct()
	if !ok {
		t.Fatalf("expected a selected product")
	}

	m, cmd := sendCmd(t, m, runes("f"))
	if !m.snapshot.Favorites.Busy {
		t.Fatalf("expected favorites busy while mutation is pending")
	}
	if m.snapshot.Favorites.Contains(p.ID) {
		t.Fatalf("favorite applied before completion")
	}

	done := firstOf[mutationDoneMsg](t, cmd)
	if done.err != nil {
		t.Fatalf("mutation failed: %v", done.err)
	}
	m = send(t, m, done)
	if m.snapshot.Favorites.Busy {
		t.Fatalf("expected busy flag cleared")
	}
	if !m.snapshot.Favorites.Contains(p.ID) {
		t.Fatalf("expected product %d in favorites", p.ID)
	}
	if m.flash.kind != flashSuccess || !strings.Contains(m.flash.text, "Added to favorites") {
		t.Fatalf("unexpected flash %+v", m.flash)
	}

	m, cmd = sendCmd(t, m, runes("f"))
	m = send(t, m, firstOf[mutationDoneMsg](t, cmd))
	if m.snapshot.Favorites.Contains(p.ID) {
		t.Fatalf("expected product %d removed from favorites", p.ID)
	}
}

func TestCartQuantityNeverDropsBelowOne(t *testing.T) {
	h := newHarness(t, true)
	item := fakestore.Fixtures()[0]
	h.store.Dispatch(state.AddToCartSuccess{Product: item})
	m := h.model(t)

	m = send(t, m, runes("3"))
	m = send(t, m, runes("-"))
	line, ok := m.snapshot.Cart.Line(item.ID)
	if !ok || line.Quantity != 1 {
		t.Fatalf("expected quantity 1, got %+v", line)
	}
	if m.flash.kind != flashError {
		t.Fatalf("expected error flash, got %+v", m.flash)
	}

	m = send(t, m, runes("+"))
	m = send(t, m, runes("+"))
	m = send(t, m, runes("-"))
	line, _ = m.snapshot.Cart.Line(item.ID)
	if line.Quantity != 2 {
		t.Fatalf("expected quantity 2, got %d", line.Quantity)
	}
}

func TestCheckoutFlowPlacesOrder(t *testing.T) {
	h := newHarness(t, true)
	h.store.Dispatch(state.AddToCartSuccess{Product: fakestore.Fixtures()[0]})
	m := h.model(t)

	m = send(t, m, runes("3"))
	m = send(t, m, runes("o"))
	if m.currentView != ViewCheckout {
		t.Fatalf("expected checkout view, got %v", m.currentView)
	}

	m.checkout.shipping.setFocus(shipZip)
	m = send(t, m, enter())
	if m.checkout.shipping.err == "" {
		t.Fatalf("expected shipping validation error")
	}

	for i, v := range []string{"Ada", "Lovelace", "ada@example.com", "", "1 Main St", "London", "LN", "12345"} {
		m.checkout.shipping.setValue(i, v)
	}
	m = send(t, m, enter())
	if m.checkout.shipping.err != "" {
		t.Fatalf("unexpected shipping error %q", m.checkout.shipping.err)
	}

	m.checkout.payment.setValue(payCardName, "Ada Lovelace")
	m.checkout.payment.setValue(payCardNumber, "1234")
	m.checkout.payment.setValue(payExpiry, "12/30")
	m.checkout.payment.setValue(payCVV, "123")
	m.checkout.payment.setFocus(payCVV)
	m = send(t, m, enter())
	if m.checkout.payment.err != "Card number must be 16 digits" {
		t.Fatalf("unexpected payment error %q", m.checkout.payment.err)
	}

	m.checkout.payment.setValue(payCardNumber, "4242424242424242")
	m, cmd := sendCmd(t, m, enter())
	if !m.checkout.payment.pending {
		t.Fatalf("expected payment pending")
	}
	m = send(t, m, firstOf[orderPlacedMsg](t, cmd))
	if m.checkout.order == nil {
		t.Fatalf("expected order, payment error %q", m.checkout.payment.err)
	}
	if !strings.HasPrefix(m.checkout.order.ID, "ORD-") {
		t.Fatalf("unexpected order id %q", m.checkout.order.ID)
	}
	if m.snapshot.Cart.Len() != 0 {
		t.Fatalf("expected cart cleared after order")
	}

	m = send(t, m, enter())
	if m.currentView != ViewProducts {
		t.Fatalf("expected products after confirmation, got %v", m.currentView)
	}
}

func TestCheckoutRequiresItems(t *testing.T) {
	m := newHarness(t, true).model(t)
	m = send(t, m, runes("3"))
	m = send(t, m, runes("o"))
	if m.currentView != ViewCart {
		t.Fatalf("expected to stay on cart, got %v", m.currentView)
	}
	if m.flash.kind != flashError {
		t.Fatalf("expected error flash, got %+v", m.flash)
	}
}

func TestLoginStoresTokenAndUsername(t *testing.T) {
	h := newHarness(t, false)
	m := h.model(t)

	m.login.setValue(loginUsername, fakestore.DemoUsername)
	m.login.setValue(loginPassword, "wrong")
	m.login.setFocus(loginPassword)
	m, cmd := sendCmd(t, m, enter())
	m = send(t, m, firstOf[loginDoneMsg](t, cmd))
	if m.currentView != ViewLogin || m.login.err == "" {
		t.Fatalf("expected login error, view %v err %q", m.currentView, m.login.err)
	}
	if h.session.Authenticated() {
		t.Fatalf("session authenticated after bad password")
	}

	m.login.setValue(loginPassword, fakestore.DemoPassword)
	m, cmd = sendCmd(t, m, enter())
	m = send(t, m, firstOf[loginDoneMsg](t, cmd))
	if m.currentView != ViewProducts {
		t.Fatalf("expected products after login, got %v", m.currentView)
	}
	if !h.session.Authenticated() {
		t.Fatalf("expected session token")
	}

	saved, err := prefs.Load(h.prefsPath)
	if err != nil {
		t.Fatalf("load prefs: %v", err)
	}
	if saved.LastUsername != fakestore.DemoUsername {
		t.Fatalf("expected last username saved, got %q", saved.LastUsername)
	}
}

func TestLogoutReturnsToLogin(t *testing.T) {
	h := newHarness(t, true)
	h.store.Dispatch(state.AddToCartSuccess{Product: fakestore.Fixtures()[0]})
	m := h.model(t)

	m, cmd := sendCmd(t, m, runes("L"))
	m = send(t, m, firstOf[logoutDoneMsg](t, cmd))
	if m.currentView != ViewLogin {
		t.Fatalf("expected login view, got %v", m.currentView)
	}
	if h.session.Authenticated() {
		t.Fatalf("expected token cleared")
	}
	if m.snapshot.Cart.Len() != 1 {
		t.Fatalf("expected cart kept across logout")
	}
}

func TestRenderBoxFillsWidth(t *testing.T) {
	m := New(Options{})
	box := m.renderBox("Title", "one\ntwo", 30, 6, true)
	lines := strings.Split(box, "\n")
	if len(lines) != 6 {
		t.Fatalf("expected 6 lines, got %d", len(lines))
	}
	for i, line := range lines {
		if w := lipgloss.Width(line); w != 30 {
			t.Fatalf("line %d width %d, want 30: %q", i, w, line)
		}
	}
	if !strings.Contains(lines[0], "Title") {
		t.Fatalf("expected title on top border: %q", lines[0])
	}
}

func TestActivityViewShowsLogEntries(t *testing.T) {
	h := newHarness(t, true)
	logPath := filepath.Join(t.TempDir(), "shelf.log")
	line := `{"level":"info","ts":"2026-01-02T03:04:05.000Z","logger":"app","msg":"Catalog loaded","count":20}`
	if err := os.WriteFile(logPath, []byte(line+"\n"), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}
	h.opts.Config.LogFile = logPath
	m := h.model(t)

	m, cmd := sendCmd(t, m, runes("4"))
	m = send(t, m, firstOf[activityMsg](t, cmd))
	if len(m.activity.entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(m.activity.entries))
	}
	view := m.View()
	if !strings.Contains(view, "Catalog loaded") {
		t.Fatalf("expected log message in view")
	}
	if !strings.Contains(view, "count=20") {
		t.Fatalf("expected field in view")
	}
}
