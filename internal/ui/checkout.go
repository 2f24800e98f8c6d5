package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/shelf/internal/checkout"
)

// Shipping form fields.
const (
	shipFirstName = iota
	shipLastName
	shipEmail
	shipPhone
	shipAddress
	shipCity
	shipState
	shipZip
)

// Payment form fields.
const (
	payCardName = iota
	payCardNumber
	payExpiry
	payCVV
)

// checkoutState is the checkout in progress, if any.
type checkoutState struct {
	flow     *checkout.Flow
	shipping form
	payment  form
	order    *checkout.Order
}

func newShippingForm() form {
	return newForm("Shipping",
		fieldSpec{label: "First name"},
		fieldSpec{label: "Last name"},
		fieldSpec{label: "Email", placeholder: "you@example.com"},
		fieldSpec{label: "Phone", placeholder: "optional"},
		fieldSpec{label: "Address"},
		fieldSpec{label: "City"},
		fieldSpec{label: "State"},
		fieldSpec{label: "ZIP code", limit: 10},
	)
}

func newPaymentForm() form {
	return newForm("Payment",
		fieldSpec{label: "Name on card"},
		fieldSpec{label: "Card number", placeholder: "16 digits", limit: 16, filter: checkout.Digits},
		fieldSpec{label: "Expiry", placeholder: "MM/YY", limit: 5},
		fieldSpec{label: "CVV", placeholder: "3 digits", limit: 3, secret: true, filter: checkout.Digits},
	)
}

func (f form) shipping() checkout.Shipping {
	return checkout.Shipping{
		FirstName: f.value(shipFirstName),
		LastName:  f.value(shipLastName),
		Email:     f.value(shipEmail),
		Phone:     f.value(shipPhone),
		Address:   f.value(shipAddress),
		City:      f.value(shipCity),
		State:     f.value(shipState),
		ZipCode:   f.value(shipZip),
	}
}

func (f form) payment() checkout.Payment {
	return checkout.Payment{
		CardName:   f.value(payCardName),
		CardNumber: f.value(payCardNumber),
		ExpiryDate: f.value(payExpiry),
		CVV:        f.value(payCVV),
	}
}

// startCheckout opens the checkout over the current cart.
func (m Model) startCheckout() (tea.Model, tea.Cmd) {
	var opts []checkout.Option
	if m.cfg.CheckoutDelay > 0 {
		opts = append(opts, checkout.WithDelay(m.cfg.CheckoutDelay))
	}
	flow, err := checkout.New(m.store, opts...)
	if err != nil {
		cmd := m.setFlash(errorText(err), flashError)
		return m, cmd
	}
	m.checkout = checkoutState{
		flow:     flow,
		shipping: newShippingForm(),
		payment:  newPaymentForm(),
	}
	m.currentView = ViewCheckout
	return m, nil
}

// activeForm is the form of the current checkout step.
func (m *Model) activeForm() *form {
	if m.checkout.flow.Step() == checkout.StepPayment {
		return &m.checkout.payment
	}
	return &m.checkout.shipping
}

// handleCheckoutKey processes keyboard input for the checkout.
func (m Model) handleCheckoutKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	flow := m.checkout.flow
	if flow == nil {
		return m.switchView(ViewCart)
	}

	if m.checkout.order != nil {
		if key.Matches(msg, m.keys.Confirm) || key.Matches(msg, m.keys.Escape) {
			m.checkout = checkoutState{}
			return m.switchView(ViewProducts)
		}
		return m, nil
	}
	if flow.Placing() {
		return m, nil
	}

	f := m.activeForm()
	switch {
	case key.Matches(msg, m.keys.Escape):
		if flow.Step() == checkout.StepPayment {
			flow.Back()
			m.checkout.payment.err = ""
			return m, nil
		}
		m.checkout = checkoutState{}
		return m.switchView(ViewCart)

	case key.Matches(msg, m.keys.Tab), msg.String() == "down":
		f.next()
		return m, nil

	case key.Matches(msg, m.keys.ShiftTab), msg.String() == "up":
		f.prev()
		return m, nil

	case key.Matches(msg, m.keys.Confirm):
		if !f.last() {
			f.next()
			return m, nil
		}
		return m.submitCheckoutStep()
	}

	cmd := f.update(msg)

	return m, cmd
}

func (m Model) submitCheckoutStep() (tea.Model, tea.Cmd) {
	flow := m.checkout.flow

	if flow.Step() == checkout.StepShipping {
		if err := flow.SubmitShipping(m.checkout.shipping.shipping()); err != nil {
			m.checkout.shipping.err = errorText(err)
			return m, nil
		}
		m.checkout.shipping.err = ""
		m.checkout.payment.setFocus(payCardName)
		return m, nil
	}

	p := m.checkout.payment.payment()
	if err := p.Validate(); err != nil {
		m.checkout.payment.err = errorText(err)
		return m, nil
	}
	m.checkout.payment.err = ""
	m.checkout.payment.pending = true

	ctx := m.ctx
	return m, func() tea.Msg {
		order, err := flow.SubmitPayment(ctx, p)
		return orderPlacedMsg{order: order, err: err}
	}
}

func (m Model) handleOrderPlaced(msg orderPlacedMsg) (tea.Model, tea.Cmd) {
	m.checkout.payment.pending = false
	m.syncSnapshot()
	if msg.err != nil {
		m.checkout.payment.err = errorText(msg.err)
		return m, nil
	}
	order := msg.order
	m.checkout.order = &order
	cmd := m.setFlash("Order placed: "+order.ID, flashSuccess)
	return m, cmd
}

func (m Model) renderCheckout() string {
	styles := m.theme.Styles()
	height := m.contentHeight()
	if m.checkout.flow == nil {
		return ""
	}

	step := m.checkout.flow.Step()
	if m.checkout.order != nil {
		step = checkout.StepConfirmation
	}

	var steps []string
	for i, s := range checkout.Steps {
		label := fmt.Sprintf("%d %s", i+1, s)
		switch {
		case s == step:
			steps = append(steps, styles.AccentText.Bold(true).Render(label))
		case s < step:
			steps = append(steps, styles.SuccessText.Render(label))
		default:
			steps = append(steps, styles.FaintText.Render(label))
		}
	}
	progress := lipgloss.PlaceHorizontal(m.width, lipgloss.Center,
		strings.Join(steps, styles.FaintText.Render("  ─  ")))

	c := m.snapshot.Cart
	summary := lipgloss.PlaceHorizontal(m.width, lipgloss.Center,
		styles.MutedText.Render(fmt.Sprintf("%d items  ", c.Count()))+
			styles.Price.Render("Total $"+c.Total().StringFixed(2)))

	var body string
	switch {
	case m.checkout.order != nil:
		body = m.renderConfirmation(*m.checkout.order, height-2)
		summary = ""
	case step == checkout.StepPayment:
		body = m.renderForm(m.checkout.payment, "Enter: Next/Place order  •  Tab: Next field  •  Esc: Back", m.width, height-2)
	default:
		body = m.renderForm(m.checkout.shipping, "Enter: Next/Continue  •  Tab: Next field  •  Esc: Cart", m.width, height-2)
	}
	return progress + "\n" + summary + "\n" + body
}

func (m Model) renderConfirmation(order checkout.Order, height int) string {
	styles := m.theme.Styles()

	var b strings.Builder
	b.WriteString(styles.SuccessText.Render("Order placed!"))
	b.WriteString("\n\n")
	b.WriteString(styles.MutedText.Render("Order ID: "))
	b.WriteString(styles.Text.Bold(true).Render(order.ID))
	b.WriteString("\n")
	b.WriteString(styles.MutedText.Render("Total:    "))
	b.WriteString(styles.Price.Render("$" + order.Total.StringFixed(2)))
	b.WriteString("\n")
	s := order.Shipping
	b.WriteString(styles.MutedText.Render("Ship to:  "))
	b.WriteString(styles.Text.Render(fmt.Sprintf("%s %s, %s, %s %s %s", s.FirstName, s.LastName, s.Address, s.City, s.State, s.ZipCode)))
	b.WriteString("\n\n")
	for _, line := range order.Lines {
		b.WriteString(styles.Text.Render(fmt.Sprintf("%d × %s", line.Quantity, truncate(line.Product.Title, 50))))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render("Press enter to continue shopping."))

	modal := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.Success)).
		Padding(1, 2)

	return lipgloss.Place(m.width, height, lipgloss.Center, lipgloss.Center, modal.Render(b.String()))
}

type orderPlacedMsg struct {
	order checkout.Order
	err   error
}
