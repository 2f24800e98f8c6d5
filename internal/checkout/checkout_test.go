package checkout

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/shelf/internal/product"
	"github.com/five82/shelf/internal/state"
)

var (
	validShipping = Shipping{
		FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com",
		Address: "12 St James's Square", City: "London", State: "LDN", ZipCode: "SW1Y",
	}
	validPayment = Payment{CardName: "Ada Lovelace", CardNumber: "4111111111111111", ExpiryDate: "12/30", CVV: "123"}
)

func storeWithCart(t *testing.T) *state.Store {
	t.Helper()
	s := state.New(state.Default())
	s.Dispatch(state.AddToCartSuccess{Product: product.Product{ID: 1, Title: "Red Shirt", Price: decimal.NewFromInt(10)}})
	s.Dispatch(state.AddToCartSuccess{Product: product.Product{ID: 1, Title: "Red Shirt", Price: decimal.NewFromInt(10)}})
	s.Dispatch(state.AddToCartSuccess{Product: product.Product{ID: 2, Title: "Blue Ring", Price: decimal.NewFromInt(5)}})
	return s
}

func TestNew_EmptyCart(t *testing.T) {
	_, err := New(state.New(state.Default()))
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestFlow_PlacesOrderAndClearsCart(t *testing.T) {
	store := storeWithCart(t)
	f, err := New(store, WithDelay(time.Millisecond))
	require.NoError(t, err)
	assert.Equal(t, StepShipping, f.Step())

	require.NoError(t, f.SubmitShipping(validShipping))
	assert.Equal(t, StepPayment, f.Step())

	order, err := f.SubmitPayment(context.Background(), validPayment)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(order.ID, "ORD-"))
	assert.Equal(t, "25.00", order.Total.StringFixed(2))
	assert.Len(t, order.Lines, 2)
	assert.Equal(t, StepConfirmation, f.Step())
	assert.Equal(t, 0, store.Snapshot().Cart.Len())

	got, ok := f.Order()
	require.True(t, ok)
	assert.Equal(t, order.ID, got.ID)
}

func TestFlow_OrderIDsAreUnique(t *testing.T) {
	var ids []string
	for i := 0; i < 2; i++ {
		f, err := New(storeWithCart(t), WithDelay(0))
		require.NoError(t, err)
		require.NoError(t, f.SubmitShipping(validShipping))
		order, err := f.SubmitPayment(context.Background(), validPayment)
		require.NoError(t, err)
		ids = append(ids, order.ID)
	}
	assert.NotEqual(t, ids[0], ids[1])
}

func TestShipping_Validate(t *testing.T) {
	s := validShipping
	s.Phone = ""
	assert.NoError(t, s.Validate(), "phone is optional")

	s.City = " "
	var verr *ValidationError
	require.True(t, errors.As(s.Validate(), &verr))
	assert.Equal(t, "Please fill all shipping fields", verr.Message)
}

func TestPayment_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Payment)
		wantMsg string
	}{
		{"valid", func(*Payment) {}, ""},
		{"missing name", func(p *Payment) { p.CardName = "" }, "Please fill all payment fields"},
		{"missing expiry", func(p *Payment) { p.ExpiryDate = "" }, "Please fill all payment fields"},
		{"short card", func(p *Payment) { p.CardNumber = "411111111111111" }, "Card number must be 16 digits"},
		{"long card", func(p *Payment) { p.CardNumber = "41111111111111112" }, "Card number must be 16 digits"},
		{"letters in card", func(p *Payment) { p.CardNumber = "4111x11111111111" }, "Card number must be 16 digits"},
		{"short cvv", func(p *Payment) { p.CVV = "12" }, "CVV must be 3 digits"},
		{"long cvv", func(p *Payment) { p.CVV = "1234" }, "CVV must be 3 digits"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validPayment
			tt.mutate(&p)
			err := p.Validate()
			if tt.wantMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantMsg, err.Error())
		})
	}
}

func TestFlow_OutOfOrderAndBack(t *testing.T) {
	f, err := New(storeWithCart(t), WithDelay(0))
	require.NoError(t, err)

	_, err = f.SubmitPayment(context.Background(), validPayment)
	assert.ErrorIs(t, err, ErrWrongStep)

	require.NoError(t, f.SubmitShipping(validShipping))
	f.Back()
	assert.Equal(t, StepShipping, f.Step())
}

func TestFlow_CancelKeepsCart(t *testing.T) {
	store := storeWithCart(t)
	f, err := New(store, WithDelay(time.Hour))
	require.NoError(t, err)
	require.NoError(t, f.SubmitShipping(validShipping))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = f.SubmitPayment(ctx, validPayment)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StepPayment, f.Step())
	assert.False(t, f.Placing())
	assert.Equal(t, 2, store.Snapshot().Cart.Len())
}

func TestFlow_CartEmptiedWhilePlacing(t *testing.T) {
	store := storeWithCart(t)
	f, err := New(store, WithDelay(20*time.Millisecond))
	require.NoError(t, err)
	require.NoError(t, f.SubmitShipping(validShipping))

	go store.Dispatch(state.ClearCart{})
	_, err = f.SubmitPayment(context.Background(), validPayment)
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestDigits(t *testing.T) {
	assert.Equal(t, "4111111111111111", Digits("4111 1111-1111 1111"))
	assert.Equal(t, "", Digits("abc"))
	assert.Equal(t, "3", Digits("١٢3"), "only ASCII digits are kept")
}
