package cart_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/cucumber/godog"
	"github.com/shopspring/decimal"

	"github.com/five82/shelf/internal/cart"
	"github.com/five82/shelf/internal/product"
)

type cartTestContext struct {
	cart cart.Cart
	err  error
}

func (c *cartTestContext) reset() {
	c.cart = cart.Cart{}
	c.err = nil
}

func (c *cartTestContext) anEmptyCart() error {
	c.reset()
	return nil
}

func (c *cartTestContext) iAddProductPricedTimes(id int, price string, times int) error {
	p := product.Product{ID: id, Title: fmt.Sprintf("Product %d", id), Price: decimal.RequireFromString(price)}
	for i := 0; i < times; i++ {
		c.cart = c.cart.StartMutation().Add(p)
	}
	return nil
}

func (c *cartTestContext) iRemoveProduct(id int) error {
	c.cart = c.cart.StartRemoval().Remove(product.Product{ID: id})
	return nil
}

func (c *cartTestContext) iSetTheQuantityOfProductTo(id, qty int) error {
	if err := cart.ValidateQuantity(id, qty); err != nil {
		c.err = err
		return nil
	}
	c.cart = c.cart.SetQuantity(id, qty)
	return nil
}

func (c *cartTestContext) aCartMutationStarts() error {
	c.cart = c.cart.StartMutation()
	return nil
}

func (c *cartTestContext) iClearTheCart() error {
	c.cart = c.cart.Clear()
	return nil
}

func (c *cartTestContext) theCartHasLines(n int) error {
	if got := c.cart.Len(); got != n {
		return fmt.Errorf("cart has %d lines, want %d", got, n)
	}
	return nil
}

func (c *cartTestContext) productHasQuantity(id, qty int) error {
	line, ok := c.cart.Line(id)
	if !ok {
		return fmt.Errorf("no line for product %d", id)
	}
	if line.Quantity != qty {
		return fmt.Errorf("product %d quantity = %d, want %d", id, line.Quantity, qty)
	}
	return nil
}

func (c *cartTestContext) theCartTotalIs(want string) error {
	if got := c.cart.Total().StringFixed(2); got != want {
		return fmt.Errorf("total = %s, want %s", got, want)
	}
	return nil
}

func (c *cartTestContext) theQuantityChangeIsRejected() error {
	if c.err == nil {
		return fmt.Errorf("expected the quantity change to be rejected")
	}
	return nil
}

func (c *cartTestContext) theCartIsBusy() error {
	if !c.cart.Busy {
		return fmt.Errorf("cart is not busy")
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &cartTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	// Given steps
	ctx.Step(`^an empty cart$`, tc.anEmptyCart)

	// When steps
	ctx.Step(`^I add product (\d+) priced ([\d.]+) (\d+) times$`, tc.iAddProductPricedTimes)
	ctx.Step(`^I remove product (\d+)$`, tc.iRemoveProduct)
	ctx.Step(`^I set the quantity of product (\d+) to (-?\d+)$`, tc.iSetTheQuantityOfProductTo)
	ctx.Step(`^a cart mutation starts$`, tc.aCartMutationStarts)
	ctx.Step(`^I clear the cart$`, tc.iClearTheCart)

	// Then steps
	ctx.Step(`^the cart has (\d+) lines?$`, tc.theCartHasLines)
	ctx.Step(`^product (\d+) has quantity (\d+)$`, tc.productHasQuantity)
	ctx.Step(`^the cart total is "([^"]*)"$`, tc.theCartTotalIs)
	ctx.Step(`^the quantity change is rejected$`, tc.theQuantityChangeIsRejected)
	ctx.Step(`^the cart is busy$`, tc.theCartIsBusy)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features/cart.feature"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
