package store

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// checkCartTotals verifies the incremental totals against a full recompute
// over the line items
func checkCartTotals(t *testing.T, state CartState) bool {
	var amount float64
	var items int
	for _, item := range state.Items {
		amount += item.Price * float64(item.Quantity)
		items += item.Quantity
	}

	if math.Abs(state.TotalAmount-amount) > 1e-6 {
		t.Logf("FAIL: totalAmount drifted: have %v, recomputed %v", state.TotalAmount, amount)
		return false
	}
	if state.TotalItems != items {
		t.Logf("FAIL: totalItems drifted: have %d, recomputed %d", state.TotalItems, items)
		return false
	}
	return true
}

func TestProperty_CartTotalsNeverDrift(t *testing.T) {
	properties := gopter.NewProperties(nil)

	prices := []float64{10.00, 4.50, 99.99, 0.05, 250.00}

	properties.Property("totalAmount and totalItems match the line items after every transition", prop.ForAll(
		func(ops []int) bool {
			s := New()

			for _, op := range ops {
				// Decode each op into (kind, product, quantity).
				// Quantities below one never reach the reducer; the
				// dispatch boundary rejects them.
				kind := op % 4
				product := (op / 4) % 5
				quantity := 1 + (op/20)%20
				productID := string(rune('a' + product))

				switch kind {
				case 0:
					s.Dispatch(AddToCart{Item: CartItem{
						ProductID: productID,
						Title:     "product " + productID,
						Price:     prices[product],
					}})
				case 1:
					s.Dispatch(RemoveFromCart{ProductID: productID})
				case 2:
					s.Dispatch(UpdateQuantity{ProductID: productID, Quantity: quantity})
				case 3:
					s.Dispatch(ClearCart{})
				}

				if !checkCartTotals(t, s.State().Cart) {
					return false
				}
			}

			return true
		},
		gen.SliceOf(gen.IntRange(0, 399)),
	))

	properties.TestingRun(t)
}

func TestCart_AddSameProductTwice(t *testing.T) {
	s := New()
	item := CartItem{ProductID: "a", Title: "Product A", Price: 10.00}

	s.Dispatch(AddToCart{Item: item})
	s.Dispatch(AddToCart{Item: item})

	cart := s.State().Cart
	if len(cart.Items) != 1 {
		t.Fatalf("expected one line item, got %d", len(cart.Items))
	}
	if cart.Items[0].Quantity != 2 {
		t.Errorf("expected quantity 2, got %d", cart.Items[0].Quantity)
	}
	if cart.TotalAmount != 20.00 {
		t.Errorf("expected totalAmount 20.00, got %v", cart.TotalAmount)
	}
	if cart.TotalItems != 2 {
		t.Errorf("expected totalItems 2, got %d", cart.TotalItems)
	}

	s.Dispatch(RemoveFromCart{ProductID: "a"})

	cart = s.State().Cart
	if len(cart.Items) != 0 {
		t.Errorf("expected empty cart, got %d items", len(cart.Items))
	}
	if cart.TotalAmount != 0 {
		t.Errorf("expected totalAmount 0, got %v", cart.TotalAmount)
	}
	if cart.TotalItems != 0 {
		t.Errorf("expected totalItems 0, got %d", cart.TotalItems)
	}
}

func TestCart_AddToCartAlwaysAddsOneUnitPrice(t *testing.T) {
	s := New()
	item := CartItem{ProductID: "a", Price: 7.50}

	// Three adds on the same line: the increment is one unit's price each
	// time, never price times existing quantity
	for i := 1; i <= 3; i++ {
		s.Dispatch(AddToCart{Item: item})

		cart := s.State().Cart
		want := 7.50 * float64(i)
		if cart.TotalAmount != want {
			t.Fatalf("after %d adds: expected totalAmount %v, got %v", i, want, cart.TotalAmount)
		}
	}
}

func TestCart_RemoveUnknownProductIsNoop(t *testing.T) {
	s := New()
	s.Dispatch(AddToCart{Item: CartItem{ProductID: "a", Price: 5}})

	before := s.State().Cart
	s.Dispatch(RemoveFromCart{ProductID: "missing"})
	after := s.State().Cart

	if before.TotalAmount != after.TotalAmount || before.TotalItems != after.TotalItems ||
		len(before.Items) != len(after.Items) {
		t.Error("removing an unknown product changed the cart")
	}
}

func TestCart_UpdateQuantityAppliesDelta(t *testing.T) {
	s := New()
	s.Dispatch(AddToCart{Item: CartItem{ProductID: "a", Price: 3.00}})
	s.Dispatch(UpdateQuantity{ProductID: "a", Quantity: 5})

	cart := s.State().Cart
	if cart.Items[0].Quantity != 5 {
		t.Errorf("expected quantity 5, got %d", cart.Items[0].Quantity)
	}
	if cart.TotalAmount != 15.00 {
		t.Errorf("expected totalAmount 15.00, got %v", cart.TotalAmount)
	}
	if cart.TotalItems != 5 {
		t.Errorf("expected totalItems 5, got %d", cart.TotalItems)
	}
}

func TestCart_ClearResetsEverything(t *testing.T) {
	s := New()
	s.Dispatch(AddToCart{Item: CartItem{ProductID: "a", Price: 3.00}})
	s.Dispatch(AddToCart{Item: CartItem{ProductID: "b", Price: 8.00}})
	s.Dispatch(ClearCart{})

	cart := s.State().Cart
	if len(cart.Items) != 0 || cart.TotalAmount != 0 || cart.TotalItems != 0 {
		t.Errorf("expected empty cart after clear, got %+v", cart)
	}
}
