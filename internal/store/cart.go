package store

// CartItem is a line in the cart. Title, price, and image are snapshotted at
// add time; there is no live join back to the product.
type CartItem struct {
	ProductID string  `json:"id"`
	Title     string  `json:"title"`
	Price     float64 `json:"price"`
	ImageURL  string  `json:"imageURL"`
	Quantity  int     `json:"quantity"`
}

// CartState is the cart ledger. Totals are maintained incrementally by the
// reducers; TotalAmount must equal the sum of price*quantity over the items
// and TotalItems the sum of quantities after every transition.
type CartState struct {
	Items       []CartItem `json:"items"`
	TotalAmount float64    `json:"totalAmount"`
	TotalItems  int        `json:"totalItems"`
}

// AddToCart adds one unit of a product. Quantity on the item is ignored; an
// existing line is incremented by one, otherwise a new line starts at one.
type AddToCart struct {
	Item CartItem
}

// RemoveFromCart deletes a line entirely, whatever its quantity
type RemoveFromCart struct {
	ProductID string
}

// UpdateQuantity sets a line's quantity. Values below one are rejected at the
// dispatch boundary, not here; the reducer applies whatever it is given.
type UpdateQuantity struct {
	ProductID string
	Quantity  int
}

// ClearCart empties the cart
type ClearCart struct{}

func (AddToCart) action()      {}
func (RemoveFromCart) action() {}
func (UpdateQuantity) action() {}
func (ClearCart) action()      {}

func initialCartState() CartState {
	return CartState{Items: []CartItem{}}
}

func reduceCart(state CartState, a Action) CartState {
	switch a := a.(type) {
	case AddToCart:
		items := append([]CartItem(nil), state.Items...)
		found := false
		for i := range items {
			if items[i].ProductID == a.Item.ProductID {
				items[i].Quantity++
				found = true
				break
			}
		}
		if !found {
			item := a.Item
			item.Quantity = 1
			items = append(items, item)
		}
		state.Items = items
		// Always one unit's price, whether the line existed or not
		state.TotalAmount += a.Item.Price
		state.TotalItems++

	case RemoveFromCart:
		for i, item := range state.Items {
			if item.ProductID == a.ProductID {
				state.TotalAmount -= item.Price * float64(item.Quantity)
				state.TotalItems -= item.Quantity

				items := append([]CartItem(nil), state.Items[:i]...)
				state.Items = append(items, state.Items[i+1:]...)
				break
			}
		}

	case UpdateQuantity:
		items := append([]CartItem(nil), state.Items...)
		for i := range items {
			if items[i].ProductID == a.ProductID {
				diff := a.Quantity - items[i].Quantity
				items[i].Quantity = a.Quantity
				state.TotalAmount += items[i].Price * float64(diff)
				state.TotalItems += diff
				break
			}
		}
		state.Items = items

	case ClearCart:
		state = initialCartState()
	}
	return state
}
