package store

import (
	"buyzo/internal/domain"
)

// ProductState is the product cache. Fetch-all and fetch-by-category both
// write Products; whichever response lands last wins, with no request
// identity to discard stale resolutions.
type ProductState struct {
	Products []domain.Product
	Featured []domain.Product
	Loading  bool
	Err      string
}

// ProductsPending marks a product fetch as in flight
type ProductsPending struct{}

// ProductsFulfilled replaces the product cache with a fetch result
type ProductsFulfilled struct {
	Products []domain.Product
}

// FeaturedFulfilled replaces the featured cache with a fetch result
type FeaturedFulfilled struct {
	Products []domain.Product
}

// ProductsRejected records a failed fetch
type ProductsRejected struct {
	Err string
}

func (ProductsPending) action()   {}
func (ProductsFulfilled) action() {}
func (FeaturedFulfilled) action() {}
func (ProductsRejected) action()  {}

func initialProductState() ProductState {
	return ProductState{
		Products: []domain.Product{},
		Featured: []domain.Product{},
	}
}

func reduceProducts(state ProductState, a Action) ProductState {
	switch a := a.(type) {
	case ProductsPending:
		state.Loading = true
		state.Err = ""
	case ProductsFulfilled:
		state.Products = a.Products
		state.Loading = false
	case FeaturedFulfilled:
		state.Featured = a.Products
		state.Loading = false
	case ProductsRejected:
		state.Loading = false
		state.Err = a.Err
	}
	return state
}
