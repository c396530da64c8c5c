package domain

import (
	"time"
)

// Category is one of the fixed product categories
type Category string

const (
	CategoryElectronics Category = "electronics"
	CategoryClothing    Category = "clothing"
	CategoryHome        Category = "home"
	CategoryBooks       Category = "books"
)

// CategoryAll is the filter value matching every category. It is never stored
// on a product.
const CategoryAll = "All"

// Categories lists all recognized product categories
var Categories = []Category{
	CategoryElectronics,
	CategoryClothing,
	CategoryHome,
	CategoryBooks,
}

// ValidCategory reports whether s is a recognized category value
func ValidCategory(s string) bool {
	for _, c := range Categories {
		if string(c) == s {
			return true
		}
	}
	return false
}

// Product represents a product in the catalog
type Product struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Price       float64   `json:"price"`
	Category    Category  `json:"category"`
	Description string    `json:"description"`
	ImageURL    string    `json:"imageURL"`
	Featured    bool      `json:"featured"`
	OwnerID     string    `json:"userId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt,omitempty"`
}
