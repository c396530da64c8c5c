package domain

import (
	"time"
)

// OrderStatus is the fulfilment state of an order
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCompleted OrderStatus = "completed"
)

// OrderItem is a purchased line on an order
type OrderItem struct {
	ProductID string  `json:"productId"`
	Title     string  `json:"title"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

// Order represents a placed order. Orders are created outside this service;
// the application only lists them.
type Order struct {
	ID          string      `json:"id"`
	UserEmail   string      `json:"userEmail"`
	Items       []OrderItem `json:"items"`
	TotalAmount float64     `json:"totalAmount"`
	Status      OrderStatus `json:"status"`
	CreatedAt   time.Time   `json:"createdAt"`
}
