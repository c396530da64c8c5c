// Package orders provides read-only order listings. Orders are created by an
// external checkout flow; this service never writes them.
package orders

import (
	"context"
	"fmt"

	"buyzo/internal/docstore"
	"buyzo/internal/domain"

	"go.uber.org/zap"
)

const ordersCollection = "orders"

// Service lists orders from the document store
type Service struct {
	docs   docstore.Store
	logger *zap.Logger
}

// NewService creates a new orders Service
func NewService(docs docstore.Store, logger *zap.Logger) *Service {
	return &Service{docs: docs, logger: logger}
}

// List returns every order, newest first
func (s *Service) List(ctx context.Context) ([]domain.Order, error) {
	return s.query(ctx, nil)
}

// ListByEmail returns one customer's orders, newest first
func (s *Service) ListByEmail(ctx context.Context, email string) ([]domain.Order, error) {
	return s.query(ctx, []docstore.Filter{{Field: "userEmail", Value: email}})
}

func (s *Service) query(ctx context.Context, where []docstore.Filter) ([]domain.Order, error) {
	docs, err := s.docs.QueryCollection(ctx, ordersCollection, docstore.Query{
		Where:   where,
		OrderBy: &docstore.OrderBy{Field: "createdAt", Desc: true},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}

	orders := []domain.Order{}
	for _, doc := range docs {
		order := domain.Order{}
		if err := docstore.Decode(doc.Data, &order); err != nil {
			return nil, err
		}
		order.ID = doc.ID
		orders = append(orders, order)
	}

	return orders, nil
}
