// Package catalog owns the product cache operations and the admin product
// CRUD. Fetches follow a pending/fulfilled/rejected lifecycle dispatched into
// a caller-supplied store.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"buyzo/internal/docstore"
	"buyzo/internal/domain"
	"buyzo/internal/store"

	"go.uber.org/zap"
)

const productsCollection = "products"

var (
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidPrice    = errors.New("price must be a non-negative number")
	ErrInvalidCategory = errors.New("unrecognized category")
	ErrMissingImageURL = errors.New("image URL is required")
)

// Service provides product reads for the storefront and writes for the
// admin panel
type Service struct {
	docs   docstore.Store
	logger *zap.Logger
}

// NewService creates a new catalog Service
func NewService(docs docstore.Store, logger *zap.Logger) *Service {
	return &Service{docs: docs, logger: logger}
}

// FetchProducts loads the whole catalog, newest first, into st. There is no
// request identity: when several fetches overlap, the last one to resolve
// owns the cache.
func (s *Service) FetchProducts(ctx context.Context, st *store.Store) {
	st.Dispatch(store.ProductsPending{})

	products, err := s.queryProducts(ctx, nil)
	if err != nil {
		s.logger.Error("Failed to fetch products", zap.Error(err))
		st.Dispatch(store.ProductsRejected{Err: err.Error()})
		return
	}

	st.Dispatch(store.ProductsFulfilled{Products: products})
}

// FetchProductsByCategory loads one category into st. It writes the same
// cache as FetchProducts.
func (s *Service) FetchProductsByCategory(ctx context.Context, st *store.Store, category domain.Category) {
	st.Dispatch(store.ProductsPending{})

	products, err := s.queryProducts(ctx, []docstore.Filter{
		{Field: "category", Value: string(category)},
	})
	if err != nil {
		s.logger.Error("Failed to fetch products by category",
			zap.String("category", string(category)),
			zap.Error(err),
		)
		st.Dispatch(store.ProductsRejected{Err: err.Error()})
		return
	}

	st.Dispatch(store.ProductsFulfilled{Products: products})
}

// FetchFeatured loads the featured products into st
func (s *Service) FetchFeatured(ctx context.Context, st *store.Store) {
	st.Dispatch(store.ProductsPending{})

	products, err := s.queryProducts(ctx, []docstore.Filter{
		{Field: "featured", Value: true},
	})
	if err != nil {
		s.logger.Error("Failed to fetch featured products", zap.Error(err))
		st.Dispatch(store.ProductsRejected{Err: err.Error()})
		return
	}

	st.Dispatch(store.FeaturedFulfilled{Products: products})
}

// GetProduct reads a single product
func (s *Service) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	rec, err := s.docs.Get(ctx, productsCollection, id)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	product := &domain.Product{}
	if err := docstore.Decode(rec, product); err != nil {
		return nil, err
	}
	product.ID = id

	return product, nil
}

// AddProduct validates and stores a new product, stamping creation time and
// the owning user
func (s *Service) AddProduct(ctx context.Context, p domain.Product, ownerID string) (string, error) {
	if err := validateProduct(p); err != nil {
		return "", err
	}

	p.OwnerID = ownerID
	p.CreatedAt = time.Now().UTC()

	rec, err := docstore.Encode(p)
	if err != nil {
		return "", err
	}
	delete(rec, "id")

	id, err := s.docs.Add(ctx, productsCollection, rec)
	if err != nil {
		return "", fmt.Errorf("failed to add product: %w", err)
	}

	s.logger.Info("Product added",
		zap.String("product_id", id),
		zap.String("owner_id", ownerID),
	)

	return id, nil
}

// UpdateProduct validates and applies an edit to an existing product
func (s *Service) UpdateProduct(ctx context.Context, id string, p domain.Product) error {
	if err := validateProduct(p); err != nil {
		return err
	}

	partial := docstore.Record{
		"title":       p.Title,
		"price":       p.Price,
		"category":    string(p.Category),
		"description": p.Description,
		"imageURL":    p.ImageURL,
		"featured":    p.Featured,
		"updatedAt":   time.Now().UTC(),
	}

	if err := s.docs.Update(ctx, productsCollection, id, partial); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to update product: %w", err)
	}

	s.logger.Info("Product updated", zap.String("product_id", id))
	return nil
}

// DeleteProduct removes a product
func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	if err := s.docs.Delete(ctx, productsCollection, id); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to delete product: %w", err)
	}

	s.logger.Info("Product deleted", zap.String("product_id", id))
	return nil
}

func (s *Service) queryProducts(ctx context.Context, where []docstore.Filter) ([]domain.Product, error) {
	docs, err := s.docs.QueryCollection(ctx, productsCollection, docstore.Query{
		Where:   where,
		OrderBy: &docstore.OrderBy{Field: "createdAt", Desc: true},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}

	products := []domain.Product{}
	for _, doc := range docs {
		product := domain.Product{}
		if err := docstore.Decode(doc.Data, &product); err != nil {
			return nil, err
		}
		product.ID = doc.ID
		products = append(products, product)
	}

	return products, nil
}

func validateProduct(p domain.Product) error {
	if p.Price < 0 {
		return ErrInvalidPrice
	}
	if !domain.ValidCategory(string(p.Category)) {
		return ErrInvalidCategory
	}
	if p.ImageURL == "" {
		return ErrMissingImageURL
	}
	return nil
}
