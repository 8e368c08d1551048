package repositories

import (
	"context"

	domain "github.com/vaporhouse/api/internal/domain"
)

// RepositoryError wraps external collaborator failures with categorisation used by services.
type RepositoryError interface {
	error
	IsNotFound() bool
	IsConflict() bool
	IsUnavailable() bool
}

// ProductFilter narrows catalog listings. Empty fields impose no constraint.
type ProductFilter struct {
	Category string
	Branch   string
	Search   string
}

// ProductRepository reads the external product catalog. The core never writes
// through this interface.
type ProductRepository interface {
	GetProduct(ctx context.Context, productID string) (domain.Product, error)
	ListProducts(ctx context.Context, filter ProductFilter) ([]domain.Product, error)
}

// OrderGateway submits assembled orders to the external order API.
type OrderGateway interface {
	SubmitOrder(ctx context.Context, order domain.Order) (domain.OrderReceipt, error)
}
