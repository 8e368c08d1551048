package rest

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	domain "github.com/vaporhouse/api/internal/domain"
	"github.com/vaporhouse/api/internal/repositories"
)

// ProductClient implements repositories.ProductRepository against the catalog API.
type ProductClient struct {
	client *client
}

// NewProductClient constructs a catalog client for the configured base URL.
func NewProductClient(cfg ClientConfig) (*ProductClient, error) {
	c, err := newClient(cfg)
	if err != nil {
		return nil, err
	}
	return &ProductClient{client: c}, nil
}

var _ repositories.ProductRepository = (*ProductClient)(nil)

// GetProduct fetches a single product by id.
func (c *ProductClient) GetProduct(ctx context.Context, productID string) (domain.Product, error) {
	id := strings.TrimSpace(productID)
	if id == "" {
		return domain.Product{}, errors.New("rest: product id is required")
	}

	var payload struct {
		Product domain.Product `json:"product"`
	}
	if err := c.client.do(ctx, http.MethodGet, "/products/"+url.PathEscape(id), nil, &payload); err != nil {
		return domain.Product{}, err
	}
	return payload.Product, nil
}

// ListProducts fetches the catalog, optionally filtered by category, branch, or
// free-text search.
func (c *ProductClient) ListProducts(ctx context.Context, filter repositories.ProductFilter) ([]domain.Product, error) {
	query := url.Values{}
	if category := strings.TrimSpace(filter.Category); category != "" {
		query.Set("category", category)
	}
	if branch := strings.ToLower(strings.TrimSpace(filter.Branch)); branch != "" {
		query.Set("branch", branch)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		query.Set("search", search)
	}

	path := "/products"
	if encoded := query.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var payload struct {
		Products []domain.Product `json:"products"`
	}
	if err := c.client.do(ctx, http.MethodGet, path, nil, &payload); err != nil {
		return nil, err
	}
	if payload.Products == nil {
		return []domain.Product{}, nil
	}
	return payload.Products, nil
}
