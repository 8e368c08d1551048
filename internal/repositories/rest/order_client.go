package rest

import (
	"context"
	"net/http"

	domain "github.com/vaporhouse/api/internal/domain"
	"github.com/vaporhouse/api/internal/repositories"
)

// OrderClient implements repositories.OrderGateway against the order API.
type OrderClient struct {
	client *client
}

// NewOrderClient constructs an order submission client for the configured base URL.
func NewOrderClient(cfg ClientConfig) (*OrderClient, error) {
	c, err := newClient(cfg)
	if err != nil {
		return nil, err
	}
	return &OrderClient{client: c}, nil
}

var _ repositories.OrderGateway = (*OrderClient)(nil)

// SubmitOrder posts the assembled order and returns the server receipt.
// Non-success responses surface as classified repository errors; the caller
// decides whether the cart survives.
func (c *OrderClient) SubmitOrder(ctx context.Context, order domain.Order) (domain.OrderReceipt, error) {
	var receipt domain.OrderReceipt
	if err := c.client.do(ctx, http.MethodPost, "/orders", order, &receipt); err != nil {
		return domain.OrderReceipt{}, err
	}
	return receipt, nil
}
