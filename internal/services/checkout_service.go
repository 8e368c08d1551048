package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vaporhouse/api/internal/platform/auth"
	"github.com/vaporhouse/api/internal/repositories"
)

var (
	errCheckoutCartRequired      = errors.New("checkout: cart store is required")
	errCheckoutAssemblerRequired = errors.New("checkout: assembler is required")
	errCheckoutGatewayRequired   = errors.New("checkout: order gateway is required")

	// ErrCheckoutUnavailable indicates the order API could not be reached; the
	// cart is preserved so the shopper can retry.
	ErrCheckoutUnavailable = errors.New("checkout: order service unavailable")
	// ErrCheckoutRejected indicates the order API refused the order.
	ErrCheckoutRejected = errors.New("checkout: order rejected")
)

// CheckoutServiceDeps wires the cart, assembler, and the external order gateway.
type CheckoutServiceDeps struct {
	Cart      CartStore
	Assembler OrderAssembler
	Gateway   repositories.OrderGateway
	Logger    func(context.Context, string, map[string]any)
}

type checkoutService struct {
	cart      CartStore
	assembler OrderAssembler
	gateway   repositories.OrderGateway
	logger    func(context.Context, string, map[string]any)
}

// NewCheckoutService constructs the checkout orchestrator.
func NewCheckoutService(deps CheckoutServiceDeps) (CheckoutService, error) {
	if deps.Cart == nil {
		return nil, errCheckoutCartRequired
	}
	if deps.Assembler == nil {
		return nil, errCheckoutAssemblerRequired
	}
	if deps.Gateway == nil {
		return nil, errCheckoutGatewayRequired
	}

	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	return &checkoutService{
		cart:      deps.Cart,
		assembler: deps.Assembler,
		gateway:   deps.Gateway,
		logger:    logger,
	}, nil
}

// SubmitOrder snapshots the cart, assembles the order, submits it to the
// order API, and clears the cart only after the API accepts. Any failure
// leaves the cart intact. An authenticated identity's email overrides the
// form email so orders stay attributed to the signed-in account.
func (s *checkoutService) SubmitOrder(ctx context.Context, cmd SubmitOrderCommand) (OrderReceipt, error) {
	lines := s.cart.Lines()

	customer := cmd.CustomerInfo
	if identity, ok := auth.IdentityFromContext(ctx); ok {
		if email := strings.TrimSpace(identity.Email); email != "" {
			customer.Email = email
		}
	}

	order, err := s.assembler.Assemble(AssembleOrderCommand{
		Lines:        lines,
		CustomerInfo: customer,
		PaymentInfo:  cmd.PaymentInfo,
		OrderNotes:   cmd.OrderNotes,
	})
	if err != nil {
		return OrderReceipt{}, err
	}

	receipt, err := s.gateway.SubmitOrder(ctx, order)
	if err != nil {
		s.logger(ctx, "checkout.submit_failed", map[string]any{
			"error":  err.Error(),
			"branch": order.Branch,
			"items":  len(order.Items),
		})
		if isRepoUnavailable(err) {
			return OrderReceipt{}, fmt.Errorf("%w: %v", ErrCheckoutUnavailable, err)
		}
		return OrderReceipt{}, fmt.Errorf("%w: %v", ErrCheckoutRejected, err)
	}

	s.cart.Clear(ctx)
	s.logger(ctx, "checkout.submitted", map[string]any{
		"order_id": receipt.OrderID,
		"branch":   order.Branch,
		"total":    receipt.Totals.Total,
	})
	return receipt, nil
}
