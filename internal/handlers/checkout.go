package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	domain "github.com/vaporhouse/api/internal/domain"
	"github.com/vaporhouse/api/internal/platform/auth"
	"github.com/vaporhouse/api/internal/platform/httpx"
	"github.com/vaporhouse/api/internal/services"
)

// CheckoutHandlers exposes order submission. Authentication is optional:
// guests check out with form contact data, signed-in shoppers get their
// account email attached automatically.
type CheckoutHandlers struct {
	authn    *auth.Authenticator
	checkout services.CheckoutService
}

// NewCheckoutHandlers constructs the checkout handlers.
func NewCheckoutHandlers(authn *auth.Authenticator, checkout services.CheckoutService) *CheckoutHandlers {
	return &CheckoutHandlers{
		authn:    authn,
		checkout: checkout,
	}
}

// Routes wires the /checkout endpoints onto the provided router.
func (h *CheckoutHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	if h.authn != nil {
		r.Use(h.authn.OptionalAuth())
	}
	r.Post("/", h.submitOrder)
}

type submitOrderRequest struct {
	CustomerInfo domain.CustomerInfo `json:"customerInfo"`
	PaymentInfo  domain.PaymentInfo  `json:"paymentInfo"`
	OrderNotes   string              `json:"orderNotes"`
}

func (h *CheckoutHandlers) submitOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.checkout == nil {
		httpx.WriteError(ctx, w, httpx.NewError("checkout_unavailable", "checkout service is unavailable", http.StatusServiceUnavailable))
		return
	}

	var req submitOrderRequest
	if !decodeJSONBody(ctx, w, r, &req) {
		return
	}

	receipt, err := h.checkout.SubmitOrder(ctx, services.SubmitOrderCommand{
		CustomerInfo: req.CustomerInfo,
		PaymentInfo:  req.PaymentInfo,
		OrderNotes:   req.OrderNotes,
	})
	if err != nil {
		h.writeCheckoutError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusCreated, map[string]any{"receipt": receipt})
}

func (h *CheckoutHandlers) writeCheckoutError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrOrderEmptyCart):
		httpx.WriteError(ctx, w, httpx.NewError("cart_empty", "cannot check out an empty cart", http.StatusBadRequest))
	case errors.Is(err, services.ErrOrderInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_order_input", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrCheckoutUnavailable):
		httpx.WriteError(ctx, w, httpx.NewError("order_service_unavailable", "order service is unavailable; cart preserved", http.StatusServiceUnavailable))
	case errors.Is(err, services.ErrCheckoutRejected):
		httpx.WriteError(ctx, w, httpx.NewError("order_rejected", err.Error(), http.StatusBadGateway))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("checkout_error", err.Error(), http.StatusInternalServerError))
	}
}
