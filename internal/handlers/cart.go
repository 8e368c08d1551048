package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	domain "github.com/vaporhouse/api/internal/domain"
	"github.com/vaporhouse/api/internal/platform/httpx"
	"github.com/vaporhouse/api/internal/repositories"
	"github.com/vaporhouse/api/internal/services"
)

// CartHandlers exposes the cart endpoints. Product data is always fetched
// from the catalog at add time so cart lines snapshot the current price.
type CartHandlers struct {
	cart     services.CartStore
	products repositories.ProductRepository
}

// NewCartHandlers constructs the cart handlers.
func NewCartHandlers(cart services.CartStore, products repositories.ProductRepository) *CartHandlers {
	return &CartHandlers{
		cart:     cart,
		products: products,
	}
}

// Routes wires the /cart endpoints onto the provided router.
func (h *CartHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/", h.getCart)
	r.Delete("/", h.clearCart)
	r.Post("/items", h.addItem)
	r.Patch("/items/{lineID}", h.updateItem)
	r.Delete("/items/{lineID}", h.removeItem)
}

type cartPayload struct {
	Lines     []domain.CartLine `json:"lines"`
	Subtotal  int64             `json:"subtotal"`
	ItemCount int               `json:"itemCount"`
}

func (h *CartHandlers) buildCartPayload() cartPayload {
	lines := h.cart.Lines()
	if lines == nil {
		lines = []domain.CartLine{}
	}
	return cartPayload{
		Lines:     lines,
		Subtotal:  h.cart.Total(),
		ItemCount: h.cart.ItemCount(),
	}
}

func (h *CartHandlers) getCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.cart == nil {
		httpx.WriteError(ctx, w, httpx.NewError("cart_unavailable", "cart service is unavailable", http.StatusServiceUnavailable))
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"cart": h.buildCartPayload()})
}

type addItemRequest struct {
	ProductID       string                 `json:"productId"`
	Quantity        int                    `json:"quantity"`
	SelectedOptions domain.SelectedOptions `json:"selectedOptions"`
}

func (h *CartHandlers) addItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.cart == nil || h.products == nil {
		httpx.WriteError(ctx, w, httpx.NewError("cart_unavailable", "cart service is unavailable", http.StatusServiceUnavailable))
		return
	}

	var req addItemRequest
	if !decodeJSONBody(ctx, w, r, &req) {
		return
	}
	if strings.TrimSpace(req.ProductID) == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_product_id", "productId is required", http.StatusBadRequest))
		return
	}

	product, err := h.products.GetProduct(ctx, req.ProductID)
	if err != nil {
		h.writeCartError(ctx, w, err)
		return
	}

	line, err := h.cart.AddToCart(ctx, services.AddToCartCommand{
		Product:         product,
		Quantity:        req.Quantity,
		SelectedOptions: req.SelectedOptions,
	})
	if err != nil {
		h.writeCartError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusCreated, map[string]any{
		"line": line,
		"cart": h.buildCartPayload(),
	})
}

type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

func (h *CartHandlers) updateItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.cart == nil {
		httpx.WriteError(ctx, w, httpx.NewError("cart_unavailable", "cart service is unavailable", http.StatusServiceUnavailable))
		return
	}

	lineID := strings.TrimSpace(chi.URLParam(r, "lineID"))
	if lineID == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_line_id", "line id is required", http.StatusBadRequest))
		return
	}

	var req updateItemRequest
	if !decodeJSONBody(ctx, w, r, &req) {
		return
	}

	h.cart.UpdateQuantity(ctx, lineID, req.Quantity)
	writeJSONResponse(w, http.StatusOK, map[string]any{"cart": h.buildCartPayload()})
}

func (h *CartHandlers) removeItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.cart == nil {
		httpx.WriteError(ctx, w, httpx.NewError("cart_unavailable", "cart service is unavailable", http.StatusServiceUnavailable))
		return
	}

	lineID := strings.TrimSpace(chi.URLParam(r, "lineID"))
	if lineID == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_line_id", "line id is required", http.StatusBadRequest))
		return
	}

	h.cart.RemoveFromCart(ctx, lineID)
	writeJSONResponse(w, http.StatusOK, map[string]any{"cart": h.buildCartPayload()})
}

func (h *CartHandlers) clearCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.cart == nil {
		httpx.WriteError(ctx, w, httpx.NewError("cart_unavailable", "cart service is unavailable", http.StatusServiceUnavailable))
		return
	}

	h.cart.Clear(ctx)
	writeJSONResponse(w, http.StatusOK, map[string]any{"cart": h.buildCartPayload()})
}

func (h *CartHandlers) writeCartError(ctx context.Context, w http.ResponseWriter, err error) {
	if errors.Is(err, services.ErrCartInvalidInput) {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_cart_input", err.Error(), http.StatusBadRequest))
		return
	}

	var repoErr repositories.RepositoryError
	if errors.As(err, &repoErr) {
		switch {
		case repoErr.IsNotFound():
			httpx.WriteError(ctx, w, httpx.NewError("product_not_found", "product not found", http.StatusNotFound))
			return
		case repoErr.IsUnavailable():
			httpx.WriteError(ctx, w, httpx.NewError("catalog_unavailable", "catalog service is unavailable", http.StatusServiceUnavailable))
			return
		}
	}

	httpx.WriteError(ctx, w, httpx.NewError("cart_error", err.Error(), http.StatusInternalServerError))
}
