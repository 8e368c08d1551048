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

// ProductHandlers serves read-only catalog endpoints backed by the external
// product API, decorated with branch availability and variant option data.
type ProductHandlers struct {
	products repositories.ProductRepository
	resolver services.SpecificationResolver
}

// NewProductHandlers constructs the catalog handlers.
func NewProductHandlers(products repositories.ProductRepository, resolver services.SpecificationResolver) *ProductHandlers {
	return &ProductHandlers{
		products: products,
		resolver: resolver,
	}
}

// Routes wires the /products endpoints onto the provided router.
func (h *ProductHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/", h.listProducts)
	r.Get("/{productID}", h.getProduct)
}

type productPayload struct {
	domain.Product
	AvailableBranches []string `json:"availableBranches"`
}

type dimensionPayload struct {
	Values    []string `json:"values"`
	Collapsed string   `json:"collapsed,omitempty"`
}

type productDetailPayload struct {
	productPayload
	Options map[string]dimensionPayload `json:"options,omitempty"`
}

func (h *ProductHandlers) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.products == nil || h.resolver == nil {
		httpx.WriteError(ctx, w, httpx.NewError("catalog_unavailable", "catalog service is unavailable", http.StatusServiceUnavailable))
		return
	}

	filter := repositories.ProductFilter{
		Category: strings.TrimSpace(r.URL.Query().Get("category")),
		Branch:   strings.TrimSpace(r.URL.Query().Get("branch")),
		Search:   strings.TrimSpace(r.URL.Query().Get("search")),
	}

	products, err := h.products.ListProducts(ctx, filter)
	if err != nil {
		h.writeCatalogError(ctx, w, err)
		return
	}

	payload := make([]productPayload, 0, len(products))
	for _, product := range products {
		payload = append(payload, productPayload{
			Product:           product,
			AvailableBranches: h.resolver.AvailableBranches(product),
		})
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"products": payload})
}

func (h *ProductHandlers) getProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.products == nil || h.resolver == nil {
		httpx.WriteError(ctx, w, httpx.NewError("catalog_unavailable", "catalog service is unavailable", http.StatusServiceUnavailable))
		return
	}

	productID := strings.TrimSpace(chi.URLParam(r, "productID"))
	if productID == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_product_id", "product id is required", http.StatusBadRequest))
		return
	}

	product, err := h.products.GetProduct(ctx, productID)
	if err != nil {
		h.writeCatalogError(ctx, w, err)
		return
	}

	options := make(map[string]dimensionPayload)
	for _, dimension := range domain.Dimensions() {
		values := h.resolver.OptionValues(product, dimension)
		if len(values) == 0 {
			continue
		}
		entry := dimensionPayload{Values: values}
		if collapsed, ok := h.resolver.CollapsedValue(product, dimension); ok {
			entry.Collapsed = collapsed
		}
		options[string(dimension)] = entry
	}
	if len(options) == 0 {
		options = nil
	}

	writeJSONResponse(w, http.StatusOK, map[string]any{"product": productDetailPayload{
		productPayload: productPayload{
			Product:           product,
			AvailableBranches: h.resolver.AvailableBranches(product),
		},
		Options: options,
	}})
}

func (h *ProductHandlers) writeCatalogError(ctx context.Context, w http.ResponseWriter, err error) {
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
	httpx.WriteError(ctx, w, httpx.NewError("catalog_error", err.Error(), http.StatusInternalServerError))
}
