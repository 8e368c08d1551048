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

// FavoritesHandlers exposes the saved-product endpoints.
type FavoritesHandlers struct {
	favorites services.FavoritesStore
	products  repositories.ProductRepository
}

// NewFavoritesHandlers constructs the favorites handlers.
func NewFavoritesHandlers(favorites services.FavoritesStore, products repositories.ProductRepository) *FavoritesHandlers {
	return &FavoritesHandlers{
		favorites: favorites,
		products:  products,
	}
}

// Routes wires the /favorites endpoints onto the provided router.
func (h *FavoritesHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/", h.listFavorites)
	r.Post("/toggle", h.toggleFavorite)
}

func (h *FavoritesHandlers) listFavorites(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.favorites == nil {
		httpx.WriteError(ctx, w, httpx.NewError("favorites_unavailable", "favorites service is unavailable", http.StatusServiceUnavailable))
		return
	}

	entries := h.favorites.List()
	if entries == nil {
		entries = []domain.FavoriteEntry{}
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"favorites": entries})
}

type toggleFavoriteRequest struct {
	ProductID string `json:"productId"`
}

func (h *FavoritesHandlers) toggleFavorite(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.favorites == nil || h.products == nil {
		httpx.WriteError(ctx, w, httpx.NewError("favorites_unavailable", "favorites service is unavailable", http.StatusServiceUnavailable))
		return
	}

	var req toggleFavoriteRequest
	if !decodeJSONBody(ctx, w, r, &req) {
		return
	}
	productID := strings.TrimSpace(req.ProductID)
	if productID == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_product_id", "productId is required", http.StatusBadRequest))
		return
	}

	// Removal must work even when the catalog no longer knows the product, so
	// an already-saved id skips the catalog fetch.
	if h.favorites.IsFavorite(productID) {
		h.favorites.Toggle(ctx, domain.ProductSnapshot{ID: productID})
		writeJSONResponse(w, http.StatusOK, map[string]any{"productId": productID, "favorite": false})
		return
	}

	product, err := h.products.GetProduct(ctx, productID)
	if err != nil {
		h.writeFavoritesError(ctx, w, err)
		return
	}

	favorite := h.favorites.Toggle(ctx, product.Snapshot())
	writeJSONResponse(w, http.StatusOK, map[string]any{"productId": productID, "favorite": favorite})
}

func (h *FavoritesHandlers) writeFavoritesError(ctx context.Context, w http.ResponseWriter, err error) {
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
	httpx.WriteError(ctx, w, httpx.NewError("favorites_error", err.Error(), http.StatusInternalServerError))
}
