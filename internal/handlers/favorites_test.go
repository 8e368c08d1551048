package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	domain "github.com/vaporhouse/api/internal/domain"
	"github.com/vaporhouse/api/internal/platform/kvstore"
	"github.com/vaporhouse/api/internal/services"
)

func newTestFavorites(t *testing.T) services.FavoritesStore {
	t.Helper()
	favs, err := services.NewFavoritesStore(services.FavoritesStoreDeps{
		Storage: kvstore.NewMemoryStore(),
		Clock:   func() time.Time { return time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC) },
	})
	if err != nil {
		t.Fatalf("NewFavoritesStore: %v", err)
	}
	if err := favs.Hydrate(context.Background()); err != nil {
		t.Fatalf("Hydrate: %v", err)
	}
	return favs
}

func newFavoritesRouter(favs services.FavoritesStore, repo *stubProductRepository) chi.Router {
	handler := NewFavoritesHandlers(favs, repo)
	router := chi.NewRouter()
	router.Route("/favorites", handler.Routes)
	return router
}

func TestFavoritesHandlersToggleOnAndOff(t *testing.T) {
	favs := newTestFavorites(t)
	repo := &stubProductRepository{
		getFunc: func(_ context.Context, productID string) (domain.Product, error) {
			if productID != "prod-1" {
				t.Fatalf("unexpected product id %q", productID)
			}
			return catalogProduct(), nil
		},
	}
	router := newFavoritesRouter(favs, repo)

	req := httptest.NewRequest(http.MethodPost, "/favorites/toggle", strings.NewReader(`{"productId":"prod-1"}`))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rr.Code, rr.Body.String())
	}
	var payload struct {
		Favorite bool `json:"favorite"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !payload.Favorite {
		t.Fatal("first toggle should report favorite=true")
	}
	if !favs.IsFavorite("prod-1") {
		t.Fatal("store should contain the product after toggle on")
	}

	// Toggle off must not require a catalog round trip.
	repo.getFunc = func(context.Context, string) (domain.Product, error) {
		t.Fatal("catalog must not be called when removing a favorite")
		return domain.Product{}, nil
	}
	req = httptest.NewRequest(http.MethodPost, "/favorites/toggle", strings.NewReader(`{"productId":"prod-1"}`))
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Favorite {
		t.Fatal("second toggle should report favorite=false")
	}
}

func TestFavoritesHandlersToggleUnknownProduct(t *testing.T) {
	router := newFavoritesRouter(newTestFavorites(t), &stubProductRepository{
		getFunc: func(context.Context, string) (domain.Product, error) {
			return domain.Product{}, &stubRepositoryError{notFound: true}
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/favorites/toggle", strings.NewReader(`{"productId":"ghost"}`))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
}

func TestFavoritesHandlersList(t *testing.T) {
	favs := newTestFavorites(t)
	favs.Toggle(context.Background(), catalogProduct().Snapshot())
	router := newFavoritesRouter(favs, &stubProductRepository{})

	req := httptest.NewRequest(http.MethodGet, "/favorites", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	var payload struct {
		Favorites []domain.FavoriteEntry `json:"favorites"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(payload.Favorites) != 1 || payload.Favorites[0].Product.ID != "prod-1" {
		t.Fatalf("favorites = %+v, want the saved product", payload.Favorites)
	}
}

func TestFavoritesHandlersListEmpty(t *testing.T) {
	router := newFavoritesRouter(newTestFavorites(t), &stubProductRepository{})

	req := httptest.NewRequest(http.MethodGet, "/favorites", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if !strings.Contains(rr.Body.String(), `"favorites":[]`) {
		t.Fatalf("empty favorites should serialise as [], got %s", rr.Body.String())
	}
}
