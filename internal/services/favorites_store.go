package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/vaporhouse/api/internal/platform/kvstore"
)

const favoritesStorageKey = "favorites"

var (
	errFavoritesStorageRequired = errors.New("favorites store: storage is required")
	errFavoritesClockRequired   = errors.New("favorites store: clock is required")
)

// FavoritesStoreDeps wires persistence for the saved-product set.
type FavoritesStoreDeps struct {
	Storage kvstore.Store
	Clock   func() time.Time
	Logger  func(context.Context, string, map[string]any)
}

type favoritesStore struct {
	mu      sync.Mutex
	storage kvstore.Store
	now     func() time.Time
	logger  func(context.Context, string, map[string]any)

	entries  []FavoriteEntry
	hydrated bool
}

// NewFavoritesStore constructs an empty, not-yet-hydrated favorites store.
func NewFavoritesStore(deps FavoritesStoreDeps) (FavoritesStore, error) {
	if deps.Storage == nil {
		return nil, errFavoritesStorageRequired
	}
	if deps.Clock == nil {
		return nil, errFavoritesClockRequired
	}

	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	return &favoritesStore{
		storage: deps.Storage,
		now:     func() time.Time { return deps.Clock().UTC() },
		logger:  logger,
		entries: []FavoriteEntry{},
	}, nil
}

// Hydrate loads previously persisted favorites once, then opens the write
// gate. Absence and corruption both leave the empty default in place.
func (s *favoritesStore) Hydrate(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.hydrated {
		return nil
	}

	var stored []FavoriteEntry
	found, err := s.storage.Load(ctx, favoritesStorageKey, &stored)
	s.hydrated = true
	if err != nil {
		s.logger(ctx, "favorites.hydrate_failed", map[string]any{"error": err.Error()})
		return err
	}
	if found {
		s.entries = normaliseFavorites(stored)
	}
	s.logger(ctx, "favorites.hydrated", map[string]any{"entries": len(s.entries)})
	return nil
}

// Hydrated reports whether the one-time load has completed.
func (s *favoritesStore) Hydrated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hydrated
}

// Toggle flips membership for the product and reports the new state: true
// when the product is now a favorite, false when it was just removed. Products
// without an id are ignored and report false.
func (s *favoritesStore) Toggle(ctx context.Context, product ProductSnapshot) bool {
	if strings.TrimSpace(product.ID) == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.entries {
		if s.entries[i].Product.ID == product.ID {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			s.persistLocked(ctx)
			return false
		}
	}

	s.entries = append(s.entries, FavoriteEntry{
		Product: product,
		AddedAt: s.now(),
	})
	s.persistLocked(ctx)
	return true
}

// IsFavorite reports membership by product id.
func (s *favoritesStore) IsFavorite(productID string) bool {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.entries {
		if s.entries[i].Product.ID == productID {
			return true
		}
	}
	return false
}

// List returns a copy of the entries in insertion order.
func (s *favoritesStore) List() []FavoriteEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]FavoriteEntry, len(s.entries))
	copy(out, s.entries)
	for i := range out {
		out[i].Product.Images = append([]string(nil), out[i].Product.Images...)
	}
	return out
}

// persistLocked mirrors the cart store's write gate. Must be called with the
// mutex held.
func (s *favoritesStore) persistLocked(ctx context.Context) {
	if !s.hydrated {
		return
	}
	if err := s.storage.Save(ctx, favoritesStorageKey, s.entries); err != nil {
		s.logger(ctx, "favorites.persist_failed", map[string]any{"error": err.Error()})
	}
}

func normaliseFavorites(entries []FavoriteEntry) []FavoriteEntry {
	out := make([]FavoriteEntry, 0, len(entries))
	seen := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		id := strings.TrimSpace(entry.Product.ID)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, entry)
	}
	return out
}
