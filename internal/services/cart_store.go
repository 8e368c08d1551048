package services

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/vaporhouse/api/internal/platform/kvstore"
)

const cartStorageKey = "cart"

var (
	errCartStoreStorageRequired  = errors.New("cart store: storage is required")
	errCartStoreResolverRequired = errors.New("cart store: resolver is required")
	errCartStoreClockRequired    = errors.New("cart store: clock is required")
)

// ErrCartInvalidInput indicates the caller supplied invalid input.
var ErrCartInvalidInput = errors.New("cart store: invalid input")

// CartStoreDeps wires the persistence and resolution dependencies for cart operations.
type CartStoreDeps struct {
	Storage     kvstore.Store
	Resolver    SpecificationResolver
	Clock       func() time.Time
	IDGenerator func() string
	Logger      func(context.Context, string, map[string]any)
}

type cartStore struct {
	mu       sync.Mutex
	storage  kvstore.Store
	resolver SpecificationResolver
	newID    func() string
	now      func() time.Time
	logger   func(context.Context, string, map[string]any)

	lines    []CartLine
	hydrated bool
}

// NewCartStore constructs an empty, not-yet-hydrated cart store. Callers must
// invoke Hydrate before mutations are expected to persist.
func NewCartStore(deps CartStoreDeps) (CartStore, error) {
	if deps.Storage == nil {
		return nil, errCartStoreStorageRequired
	}
	if deps.Resolver == nil {
		return nil, errCartStoreResolverRequired
	}
	if deps.Clock == nil {
		return nil, errCartStoreClockRequired
	}

	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = func() string { return ulid.Make().String() }
	}

	return &cartStore{
		storage:  deps.Storage,
		resolver: deps.Resolver,
		newID:    idGen,
		now:      func() time.Time { return deps.Clock().UTC() },
		logger:   logger,
		lines:    []CartLine{},
	}, nil
}

// Hydrate performs the one-time load of previously persisted cart state. The
// write gate opens regardless of the outcome: absence and corruption both fall
// back to the empty default, and any load error is reported for observability
// only. Subsequent calls are no-ops.
func (s *cartStore) Hydrate(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.hydrated {
		return nil
	}

	var stored []CartLine
	found, err := s.storage.Load(ctx, cartStorageKey, &stored)
	s.hydrated = true
	if err != nil {
		s.logger(ctx, "cart.hydrate_failed", map[string]any{"error": err.Error()})
		return err
	}
	if found {
		s.lines = normaliseCartLines(stored)
	}
	s.logger(ctx, "cart.hydrated", map[string]any{"lines": len(s.lines)})
	return nil
}

// Hydrated reports whether the one-time load has completed.
func (s *cartStore) Hydrated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hydrated
}

// AddToCart merges the product+selection into an existing line or appends a
// new one. At most one line exists per distinct (product id, selection) pair;
// re-adding increments quantity. Stock is not checked here: fulfillability is
// resolved at selection time and travels with the line as AvailableBranches.
func (s *cartStore) AddToCart(ctx context.Context, cmd AddToCartCommand) (CartLine, error) {
	productID := strings.TrimSpace(cmd.Product.ID)
	if productID == "" {
		return CartLine{}, fmt.Errorf("%w: product id is required", ErrCartInvalidInput)
	}
	quantity := cmd.Quantity
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 0 {
		return CartLine{}, fmt.Errorf("%w: quantity must be greater than zero", ErrCartInvalidInput)
	}

	selection := sanitizeSelection(cmd.SelectedOptions)
	branches := s.resolver.FulfillableBranches(cmd.Product, selection)

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.lines {
		if s.lines[i].Product.ID != productID {
			continue
		}
		if !selectionEqual(s.lines[i].SelectedOptions, selection) {
			continue
		}
		s.lines[i].Quantity += quantity
		line := s.lines[i]
		s.persistLocked(ctx)
		return line, nil
	}

	line := CartLine{
		ID:                s.newID(),
		Product:           cmd.Product.Snapshot(),
		Quantity:          quantity,
		SelectedOptions:   selection,
		AvailableBranches: branches,
		AddedAt:           s.now(),
	}
	s.lines = append(s.lines, line)
	s.persistLocked(ctx)
	return line, nil
}

// RemoveFromCart drops the line. Removing an unknown id is a no-op.
func (s *cartStore) RemoveFromCart(ctx context.Context, lineID string) {
	lineID = strings.TrimSpace(lineID)
	if lineID == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.lines {
		if s.lines[i].ID == lineID {
			s.lines = append(s.lines[:i], s.lines[i+1:]...)
			s.persistLocked(ctx)
			return
		}
	}
}

// UpdateQuantity replaces the line's quantity; zero or negative removes the
// line. Updating an unknown id is a no-op.
func (s *cartStore) UpdateQuantity(ctx context.Context, lineID string, quantity int) {
	if quantity <= 0 {
		s.RemoveFromCart(ctx, lineID)
		return
	}

	lineID = strings.TrimSpace(lineID)
	if lineID == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.lines {
		if s.lines[i].ID == lineID {
			s.lines[i].Quantity = quantity
			s.persistLocked(ctx)
			return
		}
	}
}

// Clear empties the cart.
func (s *cartStore) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.lines) == 0 {
		return
	}
	s.lines = []CartLine{}
	s.persistLocked(ctx)
}

// Lines returns a copy of the line list in insertion (display) order.
// Mutating the result never affects store state.
func (s *cartStore) Lines() []CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneCartLines(s.lines)
}

// Total sums snapshot price times quantity across lines. Snapshot prices are
// authoritative; live prices are never re-fetched.
func (s *cartStore) Total() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total int64
	for _, line := range s.lines {
		if line.Quantity <= 0 || line.Product.Price <= 0 {
			continue
		}
		total += line.Product.Price * int64(line.Quantity)
	}
	return total
}

// ItemCount sums quantities, not line count.
func (s *cartStore) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, line := range s.lines {
		if line.Quantity > 0 {
			count += line.Quantity
		}
	}
	return count
}

// persistLocked writes the current list back to storage. It must be called
// with the mutex held. Writes are suppressed until hydration completes so the
// startup empty state can never clobber previously persisted data; after that,
// a failed write is logged and the in-memory mutation stands.
func (s *cartStore) persistLocked(ctx context.Context) {
	if !s.hydrated {
		return
	}
	if err := s.storage.Save(ctx, cartStorageKey, s.lines); err != nil {
		s.logger(ctx, "cart.persist_failed", map[string]any{"error": err.Error()})
	}
}

func normaliseCartLines(lines []CartLine) []CartLine {
	out := make([]CartLine, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line.ID) == "" || strings.TrimSpace(line.Product.ID) == "" {
			continue
		}
		if line.Quantity <= 0 {
			continue
		}
		line.SelectedOptions = sanitizeSelection(line.SelectedOptions)
		out = append(out, line)
	}
	return out
}

func cloneCartLines(lines []CartLine) []CartLine {
	out := make([]CartLine, len(lines))
	copy(out, lines)
	for i := range out {
		out[i].SelectedOptions = cloneSelection(out[i].SelectedOptions)
		out[i].AvailableBranches = append([]string(nil), out[i].AvailableBranches...)
		out[i].Product.Images = append([]string(nil), out[i].Product.Images...)
	}
	return out
}

func cloneSelection(selection SelectedOptions) SelectedOptions {
	if len(selection) == 0 {
		return nil
	}
	out := make(SelectedOptions, len(selection))
	for k, v := range selection {
		out[k] = v
	}
	return out
}

// sanitizeSelection drops empty values so "not yet chosen" dimensions never
// distinguish otherwise identical lines.
func sanitizeSelection(selection SelectedOptions) SelectedOptions {
	if len(selection) == 0 {
		return nil
	}
	out := make(SelectedOptions, len(selection))
	for dimension, value := range selection {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		out[dimension] = value
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func selectionEqual(a, b SelectedOptions) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	return reflect.DeepEqual(a, b)
}
