package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	domain "github.com/vaporhouse/api/internal/domain"
	"github.com/vaporhouse/api/internal/platform/kvstore"
)

func fixedClock() time.Time {
	return time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("line-%d", n)
	}
}

func newTestCartStore(t *testing.T, storage kvstore.Store) CartStore {
	t.Helper()
	store, err := NewCartStore(CartStoreDeps{
		Storage:     storage,
		Resolver:    NewSpecificationResolver(),
		Clock:       fixedClock,
		IDGenerator: sequentialIDs(),
	})
	if err != nil {
		t.Fatalf("NewCartStore: %v", err)
	}
	return store
}

func TestCartStoreConstructorValidation(t *testing.T) {
	if _, err := NewCartStore(CartStoreDeps{Resolver: NewSpecificationResolver(), Clock: fixedClock}); err == nil {
		t.Fatal("expected error for missing storage")
	}
	if _, err := NewCartStore(CartStoreDeps{Storage: kvstore.NewMemoryStore(), Clock: fixedClock}); err == nil {
		t.Fatal("expected error for missing resolver")
	}
	if _, err := NewCartStore(CartStoreDeps{Storage: kvstore.NewMemoryStore(), Resolver: NewSpecificationResolver()}); err == nil {
		t.Fatal("expected error for missing clock")
	}
}

func TestCartStoreAddMergesIdenticalSelections(t *testing.T) {
	ctx := context.Background()
	cart := newTestCartStore(t, kvstore.NewMemoryStore())
	if err := cart.Hydrate(ctx); err != nil {
		t.Fatalf("Hydrate: %v", err)
	}

	product := variantProduct()
	selection := SelectedOptions{domain.DimensionNicotineStrength: "3mg"}

	if _, err := cart.AddToCart(ctx, AddToCartCommand{Product: product, Quantity: 1, SelectedOptions: selection}); err != nil {
		t.Fatalf("AddToCart: %v", err)
	}
	line, err := cart.AddToCart(ctx, AddToCartCommand{Product: product, Quantity: 2, SelectedOptions: selection})
	if err != nil {
		t.Fatalf("AddToCart: %v", err)
	}

	if got := len(cart.Lines()); got != 1 {
		t.Fatalf("expected 1 merged line, got %d", got)
	}
	if line.Quantity != 3 {
		t.Fatalf("merged quantity = %d, want 3", line.Quantity)
	}
}

func TestCartStoreDistinctSelectionsStaySeparate(t *testing.T) {
	ctx := context.Background()
	cart := newTestCartStore(t, kvstore.NewMemoryStore())
	if err := cart.Hydrate(ctx); err != nil {
		t.Fatalf("Hydrate: %v", err)
	}

	product := variantProduct()
	if _, err := cart.AddToCart(ctx, AddToCartCommand{Product: product, SelectedOptions: SelectedOptions{domain.DimensionNicotineStrength: "3mg"}}); err != nil {
		t.Fatalf("AddToCart: %v", err)
	}
	if _, err := cart.AddToCart(ctx, AddToCartCommand{Product: product, SelectedOptions: SelectedOptions{domain.DimensionNicotineStrength: "6mg"}}); err != nil {
		t.Fatalf("AddToCart: %v", err)
	}

	if got := len(cart.Lines()); got != 2 {
		t.Fatalf("expected 2 lines for distinct selections, got %d", got)
	}
}

func TestCartStoreAddDefaultsAndValidation(t *testing.T) {
	ctx := context.Background()
	cart := newTestCartStore(t, kvstore.NewMemoryStore())
	if err := cart.Hydrate(ctx); err != nil {
		t.Fatalf("Hydrate: %v", err)
	}

	line, err := cart.AddToCart(ctx, AddToCartCommand{Product: variantProduct()})
	if err != nil {
		t.Fatalf("AddToCart: %v", err)
	}
	if line.Quantity != 1 {
		t.Fatalf("zero quantity should default to 1, got %d", line.Quantity)
	}

	if _, err := cart.AddToCart(ctx, AddToCartCommand{Product: variantProduct(), Quantity: -1}); !errors.Is(err, ErrCartInvalidInput) {
		t.Fatalf("negative quantity error = %v, want ErrCartInvalidInput", err)
	}
	if _, err := cart.AddToCart(ctx, AddToCartCommand{Product: Product{}}); !errors.Is(err, ErrCartInvalidInput) {
		t.Fatalf("missing product id error = %v, want ErrCartInvalidInput", err)
	}
}

func TestCartStoreAddRecordsFulfillableBranches(t *testing.T) {
	ctx := context.Background()
	cart := newTestCartStore(t, kvstore.NewMemoryStore())
	if err := cart.Hydrate(ctx); err != nil {
		t.Fatalf("Hydrate: %v", err)
	}

	line, err := cart.AddToCart(ctx, AddToCartCommand{
		Product:         variantProduct(),
		SelectedOptions: SelectedOptions{domain.DimensionNicotineStrength: "3mg"},
	})
	if err != nil {
		t.Fatalf("AddToCart: %v", err)
	}
	if len(line.AvailableBranches) != 1 || line.AvailableBranches[0] != "main" {
		t.Fatalf("AvailableBranches = %v, want [main]", line.AvailableBranches)
	}
}

func TestCartStoreUpdateQuantity(t *testing.T) {
	ctx := context.Background()
	cart := newTestCartStore(t, kvstore.NewMemoryStore())
	if err := cart.Hydrate(ctx); err != nil {
		t.Fatalf("Hydrate: %v", err)
	}

	line, err := cart.AddToCart(ctx, AddToCartCommand{Product: variantProduct(), Quantity: 2})
	if err != nil {
		t.Fatalf("AddToCart: %v", err)
	}

	cart.UpdateQuantity(ctx, line.ID, 5)
	if got := cart.Lines()[0].Quantity; got != 5 {
		t.Fatalf("quantity after update = %d, want 5", got)
	}

	cart.UpdateQuantity(ctx, "missing", 9)
	if got := len(cart.Lines()); got != 1 {
		t.Fatalf("unknown id update should be a no-op, got %d lines", got)
	}

	cart.UpdateQuantity(ctx, line.ID, 0)
	if got := len(cart.Lines()); got != 0 {
		t.Fatalf("zero quantity should remove the line, got %d lines", got)
	}
}

func TestCartStoreTotals(t *testing.T) {
	ctx := context.Background()
	cart := newTestCartStore(t, kvstore.NewMemoryStore())
	if err := cart.Hydrate(ctx); err != nil {
		t.Fatalf("Hydrate: %v", err)
	}

	cheap := Product{ID: "p1", Name: "Coil Pack", Price: 50}
	dear := Product{ID: "p2", Name: "Mod Kit", Price: 100}

	if _, err := cart.AddToCart(ctx, AddToCartCommand{Product: dear, Quantity: 2}); err != nil {
		t.Fatalf("AddToCart: %v", err)
	}
	if _, err := cart.AddToCart(ctx, AddToCartCommand{Product: cheap, Quantity: 1}); err != nil {
		t.Fatalf("AddToCart: %v", err)
	}

	if got := cart.Total(); got != 250 {
		t.Fatalf("Total = %d, want 250", got)
	}
	if got := cart.ItemCount(); got != 3 {
		t.Fatalf("ItemCount = %d, want 3", got)
	}
}

func TestCartStorePersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	backing := kvstore.NewMemoryStore()

	first := newTestCartStore(t, backing)
	if err := first.Hydrate(ctx); err != nil {
		t.Fatalf("Hydrate: %v", err)
	}
	if _, err := first.AddToCart(ctx, AddToCartCommand{Product: variantProduct(), Quantity: 2}); err != nil {
		t.Fatalf("AddToCart: %v", err)
	}

	second := newTestCartStore(t, backing)
	if err := second.Hydrate(ctx); err != nil {
		t.Fatalf("Hydrate: %v", err)
	}

	lines := second.Lines()
	if len(lines) != 1 || lines[0].Quantity != 2 || lines[0].Product.ID != "prod-ejuice-1" {
		t.Fatalf("hydrated lines = %+v, want the persisted line", lines)
	}
}

func TestCartStoreWriteGateProtectsPersistedState(t *testing.T) {
	ctx := context.Background()
	backing := kvstore.NewMemoryStore()

	seeded := []CartLine{{
		ID:       "line-existing",
		Product:  ProductSnapshot{ID: "p9", Name: "Saved Item", Price: 900},
		Quantity: 1,
		AddedAt:  fixedClock(),
	}}
	raw, err := json.Marshal(seeded)
	if err != nil {
		t.Fatalf("marshal seed: %v", err)
	}
	backing.Seed("cart", raw)

	unhydrated := newTestCartStore(t, backing)
	if _, err := unhydrated.AddToCart(ctx, AddToCartCommand{Product: variantProduct()}); err != nil {
		t.Fatalf("AddToCart: %v", err)
	}
	unhydrated.Clear(ctx)

	fresh := newTestCartStore(t, backing)
	if err := fresh.Hydrate(ctx); err != nil {
		t.Fatalf("Hydrate: %v", err)
	}
	lines := fresh.Lines()
	if len(lines) != 1 || lines[0].ID != "line-existing" {
		t.Fatalf("persisted state was clobbered before hydration: %+v", lines)
	}
}

func TestCartStoreHydrateRecoversFromCorruption(t *testing.T) {
	ctx := context.Background()
	backing := kvstore.NewMemoryStore()
	backing.Seed("cart", []byte(`{"not":"a list"`))

	cart := newTestCartStore(t, backing)
	if err := cart.Hydrate(ctx); err != nil {
		t.Fatalf("Hydrate over corrupt state should not fail: %v", err)
	}
	if !cart.Hydrated() {
		t.Fatal("store should report hydrated after Hydrate")
	}
	if got := len(cart.Lines()); got != 0 {
		t.Fatalf("corrupt state should yield the empty default, got %d lines", got)
	}
}

func TestCartStoreHydrateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	backing := kvstore.NewMemoryStore()

	cart := newTestCartStore(t, backing)
	if err := cart.Hydrate(ctx); err != nil {
		t.Fatalf("Hydrate: %v", err)
	}
	if _, err := cart.AddToCart(ctx, AddToCartCommand{Product: variantProduct()}); err != nil {
		t.Fatalf("AddToCart: %v", err)
	}
	if err := cart.Hydrate(ctx); err != nil {
		t.Fatalf("second Hydrate: %v", err)
	}
	if got := len(cart.Lines()); got != 1 {
		t.Fatalf("second Hydrate must not reload state, got %d lines", got)
	}
}

func TestCartStoreLinesReturnsCopy(t *testing.T) {
	ctx := context.Background()
	cart := newTestCartStore(t, kvstore.NewMemoryStore())
	if err := cart.Hydrate(ctx); err != nil {
		t.Fatalf("Hydrate: %v", err)
	}
	if _, err := cart.AddToCart(ctx, AddToCartCommand{
		Product:         variantProduct(),
		SelectedOptions: SelectedOptions{domain.DimensionNicotineStrength: "3mg"},
	}); err != nil {
		t.Fatalf("AddToCart: %v", err)
	}

	lines := cart.Lines()
	lines[0].Quantity = 99
	lines[0].SelectedOptions[domain.DimensionNicotineStrength] = "tampered"

	fresh := cart.Lines()
	if fresh[0].Quantity != 1 {
		t.Fatalf("mutating the returned slice leaked into the store: quantity %d", fresh[0].Quantity)
	}
	if fresh[0].SelectedOptions[domain.DimensionNicotineStrength] != "3mg" {
		t.Fatal("mutating the returned selection leaked into the store")
	}
}
