package services

import (
	"context"
	"errors"

	domain "github.com/vaporhouse/api/internal/domain"
	"github.com/vaporhouse/api/internal/repositories"
)

// Type aliases expose domain models to the services package without reversing dependency direction.
type (
	Product             = domain.Product
	ProductSnapshot     = domain.ProductSnapshot
	BranchSpecification = domain.BranchSpecification
	SelectedOptions     = domain.SelectedOptions
	Dimension           = domain.Dimension
	CartLine            = domain.CartLine
	FavoriteEntry       = domain.FavoriteEntry
	CustomerInfo        = domain.CustomerInfo
	PaymentInfo         = domain.PaymentInfo
	PaymentMethod       = domain.PaymentMethod
	Order               = domain.Order
	OrderItem           = domain.OrderItem
	OrderTotals         = domain.OrderTotals
	BranchData          = domain.BranchData
	OrderReceipt        = domain.OrderReceipt
)

// CartStore owns the ordered cart line list and its persistence lifecycle.
// Mutations issued before Hydrate completes take effect in memory but are not
// written back; the hydration gate prevents the empty initial state from
// clobbering previously persisted data.
type CartStore interface {
	Hydrate(ctx context.Context) error
	Hydrated() bool
	AddToCart(ctx context.Context, cmd AddToCartCommand) (CartLine, error)
	RemoveFromCart(ctx context.Context, lineID string)
	UpdateQuantity(ctx context.Context, lineID string, quantity int)
	Clear(ctx context.Context)
	Lines() []CartLine
	Total() int64
	ItemCount() int
}

// FavoritesStore owns the saved-product set under the same hydration contract.
type FavoritesStore interface {
	Hydrate(ctx context.Context) error
	Hydrated() bool
	Toggle(ctx context.Context, product ProductSnapshot) bool
	IsFavorite(productID string) bool
	List() []FavoriteEntry
}

// SpecificationResolver translates a product's per-branch variant catalog plus
// a (possibly partial) selection into actionable availability data.
type SpecificationResolver interface {
	AvailableBranches(product Product) []string
	IsFulfillable(product Product, branch string, selection SelectedOptions) bool
	FulfillableBranches(product Product, selection SelectedOptions) []string
	CollapsedValue(product Product, dimension Dimension) (string, bool)
	OptionValues(product Product, dimension Dimension) []string
}

// FulfillmentSelector picks the single branch covering the most cart lines.
type FulfillmentSelector interface {
	Select(lines []CartLine) (string, map[string][]string)
}

// OrderAssembler builds a priced, validated order payload from a cart snapshot.
// It is a pure builder: no I/O, no retained state.
type OrderAssembler interface {
	Assemble(cmd AssembleOrderCommand) (Order, error)
}

// CheckoutService orchestrates assemble-submit-clear as one logical step.
type CheckoutService interface {
	SubmitOrder(ctx context.Context, cmd SubmitOrderCommand) (OrderReceipt, error)
}

// Command and DTO definitions ------------------------------------------------

// AddToCartCommand adds (or merges into) a cart line. Quantity zero means the
// caller's default of one.
type AddToCartCommand struct {
	Product         Product
	Quantity        int
	SelectedOptions SelectedOptions
}

// AssembleOrderCommand carries everything the assembler needs; the cart
// snapshot is taken by the caller so assembly observes a consistent state.
type AssembleOrderCommand struct {
	Lines        []CartLine
	CustomerInfo CustomerInfo
	PaymentInfo  PaymentInfo
	OrderNotes   string
}

// SubmitOrderCommand is the checkout entrypoint payload.
type SubmitOrderCommand struct {
	CustomerInfo CustomerInfo
	PaymentInfo  PaymentInfo
	OrderNotes   string
}

func isRepoUnavailable(err error) bool {
	var repoErr repositories.RepositoryError
	if errors.As(err, &repoErr) {
		return repoErr.IsUnavailable()
	}
	return false
}
