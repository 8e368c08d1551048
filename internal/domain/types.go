package domain

import (
	"time"
)

// Dimension identifies an optional product variant axis a shopper can pick.
type Dimension string

const (
	// DimensionNicotineStrength selects the nicotine strength of a liquid.
	DimensionNicotineStrength Dimension = "nicotineStrength"
	// DimensionVGPGRatio selects the VG/PG ratio of a liquid.
	DimensionVGPGRatio Dimension = "vgPgRatio"
	// DimensionColors selects a hardware colour.
	DimensionColors Dimension = "colors"
)

// Dimensions lists every variant axis in canonical order.
func Dimensions() []Dimension {
	return []Dimension{DimensionNicotineStrength, DimensionVGPGRatio, DimensionColors}
}

// BranchSpecification maps each variant dimension to the values a branch stocks.
// A dimension absent from the map imposes no constraint at that branch.
type BranchSpecification map[Dimension][]string

// SelectedOptions records the shopper's (possibly partial) variant choice.
// An absent or empty value means the dimension has not been chosen yet.
type SelectedOptions map[Dimension]string

// Product is the read-only catalog entity served by the external product API.
// Stock maps lowercase branch names to units on hand; absence of a branch key
// means the product is not sold there. A product with no branch specifications
// at all is a simple product with no variant dimensions.
type Product struct {
	ID                   string                         `json:"id"`
	Name                 string                         `json:"name"`
	Brand                string                         `json:"brand,omitempty"`
	Category             string                         `json:"category,omitempty"`
	Price                int64                          `json:"price"`
	ComparePrice         int64                          `json:"comparePrice,omitempty"`
	Images               []string                       `json:"images,omitempty"`
	Stock                map[string]int                 `json:"stock,omitempty"`
	BranchSpecifications map[string]BranchSpecification `json:"branchSpecifications,omitempty"`
}

// ProductSnapshot freezes the economically relevant product fields at the time
// a cart line or favorite entry is created. Carts never re-fetch live prices.
type ProductSnapshot struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Price        int64    `json:"price"`
	ComparePrice int64    `json:"comparePrice,omitempty"`
	Images       []string `json:"images,omitempty"`
	Brand        string   `json:"brand,omitempty"`
}

// Snapshot captures the product's immutable cart-facing fields.
func (p Product) Snapshot() ProductSnapshot {
	images := make([]string, len(p.Images))
	copy(images, p.Images)
	return ProductSnapshot{
		ID:           p.ID,
		Name:         p.Name,
		Price:        p.Price,
		ComparePrice: p.ComparePrice,
		Images:       images,
		Brand:        p.Brand,
	}
}

// CartLine is a single cart entry. AvailableBranches is resolved once, when the
// line is created, and travels with the line through checkout for audit display.
type CartLine struct {
	ID                string          `json:"id"`
	Product           ProductSnapshot `json:"product"`
	Quantity          int             `json:"quantity"`
	SelectedOptions   SelectedOptions `json:"selectedOptions,omitempty"`
	AvailableBranches []string        `json:"availableBranches,omitempty"`
	AddedAt           time.Time       `json:"addedAt"`
}

// FavoriteEntry stores a saved product. Set semantics keyed by product id.
type FavoriteEntry struct {
	Product ProductSnapshot `json:"product"`
	AddedAt time.Time       `json:"addedAt"`
}

// CustomerInfo is the pass-through contact record attached to an order.
type CustomerInfo struct {
	FullName   string `json:"fullName"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// PaymentMethod enumerates the recorded (not processed) payment choices.
type PaymentMethod string

const (
	PaymentMethodCOD    PaymentMethod = "cod"
	PaymentMethodBkash  PaymentMethod = "bkash"
	PaymentMethodNagad  PaymentMethod = "nagad"
	PaymentMethodRocket PaymentMethod = "rocket"
	PaymentMethodUpay   PaymentMethod = "upay"
	PaymentMethodCard   PaymentMethod = "card"
)

// IsWallet reports whether the method is a mobile wallet requiring a wallet number.
func (m PaymentMethod) IsWallet() bool {
	switch m {
	case PaymentMethodBkash, PaymentMethodNagad, PaymentMethodRocket, PaymentMethodUpay:
		return true
	}
	return false
}

// PaymentInfo is a tagged union over Method. Wallet methods carry WalletNumber;
// card carries the card fields; cash-on-delivery carries nothing extra. The core
// records the selection as supplied and never processes payment.
type PaymentInfo struct {
	Method       PaymentMethod `json:"method"`
	WalletNumber string        `json:"walletNumber,omitempty"`
	CardNumber   string        `json:"cardNumber,omitempty"`
	ExpiryDate   string        `json:"expiryDate,omitempty"`
	CVV          string        `json:"cvv,omitempty"`
	CardName     string        `json:"cardName,omitempty"`
}

// FulfillmentStrategySingleBranch marks orders fulfilled by exactly one branch.
// Multi-branch splitting is a deliberate non-feature; the tag keeps the
// limitation visible to downstream consumers.
const FulfillmentStrategySingleBranch = "single-branch"

// OrderItem mirrors a cart line at submission time. The full availableBranches
// list is kept even though a single branch is ultimately chosen.
type OrderItem struct {
	Product           ProductSnapshot `json:"product"`
	Quantity          int             `json:"quantity"`
	SelectedOptions   SelectedOptions `json:"selectedOptions,omitempty"`
	AvailableBranches []string        `json:"availableBranches,omitempty"`
}

// BranchData carries the fulfillment diagnostics attached to an order.
// BranchSummary maps each candidate branch to the item names it could have
// fulfilled; it is informational, not authoritative.
type BranchData struct {
	PrimaryBranch       string              `json:"primaryBranch"`
	BranchSummary       map[string][]string `json:"branchSummary,omitempty"`
	FulfillmentStrategy string              `json:"fulfillmentStrategy"`
}

// OrderTotals holds the computed monetary roll-up in the smallest currency unit.
type OrderTotals struct {
	Subtotal       int64 `json:"subtotal"`
	DeliveryCharge int64 `json:"deliveryCharge"`
	Total          int64 `json:"total"`
}

// Order is the payload submitted to the external order API. It is constructed
// once by the assembler and never mutated by the core afterwards.
type Order struct {
	Items        []OrderItem  `json:"items"`
	CustomerInfo CustomerInfo `json:"customerInfo"`
	PaymentInfo  PaymentInfo  `json:"paymentInfo"`
	Branch       string       `json:"branch"`
	BranchData   BranchData   `json:"branchData"`
	Totals       OrderTotals  `json:"totals"`
	OrderNotes   string       `json:"orderNotes,omitempty"`
	PlacedAt     time.Time    `json:"placedAt"`
}

// OrderReceipt is the external order API's response on successful creation.
type OrderReceipt struct {
	OrderID string      `json:"orderId"`
	Totals  OrderTotals `json:"totals"`
}
