package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	domain "github.com/vaporhouse/api/internal/domain"
)

var (
	errAssemblerSelectorRequired = errors.New("order assembler: selector is required")
	errAssemblerClockRequired    = errors.New("order assembler: clock is required")

	// ErrOrderInvalidInput indicates the order payload failed validation.
	ErrOrderInvalidInput = errors.New("order assembler: invalid input")
	// ErrOrderEmptyCart indicates assembly was attempted with no cart lines.
	ErrOrderEmptyCart = errors.New("order assembler: cart is empty")
)

// OrderAssemblerDeps configures order assembly. InsideCity is matched
// case-insensitively against the customer's city to pick the delivery charge.
type OrderAssemblerDeps struct {
	Selector          FulfillmentSelector
	Clock             func() time.Time
	InsideCity        string
	InsideCityCharge  int64
	OutsideCityCharge int64
}

type orderAssembler struct {
	selector      FulfillmentSelector
	now           func() time.Time
	insideCity    string
	insideCharge  int64
	outsideCharge int64
	notesPolicy   *bluemonday.Policy
}

// NewOrderAssembler constructs the pure order builder.
func NewOrderAssembler(deps OrderAssemblerDeps) (OrderAssembler, error) {
	if deps.Selector == nil {
		return nil, errAssemblerSelectorRequired
	}
	if deps.Clock == nil {
		return nil, errAssemblerClockRequired
	}

	insideCity := strings.TrimSpace(deps.InsideCity)
	if insideCity == "" {
		insideCity = "dhaka"
	}

	return &orderAssembler{
		selector:      deps.Selector,
		now:           func() time.Time { return deps.Clock().UTC() },
		insideCity:    insideCity,
		insideCharge:  deps.InsideCityCharge,
		outsideCharge: deps.OutsideCityCharge,
		notesPolicy:   bluemonday.StrictPolicy(),
	}, nil
}

// Assemble validates the customer and payment input, prices the cart snapshot,
// selects the fulfilling branch, and returns the submission-ready order. It
// performs no I/O and leaves the caller's cart untouched.
func (a *orderAssembler) Assemble(cmd AssembleOrderCommand) (Order, error) {
	if len(cmd.Lines) == 0 {
		return Order{}, ErrOrderEmptyCart
	}

	customer, err := validateCustomerInfo(cmd.CustomerInfo)
	if err != nil {
		return Order{}, err
	}
	payment, err := validatePaymentInfo(cmd.PaymentInfo)
	if err != nil {
		return Order{}, err
	}

	items := make([]OrderItem, 0, len(cmd.Lines))
	var subtotal int64
	for _, line := range cmd.Lines {
		if line.Quantity <= 0 {
			continue
		}
		items = append(items, OrderItem{
			Product:           line.Product,
			Quantity:          line.Quantity,
			SelectedOptions:   cloneSelection(line.SelectedOptions),
			AvailableBranches: append([]string(nil), line.AvailableBranches...),
		})
		subtotal += line.Product.Price * int64(line.Quantity)
	}
	if len(items) == 0 {
		return Order{}, ErrOrderEmptyCart
	}

	deliveryCharge := a.outsideCharge
	if strings.EqualFold(customer.City, a.insideCity) {
		deliveryCharge = a.insideCharge
	}

	primaryBranch, branchSummary := a.selector.Select(cmd.Lines)

	return Order{
		Items:        items,
		CustomerInfo: customer,
		PaymentInfo:  payment,
		Branch:       primaryBranch,
		BranchData: BranchData{
			PrimaryBranch:       primaryBranch,
			BranchSummary:       branchSummary,
			FulfillmentStrategy: domain.FulfillmentStrategySingleBranch,
		},
		Totals: OrderTotals{
			Subtotal:       subtotal,
			DeliveryCharge: deliveryCharge,
			Total:          subtotal + deliveryCharge,
		},
		OrderNotes: a.notesPolicy.Sanitize(strings.TrimSpace(cmd.OrderNotes)),
		PlacedAt:   a.now(),
	}, nil
}

// validateCustomerInfo requires every contact field and returns the trimmed copy.
func validateCustomerInfo(info CustomerInfo) (CustomerInfo, error) {
	trimmed := CustomerInfo{
		FullName:   strings.TrimSpace(info.FullName),
		Email:      strings.TrimSpace(info.Email),
		Phone:      strings.TrimSpace(info.Phone),
		Address:    strings.TrimSpace(info.Address),
		City:       strings.TrimSpace(info.City),
		PostalCode: strings.TrimSpace(info.PostalCode),
		Country:    strings.TrimSpace(info.Country),
	}

	missing := []string{}
	for _, field := range []struct {
		name  string
		value string
	}{
		{"fullName", trimmed.FullName},
		{"email", trimmed.Email},
		{"phone", trimmed.Phone},
		{"address", trimmed.Address},
		{"city", trimmed.City},
		{"postalCode", trimmed.PostalCode},
		{"country", trimmed.Country},
	} {
		if field.value == "" {
			missing = append(missing, field.name)
		}
	}
	if len(missing) > 0 {
		return CustomerInfo{}, fmt.Errorf("%w: missing customer fields: %s", ErrOrderInvalidInput, strings.Join(missing, ", "))
	}
	return trimmed, nil
}

// validatePaymentInfo enforces the per-method required fields and strips the
// fields the chosen method does not use.
func validatePaymentInfo(info PaymentInfo) (PaymentInfo, error) {
	method := PaymentMethod(strings.ToLower(strings.TrimSpace(string(info.Method))))

	switch method {
	case domain.PaymentMethodCOD:
		return PaymentInfo{Method: method}, nil

	case domain.PaymentMethodBkash, domain.PaymentMethodNagad, domain.PaymentMethodRocket, domain.PaymentMethodUpay:
		wallet := strings.TrimSpace(info.WalletNumber)
		if wallet == "" {
			return PaymentInfo{}, fmt.Errorf("%w: wallet number is required for %s", ErrOrderInvalidInput, method)
		}
		return PaymentInfo{Method: method, WalletNumber: wallet}, nil

	case domain.PaymentMethodCard:
		card := PaymentInfo{
			Method:     method,
			CardNumber: strings.TrimSpace(info.CardNumber),
			ExpiryDate: strings.TrimSpace(info.ExpiryDate),
			CVV:        strings.TrimSpace(info.CVV),
			CardName:   strings.TrimSpace(info.CardName),
		}
		missing := []string{}
		if card.CardNumber == "" {
			missing = append(missing, "cardNumber")
		}
		if card.ExpiryDate == "" {
			missing = append(missing, "expiryDate")
		}
		if card.CVV == "" {
			missing = append(missing, "cvv")
		}
		if card.CardName == "" {
			missing = append(missing, "cardName")
		}
		if len(missing) > 0 {
			return PaymentInfo{}, fmt.Errorf("%w: missing card fields: %s", ErrOrderInvalidInput, strings.Join(missing, ", "))
		}
		return card, nil

	case "":
		return PaymentInfo{}, fmt.Errorf("%w: payment method is required", ErrOrderInvalidInput)

	default:
		return PaymentInfo{}, fmt.Errorf("%w: unsupported payment method %q", ErrOrderInvalidInput, method)
	}
}
