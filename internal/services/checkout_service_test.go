package services

import (
	"context"
	"errors"
	"testing"

	domain "github.com/vaporhouse/api/internal/domain"
	"github.com/vaporhouse/api/internal/platform/auth"
	"github.com/vaporhouse/api/internal/platform/kvstore"
)

type stubGateway struct {
	receipt   OrderReceipt
	err       error
	submitted []Order
}

func (g *stubGateway) SubmitOrder(_ context.Context, order Order) (OrderReceipt, error) {
	g.submitted = append(g.submitted, order)
	if g.err != nil {
		return OrderReceipt{}, g.err
	}
	return g.receipt, nil
}

type stubRepoError struct {
	notFound    bool
	conflict    bool
	unavailable bool
}

func (e *stubRepoError) Error() string       { return "stub repository error" }
func (e *stubRepoError) IsNotFound() bool    { return e.notFound }
func (e *stubRepoError) IsConflict() bool    { return e.conflict }
func (e *stubRepoError) IsUnavailable() bool { return e.unavailable }

func newCheckoutFixture(t *testing.T, gateway *stubGateway) (CheckoutService, CartStore) {
	t.Helper()

	cart := newTestCartStore(t, kvstore.NewMemoryStore())
	if err := cart.Hydrate(context.Background()); err != nil {
		t.Fatalf("Hydrate: %v", err)
	}
	if _, err := cart.AddToCart(context.Background(), AddToCartCommand{Product: variantProduct(), Quantity: 2}); err != nil {
		t.Fatalf("AddToCart: %v", err)
	}

	assembler := newTestAssembler(t)
	service, err := NewCheckoutService(CheckoutServiceDeps{
		Cart:      cart,
		Assembler: assembler,
		Gateway:   gateway,
	})
	if err != nil {
		t.Fatalf("NewCheckoutService: %v", err)
	}
	return service, cart
}

func TestSubmitOrderClearsCartOnSuccess(t *testing.T) {
	gateway := &stubGateway{receipt: OrderReceipt{OrderID: "ord-1", Totals: OrderTotals{Total: 96000}}}
	service, cart := newCheckoutFixture(t, gateway)

	receipt, err := service.SubmitOrder(context.Background(), SubmitOrderCommand{
		CustomerInfo: validCustomer(),
		PaymentInfo:  PaymentInfo{Method: domain.PaymentMethodCOD},
	})
	if err != nil {
		t.Fatalf("SubmitOrder: %v", err)
	}
	if receipt.OrderID != "ord-1" {
		t.Fatalf("receipt = %+v, want order ord-1", receipt)
	}
	if got := cart.ItemCount(); got != 0 {
		t.Fatalf("cart should be cleared after acceptance, ItemCount = %d", got)
	}
	if len(gateway.submitted) != 1 {
		t.Fatalf("gateway calls = %d, want 1", len(gateway.submitted))
	}
}

func TestSubmitOrderPreservesCartOnUnavailable(t *testing.T) {
	gateway := &stubGateway{err: &stubRepoError{unavailable: true}}
	service, cart := newCheckoutFixture(t, gateway)

	_, err := service.SubmitOrder(context.Background(), SubmitOrderCommand{
		CustomerInfo: validCustomer(),
		PaymentInfo:  PaymentInfo{Method: domain.PaymentMethodCOD},
	})
	if !errors.Is(err, ErrCheckoutUnavailable) {
		t.Fatalf("error = %v, want ErrCheckoutUnavailable", err)
	}
	if got := cart.ItemCount(); got != 2 {
		t.Fatalf("cart must survive a failed submission, ItemCount = %d", got)
	}
}

func TestSubmitOrderTranslatesRejection(t *testing.T) {
	gateway := &stubGateway{err: &stubRepoError{conflict: true}}
	service, cart := newCheckoutFixture(t, gateway)

	_, err := service.SubmitOrder(context.Background(), SubmitOrderCommand{
		CustomerInfo: validCustomer(),
		PaymentInfo:  PaymentInfo{Method: domain.PaymentMethodCOD},
	})
	if !errors.Is(err, ErrCheckoutRejected) {
		t.Fatalf("error = %v, want ErrCheckoutRejected", err)
	}
	if got := cart.ItemCount(); got != 2 {
		t.Fatalf("cart must survive a rejection, ItemCount = %d", got)
	}
}

func TestSubmitOrderValidationFailureSkipsGateway(t *testing.T) {
	gateway := &stubGateway{}
	service, cart := newCheckoutFixture(t, gateway)

	_, err := service.SubmitOrder(context.Background(), SubmitOrderCommand{
		CustomerInfo: CustomerInfo{FullName: "Only Name"},
		PaymentInfo:  PaymentInfo{Method: domain.PaymentMethodCOD},
	})
	if !errors.Is(err, ErrOrderInvalidInput) {
		t.Fatalf("error = %v, want ErrOrderInvalidInput", err)
	}
	if len(gateway.submitted) != 0 {
		t.Fatal("invalid input must not reach the gateway")
	}
	if got := cart.ItemCount(); got != 2 {
		t.Fatalf("cart must be untouched, ItemCount = %d", got)
	}
}

func TestSubmitOrderUsesIdentityEmail(t *testing.T) {
	gateway := &stubGateway{receipt: OrderReceipt{OrderID: "ord-2"}}
	service, _ := newCheckoutFixture(t, gateway)

	ctx := auth.WithIdentity(context.Background(), &auth.Identity{
		Subject: "user-1",
		Email:   "account@example.com",
	})

	customer := validCustomer()
	customer.Email = "form@example.com"
	if _, err := service.SubmitOrder(ctx, SubmitOrderCommand{
		CustomerInfo: customer,
		PaymentInfo:  PaymentInfo{Method: domain.PaymentMethodCOD},
	}); err != nil {
		t.Fatalf("SubmitOrder: %v", err)
	}

	if got := gateway.submitted[0].CustomerInfo.Email; got != "account@example.com" {
		t.Fatalf("submitted email = %q, want the authenticated account email", got)
	}
}
