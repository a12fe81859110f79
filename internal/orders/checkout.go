package orders

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/dajiagoods/storefront/internal/cart"
	"github.com/dajiagoods/storefront/internal/events"
	"github.com/dajiagoods/storefront/internal/fallback"
	"github.com/dajiagoods/storefront/internal/ident"
	"github.com/dajiagoods/storefront/internal/redisx"
	"github.com/dajiagoods/storefront/internal/verify"
)

var (
	ErrEmptyCart   = errors.New("orders: cart is empty")
	ErrInvalidForm = errors.New("orders: invalid buyer form")
)

// Remote is the slice of the gateway checkout needs.
type Remote interface {
	InsertOrder(ctx context.Context, o Order) error
	InsertCodes(ctx context.Context, codes []verify.Code) error
}

// Enqueuer parks failed remote writes for reconciliation.
type Enqueuer interface {
	EnqueueOrder(ctx context.Context, o Order) error
	EnqueueCodes(ctx context.Context, codes []verify.Code) error
}

// Publisher emits the order-placed event. Satisfied by *kafka.Producer.
type Publisher interface {
	Publish(topic, eventType, correlationID string, payload any)
}

type Service struct {
	Remote   Remote // nil when the gateway is unconfigured
	Store    fallback.Store
	Outbox   Enqueuer  // nil disables reconciliation
	Producer Publisher // nil disables events
}

// Checkout converts the cart into an order. Once the form validates, the
// checkout always succeeds from the buyer's perspective: the remote insert
// is best-effort (a failure is parked in the outbox), the local append is
// guaranteed, and the cart is cleared last. Verification codes are minted
// only after a successful remote order insert, one per purchased unit; a
// failed code insert is logged and never fails the order.
func (s *Service) Checkout(ctx context.Context, c *cart.Manager, form FormData) (Order, error) {
	items := c.Items()
	if len(items) == 0 {
		return Order{}, ErrEmptyCart
	}
	if errs := ValidateForm(form); len(errs) > 0 {
		return Order{}, fmt.Errorf("%w: %v", ErrInvalidForm, errs)
	}

	o := Order{
		OrderNumber: ident.OrderNumber(),
		Items:       items, // already a deep copy, later catalog changes cannot touch it
		Total:       c.TotalPrice() + ShippingFee,
		Shipping:    ShippingFee,
		FormData:    form,
		Status:      StatusPending,
		CreatedAt:   time.Now().UTC(),
	}

	minted := 0
	if s.Remote != nil {
		if err := s.Remote.InsertOrder(ctx, o); err != nil {
			log.Printf("orders: remote insert %s: %v", o.OrderNumber, err)
			if s.Outbox != nil {
				if qerr := s.Outbox.EnqueueOrder(ctx, o); qerr != nil {
					log.Printf("orders: enqueue %s: %v", o.OrderNumber, qerr)
				}
			}
		} else {
			minted = s.mintCodes(ctx, o)
		}
	}

	if err := fallback.Append(ctx, s.Store, redisx.KeyOrders, o); err != nil {
		return Order{}, err
	}
	if err := c.Clear(ctx); err != nil {
		log.Printf("orders: clear cart after %s: %v", o.OrderNumber, err)
	}

	if s.Producer != nil {
		s.Producer.Publish(events.TopicOrderPlaced, events.TypeOrderPlaced, o.OrderNumber, events.OrderPlacedPayload{
			OrderNumber: o.OrderNumber,
			Total:       o.Total,
			Shipping:    o.Shipping,
			ItemCount:   o.Units(),
			CodesMinted: minted,
		})
	}
	return o, nil
}

func (s *Service) mintCodes(ctx context.Context, o Order) int {
	var codes []verify.Code
	for _, it := range o.Items {
		batch := verify.Mint(it.Product.ID, it.Product.Name, o.OrderNumber, it.Quantity)
		codes = append(codes, batch...)
	}
	if len(codes) == 0 {
		return 0
	}
	if err := s.Remote.InsertCodes(ctx, codes); err != nil {
		log.Printf("orders: insert %d codes for %s: %v", len(codes), o.OrderNumber, err)
		if s.Outbox != nil {
			if qerr := s.Outbox.EnqueueCodes(ctx, codes); qerr != nil {
				log.Printf("orders: enqueue codes for %s: %v", o.OrderNumber, qerr)
			}
		}
		return 0
	}
	return len(codes)
}

// LocalByNumber serves the confirmation view from the fallback store, so a
// just-placed order renders even when the remote store was unreachable.
func (s *Service) LocalByNumber(ctx context.Context, orderNumber string) (Order, bool, error) {
	var os []Order
	if err := s.Store.Load(ctx, redisx.KeyOrders, &os); err != nil {
		if errors.Is(err, fallback.ErrNotFound) {
			return Order{}, false, nil
		}
		return Order{}, false, err
	}
	for _, o := range os {
		if o.OrderNumber == orderNumber {
			return o, true, nil
		}
	}
	return Order{}, false, nil
}
