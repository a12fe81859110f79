package orders

import (
	"context"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dajiagoods/storefront/internal/cart"
	"github.com/dajiagoods/storefront/internal/catalog"
	"github.com/dajiagoods/storefront/internal/fallback"
	"github.com/dajiagoods/storefront/internal/redisx"
	"github.com/dajiagoods/storefront/internal/verify"
)

type fakeOrderRemote struct {
	orders   []Order
	codes    []verify.Code
	orderErr error
	codesErr error
}

func (f *fakeOrderRemote) InsertOrder(ctx context.Context, o Order) error {
	if f.orderErr != nil {
		return f.orderErr
	}
	f.orders = append(f.orders, o)
	return nil
}

func (f *fakeOrderRemote) InsertCodes(ctx context.Context, codes []verify.Code) error {
	if f.codesErr != nil {
		return f.codesErr
	}
	f.codes = append(f.codes, codes...)
	return nil
}

type fakeOrderEnqueuer struct {
	orders []Order
	codes  []verify.Code
}

func (f *fakeOrderEnqueuer) EnqueueOrder(ctx context.Context, o Order) error {
	f.orders = append(f.orders, o)
	return nil
}

func (f *fakeOrderEnqueuer) EnqueueCodes(ctx context.Context, codes []verify.Code) error {
	f.codes = append(f.codes, codes...)
	return nil
}

func validForm() FormData {
	return FormData{
		Name:    "陳先生",
		Phone:   "0912345678",
		Email:   "chen@example.com",
		Address: "台中市大甲區順天路158號",
	}
}

func populatedCart(t *testing.T, store fallback.Store) *cart.Manager {
	t.Helper()
	ctx := context.Background()
	m := cart.Load(ctx, store, "s1")
	a := catalog.Product{ID: "a", Name: "平安香火袋", Slug: "peace-incense-bag", Price: 580, Stock: 10, InStock: true}
	b := catalog.Product{ID: "b", Name: "媽祖金箔護身符", Slug: "mazu-gold-amulet", Price: 1880, Stock: 10, InStock: true}
	_, err := m.Add(ctx, a, 2)
	require.NoError(t, err)
	_, err = m.Add(ctx, b, 1)
	require.NoError(t, err)
	return m
}

var orderNumberRe = regexp.MustCompile(`^DJ-\d+-[0-9A-Z]{6}$`)

func TestCheckoutHappyPath(t *testing.T) {
	ctx := context.Background()
	store := fallback.NewMemory()
	remote := &fakeOrderRemote{}
	s := &Service{Remote: remote, Store: store}

	o, err := s.Checkout(ctx, populatedCart(t, store), validForm())
	require.NoError(t, err)

	assert.Regexp(t, orderNumberRe, o.OrderNumber)
	assert.Equal(t, 2*580+1880+ShippingFee, o.Total)
	assert.Equal(t, ShippingFee, o.Shipping)
	assert.Equal(t, StatusPending, o.Status)
	require.Len(t, remote.orders, 1)

	// One code per purchased unit, ordinals restarting per line.
	require.Len(t, remote.codes, 3)
	for _, c := range remote.codes {
		assert.Equal(t, verify.StatusActive, c.Status)
		assert.Equal(t, o.OrderNumber, c.OrderNumber)
	}
	assert.Regexp(t, `-1$`, remote.codes[0].Code)
	assert.Regexp(t, `-2$`, remote.codes[1].Code)
	assert.Regexp(t, `-1$`, remote.codes[2].Code)
}

func TestCheckoutSurvivesRemoteFailure(t *testing.T) {
	ctx := context.Background()
	store := fallback.NewMemory()
	q := &fakeOrderEnqueuer{}
	s := &Service{Remote: &fakeOrderRemote{orderErr: assert.AnError}, Store: store, Outbox: q}

	m := populatedCart(t, store)
	o, err := s.Checkout(ctx, m, validForm())
	require.NoError(t, err, "remote failure must not fail checkout")

	assert.NotEmpty(t, o.OrderNumber)
	assert.Empty(t, m.Items(), "cart must be cleared")
	assert.False(t, store.Has(redisx.CartKey("s1")))

	got, found, err := s.LocalByNumber(ctx, o.OrderNumber)
	require.NoError(t, err)
	require.True(t, found, "order must be retrievable from the fallback store")
	assert.Equal(t, o.Total, got.Total)

	require.Len(t, q.orders, 1)
	assert.Equal(t, o.OrderNumber, q.orders[0].OrderNumber)
}

func TestCheckoutCodeFailureDoesNotFailOrder(t *testing.T) {
	ctx := context.Background()
	store := fallback.NewMemory()
	remote := &fakeOrderRemote{codesErr: assert.AnError}
	q := &fakeOrderEnqueuer{}
	s := &Service{Remote: remote, Store: store, Outbox: q}

	o, err := s.Checkout(ctx, populatedCart(t, store), validForm())
	require.NoError(t, err)
	require.Len(t, remote.orders, 1)
	assert.Equal(t, o.OrderNumber, remote.orders[0].OrderNumber)

	// the failed batch is parked for the reconciler, not lost
	assert.Empty(t, q.orders)
	assert.Len(t, q.codes, 3)
}

func TestCheckoutLocalOnlyMode(t *testing.T) {
	ctx := context.Background()
	store := fallback.NewMemory()
	s := &Service{Store: store}

	o, err := s.Checkout(ctx, populatedCart(t, store), validForm())
	require.NoError(t, err)

	_, found, err := s.LocalByNumber(ctx, o.OrderNumber)
	require.NoError(t, err)
	assert.True(t, found)
}

func TestCheckoutRejectsEmptyCart(t *testing.T) {
	ctx := context.Background()
	store := fallback.NewMemory()
	s := &Service{Store: store}

	_, err := s.Checkout(ctx, cart.Load(ctx, store, "empty"), validForm())
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestCheckoutRejectsIncompleteForm(t *testing.T) {
	ctx := context.Background()
	store := fallback.NewMemory()
	s := &Service{Store: store}
	m := populatedCart(t, store)

	form := validForm()
	form.Address = ""
	_, err := s.Checkout(ctx, m, form)
	assert.ErrorIs(t, err, ErrInvalidForm)
	assert.NotEmpty(t, m.Items(), "failed validation must leave the cart alone")
}

func TestOrderItemsAreSnapshots(t *testing.T) {
	ctx := context.Background()
	store := fallback.NewMemory()
	s := &Service{Store: store}

	m := cart.Load(ctx, store, "s1")
	p := catalog.Product{ID: "a", Name: "順風耳鑰匙圈", Price: 680, Stock: 5, InStock: true}
	_, err := m.Add(ctx, p, 1)
	require.NoError(t, err)

	o, err := s.Checkout(ctx, m, validForm())
	require.NoError(t, err)

	// Catalog mutation after the fact must not reach the placed order.
	p.Price = 1
	assert.Equal(t, 680, o.Items[0].Product.Price)
}

func TestStatusTransitions(t *testing.T) {
	assert.True(t, CanTransition(StatusPending, StatusConfirmed))
	assert.True(t, CanTransition(StatusConfirmed, StatusShipped))
	assert.True(t, CanTransition(StatusShipped, StatusDelivered))
	assert.True(t, CanTransition(StatusPending, StatusCancelled))
	assert.False(t, CanTransition(StatusDelivered, StatusPending))
	assert.False(t, CanTransition(StatusShipped, StatusConfirmed))
	assert.False(t, CanTransition(StatusCancelled, StatusConfirmed))
}
