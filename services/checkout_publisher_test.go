package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "github.com/kraken-commerce/backend/common/errors"
	"github.com/kraken-commerce/backend/eventbus"
	"github.com/kraken-commerce/backend/models"
)

// ---- mock cart store ----

type mockCartStore struct {
	carts   map[string]*models.Cart
	deleted []string
}

func newMockCartStore() *mockCartStore {
	return &mockCartStore{carts: make(map[string]*models.Cart)}
}

func (m *mockCartStore) GetCart(_ context.Context, userName string) (*models.Cart, error) {
	return m.carts[userName], nil
}

func (m *mockCartStore) DeleteCart(_ context.Context, userName string) error {
	delete(m.carts, userName)
	m.deleted = append(m.deleted, userName)
	return nil
}

// ---- mock bus ----

type mockBus struct {
	published []eventbus.Envelope
	err       error
}

func (m *mockBus) Publish(_ context.Context, env eventbus.Envelope) error {
	if m.err != nil {
		return m.err
	}
	m.published = append(m.published, env)
	return nil
}

func cartWithItems(userName string) *models.Cart {
	return &models.Cart{
		UserName: userName,
		Items: []models.CartItem{
			{ProductID: "p1", ProductName: "Widget", Price: decimal.RequireFromString("10.00"), Quantity: 2},
		},
	}
}

func TestCheckoutPublishesEvent(t *testing.T) {
	carts := newMockCartStore()
	carts.carts["swn"] = cartWithItems("swn")
	bus := &mockBus{}

	p := NewCheckoutPublisher(carts, bus, false, zap.NewNop())

	eventID, err := p.Checkout(context.Background(), &CheckoutRequest{
		UserName:      "swn",
		Email:         "swn@example.com",
		PaymentMethod: "card",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, eventID)

	require.Len(t, bus.published, 1)
	env := bus.published[0]
	assert.Equal(t, eventbus.SourceCart, env.Source)
	assert.Equal(t, eventbus.DetailTypeCheckoutCart, env.DetailType)
	assert.Equal(t, eventID, env.ID)

	var detail models.CheckoutEvent
	require.NoError(t, json.Unmarshal(env.Detail, &detail))
	assert.Equal(t, eventID, detail.EventID)
	assert.Equal(t, "swn", detail.UserName)
	assert.Equal(t, "swn@example.com", detail.Email)
	require.Len(t, detail.Items, 1)
	assert.Equal(t, "p1", detail.Items[0].ProductID)

	// clearCart disabled: the cart survives
	assert.Empty(t, carts.deleted)
}

func TestCheckoutRejectsEmptyCart(t *testing.T) {
	carts := newMockCartStore()
	carts.carts["empty"] = &models.Cart{UserName: "empty"}
	bus := &mockBus{}

	p := NewCheckoutPublisher(carts, bus, true, zap.NewNop())

	_, err := p.Checkout(context.Background(), &CheckoutRequest{UserName: "empty"})
	assert.ErrorIs(t, err, apperrors.ErrEmptyCart)

	_, err = p.Checkout(context.Background(), &CheckoutRequest{UserName: "missing"})
	assert.ErrorIs(t, err, apperrors.ErrEmptyCart)

	assert.Empty(t, bus.published)
	assert.Empty(t, carts.deleted)
}

func TestCheckoutSurfacesPublishFailure(t *testing.T) {
	carts := newMockCartStore()
	carts.carts["swn"] = cartWithItems("swn")
	bus := &mockBus{err: errors.New("bus unreachable")}

	p := NewCheckoutPublisher(carts, bus, true, zap.NewNop())

	_, err := p.Checkout(context.Background(), &CheckoutRequest{UserName: "swn"})
	require.Error(t, err)

	var appErr *apperrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.ErrPublishFailed.Code, appErr.Code)

	// Nothing published, cart untouched
	assert.Empty(t, bus.published)
	assert.Empty(t, carts.deleted)
}

func TestCheckoutClearsCartWhenConfigured(t *testing.T) {
	carts := newMockCartStore()
	carts.carts["swn"] = cartWithItems("swn")
	bus := &mockBus{}

	p := NewCheckoutPublisher(carts, bus, true, zap.NewNop())

	_, err := p.Checkout(context.Background(), &CheckoutRequest{UserName: "swn"})
	require.NoError(t, err)
	assert.Equal(t, []string{"swn"}, carts.deleted)
}
