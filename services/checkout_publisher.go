package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/kraken-commerce/backend/common/errors"
	"github.com/kraken-commerce/backend/eventbus"
	"github.com/kraken-commerce/backend/models"
)

// CartStore is the cart collaborator the publisher reads from.
type CartStore interface {
	GetCart(ctx context.Context, userName string) (*models.Cart, error)
	DeleteCart(ctx context.Context, userName string) error
}

// EventPublisher hands an envelope to the event bus. *eventbus.Router
// satisfies it, as does the EventBridge bridge for remote-bus deployments.
type EventPublisher interface {
	Publish(ctx context.Context, env eventbus.Envelope) error
}

// CheckoutRequest carries the shipping and payment details supplied at
// checkout time; they travel with the event into the order record.
type CheckoutRequest struct {
	UserName      string `json:"user_name" binding:"required"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Email         string `json:"email"`
	Address       string `json:"address"`
	PaymentMethod string `json:"payment_method"`
	PaymentRef    string `json:"payment_ref"`
}

// CheckoutPublisher converts a cart snapshot into a checkout event and hands
// it to the router. It returns as soon as the publish is accepted; order
// creation happens downstream.
type CheckoutPublisher struct {
	carts     CartStore
	bus       EventPublisher
	clearCart bool
	log       *zap.Logger
}

func NewCheckoutPublisher(carts CartStore, bus EventPublisher, clearCart bool, log *zap.Logger) *CheckoutPublisher {
	return &CheckoutPublisher{
		carts:     carts,
		bus:       bus,
		clearCart: clearCart,
		log:       log,
	}
}

// Checkout publishes a checkout event for the customer's cart and returns the
// event id. An empty or missing cart is rejected; a transport failure is
// surfaced as a retryable publish error and no order is created.
func (p *CheckoutPublisher) Checkout(ctx context.Context, req *CheckoutRequest) (string, error) {
	cart, err := p.carts.GetCart(ctx, req.UserName)
	if err != nil {
		return "", err
	}
	if cart == nil || len(cart.Items) == 0 {
		return "", apperrors.ErrEmptyCart
	}

	event := models.CheckoutEvent{
		EventID:       uuid.NewString(),
		UserName:      req.UserName,
		Items:         cart.Items,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Email:         req.Email,
		Address:       req.Address,
		PaymentMethod: req.PaymentMethod,
		PaymentRef:    req.PaymentRef,
		RequestedAt:   time.Now().UTC(),
	}

	env, err := eventbus.NewEnvelope(eventbus.SourceCart, eventbus.DetailTypeCheckoutCart, event)
	if err != nil {
		return "", err
	}
	env.ID = event.EventID

	if err := p.bus.Publish(ctx, env); err != nil {
		return "", apperrors.New(apperrors.ErrPublishFailed.Code, apperrors.ErrPublishFailed.Message, err)
	}

	p.log.Info("checkout event published",
		zap.String("user_name", req.UserName),
		zap.String("event_id", event.EventID),
		zap.Int("items", len(cart.Items)),
	)

	if p.clearCart {
		if err := p.carts.DeleteCart(ctx, req.UserName); err != nil {
			// The event is already on its way; a lingering cart is harmless.
			p.log.Warn("failed to clear cart after checkout",
				zap.String("user_name", req.UserName), zap.Error(err))
		}
	}

	return event.EventID, nil
}
