package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/kraken-commerce/backend/eventbus"
	"github.com/kraken-commerce/backend/models"
	"github.com/kraken-commerce/backend/repository"
)

// OrderConsumer turns checkout events into order records, exactly once per
// event id no matter how many times an event is delivered.
type OrderConsumer struct {
	store  repository.OrderStore
	ledger repository.IdempotencyLedger
	log    *zap.Logger

	seq atomic.Uint64
	now func() time.Time
}

func NewOrderConsumer(store repository.OrderStore, ledger repository.IdempotencyLedger, log *zap.Logger) *OrderConsumer {
	return &OrderConsumer{
		store:  store,
		ledger: ledger,
		log:    log,
		now:    time.Now,
	}
}

// HandleEnvelope is the dispatch entry point for both the direct-invoke
// target and the buffer worker.
func (c *OrderConsumer) HandleEnvelope(ctx context.Context, env eventbus.Envelope) error {
	var event models.CheckoutEvent
	if err := json.Unmarshal(env.Detail, &event); err != nil {
		return NewPermanentError("invalid checkout event payload", err)
	}
	_, err := c.Process(ctx, &event)
	return err
}

// Process creates the order for a checkout event and returns its key.
//
// A duplicate delivery returns the key recorded by the first processing. The
// redelivery race (two deliveries both passing the ledger read) is closed by
// the conditional ledger claim: the claim carries the order key about to be
// written, only the claim winner writes, and a failed order write releases
// the claim so the event stays retryable.
func (c *OrderConsumer) Process(ctx context.Context, event *models.CheckoutEvent) (*repository.OrderKey, error) {
	if err := event.Validate(); err != nil {
		return nil, NewPermanentError("checkout event failed validation", err)
	}

	if existing, err := c.ledger.Get(ctx, event.EventID); err != nil {
		return nil, fmt.Errorf("ledger lookup: %w", err)
	} else if existing != nil {
		c.log.Info("duplicate checkout event suppressed",
			zap.String("event_id", event.EventID),
			zap.String("order_date", existing.OrderDate),
		)
		return existing, nil
	}

	total := decimal.Zero
	for _, it := range event.Items {
		total = total.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}

	order := &models.Order{
		UserName:      event.UserName,
		OrderDate:     c.nextOrderDate(),
		EventID:       event.EventID,
		Items:         event.Items,
		TotalPrice:    total,
		FirstName:     event.FirstName,
		LastName:      event.LastName,
		Email:         event.Email,
		Address:       event.Address,
		PaymentMethod: event.PaymentMethod,
		PaymentRef:    event.PaymentRef,
	}
	key := repository.OrderKey{UserName: order.UserName, OrderDate: order.OrderDate}

	won, existing, err := c.ledger.Claim(ctx, event.EventID, key)
	if err != nil {
		return nil, fmt.Errorf("ledger claim: %w", err)
	}
	if !won {
		c.log.Info("lost idempotency claim to concurrent delivery",
			zap.String("event_id", event.EventID))
		return existing, nil
	}

	if err := c.store.Put(ctx, order); err != nil {
		if rerr := c.ledger.Release(ctx, event.EventID); rerr != nil {
			c.log.Error("failed to release ledger claim",
				zap.String("event_id", event.EventID), zap.Error(rerr))
		}
		return nil, fmt.Errorf("order write: %w", err)
	}

	c.log.Info("order created",
		zap.String("user_name", order.UserName),
		zap.String("order_date", order.OrderDate),
		zap.String("event_id", event.EventID),
		zap.String("total_price", total.String()),
	)
	return &key, nil
}

// nextOrderDate builds the order sort key: wall-clock time plus a monotonic
// counter so two orders for one customer in the same instant never collide.
func (c *OrderConsumer) nextOrderDate() string {
	ts := c.now().UTC().Format("2006-01-02T15:04:05.000000000Z")
	return fmt.Sprintf("%s#%06d", ts, c.seq.Add(1)%1000000)
}
