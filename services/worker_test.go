package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kraken-commerce/backend/eventbus"
	"github.com/kraken-commerce/backend/models"
	"github.com/kraken-commerce/backend/queue"
	"github.com/kraken-commerce/backend/repository"
)

func enqueueCheckout(t *testing.T, buf queue.Buffer, event *models.CheckoutEvent) {
	t.Helper()
	env, err := eventbus.NewEnvelope(eventbus.SourceCart, eventbus.DetailTypeCheckoutCart, event)
	require.NoError(t, err)
	env.ID = event.EventID

	target := eventbus.BufferTarget{TargetName: "checkout-queue", Buffer: buf}
	require.NoError(t, target.Dispatch(context.Background(), env))
}

func TestWorkerProcessesAndAcks(t *testing.T) {
	buf := queue.NewMemory(30*time.Second, 3)
	store := repository.NewMemoryOrderStore()
	consumer := NewOrderConsumer(store, repository.NewMemoryLedger(), zap.NewNop())
	worker := NewBufferWorker(buf, consumer, zap.NewNop())
	ctx := context.Background()

	enqueueCheckout(t, buf, checkoutEvent("evt-ok"))

	handled, err := worker.DrainOnce(ctx)
	require.NoError(t, err)
	assert.True(t, handled)

	orders, err := store.List(ctx, "swn", repository.OrderFilter{})
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "evt-ok", orders[0].EventID)

	assert.Equal(t, 0, buf.Len())
	assert.Empty(t, buf.DeadLetters())
}

func TestWorkerDeadLettersMalformedEventImmediately(t *testing.T) {
	buf := queue.NewMemory(30*time.Second, 3)
	store := repository.NewMemoryOrderStore()
	consumer := NewOrderConsumer(store, repository.NewMemoryLedger(), zap.NewNop())
	worker := NewBufferWorker(buf, consumer, zap.NewNop())
	ctx := context.Background()

	evt := checkoutEvent("evt-malformed")
	evt.UserName = "" // permanent validation failure
	enqueueCheckout(t, buf, evt)

	handled, err := worker.DrainOnce(ctx)
	require.NoError(t, err)
	assert.True(t, handled)

	// Straight to dead-letter on the first delivery, no retries burned
	dead := buf.DeadLetters()
	require.Len(t, dead, 1)
	assert.Equal(t, 1, dead[0].ReceiveCount)
	assert.Equal(t, 0, buf.Len())

	orders, err := store.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestWorkerLeavesTransientFailureForRedelivery(t *testing.T) {
	const maxReceive = 2

	buf := queue.NewMemory(time.Millisecond, maxReceive)
	store := &failingOrderStore{MemoryOrderStore: repository.NewMemoryOrderStore(), failures: 100}
	consumer := NewOrderConsumer(store, repository.NewMemoryLedger(), zap.NewNop())
	worker := NewBufferWorker(buf, consumer, zap.NewNop())
	ctx := context.Background()

	enqueueCheckout(t, buf, checkoutEvent("evt-throttled"))

	// Every delivery fails transiently; the budget drains and the message
	// lands in dead-letter rather than being lost.
	for i := 0; i < maxReceive+1; i++ {
		_, err := worker.DrainOnce(ctx)
		require.NoError(t, err)
		time.Sleep(5 * time.Millisecond)
	}

	dead := buf.DeadLetters()
	require.Len(t, dead, 1)
	assert.Equal(t, 0, buf.Len())

	orders, err := store.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestWorkerSuppressesRedeliveredDuplicate(t *testing.T) {
	buf := queue.NewMemory(30*time.Second, 3)
	store := repository.NewMemoryOrderStore()
	consumer := NewOrderConsumer(store, repository.NewMemoryLedger(), zap.NewNop())
	worker := NewBufferWorker(buf, consumer, zap.NewNop())
	ctx := context.Background()

	// The same event enqueued twice, as a redelivering transport would
	evt := checkoutEvent("evt-twice")
	enqueueCheckout(t, buf, evt)
	enqueueCheckout(t, buf, evt)

	for i := 0; i < 2; i++ {
		handled, err := worker.DrainOnce(ctx)
		require.NoError(t, err)
		assert.True(t, handled)
	}

	orders, err := store.List(ctx, "swn", repository.OrderFilter{})
	require.NoError(t, err)
	assert.Len(t, orders, 1)
	assert.Equal(t, 0, buf.Len())
	assert.Empty(t, buf.DeadLetters())
}

func TestWorkerDeadLettersUndecodableMessage(t *testing.T) {
	buf := queue.NewMemory(30*time.Second, 3)
	consumer := NewOrderConsumer(repository.NewMemoryOrderStore(), repository.NewMemoryLedger(), zap.NewNop())
	worker := NewBufferWorker(buf, consumer, zap.NewNop())
	ctx := context.Background()

	_, err := buf.Enqueue(ctx, []byte("{not json"))
	require.NoError(t, err)

	handled, err := worker.DrainOnce(ctx)
	require.NoError(t, err)
	assert.True(t, handled)
	assert.Len(t, buf.DeadLetters(), 1)
}

func TestBufferTargetRoundTrip(t *testing.T) {
	buf := queue.NewMemory(30*time.Second, 3)
	ctx := context.Background()

	evt := checkoutEvent("evt-roundtrip")
	enqueueCheckout(t, buf, evt)

	msg, err := buf.Receive(ctx)
	require.NoError(t, err)
	require.NotNil(t, msg)

	var env eventbus.Envelope
	require.NoError(t, json.Unmarshal(msg.Body, &env))
	assert.Equal(t, "evt-roundtrip", env.ID)

	var detail models.CheckoutEvent
	require.NoError(t, json.Unmarshal(env.Detail, &detail))
	assert.Equal(t, evt.UserName, detail.UserName)
	assert.Len(t, detail.Items, len(evt.Items))
}
