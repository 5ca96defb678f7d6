package queue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryEnqueueReceiveAck(t *testing.T) {
	m := NewMemory(30*time.Second, 3)
	ctx := context.Background()

	id, err := m.Enqueue(ctx, []byte("hello"))
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	msg, err := m.Receive(ctx)
	require.NoError(t, err)
	require.NotNil(t, msg)
	assert.Equal(t, id, msg.ID)
	assert.Equal(t, []byte("hello"), msg.Body)
	assert.Equal(t, 1, msg.ReceiveCount)

	// In flight: not deliverable again inside the visibility window
	again, err := m.Receive(ctx)
	require.NoError(t, err)
	assert.Nil(t, again)

	require.NoError(t, m.Ack(ctx, msg))
	assert.Equal(t, 0, m.Len())
	assert.Empty(t, m.DeadLetters())
}

func TestMemoryVisibilityTimeoutRedelivers(t *testing.T) {
	m := NewMemory(30*time.Second, 5)
	ctx := context.Background()

	now := time.Now()
	m.now = func() time.Time { return now }

	_, err := m.Enqueue(ctx, []byte("order"))
	require.NoError(t, err)

	first, err := m.Receive(ctx)
	require.NoError(t, err)
	require.NotNil(t, first)

	// Window not yet elapsed
	now = now.Add(29 * time.Second)
	hidden, err := m.Receive(ctx)
	require.NoError(t, err)
	assert.Nil(t, hidden)

	// Window elapsed: redelivered with an incremented count and fresh receipt
	now = now.Add(2 * time.Second)
	second, err := m.Receive(ctx)
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 2, second.ReceiveCount)
	assert.NotEqual(t, first.ReceiptHandle, second.ReceiptHandle)

	// The first delivery's ack is now stale
	assert.ErrorIs(t, m.Ack(ctx, first), ErrStaleReceipt)
	assert.NoError(t, m.Ack(ctx, second))
}

func TestMemoryMaxReceiveCountDeadLetters(t *testing.T) {
	const maxReceive = 3

	m := NewMemory(time.Second, maxReceive)
	ctx := context.Background()

	now := time.Now()
	m.now = func() time.Time { return now }

	id, err := m.Enqueue(ctx, []byte("poison"))
	require.NoError(t, err)

	for i := 1; i <= maxReceive; i++ {
		msg, err := m.Receive(ctx)
		require.NoError(t, err)
		require.NotNil(t, msg, "delivery %d", i)
		assert.Equal(t, i, msg.ReceiveCount)
		now = now.Add(2 * time.Second)
	}

	// Budget exhausted: the next attempt moves it to dead-letter instead
	msg, err := m.Receive(ctx)
	require.NoError(t, err)
	assert.Nil(t, msg)

	dead := m.DeadLetters()
	require.Len(t, dead, 1)
	assert.Equal(t, id, dead[0].ID)
	assert.Equal(t, 0, m.Len())

	// Dead-lettered exactly once: further receives change nothing
	msg, err = m.Receive(ctx)
	require.NoError(t, err)
	assert.Nil(t, msg)
	assert.Len(t, m.DeadLetters(), 1)
}

func TestMemoryExplicitDeadLetter(t *testing.T) {
	m := NewMemory(30*time.Second, 3)
	ctx := context.Background()

	id, err := m.Enqueue(ctx, []byte("malformed"))
	require.NoError(t, err)

	msg, err := m.Receive(ctx)
	require.NoError(t, err)
	require.NotNil(t, msg)
	assert.Equal(t, 1, msg.ReceiveCount)

	require.NoError(t, m.DeadLetter(ctx, msg))
	assert.Equal(t, 0, m.Len())

	dead := m.DeadLetters()
	require.Len(t, dead, 1)
	assert.Equal(t, id, dead[0].ID)

	// Already gone
	assert.ErrorIs(t, m.Ack(ctx, msg), ErrUnknownMessage)
	assert.ErrorIs(t, m.DeadLetter(ctx, msg), ErrUnknownMessage)
}

func TestMemoryFIFOAcrossMessages(t *testing.T) {
	m := NewMemory(30*time.Second, 3)
	ctx := context.Background()

	first, err := m.Enqueue(ctx, []byte("a"))
	require.NoError(t, err)
	second, err := m.Enqueue(ctx, []byte("b"))
	require.NoError(t, err)

	msg1, err := m.Receive(ctx)
	require.NoError(t, err)
	require.NotNil(t, msg1)
	assert.Equal(t, first, msg1.ID)

	msg2, err := m.Receive(ctx)
	require.NoError(t, err)
	require.NotNil(t, msg2)
	assert.Equal(t, second, msg2.ID)
}
