package queue

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultVisibilityTimeout = 30 * time.Second
	DefaultMaxReceiveCount   = 3
)

var (
	ErrUnknownMessage = errors.New("message not in flight")
	ErrStaleReceipt   = errors.New("stale receipt handle")
)

type entry struct {
	msg       Message
	visibleAt time.Time
}

// Memory is an in-process Buffer with explicit visibility and redelivery
// state. It backs the buffered pipeline variant in tests and local runs.
type Memory struct {
	mu                sync.Mutex
	visibilityTimeout time.Duration
	maxReceiveCount   int

	order   []string
	entries map[string]*entry
	dead    []Message

	now func() time.Time
}

func NewMemory(visibilityTimeout time.Duration, maxReceiveCount int) *Memory {
	if visibilityTimeout <= 0 {
		visibilityTimeout = DefaultVisibilityTimeout
	}
	if maxReceiveCount <= 0 {
		maxReceiveCount = DefaultMaxReceiveCount
	}
	return &Memory{
		visibilityTimeout: visibilityTimeout,
		maxReceiveCount:   maxReceiveCount,
		entries:           make(map[string]*entry),
		now:               time.Now,
	}
}

func (m *Memory) Enqueue(ctx context.Context, body []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := uuid.NewString()
	m.entries[id] = &entry{
		msg: Message{ID: id, Body: append([]byte(nil), body...)},
	}
	m.order = append(m.order, id)
	return id, nil
}

// Receive returns the next visible message, hiding it for the visibility
// window. It returns (nil, nil) when nothing is deliverable right now. A
// message whose next delivery would exceed the max receive count is moved to
// the dead-letter channel instead.
func (m *Memory) Receive(ctx context.Context) (*Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	ids := append([]string(nil), m.order...)
	for _, id := range ids {
		e, ok := m.entries[id]
		if !ok || now.Before(e.visibleAt) {
			continue
		}

		if e.msg.ReceiveCount >= m.maxReceiveCount {
			m.moveToDeadLocked(id)
			continue
		}

		e.msg.ReceiveCount++
		e.msg.ReceiptHandle = uuid.NewString()
		e.visibleAt = now.Add(m.visibilityTimeout)

		msg := e.msg
		return &msg, nil
	}
	return nil, nil
}

func (m *Memory) Ack(ctx context.Context, msg *Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[msg.ID]
	if !ok {
		return ErrUnknownMessage
	}
	if e.msg.ReceiptHandle != msg.ReceiptHandle {
		// The visibility window elapsed and the message was handed to
		// someone else; this ack no longer owns it.
		return ErrStaleReceipt
	}
	m.removeLocked(msg.ID)
	return nil
}

func (m *Memory) DeadLetter(ctx context.Context, msg *Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.entries[msg.ID]; !ok {
		return ErrUnknownMessage
	}
	m.moveToDeadLocked(msg.ID)
	return nil
}

// DeadLetters returns a snapshot of the dead-letter channel for inspection.
func (m *Memory) DeadLetters() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Message(nil), m.dead...)
}

// Len reports the number of live (not dead-lettered) messages.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *Memory) moveToDeadLocked(id string) {
	e := m.entries[id]
	e.msg.ReceiptHandle = ""
	m.dead = append(m.dead, e.msg)
	m.removeLocked(id)
}

func (m *Memory) removeLocked(id string) {
	delete(m.entries, id)
	for i, v := range m.order {
		if v == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}
