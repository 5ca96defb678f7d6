package repository

import (
	"context"
	"sync"
)

// MemoryLedger is an in-process IdempotencyLedger.
type MemoryLedger struct {
	mu      sync.Mutex
	entries map[string]OrderKey
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{entries: make(map[string]OrderKey)}
}

func (l *MemoryLedger) Get(ctx context.Context, eventID string) (*OrderKey, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if key, ok := l.entries[eventID]; ok {
		return &key, nil
	}
	return nil, nil
}

func (l *MemoryLedger) Claim(ctx context.Context, eventID string, key OrderKey) (bool, *OrderKey, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if existing, ok := l.entries[eventID]; ok {
		return false, &existing, nil
	}
	l.entries[eventID] = key
	return true, &key, nil
}

func (l *MemoryLedger) Release(ctx context.Context, eventID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.entries, eventID)
	return nil
}
