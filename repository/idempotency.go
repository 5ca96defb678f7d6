package repository

import "context"

// IdempotencyLedger records which checkout event ids have already produced an
// order. Claim is write-once: exactly one concurrent claimer for an event id
// wins; losers get the winner's order key back. This is what serializes racing
// redeliveries of the same event.
type IdempotencyLedger interface {
	// Get returns the order key recorded for the event, if any.
	Get(ctx context.Context, eventID string) (*OrderKey, error)
	// Claim conditionally records eventID -> key. It returns (true, key) when
	// this caller won the claim, or (false, existing) when another already holds it.
	Claim(ctx context.Context, eventID string, key OrderKey) (bool, *OrderKey, error)
	// Release removes a claim whose order write failed, so a redelivery can
	// process the event again.
	Release(ctx context.Context, eventID string) error
}
