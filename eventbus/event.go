package eventbus

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Event constants for the checkout pipeline.
const (
	SourceCart             = "com.kraken.cart"
	DetailTypeCheckoutCart = "CheckoutCart"
	DefaultBusName         = "KrakenEventBus"
)

// Envelope is the wire format published to the bus and enqueued on the buffer.
// Detail is the domain payload; Source and DetailType drive rule matching.
type Envelope struct {
	ID         string          `json:"id"`
	Source     string          `json:"source"`
	DetailType string          `json:"detail-type"`
	Time       time.Time       `json:"time"`
	Detail     json.RawMessage `json:"detail"`
}

// NewEnvelope wraps a detail payload in a fresh envelope.
func NewEnvelope(source, detailType string, detail any) (Envelope, error) {
	raw, err := json.Marshal(detail)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal event detail: %w", err)
	}
	return Envelope{
		ID:         uuid.NewString(),
		Source:     source,
		DetailType: detailType,
		Time:       time.Now().UTC(),
		Detail:     raw,
	}, nil
}
