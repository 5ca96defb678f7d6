package aws

import (
	"context"
	"fmt"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"

	"github.com/kraken-commerce/backend/eventbus"
)

// BusBridge publishes envelopes to a remote EventBridge bus. It satisfies
// services.EventPublisher, so deployments can swap the in-process router for
// the managed bus without touching the checkout publisher.
type BusBridge struct {
	client  *eventbridge.Client
	busName string
}

func NewBusBridge(cfg sdkaws.Config, busName string) *BusBridge {
	if busName == "" {
		busName = eventbus.DefaultBusName
	}
	return &BusBridge{
		client:  eventbridge.NewFromConfig(cfg),
		busName: busName,
	}
}

func (b *BusBridge) Publish(ctx context.Context, env eventbus.Envelope) error {
	detail := string(env.Detail)
	out, err := b.client.PutEvents(ctx, &eventbridge.PutEventsInput{
		Entries: []types.PutEventsRequestEntry{
			{
				EventBusName: &b.busName,
				Source:       &env.Source,
				DetailType:   &env.DetailType,
				Detail:       &detail,
				Time:         &env.Time,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("eventbridge PutEvents failed: %w", err)
	}
	if out.FailedEntryCount > 0 {
		return fmt.Errorf("eventbridge rejected %d entries", out.FailedEntryCount)
	}
	return nil
}
