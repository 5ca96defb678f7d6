package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
)

// Target receives events dispatched by the router. Implementations decide the
// delivery mode: a direct handler invocation has no persistence, a buffer
// enqueue is durable once acknowledged.
type Target interface {
	Name() string
	Dispatch(ctx context.Context, env Envelope) error
}

// TargetFunc adapts a handler function into a direct-invoke Target.
type TargetFunc struct {
	TargetName string
	Handler    func(ctx context.Context, env Envelope) error
}

func (t TargetFunc) Name() string { return t.TargetName }

func (t TargetFunc) Dispatch(ctx context.Context, env Envelope) error {
	return t.Handler(ctx, env)
}

// Enqueuer is the subset of the buffer contract the router needs.
type Enqueuer interface {
	Enqueue(ctx context.Context, body []byte) (string, error)
}

// BufferTarget enqueues events on a durable buffer.
type BufferTarget struct {
	TargetName string
	Buffer     Enqueuer
}

func (t BufferTarget) Name() string { return t.TargetName }

func (t BufferTarget) Dispatch(ctx context.Context, env Envelope) error {
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}
	if _, err := t.Buffer.Enqueue(ctx, body); err != nil {
		return fmt.Errorf("enqueue to %s: %w", t.TargetName, err)
	}
	return nil
}

// TopicPublisher is a minimal interface for publishing raw messages to a topic.
type TopicPublisher interface {
	Publish(ctx context.Context, topicArn string, message []byte) error
}

// TopicTarget fans an event out to an SNS topic.
type TopicTarget struct {
	TopicArn  string
	Publisher TopicPublisher
}

func (t TopicTarget) Name() string { return t.TopicArn }

func (t TopicTarget) Dispatch(ctx context.Context, env Envelope) error {
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}
	return t.Publisher.Publish(ctx, t.TopicArn, body)
}
