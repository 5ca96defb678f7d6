// Package queue provides the durable buffer between the event router and the
// order consumer: at-least-once delivery with a visibility timeout, bounded
// redelivery, and a dead-letter channel for messages that exhaust their budget
// or fail permanently.
package queue

import "context"

// Message is one buffered event. ReceiveCount is the number of times the
// message has been handed to a consumer, including the current delivery.
type Message struct {
	ID            string
	Body          []byte
	ReceiveCount  int
	ReceiptHandle string
}

// Buffer is an at-least-once message buffer.
//
// Enqueue is durable once it returns. Receive hands a message to exactly one
// consumer for the visibility window; an unacknowledged message becomes
// visible again and is redelivered with an incremented receive count. Once the
// count would exceed the configured maximum the message is moved to the
// dead-letter channel instead of being redelivered. Ack removes a processed
// message; DeadLetter moves a message straight to the dead-letter channel for
// permanent failures. Dead-lettered messages are kept for inspection, never
// deleted.
type Buffer interface {
	Enqueue(ctx context.Context, body []byte) (string, error)
	Receive(ctx context.Context) (*Message, error)
	Ack(ctx context.Context, msg *Message) error
	DeadLetter(ctx context.Context, msg *Message) error
}
