package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/kraken-commerce/backend/eventbus"
	"github.com/kraken-commerce/backend/queue"
)

// BufferWorker pumps the durable buffer into the order consumer. A successful
// handle acks the message; a permanent failure dead-letters it immediately; a
// transient failure leaves it for redelivery after the visibility timeout.
type BufferWorker struct {
	buffer   queue.Buffer
	consumer *OrderConsumer
	log      *zap.Logger

	idlePause time.Duration
}

func NewBufferWorker(buffer queue.Buffer, consumer *OrderConsumer, log *zap.Logger) *BufferWorker {
	return &BufferWorker{
		buffer:    buffer,
		consumer:  consumer,
		log:       log,
		idlePause: 100 * time.Millisecond,
	}
}

// Run polls until the context is cancelled.
func (w *BufferWorker) Run(ctx context.Context) error {
	w.log.Info("buffer worker started")
	for {
		select {
		case <-ctx.Done():
			w.log.Info("buffer worker stopped")
			return ctx.Err()
		default:
		}

		msg, err := w.buffer.Receive(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			w.log.Error("receive failed", zap.Error(err))
			continue
		}
		if msg == nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(w.idlePause):
			}
			continue
		}

		w.handle(ctx, msg)
	}
}

// DrainOnce processes at most one message; used by tests and manual replays.
func (w *BufferWorker) DrainOnce(ctx context.Context) (bool, error) {
	msg, err := w.buffer.Receive(ctx)
	if err != nil || msg == nil {
		return false, err
	}
	w.handle(ctx, msg)
	return true, nil
}

func (w *BufferWorker) handle(ctx context.Context, msg *queue.Message) {
	var env eventbus.Envelope
	if err := json.Unmarshal(msg.Body, &env); err != nil {
		w.log.Error("undecodable message, dead-lettering",
			zap.String("message_id", msg.ID), zap.Error(err))
		w.deadLetter(ctx, msg)
		return
	}

	err := w.consumer.HandleEnvelope(ctx, env)
	switch {
	case err == nil:
		if err := w.buffer.Ack(ctx, msg); err != nil {
			w.log.Warn("ack failed, message may be redelivered",
				zap.String("message_id", msg.ID), zap.Error(err))
		}
	case IsPermanent(err):
		w.log.Error("permanent failure, dead-lettering",
			zap.String("message_id", msg.ID),
			zap.String("event_id", env.ID),
			zap.Error(err))
		w.deadLetter(ctx, msg)
	default:
		// Transient: leave unacked, the visibility timeout brings it back.
		w.log.Warn("transient failure, leaving for redelivery",
			zap.String("message_id", msg.ID),
			zap.Int("receive_count", msg.ReceiveCount),
			zap.Error(err))
	}
}

func (w *BufferWorker) deadLetter(ctx context.Context, msg *queue.Message) {
	if err := w.buffer.DeadLetter(ctx, msg); err != nil {
		w.log.Error("dead-letter failed",
			zap.String("message_id", msg.ID), zap.Error(err))
	}
}
