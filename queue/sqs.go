package queue

import (
	"context"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

// SQS implements Buffer on an SQS queue pair. Redelivery counting past the
// redrive maximum is enforced by the queue's redrive policy; DeadLetter covers
// the permanent-failure path by moving the message to the dead-letter queue
// without waiting for the budget to drain.
type SQS struct {
	client            *sqs.Client
	queueURL          string
	deadLetterURL     string
	visibilityTimeout int32
	waitTimeSeconds   int32
}

func NewSQS(cfg aws.Config, queueURL, deadLetterURL string, visibilityTimeout int32) *SQS {
	if visibilityTimeout <= 0 {
		visibilityTimeout = 30
	}
	return &SQS{
		client:            sqs.NewFromConfig(cfg),
		queueURL:          queueURL,
		deadLetterURL:     deadLetterURL,
		visibilityTimeout: visibilityTimeout,
		waitTimeSeconds:   20, // Long polling
	}
}

// GetQueueURL retrieves the URL for a queue name.
func GetQueueURL(ctx context.Context, cfg aws.Config, queueName string) (string, error) {
	client := sqs.NewFromConfig(cfg)
	result, err := client.GetQueueUrl(ctx, &sqs.GetQueueUrlInput{
		QueueName: &queueName,
	})
	if err != nil {
		return "", fmt.Errorf("failed to get queue URL: %w", err)
	}
	return *result.QueueUrl, nil
}

func (s *SQS) Enqueue(ctx context.Context, body []byte) (string, error) {
	msgBody := string(body)
	out, err := s.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    &s.queueURL,
		MessageBody: &msgBody,
	})
	if err != nil {
		return "", fmt.Errorf("failed to send message: %w", err)
	}
	return *out.MessageId, nil
}

func (s *SQS) Receive(ctx context.Context) (*Message, error) {
	result, err := s.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            &s.queueURL,
		MaxNumberOfMessages: 1,
		WaitTimeSeconds:     s.waitTimeSeconds,
		VisibilityTimeout:   s.visibilityTimeout,
		MessageSystemAttributeNames: []types.MessageSystemAttributeName{
			types.MessageSystemAttributeNameApproximateReceiveCount,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to receive messages: %w", err)
	}
	if len(result.Messages) == 0 {
		return nil, nil
	}

	raw := result.Messages[0]
	msg := &Message{
		ID:            aws.ToString(raw.MessageId),
		Body:          []byte(aws.ToString(raw.Body)),
		ReceiptHandle: aws.ToString(raw.ReceiptHandle),
	}
	if v, ok := raw.Attributes[string(types.MessageSystemAttributeNameApproximateReceiveCount)]; ok {
		if n, err := strconv.Atoi(v); err == nil {
			msg.ReceiveCount = n
		}
	}
	return msg, nil
}

func (s *SQS) Ack(ctx context.Context, msg *Message) error {
	_, err := s.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      &s.queueURL,
		ReceiptHandle: &msg.ReceiptHandle,
	})
	if err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	return nil
}

func (s *SQS) DeadLetter(ctx context.Context, msg *Message) error {
	if s.deadLetterURL == "" {
		return fmt.Errorf("no dead-letter queue configured")
	}
	body := string(msg.Body)
	_, err := s.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    &s.deadLetterURL,
		MessageBody: &body,
	})
	if err != nil {
		return fmt.Errorf("failed to dead-letter message: %w", err)
	}
	return s.Ack(ctx, msg)
}
