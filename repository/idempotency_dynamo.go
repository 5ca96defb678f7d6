package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoLedger stores idempotency records in a table with partition key
// `eventId`. The write-once semantics come from a conditional PutItem.
type DynamoLedger struct {
	client *dynamodb.Client
	table  string
}

func NewDynamoLedger(client *dynamodb.Client, table string) *DynamoLedger {
	return &DynamoLedger{client: client, table: table}
}

type ddbLedgerEntry struct {
	EventID   string `dynamodbav:"eventId"`
	UserName  string `dynamodbav:"userName"`
	OrderDate string `dynamodbav:"orderDate"`
}

func (l *DynamoLedger) Get(ctx context.Context, eventID string) (*OrderKey, error) {
	key, err := attributevalue.MarshalMap(map[string]string{"eventId": eventID})
	if err != nil {
		return nil, fmt.Errorf("marshal key: %w", err)
	}

	out, err := l.client.GetItem(ctx, &dynamodb.GetItemInput{TableName: &l.table, Key: key})
	if err != nil {
		return nil, fmt.Errorf("dynamodb GetItem failed: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}

	var entry ddbLedgerEntry
	if err := attributevalue.UnmarshalMap(out.Item, &entry); err != nil {
		return nil, fmt.Errorf("unmarshal item: %w", err)
	}
	return &OrderKey{UserName: entry.UserName, OrderDate: entry.OrderDate}, nil
}

func (l *DynamoLedger) Claim(ctx context.Context, eventID string, orderKey OrderKey) (bool, *OrderKey, error) {
	item, err := attributevalue.MarshalMap(ddbLedgerEntry{
		EventID:   eventID,
		UserName:  orderKey.UserName,
		OrderDate: orderKey.OrderDate,
	})
	if err != nil {
		return false, nil, fmt.Errorf("marshal ledger entry: %w", err)
	}

	_, err = l.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           &l.table,
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(eventId)"),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			existing, gerr := l.Get(ctx, eventID)
			if gerr != nil {
				return false, nil, gerr
			}
			return false, existing, nil
		}
		return false, nil, fmt.Errorf("dynamodb PutItem failed: %w", err)
	}
	return true, &orderKey, nil
}

func (l *DynamoLedger) Release(ctx context.Context, eventID string) error {
	key, err := attributevalue.MarshalMap(map[string]string{"eventId": eventID})
	if err != nil {
		return fmt.Errorf("marshal key: %w", err)
	}
	_, err = l.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{TableName: &l.table, Key: key})
	if err != nil {
		return fmt.Errorf("dynamodb DeleteItem failed: %w", err)
	}
	return nil
}
