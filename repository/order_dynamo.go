package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/shopspring/decimal"

	"github.com/kraken-commerce/backend/models"
)

// DynamoOrderStore stores orders in a table with partition key `userName` and
// sort key `orderDate`.
type DynamoOrderStore struct {
	client *dynamodb.Client
	table  string
}

func NewDynamoOrderStore(client *dynamodb.Client, table string) *DynamoOrderStore {
	return &DynamoOrderStore{client: client, table: table}
}

type ddbOrderItem struct {
	ProductID   string `dynamodbav:"product_id"`
	ProductName string `dynamodbav:"product_name"`
	Color       string `dynamodbav:"color,omitempty"`
	Price       string `dynamodbav:"price"`
	Quantity    int    `dynamodbav:"quantity"`
}

type ddbOrder struct {
	UserName      string         `dynamodbav:"userName"`
	OrderDate     string         `dynamodbav:"orderDate"`
	EventID       string         `dynamodbav:"eventId"`
	Items         []ddbOrderItem `dynamodbav:"items"`
	TotalPrice    string         `dynamodbav:"totalPrice"`
	FirstName     string         `dynamodbav:"firstName,omitempty"`
	LastName      string         `dynamodbav:"lastName,omitempty"`
	Email         string         `dynamodbav:"email,omitempty"`
	Address       string         `dynamodbav:"address,omitempty"`
	PaymentMethod string         `dynamodbav:"paymentMethod,omitempty"`
	PaymentRef    string         `dynamodbav:"paymentRef,omitempty"`
}

func (d *DynamoOrderStore) Put(ctx context.Context, order *models.Order) error {
	item, err := attributevalue.MarshalMap(toDDBOrder(order))
	if err != nil {
		return fmt.Errorf("marshal order: %w", err)
	}

	_, err = d.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           &d.table,
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(userName) AND attribute_not_exists(orderDate)"),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return ErrOrderExists
		}
		return fmt.Errorf("dynamodb PutItem failed: %w", err)
	}
	return nil
}

func (d *DynamoOrderStore) Get(ctx context.Context, userName, orderDate string) (*models.Order, error) {
	key, err := attributevalue.MarshalMap(map[string]string{
		"userName":  userName,
		"orderDate": orderDate,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal key: %w", err)
	}

	out, err := d.client.GetItem(ctx, &dynamodb.GetItemInput{TableName: &d.table, Key: key})
	if err != nil {
		return nil, fmt.Errorf("dynamodb GetItem failed: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}

	var do ddbOrder
	if err := attributevalue.UnmarshalMap(out.Item, &do); err != nil {
		return nil, fmt.Errorf("unmarshal item: %w", err)
	}
	return fromDDBOrder(&do)
}

func (d *DynamoOrderStore) List(ctx context.Context, userName string, filter OrderFilter) ([]models.Order, error) {
	keyCond := "userName = :u"
	values := map[string]types.AttributeValue{
		":u": &types.AttributeValueMemberS{Value: userName},
	}
	if filter.OrderDate != "" {
		if filter.Prefix {
			keyCond += " AND begins_with(orderDate, :d)"
		} else {
			keyCond += " AND orderDate = :d"
		}
		values[":d"] = &types.AttributeValueMemberS{Value: filter.OrderDate}
	}

	out, err := d.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 &d.table,
		KeyConditionExpression:    &keyCond,
		ExpressionAttributeValues: values,
	})
	if err != nil {
		return nil, fmt.Errorf("dynamodb Query failed: %w", err)
	}
	return unmarshalOrders(out.Items)
}

func (d *DynamoOrderStore) ListAll(ctx context.Context) ([]models.Order, error) {
	out, err := d.client.Scan(ctx, &dynamodb.ScanInput{TableName: &d.table})
	if err != nil {
		return nil, fmt.Errorf("dynamodb Scan failed: %w", err)
	}
	return unmarshalOrders(out.Items)
}

func unmarshalOrders(items []map[string]types.AttributeValue) ([]models.Order, error) {
	orders := make([]models.Order, 0, len(items))
	for _, item := range items {
		var do ddbOrder
		if err := attributevalue.UnmarshalMap(item, &do); err != nil {
			return nil, fmt.Errorf("unmarshal item: %w", err)
		}
		o, err := fromDDBOrder(&do)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	return orders, nil
}

func toDDBOrder(order *models.Order) *ddbOrder {
	do := &ddbOrder{
		UserName:      order.UserName,
		OrderDate:     order.OrderDate,
		EventID:       order.EventID,
		TotalPrice:    order.TotalPrice.String(),
		FirstName:     order.FirstName,
		LastName:      order.LastName,
		Email:         order.Email,
		Address:       order.Address,
		PaymentMethod: order.PaymentMethod,
		PaymentRef:    order.PaymentRef,
	}
	for _, it := range order.Items {
		do.Items = append(do.Items, ddbOrderItem{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Color:       it.Color,
			Price:       it.Price.String(),
			Quantity:    it.Quantity,
		})
	}
	return do
}

func fromDDBOrder(do *ddbOrder) (*models.Order, error) {
	total, err := decimal.NewFromString(do.TotalPrice)
	if err != nil {
		return nil, fmt.Errorf("parse totalPrice %q: %w", do.TotalPrice, err)
	}
	o := &models.Order{
		UserName:      do.UserName,
		OrderDate:     do.OrderDate,
		EventID:       do.EventID,
		TotalPrice:    total,
		FirstName:     do.FirstName,
		LastName:      do.LastName,
		Email:         do.Email,
		Address:       do.Address,
		PaymentMethod: do.PaymentMethod,
		PaymentRef:    do.PaymentRef,
	}
	for _, it := range do.Items {
		price, err := decimal.NewFromString(it.Price)
		if err != nil {
			return nil, fmt.Errorf("parse item price %q: %w", it.Price, err)
		}
		o.Items = append(o.Items, models.CartItem{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Color:       it.Color,
			Price:       price,
			Quantity:    it.Quantity,
		})
	}
	return o, nil
}
