package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/shopspring/decimal"

	"github.com/kraken-commerce/backend/models"
)

// CatalogRepo is the read/write contract for the product table.
type CatalogRepo interface {
	Create(ctx context.Context, product *models.Product) error
	FindByID(ctx context.Context, id string) (*models.Product, error)
	FindAll(ctx context.Context) ([]models.Product, error)
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id string) error
}

// DynamoCatalogRepo stores products in a table with primary key `id` (string).
type DynamoCatalogRepo struct {
	client *dynamodb.Client
	table  string
}

func NewDynamoCatalogRepo(client *dynamodb.Client, table string) *DynamoCatalogRepo {
	return &DynamoCatalogRepo{client: client, table: table}
}

type ddbProduct struct {
	ID          string `dynamodbav:"id"`
	Name        string `dynamodbav:"name"`
	Description string `dynamodbav:"description,omitempty"`
	ImageFile   string `dynamodbav:"imageFile,omitempty"`
	Price       string `dynamodbav:"price"`
	Category    string `dynamodbav:"category,omitempty"`
	CreatedAt   string `dynamodbav:"created_at"`
	UpdatedAt   string `dynamodbav:"updated_at"`
}

func (d *DynamoCatalogRepo) Create(ctx context.Context, product *models.Product) error {
	item, err := attributevalue.MarshalMap(toDDBProduct(product))
	if err != nil {
		return fmt.Errorf("marshal product: %w", err)
	}
	_, err = d.client.PutItem(ctx, &dynamodb.PutItemInput{TableName: &d.table, Item: item})
	if err != nil {
		return fmt.Errorf("dynamodb PutItem failed: %w", err)
	}
	return nil
}

func (d *DynamoCatalogRepo) FindByID(ctx context.Context, id string) (*models.Product, error) {
	key, err := attributevalue.MarshalMap(map[string]string{"id": id})
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
	var dp ddbProduct
	if err := attributevalue.UnmarshalMap(out.Item, &dp); err != nil {
		return nil, fmt.Errorf("unmarshal item: %w", err)
	}
	return fromDDBProduct(&dp)
}

func (d *DynamoCatalogRepo) FindAll(ctx context.Context) ([]models.Product, error) {
	out, err := d.client.Scan(ctx, &dynamodb.ScanInput{TableName: &d.table})
	if err != nil {
		return nil, fmt.Errorf("dynamodb Scan failed: %w", err)
	}
	products := make([]models.Product, 0, len(out.Items))
	for _, item := range out.Items {
		var dp ddbProduct
		if err := attributevalue.UnmarshalMap(item, &dp); err != nil {
			return nil, fmt.Errorf("unmarshal item: %w", err)
		}
		p, err := fromDDBProduct(&dp)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, nil
}

func (d *DynamoCatalogRepo) Update(ctx context.Context, product *models.Product) error {
	product.UpdatedAt = time.Now().UTC()
	return d.Create(ctx, product)
}

func (d *DynamoCatalogRepo) Delete(ctx context.Context, id string) error {
	key, err := attributevalue.MarshalMap(map[string]string{"id": id})
	if err != nil {
		return fmt.Errorf("marshal key: %w", err)
	}
	_, err = d.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{TableName: &d.table, Key: key})
	if err != nil {
		return fmt.Errorf("dynamodb DeleteItem failed: %w", err)
	}
	return nil
}

func toDDBProduct(p *models.Product) *ddbProduct {
	return &ddbProduct{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		ImageFile:   p.ImageFile,
		Price:       p.Price.String(),
		Category:    p.Category,
		CreatedAt:   p.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   p.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func fromDDBProduct(dp *ddbProduct) (*models.Product, error) {
	price, err := decimal.NewFromString(dp.Price)
	if err != nil {
		return nil, fmt.Errorf("parse price %q: %w", dp.Price, err)
	}
	p := &models.Product{
		ID:          dp.ID,
		Name:        dp.Name,
		Description: dp.Description,
		ImageFile:   dp.ImageFile,
		Price:       price,
		Category:    dp.Category,
	}
	if t, err := time.Parse(time.RFC3339, dp.CreatedAt); err == nil {
		p.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339, dp.UpdatedAt); err == nil {
		p.UpdatedAt = t
	}
	return p, nil
}
