package models_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/kraken-commerce/backend/models"
)

func validEvent() models.CheckoutEvent {
	return models.CheckoutEvent{
		EventID:  "evt-1",
		UserName: "swn",
		Items: []models.CartItem{
			{ProductID: "p1", ProductName: "Widget", Price: decimal.RequireFromString("10.00"), Quantity: 2},
		},
	}
}

func TestCheckoutEventValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*models.CheckoutEvent)
		wantErr string
	}{
		{
			name:   "valid",
			mutate: func(e *models.CheckoutEvent) {},
		},
		{
			name:    "missing event id",
			mutate:  func(e *models.CheckoutEvent) { e.EventID = "" },
			wantErr: "missing event_id",
		},
		{
			name:    "missing user name",
			mutate:  func(e *models.CheckoutEvent) { e.UserName = "" },
			wantErr: "missing user_name",
		},
		{
			name:    "no items",
			mutate:  func(e *models.CheckoutEvent) { e.Items = nil },
			wantErr: "empty item set",
		},
		{
			name:    "item without product id",
			mutate:  func(e *models.CheckoutEvent) { e.Items[0].ProductID = "" },
			wantErr: "item missing product_id",
		},
		{
			name:    "zero quantity",
			mutate:  func(e *models.CheckoutEvent) { e.Items[0].Quantity = 0 },
			wantErr: "item quantity must be positive",
		},
		{
			name:    "negative price",
			mutate:  func(e *models.CheckoutEvent) { e.Items[0].Price = decimal.RequireFromString("-1") },
			wantErr: "item price must not be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := validEvent()
			tt.mutate(&ev)
			err := ev.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.EqualError(t, err, tt.wantErr)
			}
		})
	}
}
