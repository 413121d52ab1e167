package handlers

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"ivorybeauty/internal/models"
)

func TestBuildOrderViewFormatting(t *testing.T) {
	order := models.Order{
		ID: primitive.NewObjectID(),
		Items: []models.OrderItem{
			{Name: "Shea Soap", Quantity: 2, PriceAtPurchase: 5000},
		},
		Subtotal:     10000,
		Tax:          375,
		ShippingCost: 0,
		Total:        10375,
		Status:       models.OrderStatusProcessing,
		CreatedAt:    time.Date(2024, time.March, 7, 9, 30, 0, 0, time.UTC),
	}

	view := buildOrderView(order)

	if view.FormattedTotal != "₦10,375.00" {
		t.Errorf("unexpected formatted total: %q", view.FormattedTotal)
	}
	if view.FormattedDate != "Mar 7, 2024" {
		t.Errorf("unexpected formatted date: %q", view.FormattedDate)
	}
	if len(view.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(view.Items))
	}
	if view.Items[0].LineTotal != 10000 {
		t.Errorf("unexpected line total: %v", view.Items[0].LineTotal)
	}
	if view.Items[0].FormattedPrice != "₦5,000.00" {
		t.Errorf("unexpected formatted price: %q", view.Items[0].FormattedPrice)
	}
}
