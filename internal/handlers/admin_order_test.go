package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"ivorybeauty/internal/models"
)

func TestValidateOrderStatus(t *testing.T) {
	for status := range models.AllowedOrderStatuses {
		if err := validateOrderStatus(status); err != nil {
			t.Errorf("status %q should be allowed: %v", status, err)
		}
	}
	for _, status := range []string{"archived", "PROCESSING", "", "refunded"} {
		if err := validateOrderStatus(status); err == nil {
			t.Errorf("status %q should be rejected", status)
		}
	}
}

func TestUpdateOrderStatusRejectsUnsupportedValue(t *testing.T) {
	gin.SetMode(gin.TestMode)
	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)

	body := bytes.NewBufferString(`{"status":"archived"}`)
	c.Request = httptest.NewRequest(http.MethodPatch, "/admin/orders/x/status", body)
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: primitive.NewObjectID().Hex()}}

	// Validation fails before any storage access.
	UpdateOrderStatus(nil)(c)

	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", recorder.Code)
	}
	if !strings.Contains(recorder.Body.String(), "archived") {
		t.Errorf("response should name the rejected status: %s", recorder.Body.String())
	}
}

func TestOrderCSVRecord(t *testing.T) {
	orderID := primitive.NewObjectID()
	order := models.Order{
		ID: orderID,
		Items: []models.OrderItem{
			{Name: "Shea Soap", Quantity: 2, PriceAtPurchase: 5000},
			{Name: "Night Cream", Quantity: 1, PriceAtPurchase: 375},
		},
		ShippingInfo: models.ShippingInfo{
			FirstName: "Ada",
			LastName:  "Obi",
			Email:     "ada@example.com",
		},
		PaymentInfo:  models.PaymentInfo{Reference: "ref_123"},
		Subtotal:     10375,
		Tax:          375,
		ShippingCost: 0,
		Total:        10750,
		Status:       models.OrderStatusProcessing,
		CreatedAt:    time.Date(2024, time.March, 7, 12, 0, 0, 0, time.UTC),
	}

	record := orderCSVRecord(order)

	if len(record) != len(orderCSVHeader) {
		t.Fatalf("record has %d fields, header has %d", len(record), len(orderCSVHeader))
	}
	if record[0] != orderID.Hex() {
		t.Errorf("unexpected order id column: %q", record[0])
	}
	if record[1] != "Mar 7, 2024" {
		t.Errorf("unexpected date column: %q", record[1])
	}
	if record[2] != "Ada Obi" {
		t.Errorf("unexpected customer column: %q", record[2])
	}
	if record[4] != "Shea Soap x 2; Night Cream x 1" {
		t.Errorf("unexpected items column: %q", record[4])
	}
	if record[8] != "10750.00" {
		t.Errorf("unexpected total column: %q", record[8])
	}
	if record[9] != "processing" {
		t.Errorf("unexpected status column: %q", record[9])
	}
}

func TestCustomerLabelFallsBackToGuest(t *testing.T) {
	if got := customerLabel(models.Order{}); got != "Guest" {
		t.Errorf("expected Guest, got %q", got)
	}

	order := models.Order{ShippingInfo: models.ShippingInfo{FirstName: "Ada", LastName: "Obi"}}
	if got := customerLabel(order); got != "Ada Obi" {
		t.Errorf("expected Ada Obi, got %q", got)
	}
}
