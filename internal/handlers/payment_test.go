package handlers

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"ivorybeauty/internal/config"
	"ivorybeauty/internal/models"
)

func TestBuildOrderItemsFreezesPrices(t *testing.T) {
	soap := primitive.NewObjectID()
	cream := primitive.NewObjectID()
	items := []models.CartItem{
		{ProductID: soap, Quantity: 2},
		{ProductID: cream, Quantity: 1},
	}
	products := map[primitive.ObjectID]models.Product{
		soap:  {ID: soap, Name: "Shea Soap", Price: 5000, Quantity: 10},
		cream: {ID: cream, Name: "Night Cream", Price: 375, Quantity: 3},
	}

	orderItems, subtotal, err := buildOrderItems(items, products)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if subtotal != 10375 {
		t.Errorf("expected subtotal 10375, got %v", subtotal)
	}
	if orderItems[0].PriceAtPurchase != 5000 {
		t.Errorf("expected frozen price 5000, got %v", orderItems[0].PriceAtPurchase)
	}

	// A later price change must not leak into the snapshot.
	product := products[soap]
	product.Price = 9999
	products[soap] = product
	if orderItems[0].PriceAtPurchase != 5000 {
		t.Errorf("priceAtPurchase changed after product edit: %v", orderItems[0].PriceAtPurchase)
	}
}

func TestBuildOrderItemsInsufficientStockNamesProduct(t *testing.T) {
	soap := primitive.NewObjectID()
	items := []models.CartItem{{ProductID: soap, Quantity: 5}}
	products := map[primitive.ObjectID]models.Product{
		soap: {ID: soap, Name: "Shea Soap", Price: 1500, Quantity: 2},
	}

	orderItems, _, err := buildOrderItems(items, products)
	if err == nil {
		t.Fatal("expected stock error")
	}
	if orderItems != nil {
		t.Error("no order items should be produced on stock failure")
	}
	if !strings.Contains(err.Error(), "Shea Soap") {
		t.Errorf("error should name the product, got %q", err.Error())
	}
}

func TestBuildOrderItemsMissingProduct(t *testing.T) {
	items := []models.CartItem{{ProductID: primitive.NewObjectID(), Quantity: 1}}

	_, _, err := buildOrderItems(items, map[primitive.ObjectID]models.Product{})
	if err == nil {
		t.Fatal("expected error for vanished product")
	}
}

func TestResolveShippingCost(t *testing.T) {
	if cost, known := resolveShippingCost("standard"); !known || cost != 0 {
		t.Errorf("standard: got (%v, %v)", cost, known)
	}
	if cost, known := resolveShippingCost("express"); !known || cost != 9.99 {
		t.Errorf("express: got (%v, %v)", cost, known)
	}
	if _, known := resolveShippingCost("carrier-pigeon"); known {
		t.Error("unknown method should not resolve")
	}
}

func newWebhookContext(t *testing.T, body, signature string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request = httptest.NewRequest(http.MethodPost, "/payments/webhook", strings.NewReader(body))
	if signature != "" {
		c.Request.Header.Set("x-paystack-signature", signature)
	}
	return c, recorder
}

func signWebhookBody(secret, body string) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write([]byte(body))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestPaystackWebhookMissingSignature(t *testing.T) {
	c, recorder := newWebhookContext(t, `{"event":"charge.success"}`, "")

	PaystackWebhook(nil)(c)
	c.Writer.WriteHeaderNow()

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", recorder.Code)
	}
}

func TestPaystackWebhookBadSignature(t *testing.T) {
	config.AppEnv.PaystackSecretKey = "sk_test_secret"
	c, recorder := newWebhookContext(t, `{"event":"charge.success"}`, "deadbeef")

	PaystackWebhook(nil)(c)
	c.Writer.WriteHeaderNow()

	if recorder.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", recorder.Code)
	}
}

func TestPaystackWebhookIgnoresOtherEvents(t *testing.T) {
	config.AppEnv.PaystackSecretKey = "sk_test_secret"
	body := `{"event":"charge.dispute.create","data":{"reference":"ref_1"}}`
	c, recorder := newWebhookContext(t, body, signWebhookBody("sk_test_secret", body))

	// No db access happens for non charge.success events.
	PaystackWebhook(nil)(c)

	if recorder.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", recorder.Code)
	}
}

func TestParsePaidAt(t *testing.T) {
	parsed := parsePaidAt("2024-03-07T15:04:05.000Z")
	if parsed.Year() != 2024 || parsed.Month() != time.March {
		t.Errorf("unexpected parse result: %v", parsed)
	}

	// Unparseable values fall back to now rather than zero time.
	if parsePaidAt("not-a-date").IsZero() {
		t.Error("fallback should not be the zero time")
	}
}
