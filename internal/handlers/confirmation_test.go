package handlers

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"ivorybeauty/internal/models"
	"ivorybeauty/internal/paystack"
)

// applyGuardedConfirmation mirrors the storage semantics markOrderPaid
// relies on: the update applies only when the stored order matches the
// filter, and the pre-image is returned to the winner.
func applyGuardedConfirmation(orders map[primitive.ObjectID]models.Order, filter, update bson.M) (models.Order, bool) {
	id := filter["_id"].(primitive.ObjectID)
	order, ok := orders[id]
	if !ok || order.Status != filter["status"] {
		return models.Order{}, false
	}
	before := order
	order.Status = update["$set"].(bson.M)["status"].(string)
	orders[id] = order
	return before, true
}

func TestPaidConfirmationFilterGuardsOnPendingPayment(t *testing.T) {
	orderID := primitive.NewObjectID()
	filter := paidConfirmationFilter(orderID)

	if filter["_id"] != orderID {
		t.Errorf("filter should key on the order id, got %v", filter["_id"])
	}
	if filter["status"] != models.OrderStatusPendingPayment {
		t.Errorf("filter must only match orders awaiting payment, got %v", filter["status"])
	}
}

func TestPaidConfirmationUpdateTransitionsToProcessing(t *testing.T) {
	tx := &paystack.Transaction{
		Status:    "success",
		Reference: "ref_1",
		Channel:   "card",
		PaidAt:    "2024-03-07T15:04:05.000Z",
	}
	set := paidConfirmationUpdate(tx, time.Now().UTC())["$set"].(bson.M)

	if set["status"] != models.OrderStatusProcessing {
		t.Errorf("expected processing transition, got %v", set["status"])
	}
	if set["paymentInfo.status"] != "paid" {
		t.Errorf("expected payment status paid, got %v", set["paymentInfo.status"])
	}
	if set["paymentInfo.reference"] != "ref_1" || set["paymentInfo.channel"] != "card" {
		t.Errorf("gateway metadata not persisted: %v", set)
	}
}

// Confirming the same successful reference twice must decrement stock and
// clear the cart exactly once: the guard filter stops matching after the
// first transition, so the second channel observes a no-op.
func TestConfirmingSameReferenceTwiceAdjustsStockOnce(t *testing.T) {
	orderID := primitive.NewObjectID()
	productID := primitive.NewObjectID()
	orders := map[primitive.ObjectID]models.Order{
		orderID: {
			ID:     orderID,
			UserID: primitive.NewObjectID(),
			Status: models.OrderStatusPendingPayment,
			Items:  []models.OrderItem{{ProductID: productID, Quantity: 2, PriceAtPurchase: 5000}},
		},
	}
	tx := &paystack.Transaction{Status: "success", Reference: "ref_1", Channel: "card"}

	stockDecremented := 0
	cartCleared := 0
	confirm := func() {
		before, matched := applyGuardedConfirmation(orders,
			paidConfirmationFilter(orderID), paidConfirmationUpdate(tx, time.Now().UTC()))
		if !matched {
			return
		}
		effects := paymentOutcomeEffects(before.Items, true)
		for _, adjustment := range effects.Stock {
			stockDecremented += adjustment.Quantity
		}
		if effects.ClearCart {
			cartCleared++
		}
	}

	confirm()
	confirm()

	if stockDecremented != 2 {
		t.Errorf("stock adjusted by %d, want a single decrement of 2", stockDecremented)
	}
	if cartCleared != 1 {
		t.Errorf("cart cleared %d times, want exactly once", cartCleared)
	}
	if orders[orderID].Status != models.OrderStatusProcessing {
		t.Errorf("order should end at processing, got %q", orders[orderID].Status)
	}
}

func TestPaymentOutcomeEffects(t *testing.T) {
	items := []models.OrderItem{
		{ProductID: primitive.NewObjectID(), Quantity: 2},
		{ProductID: primitive.NewObjectID(), Quantity: 1},
	}

	paid := paymentOutcomeEffects(items, true)
	if !paid.ClearCart {
		t.Error("a confirmed payment must clear the cart")
	}
	if len(paid.Stock) != 2 || paid.Stock[0].Quantity != 2 || paid.Stock[1].Quantity != 1 {
		t.Errorf("unexpected stock adjustments: %+v", paid.Stock)
	}

	// A failed confirmation touches neither stock nor the cart.
	failed := paymentOutcomeEffects(items, false)
	if failed.ClearCart {
		t.Error("a failed payment must retain the cart")
	}
	if len(failed.Stock) != 0 {
		t.Errorf("a failed payment must not adjust stock: %+v", failed.Stock)
	}
}

func TestFailedConfirmationUpdateTouchesOrderOnly(t *testing.T) {
	tx := &paystack.Transaction{Status: "abandoned", Reference: "ref_2"}
	set := failedConfirmationUpdate(tx, time.Now().UTC())["$set"].(bson.M)

	if set["status"] != models.OrderStatusFailed {
		t.Errorf("expected failed transition, got %v", set["status"])
	}

	allowed := map[string]bool{
		"status":                true,
		"updatedAt":             true,
		"paymentInfo.status":    true,
		"paymentInfo.reference": true,
	}
	for key := range set {
		if !allowed[key] {
			t.Errorf("failed confirmation must not touch %q", key)
		}
	}
}

func TestStockDecrementPipelineFloorsAtZeroAtomically(t *testing.T) {
	pipeline := stockDecrementPipeline(3)
	if len(pipeline) != 1 {
		t.Fatalf("expected a single $set stage, got %d", len(pipeline))
	}
	stage := pipeline[0]
	if stage[0].Key != "$set" {
		t.Fatalf("expected $set stage, got %q", stage[0].Key)
	}
	set := stage[0].Value.(bson.M)

	maxArgs := set["quantity"].(bson.M)["$max"].(bson.A)
	if maxArgs[0] != 0 {
		t.Errorf("quantity must floor at 0, got %v", maxArgs[0])
	}
	subtract := maxArgs[1].(bson.M)["$subtract"].(bson.A)
	if subtract[0] != "$quantity" || subtract[1] != 3 {
		t.Errorf("unexpected subtract expression: %v", subtract)
	}

	add := set["salesCount"].(bson.M)["$add"].(bson.A)
	if add[0] != "$salesCount" || add[1] != 3 {
		t.Errorf("unexpected salesCount expression: %v", add)
	}
}
