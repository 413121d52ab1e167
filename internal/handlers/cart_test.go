package handlers

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"ivorybeauty/internal/models"
)

func TestMergeCartItemIncrementsExistingLine(t *testing.T) {
	productID := primitive.NewObjectID()
	items := []models.CartItem{{ProductID: productID, Quantity: 2}}

	items = mergeCartItem(items, productID, 3)

	if len(items) != 1 {
		t.Fatalf("expected 1 line item, got %d", len(items))
	}
	if items[0].Quantity != 5 {
		t.Errorf("expected quantity 5, got %d", items[0].Quantity)
	}
}

func TestMergeCartItemAppendsNewLine(t *testing.T) {
	existing := primitive.NewObjectID()
	incoming := primitive.NewObjectID()
	items := []models.CartItem{{ProductID: existing, Quantity: 1}}

	items = mergeCartItem(items, incoming, 2)

	if len(items) != 2 {
		t.Fatalf("expected 2 line items, got %d", len(items))
	}
	if items[1].ProductID != incoming || items[1].Quantity != 2 {
		t.Errorf("unexpected appended line: %+v", items[1])
	}
}

func TestApplyCartActionIncrease(t *testing.T) {
	productID := primitive.NewObjectID()
	items := []models.CartItem{{ProductID: productID, Quantity: 1}}

	items, found := applyCartAction(items, productID, "increase")
	if !found {
		t.Fatal("expected item to be found")
	}
	if items[0].Quantity != 2 {
		t.Errorf("expected quantity 2, got %d", items[0].Quantity)
	}
}

func TestApplyCartActionDecreaseFloorsAtOne(t *testing.T) {
	productID := primitive.NewObjectID()
	items := []models.CartItem{{ProductID: productID, Quantity: 2}}

	items, _ = applyCartAction(items, productID, "decrease")
	if items[0].Quantity != 1 {
		t.Fatalf("expected quantity 1, got %d", items[0].Quantity)
	}

	// Decreasing again stays at 1; it never removes the line.
	items, found := applyCartAction(items, productID, "decrease")
	if !found {
		t.Fatal("expected item to be found")
	}
	if items[0].Quantity != 1 {
		t.Errorf("expected quantity to stay at 1, got %d", items[0].Quantity)
	}
}

func TestApplyCartActionMissingItem(t *testing.T) {
	items := []models.CartItem{{ProductID: primitive.NewObjectID(), Quantity: 1}}

	_, found := applyCartAction(items, primitive.NewObjectID(), "increase")
	if found {
		t.Error("expected missing item to report not found")
	}
}

func TestRemoveCartLine(t *testing.T) {
	keep := primitive.NewObjectID()
	drop := primitive.NewObjectID()
	items := []models.CartItem{
		{ProductID: keep, Quantity: 1},
		{ProductID: drop, Quantity: 4},
	}

	items, found := removeCartLine(items, drop)
	if !found {
		t.Fatal("expected item to be removed")
	}
	if len(items) != 1 || items[0].ProductID != keep {
		t.Errorf("unexpected remaining items: %+v", items)
	}

	_, found = removeCartLine(items, drop)
	if found {
		t.Error("removing an absent item should report not found")
	}
}

func TestBuildCartViewTotalsAndCount(t *testing.T) {
	soap := primitive.NewObjectID()
	cream := primitive.NewObjectID()
	items := []models.CartItem{
		{ProductID: soap, Quantity: 2},
		{ProductID: cream, Quantity: 1},
	}
	products := map[primitive.ObjectID]models.Product{
		soap:  {ID: soap, Name: "Shea Soap", Price: 1500, ImageURL: "soap.jpg"},
		cream: {ID: cream, Name: "Night Cream", Price: 4200.50, ImageURL: "cream.jpg"},
	}

	view := buildCartView(items, products)

	if len(view.CartItems) != 2 {
		t.Fatalf("expected 2 items, got %d", len(view.CartItems))
	}
	if view.CartItems[0].Total != 3000 {
		t.Errorf("expected line total 3000, got %v", view.CartItems[0].Total)
	}
	if view.Total != 7200.50 {
		t.Errorf("expected cart total 7200.50, got %v", view.Total)
	}
	if view.CartCount != 3 {
		t.Errorf("expected cart count 3, got %d", view.CartCount)
	}
}

func TestBuildCartViewSkipsDeletedProducts(t *testing.T) {
	live := primitive.NewObjectID()
	deleted := primitive.NewObjectID()
	items := []models.CartItem{
		{ProductID: live, Quantity: 1},
		{ProductID: deleted, Quantity: 5},
	}
	products := map[primitive.ObjectID]models.Product{
		live: {ID: live, Name: "Toner", Price: 900},
	}

	view := buildCartView(items, products)

	if len(view.CartItems) != 1 {
		t.Fatalf("expected deleted product to be skipped, got %d items", len(view.CartItems))
	}
	if view.CartCount != 1 {
		t.Errorf("expected cart count 1, got %d", view.CartCount)
	}
}

func TestBuildCartViewEmpty(t *testing.T) {
	view := buildCartView(nil, nil)

	if view.CartItems == nil {
		t.Error("empty cart should serialize items as [], not null")
	}
	if view.Total != 0 || view.CartCount != 0 {
		t.Errorf("expected zero totals, got %+v", view)
	}
}
