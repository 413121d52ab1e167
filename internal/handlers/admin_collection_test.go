package handlers

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"ivorybeauty/internal/models"
)

// Deleting a collection removes every product referencing it; products in
// other collections survive.
func TestCollectionCascadeLeavesNoReferencingProducts(t *testing.T) {
	target := primitive.NewObjectID()
	other := primitive.NewObjectID()
	products := []models.Product{
		{ID: primitive.NewObjectID(), Name: "Shea Soap", CollectionID: target},
		{ID: primitive.NewObjectID(), Name: "Night Cream", CollectionID: target},
		{ID: primitive.NewObjectID(), Name: "Toner", CollectionID: other},
	}

	filter := productsByCollectionFilter(target)
	owner, ok := filter["collectionRef"].(primitive.ObjectID)
	if !ok || owner != target {
		t.Fatalf("filter should select by collection reference, got %v", filter)
	}

	var remaining []models.Product
	for _, product := range products {
		if product.CollectionID != owner {
			remaining = append(remaining, product)
		}
	}

	for _, product := range remaining {
		if product.CollectionID == target {
			t.Errorf("product %s still references the deleted collection", product.Name)
		}
	}
	if len(remaining) != 1 || remaining[0].Name != "Toner" {
		t.Errorf("products in other collections must survive, got %+v", remaining)
	}
}
