package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Cart holds a user's pre-purchase selection. At most one cart per user,
// enforced by lookup-or-create on userId.
type Cart struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID primitive.ObjectID `bson:"userId" json:"userId"`
	Items  []CartItem         `bson:"items" json:"items"`
}

type CartItem struct {
	ProductID primitive.ObjectID `bson:"productId" json:"productId"`
	Quantity  int                `bson:"quantity" json:"quantity"`
}
