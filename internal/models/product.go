package models

import "go.mongodb.org/mongo-driver/bson/primitive"

type Product struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Description  string             `bson:"description" json:"description"`
	Price        float64            `bson:"price" json:"price"`
	ImageURL     string             `bson:"imageUrl" json:"imageUrl"`
	CollectionID primitive.ObjectID `bson:"collectionRef" json:"collectionRef"`
	Quantity     int                `bson:"quantity" json:"quantity"`
	SalesCount   int                `bson:"salesCount" json:"salesCount"`
}
