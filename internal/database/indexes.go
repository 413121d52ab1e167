package database

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func EnsureUserIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	emailIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "email", Value: 1}},
		Options: options.Index().
			SetName("email_unique").
			SetUnique(true),
	}

	_, err := db.Collection("users").Indexes().CreateOne(ctx, emailIndex)
	if err != nil {
		logrus.WithError(err).Error("EnsureUserIndexes: email index")
		return err
	}
	return nil
}

func EnsureAdminIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	emailIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "email", Value: 1}},
		Options: options.Index().
			SetName("email_unique").
			SetUnique(true),
	}

	_, err := db.Collection("admins").Indexes().CreateOne(ctx, emailIndex)
	if err != nil {
		logrus.WithError(err).Error("EnsureAdminIndexes: email index")
		return err
	}
	return nil
}

func EnsureCollectionIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	nameIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "name", Value: 1}},
		Options: options.Index().
			SetName("name_unique").
			SetUnique(true),
	}

	_, err := db.Collection("collections").Indexes().CreateOne(ctx, nameIndex)
	if err != nil {
		logrus.WithError(err).Error("EnsureCollectionIndexes: name index")
		return err
	}
	return nil
}

// EnsureCartIndexes indexes carts by owner. The one-cart-per-user rule is
// enforced by lookup-or-create in the handlers, not by a unique constraint.
func EnsureCartIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	userIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}},
		Options: options.Index().SetName("userId_index"),
	}

	_, err := db.Collection("carts").Indexes().CreateOne(ctx, userIndex)
	if err != nil {
		logrus.WithError(err).Error("EnsureCartIndexes: userId index")
		return err
	}
	return nil
}

func EnsureOrderIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}},
			Options: options.Index().SetName("userId_index"),
		},
		{
			// Webhook and redirect confirmations look orders up by the
			// gateway reference.
			Keys: bson.D{{Key: "paymentInfo.reference", Value: 1}},
			Options: options.Index().
				SetName("payment_reference_index").
				SetPartialFilterExpression(bson.M{
					"paymentInfo.reference": bson.M{"$exists": true},
				}),
		},
	}

	_, err := db.Collection("orders").Indexes().CreateMany(ctx, indexes)
	if err != nil {
		logrus.WithError(err).Error("EnsureOrderIndexes: create indexes")
		return err
	}
	return nil
}
