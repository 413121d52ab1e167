package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"ivorybeauty/internal/models"
)

type collectionInput struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// ListCollections returns every collection for the admin panel.
func ListCollections(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, "ListCollections")

		ctx, cancel := dbContext()
		defer cancel()

		cursor, err := db.Collection("collections").Find(ctx, bson.M{})
		if err != nil {
			logHandlerError(c, "ListCollections", err)
			respondError(c, http.StatusInternalServerError, "could not load collections")
			return
		}
		defer cursor.Close(ctx)

		collections := []models.Collection{}
		if err := cursor.All(ctx, &collections); err != nil {
			logHandlerError(c, "ListCollections", err)
			respondError(c, http.StatusInternalServerError, "could not load collections")
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "collections": collections})
	}
}

func CreateCollection(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, "CreateCollection")

		var input collectionInput
		if err := c.ShouldBindJSON(&input); err != nil {
			respondBindingError(c, err)
			return
		}

		ctx, cancel := dbContext()
		defer cancel()

		collection := models.Collection{
			Name:        input.Name,
			Description: input.Description,
		}
		inserted, err := db.Collection("collections").InsertOne(ctx, collection)
		if mongo.IsDuplicateKeyError(err) {
			respondError(c, http.StatusConflict, "a collection with this name already exists")
			return
		}
		if err != nil {
			logHandlerError(c, "CreateCollection", err)
			respondError(c, http.StatusInternalServerError, "could not create collection")
			return
		}
		collection.ID = inserted.InsertedID.(primitive.ObjectID)

		c.JSON(http.StatusCreated, gin.H{"success": true, "collection": collection})
	}
}

func UpdateCollection(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, "UpdateCollection")

		collectionID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid collection id")
			return
		}

		var input collectionInput
		if err := c.ShouldBindJSON(&input); err != nil {
			respondBindingError(c, err)
			return
		}

		ctx, cancel := dbContext()
		defer cancel()

		result, err := db.Collection("collections").UpdateByID(ctx, collectionID, bson.M{
			"$set": bson.M{"name": input.Name, "description": input.Description},
		})
		if mongo.IsDuplicateKeyError(err) {
			respondError(c, http.StatusConflict, "a collection with this name already exists")
			return
		}
		if err != nil {
			logHandlerError(c, "UpdateCollection", err)
			respondError(c, http.StatusInternalServerError, "could not update collection")
			return
		}
		if result.MatchedCount == 0 {
			respondError(c, http.StatusNotFound, "collection not found")
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

// DeleteCollection hard-deletes the collection and every product that
// references it. No orphans, no soft archive.
func DeleteCollection(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, "DeleteCollection")

		collectionID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid collection id")
			return
		}

		ctx, cancel := dbContext()
		defer cancel()

		result, err := db.Collection("collections").DeleteOne(ctx, bson.M{"_id": collectionID})
		if err != nil {
			logHandlerError(c, "DeleteCollection", err)
			respondError(c, http.StatusInternalServerError, "could not delete collection")
			return
		}
		if result.DeletedCount == 0 {
			respondError(c, http.StatusNotFound, "collection not found")
			return
		}

		deleted, err := db.Collection("products").DeleteMany(ctx, productsByCollectionFilter(collectionID))
		if err != nil {
			logHandlerError(c, "DeleteCollection", err)
			respondError(c, http.StatusInternalServerError, "collection removed but product cleanup failed")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":         true,
			"deletedProducts": deleted.DeletedCount,
		})
	}
}

// productsByCollectionFilter selects every product owned by a collection.
// The cascade delete and the dashboard counts share it, so they cannot
// disagree on what "referencing" means.
func productsByCollectionFilter(collectionID primitive.ObjectID) bson.M {
	return bson.M{"collectionRef": collectionID}
}

var errCollectionNotFound = errors.New("collection not found")

// ensureCollectionExists guards product writes against dangling refs.
func ensureCollectionExists(db *mongo.Database, collectionID primitive.ObjectID) error {
	ctx, cancel := dbContext()
	defer cancel()

	count, err := db.Collection("collections").CountDocuments(ctx, bson.M{"_id": collectionID})
	if err != nil {
		return err
	}
	if count == 0 {
		return errCollectionNotFound
	}
	return nil
}
