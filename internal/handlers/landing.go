package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"ivorybeauty/internal/middleware"
	"ivorybeauty/internal/models"
)

type landingCollection struct {
	models.Collection
	Products []productWithCollection `json:"products"`
}

// Landing composes the storefront home payload: the catalog, collections
// each with their products, and the caller's cart count when a valid
// token was presented. Guests get cartCount 0.
func Landing(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, "Landing")

		ctx, cancel := dbContext()
		defer cancel()

		cursor, err := db.Collection("products").Find(ctx, bson.M{})
		if err != nil {
			logHandlerError(c, "Landing", err)
			respondError(c, http.StatusInternalServerError, "could not load landing data")
			return
		}
		var products []models.Product
		if err := cursor.All(ctx, &products); err != nil {
			logHandlerError(c, "Landing", err)
			respondError(c, http.StatusInternalServerError, "could not load landing data")
			return
		}

		decorated, err := decorateProducts(db, products)
		if err != nil {
			logHandlerError(c, "Landing", err)
			respondError(c, http.StatusInternalServerError, "could not load landing data")
			return
		}

		collectionCursor, err := db.Collection("collections").Find(ctx, bson.M{})
		if err != nil {
			logHandlerError(c, "Landing", err)
			respondError(c, http.StatusInternalServerError, "could not load landing data")
			return
		}
		var collections []models.Collection
		if err := collectionCursor.All(ctx, &collections); err != nil {
			logHandlerError(c, "Landing", err)
			respondError(c, http.StatusInternalServerError, "could not load landing data")
			return
		}

		grouped := make([]landingCollection, 0, len(collections))
		for _, collection := range collections {
			entry := landingCollection{Collection: collection, Products: []productWithCollection{}}
			for _, product := range decorated {
				if product.CollectionID == collection.ID {
					entry.Products = append(entry.Products, product)
				}
			}
			grouped = append(grouped, entry)
		}

		cartCount := 0
		if identity := middleware.CallerIdentity(c); identity.Kind == middleware.IdentityUser {
			var cart models.Cart
			err := db.Collection("carts").FindOne(ctx, bson.M{"userId": identity.Subject}).Decode(&cart)
			if err == nil {
				cartCount = countCartItems(cart.Items)
			} else if !errors.Is(err, mongo.ErrNoDocuments) {
				logHandlerError(c, "Landing", err)
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data": gin.H{
				"products":    decorated,
				"collections": grouped,
				"cartCount":   cartCount,
			},
		})
	}
}
