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

type shippingOption struct {
	ID    string  `json:"id"`
	Label string  `json:"label"`
	Cost  float64 `json:"cost"`
}

var shippingOptions = []shippingOption{
	{ID: "standard", Label: "Standard (3-5 business days)", Cost: 0},
	{ID: "express", Label: "Express (1-2 business days)", Cost: 9.99},
	{ID: "overnight", Label: "Overnight (next business day)", Cost: 24.99},
}

// resolveShippingCost maps a known shipping method to its catalog cost.
// Unknown methods report false and the caller decides what to trust.
func resolveShippingCost(method string) (float64, bool) {
	for _, option := range shippingOptions {
		if option.ID == method {
			return option.Cost, true
		}
	}
	return 0, false
}

// GetCheckout summarizes the caller's cart plus the shipping options the
// storefront renders on the checkout page.
func GetCheckout(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, "GetCheckout")

		userID := middleware.UserID(c)

		ctx, cancel := dbContext()
		defer cancel()

		var cart models.Cart
		err := db.Collection("carts").FindOne(ctx, bson.M{"userId": userID}).Decode(&cart)
		if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
			logHandlerError(c, "GetCheckout", err)
			respondError(c, http.StatusInternalServerError, "could not load checkout")
			return
		}

		view, err := joinCart(db, cart.Items)
		if err != nil {
			logHandlerError(c, "GetCheckout", err)
			respondError(c, http.StatusInternalServerError, "could not load checkout")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data": gin.H{
				"cartItems":       view.CartItems,
				"subtotal":        view.Total,
				"shippingOptions": shippingOptions,
			},
		})
	}
}
