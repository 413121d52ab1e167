package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"ivorybeauty/internal/models"
)

type customerView struct {
	models.User
	OrderCount int64 `json:"orderCount"`
}

// ListCustomers returns every registered user with their order count.
func ListCustomers(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, "ListCustomers")

		ctx, cancel := dbContext()
		defer cancel()

		findOptions := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
		cursor, err := db.Collection("users").Find(ctx, bson.M{}, findOptions)
		if err != nil {
			logHandlerError(c, "ListCustomers", err)
			respondError(c, http.StatusInternalServerError, "could not load customers")
			return
		}
		defer cursor.Close(ctx)

		var users []models.User
		if err := cursor.All(ctx, &users); err != nil {
			logHandlerError(c, "ListCustomers", err)
			respondError(c, http.StatusInternalServerError, "could not load customers")
			return
		}

		customers := make([]customerView, 0, len(users))
		for _, user := range users {
			count, err := db.Collection("orders").CountDocuments(ctx, bson.M{"userId": user.ID})
			if err != nil {
				logHandlerError(c, "ListCustomers", err)
				respondError(c, http.StatusInternalServerError, "could not load customers")
				return
			}
			customers = append(customers, customerView{User: user, OrderCount: count})
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "customers": customers})
	}
}
