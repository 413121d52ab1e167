package handlers

import (
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"ivorybeauty/internal/models"
)

// ListOrders returns all orders, newest first, in the admin table shape.
func ListOrders(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, "ListOrders")

		ctx, cancel := dbContext()
		defer cancel()

		findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
		cursor, err := db.Collection("orders").Find(ctx, bson.M{}, findOptions)
		if err != nil {
			logHandlerError(c, "ListOrders", err)
			respondError(c, http.StatusInternalServerError, "could not load orders")
			return
		}
		defer cursor.Close(ctx)

		var orders []models.Order
		if err := cursor.All(ctx, &orders); err != nil {
			logHandlerError(c, "ListOrders", err)
			respondError(c, http.StatusInternalServerError, "could not load orders")
			return
		}

		views := make([]orderView, 0, len(orders))
		for _, order := range orders {
			views = append(views, buildOrderView(order))
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "orders": views})
	}
}

type updateStatusInput struct {
	Status string `json:"status" binding:"required"`
}

// validateOrderStatus rejects anything outside the admin-settable set.
func validateOrderStatus(status string) error {
	if !models.AllowedOrderStatuses[status] {
		return fmt.Errorf("unsupported status %q", status)
	}
	return nil
}

// UpdateOrderStatus sets an order's status to any member of the allowed
// set. Transitions between members are deliberately unrestricted.
func UpdateOrderStatus(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, "UpdateOrderStatus")

		orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid order id")
			return
		}

		var input updateStatusInput
		if err := c.ShouldBindJSON(&input); err != nil {
			respondBindingError(c, err)
			return
		}
		if err := validateOrderStatus(input.Status); err != nil {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}

		ctx, cancel := dbContext()
		defer cancel()

		result := db.Collection("orders").FindOneAndUpdate(ctx,
			bson.M{"_id": orderID},
			bson.M{"$set": bson.M{"status": input.Status, "updatedAt": time.Now().UTC()}},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		)

		var order models.Order
		err = result.Decode(&order)
		if errors.Is(err, mongo.ErrNoDocuments) {
			respondError(c, http.StatusNotFound, "order not found")
			return
		}
		if err != nil {
			logHandlerError(c, "UpdateOrderStatus", err)
			respondError(c, http.StatusInternalServerError, "could not update order")
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "order": buildOrderView(order)})
	}
}

var orderCSVHeader = []string{
	"Order ID", "Date", "Customer", "Email", "Items",
	"Subtotal", "Tax", "Shipping", "Total", "Status", "Payment Reference",
}

// orderCSVRecord flattens one order into an export row. Line items are
// packed as "name x qty" pairs separated by "; ".
func orderCSVRecord(order models.Order) []string {
	items := ""
	for i, item := range order.Items {
		if i > 0 {
			items += "; "
		}
		items += fmt.Sprintf("%s x %d", item.Name, item.Quantity)
	}
	return []string{
		order.ID.Hex(),
		formatDate(order.CreatedAt),
		customerLabel(order),
		order.ShippingInfo.Email,
		items,
		strconv.FormatFloat(order.Subtotal, 'f', 2, 64),
		strconv.FormatFloat(order.Tax, 'f', 2, 64),
		strconv.FormatFloat(order.ShippingCost, 'f', 2, 64),
		strconv.FormatFloat(order.Total, 'f', 2, 64),
		order.Status,
		order.PaymentInfo.Reference,
	}
}

// ExportOrdersCSV streams every order as a text/csv attachment.
func ExportOrdersCSV(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, "ExportOrdersCSV")

		ctx, cancel := dbContext()
		defer cancel()

		findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
		cursor, err := db.Collection("orders").Find(ctx, bson.M{}, findOptions)
		if err != nil {
			logHandlerError(c, "ExportOrdersCSV", err)
			respondError(c, http.StatusInternalServerError, "could not export orders")
			return
		}
		defer cursor.Close(ctx)

		var orders []models.Order
		if err := cursor.All(ctx, &orders); err != nil {
			logHandlerError(c, "ExportOrdersCSV", err)
			respondError(c, http.StatusInternalServerError, "could not export orders")
			return
		}

		filename := "orders-" + time.Now().UTC().Format("2006-01-02") + ".csv"
		c.Header("Content-Type", "text/csv")
		c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)

		writer := csv.NewWriter(c.Writer)
		writer.UseCRLF = true

		if err := writer.Write(orderCSVHeader); err != nil {
			logHandlerError(c, "ExportOrdersCSV", err)
			return
		}
		for _, order := range orders {
			if err := writer.Write(orderCSVRecord(order)); err != nil {
				logHandlerError(c, "ExportOrdersCSV", err)
				return
			}
		}
		writer.Flush()
		if err := writer.Error(); err != nil {
			logHandlerError(c, "ExportOrdersCSV", err)
		}
	}
}
