package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"ivorybeauty/internal/middleware"
	"ivorybeauty/internal/models"
)

type orderItemView struct {
	ProductID       primitive.ObjectID `json:"productId"`
	Name            string             `json:"name"`
	Quantity        int                `json:"quantity"`
	PriceAtPurchase float64            `json:"priceAtPurchase"`
	FormattedPrice  string             `json:"formattedPrice"`
	LineTotal       float64            `json:"lineTotal"`
}

type orderView struct {
	ID                    primitive.ObjectID  `json:"id"`
	Items                 []orderItemView     `json:"items"`
	ShippingInfo          models.ShippingInfo `json:"shippingInfo"`
	PaymentInfo           models.PaymentInfo  `json:"paymentInfo"`
	Subtotal              float64             `json:"subtotal"`
	Tax                   float64             `json:"tax"`
	ShippingCost          float64             `json:"shippingCost"`
	Total                 float64             `json:"total"`
	FormattedSubtotal     string              `json:"formattedSubtotal"`
	FormattedTax          string              `json:"formattedTax"`
	FormattedShippingCost string              `json:"formattedShippingCost"`
	FormattedTotal        string              `json:"formattedTotal"`
	Status                string              `json:"status"`
	FormattedDate         string              `json:"formattedDate"`
}

func buildOrderView(order models.Order) orderView {
	items := make([]orderItemView, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, orderItemView{
			ProductID:       item.ProductID,
			Name:            item.Name,
			Quantity:        item.Quantity,
			PriceAtPurchase: item.PriceAtPurchase,
			FormattedPrice:  formatNaira(item.PriceAtPurchase),
			LineTotal:       item.PriceAtPurchase * float64(item.Quantity),
		})
	}
	return orderView{
		ID:                    order.ID,
		Items:                 items,
		ShippingInfo:          order.ShippingInfo,
		PaymentInfo:           order.PaymentInfo,
		Subtotal:              order.Subtotal,
		Tax:                   order.Tax,
		ShippingCost:          order.ShippingCost,
		Total:                 order.Total,
		FormattedSubtotal:     formatNaira(order.Subtotal),
		FormattedTax:          formatNaira(order.Tax),
		FormattedShippingCost: formatNaira(order.ShippingCost),
		FormattedTotal:        formatNaira(order.Total),
		Status:                order.Status,
		FormattedDate:         formatDate(order.CreatedAt),
	}
}

// GetOrder returns one order, readable by its owning user or any admin.
func GetOrder(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, "GetOrder")

		orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid order id")
			return
		}

		identity := middleware.CallerIdentity(c)
		if identity.Kind == middleware.IdentityGuest {
			respondError(c, http.StatusUnauthorized, "authentication required")
			return
		}

		ctx, cancel := dbContext()
		defer cancel()

		var order models.Order
		err = db.Collection("orders").FindOne(ctx, bson.M{"_id": orderID}).Decode(&order)
		if errors.Is(err, mongo.ErrNoDocuments) {
			respondError(c, http.StatusNotFound, "order not found")
			return
		}
		if err != nil {
			logHandlerError(c, "GetOrder", err)
			respondError(c, http.StatusInternalServerError, "could not load order")
			return
		}

		if identity.Kind == middleware.IdentityUser && order.UserID != identity.Subject {
			respondError(c, http.StatusForbidden, "you do not have access to this order")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"order":   buildOrderView(order),
		})
	}
}
