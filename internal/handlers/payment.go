package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"ivorybeauty/internal/config"
	"ivorybeauty/internal/middleware"
	"ivorybeauty/internal/models"
	"ivorybeauty/internal/paystack"
)

type outOfStockError struct {
	ProductName string
	Available   int
}

func (e *outOfStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s (available: %d)", e.ProductName, e.Available)
}

type shippingInfoInput struct {
	FirstName    string `json:"firstName" binding:"required"`
	LastName     string `json:"lastName" binding:"required"`
	Email        string `json:"email" binding:"required,email"`
	Phone        string `json:"phone" binding:"required"`
	Address      string `json:"address" binding:"required"`
	City         string `json:"city" binding:"required"`
	State        string `json:"state" binding:"required"`
	Method       string `json:"method" binding:"required"`
	Instructions string `json:"instructions"`
}

type initiatePaymentInput struct {
	ShippingInfo shippingInfoInput `json:"shippingInfo" binding:"required"`
	ShippingCost float64           `json:"shippingCost" binding:"gte=0"`
	Tax          float64           `json:"tax" binding:"gte=0"`
}

// InitiatePayment snapshots the cart into a pending-payment order and
// opens a gateway session. A gateway failure leaves the order parked at
// pending-payment for the user to retry; stock-check or empty-cart
// failures create nothing.
func InitiatePayment(db *mongo.Database, gateway *paystack.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, "InitiatePayment")

		var input initiatePaymentInput
		if err := c.ShouldBindJSON(&input); err != nil {
			respondBindingError(c, err)
			return
		}

		userID := middleware.UserID(c)

		ctx, cancel := dbContext()
		defer cancel()

		var cart models.Cart
		err := db.Collection("carts").FindOne(ctx, bson.M{"userId": userID}).Decode(&cart)
		if errors.Is(err, mongo.ErrNoDocuments) || (err == nil && len(cart.Items) == 0) {
			respondError(c, http.StatusBadRequest, "cart is empty")
			return
		}
		if err != nil {
			logHandlerError(c, "InitiatePayment", err)
			respondError(c, http.StatusInternalServerError, "could not start payment")
			return
		}

		products, err := fetchCartProducts(db, cart.Items)
		if err != nil {
			logHandlerError(c, "InitiatePayment", err)
			respondError(c, http.StatusInternalServerError, "could not start payment")
			return
		}

		orderItems, subtotal, err := buildOrderItems(cart.Items, products)
		if err != nil {
			var stockErr *outOfStockError
			if errors.As(err, &stockErr) {
				respondError(c, http.StatusBadRequest, stockErr.Error())
				return
			}
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}

		// Prefer the catalog cost for known shipping methods; an unknown
		// method falls back to the client-supplied figure.
		shippingCost := input.ShippingCost
		if catalogCost, known := resolveShippingCost(input.ShippingInfo.Method); known {
			shippingCost = catalogCost
		}

		now := time.Now().UTC()
		order := models.Order{
			UserID: userID,
			Items:  orderItems,
			ShippingInfo: models.ShippingInfo{
				FirstName:    input.ShippingInfo.FirstName,
				LastName:     input.ShippingInfo.LastName,
				Email:        input.ShippingInfo.Email,
				Phone:        input.ShippingInfo.Phone,
				Address:      input.ShippingInfo.Address,
				City:         input.ShippingInfo.City,
				State:        input.ShippingInfo.State,
				Method:       input.ShippingInfo.Method,
				Instructions: input.ShippingInfo.Instructions,
			},
			PaymentInfo: models.PaymentInfo{
				Method: "paystack",
				Status: "pending",
			},
			Subtotal:     subtotal,
			Tax:          input.Tax,
			ShippingCost: shippingCost,
			Total:        subtotal + input.Tax + shippingCost,
			Status:       models.OrderStatusPendingPayment,
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		inserted, err := db.Collection("orders").InsertOne(ctx, order)
		if err != nil {
			logHandlerError(c, "InitiatePayment", err)
			respondError(c, http.StatusInternalServerError, "could not create order")
			return
		}
		orderID := inserted.InsertedID.(primitive.ObjectID)

		session, err := gateway.Initialize(ctx, input.ShippingInfo.Email, order.Total,
			config.AppEnv.BaseURL+"/payments/verify", paystack.Metadata{
				OrderID: orderID.Hex(),
				UserID:  userID.Hex(),
				CartID:  cart.ID.Hex(),
			})
		if err != nil {
			// The order stays at pending-payment; the user can retry.
			logHandlerError(c, "InitiatePayment", err)
			respondError(c, http.StatusInternalServerError, "payment initiation failed: "+err.Error())
			return
		}

		// The webhook matches orders by this reference before any redirect
		// lands; without it a metadata-less payload cannot be correlated,
		// so a persistent write failure is surfaced instead of swallowed.
		if err := persistPaymentReference(db, orderID, session.Reference); err != nil {
			logHandlerError(c, "InitiatePayment", err)
			respondError(c, http.StatusInternalServerError, "could not record payment reference, please retry checkout")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":           true,
			"authorization_url": session.AuthorizationURL,
		})
	}
}

// buildOrderItems freezes live prices into order lines, failing fast on
// the first product with insufficient stock.
func buildOrderItems(items []models.CartItem, products map[primitive.ObjectID]models.Product) ([]models.OrderItem, float64, error) {
	orderItems := make([]models.OrderItem, 0, len(items))
	subtotal := 0.0
	for _, item := range items {
		product, ok := products[item.ProductID]
		if !ok {
			return nil, 0, fmt.Errorf("product %s no longer exists", item.ProductID.Hex())
		}
		if item.Quantity > product.Quantity {
			return nil, 0, &outOfStockError{ProductName: product.Name, Available: product.Quantity}
		}
		orderItems = append(orderItems, models.OrderItem{
			ProductID:       product.ID,
			Name:            product.Name,
			Quantity:        item.Quantity,
			PriceAtPurchase: product.Price,
		})
		subtotal += product.Price * float64(item.Quantity)
	}
	return orderItems, subtotal, nil
}

// VerifyPayment is the gateway's browser redirect target. Every failure
// degrades to the payment-failed page; the user never sees a raw error.
func VerifyPayment(db *mongo.Database, gateway *paystack.Client) gin.HandlerFunc {
	failureURL := func() string { return config.AppEnv.FrontendURL + "/payment-failed" }

	return func(c *gin.Context) {
		defer handlePanic(c, "VerifyPayment")

		reference := c.Query("reference")
		if reference == "" {
			c.Redirect(http.StatusFound, failureURL())
			return
		}

		ctx, cancel := dbContext()
		defer cancel()

		tx, err := gateway.Verify(ctx, reference)
		if err != nil {
			logHandlerError(c, "VerifyPayment", err)
			c.Redirect(http.StatusFound, failureURL())
			return
		}

		orderID, err := resolveOrderID(db, tx)
		if err != nil {
			logHandlerError(c, "VerifyPayment", err)
			c.Redirect(http.StatusFound, failureURL())
			return
		}

		if tx.Status != "success" {
			if err := markOrderFailed(db, orderID, tx); err != nil {
				logHandlerError(c, "VerifyPayment", err)
			}
			c.Redirect(http.StatusFound, failureURL())
			return
		}

		if err := markOrderPaid(db, orderID, tx); err != nil {
			logHandlerError(c, "VerifyPayment", err)
			c.Redirect(http.StatusFound, failureURL())
			return
		}

		c.Redirect(http.StatusFound, config.AppEnv.FrontendURL+"/order-success/"+orderID.Hex())
	}
}

// PaystackWebhook handles the gateway's server-to-server notification.
// Once the signature checks out the response is always 200, even if
// internal processing fails, so the gateway does not pile up retries.
func PaystackWebhook(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, "PaystackWebhook")

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.Status(http.StatusBadRequest)
			return
		}

		signature := c.GetHeader("x-paystack-signature")
		if signature == "" {
			c.Status(http.StatusBadRequest)
			return
		}
		if !paystack.ValidateSignature(config.AppEnv.PaystackSecretKey, body, signature) {
			c.Status(http.StatusUnauthorized)
			return
		}

		var event paystack.Event
		if err := json.Unmarshal(body, &event); err != nil {
			logHandlerError(c, "PaystackWebhook", err)
			c.Status(http.StatusOK)
			return
		}

		if event.Event == "charge.success" {
			orderID, err := resolveOrderID(db, &event.Data)
			if err != nil {
				logHandlerError(c, "PaystackWebhook", err)
				c.Status(http.StatusOK)
				return
			}
			if err := markOrderPaid(db, orderID, &event.Data); err != nil {
				logHandlerError(c, "PaystackWebhook", err)
			}
		}

		c.Status(http.StatusOK)
	}
}

// resolveOrderID correlates a gateway transaction to an order, preferring
// the orderId echoed back in metadata and falling back to a reference
// lookup for payloads that dropped it.
func resolveOrderID(db *mongo.Database, tx *paystack.Transaction) (primitive.ObjectID, error) {
	if tx.Metadata.OrderID != "" {
		if id, err := primitive.ObjectIDFromHex(tx.Metadata.OrderID); err == nil {
			return id, nil
		}
	}

	ctx, cancel := dbContext()
	defer cancel()

	var order models.Order
	err := db.Collection("orders").FindOne(ctx, bson.M{"paymentInfo.reference": tx.Reference}).Decode(&order)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("no order for reference %s: %w", tx.Reference, err)
	}
	return order.ID, nil
}

// paidConfirmationFilter guards the paid transition: it only matches an
// order still awaiting payment, so a second confirmation for the same
// reference matches nothing and becomes a no-op.
func paidConfirmationFilter(orderID primitive.ObjectID) bson.M {
	return bson.M{"_id": orderID, "status": models.OrderStatusPendingPayment}
}

func paidConfirmationUpdate(tx *paystack.Transaction, now time.Time) bson.M {
	return bson.M{
		"$set": bson.M{
			"status":                models.OrderStatusProcessing,
			"updatedAt":             now,
			"paymentInfo.status":    "paid",
			"paymentInfo.reference": tx.Reference,
			"paymentInfo.channel":   tx.Channel,
			"paymentInfo.paidAt":    parsePaidAt(tx.PaidAt),
		},
	}
}

func failedConfirmationUpdate(tx *paystack.Transaction, now time.Time) bson.M {
	return bson.M{
		"$set": bson.M{
			"status":                models.OrderStatusFailed,
			"updatedAt":             now,
			"paymentInfo.status":    tx.Status,
			"paymentInfo.reference": tx.Reference,
		},
	}
}

type stockAdjustment struct {
	ProductID primitive.ObjectID
	Quantity  int
}

type confirmationSideEffects struct {
	Stock     []stockAdjustment
	ClearCart bool
}

// paymentOutcomeEffects maps a gateway outcome onto side effects: a
// confirmed payment adjusts stock per line item and clears the buyer's
// cart; any other outcome leaves both untouched.
func paymentOutcomeEffects(items []models.OrderItem, succeeded bool) confirmationSideEffects {
	if !succeeded {
		return confirmationSideEffects{}
	}
	effects := confirmationSideEffects{ClearCart: true}
	for _, item := range items {
		effects.Stock = append(effects.Stock, stockAdjustment{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}
	return effects
}

// markOrderPaid is the single confirmation path shared by the redirect
// and webhook handlers. The guarded update means whichever channel lands
// second observes a no-op and stock is adjusted exactly once.
func markOrderPaid(db *mongo.Database, orderID primitive.ObjectID, tx *paystack.Transaction) error {
	ctx, cancel := dbContext()
	defer cancel()

	var order models.Order
	err := db.Collection("orders").FindOneAndUpdate(ctx,
		paidConfirmationFilter(orderID),
		paidConfirmationUpdate(tx, time.Now().UTC()),
		options.FindOneAndUpdate().SetReturnDocument(options.Before),
	).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		// Already confirmed (or moved on) via the other channel.
		return nil
	}
	if err != nil {
		return fmt.Errorf("mark order paid: %w", err)
	}

	effects := paymentOutcomeEffects(order.Items, true)
	for _, adjustment := range effects.Stock {
		if err := decrementStock(db, adjustment.ProductID, adjustment.Quantity); err != nil {
			logrus.WithFields(logrus.Fields{
				"orderId":   orderID.Hex(),
				"productId": adjustment.ProductID.Hex(),
			}).WithError(err).Error("stock decrement failed")
		}
	}

	if effects.ClearCart {
		if _, err := db.Collection("carts").DeleteOne(ctx, bson.M{"userId": order.UserID}); err != nil {
			return fmt.Errorf("delete cart after payment: %w", err)
		}
	}
	return nil
}

// stockDecrementPipeline floors quantity at zero and bumps salesCount in
// one atomic update, so a concurrent restock cannot be clobbered by a
// separate fallback write.
func stockDecrementPipeline(quantity int) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"quantity": bson.M{"$max": bson.A{
				0,
				bson.M{"$subtract": bson.A{"$quantity", quantity}},
			}},
			"salesCount": bson.M{"$add": bson.A{"$salesCount", quantity}},
		}}},
	}
}

func decrementStock(db *mongo.Database, productID primitive.ObjectID, quantity int) error {
	ctx, cancel := dbContext()
	defer cancel()

	result, err := db.Collection("products").UpdateOne(ctx,
		bson.M{"_id": productID}, stockDecrementPipeline(quantity))
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("product %s not found", productID.Hex())
	}
	return nil
}

// persistPaymentReference retries the reference write; the webhook's
// reference-fallback lookup depends on it being stored.
func persistPaymentReference(db *mongo.Database, orderID primitive.ObjectID, reference string) error {
	return withRetries(3, 200*time.Millisecond, func() error {
		ctx, cancel := dbContext()
		defer cancel()

		_, err := db.Collection("orders").UpdateByID(ctx, orderID, bson.M{
			"$set": bson.M{"paymentInfo.reference": reference},
		})
		return err
	})
}

func markOrderFailed(db *mongo.Database, orderID primitive.ObjectID, tx *paystack.Transaction) error {
	ctx, cancel := dbContext()
	defer cancel()

	_, err := db.Collection("orders").UpdateOne(ctx,
		bson.M{"_id": orderID, "status": models.OrderStatusPendingPayment},
		failedConfirmationUpdate(tx, time.Now().UTC()),
	)
	return err
}

func parsePaidAt(value string) time.Time {
	if value != "" {
		if parsed, err := time.Parse(time.RFC3339, value); err == nil {
			return parsed
		}
	}
	return time.Now().UTC()
}
