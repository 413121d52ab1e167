package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	OrderStatusPendingPayment = "pending-payment"
	OrderStatusProcessing     = "processing"
	OrderStatusShipped        = "shipped"
	OrderStatusDelivered      = "delivered"
	OrderStatusCancelled      = "cancelled"
	OrderStatusFailed         = "failed"
)

// AllowedOrderStatuses is the full admin-settable set. Transitions between
// members are unrestricted; operators move orders freely (e.g. cancelled
// back to processing after a customer call).
var AllowedOrderStatuses = map[string]bool{
	OrderStatusPendingPayment: true,
	OrderStatusProcessing:     true,
	OrderStatusShipped:        true,
	OrderStatusDelivered:      true,
	OrderStatusCancelled:      true,
	OrderStatusFailed:         true,
}

// Order is a snapshot of a checkout attempt. Line items freeze the product
// price at purchase time; the record itself is never deleted.
type Order struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID       primitive.ObjectID `bson:"userId,omitempty" json:"userId,omitempty"`
	Items        []OrderItem        `bson:"items" json:"items"`
	ShippingInfo ShippingInfo       `bson:"shippingInfo" json:"shippingInfo"`
	PaymentInfo  PaymentInfo        `bson:"paymentInfo" json:"paymentInfo"`
	Subtotal     float64            `bson:"subtotal" json:"subtotal"`
	Tax          float64            `bson:"tax" json:"tax"`
	ShippingCost float64            `bson:"shippingCost" json:"shippingCost"`
	Total        float64            `bson:"total" json:"total"`
	Status       string             `bson:"status" json:"status"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type OrderItem struct {
	ProductID       primitive.ObjectID `bson:"productId" json:"productId"`
	Name            string             `bson:"name" json:"name"`
	Quantity        int                `bson:"quantity" json:"quantity"`
	PriceAtPurchase float64            `bson:"priceAtPurchase" json:"priceAtPurchase"`
}

type ShippingInfo struct {
	FirstName    string `bson:"firstName" json:"firstName"`
	LastName     string `bson:"lastName" json:"lastName"`
	Email        string `bson:"email" json:"email"`
	Phone        string `bson:"phone" json:"phone"`
	Address      string `bson:"address" json:"address"`
	City         string `bson:"city" json:"city"`
	State        string `bson:"state" json:"state"`
	Method       string `bson:"method" json:"method"`
	Instructions string `bson:"instructions,omitempty" json:"instructions,omitempty"`
}

type PaymentInfo struct {
	Method    string     `bson:"method" json:"method"`
	Reference string     `bson:"reference,omitempty" json:"reference,omitempty"`
	Channel   string     `bson:"channel,omitempty" json:"channel,omitempty"`
	Status    string     `bson:"status" json:"status"`
	PaidAt    *time.Time `bson:"paidAt,omitempty" json:"paidAt,omitempty"`
}
