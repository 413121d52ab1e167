package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"ivorybeauty/internal/middleware"
	"ivorybeauty/internal/models"
)

type cartViewItem struct {
	Name     string             `json:"name"`
	Price    float64            `json:"price"`
	Quantity int                `json:"quantity"`
	Total    float64            `json:"total"`
	Product  primitive.ObjectID `json:"product"`
	ImageURL string             `json:"imageUrl"`
}

type cartView struct {
	CartItems []cartViewItem `json:"cartItems"`
	Total     float64        `json:"total"`
	CartCount int            `json:"cartCount"`
}

// GetCart returns the joined cart for the caller. A missing cart is the
// empty shape, never an error.
func GetCart(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, "GetCart")

		userID := middleware.UserID(c)

		ctx, cancel := dbContext()
		defer cancel()

		var cart models.Cart
		err := db.Collection("carts").FindOne(ctx, bson.M{"userId": userID}).Decode(&cart)
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusOK, emptyCartView())
			return
		}
		if err != nil {
			logHandlerError(c, "GetCart", err)
			respondError(c, http.StatusInternalServerError, "could not load cart")
			return
		}

		view, err := joinCart(db, cart.Items)
		if err != nil {
			logHandlerError(c, "GetCart", err)
			respondError(c, http.StatusInternalServerError, "could not load cart")
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

type addToCartInput struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"omitempty,min=1"`
}

// AddToCart appends or increments a line item in the caller's cart,
// creating the cart on first use.
func AddToCart(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, "AddToCart")

		var input addToCartInput
		if err := c.ShouldBindJSON(&input); err != nil {
			respondBindingError(c, err)
			return
		}
		if input.Quantity == 0 {
			input.Quantity = 1
		}

		productID, err := primitive.ObjectIDFromHex(input.ProductID)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid product id")
			return
		}

		userID := middleware.UserID(c)

		ctx, cancel := dbContext()
		defer cancel()

		count, err := db.Collection("products").CountDocuments(ctx, bson.M{"_id": productID})
		if err != nil {
			logHandlerError(c, "AddToCart", err)
			respondError(c, http.StatusInternalServerError, "could not update cart")
			return
		}
		if count == 0 {
			respondError(c, http.StatusNotFound, "product not found")
			return
		}

		var cart models.Cart
		err = db.Collection("carts").FindOne(ctx, bson.M{"userId": userID}).Decode(&cart)
		if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
			logHandlerError(c, "AddToCart", err)
			respondError(c, http.StatusInternalServerError, "could not update cart")
			return
		}

		cart.UserID = userID
		cart.Items = mergeCartItem(cart.Items, productID, input.Quantity)

		if err := saveCart(db, &cart); err != nil {
			logHandlerError(c, "AddToCart", err)
			respondError(c, http.StatusInternalServerError, "could not update cart")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":   true,
			"cartCount": countCartItems(cart.Items),
		})
	}
}

type updateCartInput struct {
	ProductID string `json:"productId" binding:"required"`
	Action    string `json:"action" binding:"required,oneof=increase decrease"`
}

// UpdateCartItem applies increase/decrease to one line item. Decrease
// floors at quantity 1; removal is its own endpoint.
func UpdateCartItem(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, "UpdateCartItem")

		var input updateCartInput
		if err := c.ShouldBindJSON(&input); err != nil {
			respondBindingError(c, err)
			return
		}

		productID, err := primitive.ObjectIDFromHex(input.ProductID)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid product id")
			return
		}

		userID := middleware.UserID(c)

		ctx, cancel := dbContext()
		defer cancel()

		var cart models.Cart
		err = db.Collection("carts").FindOne(ctx, bson.M{"userId": userID}).Decode(&cart)
		if errors.Is(err, mongo.ErrNoDocuments) {
			respondError(c, http.StatusNotFound, "cart not found")
			return
		}
		if err != nil {
			logHandlerError(c, "UpdateCartItem", err)
			respondError(c, http.StatusInternalServerError, "could not update cart")
			return
		}

		items, found := applyCartAction(cart.Items, productID, input.Action)
		if !found {
			respondError(c, http.StatusNotFound, "item not in cart")
			return
		}
		cart.Items = items

		if err := saveCart(db, &cart); err != nil {
			logHandlerError(c, "UpdateCartItem", err)
			respondError(c, http.StatusInternalServerError, "could not update cart")
			return
		}

		respondWithCartView(c, db, cart.Items, "UpdateCartItem")
	}
}

type removeCartInput struct {
	ProductID string `json:"productId" binding:"required"`
}

// RemoveCartItem deletes a line item outright regardless of quantity.
func RemoveCartItem(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, "RemoveCartItem")

		var input removeCartInput
		if err := c.ShouldBindJSON(&input); err != nil {
			respondBindingError(c, err)
			return
		}

		productID, err := primitive.ObjectIDFromHex(input.ProductID)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid product id")
			return
		}

		userID := middleware.UserID(c)

		ctx, cancel := dbContext()
		defer cancel()

		var cart models.Cart
		err = db.Collection("carts").FindOne(ctx, bson.M{"userId": userID}).Decode(&cart)
		if errors.Is(err, mongo.ErrNoDocuments) {
			respondError(c, http.StatusNotFound, "cart not found")
			return
		}
		if err != nil {
			logHandlerError(c, "RemoveCartItem", err)
			respondError(c, http.StatusInternalServerError, "could not update cart")
			return
		}

		items, found := removeCartLine(cart.Items, productID)
		if !found {
			respondError(c, http.StatusNotFound, "item not in cart")
			return
		}
		cart.Items = items

		if err := saveCart(db, &cart); err != nil {
			logHandlerError(c, "RemoveCartItem", err)
			respondError(c, http.StatusInternalServerError, "could not update cart")
			return
		}

		respondWithCartView(c, db, cart.Items, "RemoveCartItem")
	}
}

func respondWithCartView(c *gin.Context, db *mongo.Database, items []models.CartItem, tag string) {
	view, err := joinCart(db, items)
	if err != nil {
		logHandlerError(c, tag, err)
		respondError(c, http.StatusInternalServerError, "could not load cart")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"cartItems": view.CartItems,
		"total":     view.Total,
		"cartCount": view.CartCount,
	})
}

func saveCart(db *mongo.Database, cart *models.Cart) error {
	ctx, cancel := dbContext()
	defer cancel()

	if cart.ID.IsZero() {
		result, err := db.Collection("carts").InsertOne(ctx, cart)
		if err != nil {
			return err
		}
		if id, ok := result.InsertedID.(primitive.ObjectID); ok {
			cart.ID = id
		}
		return nil
	}

	_, err := db.Collection("carts").UpdateByID(ctx, cart.ID, bson.M{
		"$set": bson.M{"items": cart.Items},
	})
	return err
}

func joinCart(db *mongo.Database, items []models.CartItem) (cartView, error) {
	products, err := fetchCartProducts(db, items)
	if err != nil {
		return cartView{}, fmt.Errorf("join cart products: %w", err)
	}
	return buildCartView(items, products), nil
}

func fetchCartProducts(db *mongo.Database, items []models.CartItem) (map[primitive.ObjectID]models.Product, error) {
	products := make(map[primitive.ObjectID]models.Product, len(items))
	if len(items) == 0 {
		return products, nil
	}

	ids := make([]primitive.ObjectID, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}

	ctx, cancel := dbContext()
	defer cancel()

	cursor, err := db.Collection("products").Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, options.Find())
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var product models.Product
		if err := cursor.Decode(&product); err != nil {
			return nil, err
		}
		products[product.ID] = product
	}
	return products, cursor.Err()
}

// buildCartView joins line items with live product data. Items whose
// product was deleted since they were added are skipped.
func buildCartView(items []models.CartItem, products map[primitive.ObjectID]models.Product) cartView {
	view := emptyCartView()
	for _, item := range items {
		product, ok := products[item.ProductID]
		if !ok {
			continue
		}
		lineTotal := product.Price * float64(item.Quantity)
		view.CartItems = append(view.CartItems, cartViewItem{
			Name:     product.Name,
			Price:    product.Price,
			Quantity: item.Quantity,
			Total:    lineTotal,
			Product:  product.ID,
			ImageURL: product.ImageURL,
		})
		view.Total += lineTotal
		view.CartCount += item.Quantity
	}
	return view
}

func emptyCartView() cartView {
	return cartView{CartItems: []cartViewItem{}}
}

// mergeCartItem increments the existing line for the product or appends a
// new one; a product never gets two lines.
func mergeCartItem(items []models.CartItem, productID primitive.ObjectID, quantity int) []models.CartItem {
	for i := range items {
		if items[i].ProductID == productID {
			items[i].Quantity += quantity
			return items
		}
	}
	return append(items, models.CartItem{ProductID: productID, Quantity: quantity})
}

// applyCartAction adjusts one line's quantity. Decrease floors at 1.
func applyCartAction(items []models.CartItem, productID primitive.ObjectID, action string) ([]models.CartItem, bool) {
	for i := range items {
		if items[i].ProductID != productID {
			continue
		}
		switch action {
		case "increase":
			items[i].Quantity++
		case "decrease":
			if items[i].Quantity > 1 {
				items[i].Quantity--
			}
		}
		return items, true
	}
	return items, false
}

func removeCartLine(items []models.CartItem, productID primitive.ObjectID) ([]models.CartItem, bool) {
	for i := range items {
		if items[i].ProductID == productID {
			return append(items[:i], items[i+1:]...), true
		}
	}
	return items, false
}

func countCartItems(items []models.CartItem) int {
	count := 0
	for _, item := range items {
		count += item.Quantity
	}
	return count
}
