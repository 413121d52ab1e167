package handlers

import (
	"errors"
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"ivorybeauty/internal/models"
)

type productWithCollection struct {
	models.Product
	CollectionName string `json:"collectionName"`
	FormattedPrice string `json:"formattedPrice"`
}

func decorateProducts(db *mongo.Database, products []models.Product) ([]productWithCollection, error) {
	names, err := collectionNames(db)
	if err != nil {
		return nil, err
	}

	decorated := make([]productWithCollection, 0, len(products))
	for _, product := range products {
		decorated = append(decorated, productWithCollection{
			Product:        product,
			CollectionName: names[product.CollectionID],
			FormattedPrice: formatNaira(product.Price),
		})
	}
	return decorated, nil
}

func collectionNames(db *mongo.Database) (map[primitive.ObjectID]string, error) {
	ctx, cancel := dbContext()
	defer cancel()

	cursor, err := db.Collection("collections").Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	names := make(map[primitive.ObjectID]string)
	for cursor.Next(ctx) {
		var collection models.Collection
		if err := cursor.Decode(&collection); err != nil {
			return nil, err
		}
		names[collection.ID] = collection.Name
	}
	return names, cursor.Err()
}

// ListProducts is the public catalog, each product annotated with its
// collection name and a display price.
func ListProducts(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, "ListProducts")

		ctx, cancel := dbContext()
		defer cancel()

		cursor, err := db.Collection("products").Find(ctx, bson.M{})
		if err != nil {
			logHandlerError(c, "ListProducts", err)
			respondError(c, http.StatusInternalServerError, "could not load products")
			return
		}
		defer cursor.Close(ctx)

		var products []models.Product
		if err := cursor.All(ctx, &products); err != nil {
			logHandlerError(c, "ListProducts", err)
			respondError(c, http.StatusInternalServerError, "could not load products")
			return
		}

		decorated, err := decorateProducts(db, products)
		if err != nil {
			logHandlerError(c, "ListProducts", err)
			respondError(c, http.StatusInternalServerError, "could not load products")
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "products": decorated})
	}
}

func GetProduct(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, "GetProduct")

		productID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid product id")
			return
		}

		ctx, cancel := dbContext()
		defer cancel()

		var product models.Product
		err = db.Collection("products").FindOne(ctx, bson.M{"_id": productID}).Decode(&product)
		if errors.Is(err, mongo.ErrNoDocuments) {
			respondError(c, http.StatusNotFound, "product not found")
			return
		}
		if err != nil {
			logHandlerError(c, "GetProduct", err)
			respondError(c, http.StatusInternalServerError, "could not load product")
			return
		}

		decorated, err := decorateProducts(db, []models.Product{product})
		if err != nil {
			logHandlerError(c, "GetProduct", err)
			respondError(c, http.StatusInternalServerError, "could not load product")
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "product": decorated[0]})
	}
}

// SearchProducts matches the query against product names and
// descriptions, case-insensitively.
func SearchProducts(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, "SearchProducts")

		query := c.Query("query")
		if query == "" {
			respondError(c, http.StatusBadRequest, "query is required")
			return
		}
		pattern := regexp.QuoteMeta(query)

		ctx, cancel := dbContext()
		defer cancel()

		filter := bson.M{"$or": []bson.M{
			{"name": bson.M{"$regex": pattern, "$options": "i"}},
			{"description": bson.M{"$regex": pattern, "$options": "i"}},
		}}

		cursor, err := db.Collection("products").Find(ctx, filter)
		if err != nil {
			logHandlerError(c, "SearchProducts", err)
			respondError(c, http.StatusInternalServerError, "search failed")
			return
		}
		defer cursor.Close(ctx)

		var products []models.Product
		if err := cursor.All(ctx, &products); err != nil {
			logHandlerError(c, "SearchProducts", err)
			respondError(c, http.StatusInternalServerError, "search failed")
			return
		}

		decorated, err := decorateProducts(db, products)
		if err != nil {
			logHandlerError(c, "SearchProducts", err)
			respondError(c, http.StatusInternalServerError, "search failed")
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "products": decorated})
	}
}

// ListPublicCollections lists collections for storefront navigation.
func ListPublicCollections(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, "ListPublicCollections")

		ctx, cancel := dbContext()
		defer cancel()

		cursor, err := db.Collection("collections").Find(ctx, bson.M{})
		if err != nil {
			logHandlerError(c, "ListPublicCollections", err)
			respondError(c, http.StatusInternalServerError, "could not load collections")
			return
		}
		defer cursor.Close(ctx)

		collections := []models.Collection{}
		if err := cursor.All(ctx, &collections); err != nil {
			logHandlerError(c, "ListPublicCollections", err)
			respondError(c, http.StatusInternalServerError, "could not load collections")
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "collections": collections})
	}
}
