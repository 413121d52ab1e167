package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"ivorybeauty/internal/media"
	"ivorybeauty/internal/models"
)

// ListProductsAdmin is the paginated admin catalog view.
func ListProductsAdmin(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, "ListProductsAdmin")

		page, limit := parsePagination(c)

		ctx, cancel := dbContext()
		defer cancel()

		total, err := db.Collection("products").CountDocuments(ctx, bson.M{})
		if err != nil {
			logHandlerError(c, "ListProductsAdmin", err)
			respondError(c, http.StatusInternalServerError, "could not load products")
			return
		}

		findOptions := options.Find().
			SetSort(bson.D{{Key: "name", Value: 1}}).
			SetSkip((page - 1) * limit).
			SetLimit(limit)

		cursor, err := db.Collection("products").Find(ctx, bson.M{}, findOptions)
		if err != nil {
			logHandlerError(c, "ListProductsAdmin", err)
			respondError(c, http.StatusInternalServerError, "could not load products")
			return
		}
		defer cursor.Close(ctx)

		products := []models.Product{}
		if err := cursor.All(ctx, &products); err != nil {
			logHandlerError(c, "ListProductsAdmin", err)
			respondError(c, http.StatusInternalServerError, "could not load products")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":  true,
			"products": products,
			"page":     page,
			"limit":    limit,
			"total":    total,
		})
	}
}

// CreateProduct handles the multipart product form, pushing the image to
// the media host before the document is written.
func CreateProduct(db *mongo.Database, uploader media.Uploader) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, "CreateProduct")

		input, err := parseProductForm(c)
		if err != nil {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		if err := validateNewProduct(input); err != nil {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}

		if err := ensureCollectionExists(db, input.CollectionID); err != nil {
			if errors.Is(err, errCollectionNotFound) {
				respondError(c, http.StatusNotFound, "collection not found")
				return
			}
			logHandlerError(c, "CreateProduct", err)
			respondError(c, http.StatusInternalServerError, "could not create product")
			return
		}

		imageURL, err := uploadProductImage(c, uploader, input)
		if err != nil {
			logHandlerError(c, "CreateProduct", err)
			respondError(c, http.StatusInternalServerError, "image upload failed")
			return
		}

		product := models.Product{
			Name:         input.Name,
			Description:  input.Description,
			Price:        input.Price,
			Quantity:     input.Quantity,
			CollectionID: input.CollectionID,
			ImageURL:     imageURL,
		}

		ctx, cancel := dbContext()
		defer cancel()

		inserted, err := db.Collection("products").InsertOne(ctx, product)
		if err != nil {
			logHandlerError(c, "CreateProduct", err)
			respondError(c, http.StatusInternalServerError, "could not create product")
			return
		}
		product.ID = inserted.InsertedID.(primitive.ObjectID)

		c.JSON(http.StatusCreated, gin.H{"success": true, "product": product})
	}
}

// UpdateProduct applies only the fields present in the form; an omitted
// field keeps its stored value.
func UpdateProduct(db *mongo.Database, uploader media.Uploader) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, "UpdateProduct")

		productID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid product id")
			return
		}

		input, err := parseProductForm(c)
		if err != nil {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}

		updates := bson.M{}
		if input.NameSet {
			updates["name"] = input.Name
		}
		if input.DescriptionSet {
			updates["description"] = input.Description
		}
		if input.PriceSet {
			updates["price"] = input.Price
		}
		if input.QuantitySet {
			updates["quantity"] = input.Quantity
		}
		if input.CollectionIDSet {
			if err := ensureCollectionExists(db, input.CollectionID); err != nil {
				if errors.Is(err, errCollectionNotFound) {
					respondError(c, http.StatusNotFound, "collection not found")
					return
				}
				logHandlerError(c, "UpdateProduct", err)
				respondError(c, http.StatusInternalServerError, "could not update product")
				return
			}
			updates["collectionRef"] = input.CollectionID
		}
		if input.Image != nil {
			imageURL, err := uploadProductImage(c, uploader, input)
			if err != nil {
				logHandlerError(c, "UpdateProduct", err)
				respondError(c, http.StatusInternalServerError, "image upload failed")
				return
			}
			updates["imageUrl"] = imageURL
		}

		if len(updates) == 0 {
			respondError(c, http.StatusBadRequest, "no fields to update")
			return
		}

		ctx, cancel := dbContext()
		defer cancel()

		result := db.Collection("products").FindOneAndUpdate(ctx,
			bson.M{"_id": productID},
			bson.M{"$set": updates},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		)

		var product models.Product
		err = result.Decode(&product)
		if errors.Is(err, mongo.ErrNoDocuments) {
			respondError(c, http.StatusNotFound, "product not found")
			return
		}
		if err != nil {
			logHandlerError(c, "UpdateProduct", err)
			respondError(c, http.StatusInternalServerError, "could not update product")
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "product": product})
	}
}

func DeleteProduct(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, "DeleteProduct")

		productID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid product id")
			return
		}

		ctx, cancel := dbContext()
		defer cancel()

		result, err := db.Collection("products").DeleteOne(ctx, bson.M{"_id": productID})
		if err != nil {
			logHandlerError(c, "DeleteProduct", err)
			respondError(c, http.StatusInternalServerError, "could not delete product")
			return
		}
		if result.DeletedCount == 0 {
			respondError(c, http.StatusNotFound, "product not found")
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

func uploadProductImage(c *gin.Context, uploader media.Uploader, input *productFormInput) (string, error) {
	file, err := input.Image.Open()
	if err != nil {
		return "", err
	}
	defer file.Close()

	return uploader.Upload(c.Request.Context(), file, uuid.NewString())
}
