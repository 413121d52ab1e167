package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"ivorybeauty/internal/models"
)

const recentOrderLimit = 5

type recentOrderView struct {
	ID             primitive.ObjectID `json:"id"`
	Customer       string             `json:"customer"`
	ProductName    string             `json:"productName"`
	Total          float64            `json:"total"`
	FormattedTotal string             `json:"formattedTotal"`
	Status         string             `json:"status"`
	FormattedDate  string             `json:"formattedDate"`
}

type collectionCountView struct {
	ID           primitive.ObjectID `json:"id"`
	Name         string             `json:"name"`
	ProductCount int64              `json:"productCount"`
}

// GetDashboard composes the admin landing rollups: lifetime sales, entity
// counts, the most recent orders and per-collection product counts.
func GetDashboard(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, "GetDashboard")

		ctx, cancel := dbContext()
		defer cancel()

		totalSales, err := sumOrderTotals(db)
		if err != nil {
			logHandlerError(c, "GetDashboard", err)
			respondError(c, http.StatusInternalServerError, "could not load dashboard")
			return
		}

		orderCount, err := db.Collection("orders").CountDocuments(ctx, bson.M{})
		if err != nil {
			logHandlerError(c, "GetDashboard", err)
			respondError(c, http.StatusInternalServerError, "could not load dashboard")
			return
		}
		customerCount, err := db.Collection("users").CountDocuments(ctx, bson.M{})
		if err != nil {
			logHandlerError(c, "GetDashboard", err)
			respondError(c, http.StatusInternalServerError, "could not load dashboard")
			return
		}
		productCount, err := db.Collection("products").CountDocuments(ctx, bson.M{})
		if err != nil {
			logHandlerError(c, "GetDashboard", err)
			respondError(c, http.StatusInternalServerError, "could not load dashboard")
			return
		}

		recentOrders, err := fetchRecentOrders(db)
		if err != nil {
			logHandlerError(c, "GetDashboard", err)
			respondError(c, http.StatusInternalServerError, "could not load dashboard")
			return
		}

		collectionCounts, err := countProductsPerCollection(db)
		if err != nil {
			logHandlerError(c, "GetDashboard", err)
			respondError(c, http.StatusInternalServerError, "could not load dashboard")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data": gin.H{
				"totalSales":          totalSales,
				"formattedTotalSales": formatNaira(totalSales),
				"orderCount":          orderCount,
				"customerCount":       customerCount,
				"productCount":        productCount,
				"recentOrders":        recentOrders,
				"collections":         collectionCounts,
			},
		})
	}
}

// sumOrderTotals sums every order's total in one aggregate. Lifetime, not
// windowed by date.
func sumOrderTotals(db *mongo.Database) (float64, error) {
	ctx, cancel := dbContext()
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":        nil,
			"totalSales": bson.M{"$sum": "$total"},
		}}},
	}

	cursor, err := db.Collection("orders").Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	var result struct {
		TotalSales float64 `bson:"totalSales"`
	}
	if cursor.Next(ctx) {
		if err := cursor.Decode(&result); err != nil {
			return 0, err
		}
	}
	return result.TotalSales, cursor.Err()
}

func fetchRecentOrders(db *mongo.Database) ([]recentOrderView, error) {
	ctx, cancel := dbContext()
	defer cancel()

	findOptions := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(recentOrderLimit)

	cursor, err := db.Collection("orders").Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var orders []models.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}

	views := make([]recentOrderView, 0, len(orders))
	for _, order := range orders {
		views = append(views, recentOrderView{
			ID:             order.ID,
			Customer:       customerLabel(order),
			ProductName:    leadProductName(db, order),
			Total:          order.Total,
			FormattedTotal: formatNaira(order.Total),
			Status:         order.Status,
			FormattedDate:  formatDate(order.CreatedAt),
		})
	}
	return views, nil
}

func customerLabel(order models.Order) string {
	name := order.ShippingInfo.FirstName + " " + order.ShippingInfo.LastName
	if name == " " {
		return "Guest"
	}
	return name
}

// leadProductName labels an order by its first line item: the live product
// name when the product still exists, else the name frozen on the line,
// else a literal fallback.
func leadProductName(db *mongo.Database, order models.Order) string {
	if len(order.Items) == 0 {
		return "Unknown Product"
	}
	lead := order.Items[0]

	ctx, cancel := dbContext()
	defer cancel()

	var product models.Product
	err := db.Collection("products").FindOne(ctx, bson.M{"_id": lead.ProductID}).Decode(&product)
	if err == nil && product.Name != "" {
		return product.Name
	}
	if lead.Name != "" {
		return lead.Name
	}
	return "Unknown Product"
}

// countProductsPerCollection issues one count per collection. Fine at
// catalog scale; revisit with an aggregate if collections grow.
func countProductsPerCollection(db *mongo.Database) ([]collectionCountView, error) {
	ctx, cancel := dbContext()
	defer cancel()

	cursor, err := db.Collection("collections").Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var collections []models.Collection
	if err := cursor.All(ctx, &collections); err != nil {
		return nil, err
	}

	views := make([]collectionCountView, 0, len(collections))
	for _, collection := range collections {
		count, err := db.Collection("products").CountDocuments(ctx, productsByCollectionFilter(collection.ID))
		if err != nil {
			return nil, err
		}
		views = append(views, collectionCountView{
			ID:           collection.ID,
			Name:         collection.Name,
			ProductCount: count,
		})
	}
	return views, nil
}
