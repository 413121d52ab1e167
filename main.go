package main

import (
	"context"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"

	"ivorybeauty/internal/config"
	"ivorybeauty/internal/database"
	"ivorybeauty/internal/handlers"
	"ivorybeauty/internal/media"
	"ivorybeauty/internal/middleware"
	"ivorybeauty/internal/paystack"
)

func main() {
	logrus.SetFormatter(&logrus.JSONFormatter{})

	config.Load()
	if config.AppEnv.MongoURI == "" {
		logrus.Fatal("MONGO_URI is required")
	}
	if config.AppEnv.JWTSecret == "" {
		logrus.Fatal("JWT_SECRET is required")
	}
	if config.AppEnv.PaystackSecretKey == "" {
		logrus.Fatal("PAYSTACK_SECRET_KEY is required")
	}

	client, err := database.Connect(config.AppEnv.MongoURI)
	if err != nil {
		logrus.WithError(err).Fatal("could not connect to mongodb")
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Disconnect(ctx); err != nil {
			logrus.WithError(err).Error("mongodb disconnect failed")
		}
	}()

	db := client.Database(config.AppEnv.DBName)
	ensureIndexes(db)

	uploader, err := media.NewCloudinaryUploader(config.AppEnv.CloudinaryURL, "products")
	if err != nil {
		logrus.WithError(err).Fatal("could not configure media uploader")
	}

	gateway := paystack.New(config.AppEnv.PaystackSecretKey, config.AppEnv.PaystackBaseURL)

	router := buildRouter(db, gateway, uploader)

	logrus.WithField("port", config.AppEnv.Port).Info("starting server")
	if err := router.Run(":" + config.AppEnv.Port); err != nil {
		logrus.WithError(err).Fatal("server exited")
	}
}

func ensureIndexes(db *mongo.Database) {
	steps := []func(*mongo.Database) error{
		database.EnsureUserIndexes,
		database.EnsureAdminIndexes,
		database.EnsureCollectionIndexes,
		database.EnsureCartIndexes,
		database.EnsureOrderIndexes,
	}
	for _, step := range steps {
		if err := step(db); err != nil {
			logrus.WithError(err).Fatal("index creation failed")
		}
	}
}

func buildRouter(db *mongo.Database, gateway *paystack.Client, uploader media.Uploader) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization", middleware.RequestIDHeader)
	router.Use(cors.New(corsConfig))

	authLimit := middleware.AuthRateLimit()
	paymentLimit := middleware.PaymentRateLimit()

	// Public catalog
	router.GET("/products", handlers.ListProducts(db))
	router.GET("/products/search", handlers.SearchProducts(db))
	router.GET("/products/collections", handlers.ListPublicCollections(db))
	router.GET("/products/:id", handlers.GetProduct(db))

	// User accounts
	router.POST("/users/signup", authLimit, handlers.Signup(db))
	router.POST("/users/login", authLimit, handlers.Login(db))
	router.GET("/users/me", middleware.UserAuth(), handlers.Me(db))
	router.GET("/users/landing", middleware.Identify(), handlers.Landing(db))

	// Cart
	cart := router.Group("/cart", middleware.UserAuth())
	{
		cart.GET("", handlers.GetCart(db))
		cart.POST("/add", handlers.AddToCart(db))
		cart.POST("/update", handlers.UpdateCartItem(db))
		cart.POST("/remove", handlers.RemoveCartItem(db))
	}

	// Checkout and payments
	router.GET("/checkout", middleware.UserAuth(), handlers.GetCheckout(db))
	router.POST("/payments/initiate", middleware.UserAuth(), paymentLimit, handlers.InitiatePayment(db, gateway))
	router.GET("/payments/verify", handlers.VerifyPayment(db, gateway))
	router.POST("/payments/webhook", handlers.PaystackWebhook(db))

	// Orders
	router.GET("/orders/:id", middleware.Identify(), handlers.GetOrder(db))

	// Contact
	router.POST("/contact", handlers.Contact())

	// Admin
	router.POST("/admin/signup", authLimit, handlers.AdminSignup(db))
	router.POST("/admin/login", authLimit, handlers.AdminLogin(db))

	admin := router.Group("/admin", middleware.AdminAuth())
	{
		admin.GET("/dashboard", handlers.GetDashboard(db))

		admin.GET("/collections", handlers.ListCollections(db))
		admin.POST("/collections", handlers.CreateCollection(db))
		admin.PUT("/collections/:id", handlers.UpdateCollection(db))
		admin.DELETE("/collections/:id", handlers.DeleteCollection(db))

		admin.GET("/products", handlers.ListProductsAdmin(db))
		admin.POST("/products", handlers.CreateProduct(db, uploader))
		admin.PUT("/products/:id", handlers.UpdateProduct(db, uploader))
		admin.DELETE("/products/:id", handlers.DeleteProduct(db))

		admin.GET("/orders", handlers.ListOrders(db))
		admin.GET("/orders/export", handlers.ExportOrdersCSV(db))
		admin.PATCH("/orders/:id/status", handlers.UpdateOrderStatus(db))

		admin.GET("/customers", handlers.ListCustomers(db))
	}

	return router
}
