package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rahul-cmtai/nexa-bknd/auth"
	checkoutControllers "github.com/rahul-cmtai/nexa-bknd/controllers/checkout"
	orderControllers "github.com/rahul-cmtai/nexa-bknd/controllers/order"
	productControllers "github.com/rahul-cmtai/nexa-bknd/controllers/product"
	"github.com/rahul-cmtai/nexa-bknd/models"
	"github.com/rahul-cmtai/nexa-bknd/routes"
	"github.com/rahul-cmtai/nexa-bknd/services/email"
	"github.com/rahul-cmtai/nexa-bknd/services/payment"
	"github.com/rahul-cmtai/nexa-bknd/services/storage"
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	log.SetFormatter(&log.JSONFormatter{})
	log.Info("Starting application...")

	// Load environment variables
	_ = godotenv.Load()

	// Init DB
	db := initDatabase()

	// Auto-migrate all tables
	if err := db.AutoMigrate(
		&models.User{},
		&models.Address{},
		&models.Product{},
		&models.Category{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.Coupon{},
	); err != nil {
		log.Fatalf("AutoMigrate failed: %v", err)
	}

	// Identity provider for /auth/google
	if err := auth.InitFirebase(); err != nil {
		log.Warnf("Firebase auth not configured: %v", err)
	}

	// Payment gateway; checkout and refunds cannot run without it
	pay, err := payment.NewFromEnv()
	if err != nil {
		log.Fatalf("Payment gateway not configured: %v", err)
	}

	// Order confirmation emails; optional, checkout works without it
	mailer := email.NewFromEnv()

	// Product image storage
	var store productControllers.ImageStore
	if s3, err := storage.NewS3FromEnv(); err != nil {
		log.Warnf("S3 storage not configured: %v", err)
	} else {
		store = s3
	}

	// Checkout pushes order events through the websocket feed
	checkoutControllers.SetOrderPublisher(orderControllers.PublishOrderEvent)

	// Gin setup
	r := gin.Default()

	// Allow large uploads for excel imports and product images
	r.MaxMultipartMemory = 32 << 20 // 32MB

	// CORS settings
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-API-KEY"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Setup routes
	routes.SetupRoutes(r, routes.Deps{
		DB:      db,
		Pay:     pay,
		Mailer:  mailer,
		Storage: store,
	})

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Infof("Server running on port %s...", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// initDatabase sets up the GORM DB connection
func initDatabase() *gorm.DB {
	if databaseURL := os.Getenv("DATABASE_URL"); databaseURL != "" {
		db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{})
		if err != nil {
			log.Fatalf("DB connection failed: %v", err)
		}
		return db
	}

	host := os.Getenv("DB_HOST")
	port := os.Getenv("DB_PORT")
	user := os.Getenv("DB_USER")
	password := os.Getenv("DB_PASSWORD")
	dbname := os.Getenv("DB_NAME")

	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		host, user, password, dbname, port,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect DB: %v", err)
	}
	return db
}
