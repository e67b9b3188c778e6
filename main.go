package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/streadway/amqp"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"inventory/internal/handlers"
	"inventory/internal/middleware"
	"inventory/internal/models"
	"inventory/internal/repositories"
	"inventory/internal/services"
	"inventory/pkg/rabbitmq"

	"github.com/spf13/viper"
)

func main() {
	// --- Configuration ---
	viper.SetDefault("APP_PORT", ":8080")
	viper.SetDefault("DB_DRIVER", "sqlite")
	viper.SetDefault("DB_DSN", "data/inventory.db")
	viper.SetDefault("UPLOAD_DIR", "uploads")
	viper.SetDefault("MAX_UPLOAD_SIZE", 5*1024*1024)
	viper.SetDefault("BODY_LIMIT", 50*1024*1024)
	viper.SetDefault("RABBITMQ_URL", "")
	viper.AutomaticEnv()

	appPort := viper.GetString("APP_PORT")
	uploadDir := viper.GetString("UPLOAD_DIR")
	maxUploadSize := viper.GetInt64("MAX_UPLOAD_SIZE")

	// --- Record Store ---
	db, err := openDatabase(viper.GetString("DB_DRIVER"), viper.GetString("DB_DSN"))
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	if err := db.AutoMigrate(&models.Product{}); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// --- RabbitMQ Client (optional) ---
	// An empty RABBITMQ_URL disables event publishing; the store works
	// standalone.
	var mqClient *rabbitmq.Client
	if mqURL := viper.GetString("RABBITMQ_URL"); mqURL != "" {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: mqURL})
		if err != nil {
			log.Fatalf("Failed to initialize RabbitMQ client: %v", err)
		}
		defer mqClient.Close()
	} else {
		log.Println("RABBITMQ_URL not set, event publishing disabled")
	}
	var events services.EventPublisher
	if mqClient != nil {
		events = mqClient
	}

	// --- Initialize Repositories and Services ---
	assetService, err := services.NewAssetService(uploadDir, maxUploadSize)
	if err != nil {
		log.Fatalf("Failed to initialize asset storage: %v", err)
	}
	productRepo := repositories.NewGORMProductRepository(db)
	productService := services.NewProductService(productRepo, assetService, events)
	importService := services.NewImportService(productRepo, events)
	exportService := services.NewExportService(productRepo)

	// --- Initialize Handlers ---
	productHandler := handlers.NewProductHandler(productService)
	importHandler := handlers.NewImportHandler(importService, exportService)

	// --- Initialize Fiber App ---
	app := fiber.New(fiber.Config{
		BodyLimit: viper.GetInt("BODY_LIMIT"),
	})

	// --- Middleware ---
	app.Use(logger.New()) // Request logger
	app.Use(middleware.MaxUpload(viper.GetInt64("BODY_LIMIT")))

	// Uploaded assets are served from a public static path.
	app.Static("/uploads", uploadDir)

	// --- API Routes ---
	api := app.Group("/api")
	// Import/export routes first so /products/export and
	// /products/bulk-import are not shadowed by /products/:id.
	importHandler.RegisterRoutes(api)
	productHandler.RegisterRoutes(api)

	// --- Health Check Endpoint ---
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// --- Start RabbitMQ Consumer in a Goroutine ---
	if mqClient != nil {
		go func() {
			log.Println("Starting RabbitMQ consumer for inventory events...")
			messageHandler := func(msg amqp.Delivery) error {
				log.Printf("Received Inventory Event (Tag: %d): %s", msg.DeliveryTag, string(msg.Body))
				return nil
			}
			if consumerErr := mqClient.ConsumeInventoryEvents(messageHandler); consumerErr != nil {
				log.Printf("Failed to start RabbitMQ consumer: %v", consumerErr)
			}
		}()
	}

	// --- Start HTTP Server ---
	log.Printf("Starting server on port %s", appPort)

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(appPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}
	log.Println("Server gracefully stopped")
}

// openDatabase opens the configured record store. SQLite is the default and
// gets its data directory created on first run; Postgres is the production
// option.
func openDatabase(driver, dsn string) (*gorm.DB, error) {
	switch driver {
	case "postgres":
		return gorm.Open(postgres.Open(dsn), &gorm.Config{})
	case "sqlite":
		if dir := filepath.Dir(dsn); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create data directory %s: %w", dir, err)
			}
		}
		return gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}
}
