package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/adomtravels/adomtravels-backend/internal/database"
	"github.com/adomtravels/adomtravels-backend/internal/handlers"
	"github.com/adomtravels/adomtravels-backend/internal/middleware"
	"github.com/adomtravels/adomtravels-backend/internal/notify"
	"github.com/adomtravels/adomtravels-backend/internal/payments"
	"github.com/adomtravels/adomtravels-backend/internal/services"
	"github.com/adomtravels/adomtravels-backend/internal/workflow"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment")
	}

	// Initialize database with better error handling
	db, err := database.InitDB()
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Get underlying SQL DB instance
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get database instance: %v", err)
	}

	// Configure connection pool
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	// Initialize Redis
	if err := services.InitRedis(); err != nil {
		log.Fatalf("Failed to initialize Redis: %v", err)
	}

	// Initialize Storage (S3 or local fallback)
	if err := services.InitStorage(); err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	// Initialize WebSocket hub and feed it status updates from every instance
	hub := services.NewHub()
	go hub.Run()
	services.SubscribeStatusUpdates(context.Background(), hub.Broadcast)

	// Core services
	bookings := workflow.NewBookingWorkflow(db)
	quotes := workflow.NewQuoteWorkflow(db)
	dispatcher := notify.NewDispatcher(30 * time.Second)
	notifier := notify.NewNotifier(notify.NewAfricasTalkingSMS(), notify.NewSMTPEmail(), dispatcher)
	paystack := payments.NewPaystackClient()
	completion := payments.NewCompletionHandler(bookings, quotes, payments.NewGuard(db), notifier)

	// Initialize router
	r := gin.Default()

	// Configure CORS
	config := cors.DefaultConfig()
	config.AllowOrigins = []string{"*"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	r.Use(cors.New(config))

	// Serve locally stored documents when S3 is not configured
	r.Static("/uploads", "/app/uploads")

	// Routes
	api := r.Group("/api")
	{
		// Public routes
		auth := api.Group("/auth")
		{
			auth.POST("/register", handlers.Register(db))
			auth.POST("/login", handlers.Login(db))
		}

		api.POST("/quotes", handlers.CreateQuote(quotes, notifier))
		api.GET("/track/quotes/:reference", handlers.TrackQuote(quotes))
		api.GET("/track/bookings/:reference", handlers.TrackBooking(bookings))

		// Payment provider callbacks
		api.POST("/payments/webhook/paystack", handlers.PaystackWebhook(completion, paystack))

		// Protected routes
		protected := api.Group("/")
		protected.Use(middleware.AuthMiddleware())
		{
			protected.POST("/bookings", handlers.CreateBooking(bookings, notifier))
			protected.GET("/bookings/:id", handlers.GetBooking(bookings))
			protected.POST("/payments/initialize", handlers.InitializePayment(bookings, quotes, paystack))
			protected.GET("/payments/verify/:reference", handlers.VerifyPayment(completion, paystack))
			protected.POST("/documents", handlers.UploadDocument())

			// Admin routes
			admin := protected.Group("/admin")
			admin.Use(middleware.AdminOnly())
			{
				admin.GET("/ws", handlers.WebSocketHandler(hub))

				admin.GET("/bookings", handlers.ListBookings(bookings))
				admin.GET("/bookings/:id/history", handlers.GetBookingHistory(bookings))
				admin.PATCH("/bookings/:id/status", handlers.UpdateBookingStatus(bookings, notifier, hub))
				admin.PATCH("/bookings/:id/pricing", handlers.UpdateBookingPricing(bookings))
				admin.POST("/bookings/:id/notes", handlers.AddBookingNote(bookings))

				admin.GET("/quotes", handlers.ListQuotes(quotes))
				admin.GET("/quotes/:id/history", handlers.GetQuoteHistory(quotes))
				admin.PATCH("/quotes/:id/status", handlers.UpdateQuoteStatus(quotes, notifier, hub))
				admin.PATCH("/quotes/:id/pricing", handlers.UpdateQuotePricing(quotes))
				admin.POST("/quotes/:id/notes", handlers.AddQuoteNote(quotes))
				admin.POST("/quotes/:id/provide", handlers.ProvideQuote(quotes, paystack, notifier, hub))
			}
		}
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	if err := r.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
