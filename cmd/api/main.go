package main

import (
	"log"
	"os"
	"time"

	"github.com/Vishwajit-29/AgroRent/internal/database"
	"github.com/Vishwajit-29/AgroRent/internal/handlers"
	"github.com/Vishwajit-29/AgroRent/internal/middleware"
	"github.com/Vishwajit-29/AgroRent/internal/services"
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

	// Initialize Redis (optional - equipment reads fall back to the database)
	if err := services.InitRedis(); err != nil {
		log.Printf("Redis initialization warning: %v", err)
	}

	// Initialize Storage (S3 or local fallback)
	if err := services.InitStorage(); err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	bookingService := services.NewBookingService(db)
	searchService := services.NewSearchService(db)

	// Initialize router
	r := gin.Default()

	// Configure CORS
	config := cors.DefaultConfig()
	config.AllowOrigins = []string{"*"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	r.Use(cors.New(config))

	// Serve locally stored equipment images
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

		// Public catalog reads
		api.GET("/categories", handlers.GetCategories())
		api.POST("/equipment/search", handlers.SearchEquipment(searchService))
		api.GET("/equipment/public/:id", handlers.GetEquipment(db))
		api.GET("/equipment/nearby", handlers.GetNearbyEquipment(searchService))
		api.GET("/equipment/category/:category", handlers.GetEquipmentByCategory(searchService))

		// Protected routes
		protected := api.Group("/")
		protected.Use(middleware.AuthMiddleware())
		{
			// User routes
			users := protected.Group("/users")
			{
				users.GET("/profile", handlers.GetProfile(db))
				users.PUT("/profile", handlers.UpdateProfile(db))
			}

			// Equipment management (owner side)
			equipment := protected.Group("/equipment")
			{
				equipment.POST("", handlers.CreateEquipment(db))
				equipment.GET("/my", handlers.GetMyEquipment(db))
				equipment.PUT("/:id", handlers.UpdateEquipment(db))
				equipment.DELETE("/:id", handlers.DeleteEquipment(db, bookingService))
				equipment.PATCH("/:id/availability", handlers.ToggleAvailability(db))
				equipment.POST("/:id/images", handlers.UploadEquipmentImages(db))
			}

			// Bookings routes
			bookings := protected.Group("/bookings")
			{
				bookings.POST("/create", handlers.CreateBooking(bookingService))
				bookings.GET("/my", handlers.GetMyBookings(bookingService))
				bookings.GET("/renter", handlers.GetRenterBookings(bookingService))
				bookings.GET("/renter/pending", handlers.GetPendingBookingRequests(bookingService))
				bookings.GET("/:id", handlers.GetBooking(bookingService))
				bookings.PATCH("/renter/:id/approve", handlers.ApproveBooking(bookingService))
				bookings.PATCH("/renter/:id/reject", handlers.RejectBooking(bookingService))
				bookings.PATCH("/renter/:id/start", handlers.StartBooking(bookingService))
				bookings.PATCH("/renter/:id/complete", handlers.CompleteBooking(bookingService))
				bookings.PATCH("/:id/cancel", handlers.CancelBooking(bookingService))
				bookings.POST("/my/:id/rate", handlers.RateAsBorrower(bookingService))
				bookings.POST("/renter/:id/rate", handlers.RateAsOwner(bookingService))
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
