package main

import (
	"log"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/campusfit/gym-backend/internal/database"
	"github.com/campusfit/gym-backend/internal/handlers"
	"github.com/campusfit/gym-backend/internal/middleware"
	"github.com/campusfit/gym-backend/internal/models"
	"github.com/campusfit/gym-backend/internal/services"
	"github.com/campusfit/gym-backend/internal/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment")
	}

	db, err := database.InitDB()
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get database instance: %v", err)
	}

	// Configure connection pool
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := services.InitRedis(); err != nil {
		log.Fatalf("Failed to initialize Redis: %v", err)
	}

	// Firebase is optional, push notifications are skipped when unconfigured
	if err := services.InitFirebase(); err != nil {
		log.Printf("Firebase initialization warning: %v", err)
	}

	// Storage (S3 or local fallback) for equipment photos
	if err := services.InitStorage(); err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	hub := services.NewHub()
	go hub.Run()

	st := store.New(db)

	r := gin.Default()

	config := cors.DefaultConfig()
	config.AllowOrigins = []string{"*"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	r.Use(cors.New(config))

	r.Static("/uploads", "/app/uploads")

	api := r.Group("/api")
	{
		// Public routes
		auth := api.Group("/auth")
		{
			auth.POST("/register", handlers.Register(db))
			auth.POST("/login", handlers.Login(db))
			auth.POST("/verify-email", handlers.VerifyEmail(db))
			auth.POST("/forgot-password", handlers.RequestPasswordReset(db))
			auth.POST("/verify-otp", handlers.VerifyOTP(db))
			auth.POST("/reset-password", handlers.ResetPassword(db))
		}

		// WebSocket connection
		api.GET("/ws", middleware.AuthMiddleware(), handlers.WebSocketHandler(hub))

		protected := api.Group("/")
		protected.Use(middleware.AuthMiddleware())
		{
			users := protected.Group("/users")
			{
				users.GET("/profile", handlers.GetProfile(db))
				users.PUT("/profile", handlers.UpdateProfile(db))
			}

			equipment := protected.Group("/equipment")
			{
				equipment.GET("", handlers.ListEquipment(db))
				equipment.GET("/:id", handlers.GetEquipment(st))
				equipment.POST("", middleware.AdminOnly(), handlers.CreateEquipment(db))
				equipment.PUT("/:id", middleware.AdminOnly(), handlers.UpdateEquipment(db))
				equipment.DELETE("/:id", middleware.AdminOnly(), handlers.DeleteEquipment(db))
			}

			borrows := protected.Group("/borrows")
			{
				borrows.POST("", handlers.BorrowEquipment(st))
				borrows.POST("/return-request", handlers.RequestReturn(st))
				borrows.GET("/mine", handlers.MyBorrows(db))
				borrows.POST("/approve-return", middleware.AdminOnly(), handlers.ApproveReturn(st, db, hub))
				borrows.GET("/pending-returns", middleware.AdminOnly(), handlers.ListPendingReturns(st))
			}

			bookings := protected.Group("/bookings")
			{
				bookings.POST("", handlers.CreateBooking(st))
				bookings.GET("/mine", handlers.GetMyBookings(st))
				bookings.GET("", middleware.AdminOnly(), handlers.GetAllBookings(st))
				bookings.PATCH("/status", middleware.AdminOnly(), handlers.UpdateBookingStatus(st, db, hub))
			}

			attendance := protected.Group("/attendance")
			{
				attendance.POST("/check-in", middleware.AdminOnly(), handlers.CheckIn(db, hub))
				attendance.POST("/check-out", middleware.AdminOnly(), handlers.CheckOut(db, hub))
				attendance.GET("/occupancy", handlers.GetOccupancy())
				attendance.GET("/mine", handlers.MyAttendance(db))
				attendance.GET("/report", middleware.AdminOnly(), handlers.AttendanceReport(db))
			}

			trainers := protected.Group("/trainers")
			{
				trainers.GET("/slots", handlers.ListTrainerSlots(db))
				trainers.POST("/slots", middleware.RequireUserType(models.UserTypeTrainer, models.UserTypeAdmin), handlers.CreateTrainerSlot(db))
				trainers.DELETE("/slots/:id", handlers.DeleteTrainerSlot(db))
				trainers.GET("/slots/:id/roster", handlers.SlotRoster(db))
			}

			sessions := protected.Group("/sessions")
			{
				sessions.POST("", handlers.BookSession(st))
				sessions.GET("/mine", handlers.MySessions(db))
				sessions.POST("/:id/cancel", handlers.CancelSession(st))
			}

			notices := protected.Group("/notices")
			{
				notices.GET("", handlers.ListNotices(db))
				notices.POST("", middleware.AdminOnly(), handlers.CreateNotice(db, hub))
				notices.PUT("/:id", middleware.AdminOnly(), handlers.UpdateNotice(db))
				notices.DELETE("/:id", middleware.AdminOnly(), handlers.DeleteNotice(db))
			}

			notifications := protected.Group("/notifications")
			{
				notifications.POST("/register-token", handlers.RegisterFCMToken(db))
				notifications.DELETE("/remove-token", handlers.RemoveFCMToken(db))
				notifications.POST("/test", handlers.TestNotification(db))
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
