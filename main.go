package main

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/LogicSense29/addedvalue-store-sub000/config"
	"github.com/LogicSense29/addedvalue-store-sub000/consumers"
	"github.com/LogicSense29/addedvalue-store-sub000/controllers"
	"github.com/LogicSense29/addedvalue-store-sub000/database"
	"github.com/LogicSense29/addedvalue-store-sub000/middlewares"
	"github.com/LogicSense29/addedvalue-store-sub000/rabbitmq"
	"github.com/LogicSense29/addedvalue-store-sub000/utils"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Proceeding with environment variables.")
	}

	cfg := config.LoadConfig()

	if err := database.InitDB(); err != nil {
		log.Fatalf("Database initialization failed: %v", err)
	}
	defer database.CloseDB()

	if err := database.Migrate(); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	emailService := utils.NewEmailService(cfg)

	rmq, err := rabbitmq.NewRabbitMQ(cfg)
	if err != nil {
		log.Fatalf("RabbitMQ initialization failed: %v", err)
	}
	defer rmq.Close()

	if err := rmq.SetupQueues(); err != nil {
		log.Fatalf("Failed to setup RabbitMQ queues: %v", err)
	}

	consumers.StartEventConsumer(rmq.Channel, cfg, emailService)

	controllers.Init(database.DB, rmq)

	r := gin.Default()

	r.Use(middlewares.PrometheusMiddleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// OTP endpoints are unauthenticated: a signup code precedes an account.
	r.POST("/otp/issue", controllers.IssueOtp)
	r.POST("/otp/verify", controllers.VerifyOtp)

	r.GET("/products/:id/stock", controllers.CheckStock)
	r.GET("/products/:id/ratings", controllers.GetProductRatings)

	authGroup := r.Group("/api")
	authGroup.Use(middlewares.AuthMiddleware())
	{
		authGroup.POST("/checkout", controllers.Checkout)
		authGroup.GET("/orders", controllers.GetUserOrders)
		authGroup.GET("/orders/:id", controllers.GetOrderDetails)
		authGroup.PUT("/orders/:id/status", controllers.AdvanceOrderStatus)
		authGroup.POST("/ratings", controllers.SubmitRating)
		authGroup.POST("/wishlist", controllers.AddToWishlist)
		authGroup.DELETE("/wishlist/:id", controllers.RemoveFromWishlist)
		authGroup.GET("/wishlist", controllers.GetWishlist)
		authGroup.PUT("/products/:id/stock", controllers.SetStock)
		authGroup.POST("/messages", controllers.SendMessage)
		authGroup.GET("/messages", controllers.GetInbox)
	}

	// Payment collaborator callback; redelivery-safe.
	r.POST("/payments/:id/confirm", controllers.ConfirmPayment)

	port := ":" + cfg.ServerPort
	log.Printf("Storefront service starting on port %s", port)
	if err := r.Run(port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
