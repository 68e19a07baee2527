package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"shoply/cmd/fx/cart_fx"
	"shoply/cmd/fx/controllers_fx"
	"shoply/cmd/fx/db_fx"
	"shoply/cmd/fx/item_fx"
	"shoply/cmd/fx/notification_fx"
	"shoply/cmd/fx/order_fx"
	"shoply/cmd/fx/payment_fx"
	"shoply/cmd/fx/user_fx"
	"shoply/internal/api/controllers"
	"shoply/internal/models/db_models"
	"shoply/pkg/middleware"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment")
	}

	app := fx.New(
		db_fx.Module,
		user_fx.Module,
		item_fx.Module,
		cart_fx.Module,
		order_fx.Module,
		notification_fx.Module,
		payment_fx.Module,
		controllers_fx.Module,

		fx.Provide(ProvideRouter),
		fx.Invoke(StartServer),
	)

	app.Run()
}

func StartServer(lc fx.Lifecycle, engine *gin.Engine) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				port := os.Getenv("PORT")
				if port == "" {
					port = "8080"
				}
				log.Printf("Starting HTTP server at :%s", port)
				if err := engine.Run(":" + port); err != nil {
					log.Fatalf("Failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Println("Stopping HTTP server")
			return nil
		},
	})
}

func ProvideRouter(
	rdb *redis.Client,
	logger *zap.Logger,
	userController *controllers.UserController,
	itemController *controllers.ItemController,
	cartController *controllers.CartController,
	orderController *controllers.OrderController,
	paymentController *controllers.PaymentController,
	webhookController *controllers.WebhookController,
	notificationController *controllers.NotificationController,
) *gin.Engine {

	r := gin.Default()
	r.Use(middleware.TraceIDMiddleware())
	r.Use(middleware.CORSMiddleware())

	RegisterRoutes(r, rdb, logger,
		userController, itemController, cartController,
		orderController, paymentController, webhookController,
		notificationController)

	return r
}

func RegisterRoutes(r *gin.Engine,
	rdb *redis.Client,
	logger *zap.Logger,
	userController *controllers.UserController,
	itemController *controllers.ItemController,
	cartController *controllers.CartController,
	orderController *controllers.OrderController,
	paymentController *controllers.PaymentController,
	webhookController *controllers.WebhookController,
	notificationController *controllers.NotificationController) {

	api := r.Group("/api")

	authLimit := middleware.RateLimitMiddleware(rdb, logger, 10, time.Minute)

	users := api.Group("/users")
	users.POST("/register", authLimit, userController.Register)
	users.POST("/login", authLimit, userController.Login)

	adminRole := string(db_models.RoleAdmin)
	usersAdmin := api.Group("/users",
		middleware.JWTAuthMiddleware(), middleware.RoleMiddleware(adminRole))
	usersAdmin.GET("", userController.ListUsers)

	me := api.Group("/users/me", middleware.JWTAuthMiddleware())
	me.GET("", userController.GetProfile)
	me.PUT("", userController.UpdateProfile)
	me.POST("/password", userController.ChangePassword)

	items := api.Group("/items")
	items.GET("", itemController.ListItems)
	items.GET("/:id", itemController.GetItem)

	itemsAdmin := api.Group("/items",
		middleware.JWTAuthMiddleware(), middleware.RoleMiddleware(adminRole))
	itemsAdmin.POST("", itemController.CreateItem)
	itemsAdmin.PUT("/:id", itemController.UpdateItem)
	itemsAdmin.DELETE("/:id", itemController.DeleteItem)
	itemsAdmin.POST("/:id/image", itemController.UploadImage)
	itemsAdmin.DELETE("/:id/image", itemController.DeleteImage)

	cart := api.Group("/cart", middleware.JWTAuthMiddleware())
	cart.GET("", cartController.GetCart)
	cart.POST("", cartController.AddToCart)
	cart.PUT("/:item_id", cartController.UpdateQuantity)
	cart.DELETE("/:item_id", cartController.RemoveFromCart)
	cart.DELETE("", cartController.ClearCart)

	orders := api.Group("/orders", middleware.JWTAuthMiddleware())
	orders.POST("/checkout", orderController.Checkout)
	orders.GET("", orderController.ListMyOrders)
	orders.GET("/:id", orderController.GetOrder)

	payments := api.Group("/payments", middleware.JWTAuthMiddleware())
	payments.POST("/intent", paymentController.CreatePayment)
	payments.POST("/confirm/:payment_id", paymentController.ConfirmPayment)
	payments.GET("", paymentController.ListMyPayments)
	payments.GET("/:id", paymentController.GetPayment)
	payments.GET("/purchase/:purchase_id", paymentController.ListPurchasePayments)

	paymentsAdmin := api.Group("/payments",
		middleware.JWTAuthMiddleware(), middleware.RoleMiddleware(adminRole))
	paymentsAdmin.POST("/refunds", paymentController.CreateRefund)
	paymentsAdmin.GET("/refunds/:id", paymentController.GetRefund)
	paymentsAdmin.GET("/admin/all", paymentController.ListAllPayments)
	paymentsAdmin.GET("/admin/refunds", paymentController.ListRefunds)
	paymentsAdmin.GET("/admin/summary", paymentController.Summary)

	// Provider callbacks are unauthenticated; the signature check inside
	// the gateway is the authentication.
	webhooks := api.Group("/payments/webhooks")
	webhooks.POST("/stripe", webhookController.StripeWebhook)
	webhooks.POST("/paypal", webhookController.PayPalWebhook)

	notifications := api.Group("/notifications", middleware.JWTAuthMiddleware())
	notifications.GET("", notificationController.ListNotifications)
	notifications.POST("/:id/read", notificationController.MarkRead)

	admin := api.Group("/admin",
		middleware.JWTAuthMiddleware(), middleware.RoleMiddleware(adminRole))
	admin.GET("/orders", orderController.ListAllOrders)
	admin.PUT("/orders/:id/status", orderController.UpdateOrderStatus)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	uploadDir := os.Getenv("UPLOAD_DIR")
	if uploadDir == "" {
		uploadDir = "./uploads"
	}
	r.Static("/uploads", uploadDir)
}
