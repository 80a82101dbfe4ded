package routes

import (
	"github.com/atlanticweizard/storefront/controllers"
	"github.com/atlanticweizard/storefront/middleware"
	"github.com/atlanticweizard/storefront/utils"
	"github.com/gin-gonic/gin"
)

// SetupRouter initializes and returns the Gin router with all routes
func SetupRouter() *gin.Engine {
	router := gin.New()

	router.Use(utils.LoggerMiddleware())
	router.Use(utils.CORSMiddleware())
	router.Use(utils.RecoveryMiddleware())
	router.Use(utils.RequestIDMiddleware())
	router.Use(utils.SecurityHeadersMiddleware())

	api := router.Group("/api")
	{
		// Catalog reads
		api.GET("/products", controllers.GetProducts)
		api.GET("/products/:id", controllers.GetProduct)

		// Customer accounts
		api.POST("/register", controllers.RegisterUser)
		api.POST("/login", controllers.LoginUser)

		// Admin login
		api.POST("/admin/login", controllers.AdminLogin)

		// Payment lifecycle. Checkout is open to guests but picks up the
		// logged-in user when a token is sent. The success/failure
		// endpoints are invoked by the gateway through the customer's
		// browser and always redirect.
		api.POST("/payment/initiate", middleware.OptionalUserAuthMiddleware(), controllers.InitiatePayment)
		api.POST("/payment/success", controllers.PaymentSuccessCallback)
		api.POST("/payment/failure", controllers.PaymentFailureCallback)

		// Customer order history
		api.GET("/orders/my", middleware.UserAuthMiddleware(), controllers.GetMyOrders)

		// Admin-only surfaces
		admin := api.Group("/admin")
		admin.Use(middleware.AdminAuthMiddleware())
		{
			admin.POST("/products", controllers.CreateProduct)
			admin.PUT("/products/:id", controllers.UpdateProduct)
			admin.DELETE("/products/:id", controllers.DeleteProduct)

			admin.GET("/orders", controllers.GetAllOrders)
			admin.GET("/orders/:id", controllers.GetOrder)
			admin.GET("/orders/:id/invoice", controllers.DownloadInvoice)
			admin.GET("/reports/orders", controllers.DownloadOrdersExport)
		}
	}

	return router
}
