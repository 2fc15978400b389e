package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/storeline/storefront-api/config"
	cartcontroller "github.com/storeline/storefront-api/controllers/cart"
	categorycontroller "github.com/storeline/storefront-api/controllers/category"
	ordercontroller "github.com/storeline/storefront-api/controllers/order"
	paymentcontroller "github.com/storeline/storefront-api/controllers/payment"
	productcontroller "github.com/storeline/storefront-api/controllers/product"
	usercontroller "github.com/storeline/storefront-api/controllers/user"
	"github.com/storeline/storefront-api/middleware"
	"github.com/storeline/storefront-api/payment"
)

// SetupRoutes registers the full /api surface: public catalog reads,
// authenticated cart/order/profile/payment routes, and admin management.
func SetupRoutes(r *gin.Engine, db *gorm.DB, cfg *config.Config, gw *payment.Gateway) {
	api := r.Group("/api")

	setupPublicRoutes(api, db)
	setupUserRoutes(api, db, cfg, gw)
	setupAdminRoutes(api, db, gw)
}

func setupPublicRoutes(api *gin.RouterGroup, db *gorm.DB) {
	products := api.Group("/products")
	{
		products.GET("", productcontroller.GetProducts(db))
		products.GET("/:id", productcontroller.GetProductByID(db))
		products.GET("/slug/:slug", productcontroller.GetProductBySlug(db))
		products.GET("/category/:id", productcontroller.GetProductsByCategory(db))
		products.GET("/featured", productcontroller.GetFeaturedProducts(db))
		products.GET("/search", productcontroller.SearchProducts(db))
		products.GET("/filter/price", productcontroller.GetProductsByPriceRange(db))
		products.GET("/filter/brand", productcontroller.GetProductsByBrand(db))
		products.GET("/brands", productcontroller.GetAllBrands(db))
		products.GET("/latest", productcontroller.GetLatestProducts(db))
		products.GET("/top-rated", productcontroller.GetTopRatedProducts(db))
	}

	categories := api.Group("/categories")
	{
		categories.GET("", categorycontroller.GetCategories(db))
		categories.GET("/top-level", categorycontroller.GetTopLevelCategories(db))
		categories.GET("/:id", categorycontroller.GetCategoryByID(db))
		categories.GET("/slug/:slug", categorycontroller.GetCategoryBySlug(db))
		categories.GET("/:id/subcategories", categorycontroller.GetSubCategories(db))
		categories.GET("/:id/product-count", categorycontroller.GetProductCount(db))
	}

	api.POST("/users/register", usercontroller.RegisterHandler(db))
}

func setupUserRoutes(api *gin.RouterGroup, db *gorm.DB, cfg *config.Config, gw *payment.Gateway) {
	authed := api.Group("")
	authed.Use(middleware.RequireUser(db))
	{
		cart := authed.Group("/cart")
		{
			cart.GET("", cartcontroller.GetCartHandler(db))
			cart.POST("", cartcontroller.AddItemHandler(db))
			cart.POST("/add", cartcontroller.AddItemHandler(db))
			cart.PUT("/items/:id", cartcontroller.UpdateItemHandler(db))
			cart.DELETE("/items/:id", cartcontroller.RemoveItemHandler(db))
			cart.DELETE("", cartcontroller.ClearCartHandler(db))
		}

		orders := authed.Group("/orders")
		{
			orders.POST("", ordercontroller.CreateOrderHandler(db, cfg))
			orders.GET("/user", ordercontroller.GetUserOrdersHandler(db))
			orders.GET("/number/:orderNumber", ordercontroller.GetOrderByNumberHandler(db))
			orders.GET("/:id", ordercontroller.GetOrderHandler(db))
			orders.POST("/:id/cancel", ordercontroller.CancelOrderHandler(db))

			orders.GET("", middleware.RequireAdmin(), ordercontroller.GetAllOrdersHandler(db))
			orders.GET("/status/:status", middleware.RequireAdmin(), ordercontroller.GetOrdersByStatusHandler(db))
			orders.PUT("/:id/status", middleware.RequireAdmin(), ordercontroller.UpdateOrderStatusHandler(db))
			orders.PUT("/:id/payment-status", middleware.RequireAdmin(), ordercontroller.UpdatePaymentStatusHandler(db))
		}

		users := authed.Group("/users")
		{
			users.GET("/profile", usercontroller.GetProfileHandler(db))
			users.PUT("/profile", usercontroller.UpdateProfileHandler(db))
			users.GET("/:id", middleware.RequireAdmin(), usercontroller.GetUserByIDHandler(db))
			users.POST("/:id/deactivate", middleware.RequireAdmin(), usercontroller.DeactivateUserHandler(db))
			users.POST("/:id/activate", middleware.RequireAdmin(), usercontroller.ActivateUserHandler(db))
		}

		payments := authed.Group("/payments")
		{
			payments.POST("/intent", paymentcontroller.CreateIntentHandler(db, gw))
			payments.POST("/confirm", paymentcontroller.ConfirmHandler(db, gw))
			payments.POST("/refund", middleware.RequireAdmin(), paymentcontroller.RefundHandler(db, gw))
		}
	}
}

func setupAdminRoutes(api *gin.RouterGroup, db *gorm.DB, gw *payment.Gateway) {
	admin := api.Group("/admin")
	admin.Use(middleware.RequireUser(db), middleware.RequireAdmin())
	{
		products := admin.Group("/products")
		{
			products.GET("", productcontroller.GetAdminProducts(db))
			products.POST("", productcontroller.CreateProduct(db))
			products.PUT("/:id", productcontroller.UpdateProduct(db))
			products.DELETE("/:id", productcontroller.DeleteProduct(db))
			products.GET("/low-stock", productcontroller.GetLowStockProducts(db))
			products.GET("/count", productcontroller.GetActiveProductCount(db))
			products.GET("/export", productcontroller.ExportProductsToExcel(db))
		}

		categories := admin.Group("/categories")
		{
			categories.POST("", categorycontroller.CreateCategory(db))
			categories.PUT("/:id", categorycontroller.UpdateCategory(db))
			categories.DELETE("/:id", categorycontroller.DeleteCategory(db))
		}
	}
}
