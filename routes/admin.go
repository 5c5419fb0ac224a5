package routes

import (
	"github.com/gin-gonic/gin"
	couponControllers "github.com/rahul-cmtai/nexa-bknd/controllers/coupon"
	orderControllers "github.com/rahul-cmtai/nexa-bknd/controllers/order"
	productControllers "github.com/rahul-cmtai/nexa-bknd/controllers/product"
	userControllers "github.com/rahul-cmtai/nexa-bknd/controllers/user"
	"github.com/rahul-cmtai/nexa-bknd/middleware"
)

// SetupAdminRoutes registers all "/admin/*" endpoints. Requires API-key middleware.
func SetupAdminRoutes(r *gin.Engine, deps Deps) {
	adminGroup := r.Group("/admin")
	adminGroup.Use(middleware.ValidateAPIKey)
	{
		// ─────────── User Management ───────────
		adminGroup.GET("/users", userControllers.GetAllUsers(deps.DB))

		// ─────────── Product Management ───────────
		productAdmin := adminGroup.Group("/products")
		{
			productAdmin.POST("", productControllers.CreateProduct(deps.DB, deps.Storage))
			productAdmin.PUT("/:id", productControllers.UpdateProduct(deps.DB, deps.Storage))
			productAdmin.GET("", productControllers.GetProducts(deps.DB))
			productAdmin.DELETE("/:id", productControllers.DeleteProduct(deps.DB, deps.Storage))
			productAdmin.POST("/import-excel", productControllers.ImportProductsFromExcel(deps.DB))
			productAdmin.GET("/export-excel", productControllers.ExportProductsToExcel(deps.DB))
		}

		// ─────────── Category Management ───────────
		categoryAdmin := adminGroup.Group("/categories")
		{
			categoryAdmin.POST("", productControllers.CreateCategory(deps.DB))
			categoryAdmin.PUT("/:id", productControllers.UpdateCategory(deps.DB))
			categoryAdmin.GET("", productControllers.GetAllCategories(deps.DB))
			categoryAdmin.DELETE("/:id", productControllers.DeleteCategory(deps.DB))
		}

		// ─────────── Coupon Management ───────────
		couponAdmin := adminGroup.Group("/coupons")
		{
			couponAdmin.POST("", couponControllers.CreateCoupon(deps.DB))
			couponAdmin.GET("", couponControllers.GetAllCoupons(deps.DB))
			couponAdmin.PUT("/:couponID", couponControllers.UpdateCoupon(deps.DB))
			couponAdmin.DELETE("/:couponID", couponControllers.DeleteCoupon(deps.DB))
		}

		// ─────────── Order Management ───────────
		orderAdmin := adminGroup.Group("/orders")
		{
			orderAdmin.GET("", orderControllers.GetAllOrdersHandler(deps.DB))
			orderAdmin.GET("/export-excel", orderControllers.ExportOrdersToExcel(deps.DB))

			// Live order-events feed; carries full order payloads, so it
			// stays on the admin surface only
			orderAdmin.GET("/ws", orderControllers.OrderEventsHandler)
			orderAdmin.PUT("/:orderID/status", orderControllers.UpdateOrderStatusHandler(deps.DB))
		}
	}
}
