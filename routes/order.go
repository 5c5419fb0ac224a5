package routes

import (
	"github.com/gin-gonic/gin"
	orderControllers "github.com/rahul-cmtai/nexa-bknd/controllers/order"
	"github.com/rahul-cmtai/nexa-bknd/middleware"
)

// SetupOrderRoutes registers all "/orders/*" endpoints. Requires JWT middleware.
func SetupOrderRoutes(r *gin.Engine, deps Deps) {
	orders := r.Group("/orders")
	orders.Use(middleware.ValidateToken)
	{
		// Fetch orders for the authenticated user
		orders.GET("/", orderControllers.GetMyOrdersHandler(deps.DB))

		// Fetch a single order by id or reference
		orders.GET("/:orderID", orderControllers.GetOrderByIDHandler(deps.DB))

		// Cancel an order (owner or admin); restores stock, refunds if paid
		orders.POST("/:orderID/cancel", orderControllers.CancelOrderHandler(deps.DB, deps.Pay))
	}
}
