package routes

import (
	"github.com/gin-gonic/gin"
	cartControllers "github.com/rahul-cmtai/nexa-bknd/controllers/cart"
	checkoutControllers "github.com/rahul-cmtai/nexa-bknd/controllers/checkout"
	couponControllers "github.com/rahul-cmtai/nexa-bknd/controllers/coupon"
	productControllers "github.com/rahul-cmtai/nexa-bknd/controllers/product"
	userControllers "github.com/rahul-cmtai/nexa-bknd/controllers/user"
	"github.com/rahul-cmtai/nexa-bknd/middleware"
)

// SetupUserRoutes registers all "/user/*" endpoints. Requires JWT middleware.
func SetupUserRoutes(r *gin.Engine, deps Deps) {
	userGroup := r.Group("/user")
	userGroup.Use(middleware.ValidateToken)
	{
		// ──────────────── User Profile ────────────────
		userGroup.GET("/", userControllers.GetUser(deps.DB))
		userGroup.PUT("/", userControllers.UpdateUser(deps.DB))

		// ──────────────── Addresses ────────────────
		addressGroup := userGroup.Group("/addresses")
		{
			addressGroup.GET("/", userControllers.GetAddresses(deps.DB))
			addressGroup.POST("/", userControllers.AddAddress(deps.DB))
			addressGroup.DELETE("/:addressID", userControllers.DeleteAddress(deps.DB))
		}

		// ──────────────── Shopping Cart ────────────────
		cartGroup := userGroup.Group("/cart")
		{
			cartGroup.GET("/", cartControllers.GetUserCart(deps.DB))
			cartGroup.POST("/", cartControllers.UpdateCartItem(deps.DB))
			cartGroup.DELETE("/:product_id", cartControllers.DeleteCartItem(deps.DB))
			cartGroup.DELETE("/", cartControllers.ClearUserCart(deps.DB))
		}

		// ──────────────── Checkout ────────────────
		checkoutGroup := userGroup.Group("/checkout")
		{
			checkoutGroup.POST("/gateway-order", checkoutControllers.CreateGatewayOrderHandler(deps.DB, deps.Pay))
			checkoutGroup.POST("/gateway-confirm", checkoutControllers.ConfirmGatewayPaymentHandler(deps.DB, deps.Pay, deps.Mailer))
			checkoutGroup.POST("/cod", checkoutControllers.PlaceCODOrderHandler(deps.DB, deps.Mailer))
		}

		// ──────────────── Coupons ────────────────
		userGroup.GET("/coupons/:code", couponControllers.ValidateCoupon(deps.DB))

		// ──────────────── Browse Products ────────────────
		userGroup.GET("/products", productControllers.GetProducts(deps.DB))
		userGroup.GET("/products/:id", productControllers.GetProductByID(deps.DB))

		// ──────────────── Browse Categories + Products ────────────────
		userGroup.GET("/categories", productControllers.GetAllCategoriesWithProducts(deps.DB))
	}
}
