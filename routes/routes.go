package routes

import (
	"github.com/gin-gonic/gin"
	checkoutControllers "github.com/rahul-cmtai/nexa-bknd/controllers/checkout"
	productControllers "github.com/rahul-cmtai/nexa-bknd/controllers/product"
	"github.com/rahul-cmtai/nexa-bknd/services/payment"
	"gorm.io/gorm"
)

// Deps carries everything the route groups need beyond the router itself.
type Deps struct {
	DB      *gorm.DB
	Pay     *payment.Client
	Mailer  checkoutControllers.Mailer
	Storage productControllers.ImageStore
}

// SetupRoutes is the single entry-point that wires up Auth, User, Admin and
// Order route groups.
func SetupRoutes(r *gin.Engine, deps Deps) {
	// Public auth routes (no middleware)
	SetupAuthRoutes(r, deps)

	// User routes (JWT-protected), including checkout
	SetupUserRoutes(r, deps)

	// Admin routes (API-key-protected)
	SetupAdminRoutes(r, deps)

	// Order routes (JWT-protected)
	SetupOrderRoutes(r, deps)
}
