package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/rahul-cmtai/nexa-bknd/auth"
)

// SetupAuthRoutes registers all "/auth/*" endpoints.
func SetupAuthRoutes(r *gin.Engine, deps Deps) {
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/google", auth.GoogleLoginHandler(deps.DB))
	}
}
