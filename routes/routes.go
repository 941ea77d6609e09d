package routes

import (
	"mercato-backend/handlers"
	"mercato-backend/identity"
	"mercato-backend/middleware"
	"mercato-backend/store"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, st store.Store, ids identity.Service, email *handlers.EmailHandler) {
	// Initialize handlers
	authHandler := &handlers.AuthHandler{Identity: ids}
	listHandler := &handlers.ListHandler{Store: st}
	userHandler := &handlers.UserHandler{Identity: ids, Store: st}

	// Public routes
	api := r.Group("/api")
	{
		api.POST("/auth/login", authHandler.Login)
	}

	// Protected routes (require authentication)
	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware())
	{
		protected.GET("/auth/profile", authHandler.GetProfile)

		protected.POST("/lists/generate", listHandler.GenerateLists)
		protected.POST("/email/order", email.SendOrderEmail)
	}

	// Admin routes (require the Admin role claim)
	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware())
	admin.Use(middleware.AdminMiddleware())
	{
		admin.POST("/users/role", userHandler.SetUserRole)
		admin.DELETE("/users/:uid", userHandler.DeleteUser)
	}

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
}
