package routes

import (
	"github.com/gin-gonic/gin"

	"public-complaint-api/controllers"
	"public-complaint-api/middleware"
	"public-complaint-api/models"
)

// Handlers groups every controller the router exposes.
type Handlers struct {
	Auth          *controllers.AuthController
	Services      *controllers.ServiceController
	Complaints    *controllers.ComplaintController
	Notifications *controllers.NotificationController
	Tokens        middleware.TokenParser
}

func SetupRoutes(router *gin.Engine, h Handlers) {
	api := router.Group("/api")
	{
		// Public routes
		public := api.Group("")
		public.Use(middleware.OptionalAuth(h.Tokens))
		{
			public.POST("/register", h.Auth.Register)
			public.POST("/login", h.Auth.Login)

			// inactive services are listed for administrators only
			public.GET("/services", h.Services.Index)
			public.GET("/services/:id", h.Services.Show)
			public.GET("/services-categories", h.Services.Categories)

			public.POST("/complaints/track", h.Complaints.Track)
		}

		// Protected routes (require authentication)
		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware(h.Tokens))
		{
			protected.POST("/logout", h.Auth.Logout)
			protected.GET("/user", h.Auth.Me)
			protected.PUT("/user/profile", h.Auth.UpdateProfile)
			protected.PUT("/user/password", h.Auth.UpdatePassword)

			admin := protected.Group("")
			admin.Use(middleware.RequireRole(models.RoleAdmin))
			{
				admin.POST("/services", h.Services.Store)
				admin.PUT("/services/:id", h.Services.Update)
				admin.DELETE("/services/:id", h.Services.Destroy)

				admin.PUT("/complaints/:id/status", h.Complaints.UpdateStatus)
				admin.POST("/complaints/:id/status", h.Complaints.UpdateStatus)
				admin.GET("/complaints-statistics", h.Complaints.Statistics)
			}

			complaints := protected.Group("/complaints")
			{
				complaints.GET("", h.Complaints.Index)
				complaints.POST("", h.Complaints.Store)
				complaints.GET("/:id", h.Complaints.Show)
				complaints.GET("/:id/documents/:documentId/download", h.Complaints.DownloadDocument)
				complaints.GET("/:id/result/download", h.Complaints.DownloadResult)
			}

			notifications := protected.Group("/notifications")
			{
				notifications.GET("", h.Notifications.Index)
				notifications.GET("/unread-count", h.Notifications.UnreadCount)
				notifications.PUT("/mark-all-read", h.Notifications.MarkAllAsRead)
				notifications.PUT("/:id/read", h.Notifications.MarkAsRead)
				notifications.DELETE("/:id", h.Notifications.Destroy)
			}
		}
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(404, models.Response{Status: models.ResponseError, Message: "Endpoint not found"})
	})
}
