package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"cragbase-api/config"
	"cragbase-api/controllers"
	"cragbase-api/middleware"
	"cragbase-api/services"
)

func SetupRoutes(r *gin.Engine, db *gorm.DB, cfg *config.Config, emailService *services.EmailService, permissionService *services.PermissionService) {
	// Controllers
	authController := controllers.NewAuthController(db, cfg.JWTSecret, emailService)
	userController := controllers.NewUserController(db)
	areaController := controllers.NewAreaController(db)
	blockController := controllers.NewBlockController(db)
	routeController := controllers.NewRouteController(db)
	ascentController := controllers.NewAscentController(db)
	regionController := controllers.NewRegionController(db, emailService)
	tagController := controllers.NewTagController(db)
	notificationController := controllers.NewNotificationController(db)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
			"status":  "healthy",
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API version 1
	v1 := r.Group("/api/v1")

	// Auth routes (public)
	auth := v1.Group("/auth")
	{
		auth.POST("/login", authController.Login)
		auth.POST("/register", authController.Register)
		auth.POST("/logout", authController.Logout)
		auth.POST("/send-verification", authController.SendVerification)
		auth.POST("/verify-code", authController.VerifyCode)
	}

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware(cfg.JWTSecret, db, permissionService))
	protected.Use(middleware.PaginationDefaults())
	{
		// User routes
		users := protected.Group("/users")
		{
			users.GET("/profile", userController.GetProfile)
			users.PUT("/profile", userController.UpdateProfile)
			users.GET("/:handle", userController.GetUser)
			users.GET("/:handle/statistics", userController.GetStatistics)
		}

		// Area routes; the wildcard carries the full nested slug path
		areas := protected.Group("/areas")
		{
			areas.POST("/", areaController.CreateArea)
			areas.PUT("/:id", areaController.UpdateArea)
			areas.DELETE("/:id", areaController.DeleteArea)
			areas.POST("/:id/parking", areaController.AddParkingLocation)
			areas.GET("/*slugs", areaController.GetArea)
		}

		// Block routes
		blocks := protected.Group("/blocks")
		{
			blocks.GET("/area/:areaId", blockController.GetBlocks)
			blocks.POST("/area/:areaId", blockController.CreateBlock)
			blocks.GET("/:id", blockController.GetBlock)
			blocks.PUT("/:id", blockController.UpdateBlock)
			blocks.DELETE("/:id", blockController.DeleteBlock)
		}

		// Route routes
		routes := protected.Group("/routes")
		{
			routes.GET("/", routeController.GetRoutes)
			routes.POST("/block/:blockId", routeController.CreateRoute)
			routes.GET("/:id", routeController.GetRoute)
			routes.PUT("/:id", routeController.UpdateRoute)
			routes.DELETE("/:id", routeController.DeleteRoute)
			routes.POST("/:id/tags", routeController.TagRoute)
			routes.DELETE("/:id/tags/:tagId", routeController.UntagRoute)
			routes.POST("/:id/first-ascent", routeController.SetFirstAscent)
			routes.POST("/:id/external-resources", routeController.AddExternalResource)
		}

		// Ascent routes
		ascents := protected.Group("/ascents")
		{
			ascents.GET("/feed", ascentController.GetFeed)
			ascents.GET("/route/:routeId", ascentController.GetRouteAscents)
			ascents.POST("/route/:routeId", ascentController.CreateAscent)
			ascents.PUT("/:id", ascentController.UpdateAscent)
			ascents.DELETE("/:id", ascentController.DeleteAscent)
		}

		// Region routes
		regions := protected.Group("/regions")
		{
			regions.GET("/", regionController.GetRegions)
			regions.POST("/", regionController.CreateRegion)
			regions.GET("/:id/members", regionController.GetMembers)
			regions.POST("/:id/members", regionController.AddMember)
			regions.PUT("/:id/members/:memberId", regionController.ChangeRole)
			regions.DELETE("/:id/members/:memberId", regionController.RemoveMember)
		}

		// Tag routes
		tags := protected.Group("/tags")
		{
			tags.GET("/", tagController.GetTags)
			tags.POST("/", tagController.CreateTag)
			tags.PUT("/:id", tagController.UpdateTag)
			tags.DELETE("/:id", tagController.DeleteTag)
		}

		// Notification routes
		notifications := protected.Group("/notifications")
		{
			notifications.GET("/", notificationController.GetNotifications)
			notifications.GET("/stats", notificationController.GetStats)
			notifications.PUT("/:id/read", notificationController.MarkAsRead)
			notifications.PUT("/read-all", notificationController.MarkAllAsRead)
		}
	}
}

// SetupCORS configures the CORS middleware
func SetupCORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
