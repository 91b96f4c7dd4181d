package api

import (
	"net/http"

	"shopping-list/internal/auth"
	"shopping-list/internal/config"
	"shopping-list/internal/handlers"
	"shopping-list/internal/logging"
	"shopping-list/internal/websocket"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

func SetupRouter(cfg *config.Config, repo handlers.ListService, hub *websocket.Hub, logger logging.Logger) *gin.Engine {
	router := gin.Default()

	// Custom CORS middleware
	router.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		// Check if origin is allowed
		allowed := false
		for _, allowedOrigin := range cfg.CORS.AllowedOrigins {
			if origin == allowedOrigin {
				allowed = true
				break
			}
		}

		if allowed {
			c.Header("Access-Control-Allow-Origin", origin)
		}
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Length, Content-Type, Authorization")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})
	router.Use(requireJSON())

	// Initialize handlers
	listHandler := handlers.NewListHandler(repo, logger)
	itemHandler := handlers.NewItemHandler(repo, logger)
	memoryHandler := handlers.NewMemoryHandler(repo)
	wsHandler := handlers.NewWebSocketHandler(hub)

	// Public routes
	api := router.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})
	}

	protected := api.Group("")
	if cfg.AuthEnabled() {
		jwtManager := auth.NewJWTManager(cfg.JWT)
		authHandler := handlers.NewAuthHandler(jwtManager, cfg.Auth.PassphraseHash, logger)

		api.POST("/auth/token", authHandler.IssueToken)
		protected.Use(auth.JWTMiddleware(jwtManager))
	}
	{
		// Shopping list routes
		lists := protected.Group("/lists")
		{
			lists.GET("", listHandler.GetLists)
			lists.POST("", listHandler.CreateList)
			lists.GET("/:id", listHandler.GetList)
			lists.DELETE("/:id", listHandler.DeleteList)
		}

		// Item routes - using consistent :id parameter
		items := protected.Group("/lists/:id/items")
		{
			items.GET("", itemHandler.GetItems)
			items.POST("", itemHandler.CreateItem)
			items.PATCH("/:itemId", itemHandler.UpdateItem)
			items.PUT("/:itemId", itemHandler.UpdateItem)
			items.DELETE("/:itemId", itemHandler.DeleteItem)
		}

		// Memory/autocomplete routes
		memory := protected.Group("/memory")
		{
			memory.GET("", memoryHandler.GetMemory)
			memory.GET("/common", memoryHandler.GetCommonItems)
			memory.GET("/stats", memoryHandler.GetMemoryStats)
		}

		protected.GET("/ws", wsHandler.HandleWebSocket)
		protected.GET("/devices", wsHandler.GetDevices)
	}

	return router
}

// requireJSON rejects request bodies that are not JSON. Browsers send
// text/plain and form posts cross-site without a CORS preflight.
func requireJSON() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
			if c.ContentType() != binding.MIMEJSON {
				c.AbortWithStatusJSON(http.StatusUnsupportedMediaType, gin.H{"error": "Content-Type must be application/json"})
				return
			}
		}
		c.Next()
	}
}
