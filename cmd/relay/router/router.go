package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"chat-relay/cmd/relay/handlers"
	"chat-relay/cmd/relay/middleware"
	"chat-relay/cmd/relay/services"
	"chat-relay/config"
	"chat-relay/db"
	_ "chat-relay/docs"
)

func New(cfg config.AppConfig, chatSvc *services.ChatService) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.CORSMiddleware())
	r.Use(middleware.RequestTraceMiddleware())
	r.Use(middleware.RequestLoggingMiddleware())

	// 허용되지 않은 메서드는 404 가 아니라 405 로 응답한다.
	r.HandleMethodNotAllowed = true
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
	})

	// Health check
	r.GET("/health", func(c *gin.Context) {
		if db.Enabled() {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
			defer cancel()
			if database := db.Database(); database != nil {
				if err := database.Client().Ping(ctx, nil); err != nil {
					c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "mongo": "down", "error": err.Error()})
					return
				}
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Swagger
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api")
	{
		api.POST("/chat", handlers.ChatHandler(chatSvc))
		api.GET("/models", handlers.ListModelsHandler(cfg))
	}

	return r
}
