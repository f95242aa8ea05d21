package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/edukraft/courseforge-backend/internal/handlers"
)

type RouterConfig struct {
	StructureHandler *handlers.StructureHandler
	AllowOrigins     []string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	origins := cfg.AllowOrigins
	if len(origins) == 0 {
		origins = []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:5173",
		}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")
	{
		api.POST("/structures/generate", cfg.StructureHandler.Generate)
		api.GET("/structures/find", cfg.StructureHandler.Find)
		api.POST("/structures/:id/usage", cfg.StructureHandler.RecordUsage)
		api.POST("/structures/cleanup", cfg.StructureHandler.Cleanup)
		api.GET("/structures/progress", cfg.StructureHandler.ProgressStream)
	}

	return router
}
