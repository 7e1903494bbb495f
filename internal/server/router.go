package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/veristudy/veristudy-backend/internal/handlers"
)

type RouterConfig struct {
	AllowOrigins    []string
	GenerateHandler *handlers.GenerateHandler
	StatusHandler   *handlers.StatusHandler
	PackHandler     *handlers.PackHandler
	AnswerHandler   *handlers.AnswerHandler
	EventsHandler   *handlers.EventsHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	origins := cfg.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")
	{
		api.POST("/generate", cfg.GenerateHandler.Generate)
		api.GET("/status/:jobId", cfg.StatusHandler.GetStatus)
		api.GET("/events/:jobId", cfg.EventsHandler.StreamJob)
		api.GET("/packs", cfg.PackHandler.ListPacks)
		api.GET("/packs/:packId", cfg.PackHandler.GetPack)
		api.POST("/submit-answer", cfg.AnswerHandler.SubmitAnswer)
	}

	return router
}
