// Package apigateway assembles the HTTP surface of the scoring service.
package apigateway

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"ai-storyteller/scoring-service/internal/audioprocessing"
)

// SetupRouter builds the gin engine with CORS, request-id and logging
// middleware and mounts the audio endpoints.
func SetupRouter(handler *audioprocessing.Handler, allowedOrigins []string, log zerolog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(RequestID(), RequestLogger(log), gin.Recovery())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodHead, http.MethodOptions},
		AllowHeaders:     []string{"*"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/process-audio/:audio_id", handler.ProcessAudio)

	audioRoutes := router.Group("/audios")
	{
		audioRoutes.GET("", handler.ListAudios)
		audioRoutes.GET("/:audio_id", handler.GetAudio)
		audioRoutes.GET("/:audio_id/diff", handler.GetDiff)
	}

	return router
}
