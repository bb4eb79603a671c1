package main

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"smartdiagnosis/internal/config"
	"smartdiagnosis/internal/handler"
	"smartdiagnosis/internal/model"
)

// newRouter builds the gin engine with CORS, a request body cap and the API routes.
func newRouter(cfg config.ServerConfig, predictions *handler.PredictionHandler, health *handler.HealthHandler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = splitList(cfg.AllowedOrigins)
	corsConfig.AllowMethods = splitList(cfg.AllowedMethods)
	corsConfig.AllowHeaders = splitList(cfg.AllowedHeaders)
	if lo.Contains(corsConfig.AllowOrigins, "*") {
		corsConfig.AllowOrigins = nil
		corsConfig.AllowAllOrigins = true
	}
	router.Use(cors.New(corsConfig))

	if cfg.MaxBodyBytes > 0 {
		router.Use(limitBodySize(cfg.MaxBodyBytes))
	}

	router.POST("/predict", predictions.Predict)
	router.GET("/disease-info/:name", predictions.DiseaseInfo)
	router.GET("/symptoms/:user_id", predictions.UserSymptoms)
	router.GET("/health", health.Health)
	router.GET("/version", health.Version)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, model.ErrorResponse{Detail: "Not Found"})
	})

	return router
}

func limitBodySize(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}

func splitList(value string) []string {
	parts := lo.Map(strings.Split(value, ","), func(s string, _ int) string {
		return strings.TrimSpace(s)
	})
	return lo.Compact(parts)
}
