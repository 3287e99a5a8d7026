package v1

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes регистрирует все маршруты API v1
func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	// Маршруты без учетных данных
	api.GET("/system/health", h.healthCheck)
	api.POST("/auth/guest", h.issueGuestSession)
	api.GET("/stats", h.getStats)

	geocode := api.Group("/geocode")
	{
		geocode.GET("/search", h.geocodeSearch)
		geocode.GET("/reverse", h.geocodeReverse)
	}

	secured := api.Group("")
	secured.Use(IdentityMiddleware(h.authenticator, h.logger))

	alerts := secured.Group("/alerts")
	{
		alerts.GET("", h.listAlerts)
		alerts.POST("", h.createAlert)
		alerts.GET("/feed", h.alertFeed)
		alerts.POST("/analyze", RequireIdentity(), h.analyzeAlert)
		alerts.GET("/:id", h.getAlert)
		alerts.PATCH("/:id", h.editAlert)
		alerts.POST("/:id/votes", h.voteAlert)
		alerts.POST("/:id/resolve", h.resolveAlert)
		alerts.POST("/:id/comments", h.addComment)
	}

	// Вызовы модели платные, анонимам недоступны
	assistant := secured.Group("/assistant", RequireIdentity())
	{
		assistant.POST("/chat", h.chat)
		assistant.POST("/speech", h.speech)
	}

	secured.GET("/settings", h.getSettings)
	secured.PUT("/settings", h.saveSettings)
	secured.POST("/location/check", h.checkLocation)
}
