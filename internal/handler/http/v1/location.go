package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// @Summary Get notification settings
// @Description Guests and users without saved settings get the defaults.
// @Tags Settings
// @Produce json
// @Security BearerAuth
// @Security GuestSession
// @Success 200 {object} SettingsDTO
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /settings [get]
func (h *Handler) getSettings(c *gin.Context) {
	log := h.logger.WithField("method", "getSettings")

	settings, err := h.locationService.GetSettings(c.Request.Context(), currentUser(c))
	if err != nil {
		writeServiceError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, SettingsToDTO(settings))
}

// @Summary Save notification settings
// @Tags Settings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param settings body SettingsDTO true "Notification settings"
// @Success 200 {object} SettingsDTO
// @Failure 400 {object} map[string]string "Invalid request body or validation error"
// @Failure 403 {object} map[string]string "Guests cannot save settings"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /settings [put]
func (h *Handler) saveSettings(c *gin.Context) {
	var input SettingsDTO
	log := h.logger.WithField("method", "saveSettings")
	if !h.bind(c, log, &input) {
		return
	}

	settings := DTOToSettings(input)
	if err := h.locationService.SaveSettings(c.Request.Context(), currentUser(c), settings); err != nil {
		writeServiceError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, SettingsToDTO(settings))
}

// @Summary Check user location
// @Description Find active alerts near the point that match the user's notification settings. A webhook is queued when something is found.
// @Tags Location
// @Accept json
// @Produce json
// @Security BearerAuth
// @Security GuestSession
// @Param location body LocationCheckRequest true "User coordinates"
// @Success 200 {array} AlertResponse
// @Failure 400 {object} map[string]string "Invalid request body or validation error"
// @Failure 403 {object} map[string]string "Anonymous request"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /location/check [post]
func (h *Handler) checkLocation(c *gin.Context) {
	var input LocationCheckRequest
	log := h.logger.WithField("method", "checkLocation")
	if !h.bind(c, log, &input) {
		return
	}

	user := currentUser(c)
	alerts, err := h.locationService.CheckLocation(c.Request.Context(), user, input.Latitude, input.Longitude)
	if err != nil {
		writeServiceError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, h.toResponses(alerts, user))
}

// @Summary Get location check statistics
// @Description Count of unique users who checked their location within the configured window.
// @Tags Location
// @Produce json
// @Success 200 {object} StatsResponse
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /stats [get]
func (h *Handler) getStats(c *gin.Context) {
	log := h.logger.WithField("method", "getStats")

	count, err := h.locationService.GetStats(c.Request.Context())
	if err != nil {
		log.WithError(err).Error("Failed to get location check stats")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, StatsResponse{UserCount: count})
}
