package v1

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shenikar/community_alerts/internal/assistant"
	"github.com/shenikar/community_alerts/internal/geocode"
	"github.com/sirupsen/logrus"
)

func writeAssistantError(c *gin.Context, log *logrus.Entry, err error) {
	if errors.Is(err, assistant.ErrNotConfigured) {
		log.Warn("Assistant is not configured")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "assistant is not available"})
		return
	}
	log.WithError(err).Error("Assistant request failed")
	c.JSON(http.StatusBadGateway, gin.H{"error": "assistant request failed"})
}

func writeGeocodeError(c *gin.Context, log *logrus.Entry, err error) {
	switch {
	case errors.Is(err, geocode.ErrQueryTooShort):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, geocode.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		log.WithError(err).Error("Geocoding failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "geocoding service unavailable"})
	}
}

// @Summary Analyze an alert draft
// @Description Advisory AI check of the description and optional image. The result never blocks submission.
// @Tags Assistant
// @Accept json
// @Produce json
// @Security BearerAuth
// @Security GuestSession
// @Param draft body AnalyzeRequest true "Draft to analyze"
// @Success 200 {object} models.Analysis
// @Failure 400 {object} map[string]string "Invalid request body"
// @Failure 401 {object} map[string]string "Authentication required"
// @Failure 502 {object} map[string]string "Model request failed"
// @Failure 503 {object} map[string]string "Assistant not configured"
// @Router /alerts/analyze [post]
func (h *Handler) analyzeAlert(c *gin.Context) {
	var input AnalyzeRequest
	log := h.logger.WithField("method", "analyzeAlert")
	if !h.bind(c, log, &input) {
		return
	}

	analysis, err := h.assistant.Analyze(c.Request.Context(), input.Description, input.Image)
	if err != nil {
		writeAssistantError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, analysis)
}

// @Summary Search an address
// @Tags Geocoding
// @Produce json
// @Param q query string true "Address, at least 5 characters"
// @Success 200 {object} models.Place
// @Failure 400 {object} map[string]string "Query too short"
// @Failure 404 {object} map[string]string "Nothing found"
// @Failure 502 {object} map[string]string "Geocoding service unavailable"
// @Router /geocode/search [get]
func (h *Handler) geocodeSearch(c *gin.Context) {
	log := h.logger.WithField("method", "geocodeSearch")

	place, err := h.geocoder.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		writeGeocodeError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, place)
}

// @Summary Resolve coordinates to an address
// @Tags Geocoding
// @Produce json
// @Param lat query number true "Latitude"
// @Param lng query number true "Longitude"
// @Success 200 {object} models.Place
// @Failure 400 {object} map[string]string "Invalid coordinates"
// @Failure 404 {object} map[string]string "Nothing found"
// @Failure 502 {object} map[string]string "Geocoding service unavailable"
// @Router /geocode/reverse [get]
func (h *Handler) geocodeReverse(c *gin.Context) {
	log := h.logger.WithField("method", "geocodeReverse")

	lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
	lng, errLng := strconv.ParseFloat(c.Query("lng"), 64)
	if errLat != nil || errLng != nil || lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid coordinates"})
		return
	}

	place, err := h.geocoder.Reverse(c.Request.Context(), lat, lng)
	if err != nil {
		writeGeocodeError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, place)
}

// @Summary Ask the assistant
// @Tags Assistant
// @Accept json
// @Produce json
// @Security BearerAuth
// @Security GuestSession
// @Param question body ChatRequest true "Question and optional position"
// @Success 200 {object} ChatResponse
// @Failure 400 {object} map[string]string "Invalid request body"
// @Failure 401 {object} map[string]string "Authentication required"
// @Failure 502 {object} map[string]string "Model request failed"
// @Failure 503 {object} map[string]string "Assistant not configured"
// @Router /assistant/chat [post]
func (h *Handler) chat(c *gin.Context) {
	var input ChatRequest
	log := h.logger.WithField("method", "chat")
	if !h.bind(c, log, &input) {
		return
	}

	answer, err := h.assistant.Chat(c.Request.Context(), input.Query, input.Latitude, input.Longitude)
	if err != nil {
		writeAssistantError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ChatResponse{Answer: answer})
}

// @Summary Read text aloud
// @Tags Assistant
// @Accept json
// @Produce audio/mpeg
// @Security BearerAuth
// @Security GuestSession
// @Param text body SpeechRequest true "Text to speak"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]string "Invalid request body"
// @Failure 401 {object} map[string]string "Authentication required"
// @Failure 502 {object} map[string]string "Model request failed"
// @Failure 503 {object} map[string]string "Assistant not configured"
// @Router /assistant/speech [post]
func (h *Handler) speech(c *gin.Context) {
	var input SpeechRequest
	log := h.logger.WithField("method", "speech")
	if !h.bind(c, log, &input) {
		return
	}

	audio, err := h.assistant.Speak(c.Request.Context(), input.Text)
	if err != nil {
		writeAssistantError(c, log, err)
		return
	}
	c.Data(http.StatusOK, "audio/mpeg", audio)
}
