package v1

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shenikar/community_alerts/internal/config"
	"github.com/shenikar/community_alerts/internal/models"
	"github.com/shenikar/community_alerts/internal/policy"
	"github.com/shenikar/community_alerts/internal/service"
	"github.com/sirupsen/logrus"
)

// Geocoder - прямое и обратное геокодирование
type Geocoder interface {
	Search(ctx context.Context, query string) (*models.Place, error)
	Reverse(ctx context.Context, lat, lon float64) (*models.Place, error)
}

// Assistant - рекомендательный AI-ассистент
type Assistant interface {
	Analyze(ctx context.Context, description string, image *string) (*models.Analysis, error)
	Chat(ctx context.Context, query string, lat, lng *float64) (string, error)
	Speak(ctx context.Context, text string) ([]byte, error)
}

// Authenticator определяет личность по учетным данным запроса
type Authenticator interface {
	Authenticate(bearer, guestSession string) (*models.User, error)
	IssueGuest() (string, models.User, error)
}

type Handler struct {
	alertService    service.AlertService
	locationService service.LocationService
	geocoder        Geocoder
	assistant       Assistant
	authenticator   Authenticator
	logger          *logrus.Logger
	validate        *validator.Validate
	cfg             *config.Config
}

func NewHandler(
	alertService service.AlertService,
	locationService service.LocationService,
	geocoder Geocoder,
	assistant Assistant,
	authenticator Authenticator,
	logger *logrus.Logger,
	cfg *config.Config,
) *Handler {
	return &Handler{
		alertService:    alertService,
		locationService: locationService,
		geocoder:        geocoder,
		assistant:       assistant,
		authenticator:   authenticator,
		logger:          logger,
		validate:        validator.New(),
		cfg:             cfg,
	}
}

// bind разбирает и валидирует тело запроса. false - ответ уже записан.
func (h *Handler) bind(c *gin.Context, log *logrus.Entry, input any) bool {
	if err := c.ShouldBindJSON(input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return false
	}
	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}

// writeServiceError переводит ошибки сервиса в HTTP-коды
func writeServiceError(c *gin.Context, log *logrus.Entry, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		log.WithError(err).Warn("Rejected by validation")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrPermissionDenied):
		log.WithError(err).Warn("Permission denied")
		c.JSON(http.StatusForbidden, gin.H{"error": "permission denied"})
	case errors.Is(err, service.ErrForbidden):
		log.WithError(err).Warn("Forbidden")
		c.JSON(http.StatusForbidden, gin.H{"error": "edit window has expired or you are not the author"})
	case errors.Is(err, service.ErrRemoteWrite):
		log.WithError(err).Error("Store rejected the write")
		c.JSON(http.StatusBadGateway, gin.H{"error": "could not save changes, try again"})
	default:
		log.WithError(err).Error("Unexpected service error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func parseAlertID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid alert ID"})
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) toResponses(alerts []*models.Alert, user *models.User) []*AlertResponse {
	responses := make([]*AlertResponse, len(alerts))
	for i, a := range alerts {
		responses[i] = ModelToAlertResponse(a, h.alertService.EditWindowLeft(a, user))
	}
	return responses
}

// @Summary Issue a guest session
// @Description Create an encrypted guest session. Guests can read alerts and comment.
// @Tags Auth
// @Produce json
// @Success 201 {object} GuestSessionResponse
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /auth/guest [post]
func (h *Handler) issueGuestSession(c *gin.Context) {
	log := h.logger.WithField("method", "issueGuestSession")

	session, user, err := h.authenticator.IssueGuest()
	if err != nil {
		log.WithError(err).Error("Failed to issue guest session")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusCreated, GuestSessionResponse{Session: session, User: user})
}

// @Summary Get a list of alerts
// @Description Filtered view of the current snapshot, newest first.
// @Tags Alerts
// @Produce json
// @Security BearerAuth
// @Security GuestSession
// @Param category query string false "All, MyReports or a category" default(All)
// @Param show_resolved query bool false "Show resolved instead of active alerts"
// @Param lat query number false "Latitude of the center"
// @Param lng query number false "Longitude of the center"
// @Param radius_km query number false "Radius in km, requires lat and lng"
// @Success 200 {array} AlertResponse
// @Failure 400 {object} map[string]string "Invalid filter"
// @Router /alerts [get]
func (h *Handler) listAlerts(c *gin.Context) {
	log := h.logger.WithField("method", "listAlerts")
	user := currentUser(c)

	selection, ok := models.ParseSelection(c.Query("category"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category"})
		return
	}
	showResolved, _ := strconv.ParseBool(c.DefaultQuery("show_resolved", "false"))

	alerts := h.alertService.Filter(selection, showResolved, user)

	if c.Query("radius_km") != "" {
		lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
		lng, errLng := strconv.ParseFloat(c.Query("lng"), 64)
		radius, errRadius := strconv.ParseFloat(c.Query("radius_km"), 64)
		if errLat != nil || errLng != nil || errRadius != nil || radius <= 0 {
			log.Warn("Invalid radius filter")
			c.JSON(http.StatusBadRequest, gin.H{"error": "lat, lng and positive radius_km are required together"})
			return
		}
		alerts = policy.WithinRadius(alerts, lat, lng, radius)
	}

	c.JSON(http.StatusOK, h.toResponses(alerts, user))
}

// @Summary Get alert by ID
// @Description Get a single alert from the current snapshot.
// @Tags Alerts
// @Produce json
// @Security BearerAuth
// @Security GuestSession
// @Param id path string true "Alert ID"
// @Success 200 {object} AlertResponse
// @Failure 400 {object} map[string]string "Invalid alert ID"
// @Failure 404 {object} map[string]string "Alert not found"
// @Router /alerts/{id} [get]
func (h *Handler) getAlert(c *gin.Context) {
	id, ok := parseAlertID(c)
	if !ok {
		return
	}

	alert, found := h.alertService.Get(id)
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "alert not found"})
		return
	}
	user := currentUser(c)
	c.JSON(http.StatusOK, ModelToAlertResponse(alert, h.alertService.EditWindowLeft(alert, user)))
}

// @Summary Create a new alert
// @Description Create a new alert. Guests are not allowed to create alerts.
// @Tags Alerts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param alert body AlertDraftRequest true "Alert creation request"
// @Success 201 {object} AlertResponse
// @Failure 400 {object} map[string]string "Invalid request body or validation error"
// @Failure 403 {object} map[string]string "Permission denied"
// @Failure 502 {object} map[string]string "Store rejected the write"
// @Router /alerts [post]
func (h *Handler) createAlert(c *gin.Context) {
	var input AlertDraftRequest
	log := h.logger.WithField("method", "createAlert")
	if !h.bind(c, log, &input) {
		return
	}

	user := currentUser(c)
	alert, err := h.alertService.CreateAlert(c.Request.Context(), user, DTOToAlertDraft(input))
	if err != nil {
		writeServiceError(c, log, err)
		return
	}
	c.JSON(http.StatusCreated, ModelToAlertResponse(alert, h.alertService.EditWindowLeft(alert, user)))
}

// @Summary Edit an alert
// @Description Replace category, description, image and location while the author is inside the edit window.
// @Tags Alerts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Alert ID"
// @Param alert body AlertDraftRequest true "Alert edit request"
// @Success 202 {object} AcceptedResponse
// @Failure 400 {object} map[string]string "Invalid alert ID or request body"
// @Failure 403 {object} map[string]string "Not the author or edit window expired"
// @Failure 502 {object} map[string]string "Store rejected the write"
// @Router /alerts/{id} [patch]
func (h *Handler) editAlert(c *gin.Context) {
	id, ok := parseAlertID(c)
	if !ok {
		return
	}
	log := h.logger.WithField("method", "editAlert").WithField("id", id)

	var input AlertDraftRequest
	if !h.bind(c, log, &input) {
		return
	}

	if err := h.alertService.EditAlert(c.Request.Context(), currentUser(c), id, DTOToAlertDraft(input)); err != nil {
		writeServiceError(c, log, err)
		return
	}
	c.JSON(http.StatusAccepted, AcceptedResponse{Status: "accepted"})
}

// @Summary Vote on an alert
// @Tags Alerts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Alert ID"
// @Param vote body VoteRequest true "Vote direction"
// @Success 202 {object} AcceptedResponse
// @Failure 400 {object} map[string]string "Invalid alert ID or request body"
// @Failure 403 {object} map[string]string "Permission denied"
// @Failure 502 {object} map[string]string "Store rejected the write"
// @Router /alerts/{id}/votes [post]
func (h *Handler) voteAlert(c *gin.Context) {
	id, ok := parseAlertID(c)
	if !ok {
		return
	}
	log := h.logger.WithField("method", "voteAlert").WithField("id", id)

	var input VoteRequest
	if !h.bind(c, log, &input) {
		return
	}

	err := h.alertService.Vote(c.Request.Context(), currentUser(c), id, models.VoteDirection(input.Direction))
	if err != nil {
		writeServiceError(c, log, err)
		return
	}
	c.JSON(http.StatusAccepted, AcceptedResponse{Status: "accepted"})
}

// @Summary Resolve an alert
// @Description Mark an active alert as resolved. BrokenAsphalt can be resolved by any registered user. Other categories can be resolved only by the author; a non-author gets 403.
// @Tags Alerts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Alert ID"
// @Success 202 {object} AcceptedResponse
// @Failure 400 {object} map[string]string "Invalid alert ID"
// @Failure 403 {object} map[string]string "Guest, or non-author resolving a category other than BrokenAsphalt"
// @Failure 502 {object} map[string]string "Store rejected the write"
// @Router /alerts/{id}/resolve [post]
func (h *Handler) resolveAlert(c *gin.Context) {
	id, ok := parseAlertID(c)
	if !ok {
		return
	}
	log := h.logger.WithField("method", "resolveAlert").WithField("id", id)

	if err := h.alertService.ResolveAlert(c.Request.Context(), currentUser(c), id); err != nil {
		writeServiceError(c, log, err)
		return
	}
	c.JSON(http.StatusAccepted, AcceptedResponse{Status: "accepted"})
}

// @Summary Comment on an alert
// @Description Append a comment. Guests are allowed to comment.
// @Tags Alerts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Security GuestSession
// @Param id path string true "Alert ID"
// @Param comment body CommentRequest true "Comment"
// @Success 201 {object} CommentResponse
// @Success 202 {object} AcceptedResponse "Alert is gone, nothing was written"
// @Failure 400 {object} map[string]string "Invalid alert ID or empty text"
// @Failure 403 {object} map[string]string "Permission denied"
// @Failure 502 {object} map[string]string "Store rejected the write"
// @Router /alerts/{id}/comments [post]
func (h *Handler) addComment(c *gin.Context) {
	id, ok := parseAlertID(c)
	if !ok {
		return
	}
	log := h.logger.WithField("method", "addComment").WithField("id", id)

	var input CommentRequest
	if !h.bind(c, log, &input) {
		return
	}

	comment, err := h.alertService.AddComment(c.Request.Context(), currentUser(c), id, input.Text)
	if err != nil {
		writeServiceError(c, log, err)
		return
	}
	if comment == nil {
		c.JSON(http.StatusAccepted, AcceptedResponse{Status: "accepted"})
		return
	}
	c.JSON(http.StatusCreated, ModelToCommentResponse(*comment))
}

// @Summary Get application health status
// @Description Get health status of the application
// @Tags System
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string "Status OK"
// @Router /system/health [get]
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
