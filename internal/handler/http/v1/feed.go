package v1

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/shenikar/community_alerts/internal/metrics"
	"github.com/shenikar/community_alerts/internal/models"
	"github.com/shenikar/community_alerts/internal/policy"
	"github.com/shenikar/community_alerts/internal/service"
)

const (
	feedWriteWait  = 10 * time.Second
	feedPongWait   = 60 * time.Second
	feedPingPeriod = (feedPongWait * 9) / 10

	feedMessageSnapshot = "snapshot"
	feedMessageUpdate   = "update"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// feedView - отфильтрованное представление снимка для одного подключения.
// Разница считается от последнего отправленного списка, поэтому пропущенные
// промежуточные снимки не теряют изменений.
type feedView struct {
	selection    models.Selection
	showResolved bool
	user         *models.User
	lastSent     []*models.Alert
}

func (v *feedView) next(alerts []*models.Alert) ([]*models.Alert, service.SnapshotDiff) {
	filtered := policy.Filter(alerts, v.selection, v.showResolved, v.user)
	diff := service.Diff(v.lastSent, filtered)
	v.lastSent = filtered
	return filtered, diff
}

// @Summary Live alert feed
// @Description WebSocket. The first message is the filtered snapshot, every following message carries the new filtered snapshot and the ids that changed. Credentials may be passed as access_token or guest_session query parameters.
// @Tags Alerts
// @Param category query string false "All, MyReports or a category" default(All)
// @Param show_resolved query bool false "Show resolved instead of active alerts"
// @Param access_token query string false "Bearer token"
// @Param guest_session query string false "Guest session"
// @Success 101 {object} FeedMessage
// @Failure 400 {object} map[string]string "Invalid filter"
// @Router /alerts/feed [get]
func (h *Handler) alertFeed(c *gin.Context) {
	log := h.logger.WithField("method", "alertFeed")

	selection, ok := models.ParseSelection(c.Query("category"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category"})
		return
	}
	showResolved, _ := strconv.ParseBool(c.DefaultQuery("show_resolved", "false"))
	user := currentUser(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrader уже записал ответ
		log.WithError(err).Warn("Failed to upgrade feed connection")
		return
	}
	defer conn.Close()

	metrics.FeedSubscribers.Inc()
	defer metrics.FeedSubscribers.Dec()

	// Держим только последний снимок: медленный клиент получает свежее состояние
	updates := make(chan []*models.Alert, 1)
	cancel := h.alertService.Watch(func(event service.SnapshotEvent) {
		select {
		case <-updates:
		default:
		}
		select {
		case updates <- event.Alerts:
		default:
		}
	})
	defer cancel()

	closed := make(chan struct{})
	go h.readUntilClosed(conn, closed)

	view := &feedView{selection: selection, showResolved: showResolved, user: user}
	initial, diff := view.next(h.alertService.Snapshot())
	if err := h.writeFeed(conn, feedMessageSnapshot, initial, diff, user); err != nil {
		log.WithError(err).Debug("Feed client went away")
		return
	}

	ticker := time.NewTicker(feedPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			return
		case alerts := <-updates:
			filtered, diff := view.next(alerts)
			if diff.IsEmpty() {
				continue
			}
			if err := h.writeFeed(conn, feedMessageUpdate, filtered, diff, user); err != nil {
				log.WithError(err).Debug("Feed client went away")
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *Handler) writeFeed(conn *websocket.Conn, kind string, alerts []*models.Alert, diff service.SnapshotDiff, user *models.User) error {
	_ = conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
	return conn.WriteJSON(FeedMessage{
		Type:    kind,
		Alerts:  h.toResponses(alerts, user),
		Changes: diff,
	})
}

// readUntilClosed читает управляющие кадры и закрывает closed, когда клиент уходит
func (h *Handler) readUntilClosed(conn *websocket.Conn, closed chan<- struct{}) {
	defer close(closed)
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(feedPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(feedPongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.WithError(err).Debug("Feed connection closed unexpectedly")
			}
			return
		}
	}
}
