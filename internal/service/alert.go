package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/community_alerts/internal/metrics"
	"github.com/shenikar/community_alerts/internal/models"
	"github.com/shenikar/community_alerts/internal/policy"
	"github.com/sirupsen/logrus"
)

// AlertRepository определяет контракт удаленного хранилища алертов
type AlertRepository interface {
	// Subscribe доставляет полный снимок сразу и после каждого изменения.
	// Возвращаемая функция отменяет подписку и безопасна при повторном вызове.
	Subscribe(ctx context.Context, onSnapshot func(alerts []*models.Alert)) (func(), error)
	Create(ctx context.Context, draft models.AlertDraft, author models.User) (*models.Alert, error)
	Update(ctx context.Context, id uuid.UUID, patch models.AlertPatch) error
	AppendComment(ctx context.Context, id uuid.UUID, comment models.Comment) error
}

// AlertService определяет контракт контроллера состояния алертов
type AlertService interface {
	Start(ctx context.Context) error
	Stop()
	Snapshot() []*models.Alert
	Get(id uuid.UUID) (*models.Alert, bool)
	Filter(selection models.Selection, showResolved bool, user *models.User) []*models.Alert
	Watch(fn func(SnapshotEvent)) (cancel func())
	CanEdit(alert *models.Alert, user *models.User) bool
	EditWindowLeft(alert *models.Alert, user *models.User) time.Duration
	CreateAlert(ctx context.Context, user *models.User, draft models.AlertDraft) (*models.Alert, error)
	EditAlert(ctx context.Context, user *models.User, id uuid.UUID, draft models.AlertDraft) error
	Vote(ctx context.Context, user *models.User, id uuid.UUID, direction models.VoteDirection) error
	ResolveAlert(ctx context.Context, user *models.User, id uuid.UUID) error
	AddComment(ctx context.Context, user *models.User, id uuid.UUID, text string) (*models.Comment, error)
}

// alertController держит последний снимок алертов и отправляет намерения в репозиторий.
// Снимок заменяется целиком, локально записи не патчатся.
type alertController struct {
	repo   AlertRepository
	logger *logrus.Logger
	now    func() time.Time

	mu     sync.RWMutex
	alerts []*models.Alert
	index  map[uuid.UUID]*models.Alert

	subMu       sync.Mutex
	unsubscribe func()

	watchersMu  sync.Mutex
	watchers    map[uint64]func(SnapshotEvent)
	nextWatcher uint64
}

func NewAlertController(repo AlertRepository, logger *logrus.Logger) AlertService {
	return &alertController{
		repo:     repo,
		logger:   logger,
		now:      time.Now,
		alerts:   []*models.Alert{},
		index:    map[uuid.UUID]*models.Alert{},
		watchers: map[uint64]func(SnapshotEvent){},
	}
}

// Start подписывается на живую ленту хранилища
func (s *alertController) Start(ctx context.Context) error {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	if s.unsubscribe != nil {
		return nil
	}

	s.logger.WithField("service", "alert").Info("Subscribing to alert snapshots")
	unsubscribe, err := s.repo.Subscribe(ctx, s.applySnapshot)
	if err != nil {
		return fmt.Errorf("service: could not subscribe to alerts: %w", err)
	}
	s.unsubscribe = unsubscribe
	return nil
}

// Stop отменяет подписку. Повторный вызов ничего не делает.
func (s *alertController) Stop() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	if s.unsubscribe == nil {
		return
	}
	s.unsubscribe()
	s.unsubscribe = nil
	s.logger.WithField("service", "alert").Info("Alert subscription stopped")
}

func (s *alertController) applySnapshot(alerts []*models.Alert) {
	index := make(map[uuid.UUID]*models.Alert, len(alerts))
	for _, a := range alerts {
		index[a.ID] = a
	}

	s.mu.Lock()
	prev := s.alerts
	s.alerts = alerts
	s.index = index
	s.mu.Unlock()

	metrics.Snapshots.Inc()
	metrics.AlertsInSnapshot.Set(float64(len(alerts)))

	event := SnapshotEvent{Alerts: alerts, Changes: Diff(prev, alerts)}
	s.logger.WithFields(logrus.Fields{
		"service":  "alert",
		"count":    len(alerts),
		"added":    len(event.Changes.Added),
		"modified": len(event.Changes.Modified),
		"removed":  len(event.Changes.Removed),
	}).Debug("Snapshot applied")

	for _, fn := range s.watcherList() {
		fn(event)
	}
}

// Snapshot возвращает текущий снимок. Записи общие, изменять их нельзя.
func (s *alertController) Snapshot() []*models.Alert {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.alerts
}

// Get ищет алерт в текущем снимке
func (s *alertController) Get(id uuid.UUID) (*models.Alert, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.index[id]
	return a, ok
}

// Filter применяет политику фильтрации к текущему снимку
func (s *alertController) Filter(selection models.Selection, showResolved bool, user *models.User) []*models.Alert {
	return policy.Filter(s.Snapshot(), selection, showResolved, user)
}

// Watch регистрирует получателя новых снимков. fn вызывается из горутины подписки и не должна блокироваться.
func (s *alertController) Watch(fn func(SnapshotEvent)) func() {
	s.watchersMu.Lock()
	id := s.nextWatcher
	s.nextWatcher++
	s.watchers[id] = fn
	s.watchersMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.watchersMu.Lock()
			delete(s.watchers, id)
			s.watchersMu.Unlock()
		})
	}
}

func (s *alertController) watcherList() []func(SnapshotEvent) {
	s.watchersMu.Lock()
	defer s.watchersMu.Unlock()
	list := make([]func(SnapshotEvent), 0, len(s.watchers))
	for _, fn := range s.watchers {
		list = append(list, fn)
	}
	return list
}

// CanEdit проверяет окно редактирования на текущий момент
func (s *alertController) CanEdit(alert *models.Alert, user *models.User) bool {
	return policy.CanEdit(alert, user, s.now())
}

// EditWindowLeft возвращает остаток окна редактирования, 0 если пользователь не может править.
// Оба значения считаются от одного момента времени.
func (s *alertController) EditWindowLeft(alert *models.Alert, user *models.User) time.Duration {
	now := s.now()
	if !policy.CanEdit(alert, user, now) {
		return 0
	}
	return policy.EditWindowRemaining(alert, now)
}

// CreateAlert отправляет новый алерт в хранилище. В снимке он появится со следующим обновлением.
func (s *alertController) CreateAlert(ctx context.Context, user *models.User, draft models.AlertDraft) (*models.Alert, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":  "alert",
		"method":   "CreateAlert",
		"category": draft.Category,
	})
	log.Info("Attempting to create a new alert")

	if user == nil || user.IsGuest {
		log.Warn("Guest attempted to create an alert")
		metrics.AlertWrites.WithLabelValues("create", metrics.ResultDenied).Inc()
		return nil, ErrPermissionDenied
	}
	draft, err := normalizeDraft(draft)
	if err != nil {
		log.WithError(err).Warn("Invalid alert draft")
		metrics.AlertWrites.WithLabelValues("create", metrics.ResultInvalid).Inc()
		return nil, err
	}

	alert, err := s.repo.Create(ctx, draft, *user)
	if err != nil {
		log.WithError(err).Error("Failed to create alert in repository")
		metrics.AlertWrites.WithLabelValues("create", metrics.ResultError).Inc()
		return nil, fmt.Errorf("%w: could not create alert: %w", ErrRemoteWrite, err)
	}

	metrics.AlertWrites.WithLabelValues("create", metrics.ResultOK).Inc()
	log.WithField("alert_id", alert.ID).Info("Alert created successfully")
	return alert, nil
}

// EditAlert меняет содержимое алерта, пока автор находится в окне редактирования
func (s *alertController) EditAlert(ctx context.Context, user *models.User, id uuid.UUID, draft models.AlertDraft) error {
	log := s.logger.WithFields(logrus.Fields{
		"service":  "alert",
		"method":   "EditAlert",
		"alert_id": id,
	})
	log.Info("Attempting to edit alert")

	if user == nil || user.IsGuest {
		log.Warn("Guest attempted to edit an alert")
		metrics.AlertWrites.WithLabelValues("edit", metrics.ResultDenied).Inc()
		return ErrPermissionDenied
	}
	draft, err := normalizeDraft(draft)
	if err != nil {
		log.WithError(err).Warn("Invalid alert draft")
		metrics.AlertWrites.WithLabelValues("edit", metrics.ResultInvalid).Inc()
		return err
	}

	alert, ok := s.Get(id)
	if !ok {
		log.Debug("Alert is not in the current snapshot, skipping edit")
		metrics.AlertWrites.WithLabelValues("edit", metrics.ResultNoop).Inc()
		return nil
	}
	if !policy.CanEdit(alert, user, s.now()) {
		log.WithField("user_id", user.ID).Warn("Edit outside of the edit window or by a non-author")
		metrics.AlertWrites.WithLabelValues("edit", metrics.ResultDenied).Inc()
		return ErrForbidden
	}

	patch := models.AlertPatch{
		Category:    &draft.Category,
		Description: &draft.Description,
		Location:    &draft.Location,
		Image:       draft.Image,
	}
	return s.finishWrite(log, "edit", s.repo.Update(ctx, id, patch))
}

// Vote увеличивает счетчик на единицу относительно текущего снимка
func (s *alertController) Vote(ctx context.Context, user *models.User, id uuid.UUID, direction models.VoteDirection) error {
	log := s.logger.WithFields(logrus.Fields{
		"service":   "alert",
		"method":    "Vote",
		"alert_id":  id,
		"direction": direction,
	})

	if user == nil || user.IsGuest {
		log.Warn("Guest attempted to vote")
		metrics.AlertWrites.WithLabelValues("vote", metrics.ResultDenied).Inc()
		return ErrPermissionDenied
	}
	if direction != models.VoteUp && direction != models.VoteDown {
		metrics.AlertWrites.WithLabelValues("vote", metrics.ResultInvalid).Inc()
		return fmt.Errorf("%w: unknown vote direction %q", ErrValidation, direction)
	}

	alert, ok := s.Get(id)
	if !ok {
		log.Debug("Alert is not in the current snapshot, skipping vote")
		metrics.AlertWrites.WithLabelValues("vote", metrics.ResultNoop).Inc()
		return nil
	}

	var patch models.AlertPatch
	if direction == models.VoteUp {
		upvotes := alert.Upvotes + 1
		patch.Upvotes = &upvotes
	} else {
		downvotes := alert.Downvotes + 1
		patch.Downvotes = &downvotes
	}
	return s.finishWrite(log, "vote", s.repo.Update(ctx, id, patch))
}

// ResolveAlert переводит активный алерт в resolved
func (s *alertController) ResolveAlert(ctx context.Context, user *models.User, id uuid.UUID) error {
	log := s.logger.WithFields(logrus.Fields{
		"service":  "alert",
		"method":   "ResolveAlert",
		"alert_id": id,
	})
	log.Info("Attempting to resolve alert")

	if user == nil || user.IsGuest {
		log.Warn("Guest attempted to resolve an alert")
		metrics.AlertWrites.WithLabelValues("resolve", metrics.ResultDenied).Inc()
		return ErrPermissionDenied
	}

	alert, ok := s.Get(id)
	if !ok || alert.Status != models.StatusActive {
		log.Debug("Alert is absent or not active, skipping resolve")
		metrics.AlertWrites.WithLabelValues("resolve", metrics.ResultNoop).Inc()
		return nil
	}
	if !policy.CanResolve(alert, user) {
		log.WithField("user_id", user.ID).Warn("User is not allowed to resolve this alert")
		metrics.AlertWrites.WithLabelValues("resolve", metrics.ResultDenied).Inc()
		return ErrPermissionDenied
	}

	status := models.StatusResolved
	return s.finishWrite(log, "resolve", s.repo.Update(ctx, id, models.AlertPatch{Status: &status}))
}

// AddComment добавляет комментарий в конец списка. Гости тоже могут комментировать.
func (s *alertController) AddComment(ctx context.Context, user *models.User, id uuid.UUID, text string) (*models.Comment, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":  "alert",
		"method":   "AddComment",
		"alert_id": id,
	})

	if user == nil {
		metrics.AlertWrites.WithLabelValues("comment", metrics.ResultDenied).Inc()
		return nil, ErrPermissionDenied
	}
	text = strings.TrimSpace(text)
	if text == "" {
		metrics.AlertWrites.WithLabelValues("comment", metrics.ResultInvalid).Inc()
		return nil, fmt.Errorf("%w: comment text is empty", ErrValidation)
	}

	if _, ok := s.Get(id); !ok {
		log.Debug("Alert is not in the current snapshot, skipping comment")
		metrics.AlertWrites.WithLabelValues("comment", metrics.ResultNoop).Inc()
		return nil, nil
	}

	comment := models.Comment{
		ID:         uuid.NewString(),
		AuthorID:   user.ID,
		AuthorName: user.Name,
		Text:       text,
		CreatedAt:  s.now(),
	}
	if err := s.finishWrite(log, "comment", s.repo.AppendComment(ctx, id, comment)); err != nil {
		return nil, err
	}
	return &comment, nil
}

// finishWrite переводит ошибку репозитория в таксономию сервиса.
// Отсутствующий алерт - это устаревший снимок, а не ошибка.
func (s *alertController) finishWrite(log *logrus.Entry, op string, err error) error {
	if err == nil {
		metrics.AlertWrites.WithLabelValues(op, metrics.ResultOK).Inc()
		log.Info("Alert write accepted")
		return nil
	}
	if errors.Is(err, models.ErrAlertNotFound) {
		metrics.AlertWrites.WithLabelValues(op, metrics.ResultNoop).Inc()
		log.Debug("Alert disappeared from the store, skipping write")
		return nil
	}
	metrics.AlertWrites.WithLabelValues(op, metrics.ResultError).Inc()
	log.WithError(err).Error("Failed to write alert in repository")
	return fmt.Errorf("%w: %s: %w", ErrRemoteWrite, op, err)
}

func normalizeDraft(draft models.AlertDraft) (models.AlertDraft, error) {
	if !draft.Category.Valid() {
		return draft, fmt.Errorf("%w: unknown category %q", ErrValidation, draft.Category)
	}
	draft.Description = strings.TrimSpace(draft.Description)
	if draft.Description == "" {
		return draft, fmt.Errorf("%w: description is required", ErrValidation)
	}
	draft.Location.Address = strings.TrimSpace(draft.Location.Address)
	if draft.Location.Address == "" {
		return draft, fmt.Errorf("%w: address is required", ErrValidation)
	}
	if draft.Location.Latitude < -90 || draft.Location.Latitude > 90 ||
		draft.Location.Longitude < -180 || draft.Location.Longitude > 180 {
		return draft, fmt.Errorf("%w: coordinates out of range", ErrValidation)
	}
	return draft, nil
}
