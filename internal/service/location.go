package service

import (
	"context"
	"fmt"

	"github.com/shenikar/community_alerts/internal/config"
	"github.com/shenikar/community_alerts/internal/models"
	"github.com/shenikar/community_alerts/internal/policy"
	"github.com/shenikar/community_alerts/internal/webhook"
	"github.com/sirupsen/logrus"
)

const maxRadiusKm = 50

// LocationRepository определяет контракт для журнала проверок местоположения
type LocationRepository interface {
	SaveLocationCheck(ctx context.Context, check *models.LocationCheck) error
	GetLocationCheckStats(ctx context.Context, minutes int) (int, error)
}

// SettingsRepository хранит настройки уведомлений пользователей
type SettingsRepository interface {
	GetSettings(ctx context.Context, userID string) (models.NotificationSettings, error)
	SaveSettings(ctx context.Context, userID string, settings models.NotificationSettings) error
}

// SnapshotSource - источник текущего снимка алертов
type SnapshotSource interface {
	Snapshot() []*models.Alert
}

// LocationService определяет контракт уведомлений об алертах рядом с пользователем
type LocationService interface {
	GetSettings(ctx context.Context, user *models.User) (models.NotificationSettings, error)
	SaveSettings(ctx context.Context, user *models.User, settings models.NotificationSettings) error
	CheckLocation(ctx context.Context, user *models.User, lat, lon float64) ([]*models.Alert, error)
	GetStats(ctx context.Context) (int, error)
}

type locationService struct {
	alerts    SnapshotSource
	repo      LocationRepository
	settings  SettingsRepository
	publisher webhook.WebhookPublisher
	logger    *logrus.Logger
	cfg       *config.Config
}

func NewLocationService(
	alerts SnapshotSource,
	repo LocationRepository,
	settings SettingsRepository,
	publisher webhook.WebhookPublisher,
	logger *logrus.Logger,
	cfg *config.Config,
) LocationService {
	return &locationService{
		alerts:    alerts,
		repo:      repo,
		settings:  settings,
		publisher: publisher,
		logger:    logger,
		cfg:       cfg,
	}
}

// GetSettings возвращает настройки пользователя или настройки по умолчанию
func (s *locationService) GetSettings(ctx context.Context, user *models.User) (models.NotificationSettings, error) {
	if user == nil || user.IsGuest {
		return models.DefaultNotificationSettings(), nil
	}
	settings, err := s.settings.GetSettings(ctx, user.ID)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"service": "location",
			"method":  "GetSettings",
			"user_id": user.ID,
		}).WithError(err).Error("Failed to load notification settings")
		return models.NotificationSettings{}, fmt.Errorf("service: could not get settings: %w", err)
	}
	return settings, nil
}

// SaveSettings сохраняет настройки уведомлений. Гостям настройки не сохраняются.
func (s *locationService) SaveSettings(ctx context.Context, user *models.User, settings models.NotificationSettings) error {
	if user == nil || user.IsGuest {
		return ErrPermissionDenied
	}
	log := s.logger.WithFields(logrus.Fields{
		"service": "location",
		"method":  "SaveSettings",
		"user_id": user.ID,
	})

	if settings.RadiusKm <= 0 || settings.RadiusKm > maxRadiusKm {
		return fmt.Errorf("%w: radius must be within (0, %d] km", ErrValidation, maxRadiusKm)
	}
	for _, c := range settings.Categories {
		if !c.Valid() {
			return fmt.Errorf("%w: unknown category %q", ErrValidation, c)
		}
	}
	if settings.Categories == nil {
		settings.Categories = []models.Category{}
	}

	if err := s.settings.SaveSettings(ctx, user.ID, settings); err != nil {
		log.WithError(err).Error("Failed to save notification settings")
		return fmt.Errorf("service: could not save settings: %w", err)
	}
	log.Info("Notification settings saved")
	return nil
}

// CheckLocation находит актуальные алерты в радиусе из настроек пользователя
func (s *locationService) CheckLocation(ctx context.Context, user *models.User, lat, lon float64) ([]*models.Alert, error) {
	if user == nil {
		return nil, ErrPermissionDenied
	}
	log := s.logger.WithFields(logrus.Fields{
		"service": "location",
		"method":  "CheckLocation",
		"user_id": user.ID,
	})
	log.Info("Checking user location")

	settings, err := s.GetSettings(ctx, user)
	if err != nil {
		return nil, err
	}

	relevant := policy.Filter(s.alerts.Snapshot(), models.SelectionAll, false, user)
	nearby := policy.WithinRadius(relevant, lat, lon, settings.RadiusKm)
	found := make([]*models.Alert, 0, len(nearby))
	for _, a := range nearby {
		if settings.Subscribed(a.Category) {
			found = append(found, a)
		}
	}

	check := &models.LocationCheck{
		UserID:     user.ID,
		Latitude:   lat,
		Longitude:  lon,
		RadiusKm:   settings.RadiusKm,
		AlertCount: len(found),
	}
	if err := s.repo.SaveLocationCheck(ctx, check); err != nil {
		log.WithError(err).Error("Failed to save location check")
		return nil, fmt.Errorf("service: could not save location check: %w", err)
	}

	if check.HasAlerts() && settings.Enabled {
		event := webhook.WebhookEvent{
			UserID:    user.ID,
			Latitude:  lat,
			Longitude: lon,
			RadiusKm:  settings.RadiusKm,
			Timestamp: check.CheckedAt,
			Alerts:    found,
		}
		// Уведомление не должно ломать ответ пользователю
		if err := s.publisher.Publish(ctx, event); err != nil {
			log.WithError(err).Warn("Failed to publish webhook event")
		}
	}

	log.WithField("alert_count", len(found)).Info("Location check completed")
	return found, nil
}

// GetStats возвращает количество уникальных пользователей, проверявших местоположение
func (s *locationService) GetStats(ctx context.Context) (int, error) {
	count, err := s.repo.GetLocationCheckStats(ctx, s.cfg.StatsTimeWindowMinutes)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"service": "location",
			"method":  "GetStats",
		}).WithError(err).Error("Failed to get location check stats")
		return 0, fmt.Errorf("service: could not get stats: %w", err)
	}
	return count, nil
}
