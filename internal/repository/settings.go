package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/shenikar/community_alerts/internal/models"
	"github.com/shenikar/community_alerts/internal/service"
)

type SettingsRepository struct {
	redisClient *redis.Client
}

func NewSettingsRepository(redisClient *redis.Client) service.SettingsRepository {
	return &SettingsRepository{redisClient: redisClient}
}

func settingsKey(userID string) string {
	return fmt.Sprintf("settings:%s", userID)
}

// GetSettings читает настройки из Redis. Если пользователь их не сохранял, возвращаются настройки по умолчанию.
func (r *SettingsRepository) GetSettings(ctx context.Context, userID string) (models.NotificationSettings, error) {
	val, err := r.redisClient.Get(ctx, settingsKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return models.DefaultNotificationSettings(), nil
		}
		return models.NotificationSettings{}, fmt.Errorf("failed to get settings from redis: %w", err)
	}

	var settings models.NotificationSettings
	if err := json.Unmarshal(val, &settings); err != nil {
		return models.NotificationSettings{}, fmt.Errorf("failed to unmarshal settings: %w", err)
	}
	return settings, nil
}

// SaveSettings сохраняет настройки без срока жизни
func (r *SettingsRepository) SaveSettings(ctx context.Context, userID string, settings models.NotificationSettings) error {
	val, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	if err := r.redisClient.Set(ctx, settingsKey(userID), val, 0).Err(); err != nil {
		return fmt.Errorf("failed to save settings to redis: %w", err)
	}
	return nil
}
