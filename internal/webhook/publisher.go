package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shenikar/community_alerts/internal/models"
)

const (
	webhookQueueKey = "webhook_events"
)

// WebhookEvent - уведомление о том, что рядом с пользователем есть актуальные алерты
type WebhookEvent struct {
	UserID    string          `json:"user_id"`
	Latitude  float64         `json:"latitude"`
	Longitude float64         `json:"longitude"`
	RadiusKm  float64         `json:"radius_km"`
	Timestamp time.Time       `json:"timestamp"`
	Alerts    []*models.Alert `json:"alerts"`
}

// WebhookPublisher - интерфейс для публикации вебхуков
type WebhookPublisher interface {
	Publish(ctx context.Context, event WebhookEvent) error
}

// RedisWebhookPublisher - реализация WebhookPublisher, использующая Redis
type RedisWebhookPublisher struct {
	redisClient *redis.Client
}

// NewRedisWebhookPublisher создает новый RedisWebhookPublisher
func NewRedisWebhookPublisher(client *redis.Client) *RedisWebhookPublisher {
	return &RedisWebhookPublisher{
		redisClient: client,
	}
}

// Publish кладет событие в очередь Redis, доставкой занимается WebhookWorker
func (p *RedisWebhookPublisher) Publish(ctx context.Context, event WebhookEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook event: %w", err)
	}

	// LPUSH в голову списка, воркер забирает с хвоста
	if err := p.redisClient.LPush(ctx, webhookQueueKey, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish webhook event to Redis: %w", err)
	}
	return nil
}
