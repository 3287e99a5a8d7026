package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shenikar/community_alerts/internal/config"
	"github.com/shenikar/community_alerts/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) *redis.Client {
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах
	return logger
}

func TestPublish_PushesToQueue(t *testing.T) {
	// Подготовка
	client := newTestRedis(t)
	publisher := NewRedisWebhookPublisher(client)
	ctx := context.Background()
	event := WebhookEvent{
		UserID:   "user-1",
		RadiusKm: 5,
		Alerts:   []*models.Alert{{ID: uuid.New(), Category: models.CategoryFire}},
	}

	// Действие
	err := publisher.Publish(ctx, event)

	// Проверки
	require.NoError(t, err)
	raw, err := client.RPop(ctx, webhookQueueKey).Result()
	require.NoError(t, err)

	var got WebhookEvent
	require.NoError(t, json.Unmarshal([]byte(raw), &got))
	assert.Equal(t, "user-1", got.UserID)
	require.Len(t, got.Alerts, 1)
	assert.Equal(t, event.Alerts[0].ID, got.Alerts[0].ID)
}

func TestWorker_DeliversSignedWebhook(t *testing.T) {
	// Подготовка
	client := newTestRedis(t)
	received := make(chan *http.Request, 1)
	bodies := make(chan []byte, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		received <- r
		bodies <- body
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	cfg := &config.Config{
		WebhookURL:        srv.URL,
		WebhookSecret:     "secret",
		WebhookTimeout:    time.Second,
		WebhookMaxRetries: 3,
		WebhookBaseDelay:  10 * time.Millisecond,
	}
	worker := NewWebhookWorker(client, newTestLogger(), cfg)
	ctx, cancel := context.WithCancel(context.Background())
	done := worker.Start(ctx)

	// Действие
	require.NoError(t, NewRedisWebhookPublisher(client).Publish(ctx, WebhookEvent{UserID: "user-2"}))

	// Проверки
	select {
	case req := <-received:
		body := <-bodies
		assert.Equal(t, http.MethodPost, req.Method)
		assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
		assert.Equal(t, generateHMACSHA256(string(body), "secret"), req.Header.Get(SignatureHeader))
	case <-time.After(3 * time.Second):
		t.Fatal("webhook was not delivered")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestWorker_RetriesOnServerError(t *testing.T) {
	// Подготовка
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := &config.Config{
		WebhookURL:        srv.URL,
		WebhookTimeout:    time.Second,
		WebhookMaxRetries: 5,
		WebhookBaseDelay:  time.Millisecond,
	}
	worker := NewWebhookWorker(nil, newTestLogger(), cfg)

	// Действие
	worker.processWebhookEvent(context.Background(), WebhookEvent{UserID: "u"}, `{"user_id":"u"}`)

	// Проверки
	assert.Equal(t, int32(3), attempts.Load())
}

func TestWorker_SkipsWithoutURL(t *testing.T) {
	worker := NewWebhookWorker(nil, newTestLogger(), &config.Config{WebhookTimeout: time.Second})
	// Без URL запрос не отправляется и паники нет
	worker.processWebhookEvent(context.Background(), WebhookEvent{}, "{}")
}

func TestGenerateHMACSHA256(t *testing.T) {
	// Контрольное значение HMAC-SHA256 из RFC-примеров
	assert.Equal(t,
		"f7bc83f430538424b13298e6aa6fb143ef4d59a14946175997479dbc2d1a3cd8",
		generateHMACSHA256("The quick brown fox jumps over the lazy dog", "key"))
}
