package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"github.com/shenikar/community_alerts/internal/models"
	"github.com/shenikar/community_alerts/internal/service"
	"github.com/sirupsen/logrus"
)

// ChangesChannel - канал Redis, в который публикуется id измененного алерта
const ChangesChannel = "alerts:changed"

const (
	defaultReloadDelay = 200 * time.Millisecond
	maxReloadDelay     = 5 * time.Second
)

// Querier - часть pgxpool.Pool, нужная репозиториям
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const selectAlerts = `
	SELECT
		id,
		author_id,
		author_name,
		author_reputation,
		category,
		description,
		image,
		latitude,
		longitude,
		address,
		upvotes,
		downvotes,
		status,
		comments,
		version,
		created_at
	FROM alerts
	ORDER BY created_at DESC;
`

type AlertRepository struct {
	db          Querier
	redisClient *redis.Client
	logger      *logrus.Logger
	// reloadDelay - первая пауза перед повтором неудачного перечитывания снимка
	reloadDelay time.Duration
}

func NewAlertRepository(db Querier, redisClient *redis.Client, logger *logrus.Logger) service.AlertRepository {
	return &AlertRepository{
		db:          db,
		redisClient: redisClient,
		logger:      logger,
		reloadDelay: defaultReloadDelay,
	}
}

// List возвращает все алерты, новые первыми
func (r *AlertRepository) List(ctx context.Context) ([]*models.Alert, error) {
	rows, err := r.db.Query(ctx, selectAlerts)
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	defer rows.Close()

	alerts := make([]*models.Alert, 0)
	for rows.Next() {
		alert, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, alert)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error list iteration: %w", err)
	}
	return alerts, nil
}

func scanAlert(row pgx.Row) (*models.Alert, error) {
	var (
		alert    models.Alert
		category string
		status   string
		comments []byte
	)
	err := row.Scan(
		&alert.ID,
		&alert.AuthorID,
		&alert.AuthorName,
		&alert.AuthorReputation,
		&category,
		&alert.Description,
		&alert.Image,
		&alert.Location.Latitude,
		&alert.Location.Longitude,
		&alert.Location.Address,
		&alert.Upvotes,
		&alert.Downvotes,
		&status,
		&comments,
		&alert.Version,
		&alert.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan alert row: %w", err)
	}
	alert.Category = models.Category(category)
	alert.Status = models.Status(status)

	alert.Comments = []models.Comment{}
	if len(comments) > 0 {
		if err := json.Unmarshal(comments, &alert.Comments); err != nil {
			return nil, fmt.Errorf("failed to unmarshal comments of alert %s: %w", alert.ID, err)
		}
	}
	return &alert, nil
}

// Subscribe сначала подписывается на канал изменений, затем отдает полный снимок.
// После каждого уведомления снимок перечитывается целиком. Пачка уведомлений,
// накопившаяся за время чтения, схлопывается в одно перечитывание.
//
// Функцию отписки нельзя вызывать из onSnapshot: она ждет завершения текущего вызова.
func (r *AlertRepository) Subscribe(ctx context.Context, onSnapshot func(alerts []*models.Alert)) (func(), error) {
	pubsub := r.redisClient.Subscribe(ctx, ChangesChannel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", ChangesChannel, err)
	}

	initial, err := r.List(ctx)
	if err != nil {
		_ = pubsub.Close()
		return nil, err
	}

	subCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	var (
		mu      sync.Mutex
		stopped bool
		once    sync.Once
	)
	deliver := func(alerts []*models.Alert) {
		mu.Lock()
		defer mu.Unlock()
		if stopped {
			return
		}
		onSnapshot(alerts)
	}

	deliver(initial)

	ch := pubsub.Channel()
	go func() {
		for range ch {
			// Схлопываем уведомления, пришедшие пока шло чтение
			for drained := false; !drained; {
				select {
				case _, ok := <-ch:
					if !ok {
						return
					}
				default:
					drained = true
				}
			}

			alerts, ok := r.reload(subCtx)
			if !ok {
				return
			}
			deliver(alerts)
		}
	}()

	unsubscribe := func() {
		once.Do(func() {
			mu.Lock()
			stopped = true
			mu.Unlock()
			cancel()
			if err := pubsub.Close(); err != nil {
				r.logger.WithError(err).Warn("Failed to close alert subscription")
			}
		})
	}
	return unsubscribe, nil
}

// reload перечитывает снимок, пока чтение не удастся, с растущей паузой между
// попытками. false - подписка отменена.
func (r *AlertRepository) reload(ctx context.Context) ([]*models.Alert, bool) {
	delay := r.reloadDelay
	for attempt := 1; ; attempt++ {
		alerts, err := r.List(ctx)
		if err == nil {
			return alerts, true
		}
		if ctx.Err() != nil {
			return nil, false
		}
		r.logger.WithError(err).WithField("attempt", attempt).Errorf("Failed to reload alert snapshot. Retrying in %v", delay)
		if !sleep(ctx, delay) {
			return nil, false
		}
		delay = min(delay*2, maxReloadDelay)
	}
}

// sleep ждет d или отмену контекста. false - контекст отменен.
func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// Create сохраняет новый алерт со снимком данных автора
func (r *AlertRepository) Create(ctx context.Context, draft models.AlertDraft, author models.User) (*models.Alert, error) {
	alert := &models.Alert{
		AuthorID:         author.ID,
		AuthorName:       author.Name,
		AuthorReputation: author.Reputation,
		Category:         draft.Category,
		Description:      draft.Description,
		Image:            draft.Image,
		Location:         draft.Location,
		Status:           models.StatusActive,
		Comments:         []models.Comment{},
	}

	query := `
		INSERT INTO alerts (author_id, author_name, author_reputation, category, description, image, latitude, longitude, address, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id, created_at, version;
	`
	err := r.db.QueryRow(ctx, query,
		alert.AuthorID,
		alert.AuthorName,
		alert.AuthorReputation,
		string(alert.Category),
		alert.Description,
		alert.Image,
		alert.Location.Latitude,
		alert.Location.Longitude,
		alert.Location.Address,
		string(alert.Status),
	).Scan(&alert.ID, &alert.CreatedAt, &alert.Version)
	if err != nil {
		return nil, fmt.Errorf("failed to create alert: %w", err)
	}

	r.notify(ctx, alert.ID)
	return alert, nil
}

// Update сливает непустые поля патча с записью. Остальные поля не трогаются.
func (r *AlertRepository) Update(ctx context.Context, id uuid.UUID, patch models.AlertPatch) error {
	if patch.IsEmpty() {
		return nil
	}

	query := sq.Update("alerts").PlaceholderFormat(sq.Dollar)
	if patch.Category != nil {
		query = query.Set("category", string(*patch.Category))
	}
	if patch.Description != nil {
		query = query.Set("description", *patch.Description)
	}
	if patch.Image != nil {
		query = query.Set("image", *patch.Image)
	}
	if patch.Location != nil {
		query = query.
			Set("latitude", patch.Location.Latitude).
			Set("longitude", patch.Location.Longitude).
			Set("address", patch.Location.Address)
	}
	if patch.Upvotes != nil {
		query = query.Set("upvotes", *patch.Upvotes)
	}
	if patch.Downvotes != nil {
		query = query.Set("downvotes", *patch.Downvotes)
	}
	if patch.Status != nil {
		query = query.Set("status", string(*patch.Status))
	}
	query = query.
		Set("version", sq.Expr("version + 1")).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id})

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build alert update: %w", err)
	}
	return r.exec(ctx, id, "update", sql, args...)
}

// AppendComment дописывает комментарий в конец массива одним запросом
func (r *AlertRepository) AppendComment(ctx context.Context, id uuid.UUID, comment models.Comment) error {
	payload, err := json.Marshal(comment)
	if err != nil {
		return fmt.Errorf("failed to marshal comment: %w", err)
	}

	query := `
		UPDATE alerts SET
			comments = comments || jsonb_build_array($1::jsonb),
			version = version + 1,
			updated_at = NOW()
		WHERE id = $2;
	`
	return r.exec(ctx, id, "append comment to", query, string(payload), id)
}

func (r *AlertRepository) exec(ctx context.Context, id uuid.UUID, op, query string, args ...any) error {
	cmdTag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to %s alert: %w", op, err)
	}

	// RowsAffected() == 0 значит, что алерта с таким id не существует
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("alert %s: %w", id, models.ErrAlertNotFound)
	}

	r.notify(ctx, id)
	return nil
}

// notify сообщает подписчикам об изменении. Запись к этому моменту уже принята,
// поэтому ошибка публикации только логируется.
func (r *AlertRepository) notify(ctx context.Context, id uuid.UUID) {
	if err := r.redisClient.Publish(ctx, ChangesChannel, id.String()).Err(); err != nil {
		r.logger.WithError(err).WithField("alert_id", id).Warn("Failed to publish alert change")
	}
}
