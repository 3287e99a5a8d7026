package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shenikar/community_alerts/internal/models"
	"github.com/shenikar/community_alerts/internal/service"
)

type LocationCheckRepository struct {
	db Querier
}

func NewLocationCheckRepository(db Querier) service.LocationRepository {
	return &LocationCheckRepository{db: db}
}

// SaveLocationCheck сохраняет запись о проверке местоположения в бд
func (r *LocationCheckRepository) SaveLocationCheck(ctx context.Context, check *models.LocationCheck) error {
	query := `
		INSERT INTO location_checks (user_id, latitude, longitude, radius_km, alert_count)
		VALUES ($1, $2, $3, $4, $5) RETURNING id, checked_at;
	`
	err := r.db.QueryRow(ctx, query,
		check.UserID,
		check.Latitude,
		check.Longitude,
		check.RadiusKm,
		check.AlertCount,
	).Scan(&check.ID, &check.CheckedAt)
	if err != nil {
		return fmt.Errorf("failed to save location check: %w", err)
	}
	return nil
}

// GetLocationCheckStats возвращает количество уникальных пользователей, проверивших геолокацию
func (r *LocationCheckRepository) GetLocationCheckStats(ctx context.Context, minutes int) (int, error) {
	query := `
		SELECT COUNT(DISTINCT user_id)
		FROM location_checks
		WHERE checked_at >= NOW() - ($1 * INTERVAL '1 minute');
	`
	var count int
	err := r.db.QueryRow(ctx, query, minutes).Scan(&count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get location check stats: %w", err)
	}
	return count, nil
}
