package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v2"
	"github.com/shenikar/community_alerts/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLocationCheck(t *testing.T) {
	// Подготовка
	mock, _ := newTestDeps(t)
	repo := NewLocationCheckRepository(mock)
	checkedAt := time.Now().UTC()
	check := &models.LocationCheck{UserID: "user-1", Latitude: -38.7, Longitude: -62.2, RadiusKm: 5, AlertCount: 2}

	// Ожидания
	mock.ExpectQuery(`INSERT INTO location_checks`).
		WithArgs("user-1", -38.7, -62.2, 5.0, 2).
		WillReturnRows(pgxmock.NewRows([]string{"id", "checked_at"}).AddRow(int64(11), checkedAt))

	// Действие
	err := repo.SaveLocationCheck(context.Background(), check)

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, int64(11), check.ID)
	assert.Equal(t, checkedAt, check.CheckedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetLocationCheckStats(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(mock pgxmock.PgxPoolIface)
		want    int
		wantErr bool
	}{
		{
			name: "counts users",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT COUNT`).WithArgs(60).
					WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(7))
			},
			want: 7,
		},
		{
			name: "no rows",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT COUNT`).WithArgs(60).WillReturnError(pgx.ErrNoRows)
			},
			want: 0,
		},
		{
			name: "db error",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT COUNT`).WithArgs(60).WillReturnError(errors.New("timeout"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, _ := newTestDeps(t)
			repo := NewLocationCheckRepository(mock)
			tt.setup(mock)

			count, err := repo.GetLocationCheckStats(context.Background(), 60)

			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, count)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
