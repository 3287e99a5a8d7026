package repository

import (
	"bytes"
	"context"
	"errors"
	"regexp"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shenikar/community_alerts/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var alertColumns = []string{
	"id", "author_id", "author_name", "author_reputation", "category", "description", "image",
	"latitude", "longitude", "address", "upvotes", "downvotes", "status", "comments", "version", "created_at",
}

func newTestDeps(t *testing.T) (pgxmock.PgxPoolIface, *redis.Client) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mock, client
}

func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах
	return logger
}

func newTestAlertRepository(t *testing.T) (*AlertRepository, pgxmock.PgxPoolIface, *redis.Client) {
	mock, client := newTestDeps(t)
	repo := NewAlertRepository(mock, client, newTestLogger()).(*AlertRepository)
	return repo, mock, client
}

func alertRows(ids ...uuid.UUID) *pgxmock.Rows {
	rows := pgxmock.NewRows(alertColumns)
	created := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)
	for i, id := range ids {
		rows.AddRow(
			id, "user-1", "Ana", 10, "BrokenAsphalt", "Bache enorme", nil,
			-38.7183, -62.2663, "Alsina 100", 3, 1, "active",
			[]byte(`[{"id":"c1","author_id":"guest-1","author_name":"Guest","text":"hola","created_at":"2025-03-14T12:05:00Z"}]`),
			int64(2), created.Add(-time.Duration(i)*time.Minute),
		)
	}
	return rows
}

func TestList_ScansAlerts(t *testing.T) {
	// Подготовка
	repo, mock, _ := newTestAlertRepository(t)
	id := uuid.New()
	mock.ExpectQuery(`SELECT`).WillReturnRows(alertRows(id))

	// Действие
	alerts, err := repo.List(context.Background())

	// Проверки
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	a := alerts[0]
	assert.Equal(t, id, a.ID)
	assert.Equal(t, models.CategoryBrokenAsphalt, a.Category)
	assert.Equal(t, models.StatusActive, a.Status)
	assert.Nil(t, a.Image)
	assert.Equal(t, 3, a.Upvotes)
	assert.Equal(t, int64(2), a.Version)
	require.Len(t, a.Comments, 1)
	assert.Equal(t, "hola", a.Comments[0].Text)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestList_QueryError(t *testing.T) {
	repo, mock, _ := newTestAlertRepository(t)
	mock.ExpectQuery(`SELECT`).WillReturnError(errors.New("connection refused"))

	_, err := repo.List(context.Background())

	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_InsertsAndPublishes(t *testing.T) {
	// Подготовка
	repo, mock, client := newTestAlertRepository(t)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	pubsub := client.Subscribe(ctx, ChangesChannel)
	defer pubsub.Close()
	_, err := pubsub.Receive(ctx)
	require.NoError(t, err)

	id := uuid.New()
	created := time.Now().UTC()
	author := models.User{ID: "user-1", Name: "Ana", Reputation: 42}
	draft := models.AlertDraft{
		Category:    models.CategoryFire,
		Description: "Incendio en baldío",
		Location:    models.Location{Latitude: -38.7, Longitude: -62.2, Address: "Brown 500"},
	}

	// Ожидания
	mock.ExpectQuery(`INSERT INTO alerts`).
		WithArgs("user-1", "Ana", 42, "Fire", "Incendio en baldío", pgxmock.AnyArg(), -38.7, -62.2, "Brown 500", "active").
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "version"}).AddRow(id, created, int64(1)))

	// Действие
	alert, err := repo.Create(ctx, draft, author)

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, id, alert.ID)
	assert.Equal(t, 42, alert.AuthorReputation)
	assert.Equal(t, models.StatusActive, alert.Status)
	assert.Empty(t, alert.Comments)

	msg, err := pubsub.ReceiveMessage(ctx)
	require.NoError(t, err)
	assert.Equal(t, id.String(), msg.Payload)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate_MergesOnlySetFields(t *testing.T) {
	repo, mock, _ := newTestAlertRepository(t)
	id := uuid.New()
	status := models.StatusResolved

	mock.ExpectExec(`UPDATE alerts SET status = \$1, version = version \+ 1, updated_at = NOW\(\) WHERE id = \$2`).
		WithArgs("resolved", id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := repo.Update(context.Background(), id, models.AlertPatch{Status: &status})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate_Votes(t *testing.T) {
	repo, mock, _ := newTestAlertRepository(t)
	id := uuid.New()
	up := 5

	mock.ExpectExec(`UPDATE alerts SET upvotes`).
		WithArgs(5, id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, repo.Update(context.Background(), id, models.AlertPatch{Upvotes: &up}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate_NotFound(t *testing.T) {
	repo, mock, _ := newTestAlertRepository(t)
	id := uuid.New()
	down := 1

	mock.ExpectExec(`UPDATE alerts SET`).
		WithArgs(1, id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.Update(context.Background(), id, models.AlertPatch{Downvotes: &down})

	assert.ErrorIs(t, err, models.ErrAlertNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate_EmptyPatchIsNoop(t *testing.T) {
	repo, mock, _ := newTestAlertRepository(t)

	err := repo.Update(context.Background(), uuid.New(), models.AlertPatch{})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppendComment(t *testing.T) {
	repo, mock, _ := newTestAlertRepository(t)
	id := uuid.New()
	comment := models.Comment{ID: "c1", AuthorID: "user-1", AuthorName: "Ana", Text: "Sigue ahí", CreatedAt: time.Now().UTC()}

	mock.ExpectExec(regexp.QuoteMeta(`comments = comments || jsonb_build_array($1::jsonb)`)).
		WithArgs(pgxmock.AnyArg(), id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, repo.AppendComment(context.Background(), id, comment))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppendComment_DBError(t *testing.T) {
	repo, mock, _ := newTestAlertRepository(t)
	id := uuid.New()

	mock.ExpectExec(`UPDATE alerts SET`).
		WithArgs(pgxmock.AnyArg(), id).
		WillReturnError(errors.New("deadlock detected"))

	err := repo.AppendComment(context.Background(), id, models.Comment{Text: "x"})

	require.Error(t, err)
	assert.NotErrorIs(t, err, models.ErrAlertNotFound)
}

func TestSubscribe_DeliversSnapshotsUntilUnsubscribed(t *testing.T) {
	// Подготовка
	repo, mock, _ := newTestAlertRepository(t)
	ctx := context.Background()
	first, second := uuid.New(), uuid.New()
	votes := 4

	mock.ExpectQuery(`SELECT`).WillReturnRows(alertRows(first))
	mock.ExpectExec(`UPDATE alerts SET`).WithArgs(4, first).WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectQuery(`SELECT`).WillReturnRows(alertRows(first, second))

	snapshots := make(chan []*models.Alert, 4)

	// Действие
	unsubscribe, err := repo.Subscribe(ctx, func(alerts []*models.Alert) {
		snapshots <- alerts
	})
	require.NoError(t, err)

	// Проверки: начальный снимок приходит сразу
	select {
	case got := <-snapshots:
		require.Len(t, got, 1)
		assert.Equal(t, first, got[0].ID)
	default:
		t.Fatal("initial snapshot was not delivered synchronously")
	}

	require.NoError(t, repo.Update(ctx, first, models.AlertPatch{Upvotes: &votes}))

	select {
	case got := <-snapshots:
		assert.Len(t, got, 2)
	case <-time.After(3 * time.Second):
		t.Fatal("snapshot after change was not delivered")
	}

	unsubscribe()
	unsubscribe()

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubscribe_RetriesFailedReload(t *testing.T) {
	// Подготовка
	repo, mock, _ := newTestAlertRepository(t)
	repo.reloadDelay = 10 * time.Millisecond
	ctx := context.Background()
	first, second := uuid.New(), uuid.New()
	votes := 5

	mock.ExpectQuery(`SELECT`).WillReturnRows(alertRows(first))
	mock.ExpectExec(`UPDATE alerts SET`).WithArgs(5, first).WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectQuery(`SELECT`).WillReturnError(errors.New("connection reset"))
	mock.ExpectQuery(`SELECT`).WillReturnRows(alertRows(first, second))

	snapshots := make(chan []*models.Alert, 4)
	unsubscribe, err := repo.Subscribe(ctx, func(alerts []*models.Alert) {
		snapshots <- alerts
	})
	require.NoError(t, err)
	defer unsubscribe()
	<-snapshots

	// Действие
	require.NoError(t, repo.Update(ctx, first, models.AlertPatch{Upvotes: &votes}))

	// Проверки: после ошибки чтение повторяется, и свежий снимок доходит без новых записей
	select {
	case got := <-snapshots:
		require.Len(t, got, 2)
		assert.Equal(t, second, got[1].ID)
	case <-time.After(3 * time.Second):
		t.Fatal("snapshot was not delivered after a failed reload")
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubscribe_NoCallbacksAfterUnsubscribe(t *testing.T) {
	// Подготовка
	repo, mock, client := newTestAlertRepository(t)
	ctx := context.Background()
	id := uuid.New()

	mock.ExpectQuery(`SELECT`).WillReturnRows(alertRows(id))

	var calls atomic.Int32
	unsubscribe, err := repo.Subscribe(ctx, func([]*models.Alert) {
		calls.Add(1)
	})
	require.NoError(t, err)
	require.Equal(t, int32(1), calls.Load())

	// Действие
	unsubscribe()
	unsubscribe()
	require.NoError(t, client.Publish(ctx, ChangesChannel, id.String()).Err())
	time.Sleep(200 * time.Millisecond)

	// Проверки
	assert.Equal(t, int32(1), calls.Load())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubscribe_InitialListError(t *testing.T) {
	repo, mock, _ := newTestAlertRepository(t)
	mock.ExpectQuery(`SELECT`).WillReturnError(errors.New("db down"))

	unsubscribe, err := repo.Subscribe(context.Background(), func([]*models.Alert) {
		t.Fatal("callback must not run")
	})

	require.Error(t, err)
	assert.Nil(t, unsubscribe)
}
