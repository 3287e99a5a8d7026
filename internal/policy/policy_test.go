package policy

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/community_alerts/internal/models"
	"github.com/stretchr/testify/assert"
)

func newAlert(author string, category models.Category, status models.Status) *models.Alert {
	return &models.Alert{
		ID:       uuid.New(),
		AuthorID: author,
		Category: category,
		Status:   status,
	}
}

func ids(alerts []*models.Alert) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, a.ID)
	}
	return out
}

func TestCanEdit(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	author := &models.User{ID: "u1", Name: "Ana"}

	tests := []struct {
		name string
		age  time.Duration
		user *models.User
		want bool
	}{
		{name: "автор через 9 минут", age: 9 * time.Minute, user: author, want: true},
		{name: "сразу после создания", age: 0, user: author, want: true},
		{name: "ровно 10 минут", age: 10 * time.Minute, user: author, want: false},
		{name: "после окна", age: 11 * time.Minute, user: author, want: false},
		{name: "не автор", age: time.Minute, user: &models.User{ID: "u2"}, want: false},
		{name: "гость с тем же id", age: time.Minute, user: &models.User{ID: "u1", IsGuest: true}, want: false},
		{name: "без пользователя", age: time.Minute, user: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alert := newAlert("u1", models.CategoryFire, models.StatusActive)
			alert.CreatedAt = now.Add(-tt.age)
			assert.Equal(t, tt.want, CanEdit(alert, tt.user, now))
		})
	}
}

func TestEditWindowRemaining(t *testing.T) {
	now := time.Now()
	alert := &models.Alert{CreatedAt: now.Add(-4 * time.Minute)}
	assert.Equal(t, 6*time.Minute, EditWindowRemaining(alert, now))

	alert.CreatedAt = now.Add(-time.Hour)
	assert.Equal(t, time.Duration(0), EditWindowRemaining(alert, now))
}

func TestFilter_AllHidesResolved(t *testing.T) {
	user := &models.User{ID: "u1"}
	active := newAlert("u2", models.CategoryFire, models.StatusActive)
	resolved := newAlert("u2", models.CategoryFire, models.StatusResolved)
	verified := newAlert("u2", models.CategoryCrime, models.StatusVerified)
	alerts := []*models.Alert{active, resolved, verified}

	got := Filter(alerts, models.SelectionAll, false, user)
	assert.Equal(t, []uuid.UUID{active.ID, verified.ID}, ids(got))

	got = Filter(alerts, models.SelectionAll, true, user)
	assert.Equal(t, []uuid.UUID{resolved.ID, verified.ID}, ids(got))
}

func TestFilter_Category(t *testing.T) {
	fire := newAlert("u2", models.CategoryFire, models.StatusActive)
	crime := newAlert("u2", models.CategoryCrime, models.StatusActive)
	verifiedFire := newAlert("u3", models.CategoryFire, models.StatusVerified)

	got := Filter([]*models.Alert{fire, crime, verifiedFire}, models.Selection(models.CategoryFire), false, nil)
	assert.Equal(t, []uuid.UUID{fire.ID, verifiedFire.ID}, ids(got))
}

func TestFilter_MyReportsIgnoresCategoryAndStatus(t *testing.T) {
	user := &models.User{ID: "u1"}
	mineResolved := newAlert("u1", models.CategoryTraffic, models.StatusResolved)
	other := newAlert("u2", models.CategoryTraffic, models.StatusActive)
	mineActive := newAlert("u1", models.CategoryBrokenAsphalt, models.StatusActive)
	alerts := []*models.Alert{mineResolved, other, mineActive}

	for _, showResolved := range []bool{true, false} {
		got := Filter(alerts, models.SelectionMyReports, showResolved, user)
		assert.Equal(t, []uuid.UUID{mineResolved.ID, mineActive.ID}, ids(got))
	}

	assert.Empty(t, Filter(alerts, models.SelectionMyReports, false, nil))
}

func TestFilter_PreservesOrder(t *testing.T) {
	alerts := make([]*models.Alert, 0, 5)
	for i := 0; i < 5; i++ {
		alerts = append(alerts, newAlert("u", models.CategoryService, models.StatusActive))
	}
	assert.Equal(t, ids(alerts), ids(Filter(alerts, models.SelectionAll, false, nil)))
}

func TestWithinRadius(t *testing.T) {
	// Центр Бахия-Бланки и точка примерно в 3 км к северу
	center := models.Location{Latitude: -38.7183, Longitude: -62.2663}
	near := newAlert("u", models.CategoryFire, models.StatusActive)
	near.Location = models.Location{Latitude: -38.6913, Longitude: -62.2663}
	far := newAlert("u", models.CategoryFire, models.StatusActive)
	far.Location = models.Location{Latitude: -38.5, Longitude: -62.2663}

	got := WithinRadius([]*models.Alert{near, far}, center.Latitude, center.Longitude, 5)
	assert.Equal(t, []uuid.UUID{near.ID}, ids(got))
}

func TestDistanceKm(t *testing.T) {
	assert.InDelta(t, 0, DistanceKm(10, 10, 10, 10), 1e-9)
	// Один градус широты ~111.19 км
	assert.InDelta(t, 111.19, DistanceKm(0, 0, 1, 0), 0.01)
}

func TestCanResolve(t *testing.T) {
	author := &models.User{ID: "u1"}
	neighbour := &models.User{ID: "u2"}
	guest := &models.User{ID: models.GuestIDPrefix + "1", IsGuest: true}

	pothole := newAlert("u1", models.CategoryBrokenAsphalt, models.StatusActive)
	assert.True(t, CanResolve(pothole, author))
	assert.True(t, CanResolve(pothole, neighbour))
	assert.False(t, CanResolve(pothole, guest))

	fire := newAlert("u1", models.CategoryFire, models.StatusActive)
	assert.True(t, CanResolve(fire, author))
	assert.False(t, CanResolve(fire, neighbour))
	assert.False(t, CanResolve(fire, nil))
}

func TestResolveRuleFor(t *testing.T) {
	assert.Equal(t, ResolveByCommunity, ResolveRuleFor(models.CategoryBrokenAsphalt))
	for _, c := range []models.Category{models.CategoryAccident, models.CategoryCrime, models.CategoryTraffic, models.CategoryFire, models.CategoryService} {
		assert.Equal(t, ResolveByAuthor, ResolveRuleFor(c))
	}
}
