package geocode

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shenikar/community_alerts/internal/config"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *atomic.Int32) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	s := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = cache.Close() })

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах

	cfg := &config.Config{
		NominatimURL:    srv.URL + "/",
		GeocodeRegion:   "Bahía Blanca, Argentina",
		GeocodeCacheTTL: time.Hour,
		GeocodeTimeout:  time.Second,
		UserAgent:       "community-alerts-test",
	}
	return NewClient(cfg, cache, logger), &calls
}

func TestSearch_AppendsRegionAndCaches(t *testing.T) {
	// Подготовка
	client, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "community-alerts-test", r.Header.Get("User-Agent"))
		assert.Equal(t, "Alsina 100, Bahía Blanca, Argentina", r.URL.Query().Get("q"))
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"lat":"-38.7183","lon":"-62.2663","display_name":"Alsina 100, Centro, Bahía Blanca"}]`))
	})
	ctx := context.Background()

	// Действие
	first, err := client.Search(ctx, "  Alsina 100 ")
	require.NoError(t, err)
	second, err := client.Search(ctx, "alsina 100")
	require.NoError(t, err)

	// Проверки
	assert.InDelta(t, -38.7183, first.Latitude, 1e-9)
	assert.InDelta(t, -62.2663, first.Longitude, 1e-9)
	assert.Equal(t, "Alsina 100, Centro, Bahía Blanca", first.Address)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), calls.Load())
}

func TestSearch_Errors(t *testing.T) {
	client, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("q") {
		case "Nowhere street, Bahía Blanca, Argentina":
			_, _ = w.Write([]byte(`[]`))
		case "Broken coords, Bahía Blanca, Argentina":
			_, _ = w.Write([]byte(`[{"lat":"north","lon":"-62.2"}]`))
		default:
			w.WriteHeader(http.StatusTooManyRequests)
		}
	})
	ctx := context.Background()

	_, err := client.Search(ctx, "Alem")
	assert.ErrorIs(t, err, ErrQueryTooShort)
	assert.Equal(t, int32(0), calls.Load())

	_, err = client.Search(ctx, "Nowhere street")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = client.Search(ctx, "Broken coords")
	assert.Error(t, err)

	_, err = client.Search(ctx, "Rate limited")
	assert.Error(t, err)
}

func TestReverse_FormatsAddress(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "road with number and suburb",
			body: `{"display_name":"x","address":{"road":"Estomba","house_number":"350","suburb":"Centro"}}`,
			want: "Estomba 350, Centro",
		},
		{
			name: "neighbourhood fallback",
			body: `{"display_name":"x","address":{"road":"Estomba","house_number":"350","neighbourhood":"Villa Mitre"}}`,
			want: "Estomba 350, Villa Mitre",
		},
		{
			name: "road without number",
			body: `{"display_name":"x","address":{"road":"Avenida Alem"}}`,
			want: "Avenida Alem",
		},
		{
			name: "display name fallback",
			body: `{"display_name":"Parque de Mayo, Bahía Blanca, Argentina","address":{}}`,
			want: "Parque de Mayo",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/reverse", r.URL.Path)
				assert.Equal(t, "18", r.URL.Query().Get("zoom"))
				_, _ = w.Write([]byte(tt.body))
			})

			place, err := client.Reverse(context.Background(), -38.71, -62.26)

			require.NoError(t, err)
			assert.Equal(t, tt.want, place.Address)
			assert.Equal(t, -38.71, place.Latitude)
		})
	}
}

func TestReverse_CachesResult(t *testing.T) {
	client, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"display_name":"x","address":{"road":"Chiclana","house_number":"1"}}`))
	})
	ctx := context.Background()

	_, err := client.Reverse(ctx, -38.7, -62.2)
	require.NoError(t, err)
	place, err := client.Reverse(ctx, -38.7, -62.2)
	require.NoError(t, err)

	assert.Equal(t, "Chiclana 1", place.Address)
	assert.Equal(t, int32(1), calls.Load())
}

func TestReverse_NotFound(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":"Unable to geocode"}`))
	})

	_, err := client.Reverse(context.Background(), 0, 0)

	assert.ErrorIs(t, err, ErrNotFound)
}
