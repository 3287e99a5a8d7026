// Package geocode - клиент Nominatim с кэшем результатов в Redis
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shenikar/community_alerts/internal/config"
	"github.com/shenikar/community_alerts/internal/models"
	"github.com/sirupsen/logrus"
)

// MinQueryLength - более короткие запросы не отправляются в Nominatim
const MinQueryLength = 5

var (
	// ErrQueryTooShort - поисковый запрос короче MinQueryLength
	ErrQueryTooShort = errors.New("geocode query is too short")
	// ErrNotFound - Nominatim ничего не нашел
	ErrNotFound = errors.New("place not found")
)

type Client struct {
	baseURL    string
	region     string
	userAgent  string
	ttl        time.Duration
	httpClient *http.Client
	cache      *redis.Client
	logger     *logrus.Logger
}

// NewClient создает клиента. cache может быть nil, тогда результаты не кэшируются.
func NewClient(cfg *config.Config, cache *redis.Client, logger *logrus.Logger) *Client {
	return &Client{
		baseURL:   strings.TrimRight(cfg.NominatimURL, "/"),
		region:    cfg.GeocodeRegion,
		userAgent: cfg.UserAgent,
		ttl:       cfg.GeocodeCacheTTL,
		httpClient: &http.Client{
			Timeout: cfg.GeocodeTimeout,
		},
		cache:  cache,
		logger: logger,
	}
}

type searchResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

type reverseResult struct {
	DisplayName string `json:"display_name"`
	Address     *struct {
		Road          string `json:"road"`
		HouseNumber   string `json:"house_number"`
		Suburb        string `json:"suburb"`
		Neighbourhood string `json:"neighbourhood"`
	} `json:"address"`
}

// Search ищет адрес в пределах региона и возвращает первую найденную точку
func (c *Client) Search(ctx context.Context, query string) (*models.Place, error) {
	query = strings.TrimSpace(query)
	if len([]rune(query)) < MinQueryLength {
		return nil, ErrQueryTooShort
	}

	key := "geocode:search:" + strings.ToLower(query)
	if place := c.fromCache(ctx, key); place != nil {
		return place, nil
	}

	q := query
	if c.region != "" {
		q = query + ", " + c.region
	}
	params := url.Values{}
	params.Set("format", "json")
	params.Set("q", q)
	params.Set("limit", "1")

	var results []searchResult
	if err := c.get(ctx, "/search", params, &results); err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, ErrNotFound
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid latitude %q: %w", results[0].Lat, err)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid longitude %q: %w", results[0].Lon, err)
	}

	place := &models.Place{Latitude: lat, Longitude: lon, Address: results[0].DisplayName}
	c.toCache(ctx, key, place)
	return place, nil
}

// Reverse превращает координаты в короткий адрес вида "улица номер, район"
func (c *Client) Reverse(ctx context.Context, lat, lon float64) (*models.Place, error) {
	key := fmt.Sprintf("geocode:reverse:%.5f:%.5f", lat, lon)
	if place := c.fromCache(ctx, key); place != nil {
		return place, nil
	}

	params := url.Values{}
	params.Set("format", "json")
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	params.Set("zoom", "18")
	params.Set("addressdetails", "1")

	var result reverseResult
	if err := c.get(ctx, "/reverse", params, &result); err != nil {
		return nil, err
	}
	if result.Address == nil {
		return nil, ErrNotFound
	}

	place := &models.Place{Latitude: lat, Longitude: lon, Address: formatAddress(result)}
	c.toCache(ctx, key, place)
	return place, nil
}

func formatAddress(r reverseResult) string {
	street := r.Address.Road
	house := r.Address.HouseNumber
	neighbourhood := r.Address.Suburb
	if neighbourhood == "" {
		neighbourhood = r.Address.Neighbourhood
	}

	formatted := strings.TrimSpace(street + " " + house)
	if neighbourhood != "" {
		if formatted != "" {
			formatted += ", "
		}
		formatted += neighbourhood
	}
	if formatted != "" {
		return formatted
	}
	first, _, _ := strings.Cut(r.DisplayName, ",")
	return strings.TrimSpace(first)
}

func (c *Client) get(ctx context.Context, path string, params url.Values, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to build geocode request: %w", err)
	}
	// Nominatim требует идентифицирующий User-Agent
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("geocode request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("geocode request failed with status code %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("failed to decode geocode response: %w", err)
	}
	return nil
}

// fromCache возвращает nil при промахе. Ошибки кэша не мешают запросу.
func (c *Client) fromCache(ctx context.Context, key string) *models.Place {
	if c.cache == nil {
		return nil
	}
	val, err := c.cache.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.WithError(err).WithField("key", key).Warn("Failed to get place from cache")
		}
		return nil
	}
	place := &models.Place{}
	if err := json.Unmarshal(val, place); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("Failed to unmarshal cached place")
		return nil
	}
	return place
}

func (c *Client) toCache(ctx context.Context, key string, place *models.Place) {
	if c.cache == nil {
		return
	}
	val, err := json.Marshal(place)
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, key, val, c.ttl).Err(); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("Failed to set place in cache")
	}
}
