package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Abdurahmanit/GroupProject/rental-listing-service/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/rental-listing-service/internal/listing/usecase"
	"github.com/Abdurahmanit/GroupProject/rental-listing-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/rental-listing-service/internal/platform/metrics"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const geocodeKeyPrefix = "geocode:"

// NewRedisClient connects to Redis and pings it before returning.
func NewRedisClient(ctx context.Context, addr, password string, db int, log *logger.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Error("Failed to connect to Redis", zap.String("address", addr), zap.Error(err))
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", addr, err)
	}
	log.Info("Successfully connected to Redis", zap.String("address", addr))
	return client, nil
}

// GeocodeCache memoizes a Geocoder in Redis. Redis failures degrade to calling the
// wrapped geocoder; provider errors are never cached.
type GeocodeCache struct {
	next    usecase.Geocoder
	client  *redis.Client
	ttl     time.Duration
	metrics *metrics.MetricsManager
	logger  *logger.Logger
}

func NewGeocodeCache(next usecase.Geocoder, client *redis.Client, ttl time.Duration, metricsManager *metrics.MetricsManager, log *logger.Logger) *GeocodeCache {
	return &GeocodeCache{
		next:    next,
		client:  client,
		ttl:     ttl,
		metrics: metricsManager,
		logger:  log.Named("GeocodeCache"),
	}
}

func (c *GeocodeCache) Geocode(ctx context.Context, address string) (*domain.Location, error) {
	key := geocodeKey(address)

	data, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var loc domain.Location
		jsonErr := json.Unmarshal(data, &loc)
		if jsonErr == nil {
			c.metrics.ObserveGeocodeCache("hit")
			return &loc, nil
		}
		c.logger.Warn("Discarding unreadable geocode cache entry", zap.String("key", key), zap.Error(jsonErr))
		c.metrics.ObserveGeocodeCache("error")
	case errors.Is(err, redis.Nil):
		c.metrics.ObserveGeocodeCache("miss")
	default:
		c.logger.Warn("Redis Get failed, geocoding without cache", zap.String("key", key), zap.Error(err))
		c.metrics.ObserveGeocodeCache("error")
	}

	loc, err := c.next.Geocode(ctx, address)
	if err != nil {
		return nil, err
	}

	encoded, err := json.Marshal(loc)
	if err != nil {
		return loc, nil
	}
	if err := c.client.Set(ctx, key, encoded, c.ttl).Err(); err != nil {
		c.logger.Warn("Redis Set failed for geocode result", zap.String("key", key), zap.Error(err))
	}
	return loc, nil
}

// geocodeKey folds case and whitespace so trivially different spellings share an entry.
func geocodeKey(address string) string {
	return geocodeKeyPrefix + strings.Join(strings.Fields(strings.ToLower(address)), " ")
}
