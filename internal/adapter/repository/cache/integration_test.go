//go:build integration

package cache

import (
	"context"
	"errors"
	"log"
	"os"
	"testing"
	"time"

	"github.com/Abdurahmanit/GroupProject/rental-listing-service/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/rental-listing-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/rental-listing-service/internal/platform/metrics"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testRedis *redis.Client

func TestMain(m *testing.M) {
	pool, err := dockertest.NewPool("")
	if err != nil {
		log.Fatalf("Could not construct pool: %s", err)
	}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "redis",
		Tag:        "7-alpine",
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		log.Fatalf("Could not start Redis resource: %s", err)
	}

	addr := resource.GetHostPort("6379/tcp")
	if err := pool.Retry(func() error {
		var errRetry error
		testRedis, errRetry = NewRedisClient(context.Background(), addr, "", 0, logger.NewNop())
		return errRetry
	}); err != nil {
		log.Fatalf("Could not connect to Redis: %s", err)
	}

	code := m.Run()

	_ = testRedis.Close()
	if err := pool.Purge(resource); err != nil {
		log.Fatalf("Could not purge Redis resource: %s", err)
	}
	os.Exit(code)
}

type countingGeocoder struct {
	calls int
	loc   *domain.Location
	err   error
}

func (g *countingGeocoder) Geocode(_ context.Context, _ string) (*domain.Location, error) {
	g.calls++
	return g.loc, g.err
}

func TestGeocodeCache_HitAfterMiss(t *testing.T) {
	ctx := context.Background()
	require.NoError(t, testRedis.FlushDB(ctx).Err())

	inner := &countingGeocoder{loc: &domain.Location{Country: "France", Admin: "Ile-de-France", City: "Paris"}}
	mm := metrics.NewMetricsManager("test")
	c := NewGeocodeCache(inner, testRedis, time.Minute, mm, logger.NewNop())

	first, err := c.Geocode(ctx, "Paris")
	require.NoError(t, err)
	second, err := c.Geocode(ctx, " paris ")
	require.NoError(t, err)

	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, first, second)
	assert.Equal(t, float64(1), testutil.ToFloat64(mm.GeocodeCacheHits.WithLabelValues("miss")))
	assert.Equal(t, float64(1), testutil.ToFloat64(mm.GeocodeCacheHits.WithLabelValues("hit")))
}

func TestGeocodeCache_ErrorsAreNotCached(t *testing.T) {
	ctx := context.Background()
	require.NoError(t, testRedis.FlushDB(ctx).Err())

	inner := &countingGeocoder{err: errors.New("quota exceeded")}
	c := NewGeocodeCache(inner, testRedis, time.Minute, nil, logger.NewNop())

	for i := 0; i < 2; i++ {
		_, err := c.Geocode(ctx, "Lyon")
		assert.Error(t, err)
	}
	assert.Equal(t, 2, inner.calls)
}
