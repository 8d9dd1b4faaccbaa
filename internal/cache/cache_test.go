package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type point struct {
	X int `json:"x"`
}

func TestNoop(t *testing.T) {
	ctx := context.Background()
	var c Cache = Noop{}

	require.NoError(t, SetJSON(ctx, c, "k", point{X: 1}, time.Minute))

	var p point
	assert.ErrorIs(t, GetJSON(ctx, c, "k", &p), ErrMiss)
	assert.NoError(t, c.Close())
}

func TestRedisCache(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}

	ctx := context.Background()
	c, err := NewRedisCache(ctx, url, "vivelaso-test:")
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, SetJSON(ctx, c, "point", point{X: 7}, time.Minute))

	var p point
	require.NoError(t, GetJSON(ctx, c, "point", &p))
	assert.Equal(t, 7, p.X)

	_, err = c.Get(ctx, "absent")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestNewRedisCacheBadURL(t *testing.T) {
	_, err := NewRedisCache(context.Background(), "not a url", "")
	assert.ErrorContains(t, err, "invalid redis url")
}
