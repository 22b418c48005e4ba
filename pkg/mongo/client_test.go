package mongo

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/futamarket/market-backend/pkg/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequiresURI(t *testing.T) {
	_, err := New(context.Background(), config.MongoConfig{}, nil)
	assert.EqualError(t, err, "mongo uri is required")
}

func TestNilClientIsSafe(t *testing.T) {
	var c *Client
	assert.Error(t, c.Ping(context.Background()))
	assert.NoError(t, c.Close(context.Background()))
}

func TestNewAgainstServer(t *testing.T) {
	uri := os.Getenv("MARKET_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("MARKET_TEST_MONGO_URI is not set")
	}

	ctx := context.Background()
	client, err := New(ctx, config.MongoConfig{
		URI:            uri,
		Database:       "market_test_" + uuid.NewString()[:8],
		ConnectTimeout: 5 * time.Second,
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = client.db.Drop(ctx)
		_ = client.Close(ctx)
	})

	require.NoError(t, client.Ping(ctx))
	require.NoError(t, client.EnsureIndexes(ctx))
	assert.Equal(t, ProductsCollection, client.Collection(ProductsCollection).Name())
}
