package product

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/futamarket/market-backend/pkg/config"
	pkgmongo "github.com/futamarket/market-backend/pkg/mongo"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func openMongoRepo(t *testing.T) *MongoRepository {
	t.Helper()
	uri := os.Getenv("MARKET_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("MARKET_TEST_MONGO_URI is not set")
	}
	ctx := context.Background()
	client, err := pkgmongo.New(ctx, config.MongoConfig{
		URI:            uri,
		Database:       "market_test_" + uuid.NewString()[:8],
		ConnectTimeout: 5 * time.Second,
	}, nil)
	require.NoError(t, err)
	coll := client.Collection(pkgmongo.ProductsCollection)
	t.Cleanup(func() {
		_ = coll.Database().Drop(ctx)
		_ = client.Close(ctx)
	})
	return NewMongoRepository(coll)
}

func TestMongoRepositoryLifecycle(t *testing.T) {
	repo := openMongoRepo(t)
	ctx := context.Background()

	sectionID := primitive.NewObjectID().Hex()
	created, err := repo.Create(ctx, Fields{Title: strPtr("Fan"), Available: true, Section: &sectionID},
		[]string{"https://cdn/a.png", "https://cdn/b.png"}, nil)
	require.NoError(t, err)

	got, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://cdn/a.png", "https://cdn/b.png"}, got.Images)
	assert.Equal(t, sectionID, *got.Section)

	updated, err := repo.Update(ctx, created.ID, Fields{Title: strPtr("Desk fan")}, MediaUpdate{})
	require.NoError(t, err)
	assert.Equal(t, got.Images, updated.Images)
	assert.Nil(t, updated.Section)
	assert.False(t, updated.Available)

	_, err = repo.Update(ctx, primitive.NewObjectID().Hex(), Fields{}, MediaUpdate{})
	assert.ErrorIs(t, err, ErrNotFound)
	var invalid *InvalidIDError
	_, err = repo.Update(ctx, "xyz", Fields{}, MediaUpdate{})
	assert.ErrorAs(t, err, &invalid)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, repo.Delete(ctx, created.ID))
	require.NoError(t, repo.Delete(ctx, created.ID))
	_, err = repo.Get(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
