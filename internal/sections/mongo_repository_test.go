package section

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
	coll := client.Collection(pkgmongo.SectionsCollection)
	t.Cleanup(func() {
		_ = coll.Database().Drop(ctx)
		_ = client.Close(ctx)
	})
	return NewMongoRepository(coll)
}

func TestMongoRepositoryLifecycle(t *testing.T) {
	repo := openMongoRepo(t)
	ctx := context.Background()

	first, err := repo.Create(ctx, "Books")
	require.NoError(t, err)
	second, err := repo.Create(ctx, "Phones")
	require.NoError(t, err)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)

	updated, err := repo.Update(ctx, first.ID, "Novels")
	require.NoError(t, err)
	assert.Equal(t, "Novels", updated.Title)

	_, err = repo.Update(ctx, primitive.NewObjectID().Hex(), "x")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = repo.Update(ctx, "bad", "x")
	assert.ErrorIs(t, err, ErrNotFound)

	found, err := repo.FindByIDs(ctx, []string{first.ID, "bad"})
	require.NoError(t, err)
	assert.Len(t, found, 1)

	require.NoError(t, repo.Delete(ctx, first.ID))
	require.NoError(t, repo.Delete(ctx, first.ID))
	require.NoError(t, repo.Delete(ctx, "bad"))
}
