package section

import (
	"context"
	"testing"
	"time"

	"github.com/futamarket/market-backend/pkg/db/dbtest"
	"github.com/futamarket/market-backend/pkg/db/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormRepositoryCreateAndListNewestFirst(t *testing.T) {
	db := dbtest.OpenSQLite(t)
	repo := NewGormRepository(db)
	ctx := context.Background()

	older, err := repo.Create(ctx, "Books")
	require.NoError(t, err)
	newer, err := repo.Create(ctx, "Phones")
	require.NoError(t, err)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, db.Model(&models.Section{}).Where("id = ?", older.ID).Update("created_at", base).Error)
	require.NoError(t, db.Model(&models.Section{}).Where("id = ?", newer.ID).Update("created_at", base.Add(time.Hour)).Error)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Phones", list[0].Title)
	assert.Equal(t, "Books", list[1].Title)

	_, err = uuid.Parse(list[0].ID)
	assert.NoError(t, err)
}

func TestGormRepositoryUpdate(t *testing.T) {
	repo := NewGormRepository(dbtest.OpenSQLite(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, "Books")
	require.NoError(t, err)

	updated, err := repo.Update(ctx, created.ID, "Textbooks")
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Textbooks", updated.Title)

	_, err = repo.Update(ctx, uuid.NewString(), "x")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = repo.Update(ctx, "not-an-id", "x")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGormRepositoryDeleteIsIdempotent(t *testing.T) {
	repo := NewGormRepository(dbtest.OpenSQLite(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, "Books")
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, created.ID))
	require.NoError(t, repo.Delete(ctx, created.ID))
	require.NoError(t, repo.Delete(ctx, "garbage"))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestGormRepositoryFindByIDs(t *testing.T) {
	repo := NewGormRepository(dbtest.OpenSQLite(t))
	ctx := context.Background()

	a, err := repo.Create(ctx, "A")
	require.NoError(t, err)
	b, err := repo.Create(ctx, "B")
	require.NoError(t, err)

	found, err := repo.FindByIDs(ctx, []string{a.ID, b.ID, uuid.NewString(), "bad"})
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "A", found[a.ID].Title)
	assert.Equal(t, "B", found[b.ID].Title)

	empty, err := repo.FindByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
