package repositories_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veilroom/backend/internal/models"
	"github.com/veilroom/backend/internal/repositories"
)

func insertConfession(t *testing.T, repo *repositories.MemoryConfessionRepository, text string) *models.Confession {
	t.Helper()
	c := &models.Confession{
		OwnerID:        "1",
		Text:           text,
		SecretCodeHash: "digest",
		Category:       models.CategoryGeneral,
	}
	require.NoError(t, repo.Insert(context.Background(), c))
	return c
}

func TestSaveDetectsStaleVersion(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewMemoryConfessionRepository()
	c := insertConfession(t, repo, "a confession under contention")

	// Two readers fetch the same version of the record.
	first, err := repo.GetByID(ctx, c.ID.Hex())
	require.NoError(t, err)
	second, err := repo.GetByID(ctx, c.ID.Hex())
	require.NoError(t, err)

	first.Reactions.Like++
	require.NoError(t, repo.Save(ctx, first))

	// The second writer lost the race; its version is stale.
	second.Reactions.Love++
	err = repo.Save(ctx, second)
	assert.ErrorIs(t, err, repositories.ErrVersionConflict)

	// A re-read picks up the winning write and can then save.
	fresh, err := repo.GetByID(ctx, c.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, 1, fresh.Reactions.Like)
	fresh.Reactions.Love++
	require.NoError(t, repo.Save(ctx, fresh))
}

func TestSaveUnknownConfession(t *testing.T) {
	repo := repositories.NewMemoryConfessionRepository()
	c := insertConfession(t, repo, "a confession that exists")

	ghost := *c
	ghost.ID = [12]byte{0xde, 0xad, 0xbe, 0xef}
	err := repo.Save(context.Background(), &ghost)
	assert.ErrorIs(t, err, repositories.ErrConfessionNotFound)
}

func TestGetByIDReturnsIndependentCopies(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewMemoryConfessionRepository()
	c := insertConfession(t, repo, "a confession nobody may mutate from outside")

	got, err := repo.GetByID(ctx, c.ID.Hex())
	require.NoError(t, err)
	got.Text = "scribbled over"
	got.UserReactions = append(got.UserReactions, models.UserReaction{UserID: "9", Kind: models.ReactionLike})

	stored, err := repo.GetByID(ctx, c.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "a confession nobody may mutate from outside", stored.Text)
	assert.Empty(t, stored.UserReactions)
}

func TestListVisibleSkipsDeleted(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewMemoryConfessionRepository()

	kept := insertConfession(t, repo, "a confession that stays")
	gone := insertConfession(t, repo, "a confession that goes")

	c, err := repo.GetByID(ctx, gone.ID.Hex())
	require.NoError(t, err)
	c.IsDeleted = true
	require.NoError(t, repo.Save(ctx, c))

	list, err := repo.ListVisible(ctx, "", repositories.SortNewest)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, kept.ID, list[0].ID)
}
