package confessions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veilroom/backend/internal/models"
)

func TestApplyReactionRejectsUnknownKind(t *testing.T) {
	c := &models.Confession{}
	err := applyReaction(c, "user-1", models.ReactionKind("angry"))
	assert.ErrorIs(t, err, ErrInvalidReactionKind)
	assert.Empty(t, c.UserReactions)
	assert.Zero(t, c.Reactions.Total())
}

func TestApplyReactionFirstReaction(t *testing.T) {
	c := &models.Confession{}
	require.NoError(t, applyReaction(c, "user-1", models.ReactionLike))

	assert.Equal(t, models.ReactionCounts{Like: 1}, c.Reactions)
	require.Len(t, c.UserReactions, 1)
	assert.Equal(t, models.UserReaction{UserID: "user-1", Kind: models.ReactionLike}, c.UserReactions[0])
}

func TestApplyReactionReplacesDifferentKind(t *testing.T) {
	c := &models.Confession{}
	require.NoError(t, applyReaction(c, "user-1", models.ReactionLike))
	require.NoError(t, applyReaction(c, "user-1", models.ReactionLove))

	assert.Equal(t, models.ReactionCounts{Like: 0, Love: 1, Laugh: 0}, c.Reactions)
	require.Len(t, c.UserReactions, 1)
	assert.Equal(t, models.ReactionLove, c.UserReactions[0].Kind)
}

func TestApplyReactionSameKindReappliesInsteadOfToggling(t *testing.T) {
	c := &models.Confession{}
	require.NoError(t, applyReaction(c, "user-1", models.ReactionLaugh))
	require.NoError(t, applyReaction(c, "user-1", models.ReactionLaugh))

	// Re-reacting with the held kind replaces the entry; it never removes it.
	assert.Equal(t, models.ReactionCounts{Laugh: 1}, c.Reactions)
	require.Len(t, c.UserReactions, 1)
}

func TestApplyReactionInvariants(t *testing.T) {
	c := &models.Confession{}
	sequence := []struct {
		user string
		kind models.ReactionKind
	}{
		{"a", models.ReactionLike},
		{"b", models.ReactionLike},
		{"c", models.ReactionLove},
		{"a", models.ReactionLaugh},
		{"b", models.ReactionLike},
		{"c", models.ReactionLike},
		{"a", models.ReactionLove},
	}

	for _, step := range sequence {
		require.NoError(t, applyReaction(c, step.user, step.kind))

		assert.Equal(t, len(c.UserReactions), c.Reactions.Total(),
			"counter sum must match ledger size")
		assert.GreaterOrEqual(t, c.Reactions.Like, 0)
		assert.GreaterOrEqual(t, c.Reactions.Love, 0)
		assert.GreaterOrEqual(t, c.Reactions.Laugh, 0)

		seen := map[string]bool{}
		for _, r := range c.UserReactions {
			assert.False(t, seen[r.UserID], "ledger holds duplicate entry for %s", r.UserID)
			seen[r.UserID] = true
		}
	}

	assert.Equal(t, models.ReactionCounts{Like: 2, Love: 1, Laugh: 0}, c.Reactions)
}
