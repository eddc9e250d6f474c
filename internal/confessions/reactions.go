package confessions

import "github.com/veilroom/backend/internal/models"

// applyReaction records userID's reaction on the confession, keeping the
// aggregate counters consistent with the per-user ledger.
//
// A user holds at most one reaction at a time. Any existing entry is removed
// and its counter decremented before the new one is applied, even when the
// requested kind matches the existing one: re-reacting replaces, it never
// toggles off.
func applyReaction(c *models.Confession, userID string, kind models.ReactionKind) error {
	if !kind.Valid() {
		return ErrInvalidReactionKind
	}

	for i, r := range c.UserReactions {
		if r.UserID == userID {
			c.Reactions.Add(r.Kind, -1)
			c.UserReactions = append(c.UserReactions[:i], c.UserReactions[i+1:]...)
			break
		}
	}

	c.Reactions.Add(kind, 1)
	c.UserReactions = append(c.UserReactions, models.UserReaction{UserID: userID, Kind: kind})
	return nil
}
