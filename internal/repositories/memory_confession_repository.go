package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/veilroom/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryConfessionRepository is an in-memory ConfessionRepository. It backs
// the service tests and honors the same contract as the Mongo
// implementation: copies at the boundary and a version check on Save.
type MemoryConfessionRepository struct {
	mu          sync.Mutex
	confessions map[string]*models.Confession
	order       []string // IDs in insertion order, for stable sorting
}

// NewMemoryConfessionRepository creates an empty MemoryConfessionRepository
func NewMemoryConfessionRepository() *MemoryConfessionRepository {
	return &MemoryConfessionRepository{confessions: make(map[string]*models.Confession)}
}

// Insert stores a new confession and assigns its identity fields
func (r *MemoryConfessionRepository) Insert(_ context.Context, confession *models.Confession) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	confession.ID = primitive.NewObjectID()
	confession.Version = 0
	confession.CreatedAt = time.Now()
	confession.UpdatedAt = confession.CreatedAt

	id := confession.ID.Hex()
	r.confessions[id] = cloneConfession(confession)
	r.order = append(r.order, id)
	return nil
}

// GetByID returns a copy of the confession with the given ID
func (r *MemoryConfessionRepository) GetByID(_ context.Context, id string) (*models.Confession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.confessions[id]
	if !ok {
		return nil, ErrConfessionNotFound
	}
	return cloneConfession(c), nil
}

// ListVisible returns non-deleted confessions filtered and sorted like the
// Mongo implementation. Ties beyond all sort keys keep insertion order.
func (r *MemoryConfessionRepository) ListVisible(_ context.Context, category models.Category, sortMode SortMode) ([]models.Confession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.Confession
	for _, id := range r.order {
		c := r.confessions[id]
		if c.IsDeleted {
			continue
		}
		if category != "" && category != models.CategoryAll && c.Category != category {
			continue
		}
		out = append(out, *cloneConfession(c))
	}

	if sortMode == SortTrending {
		sort.SliceStable(out, func(i, j int) bool {
			if out[i].Reactions.Like != out[j].Reactions.Like {
				return out[i].Reactions.Like > out[j].Reactions.Like
			}
			if out[i].Reactions.Love != out[j].Reactions.Love {
				return out[i].Reactions.Love > out[j].Reactions.Love
			}
			return out[i].CreatedAt.After(out[j].CreatedAt)
		})
	} else {
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		})
	}
	return out, nil
}

// ListByOwner returns a user's non-deleted confessions, newest first
func (r *MemoryConfessionRepository) ListByOwner(_ context.Context, ownerID string) ([]models.Confession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.Confession
	for _, id := range r.order {
		c := r.confessions[id]
		if c.IsDeleted || c.OwnerID != ownerID {
			continue
		}
		out = append(out, *cloneConfession(c))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Save replaces the stored record if its version still matches
func (r *MemoryConfessionRepository) Save(_ context.Context, confession *models.Confession) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := confession.ID.Hex()
	stored, ok := r.confessions[id]
	if !ok {
		return ErrConfessionNotFound
	}
	if stored.Version != confession.Version {
		return ErrVersionConflict
	}

	confession.UpdatedAt = time.Now()
	confession.Version++
	r.confessions[id] = cloneConfession(confession)
	return nil
}

func cloneConfession(c *models.Confession) *models.Confession {
	out := *c
	out.Hashtags = append([]string(nil), c.Hashtags...)
	out.UserReactions = append([]models.UserReaction(nil), c.UserReactions...)
	out.Reports = append([]models.Report(nil), c.Reports...)
	return &out
}
