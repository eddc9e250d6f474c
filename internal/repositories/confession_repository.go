package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/veilroom/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrConfessionNotFound is returned when no confession matches the given ID.
var ErrConfessionNotFound = errors.New("confession not found")

// ErrVersionConflict is returned by Save when the record was modified since
// it was read. Callers re-fetch and retry.
var ErrVersionConflict = errors.New("confession was modified concurrently")

// SortMode selects the ordering of ListVisible results.
type SortMode string

const (
	SortNewest   SortMode = "newest"
	SortTrending SortMode = "trending"
)

// ConfessionRepository defines the interface for confession data operations.
// Implementations return independent copies; mutating a returned record has
// no effect until it is passed back to Save.
type ConfessionRepository interface {
	Insert(ctx context.Context, confession *models.Confession) error
	GetByID(ctx context.Context, id string) (*models.Confession, error)
	ListVisible(ctx context.Context, category models.Category, sort SortMode) ([]models.Confession, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Confession, error)
	Save(ctx context.Context, confession *models.Confession) error
}

// MongoConfessionRepository implements ConfessionRepository for MongoDB
type MongoConfessionRepository struct {
	collection *mongo.Collection
}

// NewMongoConfessionRepository creates a new MongoConfessionRepository
func NewMongoConfessionRepository(db *mongo.Database) *MongoConfessionRepository {
	return &MongoConfessionRepository{collection: db.Collection("confessions")}
}

// Insert creates a new confession document
func (r *MongoConfessionRepository) Insert(ctx context.Context, confession *models.Confession) error {
	confession.ID = primitive.NewObjectID()
	confession.Version = 0
	confession.CreatedAt = time.Now()
	confession.UpdatedAt = confession.CreatedAt
	if _, err := r.collection.InsertOne(ctx, confession); err != nil {
		return fmt.Errorf("failed to insert confession: %w", err)
	}
	return nil
}

// GetByID retrieves a confession by ID, deleted or not
func (r *MongoConfessionRepository) GetByID(ctx context.Context, id string) (*models.Confession, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		// A malformed ID can never match a record; treat it as absent
		// rather than leaking the ID format to callers.
		return nil, ErrConfessionNotFound
	}

	var confession models.Confession
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&confession)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrConfessionNotFound
		}
		return nil, err
	}
	return &confession, nil
}

// ListVisible retrieves non-deleted confessions, optionally restricted to a
// category, ordered by the given sort mode.
func (r *MongoConfessionRepository) ListVisible(ctx context.Context, category models.Category, sort SortMode) ([]models.Confession, error) {
	query := bson.M{"is_deleted": false}
	if category != "" && category != models.CategoryAll {
		query["category"] = category
	}

	order := bson.D{{Key: "created_at", Value: -1}}
	if sort == SortTrending {
		order = bson.D{
			{Key: "reactions.like", Value: -1},
			{Key: "reactions.love", Value: -1},
			{Key: "created_at", Value: -1},
		}
	}

	return r.find(ctx, query, order)
}

// ListByOwner retrieves a user's own non-deleted confessions, newest first
func (r *MongoConfessionRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Confession, error) {
	query := bson.M{"owner_id": ownerID, "is_deleted": false}
	return r.find(ctx, query, bson.D{{Key: "created_at", Value: -1}})
}

func (r *MongoConfessionRepository) find(ctx context.Context, query bson.M, order bson.D) ([]models.Confession, error) {
	cursor, err := r.collection.Find(ctx, query, options.Find().SetSort(order))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var confessions []models.Confession
	if err = cursor.All(ctx, &confessions); err != nil {
		return nil, err
	}
	return confessions, nil
}

// Save replaces the stored record with the given one. The write only lands
// if the stored version still matches the version the record was read at,
// which keeps concurrent read-modify-write cycles from losing updates.
func (r *MongoConfessionRepository) Save(ctx context.Context, confession *models.Confession) error {
	confession.UpdatedAt = time.Now()

	filter := bson.M{"_id": confession.ID, "version": confession.Version}
	update := bson.M{
		"$set": bson.M{
			"text":           confession.Text,
			"secret_code":    confession.SecretCodeHash,
			"category":       confession.Category,
			"hashtags":       confession.Hashtags,
			"reactions":      confession.Reactions,
			"user_reactions": confession.UserReactions,
			"reports":        confession.Reports,
			"is_deleted":     confession.IsDeleted,
			"updated_at":     confession.UpdatedAt,
			"version":        confession.Version + 1,
		},
	}

	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to save confession: %w", err)
	}
	if res.MatchedCount == 0 {
		count, err := r.collection.CountDocuments(ctx, bson.M{"_id": confession.ID})
		if err != nil {
			return fmt.Errorf("failed to save confession: %w", err)
		}
		if count == 0 {
			return ErrConfessionNotFound
		}
		return ErrVersionConflict
	}

	confession.Version++
	return nil
}
