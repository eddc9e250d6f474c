package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Category is the closed set of confession categories.
type Category string

const (
	CategoryGeneral Category = "General"
	CategoryCrush   Category = "Crush"
	CategoryStudy   Category = "Study"
	CategoryFunny   Category = "Funny"
	CategoryRant    Category = "Rant"

	// CategoryAll is a filter sentinel, never stored on a confession.
	CategoryAll Category = "All"
)

// Valid reports whether c is a storable category.
func (c Category) Valid() bool {
	switch c {
	case CategoryGeneral, CategoryCrush, CategoryStudy, CategoryFunny, CategoryRant:
		return true
	}
	return false
}

// ReactionKind is the closed set of reactions a user may hold on a confession.
type ReactionKind string

const (
	ReactionLike  ReactionKind = "like"
	ReactionLove  ReactionKind = "love"
	ReactionLaugh ReactionKind = "laugh"
)

// Valid reports whether k is a known reaction kind.
func (k ReactionKind) Valid() bool {
	switch k {
	case ReactionLike, ReactionLove, ReactionLaugh:
		return true
	}
	return false
}

// ReactionCounts holds the aggregate tally per reaction kind.
type ReactionCounts struct {
	Like  int `json:"like" bson:"like"`
	Love  int `json:"love" bson:"love"`
	Laugh int `json:"laugh" bson:"laugh"`
}

// Add adjusts the counter for the given kind by delta.
func (rc *ReactionCounts) Add(kind ReactionKind, delta int) {
	switch kind {
	case ReactionLike:
		rc.Like += delta
	case ReactionLove:
		rc.Love += delta
	case ReactionLaugh:
		rc.Laugh += delta
	}
}

// Total is the sum of all counters. It must always equal the number of
// ledger entries on the confession.
func (rc ReactionCounts) Total() int {
	return rc.Like + rc.Love + rc.Laugh
}

// UserReaction is one ledger entry: which reaction a user currently holds.
// A confession's ledger carries at most one entry per user.
type UserReaction struct {
	UserID string       `json:"user_id" bson:"user_id"`
	Kind   ReactionKind `json:"reaction_type" bson:"reaction_type"`
}

// Report is an abuse report filed against a confession. Reports are
// append-only; nothing in this service mutates or removes them.
type Report struct {
	UserID    string    `json:"-" bson:"user_id"`
	Reason    string    `json:"reason" bson:"reason"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// Confession is an anonymous post stored in MongoDB. The secret code hash
// gates edit/delete and is never serialized to clients. Version backs the
// optimistic per-record concurrency check in the repository.
type Confession struct {
	ID             primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	OwnerID        string             `json:"-" bson:"owner_id"`
	Text           string             `json:"text" bson:"text"`
	SecretCodeHash string             `json:"-" bson:"secret_code"`
	Category       Category           `json:"category" bson:"category"`
	Hashtags       []string           `json:"hashtags" bson:"hashtags"`
	Reactions      ReactionCounts     `json:"reactions" bson:"reactions"`
	UserReactions  []UserReaction     `json:"-" bson:"user_reactions"`
	Reports        []Report           `json:"-" bson:"reports"`
	IsDeleted      bool               `json:"-" bson:"is_deleted"`
	Version        uint64             `json:"-" bson:"version"`
	CreatedAt      time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at" bson:"updated_at"`
}

// ReactionFor returns the ledger entry held by userID, if any.
func (c *Confession) ReactionFor(userID string) (UserReaction, bool) {
	for _, r := range c.UserReactions {
		if r.UserID == userID {
			return r, true
		}
	}
	return UserReaction{}, false
}

// OwnerView is the minimal public projection of a confession's author.
type OwnerView struct {
	DisplayName string `json:"displayName"`
	Avatar      string `json:"avatar,omitempty"`
}

// ConfessionView is the client-facing shape of a confession. It never
// carries the secret code hash, the reaction ledger, or the report list.
type ConfessionView struct {
	ID        string         `json:"id"`
	Text      string         `json:"text"`
	Category  Category       `json:"category"`
	Hashtags  []string       `json:"hashtags"`
	Reactions ReactionCounts `json:"reactions"`
	Owner     *OwnerView     `json:"user,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// CreateConfessionRequest defines the request body for posting a confession
type CreateConfessionRequest struct {
	Text       string   `json:"text" validate:"required,min=10,max=2000"`
	SecretCode string   `json:"secretCode" validate:"required,min=4"`
	Category   string   `json:"category" validate:"omitempty,oneof=General Crush Study Funny Rant"`
	Hashtags   []string `json:"hashtags" validate:"omitempty,dive,max=64"`
}

// UpdateConfessionRequest defines the request body for editing a confession.
// CurrentSecretCode authorizes the edit; SecretCode becomes the new code.
type UpdateConfessionRequest struct {
	Text              string   `json:"text" validate:"required,min=10,max=2000"`
	SecretCode        string   `json:"secretCode" validate:"required,min=4"`
	Category          string   `json:"category" validate:"omitempty,oneof=General Crush Study Funny Rant"`
	Hashtags          []string `json:"hashtags" validate:"omitempty,dive,max=64"`
	CurrentSecretCode string   `json:"currentSecretCode" validate:"required,min=4"`
}

// DeleteConfessionRequest defines the request body for deleting a confession
type DeleteConfessionRequest struct {
	SecretCode string `json:"secretCode" validate:"required,min=4"`
}

// ReactRequest defines the request body for reacting to a confession
type ReactRequest struct {
	ReactionType string `json:"reactionType" validate:"required,oneof=like love laugh"`
}

// ReportConfessionRequest defines the request body for reporting a confession
type ReportConfessionRequest struct {
	Reason string `json:"reason" validate:"required,min=3,max=500"`
}
