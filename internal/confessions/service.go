// Package confessions implements the confession lifecycle: creation,
// listing, secret-code-gated edit and delete, reactions, and report capture.
package confessions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/veilroom/backend/internal/models"
	"github.com/veilroom/backend/internal/repositories"
	"github.com/veilroom/backend/internal/secretcode"
)

// Text length bounds, counted in runes after trimming.
const (
	minTextLength = 10
	maxTextLength = 2000
)

// saveAttempts bounds the read-modify-write retry loop on version conflicts.
const saveAttempts = 3

// UserDirectory is the service's view of the account subsystem. The service
// never touches passwords or sessions itself.
type UserDirectory interface {
	UserExists(ctx context.Context, userID string) (bool, error)
	OwnerProjection(ctx context.Context, userID string) (*models.OwnerView, error)
	EnsureDisplayName(ctx context.Context, userID string) error
}

// Service orchestrates confession operations against the store and the
// user directory.
type Service struct {
	store repositories.ConfessionRepository
	users UserDirectory
}

// NewService creates a new Service
func NewService(store repositories.ConfessionRepository, users UserDirectory) *Service {
	return &Service{store: store, users: users}
}

// CreateInput carries the validated-on-entry fields for Create.
type CreateInput struct {
	Text       string
	SecretCode string
	Category   string
	Hashtags   []string
}

// UpdateInput carries the replacement fields for Update. CurrentSecretCode
// authorizes the edit; SecretCode becomes the confession's new code.
type UpdateInput struct {
	Text              string
	SecretCode        string
	Category          string
	Hashtags          []string
	CurrentSecretCode string
}

// Create validates and stores a new confession owned by ownerID. The secret
// code is hashed before anything is persisted; the returned view never
// carries it.
func (s *Service) Create(ctx context.Context, ownerID string, in CreateInput) (*models.ConfessionView, error) {
	text, err := normalizeText(in.Text)
	if err != nil {
		return nil, err
	}
	category, err := normalizeCategory(in.Category)
	if err != nil {
		return nil, err
	}

	exists, err := s.users.UserExists(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up owner: %w", err)
	}
	if !exists {
		return nil, ErrOwnerNotFound
	}
	if err := s.users.EnsureDisplayName(ctx, ownerID); err != nil {
		return nil, fmt.Errorf("failed to assign display name: %w", err)
	}

	hash, err := secretcode.Hash(in.SecretCode)
	if err != nil {
		if errors.Is(err, secretcode.ErrTooShort) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		return nil, err
	}

	confession := &models.Confession{
		OwnerID:        ownerID,
		Text:           text,
		SecretCodeHash: hash,
		Category:       category,
		Hashtags:       normalizeHashtags(in.Hashtags),
		UserReactions:  []models.UserReaction{},
	}

	if err := s.store.Insert(ctx, confession); err != nil {
		return nil, err
	}
	return s.toView(ctx, confession), nil
}

// GetPublic returns a single visible confession by ID
func (s *Service) GetPublic(ctx context.Context, id string) (*models.ConfessionView, error) {
	confession, err := s.fetchVisible(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.toView(ctx, confession), nil
}

// List returns visible confessions, optionally filtered by category and
// ordered by recency or trending score.
func (s *Service) List(ctx context.Context, category, sortBy string) ([]models.ConfessionView, error) {
	sortMode := repositories.SortNewest
	if sortBy == string(repositories.SortTrending) {
		sortMode = repositories.SortTrending
	}

	confessions, err := s.store.ListVisible(ctx, models.Category(category), sortMode)
	if err != nil {
		return nil, err
	}
	return s.toViews(ctx, confessions), nil
}

// ListMine returns the requester's own visible confessions, newest first
func (s *Service) ListMine(ctx context.Context, ownerID string) ([]models.ConfessionView, error) {
	confessions, err := s.store.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return s.toViews(ctx, confessions), nil
}

// Update replaces a confession's text, category, hashtags and secret code
// wholesale. The requester must be the owner (403 tier) and must present the
// current secret code (401 tier); ownership is checked first so a correct
// code never rescues a non-owner. Reaction state is untouched.
func (s *Service) Update(ctx context.Context, id, requesterID string, in UpdateInput) (*models.ConfessionView, error) {
	text, err := normalizeText(in.Text)
	if err != nil {
		return nil, err
	}
	category, err := normalizeCategory(in.Category)
	if err != nil {
		return nil, err
	}
	newHash, err := secretcode.Hash(in.SecretCode)
	if err != nil {
		if errors.Is(err, secretcode.ErrTooShort) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		return nil, err
	}

	var confession *models.Confession
	err = s.withRetry(ctx, func() error {
		c, err := s.fetchVisible(ctx, id)
		if err != nil {
			return err
		}
		if err := s.authorize(c, requesterID, in.CurrentSecretCode); err != nil {
			return err
		}

		c.Text = text
		c.Category = category
		c.Hashtags = normalizeHashtags(in.Hashtags)
		c.SecretCodeHash = newHash

		if err := s.store.Save(ctx, c); err != nil {
			return err
		}
		confession = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.toView(ctx, confession), nil
}

// Delete soft-deletes a confession after the same owner-then-secret-code
// checks as Update. A second delete finds the record already invisible and
// fails with ErrNotFound.
func (s *Service) Delete(ctx context.Context, id, requesterID, secret string) error {
	if utf8.RuneCountInString(secret) < secretcode.MinLength {
		return fmt.Errorf("%w: %v", ErrInvalidInput, secretcode.ErrTooShort)
	}

	return s.withRetry(ctx, func() error {
		c, err := s.fetchVisible(ctx, id)
		if err != nil {
			return err
		}
		if err := s.authorize(c, requesterID, secret); err != nil {
			return err
		}

		c.IsDeleted = true
		return s.store.Save(ctx, c)
	})
}

// React records the requester's reaction and returns the updated tallies.
// Reactions need only an authenticated identity, not the secret code.
// Reacting to a deleted confession fails with ErrNotFound.
func (s *Service) React(ctx context.Context, id, requesterID, kind string) (*models.ReactionCounts, error) {
	reaction := models.ReactionKind(kind)
	if !reaction.Valid() {
		return nil, ErrInvalidReactionKind
	}

	var counts models.ReactionCounts
	err := s.withRetry(ctx, func() error {
		c, err := s.fetchVisible(ctx, id)
		if err != nil {
			return err
		}
		if err := applyReaction(c, requesterID, reaction); err != nil {
			return err
		}
		if err := s.store.Save(ctx, c); err != nil {
			return err
		}
		counts = c.Reactions
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &counts, nil
}

// Report appends an abuse report to the confession. Reports are captured
// only; no moderation happens here.
func (s *Service) Report(ctx context.Context, id, reporterID, reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return fmt.Errorf("%w: report reason is required", ErrInvalidInput)
	}

	return s.withRetry(ctx, func() error {
		c, err := s.fetchVisible(ctx, id)
		if err != nil {
			return err
		}
		c.Reports = append(c.Reports, models.Report{UserID: reporterID, Reason: reason, CreatedAt: time.Now()})
		return s.store.Save(ctx, c)
	})
}

// fetchVisible loads a confession, treating soft-deleted records as absent
func (s *Service) fetchVisible(ctx context.Context, id string) (*models.Confession, error) {
	c, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrConfessionNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if c.IsDeleted {
		return nil, ErrNotFound
	}
	return c, nil
}

// authorize enforces the two credential tiers for mutation: ownership first,
// then the secret code. The order is fixed so the error reveals nothing a
// non-owner should not learn.
func (s *Service) authorize(c *models.Confession, requesterID, secret string) error {
	if c.OwnerID != requesterID {
		return ErrForbidden
	}
	ok, err := secretcode.Verify(secret, c.SecretCodeHash)
	if err != nil {
		return fmt.Errorf("failed to verify secret code: %w", err)
	}
	if !ok {
		return ErrWrongSecretCode
	}
	return nil
}

// withRetry runs a read-modify-write cycle, retrying a bounded number of
// times when another writer won the version race.
func (s *Service) withRetry(ctx context.Context, op func() error) error {
	var err error
	for attempt := 0; attempt < saveAttempts; attempt++ {
		if err = op(); !errors.Is(err, repositories.ErrVersionConflict) {
			return err
		}
	}
	return err
}

func (s *Service) toView(ctx context.Context, c *models.Confession) *models.ConfessionView {
	view := &models.ConfessionView{
		ID:        c.ID.Hex(),
		Text:      c.Text,
		Category:  c.Category,
		Hashtags:  c.Hashtags,
		Reactions: c.Reactions,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
	// Best effort: a confession stays listable even if its owner's
	// projection cannot be loaded.
	if owner, err := s.users.OwnerProjection(ctx, c.OwnerID); err == nil {
		view.Owner = owner
	}
	return view
}

func (s *Service) toViews(ctx context.Context, confessions []models.Confession) []models.ConfessionView {
	views := make([]models.ConfessionView, 0, len(confessions))
	owners := make(map[string]*models.OwnerView)
	for i := range confessions {
		c := &confessions[i]
		view := models.ConfessionView{
			ID:        c.ID.Hex(),
			Text:      c.Text,
			Category:  c.Category,
			Hashtags:  c.Hashtags,
			Reactions: c.Reactions,
			CreatedAt: c.CreatedAt,
			UpdatedAt: c.UpdatedAt,
		}
		owner, ok := owners[c.OwnerID]
		if !ok {
			if o, err := s.users.OwnerProjection(ctx, c.OwnerID); err == nil {
				owner = o
			}
			owners[c.OwnerID] = owner
		}
		view.Owner = owner
		views = append(views, view)
	}
	return views
}

func normalizeText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if n := utf8.RuneCountInString(text); n < minTextLength || n > maxTextLength {
		return "", fmt.Errorf("%w: text must be between %d and %d characters", ErrInvalidInput, minTextLength, maxTextLength)
	}
	return text, nil
}

func normalizeCategory(category string) (models.Category, error) {
	if category == "" {
		return models.CategoryGeneral, nil
	}
	c := models.Category(category)
	if !c.Valid() {
		return "", fmt.Errorf("%w: unknown category %q", ErrInvalidInput, category)
	}
	return c, nil
}

// normalizeHashtags trims and lower-cases tags, dropping empties. Order is
// preserved and duplicates are kept as supplied.
func normalizeHashtags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		out = append(out, t)
	}
	return out
}
