package services

import (
	"context"
	"time"
	"unicode/utf8"

	"recipehub/internal/logging"
	"recipehub/internal/models"
	"recipehub/internal/store"
	"recipehub/internal/utils"
)

const maxReviewLength = 1000

// EngagementService handles ratings, recipe likes and view counts.
type EngagementService struct {
	store  store.Store
	notify Emitter
	now    func() time.Time
}

func NewEngagementService(st store.Store, notify Emitter) *EngagementService {
	return &EngagementService{store: st, notify: notify, now: time.Now}
}

// Rate records userID's rating of a recipe. A second rating by the same user
// overwrites the first.
func (s *EngagementService) Rate(ctx context.Context, recipeID, userID uint, value int, review string) (*RatingSummary, error) {
	if value < 1 || value > 5 {
		return nil, invalidf("rating must be between 1 and 5, got %d", value)
	}
	review = utils.SanitizeText(review)
	if utf8.RuneCountInString(review) > maxReviewLength {
		return nil, invalidf("review must be at most %d characters", maxReviewLength)
	}

	recipe, err := visibleRecipe(ctx, s.store, recipeID, userID)
	if err != nil {
		return nil, err
	}

	rating := &models.Rating{
		RecipeID: recipeID,
		UserID:   userID,
		Value:    value,
		Review:   review,
		RatedAt:  s.now(),
	}
	if err := s.store.UpsertRating(ctx, rating); err != nil {
		return nil, storeErr(err, "recipe")
	}

	ratings, err := s.store.ListRatings(ctx, recipeID)
	if err != nil {
		return nil, storeErr(err, "ratings")
	}

	s.notify.Emit(ctx, NotificationRequest{
		RecipientID: recipe.AuthorID,
		SenderID:    userID,
		Type:        models.NotificationTypeRating,
		RecipeID:    &recipe.ID,
		Subject:     recipe.Title,
	})

	return &RatingSummary{
		AverageRating: models.AverageRating(ratings),
		RatingsCount:  len(ratings),
		UserRating:    value,
	}, nil
}

// ToggleLike flips userID's like on a recipe. Only a transition to liked
// notifies the author.
func (s *EngagementService) ToggleLike(ctx context.Context, recipeID, userID uint) (*LikeResult, error) {
	recipe, err := visibleRecipe(ctx, s.store, recipeID, userID)
	if err != nil {
		return nil, err
	}

	t, err := s.store.ToggleRecipeLike(ctx, recipeID, userID)
	if err != nil {
		return nil, storeErr(err, "recipe")
	}

	if t.Liked {
		s.notify.Emit(ctx, NotificationRequest{
			RecipientID: recipe.AuthorID,
			SenderID:    userID,
			Type:        models.NotificationTypeLike,
			RecipeID:    &recipe.ID,
			Subject:     recipe.Title,
		})
	}
	return &LikeResult{IsLiked: t.Liked, LikesCount: t.Count}, nil
}

func (s *EngagementService) IncrementViews(ctx context.Context, recipeID uint) error {
	return storeErr(s.store.IncrementViews(ctx, recipeID), "recipe")
}

// RecordView counts a view by someone other than the author. Failures are
// logged only.
func (s *EngagementService) RecordView(ctx context.Context, recipe *models.Recipe, viewer uint) {
	if viewer != 0 && viewer == recipe.AuthorID {
		return
	}
	if err := s.IncrementViews(ctx, recipe.ID); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Uint("recipe_id", recipe.ID).Msg("view not counted")
		return
	}
	recipe.Views++
}
