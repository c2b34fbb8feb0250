package services

import (
	"context"
	"fmt"

	"recipehub/internal/logging"
	"recipehub/internal/models"
	"recipehub/internal/store"
)

// SocialService maintains the follow graph and favorites.
//
// A follow touches two user rows. Each write is a conditional update, so
// concurrent duplicates collapse; if the second write fails the first is
// undone, and a retry after a crash between the two repairs the missing
// half before reporting the conflict.
type SocialService struct {
	store  store.Store
	notify Emitter
}

func NewSocialService(st store.Store, notify Emitter) *SocialService {
	return &SocialService{store: st, notify: notify}
}

func (s *SocialService) Follow(ctx context.Context, userID, targetID uint) error {
	if userID == targetID {
		return invalidf("users cannot follow themselves")
	}
	if _, err := s.store.GetUser(ctx, targetID); err != nil {
		return storeErr(err, "user")
	}

	added, err := s.store.AddFollowing(ctx, userID, targetID)
	if err != nil {
		return storeErr(err, "user")
	}
	if !added {
		if repaired, err := s.store.AddFollower(ctx, targetID, userID); err == nil && repaired {
			logging.Ctx(ctx).Warn().Uint("user_id", userID).Uint("target_id", targetID).Msg("repaired half-applied follow")
		}
		return conflictf("already following user %d", targetID)
	}

	if _, err := s.store.AddFollower(ctx, targetID, userID); err != nil {
		if _, cerr := s.store.RemoveFollowing(ctx, userID, targetID); cerr != nil {
			logging.Ctx(ctx).Error().Err(cerr).Uint("user_id", userID).Uint("target_id", targetID).Msg("follow compensation failed")
		}
		return storeErr(err, "user")
	}

	s.notify.Emit(ctx, NotificationRequest{
		RecipientID: targetID,
		SenderID:    userID,
		Type:        models.NotificationTypeFollow,
	})
	return nil
}

func (s *SocialService) Unfollow(ctx context.Context, userID, targetID uint) error {
	if userID == targetID {
		return invalidf("users cannot unfollow themselves")
	}
	if _, err := s.store.GetUser(ctx, targetID); err != nil {
		return storeErr(err, "user")
	}

	removed, err := s.store.RemoveFollowing(ctx, userID, targetID)
	if err != nil {
		return storeErr(err, "user")
	}
	if !removed {
		if repaired, err := s.store.RemoveFollower(ctx, targetID, userID); err == nil && repaired {
			logging.Ctx(ctx).Warn().Uint("user_id", userID).Uint("target_id", targetID).Msg("repaired half-applied unfollow")
		}
		return conflictf("not following user %d", targetID)
	}

	if _, err := s.store.RemoveFollower(ctx, targetID, userID); err != nil {
		if _, cerr := s.store.AddFollowing(ctx, userID, targetID); cerr != nil {
			logging.Ctx(ctx).Error().Err(cerr).Uint("user_id", userID).Uint("target_id", targetID).Msg("unfollow compensation failed")
		}
		return storeErr(err, "user")
	}
	return nil
}

func (s *SocialService) AddFavorite(ctx context.Context, userID, recipeID uint) error {
	if _, err := visibleRecipe(ctx, s.store, recipeID, userID); err != nil {
		return err
	}
	added, err := s.store.AddFavorite(ctx, userID, recipeID)
	if err != nil {
		return storeErr(err, "user")
	}
	if !added {
		return conflictf("recipe %d is already a favorite", recipeID)
	}
	return nil
}

func (s *SocialService) RemoveFavorite(ctx context.Context, userID, recipeID uint) error {
	removed, err := s.store.RemoveFavorite(ctx, userID, recipeID)
	if err != nil {
		return storeErr(err, "user")
	}
	if !removed {
		return conflictf("recipe %d is not a favorite", recipeID)
	}
	return nil
}

// pageOfIDs returns the ids on page, most recently added first.
func pageOfIDs(ids []uint, page Page) []uint {
	n := len(ids)
	start := page.Offset()
	if start >= n {
		return nil
	}
	end := start + page.Limit
	if end > n {
		end = n
	}
	out := make([]uint, 0, end-start)
	for i := start; i < end; i++ {
		out = append(out, ids[n-1-i])
	}
	return out
}

func (s *SocialService) userPage(ctx context.Context, ids []uint, page Page) ([]UserSummary, Pagination, error) {
	page = page.Normalize()
	window := pageOfIDs(ids, page)
	users, err := s.store.ListUsers(ctx, window)
	if err != nil {
		return nil, Pagination{}, fmt.Errorf("list users: %w", err)
	}
	byID := make(map[uint]*models.User, len(users))
	for i := range users {
		byID[users[i].ID] = &users[i]
	}
	out := make([]UserSummary, 0, len(window))
	for _, id := range window {
		if u, ok := byID[id]; ok {
			out = append(out, NewUserSummary(u))
		}
	}
	return out, NewPagination(page, int64(len(ids))), nil
}

func (s *SocialService) Followers(ctx context.Context, userID uint, page Page) ([]UserSummary, Pagination, error) {
	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, Pagination{}, storeErr(err, "user")
	}
	return s.userPage(ctx, models.IDs(u.Followers), page)
}

func (s *SocialService) Following(ctx context.Context, userID uint, page Page) ([]UserSummary, Pagination, error) {
	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, Pagination{}, storeErr(err, "user")
	}
	return s.userPage(ctx, models.IDs(u.Following), page)
}

// Favorites pages the user's favorite recipes, newest favorite first.
// Recipes that have since become hidden are skipped in the page.
func (s *SocialService) Favorites(ctx context.Context, userID uint, page Page) ([]RecipeView, Pagination, error) {
	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, Pagination{}, storeErr(err, "user")
	}
	ids := models.IDs(u.FavoriteRecipes)
	page = page.Normalize()

	recipes, err := s.store.ListRecipesByIDs(ctx, pageOfIDs(ids, page))
	if err != nil {
		return nil, Pagination{}, fmt.Errorf("list favorites: %w", err)
	}
	visible := recipes[:0]
	for _, r := range recipes {
		if r.Visible() || r.AuthorID == userID {
			visible = append(visible, r)
		}
	}
	return recipeViews(visible, userID), NewPagination(page, int64(len(ids))), nil
}

type Profile struct {
	User           UserSummary `json:"user"`
	Bio            string      `json:"bio"`
	FollowersCount int         `json:"followers_count"`
	FollowingCount int         `json:"following_count"`
	RecipesCount   int64       `json:"recipes_count"`
	IsFollowing    bool        `json:"is_following"`
	IsSelf         bool        `json:"is_self"`
}

// Profile describes userID as seen by viewer (0 for anonymous).
func (s *SocialService) Profile(ctx context.Context, userID, viewer uint) (*Profile, error) {
	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, storeErr(err, "user")
	}
	_, recipes, err := s.store.ListRecipesByAuthor(ctx, userID, viewer == userID, 0, 1)
	if err != nil {
		return nil, fmt.Errorf("count recipes: %w", err)
	}
	return &Profile{
		User:           NewUserSummary(u),
		Bio:            u.Bio,
		FollowersCount: len(u.Followers),
		FollowingCount: len(u.Following),
		RecipesCount:   recipes,
		IsFollowing:    viewer != 0 && u.HasFollower(viewer),
		IsSelf:         viewer == userID,
	}, nil
}
