package postgres

import (
	"context"

	"recipehub/internal/models"

	"github.com/lib/pq"
)

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	if u.Following == nil {
		u.Following = pq.Int64Array{}
	}
	if u.Followers == nil {
		u.Followers = pq.Int64Array{}
	}
	if u.FavoriteRecipes == nil {
		u.FavoriteRecipes = pq.Int64Array{}
	}
	return s.db.WithContext(ctx).Create(u).Error
}

func (s *Store) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (s *Store) ListUsers(ctx context.Context, ids []uint) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var users []models.User
	err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error
	return users, err
}

func (s *Store) AddFollowing(ctx context.Context, userID, targetID uint) (bool, error) {
	return s.addToSet(ctx, &models.User{}, userID, "following", targetID)
}

func (s *Store) RemoveFollowing(ctx context.Context, userID, targetID uint) (bool, error) {
	return s.removeFromSet(ctx, &models.User{}, userID, "following", targetID)
}

func (s *Store) AddFollower(ctx context.Context, userID, followerID uint) (bool, error) {
	return s.addToSet(ctx, &models.User{}, userID, "followers", followerID)
}

func (s *Store) RemoveFollower(ctx context.Context, userID, followerID uint) (bool, error) {
	return s.removeFromSet(ctx, &models.User{}, userID, "followers", followerID)
}

func (s *Store) AddFavorite(ctx context.Context, userID, recipeID uint) (bool, error) {
	return s.addToSet(ctx, &models.User{}, userID, "favorite_recipes", recipeID)
}

func (s *Store) RemoveFavorite(ctx context.Context, userID, recipeID uint) (bool, error) {
	return s.removeFromSet(ctx, &models.User{}, userID, "favorite_recipes", recipeID)
}

func (s *Store) PurgeFavorite(ctx context.Context, recipeID uint) error {
	return s.db.WithContext(ctx).Exec(
		"UPDATE users SET favorite_recipes = array_remove(favorite_recipes, ?) WHERE ? = ANY(favorite_recipes)",
		int64(recipeID), int64(recipeID),
	).Error
}
