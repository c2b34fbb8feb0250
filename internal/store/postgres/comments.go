package postgres

import (
	"context"

	"recipehub/internal/models"
	"recipehub/internal/store"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

func (s *Store) CreateComment(ctx context.Context, c *models.Comment) error {
	if c.Likes == nil {
		c.Likes = pq.Int64Array{}
	}
	return s.db.WithContext(ctx).Create(c).Error
}

func (s *Store) GetComment(ctx context.Context, id uint) (*models.Comment, error) {
	var c models.Comment
	if err := s.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (s *Store) SaveComment(ctx context.Context, c *models.Comment) error {
	res := s.db.WithContext(ctx).Model(c).
		Select("content", "is_edited", "edited_at", "updated_at").
		Updates(c)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// DeleteComment removes a comment together with its replies in one
// transaction, so a reply can never outlive its root.
func (s *Store) DeleteComment(ctx context.Context, id uint) ([]uint, error) {
	var removed []uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var replyIDs []uint
		if err := tx.Model(&models.Comment{}).Where("parent_id = ?", id).Pluck("id", &replyIDs).Error; err != nil {
			return err
		}
		res := tx.Where("id = ? OR parent_id = ?", id, id).Delete(&models.Comment{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return store.ErrNotFound
		}
		removed = append([]uint{id}, replyIDs...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}

func (s *Store) DeleteRecipeComments(ctx context.Context, recipeID uint) error {
	return s.db.WithContext(ctx).Where("recipe_id = ?", recipeID).Delete(&models.Comment{}).Error
}

func (s *Store) ListRootComments(ctx context.Context, recipeID uint, offset, limit int) ([]models.Comment, int64, error) {
	base := s.db.WithContext(ctx).Model(&models.Comment{}).
		Where("recipe_id = ? AND parent_id IS NULL", recipeID)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var comments []models.Comment
	err := base.Order("created_at DESC, id DESC").Offset(offset).Limit(limit).Find(&comments).Error
	return comments, total, err
}

func (s *Store) ListReplies(ctx context.Context, parentIDs []uint) ([]models.Comment, error) {
	if len(parentIDs) == 0 {
		return nil, nil
	}
	var replies []models.Comment
	err := s.db.WithContext(ctx).
		Where("parent_id IN ?", parentIDs).
		Order("created_at ASC, id ASC").
		Find(&replies).Error
	return replies, err
}

func (s *Store) CountComments(ctx context.Context, recipeID uint) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Comment{}).Where("recipe_id = ?", recipeID).Count(&n).Error
	return n, err
}

func (s *Store) ToggleCommentLike(ctx context.Context, commentID, userID uint) (store.Toggle, error) {
	return s.toggleLike(ctx, "comments", commentID, userID)
}
