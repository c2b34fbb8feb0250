package postgres

import (
	"context"
	"time"

	"recipehub/internal/models"
	"recipehub/internal/store"

	"gorm.io/gorm"
)

func (s *Store) CreateNotification(ctx context.Context, n *models.Notification) error {
	return s.db.WithContext(ctx).Create(n).Error
}

func (s *Store) GetNotification(ctx context.Context, id uint, since time.Time) (*models.Notification, error) {
	var n models.Notification
	err := s.db.WithContext(ctx).Where("id = ? AND created_at > ?", id, since).First(&n).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &n, nil
}

func (s *Store) SetRead(ctx context.Context, id uint, read bool, readAt *time.Time) error {
	res := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ?", id).
		Updates(map[string]any{"is_read": read, "read_at": readAt})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) MarkAllRead(ctx context.Context, recipientID uint, since, readAt time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ? AND created_at > ?", recipientID, false, since).
		Updates(map[string]any{"is_read": true, "read_at": readAt})
	return res.RowsAffected, res.Error
}

func (s *Store) CountUnread(ctx context.Context, recipientID uint, since time.Time) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ? AND created_at > ?", recipientID, false, since).
		Count(&n).Error
	return n, err
}

func (s *Store) ListNotifications(ctx context.Context, recipientID uint, since time.Time, unreadOnly bool, offset, limit int) ([]models.Notification, int64, error) {
	base := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("recipient_id = ? AND created_at > ?", recipientID, since)
	if unreadOnly {
		base = base.Where("is_read = ?", false)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var list []models.Notification
	err := base.Order("created_at DESC, id DESC").Offset(offset).Limit(limit).Find(&list).Error
	return list, total, err
}

func (s *Store) DeleteForRecipe(ctx context.Context, recipeID uint) error {
	return s.db.WithContext(ctx).Where("recipe_id = ?", recipeID).Delete(&models.Notification{}).Error
}

func (s *Store) DeleteForComments(ctx context.Context, commentIDs []uint) error {
	if len(commentIDs) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Where("comment_id IN ?", commentIDs).Delete(&models.Notification{}).Error
}

func (s *Store) Purge(ctx context.Context, cutoff time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Where("created_at <= ?", cutoff).Delete(&models.Notification{})
	return res.RowsAffected, res.Error
}
