package memory

import (
	"context"
	"sort"
	"time"

	"recipehub/internal/models"
	"recipehub/internal/store"
)

func cloneNotification(n *models.Notification) *models.Notification {
	out := *n
	if n.RecipeID != nil {
		id := *n.RecipeID
		out.RecipeID = &id
	}
	if n.CommentID != nil {
		id := *n.CommentID
		out.CommentID = &id
	}
	if n.ReadAt != nil {
		t := *n.ReadAt
		out.ReadAt = &t
	}
	return &out
}

func (s *Store) CreateNotification(_ context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n.ID = s.nextID()
	s.stamp(&n.CreatedAt, nil)
	s.notifications[n.ID] = cloneNotification(n)
	return nil
}

func (s *Store) GetNotification(_ context.Context, id uint, since time.Time) (*models.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.notifications[id]
	if !ok || !n.CreatedAt.After(since) {
		return nil, store.ErrNotFound
	}
	return cloneNotification(n), nil
}

func (s *Store) SetRead(_ context.Context, id uint, read bool, readAt *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.notifications[id]
	if !ok {
		return store.ErrNotFound
	}
	n.IsRead = read
	n.ReadAt = nil
	if readAt != nil {
		t := *readAt
		n.ReadAt = &t
	}
	return nil
}

func (s *Store) MarkAllRead(_ context.Context, recipientID uint, since, readAt time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for _, rec := range s.notifications {
		if rec.RecipientID != recipientID || rec.IsRead || !rec.CreatedAt.After(since) {
			continue
		}
		t := readAt
		rec.IsRead = true
		rec.ReadAt = &t
		n++
	}
	return n, nil
}

func (s *Store) CountUnread(_ context.Context, recipientID uint, since time.Time) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, rec := range s.notifications {
		if rec.RecipientID == recipientID && !rec.IsRead && rec.CreatedAt.After(since) {
			n++
		}
	}
	return n, nil
}

func (s *Store) ListNotifications(_ context.Context, recipientID uint, since time.Time, unreadOnly bool, offset, limit int) ([]models.Notification, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*models.Notification
	for _, rec := range s.notifications {
		if rec.RecipientID != recipientID || !rec.CreatedAt.After(since) {
			continue
		}
		if unreadOnly && rec.IsRead {
			continue
		}
		matched = append(matched, rec)
	}
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})

	var out []models.Notification
	for _, rec := range window(matched, offset, limit) {
		out = append(out, *cloneNotification(rec))
	}
	return out, int64(len(matched)), nil
}

func (s *Store) DeleteForRecipe(_ context.Context, recipeID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, rec := range s.notifications {
		if rec.RecipeID != nil && *rec.RecipeID == recipeID {
			delete(s.notifications, id)
		}
	}
	return nil
}

func (s *Store) DeleteForComments(_ context.Context, commentIDs []uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	drop := make(map[uint]bool, len(commentIDs))
	for _, id := range commentIDs {
		drop[id] = true
	}
	for id, rec := range s.notifications {
		if rec.CommentID != nil && drop[*rec.CommentID] {
			delete(s.notifications, id)
		}
	}
	return nil
}

func (s *Store) Purge(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for id, rec := range s.notifications {
		if !rec.CreatedAt.After(cutoff) {
			delete(s.notifications, id)
			n++
		}
	}
	return n, nil
}
