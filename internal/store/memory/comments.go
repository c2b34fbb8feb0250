package memory

import (
	"context"
	"sort"

	"recipehub/internal/models"
	"recipehub/internal/store"
)

func cloneComment(c *models.Comment) *models.Comment {
	out := *c
	out.Likes = cloneIDs(c.Likes)
	if c.ParentID != nil {
		id := *c.ParentID
		out.ParentID = &id
	}
	if c.EditedAt != nil {
		t := *c.EditedAt
		out.EditedAt = &t
	}
	out.Replies = nil
	return &out
}

func (s *Store) CreateComment(_ context.Context, c *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c.ID = s.nextID()
	s.stamp(&c.CreatedAt, &c.UpdatedAt)
	s.comments[c.ID] = cloneComment(c)
	return nil
}

func (s *Store) GetComment(_ context.Context, id uint) (*models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.comments[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return cloneComment(c), nil
}

func (s *Store) SaveComment(_ context.Context, c *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.comments[c.ID]
	if !ok {
		return store.ErrNotFound
	}
	next := cloneComment(cur)
	next.Content = c.Content
	next.IsEdited = c.IsEdited
	if c.EditedAt != nil {
		t := *c.EditedAt
		next.EditedAt = &t
	}
	s.stamp(nil, &next.UpdatedAt)
	c.UpdatedAt = next.UpdatedAt
	s.comments[c.ID] = next
	return nil
}

func (s *Store) DeleteComment(_ context.Context, id uint) ([]uint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.comments[id]; !ok {
		return nil, store.ErrNotFound
	}
	removed := []uint{id}
	delete(s.comments, id)

	var replies []uint
	for cid, c := range s.comments {
		if c.ParentID != nil && *c.ParentID == id {
			replies = append(replies, cid)
		}
	}
	sort.Slice(replies, func(i, j int) bool { return replies[i] < replies[j] })
	for _, cid := range replies {
		delete(s.comments, cid)
	}
	return append(removed, replies...), nil
}

func (s *Store) DeleteRecipeComments(_ context.Context, recipeID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, c := range s.comments {
		if c.RecipeID == recipeID {
			delete(s.comments, id)
		}
	}
	return nil
}

func (s *Store) ListRootComments(_ context.Context, recipeID uint, offset, limit int) ([]models.Comment, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var roots []*models.Comment
	for _, c := range s.comments {
		if c.RecipeID == recipeID && c.IsRoot() {
			roots = append(roots, c)
		}
	}
	sort.Slice(roots, func(i, j int) bool {
		a, b := roots[i], roots[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})

	var out []models.Comment
	for _, c := range window(roots, offset, limit) {
		out = append(out, *cloneComment(c))
	}
	return out, int64(len(roots)), nil
}

func (s *Store) ListReplies(_ context.Context, parentIDs []uint) ([]models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	want := make(map[uint]bool, len(parentIDs))
	for _, id := range parentIDs {
		want[id] = true
	}
	var out []models.Comment
	for _, c := range s.comments {
		if c.ParentID != nil && want[*c.ParentID] {
			out = append(out, *cloneComment(c))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) CountComments(_ context.Context, recipeID uint) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, c := range s.comments {
		if c.RecipeID == recipeID {
			n++
		}
	}
	return n, nil
}

func (s *Store) ToggleCommentLike(_ context.Context, commentID, userID uint) (store.Toggle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.comments[commentID]
	if !ok {
		return store.Toggle{}, store.ErrNotFound
	}
	return toggle(&c.Likes, userID), nil
}
