package memory

import (
	"context"
	"errors"

	"recipehub/internal/models"
	"recipehub/internal/store"

	"github.com/lib/pq"
)

var errDuplicateUser = errors.New("duplicate username or email")

func cloneUser(u *models.User) *models.User {
	c := *u
	c.Following = cloneIDs(u.Following)
	c.Followers = cloneIDs(u.Followers)
	c.FavoriteRecipes = cloneIDs(u.FavoriteRecipes)
	return &c
}

func (s *Store) CreateUser(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Username == u.Username || (u.Email != "" && existing.Email == u.Email) {
			return errDuplicateUser
		}
	}
	u.ID = s.nextID()
	s.stamp(&u.CreatedAt, &u.UpdatedAt)
	s.users[u.ID] = cloneUser(u)
	return nil
}

func (s *Store) GetUser(_ context.Context, id uint) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return cloneUser(u), nil
}

func (s *Store) ListUsers(_ context.Context, ids []uint) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.User
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			out = append(out, *cloneUser(u))
		}
	}
	return out, nil
}

// mutateUserSet applies fn to one of the user's sets under the write lock.
func (s *Store) mutateUserSet(userID uint, pick func(*models.User) *pq.Int64Array, fn func(*pq.Int64Array) bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return false, store.ErrNotFound
	}
	return fn(pick(u)), nil
}

func following(u *models.User) *pq.Int64Array { return &u.Following }
func followers(u *models.User) *pq.Int64Array { return &u.Followers }
func favorites(u *models.User) *pq.Int64Array { return &u.FavoriteRecipes }

func adder(id uint) func(*pq.Int64Array) bool {
	return func(set *pq.Int64Array) bool { return add(set, id) }
}

func remover(id uint) func(*pq.Int64Array) bool {
	return func(set *pq.Int64Array) bool { return remove(set, id) }
}

func (s *Store) AddFollowing(_ context.Context, userID, targetID uint) (bool, error) {
	return s.mutateUserSet(userID, following, adder(targetID))
}

func (s *Store) RemoveFollowing(_ context.Context, userID, targetID uint) (bool, error) {
	return s.mutateUserSet(userID, following, remover(targetID))
}

func (s *Store) AddFollower(_ context.Context, userID, followerID uint) (bool, error) {
	return s.mutateUserSet(userID, followers, adder(followerID))
}

func (s *Store) RemoveFollower(_ context.Context, userID, followerID uint) (bool, error) {
	return s.mutateUserSet(userID, followers, remover(followerID))
}

func (s *Store) AddFavorite(_ context.Context, userID, recipeID uint) (bool, error) {
	return s.mutateUserSet(userID, favorites, adder(recipeID))
}

func (s *Store) RemoveFavorite(_ context.Context, userID, recipeID uint) (bool, error) {
	return s.mutateUserSet(userID, favorites, remover(recipeID))
}

func (s *Store) PurgeFavorite(_ context.Context, recipeID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		remove(&u.FavoriteRecipes, recipeID)
	}
	return nil
}
