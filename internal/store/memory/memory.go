// Package memory implements store.Store in process memory. It backs the
// service and handler tests and the DB_DRIVER=memory development mode.
//
// Every method takes the store lock, so each call is atomic in the same way
// a single conditional UPDATE is in store/postgres. Records are copied on the
// way in and out; callers never share memory with the store.
package memory

import (
	"context"
	"sync"
	"time"

	"recipehub/internal/models"
	"recipehub/internal/store"

	"github.com/lib/pq"
)

type Store struct {
	mu sync.RWMutex

	users         map[uint]*models.User
	recipes       map[uint]*models.Recipe
	ratings       map[uint][]models.Rating // by recipe id
	comments      map[uint]*models.Comment
	notifications map[uint]*models.Notification

	lastID uint
	now    func() time.Time
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		users:         make(map[uint]*models.User),
		recipes:       make(map[uint]*models.Recipe),
		ratings:       make(map[uint][]models.Rating),
		comments:      make(map[uint]*models.Comment),
		notifications: make(map[uint]*models.Notification),
		now:           time.Now,
	}
}

// WithClock replaces the clock used to stamp CreatedAt/UpdatedAt when the
// caller left them zero.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }

func (s *Store) nextID() uint {
	s.lastID++
	return s.lastID
}

func (s *Store) stamp(created, updated *time.Time) {
	now := s.now()
	if created != nil && created.IsZero() {
		*created = now
	}
	if updated != nil {
		*updated = now
	}
}

func cloneIDs(set pq.Int64Array) pq.Int64Array {
	out := make(pq.Int64Array, len(set))
	copy(out, set)
	return out
}

func cloneStrings(set pq.StringArray) pq.StringArray {
	out := make(pq.StringArray, len(set))
	copy(out, set)
	return out
}

func add(set *pq.Int64Array, id uint) bool {
	if models.Contains(*set, id) {
		return false
	}
	*set = append(*set, int64(id))
	return true
}

func remove(set *pq.Int64Array, id uint) bool {
	out := (*set)[:0:0]
	found := false
	for _, v := range *set {
		if v == int64(id) {
			found = true
			continue
		}
		out = append(out, v)
	}
	if found {
		*set = out
	}
	return found
}

func toggle(set *pq.Int64Array, id uint) store.Toggle {
	if remove(set, id) {
		return store.Toggle{Liked: false, Count: len(*set)}
	}
	*set = append(*set, int64(id))
	return store.Toggle{Liked: true, Count: len(*set)}
}

func window[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return nil
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}
