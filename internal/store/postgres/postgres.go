// Package postgres implements store.Store on top of gorm and PostgreSQL.
//
// Set membership (likes, follows, favorites) lives in bigint[] columns and is
// only ever changed through single-statement conditional updates, so each
// mutation is atomic on its row without explicit locking.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"recipehub/internal/store"

	"gorm.io/gorm"
)

type Store struct {
	db *gorm.DB
}

var _ store.Store = (*Store)(nil)

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return store.ErrNotFound
	}
	return err
}

// addToSet appends value to column on row id unless it is already present.
func (s *Store) addToSet(ctx context.Context, model any, id uint, column string, value uint) (bool, error) {
	res := s.db.WithContext(ctx).Model(model).
		Where(fmt.Sprintf("id = ? AND NOT (? = ANY(%s))", column), id, int64(value)).
		UpdateColumn(column, gorm.Expr(fmt.Sprintf("array_append(%s, ?)", column), int64(value)))
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected > 0 {
		return true, nil
	}
	return false, s.exists(ctx, model, id)
}

// removeFromSet removes value from column on row id if it is present.
func (s *Store) removeFromSet(ctx context.Context, model any, id uint, column string, value uint) (bool, error) {
	res := s.db.WithContext(ctx).Model(model).
		Where(fmt.Sprintf("id = ? AND ? = ANY(%s)", column), id, int64(value)).
		UpdateColumn(column, gorm.Expr(fmt.Sprintf("array_remove(%s, ?)", column), int64(value)))
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected > 0 {
		return true, nil
	}
	return false, s.exists(ctx, model, id)
}

// toggleLike flips userID in the likes column of table in one statement and
// returns the resulting state.
func (s *Store) toggleLike(ctx context.Context, table string, id, userID uint) (store.Toggle, error) {
	query := fmt.Sprintf(`UPDATE %s
SET likes = CASE WHEN @uid = ANY(likes) THEN array_remove(likes, @uid) ELSE array_append(likes, @uid) END
WHERE id = @id
RETURNING @uid = ANY(likes) AS liked, cardinality(likes) AS total`, table)

	var rows []struct {
		Liked bool
		Total int
	}
	err := s.db.WithContext(ctx).
		Raw(query, sql.Named("uid", int64(userID)), sql.Named("id", id)).
		Scan(&rows).Error
	if err != nil {
		return store.Toggle{}, err
	}
	if len(rows) == 0 {
		return store.Toggle{}, store.ErrNotFound
	}
	return store.Toggle{Liked: rows[0].Liked, Count: rows[0].Total}, nil
}

func (s *Store) exists(ctx context.Context, model any, id uint) error {
	var n int64
	if err := s.db.WithContext(ctx).Model(model).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
