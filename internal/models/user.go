package models

import (
	"time"

	"github.com/lib/pq"
)

// User holds profile data plus the user's own social sets.
// Following/Followers must mirror each other; see services.SocialService.
type User struct {
	ID              uint          `gorm:"primaryKey" json:"id"`
	Username        string        `gorm:"uniqueIndex;not null" json:"username"`
	Email           string        `gorm:"uniqueIndex;not null" json:"-"`
	DisplayName     string        `gorm:"size:100" json:"display_name"`
	Avatar          string        `json:"avatar"` // opaque storage path
	Bio             string        `gorm:"size:200" json:"bio"`
	Following       pq.Int64Array `gorm:"type:bigint[];not null;default:'{}'" json:"-"`
	Followers       pq.Int64Array `gorm:"type:bigint[];not null;default:'{}'" json:"-"`
	FavoriteRecipes pq.Int64Array `gorm:"type:bigint[];not null;default:'{}'" json:"-"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// Name returns the display name, falling back to the username.
func (u *User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}

func (u *User) IsFollowing(id uint) bool { return Contains(u.Following, id) }

func (u *User) HasFollower(id uint) bool { return Contains(u.Followers, id) }

func (u *User) HasFavorite(recipeID uint) bool { return Contains(u.FavoriteRecipes, recipeID) }

// Contains reports whether id is a member of set.
func Contains(set pq.Int64Array, id uint) bool {
	for _, v := range set {
		if v == int64(id) {
			return true
		}
	}
	return false
}

// IDs converts a stored id set to uint ids, preserving order.
func IDs(set pq.Int64Array) []uint {
	out := make([]uint, 0, len(set))
	for _, v := range set {
		out = append(out, uint(v))
	}
	return out
}
