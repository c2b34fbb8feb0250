package models

import (
	"math"
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// Valid reports whether d is one of the known difficulty levels.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

type Ingredient struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity,omitempty"`
	Unit     string `json:"unit,omitempty"`
}

type Instruction struct {
	Step int    `json:"step"`
	Text string `json:"text"`
}

type Recipe struct {
	ID           uint                             `gorm:"primaryKey" json:"id"`
	AuthorID     uint                             `gorm:"not null;index" json:"author_id"`
	Title        string                           `gorm:"not null" json:"title"`
	Description  string                           `gorm:"type:text" json:"description"`
	Ingredients  datatypes.JSONSlice[Ingredient]  `gorm:"type:jsonb" json:"ingredients"`
	Instructions datatypes.JSONSlice[Instruction] `gorm:"type:jsonb" json:"instructions"`
	Cuisine      string                           `gorm:"size:50;index" json:"cuisine"`
	MealTypes    pq.StringArray                   `gorm:"type:text[];not null;default:'{}'" json:"meal_types"`
	DietaryTags  pq.StringArray                   `gorm:"type:text[];not null;default:'{}'" json:"dietary_tags"`
	Tags         pq.StringArray                   `gorm:"type:text[];not null;default:'{}'" json:"tags"`
	Difficulty   Difficulty                       `gorm:"type:varchar(10);not null;default:'Easy';index" json:"difficulty"`
	PrepTime     int                              `gorm:"default:0" json:"prep_time"` // minutes
	CookTime     int                              `gorm:"default:0" json:"cook_time"` // minutes
	Servings     int                              `gorm:"default:1" json:"servings"`
	Images       pq.StringArray                   `gorm:"type:text[];not null;default:'{}'" json:"images"`
	Likes        pq.Int64Array                    `gorm:"type:bigint[];not null;default:'{}'" json:"-"`
	Views        int64                            `gorm:"default:0" json:"views"`
	IsPublished  bool                             `gorm:"not null;index" json:"is_published"`
	IsPublic     bool                             `gorm:"not null;index" json:"is_public"`
	Ratings      []Rating                         `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt    time.Time                        `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time                        `json:"updated_at"`
}

// Rating is one user's score for a recipe. (recipe_id, user_id) is unique.
type Rating struct {
	ID       uint      `gorm:"primaryKey" json:"-"`
	RecipeID uint      `gorm:"not null;uniqueIndex:idx_rating_recipe_user" json:"recipe_id"`
	UserID   uint      `gorm:"not null;uniqueIndex:idx_rating_recipe_user;index" json:"user_id"`
	Value    int       `gorm:"not null" json:"value"`
	Review   string    `gorm:"type:text" json:"review,omitempty"`
	RatedAt  time.Time `gorm:"not null" json:"rated_at"`
}

// Visible is the discovery gate: only published public recipes are listed.
func (r *Recipe) Visible() bool { return r.IsPublished && r.IsPublic }

func (r *Recipe) TotalTime() int { return r.PrepTime + r.CookTime }

func (r *Recipe) LikesCount() int { return len(r.Likes) }

func (r *Recipe) IsLikedBy(userID uint) bool { return Contains(r.Likes, userID) }

func (r *Recipe) RatingsCount() int { return len(r.Ratings) }

// AverageRating is always derived from the loaded ratings, never stored.
func (r *Recipe) AverageRating() float64 { return AverageRating(r.Ratings) }

// RatingBy returns the rating left by userID, if any.
func (r *Recipe) RatingBy(userID uint) *Rating {
	for i := range r.Ratings {
		if r.Ratings[i].UserID == userID {
			return &r.Ratings[i]
		}
	}
	return nil
}

// AverageRating returns the mean rating rounded to one decimal, 0 for none.
func AverageRating(ratings []Rating) float64 {
	if len(ratings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r.Value
	}
	return Round1(float64(sum) / float64(len(ratings)))
}

func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}
