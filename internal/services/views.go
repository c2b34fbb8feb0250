package services

import (
	"recipehub/internal/models"
	"recipehub/internal/utils"
)

// RecipeView is a recipe with its read-time aggregates for one viewer.
type RecipeView struct {
	models.Recipe
	DescriptionHTML string  `json:"description_html,omitempty"`
	AverageRating   float64 `json:"average_rating"`
	RatingsCount    int     `json:"ratings_count"`
	LikesCount      int     `json:"likes_count"`
	TotalTime       int     `json:"total_time"`
	IsLiked         bool    `json:"is_liked"`
	UserRating      *int    `json:"user_rating,omitempty"`
	CommentsCount   *int64  `json:"comments_count,omitempty"`
}

// NewRecipeView derives the aggregates of r. viewer may be 0.
func NewRecipeView(r *models.Recipe, viewer uint) RecipeView {
	v := RecipeView{
		Recipe:        *r,
		AverageRating: r.AverageRating(),
		RatingsCount:  r.RatingsCount(),
		LikesCount:    r.LikesCount(),
		TotalTime:     r.TotalTime(),
	}
	if viewer != 0 {
		v.IsLiked = r.IsLikedBy(viewer)
		if rating := r.RatingBy(viewer); rating != nil {
			value := rating.Value
			v.UserRating = &value
		}
	}
	return v
}

func recipeViews(recipes []models.Recipe, viewer uint) []RecipeView {
	out := make([]RecipeView, 0, len(recipes))
	for i := range recipes {
		out = append(out, NewRecipeView(&recipes[i], viewer))
	}
	return out
}

// withHTML adds the rendered description. Only detail responses carry it.
func (v RecipeView) withHTML() RecipeView {
	v.DescriptionHTML = utils.RenderMarkdown(v.Description)
	return v
}

// UserSummary is the public face of a user in lists.
type UserSummary struct {
	ID          uint   `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Avatar      string `json:"avatar"`
}

func NewUserSummary(u *models.User) UserSummary {
	return UserSummary{ID: u.ID, Username: u.Username, DisplayName: u.Name(), Avatar: u.Avatar}
}

// LikeResult is the state after a like toggle.
type LikeResult struct {
	IsLiked    bool `json:"is_liked"`
	LikesCount int  `json:"likes_count"`
}

// RatingSummary is returned after a rating write.
type RatingSummary struct {
	AverageRating float64 `json:"average_rating"`
	RatingsCount  int     `json:"ratings_count"`
	UserRating    int     `json:"user_rating"`
}
