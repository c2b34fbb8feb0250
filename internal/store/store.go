// Package store defines the entity store used by the services: durable
// users, recipes, ratings, comments and notifications, plus the atomic
// single-row primitives the engagement logic relies on.
//
// Two implementations exist: store/postgres (gorm) and store/memory.
package store

import (
	"context"
	"errors"
	"time"

	"recipehub/internal/models"
)

// ErrNotFound is returned when the addressed record does not exist.
var ErrNotFound = errors.New("record not found")

type Users interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id uint) (*models.User, error)
	ListUsers(ctx context.Context, ids []uint) ([]models.User, error)

	// AddFollowing/AddFollower/AddFavorite add value to the user's set and
	// report whether the set changed. Remove* are the inverse. A missing user
	// yields ErrNotFound.
	AddFollowing(ctx context.Context, userID, targetID uint) (bool, error)
	RemoveFollowing(ctx context.Context, userID, targetID uint) (bool, error)
	AddFollower(ctx context.Context, userID, followerID uint) (bool, error)
	RemoveFollower(ctx context.Context, userID, followerID uint) (bool, error)
	AddFavorite(ctx context.Context, userID, recipeID uint) (bool, error)
	RemoveFavorite(ctx context.Context, userID, recipeID uint) (bool, error)

	// PurgeFavorite removes recipeID from every user's favorites.
	PurgeFavorite(ctx context.Context, recipeID uint) error
}

// Toggle is the result of flipping membership in a like set.
type Toggle struct {
	Liked bool
	Count int
}

type Recipes interface {
	CreateRecipe(ctx context.Context, r *models.Recipe) error
	// GetRecipe loads a recipe with its ratings.
	GetRecipe(ctx context.Context, id uint) (*models.Recipe, error)
	SaveRecipe(ctx context.Context, r *models.Recipe) error
	// DeleteRecipe removes the recipe and its ratings.
	DeleteRecipe(ctx context.Context, id uint) error

	// UpsertRating inserts or overwrites the (recipe, user) rating in place.
	UpsertRating(ctx context.Context, rating *models.Rating) error
	ListRatings(ctx context.Context, recipeID uint) ([]models.Rating, error)

	ToggleRecipeLike(ctx context.Context, recipeID, userID uint) (Toggle, error)
	IncrementViews(ctx context.Context, recipeID uint) error

	// SearchRecipes returns visible recipes matching the query and the
	// total number of matches ignoring the offset/limit window.
	SearchRecipes(ctx context.Context, q RecipeQuery) ([]models.Recipe, int64, error)
	// ListRecipesByAuthor pages an author's recipes, newest first. Hidden
	// recipes are included only when includeHidden is set.
	ListRecipesByAuthor(ctx context.Context, authorID uint, includeHidden bool, offset, limit int) ([]models.Recipe, int64, error)
	ListRecipesByIDs(ctx context.Context, ids []uint) ([]models.Recipe, error)
	Categories(ctx context.Context) (*Categories, error)
}

type Comments interface {
	CreateComment(ctx context.Context, c *models.Comment) error
	GetComment(ctx context.Context, id uint) (*models.Comment, error)
	SaveComment(ctx context.Context, c *models.Comment) error
	// DeleteComment removes the comment and every reply under it, and
	// returns the ids removed.
	DeleteComment(ctx context.Context, id uint) ([]uint, error)
	// DeleteRecipeComments removes every comment on a recipe.
	DeleteRecipeComments(ctx context.Context, recipeID uint) error
	// ListRootComments returns a page of root comments, newest first.
	ListRootComments(ctx context.Context, recipeID uint, offset, limit int) ([]models.Comment, int64, error)
	// ListReplies returns the replies to the given roots, oldest first.
	ListReplies(ctx context.Context, parentIDs []uint) ([]models.Comment, error)
	CountComments(ctx context.Context, recipeID uint) (int64, error)
	ToggleCommentLike(ctx context.Context, commentID, userID uint) (Toggle, error)
}

// Notifications never return records created at or before the since cutoff.
type Notifications interface {
	CreateNotification(ctx context.Context, n *models.Notification) error
	GetNotification(ctx context.Context, id uint, since time.Time) (*models.Notification, error)
	// SetRead transitions the read flag; readAt is nil when marking unread.
	SetRead(ctx context.Context, id uint, read bool, readAt *time.Time) error
	MarkAllRead(ctx context.Context, recipientID uint, since, readAt time.Time) (int64, error)
	CountUnread(ctx context.Context, recipientID uint, since time.Time) (int64, error)
	ListNotifications(ctx context.Context, recipientID uint, since time.Time, unreadOnly bool, offset, limit int) ([]models.Notification, int64, error)
	// DeleteForRecipe and DeleteForComments drop notifications pointing at
	// removed content.
	DeleteForRecipe(ctx context.Context, recipeID uint) error
	DeleteForComments(ctx context.Context, commentIDs []uint) error
	// Purge physically deletes notifications created before cutoff.
	Purge(ctx context.Context, cutoff time.Time) (int64, error)
}

// Store bundles every repository.
type Store interface {
	Users
	Recipes
	Comments
	Notifications
	Ping(ctx context.Context) error
}
