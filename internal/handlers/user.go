package handlers

import (
	"net/http"

	"recipehub/internal/middleware"
	"recipehub/internal/services"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	social  *services.SocialService
	recipes *services.RecipeService
}

func NewUserHandler(social *services.SocialService, recipes *services.RecipeService) *UserHandler {
	return &UserHandler{social: social, recipes: recipes}
}

// Profile handles GET /api/users/:id
func (h *UserHandler) Profile(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	p, err := h.social.Profile(c.Request.Context(), id, middleware.CurrentUserID(c))
	if err != nil {
		RenderError(c, err)
		return
	}
	OK(c, http.StatusOK, p)
}

// Recipes handles GET /api/users/:id/recipes
func (h *UserHandler) Recipes(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	list, page, err := h.recipes.ListByAuthor(c.Request.Context(), id, middleware.CurrentUserID(c), pageQuery(c))
	if err != nil {
		RenderError(c, err)
		return
	}
	Paged(c, list, page)
}

// Followers handles GET /api/users/:id/followers
func (h *UserHandler) Followers(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	list, page, err := h.social.Followers(c.Request.Context(), id, pageQuery(c))
	if err != nil {
		RenderError(c, err)
		return
	}
	Paged(c, list, page)
}

// Following handles GET /api/users/:id/following
func (h *UserHandler) Following(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	list, page, err := h.social.Following(c.Request.Context(), id, pageQuery(c))
	if err != nil {
		RenderError(c, err)
		return
	}
	Paged(c, list, page)
}

// Follow handles POST /api/users/:id/follow
func (h *UserHandler) Follow(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.social.Follow(c.Request.Context(), middleware.CurrentUserID(c), id); err != nil {
		RenderError(c, err)
		return
	}
	Message(c, http.StatusOK, "followed")
}

// Unfollow handles DELETE /api/users/:id/follow
func (h *UserHandler) Unfollow(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.social.Unfollow(c.Request.Context(), middleware.CurrentUserID(c), id); err != nil {
		RenderError(c, err)
		return
	}
	Message(c, http.StatusOK, "unfollowed")
}

// Favorites handles GET /api/me/favorites
func (h *UserHandler) Favorites(c *gin.Context) {
	list, page, err := h.social.Favorites(c.Request.Context(), middleware.CurrentUserID(c), pageQuery(c))
	if err != nil {
		RenderError(c, err)
		return
	}
	Paged(c, list, page)
}

// AddFavorite handles POST /api/me/favorites/:recipeId
func (h *UserHandler) AddFavorite(c *gin.Context) {
	id, ok := idParam(c, "recipeId")
	if !ok {
		return
	}
	if err := h.social.AddFavorite(c.Request.Context(), middleware.CurrentUserID(c), id); err != nil {
		RenderError(c, err)
		return
	}
	Message(c, http.StatusCreated, "added to favorites")
}

// RemoveFavorite handles DELETE /api/me/favorites/:recipeId
func (h *UserHandler) RemoveFavorite(c *gin.Context) {
	id, ok := idParam(c, "recipeId")
	if !ok {
		return
	}
	if err := h.social.RemoveFavorite(c.Request.Context(), middleware.CurrentUserID(c), id); err != nil {
		RenderError(c, err)
		return
	}
	Message(c, http.StatusOK, "removed from favorites")
}
