package handlers

import (
	"net/http"
	"strings"

	"recipehub/internal/middleware"
	"recipehub/internal/models"
	"recipehub/internal/services"
	"recipehub/internal/store"

	"github.com/gin-gonic/gin"
)

type RecipeHandler struct {
	recipes    *services.RecipeService
	engagement *services.EngagementService
	discovery  *services.DiscoveryService
	comments   *services.CommentService
}

func NewRecipeHandler(recipes *services.RecipeService, engagement *services.EngagementService, discovery *services.DiscoveryService, comments *services.CommentService) *RecipeHandler {
	return &RecipeHandler{recipes: recipes, engagement: engagement, discovery: discovery, comments: comments}
}

type recipeRequest struct {
	Title        string               `json:"title" binding:"required,max=200"`
	Description  string               `json:"description" binding:"max=10000"`
	Ingredients  []models.Ingredient  `json:"ingredients" binding:"max=100"`
	Instructions []models.Instruction `json:"instructions" binding:"max=100"`
	Cuisine      string               `json:"cuisine" binding:"max=50"`
	MealTypes    []string             `json:"meal_types" binding:"max=20"`
	DietaryTags  []string             `json:"dietary_tags" binding:"max=20"`
	Tags         []string             `json:"tags" binding:"max=30"`
	Difficulty   string               `json:"difficulty" binding:"omitempty,difficulty"`
	PrepTime     int                  `json:"prep_time" binding:"min=0"`
	CookTime     int                  `json:"cook_time" binding:"min=0"`
	Servings     int                  `json:"servings" binding:"min=0"`
	Images       []string             `json:"images" binding:"max=20"`
	IsPublished  *bool                `json:"is_published"`
	IsPublic     *bool                `json:"is_public"`
}

func (r recipeRequest) input() services.RecipeInput {
	return services.RecipeInput{
		Title:        r.Title,
		Description:  r.Description,
		Ingredients:  r.Ingredients,
		Instructions: r.Instructions,
		Cuisine:      r.Cuisine,
		MealTypes:    r.MealTypes,
		DietaryTags:  r.DietaryTags,
		Tags:         r.Tags,
		Difficulty:   models.Difficulty(r.Difficulty),
		PrepTime:     r.PrepTime,
		CookTime:     r.CookTime,
		Servings:     r.Servings,
		Images:       r.Images,
		IsPublished:  r.IsPublished,
		IsPublic:     r.IsPublic,
	}
}

type searchQuery struct {
	Keyword      string   `form:"q"`
	Ingredients  []string `form:"ingredient"`
	Cuisine      string   `form:"cuisine"`
	Difficulty   string   `form:"difficulty" binding:"omitempty,difficulty"`
	MealTypes    []string `form:"mealType"`
	DietaryTags  []string `form:"dietary"`
	MaxTotalTime int      `form:"maxTime" binding:"min=0"`
	AuthorID     uint     `form:"author"`
	Sort         string   `form:"sort"`
	Order        string   `form:"order"`
	Page         int      `form:"page"`
	Limit        int      `form:"limit"`
}

// splitList accepts both repeated parameters and comma separated values.
func splitList(in []string) []string {
	var out []string
	for _, v := range in {
		out = append(out, strings.Split(v, ",")...)
	}
	return out
}

// List handles GET /api/recipes
func (h *RecipeHandler) List(c *gin.Context) {
	var q searchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		BindError(c, err)
		return
	}

	list, page, err := h.discovery.Search(c.Request.Context(), services.SearchParams{
		Filter: store.RecipeFilter{
			Keyword:      q.Keyword,
			Ingredients:  splitList(q.Ingredients),
			Cuisine:      q.Cuisine,
			Difficulty:   models.Difficulty(q.Difficulty),
			MealTypes:    splitList(q.MealTypes),
			DietaryTags:  splitList(q.DietaryTags),
			MaxTotalTime: q.MaxTotalTime,
			AuthorID:     q.AuthorID,
		},
		Sort:  q.Sort,
		Order: q.Order,
		Page:  services.Page{Page: q.Page, Limit: q.Limit},
	}, middleware.CurrentUserID(c))
	if err != nil {
		RenderError(c, err)
		return
	}
	Paged(c, list, page)
}

// Categories handles GET /api/recipes/categories
func (h *RecipeHandler) Categories(c *gin.Context) {
	cats, err := h.discovery.Categories(c.Request.Context())
	if err != nil {
		RenderError(c, err)
		return
	}
	OK(c, http.StatusOK, cats)
}

// Detail handles GET /api/recipes/:id
func (h *RecipeHandler) Detail(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	v, err := h.recipes.Get(c.Request.Context(), id, middleware.CurrentUserID(c))
	if err != nil {
		RenderError(c, err)
		return
	}
	OK(c, http.StatusOK, v)
}

// Create handles POST /api/recipes
func (h *RecipeHandler) Create(c *gin.Context) {
	var req recipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BindError(c, err)
		return
	}
	v, err := h.recipes.Create(c.Request.Context(), middleware.CurrentUserID(c), req.input())
	if err != nil {
		RenderError(c, err)
		return
	}
	OK(c, http.StatusCreated, v)
}

// Update handles PUT /api/recipes/:id
func (h *RecipeHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req recipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BindError(c, err)
		return
	}
	v, err := h.recipes.Update(c.Request.Context(), id, middleware.CurrentUserID(c), req.input())
	if err != nil {
		RenderError(c, err)
		return
	}
	OK(c, http.StatusOK, v)
}

// Delete handles DELETE /api/recipes/:id
func (h *RecipeHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.recipes.Delete(c.Request.Context(), id, middleware.CurrentUserID(c)); err != nil {
		RenderError(c, err)
		return
	}
	Message(c, http.StatusOK, "recipe deleted")
}

type rateRequest struct {
	Value  int    `json:"value" binding:"required,min=1,max=5"`
	Review string `json:"review" binding:"max=1000"`
}

// Rate handles POST /api/recipes/:id/rate
func (h *RecipeHandler) Rate(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req rateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BindError(c, err)
		return
	}
	res, err := h.engagement.Rate(c.Request.Context(), id, middleware.CurrentUserID(c), req.Value, req.Review)
	if err != nil {
		RenderError(c, err)
		return
	}
	OK(c, http.StatusOK, res)
}

// Like handles POST /api/recipes/:id/like
func (h *RecipeHandler) Like(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	res, err := h.engagement.ToggleLike(c.Request.Context(), id, middleware.CurrentUserID(c))
	if err != nil {
		RenderError(c, err)
		return
	}
	OK(c, http.StatusOK, res)
}

type shareRequest struct {
	Email string `json:"email" binding:"required,email"`
	Note  string `json:"note" binding:"max=500"`
}

// Share handles POST /api/recipes/:id/share
func (h *RecipeHandler) Share(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req shareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BindError(c, err)
		return
	}
	if err := h.recipes.Share(c.Request.Context(), id, middleware.CurrentUserID(c), req.Email, req.Note); err != nil {
		RenderError(c, err)
		return
	}
	Message(c, http.StatusAccepted, "recipe shared")
}

// Comments handles GET /api/recipes/:id/comments
func (h *RecipeHandler) Comments(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	list, page, err := h.comments.List(c.Request.Context(), id, middleware.CurrentUserID(c), pageQuery(c))
	if err != nil {
		RenderError(c, err)
		return
	}
	Paged(c, list, page)
}

type commentRequest struct {
	Content  string `json:"content" binding:"required,max=2000"`
	ParentID *uint  `json:"parent_id"`
}

// AddComment handles POST /api/recipes/:id/comments
func (h *RecipeHandler) AddComment(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BindError(c, err)
		return
	}
	v, err := h.comments.Add(c.Request.Context(), id, middleware.CurrentUserID(c), req.Content, req.ParentID)
	if err != nil {
		RenderError(c, err)
		return
	}
	OK(c, http.StatusCreated, v)
}
