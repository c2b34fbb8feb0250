package handlers

import (
	"net/http"

	"recipehub/internal/middleware"
	"recipehub/internal/services"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	comments *services.CommentService
}

func NewCommentHandler(comments *services.CommentService) *CommentHandler {
	return &CommentHandler{comments: comments}
}

type contentRequest struct {
	Content string `json:"content" binding:"required,max=2000"`
}

// Update handles PUT /api/comments/:id
func (h *CommentHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req contentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BindError(c, err)
		return
	}
	v, err := h.comments.Update(c.Request.Context(), id, middleware.CurrentUserID(c), req.Content)
	if err != nil {
		RenderError(c, err)
		return
	}
	OK(c, http.StatusOK, v)
}

// Delete handles DELETE /api/comments/:id
func (h *CommentHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.comments.Delete(c.Request.Context(), id, middleware.CurrentUserID(c)); err != nil {
		RenderError(c, err)
		return
	}
	Message(c, http.StatusOK, "comment deleted")
}

// Like handles POST /api/comments/:id/like
func (h *CommentHandler) Like(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	res, err := h.comments.ToggleLike(c.Request.Context(), id, middleware.CurrentUserID(c))
	if err != nil {
		RenderError(c, err)
		return
	}
	OK(c, http.StatusOK, res)
}
