package handlers

import (
	"net/http"

	"recipehub/internal/middleware"
	"recipehub/internal/services"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	notifications *services.NotificationService
}

func NewNotificationHandler(notifications *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// List handles GET /api/notifications?unread=true
func (h *NotificationHandler) List(c *gin.Context) {
	unreadOnly := c.Query("unread") == "true"
	list, page, err := h.notifications.List(c.Request.Context(), middleware.CurrentUserID(c), pageQuery(c), unreadOnly)
	if err != nil {
		RenderError(c, err)
		return
	}
	Paged(c, list, page)
}

// UnreadCount handles GET /api/notifications/unread-count
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	n, err := h.notifications.UnreadCount(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		RenderError(c, err)
		return
	}
	OK(c, http.StatusOK, gin.H{"count": n})
}

// Read handles POST /api/notifications/:id/read
func (h *NotificationHandler) Read(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	n, err := h.notifications.MarkRead(c.Request.Context(), id, middleware.CurrentUserID(c))
	if err != nil {
		RenderError(c, err)
		return
	}
	OK(c, http.StatusOK, n)
}

// Unread handles POST /api/notifications/:id/unread
func (h *NotificationHandler) Unread(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	n, err := h.notifications.MarkUnread(c.Request.Context(), id, middleware.CurrentUserID(c))
	if err != nil {
		RenderError(c, err)
		return
	}
	OK(c, http.StatusOK, n)
}

// ReadAll handles POST /api/notifications/read-all
func (h *NotificationHandler) ReadAll(c *gin.Context) {
	n, err := h.notifications.MarkAllRead(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		RenderError(c, err)
		return
	}
	OK(c, http.StatusOK, gin.H{"updated": n})
}
