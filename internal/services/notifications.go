package services

import (
	"context"
	"fmt"
	"time"

	"recipehub/internal/logging"
	"recipehub/internal/metrics"
	"recipehub/internal/models"
	"recipehub/internal/store"
)

// NotificationRequest describes an event to fan out to one recipient.
// Subject is the recipe title used in the rendered message.
type NotificationRequest struct {
	RecipientID uint
	SenderID    uint
	Type        models.NotificationType
	RecipeID    *uint
	CommentID   *uint
	Subject     string
}

// Emitter is the side-effect sink the engagement services report to.
// Emit never fails the caller.
type Emitter interface {
	Emit(ctx context.Context, req NotificationRequest)
}

type notificationStore interface {
	store.Users
	store.Notifications
}

type NotificationService struct {
	store     notificationStore
	retention time.Duration
	now       func() time.Time
}

func NewNotificationService(st notificationStore, retention time.Duration) *NotificationService {
	if retention <= 0 {
		retention = models.NotificationRetention
	}
	return &NotificationService{store: st, retention: retention, now: time.Now}
}

// cutoff is the oldest creation time still visible.
func (s *NotificationService) cutoff() time.Time {
	return s.now().Add(-s.retention)
}

func (s *NotificationService) render(ctx context.Context, req NotificationRequest) string {
	sender := "Someone"
	if u, err := s.store.GetUser(ctx, req.SenderID); err == nil {
		sender = u.Name()
	}

	switch req.Type {
	case models.NotificationTypeLike:
		if req.CommentID != nil {
			return fmt.Sprintf("%s liked your comment on %q", sender, req.Subject)
		}
		return fmt.Sprintf("%s liked your recipe %q", sender, req.Subject)
	case models.NotificationTypeComment:
		return fmt.Sprintf("%s commented on your recipe %q", sender, req.Subject)
	case models.NotificationTypeReply:
		return fmt.Sprintf("%s replied to your comment on %q", sender, req.Subject)
	case models.NotificationTypeRating:
		return fmt.Sprintf("%s rated your recipe %q", sender, req.Subject)
	case models.NotificationTypeFollow:
		return fmt.Sprintf("%s started following you", sender)
	}
	return ""
}

// Notify persists a notification. It returns nil, nil when the recipient is
// the sender.
func (s *NotificationService) Notify(ctx context.Context, req NotificationRequest) (*models.Notification, error) {
	if req.RecipientID == 0 || req.SenderID == 0 {
		return nil, invalidf("notification needs a recipient and a sender")
	}
	if req.RecipientID == req.SenderID {
		metrics.NotificationsSuppressed.WithLabelValues(string(req.Type)).Inc()
		return nil, nil
	}
	msg := s.render(ctx, req)
	if msg == "" {
		return nil, invalidf("unknown notification type %q", req.Type)
	}

	n := &models.Notification{
		RecipientID: req.RecipientID,
		SenderID:    req.SenderID,
		Type:        req.Type,
		Message:     msg,
		RecipeID:    req.RecipeID,
		CommentID:   req.CommentID,
		CreatedAt:   s.now(),
	}
	if err := s.store.CreateNotification(ctx, n); err != nil {
		return nil, fmt.Errorf("create notification: %w", err)
	}
	metrics.NotificationsCreated.WithLabelValues(string(req.Type)).Inc()
	return n, nil
}

func (s *NotificationService) Emit(ctx context.Context, req NotificationRequest) {
	if _, err := s.Notify(ctx, req); err != nil {
		metrics.NotificationsFailed.WithLabelValues(string(req.Type)).Inc()
		logging.Ctx(ctx).Warn().Err(err).
			Str("type", string(req.Type)).
			Uint("recipient_id", req.RecipientID).
			Msg("notification dropped")
	}
}

func (s *NotificationService) owned(ctx context.Context, id, caller uint) (*models.Notification, error) {
	n, err := s.store.GetNotification(ctx, id, s.cutoff())
	if err != nil {
		return nil, storeErr(err, "notification")
	}
	if n.RecipientID != caller {
		return nil, forbiddenf("notification %d belongs to another user", id)
	}
	return n, nil
}

// MarkRead is idempotent: reading a read notification returns it unchanged.
func (s *NotificationService) MarkRead(ctx context.Context, id, caller uint) (*models.Notification, error) {
	n, err := s.owned(ctx, id, caller)
	if err != nil {
		return nil, err
	}
	if n.IsRead {
		return n, nil
	}
	now := s.now()
	if err := s.store.SetRead(ctx, id, true, &now); err != nil {
		return nil, storeErr(err, "notification")
	}
	n.IsRead = true
	n.ReadAt = &now
	return n, nil
}

func (s *NotificationService) MarkUnread(ctx context.Context, id, caller uint) (*models.Notification, error) {
	n, err := s.owned(ctx, id, caller)
	if err != nil {
		return nil, err
	}
	if !n.IsRead {
		return n, nil
	}
	if err := s.store.SetRead(ctx, id, false, nil); err != nil {
		return nil, storeErr(err, "notification")
	}
	n.IsRead = false
	n.ReadAt = nil
	return n, nil
}

// MarkAllRead returns how many notifications changed state.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	return s.store.MarkAllRead(ctx, userID, s.cutoff(), s.now())
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	return s.store.CountUnread(ctx, userID, s.cutoff())
}

func (s *NotificationService) List(ctx context.Context, userID uint, page Page, unreadOnly bool) ([]models.Notification, Pagination, error) {
	page = page.Normalize()
	list, total, err := s.store.ListNotifications(ctx, userID, s.cutoff(), unreadOnly, page.Offset(), page.Limit)
	if err != nil {
		return nil, Pagination{}, fmt.Errorf("list notifications: %w", err)
	}
	if list == nil {
		list = []models.Notification{}
	}
	return list, NewPagination(page, total), nil
}

// Purge deletes every notification past the retention window.
func (s *NotificationService) Purge(ctx context.Context) (int64, error) {
	n, err := s.store.Purge(ctx, s.cutoff())
	if err != nil {
		return 0, fmt.Errorf("purge notifications: %w", err)
	}
	metrics.NotificationsPurged.Add(float64(n))
	return n, nil
}
