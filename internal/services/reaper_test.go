package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"recipehub/internal/models"
)

func TestReaperPurgesOnStart(t *testing.T) {
	f := newFixture(t)
	a := f.user(t, "a")
	b := f.user(t, "b")
	f.notifications.Emit(f.ctx, NotificationRequest{RecipientID: b.ID, SenderID: a.ID, Type: models.NotificationTypeFollow})
	f.clock.advance(models.NotificationRetention + time.Hour)

	r := NewReaper(f.notifications, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := r.Serve(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Serve err = %v", err)
	}
	if n, _ := f.notifications.Purge(f.ctx); n != 0 {
		t.Errorf("reaper left %d expired notifications", n)
	}
	if r.String() != "notification-reaper" {
		t.Errorf("String = %q", r.String())
	}
}
