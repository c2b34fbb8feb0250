package services

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Reaper periodically deletes expired notifications. It runs as a suture
// service under the server supervisor.
type Reaper struct {
	notifications *NotificationService
	interval      time.Duration
}

func NewReaper(n *NotificationService, interval time.Duration) *Reaper {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Reaper{notifications: n, interval: interval}
}

// Serve purges once at start and then on every tick until ctx is done.
func (r *Reaper) Serve(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		r.runOnce(ctx)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (r *Reaper) runOnce(ctx context.Context) {
	n, err := r.notifications.Purge(ctx)
	if err != nil {
		if ctx.Err() == nil {
			log.Error().Err(err).Msg("Notification purge failed")
		}
		return
	}
	if n > 0 {
		log.Info().Int64("purged", n).Msg("Expired notifications purged")
	}
}

func (r *Reaper) String() string { return "notification-reaper" }
