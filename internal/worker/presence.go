package worker

import (
	"context"
	"log"
	"time"

	"racelink/internal/config"
	"racelink/internal/model"
	"racelink/internal/service/location"
)

// PresencePublisher pushes the racer's own position upstream
type PresencePublisher interface {
	PublishPresence(ctx context.Context, status model.PlayerStatus, s model.LocationSample) error
}

// StartPresenceWorker periodically publishes the racer's latest sample.
// Publish failures are logged and retried on the next tick.
func StartPresenceWorker(ctx context.Context, pub PresencePublisher, tracker *location.Tracker) {
	ticker := time.NewTicker(config.PresencePublishInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				status := model.PlayerOnline
				if tracker.Tracking() {
					status = model.PlayerRacing
				}
				if err := pub.PublishPresence(ctx, status, tracker.Latest()); err != nil {
					log.Printf("Presence publish failed: %v", err)
				}
			}
		}
	}()

	log.Println("Presence worker started with interval:", config.PresencePublishInterval)
}
