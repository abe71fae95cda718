package worker

import (
	"context"
	"log"
	"time"

	"racelink/internal/config"
	"racelink/internal/service/sync"
)

// StartSyncWorker runs the proximity engine: one synchronous cycle up front
// so the map is never empty for a full period, then the fixed interval plus
// out-of-band refresh requests. Cancelling ctx stops the ticker so no timer
// keeps fetching after the map view is gone.
func StartSyncWorker(ctx context.Context, engine *sync.Engine) {
	engine.SyncNow(ctx)

	ticker := time.NewTicker(config.SyncInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				engine.SyncNow(ctx)
			case <-engine.RefreshC():
				engine.SyncNow(ctx)
			}
		}
	}()

	log.Println("Sync worker started with interval:", config.SyncInterval)
}
