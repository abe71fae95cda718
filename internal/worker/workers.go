package worker

import (
	"context"
	"log"

	"racelink/internal/service/location"
	"racelink/internal/service/sync"
)

// StartAllWorkers initializes and starts all background workers
func StartAllWorkers(ctx context.Context, engine *sync.Engine, pub PresencePublisher, tracker *location.Tracker, sweepers ...Sweeper) {
	log.Println("Starting all workers...")

	StartSyncWorker(ctx, engine)
	StartPresenceWorker(ctx, pub, tracker)
	StartExpiryWorker(ctx, sweepers...)

	log.Println("All workers started")
}
