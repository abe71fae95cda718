package worker

import (
	"context"
	"log"
	"time"

	"racelink/internal/config"
)

// Sweeper prunes expired ephemeral entities; the count removed is returned
type Sweeper interface {
	Sweep() int
}

// StartExpiryWorker periodically sweeps police markers and challenges.
// The sweep is an optimization: liveness is re-derived from timestamps on
// every read, so a missed tick never extends an entity's life.
func StartExpiryWorker(ctx context.Context, sweepers ...Sweeper) {
	ticker := time.NewTicker(config.ExpirySweepInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				for _, s := range sweepers {
					s.Sweep()
				}
			}
		}
	}()

	log.Println("Expiry worker started with interval:", config.ExpirySweepInterval)
}
