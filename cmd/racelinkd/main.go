package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"racelink/internal/api"
	routes "racelink/internal/api/handlers"
	"racelink/internal/apiclient"
	"racelink/internal/config"
	"racelink/internal/geo"
	"racelink/internal/logging"
	"racelink/internal/model"
	"racelink/internal/postgres"
	"racelink/internal/redis"
	"racelink/internal/service/dispatch"
	"racelink/internal/service/ephemeral"
	"racelink/internal/service/location"
	"racelink/internal/service/presence"
	"racelink/internal/service/sync"
	"racelink/internal/spatial"
	"racelink/internal/stream"
	"racelink/internal/worker"
)

func main() {
	setupLogging()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	initializeDatabaseAndCache(cfg)
	defer closeConnections()

	ctx, cancel := context.WithCancel(context.Background())
	setupSignalHandler(cancel)

	deps := initializeServices(ctx, cfg)

	worker.StartAllWorkers(ctx, deps.Engine, deps.Live, deps.Tracker,
		deps.Police, deps.Challenges)

	runAPIServer(cfg, deps)
}

func setupLogging() {
	logFile, err := os.OpenFile("racelink.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}
	// The file stays open for the whole process lifetime.

	multiWriter := io.MultiWriter(os.Stdout, logFile)
	log.SetOutput(multiWriter)
}

func initializeDatabaseAndCache(cfg config.Config) {
	postgres.Init(cfg.DBUrl)
	redis.Init(cfg.RedisUrl)
}

func initializeServices(ctx context.Context, cfg config.Config) *routes.Deps {
	logger := logging.NewStdLogger()

	live := apiclient.NewClient(cfg.LiveAPIUrl, cfg.APIToken)
	maps := apiclient.NewMapsClient(cfg.MapsAPIUrl, cfg.APIToken)

	unit := geo.UnitMPH
	if cfg.SpeedUnit == string(geo.UnitKMH) {
		unit = geo.UnitKMH
	}

	source := location.NewSimSource(
		model.Coordinate{Latitude: config.DefaultLatitude, Longitude: config.DefaultLongitude},
		nil, 0, time.Second)
	tracker := location.NewTracker(source, unit, logger)
	tracker.Start(ctx)

	police := ephemeral.NewPoliceStore(redis.GetClient(), logger)
	if err := police.Restore(ctx); err != nil {
		log.Printf("Police marker restore failed: %v", err)
	}
	destination := ephemeral.NewDestinationStore()
	challenges := ephemeral.NewChallengeStore()
	overlay := dispatch.NewOverlay()
	hub := stream.NewHub()

	deps := &routes.Deps{
		Tracker:     tracker,
		Police:      police,
		Destination: destination,
		Challenges:  challenges,
		Routes:      postgres.NewRouteRepo(postgres.GetDB()),
		Maps:        maps,
		Live:        live,
		Hub:         hub,
		Log:         logger,
	}

	deps.Engine = sync.NewEngine(live, tracker.Latest, cfg.RadiusKm, logger,
		sync.WithExtraEntities(policeRefs(police)),
		sync.WithAfterApply(func() {
			overlay.Reset()
			hub.Broadcast(deps.Snapshot())
		}),
	)
	deps.Dispatcher = dispatch.NewDispatcher(live, deps.Engine, deps.Engine,
		police, destination, challenges, overlay, logger)
	deps.Presence = presence.NewLayer(deps.Engine, deps.Dispatcher, logger)

	return deps
}

func policeRefs(police *ephemeral.PoliceStore) func() []spatial.EntityRef {
	return func() []spatial.EntityRef {
		markers := police.Active()
		refs := make([]spatial.EntityRef, 0, len(markers))
		for _, m := range markers {
			refs = append(refs, spatial.EntityRef{
				Kind:      spatial.KindPolice,
				ID:        m.ID,
				Latitude:  m.Latitude,
				Longitude: m.Longitude,
			})
		}
		return refs
	}
}

func runAPIServer(cfg config.Config, deps *routes.Deps) {
	r := gin.Default()
	api.SetupRouter(r, deps)
	r.Run(cfg.Port)
}

func closeConnections() {
	if err := postgres.Close(); err != nil {
		log.Printf("Error closing PostgreSQL connection: %v", err)
	}

	if err := redis.Close(); err != nil {
		log.Printf("Error closing Redis connection: %v", err)
	}

	log.Println("PostgreSQL and Redis connections closed successfully")
}

func setupSignalHandler(cancel context.CancelFunc) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		log.Println("Shutdown signal received, closing connections...")
		cancel()
		closeConnections()
		os.Exit(0)
	}()
}
