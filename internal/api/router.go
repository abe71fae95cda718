package api

import (
	"github.com/gin-gonic/gin"

	routes "racelink/internal/api/handlers"
)

// SetupRouter initializes all application routes
func SetupRouter(r *gin.Engine, deps *routes.Deps) {
	// API group
	api := r.Group("/api")

	// Health, status, metrics and the live socket
	routes.SetupMainHandlers(r.Group(""), deps)

	// Map state, taps, filters and police mode
	routes.SetupMapHandlers(api, deps)

	// Events, challenges and friends
	routes.SetupEventHandlers(api, deps)

	// Navigation destination
	routes.SetupDestinationHandlers(api, deps)

	// Route tracking
	routes.SetupTrackHandlers(api, deps)
}
