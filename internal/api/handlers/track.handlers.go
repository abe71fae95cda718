package routes

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/paulmach/orb/geojson"

	"racelink/internal/logging"
	"racelink/internal/model"
	"racelink/internal/util"
)

// SetupTrackHandlers registers the route tracking endpoints
func SetupTrackHandlers(router *gin.RouterGroup, deps *Deps) {
	trackGroup := router.Group("/track")
	trackGroup.POST("/start", StartTracking(deps))
	trackGroup.POST("/stop", StopTracking(deps))
	trackGroup.GET("/route", CurrentRoute(deps))
	trackGroup.GET("/history", RouteHistory(deps))
	trackGroup.GET("/history/:id", RouteByID(deps))
}

// StartTracking begins recording the racer's route
func StartTracking(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		deps.Tracker.StartTracking()
		c.JSON(200, gin.H{
			"status":  "success",
			"message": "Tracking started",
		})
	}
}

// StopTracking ends the recording and persists the completed route
func StopTracking(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		route := deps.Tracker.StopTracking()

		rec := model.RouteRecord{
			ID:             util.ShortUUID(),
			DistanceMeters: route.DistanceMeters,
			StartedAt:      route.StartedAt,
			EndedAt:        route.EndedAt,
		}
		if elapsed := route.EndedAt.Sub(route.StartedAt); elapsed > 0 {
			rec.AvgSpeedMPS = route.DistanceMeters / elapsed.Seconds()
		}
		if err := rec.SetLine(route.Line); err != nil {
			deps.Log.Log(logging.LevelWarn, "track", "route encode failed", map[string]any{"error": err.Error()})
		}

		if deps.Routes != nil && len(route.Line) > 0 {
			if err := deps.Routes.Save(&rec); err != nil {
				deps.Log.Log(logging.LevelError, "track", "route save failed", map[string]any{"error": err.Error()})
			}
		}

		c.JSON(200, rec)
	}
}

// CurrentRoute returns the in-progress route as GeoJSON
func CurrentRoute(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		line := deps.Tracker.RoutePoints()
		f := geojson.NewFeature(line)
		f.Properties["tracking"] = deps.Tracker.Tracking()
		f.Properties["point_count"] = len(line)
		c.JSON(200, f)
	}
}

// RouteHistory lists recently persisted routes
func RouteHistory(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		if deps.Routes == nil {
			c.JSON(503, gin.H{
				"status":  "error",
				"message": "route storage not configured",
			})
			return
		}

		limit := 20
		if v := c.Query("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				limit = n
			}
		}

		records, err := deps.Routes.Recent(limit)
		if err != nil {
			c.JSON(500, gin.H{
				"status":  "error",
				"message": err.Error(),
			})
			return
		}
		c.JSON(200, gin.H{"routes": records})
	}
}

// RouteByID returns one persisted route with its geometry expanded
func RouteByID(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		if deps.Routes == nil {
			c.JSON(503, gin.H{
				"status":  "error",
				"message": "route storage not configured",
			})
			return
		}

		rec, err := deps.Routes.ByID(c.Param("id"))
		if err != nil {
			c.JSON(404, gin.H{
				"status":  "error",
				"message": "route not found",
			})
			return
		}

		line, err := rec.Line()
		if err != nil {
			c.JSON(500, gin.H{
				"status":  "error",
				"message": err.Error(),
			})
			return
		}

		f := geojson.NewFeature(line)
		f.Properties["id"] = rec.ID
		f.Properties["distance_meters"] = rec.DistanceMeters
		f.Properties["avg_speed_mps"] = rec.AvgSpeedMPS
		f.Properties["started_at"] = rec.StartedAt.Format(time.RFC3339)
		f.Properties["ended_at"] = rec.EndedAt.Format(time.RFC3339)
		c.JSON(200, f)
	}
}
