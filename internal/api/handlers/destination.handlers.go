package routes

import (
	"github.com/gin-gonic/gin"

	"racelink/internal/logging"
	"racelink/internal/model"
)

// SetupDestinationHandlers registers the navigation destination endpoints
func SetupDestinationHandlers(router *gin.RouterGroup, deps *Deps) {
	destGroup := router.Group("/destination")
	destGroup.GET("", GetDestination(deps))
	destGroup.POST("", SetDestination(deps))
	destGroup.DELETE("", ClearDestination(deps))
	destGroup.GET("/directions", DestinationDirections(deps))
}

// GetDestination returns the active destination, if any
func GetDestination(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		dest, ok := deps.Destination.Get()
		if !ok {
			c.JSON(404, gin.H{
				"status":  "error",
				"message": "no destination set",
			})
			return
		}
		c.JSON(200, dest)
	}
}

type destinationRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address"`
}

// SetDestination sets the navigation destination, replacing any previous
// one. When no address is given the coordinates are reverse geocoded.
func SetDestination(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req destinationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(400, gin.H{
				"status":  "error",
				"message": "invalid destination payload",
			})
			return
		}

		address := req.Address
		if address == "" && deps.Maps != nil {
			resolved, err := deps.Maps.ReverseGeocode(c.Request.Context(), req.Latitude, req.Longitude)
			if err != nil {
				deps.Log.Log(logging.LevelWarn, "destination", "reverse geocode failed", map[string]any{"error": err.Error()})
			} else {
				address = resolved
			}
		}

		dest := model.Destination{
			Latitude:  req.Latitude,
			Longitude: req.Longitude,
			Address:   address,
		}
		deps.Destination.Set(dest)
		c.JSON(200, dest)
	}
}

// ClearDestination removes the active destination
func ClearDestination(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		deps.Destination.Clear()
		c.JSON(200, gin.H{
			"status":  "success",
			"message": "Destination cleared",
		})
	}
}

// DestinationDirections returns a driving route from the racer's current
// position to the active destination
func DestinationDirections(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		dest, ok := deps.Destination.Get()
		if !ok {
			c.JSON(404, gin.H{
				"status":  "error",
				"message": "no destination set",
			})
			return
		}
		if deps.Maps == nil {
			c.JSON(503, gin.H{
				"status":  "error",
				"message": "maps service not configured",
			})
			return
		}

		from := deps.Tracker.Latest().Coordinate()
		to := model.Coordinate{Latitude: dest.Latitude, Longitude: dest.Longitude}
		directions, err := deps.Maps.GetDirections(c.Request.Context(), from, to, "driving")
		if err != nil {
			c.JSON(502, gin.H{
				"status":  "error",
				"message": err.Error(),
			})
			return
		}
		c.JSON(200, directions)
	}
}
