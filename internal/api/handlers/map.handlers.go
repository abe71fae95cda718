package routes

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"racelink/internal/model"
	"racelink/internal/service/dispatch"
)

// SetupMapHandlers registers the live map endpoints
func SetupMapHandlers(router *gin.RouterGroup, deps *Deps) {
	mapGroup := router.Group("/map")

	mapGroup.GET("/state", GetMapState(deps))
	mapGroup.GET("/state.geojson", MapStateGeoJSON(deps))
	mapGroup.GET("/viewport", MapViewport(deps))
	mapGroup.POST("/tap", MapTap(deps))
	mapGroup.GET("/filters", GetFilters(deps))
	mapGroup.PUT("/filters", PutFilters(deps))
	mapGroup.POST("/police-mode", ArmPoliceMode(deps))
}

// GetMapState returns the composed snapshot the map renders from
func GetMapState(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, deps.Snapshot())
	}
}

// MapStateGeoJSON returns the same snapshot as a GeoJSON feature
// collection for tools that consume standard geo formats
func MapStateGeoJSON(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		state := deps.Snapshot()
		fc := geojson.NewFeatureCollection()

		self := geojson.NewFeature(orb.Point{state.Self.Longitude, state.Self.Latitude})
		self.Properties["kind"] = "self"
		self.Properties["speed"] = state.Speed
		fc.Append(self)

		for _, p := range state.Players {
			f := geojson.NewFeature(orb.Point{p.Location.Longitude, p.Location.Latitude})
			f.Properties["kind"] = "player"
			f.Properties["id"] = p.ID
			f.Properties["username"] = p.Username
			f.Properties["status"] = string(p.Status)
			fc.Append(f)
		}
		for _, e := range state.Events {
			f := geojson.NewFeature(orb.Point{e.Location.Longitude, e.Location.Latitude})
			f.Properties["kind"] = "event"
			f.Properties["id"] = e.ID
			f.Properties["title"] = e.Title
			f.Properties["type"] = string(e.Type)
			fc.Append(f)
		}
		for _, fr := range state.Friends {
			f := geojson.NewFeature(orb.Point{fr.Position.Longitude, fr.Position.Latitude})
			f.Properties["kind"] = "friend"
			f.Properties["id"] = fr.RacerID
			f.Properties["username"] = fr.Profile.DisplayName
			fc.Append(f)
		}
		for _, m := range state.Police {
			f := geojson.NewFeature(orb.Point{m.Longitude, m.Latitude})
			f.Properties["kind"] = "police"
			f.Properties["id"] = m.ID
			fc.Append(f)
		}
		if state.Destination != nil {
			f := geojson.NewFeature(orb.Point{state.Destination.Longitude, state.Destination.Latitude})
			f.Properties["kind"] = "destination"
			f.Properties["address"] = state.Destination.Address
			fc.Append(f)
		}

		c.JSON(200, fc)
	}
}

// MapViewport returns the indexed entities inside a bounding box
func MapViewport(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		minLat, err1 := strconv.ParseFloat(c.Query("min_lat"), 64)
		minLng, err2 := strconv.ParseFloat(c.Query("min_lng"), 64)
		maxLat, err3 := strconv.ParseFloat(c.Query("max_lat"), 64)
		maxLng, err4 := strconv.ParseFloat(c.Query("max_lng"), 64)
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
			c.JSON(400, gin.H{
				"status":  "error",
				"message": "min_lat, min_lng, max_lat and max_lng are required",
			})
			return
		}
		c.JSON(200, gin.H{
			"entities": deps.Engine.Viewport(minLat, minLng, maxLat, maxLng),
		})
	}
}

type tapRequest struct {
	Latitude  float64             `json:"latitude"`
	Longitude float64             `json:"longitude"`
	Options   dispatch.TapOptions `json:"options"`
}

// MapTap routes a single map interaction to its workflow
func MapTap(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req tapRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(400, gin.H{
				"status":  "error",
				"message": "invalid tap payload",
			})
			return
		}

		coord := model.Coordinate{Latitude: req.Latitude, Longitude: req.Longitude}
		result, err := deps.Dispatcher.HandleTap(c.Request.Context(), coord, req.Options)
		if err != nil {
			status := 502
			if errors.Is(err, dispatch.ErrEventFull) {
				status = 409
			}
			c.JSON(status, gin.H{
				"status":  "error",
				"message": err.Error(),
			})
			return
		}
		c.JSON(200, result)
	}
}

// GetFilters returns the active map filters
func GetFilters(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, deps.Engine.Filters())
	}
}

// PutFilters replaces the map filters. The new filters apply to the
// already-cached collections immediately; no resync is needed.
func PutFilters(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var filters model.MapFilters
		if err := c.ShouldBindJSON(&filters); err != nil {
			c.JSON(400, gin.H{
				"status":  "error",
				"message": "invalid filters payload",
			})
			return
		}
		deps.Engine.SetFilters(filters)
		c.JSON(200, gin.H{
			"status":  "success",
			"message": "Filters updated",
		})
	}
}

// ArmPoliceMode arms the one-shot police reporting mode
func ArmPoliceMode(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		deps.Dispatcher.ArmPoliceMode()
		c.JSON(200, gin.H{
			"status":  "success",
			"message": "Police mode armed, next tap drops a marker",
		})
	}
}
