package routes

import (
	"errors"

	"github.com/gin-gonic/gin"

	"racelink/internal/model"
	"racelink/internal/service/dispatch"
)

// SetupEventHandlers registers join/leave and challenge endpoints
func SetupEventHandlers(router *gin.RouterGroup, deps *Deps) {
	eventGroup := router.Group("/events")
	eventGroup.POST("/:id/join", JoinEvent(deps))
	eventGroup.POST("/:id/leave", LeaveEvent(deps))

	challengeGroup := router.Group("/challenges")
	challengeGroup.GET("", PendingChallenges(deps))
	challengeGroup.POST("", SendChallenge(deps))
	challengeGroup.POST("/:id/respond", RespondChallenge(deps))

	friendGroup := router.Group("/friends")
	friendGroup.GET("", VisibleFriends(deps))
	friendGroup.POST("/:id/invite", InviteFriend(deps))
}

// JoinEvent joins the racer into an event. The join shows up on the map
// immediately and is rolled back if the server rejects it.
func JoinEvent(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := deps.Dispatcher.Join(c.Request.Context(), c.Param("id"))
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
		c.JSON(200, gin.H{
			"status":  "success",
			"message": "Joined event",
		})
	}
}

// LeaveEvent removes the racer from an event
func LeaveEvent(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := deps.Dispatcher.Leave(c.Request.Context(), c.Param("id")); err != nil {
			c.JSON(502, gin.H{
				"status":  "error",
				"message": err.Error(),
			})
			return
		}
		c.JSON(200, gin.H{
			"status":  "success",
			"message": "Left event",
		})
	}
}

// PendingChallenges lists challenges still awaiting a response
func PendingChallenges(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{
			"challenges": deps.Challenges.Pending(),
		})
	}
}

type challengeRequest struct {
	TargetID       string          `json:"target_id"`
	Latitude       float64         `json:"latitude"`
	Longitude      float64         `json:"longitude"`
	RaceType       model.EventType `json:"race_type"`
	DistanceMeters float64         `json:"distance_meters"`
}

// SendChallenge issues a direct race challenge to another racer
func SendChallenge(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req challengeRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.TargetID == "" {
			c.JSON(400, gin.H{
				"status":  "error",
				"message": "target_id and a location are required",
			})
			return
		}
		coord := model.Coordinate{Latitude: req.Latitude, Longitude: req.Longitude}
		challenge, err := deps.Dispatcher.Challenge(c.Request.Context(), req.TargetID, coord, req.RaceType, req.DistanceMeters)
		if err != nil {
			c.JSON(502, gin.H{
				"status":  "error",
				"message": err.Error(),
			})
			return
		}
		c.JSON(200, challenge)
	}
}

type respondRequest struct {
	Accept bool `json:"accept"`
}

// RespondChallenge accepts or declines a pending challenge. Expired
// challenges are rejected locally without a network call.
func RespondChallenge(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req respondRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(400, gin.H{
				"status":  "error",
				"message": "invalid respond payload",
			})
			return
		}
		challenge, err := deps.Dispatcher.RespondChallenge(c.Request.Context(), c.Param("id"), req.Accept)
		if err != nil {
			c.JSON(409, gin.H{
				"status":  "error",
				"message": err.Error(),
			})
			return
		}
		c.JSON(200, challenge)
	}
}

// VisibleFriends lists friends whose location the racer may see
func VisibleFriends(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{
			"friends": deps.Presence.Visible(),
		})
	}
}

type inviteRequest struct {
	Options dispatch.TapOptions `json:"options"`
}

// InviteFriend creates a race at the friend's position and challenges them
func InviteFriend(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req inviteRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(400, gin.H{
				"status":  "error",
				"message": "invalid invite payload",
			})
			return
		}
		event, err := deps.Presence.InviteToRace(c.Request.Context(), c.Param("id"), req.Options)
		if err != nil {
			c.JSON(502, gin.H{
				"status":  "error",
				"message": err.Error(),
			})
			return
		}
		c.JSON(200, event)
	}
}
