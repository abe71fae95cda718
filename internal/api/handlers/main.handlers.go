package routes

import (
	"net/http"

	"github.com/coder/websocket"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"racelink/internal/logging"
	"racelink/internal/stream"
	"racelink/internal/util"
)

// SetupMainHandlers registers health, status, metrics and the live
// WebSocket endpoint
func SetupMainHandlers(router *gin.RouterGroup, deps *Deps) {
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.GET("/api/status", GetStatus(deps))
	router.GET("/live/ws", LiveSocket(deps))
}

// GetStatus reports the sync engine health plus the upstream live counts
func GetStatus(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp := gin.H{
			"sync":    deps.Engine.Status(),
			"viewers": deps.Hub.ClientCount(),
		}
		if deps.Live != nil {
			if summary, err := deps.Live.LiveStatus(c.Request.Context()); err == nil {
				resp["live"] = summary
			}
		}
		c.JSON(200, resp)
	}
}

// LiveSocket upgrades the connection and registers it with the hub. Each
// applied sync cycle pushes a fresh map snapshot to every client.
func LiveSocket(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
			InsecureSkipVerify: true,
		})
		if err != nil {
			c.Status(http.StatusBadRequest)
			return
		}

		client := &stream.Client{
			ID:   util.ShortUUID(),
			Conn: conn,
			Send: make(chan []byte, 16),
		}
		deps.Hub.Register(client)
		deps.Log.Log(logging.LevelInfo, "stream", "client connected", map[string]any{"id": client.ID})

		defer func() {
			deps.Hub.Unregister(client.ID)
			conn.Close(websocket.StatusNormalClosure, "")
		}()

		client.WritePump(c.Request.Context())
	}
}
