package http

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"paper-soccer/internal/api/ws"
	"paper-soccer/internal/config"
)

// NewRouter wires the presentation API. ctx is the server lifetime; links
// started through the API live at most that long.
func NewRouter(ctx context.Context, s MatchStore, hub *ws.Hub, cfg config.Config) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLog())

	// WebSocket for FE live updates
	r.GET("/ws", hub.HandleWS)

	// --- MATCH ENDPOINTS ---
	r.POST("/matches", CreateMatchHandler(s, hub, cfg))
	r.GET("/matches", ListMatchesHandler(s))
	r.GET("/matches/:id", GetMatchHandler(s))
	r.POST("/matches/:id/abort", AbortHandler(s))

	// --- GAME ENDPOINTS ---
	r.GET("/matches/:id/legal", LegalHandler(s))
	r.POST("/matches/:id/move", MoveHandler(s))
	r.POST("/matches/:id/computer-move", ComputerMoveHandler(s))

	// --- LINK ENDPOINTS ---
	r.POST("/matches/:id/link", LinkHandler(ctx, s, cfg))
	r.DELETE("/matches/:id/link", CancelLinkHandler(s))

	// --- CONFIG ENDPOINTS ---
	r.GET("/config", NewConfigHandler(cfg).GetDefaultsHandler)

	return r
}

// requestLog replaces gin's default logger with zerolog.
func requestLog() gin.HandlerFunc {
	l := log.With().Str("component", "http").Logger()
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		ev := l.Debug()
		if c.Writer.Status() >= 500 {
			ev = l.Warn()
		}
		ev.Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("took", time.Since(start)).
			Msg("request")
	}
}
