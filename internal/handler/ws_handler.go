package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/leolibre/leolibre-backend/internal/middleware"
	"github.com/leolibre/leolibre-backend/internal/model"
	"github.com/leolibre/leolibre-backend/internal/service"
	ws "github.com/leolibre/leolibre-backend/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams live club rankings over WebSocket.
type WSHandler struct {
	rankingService *service.RankingService
	log            zerolog.Logger
	upgrader       websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(rankingService *service.RankingService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		rankingService: rankingService,
		log:            log.With().Str("component", "ws_handler").Logger(),
		upgrader:       buildUpgrader(allowedOrigins),
	}
}

// ClubRankingStream godoc
// WS /ws/v1/clubs/:club_id/ranking
// Sends the current ranking on connect, then a fresh snapshot every time a
// submission is graded in the club.
func (h *WSHandler) ClubRankingStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	clubID, ok := pathID(c, "club_id")
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().
		Int64("user_id", claims.UserID).
		Int64("club_id", clubID).
		Logger()

	wsLog.Info().Msg("Ranking stream connected")

	ctx := c.Request.Context()

	// Initial snapshot so the client never starts blank.
	entries, err := h.rankingService.ClubRanking(ctx, clubID)
	if err != nil {
		wsLog.Error().Err(err).Msg("Initial ranking load failed")
		ws.WriteError(conn, "ranking unavailable")
		return
	}
	if err := ws.WriteTyped(conn, ws.RankingEvent{Event: ws.EventRanking, ClubID: clubID, Entries: entries}); err != nil {
		return
	}

	sub := h.rankingService.SubscribeClubRanking(ctx, clubID)
	defer sub.Close()

	// Reader drains client frames (pings, closes) so the connection's
	// close state propagates.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			var msg ws.RequestEnvelope
			if err := ws.ReadJSON(conn, &msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					wsLog.Warn().Err(err).Msg("Unexpected close")
				} else {
					wsLog.Debug().Msg("Connection closed")
				}
				return
			}
			if msg.Action == ws.ActionPing {
				ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong})
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case msg, open := <-sub.Channel():
			if !open {
				return
			}
			var update model.RankingUpdate
			if err := json.Unmarshal([]byte(msg.Payload), &update); err != nil {
				wsLog.Error().Err(err).Msg("Invalid ranking payload")
				continue
			}
			if err := ws.WriteTyped(conn, ws.RankingEvent{Event: ws.EventRanking, ClubID: update.ClubID, Entries: update.Entries}); err != nil {
				return
			}
		}
	}
}
