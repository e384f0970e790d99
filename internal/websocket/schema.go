package websocket

import "github.com/leolibre/leolibre-backend/internal/model"

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionPing Action = "ping"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventRanking Event = "ranking"
	EventError   Event = "error"
	EventPong    Event = "pong"
)

// RankingEvent carries a full club ranking snapshot. The server sends one
// on connect and another every time a submission is graded.
type RankingEvent struct {
	Event   Event                    `json:"event"`
	ClubID  int64                    `json:"club_id"`
	Entries []model.ClubRankingEntry `json:"entries"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
