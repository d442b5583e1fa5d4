package service

import (
	"time"

	"github.com/wricardo/chat-board-games/game/engine"
	"github.com/wricardo/chat-board-games/game/session"
)

// StartRequest opens a game under a key. Rows, Cols and Mines override
// the matching fields of Preset, and are ignored by fixed-size games. A nil
// Mines keeps the preset's density on the requested size.
type StartRequest struct {
	Variant engine.Variant `json:"variant"`
	Key     session.Key    `json:"key"`
	Preset  string         `json:"preset,omitempty"`
	Rows    int            `json:"rows,omitempty"`
	Cols    int            `json:"cols,omitempty"`
	Mines   *int           `json:"mines,omitempty"`
}

// MoveRequest is one click by one player. Role is an optional hint naming
// the seat the player believes is to move.
type MoveRequest struct {
	Variant engine.Variant   `json:"variant"`
	Key     session.Key      `json:"key"`
	Player  session.Identity `json:"player"`
	Role    engine.Role      `json:"role,omitempty"`
	Move    engine.Move      `json:"move"`
}

// GameView is the transport-facing copy of a session
type GameView struct {
	Key          string                `json:"key"`
	ChatID       int64                 `json:"chat_id"`
	MessageID    int64                 `json:"message_id"`
	Variant      engine.Variant        `json:"variant"`
	Render       *engine.RenderModel   `json:"render"`
	Players      [2]*session.Identity  `json:"players"`
	Participants []session.Participant `json:"participants,omitempty"`
	Trigger      *session.Identity     `json:"trigger,omitempty"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
	StartedAt    *time.Time            `json:"started_at,omitempty"`
	Created      bool                  `json:"created,omitempty"`
	// Watchers counts live WebSocket subscribers. Only the API fills it.
	Watchers int `json:"watchers,omitempty"`
}

// MoveResult contains the board after an accepted move
type MoveResult struct {
	GameView

	// Role is the seat the move was played for.
	Role    engine.Role    `json:"role,omitempty"`
	Outcome engine.Outcome `json:"outcome"`
	Ended   bool           `json:"ended"`
	Passed  bool           `json:"passed,omitempty"`
}

func newGameView(snap session.Snapshot) *GameView {
	v := &GameView{
		Key:          snap.Key.String(),
		ChatID:       snap.Key.ChatID,
		MessageID:    snap.Key.MessageID,
		Variant:      snap.Variant,
		Render:       snap.Render,
		Players:      snap.Players,
		Participants: snap.Participants,
		Trigger:      snap.Trigger,
		CreatedAt:    snap.CreatedAt,
		UpdatedAt:    snap.UpdatedAt,
	}
	if !snap.StartedAt.IsZero() {
		t := snap.StartedAt
		v.StartedAt = &t
	}
	return v
}
