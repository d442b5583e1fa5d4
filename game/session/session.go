package session

import (
	"time"

	"github.com/wricardo/chat-board-games/game/engine"
)

// Participant counts the accepted moves of one player
type Participant struct {
	Identity
	Steps int `json:"steps"`
}

// Session is one running game. It is owned by a Store and must only be
// touched inside Store.WithSession or a GetOrCreate factory.
type Session struct {
	Key       Key
	Variant   engine.Variant
	Board     engine.Board
	Binding   Binding
	CreatedAt time.Time
	UpdatedAt time.Time
	StartedAt time.Time

	// Trigger is the player whose move ended the game.
	Trigger *Identity

	participants []Participant
}

// RecordMove credits an accepted move to id
func (s *Session) RecordMove(id Identity, at time.Time) {
	if s.StartedAt.IsZero() {
		s.StartedAt = at
	}
	s.UpdatedAt = at

	found := false
	for i := range s.participants {
		if s.participants[i].ID == id.ID {
			s.participants[i].Steps++
			found = true
			break
		}
	}
	if !found {
		s.participants = append(s.participants, Participant{Identity: id, Steps: 1})
	}

	if s.Board.Evaluate().Status.Terminal() {
		c := id
		s.Trigger = &c
	}
}

// Participants returns a copy of the move counts in first-move order
func (s *Session) Participants() []Participant {
	return append([]Participant(nil), s.participants...)
}

// Snapshot is a copy of a session that is safe to use after the store lock
// is released.
type Snapshot struct {
	Key          Key                 `json:"key"`
	Variant      engine.Variant      `json:"variant"`
	Render       *engine.RenderModel `json:"render"`
	Players      [2]*Identity        `json:"players"`
	Participants []Participant       `json:"participants,omitempty"`
	Trigger      *Identity           `json:"trigger,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
	StartedAt    time.Time           `json:"started_at,omitempty"`
}

// Snapshot extracts everything a transport needs to render the session
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		Key:          s.Key,
		Variant:      s.Variant,
		Render:       s.Board.Render(),
		Players:      s.Binding.Players(),
		Participants: s.Participants(),
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
		StartedAt:    s.StartedAt,
	}
	if s.Trigger != nil {
		c := *s.Trigger
		snap.Trigger = &c
	}
	return snap
}
