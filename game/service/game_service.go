package service

import (
	"context"

	"github.com/wricardo/chat-board-games/game/config"
	"github.com/wricardo/chat-board-games/game/engine"
	"github.com/wricardo/chat-board-games/game/session"
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	StartSession(ctx context.Context, req StartRequest) (*GameView, error)
	GetSession(ctx context.Context, variant engine.Variant, key session.Key) (*GameView, error)
	ListSessions(ctx context.Context) ([]*GameView, error)
	DeleteSession(ctx context.Context, variant engine.Variant, key session.Key) error

	// Game Operations
	ApplyMove(ctx context.Context, req MoveRequest) (*MoveResult, error)

	// Configuration
	ListPresets(ctx context.Context) ([]*config.Preset, error)
}

// PresetProvider resolves named board sizes
type PresetProvider interface {
	Get(variant engine.Variant, name string) (*config.Preset, error)
	List() []*config.Preset
}
