package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/wricardo/chat-board-games/game/config"
	"github.com/wricardo/chat-board-games/game/engine"
	"github.com/wricardo/chat-board-games/game/session"
)

const tracerName = "github.com/wricardo/chat-board-games/game/service"

var (
	ErrSessionNotFound = session.ErrSessionNotFound
	ErrPlayerRequired  = engine.NewError(engine.CodeWrongPlayer, "player_required", "player id is required")
)

// Option configures the game service
type Option func(*gameServiceImpl)

// WithLogger sets the service logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *gameServiceImpl) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithTracer replaces the global tracer
func WithTracer(tracer trace.Tracer) Option {
	return func(s *gameServiceImpl) {
		s.tracer = tracer
	}
}

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions *session.Registry
	presets  PresetProvider
	logger   *zap.Logger
	tracer   trace.Tracer
}

// NewGameService creates a new game service instance
func NewGameService(sessions *session.Registry, presets PresetProvider, opts ...Option) GameService {
	s := &gameServiceImpl{
		sessions: sessions,
		presets:  presets,
		logger:   zap.NewNop(),
		tracer:   otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *gameServiceImpl) store(variant engine.Variant) (*session.Store, error) {
	st, ok := s.sessions.Store(variant)
	if !ok {
		return nil, engine.WrapError(engine.CodeInvalidConfig, fmt.Sprintf("unknown game %q", variant), nil)
	}
	return st, nil
}

func (s *gameServiceImpl) startSpan(ctx context.Context, name string, variant engine.Variant, key session.Key) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, name, trace.WithAttributes(
		attribute.String("game.variant", string(variant)),
		attribute.String("game.key", key.String()),
	))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// options resolves the named or default preset for the sized games, then
// overlays the fields the request sets explicitly
func (s *gameServiceImpl) options(req StartRequest) (engine.Options, error) {
	if req.Variant != engine.ConnectFour && req.Variant != engine.Minesweeper {
		return engine.Options{}, nil
	}

	var opts engine.Options
	if s.presets != nil {
		p, err := s.presets.Get(req.Variant, req.Preset)
		if err != nil {
			return engine.Options{}, engine.WrapError(engine.CodeInvalidConfig, "failed to resolve preset", err)
		}
		opts = p.Options()
	}

	fromCells := opts.Rows * opts.Cols
	if req.Rows != 0 {
		opts.Rows = req.Rows
	}
	if req.Cols != 0 {
		opts.Cols = req.Cols
	}
	if req.Variant != engine.Minesweeper {
		opts.Mines = nil
		return opts, nil
	}

	switch cells := opts.Rows * opts.Cols; {
	case req.Mines != nil:
		opts.Mines = engine.MineCount(*req.Mines)
	case opts.Mines != nil && cells != fromCells:
		opts.Mines = engine.MineCount(scaleMines(*opts.Mines, fromCells, cells))
	}
	return opts, nil
}

// scaleMines keeps a preset's mine density when the board is resized
func scaleMines(mines, fromCells, toCells int) int {
	if fromCells <= 0 || toCells <= 1 {
		return engine.DefaultMines(1, toCells)
	}
	n := mines * toCells / fromCells
	if n < 1 && mines > 0 {
		n = 1
	}
	if n >= toCells {
		n = toCells - 1
	}
	return n
}

// StartSession opens a session for the key, or returns the live one
func (s *gameServiceImpl) StartSession(ctx context.Context, req StartRequest) (view *GameView, err error) {
	_, span := s.startSpan(ctx, "GameService.StartSession", req.Variant, req.Key)
	defer func() { endSpan(span, err) }()

	store, err := s.store(req.Variant)
	if err != nil {
		return nil, err
	}
	opts, err := s.options(req)
	if err != nil {
		return nil, err
	}

	snap, created, err := store.GetOrCreate(req.Key, func() (engine.Board, error) {
		return engine.NewBoard(req.Variant, opts)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", req.Variant, err)
	}

	if created {
		s.logger.Info("game started",
			zap.String("variant", string(req.Variant)),
			zap.String("key", req.Key.String()),
			zap.Int("rows", snap.Render.Rows),
			zap.Int("cols", snap.Render.Cols))
	}

	view = newGameView(snap)
	view.Created = created
	return view, nil
}

// GetSession returns the current state of a live session
func (s *gameServiceImpl) GetSession(ctx context.Context, variant engine.Variant, key session.Key) (view *GameView, err error) {
	_, span := s.startSpan(ctx, "GameService.GetSession", variant, key)
	defer func() { endSpan(span, err) }()

	store, err := s.store(variant)
	if err != nil {
		return nil, err
	}
	snap, err := store.Get(key)
	if err != nil {
		return nil, err
	}
	return newGameView(snap), nil
}

// ListSessions returns every live session across all games, oldest first
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*GameView, error) {
	_, span := s.tracer.Start(ctx, "GameService.ListSessions")
	defer span.End()

	var snaps []session.Snapshot
	for _, st := range s.sessions.Stores() {
		snaps = append(snaps, st.Snapshots()...)
	}

	result := make([]*GameView, 0, len(snaps))
	for _, snap := range snaps {
		result = append(result, newGameView(snap))
	}
	sortViews(result)

	span.SetAttributes(attribute.Int("game.sessions", len(result)))
	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, variant engine.Variant, key session.Key) (err error) {
	_, span := s.startSpan(ctx, "GameService.DeleteSession", variant, key)
	defer func() { endSpan(span, err) }()

	store, err := s.store(variant)
	if err != nil {
		return err
	}
	if !store.Remove(key) {
		return ErrSessionNotFound
	}

	s.logger.Info("game deleted",
		zap.String("variant", string(variant)),
		zap.String("key", key.String()))
	return nil
}

// ApplyMove plays one move for the seat whose turn it is. The first player
// to move for an empty seat claims it, but only if the move is accepted.
func (s *gameServiceImpl) ApplyMove(ctx context.Context, req MoveRequest) (result *MoveResult, err error) {
	_, span := s.startSpan(ctx, "GameService.ApplyMove", req.Variant, req.Key)
	span.SetAttributes(
		attribute.String("game.player", req.Player.ID),
		attribute.Int("game.row", req.Move.Row),
		attribute.Int("game.col", req.Move.Col),
	)
	defer func() { endSpan(span, err) }()

	if req.Player.ID == "" {
		return nil, ErrPlayerRequired
	}
	store, err := s.store(req.Variant)
	if err != nil {
		return nil, err
	}

	var (
		snap    session.Snapshot
		role    engine.Role
		outcome engine.Outcome
	)
	err = store.WithSession(req.Key, func(sess *session.Session) error {
		role = sess.Board.Turn()
		if req.Role != engine.RoleNone && role != engine.RoleNone && req.Role != role {
			return engine.ErrNotYourTurn
		}
		if err := sess.Binding.Check(role, req.Player); err != nil {
			return err
		}
		if err := sess.Board.Apply(role, req.Move); err != nil {
			return err
		}
		if err := sess.Binding.BindOrCheck(role, req.Player); err != nil {
			return err
		}
		sess.RecordMove(req.Player, store.Now())

		outcome = sess.Board.Evaluate()
		snap = sess.Snapshot()
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrSessionNotFound) {
			s.logger.Debug("move rejected",
				zap.String("variant", string(req.Variant)),
				zap.String("key", req.Key.String()),
				zap.String("player", req.Player.ID),
				zap.Error(err))
		}
		return nil, err
	}

	result = &MoveResult{
		GameView: *newGameView(snap),
		Role:     role,
		Outcome:  outcome,
		Ended:    outcome.Status.Terminal(),
		Passed:   snap.Render.Passed,
	}

	if result.Ended {
		s.logger.Info("game finished",
			zap.String("variant", string(req.Variant)),
			zap.String("key", req.Key.String()),
			zap.String("status", string(outcome.Status)),
			zap.String("winner", string(outcome.Winner)),
			zap.String("trigger", req.Player.ID))
	}
	span.SetAttributes(attribute.String("game.status", string(outcome.Status)))
	return result, nil
}

func sortViews(views []*GameView) {
	sort.SliceStable(views, func(i, j int) bool {
		if !views[i].CreatedAt.Equal(views[j].CreatedAt) {
			return views[i].CreatedAt.Before(views[j].CreatedAt)
		}
		return views[i].Variant < views[j].Variant
	})
}

// ListPresets returns the configured board presets
func (s *gameServiceImpl) ListPresets(ctx context.Context) ([]*config.Preset, error) {
	if s.presets == nil {
		return nil, nil
	}
	return s.presets.List(), nil
}
