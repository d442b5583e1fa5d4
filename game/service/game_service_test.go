package service_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wricardo/chat-board-games/game/config"
	"github.com/wricardo/chat-board-games/game/engine"
	"github.com/wricardo/chat-board-games/game/service"
	"github.com/wricardo/chat-board-games/game/session"
)

var (
	alice = session.Identity{ID: "1", Name: "alice"}
	bob   = session.Identity{ID: "2", Name: "bob"}
	carol = session.Identity{ID: "3", Name: "carol"}
)

func newService(t *testing.T, opts ...session.Option) service.GameService {
	t.Helper()
	presets, err := config.NewManager("")
	require.NoError(t, err)
	return service.NewGameService(session.NewRegistry(opts...), presets, service.WithLogger(zap.NewNop()))
}

func start(t *testing.T, svc service.GameService, req service.StartRequest) *service.GameView {
	t.Helper()
	view, err := svc.StartSession(context.Background(), req)
	require.NoError(t, err)
	return view
}

func move(svc service.GameService, variant engine.Variant, key session.Key, who session.Identity, r, c int) (*service.MoveResult, error) {
	return svc.ApplyMove(context.Background(), service.MoveRequest{
		Variant: variant,
		Key:     key,
		Player:  who,
		Move:    engine.Move{Row: r, Col: c},
	})
}

func TestStartSession_Idempotent(t *testing.T) {
	svc := newService(t)
	key := session.Key{ChatID: 10, MessageID: 20}

	first := start(t, svc, service.StartRequest{Variant: engine.TicTacToe, Key: key})
	assert.True(t, first.Created)
	assert.Equal(t, "10:20", first.Key)
	assert.Equal(t, engine.RoleFirst, first.Render.Turn)
	assert.Nil(t, first.StartedAt)

	_, err := move(svc, engine.TicTacToe, key, alice, 1, 1)
	require.NoError(t, err)

	again := start(t, svc, service.StartRequest{Variant: engine.TicTacToe, Key: key})
	assert.False(t, again.Created)
	assert.Equal(t, engine.GlyphCross, again.Render.Grid[1][1], "restart returns the live board")
	assert.NotNil(t, again.StartedAt)
}

func TestStartSession_Options(t *testing.T) {
	svc := newService(t)

	tests := []struct {
		name      string
		req       service.StartRequest
		wantErr   error
		wantRows  int
		wantCols  int
		wantMines int
	}{
		{
			name:     "connect four default preset",
			req:      service.StartRequest{Variant: engine.ConnectFour},
			wantRows: 6, wantCols: 7,
		},
		{
			name:     "connect four named preset",
			req:      service.StartRequest{Variant: engine.ConnectFour, Preset: "wide"},
			wantRows: 7, wantCols: 8,
		},
		{
			name:     "minesweeper hard preset",
			req:      service.StartRequest{Variant: engine.Minesweeper, Preset: "hard"},
			wantRows: 8, wantCols: 8, wantMines: 16,
		},
		{
			name:     "explicit sizes win over preset",
			req:      service.StartRequest{Variant: engine.Minesweeper, Preset: "hard", Rows: 4, Cols: 5, Mines: engine.MineCount(2)},
			wantRows: 4, wantCols: 5, wantMines: 2,
		},
		{
			name:     "explicit mines keep preset size",
			req:      service.StartRequest{Variant: engine.Minesweeper, Preset: "hard", Mines: engine.MineCount(5)},
			wantRows: 8, wantCols: 8, wantMines: 5,
		},
		{
			name:     "resized preset keeps density",
			req:      service.StartRequest{Variant: engine.Minesweeper, Preset: "hard", Rows: 4, Cols: 4},
			wantRows: 4, wantCols: 4, wantMines: 4,
		},
		{
			name:     "small board without mine count",
			req:      service.StartRequest{Variant: engine.Minesweeper, Rows: 3, Cols: 3},
			wantRows: 3, wantCols: 3, wantMines: 1,
		},
		{
			name:     "rows only",
			req:      service.StartRequest{Variant: engine.Minesweeper, Rows: 4},
			wantRows: 4, wantCols: 8, wantMines: 4,
		},
		{
			name:     "explicit zero mines",
			req:      service.StartRequest{Variant: engine.Minesweeper, Rows: 4, Cols: 4, Mines: engine.MineCount(0)},
			wantRows: 4, wantCols: 4, wantMines: 0,
		},
		{
			name:     "fixed board ignores sizes",
			req:      service.StartRequest{Variant: engine.Othello, Rows: 3, Cols: 3},
			wantRows: 8, wantCols: 8,
		},
		{
			name:    "unknown preset",
			req:     service.StartRequest{Variant: engine.Minesweeper, Preset: "impossible"},
			wantErr: engine.ErrInvalidConfig,
		},
		{
			name:    "too wide",
			req:     service.StartRequest{Variant: engine.ConnectFour, Rows: 6, Cols: 9},
			wantErr: engine.ErrInvalidConfig,
		},
		{
			name:    "too many mines",
			req:     service.StartRequest{Variant: engine.Minesweeper, Rows: 2, Cols: 2, Mines: engine.MineCount(4)},
			wantErr: engine.ErrInvalidConfig,
		},
		{
			name:    "unknown game",
			req:     service.StartRequest{Variant: "chess"},
			wantErr: engine.ErrInvalidConfig,
		},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.req.Key = session.Key{ChatID: 1, MessageID: int64(i)}
			view, err := svc.StartSession(context.Background(), tt.req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantRows, view.Render.Rows)
			assert.Equal(t, tt.wantCols, view.Render.Cols)
			assert.Equal(t, tt.wantMines, view.Render.Mines)
		})
	}
}

func TestApplyMove_TicTacToeWinEndsSession(t *testing.T) {
	svc := newService(t)
	key := session.Key{ChatID: 1, MessageID: 1}
	start(t, svc, service.StartRequest{Variant: engine.TicTacToe, Key: key})

	plays := []struct {
		who  session.Identity
		r, c int
	}{
		{alice, 0, 0}, {bob, 1, 0}, {alice, 0, 1}, {bob, 1, 1},
	}
	for _, p := range plays {
		res, err := move(svc, engine.TicTacToe, key, p.who, p.r, p.c)
		require.NoError(t, err)
		assert.False(t, res.Ended)
	}

	res, err := move(svc, engine.TicTacToe, key, alice, 0, 2)
	require.NoError(t, err)
	assert.True(t, res.Ended)
	assert.Equal(t, engine.StatusWin, res.Outcome.Status)
	assert.Equal(t, engine.RoleFirst, res.Outcome.Winner)
	assert.Equal(t, engine.RoleFirst, res.Role)
	require.NotNil(t, res.Trigger)
	assert.Equal(t, alice.ID, res.Trigger.ID)
	assert.Equal(t, []session.Participant{{Identity: alice, Steps: 3}, {Identity: bob, Steps: 2}}, res.Participants)
	assert.Equal(t, engine.GlyphCross, res.Render.Grid[0][2], "the winning move is visible in the result")

	_, err = svc.GetSession(context.Background(), engine.TicTacToe, key)
	assert.ErrorIs(t, err, engine.ErrSessionNotFound)

	_, err = move(svc, engine.TicTacToe, key, bob, 2, 2)
	assert.ErrorIs(t, err, engine.ErrSessionNotFound)
}

func TestApplyMove_Binding(t *testing.T) {
	svc := newService(t)
	key := session.Key{ChatID: 1, MessageID: 1}
	start(t, svc, service.StartRequest{Variant: engine.TicTacToe, Key: key})

	res, err := move(svc, engine.TicTacToe, key, alice, 0, 0)
	require.NoError(t, err)
	require.NotNil(t, res.Players[0])
	assert.Equal(t, alice, *res.Players[0])
	assert.Nil(t, res.Players[1])

	// rejected moves never claim a seat
	_, err = move(svc, engine.TicTacToe, key, bob, 0, 0)
	assert.ErrorIs(t, err, engine.ErrCellNotEmpty)
	_, err = move(svc, engine.TicTacToe, key, bob, 3, 0)
	assert.ErrorIs(t, err, engine.ErrOutOfBounds)

	res, err = move(svc, engine.TicTacToe, key, carol, 1, 1)
	require.NoError(t, err)
	require.NotNil(t, res.Players[1])
	assert.Equal(t, carol, *res.Players[1])

	_, err = move(svc, engine.TicTacToe, key, bob, 2, 2)
	assert.ErrorIs(t, err, engine.ErrWrongPlayer)
	assert.Equal(t, engine.CodeWrongPlayer, engine.CodeOf(err))

	_, err = move(svc, engine.TicTacToe, key, carol, 2, 2)
	assert.ErrorIs(t, err, engine.ErrNotYourTurn)

	view, err := svc.GetSession(context.Background(), engine.TicTacToe, key)
	require.NoError(t, err)
	assert.Equal(t, engine.GlyphHint, view.Render.Grid[2][2], "failed moves leave the board unchanged")
}

func TestApplyMove_RoleHint(t *testing.T) {
	svc := newService(t)
	key := session.Key{ChatID: 1, MessageID: 1}
	start(t, svc, service.StartRequest{Variant: engine.ConnectFour, Key: key})

	_, err := svc.ApplyMove(context.Background(), service.MoveRequest{
		Variant: engine.ConnectFour,
		Key:     key,
		Player:  alice,
		Role:    engine.RoleSecond,
		Move:    engine.Move{Col: 3},
	})
	assert.ErrorIs(t, err, engine.ErrNotYourTurn)

	res, err := svc.ApplyMove(context.Background(), service.MoveRequest{
		Variant: engine.ConnectFour,
		Key:     key,
		Player:  alice,
		Role:    engine.RoleFirst,
		Move:    engine.Move{Col: 3},
	})
	require.NoError(t, err)
	assert.Equal(t, engine.GlyphRed, res.Render.Grid[5][3])
}

func TestApplyMove_SelfPlay(t *testing.T) {
	svc := newService(t)
	key := session.Key{ChatID: 1, MessageID: 1}
	start(t, svc, service.StartRequest{Variant: engine.ConnectFour, Key: key})

	for _, col := range []int{0, 1, 0, 1, 0, 1} {
		_, err := move(svc, engine.ConnectFour, key, alice, 0, col)
		require.NoError(t, err)
	}
	res, err := move(svc, engine.ConnectFour, key, alice, 0, 0)
	require.NoError(t, err)
	assert.True(t, res.Ended)
	assert.Equal(t, alice, *res.Players[0])
	assert.Equal(t, alice, *res.Players[1])
	assert.Equal(t, []session.Participant{{Identity: alice, Steps: 7}}, res.Participants)
}

func TestApplyMove_ColumnFilled(t *testing.T) {
	svc := newService(t)
	key := session.Key{ChatID: 1, MessageID: 1}
	start(t, svc, service.StartRequest{Variant: engine.ConnectFour, Key: key, Rows: 2, Cols: 2})

	_, err := move(svc, engine.ConnectFour, key, alice, 0, 0)
	require.NoError(t, err)
	_, err = move(svc, engine.ConnectFour, key, bob, 0, 0)
	require.NoError(t, err)

	_, err = move(svc, engine.ConnectFour, key, alice, 0, 0)
	assert.ErrorIs(t, err, engine.ErrColumnFilled)
	assert.ErrorIs(t, err, engine.ErrInvalidMove)
}

func TestApplyMove_OthelloOpening(t *testing.T) {
	svc := newService(t)
	key := session.Key{ChatID: 1, MessageID: 1}
	start(t, svc, service.StartRequest{Variant: engine.Othello, Key: key})

	res, err := move(svc, engine.Othello, key, alice, 2, 3)
	require.NoError(t, err)
	require.NotNil(t, res.Render.Score)
	assert.Equal(t, engine.Score{First: 4, Second: 1}, *res.Render.Score)
	assert.Equal(t, engine.RoleSecond, res.Render.Turn)
	assert.False(t, res.Passed)

	_, err = move(svc, engine.Othello, key, bob, 0, 0)
	assert.ErrorIs(t, err, engine.ErrUnplaceable)
}

func TestApplyMove_MinesweeperIsCooperative(t *testing.T) {
	svc := newService(t)
	key := session.Key{ChatID: 1, MessageID: 1}
	start(t, svc, service.StartRequest{Variant: engine.Minesweeper, Key: key, Rows: 3, Cols: 3, Mines: engine.MineCount(1)})

	res, err := svc.ApplyMove(context.Background(), service.MoveRequest{
		Variant: engine.Minesweeper,
		Key:     key,
		Player:  alice,
		Move:    engine.Move{Row: 0, Col: 0, Action: engine.ActionFlag},
	})
	require.NoError(t, err)
	assert.Equal(t, engine.RoleNone, res.Role)
	assert.Equal(t, 1, res.Render.Flags)

	res, err = svc.ApplyMove(context.Background(), service.MoveRequest{
		Variant: engine.Minesweeper,
		Key:     key,
		Player:  bob,
		Move:    engine.Move{Row: 0, Col: 0, Action: engine.ActionFlag},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Render.Flags)
	assert.Len(t, res.Participants, 2)
	assert.Nil(t, res.Players[0], "cooperative games bind no seats")
}

func TestApplyMove_MinesweeperFirstClickWins(t *testing.T) {
	svc := newService(t)
	key := session.Key{ChatID: 1, MessageID: 1}
	start(t, svc, service.StartRequest{Variant: engine.Minesweeper, Key: key, Rows: 1, Cols: 2, Mines: engine.MineCount(1)})

	res, err := move(svc, engine.Minesweeper, key, bob, 0, 0)
	require.NoError(t, err)
	assert.True(t, res.Ended)
	assert.Equal(t, engine.StatusSucceeded, res.Outcome.Status)
	require.NotNil(t, res.Trigger)
	assert.Equal(t, bob.ID, res.Trigger.ID)
	assert.Equal(t, engine.NumberGlyph(1), res.Render.Grid[0][0])
	assert.Equal(t, engine.GlyphMine, res.Render.Grid[0][1])

	_, err = svc.GetSession(context.Background(), engine.Minesweeper, key)
	assert.ErrorIs(t, err, engine.ErrSessionNotFound)
}

func TestApplyMove_Validation(t *testing.T) {
	svc := newService(t)
	key := session.Key{ChatID: 1, MessageID: 1}

	_, err := move(svc, engine.TicTacToe, key, session.Identity{}, 0, 0)
	assert.ErrorIs(t, err, service.ErrPlayerRequired)

	_, err = move(svc, engine.TicTacToe, key, alice, 0, 0)
	assert.ErrorIs(t, err, engine.ErrSessionNotFound)

	_, err = move(svc, "go", key, alice, 0, 0)
	assert.ErrorIs(t, err, engine.ErrInvalidConfig)
}

func TestApplyMove_ConcurrentSeatClaims(t *testing.T) {
	svc := newService(t)
	key := session.Key{ChatID: 1, MessageID: 1}
	start(t, svc, service.StartRequest{Variant: engine.ConnectFour, Key: key})

	const players = 12
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		seats    = map[engine.Role]string{}
		rejected int
	)
	for i := 0; i < players; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			who := session.Identity{ID: fmt.Sprintf("p%d", i)}
			res, err := move(svc, engine.ConnectFour, key, who, 0, i%7)

			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				seats[res.Role] = who.ID
				return
			}
			assert.ErrorIs(t, err, engine.ErrWrongPlayer)
			rejected++
		}(i)
	}
	wg.Wait()

	require.Len(t, seats, 2, "one claim per seat")
	assert.Equal(t, players-2, rejected)

	view, err := svc.GetSession(context.Background(), engine.ConnectFour, key)
	require.NoError(t, err)
	assert.Equal(t, seats[engine.RoleFirst], view.Players[0].ID)
	assert.Equal(t, seats[engine.RoleSecond], view.Players[1].ID)
}

func TestListAndDeleteSessions(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var (
		mu  sync.Mutex
		now = base
	)
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(time.Second)
		return now
	}
	svc := newService(t, session.WithClock(clock))
	ctx := context.Background()

	start(t, svc, service.StartRequest{Variant: engine.Minesweeper, Key: session.Key{ChatID: 1, MessageID: 1}})
	start(t, svc, service.StartRequest{Variant: engine.TicTacToe, Key: session.Key{ChatID: 1, MessageID: 2}})
	start(t, svc, service.StartRequest{Variant: engine.Othello, Key: session.Key{ChatID: 2, MessageID: 1}})

	views, err := svc.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, views, 3)
	assert.Equal(t, engine.Minesweeper, views[0].Variant)
	assert.Equal(t, engine.TicTacToe, views[1].Variant)
	assert.Equal(t, engine.Othello, views[2].Variant)

	require.NoError(t, svc.DeleteSession(ctx, engine.TicTacToe, session.Key{ChatID: 1, MessageID: 2}))
	assert.ErrorIs(t, svc.DeleteSession(ctx, engine.TicTacToe, session.Key{ChatID: 1, MessageID: 2}), engine.ErrSessionNotFound)

	views, err = svc.ListSessions(ctx)
	require.NoError(t, err)
	assert.Len(t, views, 2)
}

func TestListPresets(t *testing.T) {
	svc := newService(t)

	presets, err := svc.ListPresets(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, presets)
	for _, p := range presets {
		assert.Contains(t, []engine.Variant{engine.ConnectFour, engine.Minesweeper}, p.Variant)
	}

	bare := service.NewGameService(session.NewRegistry(), nil)
	presets, err = bare.ListPresets(context.Background())
	require.NoError(t, err)
	assert.Empty(t, presets)
}
