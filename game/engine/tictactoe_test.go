package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func playTicTacToe(t *testing.T, moves ...[2]int) *TicTacToeBoard {
	t.Helper()
	b := NewTicTacToe()
	for _, m := range moves {
		require.NoError(t, b.Apply(b.Turn(), Move{Row: m[0], Col: m[1]}))
	}
	return b
}

func TestTicTacToe_DrawOnFullBoard(t *testing.T) {
	// X O X
	// X O O
	// O X X
	b := playTicTacToe(t,
		[2]int{0, 0}, [2]int{0, 1}, [2]int{0, 2},
		[2]int{1, 1}, [2]int{1, 0}, [2]int{2, 0},
		[2]int{2, 1}, [2]int{1, 2}, [2]int{2, 2},
	)

	assert.Equal(t, StatusDraw, b.Evaluate().Status)
}

func TestTicTacToe_WinLines(t *testing.T) {
	tests := []struct {
		name   string
		moves  [][2]int
		winner Role
		line   []Point
	}{
		{
			name:   "top row",
			moves:  [][2]int{{0, 0}, {1, 0}, {0, 1}, {1, 1}, {0, 2}},
			winner: RoleFirst,
			line:   []Point{{0, 0}, {0, 1}, {0, 2}},
		},
		{
			name:   "middle column for nought",
			moves:  [][2]int{{0, 0}, {0, 1}, {2, 2}, {1, 1}, {2, 0}, {2, 1}},
			winner: RoleSecond,
			line:   []Point{{0, 1}, {1, 1}, {2, 1}},
		},
		{
			name:   "main diagonal",
			moves:  [][2]int{{0, 0}, {0, 1}, {1, 1}, {0, 2}, {2, 2}},
			winner: RoleFirst,
			line:   []Point{{0, 0}, {1, 1}, {2, 2}},
		},
		{
			name:   "anti diagonal",
			moves:  [][2]int{{0, 2}, {0, 0}, {1, 1}, {0, 1}, {2, 0}},
			winner: RoleFirst,
			line:   []Point{{0, 2}, {1, 1}, {2, 0}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewTicTacToe()
			for i, m := range tt.moves {
				assert.Equal(t, StatusOnGoing, b.Evaluate().Status, "decided before move %d", i)
				require.NoError(t, b.Apply(b.Turn(), Move{Row: m[0], Col: m[1]}))
			}

			outcome := b.Evaluate()
			assert.Equal(t, StatusWin, outcome.Status)
			assert.Equal(t, tt.winner, outcome.Winner)
			assert.Equal(t, tt.line, outcome.Line)
		})
	}
}

func TestTicTacToe_Rejections(t *testing.T) {
	b := playTicTacToe(t, [2]int{1, 1})

	assert.ErrorIs(t, b.Apply(RoleSecond, Move{Row: 1, Col: 1}), ErrCellNotEmpty)
	assert.ErrorIs(t, b.Apply(RoleFirst, Move{Row: 0, Col: 0}), ErrNotYourTurn)
	assert.ErrorIs(t, b.Apply(RoleSecond, Move{Row: 3, Col: 0}), ErrOutOfBounds)
	assert.ErrorIs(t, b.Apply(RoleSecond, Move{Row: 3, Col: 0}), ErrInvalidMove)
	assert.Equal(t, RoleSecond, b.Turn())
}

func TestTicTacToe_NoMovesAfterWin(t *testing.T) {
	b := playTicTacToe(t, [2]int{0, 0}, [2]int{1, 0}, [2]int{0, 1}, [2]int{1, 1}, [2]int{0, 2})

	assert.ErrorIs(t, b.Apply(b.Turn(), Move{Row: 2, Col: 2}), ErrGameOver)
}

func TestTicTacToe_Render(t *testing.T) {
	b := playTicTacToe(t, [2]int{0, 0}, [2]int{2, 2})

	model := b.Render()
	assert.Equal(t, TicTacToe, model.Variant)
	assert.Equal(t, GlyphCross, model.Grid[0][0])
	assert.Equal(t, GlyphNought, model.Grid[2][2])
	assert.Equal(t, GlyphHint, model.Grid[1][1])
	assert.Equal(t, RoleFirst, model.Turn)

	// the snapshot must not alias the board
	model.Grid[1][1] = GlyphCross
	assert.Equal(t, RoleNone, b.At(1, 1))
}
