package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dropAll(t *testing.T, b *ConnectFourBoard, cols ...int) {
	t.Helper()
	for _, c := range cols {
		require.NoError(t, b.Apply(b.Turn(), Move{Col: c}), "drop into column %d", c)
	}
}

func TestNewConnectFour_Dimensions(t *testing.T) {
	tests := []struct {
		name       string
		rows, cols int
		wantErr    bool
	}{
		{"canonical", 6, 7, false},
		{"smallest", 1, 1, false},
		{"largest", MaxDimension, MaxDimension, false},
		{"zero rows", 0, 7, true},
		{"negative cols", 6, -1, true},
		{"too wide", 6, MaxDimension + 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := NewConnectFour(tt.rows, tt.cols)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
				assert.Nil(t, b)
				return
			}
			require.NoError(t, err)
			rows, cols := b.Size()
			assert.Equal(t, tt.rows, rows)
			assert.Equal(t, tt.cols, cols)
		})
	}
}

func TestConnectFour_Gravity(t *testing.T) {
	b, err := NewConnectFour(6, 7)
	require.NoError(t, err)

	dropAll(t, b, 3, 3)

	assert.Equal(t, RoleFirst, b.At(5, 3))
	assert.Equal(t, RoleSecond, b.At(4, 3))
	assert.Equal(t, RoleNone, b.At(3, 3))
}

func TestConnectFour_ColumnFilled(t *testing.T) {
	b, err := NewConnectFour(6, 7)
	require.NoError(t, err)

	dropAll(t, b, 0, 0, 0, 0, 0, 0)

	before := b.Render()
	assert.ErrorIs(t, b.Apply(b.Turn(), Move{Col: 0}), ErrColumnFilled)
	assert.Equal(t, before, b.Render())
	assert.Equal(t, StatusOnGoing, b.Evaluate().Status)
}

func TestConnectFour_Wins(t *testing.T) {
	tests := []struct {
		name   string
		drops  []int
		winner Role
	}{
		{"horizontal", []int{0, 0, 1, 1, 2, 2, 3}, RoleFirst},
		{"vertical", []int{4, 5, 4, 5, 4, 5, 4}, RoleFirst},
		// red climbs the diagonal 0..3 while yellow pads the columns
		{"diagonal up-right", []int{0, 1, 1, 2, 2, 3, 2, 3, 3, 6, 3}, RoleFirst},
		{"diagonal down-left for yellow", []int{0, 3, 0, 6, 1, 6, 2, 2, 1, 1, 0, 0}, RoleSecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := NewConnectFour(6, 7)
			require.NoError(t, err)

			last := len(tt.drops) - 1
			dropAll(t, b, tt.drops[:last]...)
			assert.Equal(t, StatusOnGoing, b.Evaluate().Status, "no win before the fourth piece")

			dropAll(t, b, tt.drops[last])
			outcome := b.Evaluate()
			assert.Equal(t, StatusWin, outcome.Status)
			assert.Equal(t, tt.winner, outcome.Winner)
			assert.Len(t, outcome.Line, connectLength)
			assert.ErrorIs(t, b.Apply(b.Turn(), Move{Col: 6}), ErrGameOver)
		})
	}
}

func TestConnectFour_Draw(t *testing.T) {
	b, err := NewConnectFour(2, 2)
	require.NoError(t, err)

	dropAll(t, b, 0, 0, 1, 1)

	assert.Equal(t, StatusDraw, b.Evaluate().Status)
}

func TestConnectFour_Rejections(t *testing.T) {
	b, err := NewConnectFour(6, 7)
	require.NoError(t, err)

	assert.ErrorIs(t, b.Apply(RoleFirst, Move{Col: 7}), ErrOutOfBounds)
	assert.ErrorIs(t, b.Apply(RoleFirst, Move{Col: -1}), ErrOutOfBounds)
	assert.ErrorIs(t, b.Apply(RoleSecond, Move{Col: 0}), ErrNotYourTurn)
}

func TestConnectFour_Render(t *testing.T) {
	b, err := NewConnectFour(6, 7)
	require.NoError(t, err)
	dropAll(t, b, 2, 2)

	model := b.Render()
	assert.Equal(t, 6, model.Rows)
	assert.Equal(t, 7, model.Cols)
	assert.Equal(t, GlyphRed, model.Grid[5][2])
	assert.Equal(t, GlyphYellow, model.Grid[4][2])
	assert.Equal(t, GlyphEmpty, model.Grid[0][0])
	assert.Equal(t, RoleFirst, model.Turn)
}
