package engine

import "math/rand/v2"

// Board is the capability every game variant implements
type Board interface {
	// Variant identifies the game.
	Variant() Variant

	// Turn returns the seat expected to move next, or RoleNone for
	// cooperative games.
	Turn() Role

	// Apply validates and applies a move for role. On error the board is unchanged.
	Apply(role Role, m Move) error

	// Evaluate reports the current outcome.
	Evaluate() Outcome

	// Render returns a fresh snapshot that shares no memory with the board.
	Render() *RenderModel
}

// Options carries construction parameters for sized boards. A nil Mines
// means unset; a pointer to zero is a board without mines.
type Options struct {
	Rows  int
	Cols  int
	Mines *int
	Rand  *rand.Rand
}

// MineCount returns a Mines value for Options literals
func MineCount(n int) *int { return &n }

// NewBoard constructs a board for variant. Zero-valued sizes and a nil
// mine count fall back to each variant's defaults.
func NewBoard(variant Variant, opts Options) (Board, error) {
	switch variant {
	case TicTacToe:
		return NewTicTacToe(), nil
	case Othello:
		return NewOthello(), nil
	case ConnectFour:
		rows, cols := opts.Rows, opts.Cols
		if rows == 0 {
			rows = DefaultConnectFourRows
		}
		if cols == 0 {
			cols = DefaultConnectFourCols
		}
		return NewConnectFour(rows, cols)
	case Minesweeper:
		rows, cols := opts.Rows, opts.Cols
		if rows == 0 {
			rows = DefaultMinesweeperRows
		}
		if cols == 0 {
			cols = DefaultMinesweeperCols
		}
		mines := DefaultMines(rows, cols)
		if opts.Mines != nil {
			mines = *opts.Mines
		}
		rng := opts.Rand
		if rng == nil {
			rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		}
		return NewMinesweeper(rows, cols, mines, rng)
	}
	return nil, invalidConfig("unknown game %q", variant)
}
