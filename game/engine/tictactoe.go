package engine

const tttSize = 3

// tttLines are the 8 winning lines as start point and step
var tttLines = [8][4]int{
	{0, 0, 0, 1}, {1, 0, 0, 1}, {2, 0, 0, 1}, // rows
	{0, 0, 1, 0}, {0, 1, 1, 0}, {0, 2, 1, 0}, // columns
	{0, 0, 1, 1}, {0, 2, 1, -1}, // diagonals
}

// TicTacToeBoard is a 3x3 board. Cross is RoleFirst and moves first.
type TicTacToeBoard struct {
	cells [tttSize][tttSize]Role
	turn  Role
}

// NewTicTacToe returns an empty board with Cross to move
func NewTicTacToe() *TicTacToeBoard {
	return &TicTacToeBoard{turn: RoleFirst}
}

func (b *TicTacToeBoard) Variant() Variant { return TicTacToe }

func (b *TicTacToeBoard) Turn() Role { return b.turn }

// At returns the occupant of a cell
func (b *TicTacToeBoard) At(row, col int) Role {
	return b.cells[row][col]
}

// Apply places role's piece at (m.Row, m.Col)
func (b *TicTacToeBoard) Apply(role Role, m Move) error {
	if !inBounds(m.Row, m.Col, tttSize, tttSize) {
		return ErrOutOfBounds
	}
	if b.Evaluate().Status.Terminal() {
		return ErrGameOver
	}
	if b.cells[m.Row][m.Col] != RoleNone {
		return ErrCellNotEmpty
	}
	if role != b.turn {
		return ErrNotYourTurn
	}

	b.cells[m.Row][m.Col] = role
	b.turn = role.Opponent()
	return nil
}

// Evaluate checks the 8 lines, then fullness
func (b *TicTacToeBoard) Evaluate() Outcome {
	for _, l := range tttLines {
		r, c, dr, dc := l[0], l[1], l[2], l[3]
		who := b.cells[r][c]
		if who == RoleNone {
			continue
		}
		if b.cells[r+dr][c+dc] == who && b.cells[r+2*dr][c+2*dc] == who {
			return Outcome{Status: StatusWin, Winner: who, Line: lineOf(r, c, dr, dc, tttSize)}
		}
	}

	for r := 0; r < tttSize; r++ {
		for c := 0; c < tttSize; c++ {
			if b.cells[r][c] == RoleNone {
				return Outcome{Status: StatusOnGoing}
			}
		}
	}
	return Outcome{Status: StatusDraw}
}

func (b *TicTacToeBoard) Render() *RenderModel {
	outcome := b.Evaluate()
	model := &RenderModel{
		Variant: TicTacToe,
		Rows:    tttSize,
		Cols:    tttSize,
		Grid:    newGrid(tttSize, tttSize),
		Outcome: outcome,
	}
	if !outcome.Status.Terminal() {
		model.Turn = b.turn
	}

	for r := 0; r < tttSize; r++ {
		for c := 0; c < tttSize; c++ {
			switch b.cells[r][c] {
			case RoleFirst:
				model.Grid[r][c] = GlyphCross
			case RoleSecond:
				model.Grid[r][c] = GlyphNought
			default:
				if outcome.Status.Terminal() {
					model.Grid[r][c] = GlyphEmpty
				} else {
					model.Grid[r][c] = GlyphHint
				}
			}
		}
	}
	return model
}
