package engine

const othelloSize = 8

// OthelloBoard is an 8x8 Reversi board. Black is RoleFirst and moves first.
type OthelloBoard struct {
	cells  [othelloSize][othelloSize]Role
	turn   Role
	ended  bool
	passed bool
}

// NewOthello returns the standard opening position
func NewOthello() *OthelloBoard {
	b := &OthelloBoard{turn: RoleFirst}
	b.cells[3][3] = RoleSecond
	b.cells[3][4] = RoleFirst
	b.cells[4][3] = RoleFirst
	b.cells[4][4] = RoleSecond
	return b
}

func (b *OthelloBoard) Variant() Variant { return Othello }

func (b *OthelloBoard) Turn() Role { return b.turn }

// At returns the occupant of a cell
func (b *OthelloBoard) At(row, col int) Role {
	return b.cells[row][col]
}

// Passed reports whether the last move left the opponent without a move,
// so the mover plays again.
func (b *OthelloBoard) Passed() bool { return b.passed }

// captureLength walks one ray from (r, c) and returns how many opponent
// pieces would flip. The ray must end on one of role's pieces before the
// edge or an empty cell.
func (b *OthelloBoard) captureLength(role Role, r, c, dr, dc int) int {
	opponent := role.Opponent()
	n := 0
	for rr, cc := r+dr, c+dc; inBounds(rr, cc, othelloSize, othelloSize); rr, cc = rr+dr, cc+dc {
		switch b.cells[rr][cc] {
		case opponent:
			n++
		case role:
			return n
		default:
			return 0
		}
	}
	return 0
}

// CanPlace reports whether role may place at (r, c)
func (b *OthelloBoard) CanPlace(role Role, r, c int) bool {
	if !inBounds(r, c, othelloSize, othelloSize) || b.cells[r][c] != RoleNone {
		return false
	}
	for _, d := range directions {
		if b.captureLength(role, r, c, d[0], d[1]) > 0 {
			return true
		}
	}
	return false
}

// LegalMoves lists every cell role may place on
func (b *OthelloBoard) LegalMoves(role Role) []Point {
	var moves []Point
	for r := 0; r < othelloSize; r++ {
		for c := 0; c < othelloSize; c++ {
			if b.CanPlace(role, r, c) {
				moves = append(moves, Point{Row: r, Col: c})
			}
		}
	}
	return moves
}

func (b *OthelloBoard) hasLegalMove(role Role) bool {
	for r := 0; r < othelloSize; r++ {
		for c := 0; c < othelloSize; c++ {
			if b.CanPlace(role, r, c) {
				return true
			}
		}
	}
	return false
}

// Apply places role's piece and flips every captured run
func (b *OthelloBoard) Apply(role Role, m Move) error {
	if !inBounds(m.Row, m.Col, othelloSize, othelloSize) {
		return ErrOutOfBounds
	}
	if b.ended {
		return ErrGameOver
	}
	if role != b.turn {
		return ErrNotYourTurn
	}
	if !b.CanPlace(role, m.Row, m.Col) {
		return ErrUnplaceable
	}

	for _, d := range directions {
		n := b.captureLength(role, m.Row, m.Col, d[0], d[1])
		for i := 1; i <= n; i++ {
			b.cells[m.Row+i*d[0]][m.Col+i*d[1]] = role
		}
	}
	b.cells[m.Row][m.Col] = role

	opponent := role.Opponent()
	b.passed = false
	switch {
	case b.hasLegalMove(opponent):
		b.turn = opponent
	case b.hasLegalMove(role):
		b.passed = true
	default:
		b.ended = true
	}
	return nil
}

// Count returns the number of pieces per seat
func (b *OthelloBoard) Count() Score {
	var s Score
	for r := 0; r < othelloSize; r++ {
		for c := 0; c < othelloSize; c++ {
			switch b.cells[r][c] {
			case RoleFirst:
				s.First++
			case RoleSecond:
				s.Second++
			}
		}
	}
	return s
}

func (b *OthelloBoard) Evaluate() Outcome {
	if !b.ended {
		return Outcome{Status: StatusOnGoing}
	}
	s := b.Count()
	switch {
	case s.First > s.Second:
		return Outcome{Status: StatusWin, Winner: RoleFirst}
	case s.Second > s.First:
		return Outcome{Status: StatusWin, Winner: RoleSecond}
	}
	return Outcome{Status: StatusDraw}
}

func (b *OthelloBoard) Render() *RenderModel {
	score := b.Count()
	model := &RenderModel{
		Variant: Othello,
		Rows:    othelloSize,
		Cols:    othelloSize,
		Grid:    newGrid(othelloSize, othelloSize),
		Outcome: b.Evaluate(),
		Score:   &score,
		Passed:  b.passed,
	}
	if !b.ended {
		model.Turn = b.turn
	}

	for r := 0; r < othelloSize; r++ {
		for c := 0; c < othelloSize; c++ {
			switch b.cells[r][c] {
			case RoleFirst:
				model.Grid[r][c] = GlyphBlack
			case RoleSecond:
				model.Grid[r][c] = GlyphWhite
			default:
				if !b.ended && b.CanPlace(b.turn, r, c) {
					model.Grid[r][c] = GlyphHint
				} else {
					model.Grid[r][c] = GlyphEmpty
				}
			}
		}
	}
	return model
}
