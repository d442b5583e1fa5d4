package engine

const (
	DefaultConnectFourRows = 6
	DefaultConnectFourCols = 7

	// MaxDimension bounds sized boards so a row fits one inline keyboard row.
	MaxDimension = 8

	connectLength = 4
)

// connectDirections cover every line once when anchored at each cell
var connectDirections = [4][2]int{{0, 1}, {1, 0}, {1, 1}, {1, -1}}

// ConnectFourBoard drops pieces under gravity. Row 0 is the top.
type ConnectFourBoard struct {
	rows, cols int
	cells      [][]Role
	turn       Role
	filled     int
}

// NewConnectFour returns an empty rows x cols board with red to move
func NewConnectFour(rows, cols int) (*ConnectFourBoard, error) {
	if rows < 1 || rows > MaxDimension || cols < 1 || cols > MaxDimension {
		return nil, invalidConfig("connect four board must be between 1x1 and %dx%d, got %dx%d",
			MaxDimension, MaxDimension, rows, cols)
	}
	cells := make([][]Role, rows)
	for r := range cells {
		cells[r] = make([]Role, cols)
	}
	return &ConnectFourBoard{rows: rows, cols: cols, cells: cells, turn: RoleFirst}, nil
}

func (b *ConnectFourBoard) Variant() Variant { return ConnectFour }

func (b *ConnectFourBoard) Turn() Role { return b.turn }

// Size returns rows and columns
func (b *ConnectFourBoard) Size() (int, int) { return b.rows, b.cols }

// At returns the occupant of a cell
func (b *ConnectFourBoard) At(row, col int) Role {
	return b.cells[row][col]
}

// Apply drops role's piece into column m.Col
func (b *ConnectFourBoard) Apply(role Role, m Move) error {
	if m.Col < 0 || m.Col >= b.cols {
		return ErrOutOfBounds
	}
	if b.Evaluate().Status.Terminal() {
		return ErrGameOver
	}
	if role != b.turn {
		return ErrNotYourTurn
	}
	if b.cells[0][m.Col] != RoleNone {
		return ErrColumnFilled
	}

	row := b.rows - 1
	for b.cells[row][m.Col] != RoleNone {
		row--
	}
	b.cells[row][m.Col] = role
	b.filled++
	b.turn = role.Opponent()
	return nil
}

// Evaluate scans four directions from every filled cell
func (b *ConnectFourBoard) Evaluate() Outcome {
	for r := 0; r < b.rows; r++ {
		for c := 0; c < b.cols; c++ {
			who := b.cells[r][c]
			if who == RoleNone {
				continue
			}
			for _, d := range connectDirections {
				if b.runLength(r, c, d[0], d[1], who) >= connectLength {
					return Outcome{Status: StatusWin, Winner: who, Line: lineOf(r, c, d[0], d[1], connectLength)}
				}
			}
		}
	}
	if b.filled == b.rows*b.cols {
		return Outcome{Status: StatusDraw}
	}
	return Outcome{Status: StatusOnGoing}
}

func (b *ConnectFourBoard) runLength(r, c, dr, dc int, who Role) int {
	n := 0
	for inBounds(r, c, b.rows, b.cols) && b.cells[r][c] == who && n < connectLength {
		n++
		r, c = r+dr, c+dc
	}
	return n
}

func (b *ConnectFourBoard) Render() *RenderModel {
	outcome := b.Evaluate()
	model := &RenderModel{
		Variant: ConnectFour,
		Rows:    b.rows,
		Cols:    b.cols,
		Grid:    newGrid(b.rows, b.cols),
		Outcome: outcome,
	}
	if !outcome.Status.Terminal() {
		model.Turn = b.turn
	}

	for r := 0; r < b.rows; r++ {
		for c := 0; c < b.cols; c++ {
			switch b.cells[r][c] {
			case RoleFirst:
				model.Grid[r][c] = GlyphRed
			case RoleSecond:
				model.Grid[r][c] = GlyphYellow
			default:
				model.Grid[r][c] = GlyphEmpty
			}
		}
	}
	return model
}
