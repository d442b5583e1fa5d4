package engine

import (
	"math/rand/v2"
	"strings"
)

const (
	DefaultMinesweeperRows  = 8
	DefaultMinesweeperCols  = 8
	DefaultMinesweeperMines = 9
)

// DefaultMines keeps the density of the default 8x8 board on any size,
// with at least one mine whenever the board has room for a safe cell.
func DefaultMines(rows, cols int) int {
	cells := rows * cols
	if cells <= 1 {
		return 0
	}
	n := cells * DefaultMinesweeperMines / (DefaultMinesweeperRows * DefaultMinesweeperCols)
	if n < 1 {
		n = 1
	}
	return n
}

// Mask is the visibility of a minesweeper cell
type Mask int

const (
	MaskMasked Mask = iota
	MaskUnmasked
	MaskFlagged
	MaskExploded
)

type mineCell struct {
	mine     bool
	adjacent int
	mask     Mask
}

// MinesweeperBoard is a cooperative board with no turn order
type MinesweeperBoard struct {
	rows, cols, mines int
	cells             []mineCell
	rng               *rand.Rand

	revealed  int // unmasked non-mine cells
	flags     int
	status    Status
	opened    bool
	safeStart bool
}

// NewMinesweeper lays out mines uniformly at random. The first reveal is
// guaranteed to hit a zero cell whenever the board leaves room for it.
func NewMinesweeper(rows, cols, mines int, rng *rand.Rand) (*MinesweeperBoard, error) {
	if rows < 1 || rows > MaxDimension || cols < 1 || cols > MaxDimension {
		return nil, invalidConfig("minesweeper board must be between 1x1 and %dx%d, got %dx%d",
			MaxDimension, MaxDimension, rows, cols)
	}
	if mines < 0 || mines >= rows*cols {
		return nil, invalidConfig("mine count must be between 0 and %d, got %d", rows*cols-1, mines)
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	b := &MinesweeperBoard{
		rows:      rows,
		cols:      cols,
		mines:     mines,
		cells:     make([]mineCell, rows*cols),
		rng:       rng,
		status:    StatusOnGoing,
		safeStart: true,
	}
	b.layMines(nil)
	return b, nil
}

// NewMinesweeperFromLayout builds a fixed board from rows of '*' (mine) and
// '.' (safe). The layout is never relocated.
func NewMinesweeperFromLayout(layout []string) (*MinesweeperBoard, error) {
	rows := len(layout)
	if rows == 0 {
		return nil, invalidConfig("layout is empty")
	}
	cols := len(layout[0])
	if rows > MaxDimension || cols < 1 || cols > MaxDimension {
		return nil, invalidConfig("minesweeper board must be between 1x1 and %dx%d, got %dx%d",
			MaxDimension, MaxDimension, rows, cols)
	}

	b := &MinesweeperBoard{
		rows:   rows,
		cols:   cols,
		cells:  make([]mineCell, rows*cols),
		status: StatusOnGoing,
	}
	for r, line := range layout {
		if len(line) != cols {
			return nil, invalidConfig("layout row %d has %d cells, want %d", r, len(line), cols)
		}
		for c, ch := range line {
			switch ch {
			case '*':
				b.cells[r*cols+c].mine = true
				b.mines++
			case '.':
			default:
				return nil, invalidConfig("layout row %d has invalid cell %q", r, ch)
			}
		}
	}
	if b.mines >= rows*cols {
		return nil, invalidConfig("layout has no safe cell")
	}
	b.computeAdjacency()
	return b, nil
}

func (b *MinesweeperBoard) Variant() Variant { return Minesweeper }

func (b *MinesweeperBoard) Turn() Role { return RoleNone }

// Size returns rows, columns and mine count
func (b *MinesweeperBoard) Size() (int, int, int) { return b.rows, b.cols, b.mines }

// MaskAt returns the visibility of a cell
func (b *MinesweeperBoard) MaskAt(row, col int) Mask { return b.cells[b.idx(row, col)].mask }

// IsMine reports whether a cell holds a mine
func (b *MinesweeperBoard) IsMine(row, col int) bool { return b.cells[b.idx(row, col)].mine }

// Adjacent returns the neighbor mine count of a cell
func (b *MinesweeperBoard) Adjacent(row, col int) int { return b.cells[b.idx(row, col)].adjacent }

func (b *MinesweeperBoard) idx(r, c int) int { return r*b.cols + c }

// layMines places mines on a shuffled list of all cells not in exclude
func (b *MinesweeperBoard) layMines(exclude map[int]bool) {
	candidates := make([]int, 0, len(b.cells))
	for i := range b.cells {
		b.cells[i].mine = false
		if !exclude[i] {
			candidates = append(candidates, i)
		}
	}
	b.rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	for _, i := range candidates[:b.mines] {
		b.cells[i].mine = true
	}
	b.computeAdjacency()
}

func (b *MinesweeperBoard) computeAdjacency() {
	for r := 0; r < b.rows; r++ {
		for c := 0; c < b.cols; c++ {
			n := 0
			forEachNeighbor(r, c, b.rows, b.cols, func(nr, nc int) {
				if b.cells[b.idx(nr, nc)].mine {
					n++
				}
			})
			b.cells[b.idx(r, c)].adjacent = n
		}
	}
}

// relocate re-lays the mines once so the first reveal at (r, c) opens a
// zero region, or at least is not a mine when the board is too crowded.
func (b *MinesweeperBoard) relocate(r, c int) {
	cell := b.cells[b.idx(r, c)]
	if !cell.mine && cell.adjacent == 0 {
		return
	}

	exclude := map[int]bool{b.idx(r, c): true}
	forEachNeighbor(r, c, b.rows, b.cols, func(nr, nc int) {
		exclude[b.idx(nr, nc)] = true
	})
	if len(b.cells)-len(exclude) < b.mines {
		exclude = map[int]bool{b.idx(r, c): true}
	}
	b.layMines(exclude)
}

// Apply performs a minesweeper action. role is ignored.
func (b *MinesweeperBoard) Apply(_ Role, m Move) error {
	if !inBounds(m.Row, m.Col, b.rows, b.cols) {
		return ErrOutOfBounds
	}
	if b.status.Terminal() {
		return ErrGameOver
	}

	switch m.Action {
	case ActionClick:
		switch b.cells[b.idx(m.Row, m.Col)].mask {
		case MaskMasked:
			return b.reveal(m.Row, m.Col)
		case MaskUnmasked:
			return b.chord(m.Row, m.Col)
		case MaskFlagged:
			return ErrCellFlagged
		}
		return ErrAlreadyRevealed
	case ActionReveal:
		return b.reveal(m.Row, m.Col)
	case ActionChord:
		return b.chord(m.Row, m.Col)
	case ActionFlag:
		return b.toggleFlag(m.Row, m.Col)
	}
	return ErrUnknownAction
}

func (b *MinesweeperBoard) reveal(r, c int) error {
	i := b.idx(r, c)
	switch b.cells[i].mask {
	case MaskFlagged:
		return ErrCellFlagged
	case MaskUnmasked, MaskExploded:
		return ErrAlreadyRevealed
	}

	if !b.opened {
		if b.safeStart {
			b.relocate(r, c)
		}
		b.opened = true
	}

	if b.cells[i].mine {
		b.cells[i].mask = MaskExploded
		b.finish(StatusFailed)
		return nil
	}
	b.open(i)
	b.checkWin()
	return nil
}

// open unmasks start and, through an explicit queue, the zero region
// connected to it plus its numbered border.
func (b *MinesweeperBoard) open(start int) {
	b.unmask(start)
	queue := []int{start}
	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		if b.cells[i].adjacent != 0 {
			continue
		}
		forEachNeighbor(i/b.cols, i%b.cols, b.rows, b.cols, func(nr, nc int) {
			j := b.idx(nr, nc)
			if b.cells[j].mask == MaskMasked && !b.cells[j].mine {
				b.unmask(j)
				queue = append(queue, j)
			}
		})
	}
}

func (b *MinesweeperBoard) unmask(i int) {
	if b.cells[i].mask == MaskUnmasked {
		return
	}
	if b.cells[i].mask == MaskFlagged {
		b.flags--
	}
	b.cells[i].mask = MaskUnmasked
	if !b.cells[i].mine {
		b.revealed++
	}
}

// chord resolves a revealed number: when its flags are satisfied the
// remaining neighbors are opened, when only masked cells can account for the
// count they are all flagged.
func (b *MinesweeperBoard) chord(r, c int) error {
	cell := b.cells[b.idx(r, c)]
	if cell.mask != MaskUnmasked || cell.adjacent == 0 {
		return ErrChordUnsatisfied
	}

	flags := 0
	var masked []int
	forEachNeighbor(r, c, b.rows, b.cols, func(nr, nc int) {
		j := b.idx(nr, nc)
		switch b.cells[j].mask {
		case MaskFlagged:
			flags++
		case MaskMasked:
			masked = append(masked, j)
		}
	})
	if len(masked) == 0 {
		return ErrChordUnsatisfied
	}

	switch {
	case flags == cell.adjacent:
		exploded := false
		for _, j := range masked {
			if b.cells[j].mask != MaskMasked {
				continue
			}
			if b.cells[j].mine {
				b.cells[j].mask = MaskExploded
				exploded = true
				continue
			}
			b.open(j)
		}
		if exploded {
			b.finish(StatusFailed)
		} else {
			b.checkWin()
		}
	case flags+len(masked) == cell.adjacent:
		for _, j := range masked {
			b.cells[j].mask = MaskFlagged
			b.flags++
		}
	default:
		return ErrChordUnsatisfied
	}
	return nil
}

func (b *MinesweeperBoard) toggleFlag(r, c int) error {
	i := b.idx(r, c)
	switch b.cells[i].mask {
	case MaskMasked:
		b.cells[i].mask = MaskFlagged
		b.flags++
	case MaskFlagged:
		b.cells[i].mask = MaskMasked
		b.flags--
	default:
		return ErrAlreadyRevealed
	}
	return nil
}

func (b *MinesweeperBoard) checkWin() {
	if b.revealed == len(b.cells)-b.mines {
		b.finish(StatusSucceeded)
	}
}

// finish records the outcome and reveals every cell that is still hidden
func (b *MinesweeperBoard) finish(status Status) {
	b.status = status
	for i := range b.cells {
		switch b.cells[i].mask {
		case MaskMasked, MaskFlagged:
			b.cells[i].mask = MaskUnmasked
		}
	}
}

func (b *MinesweeperBoard) Evaluate() Outcome {
	return Outcome{Status: b.status}
}

func (b *MinesweeperBoard) Render() *RenderModel {
	model := &RenderModel{
		Variant: Minesweeper,
		Rows:    b.rows,
		Cols:    b.cols,
		Grid:    newGrid(b.rows, b.cols),
		Outcome: b.Evaluate(),
		Mines:   b.mines,
		Flags:   b.flags,
	}
	for r := 0; r < b.rows; r++ {
		for c := 0; c < b.cols; c++ {
			cell := b.cells[b.idx(r, c)]
			switch cell.mask {
			case MaskMasked:
				model.Grid[r][c] = GlyphMasked
			case MaskFlagged:
				model.Grid[r][c] = GlyphFlag
			case MaskExploded:
				model.Grid[r][c] = GlyphExploded
			default:
				if cell.mine {
					model.Grid[r][c] = GlyphMine
				} else {
					model.Grid[r][c] = NumberGlyph(cell.adjacent)
				}
			}
		}
	}
	return model
}

// String draws the mask state, for debugging and test failures
func (b *MinesweeperBoard) String() string {
	var sb strings.Builder
	for r := 0; r < b.rows; r++ {
		for c := 0; c < b.cols; c++ {
			cell := b.cells[b.idx(r, c)]
			switch {
			case cell.mask == MaskFlagged:
				sb.WriteByte('F')
			case cell.mask == MaskExploded:
				sb.WriteByte('X')
			case cell.mask == MaskMasked:
				sb.WriteByte('#')
			case cell.mine:
				sb.WriteByte('*')
			default:
				sb.WriteByte(byte('0' + cell.adjacent))
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
