package engine

// Variant identifies a board game
type Variant string

const (
	TicTacToe   Variant = "tictactoe"
	Othello     Variant = "reversi"
	ConnectFour Variant = "connectfour"
	Minesweeper Variant = "minesweeper"
)

// Variants lists every supported game in display order
var Variants = []Variant{TicTacToe, Othello, ConnectFour, Minesweeper}

// ParseVariant resolves a variant name, accepting "othello" as an alias
func ParseVariant(s string) (Variant, bool) {
	switch s {
	case "tictactoe", "ttt":
		return TicTacToe, true
	case "reversi", "othello":
		return Othello, true
	case "connectfour", "connect4":
		return ConnectFour, true
	case "minesweeper", "mines":
		return Minesweeper, true
	}
	return "", false
}

// Role is one of the two seats at a board
type Role string

const (
	RoleNone   Role = ""
	RoleFirst  Role = "first"
	RoleSecond Role = "second"
)

// Opponent returns the other seat
func (r Role) Opponent() Role {
	switch r {
	case RoleFirst:
		return RoleSecond
	case RoleSecond:
		return RoleFirst
	}
	return RoleNone
}

// Index maps a seat to 0 or 1, -1 for RoleNone
func (r Role) Index() int {
	switch r {
	case RoleFirst:
		return 0
	case RoleSecond:
		return 1
	}
	return -1
}

// Status is the coarse game outcome
type Status string

const (
	StatusOnGoing   Status = "ongoing"
	StatusWin       Status = "win"
	StatusDraw      Status = "draw"
	StatusFailed    Status = "failed"
	StatusSucceeded Status = "succeeded"
)

// Terminal reports whether no further moves are accepted
func (s Status) Terminal() bool {
	return s != StatusOnGoing && s != ""
}

// Point is a row/column coordinate, row 0 at the top
type Point struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Outcome is the result of evaluating a board
type Outcome struct {
	Status Status  `json:"status"`
	Winner Role    `json:"winner,omitempty"`
	Line   []Point `json:"line,omitempty"`
}

// Action selects the minesweeper operation for a move
type Action string

const (
	ActionClick  Action = ""
	ActionReveal Action = "reveal"
	ActionChord  Action = "chord"
	ActionFlag   Action = "flag"
)

// Move carries the coordinates of a move. ConnectFour only reads Col.
type Move struct {
	Row    int    `json:"row"`
	Col    int    `json:"col"`
	Action Action `json:"action,omitempty"`
}

// Glyph is a transport-neutral token for one rendered cell
type Glyph string

const (
	GlyphEmpty    Glyph = "empty"
	GlyphHint     Glyph = "hint"
	GlyphCross    Glyph = "cross"
	GlyphNought   Glyph = "nought"
	GlyphBlack    Glyph = "black"
	GlyphWhite    Glyph = "white"
	GlyphRed      Glyph = "red"
	GlyphYellow   Glyph = "yellow"
	GlyphMasked   Glyph = "masked"
	GlyphFlag     Glyph = "flag"
	GlyphMine     Glyph = "mine"
	GlyphExploded Glyph = "exploded"
)

// NumberGlyph returns the glyph for a revealed minesweeper count
func NumberGlyph(n int) Glyph {
	return Glyph("n" + string(rune('0'+n)))
}

// Score holds piece counts per seat
type Score struct {
	First  int `json:"first"`
	Second int `json:"second"`
}

// RenderModel is a snapshot of a board suitable for any transport
type RenderModel struct {
	Variant Variant   `json:"variant"`
	Rows    int       `json:"rows"`
	Cols    int       `json:"cols"`
	Grid    [][]Glyph `json:"grid"`
	Turn    Role      `json:"turn,omitempty"`
	Outcome Outcome   `json:"outcome"`
	Score   *Score    `json:"score,omitempty"`
	Passed  bool      `json:"passed,omitempty"`
	Mines   int       `json:"mines,omitempty"`
	Flags   int       `json:"flags,omitempty"`
}

func newGrid(rows, cols int) [][]Glyph {
	grid := make([][]Glyph, rows)
	for r := range grid {
		grid[r] = make([]Glyph, cols)
	}
	return grid
}
