package mcp

import (
	"fmt"
	"strings"

	"github.com/wricardo/chat-board-games/game/engine"
	"github.com/wricardo/chat-board-games/game/service"
)

var glyphText = map[engine.Glyph]string{
	engine.GlyphEmpty:    ".",
	engine.GlyphHint:     ".",
	engine.GlyphCross:    "X",
	engine.GlyphNought:   "O",
	engine.GlyphBlack:    "B",
	engine.GlyphWhite:    "W",
	engine.GlyphRed:      "R",
	engine.GlyphYellow:   "Y",
	engine.GlyphMasked:   "#",
	engine.GlyphFlag:     "F",
	engine.GlyphMine:     "*",
	engine.GlyphExploded: "@",
}

var roleNames = map[engine.Variant][2]string{
	engine.TicTacToe:   {"X", "O"},
	engine.Othello:     {"Black", "White"},
	engine.ConnectFour: {"Red", "Yellow"},
}

const legend = `Legend: . empty, X/O tictactoe marks, B/W reversi discs, R/Y connectfour discs,
# hidden cell, F flag, * mine, @ exploded mine, 0-8 adjacent mine count.
Row 0 is the top row, column 0 the leftmost column.`

var rules = map[engine.Variant]string{
	engine.TicTacToe: `TICTACTOE
Two players alternate placing X (first) and O (second) on a 3x3 grid.
Three in a row, column or diagonal wins. A full grid without a line is a draw.
Move: row and col.`,
	engine.Othello: `REVERSI
8x8 board, Black (first) moves first. A disc must flank at least one line of
opponent discs, which flip. A side with no legal move passes. The game ends
when neither side can move; most discs wins.
Move: row and col.`,
	engine.ConnectFour: `CONNECTFOUR
Red (first) and Yellow (second) drop discs into columns; discs fall to the
lowest empty row. Four in a row in any direction wins. A full board is a draw.
Move: col only.`,
	engine.Minesweeper: `MINESWEEPER
Cooperative: anyone may move. Revealing a mine loses. Revealing every safe cell
wins. The first reveal is never a mine. Actions: reveal a hidden cell, flag or
unflag a hidden cell, chord an open number to open its unflagged neighbors.
Without an action, hidden cells are revealed and open cells are chorded.
Move: row, col and optional action.`,
}

// RoleName returns the display name of a seat in a variant
func RoleName(variant engine.Variant, role engine.Role) string {
	names, ok := roleNames[variant]
	if !ok || role.Index() < 0 {
		return string(role)
	}
	return names[role.Index()]
}

// formatGrid renders the board as text with column and row indices
func formatGrid(render *engine.RenderModel) string {
	if render == nil {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("   ")
	for c := 0; c < render.Cols; c++ {
		fmt.Fprintf(&sb, " %d", c)
	}
	sb.WriteString("\n")

	for r, row := range render.Grid {
		fmt.Fprintf(&sb, "%2d ", r)
		for _, g := range row {
			sb.WriteString(" ")
			sb.WriteString(glyphString(g))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func glyphString(g engine.Glyph) string {
	if s, ok := glyphText[g]; ok {
		return s
	}
	if strings.HasPrefix(string(g), "n") && len(g) == 2 {
		return string(g[1])
	}
	return "?"
}

func formatStatus(render *engine.RenderModel) string {
	if render == nil {
		return ""
	}
	out := render.Outcome
	switch out.Status {
	case engine.StatusOnGoing:
		if render.Turn == engine.RoleNone {
			return fmt.Sprintf("In progress. Flags: %d/%d", render.Flags, render.Mines)
		}
		return fmt.Sprintf("Turn: %s", RoleName(render.Variant, render.Turn))
	case engine.StatusWin:
		return fmt.Sprintf("%s wins!", RoleName(render.Variant, out.Winner))
	case engine.StatusDraw:
		return "Draw."
	case engine.StatusSucceeded:
		return "All safe cells revealed. You win!"
	case engine.StatusFailed:
		return "Boom! A mine was revealed."
	}
	return string(out.Status)
}

func formatGameView(view *service.GameView) string {
	var sb strings.Builder
	sb.WriteString(formatGrid(view.Render))
	sb.WriteString("\n")
	sb.WriteString(formatStatus(view.Render))
	sb.WriteString("\n")

	if view.Render != nil && view.Render.Score != nil {
		fmt.Fprintf(&sb, "Score: %s %d, %s %d\n",
			RoleName(view.Variant, engine.RoleFirst), view.Render.Score.First,
			RoleName(view.Variant, engine.RoleSecond), view.Render.Score.Second)
	}

	for i, p := range view.Players {
		if p == nil {
			continue
		}
		role := engine.RoleFirst
		if i == 1 {
			role = engine.RoleSecond
		}
		fmt.Fprintf(&sb, "%s: %s\n", RoleName(view.Variant, role), displayName(p.Name, p.ID))
	}

	if view.Variant == engine.Minesweeper && len(view.Participants) > 0 {
		sb.WriteString("Players:")
		for _, p := range view.Participants {
			fmt.Fprintf(&sb, " %s (%d)", displayName(p.Name, p.ID), p.Steps)
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func formatMoveResult(result *service.MoveResult) string {
	var sb strings.Builder
	if result.Role != engine.RoleNone {
		fmt.Fprintf(&sb, "Move accepted for %s.\n", RoleName(result.Variant, result.Role))
	} else {
		sb.WriteString("Move accepted.\n")
	}
	if result.Passed {
		sb.WriteString("The next player has no legal move and passes.\n")
	}
	if result.Ended {
		sb.WriteString("Game over.\n")
	}
	sb.WriteString("\n")
	sb.WriteString(formatGameView(&result.GameView))
	return sb.String()
}

func displayName(name, id string) string {
	if name != "" {
		return name
	}
	return id
}
