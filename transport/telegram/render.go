package telegram

import (
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/wricardo/chat-board-games/game/engine"
	"github.com/wricardo/chat-board-games/game/service"
	"github.com/wricardo/chat-board-games/game/session"
)

var titles = map[engine.Variant]string{
	engine.TicTacToe:   "Tic-Tac-Toe",
	engine.Othello:     "Reversi",
	engine.ConnectFour: "Connect Four",
	engine.Minesweeper: "Minesweeper",
}

var sideEmoji = map[engine.Variant][2]string{
	engine.TicTacToe:   {"❌", "⭕"},
	engine.Othello:     {"⚫", "⚪"},
	engine.ConnectFour: {"🔴", "🟡"},
}

var numberEmoji = [9]string{"➖", "1️⃣", "2️⃣", "3️⃣", "4️⃣", "5️⃣", "6️⃣", "7️⃣", "8️⃣"}

// Emoji returns the button text for one cell
func Emoji(variant engine.Variant, g engine.Glyph, ended bool) string {
	switch g {
	case engine.GlyphCross:
		return "❌"
	case engine.GlyphNought:
		return "⭕"
	case engine.GlyphBlack:
		return "⚫"
	case engine.GlyphWhite:
		return "⚪"
	case engine.GlyphRed:
		return "🔴"
	case engine.GlyphYellow:
		return "🟡"
	case engine.GlyphHint, engine.GlyphMasked:
		return "➕"
	case engine.GlyphFlag:
		return "🚩"
	case engine.GlyphMine:
		return "💣"
	case engine.GlyphExploded:
		return "💥"
	case engine.GlyphEmpty:
		// every connectfour column stays playable until the board is done
		if variant == engine.ConnectFour && !ended {
			return "➕"
		}
		return "➖"
	}
	if len(g) == 2 && g[0] == 'n' && g[1] >= '0' && g[1] <= '8' {
		return numberEmoji[g[1]-'0']
	}
	return "❔"
}

// Keyboard renders the board as an inline keyboard. Finished boards get
// noop buttons so presses no longer reach the game.
func Keyboard(render *engine.RenderModel, messageID int64) tgbotapi.InlineKeyboardMarkup {
	ended := render.Outcome.Status.Terminal()
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(render.Grid))
	for r, line := range render.Grid {
		row := make([]tgbotapi.InlineKeyboardButton, 0, len(line))
		for c, g := range line {
			data := NoopData
			if !ended {
				data = EncodeCallback(Callback{Variant: render.Variant, MessageID: messageID, Row: r, Col: c})
			}
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(Emoji(render.Variant, g, ended), data))
		}
		rows = append(rows, row)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func sideLabel(variant engine.Variant, role engine.Role) string {
	sides, ok := sideEmoji[variant]
	if !ok || role.Index() < 0 {
		return string(role)
	}
	return sides[role.Index()]
}

func playerName(id *session.Identity) string {
	if id.Name != "" {
		return id.Name
	}
	return id.ID
}

// StatusText is the message body shown above the keyboard
func StatusText(view *service.GameView) string {
	var sb strings.Builder
	sb.WriteString(titles[view.Variant])
	sb.WriteString("\n\n")

	if view.Variant == engine.Minesweeper {
		writeCooperative(&sb, view)
	} else {
		writeCompetitive(&sb, view)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func writeCompetitive(sb *strings.Builder, view *service.GameView) {
	render := view.Render
	for i, p := range view.Players {
		if p == nil {
			continue
		}
		role := engine.RoleFirst
		if i == 1 {
			role = engine.RoleSecond
		}
		fmt.Fprintf(sb, "%s: %s\n", sideLabel(view.Variant, role), playerName(p))
	}
	if render.Score != nil {
		fmt.Fprintf(sb, "%s %d : %d %s\n", sideLabel(view.Variant, engine.RoleFirst), render.Score.First,
			render.Score.Second, sideLabel(view.Variant, engine.RoleSecond))
	}
	sb.WriteString("\n")

	switch render.Outcome.Status {
	case engine.StatusWin:
		winner := render.Outcome.Winner
		name := sideLabel(view.Variant, winner)
		if idx := winner.Index(); idx >= 0 && view.Players[idx] != nil {
			name = playerName(view.Players[idx])
		}
		fmt.Fprintf(sb, "%s wins", name)
	case engine.StatusDraw:
		sb.WriteString("Draw")
	default:
		if render.Passed {
			fmt.Fprintf(sb, "%s has no move and passes\n", sideLabel(view.Variant, render.Turn.Opponent()))
		}
		fmt.Fprintf(sb, "Turn: %s", sideLabel(view.Variant, render.Turn))
	}
}

func writeCooperative(sb *strings.Builder, view *service.GameView) {
	render := view.Render
	for _, p := range view.Participants {
		fmt.Fprintf(sb, "%s: %d moves\n", playerName(&p.Identity), p.Steps)
	}
	fmt.Fprintf(sb, "🚩 %d / 💣 %d\n\n", render.Flags, render.Mines)

	status := render.Outcome.Status
	if !status.Terminal() {
		return
	}
	if view.StartedAt != nil {
		elapsed := view.UpdatedAt.Sub(*view.StartedAt).Truncate(time.Second)
		fmt.Fprintf(sb, "Time: %d min %d sec\n", int(elapsed.Minutes()), int(elapsed.Seconds())%60)
	}
	if status == engine.StatusSucceeded {
		sb.WriteString("Cleared!")
		return
	}
	who := "Someone"
	if view.Trigger != nil {
		who = playerName(view.Trigger)
	}
	fmt.Fprintf(sb, "%s hit a mine", who)
}
