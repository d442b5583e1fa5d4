// Command analyze prints quick, human-readable statistics about every board
// preset by playing random games against the engine. For two-player games it
// reports how often each side wins and how long games last; for minesweeper
// it reports how far random clicking gets before a mine goes off.
package main

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/chat-board-games/game/config"
	"github.com/wricardo/chat-board-games/game/engine"
)

// Stats summarizes a batch of random playouts for one board setup.
type Stats struct {
	Label      string
	Games      int
	FirstWins  int
	SecondWins int
	Draws      int
	Cleared    int
	Exploded   int
	TotalMoves int
	// Revealed sums the fraction of safe cells opened per minesweeper game.
	Revealed float64
}

// AvgMoves is the mean number of accepted moves per game
func (s Stats) AvgMoves() float64 {
	if s.Games == 0 {
		return 0
	}
	return float64(s.TotalMoves) / float64(s.Games)
}

// candidates lists every cell a move may target
func candidates(rows, cols int) []engine.Move {
	moves := make([]engine.Move, 0, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			moves = append(moves, engine.Move{Row: r, Col: c})
		}
	}
	return moves
}

// playResult is one finished random game
type playResult struct {
	Outcome engine.Outcome
	Moves   int
	// Revealed is the fraction of safe cells the players opened themselves.
	// A lost board unmasks everything, so it is measured before each move.
	Revealed float64
}

// playout plays uniformly random accepted moves until the game ends. Reversi
// picks from its legal moves; the other games try shuffled candidates until
// one is accepted, since a rejected move leaves the board untouched.
func playout(board engine.Board, rows, cols int, rng *rand.Rand) playResult {
	moves := candidates(rows, cols)
	var res playResult

	for !board.Evaluate().Status.Terminal() {
		if board.Variant() == engine.Minesweeper {
			res.Revealed = revealedFraction(board.Render())
		}

		var accepted bool
		if o, ok := board.(*engine.OthelloBoard); ok {
			accepted = playLegal(o, rng)
		} else {
			accepted = playShuffled(board, moves, rng)
		}
		if !accepted {
			break
		}
		res.Moves++
	}

	res.Outcome = board.Evaluate()
	if res.Outcome.Status == engine.StatusSucceeded {
		res.Revealed = 1
	}
	return res
}

func playLegal(b *engine.OthelloBoard, rng *rand.Rand) bool {
	legal := b.LegalMoves(b.Turn())
	if len(legal) == 0 {
		return false
	}
	p := legal[rng.IntN(len(legal))]
	return b.Apply(b.Turn(), engine.Move{Row: p.Row, Col: p.Col}) == nil
}

func playShuffled(board engine.Board, moves []engine.Move, rng *rand.Rand) bool {
	rng.Shuffle(len(moves), func(i, j int) { moves[i], moves[j] = moves[j], moves[i] })
	for _, m := range moves {
		if board.Variant() == engine.Minesweeper {
			m.Action = engine.ActionReveal
		}
		if err := board.Apply(board.Turn(), m); err == nil {
			return true
		}
	}
	return false
}

// revealedFraction counts opened cells on a board still in play
func revealedFraction(render *engine.RenderModel) float64 {
	safe := render.Rows*render.Cols - render.Mines
	if safe <= 0 {
		return 1
	}
	open := 0
	for _, row := range render.Grid {
		for _, g := range row {
			switch g {
			case engine.GlyphMasked, engine.GlyphFlag, engine.GlyphMine, engine.GlyphExploded:
			default:
				open++
			}
		}
	}
	return float64(open) / float64(safe)
}

// analyze plays games random games of variant with opts
func analyze(label string, variant engine.Variant, opts engine.Options, games int, rng *rand.Rand) (Stats, error) {
	stats := Stats{Label: label, Games: games}

	for i := 0; i < games; i++ {
		opts.Rand = rand.New(rand.NewPCG(rng.Uint64(), rng.Uint64()))
		board, err := engine.NewBoard(variant, opts)
		if err != nil {
			return stats, err
		}
		start := board.Render()

		res := playout(board, start.Rows, start.Cols, rng)
		stats.TotalMoves += res.Moves

		switch res.Outcome.Status {
		case engine.StatusWin:
			if res.Outcome.Winner == engine.RoleFirst {
				stats.FirstWins++
			} else {
				stats.SecondWins++
			}
		case engine.StatusDraw:
			stats.Draws++
		case engine.StatusSucceeded:
			stats.Cleared++
			stats.Revealed += res.Revealed
		case engine.StatusFailed:
			stats.Exploded++
			stats.Revealed += res.Revealed
		}
	}
	return stats, nil
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) * 100 / float64(total)
}

func report(w io.Writer, variant engine.Variant, s Stats) {
	fmt.Fprintf(w, "\n=== Analyzing %s ===\n", s.Label)
	fmt.Fprintf(w, "Games: %d\n", s.Games)
	fmt.Fprintf(w, "Average moves: %.1f\n", s.AvgMoves())

	if variant == engine.Minesweeper {
		fmt.Fprintf(w, "Cleared: %d (%.1f%%)\n", s.Cleared, percent(s.Cleared, s.Games))
		fmt.Fprintf(w, "Exploded: %d (%.1f%%)\n", s.Exploded, percent(s.Exploded, s.Games))
		if s.Games > 0 {
			fmt.Fprintf(w, "Average safe cells opened: %.1f%%\n", s.Revealed*100/float64(s.Games))
		}
		return
	}

	fmt.Fprintf(w, "First player wins: %d (%.1f%%)\n", s.FirstWins, percent(s.FirstWins, s.Games))
	fmt.Fprintf(w, "Second player wins: %d (%.1f%%)\n", s.SecondWins, percent(s.SecondWins, s.Games))
	fmt.Fprintf(w, "Draws: %d (%.1f%%)\n", s.Draws, percent(s.Draws, s.Games))

	switch first := percent(s.FirstWins, s.Games) - percent(s.SecondWins, s.Games); {
	case first > 10:
		fmt.Fprintf(w, "⚠️  First player advantage under random play: %+.1f points\n", first)
	case first < -10:
		fmt.Fprintf(w, "⚠️  Second player advantage under random play: %+.1f points\n", -first)
	default:
		fmt.Fprintf(w, "✅ Sides are roughly balanced under random play\n")
	}
}

// run analyzes the fixed-size games and every preset the manager knows
func run(w io.Writer, presetDir string, games int, seed uint64) error {
	manager, err := config.NewManager(presetDir)
	if err != nil {
		return err
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	for _, v := range []engine.Variant{engine.TicTacToe, engine.Othello} {
		stats, err := analyze(string(v), v, engine.Options{}, games, rng)
		if err != nil {
			return err
		}
		report(w, v, stats)
	}

	for _, p := range manager.List() {
		label := fmt.Sprintf("%s/%s (%dx%d", p.Variant, p.Name, p.Rows, p.Cols)
		if p.Variant == engine.Minesweeper {
			label += fmt.Sprintf(", %d mines", p.MineCount())
		}
		label += ")"

		stats, err := analyze(label, p.Variant, p.Options(), games, rng)
		if err != nil {
			return fmt.Errorf("%s: %w", label, err)
		}
		report(w, p.Variant, stats)
	}
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:  "analyze",
		Usage: "Random-playout statistics for every game and preset",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "preset-dir", Usage: "Directory of extra preset files"},
			&cli.UintFlag{Name: "games", Value: 500, Usage: "Games per board"},
			&cli.UintFlag{Name: "seed", Value: 1, Usage: "Random seed"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return run(os.Stdout, cmd.String("preset-dir"), int(cmd.Uint("games")), uint64(cmd.Uint("seed")))
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
