// Command validate checks board preset JSON files before the server loads
// them. For every *.json file in the directory (default ../presets) it
// checks:
//   - JSON structure and required fields
//   - Variant is a sized game (connectfour or minesweeper)
//   - Dimensions fit an inline keyboard and the board can be built
//   - Mine counts leave at least one safe cell
//   - No two files claim the same variant and name
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/chat-board-games/game/config"
	"github.com/wricardo/chat-board-games/game/engine"
)

// ValidationResult captures the outcome of validating a single file.
// Info holds notes that do not make the file invalid.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
	Info   []string
	Preset *config.Preset
}

// validatePreset loads one file through the preset manager's own rules and
// adds notes about how the board will play.
func validatePreset(manager *config.Manager, filePath string) ValidationResult {
	result := ValidationResult{
		File:  filepath.Base(filePath),
		Valid: true,
	}

	p, err := manager.LoadFile(filePath)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
		return result
	}
	result.Preset = p

	result.Info = append(result.Info, fmt.Sprintf("✓ %s/%s: %dx%d", p.Variant, p.Name, p.Rows, p.Cols))

	if builtin, err := manager.Get(p.Variant, p.Name); err == nil {
		result.Info = append(result.Info, fmt.Sprintf("overrides built-in %s/%s (%dx%d)", builtin.Variant, builtin.Name, builtin.Rows, builtin.Cols))
	}

	switch p.Variant {
	case engine.Minesweeper:
		cells, mines := p.Rows*p.Cols, p.MineCount()
		if p.Mines == nil {
			result.Info = append(result.Info, fmt.Sprintf("✓ No mine count: %d mines for this size", mines))
		}
		result.Info = append(result.Info, fmt.Sprintf("✓ Mine density: %d%%", mines*100/cells))
		// the first click only opens a region if its 3x3 neighborhood can stay clear
		if cells-9 < mines {
			result.Info = append(result.Info, "⚠ crowded board: the first click will not open a region")
		}
	case engine.ConnectFour:
		if p.Mines != nil {
			result.Info = append(result.Info, "⚠ mines are ignored for connectfour")
		}
		if p.Rows < 4 && p.Cols < 4 {
			result.Info = append(result.Info, "⚠ board too small for four in a row: every game is a draw")
		}
	}

	return result
}

// validateDir validates every preset file in dir and writes a report to w.
// It returns false when any file is invalid.
func validateDir(dir string, w io.Writer) (bool, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return false, fmt.Errorf("error finding preset files: %w", err)
	}
	if len(files) == 0 {
		fmt.Fprintf(w, "No preset files in %s\n", dir)
		return true, nil
	}

	// A manager without a directory knows only the built-ins, which is what
	// each file is compared against.
	manager, err := config.NewManager("")
	if err != nil {
		return false, err
	}

	allValid := true
	seen := make(map[string]string)
	for _, file := range files {
		result := validatePreset(manager, file)

		if result.Preset != nil {
			id := string(result.Preset.Variant) + "/" + strings.ToLower(result.Preset.Name)
			if other, dup := seen[id]; dup {
				result.Valid = false
				result.Errors = append(result.Errors, fmt.Sprintf("duplicate preset %s, also defined in %s", id, other))
			}
			seen[id] = result.File
		}

		fmt.Fprintf(w, "\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Fprintln(w, "✅ VALID")
			for _, info := range result.Info {
				fmt.Fprintln(w, "  "+info)
			}
		} else {
			fmt.Fprintln(w, "❌ INVALID")
			allValid = false
			for _, e := range result.Errors {
				fmt.Fprintln(w, "  ❌ "+e)
			}
		}
	}

	fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Fprintln(w, "✅ All presets are valid!")
	} else {
		fmt.Fprintln(w, "❌ Some presets have errors")
	}
	return allValid, nil
}

func main() {
	cmd := &cli.Command{
		Name:      "validate",
		Usage:     "Validate board preset files",
		ArgsUsage: "[dir]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			dir := "../presets"
			if cmd.Args().Present() {
				dir = cmd.Args().First()
			}
			ok, err := validateDir(dir, os.Stdout)
			if err != nil {
				return err
			}
			if !ok {
				return cli.Exit("", 1)
			}
			return nil
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
