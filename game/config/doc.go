// Package config provides presets and process settings for the chat board games.
//
// The config package handles:
//   - Named board-size presets for ConnectFour and Minesweeper
//   - Loading extra presets from a directory of JSON files
//   - Environment settings (session lifetime, sweep interval, concurrency)
//
// Preset Format:
//
//	{
//	  "name": "tiny",
//	  "description": "4x4 with 2 mines",
//	  "variant": "minesweeper",
//	  "rows": 4,
//	  "cols": 4,
//	  "mines": 2
//	}
//
// Usage:
//
//	presets, err := config.NewManager(settings.PresetDir)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	p, err := presets.Get(engine.Minesweeper, "hard")
//	board, err := engine.NewBoard(p.Variant, p.Options())
//
// Settings are read from BOARDGAMES_* variables:
//
//	BOARDGAMES_SESSION_LIFETIME=1h
//	BOARDGAMES_SWEEP_INTERVAL=3s
//	BOARDGAMES_PRESET_DIR=./presets
//	BOARDGAMES_MAX_CONCURRENT_UPDATES=64
package config
