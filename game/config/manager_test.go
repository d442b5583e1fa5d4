package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/chat-board-games/game/engine"
)

func writePreset(t *testing.T, dir, file string, p any) {
	t.Helper()
	data, err := json.Marshal(p)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, file), data, 0644))
}

func TestNewManager_Builtins(t *testing.T) {
	m, err := NewManager("")
	require.NoError(t, err)

	p, err := m.Get(engine.Minesweeper, "")
	require.NoError(t, err)
	assert.Equal(t, DefaultPreset, p.Name)
	assert.Equal(t, 9, p.MineCount())

	p, err = m.Get(engine.ConnectFour, "CLASSIC")
	require.NoError(t, err)
	assert.Equal(t, engine.Options{Rows: 6, Cols: 7}, p.Options())

	_, err = m.Get(engine.TicTacToe, "classic")
	assert.ErrorIs(t, err, ErrPresetNotFound)

	for _, p := range m.List() {
		assert.NoError(t, m.Validate(p), "builtin %s/%s", p.Variant, p.Name)
	}
}

func TestNewManager_MissingDir(t *testing.T) {
	_, err := NewManager("/non/existent/path")
	assert.Error(t, err)
}

func TestNewManager_LoadsDirectory(t *testing.T) {
	dir := t.TempDir()
	writePreset(t, dir, "tiny.json", Preset{Name: "tiny", Variant: engine.Minesweeper, Rows: 4, Cols: 4, Mines: engine.MineCount(2)})
	writePreset(t, dir, "override.json", Preset{Name: "classic", Variant: engine.ConnectFour, Rows: 5, Cols: 6})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644))

	m, err := NewManager(dir)
	require.NoError(t, err)

	p, err := m.Get(engine.Minesweeper, "tiny")
	require.NoError(t, err)
	assert.Equal(t, 2, p.MineCount())

	p, err = m.Get(engine.ConnectFour, "classic")
	require.NoError(t, err)
	assert.Equal(t, 5, p.Rows, "files override builtins")
}

func TestPreset_MineCount(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"clear.json":   `{"name": "clear", "variant": "minesweeper", "rows": 4, "cols": 4, "mines": 0}`,
		"unset.json":   `{"name": "unset", "variant": "minesweeper", "rows": 3, "cols": 3}`,
		"columns.json": `{"name": "columns", "variant": "connectfour", "rows": 5, "cols": 5}`,
	}
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0644))
	}

	m, err := NewManager(dir)
	require.NoError(t, err)

	tests := []struct {
		variant   engine.Variant
		name      string
		wantMines int
	}{
		{engine.Minesweeper, "clear", 0},
		{engine.Minesweeper, "unset", 1},
		{engine.ConnectFour, "columns", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := m.Get(tt.variant, tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.wantMines, p.MineCount())

			b, err := engine.NewBoard(p.Variant, p.Options())
			require.NoError(t, err)
			if tt.variant == engine.Minesweeper {
				assert.Equal(t, tt.wantMines, b.Render().Mines)
			}
		})
	}
}

func TestNewManager_RejectsInvalidFile(t *testing.T) {
	dir := t.TempDir()
	writePreset(t, dir, "bad.json", Preset{Name: "bad", Variant: engine.Minesweeper, Rows: 3, Cols: 3, Mines: engine.MineCount(9)})

	_, err := NewManager(dir)
	assert.ErrorIs(t, err, engine.ErrInvalidConfig)
}

func TestManager_Validate(t *testing.T) {
	m, err := NewManager("")
	require.NoError(t, err)

	tests := []struct {
		name    string
		preset  Preset
		wantErr bool
	}{
		{"valid minesweeper", Preset{Name: "ok", Variant: engine.Minesweeper, Rows: 8, Cols: 8, Mines: engine.MineCount(10)}, false},
		{"valid connect four", Preset{Name: "ok", Variant: engine.ConnectFour, Rows: 4, Cols: 4}, false},
		{"missing name", Preset{Variant: engine.ConnectFour, Rows: 4, Cols: 4}, true},
		{"unsized variant", Preset{Name: "x", Variant: engine.TicTacToe, Rows: 3, Cols: 3}, true},
		{"too many columns", Preset{Name: "x", Variant: engine.ConnectFour, Rows: 6, Cols: 9}, true},
		{"mines fill board", Preset{Name: "x", Variant: engine.Minesweeper, Rows: 2, Cols: 2, Mines: engine.MineCount(4)}, true},
		{"name with spaces", Preset{Name: "two words", Variant: engine.ConnectFour, Rows: 4, Cols: 4}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := m.Validate(&tt.preset)
			if tt.wantErr {
				assert.ErrorIs(t, err, engine.ErrInvalidConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestManager_Save(t *testing.T) {
	dir := t.TempDir()
	m, err := NewManager(dir)
	require.NoError(t, err)

	p := &Preset{Name: "narrow", Variant: engine.ConnectFour, Rows: 6, Cols: 4}
	require.NoError(t, m.Save(p))

	got, err := m.Get(engine.ConnectFour, "narrow")
	require.NoError(t, err)
	assert.Equal(t, p, got)

	reloaded, err := NewManager(dir)
	require.NoError(t, err)
	_, err = reloaded.Get(engine.ConnectFour, "narrow")
	assert.NoError(t, err, "saved preset must survive a reload")

	noDir, err := NewManager("")
	require.NoError(t, err)
	assert.Error(t, noDir.Save(p))
}

func TestManager_ConcurrentAccess(t *testing.T) {
	m, err := NewManager(t.TempDir())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = m.Get(engine.Minesweeper, "hard")
		}()
		go func() {
			defer wg.Done()
			_ = m.List()
		}()
	}
	wg.Wait()
}

func TestLoadSettings(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		s, err := LoadSettings()
		require.NoError(t, err)
		assert.Equal(t, time.Hour, s.SessionLifetime)
		assert.Equal(t, 3*time.Second, s.SweepInterval)
		assert.Equal(t, 64, s.MaxConcurrentUpdates)
		assert.Empty(t, s.PresetDir)
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("BOARDGAMES_SESSION_LIFETIME", "24h")
		t.Setenv("BOARDGAMES_PRESET_DIR", "/tmp/presets")

		s, err := LoadSettings()
		require.NoError(t, err)
		assert.Equal(t, 24*time.Hour, s.SessionLifetime)
		assert.Equal(t, "/tmp/presets", s.PresetDir)
	})

	t.Run("invalid", func(t *testing.T) {
		t.Setenv("BOARDGAMES_MAX_CONCURRENT_UPDATES", "0")

		_, err := LoadSettings()
		assert.Error(t, err)
	})

	t.Run("unparseable", func(t *testing.T) {
		t.Setenv("BOARDGAMES_SWEEP_INTERVAL", "soon")

		_, err := LoadSettings()
		assert.Error(t, err)
	})
}
