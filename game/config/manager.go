package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/wricardo/chat-board-games/game/engine"
)

var ErrPresetNotFound = errors.New("preset not found")

// DefaultPreset is used when a start request names none
const DefaultPreset = "classic"

// Preset is a named board size for one of the sized variants
type Preset struct {
	Name        string         `json:"name" validate:"required,alphanum"`
	Description string         `json:"description,omitempty"`
	Variant     engine.Variant `json:"variant" validate:"required,oneof=connectfour minesweeper"`
	Rows        int            `json:"rows" validate:"min=1,max=8"`
	Cols        int            `json:"cols" validate:"min=1,max=8"`
	Mines       *int           `json:"mines,omitempty" validate:"omitempty,gte=0"`
}

// Options converts the preset into board construction options
func (p *Preset) Options() engine.Options {
	opts := engine.Options{Rows: p.Rows, Cols: p.Cols}
	if p.Mines != nil {
		opts.Mines = engine.MineCount(*p.Mines)
	}
	return opts
}

// MineCount is the number of mines the preset's board gets. A minesweeper
// preset without a count uses the size-scaled default.
func (p *Preset) MineCount() int {
	switch {
	case p.Mines != nil:
		return *p.Mines
	case p.Variant == engine.Minesweeper:
		return engine.DefaultMines(p.Rows, p.Cols)
	}
	return 0
}

func builtinPresets() []*Preset {
	return []*Preset{
		{Name: "classic", Description: "Standard 6x7 board", Variant: engine.ConnectFour, Rows: 6, Cols: 7},
		{Name: "mini", Description: "Quick 5x5 board", Variant: engine.ConnectFour, Rows: 5, Cols: 5},
		{Name: "wide", Description: "Seven rows, eight columns", Variant: engine.ConnectFour, Rows: 7, Cols: 8},
		{Name: "small", Description: "5x5 with 3 mines", Variant: engine.Minesweeper, Rows: 5, Cols: 5, Mines: engine.MineCount(3)},
		{Name: "classic", Description: "8x8 with 9 mines", Variant: engine.Minesweeper, Rows: 8, Cols: 8, Mines: engine.MineCount(9)},
		{Name: "hard", Description: "8x8 with 16 mines", Variant: engine.Minesweeper, Rows: 8, Cols: 8, Mines: engine.MineCount(16)},
	}
}

func presetKey(variant engine.Variant, name string) string {
	return string(variant) + "/" + strings.ToLower(name)
}

// Manager resolves presets from the built-in set and an optional directory
// of JSON files. Files override built-ins of the same variant and name.
type Manager struct {
	presetDir string
	presets   map[string]*Preset
	validate  *validator.Validate
	mu        sync.RWMutex
}

// NewManager creates a preset manager. An empty presetDir disables files.
func NewManager(presetDir string) (*Manager, error) {
	if presetDir != "" {
		if _, err := os.Stat(presetDir); os.IsNotExist(err) {
			return nil, fmt.Errorf("preset directory does not exist: %s", presetDir)
		}
	}

	m := &Manager{
		presetDir: presetDir,
		presets:   make(map[string]*Preset),
		validate:  validator.New(validator.WithRequiredStructEnabled()),
	}
	for _, p := range builtinPresets() {
		m.presets[presetKey(p.Variant, p.Name)] = p
	}

	if err := m.loadDir(); err != nil {
		return nil, fmt.Errorf("failed to load presets: %w", err)
	}
	return m, nil
}

// Validate checks field ranges and that the board can actually be built
func (m *Manager) Validate(p *Preset) error {
	if err := m.validate.Struct(p); err != nil {
		return engine.WrapError(engine.CodeInvalidConfig, "invalid preset "+p.Name, err)
	}
	if _, err := engine.NewBoard(p.Variant, p.Options()); err != nil {
		return fmt.Errorf("preset %s: %w", p.Name, err)
	}
	return nil
}

// Get returns the preset for variant and name. An empty name selects
// DefaultPreset.
func (m *Manager) Get(variant engine.Variant, name string) (*Preset, error) {
	if name == "" {
		name = DefaultPreset
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.presets[presetKey(variant, name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrPresetNotFound, variant, name)
	}
	c := *p
	return &c, nil
}

// List returns every preset sorted by variant then name
func (m *Manager) List() []*Preset {
	m.mu.RLock()
	result := make([]*Preset, 0, len(m.presets))
	for _, p := range m.presets {
		c := *p
		result = append(result, &c)
	}
	m.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		if result[i].Variant != result[j].Variant {
			return result[i].Variant < result[j].Variant
		}
		return result[i].Name < result[j].Name
	})
	return result
}

// Save validates p, writes it to the preset directory and caches it
func (m *Manager) Save(p *Preset) error {
	if err := m.Validate(p); err != nil {
		return err
	}
	if m.presetDir == "" {
		return errors.New("no preset directory configured")
	}

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal preset: %w", err)
	}

	filename := fmt.Sprintf("%s_%s.json", p.Variant, strings.ToLower(p.Name))
	if err := os.WriteFile(filepath.Join(m.presetDir, filename), data, 0644); err != nil {
		return fmt.Errorf("failed to write preset file: %w", err)
	}

	c := *p
	m.mu.Lock()
	m.presets[presetKey(p.Variant, p.Name)] = &c
	m.mu.Unlock()
	return nil
}

// LoadFile reads and validates a single preset file
func (m *Manager) LoadFile(path string) (*Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read preset file: %w", err)
	}

	var p Preset
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse preset: %w", err)
	}
	if err := m.Validate(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (m *Manager) loadDir() error {
	if m.presetDir == "" {
		return nil
	}

	entries, err := os.ReadDir(m.presetDir)
	if err != nil {
		return fmt.Errorf("failed to read preset directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		p, err := m.LoadFile(filepath.Join(m.presetDir, entry.Name()))
		if err != nil {
			return fmt.Errorf("%s: %w", entry.Name(), err)
		}
		m.presets[presetKey(p.Variant, p.Name)] = p
	}
	return nil
}
