// Package geometry remembers the window size and position across restarts.
package geometry

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/bytedance/sonic"
)

// Default size used when nothing valid is stored.
const (
	DefaultWidth  = 1400
	DefaultHeight = 900
)

// Geometry is the persisted window record. X and Y are optional; without them the
// window manager picks the position.
type Geometry struct {
	Width  int  `json:"width"`
	Height int  `json:"height"`
	X      *int `json:"x,omitempty"`
	Y      *int `json:"y,omitempty"`
}

// Default returns the fallback geometry.
func Default() Geometry {
	return Geometry{Width: DefaultWidth, Height: DefaultHeight}
}

// At returns a geometry with a position.
func At(width, height, x, y int) Geometry {
	return Geometry{Width: width, Height: height, X: &x, Y: &y}
}

// Valid reports whether the size is usable.
func (g Geometry) Valid() bool {
	return g.Width > 0 && g.Height > 0
}

// HasPosition reports whether both coordinates are present.
func (g Geometry) HasPosition() bool {
	return g.X != nil && g.Y != nil
}

// Equal compares size and position.
func (g Geometry) Equal(o Geometry) bool {
	if g.Width != o.Width || g.Height != o.Height || g.HasPosition() != o.HasPosition() {
		return false
	}
	return !g.HasPosition() || (*g.X == *o.X && *g.Y == *o.Y)
}

func (g Geometry) String() string {
	if g.HasPosition() {
		return fmt.Sprintf("%dx%d+%d+%d", g.Width, g.Height, *g.X, *g.Y)
	}
	return fmt.Sprintf("%dx%d", g.Width, g.Height)
}

// Store reads and writes the geometry record at one path.
type Store struct {
	path string
	mu   sync.Mutex
}

// NewStore returns a store for path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the record location.
func (s *Store) Path() string { return s.path }

// Load returns the stored geometry, or Default when the record is missing,
// unreadable or malformed.
func (s *Store) Load() Geometry {
	g, err := s.read()
	if err != nil {
		return Default()
	}
	return g
}

func (s *Store) read() (Geometry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var g Geometry
	data, err := os.ReadFile(s.path)
	if err != nil {
		return g, err
	}
	if err := sonic.Unmarshal(data, &g); err != nil {
		return g, fmt.Errorf("decode %s: %w", s.path, err)
	}
	if !g.Valid() {
		return g, fmt.Errorf("decode %s: non-positive size %dx%d", s.path, g.Width, g.Height)
	}
	if g.X == nil || g.Y == nil {
		g.X, g.Y = nil, nil
	}
	return g, nil
}

// Save writes g atomically (temp file + rename).
func (s *Store) Save(g Geometry) error {
	data, err := sonic.Marshal(g)
	if err != nil {
		return fmt.Errorf("encode geometry: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".window-state-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write geometry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close geometry: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}

// Reset deletes the record so the next start uses Default.
func (s *Store) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove %s: %w", s.path, err)
	}
	return nil
}
