package session

import (
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/wricardo/chat-board-games/game/engine"
)

var ErrSessionNotFound = engine.ErrSessionNotFound

// Factory builds the board for a new session
type Factory func() (engine.Board, error)

// Option configures a Store
type Option func(*Store)

// WithClock replaces time.Now, for tests
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithLogger sets the store logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// Store holds the live sessions of one variant behind a single mutex.
// Callers must not perform I/O inside WithSession or a Factory.
type Store struct {
	variant  engine.Variant
	sessions map[Key]*Session
	now      func() time.Time
	logger   *zap.Logger
	mu       sync.Mutex
}

// NewStore creates an empty store for variant
func NewStore(variant engine.Variant, opts ...Option) *Store {
	s := &Store{
		variant:  variant,
		sessions: make(map[Key]*Session),
		now:      time.Now,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Variant returns the game this store holds
func (s *Store) Variant() engine.Variant { return s.variant }

// Now returns the store clock
func (s *Store) Now() time.Time { return s.now() }

// GetOrCreate returns the live session for key, creating it with factory if
// there is none. created reports whether factory ran.
func (s *Store) GetOrCreate(key Key, factory Factory) (snap Snapshot, created bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[key]; ok {
		return sess.Snapshot(), false, nil
	}

	board, err := factory()
	if err != nil {
		return Snapshot{}, false, err
	}

	now := s.now()
	sess := &Session{
		Key:       key,
		Variant:   s.variant,
		Board:     board,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.sessions[key] = sess

	s.logger.Debug("session created",
		zap.String("variant", string(s.variant)),
		zap.String("key", key.String()))
	return sess.Snapshot(), true, nil
}

// WithSession runs fn on the session for key while holding the store lock
// and returns fn's error. A session whose board is terminal once fn returns
// is removed before the lock is released.
func (s *Store) WithSession(key Key, fn func(*Session) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[key]
	if !ok {
		return ErrSessionNotFound
	}

	err := fn(sess)

	if sess.Board.Evaluate().Status.Terminal() {
		delete(s.sessions, key)
		s.logger.Debug("session finished",
			zap.String("variant", string(s.variant)),
			zap.String("key", key.String()))
	}
	return err
}

// Get returns a snapshot of the session for key
func (s *Store) Get(key Key) (Snapshot, error) {
	var snap Snapshot
	err := s.WithSession(key, func(sess *Session) error {
		snap = sess.Snapshot()
		return nil
	})
	return snap, err
}

// Remove deletes the session for key and reports whether it existed
func (s *Store) Remove(key Key) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[key]; !ok {
		return false
	}
	delete(s.sessions, key)
	return true
}

// Len returns the number of live sessions
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Snapshots returns every live session ordered by creation time
func (s *Store) Snapshots() []Snapshot {
	s.mu.Lock()
	result := make([]Snapshot, 0, len(s.sessions))
	for _, sess := range s.sessions {
		result = append(result, sess.Snapshot())
	}
	s.mu.Unlock()

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result
}

// Sweep removes sessions created at least lifetime ago
func (s *Store) Sweep(lifetime time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for key, sess := range s.sessions {
		if now.Sub(sess.CreatedAt) >= lifetime {
			delete(s.sessions, key)
			removed++
		}
	}
	return removed
}

// Registry holds one Store per variant
type Registry struct {
	stores map[engine.Variant]*Store
}

// NewRegistry creates a store for every known variant with the same options
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{stores: make(map[engine.Variant]*Store, len(engine.Variants))}
	for _, v := range engine.Variants {
		r.stores[v] = NewStore(v, opts...)
	}
	return r
}

// Store returns the store for variant
func (r *Registry) Store(variant engine.Variant) (*Store, bool) {
	s, ok := r.stores[variant]
	return s, ok
}

// Stores returns every store in variant display order
func (r *Registry) Stores() []*Store {
	out := make([]*Store, 0, len(r.stores))
	for _, v := range engine.Variants {
		out = append(out, r.stores[v])
	}
	return out
}
