// Package session provides session storage for the chat board games.
//
// The session package implements:
//   - A Store per game variant guarded by one mutex
//   - Composite session keys (chat id + announcing message id)
//   - Seat binding for the two players of a board
//   - Time-bounded eviction through a background Collector
//
// Core Types:
//
// Store maps a Key to a Session. A Session wraps one engine.Board together
// with its Binding, per-player move counts and timestamps. Registry groups
// one Store per variant so the Collector and listings can walk all of them.
//
// Concurrency:
//
// Every read and mutation of a session runs inside the store lock, either
// through GetOrCreate's factory or through WithSession. Callbacks must not
// block: extract a Snapshot inside the callback and perform network I/O
// after it returns. Two concurrent moves on one key are applied in lock
// order and the second sees the board left by the first.
//
// Usage:
//
//	store := session.NewStore(engine.TicTacToe)
//	key := session.Key{ChatID: chatID, MessageID: msgID}
//
//	snap, created, err := store.GetOrCreate(key, func() (engine.Board, error) {
//		return engine.NewTicTacToe(), nil
//	})
//
//	err = store.WithSession(key, func(s *session.Session) error {
//		role := s.Board.Turn()
//		if err := s.Binding.Check(role, player); err != nil {
//			return err
//		}
//		if err := s.Board.Apply(role, move); err != nil {
//			return err
//		}
//		if err := s.Binding.BindOrCheck(role, player); err != nil {
//			return err
//		}
//		snap = s.Snapshot()
//		return nil
//	})
//
// Cleanup:
//
// Sessions are removed when their board reaches a terminal state, when
// deleted explicitly, or by the Collector once they are older than the
// configured lifetime.
package session
