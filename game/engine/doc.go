// Package engine provides the board rules for the chat board games.
//
// The engine package implements:
//   - TicTacToe on a 3x3 grid with 8 line checks
//   - Othello/Reversi with 8-ray capture scanning and pass handling
//   - ConnectFour with gravity drops on a configurable grid
//   - Minesweeper with queue-based cascade reveal, chording and flags
//
// Core Types:
//
// Every variant implements Board. A board is pure data: it never performs
// I/O and is not safe for concurrent use; the session store serializes
// access. Render returns a RenderModel of transport-neutral Glyph tokens
// that the Telegram, REST and WebSocket layers translate for display.
//
// Usage:
//
//	board, err := engine.NewBoard(engine.ConnectFour, engine.Options{Rows: 6, Cols: 7})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	if err := board.Apply(board.Turn(), engine.Move{Col: 3}); err != nil {
//		// errors.Is(err, engine.ErrColumnFilled), errors.Is(err, engine.ErrInvalidMove), ...
//	}
//	outcome := board.Evaluate()
//
// Errors:
//
// Rule violations are *Error values classified by Code. errors.Is matches
// a class sentinel such as ErrInvalidMove or a specific one such as
// ErrColumnFilled. A rejected move leaves the board unchanged.
package engine
