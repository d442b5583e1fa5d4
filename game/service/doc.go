// Package service provides the business logic layer for the chat board games.
//
// The service package implements:
//   - Starting games under a (chat, message) key
//   - Turn and seat enforcement on every move
//   - Session listing and deletion across all games
//   - Preset resolution for sized boards
//
// Architecture:
//
// The service layer sits between the transports (Telegram, HTTP, WebSocket,
// MCP) and the session stores. A move runs entirely inside the store's
// critical section: the seat is checked, the board mutated, the seat bound
// and a snapshot taken. Transports render from the returned copy after the
// lock is released and never touch a live board.
//
// Usage:
//
//	presets, _ := config.NewManager("")
//	svc := service.NewGameService(session.NewRegistry(), presets,
//		service.WithLogger(logger))
//
//	key := session.Key{ChatID: chatID, MessageID: msgID}
//	view, err := svc.StartSession(ctx, service.StartRequest{Variant: engine.TicTacToe, Key: key})
//
//	result, err := svc.ApplyMove(ctx, service.MoveRequest{
//		Variant: engine.TicTacToe,
//		Key:     key,
//		Player:  session.Identity{ID: "42", Name: "ana"},
//		Move:    engine.Move{Row: 1, Col: 1},
//	})
//
// Errors are classified with engine.Code; use engine.CodeOf to map them to a
// transport response.
package service
