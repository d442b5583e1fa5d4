// Package mcp exposes the chat board games to AI agents over the Model
// Context Protocol.
//
// The Client is a thin proxy: every tool calls the REST API of a running
// server, so agents share sessions with Telegram chats and WebSocket
// watchers.
//
// MCP Tools:
//   - start_game: Start a game, or resume the live one under a key
//   - make_move: Play one move as a named player
//   - game_state: Board, turn and seat holders of a game
//   - list_games: Live games, optionally for one variant
//   - delete_game: Abandon a game
//   - list_presets: Board size presets
//   - game_rules: Rules and legend
//
// Boards are returned as text grids with row and column indices:
//
//	    0 1 2
//	 0  X . .
//	 1  . O .
//	 2  . . .
//
// Transport Modes:
//   - Stdio: server.ServeStdio(client.GetMCPServer())
//   - HTTP: client.HTTPHandler() mounted at POST /mcp
package mcp
