// Package api provides HTTP REST API handlers for the chat board games.
//
// The api package implements:
//   - Starting, inspecting and deleting games
//   - Playing moves on behalf of a player
//   - Preset listing
//   - WebSocket upgrade for game watchers
//
// Endpoints:
//
// Games:
//   - POST /api/games/{variant} - Start a game (201), or return the live one (200)
//   - GET /api/games - List live games, optionally ?variant=
//   - GET /api/games/{variant}/{key} - Get one game
//   - DELETE /api/games/{variant}/{key} - Abandon a game
//   - POST /api/games/{variant}/{key}/move - Play a move
//
// Configuration:
//   - GET /api/presets - List board presets
//
// Other:
//   - GET /ws?variant=&key= - Watch a game over WebSocket
//   - GET /healthz - Health check
//
// Keys are "<chat id>:<message id>", e.g. "-1001234:42". Variants accept the
// aliases othello, ttt, connect4 and mines.
//
// Request Format:
//
//	POST /api/games/minesweeper
//	{"chat_id": -100, "message_id": 42, "preset": "hard"}
//
//	POST /api/games/minesweeper/-100:42/move
//	{"player_id": "7", "player_name": "ana", "row": 3, "col": 4, "action": "flag"}
//
// A start request without message_id gets a generated one. Roles ("first",
// "second") are an optional hint; a mismatch with the seat to move is a 409.
//
// Error Handling:
//
// Errors are returned as JSON with a status derived from the game error code:
//
//	{"error": "column is full", "code": "invalid_move"}
//
//	invalid_move      422
//	not_your_turn     409
//	wrong_player      403
//	session_not_found 404
//	invalid_config    400
package api
