// Package websocket pushes live board states to watchers of a game session.
//
// The package uses a hub-and-spoke model: a central Hub owns every watcher
// connection, keyed by topic. A topic is "<variant>/<chat>:<message>", so a
// watcher of one Telegram game never hears about another.
//
// Message Protocol:
//
// Watchers do not send commands; moves go through the REST API, the MCP
// tools or the chat. Outgoing messages are JSON:
//
//	{"topic": "connectfour/-100:42", "event": "state_update", "render": {...}}
//
// Events are state_update after every accepted move, game_over for the move
// that ended the game and deleted when a session is removed.
//
// Usage:
//
//	hub := websocket.NewHub(logger)
//	go hub.Run(ctx)
//
//	hub.ServeWS(w, r, websocket.Topic(variant, key), initial)
//	hub.PublishRender(variant, key, websocket.EventState, render)
//
// Concurrency:
//
// Only the Run goroutine touches the topic maps. Publish never blocks the
// caller; a full queue drops the message and a watcher that cannot keep up
// is disconnected.
package websocket
