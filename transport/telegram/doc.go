// Package telegram plays board games inside Telegram chats.
//
// A start command (/tictactoe, /reversi, /connectfour, /minesweeper) replies
// to the command message with the board as an inline keyboard. The game is
// keyed by the chat and the command message, so any number of games can run
// in one chat. Each button carries callback data naming the game, the command
// message and the cell:
//
//	tictactoe-42-1-2
//	connectfour-42-3
//
// Finished boards use "noop" buttons. Presses are answered either silently
// or with an alert explaining why the move was refused.
//
// Updates come from long polling or a webhook; both feed Dispatcher.Run,
// which handles a bounded number of updates at once.
package telegram
