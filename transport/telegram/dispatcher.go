package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/wricardo/chat-board-games/game/engine"
	"github.com/wricardo/chat-board-games/game/service"
	"github.com/wricardo/chat-board-games/game/session"
	"github.com/wricardo/chat-board-games/transport/websocket"
)

// DefaultConcurrency bounds the number of updates handled at once
const DefaultConcurrency = 64

const (
	alertInvalidMove = "You can't play there"
	alertNotYourTurn = "It's not your turn"
	alertWrongPlayer = "Someone else is playing this side"
	alertNotFound    = "Game not found"
)

const helpText = `/tictactoe - Play Tic-Tac-Toe
/reversi - Play Reversi (also /othello)
/connectfour [preset] - Play Connect Four
/minesweeper [preset | rows cols mines] - Play Minesweeper
/help - Show this message`

const startText = `Board games for group chats.

Start a game with a command, then tap the board. The first player to tap
for a side keeps it until the game ends.

/help for the list of games`

// BotAPI is the subset of *tgbotapi.BotAPI the dispatcher calls
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetMe() (tgbotapi.User, error)
	HandleUpdate(r *http.Request) (*tgbotapi.Update, error)
}

// Publisher receives board states after every change
type Publisher interface {
	PublishRender(variant engine.Variant, key, event string, render *engine.RenderModel)
}

// Dispatcher turns Telegram updates into game service calls
type Dispatcher struct {
	bot       BotAPI
	service   service.GameService
	publisher Publisher
	logger    *zap.Logger
	limit     int

	mu       sync.RWMutex
	username string
}

// Option configures a Dispatcher
type Option func(*Dispatcher)

// WithLogger sets the dispatcher logger
func WithLogger(logger *zap.Logger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithPublisher forwards board updates, typically to the websocket hub
func WithPublisher(p Publisher) Option {
	return func(d *Dispatcher) {
		d.publisher = p
	}
}

// WithConcurrency bounds how many updates Run handles in parallel
func WithConcurrency(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.limit = n
		}
	}
}

// NewDispatcher creates a dispatcher for bot
func NewDispatcher(bot BotAPI, svc service.GameService, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		bot:     bot,
		service: svc,
		logger:  zap.NewNop(),
		limit:   DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Username returns the bot's @username, fetching it on first use
func (d *Dispatcher) Username() (string, error) {
	d.mu.RLock()
	name := d.username
	d.mu.RUnlock()
	if name != "" {
		return name, nil
	}

	me, err := d.bot.GetMe()
	if err != nil {
		return "", fmt.Errorf("failed to get bot identity: %w", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.username == "" {
		d.username = me.UserName
	}
	return d.username, nil
}

// Run handles updates until the channel closes or ctx is done, then waits
// for in-flight handlers.
func (d *Dispatcher) Run(ctx context.Context, updates <-chan tgbotapi.Update) error {
	g := new(errgroup.Group)
	g.SetLimit(d.limit)

loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case update, ok := <-updates:
			if !ok {
				break loop
			}
			g.Go(func() error {
				d.HandleUpdate(ctx, update)
				return nil
			})
		}
	}

	return g.Wait()
}

// WebhookHandler decodes webhook posts and queues them for Run
func (d *Dispatcher) WebhookHandler(updates chan<- tgbotapi.Update) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		update, err := d.bot.HandleUpdate(r)
		if err != nil {
			d.logger.Warn("invalid webhook update", zap.Error(err))
			http.Error(w, "invalid update", http.StatusBadRequest)
			return
		}

		select {
		case updates <- *update:
			w.WriteHeader(http.StatusOK)
		case <-r.Context().Done():
			http.Error(w, "shutting down", http.StatusServiceUnavailable)
		}
	})
}

// HandleUpdate processes one update. Failures are logged and never escape.
func (d *Dispatcher) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	logger := d.logger.With(
		zap.String("correlation_id", uuid.NewString()),
		zap.Int("update_id", update.UpdateID),
	)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("panic in update handler", zap.Any("panic", r), zap.Stack("stack"))
		}
	}()

	var err error
	switch {
	case update.Message != nil:
		err = d.handleMessage(ctx, logger, update.Message)
	case update.CallbackQuery != nil:
		err = d.handleCallback(ctx, logger, update.CallbackQuery)
	}
	if err != nil {
		logger.Error("failed to handle update", zap.Error(err))
	}
}

// addressedToUs reports whether a command is for this bot. Commands without a
// mention are for every bot in the chat.
func (d *Dispatcher) addressedToUs(msg *tgbotapi.Message) (bool, error) {
	withAt := msg.CommandWithAt()
	at := strings.IndexByte(withAt, '@')
	if at < 0 {
		return true, nil
	}
	name, err := d.Username()
	if err != nil {
		return false, err
	}
	return strings.EqualFold(withAt[at+1:], name), nil
}

func (d *Dispatcher) handleMessage(ctx context.Context, logger *zap.Logger, msg *tgbotapi.Message) error {
	if !msg.IsCommand() || msg.Chat == nil {
		return nil
	}
	ok, err := d.addressedToUs(msg)
	if err != nil || !ok {
		return err
	}

	command := strings.ToLower(msg.Command())
	switch command {
	case "help":
		return d.reply(msg, helpText)
	case "start":
		return d.reply(msg, startText)
	}

	variant, ok := engine.ParseVariant(command)
	if !ok {
		return nil
	}

	req, err := startRequest(variant, msg)
	if err != nil {
		return d.reply(msg, err.Error())
	}

	view, err := d.service.StartSession(ctx, req)
	if err != nil {
		if engine.CodeOf(err) == engine.CodeInvalidConfig {
			return d.reply(msg, "Can't start that game: "+err.Error())
		}
		return fmt.Errorf("failed to start %s: %w", variant, err)
	}

	logger.Info("game started from chat",
		zap.String("variant", string(variant)),
		zap.String("key", view.Key),
		zap.Bool("created", view.Created))

	out := tgbotapi.NewMessage(msg.Chat.ID, StatusText(view))
	out.ReplyToMessageID = msg.MessageID
	out.ReplyMarkup = Keyboard(view.Render, view.MessageID)
	if _, err := d.bot.Send(out); err != nil {
		return fmt.Errorf("failed to send board: %w", err)
	}

	d.publish(view, websocket.EventState)
	return nil
}

// startRequest reads "/minesweeper hard" or "/minesweeper 6 6 5"
func startRequest(variant engine.Variant, msg *tgbotapi.Message) (service.StartRequest, error) {
	req := service.StartRequest{
		Variant: variant,
		Key:     session.Key{ChatID: msg.Chat.ID, MessageID: int64(msg.MessageID)},
	}

	args := strings.Fields(msg.CommandArguments())
	switch {
	case len(args) == 0:
	case len(args) == 1:
		req.Preset = strings.ToLower(args[0])
	case len(args) == 3 && variant == engine.Minesweeper:
		var dims [3]int
		for i, a := range args {
			n, err := strconv.Atoi(a)
			// a board may have no mines, but never no rows or columns
			if err != nil || n < 0 || (n == 0 && i < 2) {
				return req, fmt.Errorf("usage: /minesweeper [preset | rows cols mines]")
			}
			dims[i] = n
		}
		req.Rows, req.Cols, req.Mines = dims[0], dims[1], engine.MineCount(dims[2])
	default:
		return req, fmt.Errorf("usage: /%s [preset]", variant)
	}
	return req, nil
}

func (d *Dispatcher) reply(msg *tgbotapi.Message, text string) error {
	out := tgbotapi.NewMessage(msg.Chat.ID, text)
	out.ReplyToMessageID = msg.MessageID
	if _, err := d.bot.Send(out); err != nil {
		return fmt.Errorf("failed to send reply: %w", err)
	}
	return nil
}

func (d *Dispatcher) answer(query *tgbotapi.CallbackQuery, alert string) error {
	var cfg tgbotapi.CallbackConfig
	if alert == "" {
		cfg = tgbotapi.NewCallback(query.ID, "")
	} else {
		cfg = tgbotapi.NewCallbackWithAlert(query.ID, alert)
	}
	if _, err := d.bot.Request(cfg); err != nil {
		return fmt.Errorf("failed to answer callback: %w", err)
	}
	return nil
}

// alertFor maps a rejected move to the text shown to the player. An empty
// string answers silently.
func alertFor(variant engine.Variant, err error) (string, bool) {
	switch engine.CodeOf(err) {
	case engine.CodeInvalidMove:
		if variant == engine.Minesweeper {
			return "", true
		}
		return alertInvalidMove, true
	case engine.CodeNotYourTurn:
		return alertNotYourTurn, true
	case engine.CodeWrongPlayer:
		return alertWrongPlayer, true
	case engine.CodeSessionNotFound:
		return alertNotFound, true
	}
	return "", false
}

func identityOf(u *tgbotapi.User) session.Identity {
	if u == nil {
		return session.Identity{}
	}
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		name = u.UserName
	}
	return session.Identity{ID: strconv.FormatInt(u.ID, 10), Name: name}
}

func (d *Dispatcher) handleCallback(ctx context.Context, logger *zap.Logger, query *tgbotapi.CallbackQuery) error {
	cb, err := ParseCallback(query.Data)
	if err != nil {
		var perr *ParseError
		if errors.As(err, &perr) {
			logger.Debug("ignoring callback", zap.String("data", query.Data), zap.String("reason", perr.Reason))
		}
		return d.answer(query, "")
	}
	if query.Message == nil || query.Message.Chat == nil {
		return d.answer(query, alertNotFound)
	}

	key := session.Key{ChatID: query.Message.Chat.ID, MessageID: cb.MessageID}
	result, err := d.service.ApplyMove(ctx, service.MoveRequest{
		Variant: cb.Variant,
		Key:     key,
		Player:  identityOf(query.From),
		Move:    engine.Move{Row: cb.Row, Col: cb.Col},
	})
	if err != nil {
		alert, known := alertFor(cb.Variant, err)
		if !known {
			logger.Error("move failed", zap.String("key", key.String()), zap.Error(err))
		}
		return d.answer(query, alert)
	}

	edit := tgbotapi.NewEditMessageTextAndMarkup(
		query.Message.Chat.ID,
		query.Message.MessageID,
		StatusText(&result.GameView),
		Keyboard(result.Render, cb.MessageID),
	)

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		if _, err := d.bot.Request(edit); err != nil {
			return fmt.Errorf("failed to edit board: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return d.answer(query, "")
	})

	event := websocket.EventState
	if result.Ended {
		event = websocket.EventFinished
		logger.Info("chat game finished",
			zap.String("variant", string(cb.Variant)),
			zap.String("key", key.String()),
			zap.String("status", string(result.Outcome.Status)))
	}
	d.publish(&result.GameView, event)

	return g.Wait()
}

func (d *Dispatcher) publish(view *service.GameView, event string) {
	if d.publisher != nil {
		d.publisher.PublishRender(view.Variant, view.Key, event, view.Render)
	}
}
