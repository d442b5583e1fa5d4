// Command boardgames runs the chat board games server.
//
// It supports three commands:
//  1. "serve" – runs the HTTP server exposing the REST API, WebSocket and an /mcp endpoint
//  2. "telegram" – runs the Telegram bot next to the HTTP server, by long polling or webhook
//  3. "mcp" – runs an MCP stdio server and spins up an internal HTTP API if none is available
//
// Flags (or their environment variables) control the listen address, session
// lifetimes, preset directory, debug logging and optional ngrok tunneling.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"
	"golang.org/x/sync/errgroup"

	"github.com/wricardo/chat-board-games/api"
	"github.com/wricardo/chat-board-games/game/config"
	"github.com/wricardo/chat-board-games/game/service"
	"github.com/wricardo/chat-board-games/game/session"
	"github.com/wricardo/chat-board-games/telemetry"
	"github.com/wricardo/chat-board-games/transport/mcp"
	"github.com/wricardo/chat-board-games/transport/telegram"
	"github.com/wricardo/chat-board-games/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Chat Board Games"
)

const shutdownTimeout = 10 * time.Second

// main loads .env, then runs the command tree until a signal arrives.
func main() {
	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Warning: Error loading .env file: %v", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newCommand().Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "addr",
			Value:   "localhost:8080",
			Usage:   "HTTP listen address",
			Sources: cli.EnvVars("BOARDGAMES_ADDR"),
		},
		&cli.BoolFlag{
			Name:    "debug",
			Usage:   "Enable debug logging",
			Sources: cli.EnvVars("BOARDGAMES_DEBUG"),
		},
		&cli.StringFlag{
			Name:  "preset-dir",
			Usage: "Directory of board preset JSON files (overrides " + config.EnvPrefix + "PRESET_DIR)",
		},
		&cli.DurationFlag{
			Name:  "session-lifetime",
			Usage: "Evict games older than this (overrides " + config.EnvPrefix + "SESSION_LIFETIME)",
		},
		&cli.DurationFlag{
			Name:  "sweep-interval",
			Usage: "How often expired games are swept (overrides " + config.EnvPrefix + "SWEEP_INTERVAL)",
		},
		&cli.BoolFlag{
			Name:    "ngrok",
			Usage:   "Expose the HTTP server through an ngrok tunnel",
			Sources: cli.EnvVars("NGROK_ENABLED"),
		},
		&cli.StringFlag{
			Name:    "ngrok-auth",
			Usage:   "Ngrok auth token",
			Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN"),
		},
		&cli.StringFlag{
			Name:    "ngrok-domain",
			Usage:   "Custom ngrok domain (optional)",
			Sources: cli.EnvVars("NGROK_DOMAIN"),
		},
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:    "boardgames",
		Usage:   "Turn-based board games for chats, REST, WebSocket and MCP",
		Version: Version,
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			{
				Name:    "serve",
				Aliases: []string{"server", "http"},
				Usage:   "Run the HTTP server with API, WebSocket, and MCP endpoint",
				Action:  runServe,
			},
			{
				Name:  "telegram",
				Usage: "Run the Telegram bot and the HTTP server",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "token",
						Usage:   "Telegram bot token",
						Sources: cli.EnvVars("TELEGRAM_BOT_TOKEN"),
					},
					&cli.StringFlag{
						Name:    "webhook-url",
						Usage:   "Public base URL for webhook delivery; long polling when empty",
						Sources: cli.EnvVars("TELEGRAM_WEBHOOK_URL"),
					},
					&cli.StringFlag{
						Name:  "webhook-path",
						Value: "/telegram/webhook",
						Usage: "Route receiving webhook updates",
					},
				},
				Action: runTelegram,
			},
			{
				Name:    "mcp",
				Aliases: []string{"stdio-mcp", "mcp-stdio"},
				Usage:   "Run an MCP stdio server, starting an internal HTTP API if none answers on --addr",
				Action:  runMCP,
			},
		},
		DefaultCommand: "serve",
	}
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// loadSettings reads the environment and applies flag overrides
func loadSettings(cmd *cli.Command) (config.Settings, error) {
	settings, err := config.LoadSettings()
	if err != nil {
		return settings, err
	}
	if cmd.IsSet("preset-dir") {
		settings.PresetDir = cmd.String("preset-dir")
	}
	if cmd.IsSet("session-lifetime") {
		settings.SessionLifetime = cmd.Duration("session-lifetime")
	}
	if cmd.IsSet("sweep-interval") {
		settings.SweepInterval = cmd.Duration("sweep-interval")
	}
	return settings, settings.Validate()
}

// runtime holds the components shared by every command
type runtime struct {
	logger    *zap.Logger
	settings  config.Settings
	sessions  *session.Registry
	collector *session.Collector
	service   service.GameService
	hub       *websocket.Hub
	api       *api.Server
}

// newRuntime wires the preset manager, session stores and game service.
func newRuntime(settings config.Settings, logger *zap.Logger) (*runtime, error) {
	presets, err := config.NewManager(settings.PresetDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create preset manager: %w", err)
	}

	sessions := session.NewRegistry(session.WithLogger(logger))
	svc := service.NewGameService(sessions, presets, service.WithLogger(logger))
	hub := websocket.NewHub(logger)

	return &runtime{
		logger:    logger,
		settings:  settings,
		sessions:  sessions,
		collector: session.NewCollector(settings.SessionLifetime, settings.SweepInterval, logger, sessions.Stores()...),
		service:   svc,
		hub:       hub,
		api:       api.NewServer(svc, hub, logger),
	}, nil
}

// start launches the hub and the session sweeper. Both stop with ctx.
func (rt *runtime) start(ctx context.Context) {
	go rt.hub.Run(ctx)
	go rt.collector.Run(ctx)
}

// mountMCP serves the MCP tools on POST /mcp, proxying to baseURL
func (rt *runtime) mountMCP(baseURL string) {
	rt.api.Handle("/mcp", mcp.NewClient(baseURL).HTTPHandler())
}

// baseURLFor turns a listen address into a URL the process can call itself on
func baseURLFor(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "http://" + addr
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	return "http://" + net.JoinHostPort(host, port)
}

type ngrokOptions struct {
	enabled bool
	auth    string
	domain  string
}

func ngrokFrom(cmd *cli.Command) ngrokOptions {
	return ngrokOptions{
		enabled: cmd.Bool("ngrok"),
		auth:    cmd.String("ngrok-auth"),
		domain:  cmd.String("ngrok-domain"),
	}
}

// serveHTTP runs the API on addr, and through ngrok when enabled, until ctx
// is done. onTunnel is called with the public URL once the tunnel is up.
func (rt *runtime) serveHTTP(ctx context.Context, addr string, tunnel ngrokOptions, onTunnel func(string) error) error {
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      rt.api,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		rt.logger.Info("HTTP server listening",
			zap.String("addr", addr),
			zap.String("api", fmt.Sprintf("http://%s/api/games", addr)),
			zap.String("websocket", fmt.Sprintf("ws://%s/ws?variant=<variant>&key=<key>", addr)),
			zap.String("mcp", fmt.Sprintf("http://%s/mcp", addr)))

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
		return nil
	})

	if tunnel.enabled {
		g.Go(func() error {
			return rt.serveNgrok(gctx, tunnel, onTunnel)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		rt.logger.Info("shutting down HTTP server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			rt.logger.Warn("HTTP server shutdown error", zap.Error(err))
		}
		return nil
	})

	return g.Wait()
}

func (rt *runtime) serveNgrok(ctx context.Context, opts ngrokOptions, onTunnel func(string) error) error {
	if opts.auth == "" {
		rt.logger.Warn("ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN)")
		return nil
	}

	var endpoint ngrokConfig.Tunnel
	if opts.domain != "" {
		endpoint = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(opts.domain))
	} else {
		endpoint = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, endpoint, ngrok.WithAuthtoken(opts.auth))
	if err != nil {
		return fmt.Errorf("failed to start ngrok tunnel: %w", err)
	}
	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			rt.logger.Warn("failed to close ngrok tunnel", zap.Error(err))
		}
	}()

	publicURL := tun.URL()
	rt.logger.Info("ngrok tunnel established",
		zap.String("url", publicURL),
		zap.String("api", publicURL+"/api/games"),
		zap.String("mcp", publicURL+"/mcp"))

	if onTunnel != nil {
		if err := onTunnel(publicURL); err != nil {
			return err
		}
	}

	if err := http.Serve(tun, rt.api); err != nil && ctx.Err() == nil {
		return fmt.Errorf("ngrok server error: %w", err)
	}
	rt.logger.Info("ngrok tunnel closed")
	return nil
}

// setup builds the logger, tracing, settings and runtime common to all commands
func setup(ctx context.Context, cmd *cli.Command) (*runtime, func(), error) {
	logger, err := newLogger(cmd.Bool("debug"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}

	shutdownTracing, err := telemetry.Setup(ctx, "chat-board-games")
	if err != nil {
		logger.Warn("tracing disabled", zap.Error(err))
		shutdownTracing = func(context.Context) error { return nil }
	}

	cleanup := func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Warn("failed to flush traces", zap.Error(err))
		}
		_ = logger.Sync()
	}

	settings, err := loadSettings(cmd)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	rt, err := newRuntime(settings, logger)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	logger.Info("starting",
		zap.String("app", AppName),
		zap.String("version", Version),
		zap.String("command", cmd.Name),
		zap.Duration("session_lifetime", settings.SessionLifetime),
		zap.Duration("sweep_interval", settings.SweepInterval))

	rt.start(ctx)
	return rt, cleanup, nil
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	rt, cleanup, err := setup(ctx, cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	addr := cmd.String("addr")
	rt.mountMCP(baseURLFor(addr))
	return rt.serveHTTP(ctx, addr, ngrokFrom(cmd), nil)
}

func runTelegram(ctx context.Context, cmd *cli.Command) error {
	token := cmd.String("token")
	if token == "" {
		return errors.New("a bot token is required (use --token or TELEGRAM_BOT_TOKEN)")
	}

	rt, cleanup, err := setup(ctx, cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return fmt.Errorf("failed to connect to Telegram: %w", err)
	}
	bot.Debug = cmd.Bool("debug")

	dispatcher := telegram.NewDispatcher(bot, rt.service,
		telegram.WithLogger(rt.logger),
		telegram.WithPublisher(rt.hub),
		telegram.WithConcurrency(rt.settings.MaxConcurrentUpdates))

	username, err := dispatcher.Username()
	if err != nil {
		return err
	}
	rt.logger.Info("authorized on Telegram", zap.String("username", username))

	addr := cmd.String("addr")
	rt.mountMCP(baseURLFor(addr))
	tunnel := ngrokFrom(cmd)
	webhookURL := cmd.String("webhook-url")

	g, gctx := errgroup.WithContext(ctx)

	if webhookURL == "" && !tunnel.enabled {
		if _, err := bot.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
			rt.logger.Warn("failed to clear webhook", zap.Error(err))
		}

		u := tgbotapi.NewUpdate(0)
		u.Timeout = 60
		updates := bot.GetUpdatesChan(u)
		go func() {
			<-gctx.Done()
			bot.StopReceivingUpdates()
		}()

		rt.logger.Info("receiving updates by long polling")
		g.Go(func() error { return dispatcher.Run(gctx, updates) })
		g.Go(func() error { return rt.serveHTTP(gctx, addr, tunnel, nil) })
		return g.Wait()
	}

	path := cmd.String("webhook-path")
	updates := make(chan tgbotapi.Update, rt.settings.MaxConcurrentUpdates)
	rt.api.Handle(path, dispatcher.WebhookHandler(updates)).Methods(http.MethodPost)

	register := func(base string) error {
		hook, err := tgbotapi.NewWebhook(strings.TrimRight(base, "/") + path)
		if err != nil {
			return fmt.Errorf("invalid webhook url: %w", err)
		}
		if _, err := bot.Request(hook); err != nil {
			return fmt.Errorf("failed to register webhook: %w", err)
		}
		rt.logger.Info("webhook registered", zap.String("url", hook.URL.String()))
		return nil
	}

	var onTunnel func(string) error
	if webhookURL != "" {
		if err := register(webhookURL); err != nil {
			return err
		}
	} else {
		onTunnel = register
	}

	g.Go(func() error { return dispatcher.Run(gctx, updates) })
	g.Go(func() error { return rt.serveHTTP(gctx, addr, tunnel, onTunnel) })
	return g.Wait()
}

// probeAPI reports whether a game server answers at baseURL
func probeAPI(ctx context.Context, baseURL string) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/healthz", nil)
	if err != nil {
		return false
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// runMCP runs an MCP stdio server. It reuses an API already answering on
// --addr; otherwise it serves an internal API on a random loopback port.
func runMCP(ctx context.Context, cmd *cli.Command) error {
	baseURL := baseURLFor(cmd.String("addr"))

	if !probeAPI(ctx, baseURL) {
		rt, cleanup, err := setup(ctx, cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}

		internal := &http.Server{Handler: rt.api}
		go func() {
			if err := internal.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				rt.logger.Error("internal HTTP server error", zap.Error(err))
			}
		}()
		defer internal.Close()

		baseURL = "http://" + listener.Addr().String()
		rt.logger.Info("MCP stdio server ready (using internal HTTP server)", zap.String("api", baseURL))
	}

	client := mcp.NewClient(baseURL)
	if err := server.ServeStdio(client.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}
