package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/chat-board-games/game/config"
	"github.com/wricardo/chat-board-games/game/engine"
	"github.com/wricardo/chat-board-games/game/service"
)

const (
	ServerName    = "Chat Board Games"
	ServerVersion = "1.0.0"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		ServerName,
		ServerVersion,
		server.WithToolCapabilities(true),
		server.WithInstructions(`Chat Board Games - MCP Interface

This is a thin client that proxies all requests to the REST API server.
Games are shared with chat players: a game key is "<chat id>:<message id>".

GAMES:
- tictactoe: 3x3, three in a row wins
- reversi: 8x8 Othello, most discs wins
- connectfour: drop discs into columns, four in a row wins
- minesweeper: cooperative, reveal every safe cell

AVAILABLE TOOLS:
- start_game: Start a game (or fetch the live one for a key)
- make_move: Play one move as a named player
- game_state: Get the board of a game
- list_games: List live games
- delete_game: Abandon a game
- list_presets: List board size presets
- game_rules: Rules and move format per game

The first player to move for a side claims it for the rest of the game.`),
	)

	c.registerTools()
}

var (
	variantSchema = map[string]interface{}{
		"type":        "string",
		"enum":        []string{string(engine.TicTacToe), string(engine.Othello), string(engine.ConnectFour), string(engine.Minesweeper)},
		"description": "Game to play",
	}
	keySchema = map[string]interface{}{
		"type":        "string",
		"description": `Game key "<chat id>:<message id>", as returned by start_game`,
	}
)

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "start_game",
		Description: "Start a new game. Starting an existing key returns the live game.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"variant": variantSchema,
				"chat_id": map[string]interface{}{
					"type":        "number",
					"description": "Chat to attach the game to (optional)",
				},
				"message_id": map[string]interface{}{
					"type":        "number",
					"description": "Message anchoring the game (optional, generated when absent)",
				},
				"preset": map[string]interface{}{
					"type":        "string",
					"description": "Board preset for connectfour or minesweeper (see list_presets)",
				},
				"rows":  map[string]interface{}{"type": "number", "description": "Board rows (optional)"},
				"cols":  map[string]interface{}{"type": "number", "description": "Board columns (optional)"},
				"mines": map[string]interface{}{"type": "number", "description": "Mine count for minesweeper (optional)"},
			},
			Required: []string{"variant"},
		},
	}, c.handleStartGame)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "make_move",
		Description: "Play one move. Rows and columns are 0-based from the top left; connectfour only needs col.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"variant": variantSchema,
				"key":     keySchema,
				"player_id": map[string]interface{}{
					"type":        "string",
					"description": "Stable id of the player making the move",
				},
				"player_name": map[string]interface{}{
					"type":        "string",
					"description": "Display name (optional)",
				},
				"row": map[string]interface{}{"type": "number", "description": "Row index"},
				"col": map[string]interface{}{"type": "number", "description": "Column index"},
				"action": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"reveal", "chord", "flag"},
					"description": "Minesweeper action (optional; default reveals masked cells and chords open ones)",
				},
				"role": map[string]interface{}{
					"type":        "string",
					"enum":        []string{string(engine.RoleFirst), string(engine.RoleSecond)},
					"description": "Side you expect to be playing (optional)",
				},
			},
			Required: []string{"variant", "key", "player_id"},
		},
	}, c.handleMakeMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current board of a game",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"variant": variantSchema,
				"key":     keySchema,
			},
			Required: []string{"variant", "key"},
		},
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_games",
		Description: "List all live games",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"variant": variantSchema,
			},
		},
	}, c.handleListGames)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "delete_game",
		Description: "Abandon a game",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"variant": variantSchema,
				"key":     keySchema,
			},
			Required: []string{"variant", "key"},
		},
	}, c.handleDeleteGame)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_presets",
		Description: "List board size presets",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListPresets)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_rules",
		Description: "Get the rules and board legend of a game",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"variant": variantSchema,
			},
		},
	}, c.handleGameRules)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// HTTPHandler serves single JSON-RPC messages posted to it
func (c *Client) HTTPHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := c.mcpServer.HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		if response == nil {
			w.WriteHeader(http.StatusAccepted)
			return
		}
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	})
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			if code := errResp["code"]; code != "" {
				return fmt.Errorf("%s (%s)", msg, code)
			}
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func gamePath(request mcp.CallToolRequest) (string, error) {
	variant := request.GetString("variant", "")
	key := request.GetString("key", "")
	if variant == "" || key == "" {
		return "", fmt.Errorf("variant and key are required")
	}
	return fmt.Sprintf("/api/games/%s/%s", url.PathEscape(variant), url.PathEscape(key)), nil
}

// Tool handlers

func (c *Client) handleStartGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	variant := request.GetString("variant", "")
	if variant == "" {
		return mcp.NewToolResultError("variant is required"), nil
	}

	body := map[string]interface{}{
		"chat_id":    request.GetInt("chat_id", 0),
		"message_id": request.GetInt("message_id", 0),
		"preset":     request.GetString("preset", ""),
		"rows":       request.GetInt("rows", 0),
		"cols":       request.GetInt("cols", 0),
	}
	// an omitted mine count lets the server scale the preset's density
	if _, ok := request.GetArguments()["mines"]; ok {
		body["mines"] = request.GetInt("mines", 0)
	}

	var view service.GameView
	if err := c.apiCall(ctx, "POST", "/api/games/"+url.PathEscape(variant), body, &view); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	prefix := "Started"
	if !view.Created {
		prefix = "Resumed"
	}
	result := fmt.Sprintf("%s %s game %s\n\n%s", prefix, view.Variant, view.Key, formatGameView(&view))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleMakeMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := gamePath(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	body := map[string]interface{}{
		"player_id":   request.GetString("player_id", ""),
		"player_name": request.GetString("player_name", ""),
		"row":         request.GetInt("row", 0),
		"col":         request.GetInt("col", 0),
		"action":      request.GetString("action", ""),
		"role":        request.GetString("role", ""),
	}

	var result service.MoveResult
	if err := c.apiCall(ctx, "POST", path+"/move", body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatMoveResult(&result)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := gamePath(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var view service.GameView
	if err := c.apiCall(ctx, "GET", path, nil, &view); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameView(&view)), nil
}

func (c *Client) handleListGames(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := "/api/games"
	if variant := request.GetString("variant", ""); variant != "" {
		path += "?variant=" + url.QueryEscape(variant)
	}

	var response struct {
		Count int                `json:"count"`
		Games []service.GameView `json:"games"`
	}
	if err := c.apiCall(ctx, "GET", path, nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Live Games (%d):\n\n", response.Count)
	for _, g := range response.Games {
		turn := ""
		if g.Render != nil && g.Render.Turn != engine.RoleNone {
			turn = fmt.Sprintf(", turn: %s", g.Render.Turn)
		}
		fmt.Fprintf(&sb, "- %s %s (created %s%s)\n", g.Variant, g.Key, g.CreatedAt.Format("15:04:05"), turn)
	}

	return mcp.NewToolResultText(sb.String()), nil
}

func (c *Client) handleDeleteGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := gamePath(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := c.apiCall(ctx, "DELETE", path, nil, nil); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Deleted %s game %s", request.GetString("variant", ""), request.GetString("key", ""))), nil
}

func (c *Client) handleListPresets(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count   int              `json:"count"`
		Presets []*config.Preset `json:"presets"`
	}
	if err := c.apiCall(ctx, "GET", "/api/presets", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Presets (%d):\n\n", response.Count)
	for _, p := range response.Presets {
		fmt.Fprintf(&sb, "- %s/%s: %dx%d", p.Variant, p.Name, p.Rows, p.Cols)
		if p.Variant == engine.Minesweeper {
			fmt.Fprintf(&sb, ", %d mines", p.MineCount())
		}
		if p.Description != "" {
			fmt.Fprintf(&sb, " (%s)", p.Description)
		}
		sb.WriteString("\n")
	}

	return mcp.NewToolResultText(sb.String()), nil
}

func (c *Client) handleGameRules(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw := request.GetString("variant", "")
	if raw == "" {
		var sb strings.Builder
		for _, v := range engine.Variants {
			sb.WriteString(rules[v])
			sb.WriteString("\n")
		}
		sb.WriteString(legend)
		return mcp.NewToolResultText(sb.String()), nil
	}

	variant, ok := engine.ParseVariant(raw)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("unknown game %q", raw)), nil
	}
	return mcp.NewToolResultText(rules[variant] + "\n" + legend), nil
}
