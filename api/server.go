package api

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/wricardo/chat-board-games/game/engine"
	"github.com/wricardo/chat-board-games/game/service"
	"github.com/wricardo/chat-board-games/game/session"
	"github.com/wricardo/chat-board-games/transport/websocket"
)

const requestIDHeader = "X-Request-ID"

// Server represents the REST API server
type Server struct {
	service  service.GameService
	hub      *websocket.Hub
	router   *mux.Router
	validate *validator.Validate
	logger   *zap.Logger
}

// NewServer creates a new API server. hub may be nil, which disables
// pushes and the /ws endpoint.
func NewServer(gameService service.GameService, hub *websocket.Hub, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		service:  gameService,
		hub:      hub,
		router:   mux.NewRouter(),
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	s.router.Use(s.requestLogger)

	api := s.router.PathPrefix("/api").Subrouter()

	// Games
	api.HandleFunc("/games", s.handleListGames).Methods("GET")
	api.HandleFunc("/games/{variant}", s.handleStartGame).Methods("POST")
	api.HandleFunc("/games/{variant}/{key}", s.handleGetGame).Methods("GET")
	api.HandleFunc("/games/{variant}/{key}", s.handleDeleteGame).Methods("DELETE")
	api.HandleFunc("/games/{variant}/{key}/move", s.handleMove).Methods("POST")

	// Configuration
	api.HandleFunc("/presets", s.handleListPresets).Methods("GET")

	// WebSocket
	s.router.HandleFunc("/ws", s.handleWebSocket)

	s.router.HandleFunc("/healthz", s.handleHealth).Methods("GET")
}

// Handle mounts an extra handler, such as the MCP endpoint or a chat webhook
func (s *Server) Handle(path string, handler http.Handler) *mux.Route {
	return s.router.Handle(path, handler)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		s.logger.Debug("http request",
			zap.String("request_id", id),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("elapsed", time.Since(start)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Hijack is required by the websocket upgrader
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("hijacking not supported")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, map[string]string{"error": message, "code": code})
}

// statusFor maps a classified game error to an HTTP status
func statusFor(err error) int {
	switch engine.CodeOf(err) {
	case engine.CodeInvalidMove:
		return http.StatusUnprocessableEntity
	case engine.CodeNotYourTurn:
		return http.StatusConflict
	case engine.CodeWrongPlayer:
		return http.StatusForbidden
	case engine.CodeSessionNotFound:
		return http.StatusNotFound
	case engine.CodeInvalidConfig:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (s *Server) respondServiceError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	code := string(engine.CodeOf(err))
	if code == "" {
		code = "internal"
		s.logger.Error("game service failure", zap.Error(err))
	}
	respondError(w, status, code, err.Error())
}

func (s *Server) publish(variant engine.Variant, key, event string, render *engine.RenderModel) {
	if s.hub != nil {
		s.hub.PublishRender(variant, key, event, render)
	}
}

// pathGame extracts the variant and key route variables
func pathGame(r *http.Request) (engine.Variant, session.Key, error) {
	vars := mux.Vars(r)
	variant, ok := engine.ParseVariant(vars["variant"])
	if !ok {
		return "", session.Key{}, engine.WrapError(engine.CodeInvalidConfig, fmt.Sprintf("unknown game %q", vars["variant"]), nil)
	}
	if raw, ok := vars["key"]; ok {
		key, err := session.ParseKey(raw)
		if err != nil {
			return "", session.Key{}, engine.WrapError(engine.CodeInvalidConfig, "invalid game key", err)
		}
		return variant, key, nil
	}
	return variant, session.Key{}, nil
}

// generatedMessageID gives REST-created games a key when the caller has no
// chat message to anchor them to.
func generatedMessageID() int64 {
	id := uuid.New()
	return int64(binary.BigEndian.Uint64(id[:8]) >> 1)
}

// Game Handlers

type startGameRequest struct {
	ChatID    int64  `json:"chat_id"`
	MessageID int64  `json:"message_id" validate:"gte=0"`
	Preset    string `json:"preset,omitempty" validate:"omitempty,alphanum"`
	Rows      int    `json:"rows,omitempty" validate:"gte=0"`
	Cols      int    `json:"cols,omitempty" validate:"gte=0"`
	Mines     *int   `json:"mines,omitempty" validate:"omitempty,gte=0"`
}

func (s *Server) handleStartGame(w http.ResponseWriter, r *http.Request) {
	variant, _, err := pathGame(r)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	var req startGameRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
			return
		}
	}
	if err := s.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	if req.MessageID == 0 {
		req.MessageID = generatedMessageID()
	}

	view, err := s.service.StartSession(r.Context(), service.StartRequest{
		Variant: variant,
		Key:     session.Key{ChatID: req.ChatID, MessageID: req.MessageID},
		Preset:  req.Preset,
		Rows:    req.Rows,
		Cols:    req.Cols,
		Mines:   req.Mines,
	})
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	status := http.StatusOK
	if view.Created {
		status = http.StatusCreated
		s.publish(variant, view.Key, websocket.EventState, view.Render)
	}
	respondJSON(w, status, view)
}

func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	views, err := s.service.ListSessions(r.Context())
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	if raw := r.URL.Query().Get("variant"); raw != "" {
		variant, ok := engine.ParseVariant(raw)
		if !ok {
			respondError(w, http.StatusBadRequest, string(engine.CodeInvalidConfig), fmt.Sprintf("unknown game %q", raw))
			return
		}
		filtered := make([]*service.GameView, 0, len(views))
		for _, v := range views {
			if v.Variant == variant {
				filtered = append(filtered, v)
			}
		}
		views = filtered
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(views),
		"games": views,
	})
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	variant, key, err := pathGame(r)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	view, err := s.service.GetSession(r.Context(), variant, key)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	if s.hub != nil {
		view.Watchers = s.hub.Watchers(websocket.Topic(variant, view.Key))
	}
	respondJSON(w, http.StatusOK, view)
}

func (s *Server) handleDeleteGame(w http.ResponseWriter, r *http.Request) {
	variant, key, err := pathGame(r)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	if err := s.service.DeleteSession(r.Context(), variant, key); err != nil {
		s.respondServiceError(w, err)
		return
	}
	s.publish(variant, key.String(), websocket.EventDeleted, nil)
	w.WriteHeader(http.StatusNoContent)
}

type moveRequest struct {
	PlayerID   string `json:"player_id" validate:"required"`
	PlayerName string `json:"player_name,omitempty"`
	Role       string `json:"role,omitempty" validate:"omitempty,oneof=first second"`
	Row        int    `json:"row"`
	Col        int    `json:"col"`
	Action     string `json:"action,omitempty" validate:"omitempty,oneof=reveal chord flag"`
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	variant, key, err := pathGame(r)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			respondError(w, http.StatusBadRequest, "bad_request", fmt.Sprintf("invalid field %s", verrs[0].Field()))
			return
		}
		respondError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	result, err := s.service.ApplyMove(r.Context(), service.MoveRequest{
		Variant: variant,
		Key:     key,
		Player:  session.Identity{ID: req.PlayerID, Name: req.PlayerName},
		Role:    engine.Role(req.Role),
		Move:    engine.Move{Row: req.Row, Col: req.Col, Action: engine.Action(req.Action)},
	})
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	event := websocket.EventState
	if result.Ended {
		event = websocket.EventFinished
	}
	s.publish(variant, result.Key, event, result.Render)
	respondJSON(w, http.StatusOK, result)
}

// Configuration Handlers

func (s *Server) handleListPresets(w http.ResponseWriter, r *http.Request) {
	presets, err := s.service.ListPresets(r.Context())
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(presets),
		"presets": presets,
	})
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		http.Error(w, "websocket disabled", http.StatusNotFound)
		return
	}

	query := r.URL.Query()
	variant, ok := engine.ParseVariant(query.Get("variant"))
	if !ok {
		http.Error(w, "variant parameter required", http.StatusBadRequest)
		return
	}
	key, err := session.ParseKey(query.Get("key"))
	if err != nil {
		http.Error(w, "key parameter required", http.StatusBadRequest)
		return
	}

	view, err := s.service.GetSession(r.Context(), variant, key)
	if err != nil {
		http.Error(w, "Invalid session", statusFor(err))
		return
	}

	s.hub.ServeWS(w, r, websocket.Topic(variant, view.Key), &websocket.Message{
		Event:   websocket.EventState,
		Variant: variant,
		Key:     view.Key,
		Render:  view.Render,
	})
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
