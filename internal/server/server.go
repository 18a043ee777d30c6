// Package server exposes the table engine over HTTP: JSON endpoints
// for join/leave/action/state, a websocket push stream per observer,
// and static asset delivery.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"

	"holdemroom/internal/game"
)

// Server is the HTTP front of the room engine.
type Server struct {
	rooms      *Rooms
	upgrader   websocket.Upgrader
	logger     *log.Logger
	clock      quartz.Clock
	httpServer *http.Server
	staticDir  string
}

// New creates a server listening on addr, serving static assets from
// staticDir.
func New(addr string, rooms *Rooms, staticDir string, logger *log.Logger, clock quartz.Clock) *Server {
	s := &Server{
		rooms: rooms,
		upgrader: websocket.Upgrader{
			// Rooms are joined by shared code, not origin.
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger:    logger.WithPrefix("server"),
		clock:     clock,
		staticDir: staticDir,
	}
	s.httpServer = &http.Server{Addr: addr, Handler: s.Handler()}
	return s
}

// Handler builds the route table. Exposed so tests can drive the
// server through httptest.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/join", s.handleJoin)
	mux.HandleFunc("/api/leave", s.handleLeave)
	mux.HandleFunc("/api/action", s.handleAction)
	mux.HandleFunc("/api/state", s.handleState)
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.Handle("/", http.FileServer(http.Dir(s.staticDir)))
	return mux
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("Starting server", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

type joinRequest struct {
	RoomCode string `json:"roomCode"`
	Name     string `json:"name"`
}

type joinResponse struct {
	PlayerID string    `json:"playerId"`
	Room     game.View `json:"room"`
}

type leaveRequest struct {
	RoomCode string `json:"roomCode"`
	PlayerID string `json:"playerId"`
}

type actionRequest struct {
	RoomCode string `json:"roomCode"`
	PlayerID string `json:"playerId"`
	Type     string `json:"type"`
	Amount   int    `json:"amount"`
	WinnerID string `json:"winnerId"`
}

func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req joinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	room := s.rooms.Get(s.rooms.Normalize(req.RoomCode))

	var resp joinResponse
	err := room.Update(func(t *game.Table) error {
		p, err := t.Join(req.Name)
		if err != nil {
			return err
		}
		resp = joinResponse{PlayerID: p.ID, Room: t.Redact(p.ID)}
		return nil
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.logger.Info("Player joined", "room", room.code, "player", resp.PlayerID)
	s.writeJSON(w, resp)
}

func (s *Server) handleLeave(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req leaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	code := s.rooms.Normalize(req.RoomCode)
	room := s.rooms.Get(code)
	room.DropPlayer(req.PlayerID)
	_ = room.Update(func(t *game.Table) error {
		t.Leave(req.PlayerID)
		return nil
	})
	s.rooms.Prune(code)

	s.logger.Info("Player left", "room", code, "player", req.PlayerID)
	_, _ = fmt.Fprint(w, "ok")
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.RoomCode == "" || req.PlayerID == "" || req.Type == "" {
		http.Error(w, game.ErrMissingParameters.Error(), http.StatusBadRequest)
		return
	}

	room := s.rooms.Get(s.rooms.Normalize(req.RoomCode))
	err := room.Update(func(t *game.Table) error {
		if _, err := t.Player(req.PlayerID); err != nil {
			return err
		}
		switch req.Type {
		case "start":
			return t.StartHand(req.PlayerID)
		case "fold":
			return t.Act(req.PlayerID, game.Fold, 0)
		case "checkCall":
			return t.Act(req.PlayerID, game.CheckCall, 0)
		case "betRaise":
			return t.Act(req.PlayerID, game.BetRaise, req.Amount)
		case "declare":
			return t.DeclareWinner(req.WinnerID)
		default:
			return fmt.Errorf("%w: unknown action %q", game.ErrInvalidAction, req.Type)
		}
	})
	if err != nil {
		s.logger.Debug("Action rejected", "room", room.code, "player", req.PlayerID, "type", req.Type, "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.logger.Info("Action applied", "room", room.code, "player", req.PlayerID, "type", req.Type, "amount", req.Amount)
	_, _ = fmt.Fprint(w, "ok")
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	room := s.rooms.Get(s.rooms.Normalize(r.URL.Query().Get("roomCode")))
	s.writeJSON(w, room.View(r.URL.Query().Get("playerId")))
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	roomCode := r.URL.Query().Get("roomCode")
	if roomCode == "" {
		http.Error(w, "roomCode required", http.StatusBadRequest)
		return
	}
	playerID := r.URL.Query().Get("playerId")

	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	code := s.rooms.Normalize(roomCode)
	room := s.rooms.Get(code)
	conn := NewConnection(ws, code, playerID, s.logger, s.clock)
	conn.Start()
	room.Subscribe(conn)

	<-conn.Done()
	room.Unsubscribe(conn)
	s.rooms.Prune(code)
}

func (s *Server) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to encode response", "error", err)
	}
}
