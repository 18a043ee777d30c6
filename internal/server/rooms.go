package server

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"holdemroom/internal/game"
)

// reapInterval is how often empty rooms are swept. Most rooms are
// removed eagerly on leave/disconnect; the sweep catches stragglers.
const reapInterval = time.Minute

// RoomConfig carries the table rules applied to every room.
type RoomConfig struct {
	SmallBlind    int
	BigBlind      int
	StartingStack int
	DefaultRoom   string
}

// Rooms is the registry of live rooms. Rooms are created lazily on
// first reference and destroyed once empty of players and observers.
type Rooms struct {
	mu     sync.Mutex
	rooms  map[string]*Room
	cfg    RoomConfig
	logger *log.Logger
	clock  quartz.Clock
}

// NewRooms creates an empty registry.
func NewRooms(cfg RoomConfig, logger *log.Logger, clock quartz.Clock) *Rooms {
	return &Rooms{
		rooms:  make(map[string]*Room),
		cfg:    cfg,
		logger: logger.WithPrefix("rooms"),
		clock:  clock,
	}
}

// Normalize canonicalizes a room code: trimmed, lowercased, and the
// configured default when empty.
func (rs *Rooms) Normalize(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return rs.cfg.DefaultRoom
	}
	return code
}

// Get returns the room for the given normalized code, creating it on
// first reference.
func (rs *Rooms) Get(code string) *Room {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if room, ok := rs.rooms[code]; ok {
		return room
	}
	room := &Room{
		code: code,
		table: game.NewTable(code,
			game.WithBlinds(rs.cfg.SmallBlind, rs.cfg.BigBlind),
			game.WithStartingStack(rs.cfg.StartingStack),
		),
		observers: make(map[*Connection]struct{}),
		logger:    rs.logger.WithPrefix("room").With("code", code),
	}
	rs.rooms[code] = room
	rs.logger.Info("Created room", "code", code)
	return room
}

// Prune removes the room if it holds no players and no observers.
func (rs *Rooms) Prune(code string) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	if room, ok := rs.rooms[code]; ok && room.Empty() {
		delete(rs.rooms, code)
		rs.logger.Info("Removed empty room", "code", code)
	}
}

// StartReaper sweeps empty rooms periodically until ctx is cancelled.
func (rs *Rooms) StartReaper(ctx context.Context) {
	rs.clock.TickerFunc(ctx, reapInterval, func() error {
		rs.mu.Lock()
		for code, room := range rs.rooms {
			if room.Empty() {
				delete(rs.rooms, code)
				rs.logger.Info("Removed empty room", "code", code)
			}
		}
		rs.mu.Unlock()
		return nil
	}, "room-reaper")
}

// Room binds one table to its observers. Every mutation runs under the
// room mutex so no two actions interleave; the broadcast that follows
// is best-effort and never blocks the mutation.
type Room struct {
	code      string
	mu        sync.Mutex
	table     *game.Table
	observers map[*Connection]struct{}
	logger    *log.Logger
}

// Update applies fn to the table and, when it succeeds, broadcasts the
// new state to every observer. A failed fn leaves the table untouched
// and nothing is sent.
func (r *Room) Update(fn func(*game.Table) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := fn(r.table); err != nil {
		return err
	}
	r.broadcastLocked()
	return nil
}

// View returns the redacted projection for one viewer.
func (r *Room) View(viewerID string) game.View {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.table.Redact(viewerID)
}

// Subscribe registers an observer and sends it the current state.
func (r *Room) Subscribe(c *Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.observers[c] = struct{}{}
	if msg, err := NewMessage(MessageTypeState, r.table.Redact(c.playerID)); err == nil {
		_ = c.Send(msg)
	}
	r.logger.Debug("Observer subscribed", "player", c.playerID, "observers", len(r.observers))
}

// Unsubscribe removes an observer. Disconnects are silent; other
// players learn of departures only through the table banner.
func (r *Room) Unsubscribe(c *Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.observers, c)
}

// DropPlayer closes any observer streams belonging to the player.
func (r *Room) DropPlayer(playerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for c := range r.observers {
		if c.playerID == playerID {
			delete(r.observers, c)
			_ = c.Close()
		}
	}
}

// Empty reports whether the room holds no players and no observers.
func (r *Room) Empty() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.table.Players) == 0 && len(r.observers) == 0
}

// broadcastLocked fans the current state out to every observer, each
// redacted for its own viewer. Observers that cannot keep up are
// dropped so they never stall the others.
func (r *Room) broadcastLocked() {
	for c := range r.observers {
		msg, err := NewMessage(MessageTypeState, r.table.Redact(c.playerID))
		if err != nil {
			continue
		}
		if err := c.Send(msg); err != nil {
			delete(r.observers, c)
		}
	}
}
