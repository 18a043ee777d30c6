// Package client is a small programmatic client for the room server,
// used by the terminal client.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"

	"holdemroom/internal/game"
)

// Client talks to one room server.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for the server at baseURL (e.g.
// "http://localhost:3000").
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
	}
}

type joinRequest struct {
	RoomCode string `json:"roomCode"`
	Name     string `json:"name"`
}

type joinResponse struct {
	PlayerID string    `json:"playerId"`
	Room     game.View `json:"room"`
}

type actionRequest struct {
	RoomCode string `json:"roomCode"`
	PlayerID string `json:"playerId"`
	Type     string `json:"type"`
	Amount   int    `json:"amount,omitempty"`
	WinnerID string `json:"winnerId,omitempty"`
}

type leaveRequest struct {
	RoomCode string `json:"roomCode"`
	PlayerID string `json:"playerId"`
}

// Join seats the named player in a room and returns the assigned
// player id with the first redacted view.
func (c *Client) Join(ctx context.Context, roomCode, name string) (string, game.View, error) {
	var resp joinResponse
	err := c.post(ctx, "/api/join", joinRequest{RoomCode: roomCode, Name: name}, &resp)
	if err != nil {
		return "", game.View{}, err
	}
	return resp.PlayerID, resp.Room, nil
}

// Act submits a player action. Type is one of start, fold, checkCall,
// betRaise, declare.
func (c *Client) Act(ctx context.Context, roomCode, playerID, actionType string, amount int) error {
	return c.post(ctx, "/api/action", actionRequest{
		RoomCode: roomCode,
		PlayerID: playerID,
		Type:     actionType,
		Amount:   amount,
	}, nil)
}

// DeclareWinner short-circuits the hand in favor of winnerID.
func (c *Client) DeclareWinner(ctx context.Context, roomCode, playerID, winnerID string) error {
	return c.post(ctx, "/api/action", actionRequest{
		RoomCode: roomCode,
		PlayerID: playerID,
		Type:     "declare",
		WinnerID: winnerID,
	}, nil)
}

// Leave removes the player from the room.
func (c *Client) Leave(ctx context.Context, roomCode, playerID string) error {
	return c.post(ctx, "/api/leave", leaveRequest{RoomCode: roomCode, PlayerID: playerID}, nil)
}

type envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Subscribe opens the push stream and delivers redacted views until
// the context is cancelled or the stream breaks. The returned channel
// closes when the subscription ends.
func (c *Client) Subscribe(ctx context.Context, roomCode, playerID string) (<-chan game.View, error) {
	wsURL, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, err
	}
	switch wsURL.Scheme {
	case "https":
		wsURL.Scheme = "wss"
	default:
		wsURL.Scheme = "ws"
	}
	wsURL.Path = "/ws"
	wsURL.RawQuery = url.Values{"roomCode": {roomCode}, "playerId": {playerID}}.Encode()

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("subscribe: %w", err)
	}
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}

	views := make(chan game.View)
	go func() {
		defer close(views)
		defer func() { _ = conn.Close() }()
		go func() {
			<-ctx.Done()
			_ = conn.Close()
		}()

		for {
			var env envelope
			if err := conn.ReadJSON(&env); err != nil {
				return
			}
			if env.Type != "state" {
				continue
			}
			var view game.View
			if err := json.Unmarshal(env.Data, &view); err != nil {
				continue
			}
			select {
			case views <- view:
			case <-ctx.Done():
				return
			}
		}
	}()
	return views, nil
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s", strings.TrimSpace(string(data)))
	}
	if out != nil {
		return json.Unmarshal(data, out)
	}
	return nil
}
