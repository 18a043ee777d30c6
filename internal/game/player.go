package game

import (
	"crypto/rand"
	"encoding/hex"

	"holdemroom/internal/deck"
	"holdemroom/internal/evaluator"
)

// Player is one seat at a table. Seating order is turn order.
type Player struct {
	ID        string
	Name      string
	Stack     int
	Bet       int
	Folded    bool
	HoleCards []deck.Card
	IsHost    bool
	BestHand  *evaluator.Result
}

// CanAct reports whether the player participates in turn rotation.
// A player with an empty stack is all-in: skipped for turns but still
// eligible to win the pot.
func (p *Player) CanAct() bool {
	return !p.Folded && p.Stack > 0
}

func newPlayerID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return hex.EncodeToString(buf)
}
