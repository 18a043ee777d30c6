package game

import (
	"fmt"
	rand "math/rand/v2"
	"strings"
	"time"

	"holdemroom/internal/deck"
	"holdemroom/internal/evaluator"
	"holdemroom/internal/randutil"
)

const maxNameLength = 20

// Table owns one room's mutable game state and drives the betting
// protocol: dealing, blinds, turn rotation, stake settlement, stage
// transitions and showdown resolution. A Table is not safe for
// concurrent use; callers serialize access per room.
type Table struct {
	Code               string
	Players            []*Player
	DealerIndex        int
	Stage              Stage
	Pot                int
	CurrentBet         int
	Community          []deck.Card
	CurrentPlayerIndex int // -1 when nobody is to act
	Message            string

	cards *deck.Deck
	acted map[string]struct{}

	smallBlind    int
	bigBlind      int
	startingStack int
	rng           *rand.Rand
	deckFunc      func() *deck.Deck
}

// Option configures a Table.
type Option func(*Table)

// WithBlinds sets the small and big blind amounts.
func WithBlinds(small, big int) Option {
	return func(t *Table) {
		t.smallBlind = small
		t.bigBlind = big
	}
}

// WithStartingStack sets the stack new players sit down with.
func WithStartingStack(chips int) Option {
	return func(t *Table) {
		t.startingStack = chips
	}
}

// WithRNG sets the RNG used to shuffle decks, for reproducible games.
func WithRNG(rng *rand.Rand) Option {
	return func(t *Table) {
		t.rng = rng
	}
}

// WithDeckFunc overrides deck creation. Tests use it to stack decks.
func WithDeckFunc(fn func() *deck.Deck) Option {
	return func(t *Table) {
		t.deckFunc = fn
	}
}

// NewTable creates an empty table in the waiting stage.
func NewTable(code string, opts ...Option) *Table {
	t := &Table{
		Code:               code,
		Stage:              Waiting,
		CurrentPlayerIndex: -1,
		Message:            "Waiting for players to join.",
		acted:              make(map[string]struct{}),
		smallBlind:         5,
		bigBlind:           10,
		startingStack:      1000,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.rng == nil {
		t.rng = randutil.New(time.Now().UnixNano())
	}
	if t.deckFunc == nil {
		t.deckFunc = func() *deck.Deck { return deck.New(t.rng) }
	}
	return t
}

// Join seats a new player. The first player to sit down becomes host.
func (t *Table) Join(name string) (*Player, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name required", ErrMissingParameters)
	}
	if runes := []rune(name); len(runes) > maxNameLength {
		name = string(runes[:maxNameLength])
	}

	p := &Player{
		ID:     newPlayerID(),
		Name:   name,
		Stack:  t.startingStack,
		IsHost: len(t.Players) == 0,
	}
	t.Players = append(t.Players, p)
	t.Message = fmt.Sprintf("%s joined the table.", p.Name)
	return p, nil
}

// Leave removes a seat and repairs the dealer and turn pointers. The
// host role passes to the first remaining seat if the host leaves.
func (t *Table) Leave(playerID string) {
	idx := -1
	for i, p := range t.Players {
		if p.ID == playerID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return
	}

	wasHost := t.Players[idx].IsHost
	t.Players = append(t.Players[:idx], t.Players[idx+1:]...)
	t.Message = "A player left the table."

	if len(t.Players) == 0 {
		t.CurrentPlayerIndex = -1
		t.DealerIndex = 0
		return
	}
	if wasHost {
		t.Players[0].IsHost = true
	}
	if idx < t.DealerIndex {
		t.DealerIndex--
	}
	t.DealerIndex %= len(t.Players)

	if t.CurrentPlayerIndex != -1 {
		if idx < t.CurrentPlayerIndex {
			t.CurrentPlayerIndex--
		}
		t.CurrentPlayerIndex %= len(t.Players)
		if !t.Players[t.CurrentPlayerIndex].CanAct() {
			t.CurrentPlayerIndex = t.nextActiveIndex(t.CurrentPlayerIndex)
		}
	}

	// A departure mid-hand can leave a single contender.
	if t.Stage != Waiting && t.Stage != Showdown {
		if active := t.activePlayers(); len(active) == 1 {
			t.autoWin(active[0])
		}
	}
}

// Player returns the seat with the given id.
func (t *Table) Player(playerID string) (*Player, error) {
	for _, p := range t.Players {
		if p.ID == playerID {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrPlayerNotFound, playerID)
}

// StartHand begins a new hand: fresh shuffled deck, two hole cards per
// seat, blinds posted, first actor set. Only the host may start and at
// least two players must be seated.
func (t *Table) StartHand(actorID string) error {
	if len(t.Players) < 2 {
		return fmt.Errorf("%w: at least two players are required", ErrInvalidAction)
	}
	actor, err := t.Player(actorID)
	if err != nil {
		return err
	}
	if !actor.IsHost {
		return fmt.Errorf("%w: only the host can start a hand", ErrInvalidAction)
	}

	t.Stage = Preflop
	t.Community = nil
	t.cards = t.deckFunc()
	t.Pot = 0
	t.CurrentBet = 0
	t.acted = make(map[string]struct{})
	for _, p := range t.Players {
		p.Folded = false
		p.Bet = 0
		p.BestHand = nil
		p.HoleCards = t.cards.DealN(2)
	}

	// The button is normalized, not rotated: advancing it between
	// hands is the caller's policy.
	t.DealerIndex %= len(t.Players)
	t.postBlinds()
	return nil
}

// postBlinds posts the small blind at dealer+1 and the big blind at
// dealer+2, each capped at the payer's stack. With two players the big
// blind wraps onto the dealer.
func (t *Table) postBlinds() {
	n := len(t.Players)
	sbIndex := (t.DealerIndex + 1) % n
	bbIndex := (t.DealerIndex + 2) % n
	sbPlayer := t.Players[sbIndex]
	bbPlayer := t.Players[bbIndex]

	sb := min(t.smallBlind, sbPlayer.Stack)
	bb := min(t.bigBlind, bbPlayer.Stack)

	sbPlayer.Stack -= sb
	bbPlayer.Stack -= bb
	sbPlayer.Bet = sb
	bbPlayer.Bet = bb

	t.Pot = sb + bb
	t.CurrentBet = bb
	t.CurrentPlayerIndex = t.nextActiveIndex(bbIndex)
	if t.CurrentPlayerIndex != -1 {
		t.Message = fmt.Sprintf("Blinds posted. %s to act.", t.Players[t.CurrentPlayerIndex].Name)
	}
}

// Act applies a player action. Validation is all-or-nothing: any
// failure happens before state changes.
func (t *Table) Act(playerID string, action Action, amount int) error {
	p, err := t.Player(playerID)
	if err != nil {
		return err
	}
	if err := t.ensureTurn(playerID); err != nil {
		return err
	}

	switch action {
	case Fold:
		if p.Folded {
			return ErrAlreadyFolded
		}
		p.Folded = true
		t.acted[p.ID] = struct{}{}
		t.settleAfterAction()

	case CheckCall:
		toCall := t.CurrentBet - p.Bet
		if toCall < 0 {
			toCall = 0
		}
		contribution := min(toCall, p.Stack)
		p.Stack -= contribution
		p.Bet += contribution
		t.Pot += contribution
		t.acted[p.ID] = struct{}{}
		t.settleAfterAction()

	case BetRaise:
		if amount <= 0 {
			return fmt.Errorf("%w: bet or raise must be greater than zero", ErrInvalidAmount)
		}
		if p.Bet+amount <= t.CurrentBet {
			return fmt.Errorf("%w: raise must exceed the current bet", ErrInvalidAmount)
		}
		chips := min(amount, p.Stack)
		p.Stack -= chips
		p.Bet += chips
		t.Pot += chips
		t.CurrentBet = p.Bet
		// Everyone else must act again at the new bet level.
		t.acted = map[string]struct{}{p.ID: {}}
		t.advanceTurn()

	default:
		return fmt.Errorf("%w: unknown action", ErrInvalidAction)
	}

	return nil
}

// DeclareWinner awards the entire pot to the named player and returns
// the table to waiting. No turn or stage precondition: it is the
// escape hatch for manual resolution.
func (t *Table) DeclareWinner(winnerID string) error {
	winner, err := t.Player(winnerID)
	if err != nil {
		return err
	}
	t.autoWin(winner)
	return nil
}

func (t *Table) ensureTurn(playerID string) error {
	if t.Stage == Waiting {
		return fmt.Errorf("%w: hand has not started yet", ErrRoundNotActive)
	}
	if t.Stage == Showdown {
		return fmt.Errorf("%w: betting is over", ErrRoundNotActive)
	}
	if t.CurrentPlayerIndex < 0 || t.CurrentPlayerIndex >= len(t.Players) ||
		t.Players[t.CurrentPlayerIndex].ID != playerID {
		return ErrNotYourTurn
	}
	return nil
}

func (t *Table) activePlayers() []*Player {
	var active []*Player
	for _, p := range t.Players {
		if p.CanAct() {
			active = append(active, p)
		}
	}
	return active
}

// settleAfterAction runs after a fold or call: award an uncontested
// pot, advance the stage when the round is settled, or rotate the
// turn.
func (t *Table) settleAfterAction() {
	active := t.activePlayers()
	if len(active) == 1 {
		t.autoWin(active[0])
		return
	}

	matched := true
	acted := true
	for _, p := range active {
		if p.Bet != t.CurrentBet {
			matched = false
		}
		if _, ok := t.acted[p.ID]; !ok {
			acted = false
		}
	}

	if matched && acted {
		t.advanceStage()
		return
	}
	t.advanceTurn()
}

// advanceTurn rotates the turn pointer to the next active seat
// clockwise, skipping folded and all-in seats.
func (t *Table) advanceTurn() {
	if t.Stage == Waiting || t.Stage == Showdown {
		return
	}
	from := t.CurrentPlayerIndex
	if from == -1 {
		from = t.DealerIndex
	}
	t.CurrentPlayerIndex = t.nextActiveIndex(from)
	if t.CurrentPlayerIndex != -1 {
		t.Message = fmt.Sprintf("%s to act.", t.Players[t.CurrentPlayerIndex].Name)
	}
}

// nextActiveIndex walks seating order starting just after the given
// index, returning -1 when no eligible seat exists.
func (t *Table) nextActiveIndex(start int) int {
	n := len(t.Players)
	if n == 0 {
		return -1
	}
	for i := 1; i <= n; i++ {
		idx := (start + i) % n
		if t.Players[idx].CanAct() {
			return idx
		}
	}
	return -1
}

func (t *Table) resetBets() {
	for _, p := range t.Players {
		p.Bet = 0
	}
	t.CurrentBet = 0
	t.acted = make(map[string]struct{})
}

// advanceStage deals the next community cards and hands the turn to
// the first active seat after the dealer. The river transition instead
// resolves the showdown. When every remaining player is all-in the
// stages run out on their own.
func (t *Table) advanceStage() {
	switch t.Stage {
	case Preflop:
		t.Community = t.cards.DealN(3)
		t.Stage = Flop
	case Flop:
		t.Community = append(t.Community, t.cards.DealN(1)...)
		t.Stage = Turn
	case Turn:
		t.Community = append(t.Community, t.cards.DealN(1)...)
		t.Stage = River
	case River:
		t.CurrentPlayerIndex = -1
		t.resetBets()
		t.resolveShowdown()
		return
	default:
		return
	}

	t.resetBets()
	t.CurrentPlayerIndex = t.nextActiveIndex(t.DealerIndex)
	if t.CurrentPlayerIndex == -1 {
		// All contenders are all-in; keep dealing to showdown.
		t.advanceStage()
		return
	}
	t.Message = fmt.Sprintf("%s to act.", t.Players[t.CurrentPlayerIndex].Name)
}

// resolveShowdown evaluates every non-folded player's best hand,
// splits the pot evenly among the top scores and credits stacks. An
// odd remainder chip goes to the first winner in seating order.
func (t *Table) resolveShowdown() {
	var contenders []*Player
	for _, p := range t.Players {
		if !p.Folded && len(p.HoleCards) == 2 {
			contenders = append(contenders, p)
		}
	}
	if len(contenders) == 0 {
		t.Message = "No players left for a showdown."
		t.Stage = Waiting
		return
	}

	for _, p := range contenders {
		result := evaluator.Evaluate(append(append([]deck.Card(nil), p.HoleCards...), t.Community...))
		p.BestHand = &result
	}

	winners := []*Player{contenders[0]}
	for _, p := range contenders[1:] {
		switch p.BestHand.Score.Compare(winners[0].BestHand.Score) {
		case 1:
			winners = []*Player{p}
		case 0:
			winners = append(winners, p)
		}
	}

	share := t.Pot / len(winners)
	remainder := t.Pot - share*len(winners)
	for i, p := range winners {
		p.Stack += share
		if i == 0 {
			p.Stack += remainder
		}
	}

	t.Pot = 0
	t.CurrentPlayerIndex = -1
	t.Stage = Showdown

	names := make([]string, len(winners))
	for i, p := range winners {
		names[i] = p.Name
	}
	suffix := ""
	if len(winners) > 1 {
		suffix = " split"
	}
	t.Message = fmt.Sprintf("%s wins the pot (%d%s) with %s.",
		strings.Join(names, " & "), share, suffix, winners[0].BestHand.Name)
}

// autoWin hands the whole pot to one player and ends the hand.
func (t *Table) autoWin(winner *Player) {
	winner.Stack += t.Pot
	t.Pot = 0
	t.Stage = Waiting
	t.CurrentPlayerIndex = -1
	t.Message = fmt.Sprintf("%s wins the pot! Start a new hand when ready.", winner.Name)
	t.resetBets()
	t.Community = nil
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
