package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"holdemroom/internal/deck"
)

func cards(t *testing.T, labels ...string) []deck.Card {
	t.Helper()
	out := make([]deck.Card, len(labels))
	for i, label := range labels {
		card, err := deck.Parse(label)
		require.NoError(t, err)
		out[i] = card
	}
	return out
}

// stackedTable seats the named players at a table whose deck deals the
// given cards in order: two hole cards per seat, then the board.
func stackedTable(t *testing.T, stacked []deck.Card, names ...string) (*Table, []*Player) {
	t.Helper()
	tbl := NewTable("test", WithDeckFunc(func() *deck.Deck {
		return deck.NewStacked(stacked...)
	}))
	players := make([]*Player, len(names))
	for i, name := range names {
		p, err := tbl.Join(name)
		require.NoError(t, err)
		players[i] = p
	}
	return tbl, players
}

func chipTotal(tbl *Table) int {
	total := tbl.Pot
	for _, p := range tbl.Players {
		total += p.Stack
	}
	return total
}

func TestJoin(t *testing.T) {
	tbl := NewTable("test")

	alice, err := tbl.Join("  Alice  ")
	require.NoError(t, err)
	assert.Equal(t, "Alice", alice.Name)
	assert.Equal(t, 1000, alice.Stack)
	assert.True(t, alice.IsHost)
	assert.NotEmpty(t, alice.ID)

	bob, err := tbl.Join("Bob")
	require.NoError(t, err)
	assert.False(t, bob.IsHost)
	assert.NotEqual(t, alice.ID, bob.ID)
}

func TestJoinRejectsBlankName(t *testing.T) {
	tbl := NewTable("test")
	_, err := tbl.Join("   ")
	require.ErrorIs(t, err, ErrMissingParameters)
	assert.Empty(t, tbl.Players)
}

func TestJoinTruncatesLongName(t *testing.T) {
	tbl := NewTable("test")
	p, err := tbl.Join("abcdefghijklmnopqrstuvwxyz")
	require.NoError(t, err)
	assert.Equal(t, "abcdefghijklmnopqrst", p.Name)
}

func TestStartHandRequiresTwoPlayers(t *testing.T) {
	tbl := NewTable("test")
	alice, err := tbl.Join("Alice")
	require.NoError(t, err)

	err = tbl.StartHand(alice.ID)
	require.ErrorIs(t, err, ErrInvalidAction)
	assert.Equal(t, Waiting, tbl.Stage)
}

func TestStartHandRequiresHost(t *testing.T) {
	tbl := NewTable("test")
	_, err := tbl.Join("Alice")
	require.NoError(t, err)
	bob, err := tbl.Join("Bob")
	require.NoError(t, err)

	err = tbl.StartHand(bob.ID)
	require.ErrorIs(t, err, ErrInvalidAction)

	err = tbl.StartHand("nope")
	require.ErrorIs(t, err, ErrPlayerNotFound)
}

func TestStartHandHeadsUpBlinds(t *testing.T) {
	stacked := cards(t, "A♠", "A♦", "K♠", "K♦", "Q♣", "7♥", "2♠", "3♦", "9♣")
	tbl, players := stackedTable(t, stacked, "Alice", "Bob")
	alice, bob := players[0], players[1]

	require.NoError(t, tbl.StartHand(alice.ID))

	// Dealer is seat 0: small blind at seat 1, big blind wraps to the
	// dealer, small blind acts first.
	assert.Equal(t, Preflop, tbl.Stage)
	assert.Equal(t, 15, tbl.Pot)
	assert.Equal(t, 10, tbl.CurrentBet)
	assert.Equal(t, 5, bob.Bet)
	assert.Equal(t, 995, bob.Stack)
	assert.Equal(t, 10, alice.Bet)
	assert.Equal(t, 990, alice.Stack)
	assert.Equal(t, 1, tbl.CurrentPlayerIndex)
	assert.Equal(t, cards(t, "A♠", "A♦"), alice.HoleCards)
	assert.Equal(t, cards(t, "K♠", "K♦"), bob.HoleCards)
	assert.Empty(t, tbl.Community)
}

func TestActBeforeStart(t *testing.T) {
	tbl := NewTable("test")
	alice, err := tbl.Join("Alice")
	require.NoError(t, err)

	err = tbl.Act(alice.ID, Fold, 0)
	require.ErrorIs(t, err, ErrRoundNotActive)
}

func TestActOutOfTurn(t *testing.T) {
	stacked := cards(t, "A♠", "A♦", "K♠", "K♦", "Q♣", "7♥", "2♠", "3♦", "9♣")
	tbl, players := stackedTable(t, stacked, "Alice", "Bob")
	alice := players[0]

	require.NoError(t, tbl.StartHand(alice.ID))
	err := tbl.Act(alice.ID, CheckCall, 0)
	require.ErrorIs(t, err, ErrNotYourTurn)

	err = tbl.Act("nope", Fold, 0)
	require.ErrorIs(t, err, ErrPlayerNotFound)
}

func TestActAlreadyFolded(t *testing.T) {
	stacked := cards(t, "A♠", "A♦", "K♠", "K♦", "Q♣", "7♥", "2♠", "3♦", "9♣")
	tbl, players := stackedTable(t, stacked, "Alice", "Bob")
	alice, bob := players[0], players[1]

	require.NoError(t, tbl.StartHand(alice.ID))
	bob.Folded = true
	tbl.CurrentPlayerIndex = 1

	err := tbl.Act(bob.ID, Fold, 0)
	require.ErrorIs(t, err, ErrAlreadyFolded)
}

func TestRejectedRaiseLeavesStateUnchanged(t *testing.T) {
	stacked := cards(t, "A♠", "A♦", "K♠", "K♦", "Q♣", "7♥", "2♠", "3♦", "9♣")
	tbl, players := stackedTable(t, stacked, "Alice", "Bob")
	alice, bob := players[0], players[1]

	require.NoError(t, tbl.StartHand(alice.ID))

	err := tbl.Act(bob.ID, BetRaise, 0)
	require.ErrorIs(t, err, ErrInvalidAmount)

	// A raise to exactly the current bet is not a raise.
	err = tbl.Act(bob.ID, BetRaise, 5)
	require.ErrorIs(t, err, ErrInvalidAmount)

	assert.Equal(t, 15, tbl.Pot)
	assert.Equal(t, 10, tbl.CurrentBet)
	assert.Equal(t, 995, bob.Stack)
	assert.Equal(t, 5, bob.Bet)
	assert.Equal(t, 990, alice.Stack)
	assert.Equal(t, 1, tbl.CurrentPlayerIndex)
	assert.Equal(t, Preflop, tbl.Stage)
}

func TestFoldAwardsUncontestedPot(t *testing.T) {
	stacked := cards(t, "A♠", "A♦", "K♠", "K♦", "Q♣", "7♥", "2♠", "3♦", "9♣")
	tbl, players := stackedTable(t, stacked, "Alice", "Bob")
	alice, bob := players[0], players[1]

	require.NoError(t, tbl.StartHand(alice.ID))
	require.NoError(t, tbl.Act(bob.ID, Fold, 0))

	assert.Equal(t, Waiting, tbl.Stage)
	assert.Equal(t, 0, tbl.Pot)
	assert.Equal(t, 1005, alice.Stack)
	assert.Equal(t, 995, bob.Stack)
	assert.Equal(t, -1, tbl.CurrentPlayerIndex)
	assert.Nil(t, tbl.Community)
	assert.Equal(t, 2000, chipTotal(tbl))
}

func TestHeadsUpHandToShowdown(t *testing.T) {
	stacked := cards(t, "A♠", "A♦", "K♠", "K♦", "Q♣", "7♥", "2♠", "3♦", "9♣")
	tbl, players := stackedTable(t, stacked, "Alice", "Bob")
	alice, bob := players[0], players[1]

	require.NoError(t, tbl.StartHand(alice.ID))

	// Preflop: small blind completes, big blind checks.
	require.NoError(t, tbl.Act(bob.ID, CheckCall, 0))
	assert.Equal(t, Preflop, tbl.Stage)
	assert.Equal(t, 20, tbl.Pot)
	require.NoError(t, tbl.Act(alice.ID, CheckCall, 0))
	assert.Equal(t, Flop, tbl.Stage)
	assert.Equal(t, cards(t, "Q♣", "7♥", "2♠"), tbl.Community)
	assert.Equal(t, 0, tbl.CurrentBet)
	assert.Equal(t, 1, tbl.CurrentPlayerIndex)

	// Checked down to the river.
	require.NoError(t, tbl.Act(bob.ID, CheckCall, 0))
	require.NoError(t, tbl.Act(alice.ID, CheckCall, 0))
	assert.Equal(t, Turn, tbl.Stage)
	require.NoError(t, tbl.Act(bob.ID, CheckCall, 0))
	require.NoError(t, tbl.Act(alice.ID, CheckCall, 0))
	assert.Equal(t, River, tbl.Stage)
	require.Len(t, tbl.Community, 5)
	require.NoError(t, tbl.Act(bob.ID, CheckCall, 0))
	require.NoError(t, tbl.Act(alice.ID, CheckCall, 0))

	// Aces beat kings.
	assert.Equal(t, Showdown, tbl.Stage)
	assert.Equal(t, 0, tbl.Pot)
	assert.Equal(t, 1010, alice.Stack)
	assert.Equal(t, 990, bob.Stack)
	require.NotNil(t, alice.BestHand)
	require.NotNil(t, bob.BestHand)
	assert.Equal(t, "Pair", alice.BestHand.Name)
	assert.Contains(t, tbl.Message, "Alice wins")
	assert.Equal(t, 2000, chipTotal(tbl))

	err := tbl.Act(bob.ID, CheckCall, 0)
	require.ErrorIs(t, err, ErrRoundNotActive)
}

func TestSplitPotRemainderToFirstWinnerInSeatOrder(t *testing.T) {
	// The board plays for both remaining players: royal flush on board.
	stacked := cards(t,
		"2♥", "3♥", // Alice
		"9♣", "9♦", // Bob, folds
		"2♦", "3♦", // Cara
		"A♠", "K♠", "Q♠", "J♠", "10♠")
	tbl, players := stackedTable(t, stacked, "Alice", "Bob", "Cara")
	alice, bob, cara := players[0], players[1], players[2]

	require.NoError(t, tbl.StartHand(alice.ID))
	assert.Equal(t, 0, tbl.CurrentPlayerIndex)

	// Preflop: dealer calls, small blind folds, big blind checks.
	require.NoError(t, tbl.Act(alice.ID, CheckCall, 0))
	require.NoError(t, tbl.Act(bob.ID, Fold, 0))
	require.NoError(t, tbl.Act(cara.ID, CheckCall, 0))
	assert.Equal(t, Flop, tbl.Stage)
	assert.Equal(t, 25, tbl.Pot)

	// Checked down. Cara acts first: the folded small blind is skipped.
	assert.Equal(t, 2, tbl.CurrentPlayerIndex)
	require.NoError(t, tbl.Act(cara.ID, CheckCall, 0))
	require.NoError(t, tbl.Act(alice.ID, CheckCall, 0))
	require.NoError(t, tbl.Act(cara.ID, CheckCall, 0))
	require.NoError(t, tbl.Act(alice.ID, CheckCall, 0))
	require.NoError(t, tbl.Act(cara.ID, CheckCall, 0))
	require.NoError(t, tbl.Act(alice.ID, CheckCall, 0))

	// 25 chips between two winners: the odd chip goes to the earlier
	// seat.
	assert.Equal(t, Showdown, tbl.Stage)
	assert.Equal(t, 1003, alice.Stack)
	assert.Equal(t, 995, bob.Stack)
	assert.Equal(t, 1002, cara.Stack)
	assert.Contains(t, tbl.Message, "split")
	assert.Equal(t, 3000, chipTotal(tbl))
}

func TestRaiseReopensAction(t *testing.T) {
	stacked := cards(t,
		"A♠", "A♦",
		"K♠", "K♦",
		"Q♠", "Q♦",
		"J♣", "7♥", "2♠", "3♦", "9♣")
	tbl, players := stackedTable(t, stacked, "Alice", "Bob", "Cara")
	alice, bob, cara := players[0], players[1], players[2]

	require.NoError(t, tbl.StartHand(alice.ID))
	require.NoError(t, tbl.Act(alice.ID, CheckCall, 0))

	// Bob raises: everyone who already called must act again.
	require.NoError(t, tbl.Act(bob.ID, BetRaise, 20))
	assert.Equal(t, 25, tbl.CurrentBet)
	assert.Equal(t, 25, bob.Bet)
	assert.Equal(t, Preflop, tbl.Stage)
	assert.Equal(t, 2, tbl.CurrentPlayerIndex)

	require.NoError(t, tbl.Act(cara.ID, CheckCall, 0))
	assert.Equal(t, Preflop, tbl.Stage)
	assert.Equal(t, 0, tbl.CurrentPlayerIndex)

	require.NoError(t, tbl.Act(alice.ID, CheckCall, 0))
	assert.Equal(t, Flop, tbl.Stage)
	assert.Equal(t, 75, tbl.Pot)
	assert.Equal(t, 0, tbl.CurrentBet)
	for _, p := range []*Player{alice, bob, cara} {
		assert.Equal(t, 0, p.Bet)
	}
}

func TestAllInHandsRunOutToShowdown(t *testing.T) {
	stacked := cards(t, "A♠", "A♦", "K♠", "K♦", "Q♣", "7♥", "2♠", "3♦", "9♣")
	tbl, players := stackedTable(t, stacked, "Alice", "Bob")
	alice, bob := players[0], players[1]

	require.NoError(t, tbl.StartHand(alice.ID))
	require.NoError(t, tbl.Act(bob.ID, BetRaise, 995))
	assert.Equal(t, 0, bob.Stack)
	require.NoError(t, tbl.Act(alice.ID, CheckCall, 0))

	// Nobody can act: the remaining streets deal themselves out.
	assert.Equal(t, Showdown, tbl.Stage)
	require.Len(t, tbl.Community, 5)
	assert.Equal(t, 2000, alice.Stack)
	assert.Equal(t, 0, bob.Stack)
	assert.Equal(t, 0, tbl.Pot)
	assert.Equal(t, 2000, chipTotal(tbl))
}

func TestDeclareWinnerMidHand(t *testing.T) {
	stacked := cards(t, "A♠", "A♦", "K♠", "K♦", "Q♣", "7♥", "2♠", "3♦", "9♣")
	tbl, players := stackedTable(t, stacked, "Alice", "Bob")
	alice, bob := players[0], players[1]

	require.NoError(t, tbl.StartHand(alice.ID))
	require.NoError(t, tbl.DeclareWinner(bob.ID))

	assert.Equal(t, Waiting, tbl.Stage)
	assert.Equal(t, 0, tbl.Pot)
	assert.Equal(t, 1010, bob.Stack)
	assert.Equal(t, 990, alice.Stack)
	assert.Nil(t, tbl.Community)
}

func TestDeclareWinnerWhileWaiting(t *testing.T) {
	tbl := NewTable("test")
	_, err := tbl.Join("Alice")
	require.NoError(t, err)
	bob, err := tbl.Join("Bob")
	require.NoError(t, err)

	// A zero-pot transfer: harmless.
	require.NoError(t, tbl.DeclareWinner(bob.ID))
	assert.Equal(t, Waiting, tbl.Stage)
	assert.Equal(t, 1000, bob.Stack)

	err = tbl.DeclareWinner("nope")
	require.ErrorIs(t, err, ErrPlayerNotFound)
}

func TestLeavePromotesNewHost(t *testing.T) {
	tbl := NewTable("test")
	alice, err := tbl.Join("Alice")
	require.NoError(t, err)
	bob, err := tbl.Join("Bob")
	require.NoError(t, err)

	tbl.Leave(alice.ID)
	require.Len(t, tbl.Players, 1)
	assert.True(t, tbl.Players[0].IsHost)
	assert.Equal(t, bob.ID, tbl.Players[0].ID)

	// Unknown ids are ignored.
	tbl.Leave("nope")
	assert.Len(t, tbl.Players, 1)
}

func TestLeaveMidHandAwardsPotToLoneContender(t *testing.T) {
	stacked := cards(t, "A♠", "A♦", "K♠", "K♦", "Q♣", "7♥", "2♠", "3♦", "9♣")
	tbl, players := stackedTable(t, stacked, "Alice", "Bob")
	alice, bob := players[0], players[1]

	require.NoError(t, tbl.StartHand(alice.ID))
	tbl.Leave(bob.ID)

	assert.Equal(t, Waiting, tbl.Stage)
	assert.Equal(t, 0, tbl.Pot)
	assert.Equal(t, 1005, alice.Stack)
}

func TestLeaveRepairsTurnPointer(t *testing.T) {
	stacked := cards(t,
		"A♠", "A♦",
		"K♠", "K♦",
		"Q♠", "Q♦",
		"J♣", "7♥", "2♠", "3♦", "9♣")
	tbl, players := stackedTable(t, stacked, "Alice", "Bob", "Cara")
	alice, bob, cara := players[0], players[1], players[2]

	require.NoError(t, tbl.StartHand(alice.ID))
	require.Equal(t, 0, tbl.CurrentPlayerIndex)

	// The player before the actor leaves: the pointer shifts with the
	// seats.
	tbl.Leave(bob.ID)
	require.Len(t, tbl.Players, 2)
	assert.Equal(t, alice.ID, tbl.Players[tbl.CurrentPlayerIndex].ID)
	assert.Equal(t, cara.ID, tbl.Players[1].ID)
	_ = cara
}
