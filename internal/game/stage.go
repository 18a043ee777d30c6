package game

// Stage is one phase of a hand's betting sequence. A table loops
// waiting → preflop → flop → turn → river → showdown → waiting; the
// return to waiting only happens through an explicit start (or an
// early win that ends the hand).
type Stage int

const (
	Waiting Stage = iota
	Preflop
	Flop
	Turn
	River
	Showdown
)

func (s Stage) String() string {
	return [...]string{"waiting", "preflop", "flop", "turn", "river", "showdown"}[s]
}

// Action is a player's move within a betting round.
type Action int

const (
	Fold Action = iota
	CheckCall
	BetRaise
)

func (a Action) String() string {
	return [...]string{"fold", "checkCall", "betRaise"}[a]
}
