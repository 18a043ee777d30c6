// Package evaluator determines the best five-card poker hand from any
// set of five or more cards. Evaluation is pure: no shared state, no
// error cases. Callers guarantee at least five cards.
package evaluator

import (
	"sort"

	"holdemroom/internal/deck"
)

// Hand categories, low to high. Category dominates every tie-breaker.
const (
	HighCard = iota
	Pair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
)

// Score is a fully tie-broken comparable hand value. The first element
// is the category; the rest are tie-breakers in precedence order.
type Score []int

// Compare returns the sign of s - other. Missing elements compare as
// zero so scores of different lengths order correctly.
func (s Score) Compare(other Score) int {
	n := len(s)
	if len(other) > n {
		n = len(other)
	}
	for i := 0; i < n; i++ {
		a, b := 0, 0
		if i < len(s) {
			a = s[i]
		}
		if i < len(other) {
			b = other[i]
		}
		if a != b {
			if a > b {
				return 1
			}
			return -1
		}
	}
	return 0
}

// Result is an evaluated hand: its comparable score and display name.
type Result struct {
	Score Score  `json:"score"`
	Name  string `json:"name"`
}

// Evaluate returns the best five-card ranking for the given cards.
func Evaluate(cards []deck.Card) Result {
	countByRank := make(map[int]int)
	bySuit := make(map[deck.Suit][]int)
	ranksDesc := make([]int, 0, len(cards))

	for _, c := range cards {
		v := c.Value()
		countByRank[v]++
		bySuit[c.Suit] = append(bySuit[c.Suit], v)
		ranksDesc = append(ranksDesc, v)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(ranksDesc)))

	var flushRanks []int
	for _, suited := range bySuit {
		if len(suited) >= 5 {
			flushRanks = suited
			break
		}
	}

	straightHigh := highestStraight(ranksDesc)
	straightFlushHigh := 0
	if flushRanks != nil {
		straightFlushHigh = highestStraight(flushRanks)
	}

	type group struct {
		rank int
		freq int
	}
	groups := make([]group, 0, len(countByRank))
	for rank, freq := range countByRank {
		groups = append(groups, group{rank: rank, freq: freq})
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].freq != groups[j].freq {
			return groups[i].freq > groups[j].freq
		}
		return groups[i].rank > groups[j].rank
	})

	// Kickers exclude ranks already used by the named combination and
	// come from the remaining cards, highest first.
	takeKickers := func(exclude []int, limit int) []int {
		kickers := make([]int, 0, limit)
		for _, r := range ranksDesc {
			excluded := false
			for _, e := range exclude {
				if r == e {
					excluded = true
					break
				}
			}
			if !excluded {
				kickers = append(kickers, r)
				if len(kickers) == limit {
					break
				}
			}
		}
		return kickers
	}

	if straightFlushHigh > 0 {
		return Result{Score: Score{StraightFlush, straightFlushHigh}, Name: "Straight flush"}
	}

	if groups[0].freq == 4 {
		quad := groups[0].rank
		score := append(Score{FourOfAKind, quad}, takeKickers([]int{quad}, 1)...)
		return Result{Score: score, Name: "Four of a kind"}
	}

	// Two distinct trips count as a full house: the higher set plays as
	// trips, the next group as the pair.
	if groups[0].freq == 3 && len(groups) > 1 && groups[1].freq >= 2 {
		return Result{Score: Score{FullHouse, groups[0].rank, groups[1].rank}, Name: "Full house"}
	}

	if flushRanks != nil {
		sorted := append([]int(nil), flushRanks...)
		sort.Sort(sort.Reverse(sort.IntSlice(sorted)))
		return Result{Score: append(Score{Flush}, sorted[:5]...), Name: "Flush"}
	}

	if straightHigh > 0 {
		return Result{Score: Score{Straight, straightHigh}, Name: "Straight"}
	}

	if groups[0].freq == 3 {
		trips := groups[0].rank
		score := append(Score{ThreeOfAKind, trips}, takeKickers([]int{trips}, 2)...)
		return Result{Score: score, Name: "Three of a kind"}
	}

	if groups[0].freq == 2 && len(groups) > 1 && groups[1].freq == 2 {
		high, low := groups[0].rank, groups[1].rank
		score := append(Score{TwoPair, high, low}, takeKickers([]int{high, low}, 1)...)
		return Result{Score: score, Name: "Two pair"}
	}

	if groups[0].freq == 2 {
		pair := groups[0].rank
		score := append(Score{Pair, pair}, takeKickers([]int{pair}, 3)...)
		return Result{Score: score, Name: "Pair"}
	}

	return Result{Score: append(Score{HighCard}, ranksDesc[:5]...), Name: "High card"}
}

// highestStraight finds the top card of the best five-card run among
// the given ranks, or 0 if none exists. An ace additionally plays as
// rank 1 so the wheel (A-2-3-4-5) is detected with top card 5.
func highestStraight(ranks []int) int {
	seen := make(map[int]bool, len(ranks))
	unique := make([]int, 0, len(ranks))
	for _, r := range ranks {
		if !seen[r] {
			seen[r] = true
			unique = append(unique, r)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(unique)))
	if seen[int(deck.Ace)] {
		unique = append(unique, 1)
	}

	for i := 0; i+5 <= len(unique); i++ {
		run := true
		for j := 1; j < 5; j++ {
			if unique[i+j-1]-unique[i+j] != 1 {
				run = false
				break
			}
		}
		if run {
			return unique[i]
		}
	}
	return 0
}
