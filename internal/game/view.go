package game

import (
	"holdemroom/internal/evaluator"
)

// hiddenCard is the placeholder shown for hole cards the viewer may
// not see.
const hiddenCard = "❓"

// View is the redacted projection of a table sent to one viewer.
type View struct {
	Code            string       `json:"code"`
	Stage           string       `json:"stage"`
	Pot             int          `json:"pot"`
	CurrentBet      int          `json:"currentBet"`
	Community       []string     `json:"community"`
	Message         string       `json:"message"`
	CurrentPlayerID string       `json:"currentPlayerId"`
	Players         []PlayerView `json:"players"`
}

// PlayerView is one seat as a viewer sees it.
type PlayerView struct {
	ID       string            `json:"id"`
	Name     string            `json:"name"`
	Stack    int               `json:"stack"`
	Bet      int               `json:"bet"`
	Folded   bool              `json:"folded"`
	IsHost   bool              `json:"isHost"`
	Cards    []string          `json:"cards"`
	BestHand *evaluator.Result `json:"bestHand,omitempty"`
}

// Redact projects the table for the given viewer. The viewer sees
// their own hole cards; everyone else's render as placeholders until
// showdown, when all hole cards and hand names become visible. The
// projection is pure: calling it repeatedly never mutates the table.
func (t *Table) Redact(viewerID string) View {
	v := View{
		Code:       t.Code,
		Stage:      t.Stage.String(),
		Pot:        t.Pot,
		CurrentBet: t.CurrentBet,
		Community:  make([]string, 0, len(t.Community)),
		Message:    t.Message,
		Players:    make([]PlayerView, 0, len(t.Players)),
	}
	for _, c := range t.Community {
		v.Community = append(v.Community, c.String())
	}
	if t.CurrentPlayerIndex >= 0 && t.CurrentPlayerIndex < len(t.Players) {
		v.CurrentPlayerID = t.Players[t.CurrentPlayerIndex].ID
	}

	for _, p := range t.Players {
		pv := PlayerView{
			ID:     p.ID,
			Name:   p.Name,
			Stack:  p.Stack,
			Bet:    p.Bet,
			Folded: p.Folded,
			IsHost: p.IsHost,
			Cards:  []string{hiddenCard, hiddenCard},
		}
		if len(p.HoleCards) == 2 && (t.Stage == Showdown || p.ID == viewerID) {
			pv.Cards = []string{p.HoleCards[0].String(), p.HoleCards[1].String()}
		}
		if t.Stage == Showdown {
			pv.BestHand = p.BestHand
		}
		v.Players = append(v.Players, pv)
	}
	return v
}
