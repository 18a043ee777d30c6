package deck

import (
	"fmt"
	"strings"
)

// Suit represents a card suit
type Suit int

const (
	Spades Suit = iota
	Hearts
	Diamonds
	Clubs
)

// String returns the suit glyph
func (s Suit) String() string {
	switch s {
	case Spades:
		return "♠"
	case Hearts:
		return "♥"
	case Diamonds:
		return "♦"
	case Clubs:
		return "♣"
	default:
		return "?"
	}
}

// IsRed returns true if the suit is red (Hearts or Diamonds)
func (s Suit) IsRed() bool {
	return s == Hearts || s == Diamonds
}

// Rank represents a card rank. Aces are high (14); the ace only plays
// low inside wheel straight detection.
type Rank int

const (
	Two Rank = iota + 2
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

// String returns the rank label as it appears on the wire ("10", not "T")
func (r Rank) String() string {
	switch {
	case r >= Two && r <= Ten:
		return fmt.Sprintf("%d", int(r))
	case r == Jack:
		return "J"
	case r == Queen:
		return "Q"
	case r == King:
		return "K"
	case r == Ace:
		return "A"
	default:
		return "?"
	}
}

// Card represents a playing card
type Card struct {
	Rank Rank
	Suit Suit
}

// NewCard creates a new card
func NewCard(rank Rank, suit Suit) Card {
	return Card{Rank: rank, Suit: suit}
}

// String returns the card label (e.g., "A♠", "10♥")
func (c Card) String() string {
	return c.Rank.String() + c.Suit.String()
}

// IsRed returns true if the card is red
func (c Card) IsRed() bool {
	return c.Suit.IsRed()
}

// Value returns the numeric value of the card for comparison
func (c Card) Value() int {
	return int(c.Rank)
}

// MarshalJSON renders the card as its label string, the format clients
// display directly.
func (c Card) MarshalJSON() ([]byte, error) {
	return []byte(`"` + c.String() + `"`), nil
}

// UnmarshalJSON parses a card from its label string.
func (c *Card) UnmarshalJSON(data []byte) error {
	label := strings.Trim(string(data), `"`)
	parsed, err := Parse(label)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Parse converts a card label back into a Card (e.g., "Q♦" or "10♣").
func Parse(label string) (Card, error) {
	runes := []rune(label)
	if len(runes) < 2 {
		return Card{}, fmt.Errorf("invalid card %q", label)
	}

	var suit Suit
	switch runes[len(runes)-1] {
	case '♠':
		suit = Spades
	case '♥':
		suit = Hearts
	case '♦':
		suit = Diamonds
	case '♣':
		suit = Clubs
	default:
		return Card{}, fmt.Errorf("invalid suit in card %q", label)
	}

	var rank Rank
	switch string(runes[:len(runes)-1]) {
	case "2":
		rank = Two
	case "3":
		rank = Three
	case "4":
		rank = Four
	case "5":
		rank = Five
	case "6":
		rank = Six
	case "7":
		rank = Seven
	case "8":
		rank = Eight
	case "9":
		rank = Nine
	case "10":
		rank = Ten
	case "J":
		rank = Jack
	case "Q":
		rank = Queen
	case "K":
		rank = King
	case "A":
		rank = Ace
	default:
		return Card{}, fmt.Errorf("invalid rank in card %q", label)
	}

	return Card{Rank: rank, Suit: suit}, nil
}
