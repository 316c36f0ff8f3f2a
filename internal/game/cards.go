package game

import (
	"fmt"
	"strings"

	"poker-pool/internal/id"
)

type Suit int

type Rank int

const (
	Hearts Suit = iota
	Diamonds
	Clubs
	Spades
)

const (
	Two   Rank = 2
	Three Rank = 3
	Four  Rank = 4
	Five  Rank = 5
	Six   Rank = 6
	Seven Rank = 7
	Eight Rank = 8
	Nine  Rank = 9
	Ten   Rank = 10
	Jack  Rank = 11
	Queen Rank = 12
	King  Rank = 13
	Ace   Rank = 14
)

const DeckSize = 52

var suitNames = map[Suit]string{Hearts: "hearts", Diamonds: "diamonds", Clubs: "clubs", Spades: "spades"}

var rankNames = map[Rank]string{
	Two: "2", Three: "3", Four: "4", Five: "5", Six: "6", Seven: "7", Eight: "8", Nine: "9", Ten: "10",
	Jack: "J", Queen: "Q", King: "K", Ace: "A",
}

func (s Suit) String() string {
	if n, ok := suitNames[s]; ok {
		return n
	}
	return "invalid"
}

func (s Suit) MarshalText() ([]byte, error) {
	n, ok := suitNames[s]
	if !ok {
		return nil, fmt.Errorf("invalid suit %d", int(s))
	}
	return []byte(n), nil
}

func (s *Suit) UnmarshalText(b []byte) error {
	v := strings.ToLower(string(b))
	for suit, name := range suitNames {
		if name == v {
			*s = suit
			return nil
		}
	}
	return fmt.Errorf("invalid suit %q", v)
}

func (r Rank) String() string {
	if n, ok := rankNames[r]; ok {
		return n
	}
	return "?"
}

func (r Rank) MarshalText() ([]byte, error) {
	n, ok := rankNames[r]
	if !ok {
		return nil, fmt.Errorf("invalid rank %d", int(r))
	}
	return []byte(n), nil
}

func (r *Rank) UnmarshalText(b []byte) error {
	v := strings.ToUpper(string(b))
	for rank, name := range rankNames {
		if name == v {
			*r = rank
			return nil
		}
	}
	return fmt.Errorf("invalid rank %q", v)
}

// Card is one dealt card. ID distinguishes instances that share rank and suit.
type Card struct {
	Rank Rank   `json:"rank"`
	Suit Suit   `json:"suit"`
	ID   string `json:"id"`
}

func NewCard(r Rank, s Suit) Card {
	return Card{Rank: r, Suit: s, ID: fmt.Sprintf("%s-%s-%s", r, s, id.New())}
}

func (c Card) String() string {
	sym := map[Suit]string{Hearts: "♥", Diamonds: "♦", Clubs: "♣", Spades: "♠"}[c.Suit]
	return c.Rank.String() + sym
}

// Rand is the randomness the deck and rack shuffles consume. *math/rand.Rand satisfies it.
type Rand interface {
	Intn(n int) int
}

type Deck []Card

// NewDeck returns the 52 rank×suit combinations in construction order.
func NewDeck() Deck {
	cards := make(Deck, 0, DeckSize)
	for s := Hearts; s <= Spades; s++ {
		for r := Two; r <= Ace; r++ {
			cards = append(cards, NewCard(r, s))
		}
	}
	return cards
}

func BuildShuffledDeck(rng Rand) Deck {
	d := NewDeck()
	shuffle(len(d), rng, func(i, j int) { d[i], d[j] = d[j], d[i] })
	return d
}

// shuffle is Fisher–Yates: for i from n-1 down to 1 swap i with a uniform j in [0,i].
func shuffle(n int, rng Rand, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		swap(i, j)
	}
}
