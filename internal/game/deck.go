package game

import (
	"math/rand"

	"wargame_server/internal/domain"
)

// Deck is a FIFO of cards owned by one seat. Drawn from the front,
// recycled to the back.
type Deck struct {
	cards []domain.Card
}

func NewDeck(cards []domain.Card) *Deck {
	return &Deck{cards: cards}
}

func (d *Deck) Len() int {
	return len(d.cards)
}

// Draw removes and returns the front card. Must not be called on an empty deck.
func (d *Deck) Draw() domain.Card {
	c := d.cards[0]
	d.cards = d.cards[1:]
	return c
}

// Enqueue puts a card at the back.
func (d *Deck) Enqueue(c domain.Card) {
	d.cards = append(d.cards, c)
}

// Peek returns the front card without removing it.
func (d *Deck) Peek() domain.Card {
	return d.cards[0]
}

var buildRanks = []domain.CardRank{
	domain.RankTwo,
	domain.RankThree,
	domain.RankFour,
	domain.RankFive,
	domain.RankSix,
	domain.RankSeven,
	domain.RankEight,
	domain.RankNine,
	domain.RankTen,
	domain.RankJack,
	domain.RankQueen,
	domain.RankKing,
	domain.RankAce,
}

var buildSuits = []domain.CardSuit{
	domain.SuitHearts,
	domain.SuitSpades,
	domain.SuitClubs,
	domain.SuitDiamonds,
}

// NewShuffledDecks builds the full 52-card deck (no jokers), shuffles it with
// the given source and splits it evenly: cards 0-25 to seat 1, 26-51 to seat 2.
// Deterministic for a fixed rng.
func NewShuffledDecks(rng *rand.Rand) (*Deck, *Deck) {
	deck := make([]domain.Card, 0, 52)
	for _, s := range buildSuits {
		for _, r := range buildRanks {
			deck = append(deck, domain.Card{Rank: r, Suit: s})
		}
	}

	for i := len(deck) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		deck[i], deck[j] = deck[j], deck[i]
	}

	return NewDeck(deck[:26:26]), NewDeck(deck[26:])
}
