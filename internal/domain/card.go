package domain

// CardRank is the wire rank of a card. The numeric values match the client
// enum (Ace first), not combat strength; use Value for comparisons.
type CardRank int

const (
	RankAce CardRank = iota
	RankTwo
	RankThree
	RankFour
	RankFive
	RankSix
	RankSeven
	RankEight
	RankNine
	RankTen
	RankJack
	RankQueen
	RankKing
)

// CardSuit matches the client enum ordering.
type CardSuit int

const (
	SuitHearts CardSuit = iota
	SuitSpades
	SuitClubs
	SuitDiamonds
)

// Card is an immutable card value. Serialized as numeric enums for the client.
type Card struct {
	Rank CardRank `json:"rank"`
	Suit CardSuit `json:"suit"`
}

// Value returns combat strength: Two=2 .. Ten=10, Jack=11, Queen=12, King=13, Ace=14.
func (c Card) Value() int {
	if c.Rank == RankAce {
		return 14
	}
	return int(c.Rank) + 1
}

var rankNames = map[CardRank]string{
	RankAce:   "A",
	RankTwo:   "2",
	RankThree: "3",
	RankFour:  "4",
	RankFive:  "5",
	RankSix:   "6",
	RankSeven: "7",
	RankEight: "8",
	RankNine:  "9",
	RankTen:   "10",
	RankJack:  "J",
	RankQueen: "Q",
	RankKing:  "K",
}

var suitNames = map[CardSuit]string{
	SuitHearts:   "h",
	SuitSpades:   "s",
	SuitClubs:    "c",
	SuitDiamonds: "d",
}

func (c Card) String() string {
	return rankNames[c.Rank] + suitNames[c.Suit]
}
