// Package game implements the memory-matching game state machine: a shuffled
// board of paired cards, flip/match resolution, move and time counters, and
// pause/completion states. It is pure in-memory logic; timers and persistence
// are driven by callers.
package game

import (
	"fmt"
	"math/rand"
	"time"
)

type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// Pairs returns the number of card pairs dealt for the difficulty,
// or 0 for an unknown tier.
func (d Difficulty) Pairs() int {
	switch d {
	case Easy:
		return 5
	case Medium:
		return 10
	case Hard:
		return 15
	default:
		return 0
	}
}

// Card is one board position. Matched cards stay face up permanently;
// Flipped marks the at-most-two cards turned up mid-move.
type Card struct {
	ID      int    `json:"id"`
	Value   string `json:"value"`
	Flipped bool   `json:"isFlipped"`
	Matched bool   `json:"isMatched"`
}

// Game is one playthrough. The zero value is not usable; construct with New
// or Restore. Methods are not safe for concurrent use.
type Game struct {
	difficulty Difficulty
	cards      []Card
	flipped    []int
	moves      int
	elapsed    int
	paused     bool
	over       bool
}

// New deals a fresh shuffled board for the difficulty. Each face value
// appears exactly twice; card ids are sequential in board order. A nil rng
// falls back to a time-seeded source.
func New(d Difficulty, rng *rand.Rand) (*Game, error) {
	pairs := d.Pairs()
	if pairs == 0 {
		return nil, fmt.Errorf("unknown difficulty %q", d)
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	values := make([]string, 0, pairs*2)
	for i := 0; i < pairs; i++ {
		face := fmt.Sprintf("/images/image%d.png", i+1)
		values = append(values, face, face)
	}
	rng.Shuffle(len(values), func(i, j int) {
		values[i], values[j] = values[j], values[i]
	})

	cards := make([]Card, len(values))
	for i, v := range values {
		cards[i] = Card{ID: i, Value: v}
	}

	return &Game{difficulty: d, cards: cards}, nil
}

// Flip turns the card with the given id face up. It reports whether the flip
// happened; it is a no-op when the game is over or paused, when two cards are
// already face up, or when the card is unknown, already face up, or matched.
//
// The second flip of a move increments the move counter and, on a value
// match, marks both cards matched permanently. The pair stays face up until
// Settle is called, whatever the outcome.
func (g *Game) Flip(id int) bool {
	if g.over || g.paused || len(g.flipped) >= 2 {
		return false
	}
	if id < 0 || id >= len(g.cards) {
		return false
	}
	card := &g.cards[id]
	if card.Flipped || card.Matched {
		return false
	}

	card.Flipped = true
	g.flipped = append(g.flipped, id)

	if len(g.flipped) == 2 {
		g.moves++
		first, second := &g.cards[g.flipped[0]], &g.cards[g.flipped[1]]
		if first.Value == second.Value {
			first.Matched = true
			second.Matched = true
			if g.allMatched() {
				g.over = true
			}
		}
	}
	return true
}

// PendingSettle reports whether two cards are face up awaiting Settle.
func (g *Game) PendingSettle() bool {
	return len(g.flipped) == 2
}

// Settle turns the face-up pair back down (matched cards stay revealed via
// their Matched flag). Callers invoke it after the flip-back delay.
func (g *Game) Settle() {
	for _, id := range g.flipped {
		g.cards[id].Flipped = false
	}
	g.flipped = g.flipped[:0]
}

// Tick advances the elapsed-time counter by one second unless the game is
// paused or over.
func (g *Game) Tick() {
	if !g.paused && !g.over {
		g.elapsed++
	}
}

func (g *Game) Pause()  { g.paused = true }
func (g *Game) Resume() { g.paused = false }

func (g *Game) Paused() bool          { return g.paused }
func (g *Game) Over() bool            { return g.over }
func (g *Game) Moves() int            { return g.moves }
func (g *Game) Elapsed() int          { return g.elapsed }
func (g *Game) Difficulty() Difficulty { return g.difficulty }

// Cards returns a copy of the board.
func (g *Game) Cards() []Card {
	out := make([]Card, len(g.cards))
	copy(out, g.cards)
	return out
}

// MatchedCount returns the number of matched cards (always even).
func (g *Game) MatchedCount() int {
	n := 0
	for _, c := range g.cards {
		if c.Matched {
			n++
		}
	}
	return n
}

// Result reports the session result for the ledger: "win" once the board is
// cleared, "incomplete" otherwise. Forfeit handling is up to the caller.
func (g *Game) Result() string {
	if g.over {
		return "win"
	}
	return "incomplete"
}

func (g *Game) allMatched() bool {
	for _, c := range g.cards {
		if !c.Matched {
			return false
		}
	}
	return true
}
