package game

import (
	"fmt"
	"strconv"
	"time"
)

// Snapshot is a full serialized copy of a game in progress: board, counters,
// face-up set, and completion flag. Its id is derived from the capture
// timestamp. Snapshots are advisory resume data owned by the client; they are
// independent of the server's session audit log.
type Snapshot struct {
	ID         string     `json:"id"`
	Timestamp  int64      `json:"timestamp"`
	Difficulty Difficulty `json:"difficulty"`
	Cards      []Card     `json:"cards"`
	Moves      int        `json:"moves"`
	Time       int        `json:"time"`
	Flipped    []int      `json:"flipped"`
	GameOver   bool       `json:"gameOver"`
}

// Snapshot captures the current game state at the given moment.
func (g *Game) Snapshot(now time.Time) Snapshot {
	flipped := make([]int, len(g.flipped))
	copy(flipped, g.flipped)
	return Snapshot{
		ID:         strconv.FormatInt(now.UnixMilli(), 10),
		Timestamp:  now.UnixMilli(),
		Difficulty: g.difficulty,
		Cards:      g.Cards(),
		Moves:      g.moves,
		Time:       g.elapsed,
		Flipped:    flipped,
		GameOver:   g.over,
	}
}

// Restore rebuilds a game from a snapshot. Snapshots written before the
// difficulty field existed restore as easy. Boards that could not have come
// from this engine (too many face-up cards, out-of-range ids) are rejected.
func Restore(s Snapshot) (*Game, error) {
	d := s.Difficulty
	if d.Pairs() == 0 {
		d = Easy
	}
	if len(s.Cards) == 0 {
		return nil, fmt.Errorf("snapshot has no cards")
	}
	if len(s.Flipped) > 2 {
		return nil, fmt.Errorf("snapshot has %d face-up cards", len(s.Flipped))
	}

	cards := make([]Card, len(s.Cards))
	copy(cards, s.Cards)

	g := &Game{
		difficulty: d,
		cards:      cards,
		moves:      s.Moves,
		elapsed:    s.Time,
		over:       s.GameOver,
	}
	for _, id := range s.Flipped {
		if id < 0 || id >= len(cards) {
			return nil, fmt.Errorf("snapshot flip id %d out of range", id)
		}
		g.cards[id].Flipped = true
		g.flipped = append(g.flipped, id)
	}
	return g, nil
}
