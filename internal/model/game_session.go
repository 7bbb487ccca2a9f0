package model

import "time"

// Difficulty tiers and the number of card pairs each one deals.
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// Session results recognised by the reward ledger. Any other result is
// accepted but carries a zero reward delta.
const (
	ResultWin        = "win"
	ResultLose       = "lose"
	ResultIncomplete = "incomplete"
)

// ValidDifficulty reports whether d is one of the three difficulty tiers.
func ValidDifficulty(d string) bool {
	return d == DifficultyEasy || d == DifficultyMedium || d == DifficultyHard
}

// GameSession is the immutable audit record of one playthrough.
// Rows are created once and never updated or deleted.
type GameSession struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"userId"`
	TimeTaken  int       `json:"timeTaken"`
	Moves      int       `json:"moves"`
	Difficulty string    `json:"difficulty"`
	Result     string    `json:"result"`
	CreatedAt  time.Time `json:"createdAt"`
}
