package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/neonmatrix/neonmatrix/internal/model"
)

// Reward deltas in 1e-8 balance units: +10 for a win, -5 for a loss.
// Any other result leaves the balance untouched.
const (
	unitsPerCoin     = 100_000_000
	winRewardUnits   = 10 * unitsPerCoin
	losePenaltyUnits = -5 * unitsPerCoin
)

// rewardUnits returns the balance delta for a session result.
func rewardUnits(result string) int64 {
	switch result {
	case model.ResultWin:
		return winRewardUnits
	case model.ResultLose:
		return losePenaltyUnits
	default:
		return 0
	}
}

type GameSessionStore struct {
	db *sql.DB
}

func NewGameSessionStore(db *sql.DB) *GameSessionStore {
	return &GameSessionStore{db: db}
}

const sessionCols = `id, user_id, time_taken, moves, difficulty, result, created_at`

func scanSession(scanner interface{ Scan(...any) error }) (*model.GameSession, error) {
	var gs model.GameSession
	err := scanner.Scan(&gs.ID, &gs.UserID, &gs.TimeTaken, &gs.Moves, &gs.Difficulty, &gs.Result, &gs.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &gs, nil
}

// Record inserts an immutable session row and applies the reward delta to the
// user's balance in the same transaction. The balance change is a relative
// update (balance_units = balance_units + delta), so concurrent submissions
// for one user never lose each other's deltas. Returns the new session and
// the updated balance in units.
func (s *GameSessionStore) Record(userID int64, timeTaken, moves int, difficulty, result string) (*model.GameSession, int64, error) {
	now := time.Now().UTC()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, 0, fmt.Errorf("begin record session: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`INSERT INTO game_sessions (user_id, time_taken, moves, difficulty, result, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		userID, timeTaken, moves, difficulty, result, now,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("insert session: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, 0, fmt.Errorf("last insert id: %w", err)
	}

	if _, err := tx.Exec(
		`UPDATE users SET balance_units = balance_units + ?, updated_at = ? WHERE id = ?`,
		rewardUnits(result), now, userID,
	); err != nil {
		return nil, 0, fmt.Errorf("apply reward delta: %w", err)
	}

	var balanceUnits int64
	if err := tx.QueryRow(`SELECT balance_units FROM users WHERE id = ?`, userID).Scan(&balanceUnits); err != nil {
		return nil, 0, fmt.Errorf("read balance: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, 0, fmt.Errorf("commit record session: %w", err)
	}

	return &model.GameSession{
		ID:         id,
		UserID:     userID,
		TimeTaken:  timeTaken,
		Moves:      moves,
		Difficulty: difficulty,
		Result:     result,
		CreatedAt:  now,
	}, balanceUnits, nil
}

// ListByUser returns all of a user's sessions, newest first.
func (s *GameSessionStore) ListByUser(userID int64) ([]model.GameSession, error) {
	rows, err := s.db.Query(
		`SELECT `+sessionCols+` FROM game_sessions WHERE user_id = ? ORDER BY created_at DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []model.GameSession
	for rows.Next() {
		gs, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, *gs)
	}
	return sessions, rows.Err()
}
