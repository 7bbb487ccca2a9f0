package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/neonmatrix/neonmatrix/internal/model"
)

type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

const userCols = `id, email, username, password_hash, balance_units, created_at, updated_at`

func scanUser(scanner interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	err := scanner.Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.BalanceUnits, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *UserStore) Create(email, username, passwordHash string) (*model.User, error) {
	now := time.Now().UTC()
	result, err := s.db.Exec(
		`INSERT INTO users (email, username, password_hash, balance_units, created_at, updated_at)
		 VALUES (?, ?, ?, 0, ?, ?)`,
		email, username, passwordHash, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *UserStore) GetByID(id int64) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *UserStore) GetByEmail(email string) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE email = ?`, email)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

// ReconcileBalance rewrites the user's balance as the sum of reward deltas
// over their recorded sessions. The subquery and update run as one statement,
// so a session recorded concurrently is either fully counted or applied on
// top by its own relative update.
func (s *UserStore) ReconcileBalance(id int64) (*model.User, error) {
	_, err := s.db.Exec(
		`UPDATE users
		 SET balance_units = (
		     SELECT COALESCE(SUM(CASE result WHEN 'win' THEN ? WHEN 'lose' THEN ? ELSE 0 END), 0)
		     FROM game_sessions WHERE user_id = ?
		 ), updated_at = ?
		 WHERE id = ?`,
		winRewardUnits, losePenaltyUnits, id, time.Now().UTC(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("reconcile balance: %w", err)
	}
	return s.GetByID(id)
}
