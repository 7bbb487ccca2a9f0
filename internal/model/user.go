package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// balanceScale is the number of decimal places carried by a balance.
// Balances are stored as integer multiples of 1e-8 so that reward deltas
// can be applied with plain integer arithmetic.
const balanceScale = 8

type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	BalanceUnits int64     `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"-"`
}

// Balance returns the user's balance as an exact decimal.
func (u *User) Balance() decimal.Decimal {
	return decimal.New(u.BalanceUnits, -balanceScale)
}

// BalanceString formats the balance to a fixed 8 decimal places,
// e.g. "10.00000000".
func (u *User) BalanceString() string {
	return u.Balance().StringFixed(balanceScale)
}

// UnitsFromDecimal converts a decimal amount into integer balance units.
// Amounts with more than 8 decimal places are rejected rather than rounded.
func UnitsFromDecimal(d decimal.Decimal) (int64, bool) {
	shifted := d.Shift(balanceScale)
	if !shifted.IsInteger() {
		return 0, false
	}
	return shifted.IntPart(), true
}

// UnitsToDecimal converts integer balance units back to a decimal amount.
func UnitsToDecimal(units int64) decimal.Decimal {
	return decimal.New(units, -balanceScale)
}
