package models

import "time"

// DateLayout is the calendar-date format used throughout the app.
// Transactions carry day granularity only, no time of day.
const DateLayout = "2006-01-02"

// TransactionKind distinguishes money coming in from money going out.
type TransactionKind string

const (
	KindIncome  TransactionKind = "income"
	KindExpense TransactionKind = "expense"
)

// Valid reports whether k is one of the known kinds.
func (k TransactionKind) Valid() bool {
	return k == KindIncome || k == KindExpense
}

// Account represents a registered courier.
type Account struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	PasswordHash   string    `json:"-"`
	DailyGoalCents int64     `json:"daily_goal_cents"`
	OdometerKM     int64     `json:"odometer_km"`
	NextServiceKM  int64     `json:"next_service_km"`
	CreatedAt      time.Time `json:"created_at"`
}

// Transaction is a single dated monetary movement owned by an account.
// FuelLitres and OdometerKM are set only on fuel-purchase entries.
type Transaction struct {
	ID          int64           `json:"id"`
	AccountID   int64           `json:"account_id"`
	Kind        TransactionKind `json:"kind"`
	AmountCents int64           `json:"amount_cents"`
	Description string          `json:"description"`
	Date        string          `json:"date"` // YYYY-MM-DD
	FuelLitres  *float64        `json:"fuel_litres,omitempty"`
	OdometerKM  *int64          `json:"odometer_km,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Session represents a login session.
type Session struct {
	Token     string    `json:"token"`
	AccountID int64     `json:"account_id"`
	ExpiresAt time.Time `json:"expires_at"`
}
