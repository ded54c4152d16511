package models

import "time"

// User is the bot's view of a Telegram user.
type User struct {
	ID          int64
	UserName    string
	FirstName   string
	LastName    string
	Authorized  bool
	RefundCount int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// UserStats is the per-user drill-down shown to administrators.
type UserStats struct {
	User         *User
	AccountCount int64
	RefundCount  int64
}

// Totals are the global counts shown to administrators.
type Totals struct {
	Users    int64
	Accounts int64
	Refunds  int64
}
