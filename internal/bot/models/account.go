package models

import (
	"time"

	"github.com/dmitrijs2005/tokenbot/internal/normalize"
)

// AccountRecord is one account verification attempt. Records are never
// updated once written.
type AccountRecord struct {
	ID         int64
	UserID     int64
	Credential string
	Account    normalize.Account
	Parsed     bool
	StatusCode int
	RawBody    string
	CreatedAt  time.Time
}
