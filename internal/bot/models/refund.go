package models

import "time"

// RefundRecord is one confirmed refund submission.
type RefundRecord struct {
	ID            int64
	UserID        int64
	Credential    string
	OrderID       string
	HasPhoto      bool
	PhotoFilename *string
	PhotoKey      *string
	Message       string
	RequestID     string
	TraceID       string
	StatusCode    int
	RawBody       string
	CreatedAt     time.Time
}
