package models

import "time"

// QueryRecord is one processed chat turn, persisted for audit and history.
type QueryRecord struct {
	ID           string
	SessionID    string
	QueryText    string
	Language     string
	Metric       string
	Dimension    string
	ResponseKind string
	ResponseText string
	LatencyMS    int
	CreatedAt    time.Time
}

type Feedback struct {
	ID            int
	QueryID       string
	Helpful       bool
	IssueCategory string
	Comment       string
	CreatedAt     time.Time
}
