package models

import "time"

// ExchangeRecord is one logged question/reply pair for a session.
type ExchangeRecord struct {
	ID           string
	SessionID    string
	Locale       string
	Question     string
	Reply        string
	TopAnchorID  string
	TopScore     float64
	HitCount     int
	UsedFallback bool
	LatencyMS    int
	CreatedAt    time.Time
}
