package archive

import (
	"context"
	"time"
)

// OutcomeResult classifies how a debate loop ended.
type OutcomeResult string

const (
	ResultJudged     OutcomeResult = "judged"
	ResultInterfered OutcomeResult = "interfered"
)

// OutcomeRecord summarizes one completed debate loop. Only outcomes are
// persisted, never transcripts.
type OutcomeRecord struct {
	ID         string        `json:"id"`
	SessionID  string        `json:"session_id"`
	Result     OutcomeResult `json:"result"`
	LoopDepth  int           `json:"loop_depth"`
	DurationMS int64         `json:"duration_ms"`
	CreatedAt  time.Time     `json:"created_at"`
}

// Store persists and retrieves debate outcomes.
type Store interface {
	SaveOutcome(ctx context.Context, record OutcomeRecord) error
	RecentOutcomes(ctx context.Context, limit int) ([]OutcomeRecord, error)
	Close() error
}
