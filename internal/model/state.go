package model

import "time"

// RunState is the single flat record that survives across invocations.
// Owned exclusively by the driver; persisted atomically.
type RunState struct {
	RunID              string            `json:"run_id"`
	StartTS            int64             `json:"start_ts"`
	EndTS              int64             `json:"end_ts"`
	MaxPriceSinceEntry *float64          `json:"max_price_since_entry"`
	InitialEquity      *float64          `json:"initial_equity"`
	Notes              map[string]string `json:"notes"`
	UpdatedAt          time.Time         `json:"updated_at"`
}

// Started reports whether the record has been initialized.
func (s *RunState) Started() bool { return s.StartTS != 0 }

// Ended reports whether the forward-test horizon has passed.
func (s *RunState) Ended(now time.Time) bool { return now.Unix() >= s.EndTS }
