package runstate

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"LadderPilot/internal/model"
)

// Store persists the RunState record to a JSON file. Writes go to a
// temporary file first and are renamed into place so an interrupted write
// never corrupts the last good state.
type Store struct {
	path string
}

// NewStore creates a Store for the given file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads the run state. A missing file yields a zero state, not an
// error; the driver initializes it on first use.
func (s *Store) Load() (*model.RunState, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &model.RunState{}, nil
		}
		return nil, fmt.Errorf("read state: %w", err)
	}
	var state model.RunState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("parse state: %w", err)
	}
	return &state, nil
}

// Save writes the run state atomically.
func (s *Store) Save(state *model.RunState) error {
	state.UpdatedAt = time.Now()
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create state dir: %w", err)
		}
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write temp state: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace state: %w", err)
	}
	return nil
}

// Initialize stamps a fresh run: start now, end after horizonDays, a new
// run id, and the rule notes recorded for the final report.
func Initialize(state *model.RunState, now time.Time, horizonDays int) {
	state.RunID = uuid.NewString()
	state.StartTS = now.Unix()
	state.EndTS = now.Add(time.Duration(horizonDays) * 24 * time.Hour).Unix()
	state.MaxPriceSinceEntry = nil
	state.InitialEquity = nil
	state.Notes = map[string]string{
		"buy_rule":  "20d low / 50d low / 200d SMA, 30/35/35",
		"sell_rule": "+5% sell 1/3, +10% sell 1/3, trailing stop 5% on remainder",
	}
}
