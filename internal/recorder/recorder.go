package recorder

import "LadderPilot/internal/model"

// CycleSnapshot holds the per-cycle market and position view.
type CycleSnapshot struct {
	Symbol      string
	LastPrice   float64
	Levels      model.SupportLevels
	HoldingQty  int64
	AvgCost     *float64
	MaxPrice    *float64
	ActionCount int
}

// OrderEvent records one reconciliation outcome: a placement, a rejection,
// a suppression, or a cancellation.
type OrderEvent struct {
	Side     string
	Quantity int64
	Price    float64
	Label    string
	Outcome  string // "PLACED", "FAILED", "EXISTS", "SKIPPED", "CANCELLED"
	Detail   string
}

// RunEvent records a run lifecycle transition.
type RunEvent struct {
	Event         string // "START" or "END"
	RunID         string
	InitialEquity *float64
	FinalEquity   *float64
	ReturnPct     *float64
	Note          string
}

// Recorder persists historical data for analysis.
type Recorder interface {
	RecordCycle(snap *CycleSnapshot) error
	RecordOrder(evt *OrderEvent) error
	RecordRun(evt *RunEvent) error
	Close() error
}
