package strategy

import (
	"fmt"

	"LadderPilot/internal/calculator"
	"LadderPilot/internal/model"
)

// Sell rule parameters: +5% sell one third, +10% sell one third, trailing
// stop 5% off the peak on the remainder, protective exit priced 0.5% below
// market to bias toward a fast fill.
const (
	TakeProfit1Mult = 1.05
	TakeProfit2Mult = 1.10
	TrailDrawdown   = 0.95
	ProtectiveDisc  = 0.995
)

// SellInput is the per-cycle snapshot the sell rule evaluates against.
type SellInput struct {
	Position      model.Position
	LastPrice     float64
	MaxSinceEntry *float64
	Lot           int64
	Open          []model.OpenOrder
}

// SellOutcome carries the updated peak, the idempotent sell legs desired
// this cycle, and the human-readable action log entries.
type SellOutcome struct {
	MaxSinceEntry *float64
	Desired       []model.DesiredOrder
	Actions       []string
}

// SellRuleEngine derives sell actions from a position snapshot. It is
// stateless per call: the current stage follows from the position quantity
// and the stored peak alone.
type SellRuleEngine struct {
	Rec  *Reconciler
	Tick float64
}

// NewSellRuleEngine creates a SellRuleEngine sharing the buy reconciler.
func NewSellRuleEngine(rec *Reconciler, tick float64) *SellRuleEngine {
	return &SellRuleEngine{Rec: rec, Tick: tick}
}

// Evaluate runs one pass of the sell rule. A venue rejection on any leg is
// logged as an action and later legs still evaluate.
func (e *SellRuleEngine) Evaluate(in SellInput) SellOutcome {
	var out SellOutcome

	if in.Position.Quantity <= 0 {
		// Flat: the peak resets so a future entry starts tracking fresh.
		return out
	}

	// Running peak since entry, monotonic while the position is held.
	peak := in.LastPrice
	if in.MaxSinceEntry != nil && *in.MaxSinceEntry > peak {
		peak = *in.MaxSinceEntry
	}
	out.MaxSinceEntry = &peak

	if in.Position.AvgCost == nil || *in.Position.AvgCost <= 0 {
		return out
	}
	avgCost := *in.Position.AvgCost

	tp1 := calculator.RoundToTick(avgCost*TakeProfit1Mult, e.Tick)
	tp2 := calculator.RoundToTick(avgCost*TakeProfit2Mult, e.Tick)

	trancheQty := FloorToLot(in.Position.Quantity/3, in.Lot)
	if trancheQty < in.Lot {
		trancheQty = in.Lot
	}

	legs := []struct {
		label string
		price float64
	}{
		{"TP1", tp1},
		{"TP2", tp2},
	}
	for _, leg := range legs {
		want := model.DesiredOrder{Side: model.SideSell, Quantity: trancheQty, Price: leg.price, Label: leg.label}
		out.Desired = append(out.Desired, want)
		if acted, info := e.Rec.Ensure(in.Open, want); acted {
			out.Actions = append(out.Actions, fmt.Sprintf("%s: %s", leg.label, info))
		}
	}

	// Trailing stop on the estimated remainder. This is an estimate, not a
	// fill ledger: it assumes both take-profit legs remove their quantity.
	remaining := FloorToLot(in.Position.Quantity-2*trancheQty, in.Lot)
	trigger := peak * TrailDrawdown
	if remaining >= in.Lot && in.LastPrice <= trigger {
		// Urgent exit: submit directly, bypassing duplicate suppression.
		// A duplicate protective order is an accepted risk; a missed exit
		// is not.
		px := calculator.RoundToTick(in.LastPrice*ProtectiveDisc, e.Tick)
		orderID, err := e.Rec.Client.PlaceOrder(model.SideSell, e.Rec.Symbol, remaining, px)
		if err != nil {
			out.Actions = append(out.Actions, fmt.Sprintf("TRAIL_STOP: FAILED place SELL %d@%.2f: %v", remaining, px, err))
		} else {
			out.Actions = append(out.Actions, fmt.Sprintf("TRAIL_STOP: PLACED SELL %d@%.2f (order_id %s) trigger<=%.2f (max %.2f)", remaining, px, orderID, trigger, peak))
		}
	}

	return out
}
