package strategy

import (
	"fmt"
	"math"

	"LadderPilot/internal/broker"
	"LadderPilot/internal/model"
)

// Reconciler idempotently ensures desired orders exist among the venue's
// active open orders. It only adds: existing orders are never modified, and
// cancellation happens solely through the explicit CancelStale policy.
type Reconciler struct {
	Client broker.Client
	Symbol string
	// Tolerance is the absolute price band within which an existing active
	// order of the same side counts as already satisfying a desired order.
	// Support levels drift a little between cycles as new bars shift the
	// trailing window; without the band every invocation would churn.
	Tolerance float64
}

// NewReconciler creates a Reconciler for one symbol.
func NewReconciler(client broker.Client, symbol string, tolerance float64) *Reconciler {
	return &Reconciler{Client: client, Symbol: symbol, Tolerance: tolerance}
}

// Ensure makes sure an order similar to want is outstanding. It reports
// acted=true when a placement was attempted (successfully or not); skips and
// already-satisfied orders return acted=false with the reason in detail.
func (r *Reconciler) Ensure(open []model.OpenOrder, want model.DesiredOrder) (acted bool, detail string) {
	if want.Quantity <= 0 {
		return false, "qty<=0"
	}
	if r.Satisfied(open, want.Side, want.Price) {
		return false, "exists"
	}
	orderID, err := r.Client.PlaceOrder(want.Side, r.Symbol, want.Quantity, want.Price)
	if err != nil {
		return true, fmt.Sprintf("FAILED place %s %d@%.2f: %v", want.Side, want.Quantity, want.Price, err)
	}
	return true, fmt.Sprintf("PLACED %s %d@%.2f (order_id %s)", want.Side, want.Quantity, want.Price, orderID)
}

// Satisfied reports whether any active order of the given side rests within
// tolerance of price.
func (r *Reconciler) Satisfied(open []model.OpenOrder, side model.Side, price float64) bool {
	for _, o := range open {
		if !o.IsActive() || o.Side != side {
			continue
		}
		if math.Abs(o.Price-price) <= r.Tolerance {
			return true
		}
	}
	return false
}

// CancelStale withdraws active orders whose price matches no currently
// desired order of the same side within tolerance. Off by default via
// configuration; when enabled it keeps the book from accumulating rungs at
// levels that have drifted away. A protective exit placed by the trailing
// path may be cancelled here and will be re-placed while its trigger holds.
func (r *Reconciler) CancelStale(open []model.OpenOrder, desired []model.DesiredOrder) []string {
	var actions []string
	for _, o := range open {
		if !o.IsActive() {
			continue
		}
		wanted := false
		for _, d := range desired {
			if d.Side == o.Side && math.Abs(o.Price-d.Price) <= r.Tolerance {
				wanted = true
				break
			}
		}
		if wanted {
			continue
		}
		if err := r.Client.CancelOrder(o.ID); err != nil {
			actions = append(actions, fmt.Sprintf("FAILED cancel %s %d@%.2f (order_id %s): %v", o.Side, o.Quantity, o.Price, o.ID, err))
		} else {
			actions = append(actions, fmt.Sprintf("CANCELLED %s %d@%.2f (order_id %s)", o.Side, o.Quantity, o.Price, o.ID))
		}
	}
	return actions
}
