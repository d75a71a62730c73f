package strategy

import (
	"strings"
	"testing"

	"LadderPilot/internal/broker"
	"LadderPilot/internal/model"
)

func newTestReconciler() (*Reconciler, *broker.SimClient) {
	sim := broker.NewSimClient(100, 260, 100)
	return NewReconciler(sim, "HK.09988", 0.05), sim
}

func TestEnsure_Idempotent(t *testing.T) {
	rec, sim := newTestReconciler()
	want := model.DesiredOrder{Side: model.SideBuy, Quantity: 300, Price: 90.0, Label: "LOW20"}

	open, _ := sim.FetchOpenOrders("HK.09988")
	acted, info := rec.Ensure(open, want)
	if !acted || !strings.HasPrefix(info, "PLACED") {
		t.Fatalf("expected placement, got acted=%v info=%q", acted, info)
	}

	// Second call against the book reflecting the first call's effect.
	open, _ = sim.FetchOpenOrders("HK.09988")
	acted, info = rec.Ensure(open, want)
	if acted || info != "exists" {
		t.Errorf("expected suppression, got acted=%v info=%q", acted, info)
	}
	if sim.Placed != 1 {
		t.Errorf("expected exactly 1 placement, got %d", sim.Placed)
	}
}

func TestEnsure_ToleranceBand(t *testing.T) {
	rec, sim := newTestReconciler()
	open := []model.OpenOrder{{ID: "1", Side: model.SideBuy, Price: 90.0, Quantity: 300, Status: model.StatusSubmitted}}

	// Within tolerance: satisfied, nothing placed.
	acted, info := rec.Ensure(open, model.DesiredOrder{Side: model.SideBuy, Quantity: 300, Price: 90.04})
	if acted || info != "exists" {
		t.Errorf("price 90.04 within 0.05 of 90.0 should be satisfied, got acted=%v info=%q", acted, info)
	}

	// Just outside tolerance: placed.
	acted, _ = rec.Ensure(open, model.DesiredOrder{Side: model.SideBuy, Quantity: 300, Price: 90.06})
	if !acted {
		t.Error("price 90.06 outside tolerance should place a new order")
	}
	if sim.Placed != 1 {
		t.Errorf("expected 1 placement, got %d", sim.Placed)
	}
}

func TestEnsure_SkipsZeroQuantity(t *testing.T) {
	rec, sim := newTestReconciler()
	acted, info := rec.Ensure(nil, model.DesiredOrder{Side: model.SideBuy, Quantity: 0, Price: 90.0})
	if acted || info != "qty<=0" {
		t.Errorf("expected skip for zero qty, got acted=%v info=%q", acted, info)
	}
	if sim.Placed != 0 {
		t.Errorf("expected no placement, got %d", sim.Placed)
	}
}

func TestEnsure_IgnoresInactiveAndOtherSide(t *testing.T) {
	rec, _ := newTestReconciler()
	open := []model.OpenOrder{
		{ID: "1", Side: model.SideBuy, Price: 90.0, Quantity: 300, Status: model.StatusFilled},
		{ID: "2", Side: model.SideSell, Price: 90.0, Quantity: 300, Status: model.StatusSubmitted},
	}
	acted, _ := rec.Ensure(open, model.DesiredOrder{Side: model.SideBuy, Quantity: 300, Price: 90.0})
	if !acted {
		t.Error("filled and opposite-side orders must not satisfy a desired buy")
	}
}

func TestEnsure_ReportsRejectionDetail(t *testing.T) {
	rec, sim := newTestReconciler()
	sim.RejectPlacements = true
	acted, info := rec.Ensure(nil, model.DesiredOrder{Side: model.SideSell, Quantity: 300, Price: 105.0})
	if !acted {
		t.Fatal("a rejected placement attempt still counts as an action")
	}
	if !strings.Contains(info, "FAILED place SELL 300@105.00") {
		t.Errorf("expected rejection detail, got %q", info)
	}
}

func TestCancelStale(t *testing.T) {
	rec, sim := newTestReconciler()
	if _, err := sim.PlaceOrder(model.SideBuy, "HK.09988", 300, 95.0); err != nil {
		t.Fatal(err)
	}
	if _, err := sim.PlaceOrder(model.SideBuy, "HK.09988", 300, 90.0); err != nil {
		t.Fatal(err)
	}

	open, _ := sim.FetchOpenOrders("HK.09988")
	desired := []model.DesiredOrder{{Side: model.SideBuy, Quantity: 300, Price: 90.02}}
	actions := rec.CancelStale(open, desired)

	if len(actions) != 1 {
		t.Fatalf("expected 1 cancellation, got %d: %v", len(actions), actions)
	}
	if !strings.Contains(actions[0], "CANCELLED BUY 300@95.00") {
		t.Errorf("unexpected action: %q", actions[0])
	}
	if sim.Canceled != 1 {
		t.Errorf("expected 1 cancel at the venue, got %d", sim.Canceled)
	}
}
