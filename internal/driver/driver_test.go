package driver

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"LadderPilot/internal/broker"
	"LadderPilot/internal/config"
	"LadderPilot/internal/model"
	"LadderPilot/internal/recorder"
	"LadderPilot/internal/runstate"
)

// captureNotifier collects sent reports for assertions.
type captureNotifier struct {
	sent []string
}

func (c *captureNotifier) Send(text string) error {
	c.sent = append(c.sent, text)
	return nil
}

func newTestDriver(t *testing.T) (*Driver, *broker.SimClient, *captureNotifier) {
	t.Helper()
	cfg, err := config.Load(filepath.Join(t.TempDir(), "no-config.yaml"))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	cfg.State.File = filepath.Join(t.TempDir(), "state.json")

	sim := broker.NewSimClient(100, 260, 100)
	cap := &captureNotifier{}
	d := New(cfg, sim, runstate.NewStore(cfg.State.File), cap, recorder.NewNoopRecorder())
	return d, sim, cap
}

func TestRunCycle_PlacesLadderOnceAcrossCycles(t *testing.T) {
	d, sim, cap := newTestDriver(t)

	if err := d.RunCycle(); err != nil {
		t.Fatalf("first cycle: %v", err)
	}
	// Three distinct support levels, three buy tranches.
	if sim.Placed != 3 {
		t.Fatalf("expected 3 placements on first cycle, got %d", sim.Placed)
	}
	if len(cap.sent) != 1 || !strings.Contains(cap.sent[0], "STRATEGY_ACTION") {
		t.Fatalf("expected one action summary, got %v", cap.sent)
	}

	// Second invocation against the same book: everything suppressed,
	// silent cycle.
	if err := d.RunCycle(); err != nil {
		t.Fatalf("second cycle: %v", err)
	}
	if sim.Placed != 3 {
		t.Errorf("re-invocation must not duplicate orders, placed=%d", sim.Placed)
	}
	if len(cap.sent) != 1 {
		t.Errorf("quiet cycle must send nothing, got %v", cap.sent[1:])
	}
}

func TestRunCycle_TerminalAfterHorizon(t *testing.T) {
	d, sim, cap := newTestDriver(t)

	// Seed a run that started 31 days ago on a 30-day horizon.
	state := &model.RunState{}
	started := time.Now().Add(-31 * 24 * time.Hour)
	runstate.Initialize(state, started, 30)
	eq := 1000000.0
	state.InitialEquity = &eq
	if err := d.Store.Save(state); err != nil {
		t.Fatalf("seed state: %v", err)
	}

	if err := d.RunCycle(); err != nil {
		t.Fatalf("terminal cycle: %v", err)
	}
	if sim.Placed != 0 {
		t.Errorf("no order calls after the horizon, got %d placements", sim.Placed)
	}
	if len(cap.sent) != 1 {
		t.Fatalf("expected exactly the terminal report, got %v", cap.sent)
	}
	report := cap.sent[0]
	if !strings.Contains(report, "FORWARD_TEST_END") {
		t.Errorf("missing terminal marker: %q", report)
	}
	if !strings.Contains(report, "Return: +0.00%") {
		t.Errorf("expected return percentage with both equities known: %q", report)
	}
}

func TestRunCycle_PeakMonotonicAndReset(t *testing.T) {
	d, sim, _ := newTestDriver(t)
	avg := 100.0
	sim.Pos = model.Position{Quantity: 900, AvgCost: &avg}
	sim.Price = 102

	if err := d.RunCycle(); err != nil {
		t.Fatalf("cycle 1: %v", err)
	}
	state, _ := d.Store.Load()
	if state.MaxPriceSinceEntry == nil || *state.MaxPriceSinceEntry != 102 {
		t.Fatalf("expected peak 102, got %v", state.MaxPriceSinceEntry)
	}

	sim.Price = 101
	if err := d.RunCycle(); err != nil {
		t.Fatalf("cycle 2: %v", err)
	}
	state, _ = d.Store.Load()
	if state.MaxPriceSinceEntry == nil || *state.MaxPriceSinceEntry != 102 {
		t.Errorf("peak must not decrease on a lower print, got %v", state.MaxPriceSinceEntry)
	}

	sim.Pos = model.Position{}
	if err := d.RunCycle(); err != nil {
		t.Fatalf("cycle 3: %v", err)
	}
	state, _ = d.Store.Load()
	if state.MaxPriceSinceEntry != nil {
		t.Errorf("peak must reset to nil once flat, got %v", *state.MaxPriceSinceEntry)
	}
}

func TestRunCycle_TransportFailureLeavesNoState(t *testing.T) {
	d, sim, cap := newTestDriver(t)
	sim.BarsErr = errors.New("gateway down")

	if err := d.RunCycle(); err == nil {
		t.Fatal("expected cycle failure on transport error")
	}
	if _, err := os.Stat(d.Cfg.State.File); !os.IsNotExist(err) {
		t.Error("aborted cycle must not persist state")
	}
	if len(cap.sent) != 0 {
		t.Errorf("aborted cycle must send nothing, got %v", cap.sent)
	}
}

func TestRunCycle_InitialEquitySetOnce(t *testing.T) {
	d, sim, _ := newTestDriver(t)

	sim.EquityErr = errors.New("account endpoint flaky")
	if err := d.RunCycle(); err != nil {
		t.Fatalf("cycle 1: %v", err)
	}
	state, _ := d.Store.Load()
	if state.InitialEquity != nil {
		t.Fatal("equity read failed, initial equity must stay unset")
	}

	sim.EquityErr = nil
	sim.Equity = 999000
	if err := d.RunCycle(); err != nil {
		t.Fatalf("cycle 2: %v", err)
	}
	state, _ = d.Store.Load()
	if state.InitialEquity == nil || *state.InitialEquity != 999000 {
		t.Fatalf("expected initial equity 999000, got %v", state.InitialEquity)
	}

	sim.Equity = 1234567
	if err := d.RunCycle(); err != nil {
		t.Fatalf("cycle 3: %v", err)
	}
	state, _ = d.Store.Load()
	if *state.InitialEquity != 999000 {
		t.Errorf("initial equity must be written at most once, got %v", *state.InitialEquity)
	}
}
