package driver

import (
	"fmt"
	"log"
	"strings"
	"time"

	"LadderPilot/internal/broker"
	"LadderPilot/internal/calculator"
	"LadderPilot/internal/config"
	"LadderPilot/internal/model"
	"LadderPilot/internal/notifier"
	"LadderPilot/internal/recorder"
	"LadderPilot/internal/runstate"
	"LadderPilot/internal/strategy"
)

// Driver runs one evaluation cycle end to end: load state, snapshot the
// venue, reconcile the buy ladder, evaluate the sell rule, persist state,
// report. It owns the RunState record exclusively.
type Driver struct {
	Cfg      *config.Config
	Client   broker.Client
	Store    *runstate.Store
	Notifier notifier.Notifier
	Recorder recorder.Recorder

	// Now is the clock; tests pin it.
	Now func() time.Time
}

// New creates a Driver.
func New(cfg *config.Config, client broker.Client, store *runstate.Store, n notifier.Notifier, rec recorder.Recorder) *Driver {
	return &Driver{
		Cfg:      cfg,
		Client:   client,
		Store:    store,
		Notifier: n,
		Recorder: rec,
		Now:      time.Now,
	}
}

// RunCycle executes one strategy evaluation. A transport failure aborts
// before state is persisted so the next invocation retries from the last
// good record; venue rejections on individual orders never abort.
func (d *Driver) RunCycle() error {
	now := d.Now()
	symbol := d.Cfg.Strategy.Symbol

	state, err := d.Store.Load()
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}
	isNewRun := !state.Started()
	if isNewRun {
		runstate.Initialize(state, now, d.Cfg.Strategy.HorizonDays)
		log.Printf("[INFO] starting forward test %s: %s -> %s", state.RunID,
			time.Unix(state.StartTS, 0).Format("2006-01-02"), time.Unix(state.EndTS, 0).Format("2006-01-02"))
	}

	// Initial equity is set at most once, on the first successful account
	// read; absence never halts the cycle.
	if state.InitialEquity == nil {
		if eq, err := d.Client.FetchAccountEquity(); err != nil {
			log.Printf("[WARN] account equity unavailable: %v", err)
		} else {
			state.InitialEquity = &eq
		}
	}

	if state.Ended(now) {
		return d.finishRun(state)
	}

	// One snapshot per cycle; the whole pipeline sees a consistent view.
	bars, err := d.Client.FetchDailyBars(symbol, d.Cfg.Strategy.BarCount)
	if err != nil {
		return fmt.Errorf("fetch bars: %w", err)
	}
	quote, err := d.Client.FetchLastPrice(symbol)
	if err != nil {
		return fmt.Errorf("fetch last price: %w", err)
	}
	lot, err := d.Client.GetLotSize(symbol)
	if err != nil {
		log.Printf("[WARN] lot size unavailable, using fallback %d: %v", d.Cfg.Strategy.LotFallback, err)
		lot = d.Cfg.Strategy.LotFallback
	}
	pos, err := d.Client.FetchPosition(symbol)
	if err != nil {
		return fmt.Errorf("fetch position: %w", err)
	}
	open, err := d.Client.FetchOpenOrders(symbol)
	if err != nil {
		return fmt.Errorf("fetch open orders: %w", err)
	}

	levels := calculator.SupportLevels(bars)
	rec := strategy.NewReconciler(d.Client, symbol, d.Cfg.Strategy.PriceTolerance)
	engine := strategy.NewSellRuleEngine(rec, d.Cfg.Strategy.Tick)

	var actions []string
	var desired []model.DesiredOrder

	// Buy ladder maintenance.
	buckets := strategy.BuildBuckets(levels, d.Cfg.Strategy.Budget, d.Cfg.Strategy.Tick)
	for _, want := range strategy.TrancheOrders(buckets, lot) {
		desired = append(desired, want)
		acted, info := rec.Ensure(open, want)
		d.recordOrder(&recorder.OrderEvent{
			Side:     string(want.Side),
			Quantity: want.Quantity,
			Price:    want.Price,
			Label:    want.Label,
			Outcome:  outcomeOf(acted, info),
			Detail:   info,
		})
		if acted {
			actions = append(actions, fmt.Sprintf("%s@%.1f: %s", want.Label, want.Price, info))
		}
	}

	// Sell rule.
	sellOut := engine.Evaluate(strategy.SellInput{
		Position:      pos,
		LastPrice:     quote.Price,
		MaxSinceEntry: state.MaxPriceSinceEntry,
		Lot:           lot,
		Open:          open,
	})
	state.MaxPriceSinceEntry = sellOut.MaxSinceEntry
	desired = append(desired, sellOut.Desired...)
	for _, a := range sellOut.Actions {
		d.recordOrder(actionEvent(a))
		actions = append(actions, a)
	}

	// Optional stale-order cleanup (off by default; the source strategy
	// let drifted rungs accumulate).
	if d.Cfg.Strategy.CleanupStale {
		for _, a := range rec.CancelStale(open, desired) {
			d.recordOrder(actionEvent(a))
			actions = append(actions, a)
		}
	}

	if err := d.Store.Save(state); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	if isNewRun {
		d.recordRun(&recorder.RunEvent{Event: "START", RunID: state.RunID, InitialEquity: state.InitialEquity})
	}
	d.recordCycle(&recorder.CycleSnapshot{
		Symbol:      symbol,
		LastPrice:   quote.Price,
		Levels:      levels,
		HoldingQty:  pos.Quantity,
		AvgCost:     pos.AvgCost,
		MaxPrice:    state.MaxPriceSinceEntry,
		ActionCount: len(actions),
	})

	if len(actions) > 0 {
		d.trySend(notifier.FormatActionSummary(symbol, quote, levels, d.Cfg.Strategy.Tick, actions))
	} else {
		// Quiet on no-op cycles: silence is the anti-spam policy.
		log.Println("[INFO] cycle complete, no actions")
	}
	return nil
}

// finishRun emits the terminal report. No order activity happens once the
// horizon has passed.
func (d *Driver) finishRun(state *model.RunState) error {
	var finalEquity *float64
	if eq, err := d.Client.FetchAccountEquity(); err != nil {
		log.Printf("[WARN] final equity unavailable: %v", err)
	} else {
		finalEquity = &eq
	}

	if err := d.Store.Save(state); err != nil {
		return fmt.Errorf("save state: %w", err)
	}

	report := notifier.FormatFinalReport(d.Cfg.Strategy.Symbol, state, finalEquity)
	d.trySend(report)
	d.recordRun(&recorder.RunEvent{
		Event:         "END",
		RunID:         state.RunID,
		InitialEquity: state.InitialEquity,
		FinalEquity:   finalEquity,
		ReturnPct:     notifier.ReturnPct(state.InitialEquity, finalEquity),
		Note:          "horizon reached",
	})
	log.Printf("[INFO] forward test %s finished", state.RunID)
	return nil
}

func outcomeOf(acted bool, info string) string {
	switch {
	case !acted && info == "exists":
		return "EXISTS"
	case !acted:
		return "SKIPPED"
	case strings.HasPrefix(info, "FAILED"):
		return "FAILED"
	default:
		return "PLACED"
	}
}

// actionEvent converts an action-log line ("TP1: PLACED SELL 300@105.00
// (order_id x)") into an order event for the recorder.
func actionEvent(line string) *recorder.OrderEvent {
	evt := &recorder.OrderEvent{Side: string(model.SideSell), Detail: line}
	if strings.Contains(line, " BUY ") {
		evt.Side = string(model.SideBuy)
	}
	if i := strings.Index(line, ":"); i > 0 {
		evt.Label = line[:i]
	}
	switch {
	case strings.Contains(line, "FAILED"):
		evt.Outcome = "FAILED"
	case strings.Contains(line, "CANCELLED"):
		evt.Outcome = "CANCELLED"
	default:
		evt.Outcome = "PLACED"
	}
	return evt
}

func (d *Driver) trySend(text string) {
	if err := d.Notifier.Send(text); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}

func (d *Driver) recordOrder(evt *recorder.OrderEvent) {
	if err := d.Recorder.RecordOrder(evt); err != nil {
		log.Printf("[ERROR] record order event: %v", err)
	}
}

func (d *Driver) recordCycle(snap *recorder.CycleSnapshot) {
	if err := d.Recorder.RecordCycle(snap); err != nil {
		log.Printf("[ERROR] record cycle: %v", err)
	}
}

func (d *Driver) recordRun(evt *recorder.RunEvent) {
	if err := d.Recorder.RecordRun(evt); err != nil {
		log.Printf("[ERROR] record run event: %v", err)
	}
}
