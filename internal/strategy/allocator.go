package strategy

import (
	"sort"
	"strings"

	"LadderPilot/internal/calculator"
	"LadderPilot/internal/model"
)

// Tranche weights for the three support levels. Fixed by the buy rule:
// 30% at the 20-day low, 35% at the 50-day low, 35% at the 200-day SMA.
const (
	WeightLow20  = 0.30
	WeightLow50  = 0.35
	WeightSMA200 = 0.35
)

// BuildBuckets maps support levels to budget buckets. Levels rounding to the
// same tick collapse into one bucket with summed budget and unioned names.
// Buckets come back in descending price order so that nearer-to-market
// tranches are evaluated first.
func BuildBuckets(levels model.SupportLevels, budget, tick float64) []model.BudgetBucket {
	triples := []struct {
		name  string
		level *float64
		share float64
	}{
		{model.LevelLow20, levels.Low20, WeightLow20},
		{model.LevelLow50, levels.Low50, WeightLow50},
		{model.LevelSMA200, levels.SMA200, WeightSMA200},
	}

	byPrice := map[float64]*model.BudgetBucket{}
	for _, t := range triples {
		if t.level == nil {
			continue
		}
		px := calculator.RoundToTick(*t.level, tick)
		b, ok := byPrice[px]
		if !ok {
			b = &model.BudgetBucket{Price: px}
			byPrice[px] = b
		}
		b.Names = append(b.Names, t.name)
		b.Budget += budget * t.share
	}

	buckets := make([]model.BudgetBucket, 0, len(byPrice))
	for _, b := range byPrice {
		buckets = append(buckets, *b)
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Price > buckets[j].Price })
	return buckets
}

// TrancheOrders converts buckets into lot-aligned buy orders. A bucket whose
// budget buys less than one lot is bumped to exactly one lot so a positive
// budget always yields a placeable order.
func TrancheOrders(buckets []model.BudgetBucket, lot int64) []model.DesiredOrder {
	orders := make([]model.DesiredOrder, 0, len(buckets))
	for _, b := range buckets {
		if b.Price <= 0 || b.Budget <= 0 {
			continue
		}
		qty := FloorToLot(int64(b.Budget/b.Price), lot)
		if qty < lot {
			qty = lot
		}
		orders = append(orders, model.DesiredOrder{
			Side:     model.SideBuy,
			Quantity: qty,
			Price:    b.Price,
			Label:    strings.Join(b.Names, "+"),
		})
	}
	return orders
}

// FloorToLot rounds a quantity down to the nearest lot multiple.
func FloorToLot(qty, lot int64) int64 {
	if lot <= 0 {
		return qty
	}
	if qty < 0 {
		return 0
	}
	return (qty / lot) * lot
}
