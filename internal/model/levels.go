package model

// Level names for the three supports of the buy ladder.
const (
	LevelLow20  = "LOW20"
	LevelLow50  = "LOW50"
	LevelSMA200 = "SMA200"
)

// SupportLevels holds the derived support prices for one cycle.
// A nil field means history was too short for that window this cycle.
type SupportLevels struct {
	Low20  *float64
	Low50  *float64
	SMA200 *float64
}

// BudgetBucket is one rung of the buy ladder after tick rounding.
// Levels that round to the same price collapse into a single bucket:
// budgets add, contributing names union.
type BudgetBucket struct {
	Price  float64
	Names  []string
	Budget float64
}
