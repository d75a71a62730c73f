package notifier

import (
	"fmt"
	"strings"
	"time"

	"LadderPilot/internal/calculator"
	"LadderPilot/internal/model"
)

// FormatActionSummary formats the per-cycle action log. Emitted only when
// at least one action occurred; silent cycles send nothing.
func FormatActionSummary(symbol string, quote model.Quote, levels model.SupportLevels, tick float64, actions []string) string {
	var b strings.Builder

	b.WriteString("STRATEGY_ACTION\n")
	b.WriteString(fmt.Sprintf("- Code: %s\n", symbol))
	b.WriteString(fmt.Sprintf("- Last: %.2f (update %s)\n", quote.Price, quote.UpdateTime.Format("2006-01-02 15:04:05")))

	var supports []string
	if levels.Low20 != nil {
		supports = append(supports, fmt.Sprintf("low20 %.1f", calculator.RoundToTick(*levels.Low20, tick)))
	}
	if levels.Low50 != nil {
		supports = append(supports, fmt.Sprintf("low50 %.1f", calculator.RoundToTick(*levels.Low50, tick)))
	}
	if levels.SMA200 != nil {
		supports = append(supports, fmt.Sprintf("sma200 %.1f", calculator.RoundToTick(*levels.SMA200, tick)))
	}
	if len(supports) > 0 {
		b.WriteString(fmt.Sprintf("- Supports: %s\n", strings.Join(supports, " | ")))
	}

	b.WriteString("- Actions:\n")
	for _, a := range actions {
		b.WriteString(fmt.Sprintf("  - %s\n", a))
	}
	return b.String()
}

// FormatFinalReport formats the terminal report emitted once the horizon
// has passed. Return percentage appears only when both equities are known.
func FormatFinalReport(symbol string, state *model.RunState, finalEquity *float64) string {
	var b strings.Builder

	b.WriteString("FORWARD_TEST_END\n")
	b.WriteString(fmt.Sprintf("- Code: %s\n", symbol))
	b.WriteString(fmt.Sprintf("- Run: %s\n", state.RunID))
	b.WriteString(fmt.Sprintf("- Start: %s\n", time.Unix(state.StartTS, 0).Format(time.RFC3339)))
	b.WriteString(fmt.Sprintf("- End: %s\n", time.Unix(state.EndTS, 0).Format(time.RFC3339)))

	if state.InitialEquity != nil {
		b.WriteString(fmt.Sprintf("- Initial equity: %.2f\n", *state.InitialEquity))
	} else {
		b.WriteString("- Initial equity: n/a\n")
	}
	if finalEquity != nil {
		b.WriteString(fmt.Sprintf("- Final equity: %.2f\n", *finalEquity))
	} else {
		b.WriteString("- Final equity: n/a\n")
	}
	if pct := ReturnPct(state.InitialEquity, finalEquity); pct != nil {
		b.WriteString(fmt.Sprintf("- Return: %+.2f%%\n", *pct))
	}
	if rule, ok := state.Notes["sell_rule"]; ok {
		b.WriteString(fmt.Sprintf("- Sell rule: %s\n", rule))
	}
	return b.String()
}

// ReturnPct computes the percentage return between two equities, nil when
// either side is unknown or the base is zero.
func ReturnPct(initial, final *float64) *float64 {
	if initial == nil || final == nil || *initial == 0 {
		return nil
	}
	pct := (*final / *initial * 100) - 100
	return &pct
}
