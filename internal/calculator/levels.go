package calculator

import (
	"errors"
	"math"

	"LadderPilot/internal/model"
)

// CalculateSMA computes the simple moving average of the given prices over the specified period.
func CalculateSMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(prices) < period {
		return 0, errors.New("not enough data for SMA calculation")
	}
	sum := 0.0
	for i := len(prices) - period; i < len(prices); i++ {
		sum += prices[i]
	}
	return sum / float64(period), nil
}

// CalculateLowestLow returns the minimum of the Low field over the last `period` bars.
func CalculateLowestLow(bars []model.Bar, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(bars) < period {
		return 0, errors.New("not enough data for lowest-low calculation")
	}
	low := math.Inf(1)
	for i := len(bars) - period; i < len(bars); i++ {
		if bars[i].Low < low {
			low = bars[i].Low
		}
	}
	return low, nil
}

// CalculateSMA200 returns the 200-day simple moving average of closes from daily bars.
func CalculateSMA200(bars []model.Bar) (float64, error) {
	return CalculateSMA(extractCloses(bars), 200)
}

// SupportLevels derives the three buy-ladder supports from daily bars.
// A window longer than the available history yields a nil level, not an
// error; downstream skips that tranche for the cycle.
func SupportLevels(bars []model.Bar) model.SupportLevels {
	var levels model.SupportLevels
	if v, err := CalculateLowestLow(bars, 20); err == nil {
		levels.Low20 = &v
	}
	if v, err := CalculateLowestLow(bars, 50); err == nil {
		levels.Low50 = &v
	}
	if v, err := CalculateSMA200(bars); err == nil {
		levels.SMA200 = &v
	}
	return levels
}

// RoundToTick rounds a price to the nearest tradable tick.
func RoundToTick(price, tick float64) float64 {
	if tick <= 0 {
		return price
	}
	return math.Round(price/tick) * tick
}

func extractCloses(bars []model.Bar) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}
