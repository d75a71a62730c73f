package calculator

import (
	"math"
	"testing"
	"time"

	"LadderPilot/internal/model"
)

func barsFromLows(lows []float64) []model.Bar {
	bars := make([]model.Bar, len(lows))
	for i, l := range lows {
		bars[i] = model.Bar{
			Time:  time.Now().AddDate(0, 0, -(len(lows) - i)),
			Open:  l + 1,
			High:  l + 2,
			Low:   l,
			Close: l + 1,
		}
	}
	return bars
}

func TestCalculateLowestLow(t *testing.T) {
	lows := make([]float64, 0, 20)
	for i := 0; i < 19; i++ {
		lows = append(lows, 100)
	}
	lows = append(lows, 90)

	got, err := CalculateLowestLow(barsFromLows(lows), 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 90 {
		t.Errorf("expected low20=90, got %.2f", got)
	}

	// Window must cover exactly the last N bars: a lower low just outside
	// the window must not leak in.
	lows2 := append([]float64{10}, lows...)
	got, err = CalculateLowestLow(barsFromLows(lows2), 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 90 {
		t.Errorf("expected low20=90 ignoring bar outside window, got %.2f", got)
	}

	if _, err := CalculateLowestLow(barsFromLows(lows), 50); err == nil {
		t.Error("expected error for 20 bars with period 50")
	}
}

func TestCalculateSMA(t *testing.T) {
	prices := []float64{1, 2, 3, 4, 5}
	got, err := CalculateSMA(prices, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 3.5 {
		t.Errorf("expected mean of last 4 = 3.5, got %.2f", got)
	}
	if _, err := CalculateSMA(prices, 6); err == nil {
		t.Error("expected error when period exceeds history")
	}
	if _, err := CalculateSMA(prices, 0); err == nil {
		t.Error("expected error for non-positive period")
	}
}

func TestSupportLevels_ShortHistory(t *testing.T) {
	lows := make([]float64, 0, 20)
	for i := 0; i < 19; i++ {
		lows = append(lows, 100)
	}
	lows = append(lows, 90)

	levels := SupportLevels(barsFromLows(lows))
	if levels.Low20 == nil || *levels.Low20 != 90 {
		t.Errorf("expected low20=90, got %v", levels.Low20)
	}
	if levels.Low50 != nil {
		t.Errorf("expected nil low50 with 20 bars, got %v", *levels.Low50)
	}
	if levels.SMA200 != nil {
		t.Errorf("expected nil sma200 with 20 bars, got %v", *levels.SMA200)
	}
}

func TestRoundToTick(t *testing.T) {
	tests := []struct {
		price, tick, want float64
	}{
		{89.96, 0.1, 90.0},
		{89.94, 0.1, 89.9},
		{112.435, 0.1, 112.4},
		{105.0, 0.1, 105.0},
		{101.3, 0, 101.3}, // no tick configured: pass through
	}
	for _, tt := range tests {
		got := RoundToTick(tt.price, tt.tick)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("RoundToTick(%.3f, %.2f) = %.3f, want %.3f", tt.price, tt.tick, got, tt.want)
		}
	}
}
