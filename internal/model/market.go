package model

import "time"

// Bar represents a single daily candlestick bar.
type Bar struct {
	Time  time.Time
	Open  float64
	High  float64
	Low   float64
	Close float64
}

// Quote is a point-in-time last traded price.
type Quote struct {
	Price      float64
	UpdateTime time.Time
}
