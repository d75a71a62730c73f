package broker

import "LadderPilot/internal/model"

// Client defines the interface the strategy needs from a trading venue.
// All calls are synchronous; the driver issues them in a fixed sequence
// once per cycle.
type Client interface {
	// FetchDailyBars returns up to count daily bars, ascending by time.
	FetchDailyBars(symbol string, count int) ([]model.Bar, error)
	// FetchLastPrice returns the last traded price and its update time.
	FetchLastPrice(symbol string) (model.Quote, error)
	// FetchOpenOrders returns the venue's current orders for the symbol,
	// in any status.
	FetchOpenOrders(symbol string) ([]model.OpenOrder, error)
	// FetchPosition returns the current holding. A flat book is a zero
	// Position, not an error.
	FetchPosition(symbol string) (model.Position, error)
	// FetchAccountEquity returns total account equity. Best-effort: an
	// error here must not halt a cycle.
	FetchAccountEquity() (float64, error)
	// GetLotSize returns the venue's minimum tradable quantity increment.
	GetLotSize(symbol string) (int64, error)
	// PlaceOrder submits a limit order and returns the assigned order id.
	PlaceOrder(side model.Side, symbol string, quantity int64, price float64) (string, error)
	// CancelOrder withdraws a resting order.
	CancelOrder(orderID string) error
	Name() string
}
