package model

// Side is the direction of an order.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// OrderStatus is the venue's lifecycle state of a resting order.
type OrderStatus string

const (
	StatusWaitingSubmit OrderStatus = "WAITING_SUBMIT"
	StatusSubmitting    OrderStatus = "SUBMITTING"
	StatusSubmitted     OrderStatus = "SUBMITTED"
	StatusPartFilled    OrderStatus = "SUBMITTED_PART"
	StatusSubmitFailed  OrderStatus = "SUBMIT_FAILED"
	StatusFilled        OrderStatus = "FILLED_ALL"
	StatusCancelled     OrderStatus = "CANCELLED_ALL"
)

// ActiveStatuses is the set of statuses that count toward duplicate detection.
// A submit-failed order still occupies its price slot until the venue drops it.
var ActiveStatuses = map[OrderStatus]bool{
	StatusWaitingSubmit: true,
	StatusSubmitting:    true,
	StatusSubmitted:     true,
	StatusPartFilled:    true,
	StatusSubmitFailed:  true,
}

// OpenOrder is the venue's read-only view of a resting order.
type OpenOrder struct {
	ID       string
	Side     Side
	Price    float64
	Quantity int64
	Status   OrderStatus
}

// IsActive reports whether the order counts as outstanding.
func (o OpenOrder) IsActive() bool { return ActiveStatuses[o.Status] }

// DesiredOrder is one order the strategy wants resting at the venue.
// Quantity is always a non-negative multiple of the lot size.
type DesiredOrder struct {
	Side     Side
	Quantity int64
	Price    float64
	Label    string
}

// Position is the venue's read-only view of the current holding.
// AvgCost is nil when the venue does not report a cost basis.
type Position struct {
	Quantity int64
	AvgCost  *float64
}
