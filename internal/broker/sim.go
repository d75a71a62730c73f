package broker

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"LadderPilot/internal/model"
)

// SimClient is an in-memory venue used when no gateway is configured and by
// tests. Orders rest in the book untouched; there is no fill simulation —
// the point is to exercise reconciliation, not execution.
type SimClient struct {
	mu sync.Mutex

	Price    float64
	Bars     []model.Bar
	Lot      int64
	Equity   float64
	Pos      model.Position
	Orders   []model.OpenOrder
	Placed   int
	Canceled int

	// RejectPlacements makes every PlaceOrder fail with a venue-style detail.
	RejectPlacements bool
	// EquityErr simulates an unavailable account endpoint.
	EquityErr error
	// BarsErr simulates a kline transport failure.
	BarsErr error
}

// NewSimClient creates a sim venue with generated history around basePrice.
func NewSimClient(basePrice float64, barCount int, lot int64) *SimClient {
	return &SimClient{
		Price:  basePrice,
		Bars:   GenerateBars(basePrice, barCount),
		Lot:    lot,
		Equity: 1000000,
	}
}

// GenerateBars returns count synthetic daily bars drifting around basePrice.
func GenerateBars(basePrice float64, count int) []model.Bar {
	bars := make([]model.Bar, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.Bar{
			Time:  time.Now().AddDate(0, 0, -(count - i)),
			Open:  p * 0.999,
			High:  p * 1.005,
			Low:   p * 0.995,
			Close: p,
		}
	}
	return bars
}

func (s *SimClient) Name() string { return "sim" }

func (s *SimClient) FetchDailyBars(_ string, count int) ([]model.Bar, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.BarsErr != nil {
		return nil, s.BarsErr
	}
	if len(s.Bars) > count {
		return s.Bars[len(s.Bars)-count:], nil
	}
	return s.Bars, nil
}

func (s *SimClient) FetchLastPrice(_ string) (model.Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.Quote{Price: s.Price, UpdateTime: time.Now()}, nil
}

func (s *SimClient) FetchOpenOrders(_ string) ([]model.OpenOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.OpenOrder, len(s.Orders))
	copy(out, s.Orders)
	return out, nil
}

func (s *SimClient) FetchPosition(_ string) (model.Position, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Pos, nil
}

func (s *SimClient) FetchAccountEquity() (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.EquityErr != nil {
		return 0, s.EquityErr
	}
	return s.Equity, nil
}

func (s *SimClient) GetLotSize(_ string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Lot <= 0 {
		return 0, errors.New("lot size unavailable")
	}
	return s.Lot, nil
}

func (s *SimClient) PlaceOrder(side model.Side, _ string, quantity int64, price float64) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.RejectPlacements {
		return "", errors.New("simulated venue rejection")
	}
	if quantity <= 0 {
		return "", errors.New("qty must be positive")
	}
	id := uuid.NewString()
	s.Orders = append(s.Orders, model.OpenOrder{
		ID:       id,
		Side:     side,
		Price:    price,
		Quantity: quantity,
		Status:   model.StatusSubmitted,
	})
	s.Placed++
	return id, nil
}

func (s *SimClient) CancelOrder(orderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.Orders {
		if s.Orders[i].ID == orderID {
			s.Orders[i].Status = model.StatusCancelled
			s.Canceled++
			return nil
		}
	}
	return errors.New("order not found")
}
