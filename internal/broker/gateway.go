package broker

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/google/uuid"

	"LadderPilot/internal/model"
)

// GatewayClient implements Client against the local trading-gateway sidecar
// that fronts the broker's OpenD process over REST.
type GatewayClient struct {
	BaseURL string
	Client  *http.Client
}

// NewGatewayClient creates a gateway client with optional proxy support.
func NewGatewayClient(host string, port int, timeout time.Duration, proxyURL string) *GatewayClient {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &GatewayClient{
		BaseURL: fmt.Sprintf("http://%s:%d", host, port),
		Client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

func (g *GatewayClient) Name() string { return "gateway" }

// gwBar is the expected JSON shape of one kline bar from the gateway.
type gwBar struct {
	Timestamp int64   `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
}

func (g *GatewayClient) FetchDailyBars(symbol string, count int) ([]model.Bar, error) {
	endpoint := fmt.Sprintf("%s/api/v1/kline?code=%s&count=%d", g.BaseURL, url.QueryEscape(symbol), count)
	var gwBars []gwBar
	if err := g.getJSON(endpoint, &gwBars); err != nil {
		return nil, fmt.Errorf("fetch bars: %w", err)
	}
	bars := make([]model.Bar, len(gwBars))
	for i, b := range gwBars {
		bars[i] = model.Bar{
			Time:  time.Unix(b.Timestamp, 0),
			Open:  b.Open,
			High:  b.High,
			Low:   b.Low,
			Close: b.Close,
		}
	}
	// Ensure chronological order
	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return bars, nil
}

func (g *GatewayClient) FetchLastPrice(symbol string) (model.Quote, error) {
	endpoint := fmt.Sprintf("%s/api/v1/snapshot?code=%s", g.BaseURL, url.QueryEscape(symbol))
	var result struct {
		LastPrice  float64 `json:"last_price"`
		UpdateTime int64   `json:"update_time"`
	}
	if err := g.getJSON(endpoint, &result); err != nil {
		return model.Quote{}, fmt.Errorf("fetch last price: %w", err)
	}
	return model.Quote{Price: result.LastPrice, UpdateTime: time.Unix(result.UpdateTime, 0)}, nil
}

// gwOrder is the gateway's view of one order.
type gwOrder struct {
	OrderID string  `json:"order_id"`
	TrdSide string  `json:"trd_side"`
	Price   float64 `json:"price"`
	Qty     int64   `json:"qty"`
	Status  string  `json:"order_status"`
}

func (g *GatewayClient) FetchOpenOrders(symbol string) ([]model.OpenOrder, error) {
	endpoint := fmt.Sprintf("%s/api/v1/orders?code=%s", g.BaseURL, url.QueryEscape(symbol))
	var gwOrders []gwOrder
	if err := g.getJSON(endpoint, &gwOrders); err != nil {
		return nil, fmt.Errorf("fetch open orders: %w", err)
	}
	orders := make([]model.OpenOrder, len(gwOrders))
	for i, o := range gwOrders {
		orders[i] = model.OpenOrder{
			ID:       o.OrderID,
			Side:     model.Side(o.TrdSide),
			Price:    o.Price,
			Quantity: o.Qty,
			Status:   model.OrderStatus(o.Status),
		}
	}
	return orders, nil
}

func (g *GatewayClient) FetchPosition(symbol string) (model.Position, error) {
	endpoint := fmt.Sprintf("%s/api/v1/positions?code=%s", g.BaseURL, url.QueryEscape(symbol))
	var rows []struct {
		Qty       int64    `json:"qty"`
		CostPrice *float64 `json:"cost_price"`
	}
	if err := g.getJSON(endpoint, &rows); err != nil {
		return model.Position{}, fmt.Errorf("fetch position: %w", err)
	}
	if len(rows) == 0 {
		return model.Position{}, nil
	}
	return model.Position{Quantity: rows[0].Qty, AvgCost: rows[0].CostPrice}, nil
}

func (g *GatewayClient) FetchAccountEquity() (float64, error) {
	endpoint := g.BaseURL + "/api/v1/account"
	var result struct {
		TotalAssets float64 `json:"total_assets"`
	}
	if err := g.getJSON(endpoint, &result); err != nil {
		return 0, fmt.Errorf("fetch account equity: %w", err)
	}
	return result.TotalAssets, nil
}

func (g *GatewayClient) GetLotSize(symbol string) (int64, error) {
	endpoint := fmt.Sprintf("%s/api/v1/lot?code=%s", g.BaseURL, url.QueryEscape(symbol))
	var result struct {
		LotSize int64 `json:"lot_size"`
	}
	if err := g.getJSON(endpoint, &result); err != nil {
		return 0, fmt.Errorf("get lot size: %w", err)
	}
	if result.LotSize <= 0 {
		return 0, fmt.Errorf("get lot size: gateway returned %d", result.LotSize)
	}
	return result.LotSize, nil
}

func (g *GatewayClient) PlaceOrder(side model.Side, symbol string, quantity int64, price float64) (string, error) {
	payload := map[string]interface{}{
		"code":       symbol,
		"trd_side":   string(side),
		"qty":        quantity,
		"price":      price,
		"client_ref": uuid.NewString(),
	}
	var result struct {
		OrderID string `json:"order_id"`
	}
	if err := g.postJSON(g.BaseURL+"/api/v1/order", payload, &result); err != nil {
		return "", fmt.Errorf("place order: %w", err)
	}
	return result.OrderID, nil
}

func (g *GatewayClient) CancelOrder(orderID string) error {
	payload := map[string]interface{}{"order_id": orderID}
	if err := g.postJSON(g.BaseURL+"/api/v1/order/cancel", payload, nil); err != nil {
		return fmt.Errorf("cancel order: %w", err)
	}
	return nil
}

func (g *GatewayClient) getJSON(endpoint string, out interface{}) error {
	req, err := http.NewRequest("GET", endpoint, nil)
	if err != nil {
		return err
	}
	resp, err := g.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("status %d, body: %s", resp.StatusCode, string(body))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (g *GatewayClient) postJSON(endpoint string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	resp, err := g.Client.Post(endpoint, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("status %d, body: %s", resp.StatusCode, string(respBody))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
