// Package models holds the HTTP-facing request/response DTOs. They are
// deliberately separate from engine types: OrderID here is a plain JSON
// number over the wire, order type/side are enum strings, and nothing in this
// package imports src/engine.
package models

// SubmitOrderRequest is the body of POST /api/v1/orders. Price is required
// for GoodTillCancel, FillAndKill, and GoodForDay and ignored for Market.
type SubmitOrderRequest struct {
	OrderID  uint64 `json:"order_id" validate:"required"`
	Side     string `json:"side" validate:"required,oneof=BUY SELL"`
	Type     string `json:"type" validate:"required,oneof=GOOD_TILL_CANCEL FILL_AND_KILL MARKET GOOD_FOR_DAY"`
	Price    int64  `json:"price" validate:"required_unless=Type MARKET"`
	Quantity uint64 `json:"quantity" validate:"required,gt=0"`
}

// ModifyOrderRequest is the body of PUT /api/v1/orders/:id.
type ModifyOrderRequest struct {
	Side     string `json:"side" validate:"required,oneof=BUY SELL"`
	Price    int64  `json:"price" validate:"required"`
	Quantity uint64 `json:"quantity" validate:"required,gt=0"`
}

type SubmitOrderResponse struct {
	OrderID           uint64      `json:"order_id"`
	RemainingQuantity uint64      `json:"remaining_quantity"`
	Trades            []TradeInfo `json:"trades,omitempty"`
}

type TradeInfo struct {
	TradeID      string `json:"trade_id"`
	BidOrderID   uint64 `json:"bid_order_id"`
	AskOrderID   uint64 `json:"ask_order_id"`
	Price        int64  `json:"price"`
	Quantity     uint64 `json:"quantity"`
	TimestampUTC int64  `json:"timestamp_ms"`
}

type CancelOrderResponse struct {
	OrderID uint64 `json:"order_id"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type OrderBookResponse struct {
	TimestampUTC int64            `json:"timestamp_ms"`
	Bids         []PriceLevelInfo `json:"bids"`
	Asks         []PriceLevelInfo `json:"asks"`
}

type PriceLevelInfo struct {
	Price    int64  `json:"price"`
	Quantity uint64 `json:"quantity"`
}

type OrderStatusResponse struct {
	OrderID           uint64 `json:"order_id"`
	Side              string `json:"side"`
	Type              string `json:"type"`
	Price             int64  `json:"price"`
	InitialQuantity   uint64 `json:"initial_quantity"`
	RemainingQuantity uint64 `json:"remaining_quantity"`
}

type HealthResponse struct {
	Status        string `json:"status"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	RestingOrders int    `json:"resting_orders"`
}

type MetricsResponse struct {
	OrdersReceived  int64 `json:"orders_received"`
	OrdersCancelled int64 `json:"orders_cancelled"`
	TradesExecuted  int64 `json:"trades_executed"`
	OrdersInBook    int   `json:"orders_in_book"`
}
