package handlers

import (
	"strconv"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"match-engine/src/engine"
	"match-engine/src/models"
)

var validate = validator.New()

// OrderHandler adapts the engine's OrderBook to the HTTP surface. It also
// keeps running counters - OrdersReceived, OrdersCancelled, TradesExecuted
// - that /metrics reports.
type OrderHandler struct {
	Book            *engine.OrderBook
	TradeFeed       *TradeFeed
	BookFeed        *BookFeed
	StartTime       time.Time
	MaxDepth        int
	OrdersReceived  int64
	OrdersCancelled int64
	TradesExecuted  int64
}

func NewOrderHandler(book *engine.OrderBook, tradeFeed *TradeFeed, bookFeed *BookFeed, maxDepth int) *OrderHandler {
	if maxDepth <= 0 {
		maxDepth = 1000
	}
	return &OrderHandler{
		Book:      book,
		TradeFeed: tradeFeed,
		BookFeed:  bookFeed,
		StartTime: time.Now(),
		MaxDepth:  maxDepth,
	}
}

func (h *OrderHandler) SubmitOrder(c *fiber.Ctx) error {
	var req models.SubmitOrderRequest

	if err := c.BodyParser(&req); err != nil {
		log.Warn().Err(err).Str("ip", c.IP()).Msg("invalid request: malformed JSON")
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Error: "invalid request: malformed JSON"})
	}

	if err := validate.Struct(&req); err != nil {
		log.Warn().Err(err).Str("ip", c.IP()).Msg("invalid order request")
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Error: err.Error()})
	}

	side := engine.Buy
	if req.Side == "SELL" {
		side = engine.Sell
	}

	var orderType engine.OrderType
	switch req.Type {
	case "GOOD_TILL_CANCEL":
		orderType = engine.GoodTillCancel
	case "FILL_AND_KILL":
		orderType = engine.FillAndKill
	case "MARKET":
		orderType = engine.Market
	case "GOOD_FOR_DAY":
		orderType = engine.GoodForDay
	}

	var order *engine.Order
	if orderType == engine.Market {
		order = engine.NewMarketOrder(engine.OrderID(req.OrderID), side, engine.Quantity(req.Quantity))
	} else {
		order = engine.NewOrder(orderType, engine.OrderID(req.OrderID), side, engine.Price(req.Price), engine.Quantity(req.Quantity))
	}

	log.Info().
		Uint64("order_id", req.OrderID).
		Str("side", req.Side).
		Str("type", req.Type).
		Int64("price", req.Price).
		Uint64("quantity", req.Quantity).
		Str("ip", c.IP()).
		Msg("order submitted")

	atomic.AddInt64(&h.OrdersReceived, 1)

	trades, err := h.Book.AddOrder(order)
	if err != nil {
		if dup, ok := err.(*engine.DuplicateOrderError); ok {
			return c.Status(fiber.StatusConflict).JSON(models.ErrorResponse{Error: dup.Error()})
		}
		log.Error().Err(err).Uint64("order_id", req.OrderID).Msg("error matching order")
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "internal server error"})
	}

	h.publish(trades)
	atomic.AddInt64(&h.TradesExecuted, int64(len(trades)))

	var remaining uint64
	if e, ok := h.lookup(req.OrderID); ok {
		remaining = uint64(e.RemainingQuantity())
	}

	response := models.SubmitOrderResponse{
		OrderID:           req.OrderID,
		RemainingQuantity: remaining,
		Trades:            toTradeInfos(trades),
	}

	log.Info().
		Uint64("order_id", req.OrderID).
		Uint64("remaining_quantity", remaining).
		Int("trades_count", len(trades)).
		Msg("order processed")

	return c.Status(fiber.StatusOK).JSON(response)
}

func (h *OrderHandler) ModifyOrder(c *fiber.Ctx) error {
	idStr := c.Params("id")
	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Error: "invalid order id"})
	}

	var req models.ModifyOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Error: "invalid request: malformed JSON"})
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Error: err.Error()})
	}

	side := engine.Buy
	if req.Side == "SELL" {
		side = engine.Sell
	}

	trades, err := h.Book.ModifyOrder(engine.OrderModify{
		OrderID:  engine.OrderID(id),
		Side:     side,
		Price:    engine.Price(req.Price),
		Quantity: engine.Quantity(req.Quantity),
	})
	if err != nil {
		log.Error().Err(err).Uint64("order_id", id).Msg("error modifying order")
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "internal server error"})
	}

	h.publish(trades)
	atomic.AddInt64(&h.TradesExecuted, int64(len(trades)))

	remaining := uint64(0)
	if e, ok := h.lookup(id); ok {
		remaining = uint64(e.RemainingQuantity())
	}

	return c.Status(fiber.StatusOK).JSON(models.SubmitOrderResponse{
		OrderID:           id,
		RemainingQuantity: remaining,
		Trades:            toTradeInfos(trades),
	})
}

func (h *OrderHandler) CancelOrder(c *fiber.Ctx) error {
	idStr := c.Params("id")
	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Error: "invalid order id"})
	}

	h.Book.CancelOrder(engine.OrderID(id))
	atomic.AddInt64(&h.OrdersCancelled, 1)
	h.publish(nil)

	log.Info().Uint64("order_id", id).Str("ip", c.IP()).Msg("order cancelled")

	return c.Status(fiber.StatusOK).JSON(models.CancelOrderResponse{OrderID: id})
}

func (h *OrderHandler) GetOrderBook(c *fiber.Ctx) error {
	depthStr := c.Query("depth", "10")
	depth, err := strconv.Atoi(depthStr)
	if err != nil || depth <= 0 {
		depth = 10
	}
	if depth > h.MaxDepth {
		depth = h.MaxDepth
	}

	infos := h.Book.GetOrderInfos()

	bids := infos.Bids
	if len(bids) > depth {
		bids = bids[:depth]
	}
	asks := infos.Asks
	if len(asks) > depth {
		asks = asks[:depth]
	}

	return c.Status(fiber.StatusOK).JSON(models.OrderBookResponse{
		TimestampUTC: time.Now().UnixMilli(),
		Bids:         toLevelInfos(bids),
		Asks:         toLevelInfos(asks),
	})
}

func (h *OrderHandler) GetOrderStatus(c *fiber.Ctx) error {
	idStr := c.Params("id")
	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Error: "invalid order id"})
	}

	order, ok := h.Book.FindOrder(engine.OrderID(id))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse{Error: "order not found"})
	}

	return c.Status(fiber.StatusOK).JSON(models.OrderStatusResponse{
		OrderID:           id,
		Side:              order.Side().String(),
		Type:              order.Type().String(),
		Price:             int64(order.Price()),
		InitialQuantity:   uint64(order.InitialQuantity()),
		RemainingQuantity: uint64(order.RemainingQuantity()),
	})
}

func (h *OrderHandler) HealthCheck(c *fiber.Ctx) error {
	uptime := time.Since(h.StartTime).Seconds()
	return c.Status(fiber.StatusOK).JSON(models.HealthResponse{
		Status:        "healthy",
		UptimeSeconds: int64(uptime),
		RestingOrders: h.Book.Size(),
	})
}

func (h *OrderHandler) Metrics(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(models.MetricsResponse{
		OrdersReceived:  atomic.LoadInt64(&h.OrdersReceived),
		OrdersCancelled: atomic.LoadInt64(&h.OrdersCancelled),
		TradesExecuted:  atomic.LoadInt64(&h.TradesExecuted),
		OrdersInBook:    h.Book.Size(),
	})
}

// lookup reports whether id still rests in the book, and returns the
// resting order if so.
func (h *OrderHandler) lookup(id uint64) (*engine.Order, bool) {
	return h.Book.FindOrder(engine.OrderID(id))
}

func (h *OrderHandler) publish(trades []engine.Trade) {
	if h.TradeFeed != nil && len(trades) > 0 {
		h.TradeFeed.Publish(trades)
	}
	if h.BookFeed != nil {
		h.BookFeed.Publish(h.Book.GetOrderInfos(), time.Now().UnixMilli())
	}
}

func toTradeInfos(trades []engine.Trade) []models.TradeInfo {
	out := make([]models.TradeInfo, 0, len(trades))
	for _, t := range trades {
		out = append(out, models.TradeInfo{
			TradeID:      t.ID,
			BidOrderID:   uint64(t.Bid.OrderID),
			AskOrderID:   uint64(t.Ask.OrderID),
			Price:        int64(t.Bid.Price),
			Quantity:     uint64(t.Bid.Quantity),
			TimestampUTC: t.Timestamp.UnixMilli(),
		})
	}
	return out
}

func toLevelInfos(levels []engine.LevelInfo) []models.PriceLevelInfo {
	out := make([]models.PriceLevelInfo, 0, len(levels))
	for _, lv := range levels {
		out = append(out, models.PriceLevelInfo{Price: int64(lv.Price), Quantity: uint64(lv.Quantity)})
	}
	return out
}
