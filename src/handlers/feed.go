package handlers

import (
	"net/http"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"match-engine/src/engine"
	"match-engine/src/models"
)

// subscription is one live websocket client's mailbox. A slow or dead
// client never blocks the engine: its channel is buffered and a full
// buffer just drops the update.
type subscription[T any] struct {
	ch chan T
}

// hub fans a value out to every currently subscribed client.
type hub[T any] struct {
	mu   sync.RWMutex
	subs map[*subscription[T]]struct{}
}

func newHub[T any]() *hub[T] {
	return &hub[T]{subs: make(map[*subscription[T]]struct{})}
}

func (h *hub[T]) subscribe(buffer int) *subscription[T] {
	sub := &subscription[T]{ch: make(chan T, buffer)}
	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()
	return sub
}

func (h *hub[T]) unsubscribe(sub *subscription[T]) {
	h.mu.Lock()
	delete(h.subs, sub)
	h.mu.Unlock()
	close(sub.ch)
}

func (h *hub[T]) broadcast(value T) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subs {
		select {
		case sub.ch <- value:
		default:
		}
	}
}

// TradeFeed pushes every executed trade to subscribed /ws/trades clients.
type TradeFeed struct{ hub *hub[models.TradeInfo] }

func NewTradeFeed() *TradeFeed {
	return &TradeFeed{hub: newHub[models.TradeInfo]()}
}

// Publish broadcasts trades to every current subscriber.
func (f *TradeFeed) Publish(trades []engine.Trade) {
	for _, info := range toTradeInfos(trades) {
		f.hub.broadcast(info)
	}
}

// BookFeed pushes a depth snapshot to subscribed /ws/book clients whenever
// the book may have changed.
type BookFeed struct{ hub *hub[models.OrderBookResponse] }

func NewBookFeed() *BookFeed {
	return &BookFeed{hub: newHub[models.OrderBookResponse]()}
}

func (f *BookFeed) Publish(infos engine.OrderBookLevelInfos, timestampMs int64) {
	f.hub.broadcast(models.OrderBookResponse{
		TimestampUTC: timestampMs,
		Bids:         toLevelInfos(infos.Bids),
		Asks:         toLevelInfos(infos.Asks),
	})
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

// StreamTrades upgrades to a websocket connection and pushes every trade
// executed from this point on until the client disconnects.
func (h *OrderHandler) StreamTrades() fiber.Handler {
	return adaptor.HTTPHandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warn().Err(err).Msg("websocket upgrade failed")
			return
		}
		defer conn.Close()

		sub := h.TradeFeed.hub.subscribe(32)
		defer h.TradeFeed.hub.unsubscribe(sub)

		for trade := range sub.ch {
			if err := conn.WriteJSON(trade); err != nil {
				return
			}
		}
	})
}

// StreamBook upgrades to a websocket connection and pushes a depth snapshot
// after every book-mutating request until the client disconnects.
func (h *OrderHandler) StreamBook() fiber.Handler {
	return adaptor.HTTPHandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warn().Err(err).Msg("websocket upgrade failed")
			return
		}
		defer conn.Close()

		sub := h.BookFeed.hub.subscribe(32)
		defer h.BookFeed.hub.unsubscribe(sub)

		for view := range sub.ch {
			if err := conn.WriteJSON(view); err != nil {
				return
			}
		}
	})
}
