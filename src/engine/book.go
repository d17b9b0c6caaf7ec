package engine

import (
	"container/list"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// orderEntry is the order index's payload: the order itself plus the
// handle needed to remove it from its level in O(1), and the level it
// currently rests in (so CancelOrder never has to search a side book for
// it).
type orderEntry struct {
	order  *Order
	lvl    *level
	handle *list.Element
}

// Config controls engine construction. SessionCloseLocal is the local
// wall-clock time of day at which the GFD pruner fires; GFDEnabled toggles
// whether the pruner runs at all.
type Config struct {
	SessionCloseLocal time.Time // only Hour/Minute/Second are significant
	GFDEnabled        bool
	Logger            zerolog.Logger
}

// DefaultConfig sets session close at 16:00 local with GFD pruning
// enabled.
func DefaultConfig() Config {
	return Config{
		SessionCloseLocal: time.Date(0, 1, 1, 16, 0, 0, 0, time.Local),
		GFDEnabled:        true,
		Logger:            log.Logger,
	}
}

// OrderBook is a single-instrument, in-memory, price-time priority limit
// order book. A single mutex protects its bids, asks, and order index; the
// GFD pruner acquires the same mutex for its batch-cancel phase, so there
// is never more than one lock in play.
type OrderBook struct {
	mu     sync.Mutex
	bids   *sideBook
	asks   *sideBook
	orders map[OrderID]*orderEntry
	logger zerolog.Logger
	pruner *gfdPruner
	now    func() time.Time
}

// NewOrderBook constructs an empty book and, unless cfg.GFDEnabled is
// false, starts its Good-For-Day pruner.
func NewOrderBook(cfg Config) *OrderBook {
	ob := &OrderBook{
		bids:   newSideBook(Buy),
		asks:   newSideBook(Sell),
		orders: make(map[OrderID]*orderEntry),
		logger: cfg.Logger,
		now:    time.Now,
	}
	if cfg.GFDEnabled {
		ob.pruner = newGFDPruner(ob, cfg.SessionCloseLocal, ob.now)
		ob.pruner.start()
	}
	return ob
}

// Close signals the GFD pruner to stop and waits for it to exit. Safe to
// call on a book constructed with GFDEnabled: false (no-op).
func (ob *OrderBook) Close() {
	if ob.pruner != nil {
		ob.pruner.stop()
	}
}

// Size returns the number of resting orders.
func (ob *OrderBook) Size() int {
	ob.mu.Lock()
	defer ob.mu.Unlock()
	return len(ob.orders)
}

// FindOrder returns the resting order for id, if any. The returned pointer
// must not be mutated by the caller; it is a live reference into the book.
func (ob *OrderBook) FindOrder(id OrderID) (*Order, bool) {
	ob.mu.Lock()
	defer ob.mu.Unlock()
	entry, ok := ob.orders[id]
	if !ok {
		return nil, false
	}
	return entry.order, true
}

// canMatch reports whether an order of the given side and price would cross
// the opposite book's best price. Used to decide FillAndKill admissibility.
// Must be called with ob.mu held.
func (ob *OrderBook) canMatch(side Side, price Price) bool {
	if side == Buy {
		best := ob.asks.best()
		if best == nil {
			return false
		}
		return price >= best.price
	}
	best := ob.bids.best()
	if best == nil {
		return false
	}
	return price <= best.price
}

// AddOrder admits order into the book and runs the matching loop. A
// duplicate id is rejected outright; a non-crossing FillAndKill is
// dropped before it ever rests; a Market order is converted to
// GoodTillCancel at the worst opposite-side price (or dropped if that
// side is empty) before insertion.
func (ob *OrderBook) AddOrder(order *Order) ([]Trade, error) {
	ob.mu.Lock()
	defer ob.mu.Unlock()
	return ob.addOrderLocked(order)
}

func (ob *OrderBook) addOrderLocked(order *Order) ([]Trade, error) {
	if _, exists := ob.orders[order.ID()]; exists {
		ob.logger.Warn().
			Uint64("order_id", uint64(order.ID())).
			Msg("rejecting duplicate order")
		return nil, &DuplicateOrderError{OrderID: order.ID()}
	}

	if order.Type() == FillAndKill && !ob.canMatch(order.Side(), order.Price()) {
		return nil, nil
	}

	if order.Type() == Market {
		var worst *Price
		if order.Side() == Buy {
			worst = ob.worstPrice(ob.asks)
		} else {
			worst = ob.worstPrice(ob.bids)
		}
		if worst == nil {
			return nil, nil // dropped: no resting liquidity to walk
		}
		if err := order.ToGoodTillCancel(*worst); err != nil {
			return nil, err
		}
	}

	ob.insert(order)

	return ob.matchOrders()
}

// worstPrice returns the worst resting price on sb, or nil if sb is empty.
// Used for Market order conversion: walking from the worst opposite price
// guarantees the incoming order sweeps the entire book.
func (ob *OrderBook) worstPrice(sb *sideBook) *Price {
	lv := sb.worst()
	if lv == nil {
		return nil
	}
	price := lv.price
	return &price
}

func (ob *OrderBook) insert(order *Order) {
	sb := ob.sideBookFor(order.Side())
	lv := sb.getOrCreate(order.Price())
	handle := lv.append(order)
	ob.orders[order.ID()] = &orderEntry{order: order, lvl: lv, handle: handle}
}

func (ob *OrderBook) sideBookFor(side Side) *sideBook {
	if side == Buy {
		return ob.bids
	}
	return ob.asks
}

// CancelOrder removes order_id from the book if it rests there. It is a
// silent no-op if the id is unknown - the caller may legitimately race
// with an auto-fill or a GFD prune.
func (ob *OrderBook) CancelOrder(orderID OrderID) {
	ob.mu.Lock()
	defer ob.mu.Unlock()
	ob.cancelOrderLocked(orderID)
}

func (ob *OrderBook) cancelOrderLocked(orderID OrderID) {
	entry, exists := ob.orders[orderID]
	if !exists {
		return
	}
	delete(ob.orders, orderID)

	sb := ob.sideBookFor(entry.order.Side())
	entry.lvl.remove(entry.handle, entry.order.RemainingQuantity())
	if entry.lvl.empty() {
		sb.removeLevel(entry.lvl.price)
	}
}

// ModifyOrder implements §4.6: if order_id is resting, it is cancelled and
// a fresh order with the same id, the existing type, and the new
// (side, price, quantity) is resubmitted. This intentionally loses time
// priority - it is the whole point of the semantics.
func (ob *OrderBook) ModifyOrder(mod OrderModify) ([]Trade, error) {
	ob.mu.Lock()
	defer ob.mu.Unlock()

	entry, exists := ob.orders[mod.OrderID]
	if !exists {
		return nil, nil
	}

	existingType := entry.order.Type()
	ob.cancelOrderLocked(mod.OrderID)

	fresh := NewOrder(existingType, mod.OrderID, mod.Side, mod.Price, mod.Quantity)
	return ob.addOrderLocked(fresh)
}

// GetOrderInfos produces a value-copy depth snapshot: bids descending,
// asks ascending, aggregated quantity per level.
func (ob *OrderBook) GetOrderInfos() OrderBookLevelInfos {
	ob.mu.Lock()
	defer ob.mu.Unlock()

	infos := OrderBookLevelInfos{
		Bids: make([]LevelInfo, 0, ob.bids.tree.Len()),
		Asks: make([]LevelInfo, 0, ob.asks.tree.Len()),
	}
	ob.bids.ascend(func(lv *level) bool {
		infos.Bids = append(infos.Bids, LevelInfo{Price: lv.price, Quantity: lv.totalQuantity})
		return true
	})
	ob.asks.ascend(func(lv *level) bool {
		infos.Asks = append(infos.Asks, LevelInfo{Price: lv.price, Quantity: lv.totalQuantity})
		return true
	})
	return infos
}

// matchOrders is the core price-time matching loop (§4.5). Must be called
// with ob.mu held.
func (ob *OrderBook) matchOrders() ([]Trade, error) {
	var trades []Trade

	for {
		bidLevel := ob.bids.best()
		askLevel := ob.asks.best()
		if bidLevel == nil || askLevel == nil {
			break
		}
		if bidLevel.price < askLevel.price {
			break
		}

		for !bidLevel.empty() && !askLevel.empty() {
			bid := bidLevel.front()
			ask := askLevel.front()

			quantity := bid.RemainingQuantity()
			if ask.RemainingQuantity() < quantity {
				quantity = ask.RemainingQuantity()
			}

			if err := bid.Fill(quantity); err != nil {
				return trades, err
			}
			if err := ask.Fill(quantity); err != nil {
				return trades, err
			}
			bidLevel.accountFill(quantity)
			askLevel.accountFill(quantity)

			if bid.IsFilled() {
				ob.popFilled(bidLevel, bid)
			}
			if ask.IsFilled() {
				ob.popFilled(askLevel, ask)
			}

			if bidLevel.empty() {
				ob.bids.removeLevel(bidLevel.price)
			}
			if askLevel.empty() {
				ob.asks.removeLevel(askLevel.price)
			}

			trades = append(trades, Trade{
				ID:        uuid.New().String(),
				Bid:       TradeLeg{OrderID: bid.ID(), Price: bid.Price(), Quantity: quantity},
				Ask:       TradeLeg{OrderID: ask.ID(), Price: ask.Price(), Quantity: quantity},
				Timestamp: ob.now(),
			})
		}
	}

	ob.sweepFillAndKill(ob.bids)
	ob.sweepFillAndKill(ob.asks)

	return trades, nil
}

// popFilled removes a fully-filled order (already accounted for in lvl's
// aggregate via accountFill) from both its queue and the order index.
func (ob *OrderBook) popFilled(lvl *level, order *Order) {
	entry, ok := ob.orders[order.ID()]
	if !ok {
		return
	}
	lvl.orders.Remove(entry.handle)
	delete(ob.orders, order.ID())
}

// sweepFillAndKill cancels a FillAndKill order that is sitting at the new
// top of sb after matching but was not fully filled. This enforces FaK
// semantics against residual depth left at a non-crossing price.
func (ob *OrderBook) sweepFillAndKill(sb *sideBook) {
	top := sb.best()
	if top == nil || top.empty() {
		return
	}
	front := top.front()
	if front.Type() == FillAndKill && !front.IsFilled() {
		ob.cancelOrderLocked(front.ID())
	}
}
