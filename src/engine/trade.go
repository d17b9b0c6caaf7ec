package engine

import "time"

// TradeLeg is one side of a Trade as observed by the resting order that
// supplied it.
type TradeLeg struct {
	OrderID  OrderID
	Price    Price
	Quantity Quantity
}

// Trade is the immutable record of one match between a resting bid and a
// resting ask. Both legs always carry the same quantity. Each leg carries
// its own order's price, so the two differ when the bid crosses the ask at
// a better price (a buy at 105 matched against an ask at 100 gives legs of
// 105 and 100; see matchOrders in book.go).
type Trade struct {
	ID        string
	Bid       TradeLeg
	Ask       TradeLeg
	Timestamp time.Time
}

// OrderModify carries the fields a caller wants changed on a resting order.
// ModifyOrder implements this as cancel-then-add, so Side/Price/Quantity can
// all change; the order's type and id cannot.
type OrderModify struct {
	OrderID  OrderID
	Side     Side
	Price    Price
	Quantity Quantity
}

// LevelInfo is one aggregated (price, quantity) row of a depth snapshot.
type LevelInfo struct {
	Price    Price
	Quantity Quantity
}

// OrderBookLevelInfos is a value-copy depth snapshot: bids descending by
// price, asks ascending. No live references into the engine escape through
// it.
type OrderBookLevelInfos struct {
	Bids []LevelInfo
	Asks []LevelInfo
}
