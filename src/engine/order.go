package engine

// Order is mutable resting-order state. Every mutation happens under the
// OrderBook's single mutex, so Order carries no locking of its own - unlike
// a handler-driven design where orders can be touched from multiple
// goroutines at once, here the engine is the only writer.
type Order struct {
	id                OrderID
	side              Side
	orderType         OrderType
	price             Price
	initialQuantity   Quantity
	remainingQuantity Quantity
}

// NewOrder builds a GoodTillCancel, FillAndKill, or GoodForDay order. Market
// orders are built with NewMarketOrder, which carries no price until the
// engine converts one on admission.
func NewOrder(orderType OrderType, id OrderID, side Side, price Price, quantity Quantity) *Order {
	return &Order{
		id:                id,
		side:              side,
		orderType:         orderType,
		price:             price,
		initialQuantity:   quantity,
		remainingQuantity: quantity,
	}
}

// NewMarketOrder builds a Market order. Its price is the sentinel until
// ToGoodTillCancel assigns it the worst opposite-side price during
// admission.
func NewMarketOrder(id OrderID, side Side, quantity Quantity) *Order {
	return &Order{
		id:                id,
		side:              side,
		orderType:         Market,
		price:             invalidPrice,
		initialQuantity:   quantity,
		remainingQuantity: quantity,
	}
}

func (o *Order) ID() OrderID                 { return o.id }
func (o *Order) Side() Side                  { return o.side }
func (o *Order) Type() OrderType             { return o.orderType }
func (o *Order) Price() Price                { return o.price }
func (o *Order) InitialQuantity() Quantity   { return o.initialQuantity }
func (o *Order) RemainingQuantity() Quantity { return o.remainingQuantity }
func (o *Order) FilledQuantity() Quantity    { return o.initialQuantity - o.remainingQuantity }
func (o *Order) IsFilled() bool              { return o.remainingQuantity == 0 }

// Fill decrements remaining quantity by q. q must be strictly positive and
// no greater than the remaining quantity.
func (o *Order) Fill(q Quantity) error {
	if q == 0 || q > o.remainingQuantity {
		return &InvalidFillError{OrderID: o.id, Requested: q, Remaining: o.remainingQuantity}
	}
	o.remainingQuantity -= q
	return nil
}

// ToGoodTillCancel converts a Market order to GoodTillCancel at price p.
// Only valid while orderType is Market.
func (o *Order) ToGoodTillCancel(p Price) error {
	if o.orderType != Market {
		return &IllegalTransitionError{OrderID: o.id, OrderType: o.orderType}
	}
	o.price = p
	o.orderType = GoodTillCancel
	return nil
}
