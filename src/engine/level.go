package engine

import "container/list"

// level is the FIFO of live orders resting at a single price on one side.
// It is backed by container/list so that removal given a previously
// returned handle (a *list.Element) is O(1), same as the std::list the
// original C++ book used for exactly this reason. totalQuantity is kept
// incrementally rather than re-summed on every snapshot.
type level struct {
	price         Price
	orders        *list.List // of *Order
	totalQuantity Quantity
}

func newLevel(price Price) *level {
	return &level{price: price, orders: list.New()}
}

// append adds an order to the tail of the queue (time priority = admission
// order) and returns the handle used to remove it later in O(1).
func (lv *level) append(o *Order) *list.Element {
	lv.totalQuantity += o.RemainingQuantity()
	return lv.orders.PushBack(o)
}

// remove drops the order referenced by handle from the queue. The caller
// must pass the order's remaining quantity as observed before the removal
// reason (fill or cancel) so the running aggregate stays correct.
func (lv *level) remove(handle *list.Element, removedQuantity Quantity) {
	lv.orders.Remove(handle)
	lv.totalQuantity -= removedQuantity
}

// front returns the oldest resting order, or nil if the level is empty.
func (lv *level) front() *Order {
	if lv.orders.Len() == 0 {
		return nil
	}
	return lv.orders.Front().Value.(*Order)
}

func (lv *level) empty() bool { return lv.orders.Len() == 0 }

// accountFill adjusts the running aggregate after a Fill() on one of this
// level's orders without removing it from the queue.
func (lv *level) accountFill(q Quantity) {
	lv.totalQuantity -= q
}
