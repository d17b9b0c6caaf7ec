package engine

import "github.com/google/btree"

// bidItem and askItem give the two sides of the book their own btree.Item
// comparator over the same *level payload: bids sort price-descending,
// asks sort price-ascending.
type bidItem struct{ lvl *level }

func (a bidItem) Less(than btree.Item) bool {
	return a.lvl.price > than.(bidItem).lvl.price
}

type askItem struct{ lvl *level }

func (a askItem) Less(than btree.Item) bool {
	return a.lvl.price < than.(askItem).lvl.price
}

// sideBook is a price-indexed FIFO-of-orders structure for one side of the
// book. Iteration via Ascend always visits prices in priority order
// (best first), regardless of which side it is, because the comparator
// already encodes the side's sort direction.
type sideBook struct {
	tree      *btree.BTree
	side      Side
	wrap      func(*level) btree.Item
	unwrap    func(btree.Item) *level
}

func newSideBook(side Side) *sideBook {
	sb := &sideBook{tree: btree.New(32), side: side}
	if side == Buy {
		sb.wrap = func(lv *level) btree.Item { return bidItem{lvl: lv} }
		sb.unwrap = func(it btree.Item) *level { return it.(bidItem).lvl }
	} else {
		sb.wrap = func(lv *level) btree.Item { return askItem{lvl: lv} }
		sb.unwrap = func(it btree.Item) *level { return it.(askItem).lvl }
	}
	return sb
}

func (sb *sideBook) probe(price Price) btree.Item {
	return sb.wrap(&level{price: price})
}

// getOrCreate returns the level for price, creating and inserting an empty
// one if it did not already exist.
func (sb *sideBook) getOrCreate(price Price) *level {
	if existing := sb.tree.Get(sb.probe(price)); existing != nil {
		return sb.unwrap(existing)
	}
	lv := newLevel(price)
	sb.tree.ReplaceOrInsert(sb.wrap(lv))
	return lv
}

// removeLevel drops price's level entirely. Called once its queue is empty
// - non-empty levels are never retained, but they are also never removed
// while they still hold orders.
func (sb *sideBook) removeLevel(price Price) {
	sb.tree.Delete(sb.probe(price))
}

// best returns the level at the best price for this side, or nil if the
// side is empty.
func (sb *sideBook) best() *level {
	item := sb.tree.Min()
	if item == nil {
		return nil
	}
	return sb.unwrap(item)
}

// worst returns the level at the worst price for this side, or nil if the
// side is empty.
func (sb *sideBook) worst() *level {
	item := sb.tree.Max()
	if item == nil {
		return nil
	}
	return sb.unwrap(item)
}

// ascend visits levels in priority order (best to worst) until fn returns
// false.
func (sb *sideBook) ascend(fn func(lv *level) bool) {
	sb.tree.Ascend(func(item btree.Item) bool {
		return fn(sb.unwrap(item))
	})
}
