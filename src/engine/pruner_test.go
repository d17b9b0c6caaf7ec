package engine

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// fakeClock lets a test move time forward deterministically instead of
// sleeping past a real session close.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func TestGFDPrunerCancelsRestingOrdersAtSessionClose(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 15, 59, 0, 0, time.UTC)}

	ob := &OrderBook{
		bids:   newSideBook(Buy),
		asks:   newSideBook(Sell),
		orders: make(map[OrderID]*orderEntry),
		logger: zerolog.Nop(),
		now:    clock.now,
	}
	if _, err := ob.AddOrder(NewOrder(GoodForDay, 1, Buy, 100, 5)); err != nil {
		t.Fatal(err)
	}
	if _, err := ob.AddOrder(NewOrder(GoodTillCancel, 2, Buy, 99, 5)); err != nil {
		t.Fatal(err)
	}

	pruner := newGFDPruner(ob, time.Date(0, 1, 1, 16, 0, 0, 0, time.UTC), clock.now)
	pruner.prune()

	if _, ok := ob.FindOrder(1); ok {
		t.Fatal("expected GoodForDay order to be cancelled at session close")
	}
	if _, ok := ob.FindOrder(2); !ok {
		t.Fatal("expected GoodTillCancel order to survive session close")
	}
}

func TestUntilNextCloseRollsOverToTomorrow(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 16, 0, 1, 0, time.UTC)}
	pruner := newGFDPruner(nil, time.Date(0, 1, 1, 16, 0, 0, 0, time.UTC), clock.now)

	d := pruner.untilNextClose()
	if d <= 23*time.Hour {
		t.Fatalf("expected next close to roll over to tomorrow, got duration %s", d)
	}
}

func TestUntilNextCloseLaterTodayWhenNotYetPassed(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)}
	pruner := newGFDPruner(nil, time.Date(0, 1, 1, 16, 0, 0, 0, time.UTC), clock.now)

	d := pruner.untilNextClose()
	if d != 7*time.Hour {
		t.Fatalf("expected 7h until close, got %s", d)
	}
}
