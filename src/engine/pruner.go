package engine

import (
	"sync"
	"time"
)

// prunerState names where the Good-For-Day pruner is in its cycle, mostly
// useful for tests that want to assert it is not silently stuck.
type prunerState int32

const (
	prunerWaiting prunerState = iota
	prunerComputingBatch
	prunerCancelling
)

// gfdPruner cancels every resting GoodForDay order at each local session
// close. It shares the book's own mutex for the cancel phase rather than
// keeping a second lock, so there is never a lock-ordering question between
// the pruner and a caller racing it with AddOrder/CancelOrder.
type gfdPruner struct {
	ob    *OrderBook
	close time.Time // only Hour/Minute/Second read
	now   func() time.Time

	mu    sync.Mutex
	state prunerState

	stopCh chan struct{}
	wg     sync.WaitGroup
}

func newGFDPruner(ob *OrderBook, sessionCloseLocal time.Time, now func() time.Time) *gfdPruner {
	return &gfdPruner{
		ob:     ob,
		close:  sessionCloseLocal,
		now:    now,
		stopCh: make(chan struct{}),
	}
}

func (p *gfdPruner) start() {
	p.wg.Add(1)
	go p.run()
}

func (p *gfdPruner) stop() {
	close(p.stopCh)
	p.wg.Wait()
}

func (p *gfdPruner) setState(s prunerState) {
	p.mu.Lock()
	p.state = s
	p.mu.Unlock()
}

func (p *gfdPruner) run() {
	defer p.wg.Done()

	for {
		p.setState(prunerWaiting)

		timer := time.NewTimer(p.untilNextClose())
		select {
		case <-p.stopCh:
			timer.Stop()
			return
		case <-timer.C:
		}

		p.prune()
	}
}

// untilNextClose computes the duration from now until the next occurrence
// of the configured close-of-day, today if it has not yet passed, tomorrow
// otherwise.
func (p *gfdPruner) untilNextClose() time.Duration {
	now := p.now()
	next := time.Date(now.Year(), now.Month(), now.Day(),
		p.close.Hour(), p.close.Minute(), p.close.Second(), 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(now)
}

// prune collects every resting GoodForDay order id, then cancels the whole
// batch under a single lock acquisition on the book. Cancellation here is
// silent by design: no Trade is emitted for a GFD expiry, since no match
// occurred - callers watching the trade feed should not expect one.
func (p *gfdPruner) prune() {
	p.setState(prunerComputingBatch)

	p.ob.mu.Lock()
	ids := make([]OrderID, 0)
	for id, entry := range p.ob.orders {
		if entry.order.Type() == GoodForDay {
			ids = append(ids, id)
		}
	}
	p.ob.mu.Unlock()

	if len(ids) == 0 {
		return
	}

	p.setState(prunerCancelling)

	p.ob.mu.Lock()
	for _, id := range ids {
		p.ob.cancelOrderLocked(id)
	}
	p.ob.mu.Unlock()

	p.ob.logger.Info().Int("count", len(ids)).Msg("good-for-day session close: cancelled resting orders")
}
