package exchange

import (
	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"
)

const cancelQueueSize = 256

// Cancel removes a resting order by id. When the engine was built with
// AsyncCancel, the request is handed to the background worker and
// Cancel returns immediately once the request is enqueued; otherwise
// cancellation happens synchronously in bids, then asks, then pending
// stop orders.
func (e *Engine) Cancel(id string) bool {
	if e.cancelWorker != nil {
		return e.cancelWorker.enqueue(id)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cancelLocked(id)
}

func (e *Engine) cancelLocked(id string) bool {
	if e.bids.RemoveOrder(id) {
		return true
	}
	if e.asks.RemoveOrder(id) {
		return true
	}
	if e.pendingStops.remove(id) {
		return true
	}
	return false
}

// cancelWorker processes cancellation requests off a bounded channel on
// a tomb-supervised goroutine.
type cancelWorker struct {
	t        tomb.Tomb
	engine   *Engine
	requests chan string
}

func startCancelWorker(e *Engine) *cancelWorker {
	w := &cancelWorker{engine: e, requests: make(chan string, cancelQueueSize)}
	w.t.Go(w.run)
	return w
}

func (w *cancelWorker) run() error {
	log.Info().Msg("cancel worker starting")
	for {
		select {
		case <-w.t.Dying():
			return nil
		case id := <-w.requests:
			w.engine.mu.Lock()
			cancelled := w.engine.cancelLocked(id)
			w.engine.mu.Unlock()
			log.Debug().Str("order", id).Bool("cancelled", cancelled).Msg("async cancel processed")
		}
	}
}

func (w *cancelWorker) enqueue(id string) bool {
	select {
	case w.requests <- id:
		return true
	default:
		return false
	}
}

func (w *cancelWorker) stop(wait bool) {
	w.t.Kill(nil)
	if wait {
		_ = w.t.Wait()
	}
}
