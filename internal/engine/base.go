// Package engine implements the non-adaptive base engine (C4.4) and the
// regime-aware adaptive engine built on top of it (C5/C6).
package engine

import (
	"sync"

	"matchbook/internal/book"
	"matchbook/internal/common"
	"matchbook/internal/matching"
	"matchbook/internal/stats"
)

// Engine is the base, non-adaptive matching engine: a BookSide pair
// composed with the matching kernel. It implements the engine
// contract: Process, Cancel, Snapshot, Statistics.
type Engine struct {
	mu sync.Mutex

	Bids *book.BookSide
	Asks *book.BookSide

	tradeLog []*common.Trade
	orderLog []*common.Order
}

// New builds an empty base engine.
func New() *Engine {
	return &Engine{
		Bids: book.NewBookSide(common.Buy),
		Asks: book.NewBookSide(common.Sell),
	}
}

// Process admits an order, matches it against the opposite side, rests
// any residual per its order-type policy, and returns the trades
// generated (possibly empty). It never returns an error: admission
// rejections here are limited to FOK insufficiency, which is a normal
// empty-result outcome, not an exception.
func (e *Engine) Process(o *common.Order) []*common.Trade {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.process(o)
}

func (e *Engine) process(o *common.Order) []*common.Trade {
	e.orderLog = append(e.orderLog, o)

	own, opposite := e.sidesFor(o.Side)

	if o.Type == common.FOK {
		if matching.Available(o, opposite) < o.Remaining() {
			return nil
		}
	}

	trades := matching.Against(o, opposite)

	if o.Remaining() > 0 && (o.Type == common.Limit || o.Type == common.Iceberg) {
		own.AddOrder(o)
	}

	e.tradeLog = append(e.tradeLog, trades...)
	return trades
}

func (e *Engine) sidesFor(side common.Side) (own, opposite *book.BookSide) {
	if side == common.Buy {
		return e.Bids, e.Asks
	}
	return e.Asks, e.Bids
}

// Cancel probes both sides for order id and removes it if found. It
// returns false — never an error — when the id is unknown.
func (e *Engine) Cancel(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.Bids.RemoveOrder(id) {
		return true
	}
	return e.Asks.RemoveOrder(id)
}

// Snapshot returns the current book depth on both sides.
func (e *Engine) Snapshot(levels int) stats.Snapshot {
	return stats.Take(e.Bids, e.Asks, levels)
}

// Statistics reports basic engine counters.
type Statistics struct {
	TotalOrders int
	TotalTrades int
}

// Statistics returns engine-wide counters.
func (e *Engine) Statistics() Statistics {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Statistics{TotalOrders: len(e.orderLog), TotalTrades: len(e.tradeLog)}
}

// TradeLog returns the append-only trade history.
func (e *Engine) TradeLog() []*common.Trade {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*common.Trade, len(e.tradeLog))
	copy(out, e.tradeLog)
	return out
}
