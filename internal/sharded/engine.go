// Package sharded implements C7: an engine built on ShardedBookSide,
// partitioning each side across independent sub-books while preserving
// global price-time priority via OrdersAtBest.
package sharded

import (
	"sync"

	"matchbook/internal/book"
	"matchbook/internal/common"
	"matchbook/internal/matching"
	"matchbook/internal/stats"
)

// Engine is the sharded counterpart of engine.Engine.
type Engine struct {
	mu sync.Mutex

	Bids *book.ShardedBookSide
	Asks *book.ShardedBookSide

	tradeLog []*common.Trade
	orderLog []*common.Order
}

// New builds an empty sharded engine with numShards sub-books per side.
func New(numShards int) *Engine {
	return &Engine{
		Bids: book.NewShardedBookSide(common.Buy, numShards),
		Asks: book.NewShardedBookSide(common.Sell, numShards),
	}
}

// Process admits an order against the sharded opposite side and rests
// any residual in its own shard.
func (e *Engine) Process(o *common.Order) []*common.Trade {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.orderLog = append(e.orderLog, o)

	own, opposite := e.sidesFor(o.Side)

	if o.Type == common.FOK {
		if matching.AvailableSharded(o, opposite) < o.Remaining() {
			return nil
		}
	}

	trades := matching.AgainstSharded(o, opposite)

	if o.Remaining() > 0 && (o.Type == common.Limit || o.Type == common.Iceberg) {
		own.AddOrder(o)
	}

	e.tradeLog = append(e.tradeLog, trades...)
	return trades
}

func (e *Engine) sidesFor(side common.Side) (own, opposite *book.ShardedBookSide) {
	if side == common.Buy {
		return e.Bids, e.Asks
	}
	return e.Asks, e.Bids
}

// Cancel routes directly to the id's owning shard on each side.
func (e *Engine) Cancel(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.Bids.RemoveOrder(id) {
		return true
	}
	return e.Asks.RemoveOrder(id)
}

// Snapshot returns the current aggregated book depth on both sides.
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
