// Package matching implements the C4 matching kernel: crossing an
// incoming order against the opposite side of the book, price-time
// priority, and the canonical iceberg refresh-and-requeue residual
// policy.
package matching

import (
	"time"

	"matchbook/internal/book"
	"matchbook/internal/common"
)

// Against crosses incoming against opposite repeatedly until incoming
// is exhausted, the opposite side runs dry, or (for LIMIT orders) the
// best opposite price no longer crosses incoming's limit. It mutates
// incoming and every touched resting order's Filled quantity in place
// and returns the trades generated, in best-price-then-priority order.
func Against(incoming *common.Order, opposite *book.BookSide) []*common.Trade {
	var trades []*common.Trade

	for incoming.Remaining() > 0 {
		bestPrice, ok := opposite.BestPrice()
		if !ok {
			break
		}
		if !crosses(incoming, bestPrice) {
			break
		}

		level, ok := opposite.LevelAt(bestPrice)
		if !ok || level.IsEmpty() {
			// Lost a race with a concurrent cancel between BestPrice and
			// LevelAt; BestPrice will purge it on the next iteration.
			continue
		}
		resting := level.Top()
		if resting == nil {
			continue
		}

		visibleBefore := resting.Visible()
		qty := min(incoming.Remaining(), visibleBefore)

		trades = append(trades, tradeFor(incoming, resting, resting.LimitPrice, qty))
		incoming.Filled += qty
		resting.Filled += qty
		level.RecordFill(qty)

		switch {
		case resting.Remaining() == 0:
			opposite.RemoveOrder(resting.ID)
		case resting.Type == common.Iceberg && qty == visibleBefore:
			level.Requeue(resting, time.Now)
		}
	}

	return trades
}

// crosses reports whether incoming may still trade at bestPrice.
// MARKET orders always cross; every other type compares its limit
// price.
func crosses(incoming *common.Order, bestPrice float64) bool {
	if incoming.Type == common.Market {
		return true
	}
	if incoming.Side == common.Buy {
		return bestPrice <= incoming.LimitPrice
	}
	return bestPrice >= incoming.LimitPrice
}

func tradeFor(incoming, resting *common.Order, price float64, qty uint64) *common.Trade {
	if incoming.Side == common.Buy {
		return common.NewTrade(incoming.ID, resting.ID, price, qty)
	}
	return common.NewTrade(resting.ID, incoming.ID, price, qty)
}
