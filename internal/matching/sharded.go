package matching

import (
	"time"

	"matchbook/internal/book"
	"matchbook/internal/common"
)

// AgainstSharded crosses incoming against a ShardedBookSide using
// OrdersAtBest to pull the globally-earliest order at the best price on
// every iteration, preserving price-time priority despite partitioning.
func AgainstSharded(incoming *common.Order, opposite *book.ShardedBookSide) []*common.Trade {
	var trades []*common.Trade

	for incoming.Remaining() > 0 {
		bestPrice, ok := opposite.BestPrice()
		if !ok || !crosses(incoming, bestPrice) {
			break
		}

		candidates := opposite.OrdersAtBest()
		if len(candidates) == 0 {
			continue
		}
		resting := candidates[0]

		level, ok := opposite.LevelAt(resting.ID, bestPrice)
		if !ok {
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
