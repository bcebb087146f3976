package matching

import (
	"matchbook/internal/book"
	"matchbook/internal/common"
)

// Available sums the resting volume (each level's TotalVolume) on
// opposite that an incoming FOK order could trade against: asks priced
// at or below the incoming buy's limit, or bids priced at or above the
// incoming sell's limit. A non-positive limit price is treated as
// marketable — every level counts. Iceberg orders count with their full
// remaining quantity, not only their disclosed slice.
func Available(incoming *common.Order, opposite *book.BookSide) uint64 {
	limit := incoming.LimitPrice
	marketable := limit <= 0

	var total uint64
	for _, level := range opposite.Levels() {
		if marketable {
			total += level.TotalVolume
			continue
		}
		if incoming.Side == common.Buy && level.Price <= limit {
			total += level.TotalVolume
		} else if incoming.Side == common.Sell && level.Price >= limit {
			total += level.TotalVolume
		}
	}
	return total
}

// AvailableSharded is the sharded-book counterpart of Available,
// summing aggregated per-price volume across all shards.
func AvailableSharded(incoming *common.Order, opposite *book.ShardedBookSide) uint64 {
	limit := incoming.LimitPrice
	marketable := limit <= 0

	var total uint64
	for _, pv := range opposite.Levels() {
		switch {
		case marketable:
			total += pv.Volume
		case incoming.Side == common.Buy && pv.Price <= limit:
			total += pv.Volume
		case incoming.Side == common.Sell && pv.Price >= limit:
			total += pv.Volume
		}
	}
	return total
}
